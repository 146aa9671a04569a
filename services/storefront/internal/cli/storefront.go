package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
	"onlinemall/services/storefront/internal/apiclient"
)

func (c *console) homeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show recommendations, categories and products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.guarded(cmd, "/", func(ctx context.Context) error {
				home, err := c.rt.app.Home(ctx)
				if err != nil {
					return err
				}
				return c.printJSON(home)
			})
		},
	}
}

func (c *console) productsCmd() *cobra.Command {
	var q apiclient.ProductQuery
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.guarded(cmd, "/products", func(ctx context.Context) error {
				products, err := c.rt.app.Products(ctx, q)
				if err != nil {
					return err
				}
				return c.printJSON(products)
			})
		},
	}
	cmd.Flags().Int64Var(&q.CategoryID, "category", 0, "Category id")
	cmd.Flags().StringVarP(&q.Keyword, "keyword", "k", "", "Search keyword")
	return cmd
}

func (c *console) productCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.guarded(cmd, "/product/"+strconv.FormatInt(id, 10), func(ctx context.Context) error {
				product, err := c.rt.app.Product(ctx, id)
				if err != nil {
					return err
				}
				return c.printJSON(product)
			})
		},
	}
}

func (c *console) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.guarded(cmd, "/products", func(ctx context.Context) error {
				categories, err := c.rt.app.Categories(ctx)
				if err != nil {
					return err
				}
				return c.printJSON(categories)
			})
		},
	}
}
