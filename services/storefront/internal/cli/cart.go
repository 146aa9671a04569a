package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (c *console) cartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.guarded(cmd, "/cart", func(ctx context.Context) error {
				cart, err := c.rt.app.LoadCart(ctx)
				if err != nil {
					return err
				}
				return c.printJSON(cart)
			})
		},
	}
	cmd.AddCommand(c.cartAddCmd(), c.cartUpdateCmd(), c.cartRemoveCmd())
	return cmd
}

func (c *console) cartAddCmd() *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.guarded(cmd, "/cart", func(ctx context.Context) error {
				cart, err := c.rt.app.AddToCart(ctx, productID, quantity)
				if err != nil {
					return err
				}
				return c.printJSON(cart)
			})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "Quantity to add")
	return cmd
}

func (c *console) cartUpdateCmd() *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "update <cart-item-id>",
		Short: "Change the quantity of a cart item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.guarded(cmd, "/cart", func(ctx context.Context) error {
				cart, err := c.rt.app.UpdateCartItem(ctx, itemID, quantity)
				if err != nil {
					return err
				}
				return c.printJSON(cart)
			})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "New quantity")
	return cmd
}

func (c *console) cartRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <cart-item-id>...",
		Short: "Remove items from the cart",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return c.guarded(cmd, "/cart", func(ctx context.Context) error {
				cart, err := c.rt.app.RemoveCartItems(ctx, ids)
				if err != nil {
					return err
				}
				return c.printJSON(cart)
			})
		},
	}
}

func (c *console) checkoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.guarded(cmd, "/cart", func(ctx context.Context) error {
				order, err := c.rt.app.Checkout(ctx)
				if err != nil {
					return err
				}
				if _, err := c.rt.app.Navigate("/checkout-success"); err != nil {
					return err
				}
				return c.printJSON(order)
			})
		},
	}
}

func (c *console) ordersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.guarded(cmd, "/orders", func(ctx context.Context) error {
				orders, err := c.rt.app.Orders(ctx)
				if err != nil {
					return err
				}
				return c.printJSON(orders)
			})
		},
	}
}
