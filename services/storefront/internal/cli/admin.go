package cli

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"onlinemall/pkg/domain"
	"onlinemall/services/storefront/internal/apiclient"
	"onlinemall/services/storefront/internal/app"
)

func (c *console) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin console (requires the admin role)",
	}
	cmd.AddCommand(
		c.adminProductsCmd(),
		c.adminUsersCmd(),
		c.adminBehaviorsCmd(),
		c.adminTrainCmd(),
	)
	return cmd
}

type productFlags struct {
	name        string
	description string
	price       float64
	categoryID  int64
	stock       int
	imageURL    string
	imagePath   string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Product name")
	cmd.Flags().StringVar(&f.description, "description", "", "Product description")
	cmd.Flags().Float64Var(&f.price, "price", 0, "Unit price")
	cmd.Flags().Int64Var(&f.categoryID, "category", 0, "Category id")
	cmd.Flags().IntVar(&f.stock, "stock", 0, "Units in stock")
	cmd.Flags().StringVar(&f.imageURL, "image-url", "", "Image URL")
	cmd.Flags().StringVar(&f.imagePath, "image", "", "Local image file to upload")
}

// apply copies the flags the user set onto input.
func (f *productFlags) apply(cmd *cobra.Command, input *domain.ProductInput) {
	flags := cmd.Flags()
	if flags.Changed("name") {
		input.Name = f.name
	}
	if flags.Changed("description") {
		input.Description = f.description
	}
	if flags.Changed("price") {
		input.Price = f.price
	}
	if flags.Changed("category") {
		input.CategoryID = f.categoryID
	}
	if flags.Changed("stock") {
		input.Stock = f.stock
	}
	if flags.Changed("image-url") {
		input.ImageURL = f.imageURL
	}
}

// image opens the --image file. The returned cleanup closes it.
func (f *productFlags) image() (*app.ImageUpload, func(), error) {
	if f.imagePath == "" {
		return nil, func() {}, nil
	}
	file, err := os.Open(f.imagePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open image: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("stat image: %w", err)
	}
	upload := &app.ImageUpload{
		Name:        filepath.Base(f.imagePath),
		ContentType: mime.TypeByExtension(filepath.Ext(f.imagePath)),
		Size:        info.Size(),
		Body:        file,
	}
	return upload, func() { file.Close() }, nil
}

func (c *console) adminProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.guarded(cmd, "/admin/products", func(ctx context.Context) error {
				products, err := c.rt.app.AdminProducts(ctx)
				if err != nil {
					return err
				}
				return c.printJSON(products)
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.guarded(cmd, "/admin/products", func(ctx context.Context) error {
				product, err := c.rt.app.AdminProduct(ctx, id)
				if err != nil {
					return err
				}
				return c.printJSON(product)
			})
		},
	}

	var createFlags productFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if createFlags.name == "" {
				return fmt.Errorf("--name is required")
			}
			input := domain.ProductInput{}
			createFlags.apply(cmd, &input)
			img, cleanup, err := createFlags.image()
			if err != nil {
				return err
			}
			defer cleanup()
			return c.guarded(cmd, "/admin/products", func(ctx context.Context) error {
				product, err := c.rt.app.AdminCreateProduct(ctx, input, img)
				if err != nil {
					return err
				}
				return c.printJSON(product)
			})
		},
	}
	createFlags.register(create)

	var updateFlags productFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			img, cleanup, err := updateFlags.image()
			if err != nil {
				return err
			}
			defer cleanup()
			return c.guarded(cmd, "/admin/products", func(ctx context.Context) error {
				current, err := c.rt.app.AdminProduct(ctx, id)
				if err != nil {
					return err
				}
				input := domain.ProductInput{
					Name:        current.Name,
					Description: current.Description,
					Price:       current.Price,
					ImageURL:    current.ImageURL,
					CategoryID:  current.CategoryID,
					Stock:       current.Stock,
				}
				updateFlags.apply(cmd, &input)
				product, err := c.rt.app.AdminUpdateProduct(ctx, id, input, img)
				if err != nil {
					return err
				}
				return c.printJSON(product)
			})
		},
	}
	updateFlags.register(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.guarded(cmd, "/admin/products", func(ctx context.Context) error {
				return c.rt.app.AdminDeleteProduct(ctx, id)
			})
		},
	}

	cmd.AddCommand(get, create, update, del)
	return cmd
}

func userFlagsInput(cmd *cobra.Command) domain.UserInput {
	flags := cmd.Flags()
	name, _ := flags.GetString("name")
	email, _ := flags.GetString("email")
	password, _ := flags.GetString("password")
	role, _ := flags.GetString("role")
	return domain.UserInput{Name: name, Email: email, Password: password, Role: role}
}

func registerUserFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("email", "", "Email")
	cmd.Flags().String("password", "", "Password")
	cmd.Flags().String("role", "", "Role (ADMIN or USER)")
}

func (c *console) adminUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.guarded(cmd, "/admin/users", func(ctx context.Context) error {
				users, err := c.rt.app.AdminUsers(ctx)
				if err != nil {
					return err
				}
				return c.printJSON(users)
			})
		},
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.guarded(cmd, "/admin/users", func(ctx context.Context) error {
				user, err := c.rt.app.AdminUser(ctx, id)
				if err != nil {
					return err
				}
				return c.printJSON(user)
			})
		},
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := userFlagsInput(cmd)
			if input.Email == "" || input.Password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			return c.guarded(cmd, "/admin/users", func(ctx context.Context) error {
				user, err := c.rt.app.AdminCreateUser(ctx, input)
				if err != nil {
					return err
				}
				return c.printJSON(user)
			})
		},
	}
	registerUserFlags(create)

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user; empty flags are not sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			input := userFlagsInput(cmd)
			return c.guarded(cmd, "/admin/users", func(ctx context.Context) error {
				user, err := c.rt.app.AdminUpdateUser(ctx, id, input)
				if err != nil {
					return err
				}
				return c.printJSON(user)
			})
		},
	}
	registerUserFlags(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.guarded(cmd, "/admin/users", func(ctx context.Context) error {
				return c.rt.app.AdminDeleteUser(ctx, id)
			})
		},
	}

	cmd.AddCommand(get, create, update, del)
	return cmd
}

func (c *console) adminBehaviorsCmd() *cobra.Command {
	var (
		q         apiclient.BehaviorQuery
		eventType string
	)
	cmd := &cobra.Command{
		Use:   "behaviors",
		Short: "List recorded user behavior",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q.EventType = domain.EventType(eventType)
			return c.guarded(cmd, "/admin/behaviors", func(ctx context.Context) error {
				behaviors, err := c.rt.app.AdminBehaviors(ctx, q)
				if err != nil {
					return err
				}
				return c.printJSON(behaviors)
			})
		},
	}
	cmd.Flags().Int64Var(&q.UserID, "user", 0, "Filter by user id")
	cmd.Flags().Int64Var(&q.ProductID, "product", 0, "Filter by product id")
	cmd.Flags().StringVar(&eventType, "event", "", "Filter by event type (VIEW, CLICK, ADD_TO_CART, PURCHASE)")
	return cmd
}

func (c *console) adminTrainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Trigger recommendation model training",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.guarded(cmd, "/admin/recommendations", func(ctx context.Context) error {
				job, err := c.rt.app.TriggerTraining(ctx)
				if err != nil {
					return err
				}
				return c.printJSON(job)
			})
		},
	}
}
