package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"onlinemall/internal/util"
	"onlinemall/services/storefront/internal/app"
	"onlinemall/services/storefront/internal/config"
)

const trackingWindow = time.Minute

// Options customises the console, mostly for tests.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	// LoadConfig defaults to config.Load.
	LoadConfig func(path string) (config.FileConfig, error)
}

type console struct {
	opts       Options
	configPath string
	rt         *Runtime
}

// NewRootCmd builds the storefront console command tree.
func NewRootCmd(opts Options) *cobra.Command {
	return newConsole(opts).rootCmd()
}

func newConsole(opts Options) *console {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	return &console{opts: opts}
}

func (c *console) rootCmd() *cobra.Command {
	opts := c.opts
	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "Online mall storefront and admin console",
		Long: `Browse products, manage the cart and place orders against the
online mall API. Admin commands manage products, users, behavior
data and recommendation training.

Configuration is read from config.yaml (or --config), .env and
MALL_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file (default config.yaml)")
	rootCmd.SetOut(opts.Stdout)
	rootCmd.SetErr(opts.Stderr)
	rootCmd.SetIn(opts.Stdin)

	rootCmd.AddCommand(
		c.homeCmd(),
		c.productsCmd(),
		c.productCmd(),
		c.categoriesCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.registerCmd(),
		c.whoamiCmd(),
		c.cartCmd(),
		c.checkoutCmd(),
		c.ordersCmd(),
		c.adminCmd(),
	)
	return rootCmd
}

// Execute runs the console and returns the process exit code. Failures
// already shown as an error notification are not printed again.
func Execute(ctx context.Context, args []string, opts Options) int {
	c := newConsole(opts)
	rootCmd := c.rootCmd()
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	shown := c.rt != nil && c.rt.shownError
	if closeErr := c.close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err == nil {
		return 0
	}
	if !shown {
		fmt.Fprintf(c.opts.Stderr, "Error: %s\n", err)
	}
	return 1
}

func (c *console) open() error {
	if c.rt != nil {
		return nil
	}
	cfg, err := c.opts.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	rt, err := newRuntime(cfg, c.opts.Stdout, c.opts.Stderr)
	if err != nil {
		return err
	}
	c.rt = rt
	return nil
}

func (c *console) close() error {
	if c.rt == nil {
		return nil
	}
	err := c.rt.Close()
	c.rt = nil
	return err
}

// guarded checks path with the route guard before running fn.
func (c *console) guarded(cmd *cobra.Command, path string, fn func(ctx context.Context) error) error {
	ctx, _ := util.EnsureRequestID(cmd.Context())
	if _, err := c.rt.app.Navigate(path); err != nil {
		var redirect *app.RedirectError
		if errors.As(err, &redirect) && redirect.RedirectPath != "" {
			fmt.Fprintf(c.opts.Stderr, "  redirected to %s\n", redirect.RedirectPath)
		}
		return err
	}
	return fn(ctx)
}

func (c *console) printJSON(v any) error {
	enc := json.NewEncoder(c.opts.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
