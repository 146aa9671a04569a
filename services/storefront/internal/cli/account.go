package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"onlinemall/services/storefront/internal/state"
)

func (c *console) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Long: `Log in with email and password. The session is stored in the configured
storage backend and reused by later commands until logout.

Without --password the password is read from the first line of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}
			return c.guarded(cmd, "/auth", func(ctx context.Context) error {
				user, err := c.rt.app.Login(ctx, email, password)
				if err != nil {
					return err
				}
				return c.printJSON(user)
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	return cmd
}

func (c *console) registerCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a customer account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}
			return c.guarded(cmd, "/auth", func(ctx context.Context) error {
				return c.rt.app.Register(ctx, name, email, password)
			})
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Display name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	return cmd
}

func (c *console) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.rt.app.Logout()
		},
	}
}

type whoami struct {
	LoggedIn  bool       `json:"loggedIn"`
	ID        int64      `json:"id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func (c *console) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := c.rt.app.Session()
			out := whoami{LoggedIn: session.IsLoggedIn()}
			if user, ok := session.UserInfo(); ok {
				out.ID, out.Name, out.Email, out.Role = user.ID, user.Name, user.Email, user.Role
			}
			if token, ok := session.Token(); ok {
				if exp, ok := state.TokenExpiry(token); ok {
					out.ExpiresAt = &exp
				}
			}
			return c.printJSON(out)
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
