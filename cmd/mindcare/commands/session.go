package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/spf13/cobra"
)

func (c *cli) newLoginCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Args:  cobra.NoArgs,
		Short: "Log in and keep the session for later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.session(cmd, false)
			if err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				if email, err = prompt(cmd.OutOrStdout(), in, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(cmd.OutOrStdout(), in, "Password: "); err != nil {
					return err
				}
			}

			if err := app.Store.Authenticate(cmd.Context(), email, password); err != nil {
				return errors.New(auth.UserMessage(err))
			}
			user := app.Store.Snapshot().User
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", user.Name, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password, prompted for when empty")
	return cmd
}

func (c *cli) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Args:  cobra.NoArgs,
		Short: "End the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.session(cmd, false)
			if err != nil {
				return err
			}
			app.Store.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func (c *cli) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Args:  cobra.NoArgs,
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.session(cmd, false)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			snap := app.Store.Snapshot()
			fmt.Fprintf(out, "Session: %s\n", snap.Status)
			if snap.User != nil {
				fmt.Fprintf(out, "User:    %s <%s> (%s)\n", snap.User.Name, snap.User.Email, snap.User.Role)
			}
			if snap.Status == auth.StatusAuthenticated {
				fmt.Fprintf(out, "Expires: %s\n", snap.ExpiresAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}
}

// prompt reads one trimmed line. An empty answer is an error.
func prompt(out io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.TrimSuffix(strings.ToLower(label), ": "))
	}
	return line, nil
}
