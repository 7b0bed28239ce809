package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/spf13/cobra"
)

func (c *cli) newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Args:  cobra.MinimumNArgs(1),
		Short: "Send a message to the support assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.session(cmd, true)
			if err != nil {
				return err
			}
			user := app.Store.Snapshot().User
			reply, err := app.Backend.Chat(cmd.Context(), strings.Join(args, " "), user.Email)
			if err != nil {
				return errors.New(auth.FormMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Message)
			return nil
		},
	}
}
