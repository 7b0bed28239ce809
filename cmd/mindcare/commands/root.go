package commands

import (
	"context"
	"errors"

	"github.com/jrsteele09/go-mindcare-client/auth"
	"github.com/jrsteele09/go-mindcare-client/internal/bootstrap"
	"github.com/jrsteele09/go-mindcare-client/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Opener builds the session store and backend client a command works with
type Opener func(ctx context.Context) (*bootstrap.App, error)

// DefaultOpener reads the environment (and .env) configuration
func DefaultOpener(ctx context.Context) (*bootstrap.App, error) {
	return bootstrap.New(ctx, config.New())
}

type cli struct {
	open Opener
	app  *bootstrap.App
}

// NewRootCmd creates the root command
func NewRootCmd(open Opener) *cobra.Command {
	c := &cli{open: open}

	rootCmd := &cobra.Command{
		Use:           "mindcare",
		Short:         "MindCare in the terminal",
		Long:          `Log in, take a self-assessment, track your mood and find support. The session is shared with the MindCare app shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.close()
		},
	}

	rootCmd.AddCommand(
		c.newLoginCommand(),
		c.newLogoutCommand(),
		c.newStatusCommand(),
		c.newAssessCommand(),
		newCrisisCommand(),
		c.newTherapistsCommand(),
		c.newResourcesCommand(),
		c.newMoodCommand(),
		c.newChatCommand(),
	)

	return rootCmd
}

// session opens and initializes the store once per invocation. A failed
// command skips PersistentPostRun, so the app also closes with the
// command's context. With requireAuth a missing or expired session is an
// error.
func (c *cli) session(cmd *cobra.Command, requireAuth bool) (*bootstrap.App, error) {
	if c.app == nil {
		app, err := c.open(cmd.Context())
		if err != nil {
			return nil, err
		}
		c.app = app
		context.AfterFunc(cmd.Context(), func() { _ = app.Close() })
		if err := app.Store.Initialize(cmd.Context()); err != nil {
			return nil, err
		}
	}

	if requireAuth {
		switch c.app.Store.Snapshot().Status {
		case auth.StatusAuthenticated:
		case auth.StatusExpired:
			c.app.Store.CheckExpiry(cmd.Context())
			return nil, errors.New(auth.MsgSessionExpired)
		default:
			return nil, errors.New(auth.MsgNotAuthenticated + " (mindcare login)")
		}
	}
	return c.app, nil
}

func (c *cli) close() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			log.Warn().Err(err).Msg("Closing session failed")
		}
		c.app = nil
	}
}
