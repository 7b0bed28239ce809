package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrsteele09/go-mindcare-client/cmd/mindcare/commands"
	"github.com/jrsteele09/go-mindcare-client/internal/config"
	"github.com/jrsteele09/go-mindcare-client/internal/logging"
)

func main() {
	c := config.New()
	// Only warnings reach the terminal unless LOG_LEVEL asks for more
	level := c.GetLogLevel()
	if os.Getenv("LOG_LEVEL") == "" {
		level = "warn"
	}
	logging.Setup(c.GetEnv(), level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.NewRootCmd(commands.DefaultOpener).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
