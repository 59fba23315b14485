// Package main is the entry point for tasker.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/tasker/cmd/tasker/commands"
	"go.trai.ch/tasker/internal/app"
	"go.trai.ch/tasker/internal/core/domain"
	_ "go.trai.ch/tasker/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, func(ctx context.Context) (*app.Components, error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stdout, stderr io.Writer,
	provider ComponentProvider,
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	if components.Telemetry != nil {
		defer func() {
			if err := components.Telemetry.Close(); err != nil {
				components.Logger.Error(err)
			}
		}()
	}

	// 2. Interface - CLI
	cli := commands.New(components.App.WithOutput(stdout), components.Logger)
	cli.SetArgs(args)
	cli.SetOutput(stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrBuildExecutionFailed) {
			// The failed invocations are already in the summary.
			components.Logger.Warn(err.Error())
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
