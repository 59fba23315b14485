// Package commands implements the CLI commands for tasker.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/tasker/internal/app"
	"go.trai.ch/tasker/internal/build"
	"go.trai.ch/tasker/internal/core/ports"
)

// CLI represents the command line interface for tasker.
type CLI struct {
	app     Application
	logger  ports.Logger
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, targetNames []string, opts app.RunOptions) error
	List(ctx context.Context, opts app.ListOptions) error
}

// New creates a new CLI instance with the given app. When logger supports
// SetJSON, the --json flag switches it to JSON output.
func New(a Application, logger ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "tasker",
		Short:         "Run named tasks and their dependencies concurrently",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("file", "f", "", "Path to the taskfile (default: search for tasker.yaml upwards)")
	rootCmd.PersistentFlags().Bool("json", false, "Print logs and results as JSON")

	c := &CLI{
		app:     a,
		logger:  logger,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if l, ok := c.logger.(interface{ SetJSON(bool) }); ok {
				l.SetJSON(true)
			}
		}
	}

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newListCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
