package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tasker/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Run specified tasks",
		Long: "Run the specified targets and everything they depend on.\n" +
			"Targets may name template instances, e.g. \"test:core\" for a task \"test:{pkg}\".\n" +
			"The target \"all\" runs every task without placeholders.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			file, _ := cmd.Flags().GetString("file")
			asJSON, _ := cmd.Flags().GetBool("json")
			initOnly, _ := cmd.Flags().GetBool("init-only")
			allowUnresolved, _ := cmd.Flags().GetBool("allow-unresolved")

			return c.app.Run(cmd.Context(), args, app.RunOptions{
				File:            file,
				InitOnly:        initOnly,
				AllowUnresolved: allowUnresolved,
				JSON:            asJSON,
			})
		},
	}
	cmd.Flags().Bool("init-only", false, "Wire and walk the dependency graph without running any work")
	cmd.Flags().Bool("allow-unresolved", false, "Run resolved targets even if some names match no task")
	return cmd
}
