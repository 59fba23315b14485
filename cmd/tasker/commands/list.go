package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/tasker/internal/app"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the tasks defined in the taskfile",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("file")
			asJSON, _ := cmd.Flags().GetBool("json")
			return c.app.List(cmd.Context(), app.ListOptions{File: file, JSON: asJSON})
		},
	}
}
