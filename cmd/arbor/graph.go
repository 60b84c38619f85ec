package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [dir]",
	Short: "Export the fiber tree visualization",
	Long:  `Renders the view once and outputs a Mermaid diagram (graph TD) of the committed fiber tree, highlighting placed and updated fibers.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RenderOnce(cmd.Context(), runOptions(cmd, args), cli.FormatMermaid, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addViewFlags(graphCmd)
}
