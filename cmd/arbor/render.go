package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [dir]",
	Short: "Render a view once and print the result",
	Long: `Renders the selected view to its first commit and prints it.

Formats: ` + strings.Join(cli.Formats, ", ") + `.
With --container, the committed snapshot is also saved to the configured store.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return cli.RenderOnce(cmd.Context(), runOptions(cmd, args), format, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	addViewFlags(renderCmd)
	renderCmd.Flags().StringP("format", "f", cli.FormatHTML, fmt.Sprintf("Output format %v", cli.Formats))
	renderCmd.Flags().StringP("container", "c", "", "Save the snapshot under this container ID")
}
