package main

import (
	"errors"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [dir]",
	Short: "Render a view and dispatch events from stdin",
	Long: `Starts a container with the selected view and reads commands such as
"click inc" or "input draft hello" from standard input. Every commit is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := runOptions(cmd, args)
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.JSON, _ = cmd.Flags().GetBool("json")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		watchMode, _ := cmd.Flags().GetBool("watch")

		if watchMode && (opts.Headless || opts.JSON) {
			return errors.New("--watch cannot be combined with --headless or --json")
		}
		if watchMode {
			return cli.RunWatch(opts)
		}
		return cli.RunSession(opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addViewFlags(runCmd)

	runCmd.Flags().Bool("headless", false, "Run in headless mode (no prompts, strict IO)")
	runCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	runCmd.Flags().BoolP("watch", "w", false, "Re-render when view documents change")
	runCmd.Flags().StringP("container", "c", "", "Persist every commit under this container ID")
	runCmd.Flags().Bool("fresh", false, "Discard the stored snapshot of --container before starting")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Args = runCmd.Args
}
