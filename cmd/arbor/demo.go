package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Drive the built-in demo app from the keyboard",
	Long:  `Mounts the demo app on a frame loop. Renders are time-sliced and every commit redraws the terminal.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RunDemo(runOptions(cmd, args))
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
