package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Start the HTTP server",
	Long: `Serves containers over HTTP: open a container, dispatch events to it and
read its snapshot as JSON or markup. Commits are streamed over SSE and
runtime metrics are exposed at /metrics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		return cli.Serve(runOptions(cmd, args), port)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addViewFlags(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config, 8080)")
}
