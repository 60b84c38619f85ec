package main

import (
	"fmt"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor renders component trees incrementally",
	Long: `Arbor reconciles component trees against a host in interruptible slices.
Views are Markdown, YAML or JSON documents; components are registered in Go.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", "", "Directory containing the view documents (overrides the config file)")
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default ./arbor.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every render pass")
}

// runOptions collects the persistent flags and the view selection shared by
// the rendering commands. A positional argument names the view directory
// unless --dir is set.
func runOptions(cmd *cobra.Command, args []string) cli.RunOptions {
	var opts cli.RunOptions
	opts.Dir, _ = cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		opts.Dir = args[0]
	}
	opts.ConfigPath, _ = cmd.Flags().GetString("config")
	opts.Debug, _ = cmd.Flags().GetBool("debug")
	if cmd.Flags().Lookup("view") != nil {
		opts.View, _ = cmd.Flags().GetString("view")
	}
	if cmd.Flags().Lookup("demo") != nil {
		opts.Demo, _ = cmd.Flags().GetBool("demo")
	}
	if cmd.Flags().Lookup("container") != nil {
		opts.ContainerID, _ = cmd.Flags().GetString("container")
	}
	return opts
}

// addViewFlags registers the flags selecting what a command renders.
func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().String("view", "", "View to render (default: index, main, app or the directory name)")
	cmd.Flags().Bool("demo", false, "Render the built-in demo app instead of a view")
}
