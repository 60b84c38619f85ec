package main

import (
	"fmt"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var containerCmd = &cobra.Command{
	Use:   "container",
	Short: "Manage persisted containers",
	Long:  `List, inspect, and remove the container snapshots held by the configured store.`,
}

var containerLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored containers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cli.OpenContainers(cmd.Context(), runOptions(cmd, nil))
		if err != nil {
			return err
		}
		defer p.Close()
		return cli.ListContainers(cmd.Context(), p, cmd.OutOrStdout())
	},
}

var containerInspectCmd = &cobra.Command{
	Use:   "inspect <container-id>",
	Short: "Print the stored snapshot of a container",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		markup, _ := cmd.Flags().GetBool("markup")
		p, err := cli.OpenContainers(cmd.Context(), runOptions(cmd, nil))
		if err != nil {
			return err
		}
		defer p.Close()
		return cli.InspectContainer(cmd.Context(), p, args[0], markup, cmd.OutOrStdout())
	},
}

var containerRmCmd = &cobra.Command{
	Use:   "rm <container-id>...",
	Short: "Remove one or more containers",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := cli.OpenContainers(cmd.Context(), runOptions(cmd, nil))
		if err != nil {
			return err
		}
		defer p.Close()

		failed := 0
		for _, id := range args {
			if err := p.Store.Delete(cmd.Context(), id); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing '%s': %v\n", id, err)
				failed++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed container '%s'\n", id)
		}
		if failed > 0 {
			return fmt.Errorf("%d container(s) could not be removed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(containerCmd)
	containerCmd.AddCommand(containerLsCmd)
	containerCmd.AddCommand(containerInspectCmd)
	containerCmd.AddCommand(containerRmCmd)

	containerInspectCmd.Flags().Bool("markup", false, "Print markup instead of JSON")
}
