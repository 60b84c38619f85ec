package main

import (
	"fmt"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check the view documents for consistency",
	Long:  `Loads every view and reports malformed documents, unknown components and missing or cyclic includes.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRender, _ := cmd.Flags().GetBool("render")
		if err := cli.Validate(cmd.Context(), runOptions(cmd, args), dryRender); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Views are valid! ✅")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("view", "", "Entry view that must exist")
	validateCmd.Flags().Bool("render", false, "Also mount every view once")
}
