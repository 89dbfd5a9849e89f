package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the machine tables for consistency",
	Long:  `Checks class ids against the symbol count, rejects start-state transitions that emit without consuming input and verifies the terminal state is reachable.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := loadMachine()
		if err != nil {
			return err
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "machine %q is valid: %d symbols, %d continuation states\n", m.Name, m.NumSymbols, m.Cutoff)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
