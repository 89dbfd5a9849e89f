package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var compileOut string

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Validate the machine and write its compiled binary form",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := loadMachine()
		if err != nil {
			return err
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		f, err := os.Create(compileOut)
		if err != nil {
			return err
		}
		n, err := m.WriteTo(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", compileOut, err)
		}

		logger.Info("machine compiled", "name", m.Name, "path", compileOut, "bytes", n)
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVarP(&compileOut, "output", "o", "machine.tfsm", "Output path")
	rootCmd.AddCommand(compileCmd)
}
