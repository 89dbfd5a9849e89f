package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mnightingale/tablefsm"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of tablefsm",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tablefsm version %s\n", tablefsm.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
