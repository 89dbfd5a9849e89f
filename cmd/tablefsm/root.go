package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mnightingale/tablefsm"
	"github.com/mnightingale/tablefsm/internal/logging"
)

var (
	machinePath string
	logLevel    string
	logger      = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "tablefsm",
	Short:         "Run table-driven finite-state machines over byte streams",
	Long:          `tablefsm classifies input bytes, walks a transition table and emits one output symbol per recognised run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVarP(&machinePath, "machine", "m", "machine.yaml", "Machine definition (YAML, JSON or compiled)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func loadMachine() (*tablefsm.Machine, tablefsm.FSM, error) {
	m, err := tablefsm.LoadMachine(machinePath)
	if err != nil {
		return nil, tablefsm.FSM{}, err
	}
	fsm, err := m.FSM()
	if err != nil {
		return nil, tablefsm.FSM{}, err
	}
	logger.Debug("machine loaded", "name", m.Name, "symbols", m.NumSymbols, "cutoff", m.Cutoff)
	return m, fsm, nil
}

// parseDelimiter accepts a single byte, a Go escape such as \n, or 0xNN.
func parseDelimiter(s string) (byte, error) {
	if len(s) == 4 && (s[:2] == "0x" || s[:2] == "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 8)
		if err == nil {
			return byte(v), nil
		}
	}
	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil || len(unquoted) != 1 {
		return 0, fmt.Errorf("delimiter must be a single byte, got %q", s)
	}
	return unquoted[0], nil
}
