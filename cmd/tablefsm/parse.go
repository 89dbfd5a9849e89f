package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mnightingale/tablefsm"
)

var (
	parseDelim     string
	parseHex       bool
	parseParallel  int
	parseKeepGoing bool
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse delimiter-terminated frames and print the output symbols",
	Long: `Reads frames from file, or streams them from stdin when no file is given.
Every frame must end with the delimiter byte, which must drive the machine into its terminal state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseDelim, "delimiter", "d", `\n`, "Frame delimiter: a byte, an escape such as \\n, or 0xNN")
	parseCmd.Flags().BoolVar(&parseHex, "hex", false, "Print output hex encoded")
	parseCmd.Flags().IntVarP(&parseParallel, "parallel", "p", 0, "Parse frames of a file concurrently with this many workers")
	parseCmd.Flags().BoolVar(&parseKeepGoing, "keep-going", false, "Log rejected frames and continue with the next one (stdin only)")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	_, fsm, err := loadMachine()
	if err != nil {
		return err
	}
	delim, err := parseDelimiter(parseDelim)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if parseHex {
		enc := hex.NewEncoder(out)
		defer fmt.Fprintln(out)
		out = enc
	}

	if len(args) == 0 {
		return parseStream(cmd.InOrStdin(), out, fsm, delim)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if parseParallel > 1 {
		return parseConcurrent(cmd, data, out, fsm, delim)
	}

	dst := make([]byte, len(data))
	n, frames, err := tablefsm.ParseFrames(fsm, dst, data, delim)
	if err != nil {
		return err
	}
	logger.Debug("file parsed", "frames", frames, "in", len(data), "out", n)
	_, err = out.Write(dst[:n])
	return err
}

func parseStream(r io.Reader, w io.Writer, fsm tablefsm.FSM, delim byte) error {
	dec := tablefsm.NewDecoder(r, fsm,
		tablefsm.WithDelimiter(delim),
		tablefsm.WithLogger(logger),
	)

	var rejected int
	for {
		_, err := dec.Next(w)
		if errors.Is(err, io.EOF) {
			break
		}
		var fe *tablefsm.FrameError
		if parseKeepGoing && errors.As(err, &fe) {
			rejected++
			logger.Warn("frame rejected", "frame", fe.Index, "error", fe.Err)
			continue
		}
		if err != nil {
			return err
		}
	}

	logger.Debug("stream parsed", "frames", dec.Frames(), "rejected", rejected)
	if rejected > 0 {
		return fmt.Errorf("%d of %d frames rejected", rejected, dec.Frames())
	}
	return nil
}

func parseConcurrent(cmd *cobra.Command, data []byte, w io.Writer, fsm tablefsm.FSM, delim byte) error {
	frames := bytes.SplitAfter(data, []byte{delim})
	if last := frames[len(frames)-1]; len(last) == 0 {
		frames = frames[:len(frames)-1]
	} else {
		return fmt.Errorf("%d trailing bytes without delimiter: %w", len(last), tablefsm.ErrIncomplete)
	}

	outputs, err := tablefsm.ParseAll(cmd.Context(), fsm, frames, parseParallel)
	if err != nil {
		return err
	}
	logger.Debug("file parsed", "frames", len(frames), "workers", parseParallel)

	for _, o := range outputs {
		if _, err := w.Write(o); err != nil {
			return err
		}
	}
	return nil
}
