package tablefsm

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is wrapped by every construction and configuration failure.
	ErrInvalidConfig = errors.New("tablefsm: invalid machine configuration")

	ErrNilClasses  = fmt.Errorf("%w: nil equivalence table", ErrInvalidConfig)
	ErrSymbolCount = fmt.Errorf("%w: symbol count out of range [1,256]", ErrInvalidConfig)
	ErrCutoff      = fmt.Errorf("%w: output state cutoff out of range [1,255]", ErrInvalidConfig)
	ErrTableSize   = fmt.Errorf("%w: transition table size is not cutoff*symbols", ErrInvalidConfig)
	ErrTableIndex  = fmt.Errorf("%w: symbol id indexes past the transition table", ErrInvalidConfig)

	// ErrSizeMismatch is returned when input and output lengths differ.
	// No output byte has been written.
	ErrSizeMismatch = errors.New("tablefsm: input and output must be the same length")

	// ErrIncomplete is wrapped by every failure where the terminal state was
	// not reached with exactly one input byte left unconsumed.
	ErrIncomplete = errors.New("tablefsm: input not consumed up to its final byte")

	// ErrInputExhausted means the machine read past the end of input without
	// reaching the terminal state.
	ErrInputExhausted = fmt.Errorf("%w: input exhausted before terminal state", ErrIncomplete)

	// ErrOutputOverflow means the machine kept emitting without consuming input
	// until the output buffer was full.
	ErrOutputOverflow = fmt.Errorf("%w: output exhausted before terminal state", ErrIncomplete)
)

// ConsumptionError is returned when the terminal state is reached too early.
type ConsumptionError struct {
	Consumed int // input bytes consumed before the terminal state
	Want     int // len(input)-1
}

func (e *ConsumptionError) Error() string {
	return fmt.Sprintf("tablefsm: terminal state reached after consuming %d of %d bytes", e.Consumed, e.Want)
}

func (e *ConsumptionError) Unwrap() error {
	return ErrIncomplete
}

// FrameError attributes a parse failure to one frame of a stream or batch.
type FrameError struct {
	Index int64 // zero-based frame number
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Index, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
