package tablefsm

import "fmt"

// FSM is a table-driven deterministic automaton that turns an input byte
// sequence into a sequence of output symbols.
//
// An FSM borrows its tables: the equivalence table and the transition table
// must stay valid and unchanged for as long as the FSM is used. The FSM never
// writes to them, so a single value can be copied freely and used by any
// number of goroutines at once.
type FSM struct {
	classes     *Classes
	transitions []byte
	numSymbols  int
	cutoff      int
}

// New returns an FSM over the given tables.
//
// classes maps every byte to a symbol id in [0, numSymbols). transitions is
// laid out row-major with one row of numSymbols next states per continuation
// state, so it must hold exactly cutoff*numSymbols entries. Only the shape of
// the tables is checked; their contents are the caller's responsibility.
func New(classes *Classes, numSymbols int, transitions []byte, cutoff int) (FSM, error) {
	switch {
	case classes == nil:
		return FSM{}, ErrNilClasses
	case numSymbols < 1 || numSymbols > MaxSymbols:
		return FSM{}, fmt.Errorf("%w: got %d", ErrSymbolCount, numSymbols)
	case cutoff < 1 || cutoff > MaxCutoff:
		return FSM{}, fmt.Errorf("%w: got %d", ErrCutoff, cutoff)
	case len(transitions) != cutoff*numSymbols:
		return FSM{}, fmt.Errorf("%w: got %d entries, want %d", ErrTableSize, len(transitions), cutoff*numSymbols)
	}

	return FSM{
		classes:     classes,
		transitions: transitions,
		numSymbols:  numSymbols,
		cutoff:      cutoff,
	}, nil
}

// NumSymbols returns the number of symbol classes the FSM was built with.
func (m FSM) NumSymbols() int { return m.numSymbols }

// Cutoff returns the first output state.
func (m FSM) Cutoff() int { return m.cutoff }

// Terminal returns the state that ends a parse.
func (m FSM) Terminal() State { return State(m.cutoff) }

// Parse runs the automaton over input and writes the emitted symbols to
// output, which must be exactly as long as input.
//
// The final byte of input must drive the machine into the terminal state and
// every byte before it must be consumed. On success Parse returns the number
// of symbols written, counting the terminal symbol; that count never exceeds
// len(input). On failure it returns 0 and an error matching ErrSizeMismatch,
// ErrIncomplete or ErrInvalidConfig; the contents of output are unspecified.
func (m FSM) Parse(input, output []byte) (int, error) {
	if len(input) != len(output) {
		return 0, fmt.Errorf("%w: input has %d bytes, output has %d", ErrSizeMismatch, len(input), len(output))
	}
	if m.classes == nil {
		return 0, ErrNilClasses
	}

	state := int(StartState)
	i := 0 // input cursor
	o := 0 // output cursor

	for {
		if i >= len(input) {
			return 0, ErrInputExhausted
		}

		symbol := int(m.classes[input[i]])
		idx := state*m.numSymbols + symbol
		if idx >= len(m.transitions) {
			return 0, fmt.Errorf("%w: state %d, symbol %d", ErrTableIndex, state, symbol)
		}

		next := int(m.transitions[idx])
		if next < m.cutoff {
			state = next
			i++
			continue
		}

		if o >= len(output) {
			return 0, ErrOutputOverflow
		}
		output[o] = byte(next - m.cutoff)

		if next == m.cutoff {
			break
		}

		// The byte that closed this run is read again from the start state.
		state = int(StartState)
		o++
	}

	if want := len(input) - 1; i != want {
		return 0, &ConsumptionError{Consumed: i, Want: want}
	}

	return o + 1, nil
}
