package tablefsm

// State identifies a position in the automaton. States below a machine's
// cutoff are continuation states, the rest are output states.
//
// The output state equal to the cutoff is the terminal marker. Reaching any
// other output state s emits the symbol s-cutoff and restarts the machine
// from StartState without consuming the byte that triggered it.
type State byte

const (
	StartState State = 0 // fixed start state of every machine

	MaxCutoff  = 255 // largest cutoff; state 255 is then the only output state
	MaxSymbols = 256 // one class per byte value
)

// IsOutput reports whether s is an output state of a machine with the given cutoff.
func (s State) IsOutput(cutoff int) bool {
	return int(s) >= cutoff
}
