package tablefsm

// Transitions is a row-major transition table with one row per continuation
// state and one column per symbol id.
type Transitions struct {
	cutoff     int
	numSymbols int
	table      []byte
}

// NewTransitions returns a table for cutoff continuation states over
// numSymbols symbols. Every entry starts as the terminal state.
func NewTransitions(cutoff, numSymbols int) *Transitions {
	t := &Transitions{
		cutoff:     cutoff,
		numSymbols: numSymbols,
		table:      make([]byte, cutoff*numSymbols),
	}
	t.Fill(State(cutoff))
	return t
}

// Set makes symbol move state to next.
func (t *Transitions) Set(state State, symbol byte, next State) *Transitions {
	t.table[int(state)*t.numSymbols+int(symbol)] = byte(next)
	return t
}

// SetRow sets the next states of state for symbols 0, 1, ... in order.
func (t *Transitions) SetRow(state State, next ...State) *Transitions {
	row := t.table[int(state)*t.numSymbols : (int(state)+1)*t.numSymbols]
	for i, s := range next {
		row[i] = byte(s)
	}
	return t
}

// Fill sets every entry to next.
func (t *Transitions) Fill(next State) *Transitions {
	for i := range t.table {
		t.table[i] = byte(next)
	}
	return t
}

// Next returns the state reached from state on symbol.
func (t *Transitions) Next(state State, symbol byte) State {
	return State(t.table[int(state)*t.numSymbols+int(symbol)])
}

// Bytes returns the underlying table. It is not copied.
func (t *Transitions) Bytes() []byte {
	return t.table
}

// Cutoff returns the number of rows.
func (t *Transitions) Cutoff() int { return t.cutoff }

// NumSymbols returns the number of columns.
func (t *Transitions) NumSymbols() int { return t.numSymbols }
