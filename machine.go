package tablefsm

import (
	"errors"
	"fmt"
)

var (
	ErrStartEmits          = fmt.Errorf("%w: start state emits without consuming input", ErrInvalidConfig)
	ErrTerminalUnreachable = fmt.Errorf("%w: terminal state unreachable from start state", ErrInvalidConfig)
)

// Machine is a self-contained machine definition: it owns both tables, so an
// FSM built from it stays valid for as long as the Machine is kept unchanged.
type Machine struct {
	Name        string
	Classes     Classes
	NumSymbols  int
	Cutoff      int
	Transitions []byte
}

// NewMachine copies classes and the table t into a new Machine.
func NewMachine(name string, classes Classes, t *Transitions) *Machine {
	return &Machine{
		Name:        name,
		Classes:     classes,
		NumSymbols:  t.NumSymbols(),
		Cutoff:      t.Cutoff(),
		Transitions: append([]byte(nil), t.Bytes()...),
	}
}

// FSM returns an engine borrowing m's tables.
func (m *Machine) FSM() (FSM, error) {
	return New(&m.Classes, m.NumSymbols, m.Transitions, m.Cutoff)
}

// Validate checks the table contents that New leaves to the caller:
// every class id is in range, no byte makes the start state emit (which
// would repeat forever on the same byte), and the terminal state is
// reachable from the start state.
func (m *Machine) Validate() error {
	if _, err := m.FSM(); err != nil {
		return err
	}
	if err := m.Classes.Validate(m.NumSymbols); err != nil {
		return err
	}

	var (
		used [MaxSymbols]bool
		errs []error
	)
	for _, b := range m.Classes.Representatives() {
		sym := m.Classes.Get(b)
		used[sym] = true

		if next := State(m.Transitions[sym]); next.IsOutput(m.Cutoff) && int(next) != m.Cutoff {
			errs = append(errs, fmt.Errorf("%w: byte 0x%02x (symbol %d) goes to state %d", ErrStartEmits, b, sym, next))
		}
	}

	if !m.terminalReachable(used[:]) {
		errs = append(errs, ErrTerminalUnreachable)
	}

	return errors.Join(errs...)
}

func (m *Machine) terminalReachable(used []bool) bool {
	seen := make([]bool, m.Cutoff)
	queue := []int{int(StartState)}
	seen[StartState] = true

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]

		for sym := 0; sym < m.NumSymbols; sym++ {
			if !used[sym] {
				continue
			}
			next := int(m.Transitions[state*m.NumSymbols+sym])
			switch {
			case next == m.Cutoff:
				return true
			case next > m.Cutoff:
				// emitting restarts from the start state, already queued
			case !seen[next]:
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
