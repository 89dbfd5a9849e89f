package tablefsm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMachineValidate(t *testing.T) {
	require.NoError(t, runsMachine().Validate())

	t.Run("start emits", func(t *testing.T) {
		m := runsMachine()
		m.Transitions[0] = 5
		require.ErrorIs(t, m.Validate(), ErrStartEmits)
	})

	t.Run("unused symbol may emit", func(t *testing.T) {
		classes := NewClassBuilder(0).SetBytes(2, '\n').Build()
		tr := NewTransitions(1, 3).SetRow(0, 0, 3, 1)
		require.NoError(t, NewMachine("gap", classes, tr).Validate())
	})

	t.Run("terminal unreachable", func(t *testing.T) {
		tr := NewTransitions(2, 1).SetRow(0, 1).SetRow(1, 1)
		err := NewMachine("loop", Classes{}, tr).Validate()
		require.ErrorIs(t, err, ErrTerminalUnreachable)
	})

	t.Run("terminal reachable through an emission", func(t *testing.T) {
		// '\n' only reaches the terminal state from the start state, after a run ends.
		classes := NewClassBuilder(0).SetBytes(1, '\n').Build()
		tr := NewTransitions(2, 2).SetRow(0, 1, 2).SetRow(1, 1, 3)
		require.NoError(t, NewMachine("emit", classes, tr).Validate())
	})

	t.Run("class out of range", func(t *testing.T) {
		m := runsMachine()
		m.Classes['x'] = 9
		require.ErrorIs(t, m.Validate(), ErrInvalidConfig)
	})

	t.Run("bad shape", func(t *testing.T) {
		m := runsMachine()
		m.Transitions = m.Transitions[:3]
		require.ErrorIs(t, m.Validate(), ErrTableSize)
	})
}

func TestNewMachineCopiesTable(t *testing.T) {
	tr := NewTransitions(1, 1)
	m := NewMachine("copy", Classes{}, tr)
	tr.Fill(7)
	require.Equal(t, []byte{1}, m.Transitions)
}
