package tablefsm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoadMachine(t *testing.T) {
	want := runsMachine()

	for _, path := range []string{"testdata/runs.yaml", "testdata/runs.json"} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			got, err := LoadMachine(path)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("LoadMachine(%q) mismatch (-want +got):\n%s", path, diff)
			}
			require.NoError(t, got.Validate())
		})
	}
}

func TestParseMachineDefaults(t *testing.T) {
	m, err := ParseMachine([]byte(`
classes:
  ranges:
    - {bytes: ";", class: 1}
transitions:
  - [1, 2]
  - [1, 2]
`), FormatYAML)
	require.NoError(t, err)
	require.Equal(t, 2, m.NumSymbols, "derived from classes")
	require.Equal(t, 2, m.Cutoff, "derived from rows")

	got, err := parse(mustFSM(t, m), "111;")
	require.NoError(t, err)
	require.Equal(t, []byte{0}, got)
}

func TestParseMachineErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		err  error
	}{
		{"row count", `{"symbols": 1, "cutoff": 2, "transitions": [[1]]}`, ErrTableSize},
		{"row width", `{"symbols": 2, "cutoff": 1, "transitions": [[1]]}`, ErrTableSize},
		{"state range", `{"symbols": 1, "cutoff": 1, "transitions": [[256]]}`, ErrInvalidConfig},
		{"class range", `{"classes": {"ranges": [{"bytes": "a", "class": 300}]}, "transitions": [[1]]}`, ErrInvalidConfig},
		{"multi byte from", `{"classes": {"ranges": [{"from": "ab", "class": 0}]}, "transitions": [[1]]}`, ErrInvalidConfig},
		{"bad hex", `{"classes": {"ranges": [{"from": "0xzz", "class": 0}]}, "transitions": [[1]]}`, ErrInvalidConfig},
		{"negative symbols", `{"symbols": -1, "cutoff": 1, "transitions": [[1]]}`, ErrSymbolCount},
		{"symbols too large", `{"symbols": 100000000000, "cutoff": 1, "transitions": [[1]]}`, ErrSymbolCount},
		{"negative cutoff", `{"symbols": 1, "cutoff": -1, "transitions": [[1]]}`, ErrCutoff},
		{"cutoff too large", `{"symbols": 1, "cutoff": 256, "transitions": [[1]]}`, ErrCutoff},
		{"inverted range", `{"classes": {"ranges": [{"from": "z", "to": "a", "class": 0}]}, "transitions": [[1]]}`, ErrInvalidConfig},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseMachine([]byte(tc.doc), FormatJSON)
			require.ErrorIs(t, err, tc.err)
		})
	}

	require.NotPanics(t, func() {
		_, err := ParseMachine([]byte("symbols: -1\ncutoff: 1\ntransitions:\n  - [1]\n"), FormatYAML)
		require.ErrorIs(t, err, ErrSymbolCount)
	})

	_, err := ParseMachine([]byte("transitions: [[1"), FormatYAML)
	require.Error(t, err)

	_, err = ParseMachine(nil, FormatUnknown)
	require.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	bin, err := runsMachine().MarshalBinary()
	require.NoError(t, err)

	require.Equal(t, FormatBinary, detectFormat("machine.yaml", bin))
	require.Equal(t, FormatJSON, detectFormat("machine.JSON", []byte("{}")))
	require.Equal(t, FormatYAML, detectFormat("machine.yml", []byte("name: x")))
	require.Equal(t, FormatYAML, detectFormat("machine", nil))
}

func TestLoadMachineMissing(t *testing.T) {
	_, err := LoadMachine(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseBytes(t *testing.T) {
	require.Equal(t, []byte{0x0a}, parseBytes("0x0a"))
	require.Equal(t, []byte("0x"), parseBytes("0x"))
	require.Equal(t, []byte("abc"), parseBytes("abc"))
	require.Equal(t, []byte("0xzz"), parseBytes("0xzz"))
	require.Equal(t, []byte("0x4"), parseBytes("0x4"), "short hex is read literally")

	m, err := ParseMachine([]byte(`{"classes": {"ranges": [{"bytes": "0x4", "class": 1}]}, "transitions": [[2, 1]]}`), FormatJSON)
	require.NoError(t, err)
	for _, b := range []byte("0x4") {
		require.Equal(t, byte(1), m.Classes.Get(b), "byte %q", b)
	}
	require.Equal(t, byte(0), m.Classes.Get(0x04))
}

func mustFSM(t testing.TB, m *Machine) FSM {
	f, err := m.FSM()
	require.NoError(t, err)
	return f
}
