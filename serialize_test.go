package tablefsm

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestMarshalBinary(t *testing.T) {
	want := runsMachine()

	data, err := want.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 8+256+2+len("runs")+4*4)
	require.Equal(t, []byte(binaryMagic), data[:4])

	got := new(Machine)
	require.NoError(t, got.UnmarshalBinary(data))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("UnmarshalBinary mismatch (-want +got):\n%s", diff)
	}

	out, err := parse(mustFSM(t, got), "1112233\n")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 0}, out)
}

func TestReadFromErrors(t *testing.T) {
	data, err := runsMachine().MarshalBinary()
	require.NoError(t, err)

	t.Run("truncated", func(t *testing.T) {
		for _, n := range []int{0, 3, 8, 100, len(data) - 1} {
			var m Machine
			_, err := m.ReadFrom(bytes.NewReader(data[:n]))
			require.ErrorIs(t, err, io.ErrUnexpectedEOF, "length %d", n)
		}
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[0] = 'X'
		var m Machine
		_, err := m.ReadFrom(bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrBadMagic)
	})

	t.Run("bad version", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[4] = 9
		var m Machine
		_, err := m.ReadFrom(bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrBadVersion)
	})

	t.Run("bad symbol count", func(t *testing.T) {
		bad := bytes.Clone(data)
		bad[6], bad[7] = 0, 0
		var m Machine
		_, err := m.ReadFrom(bytes.NewReader(bad))
		require.ErrorIs(t, err, ErrSymbolCount)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		var m Machine
		require.Error(t, m.UnmarshalBinary(append(bytes.Clone(data), 0)))
	})
}

func TestWriteToRejectsInvalid(t *testing.T) {
	m := runsMachine()
	m.Cutoff = 0
	_, err := m.WriteTo(io.Discard)
	require.ErrorIs(t, err, ErrCutoff)
}

func TestLoadCompiledMachine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.tfsm")

	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = runsMachine().WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	m, err := LoadMachine(path)
	require.NoError(t, err)
	if diff := cmp.Diff(runsMachine(), m); diff != "" {
		t.Errorf("LoadMachine mismatch (-want +got):\n%s", diff)
	}
}
