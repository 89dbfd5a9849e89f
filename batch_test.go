package tablefsm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAll(t *testing.T) {
	m := runsFSM(t)

	frames := [][]byte{[]byte("111\n"), []byte("23\n"), []byte("\n"), []byte("1313\n")}
	expected := [][]byte{{1, 0}, {2, 3, 0}, {0}, {1, 3, 1, 3, 0}}

	for _, limit := range []int{0, 1, 2, 8} {
		out, err := ParseAll(context.Background(), m, frames, limit)
		require.NoError(t, err, "limit %d", limit)
		require.Equal(t, expected, out, "limit %d", limit)
	}
}

func TestParseAllFrameError(t *testing.T) {
	m := runsFSM(t)

	frames := [][]byte{[]byte("111\n"), []byte("1"), []byte("\n")}
	out, err := ParseAll(context.Background(), m, frames, 1)
	require.Nil(t, out)
	require.ErrorIs(t, err, ErrInputExhausted)

	var fe *FrameError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, int64(1), fe.Index)
}

func TestParseAllCanceled(t *testing.T) {
	m := runsFSM(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseAll(ctx, m, [][]byte{[]byte("1\n")}, 0)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseAllEmpty(t *testing.T) {
	out, err := ParseAll(context.Background(), runsFSM(t), nil, 4)
	require.NoError(t, err)
	require.Empty(t, out)
}
