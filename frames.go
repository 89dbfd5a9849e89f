package tablefsm

import (
	"bytes"
	"errors"
	"fmt"
	"time"
)

// DefaultDelimiter ends every frame unless a stream is configured otherwise.
const DefaultDelimiter = '\n'

var errDestinationTooSmall = errors.New("tablefsm: destination must be at least the length of source")

// Frame describes one delimiter-terminated frame handed to the engine.
type Frame struct {
	Index         int64 // zero-based position in the stream
	BytesConsumed int   // frame length, delimiter included
	BytesProduced int   // output symbols, terminal symbol included
}

// ParseFrames parses every delimiter-terminated frame of src into dst in a
// single call, each frame's output directly following the previous one.
// The delimiter is part of the frame it ends, so it must drive m into its
// terminal state.
//
// dst must be at least len(src) bytes. Returns the number of output bytes
// written to dst and the number of frames parsed before any error. A failed
// frame is reported as a *FrameError; bytes after the last delimiter are an
// ErrIncomplete failure.
func ParseFrames(m FSM, dst, src []byte, delim byte) (n, frames int, err error) {
	if len(dst) < len(src) {
		return 0, 0, errDestinationTooSmall
	}

	p := src // remaining source to process
	for len(p) > 0 {
		i := bytes.IndexByte(p, delim)
		if i < 0 {
			return n, frames, fmt.Errorf("tablefsm: %d trailing bytes without delimiter: %w", len(p), ErrIncomplete)
		}

		frame := p[:i+1]
		nd, err := m.Parse(frame, dst[n:n+len(frame)])
		if err != nil {
			return n, frames, &FrameError{Index: int64(frames), Err: err}
		}

		n += nd
		frames++
		p = p[len(frame):]
	}

	return n, frames, nil
}

// parseFrame runs m over frame using *out as scratch space, growing it as
// needed, and records the result in metrics.
func parseFrame(m FSM, metrics *Metrics, frame []byte, out *[]byte) ([]byte, error) {
	if cap(*out) < len(frame) {
		*out = make([]byte, len(frame))
	}
	dst := (*out)[:len(frame)]

	start := time.Now()
	n, err := m.Parse(frame, dst)
	metrics.observe(len(frame), n, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return dst[:n], nil
}
