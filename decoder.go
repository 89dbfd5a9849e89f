package tablefsm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mnightingale/tablefsm/internal/logging"
)

// Decoder reads delimiter-terminated frames from an io.Reader and parses
// each one with an FSM.
type Decoder struct {
	r       io.Reader
	m       FSM
	buf     frameBuffer
	delim   byte
	logger  *slog.Logger
	metrics *Metrics

	out     []byte // scratch output for one frame
	frames  int64
	last    Frame
	pending bytes.Buffer // parsed output not yet returned by Read
	err     error        // sticky Read error
}

type DecoderOption func(d *Decoder)

func NewDecoder(r io.Reader, m FSM, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		r:      r,
		m:      m,
		delim:  DefaultDelimiter,
		logger: logging.NewNop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// WithDelimiter sets the byte that ends every frame.
func WithDelimiter(delim byte) DecoderOption {
	return func(d *Decoder) {
		d.delim = delim
	}
}

// WithBufferSize sets the initial read buffer size. The buffer still grows
// for frames that do not fit, up to 8 MiB.
func WithBufferSize(size int) DecoderOption {
	return func(d *Decoder) {
		d.buf = frameBuffer{buf: make([]byte, max(size, 1))}
	}
}

func WithLogger(logger *slog.Logger) DecoderOption {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) DecoderOption {
	return func(d *Decoder) {
		d.metrics = m
	}
}

// Next parses the next frame and writes its output symbols to w.
//
// At the end of the stream Next returns io.EOF, or io.ErrUnexpectedEOF if
// bytes follow the last delimiter. A frame the engine rejects is returned
// together with a *FrameError; the frame is consumed, so Next can be called
// again to continue with the following frame.
func (d *Decoder) Next(w io.Writer) (*Frame, error) {
	if w == nil {
		w = io.Discard
	}

	err := d.buf.pump(d.r, d, w)
	if err == nil {
		f := d.last
		return &f, nil
	}

	var fe *FrameError
	switch {
	case errors.As(err, &fe):
		f := d.last
		return &f, err
	case errors.Is(err, io.EOF):
		if n := d.buf.len(); n > 0 {
			d.buf.discard(n)
			d.logger.Debug("stream ended inside a frame", "trailing", n)
			return nil, fmt.Errorf("tablefsm: %d trailing bytes without delimiter: %w", n, io.ErrUnexpectedEOF)
		}
		return nil, io.EOF
	}
	return nil, err
}

// Feed consumes one frame from in, if in holds a complete one, and writes
// its output to out.
func (d *Decoder) Feed(in []byte, out io.Writer) (consumed int, done bool, err error) {
	i := bytes.IndexByte(in, d.delim)
	if i < 0 {
		return 0, false, nil
	}
	frame := in[:i+1]

	d.last = Frame{Index: d.frames, BytesConsumed: len(frame)}
	d.frames++

	produced, err := parseFrame(d.m, d.metrics, frame, &d.out)
	if err != nil {
		d.logger.Debug("frame rejected", "frame", d.last.Index, "size", len(frame), "error", err)
		return len(frame), true, &FrameError{Index: d.last.Index, Err: err}
	}
	d.last.BytesProduced = len(produced)

	if _, err := out.Write(produced); err != nil {
		return len(frame), true, err
	}
	return len(frame), true, nil
}

// Read implements io.Reader over the concatenated output of all frames.
// The first failure ends the stream.
func (d *Decoder) Read(p []byte) (int, error) {
	for d.pending.Len() == 0 {
		if d.err != nil {
			return 0, d.err
		}
		if _, err := d.Next(&d.pending); err != nil {
			d.err = err
		}
	}
	return d.pending.Read(p)
}

// Frames returns the number of frames seen so far, rejected ones included.
func (d *Decoder) Frames() int64 {
	return d.frames
}
