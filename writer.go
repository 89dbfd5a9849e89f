package tablefsm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Writer parses delimiter-terminated frames written to it and writes the
// output symbols of each frame to an underlying io.Writer.
//
// It is the caller's responsibility to call Close on the Writer when done.
type Writer struct {
	w       io.Writer
	m       FSM
	delim   byte
	metrics *Metrics

	tail   []byte // bytes of an unterminated frame
	out    []byte
	frames int64

	writeMu sync.Mutex
}

type WriterOption func(w *Writer)

// WithWriterDelimiter sets the byte that ends every frame.
func WithWriterDelimiter(delim byte) WriterOption {
	return func(w *Writer) {
		w.delim = delim
	}
}

func WithWriterMetrics(m *Metrics) WriterOption {
	return func(w *Writer) {
		w.metrics = m
	}
}

// NewWriter returns a new [Writer] writing parsed output to w.
func NewWriter(w io.Writer, m FSM, opts ...WriterOption) *Writer {
	wr := &Writer{m: m, delim: DefaultDelimiter}
	for _, opt := range opts {
		opt(wr)
	}
	wr.Reset(w)
	return wr
}

// Reset discards the [Writer]'s state and makes it equivalent to the result
// of [NewWriter] with the same options, but writing to w instead.
func (wr *Writer) Reset(w io.Writer) {
	wr.writeMu.Lock()
	defer wr.writeMu.Unlock()

	wr.w = w
	wr.tail = wr.tail[:0]
	wr.frames = 0
}

var errWriterClosed = errors.New("tablefsm: writer is closed")

// Write parses every frame completed by p. Bytes after the last delimiter
// are kept until a later Write or Close.
//
// If a frame fails to parse, Write returns the number of bytes of p up to
// and including that frame's delimiter together with a *FrameError.
func (wr *Writer) Write(p []byte) (n int, err error) {
	wr.writeMu.Lock()
	defer wr.writeMu.Unlock()

	if wr.w == nil {
		return 0, errWriterClosed
	}

	for {
		i := bytes.IndexByte(p[n:], wr.delim)
		if i < 0 {
			wr.tail = append(wr.tail, p[n:]...)
			return len(p), nil
		}

		frame := append(wr.tail, p[n:n+i+1]...)
		n += i + 1
		err := wr.emit(frame)
		wr.tail = frame[:0]
		if err != nil {
			return n, err
		}
	}
}

func (wr *Writer) emit(frame []byte) error {
	index := wr.frames
	wr.frames++

	produced, err := parseFrame(wr.m, wr.metrics, frame, &wr.out)
	if err != nil {
		return &FrameError{Index: index, Err: err}
	}
	_, err = wr.w.Write(produced)
	return err
}

// Close checks that the stream ended on a frame boundary.
// It is an error to call Write after calling Close.
func (wr *Writer) Close() error {
	wr.writeMu.Lock()
	defer wr.writeMu.Unlock()

	if wr.w == nil {
		return errWriterClosed
	}
	defer func() { wr.w = nil }()

	if len(wr.tail) > 0 {
		return fmt.Errorf("tablefsm: %d trailing bytes without delimiter: %w", len(wr.tail), ErrIncomplete)
	}
	return nil
}

// Frames returns the number of frames parsed since the last Reset.
func (wr *Writer) Frames() int64 {
	wr.writeMu.Lock()
	defer wr.writeMu.Unlock()

	return wr.frames
}
