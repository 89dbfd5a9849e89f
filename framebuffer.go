package tablefsm

import (
	"fmt"
	"io"
)

const (
	defaultFrameBufSize = 32 * 1024
	maxFrameBufSize     = 8 * 1024 * 1024
)

// frameBuffer holds bytes read from a source that no frame has claimed yet.
// Unclaimed bytes live in buf[head:tail].
type frameBuffer struct {
	buf        []byte
	head, tail int
}

// frameSink consumes at most one frame from in per call and reports whether
// it did. A sink that needs more bytes returns consumed == 0 and done == false.
type frameSink interface {
	Feed(in []byte, out io.Writer) (consumed int, done bool, err error)
}

func (fb *frameBuffer) unread() []byte {
	return fb.buf[fb.head:fb.tail]
}

func (fb *frameBuffer) len() int {
	return fb.tail - fb.head
}

func (fb *frameBuffer) discard(n int) {
	fb.head += n
	if fb.head >= fb.tail {
		fb.head, fb.tail = 0, 0
	}
}

// fill reads once from r into the free space after tail. Unread bytes are
// moved to the front first, and the buffer doubles when they already fill
// it, up to maxFrameBufSize.
func (fb *frameBuffer) fill(r io.Reader) error {
	if fb.buf == nil {
		fb.buf = make([]byte, defaultFrameBufSize)
	}

	if fb.tail == len(fb.buf) {
		pending := fb.unread()
		if fb.head == 0 {
			size := min(2*len(fb.buf), maxFrameBufSize)
			if size <= len(fb.buf) {
				return fmt.Errorf("tablefsm: frame exceeds %d byte read buffer: %w", maxFrameBufSize, ErrIncomplete)
			}
			grown := make([]byte, size)
			copy(grown, pending)
			fb.buf = grown
		} else {
			copy(fb.buf, pending)
		}
		fb.head, fb.tail = 0, len(pending)
	}

	n, err := r.Read(fb.buf[fb.tail:])
	fb.tail += n
	return err
}

// pump hands unread bytes to sink, reading from r whenever sink needs more,
// until sink completes a frame or r fails. Bytes that arrive together with a
// read error still reach sink before the error is returned.
func (fb *frameBuffer) pump(r io.Reader, sink frameSink, out io.Writer) error {
	var readErr error
	for {
		if fb.len() > 0 {
			consumed, done, err := sink.Feed(fb.unread(), out)
			fb.discard(consumed)
			if err != nil || done {
				return err
			}
		}
		if readErr != nil {
			return readErr
		}
		readErr = fb.fill(r)
	}
}
