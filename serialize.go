package tablefsm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	binaryMagic   = "TFSM"
	binaryVersion = 1
)

var (
	ErrBadMagic   = errors.New("tablefsm: not a compiled machine")
	ErrBadVersion = errors.New("tablefsm: unsupported compiled machine version")
)

// WriteTo serializes m to w.
// Layout, little endian:
// - 4 bytes magic "TFSM"
// - u8 version, u8 cutoff, u16 numSymbols
// - 256 bytes equivalence table
// - u16 name length, name bytes
// - cutoff*numSymbols bytes transition table
func (m *Machine) WriteTo(w io.Writer) (int64, error) {
	if _, err := m.FSM(); err != nil {
		return 0, err
	}
	if len(m.Name) > math.MaxUint16 {
		return 0, fmt.Errorf("%w: name longer than %d bytes", ErrInvalidConfig, math.MaxUint16)
	}

	var hdr [8]byte
	copy(hdr[:4], binaryMagic)
	hdr[4] = binaryVersion
	hdr[5] = byte(m.Cutoff)
	binary.LittleEndian.PutUint16(hdr[6:], uint16(m.NumSymbols))

	var nameLen [2]byte
	binary.LittleEndian.PutUint16(nameLen[:], uint16(len(m.Name)))

	var n int64
	for _, part := range [][]byte{hdr[:], m.Classes[:], nameLen[:], []byte(m.Name), m.Transitions} {
		nn, err := w.Write(part)
		n += int64(nn)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// ReadFrom replaces m with a machine deserialized from r.
func (m *Machine) ReadFrom(r io.Reader) (int64, error) {
	var (
		n   int64
		hdr [8]byte
	)

	read := func(p []byte) error {
		nn, err := io.ReadFull(r, p)
		n += int64(nn)
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}

	if err := read(hdr[:]); err != nil {
		return n, err
	}
	if string(hdr[:4]) != binaryMagic {
		return n, ErrBadMagic
	}
	if hdr[4] != binaryVersion {
		return n, fmt.Errorf("%w: %d", ErrBadVersion, hdr[4])
	}

	next := Machine{
		Cutoff:     int(hdr[5]),
		NumSymbols: int(binary.LittleEndian.Uint16(hdr[6:])),
	}
	if next.NumSymbols < 1 || next.NumSymbols > MaxSymbols {
		return n, fmt.Errorf("%w: got %d", ErrSymbolCount, next.NumSymbols)
	}
	if next.Cutoff < 1 {
		return n, fmt.Errorf("%w: got %d", ErrCutoff, next.Cutoff)
	}

	if err := read(next.Classes[:]); err != nil {
		return n, err
	}

	var nameLen [2]byte
	if err := read(nameLen[:]); err != nil {
		return n, err
	}
	name := make([]byte, binary.LittleEndian.Uint16(nameLen[:]))
	if err := read(name); err != nil {
		return n, err
	}
	next.Name = string(name)

	next.Transitions = make([]byte, next.Cutoff*next.NumSymbols)
	if err := read(next.Transitions); err != nil {
		return n, err
	}

	*m = next
	return n, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *Machine) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Trailing bytes are an error.
func (m *Machine) UnmarshalBinary(data []byte) error {
	n, err := m.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if int(n) != len(data) {
		return fmt.Errorf("tablefsm: %d trailing bytes after compiled machine", len(data)-int(n))
	}
	return nil
}
