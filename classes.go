package tablefsm

import "fmt"

// Classes is an equivalence table: it maps every byte value to the symbol id
// of its class. Bytes that share a class can never cause different
// transitions, so the transition table only needs one column per class.
type Classes [256]byte

// Get returns the symbol id of b.
func (c *Classes) Get(b byte) byte {
	return c[b]
}

// NumSymbols returns the number of symbol ids in use, the largest id plus one.
func (c *Classes) NumSymbols() int {
	var hi byte
	for _, id := range c {
		if id > hi {
			hi = id
		}
	}
	return int(hi) + 1
}

// Representatives returns the lowest byte of every class, ordered by symbol id.
// Classes with no member byte are skipped.
func (c *Classes) Representatives() []byte {
	var (
		seen  [MaxSymbols]bool
		first [MaxSymbols]byte
	)
	for b := 255; b >= 0; b-- {
		first[c[b]] = byte(b)
		seen[c[b]] = true
	}

	n := c.NumSymbols()
	reps := make([]byte, 0, n)
	for id := 0; id < n; id++ {
		if seen[id] {
			reps = append(reps, first[id])
		}
	}
	return reps
}

// Validate checks that every byte maps to a symbol id below numSymbols.
func (c *Classes) Validate(numSymbols int) error {
	for b, id := range c {
		if int(id) >= numSymbols {
			return fmt.Errorf("%w: byte %#02x maps to symbol %d, only %d symbols", ErrInvalidConfig, b, id, numSymbols)
		}
	}
	return nil
}

// ClassBuilder assembles a Classes table. Bytes that are never assigned keep
// the default class.
type ClassBuilder struct {
	classes Classes
}

// NewClassBuilder returns a builder where every byte starts in class def.
func NewClassBuilder(def byte) *ClassBuilder {
	b := new(ClassBuilder)
	for i := range b.classes {
		b.classes[i] = def
	}
	return b
}

// SetRange assigns class to every byte in [lo, hi].
func (b *ClassBuilder) SetRange(lo, hi, class byte) *ClassBuilder {
	for i := int(lo); i <= int(hi); i++ {
		b.classes[i] = class
	}
	return b
}

// SetBytes assigns class to each of bs.
func (b *ClassBuilder) SetBytes(class byte, bs ...byte) *ClassBuilder {
	for _, c := range bs {
		b.classes[c] = class
	}
	return b
}

// Build returns a copy of the table built so far.
func (b *ClassBuilder) Build() Classes {
	return b.classes
}
