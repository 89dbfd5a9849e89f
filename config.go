package tablefsm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of a machine definition file.
type Format int

const (
	FormatUnknown Format = iota
	FormatYAML
	FormatJSON
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatBinary:
		return "binary"
	}
	return "unknown"
}

// machineFile is the text form of a Machine.
//
//	name: runs
//	symbols: 4
//	cutoff: 4
//	classes:
//	  default: 0
//	  ranges:
//	    - {from: "1", to: "1", class: 0}
//	    - {bytes: "\n", class: 3}
//	transitions:
//	  - [1, 2, 3, 4]
type machineFile struct {
	Name        string      `yaml:"name" json:"name"`
	Symbols     int         `yaml:"symbols" json:"symbols"`
	Cutoff      int         `yaml:"cutoff" json:"cutoff"`
	Classes     classesFile `yaml:"classes" json:"classes"`
	Transitions [][]int     `yaml:"transitions" json:"transitions"`
}

type classesFile struct {
	Default int          `yaml:"default" json:"default"`
	Ranges  []classRange `yaml:"ranges" json:"ranges"`
}

// classRange assigns Class either to the bytes From..To or to each byte of Bytes.
// Single bytes may be written literally or as 0xNN.
type classRange struct {
	From  string `yaml:"from" json:"from"`
	To    string `yaml:"to" json:"to"`
	Bytes string `yaml:"bytes" json:"bytes"`
	Class int    `yaml:"class" json:"class"`
}

// LoadMachine reads a machine definition from path. Binary files are
// recognised by their header, ".json" files are read as JSON and anything
// else as YAML.
func LoadMachine(path string) (*Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine definition: %w", err)
	}

	m, err := ParseMachine(data, detectFormat(path, data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return m, nil
}

func detectFormat(path string, data []byte) Format {
	if bytes.HasPrefix(data, []byte(binaryMagic)) {
		return FormatBinary
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// ParseMachine decodes a machine definition in the given format.
func ParseMachine(data []byte, format Format) (*Machine, error) {
	var f machineFile

	switch format {
	case FormatBinary:
		m := new(Machine)
		if err := m.UnmarshalBinary(data); err != nil {
			return nil, err
		}
		return m, nil
	case FormatJSON:
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse machine json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse machine yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported machine format %s", format)
	}

	return f.machine()
}

func (f *machineFile) machine() (*Machine, error) {
	if f.Classes.Default < 0 || f.Classes.Default >= MaxSymbols {
		return nil, fmt.Errorf("%w: default class %d", ErrInvalidConfig, f.Classes.Default)
	}
	cb := NewClassBuilder(byte(f.Classes.Default))

	for i, r := range f.Classes.Ranges {
		if r.Class < 0 || r.Class >= MaxSymbols {
			return nil, fmt.Errorf("%w: classes.ranges[%d]: class %d", ErrInvalidConfig, i, r.Class)
		}
		class := byte(r.Class)

		if r.Bytes != "" {
			cb.SetBytes(class, parseBytes(r.Bytes)...)
			continue
		}

		lo, err := parseByte(r.From)
		if err != nil {
			return nil, fmt.Errorf("%w: classes.ranges[%d].from: %v", ErrInvalidConfig, i, err)
		}
		hi := lo
		if r.To != "" {
			if hi, err = parseByte(r.To); err != nil {
				return nil, fmt.Errorf("%w: classes.ranges[%d].to: %v", ErrInvalidConfig, i, err)
			}
		}
		if hi < lo {
			return nil, fmt.Errorf("%w: classes.ranges[%d]: empty range %#02x-%#02x", ErrInvalidConfig, i, lo, hi)
		}
		cb.SetRange(lo, hi, class)
	}

	m := &Machine{
		Name:       f.Name,
		Classes:    cb.Build(),
		NumSymbols: f.Symbols,
		Cutoff:     f.Cutoff,
	}
	if m.NumSymbols == 0 {
		m.NumSymbols = m.Classes.NumSymbols()
	}
	if m.Cutoff == 0 {
		m.Cutoff = len(f.Transitions)
	}
	if m.NumSymbols < 1 || m.NumSymbols > MaxSymbols {
		return nil, fmt.Errorf("%w: got %d", ErrSymbolCount, m.NumSymbols)
	}
	if m.Cutoff < 1 || m.Cutoff > MaxCutoff {
		return nil, fmt.Errorf("%w: got %d", ErrCutoff, m.Cutoff)
	}
	if len(f.Transitions) != m.Cutoff {
		return nil, fmt.Errorf("%w: %d transition rows, cutoff is %d", ErrTableSize, len(f.Transitions), m.Cutoff)
	}

	m.Transitions = make([]byte, 0, m.Cutoff*m.NumSymbols)
	for state, row := range f.Transitions {
		if len(row) != m.NumSymbols {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrTableSize, state, len(row), m.NumSymbols)
		}
		for sym, next := range row {
			if next < 0 || next > 255 {
				return nil, fmt.Errorf("%w: transitions[%d][%d]: state %d out of range", ErrInvalidConfig, state, sym, next)
			}
			m.Transitions = append(m.Transitions, byte(next))
		}
	}

	return m, nil
}

// parseByte accepts a single literal byte or a hex byte written as 0xNN.
func parseByte(s string) (byte, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	if hex, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err := strconv.ParseUint(hex, 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid hex byte %q", s)
		}
		return byte(v), nil
	}
	return 0, fmt.Errorf("expected a single byte, got %q", s)
}

// parseBytes reads s as the bytes it spells, except that exactly "0xNN"
// names a single hex byte.
func parseBytes(s string) []byte {
	if len(s) == 4 {
		if b, err := parseByte(s); err == nil {
			return []byte{b}
		}
	}
	return []byte(s)
}
