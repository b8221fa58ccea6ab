package ic

import (
	"errors"
	"fmt"
)

// State is the semantic inline-cache state decoded from a V8 trace code.
type State uint8

const (
	Uninitialized State = iota
	Premonomorphic
	Monomorphic
	RecomputeHandler
	Polymorphic
	Megamorphic
	Generic
	Unknown
)

var (
	// ErrUnknownCode is returned by Classify for codes outside the V8 table.
	ErrUnknownCode = errors.New("unrecognized ic classification code")
	// ErrUnknownState is returned for State values outside the enumeration.
	ErrUnknownState = errors.New("unknown ic state")
)

// Classify maps a single-character IC code from the trace to its State.
// Table follows ICState in v8/src/ic/ic.cc.
func Classify(code byte) (State, error) {
	switch code {
	case '0':
		return Uninitialized, nil
	case '.':
		return Premonomorphic, nil
	case '1':
		return Monomorphic, nil
	case '^':
		return RecomputeHandler, nil
	case 'P':
		return Polymorphic, nil
	case 'N':
		return Megamorphic, nil
	case 'G':
		return Generic, nil
	case 'X':
		return Unknown, nil
	default:
		return Unknown, fmt.Errorf("parse %q: %w", code, ErrUnknownCode)
	}
}

// ClassifyString is Classify for a textual field; the field must hold exactly one byte.
func ClassifyString(s string) (State, error) {
	if len(s) != 1 {
		return Unknown, fmt.Errorf("parse %q: %w", s, ErrUnknownCode)
	}
	return Classify(s[0])
}

// String returns the name used in the JSON entry format.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Premonomorphic:
		return "premonomorphic"
	case Monomorphic:
		return "monomorphic"
	case RecomputeHandler:
		return "recompute_handler"
	case Polymorphic:
		return "polymorphic"
	case Megamorphic:
		return "megamorphic"
	case Generic:
		return "generic"
	case Unknown:
		return "unknown"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// ParseState is the inverse of String.
func ParseState(name string) (State, error) {
	switch name {
	case "uninitialized", "unintialized":
		return Uninitialized, nil
	case "premonomorphic":
		return Premonomorphic, nil
	case "monomorphic":
		return Monomorphic, nil
	case "recompute_handler":
		return RecomputeHandler, nil
	case "polymorphic":
		return Polymorphic, nil
	case "megamorphic":
		return Megamorphic, nil
	case "generic":
		return Generic, nil
	case "unknown":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("parse state %q: %w", name, ErrUnknownState)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if s > Unknown {
		return nil, fmt.Errorf("marshal %d: %w", uint8(s), ErrUnknownState)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	st, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}
