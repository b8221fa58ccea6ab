package entry

import (
	"fmt"

	"deoptlens/internal/ic"
)

// Kind is the category of an entry.
type Kind uint8

const (
	KindCode Kind = iota
	KindDeopt
	KindIC
)

// String returns the name used in the JSON format.
func (k Kind) String() string {
	switch k {
	case KindCode:
		return "codes"
	case KindDeopt:
		return "deopts"
	case KindIC:
		return "ics"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Icon is the glyph rendered inside a marker.
func (k Kind) Icon() string {
	switch k {
	case KindCode:
		return "▲"
	case KindDeopt:
		return "▼"
	default:
		return "☎"
	}
}

// ParseKind is the inverse of String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "codes":
		return KindCode, nil
	case "deopts":
		return KindDeopt, nil
	case "ics":
		return KindIC, nil
	}
	return 0, fmt.Errorf("unknown entry type %q", s)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ICUpdate is one state transition recorded for an inline cache.
type ICUpdate struct {
	Type              string      `json:"type" msgpack:"type"`
	OldState          ic.State    `json:"oldState" msgpack:"old"`
	NewState          ic.State    `json:"newState" msgpack:"new"`
	Key               string      `json:"key,omitempty" msgpack:"key,omitempty"`
	Map               string      `json:"map,omitempty" msgpack:"map,omitempty"`
	OptimizationState string      `json:"optimizationState,omitempty" msgpack:"opt,omitempty"`
	Severity          ic.Severity `json:"severity,omitempty" msgpack:"sev,omitempty"`
}

// Entry is one classified runtime event. Entries are produced upstream and
// treated as read-only.
type Entry struct {
	ID           string      `json:"id" msgpack:"id"`
	Kind         Kind        `json:"type" msgpack:"type"`
	File         string      `json:"file" msgpack:"file"`
	Line         int         `json:"line" msgpack:"line"`
	Column       int         `json:"column" msgpack:"column"`
	Severity     ic.Severity `json:"severity" msgpack:"severity"`
	FunctionName string      `json:"functionName,omitempty" msgpack:"fn,omitempty"`

	// codes
	State string `json:"state,omitempty" msgpack:"state,omitempty"`

	// deopts
	BailoutType string `json:"bailoutType,omitempty" msgpack:"bailout,omitempty"`
	DeoptReason string `json:"deoptReason,omitempty" msgpack:"reason,omitempty"`
	Inlined     bool   `json:"inlined,omitempty" msgpack:"inlined,omitempty"`

	// ics
	Updates []ICUpdate `json:"updates,omitempty" msgpack:"updates,omitempty"`
}

// Before orders entries by line, then column.
func (e *Entry) Before(other *Entry) bool {
	if e.Line != other.Line {
		return e.Line < other.Line
	}
	return e.Column < other.Column
}

// Reaches reports whether a cursor at (line, col) satisfies this entry:
// same line and at or past its column.
func (e *Entry) Reaches(line, col int) bool {
	return line == e.Line && col >= e.Column
}

func (e Entry) String() string {
	return fmt.Sprintf("%s#%s@%s:%d:%d", e.Kind, e.ID, e.File, e.Line, e.Column)
}

// Set holds the three category-partitioned sequences of one file.
type Set struct {
	Codes  []Entry `json:"codes" msgpack:"codes"`
	Deopts []Entry `json:"deopts" msgpack:"deopts"`
	ICs    []Entry `json:"ics" msgpack:"ics"`
}

// Len returns the total number of entries.
func (s Set) Len() int {
	return len(s.Codes) + len(s.Deopts) + len(s.ICs)
}

// Ordered merges the set into one queue; see Order.
func (s Set) Ordered() []Entry {
	return Order(s.Codes, s.Deopts, s.ICs)
}
