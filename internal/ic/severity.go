package ic

import (
	"fmt"
	"math"
)

// Severity ranks how concerning an entry is; higher is worse.
type Severity int

const (
	// MinSeverity is the baseline tier.
	MinSeverity Severity = 1
	// UnknownSeverity marks data the trace could not classify. It is greater
	// than every real tier so unknown states are never hidden behind good ones.
	UnknownSeverity Severity = math.MaxInt32
)

// SeverityOf returns the tier for a State.
func SeverityOf(s State) (Severity, error) {
	switch s {
	case Uninitialized, Premonomorphic, Monomorphic, RecomputeHandler:
		return MinSeverity, nil
	case Polymorphic:
		return MinSeverity + 1, nil
	case Megamorphic, Generic:
		return MinSeverity + 2, nil
	case Unknown:
		return UnknownSeverity, nil
	}
	return 0, fmt.Errorf("severity of %d: %w", uint8(s), ErrUnknownState)
}

// Known reports whether s is a real tier rather than the unknown sentinel.
func (s Severity) Known() bool {
	return s != UnknownSeverity
}

// Worse reports whether s ranks above other.
func (s Severity) Worse(other Severity) bool {
	return s > other
}

// Class returns the style class of the marker for this severity.
func (s Severity) Class() string {
	switch {
	case s == UnknownSeverity, s < MinSeverity:
		return "sev-unknown"
	case s == MinSeverity:
		return "sev1"
	case s == MinSeverity+1:
		return "sev2"
	default:
		return "sev3"
	}
}

func (s Severity) String() string {
	if s == UnknownSeverity {
		return "unknown"
	}
	return fmt.Sprintf("%d", int(s))
}
