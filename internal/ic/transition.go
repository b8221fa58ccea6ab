package ic

import "fmt"

// RawTransition is one IC update as it appears in the trace: two state codes.
type RawTransition struct {
	Old byte
	New byte
}

// Transition is a classified RawTransition.
type Transition struct {
	Old      State
	New      State
	Severity Severity
}

// ScoreTransitions classifies every update and returns the worst severity among
// the new states. The first unrecognized code aborts scoring of the whole record.
func ScoreTransitions(raw []RawTransition) ([]Transition, Severity, error) {
	out := make([]Transition, 0, len(raw))
	worst := MinSeverity
	for i, r := range raw {
		oldState, err := Classify(r.Old)
		if err != nil {
			return nil, 0, fmt.Errorf("update %d old state: %w", i, err)
		}
		newState, err := Classify(r.New)
		if err != nil {
			return nil, 0, fmt.Errorf("update %d new state: %w", i, err)
		}
		sev, err := SeverityOf(newState)
		if err != nil {
			return nil, 0, fmt.Errorf("update %d: %w", i, err)
		}
		if sev.Worse(worst) {
			worst = sev
		}
		out = append(out, Transition{Old: oldState, New: newState, Severity: sev})
	}
	return out, worst, nil
}
