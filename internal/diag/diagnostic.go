package diag

import (
	"deoptlens/internal/source"
)

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Pos
	// EntryID links the diagnostic to an input entry when there is one.
	EntryID string
}
