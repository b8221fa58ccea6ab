package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Classification of raw trace codes.
	ClassifyUnknownCode  Code = 1001
	ClassifyUnknownState Code = 1002

	// Input entries.
	EntryBadPosition Code = 2001
	EntryUnknownKind Code = 2002
	EntryDuplicateID Code = 2003

	// Weaving.
	WeaveUnresolved Code = 3001
	WeaveOutOfOrder Code = 3002

	// Audit mode self-checks.
	AuditLineLength   Code = 4001
	AuditEscapedRoot  Code = 4002
	AuditTextMismatch Code = 4003

	// Input files.
	InputFileMissing Code = 5001
	InputParseFailed Code = 5002
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	ClassifyUnknownCode:  "Unrecognized IC classification code",
	ClassifyUnknownState: "Unknown IC state",
	EntryBadPosition:     "Entry position is not 1-based",
	EntryUnknownKind:     "Unknown entry type",
	EntryDuplicateID:     "Duplicate entry id",
	WeaveUnresolved:      "Marker could not be placed",
	WeaveOutOfOrder:      "Marker queue is not sorted",
	AuditLineLength:      "Line length mismatch at line boundary",
	AuditEscapedRoot:     "Traversal left the document root",
	AuditTextMismatch:    "Document text changed during weaving",
	InputFileMissing:     "No entries for highlighted file",
	InputParseFailed:     "Highlighted document could not be parsed",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("CLS%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("ENT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("WEV%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("AUD%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("INP%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
