package source

import (
	"fmt"

	"fortio.org/safecast"
)

// FileFlags encodes metadata about a loaded text.
type FileFlags uint8

const (
	// FileHadBOM is set when a UTF-8 byte order mark was stripped on load.
	FileHadBOM FileFlags = 1 << iota
	FileHadCRLF // CRLF present; kept as is, \r counts as a column
)

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// Less orders positions by line, then column.
func (p LineCol) Less(other LineCol) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}

func (p LineCol) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Pos is a file-qualified LineCol.
type Pos struct {
	File string
	LineCol
}

// NewPos converts int coordinates, failing on values that do not fit.
func NewPos(file string, line, col int) (Pos, error) {
	l, err := safecast.Conv[uint32](line)
	if err != nil {
		return Pos{}, fmt.Errorf("line %d: %w", line, err)
	}
	c, err := safecast.Conv[uint32](col)
	if err != nil {
		return Pos{}, fmt.Errorf("column %d: %w", col, err)
	}
	return Pos{File: file, LineCol: LineCol{Line: l, Col: c}}, nil
}

// MustPos is NewPos for coordinates already validated by the caller.
// Out-of-range values are clamped to zero.
func MustPos(file string, line, col int) Pos {
	p, err := NewPos(file, line, col)
	if err != nil {
		return Pos{File: file}
	}
	return p
}

func (p Pos) String() string {
	if p.File == "" {
		return p.LineCol.String()
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}
