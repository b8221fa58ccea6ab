package source

import "strings"

// SplitLines splits on '\n' only. A trailing newline yields a final empty line,
// matching how the weaver sees line fragments.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

// LineLengths returns the length of every line of text, measured in unit.
// Index 0 is line 1.
func LineLengths(text string, unit ColumnUnit) []int {
	lines := SplitLines(text)
	out := make([]int, len(lines))
	for i, l := range lines {
		out[i] = unit.Len(l)
	}
	return out
}

// LineTable answers "how long is line N" for audits.
type LineTable struct {
	lengths []int
}

// NewLineTable builds a table over text.
func NewLineTable(text string, unit ColumnUnit) *LineTable {
	return &LineTable{lengths: LineLengths(text, unit)}
}

// Len returns the length of the 1-based line, and false when it does not exist.
func (t *LineTable) Len(line uint32) (int, bool) {
	if t == nil || line == 0 || int(line) > len(t.lengths) {
		return 0, false
	}
	return t.lengths[line-1], true
}

// Count returns the number of lines.
func (t *LineTable) Count() int {
	if t == nil {
		return 0
	}
	return len(t.lengths)
}

// Contains reports whether p lies within the text, allowing the position
// one past the last character of a line.
func (t *LineTable) Contains(p LineCol) bool {
	n, ok := t.Len(p.Line)
	if !ok || p.Col == 0 {
		return false
	}
	return int(p.Col) <= n+1
}
