package source

import (
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// ColumnUnit selects what one column counts.
//
// V8 reports columns as UTF-16 code unit offsets, which is what a JS string's
// length measures, so UTF16 is the default.
type ColumnUnit uint8

const (
	UTF16 ColumnUnit = iota
	Rune
	Byte
)

func (u ColumnUnit) String() string {
	switch u {
	case UTF16:
		return "utf16"
	case Rune:
		return "rune"
	case Byte:
		return "byte"
	}
	return "unknown"
}

// ParseColumnUnit accepts "utf16", "rune" or "byte"; empty means UTF16.
func ParseColumnUnit(s string) (ColumnUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "utf16", "utf-16":
		return UTF16, nil
	case "rune", "char":
		return Rune, nil
	case "byte", "bytes":
		return Byte, nil
	}
	return UTF16, fmt.Errorf("invalid column unit %q (expected utf16|rune|byte)", s)
}

// Len measures s in the unit.
func (u ColumnUnit) Len(s string) int {
	switch u {
	case Byte:
		return len(s)
	case Rune:
		return utf8.RuneCountInString(s)
	default:
		n := 0
		for _, r := range s {
			if w := utf16.RuneLen(r); w > 0 {
				n += w
			} else {
				n++ // invalid UTF-8 decodes to U+FFFD, one unit
			}
		}
		return n
	}
}
