package source

import "testing"

func TestColumnUnit_Len(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		utf16 int
		runes int
		bytes int
	}{
		{"ascii", "abc", 3, 3, 3},
		{"empty", "", 0, 0, 0},
		{"two byte rune", "é", 1, 1, 2},
		{"astral rune", "a😀b", 4, 3, 6},
		{"cjk", "日本", 2, 2, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UTF16.Len(tt.text); got != tt.utf16 {
				t.Errorf("UTF16.Len(%q) = %d, want %d", tt.text, got, tt.utf16)
			}
			if got := Rune.Len(tt.text); got != tt.runes {
				t.Errorf("Rune.Len(%q) = %d, want %d", tt.text, got, tt.runes)
			}
			if got := Byte.Len(tt.text); got != tt.bytes {
				t.Errorf("Byte.Len(%q) = %d, want %d", tt.text, got, tt.bytes)
			}
		})
	}
}

func TestParseColumnUnit(t *testing.T) {
	for in, want := range map[string]ColumnUnit{"": UTF16, "UTF16": UTF16, "rune": Rune, "byte": Byte} {
		got, err := ParseColumnUnit(in)
		if err != nil || got != want {
			t.Errorf("ParseColumnUnit(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseColumnUnit("words"); err == nil {
		t.Error("expected error for unknown unit")
	}
}

func TestLineTable(t *testing.T) {
	tbl := NewLineTable("ab\n\ncdef\n", UTF16)
	if tbl.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", tbl.Count())
	}
	want := []int{2, 0, 4, 0}
	for i, w := range want {
		got, ok := tbl.Len(uint32(i + 1))
		if !ok || got != w {
			t.Errorf("Len(%d) = %d, %v; want %d", i+1, got, ok, w)
		}
	}
	if _, ok := tbl.Len(0); ok {
		t.Error("line 0 must not exist")
	}
	if _, ok := tbl.Len(5); ok {
		t.Error("line 5 must not exist")
	}
	if !tbl.Contains(LineCol{Line: 3, Col: 5}) {
		t.Error("3:5 is one past the end of line 3 and should be contained")
	}
	if tbl.Contains(LineCol{Line: 3, Col: 6}) {
		t.Error("3:6 is outside line 3")
	}
}

func TestLineCol_Less(t *testing.T) {
	a := LineCol{Line: 1, Col: 9}
	b := LineCol{Line: 2, Col: 1}
	c := LineCol{Line: 2, Col: 3}
	if !a.Less(b) || !b.Less(c) || c.Less(a) || a.Less(a) {
		t.Error("unexpected ordering")
	}
}

func TestNewPos(t *testing.T) {
	p, err := NewPos("a.js", 3, 7)
	if err != nil {
		t.Fatal(err)
	}
	if p.String() != "a.js:3:7" {
		t.Errorf("String() = %q", p.String())
	}
	if _, err := NewPos("a.js", -1, 1); err == nil {
		t.Error("expected error for negative line")
	}
}
