package entry

import (
	"strings"
	"testing"

	"deoptlens/internal/diag"
	"deoptlens/internal/ic"
)

const sampleDoc = `{
  "files": {
    "src/b.js": {
      "codes": [{"id": "0", "type": "codes", "file": "src/b.js", "line": 1, "column": 1, "severity": 1, "functionName": "main", "state": "optimized"}],
      "deopts": [],
      "ics": []
    },
    "src/a.js": {
      "id": "7",
      "codes": [],
      "deopts": [{"id": "1", "type": "deopts", "file": "src/a.js", "line": 4, "column": 10, "severity": 2, "bailoutType": "eager", "deoptReason": "wrong map"}],
      "ics": [{"id": "2", "type": "ics", "file": "src/a.js", "line": 2, "column": 3, "severity": 3,
               "updates": [{"type": "LoadIC", "oldState": "monomorphic", "newState": "megamorphic", "key": "x"}]}]
    }
  }
}`

func TestDecode(t *testing.T) {
	doc, err := Decode(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	if got := doc.Keys(); len(got) != 2 || got[0] != "src/a.js" {
		t.Fatalf("Keys() = %v", got)
	}

	set, id, ok := doc.ForFile("src/a.js")
	if !ok || id != "7" {
		t.Fatalf("ForFile(src/a.js) id=%q ok=%v", id, ok)
	}
	q := set.Ordered()
	if len(q) != 2 || q[0].ID != "2" || q[1].ID != "1" {
		t.Fatalf("ordered queue = %v", q)
	}
	if q[0].Updates[0].NewState != ic.Megamorphic {
		t.Errorf("new state = %v", q[0].Updates[0].NewState)
	}

	_, id, ok = doc.ForFile("src/b.js")
	if !ok || id != "1" {
		t.Errorf("fallback id = %q, want index 1", id)
	}
	if _, _, ok := doc.ForFile("missing.js"); ok {
		t.Error("missing key reported as present")
	}
}

func TestDecode_RejectsUnknownType(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"files": {"a.js": {"codes": [{"id": "0", "type": "weird"}]}}}`))
	if err == nil {
		t.Fatal("expected error for unknown entry type")
	}
}

func TestValidate(t *testing.T) {
	doc := &Document{Files: map[string]FileEntries{
		"a.js": {Set: Set{
			Codes:  []Entry{{ID: "0", Kind: KindCode, Line: 0, Column: 1}},
			Deopts: []Entry{{ID: "1", Kind: KindIC, Line: 1, Column: 1}},
			ICs:    []Entry{{ID: "1", Kind: KindIC, Line: 2, Column: 2}},
		}},
	}}
	bag := diag.NewBag(0)
	bad := doc.Validate(diag.BagReporter{Bag: bag})
	if bad != 2 {
		t.Errorf("bad = %d, want 2", bad)
	}
	if bag.CountCode(diag.EntryBadPosition) != 1 ||
		bag.CountCode(diag.EntryUnknownKind) != 1 ||
		bag.CountCode(diag.EntryDuplicateID) != 1 {
		t.Errorf("unexpected diagnostics:\n%s", diag.FormatShort(bag.Items()))
	}
}
