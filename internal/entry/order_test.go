package entry

import (
	"math/rand"
	"reflect"
	"testing"
)

func mk(kind Kind, id string, line, col int) Entry {
	return Entry{ID: id, Kind: kind, File: "a.js", Line: line, Column: col}
}

func ids(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.ID
	}
	return out
}

func TestOrder_SortsByLineThenColumn(t *testing.T) {
	codes := []Entry{mk(KindCode, "c1", 5, 1), mk(KindCode, "c2", 1, 9)}
	deopts := []Entry{mk(KindDeopt, "d1", 1, 2)}
	ics := []Entry{mk(KindIC, "i1", 3, 4), mk(KindIC, "i2", 1, 2)}

	got := ids(Order(codes, deopts, ics))
	want := []string{"d1", "i2", "c2", "i1", "c1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Order() = %v, want %v", got, want)
	}
}

func TestOrder_TieBreakIsCategoryThenInput(t *testing.T) {
	codes := []Entry{mk(KindCode, "c1", 3, 5), mk(KindCode, "c2", 3, 5)}
	deopts := []Entry{mk(KindDeopt, "d1", 3, 5)}
	ics := []Entry{mk(KindIC, "i1", 3, 5), mk(KindIC, "i2", 3, 5)}

	want := []string{"c1", "c2", "d1", "i1", "i2"}
	for run := 0; run < 5; run++ {
		if got := ids(Order(codes, deopts, ics)); !reflect.DeepEqual(got, want) {
			t.Fatalf("run %d: Order() = %v, want %v", run, got, want)
		}
	}
}

func TestOrder_PermutationsAgreeOnPositions(t *testing.T) {
	base := []Entry{
		mk(KindCode, "a", 2, 3), mk(KindCode, "b", 1, 1), mk(KindCode, "c", 2, 1),
		mk(KindCode, "d", 7, 7), mk(KindCode, "e", 2, 3), mk(KindCode, "f", 1, 4),
	}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		perm := append([]Entry(nil), base...)
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })

		got := Order(perm, nil, nil)
		if idx, ok := IsOrdered(got); !ok {
			t.Fatalf("permutation %d not ordered at %d: %v", i, idx, got)
		}
		if len(got) != len(base) {
			t.Fatalf("lost entries: %d != %d", len(got), len(base))
		}
	}
}

func TestOrder_Idempotent(t *testing.T) {
	once := Order(
		[]Entry{mk(KindCode, "c1", 4, 1), mk(KindCode, "c2", 1, 1)},
		[]Entry{mk(KindDeopt, "d1", 4, 1)},
		[]Entry{mk(KindIC, "i1", 2, 2)},
	)
	twice := Order(once, nil, nil)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Order not idempotent:\n%v\n%v", ids(once), ids(twice))
	}
}

func TestOrder_DoesNotMutateInput(t *testing.T) {
	codes := []Entry{mk(KindCode, "late", 9, 1), mk(KindCode, "early", 1, 1)}
	_ = Order(codes, nil, nil)
	if codes[0].ID != "late" {
		t.Fatal("input slice was reordered")
	}
}

func TestIsOrdered(t *testing.T) {
	q := []Entry{mk(KindCode, "a", 1, 5), mk(KindCode, "b", 1, 2)}
	if idx, ok := IsOrdered(q); ok || idx != 1 {
		t.Errorf("IsOrdered = %d, %v; want 1, false", idx, ok)
	}
	if _, ok := IsOrdered(nil); !ok {
		t.Error("empty queue must be ordered")
	}
}

func TestKind_IconAndNames(t *testing.T) {
	tests := []struct {
		kind Kind
		name string
		icon string
	}{
		{KindCode, "codes", "▲"},
		{KindDeopt, "deopts", "▼"},
		{KindIC, "ics", "☎"},
	}
	for _, tt := range tests {
		if tt.kind.String() != tt.name || tt.kind.Icon() != tt.icon {
			t.Errorf("%d: got %q %q", tt.kind, tt.kind.String(), tt.kind.Icon())
		}
		k, err := ParseKind(tt.name)
		if err != nil || k != tt.kind {
			t.Errorf("ParseKind(%q) = %v, %v", tt.name, k, err)
		}
	}
}
