package weave_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"deoptlens/internal/diag"
	"deoptlens/internal/doctree"
	"deoptlens/internal/entry"
	"deoptlens/internal/ic"
	"deoptlens/internal/source"
	"deoptlens/internal/testkit"
	"deoptlens/internal/trace"
	"deoptlens/internal/weave"
)

func ent(id string, line, col int) entry.Entry {
	return entry.Entry{ID: id, Kind: entry.KindCode, File: "a.js", Line: line, Column: col, Severity: ic.MinSeverity}
}

func render(t *testing.T, root *doctree.Node) string {
	t.Helper()
	s, err := doctree.RenderString(root)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func mustCheck(t *testing.T, before string, root *doctree.Node, res *weave.Result) {
	t.Helper()
	if err := testkit.CheckWoven(before, root, res); err != nil {
		t.Fatal(err)
	}
}

func TestWeave_SingleLine(t *testing.T) {
	text := doctree.NewText("abc")
	root := doctree.El("", text)

	res := weave.Weave(root, []entry.Entry{ent("0", 1, 2)}, weave.Options{FileID: "f"})
	mustCheck(t, "abc", root, res)

	if len(res.Placed) != 1 || len(res.Unresolved) != 0 {
		t.Fatalf("placed=%d unresolved=%d", len(res.Placed), len(res.Unresolved))
	}
	p := res.Placed[0]
	if text.NextSibling != p.Marker || root.FirstChild != text {
		t.Fatal("marker not inserted right after the text node")
	}
	if p.Cursor != (source.LineCol{Line: 1, Col: 4}) {
		t.Errorf("cursor = %s, want 1:4", p.Cursor)
	}
	want := `abc<a id="/file/f/0" href="#/file/f/0" class="deoptMarker sev1"><mark>▲</mark></a>`
	if got := render(t, root); got != want {
		t.Errorf("render:\n got %s\nwant %s", got, want)
	}
}

func TestWeave_LineBoundaryResetsColumn(t *testing.T) {
	text := doctree.NewText("ab\ncd")
	root := doctree.El("", text)

	res := weave.Weave(root, []entry.Entry{ent("0", 2, 1)}, weave.Options{})
	mustCheck(t, "ab\ncd", root, res)

	if len(res.Placed) != 1 {
		t.Fatalf("placed = %d", len(res.Placed))
	}
	if c := res.Placed[0].Cursor; c.Line != 2 || c.Col != 3 {
		t.Errorf("cursor = %s, want 2:3", c)
	}
	if text.NextSibling != res.Placed[0].Marker {
		t.Error("marker should follow the multi-line text node")
	}
}

func TestWeave_AttachesAtFirstBoundaryReachingColumn(t *testing.T) {
	// const x = 1;  x is column 7, = is column 9
	build := func() (*doctree.Node, *doctree.Node, *doctree.Node, *doctree.Node) {
		kw := doctree.El("span", doctree.NewText("const"))
		mid := doctree.NewText(" x ")
		op := doctree.El("span", doctree.NewText("="))
		return doctree.El("", kw, mid, op, doctree.NewText(" 1;")), kw, mid, op
	}

	root, kw, _, _ := build()
	res := weave.Weave(root, []entry.Entry{ent("kw", 1, 1)}, weave.Options{})
	if res.Placed[0].Marker.Parent != kw {
		t.Error("entry at column 1 should attach inside the keyword span")
	}

	root, _, mid, op := build()
	res = weave.Weave(root, []entry.Entry{ent("x", 1, 7), ent("op", 1, 10)}, weave.Options{})
	mustCheck(t, "const x = 1;", root, res)
	if len(res.Placed) != 2 {
		t.Fatalf("placed = %d", len(res.Placed))
	}
	if res.Placed[0].Marker.PrevSibling != mid {
		t.Errorf("x marker should follow %q", mid.Data)
	}
	if c := res.Placed[0].Cursor; c.Col != 9 {
		t.Errorf("x cursor = %s, want 1:9", c)
	}
	if res.Placed[1].Marker.Parent != op {
		t.Error("op marker should land inside the operator span")
	}
}

func TestWeave_CoincidentEntriesKeepQueueOrder(t *testing.T) {
	queue := []entry.Entry{ent("first", 3, 5), ent("second", 3, 5)}
	for run := 0; run < 3; run++ {
		r := doctree.El("", doctree.NewText("l1\nl2\nabcdef"), doctree.NewText("\nend"))
		res := weave.Weave(r, queue, weave.Options{})
		mustCheck(t, "l1\nl2\nabcdef\nend", r, res)
		a, b := res.Placed[0].Marker, res.Placed[1].Marker
		if a.Entry.ID != "first" || b.Entry.ID != "second" {
			t.Fatalf("run %d: order %s, %s", run, a.Entry.ID, b.Entry.ID)
		}
		if r.FirstChild.NextSibling != a || a.NextSibling != b {
			t.Fatalf("run %d: markers are not adjacent siblings after the text", run)
		}
	}
}

func TestWeave_MultipleFragmentsInOneTextNode(t *testing.T) {
	root := doctree.El("", doctree.NewText("a\nb\nc"))
	res := weave.Weave(root, []entry.Entry{ent("1", 1, 1), ent("2", 2, 1), ent("3", 3, 2)}, weave.Options{})
	mustCheck(t, "a\nb\nc", root, res)
	if len(res.Placed) != 3 {
		t.Fatalf("placed = %d", len(res.Placed))
	}
	// All markers are siblings of the text node, never nested in each other.
	n := root.FirstChild.NextSibling
	for i, want := range []string{"1", "2", "3"} {
		if n == nil || n.Kind != doctree.MarkerNode || n.Entry.ID != want {
			t.Fatalf("sibling %d = %v, want marker %s", i, n, want)
		}
		n = n.NextSibling
	}
}

func TestWeave_UnresolvedPastEnd(t *testing.T) {
	root := doctree.El("", doctree.NewText("ab\ncd"))
	bag := diag.NewBag(0)
	res := weave.Weave(root, []entry.Entry{ent("ok", 1, 1), ent("gone", 9, 1)}, weave.Options{
		File:     "a.js",
		Reporter: diag.BagReporter{Bag: bag},
	})
	mustCheck(t, "ab\ncd", root, res)

	if len(res.Unresolved) != 1 || res.Unresolved[0].ID != "gone" {
		t.Fatalf("unresolved = %v", res.Unresolved)
	}
	if bag.CountCode(diag.WeaveUnresolved) != 1 {
		t.Fatalf("diagnostics:\n%s", diag.FormatShort(bag.Items()))
	}
	d := bag.Items()[0]
	if d.EntryID != "gone" || d.Primary.String() != "a.js:9:1" {
		t.Errorf("diagnostic = %+v", d)
	}
	if res.End != (source.LineCol{Line: 2, Col: 3}) {
		t.Errorf("end = %s", res.End)
	}
}

func TestWeave_ColumnPastLineEndDoesNotBlockQueue(t *testing.T) {
	root := doctree.El("", doctree.NewText("ab\ncd\nef"))
	bag := diag.NewBag(0)
	res := weave.Weave(root, []entry.Entry{ent("wide", 1, 40), ent("next", 2, 2)}, weave.Options{
		Reporter: diag.BagReporter{Bag: bag},
	})
	if len(res.Placed) != 1 || res.Placed[0].Entry.ID != "next" {
		t.Fatalf("placed = %v", res.Placed)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0].ID != "wide" {
		t.Fatalf("unresolved = %v", res.Unresolved)
	}

	root = doctree.El("", doctree.NewText("x"))
	res = weave.Weave(root, []entry.Entry{ent("zero", 0, 0), ent("one", 1, 1)}, weave.Options{})
	if len(res.Unresolved) != 1 || res.Unresolved[0].ID != "zero" || len(res.Placed) != 1 {
		t.Fatalf("line 0 entry: placed=%v unresolved=%v", res.Placed, res.Unresolved)
	}
}

func TestWeave_EmptyQueueAndEmptyTree(t *testing.T) {
	root := doctree.El("", doctree.NewText("abc"))
	res := weave.Weave(root, nil, weave.Options{})
	if len(res.Placed) != 0 || root.FirstChild.NextSibling != nil {
		t.Fatal("empty queue changed the tree")
	}

	empty := doctree.NewRoot()
	res = weave.Weave(empty, []entry.Entry{ent("0", 1, 1)}, weave.Options{})
	if len(res.Unresolved) != 1 {
		t.Fatalf("unresolved = %v", res.Unresolved)
	}
}

func TestWeave_ColumnUnits(t *testing.T) {
	build := func() *doctree.Node {
		return doctree.El("", doctree.NewText("😀"), doctree.NewText("x"))
	}
	root := build()
	res := weave.Weave(root, []entry.Entry{ent("0", 1, 3)}, weave.Options{Columns: source.UTF16})
	if res.Placed[0].Marker.PrevSibling.Data != "😀" {
		t.Error("utf16: marker should follow the emoji (2 code units)")
	}

	root = build()
	res = weave.Weave(root, []entry.Entry{ent("0", 1, 3)}, weave.Options{Columns: source.Rune})
	if res.Placed[0].Marker.PrevSibling.Data != "x" {
		t.Error("rune: marker should follow x")
	}
}

func TestWeave_SkipsExistingMarkers(t *testing.T) {
	root := doctree.El("", doctree.NewText("abc"), doctree.NewText("def"))
	first := weave.Weave(root, []entry.Entry{ent("a", 1, 2)}, weave.Options{FileID: "f"})
	mustCheck(t, "abcdef", root, first)

	second := weave.Weave(root, []entry.Entry{ent("b", 1, 5)}, weave.Options{FileID: "f"})
	if len(second.Placed) != 1 {
		t.Fatalf("placed = %d", len(second.Placed))
	}
	if c := second.Placed[0].Cursor; c != (source.LineCol{Line: 1, Col: 7}) {
		t.Errorf("cursor = %s; icon text must not advance the cursor", c)
	}
	if doctree.Text(root) != "abcdef" {
		t.Error("text changed")
	}
}

func TestWeave_RenderedOutputWeavesAgain(t *testing.T) {
	src := "<span class=\"k\">abc</span>\ndef"
	root, err := doctree.ParseHTMLString(src)
	if err != nil {
		t.Fatal(err)
	}
	before := doctree.Text(root)
	first := weave.Weave(root, []entry.Entry{ent("a", 1, 2), ent("b", 2, 1)}, weave.Options{FileID: "f"})
	mustCheck(t, before, root, first)

	reparsed, err := doctree.ParseHTMLString(render(t, root))
	if err != nil {
		t.Fatal(err)
	}
	if got := doctree.Text(reparsed); got != before {
		t.Fatalf("text after re-parse = %q, want %q", got, before)
	}
	if got := len(doctree.Markers(reparsed)); got != 2 {
		t.Fatalf("re-parsed markers = %d, want 2", got)
	}

	second := weave.Weave(reparsed, []entry.Entry{ent("c", 1, 3), ent("d", 2, 2)}, weave.Options{FileID: "f", Audit: true})
	mustCheck(t, before, reparsed, second)
	if len(second.Placed) != 2 || second.AuditFindings != 0 {
		t.Fatalf("placed=%d findings=%d", len(second.Placed), second.AuditFindings)
	}
	want := []source.LineCol{{Line: 1, Col: 4}, {Line: 2, Col: 4}}
	for i, p := range second.Placed {
		if p.Cursor != want[i] {
			t.Errorf("placement %d cursor = %s, want %s", i, p.Cursor, want[i])
		}
	}
	if got := len(doctree.Markers(reparsed)); got != 4 {
		t.Errorf("markers after second weave = %d, want 4", got)
	}
}

func TestWeave_AuditDoesNotChangePlacement(t *testing.T) {
	src := `<span class="k">function</span> f<span class="p">(</span>a<span class="p">)</span> <span class="p">{</span>
  <span class="k">return</span> a<span class="p">.</span>x<span class="p">;</span>
<span class="p">}</span>
`
	queue := []entry.Entry{ent("0", 1, 10), ent("1", 2, 11), ent("2", 2, 11), ent("3", 3, 1), ent("4", 4, 1)}

	var outputs []string
	for _, audit := range []bool{false, true} {
		root, err := doctree.ParseHTMLString(src)
		if err != nil {
			t.Fatal(err)
		}
		before := doctree.Text(root)
		bag := diag.NewBag(0)
		res := weave.Weave(root, queue, weave.Options{FileID: "1", Audit: audit, Reporter: diag.BagReporter{Bag: bag}})
		mustCheck(t, before, root, res)
		if res.AuditFindings != 0 || bag.Len() != 0 {
			t.Fatalf("audit=%v findings:\n%s", audit, diag.FormatShort(bag.Items()))
		}
		outputs = append(outputs, render(t, root))
	}
	if outputs[0] != outputs[1] {
		t.Fatalf("audit changed output:\n%s\n---\n%s", outputs[0], outputs[1])
	}
}

func TestWeave_AuditReportsOutOfOrderQueue(t *testing.T) {
	root := doctree.El("", doctree.NewText("ab\ncd"))
	bag := diag.NewBag(0)
	weave.Weave(root, []entry.Entry{ent("late", 2, 1), ent("early", 1, 1)}, weave.Options{
		Audit:    true,
		Reporter: diag.BagReporter{Bag: bag},
	})
	if bag.CountCode(diag.WeaveOutOfOrder) != 1 {
		t.Fatalf("diagnostics:\n%s", diag.FormatShort(bag.Items()))
	}
}

func TestWeave_TracesPlacements(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDebug)
	root := doctree.El("", doctree.NewText("abc"))
	weave.Weave(root, []entry.Entry{ent("0", 1, 1), ent("9", 5, 1)}, weave.Options{File: "a.js", Tracer: ring})

	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Kind.String()+":"+ev.Name)
	}
	got := strings.Join(names, " ")
	want := "begin:weave:a.js point:marker point:unresolved end:weave:a.js"
	if got != want {
		t.Errorf("events = %q, want %q", got, want)
	}
}

// TestWeave_GeneratedDocuments weaves entries at every reachable position of
// randomly tokenized sources and checks the invariants.
func TestWeave_GeneratedDocuments(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	words := []string{"let", " ", "x", "=", "foo", "(", ")", ";", "\n", "  ", "bar.baz", "\n\n", "é", "→"}

	for iter := 0; iter < 50; iter++ {
		var sb strings.Builder
		root := doctree.NewRoot()
		for i := 0; i < 40; i++ {
			tok := words[rng.Intn(len(words))]
			if rng.Intn(3) == 0 {
				tok += words[rng.Intn(len(words))]
			}
			sb.WriteString(tok)
			if rng.Intn(2) == 0 {
				root.AppendChild(doctree.El("span", doctree.NewText(tok)))
			} else {
				root.AppendChild(doctree.NewText(tok))
			}
		}
		src := sb.String()
		lens := source.LineLengths(src, source.UTF16)

		var codes, ics []entry.Entry
		for i := 0; i < 15; i++ {
			line := rng.Intn(len(lens)) + 1
			col := rng.Intn(lens[line-1]+1) + 1
			e := ent(fmt.Sprint(i), line, col)
			if i%2 == 0 {
				codes = append(codes, e)
			} else {
				e.Kind = entry.KindIC
				ics = append(ics, e)
			}
		}
		queue := entry.Order(codes, nil, ics)

		bag := diag.NewBag(0)
		res := weave.Weave(root, queue, weave.Options{Audit: true, Reporter: diag.BagReporter{Bag: bag}})
		mustCheck(t, src, root, res)
		if len(res.Unresolved) != 0 {
			t.Fatalf("iter %d: unresolved %v in %q", iter, res.Unresolved, src)
		}
		if bag.Len() != 0 {
			t.Fatalf("iter %d: audit findings:\n%s", iter, diag.FormatShort(bag.Items()))
		}
		for i := range res.Placed {
			if res.Placed[i].Entry.ID != queue[i].ID {
				t.Fatalf("iter %d: placement %d is %s, queue has %s", iter, i, res.Placed[i].Entry.ID, queue[i].ID)
			}
		}
	}
}
