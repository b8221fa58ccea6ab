package weave

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"deoptlens/internal/diag"
	"deoptlens/internal/doctree"
	"deoptlens/internal/entry"
	"deoptlens/internal/source"
	"deoptlens/internal/trace"
)

// Options configures one weave.
type Options struct {
	// FileID is the caller's identifier for the file, used in marker ids.
	FileID string
	// File is the path shown in diagnostics.
	File string
	// ActiveID is the marker id to flag as active, if any.
	ActiveID string
	// Audit enables the self-consistency checks. Placement is unaffected.
	Audit bool
	// Columns is the unit entry columns are expressed in.
	Columns source.ColumnUnit

	Reporter diag.Reporter
	Tracer   trace.Tracer
	// ParentSpan links weave trace events to the caller's span.
	ParentSpan uint64
}

// Placement records where a marker went.
type Placement struct {
	Entry  *entry.Entry
	Marker *doctree.Node
	// Cursor is the cursor value at insertion; Cursor.Line == Entry.Line and
	// Cursor.Col >= Entry.Column.
	Cursor source.LineCol
}

// Result is the outcome of a weave.
type Result struct {
	Placed []Placement
	// Unresolved holds entries no fragment boundary reached, in queue order.
	Unresolved []entry.Entry
	// End is the cursor after the last text fragment.
	End source.LineCol
	// AuditFindings counts diagnostics raised by audit mode.
	AuditFindings int
}

// weaver is the traversal state of a single Weave call.
type weaver struct {
	opts  Options
	root  *doctree.Node
	queue []entry.Entry
	line  int
	col   int
	res   *Result
	span  uint64

	// audit only
	lines   *source.LineTable
	visited strings.Builder
}

// Weave inserts a marker for every entry of queue into the tree under root.
// queue must be sorted by (line, column), as entry.Order produces; it is
// copied, not modified. The tree is modified in place.
func Weave(root *doctree.Node, queue []entry.Entry, opts Options) *Result {
	if opts.Reporter == nil {
		opts.Reporter = diag.NopReporter{}
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	w := &weaver{
		opts:  opts,
		root:  root,
		queue: append([]entry.Entry(nil), queue...),
		line:  1,
		col:   1,
		res:   &Result{},
	}
	span := trace.Begin(opts.Tracer, trace.ScopeWeave, "weave:"+opts.File, opts.ParentSpan)
	w.span = span.ID()

	var original string
	if opts.Audit {
		original = doctree.Text(root)
		w.lines = source.NewLineTable(original, opts.Columns)
		if idx, ok := entry.IsOrdered(w.queue); !ok {
			w.problem(diag.SevError, diag.WeaveOutOfOrder, w.queue[idx].Line, w.queue[idx].Column, w.queue[idx].ID,
				fmt.Sprintf("entry %s sorts before its predecessor %s", w.queue[idx], w.queue[idx-1]))
		}
	}

	w.dropPassed()
	w.run()

	w.res.End = source.LineCol{Line: clampU32(w.line), Col: clampU32(w.col)}
	for i := range w.queue {
		w.unresolved(w.queue[i], "past the end of the document")
	}
	w.queue = nil

	if opts.Audit {
		if got := w.visited.String(); got != original {
			w.problem(diag.SevWarning, diag.AuditTextMismatch, w.line, w.col, "",
				fmt.Sprintf("traversal saw %d characters of text, document has %d", len(got), len(original)))
		}
		if after := doctree.Text(root); after != original {
			w.problem(diag.SevError, diag.AuditTextMismatch, w.line, w.col, "",
				"document text changed during weaving")
		}
	}

	span.WithExtra("placed", fmt.Sprint(len(w.res.Placed))).
		WithExtra("unresolved", fmt.Sprint(len(w.res.Unresolved))).
		End("")
	return w.res
}

// WeaveSet orders set and weaves it.
func WeaveSet(root *doctree.Node, set entry.Set, opts Options) *Result {
	return Weave(root, set.Ordered(), opts)
}

func (w *weaver) run() {
	n := w.root.FirstChild
	for n != nil {
		if len(w.queue) == 0 && !w.opts.Audit {
			return
		}
		if w.opts.Audit && !doctree.Contains(w.root, n) {
			w.problem(diag.SevError, diag.AuditEscapedRoot, w.line, w.col, "",
				fmt.Sprintf("traversal reached a %s node outside the root", n.Kind))
		}
		switch n.Kind {
		case doctree.TextNode:
			n = w.text(n)
		case doctree.MarkerNode:
			// markers from an earlier weave: zero characters
			n = doctree.DeepestLast(n)
		case doctree.ElementNode:
		}
		n = doctree.Next(n, w.root)
	}
}

// text advances the cursor over n and places markers. It returns the node the
// traversal continues from.
func (w *weaver) text(n *doctree.Node) *doctree.Node {
	if w.opts.Audit {
		w.visited.WriteString(n.Data)
	}
	anchor := n
	cur := n
	for i, frag := range strings.Split(n.Data, "\n") {
		if i > 0 {
			if w.opts.Audit {
				w.checkLine()
			}
			w.line++
			w.col = 1
			w.dropPassed()
		}
		w.col += w.opts.Columns.Len(frag)

		for len(w.queue) > 0 && w.queue[0].Reaches(w.line, w.col) {
			anchor = w.place(anchor)
			cur = doctree.DeepestLast(anchor)
		}
	}
	return cur
}

// place dequeues the front entry and inserts its marker after anchor.
func (w *weaver) place(anchor *doctree.Node) *doctree.Node {
	e := &w.queue[0]
	w.queue = w.queue[1:]

	m := doctree.NewMarker(w.opts.FileID, e, w.opts.ActiveID)
	doctree.InsertAfter(anchor, m)

	at := source.LineCol{Line: clampU32(w.line), Col: clampU32(w.col)}
	w.res.Placed = append(w.res.Placed, Placement{Entry: e, Marker: m, Cursor: at})
	trace.Point(w.opts.Tracer, trace.ScopeNode, "marker", e.String(), w.span,
		map[string]string{"cursor": at.String()})
	return m
}

// dropPassed moves entries whose line is already behind the cursor to the
// unresolved list. Their column lay beyond the end of their line, so nothing
// will ever reach them, and leaving them at the front would block the rest
// of the queue.
func (w *weaver) dropPassed() {
	for len(w.queue) > 0 && w.queue[0].Line < w.line {
		e := w.queue[0]
		w.queue = w.queue[1:]
		w.unresolved(e, "beyond the end of its line")
	}
}

func (w *weaver) unresolved(e entry.Entry, why string) {
	w.res.Unresolved = append(w.res.Unresolved, e)
	pos := source.MustPos(w.file(e), e.Line, e.Column)
	diag.Emit(w.opts.Reporter, diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.WeaveUnresolved,
		Primary:  pos,
		EntryID:  e.ID,
		Message:  fmt.Sprintf("%s entry %s at %d:%d could not be placed: %s", e.Kind, e.ID, e.Line, e.Column, why),
	})
	trace.Point(w.opts.Tracer, trace.ScopeProblem, "unresolved", e.String(), w.span, nil)
}

// checkLine compares the cursor at a line boundary with the line length.
func (w *weaver) checkLine() {
	n, ok := w.lines.Len(clampU32(w.line))
	if !ok {
		w.problem(diag.SevWarning, diag.AuditLineLength, w.line, w.col, "",
			fmt.Sprintf("line %d does not exist in the document text", w.line))
		return
	}
	if n+1 != w.col {
		w.problem(diag.SevWarning, diag.AuditLineLength, w.line, w.col, "",
			fmt.Sprintf("line %d: expected column %d at line end, cursor is at %d", w.line, n+1, w.col))
	}
}

func (w *weaver) problem(sev diag.Severity, code diag.Code, line, col int, entryID, msg string) {
	w.res.AuditFindings++
	diag.Emit(w.opts.Reporter, diag.Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  source.MustPos(w.opts.File, line, col),
		EntryID:  entryID,
		Message:  msg,
	})
	trace.Point(w.opts.Tracer, trace.ScopeProblem, code.ID(), msg, w.span, nil)
}

func (w *weaver) file(e entry.Entry) string {
	if e.File != "" {
		return e.File
	}
	return w.opts.File
}

func clampU32(v int) uint32 {
	u, err := safecast.Conv[uint32](v)
	if err != nil {
		return 0
	}
	return u
}
