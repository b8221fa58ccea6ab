package testkit

import (
	"fmt"

	"deoptlens/internal/doctree"
	"deoptlens/internal/weave"
)

// CheckWoven runs the weave invariants on a woven tree:
//  1. the document text equals before (markers add no characters)
//  2. every placement's cursor is on the entry line at or past its column
//  3. markers appear in the tree in placement order, one per placement;
//     markers parsed from an earlier run (no entry) are not counted
//  4. no marker is nested inside another marker
func CheckWoven(before string, root *doctree.Node, res *weave.Result) error {
	if root == nil || res == nil {
		return fmt.Errorf("nil root or result")
	}
	if after := doctree.Text(root); after != before {
		return fmt.Errorf("text changed:\nbefore %q\nafter  %q", before, after)
	}
	for i, p := range res.Placed {
		if int(p.Cursor.Line) != p.Entry.Line || int(p.Cursor.Col) < p.Entry.Column {
			return fmt.Errorf("placement %d: entry %s placed at cursor %s", i, p.Entry, p.Cursor)
		}
	}
	all := doctree.Markers(root)
	if nested := doctree.Count(root)[doctree.MarkerNode] - len(all); nested > 0 {
		return fmt.Errorf("%d markers nested inside other markers", nested)
	}
	markers := all[:0:0]
	for _, m := range all {
		if m.Entry != nil {
			markers = append(markers, m)
		}
	}
	if len(markers) != len(res.Placed) {
		return fmt.Errorf("tree has %d markers, result lists %d placements", len(markers), len(res.Placed))
	}
	for i, m := range markers {
		if m != res.Placed[i].Marker {
			return fmt.Errorf("marker %d in tree is %s, placement %d is %s", i, m.Entry, i, res.Placed[i].Entry)
		}
	}
	return nil
}
