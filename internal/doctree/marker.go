package doctree

import (
	"strings"

	"deoptlens/internal/entry"
)

// MarkerClass is the base class of every marker anchor.
const MarkerClass = "deoptMarker"

// MarkerID is the addressable id of a marker: /file/{fileID}/{entryID}.
func MarkerID(fileID, entryID string) string {
	return "/file/" + fileID + "/" + entryID
}

// NewMarker builds the marker subtree for e:
//
//	<a id="/file/F/ID" href="#/file/F/ID" class="deoptMarker sevN"><mark>ICON</mark></a>
//
// The anchor gets the "active" class when its id equals activeID.
func NewMarker(fileID string, e *entry.Entry, activeID string) *Node {
	id := MarkerID(fileID, e.ID)
	classes := []string{MarkerClass, e.Severity.Class()}
	if activeID != "" && activeID == id {
		classes = append(classes, "active")
	}
	a := &Node{
		Kind:  MarkerNode,
		Data:  "a",
		Entry: e,
		Attr: []Attr{
			{Key: "id", Val: id},
			{Key: "href", Val: "#" + id},
			{Key: "class", Val: strings.Join(classes, " ")},
		},
	}
	mark := NewElement("mark")
	mark.AppendChild(NewText(e.Kind.Icon()))
	a.AppendChild(mark)
	return a
}
