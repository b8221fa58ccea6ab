package entry

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"deoptlens/internal/diag"
	"deoptlens/internal/source"
)

// FileEntries is the per-source-file section of a Document.
type FileEntries struct {
	ID string `json:"id,omitempty" msgpack:"id,omitempty"`
	Set
}

// Document is the upstream payload: entries grouped by source file key.
type Document struct {
	Files map[string]FileEntries `json:"files" msgpack:"files"`
}

// Decode reads a Document from JSON. Unknown entry types fail decoding.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	if doc.Files == nil {
		doc.Files = make(map[string]FileEntries)
	}
	return &doc, nil
}

// Keys returns the source file keys in sorted order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.Files))
	for k := range d.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ForFile returns the set for key and the file id used in marker anchors.
// When the payload carries no id, the key's index in Keys is used.
func (d *Document) ForFile(key string) (Set, string, bool) {
	fe, ok := d.Files[key]
	if !ok {
		return Set{}, "", false
	}
	if fe.ID != "" {
		return fe.Set, fe.ID, true
	}
	for i, k := range d.Keys() {
		if k == key {
			return fe.Set, fmt.Sprint(i), true
		}
	}
	return fe.Set, "", true
}

// Validate reports entries that no weave could ever place correctly:
// non-positive positions, kinds that disagree with their section, and
// duplicate ids within a file.
func (d *Document) Validate(r diag.Reporter) int {
	bad := 0
	for _, key := range d.Keys() {
		fe := d.Files[key]
		seen := make(map[string]bool, fe.Len())
		check := func(want Kind, list []Entry) {
			for i := range list {
				e := &list[i]
				file := e.File
				if file == "" {
					file = key
				}
				pos := source.MustPos(file, e.Line, e.Column)
				if e.Line < 1 || e.Column < 1 {
					bad++
					diag.Emit(r, diag.Diagnostic{
						Severity: diag.SevError, Code: diag.EntryBadPosition, Primary: pos, EntryID: e.ID,
						Message: fmt.Sprintf("%s entry %q has position %d:%d", want, e.ID, e.Line, e.Column),
					})
				}
				if e.Kind != want {
					bad++
					diag.Emit(r, diag.Diagnostic{
						Severity: diag.SevError, Code: diag.EntryUnknownKind, Primary: pos, EntryID: e.ID,
						Message: fmt.Sprintf("entry %q of type %s listed under %s", e.ID, e.Kind, want),
					})
				}
				if e.ID != "" {
					if seen[e.ID] {
						diag.Emit(r, diag.Diagnostic{
							Severity: diag.SevWarning, Code: diag.EntryDuplicateID, Primary: pos, EntryID: e.ID,
							Message: fmt.Sprintf("entry id %q appears more than once; marker anchors will collide", e.ID),
						})
					}
					seen[e.ID] = true
				}
			}
		}
		check(KindCode, fe.Codes)
		check(KindDeopt, fe.Deopts)
		check(KindIC, fe.ICs)
	}
	return bad
}
