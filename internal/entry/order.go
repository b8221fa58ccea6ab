package entry

import "sort"

// Order merges three category sequences into one queue sorted by (line, column).
// Entries on the same position keep category order (codes, deopts, ics) and,
// within a category, their input order. The inputs are not modified.
func Order(codes, deopts, ics []Entry) []Entry {
	out := make([]Entry, 0, len(codes)+len(deopts)+len(ics))
	out = append(out, codes...)
	out = append(out, deopts...)
	out = append(out, ics...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Before(&out[j])
	})
	return out
}

// IsOrdered returns the index of the first entry that sorts before its
// predecessor, and true when there is none.
func IsOrdered(queue []Entry) (int, bool) {
	for i := 1; i < len(queue); i++ {
		if queue[i].Before(&queue[i-1]) {
			return i, false
		}
	}
	return -1, true
}
