package diag

import (
	"fmt"
	"strings"
)

// FormatShort renders diagnostics one per line:
//
//	<severity> <ID> <file>:<line>:<col> <message>
//
// Input order is kept; call Bag.Sort first for stable output.
func FormatShort(items []Diagnostic) string {
	var b strings.Builder
	for i, d := range items {
		msg := strings.ReplaceAll(d.Message, "\n", " ")
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity.Label(), d.Code.ID(), d.Primary, msg)
		if i < len(items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
