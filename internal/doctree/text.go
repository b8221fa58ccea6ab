package doctree

import "strings"

// Text concatenates the text nodes under root in document order, skipping
// marker subtrees. For a highlighted document it equals the source file.
func Text(root *Node) string {
	var b strings.Builder
	Walk(root, func(n *Node) bool {
		switch n.Kind {
		case TextNode:
			b.WriteString(n.Data)
		case MarkerNode:
			return false
		}
		return true
	})
	return b.String()
}

// Markers returns the marker nodes under root in document order.
func Markers(root *Node) []*Node {
	var out []*Node
	Walk(root, func(n *Node) bool {
		if n.Kind == MarkerNode {
			out = append(out, n)
			return false
		}
		return true
	})
	return out
}

// Count returns the number of nodes of each kind under root.
func Count(root *Node) map[Kind]int {
	out := make(map[Kind]int, 3)
	Walk(root, func(n *Node) bool {
		out[n.Kind]++
		return true
	})
	return out
}
