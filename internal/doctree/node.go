package doctree

import (
	"fmt"

	"deoptlens/internal/entry"
)

// Kind is the closed set of node kinds.
type Kind uint8

const (
	// TextNode holds source text and is the only kind that moves the cursor.
	TextNode Kind = iota + 1
	// ElementNode is markup produced by the highlighter.
	ElementNode
	// MarkerNode is a synthetic element carrying one entry. Its subtree
	// contributes nothing to the document text.
	MarkerNode
)

func (k Kind) String() string {
	switch k {
	case TextNode:
		return "text"
	case ElementNode:
		return "element"
	case MarkerNode:
		return "marker"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Attr is a markup attribute.
type Attr struct {
	Key, Val string
}

// Node is a node of a rendered document. Links mirror golang.org/x/net/html.
type Node struct {
	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node

	Kind Kind
	// Data is the text for TextNode and the tag name otherwise.
	Data string
	Attr []Attr

	// Entry is set on markers built by NewMarker; markers parsed from HTML
	// have none.
	Entry *entry.Entry
}

// NewText returns a detached text node.
func NewText(s string) *Node {
	return &Node{Kind: TextNode, Data: s}
}

// NewElement returns a detached element.
func NewElement(tag string, attrs ...Attr) *Node {
	return &Node{Kind: ElementNode, Data: tag, Attr: attrs}
}

// NewRoot returns the container every parsed document hangs from.
func NewRoot() *Node {
	return NewElement("")
}

// El is a builder helper for tests and fixtures: NewElement plus children.
func El(tag string, children ...*Node) *Node {
	n := NewElement(tag)
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// GetAttr returns the value of key.
func (n *Node) GetAttr(key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// AppendChild adds c as the last child of n. c must be detached.
func (n *Node) AppendChild(c *Node) {
	if c.Parent != nil || c.PrevSibling != nil || c.NextSibling != nil {
		panic("doctree: AppendChild called for an attached child Node")
	}
	last := n.LastChild
	if last != nil {
		last.NextSibling = c
	} else {
		n.FirstChild = c
	}
	n.LastChild = c
	c.Parent = n
	c.PrevSibling = last
}

// InsertAfter inserts c as the next sibling of ref. c must be detached and
// ref must have a parent.
func InsertAfter(ref, c *Node) {
	if c.Parent != nil || c.PrevSibling != nil || c.NextSibling != nil {
		panic("doctree: InsertAfter called for an attached Node")
	}
	parent := ref.Parent
	if parent == nil {
		panic("doctree: InsertAfter called on a detached reference")
	}
	next := ref.NextSibling
	c.Parent = parent
	c.PrevSibling = ref
	c.NextSibling = next
	ref.NextSibling = c
	if next != nil {
		next.PrevSibling = c
	} else {
		parent.LastChild = c
	}
}

// DeepestLast follows LastChild links down from n.
func DeepestLast(n *Node) *Node {
	for n.LastChild != nil {
		n = n.LastChild
	}
	return n
}

// Contains reports whether n is root or a descendant of root.
func Contains(root, n *Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}

// Next returns the node after n in pre-order, never leaving root's subtree.
// It returns nil when the traversal is over. The walk up is a loop, so depth
// is bounded only by the tree itself.
func Next(n, root *Node) *Node {
	if n == nil {
		return nil
	}
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for p := n; p != nil && p != root; p = p.Parent {
		if p.NextSibling != nil {
			return p.NextSibling
		}
	}
	return nil
}

// Walk visits root's descendants in pre-order. Returning false from fn skips
// the children of the node.
func Walk(root *Node, fn func(*Node) bool) {
	n := root.FirstChild
	for n != nil {
		if !fn(n) {
			n = skip(n, root)
			continue
		}
		n = Next(n, root)
	}
}

// skip is Next without descending into n.
func skip(n, root *Node) *Node {
	for p := n; p != nil && p != root; p = p.Parent {
		if p.NextSibling != nil {
			return p.NextSibling
		}
	}
	return nil
}
