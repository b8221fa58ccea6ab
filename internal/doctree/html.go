package doctree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML parses a highlighted-source fragment, as found inside
// <pre><code>...</code></pre>, into a tree rooted at a synthetic container.
// Comments and doctypes are dropped: they carry no source text. Anchors with
// the MarkerClass class become MarkerNodes, so woven output can be re-read.
func ParseHTML(r io.Reader) (*Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "code", DataAtom: atom.Code}
	nodes, err := html.ParseFragment(r, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	root := NewRoot()
	for _, n := range nodes {
		if c := fromHTML(n); c != nil {
			root.AppendChild(c)
		}
	}
	return root, nil
}

// ParseHTMLString is ParseHTML over a string.
func ParseHTMLString(s string) (*Node, error) {
	return ParseHTML(strings.NewReader(s))
}

// fromHTML converts iteratively with an explicit stack.
func fromHTML(src *html.Node) *Node {
	top := convert(src)
	if top == nil {
		return nil
	}
	type frame struct {
		src *html.Node
		dst *Node
	}
	stack := []frame{{src, top}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for c := f.src.FirstChild; c != nil; c = c.NextSibling {
			d := convert(c)
			if d == nil {
				continue
			}
			f.dst.AppendChild(d)
			if c.FirstChild != nil {
				stack = append(stack, frame{c, d})
			}
		}
	}
	return top
}

func convert(n *html.Node) *Node {
	switch n.Type {
	case html.TextNode:
		return NewText(n.Data)
	case html.ElementNode:
		el := NewElement(n.Data)
		if len(n.Attr) > 0 {
			el.Attr = make([]Attr, 0, len(n.Attr))
			for _, a := range n.Attr {
				key := a.Key
				if a.Namespace != "" {
					key = a.Namespace + ":" + a.Key
				}
				el.Attr = append(el.Attr, Attr{Key: key, Val: a.Val})
			}
		}
		if n.DataAtom == atom.A && isMarkerClass(el) {
			el.Kind = MarkerNode
		}
		return el
	}
	return nil
}

// isMarkerClass reports whether el carries MarkerClass. Such anchors come from
// an earlier run and parse back as markers with no entry.
func isMarkerClass(el *Node) bool {
	class, ok := el.GetAttr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(class) {
		if c == MarkerClass {
			return true
		}
	}
	return false
}

// Render writes the children of root as HTML. The root container itself is
// not emitted, so Render(ParseHTML(x)) reproduces the fragment.
func Render(w io.Writer, root *Node) error {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(w, toHTML(c)); err != nil {
			return fmt.Errorf("render html: %w", err)
		}
	}
	return nil
}

// RenderString is Render into a string.
func RenderString(root *Node) (string, error) {
	var b strings.Builder
	if err := Render(&b, root); err != nil {
		return "", err
	}
	return b.String(), nil
}

func toHTML(src *Node) *html.Node {
	top := toHTMLNode(src)
	type frame struct {
		src *Node
		dst *html.Node
	}
	stack := []frame{{src, top}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for c := f.src.FirstChild; c != nil; c = c.NextSibling {
			d := toHTMLNode(c)
			f.dst.AppendChild(d)
			if c.FirstChild != nil {
				stack = append(stack, frame{c, d})
			}
		}
	}
	return top
}

func toHTMLNode(n *Node) *html.Node {
	if n.Kind == TextNode {
		return &html.Node{Type: html.TextNode, Data: n.Data}
	}
	out := &html.Node{Type: html.ElementNode, Data: n.Data, DataAtom: atom.Lookup([]byte(n.Data))}
	for _, a := range n.Attr {
		out.Attr = append(out.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	return out
}
