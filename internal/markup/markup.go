// Package markup adapts parsed HTML trees to spantable.Element.
package markup

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"spantable/internal/spantable"
)

// Node wraps an element node. Two Nodes are equal when they wrap the same
// *html.Node, so cells compare by identity.
type Node struct {
	n *html.Node
}

// FromNode returns nil unless n is an element node.
func FromNode(n *html.Node) spantable.Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	return Node{n: n}
}

// FromSelection wraps the first node of sel.
func FromSelection(sel *goquery.Selection) spantable.Element {
	if sel == nil || sel.Length() == 0 {
		return nil
	}
	return FromNode(sel.Get(0))
}

func (n Node) HTML() *html.Node { return n.n }

// Selection returns a goquery selection rooted at the node.
func (n Node) Selection() *goquery.Selection {
	return goquery.NewDocumentFromNode(n.n).Selection
}

func (n Node) Name() string { return strings.ToLower(n.n.Data) }

func (n Node) Children(names ...string) []spantable.Element {
	var out []spantable.Element
	for c := n.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if len(names) > 0 && !slices.Contains(names, strings.ToLower(c.Data)) {
			continue
		}
		out = append(out, Node{n: c})
	}
	return out
}

func (n Node) Attr(name string) (string, bool) {
	for _, a := range n.n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func (n Node) Text() string {
	var b strings.Builder
	writeText(n.n, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

// writeText appends rendered text, skipping non-content elements. Line
// breaks and block boundaries become spaces so words do not run together.
func writeText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipText(n.DataAtom) {
			return
		}
		if n.DataAtom == atom.Br {
			b.WriteByte(' ')
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, b)
	}
	if n.Type == html.ElementNode && blockBoundary(n.DataAtom) {
		b.WriteByte(' ')
	}
}

func skipText(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

func blockBoundary(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Tr, atom.Td, atom.Th,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}
