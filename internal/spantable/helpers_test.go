package spantable_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"spantable/internal/spantable"
)

// node is an in-memory Element.
type node struct {
	name  string
	attrs map[string]string
	text  string
	kids  []*node
}

func (n *node) Name() string { return n.name }

func (n *node) Children(names ...string) []spantable.Element {
	var out []spantable.Element
	for _, k := range n.kids {
		if len(names) == 0 || contains(names, k.name) {
			out = append(out, k)
		}
	}
	return out
}

func (n *node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *node) Text() string { return n.text }

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func el(name string, kids ...*node) *node {
	return &node{name: name, kids: kids}
}

// cell builds a td; attrs are key/value pairs.
func cell(text string, attrs ...string) *node {
	n := &node{name: "td", text: text, attrs: map[string]string{}}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.attrs[attrs[i]] = attrs[i+1]
	}
	return n
}

func th(text string, attrs ...string) *node {
	n := cell(text, attrs...)
	n.name = "th"
	return n
}

func tr(cells ...*node) *node { return el("tr", cells...) }

func rowsOf(rows ...*node) [][]spantable.Element {
	out := make([][]spantable.Element, len(rows))
	for i, r := range rows {
		out[i] = r.Children("td", "th")
	}
	return out
}

func str(s string) *string { return &s }

// texts converts a row of optional strings for readable comparisons; nil
// becomes "<nil>".
func texts(row []*string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v == nil {
			out[i] = "<nil>"
		} else {
			out[i] = *v
		}
	}
	return out
}

func allTexts(rows [][]*string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = texts(r)
	}
	return out
}

// requireGridInvariants checks that every in-bounds coordinate is exactly
// one of anchor, alias or hole and that aliases point at anchors.
func requireGridInvariants(t *testing.T, s *spantable.Section) {
	t.Helper()
	depth, width := s.Dims()
	for i := 0; i < depth; i++ {
		for j := 0; j < width; j++ {
			at, ok := s.AnchorOf(i, j)
			c, err := s.CellAt(i, j)
			require.NoError(t, err)
			if !ok {
				require.Nil(t, c, "hole at (%d,%d) must have no cell", i, j)
				continue
			}
			require.True(t, s.IsAnchor(at.Row, at.Col), "(%d,%d) resolves to non-anchor %s", i, j, at)
			anchor, err := s.CellAt(at.Row, at.Col)
			require.NoError(t, err)
			require.Same(t, anchor, c)
		}
	}
}
