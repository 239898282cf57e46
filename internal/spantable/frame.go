package spantable

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Frame is a whole table: its sections in document order plus the head,
// body and foot picked out of them.
type Frame struct {
	physical []*Section
	logical  []*Section
	head     *Section
	body     *Section
	foot     *Section
	depth    int
	width    int
}

// BuildFrame groups the rows of table and resolves each group.
func BuildFrame(table Element) *Frame {
	groups := GroupSections(table)
	sections := make([]*Section, len(groups))
	for i, g := range groups {
		sections[i] = newSection(g.Class, RowCells(g.Rows))
	}
	return NewFrame(sections)
}

// NewFrame composes sections given in document order.
func NewFrame(physical []*Section) *Frame {
	f := &Frame{physical: physical}
	for _, s := range physical {
		switch {
		case s.class == Head && f.head == nil:
			f.head = s
		case s.class == Foot && f.foot == nil:
			f.foot = s
		}
		if s.class.bodyLike() && f.body == nil {
			f.body = s
		}
	}

	if f.head != nil {
		f.logical = append(f.logical, f.head)
	}
	for _, s := range physical {
		if s != f.head && s != f.foot {
			f.logical = append(f.logical, s)
		}
	}
	if f.foot != nil {
		f.logical = append(f.logical, f.foot)
	}

	for _, s := range f.logical {
		f.depth += s.depth
		f.width = max(f.width, s.width)
	}
	return f
}

func (f *Frame) Head() *Section { return f.head }
func (f *Frame) Body() *Section { return f.body }
func (f *Frame) Foot() *Section { return f.foot }

// Physical returns the sections in document order.
func (f *Frame) Physical() []*Section { return slices.Clone(f.physical) }

// Sections returns the sections in rendering order: first head, everything
// else in document order, first foot.
func (f *Frame) Sections() []*Section { return slices.Clone(f.logical) }

func (f *Frame) Len() int   { return len(f.logical) }
func (f *Frame) Depth() int { return f.depth }

// Width is the widest section. It is undefined for a frame with no
// sections, reported by ok=false.
func (f *Frame) Width() (width int, ok bool) {
	if len(f.logical) == 0 {
		return 0, false
	}
	return f.width, true
}

func (f *Frame) Dims() (depth, width int, ok bool) {
	width, ok = f.Width()
	return f.depth, width, ok
}

// Rows yields every row of every section in rendering order, right-padded
// with nil to the frame width. Each call starts over.
func (f *Frame) Rows() iter.Seq[[]*string] {
	return func(yield func([]*string) bool) {
		for _, s := range f.logical {
			for i := 0; i < s.depth; i++ {
				if !yield(padRight(s.textRow(i), f.width)) {
					return
				}
			}
		}
	}
}

// CellRows is Rows with the covering cells instead of their text.
func (f *Frame) CellRows() iter.Seq[[]Element] {
	return func(yield func([]Element) bool) {
		for _, s := range f.logical {
			for i := 0; i < s.depth; i++ {
				if !yield(padRight(s.cellRow(i), f.width)) {
					return
				}
			}
		}
	}
}

func (f *Frame) Text() [][]*string {
	return slices.Collect(f.Rows())
}

// Overlaps collects the overlaps of every section.
func (f *Frame) Overlaps() map[*Section][]Overlap {
	out := map[*Section][]Overlap{}
	for _, s := range f.physical {
		if len(s.overlaps) > 0 {
			out[s] = s.Overlaps()
		}
	}
	return out
}

func (f *Frame) String() string {
	dims := "nil"
	if depth, width, ok := f.Dims(); ok {
		dims = fmt.Sprintf("(%d,%d)", depth, width)
	}
	parts := []string{"dims=" + dims}
	for _, named := range []struct {
		key string
		s   *Section
	}{{"head", f.head}, {"body", f.body}, {"foot", f.foot}} {
		val := "nil"
		if named.s != nil {
			val = fmt.Sprintf("(%d,%d)", named.s.depth, named.s.width)
		}
		parts = append(parts, named.key+"="+val)
	}
	return "frame(" + strings.Join(parts, ",") + ")"
}

func padRight[T any](row []T, width int) []T {
	if len(row) >= width {
		return row
	}
	return append(row, make([]T, width-len(row))...)
}
