package spantable

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// Section is one classified run of rows resolved into a grid.
type Section struct {
	class    Classification
	pure     Pure
	alias    Alias
	overlaps []Overlap
	depth    int
	width    int
}

// NewSection resolves rows of cells into a free-standing section.
func NewSection(rows [][]Element) *Section {
	return newSection(Free, rows)
}

// NewSectionFromMaps wraps an already built grid. The maps are not copied.
func NewSectionFromMaps(pure Pure, alias Alias) *Section {
	return &Section{
		class: Free,
		pure:  pure,
		alias: alias,
		depth: len(pure),
		width: effectiveWidth(pure, alias),
	}
}

func newSection(class Classification, rows [][]Element) *Section {
	g := buildGrid(rows)
	s := NewSectionFromMaps(g.pure, g.alias)
	s.class = class
	s.overlaps = g.overlaps
	return s
}

func (s *Section) Class() Classification { return s.class }
func (s *Section) Depth() int            { return s.depth }
func (s *Section) Width() int            { return s.width }

func (s *Section) Dims() (int, int) { return s.depth, s.width }

// Overlaps lists coordinates claimed by more than one span while building.
func (s *Section) Overlaps() []Overlap { return slices.Clone(s.overlaps) }

func (s *Section) inBounds(i, j int) bool {
	return i >= 0 && i < s.depth && j >= 0 && j < s.width
}

// CellAt returns the cell covering (i, j), or nil for a hole.
func (s *Section) CellAt(i, j int) (Element, error) {
	if !s.inBounds(i, j) {
		return nil, &OutOfBoundsError{Row: i, Col: j, Depth: s.depth, Width: s.width}
	}
	return s.cellAt(i, j), nil
}

func (s *Section) cellAt(i, j int) Element {
	if cell, ok := s.pure[i][j]; ok {
		return cell
	}
	if at, ok := s.alias[Coord{Row: i, Col: j}]; ok {
		return s.pure[at.Row][at.Col]
	}
	return nil
}

// IsAnchor reports whether a cell was originally placed at (i, j).
func (s *Section) IsAnchor(i, j int) bool {
	if i < 0 || i >= s.depth {
		return false
	}
	_, ok := s.pure[i][j]
	return ok
}

// AnchorOf returns the coordinate of the cell covering (i, j). It reports
// false for holes and out of range coordinates.
func (s *Section) AnchorOf(i, j int) (Coord, bool) {
	if !s.inBounds(i, j) {
		return Coord{}, false
	}
	if _, ok := s.pure[i][j]; ok {
		return Coord{Row: i, Col: j}, true
	}
	at, ok := s.alias[Coord{Row: i, Col: j}]
	return at, ok
}

// TextRow returns the text of row i, one entry per column, nil for holes.
func (s *Section) TextRow(i int) ([]*string, error) {
	if i < 0 || i >= s.depth {
		return nil, &OutOfBoundsError{Row: i, Col: 0, Depth: s.depth, Width: s.width}
	}
	return s.textRow(i), nil
}

func (s *Section) textRow(i int) []*string {
	row := make([]*string, s.width)
	for j := range row {
		row[j] = textOf(s.cellAt(i, j))
	}
	return row
}

// CellRow returns the cells covering row i, nil for holes.
func (s *Section) CellRow(i int) ([]Element, error) {
	if i < 0 || i >= s.depth {
		return nil, &OutOfBoundsError{Row: i, Col: 0, Depth: s.depth, Width: s.width}
	}
	return s.cellRow(i), nil
}

func (s *Section) cellRow(i int) []Element {
	row := make([]Element, s.width)
	for j := range row {
		row[j] = s.cellAt(i, j)
	}
	return row
}

// Rows yields TextRow(i) for every row. Each call starts over.
func (s *Section) Rows() iter.Seq[[]*string] {
	return func(yield func([]*string) bool) {
		for i := 0; i < s.depth; i++ {
			if !yield(s.textRow(i)) {
				return
			}
		}
	}
}

func (s *Section) Text() [][]*string {
	return slices.Collect(s.Rows())
}

func (s *Section) String() string {
	return fmt.Sprintf("section(%s,depth=%d,width=%d)", s.class, s.depth, s.width)
}

func textOf(cell Element) *string {
	if cell == nil {
		return nil
	}
	text := strings.TrimSpace(cell.Text())
	return &text
}
