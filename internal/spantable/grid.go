package spantable

import "fmt"

// Coord is a position in the logical grid of one section.
type Coord struct {
	Row, Col int
}

func (c Coord) String() string { return fmt.Sprintf("(%d,%d)", c.Row, c.Col) }

// Pure holds one map per input row from column to the cell anchored there.
type Pure []map[int]Element

// Alias maps every covered, non-anchor coordinate to its anchor.
type Alias map[Coord]Coord

// Overlap records a coordinate two spans tried to claim. The first claim is
// kept so aliases always point at anchors.
type Overlap struct {
	At      Coord
	Kept    Coord
	Dropped Coord
}

// BuildGrid places the cells of rows into the logical grid. Each cell lands
// at the first column of its row not already covered by a span, and its span
// rectangle (clipped to the last row) is recorded in the alias map.
func BuildGrid(rows [][]Element) (Pure, Alias) {
	g := buildGrid(rows)
	return g.pure, g.alias
}

type grid struct {
	pure     Pure
	alias    Alias
	overlaps []Overlap
}

func buildGrid(rows [][]Element) *grid {
	depth := len(rows)
	g := &grid{
		pure:  make(Pure, depth),
		alias: Alias{},
	}
	for i, row := range rows {
		anchors := make(map[int]Element, len(row))
		k := 0
		for _, cell := range row {
			for g.covered(i, k) {
				k++
			}
			anchors[k] = cell
			rowSpan, colSpan := Span(cell)
			g.paint(Coord{Row: i, Col: k}, rowSpan, colSpan, depth)
			// The next cell moves one slot; collisions with this cell's own
			// colspan are skipped by covered above.
			k++
		}
		g.pure[i] = anchors
	}
	return g
}

func (g *grid) covered(i, k int) bool {
	_, ok := g.alias[Coord{Row: i, Col: k}]
	return ok
}

func (g *grid) paint(anchor Coord, rowSpan, colSpan, depth int) {
	if rowSpan <= 1 && colSpan <= 1 {
		return
	}
	rowEnd := min(anchor.Row+rowSpan, depth)
	colEnd := anchor.Col + colSpan
	for r := anchor.Row; r < rowEnd; r++ {
		for c := anchor.Col; c < colEnd; c++ {
			at := Coord{Row: r, Col: c}
			if at == anchor {
				continue
			}
			if prev, taken := g.alias[at]; taken {
				g.overlaps = append(g.overlaps, Overlap{At: at, Kept: prev, Dropped: anchor})
				continue
			}
			g.alias[at] = anchor
		}
	}
}

func effectiveWidth(pure Pure, alias Alias) int {
	width := 0
	for _, row := range pure {
		for j := range row {
			width = max(width, j+1)
		}
	}
	for at := range alias {
		width = max(width, at.Col+1)
	}
	return width
}
