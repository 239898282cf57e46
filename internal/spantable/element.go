package spantable

// Element is the part of a markup tree the resolver reads. Implementations
// must return direct children only, in document order.
type Element interface {
	// Name is the lower-case element kind ("table", "tbody", "tr", "td", ...).
	Name() string
	// Children returns the direct element children whose name is one of
	// names, or every element child when names is empty.
	Children(names ...string) []Element
	// Attr returns the raw attribute text.
	Attr(name string) (string, bool)
	// Text returns the rendered text with whitespace collapsed and trimmed.
	Text() string
}

type CellKind int

const (
	NoCell CellKind = iota
	DataCell
	HeaderCell
)

func (k CellKind) String() string {
	switch k {
	case DataCell:
		return "td"
	case HeaderCell:
		return "th"
	default:
		return "none"
	}
}

// Kind classifies a cell handle. A nil handle is a hole.
func Kind(e Element) CellKind {
	if e == nil {
		return NoCell
	}
	switch e.Name() {
	case "td":
		return DataCell
	case "th":
		return HeaderCell
	default:
		return NoCell
	}
}

func IsCell(e Element) bool {
	return Kind(e) != NoCell
}

// RowCells returns the td/th children of each row.
func RowCells(rows []Element) [][]Element {
	out := make([][]Element, len(rows))
	for i, row := range rows {
		out[i] = row.Children("td", "th")
	}
	return out
}
