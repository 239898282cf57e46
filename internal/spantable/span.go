package spantable

import "strconv"

const (
	AttrRowSpan = "rowspan"
	AttrColSpan = "colspan"
)

// SpanValue returns the span a lenient renderer would use for attr: the
// parsed value when the raw text is a plain run of ASCII digits, 1 otherwise.
// Zero and very large values are returned as-is.
func SpanValue(cell Element, attr string) int {
	raw, ok := cell.Attr(attr)
	if !ok || !isDigits(raw) {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		// overflow
		return 1
	}
	return n
}

func RowSpan(cell Element) int { return SpanValue(cell, AttrRowSpan) }
func ColSpan(cell Element) int { return SpanValue(cell, AttrColSpan) }

// Span returns (rowspan, colspan).
func Span(cell Element) (int, int) {
	return RowSpan(cell), ColSpan(cell)
}

// DeclaredWidth is the width a row claims by walking its cells in strides of
// their colspan. Spans from rows above are not taken into account.
func DeclaredWidth(row []Element) int {
	width := 0
	for _, cell := range row {
		width += ColSpan(cell)
	}
	return width
}

// DeclaredDims returns the row count and the widest declared width.
func DeclaredDims(rows [][]Element) (int, int) {
	width := 0
	for _, row := range rows {
		width = max(width, DeclaredWidth(row))
	}
	return len(rows), width
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
