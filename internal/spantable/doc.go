// Package spantable resolves the logical grid of an HTML table whose cells
// span rows and columns.
//
// A table is read through the narrow [Element] interface, grouped into
// head/body/foot/free row runs, and each run is resolved into a [Section]:
// a sparse map of anchor cells plus an alias map from every covered
// coordinate back to the anchor that owns it. A [Frame] composes the
// sections in rendering order (head first, foot last) and yields
// rectangular rows of cell text, padded with nil where no cell covers a
// position.
//
//	frame := spantable.BuildFrame(table)
//	for row := range frame.Rows() {
//		// row has exactly frame width entries; nil marks a hole
//	}
//
// Frames and sections are immutable once built and may be read from
// several goroutines at once.
package spantable
