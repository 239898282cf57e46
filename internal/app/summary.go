package app

import (
	"fmt"
	"io"
	"strings"

	"spantable/internal/report"
)

// PrintTables writes a human readable form of an inspection report.
func PrintTables(w io.Writer, rep report.Tables) {
	fmt.Fprintf(w, "Tables found: %d\n", len(rep.Tables))
	for _, t := range rep.Tables {
		width := "undefined"
		if t.Width != nil {
			width = fmt.Sprint(*t.Width)
		}
		nested := ""
		if t.Nested {
			nested = " (nested)"
		}
		fmt.Fprintf(w, "\n[%d] %s%s\n", t.Index, t.Label, nested)
		if t.Caption != "" {
			fmt.Fprintf(w, "  caption: %s\n", t.Caption)
		}
		fmt.Fprintf(w, "  dims: %d x %s (declared %d x %d)\n", t.Depth, width, t.Declared[0], t.Declared[1])

		groups := make([]string, len(t.Physical))
		for i, s := range t.Physical {
			groups[i] = fmt.Sprintf("%s(%d,%d)", s.Class, s.Depth, s.Width)
		}
		fmt.Fprintf(w, "  groups: %s\n", joinOrNone(groups))
		fmt.Fprintf(w, "  order: %s\n", joinOrNone(t.Logical))
		for _, o := range t.Overlaps {
			fmt.Fprintf(w, "  overlap at %s: kept %s, dropped %s\n", o.At, o.Kept, o.Dropped)
		}
	}

	if reportHasIssues(rep) {
		fmt.Fprintln(w, "\nIssues:")
		printList(w, "duplicate ids", rep.DuplicateIDs)
		printList(w, "empty tables", rep.EmptyTables)
		printList(w, "overlapping spans", rep.Overlapping)
		printList(w, "ragged rows", rep.Ragged)
	}
}

func printList(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "  %s: %d\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(w, "    - %s\n", item)
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, " ")
}

func reportHasIssues(rep report.Tables) bool {
	return len(rep.DuplicateIDs) > 0 ||
		len(rep.EmptyTables) > 0 ||
		len(rep.Overlapping) > 0 ||
		len(rep.Ragged) > 0
}
