package report

import (
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"spantable/internal/parse"
	"spantable/internal/spantable"
)

type SectionInfo struct {
	Class string `json:"class"`
	Depth int    `json:"depth"`
	Width int    `json:"width"`
}

type OverlapInfo struct {
	At      string `json:"at"`
	Kept    string `json:"kept"`
	Dropped string `json:"dropped"`
}

// TableInfo describes how one table resolved.
type TableInfo struct {
	Index    int           `json:"index"`
	Label    string        `json:"label"`
	Caption  string        `json:"caption,omitempty"`
	Nested   bool          `json:"nested"`
	Depth    int           `json:"depth"`
	Width    *int          `json:"width"`
	Declared [2]int        `json:"declared_dims"`
	Physical []SectionInfo `json:"physical"`
	Logical  []string      `json:"logical"`
	Overlaps []OverlapInfo `json:"overlaps"`
	// Ragged is set when the resolved grid has a slot no cell covers.
	Ragged bool `json:"ragged"`
}

type Tables struct {
	Tables       []TableInfo `json:"tables"`
	DuplicateIDs []string    `json:"duplicate_ids"`
	EmptyTables  []string    `json:"empty_tables"`
	Overlapping  []string    `json:"overlapping"`
	Ragged       []string    `json:"ragged"`
}

func AnalyzeTables(tables []parse.Table) Tables {
	rep := Tables{
		Tables:      []TableInfo{},
		EmptyTables: []string{},
		Overlapping: []string{},
		Ragged:      []string{},
	}
	ids := []string{}
	for _, t := range tables {
		info := describe(t)
		rep.Tables = append(rep.Tables, info)
		if id, ok := t.Element.Attr("id"); ok {
			ids = append(ids, strings.TrimSpace(id))
		}
		if info.Depth == 0 {
			rep.EmptyTables = append(rep.EmptyTables, info.Label)
		}
		if len(info.Overlaps) > 0 {
			rep.Overlapping = append(rep.Overlapping, info.Label)
		}
		if info.Ragged {
			rep.Ragged = append(rep.Ragged, info.Label)
		}
	}
	rep.DuplicateIDs = findDuplicates(ids)

	sort.Strings(rep.DuplicateIDs)
	sort.Strings(rep.EmptyTables)
	sort.Strings(rep.Overlapping)
	sort.Strings(rep.Ragged)
	return rep
}

func describe(t parse.Table) TableInfo {
	frame := t.Frame()
	info := TableInfo{
		Index:    t.Index,
		Label:    t.Label,
		Caption:  t.Caption,
		Nested:   t.Nested,
		Depth:    frame.Depth(),
		Physical: []SectionInfo{},
		Logical:  []string{},
		Overlaps: []OverlapInfo{},
	}
	if width, ok := frame.Width(); ok {
		info.Width = &width
	}

	var rows [][]spantable.Element
	for _, g := range spantable.GroupSections(t.Element) {
		rows = append(rows, spantable.RowCells(g.Rows)...)
	}
	depth, width := spantable.DeclaredDims(rows)
	info.Declared = [2]int{depth, width}
	info.Ragged = isRagged(frame)

	for _, s := range frame.Physical() {
		info.Physical = append(info.Physical, SectionInfo{Class: s.Class().String(), Depth: s.Depth(), Width: s.Width()})
		for _, o := range s.Overlaps() {
			info.Overlaps = append(info.Overlaps, OverlapInfo{At: o.At.String(), Kept: o.Kept.String(), Dropped: o.Dropped.String()})
		}
	}
	for _, s := range frame.Sections() {
		info.Logical = append(info.Logical, s.Class().String())
	}
	return info
}

func isRagged(frame *spantable.Frame) bool {
	for row := range frame.CellRows() {
		if slices.Contains(row, nil) {
			return true
		}
	}
	return false
}

func findDuplicates(ids []string) []string {
	counts := map[string]int{}
	for _, id := range ids {
		if id == "" {
			continue
		}
		counts[id]++
	}
	dups := []string{}
	for id, count := range counts {
		if count > 1 {
			dups = append(dups, id)
		}
	}
	return dups
}

func fixtureName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
