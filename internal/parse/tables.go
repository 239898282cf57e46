package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"spantable/internal/markup"
	"spantable/internal/spantable"
)

// Table is one <table> element found in a document.
type Table struct {
	Index     int
	Label     string
	Caption   string
	Nested    bool
	Element   spantable.Element
	Selection *goquery.Selection
}

func (t Table) Frame() *spantable.Frame {
	return spantable.BuildFrame(t.Element)
}

// Tables lists every table in document order, nested ones included. Labels
// come from the id attribute, then the caption, then the position, and are
// unique within the document.
func Tables(doc *goquery.Document) []Table {
	tables := []Table{}
	seen := map[string]struct{}{}
	doc.Find("table").Each(func(i int, s *goquery.Selection) {
		caption := strings.TrimSpace(s.ChildrenFiltered("caption").First().Text())
		label := s.AttrOr("id", "")
		if label == "" {
			label = Slugify(caption)
		}
		if label == "" {
			label = "table_" + strconv.Itoa(i+1)
		}
		tables = append(tables, Table{
			Index:     i,
			Label:     deduplicateID(label, seen),
			Caption:   caption,
			Nested:    s.ParentsFiltered("table").Length() > 0,
			Element:   markup.FromSelection(s),
			Selection: s,
		})
	})
	return tables
}

// SelectTable returns the table at index (0-based) in document order.
func SelectTable(doc *goquery.Document, index int) (Table, error) {
	tables := Tables(doc)
	if len(tables) == 0 {
		return Table{}, ErrNoTable
	}
	if index < 0 || index >= len(tables) {
		return Table{}, fmt.Errorf("%w: index %d, document has %d table(s)", ErrNoTable, index, len(tables))
	}
	return tables[index], nil
}

var slugRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases text and collapses every run of other characters to a
// single underscore. The result is safe as a file name.
func Slugify(text string) string {
	text = strings.TrimSpace(strings.ToLower(text))
	return strings.Trim(slugRegexp.ReplaceAllString(text, "_"), "_")
}

func deduplicateID(id string, seen map[string]struct{}) string {
	if _, exists := seen[id]; !exists {
		seen[id] = struct{}{}
		return id
	}
	counter := 2
	for {
		newID := id + "_" + strconv.Itoa(counter)
		if _, exists := seen[newID]; !exists {
			seen[newID] = struct{}{}
			return newID
		}
		counter++
	}
}
