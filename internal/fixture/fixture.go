// Package fixture runs regression fixtures for the span resolver. A fixture
// is an HTML file holding the table under test and a <pre> block with the
// expected frame as JSON.
package fixture

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"spantable/internal/parse"
	"spantable/internal/spantable"
)

// SkipMarker excludes a fixture from runs that honour skipping.
const SkipMarker = "SKIP"

var ErrNoExpectation = errors.New("no <pre> expectation block")

type Case struct {
	Path   string
	Name   string
	Frame  *spantable.Frame
	Expect Expectation
}

// Find lists <dir>/<prefix>*.html in sorted order. With skip set, files
// whose name contains SkipMarker are returned separately instead.
func Find(dir, prefix string, skip bool) (todo, skipped []string, err error) {
	paths, err := filepath.Glob(filepath.Join(dir, prefix+"*.html"))
	if err != nil {
		return nil, nil, fmt.Errorf("listing fixtures: %w", err)
	}
	sort.Strings(paths)

	todo, skipped = []string{}, []string{}
	for _, p := range paths {
		if skip && strings.Contains(filepath.Base(p), SkipMarker) {
			skipped = append(skipped, p)
			continue
		}
		todo = append(todo, p)
	}
	return todo, skipped, nil
}

// Load parses the fixture at path, builds the frame of its first table and
// decodes its first <pre> block outside any table.
func Load(path string) (*Case, error) {
	doc, err := parse.OpenFile(path)
	if err != nil {
		return nil, err
	}
	table, err := parse.SelectTable(doc, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	pre := doc.Find("pre").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ParentsFiltered("table").Length() == 0
	}).First()
	if pre.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoExpectation)
	}
	exp, err := ParseExpectation(pre.Text())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Case{
		Path:   path,
		Name:   fixtureName(path),
		Frame:  table.Frame(),
		Expect: exp,
	}, nil
}

func (c *Case) Check() []Mismatch {
	return Check(c.Frame, c.Expect)
}

func fixtureName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
