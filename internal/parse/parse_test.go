package parse_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spantable/internal/parse"
)

const page = `<html><body>
<table id="prices"><tr><td>a</td></tr></table>
<div class="wrap">
  <table><caption> Periodic Table </caption><tr><td>H</td></tr></table>
  <table><caption>Periodic table</caption>
    <tr><td><table><tr><td>inner</td></tr></table></td></tr>
  </table>
</div>
</body></html>`

func TestNewDocument_Empty(t *testing.T) {
	_, err := parse.NewDocument("  \n")
	assert.ErrorIs(t, err, parse.ErrEmptyHTML)
}

func TestTables_LabelsAndNesting(t *testing.T) {
	doc, err := parse.NewDocument(page)
	require.NoError(t, err)

	tables := parse.Tables(doc)
	require.Len(t, tables, 4)

	labels := []string{}
	for _, tbl := range tables {
		labels = append(labels, tbl.Label)
	}
	assert.Equal(t, []string{"prices", "periodic_table", "periodic_table_2", "table_4"}, labels)
	assert.Equal(t, "Periodic Table", tables[1].Caption)
	assert.False(t, tables[2].Nested)
	assert.True(t, tables[3].Nested)
	assert.Equal(t, "table", tables[0].Element.Name())
}

func TestSelectTable(t *testing.T) {
	doc, err := parse.NewDocument(page)
	require.NoError(t, err)

	tbl, err := parse.SelectTable(doc, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Index)

	_, err = parse.SelectTable(doc, 9)
	assert.ErrorIs(t, err, parse.ErrNoTable)

	noTables, err := parse.NewDocument(`<p>nothing</p>`)
	require.NoError(t, err)
	_, err = parse.SelectTable(noTables, 0)
	assert.True(t, errors.Is(err, parse.ErrNoTable))
}

func TestExtractBySelector(t *testing.T) {
	doc, err := parse.NewDocument(page)
	require.NoError(t, err)

	scoped, err := parse.ExtractBySelector(doc, "div.wrap")
	require.NoError(t, err)
	assert.Len(t, parse.Tables(scoped), 3)

	same, err := parse.ExtractBySelector(doc, " ")
	require.NoError(t, err)
	assert.Same(t, doc, same)

	_, err = parse.ExtractBySelector(doc, "#missing")
	assert.ErrorIs(t, err, parse.ErrSelectorNotFound)
}

func TestRemoveSelectors(t *testing.T) {
	doc, err := parse.NewDocument(page)
	require.NoError(t, err)

	parse.RemoveSelectors(doc, "#prices")
	assert.Len(t, parse.Tables(doc), 3)
}

func TestOpenFile_DecodesCharset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latin1.html")
	// "café" in ISO-8859-1
	src := "<html><head><meta charset=\"iso-8859-1\"></head><body><table><tr><td>caf\xe9</td></tr></table></body></html>"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	doc, err := parse.OpenFile(path)
	require.NoError(t, err)

	tbl, err := parse.SelectTable(doc, 0)
	require.NoError(t, err)
	row := tbl.Frame().Text()[0]
	require.Len(t, row, 1)
	assert.Equal(t, "café", strings.TrimSpace(*row[0]))
}

func TestOpenFile_NotFound(t *testing.T) {
	_, err := parse.OpenFile(filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}
