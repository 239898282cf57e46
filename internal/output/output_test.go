package output_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"spantable/internal/output"
	"spantable/internal/parse"
)

const sample = `<table id="t">
  <tfoot><tr><td>total</td><td>3</td></tr></tfoot>
  <thead><tr><th>name</th><th>n</th></tr></thead>
  <tbody>
    <tr><td rowspan="2">a</td><td>1</td></tr>
    <tr><td>2</td></tr>
    <tr><td>b</td></tr>
  </tbody>
</table>`

func table(t *testing.T, html string) parse.Table {
	t.Helper()
	doc, err := parse.NewDocument(html)
	require.NoError(t, err)
	tbl, err := parse.SelectTable(doc, 0)
	require.NoError(t, err)
	return tbl
}

func render(t *testing.T, tbl parse.Table, opts output.Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, output.Render(&buf, tbl, opts))
	return buf.String()
}

func TestRender_Text(t *testing.T) {
	got := render(t, table(t, sample), output.Options{NullText: "~"})
	want := "name\tn\na\t1\na\t2\nb\t~\ntotal\t3\n"
	assert.Equal(t, want, got)
}

func TestRender_TextSection(t *testing.T) {
	tbl := table(t, sample)
	assert.Equal(t, "name\tn\n", render(t, tbl, output.Options{Part: output.PartHead}))
	assert.Equal(t, "total\t3\n", render(t, tbl, output.Options{Part: output.PartFoot}))
	assert.Empty(t, render(t, table(t, `<table><tr><td>x</td></tr></table>`), output.Options{Part: output.PartHead}))
}

func TestRender_JSONSnapshot(t *testing.T) {
	out := render(t, table(t, sample), output.Options{Format: output.FormatJSON})

	var snap struct {
		Dims []int      `json:"dims"`
		Head [][]*string `json:"head"`
		Foot [][]*string `json:"foot"`
		Rows [][]*string `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, []int{5, 2}, snap.Dims)
	require.Len(t, snap.Rows, 5)
	assert.Nil(t, snap.Rows[3][1])
	assert.Equal(t, "total", *snap.Foot[0][0])
}

func TestRender_YAML(t *testing.T) {
	out := render(t, table(t, sample), output.Options{Format: output.FormatYAML})

	var snap map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &snap))
	assert.Equal(t, []any{5, 2}, snap["dims"])
	assert.Contains(t, out, "- null")
}

func TestRender_CSV(t *testing.T) {
	out := render(t, table(t, `<table><tr><td>a,b</td><td>"q"</td></tr><tr><td>c</td></tr></table>`),
		output.Options{Format: output.FormatCSV})
	assert.Equal(t, "\"a,b\",\"\"\"q\"\"\"\nc,\n", out)
}

func TestRender_Markdown(t *testing.T) {
	tbl := table(t, sample)
	out := render(t, tbl, output.Options{Format: output.FormatMarkdown, NullText: "-"})
	assert.Equal(t, "| name | n |\n| --- | --- |\n| a | 1 |\n| a | 2 |\n| b | - |\n| total | 3 |\n", out)

	body := render(t, tbl, output.Options{Format: output.FormatMarkdown, Part: output.PartBody})
	assert.True(t, strings.HasPrefix(body, "| a | 1 |\n| --- | --- |\n"), body)
}

func TestRender_Table(t *testing.T) {
	out := render(t, table(t, sample), output.Options{Format: output.FormatTable})
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "total")
	assert.Contains(t, out, "┌")
}

func TestRecords(t *testing.T) {
	tbl := table(t, `<table>
  <tr><th>case</th><th>rule</th><th>u</th></tr>
  <tr><td>neg</td><td>r1</td><td></td></tr>
  <tr><td colspan="3">all</td></tr>
</table>`)
	recs := output.Records(tbl.Frame())
	assert.Equal(t, []map[string]string{
		{"case": "neg", "rule": "r1"},
		{"case": "all", "rule": "all", "u": "all"},
	}, recs)

	out := render(t, tbl, output.Options{Format: output.FormatRecords})
	assert.Equal(t, 2, strings.Count(out, "\n"))
}

func TestRecords_HeadAndDuplicateKeys(t *testing.T) {
	tbl := table(t, `<table>
  <thead><tr><th colspan="2">group</th></tr><tr><th>k</th><th>k</th></tr></thead>
  <tr><td>1</td><td>2</td></tr>
  <tfoot><tr><td>sum</td></tr></tfoot>
</table>`)
	assert.Equal(t, []map[string]string{{"k": "1", "k_2": "2"}}, output.Records(tbl.Frame()))
}

func TestWriteSplit(t *testing.T) {
	doc, err := parse.NewDocument(sample + `<table><caption>Other</caption><tr><td>x</td></tr></table>`)
	require.NoError(t, err)
	dir := t.TempDir()

	indexPath, err := output.WriteSplit(dir, "page.html", parse.Tables(doc), output.Options{Format: output.FormatCSV})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "index.jsonl"), indexPath)

	data, err := os.ReadFile(filepath.Join(dir, "other.csv"))
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))

	index, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(index)), "\n")
	require.Len(t, lines, 2)

	var rec output.IndexRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "t", rec.Label)
	assert.Equal(t, "t.csv", rec.File)
	assert.Equal(t, 5, rec.Depth)
	require.NotNil(t, rec.Width)
	assert.Equal(t, 2, *rec.Width)
	assert.Len(t, rec.ID, 16)
}

func TestWriteSplit_HostileIDs(t *testing.T) {
	doc, err := parse.NewDocument(`
<table id="../../escaped"><tr><td>1</td></tr></table>
<table id="a/b"><tr><td>2</td></tr></table>
<table id="a_b"><tr><td>3</td></tr></table>
<table id="../"><tr><td>4</td></tr></table>
<table id="index"><tr><td>5</td></tr></table>`)
	require.NoError(t, err)
	root := t.TempDir()
	dir := filepath.Join(root, "a", "b")

	indexPath, err := output.WriteSplit(dir, "page.html", parse.Tables(doc), output.Options{Format: output.FormatCSV})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"escaped.csv", "a_b.csv", "a_b_2.csv", "table_4.csv", "index_2.csv", "index.jsonl"}, names)

	rootEntries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, rootEntries, 1)
	assert.Equal(t, "a", rootEntries[0].Name())

	index, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	var rec output.IndexRecord
	require.NoError(t, json.Unmarshal([]byte(strings.SplitN(string(index), "\n", 2)[0]), &rec))
	assert.Equal(t, "../../escaped", rec.Label)
	assert.Equal(t, "escaped.csv", rec.File)
}

func TestParseFormatAndPart(t *testing.T) {
	f, err := output.ParseFormat("MD")
	require.NoError(t, err)
	assert.Equal(t, output.FormatMarkdown, f)
	assert.Equal(t, ".md", f.Extension())

	_, err = output.ParseFormat("xml")
	assert.ErrorContains(t, err, "unknown format")

	p, err := output.ParsePart("")
	require.NoError(t, err)
	assert.Equal(t, output.PartAll, p)

	_, err = output.ParsePart("middle")
	assert.Error(t, err)
}
