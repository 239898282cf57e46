package markdown

import (
	"strings"

	htmltomd "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"
)

type Options struct {
	// NullText fills grid positions no cell covers.
	NullText string
}

type Converter struct {
	md   *htmltomd.Converter
	opts Options
}

func NewConverter(opts Options) *Converter {
	conv := htmltomd.NewConverter("", true, nil)
	conv.Use(plugin.GitHubFlavored())
	conv.Use(TablePlugin(opts))
	return &Converter{md: conv, opts: opts}
}

// ConvertString converts a whole HTML fragment, flattening every table in it.
func (c *Converter) ConvertString(html string) (string, error) {
	out, err := c.md.ConvertString(html)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out) + "\n", nil
}

// Table renders a single <table> selection as a pipe table.
func (c *Converter) Table(table *goquery.Selection) string {
	res, ok := renderTable(c.md, table, c.opts)
	if !ok {
		return ""
	}
	return strings.TrimSpace(res) + "\n"
}

// RenderRows writes plain text rows as a pipe table whose first row is the
// header. Rows are padded to the widest one.
func RenderRows(rows [][]string) string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return ""
	}
	var b strings.Builder
	for r, row := range rows {
		writeRow(&b, row, width)
		if r == 0 {
			writeSeparator(&b, width)
		}
	}
	return b.String()
}

func writeRow(b *strings.Builder, row []string, width int) {
	b.WriteString("|")
	for c := range width {
		b.WriteString(" ")
		if c < len(row) {
			b.WriteString(cleanCell(row[c]))
		}
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func writeSeparator(b *strings.Builder, width int) {
	b.WriteString("|")
	for range width {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
}

func cleanCell(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "|", "\\|") // Escape pipes
	text = strings.ReplaceAll(text, "\n", " ")  // Flatten newlines
	return text
}
