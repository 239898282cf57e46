package markdown

import (
	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"spantable/internal/markup"
	"spantable/internal/spantable"
)

// TablePlugin replaces the default table rule with one that resolves
// rowspan and colspan into a full grid. Spanned positions repeat the
// anchor cell's content.
func TablePlugin(opts Options) md.Plugin {
	return func(conv *md.Converter) []md.Rule {
		return []md.Rule{{
			Filter: []string{"table"},
			Replacement: func(_ string, selec *goquery.Selection, _ *md.Options) *string {
				res, ok := renderTable(conv, selec, opts)
				if !ok {
					return nil
				}
				res = "\n\n" + res + "\n"
				return &res
			},
		}}
	}
}

func renderTable(conv *md.Converter, table *goquery.Selection, opts Options) (string, bool) {
	if table == nil || table.Length() == 0 {
		return "", false
	}
	frame := spantable.BuildFrame(markup.FromSelection(table.First()))
	if frame.Depth() == 0 {
		return "", false
	}

	converted := map[spantable.Element]string{}
	rows := make([][]string, 0, frame.Depth())
	for cells := range frame.CellRows() {
		row := make([]string, len(cells))
		for c, cell := range cells {
			if cell == nil {
				row[c] = opts.NullText
				continue
			}
			text, ok := converted[cell]
			if !ok {
				text = cellMarkdown(conv, cell)
				converted[cell] = text
			}
			row[c] = text
		}
		rows = append(rows, row)
	}
	return RenderRows(rows), true
}

func cellMarkdown(conv *md.Converter, cell spantable.Element) string {
	node, ok := cell.(markup.Node)
	if !ok {
		return cell.Text()
	}
	return conv.Convert(node.Selection())
}
