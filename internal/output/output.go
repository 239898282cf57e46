package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"spantable/internal/markdown"
	"spantable/internal/parse"
	"spantable/internal/spantable"
)

type Options struct {
	Format   Format
	Part     Part
	NullText string
}

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = FormatText
	}
	if o.Part == "" {
		o.Part = PartAll
	}
	return o
}

// Render writes one table in the requested format.
func Render(w io.Writer, t parse.Table, opts Options) error {
	opts = opts.withDefaults()
	frame := t.Frame()

	switch opts.Format {
	case FormatText:
		return renderText(w, selectRows(frame, opts.Part), opts.NullText)
	case FormatJSON:
		return renderJSON(w, snapshotFor(frame, opts.Part))
	case FormatYAML:
		return renderYAML(w, snapshotFor(frame, opts.Part))
	case FormatCSV:
		return renderCSV(w, fill(selectRows(frame, opts.Part), opts.NullText))
	case FormatMarkdown:
		if opts.Part == PartAll {
			conv := markdown.NewConverter(markdown.Options{NullText: opts.NullText})
			_, err := io.WriteString(w, conv.Table(t.Selection))
			return err
		}
		_, err := io.WriteString(w, markdown.RenderRows(fill(selectRows(frame, opts.Part), opts.NullText)))
		return err
	case FormatTable:
		return renderPretty(w, frame, opts)
	case FormatRecords:
		return renderRecords(w, frame)
	}
	return fmt.Errorf("unknown format %q", opts.Format)
}

func section(frame *spantable.Frame, part Part) *spantable.Section {
	switch part {
	case PartHead:
		return frame.Head()
	case PartBody:
		return frame.Body()
	case PartFoot:
		return frame.Foot()
	}
	return nil
}

// selectRows returns the frame rows for PartAll and the rows of the
// designated section otherwise. A missing section yields no rows.
func selectRows(frame *spantable.Frame, part Part) [][]*string {
	if part == PartAll {
		return frame.Text()
	}
	s := section(frame, part)
	if s == nil {
		return nil
	}
	return s.Text()
}

func snapshotFor(frame *spantable.Frame, part Part) any {
	snap := frame.Snapshot()
	if part == PartAll {
		return snap
	}
	if s := section(frame, part); s != nil {
		return s.Text()
	}
	return nil
}

func fill(rows [][]*string, nullText string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				out[i][j] = nullText
			} else {
				out[i][j] = *cell
			}
		}
	}
	return out
}

func renderText(w io.Writer, rows [][]*string, nullText string) error {
	for _, row := range fill(rows, nullText) {
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func renderCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func renderPretty(w io.Writer, frame *spantable.Frame, opts Options) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	t.SetStyle(style)

	toRow := func(cells []string) table.Row {
		row := make(table.Row, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		return row
	}

	if opts.Part != PartAll {
		for _, cells := range fill(selectRows(frame, opts.Part), opts.NullText) {
			t.AppendRow(toRow(cells))
		}
		t.Render()
		return nil
	}

	width, _ := frame.Width()
	for _, s := range frame.Sections() {
		for _, cells := range fill(padRows(s.Text(), width), opts.NullText) {
			switch s {
			case frame.Head():
				t.AppendHeader(toRow(cells))
			case frame.Foot():
				t.AppendFooter(toRow(cells))
			default:
				t.AppendRow(toRow(cells))
			}
		}
	}
	t.Render()
	return nil
}

func padRows(rows [][]*string, width int) [][]*string {
	for i, row := range rows {
		if len(row) < width {
			rows[i] = append(row, make([]*string, width-len(row))...)
		}
	}
	return rows
}
