package app

import (
	"context"
	"fmt"
	"io"

	"spantable/internal/output"
	"spantable/internal/parse"
	"spantable/internal/report"
)

// Dump writes the selected table, or every table with All set, in the
// requested format. With OutDir set the tables go to one file each.
func Dump(ctx context.Context, opts Options) error {
	opts, err := normalizeOptions(opts)
	if err != nil {
		return err
	}
	doc, info, err := loadDocument(ctx, opts)
	if err != nil {
		return err
	}

	tables := parse.Tables(doc)
	if !opts.All {
		t, err := parse.SelectTable(doc, opts.TableIndex)
		if err != nil {
			return err
		}
		tables = []parse.Table{t}
	}
	opts.Logger.Info("dumping tables", "source", opts.Source, "via", info, "count", len(tables), "format", opts.Output.Format)

	if opts.OutDir != "" {
		index, err := output.WriteSplit(opts.OutDir, opts.Source, tables, opts.Output)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(opts.Out, "Wrote %d table(s); index: %s\n", len(tables), index)
		return err
	}

	for i, t := range tables {
		if opts.All {
			if err := writeSeparator(opts.Out, opts.Output.Format, i, t); err != nil {
				return err
			}
		}
		if err := output.Render(opts.Out, t, opts.Output); err != nil {
			return fmt.Errorf("rendering table %s: %w", t.Label, err)
		}
	}
	return nil
}

// writeSeparator marks where each table starts when several are written to
// one stream. JSON formats are left as a plain value stream.
func writeSeparator(w io.Writer, format output.Format, i int, t parse.Table) error {
	var err error
	switch format {
	case output.FormatJSON, output.FormatRecords:
	case output.FormatYAML:
		_, err = io.WriteString(w, "---\n")
	case output.FormatMarkdown:
		if i > 0 {
			_, err = io.WriteString(w, "\n")
		}
		if err == nil {
			_, err = fmt.Fprintf(w, "## %s\n\n", t.Label)
		}
	default:
		if i > 0 {
			_, err = io.WriteString(w, "\n")
		}
		if err == nil {
			_, err = fmt.Fprintf(w, "# %s\n", t.Label)
		}
	}
	return err
}

// Inspect resolves every table in the source and describes the result.
func Inspect(ctx context.Context, opts Options) (report.Tables, error) {
	opts, err := normalizeOptions(opts)
	if err != nil {
		return report.Tables{}, err
	}
	doc, _, err := loadDocument(ctx, opts)
	if err != nil {
		return report.Tables{}, err
	}
	return report.AnalyzeTables(parse.Tables(doc)), nil
}
