package output

import (
	"fmt"
	"strings"
)

type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
	FormatRecords  Format = "records"
)

var formats = []Format{FormatText, FormatJSON, FormatYAML, FormatCSV, FormatMarkdown, FormatTable, FormatRecords}

func Formats() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "table", "pretty":
		return FormatTable, nil
	case "records", "jsonl":
		return FormatRecords, nil
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(Formats(), ", "))
}

// Extension is the file suffix used when tables are written to a directory.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	case FormatCSV:
		return ".csv"
	case FormatMarkdown:
		return ".md"
	case FormatRecords:
		return ".jsonl"
	default:
		return ".txt"
	}
}

// Part selects which rows of a frame are written.
type Part string

const (
	PartAll  Part = "all"
	PartHead Part = "head"
	PartBody Part = "body"
	PartFoot Part = "foot"
)

func ParsePart(s string) (Part, error) {
	switch p := Part(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PartAll, nil
	case PartAll, PartHead, PartBody, PartFoot:
		return p, nil
	}
	return "", fmt.Errorf("unknown section %q (want all, head, body or foot)", s)
}
