package output

import (
	"encoding/json"
	"io"
	"strconv"

	"spantable/internal/spantable"
)

// Records turns the data rows of a frame into key/value maps keyed by the
// header. The header is the last head row, or the first row when the frame
// has no head. Foot rows are not data. Empty and missing values are omitted.
func Records(frame *spantable.Frame) []map[string]string {
	width, ok := frame.Width()
	if !ok {
		return nil
	}
	var header []*string
	var data [][]*string
	for _, s := range frame.Sections() {
		rows := padRows(s.Text(), width)
		switch {
		case s == frame.Foot():
		case s == frame.Head():
			if len(rows) > 0 {
				header = rows[len(rows)-1]
			}
		default:
			data = append(data, rows...)
		}
	}
	if header == nil && len(data) > 0 {
		header, data = data[0], data[1:]
	}
	keys := recordKeys(header)

	records := make([]map[string]string, 0, len(data))
	for _, row := range data {
		rec := map[string]string{}
		for j, cell := range row {
			if cell == nil || *cell == "" {
				continue
			}
			rec[keys[j]] = *cell
		}
		records = append(records, rec)
	}
	return records
}

func recordKeys(header []*string) []string {
	keys := make([]string, len(header))
	seen := map[string]int{}
	for j, cell := range header {
		key := ""
		if cell != nil {
			key = *cell
		}
		if key == "" {
			key = "col_" + strconv.Itoa(j+1)
		}
		seen[key]++
		if n := seen[key]; n > 1 {
			key += "_" + strconv.Itoa(n)
		}
		keys[j] = key
	}
	return keys
}

func renderRecords(w io.Writer, frame *spantable.Frame) error {
	enc := json.NewEncoder(w)
	for _, rec := range Records(frame) {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}
