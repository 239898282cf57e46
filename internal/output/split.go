package output

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"spantable/internal/parse"
)

type IndexRecord struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Index   int    `json:"index"`
	Label   string `json:"label"`
	Caption string `json:"caption,omitempty"`
	Depth   int    `json:"depth"`
	Width   *int   `json:"width"`
	File    string `json:"file"`
}

// WriteSplit writes each table to its own file under outDir, named after
// the table label, plus an index.jsonl describing them. It returns the
// index path.
func WriteSplit(outDir, source string, tables []parse.Table, opts Options) (string, error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	var index bytes.Buffer
	enc := json.NewEncoder(&index)
	used := map[string]bool{"index": true}
	for _, t := range tables {
		name := fileStem(t, used) + opts.Format.Extension()
		var buf bytes.Buffer
		if err := Render(&buf, t, opts); err != nil {
			return "", err
		}
		if err := os.WriteFile(filepath.Join(outDir, name), buf.Bytes(), 0600); err != nil {
			return "", err
		}

		frame := t.Frame()
		rec := IndexRecord{
			ID:      StableID(source, t.Label),
			Source:  source,
			Index:   t.Index,
			Label:   t.Label,
			Caption: t.Caption,
			Depth:   frame.Depth(),
			File:    name,
		}
		if width, ok := frame.Width(); ok {
			rec.Width = &width
		}
		if err := enc.Encode(rec); err != nil {
			return "", err
		}
	}

	path := filepath.Join(outDir, "index.jsonl")
	if err := os.WriteFile(path, index.Bytes(), 0600); err != nil {
		return "", err
	}
	return path, nil
}

// fileStem derives a file name from the table label. Labels come from page
// ids, so only slug characters are kept; the raw label stays in the index.
func fileStem(t parse.Table, used map[string]bool) string {
	stem := parse.Slugify(t.Label)
	if stem == "" {
		stem = "table_" + strconv.Itoa(t.Index+1)
	}
	name := stem
	for n := 2; used[name]; n++ {
		name = stem + "_" + strconv.Itoa(n)
	}
	used[name] = true
	return name
}

// StableID is a short hash identifying label within source.
func StableID(source, label string) string {
	h := sha256.Sum256([]byte(source + "|" + label))
	return hex.EncodeToString(h[:])[:16]
}
