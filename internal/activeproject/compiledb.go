package activeproject

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/GNPower/Vitis/internal/ctxlog"
	"github.com/tidwall/jsonc"
)

// database is a compiler database keyed by absolute source path. Records
// are kept verbatim.
type database struct {
	records map[string]json.RawMessage
}

func newDatabase() *database {
	return &database{records: make(map[string]json.RawMessage)}
}

// read merges the records of the database at path, replacing records for
// files already present. It returns the number of records read.
func (d *database) read(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return 0, fmt.Errorf("invalid compiler database %s: %w", path, err)
	}

	n := 0
	for i, r := range raw {
		var rec struct {
			Directory string `json:"directory"`
			File      string `json:"file"`
		}
		if err := json.Unmarshal(r, &rec); err != nil {
			return 0, fmt.Errorf("invalid compiler database %s: record %d: %w", path, i, err)
		}
		if rec.File == "" {
			ctxlog.FromContext(ctx).Warn("Ignoring compiler database record without a file.", "path", path, "record", i)
			continue
		}
		file := rec.File
		if !filepath.IsAbs(file) {
			file = filepath.Join(rec.Directory, file)
		}
		d.records[filepath.Clean(file)] = r
		n++
	}
	return n, nil
}

func (d *database) len() int {
	return len(d.records)
}

// marshal renders the records sorted by absolute source path.
func (d *database) marshal() ([]byte, error) {
	files := make([]string, 0, len(d.records))
	for f := range d.records {
		files = append(files, f)
	}
	sort.Strings(files)

	out := make([]json.RawMessage, len(files))
	for i, f := range files {
		out[i] = d.records[f]
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
