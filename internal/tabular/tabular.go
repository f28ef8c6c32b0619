// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tabular serializes a result table. The output format follows the
// destination file's extension: .csv, .tsv, .json, .yaml/.yml, or
// .db/.sqlite for a SQLite database.
package tabular

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/xid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Meta describes the run a table came from. It is stored with SQLite
// output and ignored by the flat formats.
type Meta struct {
	RunID     string    `json:"run_id" yaml:"run_id"`
	Query     string    `json:"query" yaml:"query"`
	Count     int       `json:"count" yaml:"count"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

func (m Meta) withDefaults() Meta {
	if m.RunID == "" {
		m.RunID = xid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return m
}

// Write serializes table to path, replacing any existing file.
func Write(path string, table types.ResultTable, meta Meta) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".tsv", ".json", ".yaml", ".yml":
		return writeFlat(path, ext, table)
	case ".db", ".sqlite", ".sqlite3":
		for _, p := range []string{path, path + "-wal", path + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing old database: %w", err)
			}
		}
		store, err := OpenStore(path)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.SaveRun(context.Background(), meta, table)
	}
	return fmt.Errorf("unsupported output extension %q (want .csv, .tsv, .json, .yaml, or .db)", ext)
}

func writeFlat(path, ext string, table types.ResultTable) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	switch ext {
	case ".csv":
		err = WriteDelimited(f, table, ',')
	case ".tsv":
		err = WriteDelimited(f, table, '\t')
	case ".json":
		err = WriteJSON(f, table)
	default:
		err = WriteYAML(f, table)
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteDelimited writes a header row and one record per author row,
// quoting fields as needed.
func WriteDelimited(w io.Writer, table types.ResultTable, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(types.Columns()); err != nil {
		return err
	}
	for _, r := range table {
		if err := cw.Write(r.Values()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the table as an indented JSON array.
func WriteJSON(w io.Writer, table types.ResultTable) error {
	if table == nil {
		table = types.ResultTable{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(table)
}

// WriteYAML writes the table as a YAML sequence.
func WriteYAML(w io.Writer, table types.ResultTable) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(table); err != nil {
		return err
	}
	return enc.Close()
}
