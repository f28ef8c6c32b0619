// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tabular

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

func sampleTable() types.ResultTable {
	return types.ResultTable{
		{
			PMID: "31000001", DOI: "10.1038/x", Title: `Memory, "in vivo"`, Abstract: "Line one.\nLine two.",
			Year: "2019", Month: "Apr", Day: "18", JournalAbbrev: "Nature", Journal: "Nature",
			LastName: "Smith", FirstName: "John", Address: "MIT, Cambridge", Email: "js@mit.edu",
		},
		{PMID: "31000001", LastName: "Doe", FirstName: "Jane"},
		{PMID: "31000003", Title: "No authors"},
	}
}

func TestWriteDelimited(t *testing.T) {
	for _, comma := range []rune{',', '\t'} {
		var buf bytes.Buffer
		require.NoError(t, WriteDelimited(&buf, sampleTable(), comma))

		r := csv.NewReader(&buf)
		r.Comma = comma
		records, err := r.ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, types.Columns(), records[0])
		assert.Equal(t, sampleTable()[0].Values(), records[1])
		assert.Equal(t, "Doe", records[2][9])
	}
}

func TestWriteByExtension(t *testing.T) {
	dir := t.TempDir()
	table := sampleTable()

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "t.csv")
		require.NoError(t, Write(path, table, Meta{}))
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		records, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		assert.Len(t, records, 4)
	})

	t.Run("tsv", func(t *testing.T) {
		path := filepath.Join(dir, "t.tsv")
		require.NoError(t, Write(path, table, Meta{}))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "pmid\tdoi\ttitle")
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "t.json")
		require.NoError(t, Write(path, table, Meta{}))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got types.ResultTable
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, table, got)
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "t.yml")
		require.NoError(t, Write(path, table, Meta{}))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got types.ResultTable
		require.NoError(t, yaml.Unmarshal(data, &got))
		assert.Equal(t, table, got)
	})

	t.Run("unknown", func(t *testing.T) {
		err := Write(filepath.Join(dir, "t.xlsx"), table, Meta{})
		assert.ErrorContains(t, err, "unsupported output extension")
	})
}

func TestWriteOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.csv")
	require.NoError(t, Write(path, sampleTable(), Meta{}))
	require.NoError(t, Write(path, sampleTable()[:1], Meta{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestStoreSaveRun(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(filepath.Join(t.TempDir(), "nested", "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	meta := Meta{RunID: "r1", Query: "X[AU]", Count: 2, CreatedAt: created}
	require.NoError(t, store.SaveRun(ctx, meta, sampleTable()))

	rows, err := store.Rows(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), rows)

	// Saving the same run again replaces its rows.
	require.NoError(t, store.SaveRun(ctx, meta, sampleTable()[:1]))
	rows, err = store.Rows(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, meta, runs[0])
}

func TestStoreGeneratesRunID(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveRun(ctx, Meta{Query: "a"}, sampleTable()))
	require.NoError(t, store.SaveRun(ctx, Meta{Query: "b"}, sampleTable()))

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.NotEmpty(t, runs[0].RunID)
	assert.NotEqual(t, runs[0].RunID, runs[1].RunID)
}

func TestWriteSQLiteReplacesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "t.db")
	require.NoError(t, Write(path, sampleTable(), Meta{RunID: "first"}))
	require.NoError(t, Write(path, sampleTable(), Meta{RunID: "second"}))

	store, err := OpenStore(path)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "second", runs[0].RunID)
}
