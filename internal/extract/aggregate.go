// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-harvest/internal/entrez"
	"github.com/pdiddy/pubmed-harvest/internal/tabular"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Result is the output of an aggregation run.
type Result struct {
	Table types.ResultTable

	// Records is the number of record fragments processed.
	Records int

	Warnings []Warning
}

// Aggregator flattens every record of a sequence of chunks into one table.
type Aggregator struct {
	Schema Schema
	Config types.ExtractionConfig

	// Dest, when set, receives the table through tabular.Write.
	Dest string
	Meta tabular.Meta

	// Out receives a progress line per chunk; nil is silent.
	Out io.Writer
}

// NewAggregator returns an Aggregator over the PubMed schema.
func NewAggregator(cfg types.ExtractionConfig) *Aggregator {
	return &Aggregator{Schema: PubMedSchema, Config: cfg}
}

func (a *Aggregator) validate(chunks []entrez.RawChunk) (types.ExtractionConfig, error) {
	cfg := a.Config
	inc, err := types.ParseIncludedAuthors(string(cfg.IncludedAuthors))
	if err != nil {
		return cfg, &entrez.ConfigError{Field: "included_authors", Value: cfg.IncludedAuthors, Reason: "want first, last, or all"}
	}
	cfg.IncludedAuthors = inc
	if cfg.MaxChars < 0 {
		return cfg, &entrez.ConfigError{Field: "max_chars", Value: cfg.MaxChars, Reason: "must not be negative"}
	}
	for _, c := range chunks {
		if c.Format != "" && c.Format != types.FormatXML {
			return cfg, &entrez.ConfigError{Field: "format", Value: c.Format, Reason: fmt.Sprintf("chunk %d is not XML; only XML records can be flattened", c.Index)}
		}
	}
	return cfg, nil
}

// Aggregate splits and flattens every chunk and concatenates the rows in
// chunk order, then record order, then author order. When Dest is set the
// table is also written there; a write failure is returned together with
// the complete result.
func (a *Aggregator) Aggregate(ctx context.Context, chunks []entrez.RawChunk) (*Result, error) {
	cfg, err := a.validate(chunks)
	if err != nil {
		return nil, err
	}
	schema := a.Schema
	if schema.AuthorTag == "" {
		schema = PubMedSchema
	}
	logger := zerolog.Ctx(ctx)
	opts := FlattenOptions{MaxChars: cfg.MaxChars, Autofill: cfg.Autofill}

	res := &Result{Table: types.ResultTable{}}
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		data, err := c.Load()
		if err != nil {
			return res, err
		}

		records := 0
		for fragment := range Split(string(data), cfg.RecordTag) {
			rows, warnings := Flatten(fragment, schema, opts)
			res.Table = append(res.Table, selectAuthors(rows, cfg.IncludedAuthors)...)
			for _, w := range warnings {
				logger.Debug().Int("chunk", c.Index).Str("pmid", w.PMID).Str("field", w.Field).Msg(w.Reason)
			}
			res.Warnings = append(res.Warnings, warnings...)
			records++
		}
		res.Records += records

		if a.Out != nil {
			fmt.Fprintf(a.Out, "extracted: chunk %d (%d records)\n", c.Index, records)
		}
	}

	logger.Info().
		Int("records", res.Records).
		Int("rows", len(res.Table)).
		Int("warnings", len(res.Warnings)).
		Msg("aggregation complete")

	if a.Dest != "" {
		meta := a.Meta
		if meta.Count == 0 {
			meta.Count = res.Records
		}
		if err := tabular.Write(a.Dest, res.Table, meta); err != nil {
			return res, fmt.Errorf("writing %s: %w", a.Dest, err)
		}
		if a.Out != nil {
			fmt.Fprintf(a.Out, "wrote: %s (%d rows)\n", a.Dest, len(res.Table))
		}
	}
	return res, nil
}

// AggregateFiles aggregates chunk files given by path, in argument order.
func (a *Aggregator) AggregateFiles(ctx context.Context, paths []string) (*Result, error) {
	return a.Aggregate(ctx, FileChunks(paths))
}

// FileChunks describes chunk files by path, numbered in argument order.
// A .txt extension marks a text-format chunk, which Aggregate rejects.
func FileChunks(paths []string) []entrez.RawChunk {
	chunks := make([]entrez.RawChunk, 0, len(paths))
	for i, p := range paths {
		format := types.FormatXML
		if strings.EqualFold(filepath.Ext(p), ".txt") {
			format = types.FormatMedline
		}
		chunks = append(chunks, entrez.RawChunk{Index: i + 1, Format: format, Path: p})
	}
	return chunks
}

// selectAuthors keeps the first, the last, or all rows of one record.
func selectAuthors(rows []types.AuthorRow, inc types.IncludedAuthors) []types.AuthorRow {
	if len(rows) == 0 {
		return rows
	}
	switch inc {
	case types.AuthorsFirst:
		return rows[:1]
	case types.AuthorsLast:
		return rows[len(rows)-1:]
	}
	return rows
}
