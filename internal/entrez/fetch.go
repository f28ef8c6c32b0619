// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-harvest/internal/httputil"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// RawChunk is the body of one efetch response.
type RawChunk struct {
	// Index is the 1-based chunk number; it also numbers the chunk file.
	Index int

	// Offset is the retstart of the request.
	Offset int

	// Size is the number of records requested (the last chunk may be short).
	Size int

	Format types.Format

	// Data holds the body when chunks are kept in memory.
	Data []byte

	// Path is the chunk file when chunks are persisted; Data is then nil.
	Path string
}

// Load returns the chunk body, reading it from Path when it is not in memory.
func (c RawChunk) Load() ([]byte, error) {
	if c.Data != nil || c.Path == "" {
		return c.Data, nil
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, fmt.Errorf("reading chunk %d: %w", c.Index, err)
	}
	return data, nil
}

// Concat returns the bodies of chunks joined in fetch order.
func Concat(chunks []RawChunk) ([]byte, error) {
	var buf bytes.Buffer
	for _, c := range chunks {
		data, err := c.Load()
		if err != nil {
			return nil, err
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// Fetcher pages through a result-set handle with efetch, one request at a
// time.
type Fetcher struct {
	Client *Client
	Config types.FetchConfig

	// Out receives one progress line per chunk. Nil discards.
	Out io.Writer
}

// ValidateFetchConfig checks cfg and fills defaults for zero values. It is
// called by FetchAll before any network call.
func ValidateFetchConfig(cfg types.FetchConfig) (types.FetchConfig, error) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = types.DefaultBatchSize
	}
	if cfg.BatchSize < 0 {
		return cfg, &ConfigError{Field: "batch size", Value: cfg.BatchSize, Reason: "must be a positive integer"}
	}
	if cfg.BatchSize > types.MaxBatchSize {
		return cfg, &ConfigError{Field: "batch size", Value: cfg.BatchSize,
			Reason: fmt.Sprintf("exceeds the E-utilities limit of %d records per request", types.MaxBatchSize)}
	}

	f, err := types.ParseFormat(string(cfg.Format))
	if err != nil {
		return cfg, &ConfigError{Field: "format", Value: cfg.Format, Reason: err.Error()}
	}
	cfg.Format = f

	if cfg.MaxRetries < 0 {
		return cfg, &ConfigError{Field: "max retries", Value: cfg.MaxRetries, Reason: "must not be negative"}
	}
	if cfg.Delay < 0 {
		return cfg, &ConfigError{Field: "delay", Value: cfg.Delay, Reason: "must not be negative"}
	}
	if cfg.DestDir != "" && cfg.Prefix == "" {
		cfg.Prefix = types.DefaultPrefix
	}
	return cfg, nil
}

// FetchAll retrieves every record of h in chunks of Config.BatchSize.
//
// Chunk i is requested at offset i*BatchSize. A chunk that fails with a
// transient error (transport failure, 429 or 5xx, empty or malformed
// body) is requested again at the same offset, up to MaxRetries times.
// When a chunk still fails, FetchAll stops and returns the chunks fetched
// so far together with a *FetchError; it never skips a chunk. Delay is
// applied between successive chunks, not between retries.
//
// With Config.DestDir set every chunk is written to
// DestDir/{Prefix}{NN}.{ext} and returned with Path set; otherwise the
// chunks carry their Data.
func (f *Fetcher) FetchAll(ctx context.Context, h types.ResultSetHandle) ([]RawChunk, error) {
	cfg, err := ValidateFetchConfig(f.Config)
	if err != nil {
		return nil, err
	}
	w := f.Out
	if w == nil {
		w = io.Discard
	}
	log := zerolog.Ctx(ctx)

	total := h.Chunks(cfg.BatchSize)
	if total == 0 {
		fmt.Fprintf(w, "no records to fetch for %q\n", h.Query)
		return nil, nil
	}
	if h.WebEnv == "" || h.QueryKey == "" {
		return nil, &ConfigError{Field: "handle", Value: h.Query, Reason: "missing WebEnv or query key"}
	}
	if f.Client == nil {
		return nil, &ConfigError{Field: "client", Value: nil, Reason: "fetcher has no client"}
	}

	if cfg.DestDir != "" {
		if err := os.MkdirAll(cfg.DestDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", cfg.DestDir, err)
		}
	}

	chunks := make([]RawChunk, 0, total)
	for i := 0; i < total; i++ {
		if i > 0 && cfg.Delay > 0 {
			if err := sleep(ctx, cfg.Delay); err != nil {
				return chunks, err
			}
		}

		chunk := RawChunk{
			Index:  i + 1,
			Offset: i * cfg.BatchSize,
			Size:   min(cfg.BatchSize, h.Count-i*cfg.BatchSize),
			Format: cfg.Format,
		}

		attempts, err := httputil.Retry(ctx, cfg.MaxRetries, func(attempt int) error {
			log.Debug().Int("chunk", chunk.Index).Int("offset", chunk.Offset).Int("attempt", attempt+1).Msg("efetch")
			data, err := f.fetchChunk(ctx, h, cfg.Format, chunk.Offset, chunk.Size)
			if err != nil {
				return err
			}
			chunk.Data = data
			return nil
		})
		if err != nil {
			fmt.Fprintf(w, "failed:  chunk %d/%d at offset %d (%v)\n", chunk.Index, total, chunk.Offset, err)
			return chunks, &FetchError{Index: chunk.Index, Offset: chunk.Offset, Attempts: attempts, Err: err}
		}

		if cfg.DestDir != "" {
			path := filepath.Join(cfg.DestDir, ChunkFileName(cfg.Prefix, chunk.Index, total, cfg.Format))
			if err := writeFileAtomic(path, chunk.Data); err != nil {
				return chunks, &FetchError{Index: chunk.Index, Offset: chunk.Offset, Attempts: attempts, Err: err}
			}
			chunk.Path = path
			chunk.Data = nil
		}

		chunks = append(chunks, chunk)
		fmt.Fprintf(w, "fetched: chunk %d/%d (records %d-%d)\n",
			chunk.Index, total, chunk.Offset+1, chunk.Offset+chunk.Size)
	}
	return chunks, nil
}

// fetchChunk issues one efetch request and checks the body.
func (f *Fetcher) fetchChunk(ctx context.Context, h types.ResultSetHandle, format types.Format, offset, size int) ([]byte, error) {
	params := f.Client.params()
	params.Set("query_key", h.QueryKey)
	params.Set("WebEnv", h.WebEnv)
	params.Set("retstart", strconv.Itoa(offset))
	params.Set("retmax", strconv.Itoa(size))
	params.Set("retmode", format.RetMode())
	if rt := format.RetType(); rt != "" {
		params.Set("rettype", rt)
	}

	body, err := f.Client.get(ctx, "efetch.fcgi", params)
	if err != nil {
		var se *httputil.StatusError
		if errors.As(err, &se) && !se.Temporary() {
			return nil, httputil.Permanent(err)
		}
		return nil, err
	}
	if err := checkBody(body, format, withDefaults(f.Client.Config).Database, size); err != nil {
		return nil, err
	}
	return body, nil
}

var (
	xmlErrorOpen  = []byte("<ERROR>")
	xmlErrorClose = []byte("</ERROR>")
	jsonErrorKey  = []byte(`"error"`)
	pubmedSetEnd  = []byte("</PubmedArticleSet>")

	pubmedRecordRE = regexp.MustCompile(`<Pubmed(Book)?Article[\s>]`)
)

// checkBody rejects bodies that the service returns with status 200 but
// that do not hold the requested records: empty bodies, embedded error
// messages, truncated XML, and a PubMed set without records when want
// records were requested.
func checkBody(body []byte, format types.Format, database string, want int) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ErrEmptyResponse
	}
	if i := bytes.Index(trimmed, xmlErrorOpen); i >= 0 {
		msg := trimmed[i+len(xmlErrorOpen):]
		if j := bytes.Index(msg, xmlErrorClose); j >= 0 {
			msg = msg[:j]
		}
		return fmt.Errorf("%w: %s", ErrServiceError, bytes.TrimSpace(msg))
	}
	if trimmed[0] == '{' && bytes.Contains(trimmed, jsonErrorKey) {
		return fmt.Errorf("%w: %s", ErrServiceError, trimmed)
	}
	if format != types.FormatXML {
		return nil
	}
	if database == types.DefaultDatabase {
		if !bytes.HasSuffix(trimmed, pubmedSetEnd) {
			return fmt.Errorf("%w: missing </PubmedArticleSet>", ErrMalformedResponse)
		}
		if want > 0 && !pubmedRecordRE.Match(trimmed) {
			return fmt.Errorf("%w: no records in a set expected to hold %d", ErrMalformedResponse, want)
		}
		return nil
	}
	if trimmed[len(trimmed)-1] != '>' {
		return fmt.Errorf("%w: truncated XML", ErrMalformedResponse)
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
