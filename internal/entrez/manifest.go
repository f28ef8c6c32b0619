// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/xid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// ManifestFile is the name of the manifest written next to chunk files.
const ManifestFile = "manifest.yaml"

// Manifest records what a fetch run wrote to its destination directory so
// that extraction can be run later, and so a partial run is recognizable.
type Manifest struct {
	RunID     string                `yaml:"run_id"`
	Handle    types.ResultSetHandle `yaml:"handle"`
	Fetch     types.FetchConfig     `yaml:"fetch"`
	Chunks    []ManifestChunk       `yaml:"chunks"`
	Complete  bool                  `yaml:"complete"`
	Error     string                `yaml:"error,omitempty"`
	Timestamp time.Time             `yaml:"timestamp"`
}

// ManifestChunk describes one persisted chunk. File is relative to the
// manifest's directory.
type ManifestChunk struct {
	Index  int    `yaml:"index"`
	Offset int    `yaml:"offset"`
	Size   int    `yaml:"size"`
	File   string `yaml:"file"`
}

// NewManifest builds the manifest of a fetch run. fetchErr is the error
// returned by FetchAll, if any.
func NewManifest(h types.ResultSetHandle, cfg types.FetchConfig, chunks []RawChunk, fetchErr error) Manifest {
	m := Manifest{
		RunID:     xid.New().String(),
		Handle:    h,
		Fetch:     cfg,
		Complete:  fetchErr == nil,
		Timestamp: time.Now().UTC(),
	}
	if fetchErr != nil {
		m.Error = fetchErr.Error()
	}
	for _, c := range chunks {
		m.Chunks = append(m.Chunks, ManifestChunk{
			Index:  c.Index,
			Offset: c.Offset,
			Size:   c.Size,
			File:   filepath.Base(c.Path),
		})
	}
	return m
}

// RawChunks returns the manifest's chunks with Path resolved against dir.
func (m Manifest) RawChunks(dir string) []RawChunk {
	format, err := types.ParseFormat(string(m.Fetch.Format))
	if err != nil {
		format = m.Fetch.Format
	}
	out := make([]RawChunk, 0, len(m.Chunks))
	for _, c := range m.Chunks {
		out = append(out, RawChunk{
			Index:  c.Index,
			Offset: c.Offset,
			Size:   c.Size,
			Format: format,
			Path:   filepath.Join(dir, c.File),
		})
	}
	return out
}

// WriteManifest saves m to dir/manifest.yaml.
func WriteManifest(dir string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return writeFileAtomic(filepath.Join(dir, ManifestFile), data)
}

// ReadManifest loads dir/manifest.yaml.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// WriteHandleFile saves a result-set handle so a later fetch can reuse it
// while the server still holds the result set.
func WriteHandleFile(path string, h types.ResultSetHandle) error {
	data, err := yaml.Marshal(&h)
	if err != nil {
		return fmt.Errorf("marshaling handle: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadHandleFile loads a handle saved by WriteHandleFile.
func ReadHandleFile(path string) (types.ResultSetHandle, error) {
	var h types.ResultSetHandle
	data, err := os.ReadFile(path)
	if err != nil {
		return h, fmt.Errorf("reading handle file: %w", err)
	}
	if err := yaml.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("parsing handle file: %w", err)
	}
	if h.Count > 0 && (h.WebEnv == "" || h.QueryKey == "") {
		return h, errors.New("handle file has no WebEnv or query key")
	}
	return h, nil
}
