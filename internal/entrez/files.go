// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// ChunkFileName returns the file name of chunk index (1-based) out of
// total: prefix, the index zero-padded to the width of total (at least two
// digits), and the format's extension. For example chunk 3 of 12 in XML
// with prefix "batch_" is "batch_03.xml".
func ChunkFileName(prefix string, index, total int, format types.Format) string {
	width := max(len(strconv.Itoa(total)), 2)
	return fmt.Sprintf("%s%0*d.%s", prefix, width, index, format.Ext())
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so an interrupted run never leaves a partial chunk file.
func writeFileAtomic(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".fetch-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing chunk: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
