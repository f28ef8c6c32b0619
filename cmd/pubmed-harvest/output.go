// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pubmed-harvest/internal/extract"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

func formatHandle(w io.Writer, h types.ResultSetHandle, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(h)
	}

	fmt.Fprintf(w, "Query:       %s\n", h.Query)
	if h.QueryTranslation != "" {
		fmt.Fprintf(w, "Translation: %s\n", h.QueryTranslation)
	}
	fmt.Fprintf(w, "Count:       %d\n", h.Count)
	if !h.Empty() {
		fmt.Fprintf(w, "QueryKey:    %s\n", h.QueryKey)
		fmt.Fprintf(w, "WebEnv:      %s\n", h.WebEnv)
	}
	return nil
}

// formatTable prints the rows as JSON or as a fixed-width summary.
func formatTable(w io.Writer, table types.ResultTable, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if table == nil {
			table = types.ResultTable{}
		}
		return enc.Encode(table)
	}

	if len(table) == 0 {
		fmt.Fprintln(w, "No rows.")
		return nil
	}

	fmt.Fprintf(w, "%-10s  %-4s  %-20s  %-24s  %s\n", "PMID", "Year", "Journal", "Author", "Title")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range table {
		author := strings.TrimSpace(r.LastName + ", " + r.FirstName)
		author = strings.TrimSuffix(strings.TrimPrefix(author, ","), ",")
		fmt.Fprintf(w, "%-10s  %-4s  %-20s  %-24s  %s\n",
			r.PMID, r.Year, clip(r.JournalAbbrev, 20), clip(strings.TrimSpace(author), 24), clip(r.Title, 50))
	}
	return nil
}

func formatSummary(w io.Writer, res *extract.Result) {
	fmt.Fprintf(w, "\n%d records, %d rows, %d warnings\n", res.Records, len(res.Table), len(res.Warnings))
}

// clip shortens s to n characters, marking the cut with "...".
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
