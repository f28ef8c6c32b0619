// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubmed-harvest pipeline:
// the result-set handle produced by esearch, the efetch formats, the author
// rows produced by extraction, and per-stage configuration.
package types

import (
	"fmt"
	"strings"
	"time"
)

// ResultSetHandle references a query result stored on the Entrez History
// Server. It is created once by esearch and only read afterwards; the
// server expires it after a few hours, which surfaces as a fetch error.
type ResultSetHandle struct {
	// Query is the term passed to esearch, verbatim.
	Query string `json:"query" yaml:"query"`

	// Count is the total number of records matching the query.
	Count int `json:"count" yaml:"count"`

	// QueryKey and WebEnv together address the stored result set.
	QueryKey string `json:"query_key" yaml:"query_key"`
	WebEnv   string `json:"web_env" yaml:"web_env"`

	// QueryTranslation is how the service interpreted the query.
	QueryTranslation string `json:"query_translation,omitempty" yaml:"query_translation,omitempty"`

	// RetrievedAt is when the handle was obtained.
	RetrievedAt time.Time `json:"retrieved_at" yaml:"retrieved_at"`
}

// Empty reports whether the query matched no records.
func (h ResultSetHandle) Empty() bool {
	return h.Count <= 0
}

// Chunks returns the number of requests needed to fetch every record
// with the given batch size.
func (h ResultSetHandle) Chunks(batchSize int) int {
	if h.Count <= 0 || batchSize <= 0 {
		return 0
	}
	return (h.Count + batchSize - 1) / batchSize
}

// Format selects the efetch return mode and type.
type Format string

const (
	FormatXML      Format = "xml"
	FormatMedline  Format = "medline"
	FormatAbstract Format = "abstract"
	FormatUIList   Format = "uilist"
)

// ParseFormat validates a format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatXML, FormatMedline, FormatAbstract, FormatUIList:
		return f, nil
	case "":
		return FormatXML, nil
	}
	return "", fmt.Errorf("unknown format %q (want xml, medline, abstract, or uilist)", s)
}

// Ext returns the file extension used for chunks in this format.
func (f Format) Ext() string {
	if f == FormatXML {
		return "xml"
	}
	return "txt"
}

// RetMode returns the efetch retmode parameter.
func (f Format) RetMode() string {
	if f == FormatXML {
		return "xml"
	}
	return "text"
}

// RetType returns the efetch rettype parameter; empty for XML.
func (f Format) RetType() string {
	switch f {
	case FormatMedline:
		return "medline"
	case FormatAbstract:
		return "abstract"
	case FormatUIList:
		return "uilist"
	}
	return ""
}

// IncludedAuthors selects which author rows of each record are kept.
type IncludedAuthors string

const (
	AuthorsAll   IncludedAuthors = "all"
	AuthorsFirst IncludedAuthors = "first"
	AuthorsLast  IncludedAuthors = "last"
)

// ParseIncludedAuthors validates an included-authors value. Empty means all.
func ParseIncludedAuthors(s string) (IncludedAuthors, error) {
	a := IncludedAuthors(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case AuthorsAll, AuthorsFirst, AuthorsLast:
		return a, nil
	case "":
		return AuthorsAll, nil
	}
	return "", fmt.Errorf("unknown included authors %q (want first, last, or all)", s)
}
