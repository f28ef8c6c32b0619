// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns raw PubMed XML into author rows: it splits a batch
// payload into record fragments, extracts fields from each fragment with
// tag-scoped selection, flattens a record into one row per author, and
// aggregates the rows of many batches into one table.
package extract

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// Occurrence selects which matches of a tag are returned.
type Occurrence int

const (
	// First returns the first match in document order.
	First Occurrence = iota
	// All returns every match in document order.
	All
)

func (o Occurrence) String() string {
	if o == All {
		return "all"
	}
	return "first"
}

// ExtractOptions control how matched text is cleaned.
type ExtractOptions struct {
	Occurrence Occurrence

	// Trim removes leading and trailing whitespace and collapses embedded
	// newlines and runs of spaces to a single space.
	Trim bool

	// MaxChars truncates each value to that many characters; 0 keeps the
	// full text.
	MaxChars int
}

// Node is a tag-scoped view of a parsed record fragment. Tags are CSS
// selectors over the fragment's elements; element and attribute names are
// matched case-insensitively, so "articleid[idtype=doi]" matches
// <ArticleId IdType="doi">.
type Node struct {
	sel *goquery.Selection
}

// Parse parses one record fragment.
func Parse(fragment string) (Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Node{}, fmt.Errorf("parsing fragment: %w", err)
	}
	return Node{sel: doc.Selection}, nil
}

// Lookup returns the cleaned text of the matches of tag within n and
// whether the tag occurs at all. With Occurrence First at most one value
// is returned.
func (n Node) Lookup(tag string, opts ExtractOptions) ([]string, bool) {
	if n.sel == nil {
		return nil, false
	}
	matches := n.sel.Find(tag)
	if matches.Length() == 0 {
		return nil, false
	}
	if opts.Occurrence == First {
		matches = matches.First()
	}
	out := make([]string, 0, matches.Length())
	matches.Each(func(_ int, s *goquery.Selection) {
		out = append(out, cleanText(s.Text(), opts.Trim, opts.MaxChars))
	})
	return out, true
}

// Extract returns every match of tag (or only the first, per opts).
// An absent tag yields an empty slice.
func (n Node) Extract(tag string, opts ExtractOptions) []string {
	vals, _ := n.Lookup(tag, opts)
	return vals
}

// First returns the first match of tag, or "" when tag is absent.
func (n Node) First(tag string, opts ExtractOptions) string {
	opts.Occurrence = First
	vals, _ := n.Lookup(tag, opts)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// Children returns one Node per match of tag, in document order, so that
// later lookups are scoped to that element.
func (n Node) Children(tag string) []Node {
	if n.sel == nil {
		return nil
	}
	var out []Node
	n.sel.Find(tag).Each(func(_ int, s *goquery.Selection) {
		out = append(out, Node{sel: s})
	})
	return out
}

// Extract parses fragment and returns the matches of tag. Absence of the
// tag, or a fragment that cannot be parsed, yields an empty slice.
func Extract(fragment, tag string, opts ExtractOptions) []string {
	n, err := Parse(fragment)
	if err != nil {
		return nil
	}
	return n.Extract(tag, opts)
}

// ExtractFirst parses fragment and returns the first match of tag, or "".
func ExtractFirst(fragment, tag string, opts ExtractOptions) string {
	n, err := Parse(fragment)
	if err != nil {
		return ""
	}
	return n.First(tag, opts)
}

var (
	// stripPolicy removes inline markup that survives parsing as text,
	// e.g. <i> inside a journal <Title>, which the parser reads as raw text.
	stripPolicy = bluemonday.StrictPolicy()

	closingTagRE = regexp.MustCompile(`</[A-Za-z][A-Za-z0-9]*\s*>`)
)

// cleanText strips residual markup, optionally collapses whitespace, and
// truncates to maxChars characters.
func cleanText(s string, trim bool, maxChars int) string {
	if closingTagRE.MatchString(s) {
		s = html.UnescapeString(stripPolicy.Sanitize(s))
	}
	if trim {
		s = strings.Join(strings.Fields(s), " ")
	}
	return truncate(s, maxChars)
}

// truncate shortens s to at most maxChars characters. maxChars <= 0 keeps s.
func truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	i := 0
	for pos := range s {
		if i == maxChars {
			return s[:pos]
		}
		i++
	}
	return s
}
