// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"iter"
	"strings"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Split returns a lazy sequence over the records of raw. Each fragment
// runs from a <tag> (or <tag attr=...>) open tag through the matching
// </tag> close tag and is yielded verbatim, so it can be parsed on its own.
// When several tags are given, records of any of them are yielded in
// document order. No tags (or only empty ones) means
// types.DefaultRecordTags. Input without records yields nothing. A
// trailing record whose close tag is missing is yielded as-is so that it
// still contributes a row.
//
// The sequence walks raw once per iteration; iterating again re-splits.
func Split(raw string, tags ...string) iter.Seq[string] {
	tags = recordTags(tags)

	return func(yield func(string) bool) {
		// next[i] is the position of the next <tags[i] at or after pos,
		// -1 once none remain, or unknown before the first scan.
		const unknown = -2
		next := make([]int, len(tags))
		for i := range next {
			next[i] = unknown
		}

		pos := 0
		for {
			best := -1
			for i, tag := range tags {
				if next[i] == unknown || (next[i] >= 0 && next[i] < pos) {
					next[i] = indexOpenTag(raw[pos:], "<"+tag)
					if next[i] >= 0 {
						next[i] += pos
					}
				}
				if next[i] >= 0 && (best < 0 || next[i] < next[best]) {
					best = i
				}
			}
			if best < 0 {
				return
			}

			start := next[best]
			closeTag := "</" + tags[best] + ">"
			end := strings.Index(raw[start:], closeTag)
			if end < 0 {
				yield(raw[start:])
				return
			}
			end += start + len(closeTag)
			if !yield(raw[start:end]) {
				return
			}
			pos = end
		}
	}
}

func recordTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return types.DefaultRecordTags
	}
	return out
}

// indexOpenTag finds openTag ("<Name") followed by '>', '/', or
// whitespace, so "<PubmedArticle" does not match "<PubmedArticleSet>".
func indexOpenTag(s, openTag string) int {
	offset := 0
	for {
		i := strings.Index(s[offset:], openTag)
		if i < 0 {
			return -1
		}
		i += offset
		next := i + len(openTag)
		if next < len(s) {
			switch s[next] {
			case '>', '/', ' ', '\t', '\n', '\r':
				return i
			}
		}
		offset = next
	}
}

// Count returns the number of records Split would yield.
func Count(raw string, tags ...string) int {
	n := 0
	for range Split(raw, tags...) {
		n++
	}
	return n
}

// SplitMedline returns a lazy sequence over the records of a MEDLINE-format
// text payload. Every record starts with a "PMID-" line.
func SplitMedline(raw string) iter.Seq[string] {
	return func(yield func(string) bool) {
		var b strings.Builder
		for line := range strings.Lines(raw) {
			if strings.HasPrefix(line, "PMID-") && b.Len() > 0 {
				if !yield(strings.TrimSpace(b.String())) {
					return
				}
				b.Reset()
			}
			if b.Len() == 0 && !strings.HasPrefix(line, "PMID-") {
				continue
			}
			b.WriteString(line)
		}
		if b.Len() > 0 {
			yield(strings.TrimSpace(b.String()))
		}
	}
}
