// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strconv"
	"strings"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Warning reports a field that was absent or unusable in a record. The
// field is left empty and processing continues.
type Warning struct {
	PMID   string
	Field  string
	Reason string
}

func (w Warning) String() string {
	id := w.PMID
	if id == "" {
		id = "unknown PMID"
	}
	return id + ": " + w.Field + ": " + w.Reason
}

// FlattenOptions control Flatten.
type FlattenOptions struct {
	// MaxChars truncates every field; 0 keeps the full text.
	MaxChars int

	// Autofill gives an author without an address the nearest preceding
	// non-empty address of the same record. A first author without an
	// address stays empty.
	Autofill bool
}

// Flatten extracts one row per author from a record fragment. Record-level
// fields are extracted once and copied into every row. A record without
// authors, or one that cannot be parsed, still yields a single row so that
// it never vanishes from the output. The result depends only on the
// arguments.
func Flatten(fragment string, schema Schema, opts FlattenOptions) ([]types.AuthorRow, []Warning) {
	var warnings []Warning

	n, err := Parse(fragment)
	if err != nil {
		return []types.AuthorRow{{}}, []Warning{{Field: "record", Reason: err.Error()}}
	}

	var base types.AuthorRow
	var missing []string
	for _, field := range schema.Record {
		v, ok := fieldValue(n, field, opts.MaxChars)
		if !ok && !field.Optional {
			missing = append(missing, field.Name)
		}
		base.Set(field.Name, v)
	}
	if len(schema.Dates) > 0 {
		year, month, day := dateValue(n, schema.Dates)
		if year == "" {
			missing = append(missing, "year")
		}
		base.Set("year", truncate(year, opts.MaxChars))
		base.Set("month", truncate(month, opts.MaxChars))
		base.Set("day", truncate(day, opts.MaxChars))
	}
	for _, name := range missing {
		warnings = append(warnings, Warning{PMID: base.PMID, Field: name, Reason: "not found"})
	}

	authors := n.Children(schema.AuthorTag)
	if len(authors) == 0 {
		warnings = append(warnings, Warning{PMID: base.PMID, Field: "authors", Reason: "no author elements"})
		return []types.AuthorRow{base}, warnings
	}

	rows := make([]types.AuthorRow, 0, len(authors))
	for i, a := range authors {
		row := base
		for _, field := range schema.Author {
			v, ok := fieldValue(a, field, opts.MaxChars)
			if !ok && !field.Optional {
				warnings = append(warnings, Warning{PMID: base.PMID, Field: field.Name, Reason: "not found for author " + strconv.Itoa(i+1)})
			}
			row.Set(field.Name, v)
		}
		rows = append(rows, row)
	}

	if opts.Autofill {
		autofillAddresses(rows)
	}
	return rows, warnings
}

// fieldValue applies field to n, trying each tag in order. It reports
// whether any tag produced a non-empty value.
func fieldValue(n Node, field FieldSpec, maxChars int) (string, bool) {
	opts := ExtractOptions{Occurrence: field.Occurrence, Trim: field.Trim}
	for _, tag := range field.Tags {
		vals, found := n.Lookup(tag, opts)
		if !found {
			continue
		}
		v := joinNonEmpty(vals, field.Sep)
		if field.Derive != nil {
			v = field.Derive(v)
		}
		if v == "" {
			continue
		}
		return truncate(v, maxChars), true
	}
	return "", false
}

// autofillAddresses fills each empty address with the nearest preceding
// non-empty one.
func autofillAddresses(rows []types.AuthorRow) {
	last := ""
	for i := range rows {
		if rows[i].Address != "" {
			last = rows[i].Address
			continue
		}
		rows[i].Address = last
	}
}

func joinNonEmpty(vals []string, sep string) string {
	if len(vals) == 1 {
		return vals[0]
	}
	kept := vals[:0:0]
	for _, v := range vals {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, sep)
}
