// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
)

// FieldSpec describes how one column is extracted from a record or author
// element.
type FieldSpec struct {
	// Name is the AuthorRow column the value is stored in.
	Name string

	// Tags are tried in order; the first tag that yields a non-empty value
	// wins.
	Tags []string

	Occurrence Occurrence
	Trim       bool

	// Sep joins the matches when Occurrence is All.
	Sep string

	// Derive post-processes the joined value before truncation.
	Derive func(string) string

	// Optional fields do not raise a warning when absent.
	Optional bool
}

// DateSource names the year, month, and day elements of one date. Month
// and day are taken only from the source that supplied the year.
type DateSource struct {
	Year, Month, Day string
}

// Schema is the ordered set of record-level and author-level fields.
type Schema struct {
	Record []FieldSpec

	// Dates fill the year, month, and day columns from the first source
	// with a recognizable year.
	Dates []DateSource

	// AuthorTag selects the author elements of a record.
	AuthorTag string
	Author    []FieldSpec
}

// PubMedSchema extracts the AuthorRow columns from PubmedArticle and
// PubmedBookArticle XML. Book editors are not authors.
var PubMedSchema = Schema{
	Record: []FieldSpec{
		{Name: "pmid", Tags: []string{"medlinecitation > pmid", "bookdocument > pmid", "articleid[idtype=pubmed]"}, Trim: true},
		{Name: "doi", Tags: []string{"pubmeddata > articleidlist > articleid[idtype=doi]", "elocationid[eidtype=doi]", "bookdocument > articleidlist > articleid[idtype=doi]"}, Trim: true},
		{Name: "title", Tags: []string{"articletitle", "booktitle"}, Trim: true},
		{Name: "abstract", Tags: []string{"abstract > abstracttext"}, Occurrence: All, Sep: " ", Trim: true},
		{Name: "journal_abbrev", Tags: []string{"journal > isoabbreviation", "medlinejournalinfo > medlineta"}, Trim: true},
		{Name: "journal", Tags: []string{"journal > title", "book > booktitle"}, Trim: true},
	},
	Dates: []DateSource{
		{Year: "journalissue > pubdate > year", Month: "journalissue > pubdate > month", Day: "journalissue > pubdate > day"},
		{Year: "journalissue > pubdate > medlinedate", Month: "journalissue > pubdate > medlinedate"},
		{Year: "book > pubdate > year", Month: "book > pubdate > month", Day: "book > pubdate > day"},
		{Year: "articledate > year", Month: "articledate > month", Day: "articledate > day"},
	},
	AuthorTag: "authorlist:not([type=editors]) > author",
	Author: []FieldSpec{
		{Name: "lastname", Tags: []string{"lastname", "collectivename"}, Trim: true},
		{Name: "firstname", Tags: []string{"forename", "initials"}, Trim: true},
		{Name: "address", Tags: []string{"affiliationinfo > affiliation", "affiliation"}, Occurrence: All, Sep: "; ", Trim: true, Optional: true},
		{Name: "email", Tags: []string{"email", "affiliation"}, Occurrence: All, Sep: " ", Trim: true, Derive: emailOf, Optional: true},
	},
}

// dateValue returns the date of the first source with a year.
func dateValue(n Node, sources []DateSource) (year, month, day string) {
	opts := ExtractOptions{Trim: true}
	for _, src := range sources {
		year = yearOf(n.First(src.Year, opts))
		if year == "" {
			continue
		}
		if src.Month != "" {
			month = monthOf(n.First(src.Month, opts))
		}
		if src.Day != "" {
			day = n.First(src.Day, opts)
		}
		return year, month, day
	}
	return "", "", ""
}

var (
	yearRE  = regexp.MustCompile(`\b(1[89]|20)\d{2}\b`)
	emailRE = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// yearOf returns the first four-digit year in s, so that a MedlineDate
// such as "2019 Jan-Feb" yields "2019".
func yearOf(s string) string {
	return yearRE.FindString(s)
}

// monthOf returns s unchanged unless it is a MedlineDate ("2019 Jan-Feb",
// "1998 Dec-1999 Jan"), in which case it returns the first month.
func monthOf(s string) string {
	fields := strings.Fields(s)
	if len(fields) < 2 || !yearRE.MatchString(fields[0]) {
		if yearRE.MatchString(s) {
			return ""
		}
		return s
	}
	month, _, _ := strings.Cut(fields[1], "-")
	if yearRE.MatchString(month) {
		return ""
	}
	return month
}

// emailOf returns the first e-mail address in s. Affiliations often end
// with "Electronic address: name@host.org.", so the trailing period is
// excluded by the pattern.
func emailOf(s string) string {
	return strings.TrimRight(emailRE.FindString(s), ".")
}
