// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AuthorRow is one (record, author) pair. Record-level fields are copied
// into every row of the record.
type AuthorRow struct {
	PMID          string `json:"pmid" yaml:"pmid"`
	DOI           string `json:"doi" yaml:"doi"`
	Title         string `json:"title" yaml:"title"`
	Abstract      string `json:"abstract" yaml:"abstract"`
	Year          string `json:"year" yaml:"year"`
	Month         string `json:"month" yaml:"month"`
	Day           string `json:"day" yaml:"day"`
	JournalAbbrev string `json:"journal_abbrev" yaml:"journal_abbrev"`
	Journal       string `json:"journal" yaml:"journal"`
	LastName      string `json:"lastname" yaml:"lastname"`
	FirstName     string `json:"firstname" yaml:"firstname"`
	Address       string `json:"address" yaml:"address"`
	Email         string `json:"email" yaml:"email"`
}

var authorRowColumns = []string{
	"pmid", "doi", "title", "abstract", "year", "month", "day",
	"journal_abbrev", "journal", "lastname", "firstname", "address", "email",
}

// Columns returns the fixed column order of the tabular output.
func Columns() []string {
	out := make([]string, len(authorRowColumns))
	copy(out, authorRowColumns)
	return out
}

// Values returns the row's fields in Columns order.
func (r AuthorRow) Values() []string {
	return []string{
		r.PMID, r.DOI, r.Title, r.Abstract, r.Year, r.Month, r.Day,
		r.JournalAbbrev, r.Journal, r.LastName, r.FirstName, r.Address, r.Email,
	}
}

// Set stores value in the named column. It reports false for an unknown
// column name.
func (r *AuthorRow) Set(column, value string) bool {
	switch column {
	case "pmid":
		r.PMID = value
	case "doi":
		r.DOI = value
	case "title":
		r.Title = value
	case "abstract":
		r.Abstract = value
	case "year":
		r.Year = value
	case "month":
		r.Month = value
	case "day":
		r.Day = value
	case "journal_abbrev":
		r.JournalAbbrev = value
	case "journal":
		r.Journal = value
	case "lastname":
		r.LastName = value
	case "firstname":
		r.FirstName = value
	case "address":
		r.Address = value
	case "email":
		r.Email = value
	default:
		return false
	}
	return true
}

// ResultTable is the concatenation of author rows in chunk order, then
// record order, then author order.
type ResultTable []AuthorRow

// PMIDs returns the distinct PMIDs in first-seen order.
func (t ResultTable) PMIDs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t {
		if r.PMID == "" || seen[r.PMID] {
			continue
		}
		seen[r.PMID] = true
		out = append(out, r.PMID)
	}
	return out
}
