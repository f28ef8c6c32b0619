// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package entrez

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/pubmed-harvest/internal/httputil"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

func init() {
	// Use a tiny base delay so retry tests finish quickly.
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

// fakeEutils is an in-process stand-in for esearch and efetch. It serves
// count records and can be told to fail requests at given offsets.
type fakeEutils struct {
	t     *testing.T
	count int

	mu       sync.Mutex
	searches []url.Values
	fetches  []url.Values

	// failures maps a retstart to the number of requests that fail before
	// one succeeds; a negative value fails forever.
	failures map[int]int
	// failWith writes the failing response. Defaults to HTTP 500.
	failWith func(w http.ResponseWriter)
}

func newFakeEutils(t *testing.T, count int) (*fakeEutils, *Client) {
	t.Helper()
	f := &fakeEutils{t: t, count: count, failures: map[int]int{}}
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)

	old := eutilsBase
	eutilsBase = ts.URL
	t.Cleanup(func() { eutilsBase = old })

	client := &Client{
		HTTP: ts.Client(),
		Config: types.EntrezConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		},
	}
	return f, client
}

func (f *fakeEutils) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
		f.mu.Lock()
		f.searches = append(f.searches, q)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"header":{"type":"esearch","version":"0.3"},"esearchresult":{"count":"%d","retmax":"0","retstart":"0","querykey":"1","webenv":"MCID_test","idlist":[],"querytranslation":"%s"}}`,
			f.count, q.Get("term"))
	case strings.HasSuffix(r.URL.Path, "/efetch.fcgi"):
		start, _ := strconv.Atoi(q.Get("retstart"))
		retmax, _ := strconv.Atoi(q.Get("retmax"))

		f.mu.Lock()
		f.fetches = append(f.fetches, q)
		remaining, failing := f.failures[start]
		if failing && remaining > 0 {
			f.failures[start] = remaining - 1
		}
		f.mu.Unlock()

		if failing && remaining != 0 {
			if f.failWith != nil {
				f.failWith(w)
			} else {
				w.WriteHeader(http.StatusInternalServerError)
			}
			return
		}
		n := min(retmax, f.count-start)
		if q.Get("retmode") == "text" {
			fmt.Fprint(w, medlineText(start, n))
			return
		}
		fmt.Fprint(w, articleSet(start, n))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeEutils) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetches)
}

func (f *fakeEutils) fetchOffsets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int
	for _, q := range f.fetches {
		n, _ := strconv.Atoi(q.Get("retstart"))
		out = append(out, n)
	}
	return out
}

func articleSet(start, n int) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" ?>\n<!DOCTYPE PubmedArticleSet PUBLIC \"-//NLM//DTD PubMedArticle, 1st January 2024//EN\" \"https://dtd.nlm.nih.gov/ncbi/pubmed/out/pubmed_240101.dtd\">\n<PubmedArticleSet>\n")
	for i := start; i < start+n; i++ {
		fmt.Fprintf(&b, "<PubmedArticle><MedlineCitation Status=\"MEDLINE\"><PMID Version=\"1\">%d</PMID></MedlineCitation></PubmedArticle>\n", 30000000+i)
	}
	b.WriteString("</PubmedArticleSet>\n")
	return b.String()
}

func medlineText(start, n int) string {
	var b strings.Builder
	for i := start; i < start+n; i++ {
		fmt.Fprintf(&b, "\nPMID- %d\nTI  - Title %d\n", 30000000+i, i)
	}
	return b.String()
}

func countRecords(data []byte) int {
	return strings.Count(string(data), "<PubmedArticle>")
}
