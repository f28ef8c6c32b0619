// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package entrez talks to the NCBI E-utilities: esearch posts a query to
// the History Server and returns a result-set handle; efetch pages through
// that handle in fixed-size chunks.
package entrez

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/pubmed-harvest/internal/httputil"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// eutilsBase is the E-utilities endpoint root. Declared as a var so tests
// can substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// Client issues E-utilities requests. The zero Config is completed with
// types.DefaultEntrezConfig values.
type Client struct {
	HTTP   *http.Client
	Config types.EntrezConfig
}

// NewClient returns a Client whose HTTP timeout follows cfg.
func NewClient(cfg types.EntrezConfig) *Client {
	cfg = withDefaults(cfg)
	return &Client{
		HTTP:   &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
	}
}

func withDefaults(cfg types.EntrezConfig) types.EntrezConfig {
	def := types.DefaultEntrezConfig()
	if cfg.Database == "" {
		cfg.Database = def.Database
	}
	if cfg.Tool == "" {
		cfg.Tool = def.Tool
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return cfg
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

// params returns the parameters common to every E-utilities call.
func (c *Client) params() url.Values {
	cfg := withDefaults(c.Config)
	v := url.Values{"db": {cfg.Database}, "tool": {cfg.Tool}}
	if cfg.APIKey != "" {
		v.Set("api_key", cfg.APIKey)
	}
	if cfg.Email != "" {
		v.Set("email", cfg.Email)
	}
	return v
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	base := eutilsBase
	if c.Config.BaseURL != "" {
		base = strings.TrimRight(c.Config.BaseURL, "/")
	}
	u := base + "/" + endpoint + "?" + params.Encode()
	return httputil.Get(ctx, c.httpClient(), u, withDefaults(c.Config).UserAgent)
}

// esearch JSON structures (retmode=json).
type esearchResponse struct {
	Error  string        `json:"error"`
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count            string           `json:"count"`
	QueryKey         string           `json:"querykey"`
	WebEnv           string           `json:"webenv"`
	QueryTranslation string           `json:"querytranslation"`
	Error            string           `json:"ERROR"`
	ErrorList        esearchErrorList `json:"errorlist"`
}

// esearchErrorList lists query terms the service ignored; the search still
// succeeds, so these are only logged.
type esearchErrorList struct {
	PhrasesNotFound []string `json:"phrasesnotfound"`
	FieldsNotFound  []string `json:"fieldsnotfound"`
}

// Search posts query to esearch with usehistory=y and returns the handle
// of the stored result set. The query is passed through verbatim.
//
// A query that matches nothing returns a handle with Count 0 and no error;
// fetching that handle makes no requests. An empty query is a
// *ConfigError. Every failure to obtain a usable handle is a *RemoteError
// and is not retried.
func (c *Client) Search(ctx context.Context, query string) (types.ResultSetHandle, error) {
	if strings.TrimSpace(query) == "" {
		return types.ResultSetHandle{}, &ConfigError{Field: "query", Value: `""`, Reason: "must not be empty"}
	}

	params := c.params()
	params.Set("term", query)
	params.Set("usehistory", "y")
	params.Set("retmode", "json")
	params.Set("retmax", "0")

	log := zerolog.Ctx(ctx)
	log.Debug().Str("query", query).Msg("esearch")

	body, err := c.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return types.ResultSetHandle{}, &RemoteError{Op: "esearch", Err: err}
	}

	var resp esearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return types.ResultSetHandle{}, &RemoteError{Op: "esearch", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if msg := firstNonEmpty(resp.Error, resp.Result.Error); msg != "" {
		return types.ResultSetHandle{}, &RemoteError{Op: "esearch", Err: fmt.Errorf("%w: %s", ErrServiceError, msg)}
	}

	if el := resp.Result.ErrorList; len(el.PhrasesNotFound) > 0 || len(el.FieldsNotFound) > 0 {
		log.Warn().
			Strs("phrases_not_found", el.PhrasesNotFound).
			Strs("fields_not_found", el.FieldsNotFound).
			Msg("esearch ignored part of the query")
	}

	count, err := strconv.Atoi(strings.TrimSpace(resp.Result.Count))
	if err != nil {
		return types.ResultSetHandle{}, &RemoteError{Op: "esearch", Err: fmt.Errorf("%w: count %q", ErrMalformedResponse, resp.Result.Count)}
	}
	if count > 0 && (resp.Result.WebEnv == "" || resp.Result.QueryKey == "") {
		return types.ResultSetHandle{}, &RemoteError{Op: "esearch", Err: fmt.Errorf("%w: missing WebEnv or query key", ErrMalformedResponse)}
	}

	return types.ResultSetHandle{
		Query:            query,
		Count:            count,
		QueryKey:         resp.Result.QueryKey,
		WebEnv:           resp.Result.WebEnv,
		QueryTranslation: resp.Result.QueryTranslation,
		RetrievedAt:      time.Now().UTC(),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
