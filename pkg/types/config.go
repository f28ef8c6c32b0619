// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

const (
	// DefaultBatchSize is the number of records requested per efetch call.
	DefaultBatchSize = 5000

	// MaxBatchSize is the E-utilities hard cap on retmax for efetch.
	MaxBatchSize = 10000

	// DefaultMaxRetries is the number of extra attempts per chunk.
	DefaultMaxRetries = 3

	// DefaultDelay paces anonymous clients under the 3 requests/second limit.
	DefaultDelay = 340 * time.Millisecond

	// DefaultKeyedDelay paces clients with an API key under 10 requests/second.
	DefaultKeyedDelay = 100 * time.Millisecond

	DefaultTimeout  = 60 * time.Second
	DefaultDatabase = "pubmed"
	DefaultTool     = "pubmed-harvest"
	DefaultPrefix   = "pubmed_batch_"
)

// DefaultRecordTags are the record elements of a PubmedArticleSet: journal
// articles and book chapters, which efetch interleaves in one set.
var DefaultRecordTags = []string{"PubmedArticle", "PubmedBookArticle"}

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-harvest/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EntrezConfig holds the settings shared by esearch and efetch calls.
type EntrezConfig struct {
	HTTPConfig `yaml:",inline"`

	// Database is the Entrez database queried (default "pubmed").
	Database string `json:"database" yaml:"database"`

	// APIKey is the optional NCBI API key; it raises the rate limit to 10 req/s.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email and Tool identify the client to NCBI.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Tool  string `json:"tool,omitempty" yaml:"tool,omitempty"`

	// BaseURL overrides the E-utilities endpoint root, e.g. for a mirror.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// FetchConfig holds settings for the batch retrieval stage.
type FetchConfig struct {
	// BatchSize is the number of records per efetch request (1..MaxBatchSize).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Format selects the efetch return mode and type.
	Format Format `json:"format" yaml:"format"`

	// MaxRetries is the number of retries per chunk after the first attempt.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Delay is the fixed pause between successive chunk requests.
	Delay time.Duration `json:"delay" yaml:"delay"`

	// DestDir is the directory receiving one file per chunk. When empty,
	// chunks are kept in memory.
	DestDir string `json:"dest_dir,omitempty" yaml:"dest_dir,omitempty"`

	// Prefix is prepended to every chunk file name.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// ExtractionConfig holds settings for the flattening stage.
type ExtractionConfig struct {
	// IncludedAuthors selects which author rows of each record are kept.
	IncludedAuthors IncludedAuthors `json:"included_authors" yaml:"included_authors"`

	// MaxChars truncates every extracted field; 0 keeps the full text.
	MaxChars int `json:"max_chars" yaml:"max_chars"`

	// Autofill back-fills empty author addresses from the nearest preceding author.
	Autofill bool `json:"autofill" yaml:"autofill"`

	// RecordTag is the element that delimits one record. Empty means
	// DefaultRecordTags.
	RecordTag string `json:"record_tag,omitempty" yaml:"record_tag,omitempty"`
}

// DefaultEntrezConfig returns the E-utilities settings used when none are configured.
func DefaultEntrezConfig() EntrezConfig {
	return EntrezConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   DefaultTimeout,
			UserAgent: DefaultTool + "/0.1",
		},
		Database: DefaultDatabase,
		Tool:     DefaultTool,
	}
}

// DefaultFetchConfig returns the batch settings used when none are configured.
// The delay depends on whether an API key is available.
func DefaultFetchConfig(keyed bool) FetchConfig {
	delay := DefaultDelay
	if keyed {
		delay = DefaultKeyedDelay
	}
	return FetchConfig{
		BatchSize:  DefaultBatchSize,
		Format:     FormatXML,
		MaxRetries: DefaultMaxRetries,
		Delay:      delay,
		Prefix:     DefaultPrefix,
	}
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Entrez     EntrezConfig     `json:"entrez" yaml:"entrez"`
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
}
