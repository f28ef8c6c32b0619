// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// flagKeys maps command-line flags to configuration keys. The keys follow
// the yaml layout of types.PipelineConfig, so the same settings can come
// from pubmed-harvest.yaml or PUBMED_HARVEST_* environment variables.
var flagKeys = map[string]string{
	"verbose":          "verbose",
	"secrets-dir":      "secrets_dir",
	"api-key":          "entrez.api_key",
	"email":            "entrez.email",
	"db":               "entrez.database",
	"timeout":          "entrez.timeout",
	"eutils-url":       "entrez.base_url",
	"batch-size":       "fetch.batch_size",
	"format":           "fetch.format",
	"max-retries":      "fetch.max_retries",
	"delay":            "fetch.delay",
	"dest-dir":         "fetch.dest_dir",
	"prefix":           "fetch.prefix",
	"included-authors": "extraction.included_authors",
	"max-chars":        "extraction.max_chars",
	"autofill":         "extraction.autofill",
}

// bindFlags binds the flags of the running command to their configuration
// keys. Binding happens per invocation because several subcommands define
// the same flag and viper keeps one binding per key.
func bindFlags(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := viper.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("binding flag --%s: %w", f.Name, err)
		}
	})
	return bindErr
}

func addEntrezFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-key", "", "NCBI API key (default: .secrets/ncbi-api-key)")
	cmd.Flags().String("email", "", "contact e-mail sent to NCBI (default: .secrets/ncbi-email)")
	cmd.Flags().String("db", types.DefaultDatabase, "Entrez database")
	cmd.Flags().Duration("timeout", types.DefaultTimeout, "HTTP request timeout")
	cmd.Flags().String("eutils-url", "", "E-utilities endpoint root")
	_ = cmd.Flags().MarkHidden("eutils-url")
}

func addFetchFlags(cmd *cobra.Command, destDir string) {
	cmd.Flags().Int("batch-size", types.DefaultBatchSize, fmt.Sprintf("records per efetch request (max %d)", types.MaxBatchSize))
	cmd.Flags().String("format", string(types.FormatXML), "efetch format: xml, medline, abstract, or uilist")
	cmd.Flags().Int("max-retries", types.DefaultMaxRetries, "retries per batch after the first attempt")
	cmd.Flags().Duration("delay", 0, "pause between batches (default 340ms, 100ms with an API key)")
	cmd.Flags().String("dest-dir", destDir, "directory for batch files")
	cmd.Flags().String("prefix", types.DefaultPrefix, "batch file name prefix")
}

func addExtractFlags(cmd *cobra.Command) {
	cmd.Flags().String("included-authors", string(types.AuthorsAll), "author rows per record: first, last, or all")
	cmd.Flags().Int("max-chars", 0, "truncate every field to this many characters (0 = no limit)")
	cmd.Flags().Bool("autofill", false, "fill empty author addresses from the preceding author")
	cmd.Flags().String("out", "", "write the table to this file (.csv, .tsv, .json, .yaml, or .db)")
	cmd.Flags().Bool("json", false, "print the table as JSON instead of a summary")
}

// loadConfig resolves the pipeline configuration from flags, environment,
// config file, and secrets, in that order of precedence.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	err := viper.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
		dc.Squash = true
	})
	if err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	credentials.Apply(&cfg.Entrez)

	def := types.DefaultEntrezConfig()
	if cfg.Entrez.Database == "" {
		cfg.Entrez.Database = def.Database
	}
	if cfg.Entrez.Tool == "" {
		cfg.Entrez.Tool = def.Tool
	}
	if cfg.Entrez.Timeout <= 0 {
		cfg.Entrez.Timeout = def.Timeout
	}
	if cfg.Entrez.UserAgent == "" {
		cfg.Entrez.UserAgent = types.DefaultTool + "/" + version
	}

	fetchDef := types.DefaultFetchConfig(cfg.Entrez.APIKey != "")
	if cfg.Fetch.BatchSize == 0 {
		cfg.Fetch.BatchSize = fetchDef.BatchSize
	}
	if cfg.Fetch.Delay == 0 {
		cfg.Fetch.Delay = fetchDef.Delay
	}
	if cfg.Fetch.Prefix == "" {
		cfg.Fetch.Prefix = fetchDef.Prefix
	}
	return cfg, nil
}
