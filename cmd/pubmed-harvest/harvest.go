// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvest/internal/entrez"
	"github.com/pdiddy/pubmed-harvest/internal/tabular"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest QUERY",
	Short: "Search, fetch, and extract in one run",
	Long: `Harvest runs the whole pipeline: esearch for QUERY, efetch of every
batch, and extraction of one row per (record, author) pair.

Batches stay in memory unless --dest-dir is given. When a batch fails
after all retries, the rows of the batches fetched before it are still
extracted and written, and the command exits with an error.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHarvest,
}

func init() {
	addEntrezFlags(harvestCmd)
	addFetchFlags(harvestCmd, "")
	addExtractFlags(harvestCmd)

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	fetchCfg, err := entrez.ValidateFetchConfig(cfg.Fetch)
	if err != nil {
		return err
	}
	if fetchCfg.Format != types.FormatXML {
		return &entrez.ConfigError{Field: "format", Value: fetchCfg.Format, Reason: "harvest flattens XML records only"}
	}
	if _, err := types.ParseIncludedAuthors(string(cfg.Extraction.IncludedAuthors)); err != nil {
		return &entrez.ConfigError{Field: "included_authors", Value: cfg.Extraction.IncludedAuthors, Reason: "want first, last, or all"}
	}

	client := entrez.NewClient(cfg.Entrez)
	h, err := client.Search(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if h.Empty() {
		return formatHandle(cmd.OutOrStdout(), h, false)
	}

	chunks, fetchErr := fetchStage(cmd, cfg, h)
	var fe *entrez.FetchError
	if fetchErr != nil && !errors.As(fetchErr, &fe) {
		return fetchErr
	}

	meta := tabular.Meta{Query: h.Query, Count: h.Count}
	if err := extractStage(cmd, cfg, chunks, meta); err != nil {
		return err
	}
	return fetchErr
}
