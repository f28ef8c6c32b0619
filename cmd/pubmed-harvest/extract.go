// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvest/internal/entrez"
	"github.com/pdiddy/pubmed-harvest/internal/extract"
	"github.com/pdiddy/pubmed-harvest/internal/tabular"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [FILES...]",
	Short: "Flatten downloaded PubMed XML batches into author rows",
	Long: `Extract reads PubMed XML batch files, splits them into records, and
produces one row per (record, author) pair with the columns pmid, doi,
title, abstract, year, month, day, journal_abbrev, journal, lastname,
firstname, address, and email.

Give the batch files as arguments, or --manifest with a directory written
by fetch to process its batches in order. With --out the table is written
to a .csv, .tsv, .json, .yaml, or .db file; otherwise a summary is printed.`,
	RunE: runExtract,
}

func init() {
	addExtractFlags(extractCmd)
	extractCmd.Flags().String("manifest", "", "directory containing a fetch manifest.yaml")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	manifestDir, _ := cmd.Flags().GetString("manifest")
	var chunks []entrez.RawChunk
	var meta tabular.Meta
	switch {
	case manifestDir != "" && len(args) > 0:
		return fmt.Errorf("provide either batch files or --manifest, not both")
	case manifestDir != "":
		m, err := entrez.ReadManifest(manifestDir)
		if err != nil {
			return err
		}
		if !m.Complete {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: manifest describes a partial fetch (%s)\n", m.Error)
		}
		chunks = m.RawChunks(manifestDir)
		meta = tabular.Meta{RunID: m.RunID, Query: m.Handle.Query, Count: m.Handle.Count}
	case len(args) > 0:
		chunks = extract.FileChunks(args)
	default:
		return fmt.Errorf("provide batch files or --manifest")
	}

	return extractStage(cmd, cfg, chunks, meta)
}

// extractStage aggregates chunks and writes or prints the table.
func extractStage(cmd *cobra.Command, cfg types.PipelineConfig, chunks []entrez.RawChunk, meta tabular.Meta) error {
	out, _ := cmd.Flags().GetString("out")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	agg := extract.NewAggregator(cfg.Extraction)
	agg.Dest = out
	agg.Meta = meta
	agg.Out = cmd.ErrOrStderr()

	res, err := agg.Aggregate(cmd.Context(), chunks)
	if res != nil {
		if out == "" {
			if ferr := formatTable(cmd.OutOrStdout(), res.Table, jsonOutput); ferr != nil && err == nil {
				err = ferr
			}
		}
		if !jsonOutput || out != "" {
			formatSummary(cmd.OutOrStdout(), res)
		}
	}
	return err
}
