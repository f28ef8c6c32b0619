// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvest/internal/entrez"
	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

const defaultFetchDir = "batches"

var fetchCmd = &cobra.Command{
	Use:   "fetch [QUERY]",
	Short: "Download every record of a query in fixed-size batches",
	Long: `Fetch runs QUERY through esearch (or reuses a handle saved by
search --save) and downloads the result set with efetch, one batch at a
time. Each batch is written to DEST-DIR/PREFIXNN.xml (or .txt for text
formats) and a manifest.yaml describing the run is written next to them.

A batch that fails is retried at the same offset with exponential backoff.
If it still fails the command stops; the batches already written are kept
and listed in the manifest.`,
	RunE: runFetch,
}

func init() {
	addEntrezFlags(fetchCmd)
	addFetchFlags(fetchCmd, defaultFetchDir)
	fetchCmd.Flags().String("handle", "", "reuse a handle file written by search --save")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Fetch.DestDir == "" {
		cfg.Fetch.DestDir = defaultFetchDir
	}

	handlePath, _ := cmd.Flags().GetString("handle")
	h, err := resolveHandle(cmd, cfg, handlePath, args)
	if err != nil {
		return err
	}

	_, err = fetchStage(cmd, cfg, h)
	return err
}

// resolveHandle loads the handle file when one is given and otherwise
// runs the query in args.
func resolveHandle(cmd *cobra.Command, cfg types.PipelineConfig, handlePath string, args []string) (types.ResultSetHandle, error) {
	if handlePath != "" {
		if len(args) > 0 {
			return types.ResultSetHandle{}, fmt.Errorf("provide either a query or --handle, not both")
		}
		return entrez.ReadHandleFile(handlePath)
	}
	if len(args) == 0 {
		return types.ResultSetHandle{}, fmt.Errorf("provide a PubMed query or --handle")
	}

	client := entrez.NewClient(cfg.Entrez)
	h, err := client.Search(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return h, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "found: %d records for %q\n", h.Count, h.Query)
	return h, nil
}

// fetchStage downloads every chunk of h. With a destination directory it
// also writes the manifest, including after a partial failure.
func fetchStage(cmd *cobra.Command, cfg types.PipelineConfig, h types.ResultSetHandle) ([]entrez.RawChunk, error) {
	fetchCfg, err := entrez.ValidateFetchConfig(cfg.Fetch)
	if err != nil {
		return nil, err
	}
	logger := zerolog.Ctx(cmd.Context())

	fetcher := &entrez.Fetcher{
		Client: entrez.NewClient(cfg.Entrez),
		Config: fetchCfg,
		Out:    cmd.OutOrStdout(),
	}
	chunks, fetchErr := fetcher.FetchAll(cmd.Context(), h)

	if fetchCfg.DestDir != "" && !h.Empty() && (len(chunks) > 0 || fetchErr != nil) {
		m := entrez.NewManifest(h, fetchCfg, chunks, fetchErr)
		if err := entrez.WriteManifest(fetchCfg.DestDir, m); err != nil {
			logger.Error().Err(err).Str("dir", fetchCfg.DestDir).Msg("could not write manifest")
		} else {
			logger.Debug().Str("run_id", m.RunID).Str("dir", fetchCfg.DestDir).Msg("wrote manifest")
		}
	}

	var fe *entrez.FetchError
	if errors.As(fetchErr, &fe) {
		where := "in memory"
		if fetchCfg.DestDir != "" {
			where = "in " + fetchCfg.DestDir
		}
		return chunks, fmt.Errorf("%w; %d of %d batch(es) preserved %s",
			fetchErr, len(chunks), h.Chunks(fetchCfg.BatchSize), where)
	}
	return chunks, fetchErr
}
