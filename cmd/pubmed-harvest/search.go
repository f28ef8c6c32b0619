// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubmed-harvest/internal/entrez"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Run a PubMed query and report the result-set handle",
	Long: `Search submits QUERY to esearch with the History Server enabled and
prints the record count and the handle (WebEnv and query key) of the stored
result set. Use --save to keep the handle for a later fetch --handle.

The query uses PubMed syntax and is passed through unchanged, e.g.
  pubmed-harvest search 'Smith J[AU] AND 2019[DP]'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	addEntrezFlags(searchCmd)
	searchCmd.Flags().String("save", "", "write the handle to this YAML file")
	searchCmd.Flags().Bool("json", false, "output the handle as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := entrez.NewClient(cfg.Entrez)
	h, err := client.Search(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetString("save"); save != "" {
		if err := entrez.WriteHandleFile(save, h); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved handle to %s\n", save)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatHandle(cmd.OutOrStdout(), h, jsonOutput)
}
