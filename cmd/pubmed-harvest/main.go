// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubmed-harvest CLI.
// The pipeline stages are subcommands: search (esearch), fetch (efetch in
// batches), extract (author rows), and harvest, which runs all three.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubmed-harvest/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// credentials holds the NCBI credentials loaded from the secrets directory at startup.
var credentials secrets.Credentials

// rootCmd is the base command for the pubmed-harvest CLI.
var rootCmd = &cobra.Command{
	Use:   "pubmed-harvest",
	Short: "Retrieve PubMed records in batches and flatten them into author rows",
	Long: `pubmed-harvest queries PubMed through the NCBI E-utilities, stores the
result set on the History Server, downloads every matching record in
fixed-size batches, and flattens the XML records into one row per
(record, author) pair.

Each stage is a subcommand: search, fetch, and extract. harvest runs the
whole pipeline in one go.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd); err != nil {
			return err
		}

		logger := newLogger(os.Stderr, viper.GetBool("verbose"))
		log.Logger = logger
		cmd.SetContext(logger.WithContext(cmd.Context()))

		c, err := secrets.Load(viper.GetString("secrets_dir"))
		if err != nil {
			return err
		}
		credentials = c
		if names := c.Names(); len(names) > 0 {
			logger.Debug().Strs("files", names).Msg("loaded credentials")
		}
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug().Str("file", used).Msg("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./pubmed-harvest.yaml or ~/.config/pubmed-harvest/pubmed-harvest.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log debug diagnostics to stderr")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory holding ncbi-api-key and ncbi-email files")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubmed-harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubmed-harvest"))
		}
	}

	viper.SetEnvPrefix("PUBMED_HARVEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// newLogger returns a console logger; verbose enables debug level.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
