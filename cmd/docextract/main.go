// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docextract CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docextract/internal/config"
	"github.com/pdiddy/docextract/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is loaded once before any subcommand runs.
var cfg types.Config

// logger is shared by every subcommand.
var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "docextract",
	Short: "Convert Google Docs articles into JSON and export their images",
	Long: `docextract fetches Google Docs documents, renders each one into the
article JSON format consumed by the website, and copies every embedded
image into object storage under {topic}/{documentId}/image_NNN.jpg.

Configuration comes from the environment, then .env.local, then files in
.secrets/, then built-in defaults.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		cfgFile, _ := cmd.Flags().GetString("config")
		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		loaded, err := config.Load(config.Options{
			File:       cfgFile,
			Required:   cmd.Flags().Changed("config"),
			SecretsDir: secretsDir,
			UserAgent:  "docextract/" + version,
		})
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debug("configuration loaded",
			"storage", cfg.Storage.Backend,
			"bucket", cfg.Storage.Bucket,
			"output_dir", cfg.OutputDir,
			"ledger", cfg.LedgerDB)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", ".env.local", "dotenv or YAML config file")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of one-file-per-value secrets")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
