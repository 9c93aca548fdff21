// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docextract/internal/batch"
	"github.com/pdiddy/docextract/internal/export"
	"github.com/pdiddy/docextract/internal/gdocs"
	"github.com/pdiddy/docextract/internal/httputil"
	"github.com/pdiddy/docextract/internal/ledger"
	"github.com/pdiddy/docextract/internal/storage"
	"github.com/pdiddy/docextract/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [document-ids...]",
	Short: "Render documents to JSON and export their images",
	Long: `Extract fetches each document, writes {documentId}.json and a
{documentId}.yaml record to the output directory, and uploads the
document's images to the configured store. Documents are processed one at
a time; a failed document is reported and the run continues.

Document IDs come from the arguments or from --file (one per line, '#'
starts a comment). --input renders saved Docs API JSON responses instead
and needs no Google credentials.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("file", "f", "", "file with one document ID per line")
	extractCmd.Flags().StringSlice("input", nil, "saved Docs API JSON files to render instead of fetching")
	extractCmd.Flags().String("output-dir", "", "directory for rendered JSON (default from OUTPUT_DIR)")
	extractCmd.Flags().Bool("no-ledger", false, "do not record the run in the ledger database")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ids, err := documentIDs(cmd, args)
	if err != nil {
		return err
	}
	inputs, _ := cmd.Flags().GetStringSlice("input")
	switch {
	case len(ids) == 0 && len(inputs) == 0:
		return fmt.Errorf("provide one or more document IDs, --file, or --input")
	case len(ids) > 0 && len(inputs) > 0:
		return fmt.Errorf("--input cannot be combined with document IDs")
	}

	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.OutputDir = dir
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}
	exporter, err := newExporter(ctx, cfg, httpClient)
	if err != nil {
		return err
	}

	opts := batch.Options{
		OutputDir: cfg.OutputDir,
		Exporter:  exporter,
		Logger:    logger,
	}

	noLedger, _ := cmd.Flags().GetBool("no-ledger")
	var l *ledger.Ledger
	if cfg.LedgerDB != "" && !noLedger {
		l, err = ledger.Open(cfg.LedgerDB)
		if err != nil {
			return err
		}
		defer l.Close()
		runID, err := l.BeginRun(ctx)
		if err != nil {
			return err
		}
		opts.Ledger = l
		opts.RunID = runID
	}

	var src batch.Source
	targets := ids
	if len(inputs) > 0 {
		src = batch.SourceFunc(loadInput)
		targets = inputs
	} else {
		authClient, err := gdocs.NewHTTPClient(ctx, cfg.Google, os.Stdin, os.Stderr)
		if err != nil {
			return err
		}
		client, err := gdocs.NewClient(ctx, authClient)
		if err != nil {
			return err
		}
		src = client
	}

	result := batch.Run(ctx, src, targets, opts, os.Stdout)

	if l != nil {
		if err := l.FinishRun(ctx, opts.RunID, result.Succeeded, result.Failed); err != nil {
			logger.Error("finishing ledger run", "run", opts.RunID, "error", err)
		}
	}
	if result.HasFailures() {
		return fmt.Errorf("%d document(s) failed", result.Failed)
	}
	return nil
}

// documentIDs merges positional IDs with those listed in --file.
func documentIDs(cmd *cobra.Command, args []string) ([]string, error) {
	ids := append([]string(nil), args...)
	path, _ := cmd.Flags().GetString("file")
	if path == "" {
		return ids, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ID file: %w", err)
	}
	defer f.Close()
	fromFile, err := batch.ReadIDs(f)
	if err != nil {
		return nil, err
	}
	return append(ids, fromFile...), nil
}

// newExporter returns nil when no storage backend is configured.
func newExporter(ctx context.Context, cfg types.Config, client *http.Client) (*export.Exporter, error) {
	store, err := storage.New(ctx, cfg.Storage)
	if errors.Is(err, storage.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	fetcher := httputil.NewFetcher(client, cfg.HTTP.UserAgent)
	return export.New(store, fetcher, export.Options{Bucket: cfg.Storage.Bucket, Logger: logger}), nil
}

// loadInput reads a saved Docs API response. Dumps without a document ID
// take the file name.
func loadInput(_ context.Context, path string) (*types.Document, error) {
	doc, err := gdocs.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if doc.ID == "" {
		doc.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}
