// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docextract/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show processed documents from the run ledger",
	Long: `History lists documents recorded by previous extract runs, newest
first. Use --export to write the whole ledger as YAML.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("document", "", "show only this document ID")
	historyCmd.Flags().Int("limit", 50, "maximum number of entries (-1 for all)")
	historyCmd.Flags().String("export", "", "write the full history as YAML to this path")
	historyCmd.Flags().Bool("json", false, "output entries as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.LedgerDB == "" {
		return fmt.Errorf("no ledger configured (set LEDGER_DB)")
	}
	l, err := ledger.Open(cfg.LedgerDB)
	if err != nil {
		return err
	}
	defer l.Close()

	ctx := context.Background()
	if path, _ := cmd.Flags().GetString("export"); path != "" {
		if err := l.ExportYAML(ctx, path); err != nil {
			return err
		}
		fmt.Printf("History written to %s\n", path)
		return nil
	}

	docID, _ := cmd.Flags().GetString("document")
	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := l.History(ctx, ledger.HistoryOptions{DocumentID: docID, Limit: limit})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	printHistory(entries)
	return nil
}

func printHistory(entries []ledger.DocumentEntry) {
	if len(entries) == 0 {
		fmt.Println("No documents recorded.")
		return
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-30s  %-8s  %-8s  %-6s  %s\n",
		"Run", "Document", "Status", "Export", "Images", "Processed")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for _, e := range entries {
		run := e.RunID
		if len(run) > 8 {
			run = run[:8]
		}
		doc := e.DocumentID
		if len(doc) > 30 {
			doc = doc[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-30s  %-8s  %-8s  %-6d  %s\n",
			run, doc, e.Status, e.ExportStatus, len(e.Images), e.ProcessedAt.Local().Format("2006-01-02 15:04"))
		if e.Error != "" {
			fmt.Fprintf(os.Stdout, "          error: %s\n", e.Error)
		}
	}
}
