// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docextract/pkg/types"
)

const defaultHistoryLimit = 50

// HistoryOptions filters History.
type HistoryOptions struct {
	// DocumentID restricts results to one document.
	DocumentID string

	// Limit caps the number of entries (default 50, negative means no limit).
	Limit int
}

// History returns document entries, newest first, with their images.
func (l *Ledger) History(ctx context.Context, opts HistoryOptions) ([]DocumentEntry, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	query := `SELECT run_id, document_id, title, topic_slug, status, error, json_path, export_status, processed_at
		FROM documents`
	var args []any
	if opts.DocumentID != "" {
		query += ` WHERE document_id = ?`
		args = append(args, opts.DocumentID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var entries []DocumentEntry
	for rows.Next() {
		var e DocumentEntry
		var exportStatus, processedAt string
		if err := rows.Scan(&e.RunID, &e.DocumentID, &e.Title, &e.TopicSlug, &e.Status,
			&e.Error, &e.JSONPath, &exportStatus, &processedAt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		e.ExportStatus = types.ExportStatus(exportStatus)
		if t, err := time.Parse(time.RFC3339Nano, processedAt); err == nil {
			e.ProcessedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		imgs, err := l.images(ctx, entries[i].RunID, entries[i].DocumentID)
		if err != nil {
			return nil, err
		}
		entries[i].Images = imgs
	}
	return entries, nil
}

func (l *Ledger) images(ctx context.Context, runID, documentID string) ([]ImageEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT seq, object_id, storage_key, error FROM images WHERE run_id = ? AND document_id = ? ORDER BY seq`,
		runID, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying images: %w", err)
	}
	defer rows.Close()

	var out []ImageEntry
	for rows.Next() {
		var img ImageEntry
		if err := rows.Scan(&img.Seq, &img.ObjectID, &img.Key, &img.Error); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// ExportYAML writes the full history to path.
func (l *Ledger) ExportYAML(ctx context.Context, path string) error {
	entries, err := l.History(ctx, HistoryOptions{Limit: -1})
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
