// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records extraction runs in a SQLite database: one row per
// run, per processed document, and per exported image.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docextract/pkg/types"
)

// Document status values.
const (
	StatusRendered = "rendered"
	StatusFailed   = "failed"
)

// DocumentEntry is one processed document within a run.
type DocumentEntry struct {
	RunID        string             `json:"run_id" yaml:"run_id"`
	DocumentID   string             `json:"document_id" yaml:"document_id"`
	Title        string             `json:"title,omitempty" yaml:"title,omitempty"`
	TopicSlug    string             `json:"topic_slug,omitempty" yaml:"topic_slug,omitempty"`
	Status       string             `json:"status" yaml:"status"`
	Error        string             `json:"error,omitempty" yaml:"error,omitempty"`
	JSONPath     string             `json:"json_path,omitempty" yaml:"json_path,omitempty"`
	ExportStatus types.ExportStatus `json:"export_status,omitempty" yaml:"export_status,omitempty"`
	Images       []ImageEntry       `json:"images,omitempty" yaml:"images,omitempty"`
	ProcessedAt  time.Time          `json:"processed_at" yaml:"processed_at"`
}

// ImageEntry is one image export attempt.
type ImageEntry struct {
	Seq      int    `json:"seq" yaml:"seq"`
	ObjectID string `json:"object_id" yaml:"object_id"`
	Key      string `json:"key" yaml:"key"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Ledger manages the run ledger database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger at path and ensures the schema exists.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			succeeded INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			document_id TEXT NOT NULL,
			title TEXT,
			topic_slug TEXT,
			status TEXT NOT NULL,
			error TEXT,
			json_path TEXT,
			export_status TEXT,
			processed_at TEXT NOT NULL,
			UNIQUE(run_id, document_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_document_id ON documents(document_id)`,
		`CREATE TABLE IF NOT EXISTS images (
			run_id TEXT NOT NULL,
			document_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			object_id TEXT NOT NULL,
			storage_key TEXT NOT NULL,
			error TEXT,
			PRIMARY KEY (run_id, document_id, seq),
			FOREIGN KEY (run_id, document_id) REFERENCES documents(run_id, document_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun creates a run record and returns its ID.
func (l *Ledger) BeginRun(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run with its outcome counts.
func (l *Ledger) FinishRun(ctx context.Context, runID string, succeeded, failed int) error {
	res, err := l.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, succeeded = ?, failed = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), succeeded, failed, runID)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}

// RecordDocument stores a document outcome and its images in one transaction.
func (l *Ledger) RecordDocument(ctx context.Context, e DocumentEntry) error {
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now()
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (run_id, document_id, title, topic_slug, status, error, json_path, export_status, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, document_id) DO UPDATE SET
			title=excluded.title, topic_slug=excluded.topic_slug, status=excluded.status,
			error=excluded.error, json_path=excluded.json_path,
			export_status=excluded.export_status, processed_at=excluded.processed_at`,
		e.RunID, e.DocumentID, e.Title, e.TopicSlug, e.Status, e.Error, e.JSONPath,
		string(e.ExportStatus), e.ProcessedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting document %s: %w", e.DocumentID, err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM images WHERE run_id = ? AND document_id = ?`, e.RunID, e.DocumentID); err != nil {
		return fmt.Errorf("deleting old images: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO images (run_id, document_id, seq, object_id, storage_key, error) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, img := range e.Images {
		if _, err := stmt.ExecContext(ctx, e.RunID, e.DocumentID, img.Seq, img.ObjectID, img.Key, img.Error); err != nil {
			return fmt.Errorf("inserting image %d: %w", img.Seq, err)
		}
	}

	return tx.Commit()
}
