// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs the render and export passes over a list of documents.
// Documents are processed one after another; a failure is reported and the
// run moves on to the next document.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docextract/internal/export"
	"github.com/pdiddy/docextract/internal/ledger"
	"github.com/pdiddy/docextract/internal/render"
	"github.com/pdiddy/docextract/pkg/types"
)

// Source fetches one document by ID.
type Source interface {
	Get(ctx context.Context, id string) (*types.Document, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, id string) (*types.Document, error)

// Get calls f.
func (f SourceFunc) Get(ctx context.Context, id string) (*types.Document, error) {
	return f(ctx, id)
}

// Recorder persists per-document outcomes. *ledger.Ledger satisfies it.
type Recorder interface {
	RecordDocument(ctx context.Context, e ledger.DocumentEntry) error
}

// Options configures a batch run.
type Options struct {
	// OutputDir receives {id}.json and {id}.yaml. Created if missing.
	OutputDir string

	// Exporter uploads images. Nil skips the export pass.
	Exporter *export.Exporter

	// Ledger and RunID are optional; when Ledger is nil nothing is recorded.
	Ledger Recorder
	RunID  string

	Logger *slog.Logger
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Succeeded int
	Failed    int
	Records   []*types.DocumentRecord
}

// Total returns the number of documents processed.
func (r BatchResult) Total() int {
	return r.Succeeded + r.Failed
}

// HasFailures reports whether any document failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Run processes ids in order, printing per-document status and a summary to w.
func Run(ctx context.Context, src Source, ids []string, opts Options, w io.Writer) BatchResult {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Exporter == nil {
		fmt.Fprintln(w, "storage not configured: image export skipped")
	}

	var result BatchResult
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
			result.Failed++
			continue
		}

		rec, exp, err := processOne(ctx, src, id, opts, w)
		record(ctx, opts, id, rec, exp, err)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", id, err)
			result.Failed++
			continue
		}
		result.Succeeded++
		result.Records = append(result.Records, rec)
	}
	fmt.Fprintf(w, "\nBatch summary: %d succeeded, %d failed (total: %d)\n",
		result.Succeeded, result.Failed, result.Total())
	return result
}

func processOne(ctx context.Context, src Source, id string, opts Options, w io.Writer) (*types.DocumentRecord, export.Result, error) {
	var exp export.Result

	doc, err := src.Get(ctx, id)
	if err != nil {
		return nil, exp, err
	}
	if doc == nil {
		return nil, exp, fmt.Errorf("source returned no document for %s", id)
	}
	if doc.ID == "" {
		doc.ID = id
	}

	js, err := render.ExtractJSON(doc)
	if err != nil {
		return nil, exp, fmt.Errorf("rendering %s: %w", doc.ID, err)
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, exp, fmt.Errorf("creating directory %s: %w", opts.OutputDir, err)
	}
	jsonPath := filepath.Join(opts.OutputDir, doc.ID+".json")
	if err := writeFile(jsonPath, []byte(js)); err != nil {
		return nil, exp, fmt.Errorf("writing %s: %w", jsonPath, err)
	}
	fmt.Fprintf(w, "rendered: %s (%s)\n", doc.ID, render.CleanTitle(doc.Title))

	status := types.ExportSkipped
	if opts.Exporter != nil {
		exp = opts.Exporter.Export(ctx, doc)
		status = exportStatus(exp)
		fmt.Fprintf(w, "  images: %d uploaded, %d failed\n", exp.Uploaded, exp.Failed)
	}

	article := render.Build(doc)
	rec := &types.DocumentRecord{
		ID:           doc.ID,
		Title:        article.Title,
		TopicSlug:    render.TopicSlug(doc.Title),
		JSONPath:     jsonPath,
		CoverImage:   article.Image,
		ImageKeys:    exp.Keys(),
		ExportStatus: status,
		ProcessedAt:  time.Now().UTC(),
	}
	if err := writeRecord(rec, filepath.Join(opts.OutputDir, doc.ID+".yaml")); err != nil {
		// Sidecar failures do not fail the document.
		opts.Logger.Warn("writing document record", "document", doc.ID, "error", err)
	}
	return rec, exp, nil
}

func exportStatus(r export.Result) types.ExportStatus {
	switch {
	case r.Failed == 0:
		return types.ExportDone
	case r.Uploaded == 0:
		return types.ExportFailed
	default:
		return types.ExportPartial
	}
}

func record(ctx context.Context, opts Options, id string, rec *types.DocumentRecord, exp export.Result, runErr error) {
	if opts.Ledger == nil {
		return
	}
	e := ledger.DocumentEntry{
		RunID:      opts.RunID,
		DocumentID: id,
		Status:     ledger.StatusRendered,
	}
	if runErr != nil {
		e.Status = ledger.StatusFailed
		e.Error = runErr.Error()
	}
	if rec != nil {
		e.DocumentID = rec.ID
		e.Title = rec.Title
		e.TopicSlug = rec.TopicSlug
		e.JSONPath = rec.JSONPath
		e.ExportStatus = rec.ExportStatus
		e.ProcessedAt = rec.ProcessedAt
	}
	for _, o := range exp.Images {
		img := ledger.ImageEntry{Seq: o.Seq, ObjectID: o.ObjectID, Key: o.Key}
		if o.Err != nil {
			img.Error = o.Err.Error()
		}
		e.Images = append(e.Images, img)
	}
	if err := opts.Ledger.RecordDocument(ctx, e); err != nil {
		opts.Logger.Error("recording document in ledger", "document", e.DocumentID, "error", err)
	}
}

func writeRecord(rec *types.DocumentRecord, path string) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return writeFile(path, data)
}

// writeFile writes data through a temporary file in the same directory and
// renames it into place.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docextract-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// ReadIDs parses one document ID per line. Blank lines and lines starting
// with '#' are ignored.
func ReadIDs(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading IDs: %w", err)
	}
	return ids, nil
}
