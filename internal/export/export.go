// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export copies document images to object storage.
//
// Images are discovered by a depth-first walk over the unmodified tree,
// table cells included, and numbered from 1 in that order. Nothing is
// skipped for the Introduction section, so when the introduction holds an
// image the export numbering runs one ahead of the rendered JSON.
package export

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdiddy/docextract/internal/render"
	"github.com/pdiddy/docextract/pkg/types"
)

// ContentType is written for every upload regardless of source format.
const ContentType = "image/jpeg"

// Fetcher reads the bytes behind a content URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Store writes one object.
type Store interface {
	Put(ctx context.Context, bucket, key string, data []byte, contentType string) error
}

// Image is one discovered image and the key it is exported under.
type Image struct {
	Seq        int
	ObjectID   string
	ContentURI string
	Key        string
}

// Outcome records what happened to one image.
type Outcome struct {
	Image
	Err error
}

// Result holds the outcome of exporting one document.
type Result struct {
	Uploaded int
	Failed   int
	Images   []Outcome
}

// Total returns the number of images attempted.
func (r Result) Total() int {
	return r.Uploaded + r.Failed
}

// HasFailures reports whether any image failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// Keys returns the keys that were written, in sequence order.
func (r Result) Keys() []string {
	var keys []string
	for _, o := range r.Images {
		if o.Err == nil {
			keys = append(keys, o.Key)
		}
	}
	return keys
}

// Options configures an Exporter.
type Options struct {
	// Bucket is passed to every Store.Put call.
	Bucket string

	// Logger for per-image progress. Defaults to slog.Default().
	Logger *slog.Logger
}

// Exporter uploads the images of a document.
type Exporter struct {
	store   Store
	fetcher Fetcher
	bucket  string
	logger  *slog.Logger
}

// New creates an Exporter. The store handle is reused for every document.
func New(store Store, fetcher Fetcher, opts Options) *Exporter {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Exporter{
		store:   store,
		fetcher: fetcher,
		bucket:  opts.Bucket,
		logger:  opts.Logger,
	}
}

// Export fetches and uploads every image of doc in sequence order. A
// failed image is logged and recorded; the remaining images are still
// processed.
func (e *Exporter) Export(ctx context.Context, doc *types.Document) Result {
	var result Result
	if doc == nil || doc.Blocks == nil {
		return result
	}

	imgs := CollectImages(doc)
	e.logger.Info("found images to export", "count", len(imgs), "document", doc.ID, "title", doc.Title)

	for _, img := range imgs {
		e.logger.Info("processing image", "seq", img.Seq, "key", img.Key)
		err := e.exportOne(ctx, img)
		result.Images = append(result.Images, Outcome{Image: img, Err: err})
		if err != nil {
			e.logger.Error("image export failed", "key", img.Key, "error", err)
			result.Failed++
			continue
		}
		e.logger.Info("image uploaded", "bucket", e.bucket, "key", img.Key)
		result.Uploaded++
	}
	return result
}

func (e *Exporter) exportOne(ctx context.Context, img Image) error {
	data, err := e.fetcher.Fetch(ctx, img.ContentURI)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", img.ObjectID, err)
	}
	if err := e.store.Put(ctx, e.bucket, img.Key, data, ContentType); err != nil {
		return fmt.Errorf("storing %s: %w", img.Key, err)
	}
	return nil
}

// CollectImages lists the exportable images of doc in document order:
// paragraph runs first, table cells row by row, recursing into nested
// tables. An image counts only if its object ID resolves and it carries a
// content URI.
func CollectImages(doc *types.Document) []Image {
	if doc == nil {
		return nil
	}
	slug := render.TopicSlug(doc.Title)
	var imgs []Image
	collect(doc.Blocks, doc.Images, func(id string, im types.InlineImage) {
		n := len(imgs) + 1
		imgs = append(imgs, Image{
			Seq:        n,
			ObjectID:   id,
			ContentURI: im.ContentURI,
			Key:        render.ImageKey(slug, doc.ID, n),
		})
	})
	return imgs
}

func collect(blocks []types.Block, images map[string]types.InlineImage, visit func(string, types.InlineImage)) {
	for _, b := range blocks {
		switch b := b.(type) {
		case *types.Paragraph:
			for _, run := range b.Runs {
				ref, ok := run.(*types.ImageRef)
				if !ok {
					continue
				}
				im, ok := images[ref.ObjectID]
				if !ok || im.ContentURI == "" {
					continue
				}
				visit(ref.ObjectID, im)
			}
		case *types.Table:
			for _, row := range b.Rows {
				for _, c := range row.Cells {
					collect(c.Blocks, images, visit)
				}
			}
		default:
			panic(fmt.Sprintf("export: unexpected block %T", b))
		}
	}
}
