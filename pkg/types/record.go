// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ExportStatus indicates how far image export got for a document.
type ExportStatus string

const (
	ExportDone    ExportStatus = "exported"
	ExportPartial ExportStatus = "partial"
	ExportFailed  ExportStatus = "failed"
	ExportSkipped ExportStatus = "skipped"
)

// DocumentRecord is the metadata sidecar written next to each rendered
// document.
type DocumentRecord struct {
	// ID is the source document ID.
	ID string `json:"id" yaml:"id"`

	// Title is the cleaned article title.
	Title string `json:"title" yaml:"title"`

	// TopicSlug is the storage path segment derived from the title.
	TopicSlug string `json:"topic_slug" yaml:"topic_slug"`

	// JSONPath is the local path of the rendered JSON.
	JSONPath string `json:"json_path" yaml:"json_path"`

	// CoverImage is the article_image URL, empty when the document has no images.
	CoverImage string `json:"cover_image,omitempty" yaml:"cover_image,omitempty"`

	// ImageKeys lists the storage keys that were written, in sequence order.
	ImageKeys []string `json:"image_keys,omitempty" yaml:"image_keys,omitempty"`

	// ExportStatus tracks the image upload outcome.
	ExportStatus ExportStatus `json:"export_status" yaml:"export_status"`

	// ProcessedAt is when the record was written.
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`
}
