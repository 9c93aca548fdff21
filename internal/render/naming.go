// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// titleSuffix is stripped case-sensitively from the emitted title.
	titleSuffix = " - Completed"
	// slugSuffix is stripped from the lower-cased title before slugging.
	slugSuffix = " - completed"
)

// ImageURLPrefix is the path under which rendered image URLs are served.
const ImageURLPrefix = "/api/images"

// CleanTitle strips a trailing " - Completed" from title.
func CleanTitle(title string) string {
	return strings.TrimSuffix(title, titleSuffix)
}

// TopicSlug derives the storage path segment for a document title: the
// title is lower-cased, a trailing " - completed" is removed, and every
// character outside [a-z0-9] is dropped. "My Doc!" becomes "mydoc".
func TopicSlug(title string) string {
	if title == "" {
		return ""
	}
	lower := strings.TrimSuffix(cases.Lower(language.Und).String(title), slugSuffix)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ImageName returns the file name of the nth (1-based) image.
func ImageName(n int) string {
	return fmt.Sprintf("image_%03d.jpg", n)
}

// ImageKey returns the object storage key of the nth image of a document.
func ImageKey(topicSlug, documentID string, n int) string {
	return topicSlug + "/" + documentID + "/" + ImageName(n)
}

// ImageURL returns the URL the rendered JSON uses for the nth image. It is
// ImageKey under the /api/images prefix.
func ImageURL(topicSlug, documentID string, n int) string {
	return ImageURLPrefix + "/" + ImageKey(topicSlug, documentID, n)
}
