// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// HeadingStyle is the named paragraph style that marks a top-level heading.
const HeadingStyle = "HEADING_1"

// NormalTextStyle is the named paragraph style of body text.
const NormalTextStyle = "NORMAL_TEXT"

// Document is a fully fetched source document. It is the only input the
// render and export passes consume.
type Document struct {
	// ID is the opaque source document ID. It becomes a storage path segment.
	ID string

	// Title is the raw document title, possibly carrying a " - Completed" suffix.
	Title string

	// Blocks is the ordered top-level content. Nil means the document had no body.
	Blocks []Block

	// Images maps inline object IDs to image metadata.
	Images map[string]InlineImage
}

// Block is one top-level or cell-level content unit. The set of
// implementations is closed: *Paragraph and *Table.
type Block interface {
	isBlock()
}

// Paragraph is a run of inline content with optional style.
type Paragraph struct {
	// Style is nil when the source carried no paragraph style.
	Style *ParagraphStyle

	// Bullet is non-nil when the paragraph is a list item.
	Bullet *Bullet

	Runs []InlineRun
}

// ParagraphStyle holds the paragraph-level attributes that survive into output.
type ParagraphStyle struct {
	NamedStyleType string
	Alignment      string
}

// Bullet marks list membership. NestingLevel is 0 for top-level items.
type Bullet struct {
	NestingLevel int64
}

// Table is an ordered list of rows.
type Table struct {
	Rows []TableRow
}

// TableRow is an ordered list of cells.
type TableRow struct {
	Cells []TableCell
}

// TableCell holds its own block list; tables may nest.
type TableCell struct {
	Blocks []Block
}

func (*Paragraph) isBlock() {}
func (*Table) isBlock()     {}

// InlineRun is one piece of a paragraph. The set of implementations is
// closed: *TextRun and *ImageRef.
type InlineRun interface {
	isInlineRun()
}

// TextRun is a span of styled text.
type TextRun struct {
	Content string
	Style   *TextStyle
}

// ImageRef points at an entry of Document.Images.
type ImageRef struct {
	ObjectID string
}

func (*TextRun) isInlineRun()  {}
func (*ImageRef) isInlineRun() {}

// TextStyle holds the character attributes the renderer understands.
type TextStyle struct {
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	LinkURL       string
	FontFamily    string
}

// InlineImage describes an embedded image. ContentURI is usually a
// short-lived signed URL owned by the source session.
type InlineImage struct {
	ObjectID    string
	ContentURI  string
	ContentType string

	// Width and Height are nil when the source omits a size.
	Width  *float64
	Height *float64
}

// Text returns the concatenated content of all text runs, unmodified.
func (p *Paragraph) Text() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	for _, r := range p.Runs {
		if t, ok := r.(*TextRun); ok {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}

// NamedStyle returns the paragraph's named style type, or "" when unstyled.
func (p *Paragraph) NamedStyle() string {
	if p == nil || p.Style == nil {
		return ""
	}
	return p.Style.NamedStyleType
}
