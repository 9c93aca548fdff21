// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Article is the root of the rendered JSON tree. Field order is the
// serialized key order.
type Article struct {
	Title string `json:"article_title"`

	// Info is the introduction text, or "." when the document has none.
	Info string `json:"article_info"`

	// Image is the cover image URL, or "" when the document has no images.
	Image string `json:"article_image"`

	Document []Node `json:"document"`
}

// Node types as they appear in the "type" field of the output.
const (
	NodeParagraph = "paragraph"
	NodeListItem  = "listItem"
	NodeTable     = "table"
	NodeTableRow  = "tableRow"
	NodeTableCell = "tableCell"
	NodeText      = "text"
	NodeImage     = "image"
)

// Node is a rendered block: *ParagraphNode or *TableNode.
type Node interface {
	isNode()
}

// ContentNode is a rendered inline item: *TextNode or *ImageNode.
type ContentNode interface {
	isContentNode()
}

// ParagraphNode renders a paragraph or list item.
type ParagraphNode struct {
	Type string `json:"type"`

	// NestingLevel is set only for list items.
	NestingLevel *int64 `json:"nestingLevel,omitempty"`

	StyleType string        `json:"styleType,omitempty"`
	Alignment string        `json:"alignment,omitempty"`
	Content   []ContentNode `json:"content"`
}

// TableNode renders a table.
type TableNode struct {
	Type string         `json:"type"`
	Rows []TableRowNode `json:"rows"`
}

// TableRowNode renders one table row.
type TableRowNode struct {
	Type  string          `json:"type"`
	Cells []TableCellNode `json:"cells"`
}

// TableCellNode renders one table cell and its nested blocks.
type TableCellNode struct {
	Type    string `json:"type"`
	Content []Node `json:"content"`
}

// TextNode renders a text run. Style is omitted when no attribute is set.
type TextNode struct {
	Type  string     `json:"type"`
	Value string     `json:"value"`
	Style *StyleNode `json:"style,omitempty"`
}

// StyleNode carries only the attributes that are set; false and empty
// values are never written.
type StyleNode struct {
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
	LinkURL       string `json:"linkUrl,omitempty"`
	FontFamily    string `json:"fontFamily,omitempty"`
}

// IsEmpty reports whether no attribute is set.
func (s StyleNode) IsEmpty() bool {
	return s == StyleNode{}
}

// ImageNode renders a body image. Width and Height are copied verbatim
// from the source size when present.
type ImageNode struct {
	Type     string   `json:"type"`
	ObjectID string   `json:"objectId"`
	URL      string   `json:"url"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
}

func (*ParagraphNode) isNode() {}
func (*TableNode) isNode()     {}

func (*TextNode) isContentNode()  {}
func (*ImageNode) isContentNode() {}
