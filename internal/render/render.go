// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a source document tree into the article JSON model.
//
// The walk skips the Introduction heading and its body at the top level,
// folds everything after the References heading into one paragraph, and
// numbers images in document order. The first image becomes the cover and
// is left out of the body.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/docextract/pkg/types"
)

// renderer holds the state of one render pass. The image counter is
// shared by the top level and every nested table cell.
type renderer struct {
	doc   *types.Document
	slug  string
	seq   int
	cover string
}

// Build renders doc into an Article. It never fails: missing optional
// fields degrade to empty values. A nil doc renders as an empty article.
func Build(doc *types.Document) types.Article {
	if doc == nil {
		doc = &types.Document{}
	}
	r := &renderer{doc: doc, slug: TopicSlug(doc.Title)}

	intro := findIntroduction(doc.Blocks)
	body := r.topLevel(doc.Blocks, intro.skip)

	return types.Article{
		Title:    CleanTitle(doc.Title),
		Info:     intro.info(),
		Image:    r.cover,
		Document: body,
	}
}

// ExtractJSON renders doc and serializes it with two-space indentation.
// Output is byte-identical across runs on the same document.
func ExtractJSON(doc *types.Document) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Build(doc)); err != nil {
		return "", fmt.Errorf("encoding article: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// topLevel renders the document body. After the References heading every
// paragraph is collected into the trailing references node; tables there
// are still rendered in place.
func (r *renderer) topLevel(blocks []types.Block, skip map[int]bool) []types.Node {
	out := []types.Node{}
	var refs references

	for i, b := range blocks {
		if skip[i] {
			continue
		}
		if p, ok := b.(*types.Paragraph); ok {
			if refs.active {
				refs.add(p)
				continue
			}
			if isHeading(p, referencesHeading) {
				refs.active = true
			}
		}
		out = r.appendBlock(out, b)
	}

	if n := refs.node(); n != nil {
		out = append(out, n)
	}
	return out
}

// blocks renders cell content. No section handling applies below the top level.
func (r *renderer) blocks(blocks []types.Block) []types.Node {
	out := []types.Node{}
	for _, b := range blocks {
		out = r.appendBlock(out, b)
	}
	return out
}

func (r *renderer) appendBlock(out []types.Node, b types.Block) []types.Node {
	switch b := b.(type) {
	case *types.Paragraph:
		if n := r.paragraph(b); n != nil {
			out = append(out, n)
		}
	case *types.Table:
		out = append(out, r.table(b))
	default:
		panic(fmt.Sprintf("render: unexpected block %T", b))
	}
	return out
}

// paragraph renders p, or returns nil when nothing in it produced output.
func (r *renderer) paragraph(p *types.Paragraph) *types.ParagraphNode {
	node := &types.ParagraphNode{Type: types.NodeParagraph}
	if p.Bullet != nil {
		level := p.Bullet.NestingLevel
		node.Type = types.NodeListItem
		node.NestingLevel = &level
	}
	if p.Style != nil {
		node.StyleType = p.Style.NamedStyleType
		node.Alignment = p.Style.Alignment
	}

	for _, run := range p.Runs {
		switch run := run.(type) {
		case *types.TextRun:
			if run.Content == "\n" {
				continue
			}
			node.Content = append(node.Content, textNode(run))
		case *types.ImageRef:
			if img := r.image(run); img != nil {
				node.Content = append(node.Content, img)
			}
		default:
			panic(fmt.Sprintf("render: unexpected inline run %T", run))
		}
	}

	if len(node.Content) == 0 {
		return nil
	}
	return node
}

func textNode(run *types.TextRun) *types.TextNode {
	n := &types.TextNode{Type: types.NodeText, Value: run.Content}
	if style := NormalizeStyle(run.Style); !style.IsEmpty() {
		n.Style = &style
	}
	return n
}

// image numbers a resolvable image reference. The first image is recorded
// as the cover and produces no node.
func (r *renderer) image(ref *types.ImageRef) *types.ImageNode {
	img, ok := r.doc.Images[ref.ObjectID]
	if !ok {
		return nil
	}
	r.seq++
	url := ImageURL(r.slug, r.doc.ID, r.seq)
	if r.seq == 1 {
		r.cover = url
		return nil
	}
	return &types.ImageNode{
		Type:     types.NodeImage,
		ObjectID: ref.ObjectID,
		URL:      url,
		Width:    img.Width,
		Height:   img.Height,
	}
}

func (r *renderer) table(t *types.Table) *types.TableNode {
	node := &types.TableNode{
		Type: types.NodeTable,
		Rows: make([]types.TableRowNode, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cells := make([]types.TableCellNode, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = types.TableCellNode{
				Type:    types.NodeTableCell,
				Content: r.blocks(cell.Blocks),
			}
		}
		node.Rows[i] = types.TableRowNode{Type: types.NodeTableRow, Cells: cells}
	}
	return node
}
