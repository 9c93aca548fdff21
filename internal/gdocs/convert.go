// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gdocs fetches documents from the Google Docs API and converts
// them into the tree the renderer consumes.
package gdocs

import (
	"google.golang.org/api/docs/v1"

	"github.com/pdiddy/docextract/pkg/types"
)

// FromAPI converts a Docs API document. A missing body converts to a
// document with nil Blocks. Structural elements other than paragraphs and
// tables (section breaks, tables of contents) are dropped.
//
// Every inline object is kept in the image map so references resolve,
// even when it carries no image properties; such entries have an empty
// ContentURI.
func FromAPI(d *docs.Document) *types.Document {
	if d == nil {
		return &types.Document{}
	}
	doc := &types.Document{
		ID:     d.DocumentId,
		Title:  d.Title,
		Images: make(map[string]types.InlineImage, len(d.InlineObjects)),
	}
	if d.Body != nil && d.Body.Content != nil {
		doc.Blocks = convertElements(d.Body.Content)
	}
	for id, obj := range d.InlineObjects {
		doc.Images[id] = convertInlineObject(id, obj)
	}
	return doc
}

func convertElements(elems []*docs.StructuralElement) []types.Block {
	blocks := make([]types.Block, 0, len(elems))
	for _, el := range elems {
		switch {
		case el == nil:
		case el.Paragraph != nil:
			blocks = append(blocks, convertParagraph(el.Paragraph))
		case el.Table != nil:
			blocks = append(blocks, convertTable(el.Table))
		}
	}
	return blocks
}

func convertParagraph(p *docs.Paragraph) *types.Paragraph {
	out := &types.Paragraph{}
	if s := p.ParagraphStyle; s != nil {
		out.Style = &types.ParagraphStyle{
			NamedStyleType: s.NamedStyleType,
			Alignment:      s.Alignment,
		}
	}
	if p.Bullet != nil {
		out.Bullet = &types.Bullet{NestingLevel: p.Bullet.NestingLevel}
	}
	for _, el := range p.Elements {
		switch {
		case el == nil:
		case el.TextRun != nil:
			out.Runs = append(out.Runs, &types.TextRun{
				Content: el.TextRun.Content,
				Style:   convertTextStyle(el.TextRun.TextStyle),
			})
		case el.InlineObjectElement != nil:
			out.Runs = append(out.Runs, &types.ImageRef{ObjectID: el.InlineObjectElement.InlineObjectId})
		}
	}
	return out
}

func convertTextStyle(s *docs.TextStyle) *types.TextStyle {
	if s == nil {
		return nil
	}
	out := &types.TextStyle{
		Bold:          s.Bold,
		Italic:        s.Italic,
		Underline:     s.Underline,
		Strikethrough: s.Strikethrough,
	}
	if s.Link != nil {
		out.LinkURL = s.Link.Url
	}
	if s.WeightedFontFamily != nil {
		out.FontFamily = s.WeightedFontFamily.FontFamily
	}
	return out
}

func convertTable(t *docs.Table) *types.Table {
	out := &types.Table{Rows: make([]types.TableRow, 0, len(t.TableRows))}
	for _, row := range t.TableRows {
		if row == nil {
			continue
		}
		r := types.TableRow{Cells: make([]types.TableCell, 0, len(row.TableCells))}
		for _, c := range row.TableCells {
			if c == nil {
				continue
			}
			r.Cells = append(r.Cells, types.TableCell{Blocks: convertElements(c.Content)})
		}
		out.Rows = append(out.Rows, r)
	}
	return out
}

func convertInlineObject(id string, obj docs.InlineObject) types.InlineImage {
	img := types.InlineImage{ObjectID: id}
	if obj.InlineObjectProperties == nil || obj.InlineObjectProperties.EmbeddedObject == nil {
		return img
	}
	emb := obj.InlineObjectProperties.EmbeddedObject
	if emb.ImageProperties != nil {
		img.ContentURI = emb.ImageProperties.ContentUri
		img.ContentType = "image/jpeg"
	}
	if emb.Size != nil {
		img.Width = magnitude(emb.Size.Width)
		img.Height = magnitude(emb.Size.Height)
	}
	return img
}

func magnitude(d *docs.Dimension) *float64 {
	if d == nil {
		return nil
	}
	m := d.Magnitude
	return &m
}
