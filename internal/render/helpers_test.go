// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"testing"

	"github.com/pdiddy/docextract/pkg/types"
)

// --- test helpers ---

func para(style string, runs ...types.InlineRun) *types.Paragraph {
	p := &types.Paragraph{Runs: runs}
	if style != "" {
		p.Style = &types.ParagraphStyle{NamedStyleType: style}
	}
	return p
}

func text(s string) *types.TextRun {
	return &types.TextRun{Content: s}
}

func img(id string) *types.ImageRef {
	return &types.ImageRef{ObjectID: id}
}

func heading(s string) *types.Paragraph {
	return para(types.HeadingStyle, text(s+"\n"))
}

func body(s string) *types.Paragraph {
	return para(types.NormalTextStyle, text(s+"\n"))
}

func imagePara(id string) *types.Paragraph {
	return para(types.NormalTextStyle, img(id), text("\n"))
}

func table(rows ...[]types.TableCell) *types.Table {
	t := &types.Table{}
	for _, cells := range rows {
		t.Rows = append(t.Rows, types.TableRow{Cells: cells})
	}
	return t
}

func cell(blocks ...types.Block) types.TableCell {
	return types.TableCell{Blocks: blocks}
}

func ptr(f float64) *float64 { return &f }

func images(ids ...string) map[string]types.InlineImage {
	m := make(map[string]types.InlineImage, len(ids))
	for _, id := range ids {
		m[id] = types.InlineImage{
			ObjectID:    id,
			ContentURI:  "https://images.example.com/" + id,
			ContentType: "image/png",
		}
	}
	return m
}

// imageNodes returns every body image node in document order, descending
// into table cells.
func imageNodes(nodes []types.Node) []*types.ImageNode {
	var out []*types.ImageNode
	for _, n := range nodes {
		switch n := n.(type) {
		case *types.ParagraphNode:
			for _, c := range n.Content {
				if im, ok := c.(*types.ImageNode); ok {
					out = append(out, im)
				}
			}
		case *types.TableNode:
			for _, row := range n.Rows {
				for _, c := range row.Cells {
					out = append(out, imageNodes(c.Content)...)
				}
			}
		}
	}
	return out
}

func firstText(t *testing.T, n types.Node) string {
	t.Helper()
	p, ok := n.(*types.ParagraphNode)
	if !ok || len(p.Content) == 0 {
		return ""
	}
	tn, ok := p.Content[0].(*types.TextNode)
	if !ok {
		return ""
	}
	return tn.Value
}
