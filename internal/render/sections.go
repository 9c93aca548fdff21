// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"regexp"
	"strings"

	"github.com/pdiddy/docextract/pkg/types"
)

const (
	introductionHeading = "Introduction"
	referencesHeading   = "References"

	// infoSentinel is article_info when no introduction was found.
	infoSentinel = "."
)

var (
	lineBreaks    = strings.NewReplacer("\n", " ", "\v", " ")
	lineBreakRuns = regexp.MustCompile(`[\n\v]+`)
)

// displayText returns the paragraph text with line breaks flattened to
// spaces, trimmed.
func displayText(p *types.Paragraph) string {
	return strings.TrimSpace(lineBreaks.Replace(p.Text()))
}

// isHeading reports whether p is a top-level heading whose text matches
// name case-insensitively.
func isHeading(p *types.Paragraph, name string) bool {
	return p.NamedStyle() == types.HeadingStyle && strings.EqualFold(displayText(p), name)
}

// introduction is the result of scanning for the Introduction section.
type introduction struct {
	// text is the body of the introduction. Valid only when hasText is set.
	text    string
	hasText bool

	// skip holds the top-level indices excluded from rendering.
	skip map[int]bool
}

// info returns the article_info value.
func (in introduction) info() string {
	if !in.hasText {
		return infoSentinel
	}
	return in.text
}

// findIntroduction locates the first Introduction heading. The heading is
// always skipped; the element after it is taken as the introduction text
// and skipped only when it is a paragraph. Only the first match counts.
func findIntroduction(blocks []types.Block) introduction {
	in := introduction{skip: map[int]bool{}}
	for i, b := range blocks {
		p, ok := b.(*types.Paragraph)
		if !ok || !isHeading(p, introductionHeading) {
			continue
		}
		in.skip[i] = true
		if i+1 < len(blocks) {
			if next, ok := blocks[i+1].(*types.Paragraph); ok {
				in.text = displayText(next)
				in.hasText = true
				in.skip[i+1] = true
			}
		}
		break
	}
	return in
}

// references accumulates the raw text of every paragraph after the
// References heading.
type references struct {
	active bool
	count  int
	buf    strings.Builder
}

func (r *references) add(p *types.Paragraph) {
	r.buf.WriteString(p.Text())
	r.buf.WriteByte('\n')
	r.count++
}

// node returns the merged references paragraph, or nil when nothing was
// collected. Runs of newlines and vertical tabs collapse to one newline.
func (r *references) node() *types.ParagraphNode {
	if r.count == 0 {
		return nil
	}
	merged := strings.TrimSpace(lineBreakRuns.ReplaceAllString(r.buf.String(), "\n"))
	return &types.ParagraphNode{
		Type:      types.NodeParagraph,
		StyleType: types.NormalTextStyle,
		Content: []types.ContentNode{
			&types.TextNode{Type: types.NodeText, Value: merged},
		},
	}
}
