// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import "github.com/pdiddy/docextract/pkg/types"

// NormalizeStyle flattens a text style into the attributes that are set.
// A nil style yields the empty StyleNode.
func NormalizeStyle(s *types.TextStyle) types.StyleNode {
	if s == nil {
		return types.StyleNode{}
	}
	return types.StyleNode{
		Bold:          s.Bold,
		Italic:        s.Italic,
		Underline:     s.Underline,
		Strikethrough: s.Strikethrough,
		LinkURL:       s.LinkURL,
		FontFamily:    s.FontFamily,
	}
}
