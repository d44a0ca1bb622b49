package layout

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/gemview/internal/renderer/core"
)

// wrap splits a single source line into visual lines no wider than width
// cells, breaking at Unicode line break opportunities. Words wider than
// width are broken between grapheme clusters. The returned spans are byte
// ranges into text and together cover all of it.
func wrap(text string, width int) []core.Span {
	if width < 1 {
		width = 1
	}
	if text == "" {
		return []core.Span{{}}
	}
	var lines []core.Span
	start, pos, lineW := 0, 0, 0
	state := -1
	rest := text
	for len(rest) > 0 {
		var seg string
		seg, rest, _, state = uniseg.FirstLineSegmentInString(rest, state)
		inkW := uniseg.StringWidth(strings.TrimRight(seg, " "))

		if lineW > 0 && lineW+inkW > width {
			lines = append(lines, core.Span{Start: start, End: pos})
			start, lineW = pos, 0
		}
		if lineW == 0 && inkW > width {
			// A single word that does not fit anywhere.
			g := uniseg.NewGraphemes(seg)
			for g.Next() {
				gw := g.Width()
				if lineW > 0 && lineW+gw > width {
					lines = append(lines, core.Span{Start: start, End: pos})
					start, lineW = pos, 0
				}
				lineW += gw
				pos += len(g.Str())
			}
			continue
		}
		lineW += uniseg.StringWidth(seg)
		pos += len(seg)
	}
	lines = append(lines, core.Span{Start: start, End: len(text)})
	return lines
}

// textWidth returns the display width of s without trailing spaces.
func textWidth(s string) int {
	return uniseg.StringWidth(strings.TrimRight(s, " "))
}
