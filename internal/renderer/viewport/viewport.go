// Package viewport computes where a laid-out document sits inside a view
// and which part of it is visible, and owns the animated scroll state.
package viewport

import (
	"github.com/dshills/gemview/internal/renderer/core"
)

// Gap is the spacing unit in cells. Margins are expressed in gaps.
const Gap = 1

// LineHeight is the height of one paragraph line in rows.
const LineHeight = 1

// minDocumentWidth is the narrowest document that still fits a word.
const minDocumentWidth = 50 * Gap

// Metrics describes the view and the preferences that shape the document.
type Metrics struct {
	// Width and Height of the view in cells.
	Width  int
	Height int

	// LineWidth is the maximum line length in characters.
	LineWidth int

	// ZoomPercent scales LineWidth.
	ZoomPercent int

	// PageMargin is the page margin in gaps.
	PageMargin int
}

// MarginRows returns the page margin in rows.
func (m Metrics) MarginRows() int {
	return m.PageMargin * Gap
}

// Bounds returns the view rectangle at the origin.
func (m Metrics) Bounds() core.Rect {
	return core.RectFromSize(0, 0, m.Height, m.Width)
}

// DocumentWidth returns the width the document is laid out at. The margin
// narrows as the view gets wider so that lines stay readable.
func DocumentWidth(m Metrics) int {
	adjust := float64(m.Width)/Gap/11 - 12
	if adjust < -2 {
		adjust = -2
	} else if adjust > 10 {
		adjust = 10
	}
	w := m.Width - int(Gap*(float64(m.PageMargin)+adjust)*2)
	w = max(minDocumentWidth, w)
	w = min(w, m.LineWidth*m.ZoomPercent/100)
	if m.Width > 0 {
		w = min(w, m.Width)
	}
	return max(w, 1)
}

// DocumentBounds returns the rectangle the document occupies inside the
// view. bannerHeight is zero when the document has no site banner; a banner
// abuts the top edge, otherwise the page margin is left above the content.
// With center set, a document shorter than the view is vertically centered.
func DocumentBounds(m Metrics, docHeight, bannerHeight int, center bool) core.Rect {
	margin := m.MarginRows()
	width := DocumentWidth(m)
	left := m.Width/2 - width/2
	top := 0
	height := m.Height - margin
	if bannerHeight == 0 {
		top += margin
		height -= margin
	}
	if center && docHeight < height {
		offset := max(0, (height+margin-docHeight-bannerHeight-LineHeight)/2)
		top += offset
		height = docHeight
	}
	return core.Rect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

// VisibleRange returns the document rows shown at scroll position scrollY.
func VisibleRange(m Metrics, scrollY int, hasBanner bool) core.Span {
	margin := 0
	if !hasBanner {
		margin = m.MarginRows()
	}
	return core.Span{Start: scrollY - margin, End: scrollY + m.Height - margin}
}

// ScrollMax returns the largest scroll position. It may be zero or negative
// when the document fits in the view.
func ScrollMax(m Metrics, docHeight int, hasBanner bool) int {
	factor := 2
	if hasBanner {
		factor = 1
	}
	return docHeight - m.Height + factor*m.MarginRows()
}

// ClampScroll limits y to [0, max(0, scrollMax)].
func ClampScroll(y, scrollMax int) int {
	if y < 0 {
		return 0
	}
	if scrollMax <= 0 {
		return 0
	}
	return min(y, scrollMax)
}

// ScrollTarget returns the unclamped scroll position that brings document
// row docY into view, either centered in the document bounds or one line
// below the top edge.
func ScrollTarget(m Metrics, docY int, hasBanner, centered bool, boundsHeight int) int {
	if !hasBanner {
		docY += m.MarginRows()
	}
	if centered {
		return docY - boundsHeight/2
	}
	return docY - LineHeight
}

// DocumentPos maps a view position to document coordinates.
func DocumentPos(bounds core.Rect, scrollY int, p core.Pos) core.Pos {
	return core.Pos{Row: p.Row - bounds.Top + scrollY, Col: p.Col - bounds.Left}
}
