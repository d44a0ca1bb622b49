package document

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/gemview/internal/layout"
	"github.com/dshills/gemview/internal/renderer/core"
	"github.com/dshills/gemview/internal/renderer/dirty"
	"github.com/dshills/gemview/internal/renderer/viewport"
)

// runAt returns the run under screen position x, y.
func (v *View) runAt(x, y int) (layout.Run, core.Pos, bool) {
	p := core.Pos{Row: y, Col: x}
	if !v.bounds.Contains(p) {
		return layout.Run{}, core.Pos{}, false
	}
	pos := viewport.DocumentPos(v.documentBounds(), v.scroll.Pos(), p)
	if id := v.preBlockAt(pos.Row); id != 0 {
		pos.Col += v.wide.Offset(id)
	}
	r, ok := v.doc.FindRunAtLocation(pos)
	return r, pos, ok
}

// Hover moves the pointer to screen position x, y and returns the link
// under it, or 0.
func (v *View) Hover(x, y int) int {
	id := 0
	if r, _, ok := v.runAt(x, y); ok {
		id = r.LinkID
	}
	if id == v.hoverLink {
		return id
	}
	v.markLinkDirty(v.hoverLink)
	v.hoverLink = id
	v.markLinkDirty(id)
	v.needsPaint = true
	return id
}

// HoverURL returns the absolute URL of the hovered link.
func (v *View) HoverURL() string {
	if v.hoverLink == 0 {
		return ""
	}
	return v.linkTarget(v.hoverLink)
}

func (v *View) markLinkDirty(id int) {
	if id == 0 {
		return
	}
	v.doc.RenderRuns(v.visibleRange(), func(r layout.Run) bool {
		if r.LinkID == id {
			v.dirty.Insert(r.Key, dirty.ReasonHover)
		}
		return true
	})
}

// ActivateLink follows link id. Image and audio links are shown inline;
// other links are opened in the view.
func (v *View) ActivateLink(id int) bool {
	target := v.doc.LinkURL(id)
	if target == "" {
		return false
	}
	fl := v.doc.LinkFlags(id)
	if fl.Has(layout.LinkImage) || fl.Has(layout.LinkAudio) {
		switch {
		case fl.Has(layout.LinkHasMedia | layout.LinkAudio):
			return v.TogglePlayer(id)
		case fl.Has(layout.LinkHasMedia):
			v.mediaChanged(id, v.doc.SetMediaData(id, "", nil, 0))
			return true
		}
		return v.RequestMedia(id)
	}
	v.clearLinkNumbers()
	v.Open(v.linkTarget(id), 0)
	return true
}

// ShowLinkNumbers toggles the link number labels drawn over link arrows.
func (v *View) ShowLinkNumbers(show bool) {
	if v.linkNumbers == show {
		return
	}
	v.linkNumbers = show
	v.vis.Invalidate()
	v.needsPaint = true
}

func (v *View) clearLinkNumbers() {
	v.ShowLinkNumbers(false)
}

// LinkForNumber returns the link labelled with key while link numbers are
// shown.
func (v *View) LinkForNumber(key rune) (int, bool) {
	if !v.linkNumbers {
		return 0, false
	}
	for _, r := range v.doc.VisibleRuns(v.visibleRange()) {
		if r.LinkID != 0 && r.Flags.Has(layout.FlagDecoration) && linkNumberLabel(r.LinkID) == string(key) {
			return r.LinkID, true
		}
	}
	return 0, false
}

// Find highlights the next match of text after the current one, or the
// previous one before it, wrapping around. Matching ignores ASCII case.
func (v *View) Find(text string, forward bool) bool {
	src := v.doc.Source()
	if text == "" || len(text) > len(src) {
		v.ClearFind()
		return false
	}
	idx := -1
	if forward {
		from := 0
		if !v.found.IsEmpty() {
			from = v.found.Start + 1
		}
		idx = indexFold(src, text, from)
		if idx < 0 {
			idx = indexFold(src, text, 0)
		}
	} else {
		to := len(src)
		if !v.found.IsEmpty() {
			to = v.found.Start
		}
		idx = lastIndexFold(src[:to], text)
		if idx < 0 {
			idx = lastIndexFold(src, text)
		}
	}
	if idx < 0 {
		v.ClearFind()
		return false
	}
	v.found = core.Span{Start: idx, End: idx + len(text)}
	v.wide.Reset()
	v.vis.Invalidate()
	v.ScrollToByteOffset(idx)
	v.needsPaint = true
	return true
}

// ClearFind removes the find highlight.
func (v *View) ClearFind() {
	if v.found.IsEmpty() {
		return
	}
	v.found = core.Span{}
	v.vis.Invalidate()
	v.needsPaint = true
}

// clearMarks drops the find match and the selection.
func (v *View) clearMarks() {
	if v.found.IsEmpty() && v.selectionSpan().IsEmpty() {
		return
	}
	v.found = core.Span{}
	v.selection = core.Span{}
	v.selecting = false
	v.vis.Invalidate()
	v.needsPaint = true
}

// FoundRange returns the source range of the current match.
func (v *View) FoundRange() core.Span { return v.found }

func indexFold(s, sub string, from int) int {
	for i := from; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

func lastIndexFold(s, sub string) int {
	for i := len(s) - len(sub); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

// sourceOffsetAt returns the source offset of the character under screen
// position x, y.
func (v *View) sourceOffsetAt(x, y int) (int, bool) {
	r, pos, ok := v.runAt(x, y)
	if !ok || r.Flags.Has(layout.FlagDecoration) || r.Flags.Has(layout.FlagBanner) || r.Range.IsEmpty() {
		return 0, false
	}
	col := pos.Col - r.Visual.Left
	g := uniseg.NewGraphemes(r.Text)
	w := 0
	for g.Next() {
		gw := g.Width()
		if w+gw > col {
			from, _ := g.Positions()
			return r.Range.Start + from, true
		}
		w += gw
	}
	return r.Range.Start + len(r.Text), true
}

// BeginSelection starts selecting text at screen position x, y.
func (v *View) BeginSelection(x, y int) bool {
	off, ok := v.sourceOffsetAt(x, y)
	v.selecting = ok
	v.selection = core.Span{Start: off, End: off}
	v.wide.Reset()
	v.vis.Invalidate()
	v.needsPaint = true
	return ok
}

// ExtendSelection moves the end of the selection to screen position x, y.
func (v *View) ExtendSelection(x, y int) {
	if !v.selecting {
		return
	}
	off, ok := v.sourceOffsetAt(x, y)
	if !ok || off == v.selection.End {
		return
	}
	v.selection.End = off
	v.vis.Invalidate()
	v.needsPaint = true
}

// EndSelection stops extending the selection.
func (v *View) EndSelection() {
	v.selecting = false
}

// SelectedText returns the selected source text.
func (v *View) SelectedText() string {
	s := v.selectionSpan()
	src := v.doc.Source()
	if s.IsEmpty() || s.End > len(src) {
		return ""
	}
	return src[s.Start:s.End]
}

func (v *View) selectionSpan() core.Span {
	s := v.selection
	if s.End < s.Start {
		s.Start, s.End = s.End, s.Start
	}
	return s
}
