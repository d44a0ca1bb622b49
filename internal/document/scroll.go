package document

import (
	"strings"
	"time"

	"github.com/dshills/gemview/internal/config"
	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/layout"
	"github.com/dshills/gemview/internal/renderer/core"
	"github.com/dshills/gemview/internal/renderer/dirty"
	"github.com/dshills/gemview/internal/renderer/theme"
	"github.com/dshills/gemview/internal/renderer/viewport"
)

// StepRows is how far one wheel notch or arrow key scrolls.
const StepRows = 3

func (v *View) metrics() viewport.Metrics {
	p := v.env.Prefs
	return viewport.Metrics{
		Width:       v.bounds.Width(),
		Height:      v.bounds.Height(),
		LineWidth:   p.LineWidth,
		ZoomPercent: p.ZoomPercent,
		PageMargin:  p.PageMargin,
	}
}

func (v *View) smoothDuration() time.Duration {
	if !v.env.Prefs.SmoothScrolling {
		return 0
	}
	return time.Duration(v.env.Prefs.SmoothDurationMS) * time.Millisecond
}

func (v *View) documentWidth() int {
	return viewport.DocumentWidth(v.metrics())
}

func (v *View) bannerHeight() int {
	if v.doc.HasBanner() {
		return layout.BannerHeight
	}
	return 0
}

func (v *View) centered() bool {
	return v.env.Prefs.CenterShortDocs || v.errorPage
}

// documentBounds returns the document rectangle in screen coordinates.
func (v *View) documentBounds() core.Rect {
	r := viewport.DocumentBounds(v.metrics(), v.doc.Height(), v.bannerHeight(), v.centered())
	return r.Translate(v.bounds.Top, v.bounds.Left)
}

func (v *View) visibleRange() core.Span {
	return viewport.VisibleRange(v.metrics(), v.scroll.Pos(), v.doc.HasBanner())
}

func (v *View) updateScrollMax() {
	v.scroll.SetMax(viewport.ScrollMax(v.metrics(), v.doc.Height(), v.doc.HasBanner()))
}

// Bounds returns the screen rectangle of the view.
func (v *View) Bounds() core.Rect { return v.bounds }

// ScrollPos returns the current scroll position in rows.
func (v *View) ScrollPos() int { return v.scroll.Pos() }

// ScrollMax returns the largest scroll position, or zero.
func (v *View) ScrollMax() int { return max(v.scroll.Max(), 0) }

// OnResize places the view at bounds. The tile cache is released and the
// document laid out for the new width.
func (v *View) OnResize(bounds core.Rect) {
	if bounds == v.bounds {
		return
	}
	v.bounds = bounds
	v.vis.Dealloc()
	v.updateWidth(false)
	v.updateScrollMax()
	v.scroll.Clamp()
	v.updateVisible()
	v.needsPaint = true
}

// SetPrefs applies changed preferences.
func (v *View) SetPrefs(p config.Prefs) {
	old := v.env.Prefs
	v.env.Prefs = p
	v.scroll.SetSmooth(p.SmoothScrolling)
	if p.Theme != old.Theme || p.Dark != old.Dark {
		v.updateTheme(true)
	}
	v.OnZoomChanged()
}

// OnZoomChanged lays the document out again after a change of zoom, line
// width or page margin. The run in the middle of the view stays in place.
func (v *View) OnZoomChanged() {
	v.updateWidth(true)
	v.updateScrollMax()
	v.scroll.Clamp()
	v.vis.Invalidate()
	v.updateVisible()
	v.needsPaint = true
}

// updateWidth sets the layout width, keeping an anchor run at the same
// distance from the top of the view.
func (v *View) updateWidth(keepMiddle bool) {
	w := v.documentWidth()
	if w == v.doc.Width() {
		return
	}
	anchor, offset, ok := v.scrollAnchor(keepMiddle)
	v.doc.SetWidth(w)
	v.afterLayout()
	v.wide.Reset()
	if !ok {
		return
	}
	if r, found := v.doc.FindRunAtByteOffset(anchor); found {
		y := r.Visual.Top - offset
		if !v.doc.HasBanner() {
			y += v.metrics().MarginRows()
		}
		v.scroll.ScrollTo(y)
	}
}

func (v *View) scrollAnchor(middle bool) (byteOffset, rowOffset int, ok bool) {
	if v.scroll.Pos() == 0 {
		return 0, 0, false
	}
	vis := v.visibleRange()
	var runs []layout.Run
	for _, r := range v.doc.VisibleRuns(vis) {
		if r.Flags.Has(layout.FlagDecoration) || r.Flags.Has(layout.FlagBanner) || r.Range.IsEmpty() {
			continue
		}
		runs = append(runs, r)
	}
	if len(runs) == 0 {
		return 0, 0, false
	}
	r := runs[0]
	if middle {
		r = runs[len(runs)/2]
	}
	return r.Range.Start, r.Visual.Top - vis.Start, true
}

func (v *View) updateTheme(force bool) {
	seed := v.env.Prefs.Theme
	if seed == "" {
		seed = gemini.Host(v.url)
	}
	if !force && v.theme != nil && v.theme.Seed() == seed && v.themeDark == v.env.Prefs.Dark {
		return
	}
	v.theme = theme.New(seed, v.env.Prefs.Dark)
	v.themeDark = v.env.Prefs.Dark
	v.vis.Invalidate()
	v.needsPaint = true
}

// Theme returns the current palette.
func (v *View) Theme() *theme.Theme { return v.theme }

// OnScrollInput scrolls by delta steps, or by delta rows when precise.
func (v *View) OnScrollInput(delta int, precise bool) {
	v.clearLinkNumbers()
	if precise {
		v.scroll.ScrollBy(delta, 0)
	} else {
		v.scroll.ScrollBy(delta*StepRows, v.smoothDuration())
	}
	v.scrolled()
}

// ScrollPage scrolls by half a view, or a whole one when full, in the
// direction of dir.
func (v *View) ScrollPage(dir int, full bool) {
	amount := v.bounds.Height() / 2
	if full {
		amount = v.bounds.Height()
	}
	v.scroll.ScrollBy(dir*amount, v.smoothDuration())
	v.scrolled()
}

// ScrollToTop scrolls to the start of the document.
func (v *View) ScrollToTop() {
	v.scroll.ScrollBy(-v.scroll.Target(), v.smoothDuration())
	v.scrolled()
}

// ScrollToBottom scrolls to the end of the document.
func (v *View) ScrollToBottom() {
	v.scroll.ScrollBy(v.scroll.Max()-v.scroll.Target(), v.smoothDuration())
	v.scrolled()
}

// ScrollToHeading scrolls to the first heading with the given text. While
// the document is loading the request is kept until it is ready.
func (v *View) ScrollToHeading(text string) bool {
	if v.state != StateReady {
		v.pendingHeading = text
		return false
	}
	for _, h := range v.doc.Headings() {
		if strings.EqualFold(h.Text, text) {
			v.scrollToRow(h.Row, false)
			return true
		}
	}
	return false
}

// ScrollToByteOffset centers the run holding source offset in the view.
func (v *View) ScrollToByteOffset(offset int) bool {
	r, ok := v.doc.FindRunAtByteOffset(offset)
	if !ok {
		return false
	}
	v.scrollToRow(r.Visual.Top, true)
	return true
}

// ScrollToRow scrolls document row to the top of the view.
func (v *View) ScrollToRow(row int) {
	v.scrollToRow(row, false)
}

func (v *View) scrollToRow(row int, centered bool) {
	target := viewport.ScrollTarget(v.metrics(), row, v.doc.HasBanner(), centered, v.documentBounds().Height())
	v.scroll.ScrollBy(target-v.scroll.Target(), v.smoothDuration())
	v.scrolled()
}

// CurrentVisibleHeading returns the first heading in view, or the last one
// above it.
func (v *View) CurrentVisibleHeading() (layout.Heading, bool) {
	vis := v.visibleRange()
	var cur layout.Heading
	found := false
	for _, h := range v.doc.Headings() {
		if h.Row >= vis.End {
			break
		}
		cur, found = h, true
		if h.Row >= vis.Start {
			break
		}
	}
	return cur, found
}

func (v *View) scrolled() {
	v.updateVisible()
	v.animate()
	v.needsPaint = true
}

// animate keeps a tick registered while a scroll animation runs.
func (v *View) animate() {
	if v.scroll.IsFinished() && v.wide.IsFinished() {
		v.wide.Settle()
		v.env.Ticker.Remove(v)
		return
	}
	v.env.Ticker.Add(v, v.tick)
}

func (v *View) tick() {
	if id := v.wide.Active(); id != 0 {
		if _, keys, _, ok := v.doc.PreBlock(id); ok {
			v.dirty.InsertAll(keys, dirty.ReasonWideScroll)
		}
	}
	v.updateVisible()
	v.needsPaint = true
	v.animate()
}

// IsAnimating returns true while a tick is registered for the view.
func (v *View) IsAnimating() bool {
	return v.env.Ticker.Has(v)
}

// OnWheelHorizontal scrolls the preformatted block under screen position
// x, y sideways by delta columns. It returns false if there is no such
// block or it cannot move.
func (v *View) OnWheelHorizontal(delta, x, y int) bool {
	pos := viewport.DocumentPos(v.documentBounds(), v.scroll.Pos(), core.Pos{Row: y, Col: x})
	preID := v.preBlockAt(pos.Row)
	if preID == 0 {
		return false
	}
	_, keys, maxW, ok := v.doc.PreBlock(preID)
	if !ok {
		return false
	}
	maxOff := viewport.MaxOffset(v.metrics(), maxW, v.doc.Width())
	if !v.wide.Scroll(preID, delta, maxOff, v.smoothDuration()) {
		return false
	}
	v.dirty.InsertAll(keys, dirty.ReasonWideScroll)
	if prev := v.wide.Interrupted(); prev != 0 {
		if _, prevKeys, _, ok := v.doc.PreBlock(prev); ok {
			v.dirty.InsertAll(prevKeys, dirty.ReasonWideScroll)
		}
	}
	// Shifted text no longer lines up with find or selection marks
	v.clearMarks()
	v.animate()
	v.needsPaint = true
	return true
}

func (v *View) preBlockAt(row int) int {
	for _, r := range v.doc.VisibleRuns(core.Span{Start: row, End: row + 1}) {
		if r.PreID != 0 {
			return r.PreID
		}
	}
	return 0
}

// WideOffset returns the horizontal offset of preformatted block preID.
func (v *View) WideOffset(preID int) int {
	return v.wide.Offset(preID)
}
