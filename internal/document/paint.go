package document

import (
	"fmt"
	"time"

	"github.com/rivo/uniseg"

	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/layout"
	"github.com/dshills/gemview/internal/media"
	"github.com/dshills/gemview/internal/renderer/core"
	"github.com/dshills/gemview/internal/renderer/theme"
	"github.com/dshills/gemview/internal/renderer/visbuf"
)

// Paint draws the view onto dst. The tile cache is moved to the visible
// rows, newly exposed rows are rendered, dirty runs are redrawn over them,
// the tiles are composited and the media controls drawn on top.
func (v *View) Paint(dst visbuf.Target) {
	start := time.Now()
	m := v.metrics()
	if m.Width <= 0 || m.Height <= 0 {
		return
	}
	bounds := v.documentBounds()
	v.left = bounds.Left - v.bounds.Left
	fill := v.theme.Fill()

	v.vis.Allocate(m.Width, m.Height, visbuf.DefaultTileCount)
	vis := v.visibleRange()
	v.vis.Reposition(vis)
	for _, span := range v.vis.NeedsClear() {
		v.vis.FillRows(span, fill)
	}

	tiles := 0
	all := core.Span{Start: min(vis.Start, 0), End: max(vis.End, v.doc.Height())}
	for _, span := range v.vis.InvalidRanges(all) {
		v.vis.FillRows(span, fill)
		v.doc.RenderRuns(span, func(r layout.Run) bool {
			v.drawRun(r)
			return true
		})
		tiles++
	}
	runs := v.drawDirtyRuns(vis, fill)
	v.vis.Validate()
	v.dirty.Clear()

	yTop := bounds.Top - v.scroll.Pos()
	v.vis.Composite(dst, v.bounds.Left, yTop, v.bounds.YSpan())
	v.fillOutside(dst, yTop+vis.Start, yTop+vis.End, fill)
	v.drawMediaControls(dst, yTop)
	v.drawHoverURL(dst)

	v.needsPaint = false
	if v.env.Metrics != nil {
		v.env.Metrics.RecordPaint(time.Since(start), tiles, runs)
	}
}

// drawDirtyRuns redraws the rows of every dirty run. Rows are redrawn
// whole because a run may overlap its neighbours.
func (v *View) drawDirtyRuns(vis core.Span, fill core.Cell) int {
	n := 0
	for _, key := range v.dirty.Keys() {
		r, ok := v.doc.Run(key)
		if !ok {
			continue
		}
		rows := r.Visual.YSpan().Intersect(vis)
		if rows.IsEmpty() {
			continue
		}
		v.vis.FillRows(rows, fill)
		v.doc.RenderRuns(rows, func(o layout.Run) bool {
			v.drawRun(o)
			return true
		})
		n++
	}
	return n
}

func (v *View) fillOutside(dst visbuf.Target, top, bottom int, fill core.Cell) {
	for y := v.bounds.Top; y < v.bounds.Bottom; y++ {
		if y >= top && y < bottom {
			continue
		}
		for x := v.bounds.Left; x < v.bounds.Right; x++ {
			dst.SetCell(x, y, fill)
		}
	}
}

func (v *View) drawRun(r layout.Run) {
	switch {
	case r.Flags.Has(layout.FlagBanner):
		style := v.theme.Style(layout.LineBanner)
		v.vis.FillRect(r.Visual.YSpan(), v.left, v.left+v.doc.Width(), core.BlankCell(style))
		x := v.left + r.Visual.Left
		if b, ok := v.doc.Banner().(layout.ErrorBanner); ok && b.Icon != 0 {
			v.drawText(x, r.Visual.Top, string(b.Icon), -1, style.WithForeground(v.theme.Color(theme.RoleBannerIcon)))
			x += 2
			v.drawText(x, r.Visual.Top, b.Title, -1, style)
			return
		}
		v.drawText(x, r.Visual.Top, r.Text, -1, style)
	case r.Line == layout.LineMedia:
		v.drawMediaPlaceholder(r)
	default:
		x := v.left + r.Visual.Left
		if r.PreID != 0 {
			x -= v.wide.Offset(r.PreID)
		}
		text := r.Text
		offset := r.Range.Start
		if r.Flags.Has(layout.FlagDecoration) {
			offset = -1
			if r.LinkID != 0 && v.linkNumbers {
				text = linkNumberLabel(r.LinkID)
			}
		}
		v.drawText(x, r.Visual.Top, text, offset, v.runStyle(r))
	}
}

func (v *View) runStyle(r layout.Run) core.Style {
	if r.LinkID == 0 {
		return v.theme.Style(r.Line)
	}
	remote := v.doc.LinkFlags(r.LinkID).Has(layout.LinkRemote)
	style := v.theme.LinkStyle(remote, r.LinkID == v.hoverLink)
	if !remote && v.env.Visited.Contains(v.linkTarget(r.LinkID)) {
		style = style.WithForeground(theme.Blend(style.Foreground, v.theme.Color(theme.RoleText), 0.5))
	}
	return style
}

func (v *View) linkTarget(id int) string {
	return gemini.AbsoluteURL(v.url, v.doc.LinkURL(id))
}

// drawText draws text into the tile cache starting at column x of
// document row y. offset is the source offset of text, used to highlight
// find results and the selection; -1 disables highlighting.
func (v *View) drawText(x, y int, text string, offset int, style core.Style) {
	width, _ := v.vis.Size()
	found := v.theme.Color(theme.RoleFound)
	selected := v.theme.Color(theme.RoleSelection)
	sel := v.selectionSpan()
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		w := g.Width()
		if w == 0 {
			continue
		}
		st := style
		if offset >= 0 {
			from, _ := g.Positions()
			switch b := offset + from; {
			case v.found.Contains(b):
				st = st.WithBackground(found)
			case sel.Contains(b):
				st = st.WithBackground(selected)
			}
		}
		if x >= v.left && x+w <= width {
			v.vis.SetCell(x, y, core.Cell{Rune: g.Runes()[0], Width: w, Style: st})
			for i := 1; i < w; i++ {
				v.vis.SetCell(x+i, y, core.Cell{Style: st})
			}
		}
		x += w
	}
}

func (v *View) drawMediaPlaceholder(r layout.Run) {
	style := v.theme.Style(layout.LineMedia)
	v.vis.FillRect(r.Visual.YSpan(), v.left+r.Visual.Left, v.left+r.Visual.Right, core.BlankCell(style))
	label := r.Text
	if m, ok := v.doc.Media().Get(r.MediaID); ok {
		label = fmt.Sprintf("%s %s", m.MIME, media.FormatSize(len(m.Data)))
		if m.Partial() {
			label += " …"
		}
	}
	switch r.MediaType {
	case layout.MediaImage:
		label = "▣ " + label
	case layout.MediaAudio:
		// Controls are drawn on top of the composited tiles.
		label = ""
	case layout.MediaDownload:
		label = "⇩ " + label
	}
	v.drawText(v.left+r.Visual.Left, r.Visual.Top, label, -1, style)
}

// drawMediaControls draws player and download state of the visible media
// runs directly onto dst, after the tiles.
func (v *View) drawMediaControls(dst visbuf.Target, yTop int) {
	style := v.theme.Style(layout.LineMedia)
	now := v.env.Clock.Now()
	for _, r := range v.tracker.Visible() {
		sy := yTop + r.Visual.Top
		if !v.bounds.YSpan().Contains(sy) {
			continue
		}
		var label string
		switch r.MediaType {
		case layout.MediaAudio:
			label = playerLabel(v.tracker.Player(r.MediaID))
		case layout.MediaDownload:
			d, ok := v.tracker.Download(r.MediaID)
			if !ok {
				continue
			}
			label = "⇩ " + d.Label(now)
		default:
			continue
		}
		x := v.bounds.Left + v.left + r.Visual.Left
		for _, c := range core.CellsFromString(label, style) {
			if x >= v.bounds.Right {
				break
			}
			if !c.IsContinuation() {
				dst.SetCell(x, sy, c)
			}
			x++
		}
	}
}

func playerLabel(p *media.Player) string {
	icon := "▶"
	if p.IsPlaying() {
		icon = "⏸"
	}
	pos := p.Position()
	s := fmt.Sprintf("%s %d:%02d", icon, int(pos.Minutes()), int(pos.Seconds())%60)
	if p.Flags()&media.PlayerAdjustingVolume != 0 {
		s += fmt.Sprintf("  vol %3d%%", int(p.Volume()*100+0.5))
	}
	if p.IsPartial() {
		s += "  " + media.FormatSize(p.Size()) + " …"
	}
	return s
}

func (v *View) drawHoverURL(dst visbuf.Target) {
	if !v.env.Prefs.HoverLink || v.hoverLink == 0 {
		return
	}
	url := v.linkTarget(v.hoverLink)
	style := v.theme.Style(layout.LineBanner)
	y := v.bounds.Bottom - 1
	x := v.bounds.Left
	for _, c := range core.CellsFromString(" "+url+" ", style) {
		if x >= v.bounds.Right {
			break
		}
		if !c.IsContinuation() {
			dst.SetCell(x, y, c)
		}
		x++
	}
}

func linkNumberLabel(id int) string {
	if id < 10 {
		return fmt.Sprintf("%d", id)
	}
	return string(rune('a' + (id-10)%26))
}
