package app

import (
	"math"
	"strings"
	"time"

	"github.com/dshills/gemview/internal/anim"
	"github.com/dshills/gemview/internal/event"
	"github.com/dshills/gemview/internal/renderer/backend"
	"github.com/dshills/gemview/internal/renderer/core"
	"github.com/dshills/gemview/internal/renderer/theme"
)

const (
	// sidebarWidth is the width of the open sidebar in cells, border
	// included.
	sidebarWidth = 28

	// sidebarSlide is how long the sidebar takes to open or close.
	sidebarSlide = 200 * time.Millisecond

	// maxHistoryItems bounds the history list.
	maxHistoryItems = 200
)

// SidebarMode is what the sidebar lists. It is one of OutlineMode or
// HistoryMode.
type SidebarMode interface {
	// Title is shown on the first row of the panel.
	Title() string

	items(app *Application, tab *Tab) []sidebarItem
	activate(tab *Tab, it sidebarItem)
	isSidebarMode()
}

// sidebarModes maps the mode argument of sidebar.toggle to a mode.
var sidebarModes = map[string]SidebarMode{
	"outline": OutlineMode{},
	"history": HistoryMode{},
}

// sidebarItem is one row of the list. Header rows cannot be activated.
type sidebarItem struct {
	label   string
	indent  int
	header  bool
	current bool
	row     int    // document row of an outline heading
	url     string // target of a history entry
}

// OutlineMode lists the headings of the active page.
type OutlineMode struct{}

// Title implements SidebarMode.
func (OutlineMode) Title() string { return "Outline" }

func (OutlineMode) items(_ *Application, tab *Tab) []sidebarItem {
	cur, hasCur := tab.View.CurrentVisibleHeading()
	var out []sidebarItem
	for _, h := range tab.View.Document().Headings() {
		out = append(out, sidebarItem{
			label:   h.Text,
			indent:  max(h.Level-1, 0) * 2,
			current: hasCur && h.Row == cur.Row,
			row:     h.Row,
		})
	}
	return out
}

func (OutlineMode) activate(tab *Tab, it sidebarItem) {
	tab.View.ScrollToRow(it.row)
}

func (OutlineMode) isSidebarMode() {}

// HistoryMode lists the pages visited in any tab, newest first and grouped
// by day.
type HistoryMode struct{}

// Title implements SidebarMode.
func (HistoryMode) Title() string { return "History" }

func (HistoryMode) items(app *Application, tab *Tab) []sidebarItem {
	var out []sidebarItem
	day := ""
	for _, vis := range app.ctx.Visited.Recent(maxHistoryItems) {
		if d := vis.When.Format("2006-01-02"); d != day {
			day = d
			out = append(out, sidebarItem{label: d, header: true})
		}
		out = append(out, sidebarItem{
			label:   strings.TrimPrefix(vis.URL, "gemini://"),
			indent:  1,
			current: vis.URL == tab.View.URL(),
			url:     vis.URL,
		})
	}
	return out
}

func (HistoryMode) activate(tab *Tab, it sidebarItem) {
	tab.View.Fetch(it.url)
}

func (HistoryMode) isSidebarMode() {}

// sidebar is the panel at the left edge of the view area. While it slides
// it is drawn over the views; the views give up its columns once it is
// fully open.
type sidebar struct {
	mode   SidebarMode
	open   bool
	width  anim.Value
	scroll int
	items  []sidebarItem
}

// shown returns the width drawn this frame.
func (s *sidebar) shown() int {
	return int(math.Round(s.width.Value()))
}

// reserved returns the columns taken from the views.
func (s *sidebar) reserved() int {
	if s.open && s.width.IsFinished() {
		return sidebarWidth
	}
	return 0
}

func (s *sidebar) refresh(app *Application, tab *Tab, rows int) {
	s.items = s.mode.items(app, tab)
	s.scroll = min(max(s.scroll, 0), max(len(s.items)-rows, 0))
}

// itemAt returns the item on list row i, counted from the first row under
// the title.
func (s *sidebar) itemAt(i int) (sidebarItem, bool) {
	i += s.scroll
	if i < 0 || i >= len(s.items) || s.items[i].header {
		return sidebarItem{}, false
	}
	return s.items[i], true
}

// ToggleSidebar opens the sidebar showing mode. An open sidebar switches
// to mode, or closes if it already shows mode.
func (app *Application) ToggleSidebar(mode SidebarMode) {
	s := &app.side
	switch {
	case s.open && s.mode == mode:
		s.open = false
	case s.open:
		s.mode = mode
		s.scroll = 0
		app.needsRedraw = true
		return
	default:
		s.open = true
		s.mode = mode
		s.scroll = 0
	}

	target := 0.0
	if s.open {
		target = sidebarWidth
	}
	s.width.SetClock(app.ctx.Clock)
	s.width.SetValue(target, sidebarSlide)
	s.width.SetFlags(anim.EaseOut | anim.Soft)
	app.ctx.Ticker.Add(s, app.tickSidebar)
	app.layoutViews()
	app.needsRedraw = true
	app.ctx.Log.Debug("sidebar %s open=%v", mode.Title(), s.open)
}

// tickSidebar keeps the slide running and hands the columns to the views
// once the sidebar has settled.
func (app *Application) tickSidebar() {
	if app.side.width.IsFinished() {
		app.layoutViews()
	} else {
		app.ctx.Ticker.Add(&app.side, app.tickSidebar)
	}
	app.needsRedraw = true
}

func (app *Application) onSidebarToggle(cmd event.Command) {
	name, _ := cmd.Arg("mode")
	mode, ok := sidebarModes[name]
	if !ok {
		app.ctx.Log.Warn("unknown sidebar mode %q", name)
		return
	}
	app.ToggleSidebar(mode)
}

// sidebarRows returns the screen rows of the panel.
func (app *Application) sidebarRows() core.Span {
	return core.Span{Start: tabBarHeight, End: max(app.height-statusHeight, tabBarHeight)}
}

// handleSidebarMouse scrolls the list or activates the item under the
// pointer.
func (app *Application) handleSidebarMouse(ev backend.Event) {
	tab := app.tabs.Active()
	if tab == nil || app.side.mode == nil {
		return
	}
	s := &app.side
	rows := app.sidebarRows()
	s.refresh(app, tab, rows.Len()-1)
	switch ev.MouseButton {
	case backend.MouseWheelUp:
		s.scroll = max(s.scroll-1, 0)
	case backend.MouseWheelDown:
		s.scroll = min(s.scroll+1, max(len(s.items)-(rows.Len()-1), 0))
	case backend.MouseLeft:
		if app.mouseButton == backend.MouseLeft {
			return
		}
		if it, ok := s.itemAt(ev.MouseY - rows.Start - 1); ok {
			s.mode.activate(tab, it)
		}
	}
}

// drawSidebar draws the title, the visible items and the right border.
func (app *Application) drawSidebar(tab *Tab, th *theme.Theme) {
	s := &app.side
	w := s.shown()
	if w <= 0 || s.mode == nil {
		return
	}
	rows := app.sidebarRows()
	active, inactive := chromeStyles(th)
	app.backend.Fill(core.Rect{Top: rows.Start, Left: 0, Bottom: rows.End, Right: w}, core.BlankCell(inactive))
	for y := rows.Start; y < rows.End; y++ {
		app.backend.SetCell(w-1, y, core.Cell{Rune: '│', Width: 1, Style: inactive})
	}
	if rows.Len() == 0 {
		return
	}
	app.drawText(1, rows.Start, w-2, s.mode.Title(), active)
	if tab == nil {
		return
	}

	s.refresh(app, tab, rows.Len()-1)
	for i := 0; i < rows.Len()-1; i++ {
		idx := s.scroll + i
		if idx >= len(s.items) {
			break
		}
		it := s.items[idx]
		style := inactive
		switch {
		case it.current:
			style = active
		case it.header:
			style = inactive.With(core.AttrBold)
		}
		x := 1 + it.indent
		app.drawText(x, rows.Start+1+i, w-1-x, truncate(it.label, max(w-1-x, 1)), style)
	}
}
