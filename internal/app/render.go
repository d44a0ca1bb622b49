package app

import (
	"fmt"

	"github.com/dshills/gemview/internal/document"
	"github.com/dshills/gemview/internal/renderer/core"
	"github.com/dshills/gemview/internal/renderer/theme"
)

// maxTabLabel is the widest a tab label may get in cells.
const maxTabLabel = 24

// render draws the tab bar, the active view, the sidebar and the status
// line.
func (app *Application) render() {
	tab := app.tabs.Active()
	var th *theme.Theme
	if tab != nil {
		th = tab.View.Theme()
	}

	app.drawTabBar(th)
	if tab != nil {
		tab.View.Paint(app.backend)
	} else if th != nil {
		app.backend.Fill(app.viewBounds(), th.Fill())
	}
	app.drawSidebar(tab, th)
	app.drawStatus(tab, th)

	app.backend.Show()
	app.needsRedraw = false
}

// chromeStyles returns the styles of the tab bar and the status line.
func chromeStyles(th *theme.Theme) (active, inactive core.Style) {
	if th == nil {
		inactive = core.DefaultStyle().With(core.AttrReverse)
		return core.DefaultStyle().With(core.AttrBold), inactive
	}
	active = core.Style{
		Foreground: th.Color(theme.RoleHeading1),
		Background: th.Color(theme.RoleBackground),
		Attributes: core.AttrBold,
	}
	inactive = core.Style{
		Foreground: th.Color(theme.RoleBanner),
		Background: th.Color(theme.RoleBannerBackground),
	}
	return active, inactive
}

// drawTabBar draws one label per tab and remembers where each label is
// for mouse clicks.
func (app *Application) drawTabBar(th *theme.Theme) {
	active, inactive := chromeStyles(th)
	app.backend.Fill(core.Rect{Top: 0, Left: 0, Bottom: tabBarHeight, Right: app.width}, core.BlankCell(inactive))

	app.tabExtents = app.tabExtents[:0]
	activeIdx := app.tabs.ActiveIndex()
	x := 0
	for i, t := range app.tabs.All() {
		style := inactive
		if i == activeIdx {
			style = active
		}
		label := t.Title()
		if t.View.IsLoading() {
			label = "~" + label
		}
		start := x
		x = app.drawText(x, 0, app.width-x, " "+truncate(label, maxTabLabel)+" ", style)
		app.tabExtents = append(app.tabExtents, core.Span{Start: start, End: x})
		if x >= app.width {
			break
		}
	}
}

// drawStatus draws the prompt, the latest message or the state of the
// active view.
func (app *Application) drawStatus(tab *Tab, th *theme.Theme) {
	y := app.height - statusHeight
	if y < tabBarHeight {
		return
	}
	_, style := chromeStyles(th)
	app.backend.Fill(core.Rect{Top: y, Left: 0, Bottom: app.height, Right: app.width}, core.BlankCell(style))

	switch {
	case app.prompt != nil:
		app.drawText(0, y, app.width, app.prompt.display()+"_", style)
	case app.Message() != "":
		app.drawText(0, y, app.width, app.Message(), style)
	case tab != nil:
		right := scrollLabel(tab.View)
		rw := core.StringWidth(right)
		app.drawText(0, y, app.width-rw-1, statusText(tab.View), style)
		app.drawText(app.width-rw, y, rw, right, style)
	}
}

// statusText describes the load state of v.
func statusText(v *document.View) string {
	switch {
	case v.URL() == "":
		return ""
	case v.IsLoading():
		return "Loading " + v.URL()
	case v.RedirectCount() > 0:
		return fmt.Sprintf("%s (redirected %d)", v.URL(), v.RedirectCount())
	}
	return v.URL()
}

// scrollLabel returns how far down the document the view is.
func scrollLabel(v *document.View) string {
	switch m := v.ScrollMax(); {
	case m == 0:
		return "All"
	case v.ScrollPos() == 0:
		return "Top"
	case v.ScrollPos() >= m:
		return "Bot"
	default:
		return fmt.Sprintf("%d%%", v.ScrollPos()*100/m)
	}
}

// drawText draws s at x, y clipped to maxW cells. It returns the column
// after the text.
func (app *Application) drawText(x, y, maxW int, s string, style core.Style) int {
	end := x + max(maxW, 0)
	for _, c := range core.CellsFromString(s, style) {
		if x >= end {
			break
		}
		if c.Width > 1 && x+c.Width > end {
			break
		}
		app.backend.SetCell(x, y, c)
		x++
	}
	return x
}

// truncate shortens s to at most n cells, marking the cut.
func truncate(s string, n int) string {
	if core.StringWidth(s) <= n {
		return s
	}
	w := 0
	for i, r := range s {
		rw := core.RuneWidth(r)
		if w+rw > n-1 {
			return s[:i] + "…"
		}
		w += rw
	}
	return s
}
