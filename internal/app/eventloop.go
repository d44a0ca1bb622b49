package app

import (
	"time"

	"github.com/dshills/gemview/internal/document"
	"github.com/dshills/gemview/internal/input/keys"
	"github.com/dshills/gemview/internal/renderer/backend"
	"github.com/dshills/gemview/internal/renderer/core"
)

const (
	targetFPS = 60
	frameTime = time.Second / targetFPS

	// maxDispatchRounds bounds how many times commands posted by handlers
	// are dispatched again within one frame.
	maxDispatchRounds = 8

	// keyRepeatWindow is how soon the same chord must come again to count
	// as a held key.
	keyRepeatWindow = 120 * time.Millisecond

	// wheelColumns is how far a sideways wheel notch scrolls a
	// preformatted block.
	wheelColumns = 4
)

// eventLoop is the main application loop. Input, wake-ups from the command
// queue and the frame ticker all lead to one update.
func (app *Application) eventLoop() error {
	events := app.startInputPolling()

	frameTicker := time.NewTicker(frameTime)
	defer frameTicker.Stop()

	app.update()
	for {
		select {
		case <-app.done:
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			app.handleBackendEvent(ev)

		case <-frameTicker.C:
			app.tick()
		}

		app.update()
		if app.quit {
			return ErrQuit
		}
	}
}

// tick runs the animation callbacks and the automatic reloads.
func (app *Application) tick() {
	if n := app.ctx.Ticker.Run(); n > 0 {
		app.needsRedraw = true
	}
	app.checkReloads()
	if app.message != "" && app.Message() == "" {
		app.message = ""
		app.needsRedraw = true
	}
}

// update dispatches pending commands and redraws what changed.
func (app *Application) update() {
	for i := 0; i < maxDispatchRounds; i++ {
		n := app.ctx.Queue.Dispatch()
		if n == 0 {
			break
		}
		app.ctx.Metrics.RecordCommands(n)
	}
	if app.backend == nil || app.quit {
		return
	}
	if app.needsRedraw || app.activeNeedsPaint() {
		start := time.Now()
		app.render()
		app.ctx.Metrics.RecordFrame(time.Since(start))
	}
}

func (app *Application) activeNeedsPaint() bool {
	t := app.tabs.Active()
	return t != nil && t.View.NeedsPaint()
}

// handleBackendEvent processes a backend event and routes it appropriately.
func (app *Application) handleBackendEvent(ev backend.Event) {
	app.ctx.Metrics.RecordInput()
	switch ev.Type {
	case backend.EventResize:
		app.resize(ev.Width, ev.Height)
	case backend.EventKey:
		app.handleKeyEvent(ev)
	case backend.EventMouse:
		app.handleMouseEvent(ev)
	case backend.EventFocus:
		app.handleFocusEvent(ev)
	case backend.EventWake:
		// Commands are dispatched by the update that follows
	}
}

// handleKeyEvent edits the prompt, picks a labelled link or posts the
// command bound to the key.
func (app *Application) handleKeyEvent(ev backend.Event) {
	if app.prompt != nil {
		app.handlePromptKey(ev)
		return
	}
	tab := app.tabs.Active()
	if tab == nil {
		return
	}

	// Any key leaves link key mode; a label key also opens its link
	if app.linkKeys {
		// Labels must still be shown for the lookup to succeed
		id, ok := 0, false
		if ev.Key == backend.KeyRune {
			id, ok = tab.View.LinkForNumber(ev.Rune)
		}
		app.linkKeys = false
		tab.View.ShowLinkNumbers(false)
		app.needsRedraw = true
		if ok {
			tab.View.ActivateLink(id)
		}
		return
	}

	chord := keys.FromEvent(ev)
	b, ok := app.ctx.Keys.Lookup(chord)
	if !ok {
		return
	}
	now := app.ctx.Clock.Now()
	repeat := chord == app.lastChord && now.Sub(app.lastKeyAt) < keyRepeatWindow
	app.lastChord, app.lastKeyAt = chord, now

	if err := app.ctx.Queue.Post(b.Event(tab.ID, repeat)); err != nil {
		app.ctx.Log.Warn("post %s: %v", b.Command, err)
	}
}

// handleMouseEvent scrolls, hovers, selects and follows links. A link is
// followed when the button is released over the link it was pressed on.
func (app *Application) handleMouseEvent(ev backend.Event) {
	x, y := ev.MouseX, ev.MouseY
	if y < tabBarHeight {
		if ev.MouseButton == backend.MouseLeft && app.mouseButton != backend.MouseLeft {
			app.clickTabBar(x)
		}
		app.trackButton(ev.MouseButton)
		return
	}
	if !app.selecting && x < app.side.shown() && app.sidebarRows().Contains(y) {
		app.handleSidebarMouse(ev)
		app.trackButton(ev.MouseButton)
		app.needsRedraw = true
		return
	}
	tab := app.tabs.Active()
	if tab == nil {
		return
	}
	v := tab.View
	inside := v.Bounds().Contains(core.Pos{Row: y, Col: x})

	switch ev.MouseButton {
	case backend.MouseWheelUp, backend.MouseWheelDown:
		dir := 1
		if ev.MouseButton == backend.MouseWheelUp {
			dir = -1
		}
		if ev.Mod.Has(backend.ModShift) {
			v.OnWheelHorizontal(dir*wheelColumns, x, y)
		} else {
			v.OnScrollInput(dir, false)
		}
	case backend.MouseWheelLeft:
		v.OnWheelHorizontal(-wheelColumns, x, y)
	case backend.MouseWheelRight:
		v.OnWheelHorizontal(wheelColumns, x, y)

	case backend.MouseLeft:
		switch {
		case app.mouseButton != backend.MouseLeft && inside:
			app.pressLink = v.Hover(x, y)
			if app.pressLink == 0 {
				app.selecting = v.BeginSelection(x, y)
			}
		case app.selecting:
			v.ExtendSelection(x, y)
		}
	case backend.MouseMiddle:
		if app.mouseButton != backend.MouseMiddle && inside && v.Hover(x, y) != 0 {
			// Opens in the background
			app.NewTab(v.HoverURL())
			if err := app.SelectTab(tab.ID); err != nil {
				app.ctx.Log.Warn("select tab: %v", err)
			}
		}
	case backend.MouseNone:
		if app.mouseButton == backend.MouseLeft {
			app.release(v, x, y)
		}
		if inside {
			v.Hover(x, y)
		}
	}
	app.trackButton(ev.MouseButton)
	app.needsRedraw = true
}

// release ends a selection or follows the link the button went down on.
func (app *Application) release(v *document.View, x, y int) {
	if app.selecting {
		v.EndSelection()
		app.selecting = false
		if text := v.SelectedText(); text != "" {
			app.ctx.Log.Debug("selected %d bytes", len(text))
		}
		return
	}
	if id := app.pressLink; id != 0 && v.Hover(x, y) == id {
		v.ActivateLink(id)
	}
	app.pressLink = 0
}

// trackButton remembers the held button. Wheel notches do not change it.
func (app *Application) trackButton(b backend.MouseButton) {
	switch b {
	case backend.MouseNone, backend.MouseLeft, backend.MouseMiddle, backend.MouseRight:
		app.mouseButton = b
	}
}

// clickTabBar activates the tab whose label is at column x.
func (app *Application) clickTabBar(x int) {
	tabs := app.tabs.All()
	for i, ext := range app.tabExtents {
		if ext.Contains(x) && i < len(tabs) {
			if err := app.SelectTab(tabs[i].ID); err != nil {
				app.ctx.Log.Warn("select tab: %v", err)
			}
			return
		}
	}
}

// handleFocusEvent pauses the media timers of the active tab while the
// terminal is in the background.
func (app *Application) handleFocusEvent(ev backend.Event) {
	if t := app.tabs.Active(); t != nil {
		t.View.SetForeground(ev.Focused)
	}
}

// startInputPolling starts a goroutine that polls for input events.
// Events are sent to the returned channel.
//
// PollEvent is blocking, so this goroutine exits only after the backend
// delivers one more event. Shutdown posts a wake-up for that reason.
func (app *Application) startInputPolling() <-chan backend.Event {
	events := make(chan backend.Event, 100)
	b := app.backend

	go func() {
		defer close(events)

		for app.running.Load() {
			ev := b.PollEvent()

			// Check if we should stop (may have been signaled during blocking poll)
			select {
			case <-app.done:
				return
			default:
			}

			// Send event (non-blocking with buffer to avoid deadlock)
			select {
			case events <- ev:
			case <-app.done:
				return
			default:
				app.ctx.Metrics.RecordInputDropped()
			}
		}
	}()

	return events
}
