package app

import (
	"fmt"
	"runtime/debug"

	"github.com/dshills/gemview/internal/config"
	"github.com/dshills/gemview/internal/document"
	"github.com/dshills/gemview/internal/event"
	"github.com/dshills/gemview/internal/event/topic"
	"github.com/dshills/gemview/internal/gemini"
)

// subscribe registers the application's command handlers. The router for
// commands addressed to a view is registered first so a view has seen a
// command before the application reacts to it.
func (app *Application) subscribe() error {
	handlers := []struct {
		pattern topic.Topic
		fn      func(event.Command)
	}{
		{"**", app.routeToView},
		{event.TopicOpenPrompt, app.onOpenPrompt},
		{event.TopicNavigateForward, app.onNavigate},
		{event.TopicNavigateParent, app.onNavigate},
		{event.TopicNavigateRoot, app.onNavigate},
		{event.TopicInputPrompt, app.onInputPrompt},
		{event.TopicMessage, app.onMessage},
		{event.TopicFind, app.onFind},
		{event.TopicPrefsChanged, app.onPrefsChanged},
		{event.TopicHoverLinkToggle, app.onHoverLinkToggle},
		{event.TopicZoomDelta, app.onZoom},
		{event.TopicZoomSet, app.onZoom},
		{event.TopicDocumentChanged, app.onDocumentChanged},
		{event.TopicRequestStarted, app.onRedraw},
		{event.TopicReload, app.onReload},
		{event.TopicStop, app.onStop},
		{event.TopicSave, app.onSave},
		{event.TopicLinkKeys, app.onLinkKeys},
		{"scroll.*", app.onScroll},
		{event.TopicMediaPlayerStart, app.onPlayerStarted},
		{"tab.*", app.onTab},
		{event.TopicSidebarToggle, app.onSidebarToggle},
		{event.TopicQuit, app.onQuit},
	}
	for _, h := range handlers {
		id, err := app.ctx.Queue.Subscribe(h.pattern, app.recovering(h.pattern, h.fn))
		if err != nil {
			return err
		}
		app.subs = append(app.subs, id)
	}
	return nil
}

// recovering wraps a handler so a panic is logged instead of taking down
// the UI loop.
func (app *Application) recovering(pattern topic.Topic, fn func(event.Command)) event.Handler {
	return func(cmd event.Command) {
		defer func() {
			if r := recover(); r != nil {
				err := NewRecoveredPanicError(r, string(debug.Stack()))
				app.ctx.Log.WithField("handler", pattern).Error("%s: %v", cmd.Topic, err)
			}
		}()
		fn(cmd)
	}
}

// target returns the tab a command is meant for: the addressed one, or
// the active tab for commands without a target.
func (app *Application) target(cmd event.Command) *Tab {
	if cmd.Target == "" {
		return app.tabs.Active()
	}
	t, _ := app.tabs.Get(cmd.Target)
	return t
}

// routeToView hands commands addressed to a tab to its view.
func (app *Application) routeToView(cmd event.Command) {
	if cmd.Target == "" {
		return
	}
	t, ok := app.tabs.Get(cmd.Target)
	if !ok {
		app.ctx.Log.Debug("dropping %s for closed tab %s", cmd.Topic, cmd.Target)
		return
	}
	if t.View.HandleCommand(cmd) && t == app.tabs.Active() {
		app.needsRedraw = true
	}
}

func (app *Application) onRedraw(event.Command) {
	app.needsRedraw = true
}

func (app *Application) onOpenPrompt(cmd event.Command) {
	t := app.target(cmd)
	if t == nil {
		return
	}
	p := newPrompt(promptOpen, t.ID, "Go to", false)
	p.setText(t.View.URL())
	app.openPrompt(p)
}

func (app *Application) onNavigate(cmd event.Command) {
	t := app.target(cmd)
	if t == nil {
		return
	}
	v := t.View
	switch cmd.Topic {
	case event.TopicNavigateForward:
		v.GoForward()
	case event.TopicNavigateParent:
		if v.URL() != "" && !gemini.IsAbout(v.URL()) {
			v.Fetch(gemini.ParentURL(v.URL()))
		}
	case event.TopicNavigateRoot:
		if v.URL() != "" && !gemini.IsAbout(v.URL()) {
			v.Fetch(gemini.RootURL(v.URL()))
		}
	}
}

// onInputPrompt asks for the input a server requested. The reply is sent
// as the query of the URL that asked.
func (app *Application) onInputPrompt(cmd event.Command) {
	t := app.target(cmd)
	if t == nil {
		return
	}
	p := newPrompt(promptInput, t.ID, cmd.ArgString("prompt"), cmd.ArgInt("sensitive") != 0)
	p.url, _ = cmd.Arg("url")
	if p.url == "" {
		p.url = t.View.URL()
	}
	if p.label == "" {
		p.label = "Input"
	}
	app.openPrompt(p)
}

func (app *Application) onMessage(cmd event.Command) {
	text := cmd.ArgString("text")
	if text == "" {
		return
	}
	app.ctx.Log.Debug("message: %s", text)
	app.showMessage(text)
}

func (app *Application) onFind(cmd event.Command) {
	t := app.target(cmd)
	if t == nil {
		return
	}
	app.openPrompt(newPrompt(promptFind, t.ID, "Find", false))
}

// onPrefsChanged applies the current preferences to every view.
func (app *Application) onPrefsChanged(event.Command) {
	p := app.ctx.Prefs()
	if level, err := ParseLogLevel(p.LogLevel); err == nil && app.opts.LogLevel == "" {
		app.ctx.Log.SetLevel(level)
	}
	for _, t := range app.tabs.All() {
		t.View.SetPrefs(p)
	}
	app.needsRedraw = true
}

func (app *Application) onHoverLinkToggle(event.Command) {
	app.ctx.Config.Update(func(p *config.Prefs) {
		p.HoverLink = !p.HoverLink
	})
}

// onZoom changes the zoom. The change reaches the views through
// prefs.changed.
func (app *Application) onZoom(cmd event.Command) {
	var zoom int
	app.ctx.Config.Update(func(p *config.Prefs) {
		if cmd.Topic == event.TopicZoomSet {
			p.ZoomPercent = cmd.ArgInt("arg")
		} else {
			p.ZoomPercent += cmd.ArgInt("arg")
		}
		zoom = p.ZoomPercent
	})
	app.showMessage(fmt.Sprintf("Zoom %d%%", min(max(zoom, config.MinZoom), config.MaxZoom)))
}

func (app *Application) onDocumentChanged(cmd event.Command) {
	if t, ok := app.tabs.Get(cmd.Target); ok {
		t.loadedAt = app.ctx.Clock.Now()
	}
	app.needsRedraw = true
}

func (app *Application) onReload(cmd event.Command) {
	if t := app.target(cmd); t != nil {
		t.View.Reload()
	}
}

func (app *Application) onStop(cmd event.Command) {
	if t := app.target(cmd); t != nil && t.View.Stop() {
		app.showMessage("Stopped")
	}
}

// onSave writes the page source to the download directory. The view
// reports the result itself.
func (app *Application) onSave(cmd event.Command) {
	t := app.target(cmd)
	if t == nil {
		return
	}
	if _, err := t.View.SaveSourceToFile(app.ctx.DownloadDir()); err != nil {
		app.ctx.Log.Warn("save %s: %v", t.View.URL(), err)
	}
}

// onLinkKeys shows the link labels so a link can be opened by typing its
// key.
func (app *Application) onLinkKeys(cmd event.Command) {
	t := app.target(cmd)
	if t == nil {
		return
	}
	app.linkKeys = cmd.ArgInt("arg") != 0
	t.View.ShowLinkNumbers(app.linkKeys)
	app.needsRedraw = true
}

func (app *Application) onScroll(cmd event.Command) {
	t := app.target(cmd)
	if t == nil {
		return
	}
	v := t.View
	switch cmd.Topic {
	case event.TopicScrollTop:
		v.ScrollToTop()
	case event.TopicScrollBottom:
		v.ScrollToBottom()
	case event.TopicScrollStep:
		// A held key scrolls without animating each step
		if cmd.ArgInt("repeat") != 0 {
			v.OnScrollInput(cmd.ArgInt("arg")*document.StepRows, true)
		} else {
			v.OnScrollInput(cmd.ArgInt("arg"), false)
		}
	case event.TopicScrollPage:
		v.ScrollPage(cmd.ArgInt("arg"), false)
	case event.TopicScrollFullPage:
		v.ScrollPage(cmd.ArgInt("arg"), true)
	}
	app.needsRedraw = true
}

func (app *Application) onPlayerStarted(cmd event.Command) {
	app.ctx.Log.Debug("player started for link %d in %s", cmd.ArgInt("link"), cmd.Target)
	app.needsRedraw = true
}

func (app *Application) onTab(cmd event.Command) {
	switch cmd.Topic {
	case event.TopicTabNew:
		url := cmd.ArgString("url")
		t := app.NewTab(url)
		if url == "" {
			app.openPrompt(newPrompt(promptOpen, t.ID, "Go to", false))
		}
	case event.TopicTabClose:
		if t := app.target(cmd); t != nil {
			if err := app.CloseTab(t.ID); err != nil {
				app.ctx.Log.Warn("close tab: %v", err)
			}
		}
	case event.TopicTabDuplicate:
		if t := app.target(cmd); t != nil {
			if _, err := app.DuplicateTab(t.ID); err != nil {
				app.ctx.Log.Warn("duplicate tab: %v", err)
			}
		}
	case event.TopicTabNext:
		app.activate(app.tabs.Next())
	case event.TopicTabPrev:
		app.activate(app.tabs.Previous())
	}
}

func (app *Application) onQuit(event.Command) {
	app.requestQuit()
}

// checkReloads reloads the tabs whose automatic reload interval passed.
func (app *Application) checkReloads() {
	now := app.ctx.Clock.Now()
	for _, t := range app.tabs.All() {
		if t.reloadDue(now) {
			app.ctx.Log.Debug("automatic reload of %s after %s", t.View.URL(), t.View.ReloadInterval())
			t.loadedAt = now
			t.View.Reload()
		}
	}
}
