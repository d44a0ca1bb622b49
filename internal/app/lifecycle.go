package app

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/gemview/internal/document"
	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/stream"
)

// Session file header.
const (
	sessionMagic   uint32 = 0x47565331 // "GVS1"
	sessionVersion uint16 = 1
)

// NormalizeURL turns what the user typed into a URL: a missing scheme
// means gemini. Surrounding space is dropped.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "://") {
		return raw
	}
	switch gemini.Scheme(raw) {
	case "about", "file":
		return raw
	}
	return "gemini://" + raw
}

// NewTab opens a tab after the active one and activates it. A non-empty
// url is fetched in the new tab.
func (app *Application) NewTab(url string) *Tab {
	tab := &Tab{ID: newTabID()}
	tab.View = document.NewView(tab.ID, app.ctx.ViewEnv())
	app.addTab(tab)
	if url = NormalizeURL(url); url != "" {
		tab.View.Fetch(url)
	}
	return tab
}

func (app *Application) addTab(tab *Tab) {
	if app.width > 0 && app.height > 0 {
		tab.View.OnResize(app.viewBounds())
	}
	app.tabs.Add(tab)
	app.activate(tab)
	app.ctx.Log.Debug("opened tab %s", tab.ID)
}

// OpenURL shows url in the active tab, or in a new tab when newTab is set
// or no tab is open.
func (app *Application) OpenURL(url string, newTab bool) {
	url = NormalizeURL(url)
	if url == "" {
		return
	}
	if t := app.tabs.Active(); t != nil && !newTab {
		t.View.Fetch(url)
		return
	}
	app.NewTab(url)
}

// SelectTab activates the tab with the given ID.
func (app *Application) SelectTab(id string) error {
	if err := app.tabs.SetActive(id); err != nil {
		return err
	}
	app.activate(app.tabs.Active())
	return nil
}

// activate brings tab to the foreground and sends the others to the
// background.
func (app *Application) activate(tab *Tab) {
	for _, t := range app.tabs.All() {
		if t != tab {
			t.View.ShowLinkNumbers(false)
			t.View.SetForeground(false)
		}
	}
	if tab != nil {
		tab.View.SetForeground(true)
	}
	app.linkKeys = false
	app.selecting = false
	app.needsRedraw = true
}

// CloseTab closes the tab with the given ID. Closing the last tab quits.
func (app *Application) CloseTab(id string) error {
	tab, err := app.tabs.Remove(id)
	if err != nil {
		return err
	}
	tab.View.Close()
	app.ctx.Log.Debug("closed tab %s", id)
	if app.tabs.Count() == 0 {
		app.requestQuit()
		return nil
	}
	app.activate(app.tabs.Active())
	return nil
}

// DuplicateTab opens a copy of a tab's history next to it.
func (app *Application) DuplicateTab(id string) (*Tab, error) {
	src, ok := app.tabs.Get(id)
	if !ok {
		return nil, ErrTabNotFound
	}
	if err := app.tabs.SetActive(id); err != nil {
		return nil, err
	}
	tab := &Tab{ID: newTabID()}
	tab.View = src.View.Duplicate(tab.ID)
	tab.View.SetPrefs(app.ctx.Prefs())
	app.addTab(tab)
	return tab, nil
}

// requestQuit makes the main loop return ErrQuit after the current frame.
func (app *Application) requestQuit() {
	app.quit = true
}

// saveSession writes the open tabs to the session file. The file is
// replaced atomically.
func (app *Application) saveSession() error {
	path := app.opts.SessionPath
	if path == "" {
		return nil
	}

	var buf bytes.Buffer
	tabs := app.tabs.All()
	w := stream.NewWriter(&buf)
	w.Uint32(sessionMagic)
	w.Uint16(sessionVersion)
	w.Uint16(uint16(len(tabs)))
	w.Uint16(uint16(max(app.tabs.ActiveIndex(), 0)))
	for i, t := range tabs {
		var blob bytes.Buffer
		if err := t.View.Serialize(&blob); err != nil {
			return NewOperationError("save session", strconv.Itoa(i), err)
		}
		w.Bytes(blob.Bytes())
	}
	if err := w.Err(); err != nil {
		return NewOperationError("save session", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return NewOperationError("save session", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*")
	if err != nil {
		return NewOperationError("save session", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return NewOperationError("save session", path, err)
	}
	if err := tmp.Close(); err != nil {
		return NewOperationError("save session", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return NewOperationError("save session", path, err)
	}
	app.ctx.Log.Debug("saved %d tabs to %s", len(tabs), path)
	return nil
}

// loadSession opens the tabs of the session file. A missing file is not
// an error. Tabs that fail to restore are skipped and reported together.
func (app *Application) loadSession() error {
	path := app.opts.SessionPath
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return NewOperationError("load session", path, err)
	}

	r := stream.NewReader(bytes.NewReader(data))
	magic := r.Uint32()
	version := r.Uint16()
	count := int(r.Uint16())
	active := int(r.Uint16())
	if err := r.Err(); err != nil {
		return NewOperationError("load session", path, fmt.Errorf("%w: %v", ErrBadSession, err))
	}
	if magic != sessionMagic || version != sessionVersion {
		return NewOperationError("load session", path, ErrBadSession).WithContext("header")
	}

	var errs ErrorList
	var restored []*Tab
	for i := 0; i < count; i++ {
		blob := r.Bytes()
		if err := r.Err(); err != nil {
			errs.Add(NewOperationError("restore tab", strconv.Itoa(i), err))
			break
		}
		tab := &Tab{ID: newTabID()}
		tab.View = document.NewView(tab.ID, app.ctx.ViewEnv())
		if err := tab.View.Deserialize(bytes.NewReader(blob)); err != nil {
			tab.View.Close()
			errs.Add(NewOperationError("restore tab", strconv.Itoa(i), err))
			continue
		}
		app.addTab(tab)
		restored = append(restored, tab)
	}
	if active < len(restored) {
		_ = app.SelectTab(restored[active].ID)
	}
	app.ctx.Log.Info("restored %d of %d tabs", len(restored), count)
	return errs.AsError()
}
