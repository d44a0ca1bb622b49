// Package app provides the main application structure and coordination
// for the gemview browser. It wires the tabs, the command queue, the
// preferences and the terminal backend together and runs the UI loop.
package app

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/gemview/internal/anim"
	"github.com/dshills/gemview/internal/config"
	"github.com/dshills/gemview/internal/event"
	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/input/keys"
	"github.com/dshills/gemview/internal/renderer/backend"
	"github.com/dshills/gemview/internal/renderer/core"
)

// Screen rows taken by the tab bar and the status line.
const (
	tabBarHeight = 1
	statusHeight = 1
)

// messageDuration is how long a status message stays visible.
const messageDuration = 4 * time.Second

// Application is the central coordinator of the browser. Everything except
// Shutdown and the command queue belongs to the UI goroutine running Run.
type Application struct {
	mu sync.RWMutex

	ctx     *Context
	tabs    *TabManager
	backend backend.Backend
	subs    []event.SubscriptionID

	// Screen state
	width, height int
	tabExtents    []core.Span
	needsRedraw   bool
	side          sidebar

	// Status line
	prompt       *prompt
	message      string
	messageUntil time.Time

	// Input state
	linkKeys    bool
	selecting   bool
	pressLink   int
	mouseButton backend.MouseButton
	lastChord   keys.Chord
	lastKeyAt   time.Time

	// State
	running  atomic.Bool
	quit     bool
	done     chan struct{}
	doneOnce sync.Once

	// Options
	opts Options
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path of the preferences file.
	ConfigPath string

	// BindingsPath is the path of the key bindings file.
	BindingsPath string

	// SessionPath is where open tabs are saved on exit and restored from
	// on startup. Empty disables sessions.
	SessionPath string

	// URLs are opened in tabs on startup instead of the saved session.
	URLs []string

	// LogLevel overrides the level from the preferences.
	LogLevel string

	// Watch reloads the preferences file when it changes.
	Watch bool

	// Logger receives the log. Nil uses GetLogger.
	Logger *Logger

	// Clock drives animations and timers. Nil uses the system clock.
	Clock anim.Clock

	// Transport opens server connections. Nil dials over TLS.
	Transport gemini.Transport
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts: opts,
		tabs: NewTabManager(),
		done: make(chan struct{}),
	}

	if err := app.bootstrap(); err != nil {
		return nil, err
	}

	return app, nil
}

// SetBackend sets the terminal backend.
// Must be called before Run().
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}

	app.backend = b
	return nil
}

// Run starts the application main loop.
// Blocks until the user quits or Shutdown is called. It returns ErrQuit
// when the user quit.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	app.mu.RLock()
	b := app.backend
	app.mu.RUnlock()
	if b == nil {
		return ErrNoBackend
	}

	if err := b.Init(); err != nil {
		return NewComponentError("backend", "init", err)
	}
	defer b.Shutdown()

	w, h := b.Size()
	app.resize(w, h)
	if t := app.tabs.Active(); t != nil {
		t.View.SetForeground(true)
	}

	err := app.eventLoop()
	app.Shutdown()
	app.teardown()
	return err
}

// Shutdown stops the main loop. It may be called from any goroutine.
func (app *Application) Shutdown() {
	app.doneOnce.Do(func() {
		close(app.done)
	})
	app.mu.RLock()
	b := app.backend
	app.mu.RUnlock()
	if b != nil {
		b.PostEvent(backend.Event{Type: backend.EventWake})
	}
}

// teardown saves the session and releases every tab.
func (app *Application) teardown() {
	if err := app.saveSession(); err != nil {
		app.ctx.Log.Warn("save session: %v", err)
	}
	for _, t := range app.tabs.All() {
		t.View.Close()
	}
	for _, id := range app.subs {
		app.ctx.Queue.Unsubscribe(id)
	}
	if err := app.ctx.Config.Close(); err != nil {
		app.ctx.Log.Warn("close config: %v", err)
	}
	app.ctx.close()
	app.ctx.Log.Info("shut down after %s", app.ctx.Metrics.Snapshot().Uptime.Round(time.Second))
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Context returns the shared services.
func (app *Application) Context() *Context {
	return app.ctx
}

// Config returns the preferences.
func (app *Application) Config() *config.Config {
	return app.ctx.Config
}

// Queue returns the command queue.
func (app *Application) Queue() *event.Queue {
	return app.ctx.Queue
}

// Tabs returns the tab manager.
func (app *Application) Tabs() *TabManager {
	return app.tabs
}

// ActiveTab returns the active tab (may be nil).
func (app *Application) ActiveTab() *Tab {
	return app.tabs.Active()
}

// Message returns the status message shown at the bottom, if any.
func (app *Application) Message() string {
	if app.message == "" || !app.ctx.Clock.Now().Before(app.messageUntil) {
		return ""
	}
	return app.message
}

// showMessage shows text in the status line for a while.
func (app *Application) showMessage(text string) {
	app.message = text
	app.messageUntil = app.ctx.Clock.Now().Add(messageDuration)
	app.needsRedraw = true
}

// viewBounds returns the screen rectangle of the views.
func (app *Application) viewBounds() core.Rect {
	return core.Rect{
		Top:    tabBarHeight,
		Left:   min(app.side.reserved(), app.width),
		Bottom: max(app.height-statusHeight, tabBarHeight),
		Right:  app.width,
	}
}

// resize places every view for a screen of w by h cells.
func (app *Application) resize(w, h int) {
	app.width, app.height = w, h
	app.layoutViews()
}

// layoutViews places every view in the current view bounds.
func (app *Application) layoutViews() {
	bounds := app.viewBounds()
	for _, t := range app.tabs.All() {
		t.View.OnResize(bounds)
	}
	app.needsRedraw = true
}
