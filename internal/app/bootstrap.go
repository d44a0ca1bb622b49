package app

import (
	"os"

	"github.com/dshills/gemview/internal/config"
	"github.com/dshills/gemview/internal/event"
	"github.com/dshills/gemview/internal/renderer/backend"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string

	log   *Logger
	cfg   *config.Config
	queue *event.Queue
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 6),
	}
}

// bootstrap runs the bootstrapper for the application.
func (app *Application) bootstrap() error {
	return newBootstrapper(app, app.opts).bootstrap()
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap() error {
	steps := []func() error{
		b.initLogger,
		b.initConfig,
		b.initQueue,
		b.initContext,
		b.initKeys,
		b.initSubscriptions,
		b.initTabs,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

// initLogger picks the logger and applies the requested level.
func (b *bootstrapper) initLogger() error {
	b.log = b.opts.Logger
	if b.log == nil {
		b.log = GetLogger()
	}
	if b.opts.LogLevel != "" {
		level, err := ParseLogLevel(b.opts.LogLevel)
		if err != nil {
			return NewComponentError("logger", "level", err)
		}
		b.log.SetLevel(level)
	}
	b.initOrder = append(b.initOrder, "logger")
	return nil
}

// initConfig loads the preferences. Load errors are non-fatal: the
// defaults are used and a warning logged.
func (b *bootstrapper) initConfig() error {
	b.cfg = config.New(
		config.WithPath(b.opts.ConfigPath),
		config.WithEnv(os.LookupEnv),
		config.WithLogger(b.log.WithComponent("config")),
	)
	if err := b.cfg.Load(); err != nil {
		b.log.Warn("load preferences: %v", err)
	}

	// The preferences file may set the level when no option overrides it
	if b.opts.LogLevel == "" {
		if level, err := ParseLogLevel(b.cfg.Prefs().LogLevel); err == nil {
			b.log.SetLevel(level)
		} else {
			b.log.Warn("preferences: %v", err)
		}
	}

	if b.opts.Watch && b.opts.ConfigPath != "" {
		if err := b.cfg.Watch(); err != nil {
			b.log.Warn("watch preferences: %v", err)
		}
	}
	b.initOrder = append(b.initOrder, "config")
	return nil
}

// initQueue creates the command queue. Every post wakes the UI loop
// through the backend.
func (b *bootstrapper) initQueue() error {
	app := b.app
	b.queue = event.NewQueue(event.WithWake(func() {
		app.mu.RLock()
		be := app.backend
		app.mu.RUnlock()
		if be != nil {
			be.PostEvent(backend.Event{Type: backend.EventWake})
		}
	}))
	b.initOrder = append(b.initOrder, "queue")
	return nil
}

// initContext creates the services shared by the tabs.
func (b *bootstrapper) initContext() error {
	b.app.ctx = newContext(b.cfg, b.log, b.queue, b.opts.Clock, b.opts.Transport)

	// Preference changes may arrive from the watcher goroutine, so they
	// go through the queue to reach the views.
	queue := b.queue
	b.cfg.OnChange(func(config.Prefs) {
		_ = queue.Postf(event.TopicPrefsChanged, "", "")
	})
	b.initOrder = append(b.initOrder, "context")
	return nil
}

// initKeys applies the user's key bindings. A broken file is non-fatal.
func (b *bootstrapper) initKeys() error {
	if b.opts.BindingsPath != "" {
		if err := b.app.ctx.Keys.Load(b.opts.BindingsPath); err != nil {
			b.log.Warn("key bindings: %v", err)
		}
	}
	b.initOrder = append(b.initOrder, "keys")
	return nil
}

// initSubscriptions registers the command handlers.
func (b *bootstrapper) initSubscriptions() error {
	if err := b.app.subscribe(); err != nil {
		return NewComponentError("queue", "subscribe", err)
	}
	b.initOrder = append(b.initOrder, "subscriptions")
	return nil
}

// initTabs opens the requested URLs, or the saved session, or a blank tab.
func (b *bootstrapper) initTabs() error {
	app := b.app
	for _, u := range b.opts.URLs {
		app.OpenURL(u, true)
	}
	if app.tabs.Count() == 0 && b.opts.SessionPath != "" {
		if err := app.loadSession(); err != nil {
			b.log.Warn("restore session: %v", err)
		}
	}
	if app.tabs.Count() == 0 {
		app.NewTab("")
	}
	b.initOrder = append(b.initOrder, "tabs")
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		switch b.initOrder[i] {
		case "tabs":
			for _, t := range b.app.tabs.All() {
				t.View.Close()
			}
		case "subscriptions":
			for _, id := range b.app.subs {
				b.queue.Unsubscribe(id)
			}
			b.app.subs = nil
		case "context":
			b.app.ctx.close()
		case "config":
			_ = b.cfg.Close()
		}
	}
}
