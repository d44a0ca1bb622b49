package app

import (
	"context"
	"time"

	"github.com/dshills/gemview/internal/anim"
	"github.com/dshills/gemview/internal/config"
	"github.com/dshills/gemview/internal/document"
	"github.com/dshills/gemview/internal/event"
	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/history"
	"github.com/dshills/gemview/internal/input/keys"
)

// DefaultRequestTimeout bounds connecting to a server.
const DefaultRequestTimeout = 30 * time.Second

// Context holds the services shared by every tab. It is created once by
// New and passed to each view through its document.Env.
type Context struct {
	Config    *config.Config
	Log       *Logger
	Queue     *event.Queue
	Clock     anim.Clock
	Ticker    *anim.Ticker
	Visited   *history.Visited
	Metrics   *Metrics
	Keys      *keys.Table
	Transport gemini.Transport

	ctx    context.Context
	cancel context.CancelFunc
}

func newContext(cfg *config.Config, log *Logger, queue *event.Queue, clock anim.Clock, transport gemini.Transport) *Context {
	ctx, cancel := context.WithCancel(context.Background())
	if clock == nil {
		clock = anim.SystemClock{}
	}
	if transport == nil {
		transport = &gemini.TLSTransport{
			Timeout: DefaultRequestTimeout,
			Trust:   gemini.NewTrustStore(),
		}
	}
	return &Context{
		Config:    cfg,
		Log:       log,
		Queue:     queue,
		Clock:     clock,
		Ticker:    anim.NewTicker(),
		Visited:   history.NewVisited(),
		Metrics:   NewMetrics(),
		Keys:      keys.NewTable(),
		Transport: transport,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Prefs returns the current preferences.
func (c *Context) Prefs() config.Prefs {
	return c.Config.Prefs()
}

// DownloadDir returns the directory downloads and saved pages go to.
func (c *Context) DownloadDir() string {
	return c.Prefs().DownloadDir
}

// ViewEnv returns the environment of a new view.
func (c *Context) ViewEnv() document.Env {
	return document.Env{
		Prefs:     c.Prefs(),
		Log:       c.Log.WithComponent("view"),
		Queue:     c.Queue,
		Clock:     c.Clock,
		Ticker:    c.Ticker,
		Visited:   c.Visited,
		Transport: c.Transport,
		Metrics:   c.Metrics,
		Context:   c.ctx,
	}
}

// Done is closed when the application shuts down; requests in flight are
// cancelled through it.
func (c *Context) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Context) close() {
	c.cancel()
	c.Queue.Close()
}
