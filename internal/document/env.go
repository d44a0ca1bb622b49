package document

import (
	"context"
	"time"

	"github.com/dshills/gemview/internal/anim"
	"github.com/dshills/gemview/internal/config"
	"github.com/dshills/gemview/internal/event"
	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/history"
)

// Logger is the logging a view needs.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// PaintRecorder receives the cost of each paint pass.
type PaintRecorder interface {
	RecordPaint(d time.Duration, tiles, runs int)
}

// Env holds the application services a view depends on. Zero fields get
// usable defaults from NewView.
type Env struct {
	Prefs     config.Prefs
	Log       Logger
	Queue     *event.Queue
	Clock     anim.Clock
	Ticker    *anim.Ticker
	Visited   *history.Visited
	Transport gemini.Transport
	Metrics   PaintRecorder
	Context   context.Context
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

func (e *Env) fill() {
	if e.Log == nil {
		e.Log = nopLogger{}
	}
	if e.Clock == nil {
		e.Clock = anim.SystemClock{}
	}
	if e.Ticker == nil {
		e.Ticker = anim.NewTicker()
	}
	if e.Visited == nil {
		e.Visited = history.NewVisited()
	}
	if e.Context == nil {
		e.Context = context.Background()
	}
	if e.Prefs == (config.Prefs{}) {
		e.Prefs = config.Defaults()
	}
}
