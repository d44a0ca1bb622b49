package app

import (
	"math"
	"sync/atomic"
	"time"
)

// Metrics tracks frame and paint costs. All methods are safe for
// concurrent use.
type Metrics struct {
	// Frame timing
	frameCount   atomic.Uint64
	frameTotalNs atomic.Int64
	frameMinNs   atomic.Int64
	frameMaxNs   atomic.Int64
	lastFrameNs  atomic.Int64

	// Paint passes of views
	paintCount   atomic.Uint64
	paintTotalNs atomic.Int64
	tilesDrawn   atomic.Uint64
	runsDrawn    atomic.Uint64

	// Input and commands
	inputCount   atomic.Uint64
	inputDropped atomic.Uint64
	commandCount atomic.Uint64

	startTime time.Time
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{startTime: time.Now()}
	m.frameMinNs.Store(math.MaxInt64)
	return m
}

// RecordFrame records the duration of one frame of the UI loop.
func (m *Metrics) RecordFrame(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.frameCount.Add(1)
	m.frameTotalNs.Add(ns)
	m.lastFrameNs.Store(ns)

	for {
		old := m.frameMinNs.Load()
		if ns >= old || m.frameMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.frameMaxNs.Load()
		if ns <= old || m.frameMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordPaint records one paint pass of a view with the number of tiles
// and runs it redrew.
func (m *Metrics) RecordPaint(d time.Duration, tiles, runs int) {
	m.paintCount.Add(1)
	m.paintTotalNs.Add(d.Nanoseconds())
	m.tilesDrawn.Add(uint64(max(tiles, 0)))
	m.runsDrawn.Add(uint64(max(runs, 0)))
}

// RecordInput records a handled input event.
func (m *Metrics) RecordInput() {
	m.inputCount.Add(1)
}

// RecordInputDropped records an input event dropped because the loop was
// behind.
func (m *Metrics) RecordInputDropped() {
	m.inputDropped.Add(1)
}

// RecordCommands records n dispatched commands.
func (m *Metrics) RecordCommands(n int) {
	m.commandCount.Add(uint64(max(n, 0)))
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Uptime:         time.Since(m.startTime),
		FrameCount:     m.frameCount.Load(),
		MaxFrameTimeNs: m.frameMaxNs.Load(),
		LastFrameNs:    m.lastFrameNs.Load(),
		PaintCount:     m.paintCount.Load(),
		TilesDrawn:     m.tilesDrawn.Load(),
		RunsDrawn:      m.runsDrawn.Load(),
		InputCount:     m.inputCount.Load(),
		InputDropped:   m.inputDropped.Load(),
		CommandCount:   m.commandCount.Load(),
	}
	if s.FrameCount > 0 {
		s.AvgFrameTimeNs = m.frameTotalNs.Load() / int64(s.FrameCount)
	}
	if s.PaintCount > 0 {
		s.AvgPaintNs = m.paintTotalNs.Load() / int64(s.PaintCount)
	}
	if minNs := m.frameMinNs.Load(); minNs != math.MaxInt64 {
		s.MinFrameTimeNs = minNs
	}
	return s
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.frameCount.Store(0)
	m.frameTotalNs.Store(0)
	m.frameMinNs.Store(math.MaxInt64)
	m.frameMaxNs.Store(0)
	m.lastFrameNs.Store(0)
	m.paintCount.Store(0)
	m.paintTotalNs.Store(0)
	m.tilesDrawn.Store(0)
	m.runsDrawn.Store(0)
	m.inputCount.Store(0)
	m.inputDropped.Store(0)
	m.commandCount.Store(0)
	m.startTime = time.Now()
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime         time.Duration
	FrameCount     uint64
	AvgFrameTimeNs int64
	MinFrameTimeNs int64
	MaxFrameTimeNs int64
	LastFrameNs    int64
	PaintCount     uint64
	AvgPaintNs     int64
	TilesDrawn     uint64
	RunsDrawn      uint64
	InputCount     uint64
	InputDropped   uint64
	CommandCount   uint64
}

// AvgFPS returns the average frames per second.
func (s MetricsSnapshot) AvgFPS() float64 {
	if s.AvgFrameTimeNs == 0 {
		return 0
	}
	return 1e9 / float64(s.AvgFrameTimeNs)
}

// RunsPerPaint returns the average number of runs redrawn by a paint.
func (s MetricsSnapshot) RunsPerPaint() float64 {
	if s.PaintCount == 0 {
		return 0
	}
	return float64(s.RunsDrawn) / float64(s.PaintCount)
}
