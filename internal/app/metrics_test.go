package app

import (
	"sync"
	"testing"
	"time"
)

func TestNewMetrics(t *testing.T) {
	s := NewMetrics().Snapshot()
	if s.FrameCount != 0 {
		t.Errorf("expected 0 frame count, got %d", s.FrameCount)
	}
	if s.MinFrameTimeNs != 0 {
		t.Errorf("expected 0 min frame time, got %d", s.MinFrameTimeNs)
	}
	if s.AvgFPS() != 0 || s.RunsPerPaint() != 0 {
		t.Error("empty snapshot should report zero rates")
	}
}

func TestMetrics_RecordFrame(t *testing.T) {
	m := NewMetrics()

	m.RecordFrame(10 * time.Millisecond)
	m.RecordFrame(20 * time.Millisecond)
	m.RecordFrame(6 * time.Millisecond)

	s := m.Snapshot()
	if s.FrameCount != 3 {
		t.Errorf("expected 3 frames, got %d", s.FrameCount)
	}
	if s.MinFrameTimeNs != int64(6*time.Millisecond) {
		t.Errorf("expected min 6ms, got %d ns", s.MinFrameTimeNs)
	}
	if s.MaxFrameTimeNs != int64(20*time.Millisecond) {
		t.Errorf("expected max 20ms, got %d ns", s.MaxFrameTimeNs)
	}
	if s.LastFrameNs != int64(6*time.Millisecond) {
		t.Errorf("expected last 6ms, got %d ns", s.LastFrameNs)
	}
	if s.AvgFrameTimeNs != int64(12*time.Millisecond) {
		t.Errorf("expected avg 12ms, got %d ns", s.AvgFrameTimeNs)
	}
}

func TestMetrics_RecordPaint(t *testing.T) {
	m := NewMetrics()

	m.RecordPaint(2*time.Millisecond, 2, 40)
	m.RecordPaint(4*time.Millisecond, 0, 10)
	m.RecordPaint(0, -1, 0)

	s := m.Snapshot()
	if s.PaintCount != 3 || s.TilesDrawn != 2 || s.RunsDrawn != 50 {
		t.Errorf("unexpected paint counters: %+v", s)
	}
	if s.AvgPaintNs != int64(2*time.Millisecond) {
		t.Errorf("expected avg 2ms, got %d", s.AvgPaintNs)
	}
	if got := s.RunsPerPaint(); got < 16.6 || got > 16.7 {
		t.Errorf("expected ~16.67 runs per paint, got %f", got)
	}
}

func TestMetrics_InputAndCommands(t *testing.T) {
	m := NewMetrics()
	m.RecordInput()
	m.RecordInput()
	m.RecordInputDropped()
	m.RecordCommands(5)

	s := m.Snapshot()
	if s.InputCount != 2 || s.InputDropped != 1 || s.CommandCount != 5 {
		t.Errorf("unexpected counters: %+v", s)
	}
}

func TestMetrics_Reset(t *testing.T) {
	m := NewMetrics()
	m.RecordFrame(10 * time.Millisecond)
	m.RecordPaint(time.Millisecond, 1, 1)
	m.RecordInput()

	m.Reset()

	s := m.Snapshot()
	if s.FrameCount != 0 || s.PaintCount != 0 || s.InputCount != 0 || s.MinFrameTimeNs != 0 {
		t.Errorf("expected cleared metrics, got %+v", s)
	}
}

func TestMetricsSnapshot_AvgFPS(t *testing.T) {
	tests := []struct {
		name     string
		avgNs    int64
		expected float64
	}{
		{"60fps", int64(time.Second / 60), 60},
		{"30fps", int64(time.Second / 30), 30},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MetricsSnapshot{AvgFrameTimeNs: tt.avgNs}.AvgFPS()
			if got < tt.expected-0.1 || got > tt.expected+0.1 {
				t.Errorf("expected %.1f, got %.1f", tt.expected, got)
			}
		})
	}
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordFrame(time.Duration(j+1) * time.Microsecond)
				m.RecordPaint(time.Microsecond, 1, 1)
			}
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	if s.FrameCount != 800 || s.PaintCount != 800 {
		t.Errorf("expected 800 frames and paints, got %d and %d", s.FrameCount, s.PaintCount)
	}
	if s.MinFrameTimeNs != int64(time.Microsecond) || s.MaxFrameTimeNs != int64(100*time.Microsecond) {
		t.Errorf("unexpected min/max: %d/%d", s.MinFrameTimeNs, s.MaxFrameTimeNs)
	}
}

func BenchmarkMetrics_RecordFrame(b *testing.B) {
	m := NewMetrics()
	duration := 16 * time.Millisecond

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.RecordFrame(duration)
	}
}
