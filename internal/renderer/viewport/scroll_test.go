package viewport

import (
	"testing"
	"time"

	"github.com/dshills/gemview/internal/anim"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestScrollerClamps(t *testing.T) {
	s := NewScroller(anim.NewManualClock(epoch))
	s.SetMax(40)

	deltas := []int{-10, 15, 100, -3, 7, -200, 41, 0}
	for _, d := range deltas {
		s.ScrollBy(d, 0)
		if tgt := s.Target(); tgt < 0 || tgt > 40 {
			t.Fatalf("target %d out of [0,40] after delta %d", tgt, d)
		}
	}
}

func TestScrollerEmptyDocument(t *testing.T) {
	s := NewScroller(anim.NewManualClock(epoch))
	s.SetMax(-20)
	s.ScrollBy(50, 0)
	if s.Target() != 0 {
		t.Errorf("expected 0 when nothing to scroll, got %d", s.Target())
	}
}

func TestScrollerAnimates(t *testing.T) {
	clock := anim.NewManualClock(epoch)
	s := NewScroller(clock)
	s.SetMax(100)

	if !s.ScrollBy(30, 600*time.Millisecond) {
		t.Fatal("expected animation to start")
	}
	if s.Pos() != 0 || s.Target() != 30 {
		t.Errorf("expected pos 0 target 30, got %d %d", s.Pos(), s.Target())
	}
	clock.Advance(300 * time.Millisecond)
	if p := s.Pos(); p <= 0 || p >= 30 {
		t.Errorf("expected in-between position, got %d", p)
	}
	clock.Advance(300 * time.Millisecond)
	if !s.IsFinished() || s.Pos() != 30 {
		t.Errorf("expected settled at 30, got %d", s.Pos())
	}
}

func TestScrollerInstantWhenNotSmooth(t *testing.T) {
	s := NewScroller(anim.NewManualClock(epoch))
	s.SetMax(100)
	s.SetSmooth(false)

	if s.ScrollBy(10, time.Second) {
		t.Error("expected no animation")
	}
	if s.Pos() != 10 {
		t.Errorf("expected 10, got %d", s.Pos())
	}
}

func TestScrollerScrollToAndNorm(t *testing.T) {
	s := NewScroller(anim.NewManualClock(epoch))
	s.SetMax(50)

	s.ScrollTo(80)
	if s.Pos() != 50 {
		t.Errorf("expected clamp to 50, got %d", s.Pos())
	}
	if n := s.NormPos(100); n != 0.5 {
		t.Errorf("expected 0.5, got %f", n)
	}
	s.SetNormPos(0.25, 100)
	if s.Pos() != 25 {
		t.Errorf("expected 25, got %d", s.Pos())
	}
	if s.NormPos(0) != 0 {
		t.Error("empty document has norm position 0")
	}
	s.Reset()
	if s.Pos() != 0 {
		t.Errorf("expected 0 after reset, got %d", s.Pos())
	}
}
