package viewport

import (
	"math"
	"time"

	"github.com/dshills/gemview/internal/anim"
)

// Scroller owns the animated vertical scroll position of a view.
type Scroller struct {
	y      anim.Value
	max    int
	smooth bool
}

// NewScroller creates a scroller at position 0.
func NewScroller(clock anim.Clock) *Scroller {
	s := &Scroller{smooth: true}
	s.y.SetClock(clock)
	return s
}

// SetSmooth enables or disables animated scrolling.
func (s *Scroller) SetSmooth(smooth bool) {
	s.smooth = smooth
}

// SetMax updates the scroll limit. The position is not clamped until the
// next scroll.
func (s *Scroller) SetMax(max int) {
	s.max = max
}

// Max returns the scroll limit.
func (s *Scroller) Max() int {
	return s.max
}

// Pos returns the current, possibly animating, position.
func (s *Scroller) Pos() int {
	return int(math.Round(s.y.Value()))
}

// Target returns the position the scroller is moving to.
func (s *Scroller) Target() int {
	return int(math.Round(s.y.Target()))
}

// IsFinished returns true if no scroll animation is in flight.
func (s *Scroller) IsFinished() bool {
	return s.y.IsFinished()
}

// ScrollBy moves the target by offset rows, clamped to the scroll range.
// A positive duration animates with easing when smooth scrolling is on.
// It returns true if an animation was started.
func (s *Scroller) ScrollBy(offset int, duration time.Duration) bool {
	if !s.smooth {
		duration = 0
	}
	dest := ClampScroll(s.Target()+offset, s.max)
	if duration > 0 {
		s.y.SetValueEased(float64(dest), duration)
		return true
	}
	s.y.SetValue(float64(dest), 0)
	return false
}

// ScrollTo jumps to y and clamps it.
func (s *Scroller) ScrollTo(y int) {
	s.y.Init(float64(y))
	s.ScrollBy(0, 0)
}

// Clamp re-applies the scroll limit to the current target without
// animating.
func (s *Scroller) Clamp() {
	s.ScrollBy(0, 0)
}

// Reset moves to the top immediately.
func (s *Scroller) Reset() {
	s.y.Init(0)
}

// NormPos returns the position as a fraction of the document height.
func (s *Scroller) NormPos(docHeight int) float64 {
	if docHeight == 0 {
		return 0
	}
	return s.y.Value() / float64(docHeight)
}

// SetNormPos restores a position saved with NormPos.
func (s *Scroller) SetNormPos(norm float64, docHeight int) {
	s.ScrollTo(int(norm * float64(docHeight)))
}
