package viewport

import (
	"math"
	"time"

	"github.com/dshills/gemview/internal/anim"
)

// WideScroll holds the horizontal offsets of preformatted blocks. Blocks are
// identified by their 1-based preformatted ID. At most one block animates at
// a time.
type WideScroll struct {
	offsets     []int
	active      int
	interrupted int
	anim        anim.Value
}

// NewWideScroll creates an empty state.
func NewWideScroll(clock anim.Clock) *WideScroll {
	w := &WideScroll{}
	w.anim.SetClock(clock)
	return w
}

// MaxOffset returns how far a block of the given maximum run width may be
// shifted left in a document of docWidth.
func MaxOffset(m Metrics, maxRunWidth, docWidth int) int {
	return max(0, maxRunWidth-docWidth+m.MarginRows())
}

// Scroll shifts block preID by delta, clamped to [0, maxOffset]. A positive
// duration animates the shift. It returns true if the stored offset changed;
// every run of the block then needs to be redrawn, and so do the runs of the
// block reported by Interrupted.
func (w *WideScroll) Scroll(preID, delta, maxOffset int, duration time.Duration) bool {
	w.interrupted = 0
	if delta == 0 || preID <= 0 {
		return false
	}
	if len(w.offsets) < preID {
		w.offsets = append(w.offsets, make([]int, preID-len(w.offsets))...)
	}
	old := w.offsets[preID-1]
	next := min(max(old+delta, 0), max(maxOffset, 0))
	if next == old {
		return false
	}
	w.offsets[preID-1] = next
	if w.active != 0 && w.active != preID && !w.anim.IsFinished() {
		w.interrupted = w.active
	}
	if duration > 0 {
		if w.active != preID || w.anim.IsFinished() {
			w.active = preID
			w.anim.Init(float64(old))
		}
		w.anim.SetValueEased(float64(w.offsets[preID-1]), duration)
	} else {
		w.active = 0
		w.anim.Init(0)
	}
	return true
}

// Interrupted returns the block whose animation the last Scroll cut short,
// or 0. That block jumped to its stored offset.
func (w *WideScroll) Interrupted() int {
	return w.interrupted
}

// Offset returns the current shift of block preID, following the animation
// when the block is the active one.
func (w *WideScroll) Offset(preID int) int {
	if preID <= 0 {
		return 0
	}
	if w.active == preID {
		return int(math.Round(w.anim.Value()))
	}
	if preID <= len(w.offsets) {
		return w.offsets[preID-1]
	}
	return 0
}

// Stored returns the clamped target offset of block preID.
func (w *WideScroll) Stored(preID int) int {
	if preID <= 0 || preID > len(w.offsets) {
		return 0
	}
	return w.offsets[preID-1]
}

// Active returns the animating block, or 0.
func (w *WideScroll) Active() int {
	return w.active
}

// IsFinished returns true if no block is in motion.
func (w *WideScroll) IsFinished() bool {
	return w.anim.IsFinished()
}

// Settle forgets the active block once its animation has finished.
func (w *WideScroll) Settle() {
	if w.active != 0 && w.anim.IsFinished() {
		w.active = 0
	}
}

// Shifted returns the IDs of blocks with a nonzero offset.
func (w *WideScroll) Shifted() []int {
	var ids []int
	for i := range w.offsets {
		if w.Offset(i+1) != 0 {
			ids = append(ids, i+1)
		}
	}
	return ids
}

// Reset returns every block to offset 0.
func (w *WideScroll) Reset() {
	w.offsets = w.offsets[:0]
	w.active = 0
	w.interrupted = 0
	w.anim.Init(0)
}
