// Package anim provides time-interpolated scalar values and the per-frame
// ticker that drives repaints while they are in motion.
package anim

import (
	"math"
	"time"
)

// Flags selects the easing curve applied to an animated value.
type Flags uint8

// Easing flags.
const (
	Linear  Flags = 0
	EaseIn  Flags = 1 << iota // accelerate from rest
	EaseOut                   // decelerate into target
	Soft                      // apply the easing function twice

	EaseBoth = EaseIn | EaseOut
)

// Has returns true if all bits of f are set.
func (fl Flags) Has(f Flags) bool {
	return fl&f == f
}

// epsilon is the smallest target change that restarts an animation.
const epsilon = 1e-5

// Value is a scalar that moves from one value to another over a time window.
// The zero Value is a flat 0 that has already settled.
type Value struct {
	clock Clock
	from  float64
	to    float64
	when  time.Time // start of the window
	due   time.Time // end of the window
	flags Flags
}

// NewValue returns a flat, settled value using the given clock.
func NewValue(clock Clock, v float64) *Value {
	a := &Value{clock: clock}
	a.Init(v)
	return a
}

// SetClock replaces the time source.
func (a *Value) SetClock(clock Clock) {
	a.clock = clock
}

func (a *Value) now() time.Time {
	if a.clock == nil {
		return time.Now()
	}
	return a.clock.Now()
}

// Init makes the value flat and immediately settled.
func (a *Value) Init(v float64) {
	now := a.now()
	a.from = v
	a.to = v
	a.when = now
	a.due = now
	a.flags = Linear
}

// SetFlags sets the easing flags used by the current and later windows.
func (a *Value) SetFlags(flags Flags) {
	a.flags = flags
}

// Flags returns the current easing flags.
func (a *Value) Flags() Flags {
	return a.flags
}

// SetValue retargets the value. A zero span snaps to the target.
// Otherwise the new window starts from the current interpolated value
// and moves linearly.
func (a *Value) SetValue(to float64, span time.Duration) {
	now := a.now()
	if span <= 0 {
		a.from = to
		a.to = to
		a.when = now
		a.due = now
		a.flags = Linear
		return
	}
	if math.Abs(to-a.to) > epsilon {
		a.from = a.at(now)
		a.to = to
		a.when = now
		a.due = now.Add(span)
		a.flags = Linear
	}
}

// SetValueEased retargets the value with easing. A settled value starts
// a fresh ease-in/ease-out window from its old target; a value still in
// flight continues from its current position with ease-out only.
func (a *Value) SetValueEased(to float64, span time.Duration) {
	if math.Abs(to-a.to) <= epsilon {
		a.to = to
		return
	}
	now := a.now()
	if a.finishedAt(now) {
		a.from = a.to
		a.flags = EaseBoth
	} else {
		a.from = a.at(now)
		a.flags = EaseOut
	}
	a.to = to
	a.when = now
	a.due = now.Add(span)
}

// Stop freezes the value at its current position.
func (a *Value) Stop() {
	now := a.now()
	v := a.at(now)
	a.from = v
	a.to = v
	a.when = now
	a.due = now
}

// Value returns the interpolated value at the current clock time.
func (a *Value) Value() float64 {
	return a.at(a.now())
}

// At returns the interpolated value at the given time.
func (a *Value) At(now time.Time) float64 {
	return a.at(now)
}

// Target returns the value the animation is moving towards.
func (a *Value) Target() float64 {
	return a.to
}

// Start returns the value the current window started from.
func (a *Value) Start() float64 {
	return a.from
}

// IsFinished returns true if the value has settled.
func (a *Value) IsFinished() bool {
	return a.finishedAt(a.now())
}

// FinishedAt returns true if the value has settled at the given time.
func (a *Value) FinishedAt(now time.Time) bool {
	return a.finishedAt(now)
}

// Window returns the start and due times of the current window.
func (a *Value) Window() (start, due time.Time) {
	return a.when, a.due
}

func (a *Value) finishedAt(now time.Time) bool {
	return a.from == a.to || !now.Before(a.due)
}

func (a *Value) at(now time.Time) float64 {
	if !now.Before(a.due) {
		return a.to
	}
	if !now.After(a.when) {
		return a.from
	}
	t := float64(now.Sub(a.when)) / float64(a.due.Sub(a.when))
	t = ease(a.flags, t)
	return a.from*(1-t) + a.to*t
}

func easeIn(t float64) float64 {
	return t * t
}

func easeOut(t float64) float64 {
	return t * (2 - t)
}

func easeBoth(t float64) float64 {
	if t < 0.5 {
		return easeIn(t*2) * 0.5
	}
	return 0.5 + easeOut((t-0.5)*2)*0.5
}

// ease maps linear progress t in [0,1] through the curve selected by flags.
func ease(flags Flags, t float64) float64 {
	var fn func(float64) float64
	switch {
	case flags.Has(EaseBoth):
		fn = easeBoth
	case flags.Has(EaseIn):
		fn = easeIn
	case flags.Has(EaseOut):
		fn = easeOut
	default:
		return t
	}
	t = fn(t)
	if flags.Has(Soft) {
		t = fn(t)
	}
	return t
}
