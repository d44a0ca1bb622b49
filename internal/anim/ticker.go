package anim

// TickState reports whether the ticker has work for the next frame.
type TickState int

// Ticker states.
const (
	TickIdle TickState = iota
	TickTicking
)

// String returns a human-readable state name.
func (s TickState) String() string {
	switch s {
	case TickIdle:
		return "idle"
	case TickTicking:
		return "ticking"
	default:
		return "unknown"
	}
}

// TickFunc is called once per frame while registered.
type TickFunc func()

// Ticker schedules callbacks for the next frame. A callback runs once per
// Add; to keep running it must add itself again, which it should do only
// while its animation is unfinished. Ticker is meant to be driven from the
// UI loop and is not safe for concurrent use.
type Ticker struct {
	pending map[any]TickFunc
	order   []any
}

// NewTicker creates an idle ticker.
func NewTicker() *Ticker {
	return &Ticker{pending: make(map[any]TickFunc)}
}

// Add registers fn under key for the next frame. Adding the same key
// twice before the frame runs keeps a single entry.
func (t *Ticker) Add(key any, fn TickFunc) {
	if _, ok := t.pending[key]; !ok {
		t.order = append(t.order, key)
	}
	t.pending[key] = fn
}

// Remove unregisters key.
func (t *Ticker) Remove(key any) {
	if _, ok := t.pending[key]; !ok {
		return
	}
	delete(t.pending, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Has returns true if key is scheduled for the next frame.
func (t *Ticker) Has(key any) bool {
	_, ok := t.pending[key]
	return ok
}

// State returns TickTicking if any callback is pending.
func (t *Ticker) State() TickState {
	if len(t.pending) == 0 {
		return TickIdle
	}
	return TickTicking
}

// Run executes the callbacks pending at the start of the frame.
// Callbacks added during Run are deferred to the following frame.
// It returns the number of callbacks executed.
func (t *Ticker) Run() int {
	if len(t.pending) == 0 {
		return 0
	}
	pending, order := t.pending, t.order
	t.pending = make(map[any]TickFunc)
	t.order = nil
	for _, key := range order {
		pending[key]()
	}
	return len(order)
}
