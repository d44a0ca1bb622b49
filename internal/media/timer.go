package media

import (
	"sync"
	"time"
)

// Timer calls a function periodically on its own goroutine until stopped.
type Timer struct {
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

// StartTimer starts calling fn every interval.
func StartTimer(interval time.Duration, fn func()) *Timer {
	t := &Timer{interval: interval, stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

// Interval returns the period.
func (t *Timer) Interval() time.Duration {
	return t.interval
}

// Stop ends the timer. It is safe to call more than once.
func (t *Timer) Stop() {
	t.once.Do(func() { close(t.stop) })
}
