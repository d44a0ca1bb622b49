package history

import (
	"sort"
	"sync"
	"time"
)

// VisitFlags describe a visit.
type VisitFlags uint8

const (
	// VisitTransient marks a visit recorded by an automatic redirect.
	VisitTransient VisitFlags = 1 << iota
)

// Visit is a visited URL.
type Visit struct {
	URL   string
	When  time.Time
	Flags VisitFlags
}

// Visited is the set of URLs visited in any tab.
type Visited struct {
	mu     sync.RWMutex
	visits map[string]Visit
}

// NewVisited creates an empty set.
func NewVisited() *Visited {
	return &Visited{visits: make(map[string]Visit)}
}

// Visit records url. A transient visit never downgrades a regular one.
func (v *Visited) Visit(url string, when time.Time, flags VisitFlags) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if old, ok := v.visits[url]; ok && old.Flags&VisitTransient == 0 {
		flags &^= VisitTransient
	}
	v.visits[url] = Visit{URL: url, When: when, Flags: flags}
}

// Lookup returns the visit of url.
func (v *Visited) Lookup(url string) (Visit, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	vis, ok := v.visits[url]
	return vis, ok
}

// Contains returns true if url was visited.
func (v *Visited) Contains(url string) bool {
	_, ok := v.Lookup(url)
	return ok
}

// Len returns the number of visited URLs.
func (v *Visited) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.visits)
}

// Recent returns up to n visits, newest first. Transient visits are left
// out. A negative n returns all of them.
func (v *Visited) Recent(n int) []Visit {
	v.mu.RLock()
	out := make([]Visit, 0, len(v.visits))
	for _, vis := range v.visits {
		if vis.Flags&VisitTransient == 0 {
			out = append(out, vis)
		}
	}
	v.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].When.Equal(out[j].When) {
			return out[i].When.After(out[j].When)
		}
		return out[i].URL < out[j].URL
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
