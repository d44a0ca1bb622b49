// Package dirty tracks layout runs that must be redrawn on the next paint
// pass without re-rendering whole tiles.
package dirty

import (
	"maps"
	"sort"

	"github.com/dshills/gemview/internal/layout"
)

// Reason records why a run was marked.
type Reason uint8

const (
	// ReasonHover indicates the pointer moved onto or off a link.
	ReasonHover Reason = iota

	// ReasonSelection indicates the text selection changed.
	ReasonSelection

	// ReasonFound indicates find-in-page marks changed.
	ReasonFound

	// ReasonMedia indicates a media player or download changed state.
	ReasonMedia

	// ReasonWideScroll indicates a preformatted block scrolled sideways.
	ReasonWideScroll
)

// String returns the string representation of the reason.
func (r Reason) String() string {
	switch r {
	case ReasonHover:
		return "hover"
	case ReasonSelection:
		return "selection"
	case ReasonFound:
		return "found"
	case ReasonMedia:
		return "media"
	case ReasonWideScroll:
		return "widescroll"
	default:
		return "unknown"
	}
}

// RunSet is an unordered set of runs pending redraw. It belongs to one
// view and is drained by each paint pass; it is not safe for concurrent use.
type RunSet struct {
	keys map[layout.RunKey]struct{}

	// Stats
	inserted uint64
	drained  uint64
	byReason map[Reason]uint64
}

// NewRunSet creates an empty set.
func NewRunSet() *RunSet {
	return &RunSet{
		keys:     make(map[layout.RunKey]struct{}),
		byReason: make(map[Reason]uint64),
	}
}

// Insert adds a run. Adding a run twice keeps one entry, counted under the
// first reason. It returns true if the run was not already present.
func (s *RunSet) Insert(key layout.RunKey, reason Reason) bool {
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	s.inserted++
	s.byReason[reason]++
	return true
}

// InsertAll adds every key.
func (s *RunSet) InsertAll(keys []layout.RunKey, reason Reason) {
	for _, k := range keys {
		s.Insert(k, reason)
	}
}

// Remove drops a run.
func (s *RunSet) Remove(key layout.RunKey) {
	delete(s.keys, key)
}

// Contains returns true if the run is pending.
func (s *RunSet) Contains(key layout.RunKey) bool {
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of pending runs.
func (s *RunSet) Len() int {
	return len(s.keys)
}

// IsEmpty returns true if nothing is pending.
func (s *RunSet) IsEmpty() bool {
	return len(s.keys) == 0
}

// Keys returns the pending keys sorted by generation and index.
func (s *RunSet) Keys() []layout.RunKey {
	out := make([]layout.RunKey, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gen != out[j].Gen {
			return out[i].Gen < out[j].Gen
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// Drop removes keys that belong to a layout generation other than gen.
// It returns the number of keys removed.
func (s *RunSet) Drop(gen uint32) int {
	n := 0
	for k := range s.keys {
		if k.Gen != gen {
			delete(s.keys, k)
			n++
		}
	}
	return n
}

// Clear empties the set.
func (s *RunSet) Clear() {
	s.drained += uint64(len(s.keys))
	clear(s.keys)
}

// Stats contains run set statistics.
type Stats struct {
	Pending  int
	Inserted uint64
	Drained  uint64
	ByReason map[Reason]uint64
}

// Stats returns insertion and drain counters.
func (s *RunSet) Stats() Stats {
	return Stats{
		Pending:  len(s.keys),
		Inserted: s.inserted,
		Drained:  s.drained,
		ByReason: maps.Clone(s.byReason),
	}
}
