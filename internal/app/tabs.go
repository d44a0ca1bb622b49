package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/gemview/internal/document"
	"github.com/dshills/gemview/internal/gemini"
)

// Tab is one open view with the bookkeeping the application keeps for it.
type Tab struct {
	// ID is the command target of the view.
	ID string

	// View shows the tab's document.
	View *document.View

	// loadedAt is when the current document finished loading; automatic
	// reloads count from it.
	loadedAt time.Time
}

// Title returns the label of the tab: the first heading, the host or the
// URL.
func (t *Tab) Title() string {
	if hs := t.View.Document().Headings(); len(hs) > 0 && hs[0].Text != "" {
		return hs[0].Text
	}
	if host := gemini.Host(t.View.URL()); host != "" {
		return host
	}
	if u := t.View.URL(); u != "" {
		return u
	}
	return "New Tab"
}

// reloadDue returns true when the automatic reload interval has passed.
func (t *Tab) reloadDue(now time.Time) bool {
	d := t.View.ReloadInterval().Duration()
	if d == 0 || t.loadedAt.IsZero() || t.View.IsLoading() {
		return false
	}
	return !now.Before(t.loadedAt.Add(d))
}

// TabManager keeps the open tabs in display order.
type TabManager struct {
	mu     sync.RWMutex
	tabs   []*Tab
	active int
}

// NewTabManager creates an empty tab manager.
func NewTabManager() *TabManager {
	return &TabManager{active: -1}
}

// newTabID returns a unique command target.
func newTabID() string {
	return uuid.NewString()
}

// Add inserts a tab after the active one and activates it.
func (tm *TabManager) Add(tab *Tab) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	at := tm.active + 1
	tm.tabs = append(tm.tabs, nil)
	copy(tm.tabs[at+1:], tm.tabs[at:])
	tm.tabs[at] = tab
	tm.active = at
}

// Remove removes a tab by ID. The tab to its left becomes active when the
// active tab is removed.
func (tm *TabManager) Remove(id string) (*Tab, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	i := tm.index(id)
	if i < 0 {
		return nil, ErrTabNotFound
	}
	tab := tm.tabs[i]
	tm.tabs = append(tm.tabs[:i], tm.tabs[i+1:]...)

	switch {
	case len(tm.tabs) == 0:
		tm.active = -1
	case i < tm.active:
		tm.active--
	case i == tm.active:
		tm.active = max(i-1, 0)
	}
	return tab, nil
}

func (tm *TabManager) index(id string) int {
	for i, t := range tm.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Active returns the active tab, or nil.
func (tm *TabManager) Active() *Tab {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	if tm.active < 0 {
		return nil
	}
	return tm.tabs[tm.active]
}

// ActiveIndex returns the position of the active tab, or -1.
func (tm *TabManager) ActiveIndex() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.active
}

// SetActive activates the tab with the given ID.
func (tm *TabManager) SetActive(id string) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	i := tm.index(id)
	if i < 0 {
		return ErrTabNotFound
	}
	tm.active = i
	return nil
}

// Get returns a tab by ID.
func (tm *TabManager) Get(id string) (*Tab, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	i := tm.index(id)
	if i < 0 {
		return nil, false
	}
	return tm.tabs[i], true
}

// All returns the tabs in display order.
func (tm *TabManager) All() []*Tab {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return append([]*Tab(nil), tm.tabs...)
}

// Count returns the number of open tabs.
func (tm *TabManager) Count() int {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return len(tm.tabs)
}

// Next activates and returns the tab to the right, wrapping around.
func (tm *TabManager) Next() *Tab {
	return tm.step(1)
}

// Previous activates and returns the tab to the left, wrapping around.
func (tm *TabManager) Previous() *Tab {
	return tm.step(-1)
}

func (tm *TabManager) step(d int) *Tab {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	n := len(tm.tabs)
	if n == 0 {
		return nil
	}
	tm.active = ((tm.active+d)%n + n) % n
	return tm.tabs[tm.active]
}
