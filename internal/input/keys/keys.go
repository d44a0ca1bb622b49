// Package keys maps key chords to commands.
//
// Every binding has a stable numeric ID, a label shown in the bindings
// list, the command it posts and the chord that triggers it. The user may
// rebind a chord by ID; changed chords are stored in a TOML file.
//
//	[bindings]
//	35 = "Ctrl+R"
//	60 = "/"
//
// Bindings without a label are built-in duplicates that cannot be changed.
package keys

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/gemview/internal/event"
	"github.com/dshills/gemview/internal/renderer/backend"
)

// ErrUnknownBinding is returned for an ID that is not in the table.
var ErrUnknownBinding = errors.New("unknown binding")

// ErrFixedBinding is returned when a built-in binding is changed.
var ErrFixedBinding = errors.New("binding cannot be changed")

// Flags modify how a binding posts its command.
type Flags uint8

const (
	// FlagRepeat adds "repeat:1" to the command of a held key.
	FlagRepeat Flags = 1 << iota
)

// Binding maps a chord to a command.
type Binding struct {
	ID      int
	Label   string
	Command string
	Chord   Chord
	Flags   Flags
}

// IsFixed returns true for built-in bindings.
func (b Binding) IsFixed() bool {
	return b.Label == ""
}

// Event returns the command of the binding addressed to target.
func (b Binding) Event(target string, repeat bool) event.Command {
	cmd := event.ParseCommand(target, b.Command)
	if repeat && b.Flags&FlagRepeat != 0 {
		if cmd.Args != "" {
			cmd.Args += " "
		}
		cmd.Args += "repeat:1"
	}
	return cmd
}

// Defaults returns the default binding table.
func Defaults() []Binding {
	ctrl := backend.ModCtrl
	alt := backend.ModAlt
	return []Binding{
		{ID: 1, Label: "Jump to top", Command: "scroll.top", Chord: Special(backend.KeyHome, 0)},
		{ID: 2, Label: "Jump to bottom", Command: "scroll.bottom", Chord: Special(backend.KeyEnd, 0)},
		{ID: 10, Label: "Scroll up", Command: "scroll.step arg:-1", Chord: Special(backend.KeyUp, 0), Flags: FlagRepeat},
		{ID: 11, Label: "Scroll down", Command: "scroll.step arg:1", Chord: Special(backend.KeyDown, 0), Flags: FlagRepeat},
		{ID: 20, Label: "Scroll up half a page", Command: "scroll.page arg:-1", Chord: Special(backend.KeyPageUp, 0), Flags: FlagRepeat},
		{ID: 21, Label: "Scroll down half a page", Command: "scroll.page arg:1", Chord: Special(backend.KeyPageDown, 0), Flags: FlagRepeat},
		{ID: 22, Label: "Scroll up a page", Command: "scroll.fullpage arg:-1", Chord: Special(backend.KeyPageUp, ctrl), Flags: FlagRepeat},
		{ID: 23, Label: "Scroll down a page", Command: "scroll.fullpage arg:1", Chord: Special(backend.KeyPageDown, ctrl), Flags: FlagRepeat},
		{ID: 30, Label: "Go back", Command: "navigate.back", Chord: Special(backend.KeyLeft, alt)},
		{ID: 31, Label: "Go forward", Command: "navigate.forward", Chord: Special(backend.KeyRight, alt)},
		{ID: 32, Label: "Go to parent directory", Command: "navigate.parent", Chord: Special(backend.KeyUp, alt)},
		{ID: 33, Label: "Go to site root", Command: "navigate.root", Chord: Special(backend.KeyUp, alt|backend.ModShift)},
		{ID: 35, Label: "Reload page", Command: "document.reload", Chord: Rune('r', ctrl)},
		{ID: 36, Label: "Stop loading", Command: "document.stop", Chord: Special(backend.KeyEscape, 0)},
		{ID: 40, Label: "Go to URL", Command: "open.prompt", Chord: Rune('l', ctrl)},
		{ID: 42, Label: "Open link via home row keys", Command: "document.linkkeys arg:1", Chord: Rune('f', 0)},
		{ID: 50, Label: "Save page to downloads", Command: "document.save", Chord: Rune('s', ctrl)},
		{ID: 60, Label: "Find text on page", Command: "find.open", Chord: Rune('f', ctrl)},
		{ID: 70, Label: "Zoom in", Command: "zoom.delta arg:10", Chord: Rune('=', ctrl)},
		{ID: 71, Label: "Zoom out", Command: "zoom.delta arg:-10", Chord: Rune('-', ctrl)},
		{ID: 72, Label: "Reset zoom", Command: "zoom.set arg:100", Chord: Rune('0', ctrl)},
		{ID: 76, Label: "New tab", Command: "tab.new", Chord: Rune('t', ctrl)},
		{ID: 77, Label: "Close tab", Command: "tab.close", Chord: Rune('w', ctrl)},
		{ID: 78, Label: "Duplicate tab", Command: "tab.duplicate", Chord: Rune('d', alt)},
		{ID: 80, Label: "Previous tab", Command: "tab.prev", Chord: Rune('[', alt)},
		{ID: 81, Label: "Next tab", Command: "tab.next", Chord: Rune(']', alt)},
		{ID: 90, Label: "Toggle outline sidebar", Command: "sidebar.toggle mode:outline", Chord: Rune('1', alt)},
		{ID: 91, Label: "Toggle history sidebar", Command: "sidebar.toggle mode:history", Chord: Rune('2', alt)},
		{ID: 100, Label: "Toggle show URL on hover", Command: "prefs.hoverlink.toggle", Chord: Rune('/', alt)},
		{ID: 110, Label: "Quit", Command: "app.quit", Chord: Rune('q', ctrl)},
		// Built-in duplicates.
		{ID: 1001, Command: "scroll.page arg:1", Chord: Rune(' ', 0), Flags: FlagRepeat},
		{ID: 1004, Command: "document.reload", Chord: Special(backend.KeyF5, 0)},
	}
}

// Table is a set of bindings with chord lookup. It is safe for concurrent
// use.
type Table struct {
	mu       sync.RWMutex
	bindings []Binding
	defaults map[int]Chord
	lookup   map[Chord]int // index into bindings
}

// NewTable creates a table holding the default bindings.
func NewTable() *Table {
	t := &Table{
		bindings: Defaults(),
		defaults: make(map[int]Chord),
	}
	for _, b := range t.bindings {
		t.defaults[b.ID] = b.Chord
	}
	t.updateLookup()
	return t
}

// updateLookup rebuilds the chord index. When two bindings share a chord
// the one listed first wins.
func (t *Table) updateLookup() {
	t.lookup = make(map[Chord]int, len(t.bindings))
	for i, b := range t.bindings {
		if b.Chord.IsZero() {
			continue
		}
		if _, ok := t.lookup[b.Chord]; !ok {
			t.lookup[b.Chord] = i
		}
	}
}

func (t *Table) index(id int) int {
	for i, b := range t.bindings {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Lookup returns the binding triggered by c.
func (t *Table) Lookup(c Chord) (Binding, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.lookup[c.normalized()]
	if !ok {
		return Binding{}, false
	}
	return t.bindings[i], true
}

// Find returns the binding with the given ID.
func (t *Table) Find(id int) (Binding, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i := t.index(id)
	if i < 0 {
		return Binding{}, false
	}
	return t.bindings[i], true
}

// FindCommand returns the first binding that posts command.
func (t *Table) FindCommand(command string) (Binding, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, b := range t.bindings {
		if b.Command == command {
			return b, true
		}
	}
	return Binding{}, false
}

// Bind changes the chord of binding id. The zero chord unbinds it.
func (t *Table) Bind(id int, c Chord) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownBinding, id)
	}
	if t.bindings[i].IsFixed() {
		return fmt.Errorf("%w: %d", ErrFixedBinding, id)
	}
	t.bindings[i].Chord = c.normalized()
	t.updateLookup()
	return nil
}

// Reset restores the default chord of binding id.
func (t *Table) Reset(id int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownBinding, id)
	}
	t.bindings[i].Chord = t.defaults[id]
	t.updateLookup()
	return nil
}

// ResetAll restores every default chord.
func (t *Table) ResetAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.bindings {
		t.bindings[i].Chord = t.defaults[t.bindings[i].ID]
	}
	t.updateLookup()
}

// List returns the changeable bindings ordered by ID.
func (t *Table) List() []Binding {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Binding, 0, len(t.bindings))
	for _, b := range t.bindings {
		if !b.IsFixed() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// changed returns the bindings whose chord differs from the default.
func (t *Table) changed() []Binding {
	var out []Binding
	for _, b := range t.bindings {
		if b.Chord != t.defaults[b.ID] {
			out = append(out, b)
		}
	}
	return out
}
