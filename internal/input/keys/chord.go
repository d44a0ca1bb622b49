package keys

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dshills/gemview/internal/renderer/backend"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Chord is a key with its modifiers.
type Chord struct {
	Key  backend.Key
	Rune rune
	Mods backend.ModMask
}

// Rune returns the chord of character r with mods.
func Rune(r rune, mods backend.ModMask) Chord {
	return Chord{Key: backend.KeyRune, Rune: r, Mods: mods}.normalized()
}

// Special returns the chord of non-character key k with mods.
func Special(k backend.Key, mods backend.ModMask) Chord {
	return Chord{Key: k, Mods: mods}
}

// FromEvent returns the chord of a key event.
func FromEvent(ev backend.Event) Chord {
	if ev.Key == backend.KeyRune {
		return Rune(ev.Rune, ev.Mod)
	}
	return Special(ev.Key, ev.Mod)
}

// normalized drops Shift from character chords, since it is part of the
// character, and lowercases control characters.
func (c Chord) normalized() Chord {
	if c.Key != backend.KeyRune {
		return c
	}
	c.Mods &^= backend.ModShift
	if c.Mods.Has(backend.ModCtrl) {
		c.Rune = unicode.ToLower(c.Rune)
	}
	return c
}

// IsZero returns true for the unbound chord.
func (c Chord) IsZero() bool {
	return c.Key == backend.KeyNone
}

var keyNames = map[backend.Key]string{
	backend.KeyEscape:    "Esc",
	backend.KeyEnter:     "Enter",
	backend.KeyTab:       "Tab",
	backend.KeyBackspace: "Backspace",
	backend.KeyHome:      "Home",
	backend.KeyEnd:       "End",
	backend.KeyPageUp:    "PgUp",
	backend.KeyPageDown:  "PgDn",
	backend.KeyUp:        "Up",
	backend.KeyDown:      "Down",
	backend.KeyLeft:      "Left",
	backend.KeyRight:     "Right",
	backend.KeyF5:        "F5",
	backend.KeyF11:       "F11",
}

// keyAliases maps lowercase names to keys.
var keyAliases = map[string]backend.Key{
	"esc":       backend.KeyEscape,
	"escape":    backend.KeyEscape,
	"enter":     backend.KeyEnter,
	"return":    backend.KeyEnter,
	"cr":        backend.KeyEnter,
	"tab":       backend.KeyTab,
	"backspace": backend.KeyBackspace,
	"bs":        backend.KeyBackspace,
	"home":      backend.KeyHome,
	"end":       backend.KeyEnd,
	"pgup":      backend.KeyPageUp,
	"pageup":    backend.KeyPageUp,
	"pgdn":      backend.KeyPageDown,
	"pagedown":  backend.KeyPageDown,
	"up":        backend.KeyUp,
	"down":      backend.KeyDown,
	"left":      backend.KeyLeft,
	"right":     backend.KeyRight,
	"f5":        backend.KeyF5,
	"f11":       backend.KeyF11,
}

var modifierNames = map[string]backend.ModMask{
	"ctrl":    backend.ModCtrl,
	"control": backend.ModCtrl,
	"c":       backend.ModCtrl,
	"alt":     backend.ModAlt,
	"option":  backend.ModAlt,
	"a":       backend.ModAlt,
	"shift":   backend.ModShift,
	"s":       backend.ModShift,
	"meta":    backend.ModMeta,
	"cmd":     backend.ModMeta,
	"super":   backend.ModMeta,
	"m":       backend.ModMeta,
}

// String returns the chord in the form accepted by Parse, such as
// "Ctrl+PgDn" or "Alt+Left".
func (c Chord) String() string {
	if c.IsZero() {
		return ""
	}
	var parts []string
	if c.Mods.Has(backend.ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if c.Mods.Has(backend.ModAlt) {
		parts = append(parts, "Alt")
	}
	if c.Mods.Has(backend.ModShift) {
		parts = append(parts, "Shift")
	}
	if c.Mods.Has(backend.ModMeta) {
		parts = append(parts, "Meta")
	}
	switch {
	case c.Key == backend.KeyRune && c.Rune == ' ':
		parts = append(parts, "Space")
	case c.Key == backend.KeyRune && c.Rune == '+':
		parts = append(parts, "Plus")
	case c.Key == backend.KeyRune:
		parts = append(parts, string(c.Rune))
	default:
		name, ok := keyNames[c.Key]
		if !ok {
			name = fmt.Sprintf("Key(%d)", c.Key)
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, "+")
}

// Parse parses a key specification.
//
// Supported formats:
//   - Single character: "f", "/", "0"
//   - Key names: "Home", "PgDn", "Space", "F5"
//   - With modifiers: "Ctrl+R", "Alt+Left", "Shift+Alt+Up"
//   - Vim-style: "<C-r>", "<A-Left>", "<CR>"
func Parse(spec string) (Chord, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Chord{}, ErrEmptySpec
	}
	if len(spec) > 2 && strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">") {
		return parseParts(strings.Split(spec[1:len(spec)-1], "-"))
	}
	if len(spec) > 1 && strings.Contains(spec, "+") {
		return parseParts(strings.Split(spec, "+"))
	}
	return parseKey(spec, backend.ModNone)
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Chord {
	c, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return c
}

func parseParts(parts []string) (Chord, error) {
	var mods backend.ModMask
	for _, p := range parts[:len(parts)-1] {
		p = strings.ToLower(strings.TrimSpace(p))
		mod, ok := modifierNames[p]
		if !ok {
			return Chord{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, p)
		}
		mods |= mod
	}
	return parseKey(parts[len(parts)-1], mods)
}

func parseKey(name string, mods backend.ModMask) (Chord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Chord{}, ErrInvalidSpec
	}
	lower := strings.ToLower(name)
	switch lower {
	case "space":
		return Rune(' ', mods), nil
	case "plus":
		return Rune('+', mods), nil
	case "minus":
		return Rune('-', mods), nil
	}
	if k, ok := keyAliases[lower]; ok {
		return Special(k, mods), nil
	}
	runes := []rune(name)
	if len(runes) == 1 {
		return Rune(runes[0], mods), nil
	}
	return Chord{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, name)
}
