package app

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/renderer/backend"
)

type promptKind int

const (
	promptOpen promptKind = iota
	promptInput
	promptFind
)

// prompt is a line of text typed into the status line.
type prompt struct {
	kind      promptKind
	target    string // tab ID
	label     string
	sensitive bool
	url       string // URL that asked for input
	text      string
}

func newPrompt(kind promptKind, target, label string, sensitive bool) *prompt {
	return &prompt{kind: kind, target: target, label: label, sensitive: sensitive}
}

func (p *prompt) setText(s string) {
	p.text = s
}

func (p *prompt) insert(r rune) {
	p.text += string(r)
}

// backspace removes the last grapheme cluster.
func (p *prompt) backspace() {
	g := uniseg.NewGraphemes(p.text)
	last := 0
	for g.Next() {
		last, _ = g.Positions()
	}
	p.text = p.text[:last]
}

// display returns the status line text. Sensitive input is masked.
func (p *prompt) display() string {
	text := p.text
	if p.sensitive {
		text = strings.Repeat("*", uniseg.GraphemeClusterCount(p.text))
	}
	return p.label + ": " + text
}

func (app *Application) openPrompt(p *prompt) {
	app.prompt = p
	app.needsRedraw = true
}

func (app *Application) closePrompt() {
	app.prompt = nil
	app.needsRedraw = true
}

// handlePromptKey edits the open prompt.
func (app *Application) handlePromptKey(ev backend.Event) {
	p := app.prompt
	tab, ok := app.tabs.Get(p.target)
	if !ok {
		app.closePrompt()
		return
	}
	switch ev.Key {
	case backend.KeyEscape:
		if p.kind == promptFind {
			tab.View.ClearFind()
		}
		app.closePrompt()
	case backend.KeyEnter:
		app.submitPrompt(tab, p)
	case backend.KeyBackspace:
		p.backspace()
	case backend.KeyRune:
		if ev.Mod.Has(backend.ModCtrl) || ev.Mod.Has(backend.ModAlt) {
			return
		}
		p.insert(ev.Rune)
	default:
		return
	}
	app.needsRedraw = true
}

// submitPrompt acts on the typed text. The find prompt stays open so Enter
// moves to the next match.
func (app *Application) submitPrompt(tab *Tab, p *prompt) {
	switch p.kind {
	case promptOpen:
		app.closePrompt()
		if url := NormalizeURL(p.text); url != "" {
			tab.View.Fetch(url)
		}
	case promptInput:
		app.closePrompt()
		tab.View.Fetch(gemini.QueryURL(p.url, p.text))
	case promptFind:
		if p.text != "" && !tab.View.Find(p.text, true) {
			app.showMessage("Not found: " + p.text)
			if app.backend != nil {
				app.backend.Beep()
			}
		}
	}
}
