package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/gemview/internal/gemini"
)

func TestSaveSourceToFile(t *testing.T) {
	v, te := newTestView(t)
	load(v, "gemini://example.org/notes/today", gemini.StatusSuccess, "text/gemini", "# Today\n")
	drain(te)
	dir := t.TempDir()

	path, err := v.SaveSourceToFile(dir)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if want := filepath.Join(dir, "today.gmi"); path != want {
		t.Errorf("expected %s, got %s", want, path)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "# Today\n" {
		t.Errorf("unexpected content %q: %v", data, err)
	}
	if _, ok := findCommand(drain(te), "message.show"); !ok {
		t.Error("expected a message")
	}

	path, err = v.SaveSourceToFile(dir)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if want := filepath.Join(dir, "today-1.gmi"); path != want {
		t.Errorf("existing file must be kept, expected %s, got %s", want, path)
	}
}

func TestSaveWithoutContent(t *testing.T) {
	v, te := newTestView(t)
	_, err := v.SaveSourceToFile("")
	if !errors.Is(err, ErrNothingToSave) {
		t.Errorf("expected ErrNothingToSave, got %v", err)
	}
	msg, ok := findCommand(drain(te), "message.show")
	if !ok || msg.ArgString("text") == "" {
		t.Errorf("expected an error message, got %+v", msg)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		url  string
		mime string
		want string
	}{
		{"gemini://example.org/page", "text/gemini", "page.gmi"},
		{"gemini://example.org/page.gmi", "text/gemini", "page.gmi"},
		{"gemini://example.org/", "text/gemini", "example.org"},
		{"gemini://example.org/pic", "image/png", "pic.png"},
		{"gemini://example.org/blob", "application/x-unknown-type", "blob"},
		{"about:blank", "text/gemini", "download.gmi"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := fileName(tt.url, tt.mime); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
