package gemini

import "testing"

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"gemini://example.org/dir/page.gmi", "other.gmi", "gemini://example.org/dir/other.gmi"},
		{"gemini://example.org/dir/page.gmi", "/root", "gemini://example.org/root"},
		{"gemini://example.org/", "https://web.site/", "https://web.site/"},
		{"gemini://example.org/a/", " ../b ", "gemini://example.org/b"},
	}
	for _, tt := range tests {
		if got := AbsoluteURL(tt.base, tt.ref); got != tt.want {
			t.Errorf("AbsoluteURL(%q, %q): expected %q, got %q", tt.base, tt.ref, tt.want, got)
		}
	}
}

func TestURLParts(t *testing.T) {
	if got := Scheme("GEMINI://x/"); got != "gemini" {
		t.Errorf("expected gemini, got %q", got)
	}
	if got := Scheme("about:blank"); got != "about" {
		t.Errorf("expected about, got %q", got)
	}
	if got := Host("gemini://example.org:1966/x"); got != "example.org" {
		t.Errorf("expected example.org, got %q", got)
	}
	if got := User("gemini://alice@example.org/"); got != "alice" {
		t.Errorf("expected alice, got %q", got)
	}
	if got := StripFragment("gemini://x/p#frag"); got != "gemini://x/p" {
		t.Errorf("unexpected %q", got)
	}
	if got := BaseName("gemini://x/img/cat.png"); got != "cat.png" {
		t.Errorf("expected cat.png, got %q", got)
	}
	if !IsAbout("about:help") || IsAbout("gemini://about/") {
		t.Error("IsAbout misclassified")
	}
}

func TestParentAndRoot(t *testing.T) {
	tests := []struct {
		url, parent, root string
	}{
		{"gemini://x/a/b/c.gmi", "gemini://x/a/b/", "gemini://x/"},
		{"gemini://x/a/b/", "gemini://x/a/", "gemini://x/"},
		{"gemini://x/a?q=1#top", "gemini://x/", "gemini://x/"},
		{"gemini://x/", "gemini://x/", "gemini://x/"},
		{"gemini://x:1966", "gemini://x:1966/", "gemini://x:1966/"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := ParentURL(tt.url); got != tt.parent {
				t.Errorf("parent: expected %q, got %q", tt.parent, got)
			}
			if got := RootURL(tt.url); got != tt.root {
				t.Errorf("root: expected %q, got %q", tt.root, got)
			}
		})
	}
}

func TestQueryURL(t *testing.T) {
	got := QueryURL("gemini://x/search?old#frag", "tea & cake+")
	want := "gemini://x/search?tea%20%26%20cake%2B"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
