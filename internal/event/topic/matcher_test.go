package topic

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMatcher_AddRemove(t *testing.T) {
	m := NewMatcher()
	if !m.Add("document.changed") {
		t.Fatal("expected first add to succeed")
	}
	if m.Add("document.changed") {
		t.Error("duplicate add should report false")
	}
	if m.Add("") {
		t.Error("empty pattern should be rejected")
	}
	m.Add("document.request.*")

	if m.Len() != 2 {
		t.Errorf("expected 2 patterns, got %d", m.Len())
	}
	if !m.Remove("document.request.*") {
		t.Error("expected removal")
	}
	if m.Has("document.request.*") {
		t.Error("pattern should be gone")
	}
	if !m.Has("document.changed") {
		t.Error("sibling pattern must survive pruning")
	}
	if m.Remove("missing.pattern") {
		t.Error("removing an unknown pattern should report false")
	}
}

func TestMatcher_Match(t *testing.T) {
	m := NewMatcher()
	for _, p := range []Topic{
		"document.request.updated",
		"document.*.updated",
		"document.**",
		"**",
		"media.*",
	} {
		m.Add(p)
	}

	tests := []struct {
		topic Topic
		want  []Topic
	}{
		{"document.request.updated", []Topic{"**", "document.**", "document.*.updated", "document.request.updated"}},
		{"media.updated", []Topic{"**", "media.*"}},
		{"document", []Topic{"**", "document.**"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.topic.String(), func(t *testing.T) {
			got := m.Match(tt.topic)
			sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("match mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
