package topic

import (
	"testing"
)

func TestTopic_Parts(t *testing.T) {
	tests := []struct {
		topic  Topic
		parent Topic
		base   string
		segs   int
	}{
		{"document.request.updated", "document.request", "updated", 3},
		{"open", "", "open", 1},
		{"", "", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.topic.String(), func(t *testing.T) {
			if got := tt.topic.Parent(); got != tt.parent {
				t.Errorf("expected parent %q, got %q", tt.parent, got)
			}
			if got := tt.topic.Base(); got != tt.base {
				t.Errorf("expected base %q, got %q", tt.base, got)
			}
			if got := len(tt.topic.Segments()); got != tt.segs {
				t.Errorf("expected %d segments, got %d", tt.segs, got)
			}
		})
	}
}

func TestTopic_HasPrefix(t *testing.T) {
	tests := []struct {
		topic, prefix Topic
		want          bool
	}{
		{"media.player.started", "media", true},
		{"media.player.started", "media.player", true},
		{"media.player.started", "media.play", false},
		{"media", "", true},
	}
	for _, tt := range tests {
		if got := tt.topic.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("%q.HasPrefix(%q): expected %v, got %v", tt.topic, tt.prefix, tt.want, got)
		}
	}
}

func TestTopic_IsValid(t *testing.T) {
	tests := []struct {
		topic Topic
		want  bool
	}{
		{"document.changed", true},
		{"", false},
		{".document", false},
		{"document.", false},
		{"a..b", false},
	}
	for _, tt := range tests {
		if got := tt.topic.IsValid(); got != tt.want {
			t.Errorf("%q: expected %v, got %v", tt.topic, tt.want, got)
		}
	}
}

func TestTopic_Matches(t *testing.T) {
	tests := []struct {
		topic, pattern Topic
		want           bool
	}{
		{"document.changed", "document.changed", true},
		{"document.changed", "document.*", true},
		{"document.request.started", "document.*", false},
		{"document.request.started", "document.**", true},
		{"document", "document.**", true},
		{"media.player.started", "**.started", true},
		{"media.player.started", "*.started", false},
		{"anything.at.all", "**", true},
		{"open", "close", false},
	}
	for _, tt := range tests {
		if got := tt.topic.Matches(tt.pattern); got != tt.want {
			t.Errorf("%q matches %q: expected %v, got %v", tt.topic, tt.pattern, tt.want, got)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join("media", "player", "started"); got != "media.player.started" {
		t.Errorf("expected media.player.started, got %q", got)
	}
}
