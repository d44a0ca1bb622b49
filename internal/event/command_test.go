package event

import "testing"

func TestCommandArgs(t *testing.T) {
	cmd := NewCommand(TopicOpen, "", "redirect:%d newtab:1 url:%s", 2, "gemini://x/a b")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"int", cmd.ArgInt("redirect"), 2},
		{"flag", cmd.ArgInt("newtab"), 1},
		{"missing int", cmd.ArgInt("other"), 0},
		{"url runs to end", cmd.ArgString("url"), "gemini://x/a b"},
		{"missing string", cmd.ArgString("title"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, tt.got)
			}
		})
	}
	if got := cmd.String(); got != "open redirect:2 newtab:1 url:gemini://x/a b" {
		t.Errorf("unexpected string %q", got)
	}
}

func TestArgStringNeedsWordStart(t *testing.T) {
	cmd := Command{Topic: TopicMessage, Args: "xurl:no text:hello world"}
	if got := cmd.ArgString("url"); got != "" {
		t.Errorf("expected no match inside a word, got %q", got)
	}
	if got := cmd.ArgString("text"); got != "hello world" {
		t.Errorf("expected hello world, got %q", got)
	}
}

func TestParseCommand(t *testing.T) {
	cmd := ParseCommand("tab1", "  scroll.step arg:-1 repeat:1 ")
	if cmd.Topic != TopicScrollStep || cmd.Target != "tab1" {
		t.Errorf("unexpected command %+v", cmd)
	}
	if got := cmd.ArgInt("arg"); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
	if got := ParseCommand("", "tab.new").Args; got != "" {
		t.Errorf("expected no arguments, got %q", got)
	}
}
