package loader

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvLoader(t *testing.T) {
	env := map[string]string{
		"GEMVIEW_LINE_WIDTH":       "80",
		"GEMVIEW_SMOOTH_SCROLLING": "off",
		"GEMVIEW_THEME":            "42",
		"OTHER_ZOOM":               "150",
	}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	got := NewEnvLoader("GEMVIEW_", lookup).Load()
	want := map[string]any{
		"line_width":       int64(80),
		"smooth_scrolling": false,
		"theme":            "42",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("overrides mismatch (-want +got):\n%s", diff)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"yes", true},
		{"FALSE", false},
		{"-3", int64(-3)},
		{"1", int64(1)},
		{"/tmp/x", "/tmp/x"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.in); got != tt.want {
			t.Errorf("%q: expected %v (%T), got %v (%T)", tt.in, tt.want, tt.want, got, got)
		}
	}
}
