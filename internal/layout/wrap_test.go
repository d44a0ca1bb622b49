package layout

import "testing"

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"empty", "", 10, []string{""}},
		{"fits", "hello world", 20, []string{"hello world"}},
		{"breaks at space", "hello world", 8, []string{"hello ", "world"}},
		{"long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"wide runes", "世界世界", 4, []string{"世界", "世界"}},
		{"zero width", "ab", 0, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := wrap(tt.text, tt.width)
			var got []string
			for _, s := range spans {
				got = append(got, tt.text[s.Start:s.End])
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestWrapCoversText(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog, again and again."
	spans := wrap(text, 11)
	next := 0
	for _, s := range spans {
		if s.Start != next {
			t.Fatalf("gap before %s", s)
		}
		if w := textWidth(text[s.Start:s.End]); w > 11 {
			t.Errorf("line %q is %d wide", text[s.Start:s.End], w)
		}
		next = s.End
	}
	if next != len(text) {
		t.Errorf("spans end at %d, text is %d bytes", next, len(text))
	}
}
