package layout

import "testing"

func TestMediaTypeForMIME(t *testing.T) {
	tests := []struct {
		mime string
		want MediaType
	}{
		{"image/png", MediaImage},
		{"audio/mpeg", MediaAudio},
		{"application/zip", MediaDownload},
	}
	for _, tt := range tests {
		if got := MediaTypeForMIME(tt.mime); got != tt.want {
			t.Errorf("%s: expected %s, got %s", tt.mime, tt.want, got)
		}
	}
}

func TestMediaStoreAppendsInPlace(t *testing.T) {
	s := NewMediaStore()
	s.Set(1, "audio/ogg", []byte("abc"), MediaPartial)
	if got := s.Set(1, "audio/ogg", []byte("abcdef"), MediaPartial); got != MediaUpdated {
		t.Errorf("expected MediaUpdated, got %d", got)
	}
	m, _ := s.Get(1)
	if string(m.Data) != "abcdef" {
		t.Errorf("expected abcdef, got %q", m.Data)
	}
	if !m.Partial() {
		t.Error("entry should still be partial")
	}
}

func TestMediaStoreSameDataUnchanged(t *testing.T) {
	s := NewMediaStore()
	s.Set(1, "image/png", []byte("png"), 0)

	if got := s.Set(1, "image/png", []byte("png"), 0); got != MediaUnchanged {
		t.Errorf("expected MediaUnchanged, got %d", got)
	}
	if got := s.Set(1, "image/png", nil, 0); got != MediaRemoved {
		t.Errorf("expected MediaRemoved, got %d", got)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestMediaStoreTypeChangeReplaces(t *testing.T) {
	s := NewMediaStore()
	s.Set(2, "image/png", []byte("x"), 0)
	if got := s.Set(2, "audio/mpeg", []byte("x"), 0); got != MediaAdded {
		t.Errorf("expected MediaAdded on type change, got %d", got)
	}
	if ids := s.IDs(); len(ids) != 1 || ids[0] != 2 {
		t.Errorf("unexpected ids %v", ids)
	}
}
