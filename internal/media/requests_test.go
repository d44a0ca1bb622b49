package media

import (
	"testing"

	"github.com/dshills/gemview/internal/gemini"
)

func TestRequests(t *testing.T) {
	rs := NewRequests()
	r1 := gemini.NewRequest("gemini://x/a.ogg")
	r2 := gemini.NewRequest("gemini://x/b.png")

	if _, added := rs.Add(1, r1.URL(), r1); !added {
		t.Fatal("expected first request to be added")
	}
	if _, added := rs.Add(1, r2.URL(), r2); added {
		t.Error("a link has at most one request")
	}
	rs.Add(2, r2.URL(), r2)

	if got, ok := rs.FindByID(r2.ID()); !ok || got.LinkID != 2 {
		t.Errorf("expected request for link 2, got %+v", got)
	}
	rs.Remove(1)
	if _, ok := rs.Find(1); ok {
		t.Error("link 1 should be gone")
	}
	if _, ok := rs.FindByID(r1.ID()); ok {
		t.Error("removed request must not be found by ID")
	}
	rs.Clear()
	if rs.Len() != 0 {
		t.Errorf("expected empty table, got %d", rs.Len())
	}
}

func TestRequestUpdateFlagCoalesces(t *testing.T) {
	rs := NewRequests()
	req := gemini.NewRequest("gemini://x/a.ogg")
	r, _ := rs.Add(1, req.URL(), req)

	if !r.MarkUpdated() {
		t.Error("first update should notify")
	}
	if r.MarkUpdated() {
		t.Error("second update before the flag is cleared should not notify")
	}
	r.ClearUpdated()
	if !r.MarkUpdated() {
		t.Error("update after clearing should notify")
	}
}
