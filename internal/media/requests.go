package media

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dshills/gemview/internal/gemini"
)

// Request is a fetch of inline media for one link.
type Request struct {
	ID     uuid.UUID
	LinkID int
	URL    string
	Req    *gemini.Request

	pending atomic.Bool
}

// MarkUpdated flags new data. It returns true if the flag was clear, in
// which case the caller should notify the UI loop.
func (r *Request) MarkUpdated() bool {
	return !r.pending.Swap(true)
}

// ClearUpdated clears the flag before the data is read.
func (r *Request) ClearUpdated() {
	r.pending.Store(false)
}

// Requests holds the media requests of one document, at most one per link.
type Requests struct {
	items []*Request
}

// NewRequests creates an empty table.
func NewRequests() *Requests {
	return &Requests{}
}

// Add records a request for linkID. It returns false if the link already
// has one.
func (rs *Requests) Add(linkID int, url string, req *gemini.Request) (*Request, bool) {
	if r, ok := rs.Find(linkID); ok {
		return r, false
	}
	r := &Request{ID: req.ID(), LinkID: linkID, URL: url, Req: req}
	rs.items = append(rs.items, r)
	return r, true
}

// Find returns the request for linkID.
func (rs *Requests) Find(linkID int) (*Request, bool) {
	for _, r := range rs.items {
		if r.LinkID == linkID {
			return r, true
		}
	}
	return nil, false
}

// FindByID returns the request with the given ID. Notifications carry the
// ID so a request deleted in the meantime is simply not found.
func (rs *Requests) FindByID(id uuid.UUID) (*Request, bool) {
	for _, r := range rs.items {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// Remove cancels and drops the request for linkID.
func (rs *Requests) Remove(linkID int) {
	for i, r := range rs.items {
		if r.LinkID == linkID {
			r.Req.Cancel()
			rs.items = append(rs.items[:i], rs.items[i+1:]...)
			return
		}
	}
}

// Clear cancels and drops every request.
func (rs *Requests) Clear() {
	for _, r := range rs.items {
		r.Req.Cancel()
	}
	rs.items = rs.items[:0]
}

// Len returns the number of requests.
func (rs *Requests) Len() int {
	return len(rs.items)
}
