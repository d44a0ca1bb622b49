// Package history keeps the navigation history of a tab and the set of
// visited URLs shared by all tabs.
package history

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/stream"
)

// MaxItems bounds the number of recent items kept per tab.
const MaxItems = 100

const formatVersion = 1

// ErrBadVersion is returned when decoding data of an unknown format.
var ErrBadVersion = errors.New("history: unknown format version")

// Item is one entry of the navigation history.
type Item struct {
	URL         string
	NormScrollY float32
	Cached      *gemini.Response
}

// History is a back/forward list. The current item is the one pos steps
// back from the newest.
type History struct {
	mu    sync.Mutex
	items []Item
	pos   int
}

// New creates an empty history.
func New() *History {
	return &History{}
}

// Add makes url the current item. Items ahead of the current one are
// dropped. Adding the current URL again does nothing.
func (h *History) Add(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur := h.current(); cur != nil && cur.URL == url {
		return
	}
	h.items = h.items[:len(h.items)-h.pos]
	h.pos = 0
	h.items = append(h.items, Item{URL: url})
	if len(h.items) > MaxItems {
		h.items = h.items[len(h.items)-MaxItems:]
	}
}

// ReplaceURL changes the URL of the current item and drops its cached
// response. It adds an item if the history is empty.
func (h *History) ReplaceURL(url string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur := h.current()
	if cur == nil {
		h.items = append(h.items, Item{URL: url})
		return
	}
	cur.URL = url
	cur.Cached = nil
}

func (h *History) current() *Item {
	if len(h.items) == 0 {
		return nil
	}
	return &h.items[len(h.items)-1-h.pos]
}

// Current returns a copy of the current item.
func (h *History) Current() (Item, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur := h.current()
	if cur == nil {
		return Item{}, false
	}
	return *cur, true
}

// URL returns the current URL, or "" when empty.
func (h *History) URL() string {
	item, _ := h.Current()
	return item.URL
}

// SetCachedResponse stores a copy of resp with the current item.
func (h *History) SetCachedResponse(resp *gemini.Response) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur := h.current(); cur != nil {
		cur.Cached = resp.Copy()
	}
}

// CachedResponse returns the response stored with the current item.
func (h *History) CachedResponse() *gemini.Response {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur := h.current(); cur != nil {
		return cur.Cached
	}
	return nil
}

// SetNormScrollY records the scroll position of the current item as a
// fraction of the document height.
func (h *History) SetNormScrollY(y float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur := h.current(); cur != nil {
		cur.NormScrollY = y
	}
}

// CanGoBack returns true if there is an older item.
func (h *History) CanGoBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos < len(h.items)-1
}

// CanGoForward returns true if there is a newer item.
func (h *History) CanGoForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos > 0
}

// GoBack moves to the older item.
func (h *History) GoBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos >= len(h.items)-1 {
		return false
	}
	h.pos++
	return true
}

// GoForward moves to the newer item.
func (h *History) GoForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pos == 0 {
		return false
	}
	h.pos--
	return true
}

// Len returns the number of items.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

// Items returns a copy of the items, oldest first.
func (h *History) Items() []Item {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Item(nil), h.items...)
}

// Clear removes all items.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = nil
	h.pos = 0
}

// CacheSize returns the total body size of cached responses.
func (h *History) CacheSize() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, it := range h.items {
		if it.Cached != nil {
			n += len(it.Cached.Body)
		}
	}
	return n
}

// Copy returns an independent deep copy.
func (h *History) Copy() *History {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := &History{pos: h.pos, items: make([]Item, len(h.items))}
	for i, it := range h.items {
		c.items[i] = it
		if it.Cached != nil {
			c.items[i].Cached = it.Cached.Copy()
		}
	}
	return c
}

// Serialize writes the history, including cached responses.
func (h *History) Serialize(w io.Writer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := stream.NewWriter(w)
	s.Uint8(formatVersion)
	s.Uint32(uint32(len(h.items)))
	s.Uint32(uint32(h.pos))
	for _, it := range h.items {
		s.String(it.URL)
		s.Float32(it.NormScrollY)
		if it.Cached == nil {
			s.Uint8(0)
			continue
		}
		s.Uint8(1)
		writeResponse(s, it.Cached)
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("serialize history: %w", err)
	}
	return nil
}

// Deserialize replaces the history with one read from r. On error the
// history is left unchanged.
func (h *History) Deserialize(r io.Reader) error {
	s := stream.NewReader(r)
	if v := s.Uint8(); s.Err() == nil && v != formatVersion {
		return fmt.Errorf("deserialize history: %w: %d", ErrBadVersion, v)
	}
	n := int(s.Uint32())
	pos := int(s.Uint32())
	if s.Err() == nil && n > MaxItems {
		return fmt.Errorf("deserialize history: %d items", n)
	}
	var items []Item
	for i := 0; i < n && s.Err() == nil; i++ {
		it := Item{URL: s.String(), NormScrollY: s.Float32()}
		if s.Uint8() != 0 {
			it.Cached = readResponse(s)
		}
		items = append(items, it)
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("deserialize history: %w", err)
	}
	if pos >= len(items) {
		pos = max(len(items)-1, 0)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = items
	h.pos = pos
	return nil
}

func writeResponse(s *stream.Writer, r *gemini.Response) {
	s.Int64(int64(r.Status))
	s.String(r.Meta)
	s.Bytes(r.Body)
	s.Uint8(uint8(r.CertFlags))
	s.Bytes(r.CertFingerprint)
	s.String(r.CertSubject)
	s.Int64(r.CertValidUntil.Unix())
	s.Int64(r.When.UnixNano())
}

func readResponse(s *stream.Reader) *gemini.Response {
	r := &gemini.Response{
		Status:          gemini.Status(s.Int64()),
		Meta:            s.String(),
		Body:            s.Bytes(),
		CertFlags:       gemini.CertFlags(s.Uint8()),
		CertFingerprint: s.Bytes(),
		CertSubject:     s.String(),
	}
	r.CertValidUntil = time.Unix(s.Int64(), 0)
	r.When = time.Unix(0, s.Int64())
	return r
}
