package layout

import (
	"bytes"
	"sort"
	"strings"
)

// MediaFlags describe registered media data.
type MediaFlags uint8

const (
	// MediaPartial marks data that is still arriving.
	MediaPartial MediaFlags = 1 << iota
)

// MediaData is inline media attached to a link.
type MediaData struct {
	LinkID int
	Type   MediaType
	MIME   string
	Data   []byte
	Flags  MediaFlags
}

// Partial returns true if more data is expected.
func (m *MediaData) Partial() bool {
	return m.Flags&MediaPartial != 0
}

// MediaStore holds the media registered for one document.
type MediaStore struct {
	items map[int]*MediaData
}

// NewMediaStore creates an empty store.
func NewMediaStore() *MediaStore {
	return &MediaStore{items: make(map[int]*MediaData)}
}

// MediaTypeForMIME maps a MIME type to the kind of inline media it shows as.
func MediaTypeForMIME(mime string) MediaType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return MediaImage
	case strings.HasPrefix(mime, "audio/"):
		return MediaAudio
	default:
		return MediaDownload
	}
}

// MediaChange reports what a Set call did.
type MediaChange int

const (
	MediaUnchanged MediaChange = iota
	MediaUpdated               // existing entry got new data
	MediaAdded                 // new entry, layout must be redone
	MediaRemoved
)

// Set registers or updates media for linkID. Data that extends what is
// already stored is appended in place; a finished image is never replaced
// by data of the same content. Nil data removes the entry.
func (s *MediaStore) Set(linkID int, mime string, data []byte, flags MediaFlags) MediaChange {
	if data == nil {
		if _, ok := s.items[linkID]; ok {
			delete(s.items, linkID)
			return MediaRemoved
		}
		return MediaUnchanged
	}
	typ := MediaTypeForMIME(mime)
	m, ok := s.items[linkID]
	if !ok || m.Type != typ {
		s.items[linkID] = &MediaData{
			LinkID: linkID,
			Type:   typ,
			MIME:   mime,
			Data:   append([]byte(nil), data...),
			Flags:  flags,
		}
		return MediaAdded
	}
	if m.Flags == flags && len(m.Data) == len(data) {
		return MediaUnchanged
	}
	if m.Type == MediaImage && !m.Partial() && bytes.Equal(m.Data, data) {
		return MediaUnchanged
	}
	if len(data) >= len(m.Data) && bytes.Equal(data[:len(m.Data)], m.Data) {
		m.Data = append(m.Data, data[len(m.Data):]...)
	} else {
		m.Data = append(m.Data[:0], data...)
	}
	m.MIME = mime
	m.Flags = flags
	return MediaUpdated
}

// Get returns the media registered for linkID.
func (s *MediaStore) Get(linkID int) (*MediaData, bool) {
	m, ok := s.items[linkID]
	return m, ok
}

// Len returns the number of entries.
func (s *MediaStore) Len() int {
	return len(s.items)
}

// IDs returns the registered link IDs in ascending order.
func (s *MediaStore) IDs() []int {
	ids := make([]int, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clear removes all entries.
func (s *MediaStore) Clear() {
	clear(s.items)
}
