// Package layout turns gemtext or plain text into positioned runs.
//
// Coordinates are in cells: rows grow downwards from the top of the
// document and columns are relative to the document's left edge.
package layout

import (
	"fmt"

	"github.com/dshills/gemview/internal/renderer/core"
)

// Format selects how source text is interpreted.
type Format int

const (
	FormatUndefined Format = iota
	FormatGemini
	FormatPlainText
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatGemini:
		return "gemini"
	case FormatPlainText:
		return "plaintext"
	default:
		return "undefined"
	}
}

// LineType classifies the source line a run was produced from.
type LineType int

const (
	LineText LineType = iota
	LineLink
	LineHeading1
	LineHeading2
	LineHeading3
	LineBullet
	LineQuote
	LinePreformatted
	LineBanner
	LineMedia
)

// MediaType tags a run that anchors inline media.
type MediaType int

const (
	MediaNone MediaType = iota
	MediaImage
	MediaAudio
	MediaDownload
)

// String returns the media type name.
func (m MediaType) String() string {
	switch m {
	case MediaImage:
		return "image"
	case MediaAudio:
		return "audio"
	case MediaDownload:
		return "download"
	default:
		return "none"
	}
}

// RunFlags describe properties of a run.
type RunFlags uint16

const (
	FlagDecoration RunFlags = 1 << iota // bullet, link arrow, quote bar
	FlagWide                            // preformatted, not wrapped
	FlagEndsLine                        // last run of a source line
	FlagBanner                          // part of the site banner
)

// Has returns true if all bits of f are set.
func (fl RunFlags) Has(f RunFlags) bool {
	return fl&f == f
}

// RunKey identifies a run across calls. A key from an earlier layout
// generation no longer resolves.
type RunKey struct {
	Gen   uint32
	Index int
}

// String returns "gen:index".
func (k RunKey) String() string {
	return fmt.Sprintf("%d:%d", k.Gen, k.Index)
}

// Run is a positioned span of laid-out content.
type Run struct {
	Key RunKey

	// Text is the visible text of the run.
	Text string

	// Range is the byte range into the source.
	Range core.Span

	// Bounds is the tight extent of the text.
	Bounds core.Rect

	// Visual is the extent that must be repainted for this run.
	// It may be wider than Bounds for decorations.
	Visual core.Rect

	LinkID    int
	MediaID   int
	MediaType MediaType
	Flags     RunFlags
	Line      LineType

	// PreID groups the runs of one preformatted block (1-based, 0 if none).
	PreID int
}

// Heading is an entry of the document outline.
type Heading struct {
	Level int
	Text  string
	Range core.Span
	Row   int
}

// LinkFlags describe a link.
type LinkFlags uint16

const (
	LinkRemote LinkFlags = 1 << iota // scheme differs from the document
	LinkImage
	LinkAudio
	LinkHasMedia // media data has been registered for the link
)

// Has returns true if all bits of f are set.
func (fl LinkFlags) Has(f LinkFlags) bool {
	return fl&f == f
}

// Link is a gemtext link line.
type Link struct {
	ID    int
	URL   string
	Label string
	Range core.Span
	Flags LinkFlags
}
