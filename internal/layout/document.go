package layout

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/dshills/gemview/internal/renderer/core"
)

// Indent of wrapped text behind a decoration.
const decorationIndent = 2

// Media placeholder heights in rows.
var mediaHeights = map[MediaType]int{
	MediaImage:    3,
	MediaAudio:    2,
	MediaDownload: 1,
}

// MediaHeight returns the rows a media placeholder of type t occupies.
func MediaHeight(t MediaType) int {
	return mediaHeights[t]
}

type preBlock struct {
	first    int // index of first run
	end      int // one past the last run
	rows     core.Span
	maxWidth int
}

// checkpoint is the layout state at the start of the last source line.
// Appended text resumes from here instead of laying out from scratch.
type checkpoint struct {
	valid    bool
	offset   int
	runs     int
	links    int
	headings int
	pres     int
	row      int
	inPre    bool
}

// Document is a laid-out gemtext or plain-text document. It is owned by
// a single view and is not safe for concurrent use.
type Document struct {
	url    string
	scheme string
	source string
	format Format
	width  int
	gen    uint32
	banner Banner

	runs     []Run
	links    []Link
	headings []Heading
	pres     []preBlock
	height   int
	media    *MediaStore

	check   checkpoint
	changed int // first row affected by the last layout
}

// NewDocument creates an empty gemtext document.
func NewDocument() *Document {
	return &Document{
		format: FormatGemini,
		width:  1,
		media:  NewMediaStore(),
	}
}

// SetURL sets the address the document was loaded from. Links are
// resolved against it to decide whether they leave the current scheme.
func (d *Document) SetURL(u string) {
	d.url = u
	d.scheme = ""
	if p, err := url.Parse(u); err == nil {
		d.scheme = strings.ToLower(p.Scheme)
	}
}

// URL returns the document address.
func (d *Document) URL() string {
	return d.url
}

// Reset clears the content and registered media. The width, format and
// URL are kept.
func (d *Document) Reset() {
	d.source = ""
	d.banner = nil
	d.media.Clear()
	d.relayout()
}

// SetFormat changes how the source is interpreted.
func (d *Document) SetFormat(f Format) {
	if f == d.format {
		return
	}
	d.format = f
	d.relayout()
}

// Format returns the current format.
func (d *Document) Format() Format {
	return d.format
}

// SetBanner sets or clears (nil) the banner.
func (d *Document) SetBanner(b Banner) {
	if b == d.banner {
		return
	}
	d.banner = b
	d.relayout()
}

// Banner returns the current banner, or nil.
func (d *Document) Banner() Banner {
	return d.banner
}

// HasBanner returns true if a banner is shown.
func (d *Document) HasBanner() bool {
	return d.banner != nil
}

// SetWidth lays the document out again for a new width. Run keys from
// before the call no longer resolve.
func (d *Document) SetWidth(width int) {
	width = max(width, 1)
	if width == d.width {
		return
	}
	d.width = width
	d.relayout()
}

// Width returns the layout width.
func (d *Document) Width() int {
	return d.width
}

// SetSource replaces the text. Text that extends the previous source is
// laid out incrementally and keeps the keys of runs before the last line.
// It returns true if anything changed.
func (d *Document) SetSource(text string, width int) bool {
	width = max(width, 1)
	if width != d.width {
		d.width = width
		d.source = text
		d.relayout()
		return true
	}
	if text == d.source {
		return false
	}
	cp := d.check
	if cp.valid && len(text) >= cp.offset && text[:cp.offset] == d.source[:cp.offset] {
		d.source = text
		d.runs = d.runs[:cp.runs]
		d.links = d.links[:cp.links]
		d.headings = d.headings[:cp.headings]
		d.pres = d.pres[:cp.pres]
		if cp.inPre && len(d.pres) > 0 {
			// The open block may gain more runs.
			b := &d.pres[len(d.pres)-1]
			b.end = cp.runs
			b.rows.End = cp.row
			b.maxWidth = 0
			for _, r := range d.runs[b.first:b.end] {
				b.maxWidth = max(b.maxWidth, r.Visual.Width())
			}
		}
		d.changed = cp.row
		d.layoutFrom(cp)
		return true
	}
	d.source = text
	d.relayout()
	return true
}

// Source returns the text being displayed.
func (d *Document) Source() string {
	return d.source
}

// ChangedFrom returns the first row whose content may differ after the
// last layout. Rows above it kept their runs.
func (d *Document) ChangedFrom() int {
	return d.changed
}

// Generation returns the layout generation. It changes whenever existing
// run keys become invalid.
func (d *Document) Generation() uint32 {
	return d.gen
}

// Height returns the document height in rows.
func (d *Document) Height() int {
	return d.height
}

// RunCount returns the number of runs.
func (d *Document) RunCount() int {
	return len(d.runs)
}

// Run resolves a key to its run.
func (d *Document) Run(key RunKey) (Run, bool) {
	if key.Gen != d.gen || key.Index < 0 || key.Index >= len(d.runs) {
		return Run{}, false
	}
	return d.runs[key.Index], true
}

// RenderRuns calls fn for each run whose visual extent intersects rows,
// top to bottom and left to right, until fn returns false.
func (d *Document) RenderRuns(rows core.Span, fn func(Run) bool) {
	i := sort.Search(len(d.runs), func(i int) bool {
		return d.runs[i].Visual.Bottom > rows.Start
	})
	for ; i < len(d.runs); i++ {
		r := d.runs[i]
		if r.Visual.Top >= rows.End {
			return
		}
		if !fn(r) {
			return
		}
	}
}

// VisibleRuns returns the runs intersecting rows.
func (d *Document) VisibleRuns(rows core.Span) []Run {
	var out []Run
	d.RenderRuns(rows, func(r Run) bool {
		out = append(out, r)
		return true
	})
	return out
}

// FindRunAtLocation returns the run whose visual extent contains pos.
func (d *Document) FindRunAtLocation(pos core.Pos) (Run, bool) {
	var found Run
	ok := false
	d.RenderRuns(core.Span{Start: pos.Row, End: pos.Row + 1}, func(r Run) bool {
		if r.Visual.Contains(pos) {
			found, ok = r, true
			return false
		}
		return true
	})
	return found, ok
}

// FindRunAtByteOffset returns the first content run at or after offset.
func (d *Document) FindRunAtByteOffset(offset int) (Run, bool) {
	i := sort.Search(len(d.runs), func(i int) bool {
		r := d.runs[i].Range
		return r.End > offset || r.Start >= offset
	})
	for ; i < len(d.runs); i++ {
		if !d.runs[i].Flags.Has(FlagDecoration) && !d.runs[i].Flags.Has(FlagBanner) {
			return d.runs[i], true
		}
	}
	return Run{}, false
}

// Headings returns the document outline in order.
func (d *Document) Headings() []Heading {
	out := make([]Heading, len(d.headings))
	copy(out, d.headings)
	return out
}

// Links returns all links in order.
func (d *Document) Links() []Link {
	out := make([]Link, len(d.links))
	copy(out, d.links)
	return out
}

// LinkURL returns the URL of link id, or "".
func (d *Document) LinkURL(id int) string {
	if id < 1 || id > len(d.links) {
		return ""
	}
	return d.links[id-1].URL
}

// LinkFlags returns the flags of link id.
func (d *Document) LinkFlags(id int) LinkFlags {
	if id < 1 || id > len(d.links) {
		return 0
	}
	fl := d.links[id-1].Flags
	if _, ok := d.media.Get(id); ok {
		fl |= LinkHasMedia
	}
	return fl
}

// Media returns the media store.
func (d *Document) Media() *MediaStore {
	return d.media
}

// SetMediaData registers media for a link. Adding or removing an entry
// changes the layout; updating one does not.
func (d *Document) SetMediaData(linkID int, mime string, data []byte, flags MediaFlags) MediaChange {
	change := d.media.Set(linkID, mime, data, flags)
	if change == MediaAdded || change == MediaRemoved {
		d.relayout()
	}
	return change
}

// PreBlockCount returns the number of preformatted blocks.
func (d *Document) PreBlockCount() int {
	return len(d.pres)
}

// PreBlock returns the rows covered by block preID, the keys of its runs
// and the width of its widest run.
func (d *Document) PreBlock(preID int) (rows core.Span, keys []RunKey, maxWidth int, ok bool) {
	if preID < 1 || preID > len(d.pres) {
		return core.Span{}, nil, 0, false
	}
	b := d.pres[preID-1]
	for i := b.first; i < b.end; i++ {
		keys = append(keys, d.runs[i].Key)
	}
	return b.rows, keys, b.maxWidth, true
}

// relayout discards all runs and lays the source out again.
func (d *Document) relayout() {
	d.gen++
	d.changed = 0
	d.runs = d.runs[:0]
	d.links = d.links[:0]
	d.headings = d.headings[:0]
	d.pres = d.pres[:0]
	row := 0
	if d.banner != nil {
		text := d.banner.Text()
		d.runs = append(d.runs, Run{
			Key:    RunKey{Gen: d.gen, Index: 0},
			Text:   text,
			Bounds: core.RectFromSize(0, 0, 1, textWidth(text)),
			Visual: core.RectFromSize(0, 0, BannerHeight, d.width),
			Flags:  FlagBanner | FlagDecoration,
			Line:   LineBanner,
		})
		row = BannerHeight
	}
	d.layoutFrom(checkpoint{valid: true, runs: len(d.runs), row: row})
}

// layoutFrom lays out the source starting at cp.
func (d *Document) layoutFrom(cp checkpoint) {
	st := cp
	off := cp.offset
	src := d.source
	for {
		if off == cp.offset || src[off-1] == '\n' {
			st.offset = off
			st.runs = len(d.runs)
			st.links = len(d.links)
			st.headings = len(d.headings)
			st.pres = len(d.pres)
			st.valid = true
			d.check = st
		}
		if off >= len(src) {
			break
		}
		end := len(src)
		next := len(src)
		if nl := strings.IndexByte(src[off:], '\n'); nl >= 0 {
			end = off + nl
			next = end + 1
		}
		line := strings.TrimSuffix(src[off:end], "\r")
		if d.format == FormatGemini {
			d.layoutGemini(&st, line, off)
		} else {
			st.row = d.emitWrapped(line, off, 0, st.row, LineText, 0)
		}
		off = next
	}
	d.height = st.row
	if st.inPre && len(d.pres) > 0 {
		d.closePre(len(d.pres) - 1)
	}
}

func (d *Document) layoutGemini(st *checkpoint, line string, off int) {
	lineSpan := core.Span{Start: off, End: off + len(line)}
	if strings.HasPrefix(line, "```") {
		if st.inPre {
			d.closePre(len(d.pres) - 1)
			st.inPre = false
		} else {
			d.pres = append(d.pres, preBlock{first: len(d.runs), end: len(d.runs), rows: core.Span{Start: st.row, End: st.row}})
			st.inPre = true
		}
		return
	}
	if st.inPre {
		w := textWidth(line)
		preID := len(d.pres)
		d.appendRun(Run{
			Text:   line,
			Range:  lineSpan,
			Bounds: core.RectFromSize(st.row, 0, 1, w),
			Visual: core.RectFromSize(st.row, 0, 1, w),
			Flags:  FlagWide | FlagEndsLine,
			Line:   LinePreformatted,
			PreID:  preID,
		})
		b := &d.pres[preID-1]
		b.end = len(d.runs)
		b.rows.End = st.row + 1
		b.maxWidth = max(b.maxWidth, w)
		st.row++
		return
	}

	switch {
	case strings.HasPrefix(line, "=>"):
		d.layoutLink(st, line, off)
	case strings.HasPrefix(line, "#"):
		level := 0
		for level < len(line) && level < 3 && line[level] == '#' {
			level++
		}
		text := strings.TrimSpace(line[level:])
		start := off + strings.Index(line, text)
		if text == "" {
			start = off + len(line)
		}
		d.headings = append(d.headings, Heading{
			Level: level,
			Text:  text,
			Range: core.Span{Start: start, End: start + len(text)},
			Row:   st.row,
		})
		st.row = d.emitWrapped(text, start, 0, st.row, LineHeading1+LineType(level-1), 0)
	case strings.HasPrefix(line, "* "):
		d.appendDecoration("•", off, st.row, LineBullet, 0)
		st.row = d.emitWrapped(line[2:], off+2, decorationIndent, st.row, LineBullet, 0)
	case strings.HasPrefix(line, ">"):
		d.appendDecoration("▌", off, st.row, LineQuote, 0)
		text := strings.TrimLeft(line[1:], " ")
		st.row = d.emitWrapped(text, off+len(line)-len(text), decorationIndent, st.row, LineQuote, 0)
	default:
		st.row = d.emitWrapped(line, off, 0, st.row, LineText, 0)
	}
}

func (d *Document) layoutLink(st *checkpoint, line string, off int) {
	rest := strings.TrimLeft(line[2:], " \t")
	restOff := off + len(line) - len(rest)
	target := rest
	label := ""
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		target = rest[:i]
		label = strings.TrimSpace(rest[i:])
	}
	if target == "" {
		st.row = d.emitWrapped(line, off, 0, st.row, LineText, 0)
		return
	}
	id := len(d.links) + 1
	d.links = append(d.links, Link{
		ID:    id,
		URL:   target,
		Label: label,
		Range: core.Span{Start: off, End: off + len(line)},
		Flags: d.classifyLink(target),
	})
	text, textOff := label, restOff+strings.Index(rest, label)
	if label == "" {
		text, textOff = target, restOff
	}
	d.appendDecoration("→", off, st.row, LineLink, id)
	st.row = d.emitWrapped(text, textOff, decorationIndent, st.row, LineLink, id)

	if m, ok := d.media.Get(id); ok {
		h := MediaHeight(m.Type)
		d.appendRun(Run{
			Text:      m.MIME,
			Range:     core.Span{Start: off, End: off + len(line)},
			Bounds:    core.RectFromSize(st.row, decorationIndent, h, d.width-decorationIndent),
			Visual:    core.RectFromSize(st.row, 0, h, d.width),
			LinkID:    id,
			MediaID:   id,
			MediaType: m.Type,
			Flags:     FlagEndsLine,
			Line:      LineMedia,
		})
		st.row += h
	}
}

func (d *Document) classifyLink(target string) LinkFlags {
	var fl LinkFlags
	u, err := url.Parse(target)
	if err != nil {
		return fl
	}
	if u.Scheme != "" && d.scheme != "" && !strings.EqualFold(u.Scheme, d.scheme) {
		fl |= LinkRemote
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		fl |= LinkImage
	case ".mp3", ".ogg", ".wav", ".mid", ".flac":
		fl |= LinkAudio
	}
	return fl
}

func (d *Document) appendDecoration(text string, off, row int, lt LineType, linkID int) {
	w := textWidth(text)
	d.appendRun(Run{
		Text:   text,
		Range:  core.Span{Start: off, End: off},
		Bounds: core.RectFromSize(row, 0, 1, w),
		Visual: core.RectFromSize(row, 0, 1, w),
		LinkID: linkID,
		Flags:  FlagDecoration,
		Line:   lt,
	})
}

// emitWrapped appends one run per visual line of text and returns the
// row after the last one.
func (d *Document) emitWrapped(text string, off, indent, row int, lt LineType, linkID int) int {
	lines := wrap(text, d.width-indent)
	for i, span := range lines {
		seg := strings.TrimRight(text[span.Start:span.End], " ")
		w := textWidth(seg)
		r := Run{
			Text:   seg,
			Range:  span.Shift(off),
			Bounds: core.RectFromSize(row, indent, 1, w),
			Visual: core.RectFromSize(row, indent, 1, w),
			LinkID: linkID,
			Line:   lt,
		}
		if i == len(lines)-1 {
			r.Flags |= FlagEndsLine
		}
		d.appendRun(r)
		row++
	}
	return row
}

func (d *Document) appendRun(r Run) {
	r.Key = RunKey{Gen: d.gen, Index: len(d.runs)}
	d.runs = append(d.runs, r)
}

func (d *Document) closePre(i int) {
	d.pres[i].end = max(d.pres[i].end, d.pres[i].first)
}
