// Package visbuf implements the visible-buffer cache: a small set of
// fixed-height cell tiles that cover the visible part of a document.
//
// Tiles are placed on a grid in document coordinates. Scrolling keeps
// every tile that still overlaps the visible range and relocates the rest
// to the newly exposed rows, so only those rows have to be rendered again.
package visbuf

import (
	"sort"

	"github.com/dshills/gemview/internal/renderer/core"
)

// DefaultTileCount is used when Allocate is given no hint.
const DefaultTileCount = 4

// Target receives composited cells.
type Target interface {
	SetCell(x, y int, cell core.Cell)
}

// Tile is one cached cell surface.
type Tile struct {
	origin int       // document Y of the first row
	placed bool      // origin is meaningful
	valid  core.Span // document rows holding rendered content
	width  int
	height int
	cells  []core.Cell
}

// Origin returns the document Y of the tile's first row.
func (t *Tile) Origin() int {
	return t.origin
}

// Extent returns the document rows the tile is placed over.
func (t *Tile) Extent() core.Span {
	return core.Span{Start: t.origin, End: t.origin + t.height}
}

// Valid returns the rows that hold rendered content.
func (t *Tile) Valid() core.Span {
	return t.valid
}

// Placed returns true if the tile has been positioned.
func (t *Tile) Placed() bool {
	return t.placed
}

// Cell returns the cached cell at column x, document row y.
func (t *Tile) Cell(x, y int) core.Cell {
	r := y - t.origin
	if x < 0 || x >= t.width || r < 0 || r >= t.height {
		return core.Cell{}
	}
	return t.cells[r*t.width+x]
}

func (t *Tile) set(x, y int, cell core.Cell) {
	r := y - t.origin
	if x < 0 || x >= t.width || r < 0 || r >= t.height {
		return
	}
	t.cells[r*t.width+x] = cell
}

func (t *Tile) fillRows(rows core.Span, cell core.Cell) {
	rows = rows.Intersect(t.Extent())
	for y := rows.Start; y < rows.End; y++ {
		r := y - t.origin
		row := t.cells[r*t.width : (r+1)*t.width]
		for i := range row {
			row[i] = cell
		}
	}
}

// Buffer is the tile cache for one view. It is owned by that view and is
// not safe for concurrent use.
type Buffer struct {
	width      int
	height     int // viewport height the tiles were sized for
	tileHeight int
	tiles      []*Tile
	visible    core.Span
}

// New creates an unallocated buffer.
func New() *Buffer {
	return &Buffer{}
}

// IsAllocated returns true if tiles exist.
func (b *Buffer) IsAllocated() bool {
	return len(b.tiles) > 0
}

// Allocate creates tiles for a viewport of the given size. The tiles
// together cover one tile more than the viewport height. Calling Allocate
// again with the same arguments keeps the existing tiles.
func (b *Buffer) Allocate(width, height, tileCountHint int) {
	if tileCountHint <= 1 {
		tileCountHint = DefaultTileCount
	}
	width = max(width, 1)
	height = max(height, 1)
	tileHeight := (height + tileCountHint - 2) / (tileCountHint - 1)
	if b.IsAllocated() && b.width == width && b.height == height && len(b.tiles) == tileCountHint {
		return
	}
	b.width = width
	b.height = height
	b.tileHeight = max(tileHeight, 1)
	b.tiles = make([]*Tile, tileCountHint)
	for i := range b.tiles {
		b.tiles[i] = &Tile{
			width:  b.width,
			height: b.tileHeight,
			cells:  make([]core.Cell, b.width*b.tileHeight),
		}
	}
	b.visible = core.Span{}
}

// Dealloc releases all tiles.
func (b *Buffer) Dealloc() {
	b.tiles = nil
	b.visible = core.Span{}
}

// Size returns the tile width and the viewport height used at allocation.
func (b *Buffer) Size() (width, height int) {
	return b.width, b.height
}

// TileHeight returns the height of each tile in rows.
func (b *Buffer) TileHeight() int {
	return b.tileHeight
}

// Tiles returns the tiles in placement order.
func (b *Buffer) Tiles() []*Tile {
	out := make([]*Tile, len(b.tiles))
	copy(out, b.tiles)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].placed != out[j].placed {
			return out[i].placed
		}
		return out[i].origin < out[j].origin
	})
	return out
}

// Visible returns the range given to the last Reposition.
func (b *Buffer) Visible() core.Span {
	return b.visible
}

// gridOrigins returns the tile origins needed to cover vis, top first.
func (b *Buffer) gridOrigins(vis core.Span) []int {
	if vis.IsEmpty() || b.tileHeight <= 0 {
		return nil
	}
	start := floorDiv(vis.Start, b.tileHeight) * b.tileHeight
	var out []int
	for o := start; o < vis.End && len(out) < len(b.tiles); o += b.tileHeight {
		out = append(out, o)
	}
	return out
}

// Reposition moves tiles to cover vis. Tiles already sitting on a needed
// grid slot stay in place with their content; the others are moved to the
// uncovered slots and lose their valid range. It returns true if any tile
// was moved.
func (b *Buffer) Reposition(vis core.Span) bool {
	b.visible = vis
	needed := b.gridOrigins(vis)
	if len(needed) == 0 {
		return false
	}
	covered := make(map[int]bool, len(needed))
	wanted := make(map[int]bool, len(needed))
	for _, o := range needed {
		wanted[o] = true
	}
	var free []*Tile
	for _, t := range b.tiles {
		if t.placed && wanted[t.origin] && !covered[t.origin] {
			covered[t.origin] = true
			continue
		}
		free = append(free, t)
	}
	moved := false
	for _, o := range needed {
		if covered[o] {
			continue
		}
		if len(free) == 0 {
			break
		}
		t := free[0]
		free = free[1:]
		t.origin = o
		t.placed = true
		t.valid = core.Span{}
		covered[o] = true
		moved = true
	}
	// Off-screen tiles miss run updates, so their content cannot be trusted
	// when they scroll back in.
	for _, t := range free {
		t.placed = false
		t.valid = core.Span{}
	}
	return moved
}

// active returns the placed tiles overlapping the visible range, top first.
func (b *Buffer) active() []*Tile {
	var out []*Tile
	for _, t := range b.tiles {
		if t.placed && t.Extent().Overlaps(b.visible) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].origin < out[j].origin })
	return out
}

// InvalidRanges returns the document rows that must be rendered before
// compositing: for every tile over the visible range, the part of its
// extent that is not valid, limited to doc. Ranges are disjoint and sorted.
func (b *Buffer) InvalidRanges(doc core.Span) []core.Span {
	var out []core.Span
	for _, t := range b.active() {
		ext := t.Extent()
		for _, part := range subtract(ext, t.valid) {
			if r := part.Intersect(doc); !r.IsEmpty() {
				out = append(out, r)
			}
		}
	}
	return out
}

// NeedsClear returns the extents of visible tiles that hold no valid rows.
// Such tiles have to be cleared before anything is drawn on them.
func (b *Buffer) NeedsClear() []core.Span {
	var out []core.Span
	for _, t := range b.active() {
		if t.valid.IsEmpty() {
			out = append(out, t.Extent())
		}
	}
	return out
}

// Validate marks every visible tile as fully rendered.
func (b *Buffer) Validate() {
	for _, t := range b.active() {
		t.valid = t.Extent()
	}
}

// Invalidate forgets all rendered content without releasing tiles.
func (b *Buffer) Invalidate() {
	for _, t := range b.tiles {
		t.valid = core.Span{}
	}
}

// InvalidateFrom forgets rendered content at document row y and below.
func (b *Buffer) InvalidateFrom(y int) {
	for _, t := range b.tiles {
		if t.valid.End <= y {
			continue
		}
		t.valid.End = max(y, t.valid.Start)
		if t.valid.IsEmpty() {
			t.valid = core.Span{}
		}
	}
}

// SetCell draws a cell at column x of document row y. Cells outside the
// visible tiles are dropped.
func (b *Buffer) SetCell(x, y int, cell core.Cell) {
	for _, t := range b.tiles {
		if t.placed && t.Extent().Contains(y) {
			t.set(x, y, cell)
			return
		}
	}
}

// Cell returns the cached cell at column x of document row y.
func (b *Buffer) Cell(x, y int) (core.Cell, bool) {
	for _, t := range b.tiles {
		if t.placed && t.Extent().Contains(y) {
			return t.Cell(x, y), true
		}
	}
	return core.Cell{}, false
}

// FillRows fills whole document rows with cell in every tile covering them.
func (b *Buffer) FillRows(rows core.Span, cell core.Cell) {
	for _, t := range b.tiles {
		if t.placed {
			t.fillRows(rows, cell)
		}
	}
}

// FillRect fills the columns [left,right) of the given document rows.
func (b *Buffer) FillRect(rows core.Span, left, right int, cell core.Cell) {
	for _, t := range b.tiles {
		if !t.placed {
			continue
		}
		r := rows.Intersect(t.Extent())
		for y := r.Start; y < r.End; y++ {
			for x := max(left, 0); x < right && x < t.width; x++ {
				t.set(x, y, cell)
			}
		}
	}
}

// Composite copies the visible tiles onto dst. Document row y lands on
// screen row yTop+y and column x on left+x; rows outside clip (screen
// coordinates) are skipped. It returns the number of rows copied.
func (b *Buffer) Composite(dst Target, left, yTop int, clip core.Span) int {
	rows := 0
	for _, t := range b.active() {
		ext := t.Extent().Intersect(b.visible)
		for y := ext.Start; y < ext.End; y++ {
			sy := yTop + y
			if !clip.Contains(sy) {
				continue
			}
			r := y - t.origin
			row := t.cells[r*t.width : (r+1)*t.width]
			for x, c := range row {
				if c.IsContinuation() {
					continue
				}
				dst.SetCell(left+x, sy, c)
			}
			rows++
		}
	}
	return rows
}

// subtract returns the parts of a not covered by b.
func subtract(a, b core.Span) []core.Span {
	if a.IsEmpty() {
		return nil
	}
	inter := a.Intersect(b)
	if inter.IsEmpty() {
		return []core.Span{a}
	}
	var out []core.Span
	if inter.Start > a.Start {
		out = append(out, core.Span{Start: a.Start, End: inter.Start})
	}
	if inter.End < a.End {
		out = append(out, core.Span{Start: inter.End, End: a.End})
	}
	return out
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
