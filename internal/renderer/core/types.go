// Package core provides shared types for the renderer subsystem.
// This package breaks import cycles between the view, the tile cache and
// the backend.
package core

import (
	"fmt"

	"github.com/rivo/uniseg"
)

// Attribute represents text attributes (bold, italic, etc.).
type Attribute uint16

// Text attribute flags.
const (
	AttrNone          Attribute = 0
	AttrBold          Attribute = 1 << iota
	AttrDim                     // Faint/dim text
	AttrItalic                  // Italic text
	AttrUnderline               // Underlined text
	AttrReverse                 // Reverse video (swap fg/bg)
	AttrStrikethrough           // Strikethrough text
)

// Has returns true if the attribute set contains the given attribute.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Color represents a color value.
// Supports true color (RGB) and terminal palette colors.
type Color struct {
	R, G, B uint8
	// If Indexed is true, R contains the palette index (0-255).
	Indexed bool
	// Default indicates this is the terminal's default color.
	Default bool
}

// ColorDefault represents the terminal's default color.
var ColorDefault = Color{Default: true}

// ColorFromRGB creates a true color from RGB components.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex creates an indexed palette color.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// IsDefault returns true if this is the default/transparent color.
func (c Color) IsDefault() bool {
	return c.Default
}

// Equals returns true if two colors are equal.
func (c Color) Equals(other Color) bool {
	if c.Default != other.Default {
		return false
	}
	if c.Default {
		return true
	}
	if c.Indexed != other.Indexed {
		return false
	}
	if c.Indexed {
		return c.R == other.R
	}
	return c.R == other.R && c.G == other.G && c.B == other.B
}

// String returns a string representation of the color.
func (c Color) String() string {
	if c.IsDefault() {
		return "default"
	}
	if c.Indexed {
		return fmt.Sprintf("idx(%d)", c.R)
	}
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Style represents the visual style of a cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the default terminal style.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// WithForeground returns a new style with the given foreground color.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns a new style with the given background color.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// With returns a new style with attrs added.
func (s Style) With(attrs Attribute) Style {
	s.Attributes |= attrs
	return s
}

// Equals returns true if two styles are identical.
func (s Style) Equals(other Style) bool {
	return s.Foreground.Equals(other.Foreground) &&
		s.Background.Equals(other.Background) &&
		s.Attributes == other.Attributes
}

// Cell represents a single terminal cell.
type Cell struct {
	// Rune is the character to display.
	Rune rune

	// Width is the display width of this cell.
	// Zero marks the trailing half of a wide character.
	Width int

	// Style is the visual style for this cell.
	Style Style
}

// EmptyCell returns a blank cell with default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Style: DefaultStyle()}
}

// BlankCell returns a blank cell painted with style.
func BlankCell(style Style) Cell {
	return Cell{Rune: ' ', Width: 1, Style: style}
}

// IsContinuation returns true if this is the trailing half of a wide character.
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Rune == 0
}

// Equals returns true if two cells are identical.
func (c Cell) Equals(other Cell) bool {
	return c.Rune == other.Rune &&
		c.Width == other.Width &&
		c.Style.Equals(other.Style)
}

// RuneWidth returns the display width of a rune.
func RuneWidth(r rune) int {
	if r < 32 || r == 0x7F {
		return 0
	}
	return uniseg.StringWidth(string(r))
}

// StringWidth returns the display width of s in cells.
func StringWidth(s string) int {
	return uniseg.StringWidth(s)
}

// CellsFromString creates cells from a string, one per grapheme cluster.
func CellsFromString(s string, style Style) []Cell {
	cells := make([]Cell, 0, len(s))
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		w := g.Width()
		if w == 0 {
			continue
		}
		cells = append(cells, Cell{Rune: runes[0], Width: w, Style: style})
		for i := 1; i < w; i++ {
			cells = append(cells, Cell{Style: style})
		}
	}
	return cells
}

// StringFromCells converts cells back to a string.
func StringFromCells(cells []Cell) string {
	runes := make([]rune, 0, len(cells))
	for _, c := range cells {
		if !c.IsContinuation() && c.Rune != 0 {
			runes = append(runes, c.Rune)
		}
	}
	return string(runes)
}

// Pos is a row/column position (0-indexed).
type Pos struct {
	Row int
	Col int
}

// Rect represents a rectangular region.
type Rect struct {
	Top    int // First row (inclusive)
	Left   int // First column (inclusive)
	Bottom int // Last row (exclusive)
	Right  int // Last column (exclusive)
}

// RectFromSize creates a rectangle from position and size.
func RectFromSize(top, left, height, width int) Rect {
	return Rect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

// Width returns the width of the rectangle.
func (r Rect) Width() int {
	if r.Right <= r.Left {
		return 0
	}
	return r.Right - r.Left
}

// Height returns the height of the rectangle.
func (r Rect) Height() int {
	if r.Bottom <= r.Top {
		return 0
	}
	return r.Bottom - r.Top
}

// IsEmpty returns true if the rectangle has no area.
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains returns true if pos is within the rectangle.
func (r Rect) Contains(pos Pos) bool {
	return pos.Row >= r.Top && pos.Row < r.Bottom &&
		pos.Col >= r.Left && pos.Col < r.Right
}

// Translate returns the rectangle moved by the given amounts.
func (r Rect) Translate(dRow, dCol int) Rect {
	return Rect{Top: r.Top + dRow, Left: r.Left + dCol, Bottom: r.Bottom + dRow, Right: r.Right + dCol}
}

// YSpan returns the rectangle's vertical extent.
func (r Rect) YSpan() Span {
	return Span{Start: r.Top, End: r.Bottom}
}

// Span is a half-open range [Start, End) along one axis.
type Span struct {
	Start int
	End   int
}

// Len returns the number of units covered.
func (s Span) Len() int {
	if s.End <= s.Start {
		return 0
	}
	return s.End - s.Start
}

// IsEmpty returns true if the span covers nothing.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Contains returns true if v lies inside the span.
func (s Span) Contains(v int) bool {
	return v >= s.Start && v < s.End
}

// Overlaps returns true if two spans share at least one unit.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Intersect returns the common part of two spans, or an empty span.
func (s Span) Intersect(other Span) Span {
	r := Span{Start: max(s.Start, other.Start), End: min(s.End, other.End)}
	if r.IsEmpty() {
		return Span{}
	}
	return r
}

// Shift returns the span moved by d.
func (s Span) Shift(d int) Span {
	return Span{Start: s.Start + d, End: s.End + d}
}

// String returns "[start,end)".
func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}
