// Package theme derives the document palette from a seed string such as the
// site host, so that each capsule gets its own recognizable colors.
package theme

import (
	"hash/fnv"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/gemview/internal/layout"
	"github.com/dshills/gemview/internal/renderer/core"
)

// Palette roles.
type Role int

const (
	RoleBackground Role = iota
	RoleText
	RoleHeading1
	RoleHeading2
	RoleHeading3
	RoleLink
	RoleLinkHover
	RoleRemoteLink
	RoleQuote
	RolePreformatted
	RoleBanner
	RoleBannerIcon
	RoleBannerBackground
	RoleSelection
	RoleFound
	RoleMediaControl
	roleCount
)

// Theme maps palette roles to colors.
type Theme struct {
	seed   string
	hue    float64
	dark   bool
	colors [roleCount]core.Color
}

// New builds a palette for seed. An empty seed gives a neutral gray theme.
func New(seed string, dark bool) *Theme {
	t := &Theme{seed: seed, dark: dark}
	t.hue = Hue(seed)
	t.build()
	return t
}

// Hue returns the base hue in degrees for seed.
func Hue(seed string) float64 {
	if seed == "" {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return float64(h.Sum32() % 360)
}

// Seed returns the seed the theme was built from.
func (t *Theme) Seed() string {
	return t.seed
}

// BaseHue returns the hue derived from the seed.
func (t *Theme) BaseHue() float64 {
	return t.hue
}

// Color returns the color assigned to role.
func (t *Theme) Color(r Role) core.Color {
	if r < 0 || r >= roleCount {
		return core.ColorDefault
	}
	return t.colors[r]
}

func (t *Theme) build() {
	chroma := 0.35
	if t.seed == "" {
		chroma = 0
	}
	light := func(dark, bright float64) float64 {
		if t.dark {
			return dark
		}
		return bright
	}
	set := func(r Role, hueShift, c, l float64) {
		t.colors[r] = fromColorful(colorful.Hcl(math.Mod(t.hue+hueShift+360, 360), c, l))
	}

	set(RoleBackground, 0, chroma*0.15, light(0.12, 0.97))
	set(RoleText, 0, chroma*0.1, light(0.85, 0.2))
	set(RoleHeading1, 0, chroma, light(0.8, 0.35))
	set(RoleHeading2, 30, chroma*0.8, light(0.75, 0.4))
	set(RoleHeading3, 60, chroma*0.6, light(0.7, 0.45))
	set(RoleLink, 180, chroma+0.2, light(0.7, 0.45))
	set(RoleLinkHover, 180, chroma+0.3, light(0.85, 0.3))
	set(RoleRemoteLink, 220, chroma+0.2, light(0.65, 0.5))
	set(RoleQuote, 0, chroma*0.3, light(0.65, 0.45))
	set(RolePreformatted, 90, chroma*0.4, light(0.8, 0.3))
	set(RoleBanner, 0, chroma, light(0.75, 0.4))
	set(RoleBannerIcon, 0, chroma+0.2, light(0.8, 0.35))
	set(RoleBannerBackground, 0, chroma*0.25, light(0.18, 0.92))
	set(RoleSelection, 180, chroma*0.5, light(0.3, 0.85))
	set(RoleFound, 60, 0.5, light(0.4, 0.85))
	set(RoleMediaControl, 180, chroma+0.1, light(0.6, 0.5))
}

func fromColorful(c colorful.Color) core.Color {
	r, g, b := c.Clamped().RGB255()
	return core.ColorFromRGB(r, g, b)
}

// Style returns the style used to draw a run of the given line type.
func (t *Theme) Style(lt layout.LineType) core.Style {
	s := core.DefaultStyle().
		WithForeground(t.colors[RoleText]).
		WithBackground(t.colors[RoleBackground])
	switch lt {
	case layout.LineHeading1:
		return s.WithForeground(t.colors[RoleHeading1]).With(core.AttrBold)
	case layout.LineHeading2:
		return s.WithForeground(t.colors[RoleHeading2]).With(core.AttrBold)
	case layout.LineHeading3:
		return s.WithForeground(t.colors[RoleHeading3])
	case layout.LineLink:
		return s.WithForeground(t.colors[RoleLink])
	case layout.LineQuote:
		return s.WithForeground(t.colors[RoleQuote]).With(core.AttrItalic)
	case layout.LinePreformatted:
		return s.WithForeground(t.colors[RolePreformatted])
	case layout.LineBanner:
		return s.WithForeground(t.colors[RoleBanner]).
			WithBackground(t.colors[RoleBannerBackground]).With(core.AttrBold)
	case layout.LineMedia:
		return s.WithForeground(t.colors[RoleMediaControl])
	default:
		return s
	}
}

// LinkStyle returns the style of a link run.
func (t *Theme) LinkStyle(remote, hover bool) core.Style {
	s := t.Style(layout.LineLink)
	if remote {
		s = s.WithForeground(t.colors[RoleRemoteLink])
	}
	if hover {
		s = s.WithForeground(t.colors[RoleLinkHover]).With(core.AttrUnderline)
	}
	return s
}

// Fill returns the blank cell used to clear document areas.
func (t *Theme) Fill() core.Cell {
	return core.BlankCell(t.Style(layout.LineText))
}

// Blend mixes two colors in Lab space; f=0 gives a.
func Blend(a, b core.Color, f float64) core.Color {
	ca := colorful.Color{R: float64(a.R) / 255, G: float64(a.G) / 255, B: float64(a.B) / 255}
	cb := colorful.Color{R: float64(b.R) / 255, G: float64(b.G) / 255, B: float64(b.B) / 255}
	return fromColorful(ca.BlendLab(cb, f))
}
