package config

import (
	"os"
	"path/filepath"
)

// Limits applied by Validate.
const (
	MinZoom       = 50
	MaxZoom       = 200
	MinLineWidth  = 40
	MaxLineWidth  = 200
	MaxPageMargin = 10
)

// Prefs are the user preferences that shape how documents are shown.
type Prefs struct {
	// LineWidth is the maximum line length in characters.
	LineWidth int `toml:"line_width" yaml:"line_width"`

	// ZoomPercent scales the line width.
	ZoomPercent int `toml:"zoom" yaml:"zoom"`

	// PageMargin is the margin around the document in gap units.
	PageMargin int `toml:"page_margin" yaml:"page_margin"`

	SmoothScrolling  bool `toml:"smooth_scrolling" yaml:"smooth_scrolling"`
	SmoothDurationMS int  `toml:"smooth_duration_ms" yaml:"smooth_duration_ms"`

	// CenterShortDocs vertically centers documents shorter than the view.
	CenterShortDocs bool `toml:"center_short_docs" yaml:"center_short_docs"`

	// HoverLink shows the URL of the hovered link at the bottom.
	HoverLink bool `toml:"hover_link" yaml:"hover_link"`

	DownloadDir string `toml:"download_dir" yaml:"download_dir"`

	// Theme seeds the palette. Empty derives it from the site host.
	Theme string `toml:"theme" yaml:"theme"`
	Dark  bool   `toml:"dark" yaml:"dark"`

	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// Defaults returns the built-in preferences.
func Defaults() Prefs {
	return Prefs{
		LineWidth:        100,
		ZoomPercent:      100,
		PageMargin:       2,
		SmoothScrolling:  true,
		SmoothDurationMS: 600,
		DownloadDir:      defaultDownloadDir(),
		Dark:             true,
		LogLevel:         "info",
	}
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, "Downloads")
}

// Validate clamps every value into its legal range.
func (p *Prefs) Validate() {
	p.ZoomPercent = clamp(p.ZoomPercent, MinZoom, MaxZoom)
	p.LineWidth = clamp(p.LineWidth, MinLineWidth, MaxLineWidth)
	p.PageMargin = clamp(p.PageMargin, 0, MaxPageMargin)
	if p.SmoothDurationMS < 0 {
		p.SmoothDurationMS = 0
	}
	if p.DownloadDir == "" {
		p.DownloadDir = defaultDownloadDir()
	}
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
