package layout

// BannerHeight is the number of rows a banner occupies.
const BannerHeight = 2

// Banner is the decorative block at the top of a document.
// It is one of SiteBanner or ErrorBanner.
type Banner interface {
	// Text returns the banner's single line of text.
	Text() string

	isBanner()
}

// SiteBanner shows the identity of the site being viewed.
type SiteBanner struct {
	Icon rune
	Host string
}

func (b SiteBanner) Text() string {
	if b.Icon == 0 {
		return b.Host
	}
	return string(b.Icon) + " " + b.Host
}

func (SiteBanner) isBanner() {}

// ErrorBanner heads a synthesized error page.
type ErrorBanner struct {
	Icon  rune
	Title string
}

func (b ErrorBanner) Text() string {
	if b.Icon == 0 {
		return b.Title
	}
	return string(b.Icon) + " " + b.Title
}

func (ErrorBanner) isBanner() {}
