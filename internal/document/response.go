package document

import (
	"fmt"
	"strings"

	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/layout"
	"github.com/dshills/gemview/internal/media"
	"github.com/dshills/gemview/internal/renderer/theme"
)

// inlineMediaLink is the link ID of the implicit link shown for an image or
// audio response.
const inlineMediaLink = 1

var siteIcons = []rune("🌍🌲🌊🔥🌙🍀🌸🌵🐚🍄🪐🦉")

func siteIcon(host string) rune {
	return siteIcons[int(theme.Hue(host))%len(siteIcons)]
}

// updateBanner shows the site banner for the current URL.
func (v *View) updateBanner() {
	v.updateTheme(false)
	host := gemini.Host(v.url)
	if host == "" {
		v.doc.SetBanner(nil)
		return
	}
	v.doc.SetBanner(layout.SiteBanner{Icon: siteIcon(host), Host: host})
}

// updateDocument lays out the body received so far. It is run for every
// update of a successful response and may see the same bytes again.
func (v *View) updateDocument(initial, finished bool) {
	if v.state == StateReady {
		return
	}
	resp := &v.resp
	format := layout.FormatUndefined
	charset := "utf-8"
	isJSON := false
	isMedia := false
	isAudio := false
	mediaMIME := ""
	for _, param := range strings.Split(resp.Meta, ";") {
		param = strings.ToLower(strings.TrimSpace(param))
		switch {
		case param == gemini.MIMEGemini:
			format = layout.FormatGemini
		case strings.HasPrefix(param, "text/"):
			format = layout.FormatPlainText
		case param == "application/json":
			format = layout.FormatPlainText
			isJSON = true
		case strings.HasPrefix(param, "image/"), strings.HasPrefix(param, "audio/"):
			format = layout.FormatGemini
			isMedia = true
			isAudio = strings.HasPrefix(param, "audio/")
			mediaMIME = param
		case strings.HasPrefix(param, "charset="):
			charset = strings.Trim(strings.TrimPrefix(param, "charset="), `"'`)
		}
	}
	if format == layout.FormatUndefined {
		v.showErrorPage(gemini.StatusUnsupportedMIMEType, resp.Meta)
		return
	}

	v.doc.SetFormat(format)
	width := v.documentWidth()
	relaid := false
	switch {
	case isMedia && (initial || finished):
		// The image is attached once, then completed when the request
		// finishes. Audio is also attached on the first chunk.
		title := gemini.BaseName(v.url)
		if title == "" {
			title = "Image"
			if isAudio {
				title = "Audio"
			}
		}
		relaid = v.doc.SetSource(fmt.Sprintf("=> %s %s\n", v.url, title), width)
		v.attachInlineMedia(mediaMIME, isAudio, finished)
	case isAudio:
		v.attachInlineMedia(mediaMIME, true, finished)
	case isMedia:
		// Images are not updated between the first and the last chunk.
	default:
		text := decodeText(resp.Body, charset, finished)
		if isJSON && finished {
			text = prettyJSON(resp.Body, text)
		}
		relaid = v.doc.SetSource(text, width)
	}
	if relaid || v.doc.Generation() != v.layoutGen {
		v.afterLayout()
	}
	v.needsPaint = true
}

func (v *View) attachInlineMedia(mime string, isAudio, finished bool) {
	body := v.resp.Body
	if body == nil {
		body = []byte{}
	}
	var flags layout.MediaFlags
	if !finished {
		flags = layout.MediaPartial
	}
	change := v.doc.SetMediaData(inlineMediaLink, mime, body, flags)
	v.mediaChanged(inlineMediaLink, change)
	if isAudio {
		v.tracker.Player(inlineMediaLink).SetData(mime, len(body), !finished)
	}
}

// showErrorPage replaces the document with a page describing code. meta
// is shown with the page; for redirects it is the destination URL.
func (v *View) showErrorPage(code gemini.Status, meta string) {
	info := gemini.Describe(code)
	icon := info.Icon
	if icon == 0 {
		icon = gemini.DefaultErrorIcon
	}
	var src strings.Builder
	if code == gemini.StatusTLSFailure {
		fmt.Fprintf(&src, "# %c %s\n", icon, info.Title)
	}
	if info.Info != "" {
		src.WriteString(info.Info + "\n")
	}
	if meta != "" {
		switch code {
		case gemini.StatusSchemeChangeRedirect, gemini.StatusTooManyRedirects:
			fmt.Fprintf(&src, "\n=> %s\n", meta)
		case gemini.StatusSlowDown:
			fmt.Fprintf(&src, "\nWait %s seconds before your next request.\n", meta)
		case gemini.StatusUnsupportedMIMEType:
			fmt.Fprintf(&src, "\n```\n%s\n```\n", meta)
			if n := len(v.resp.Body); n > 0 {
				fmt.Fprintf(&src, "The content (%s) can be saved to the downloads directory.\n", media.FormatSize(n))
			}
		default:
			fmt.Fprintf(&src, "\n> %s\n", meta)
		}
	}

	v.doc.Reset()
	if code == gemini.StatusTLSFailure {
		v.doc.SetBanner(nil)
	} else {
		v.doc.SetBanner(layout.ErrorBanner{Icon: icon, Title: info.Title})
	}
	v.doc.SetFormat(layout.FormatGemini)
	v.doc.SetSource(src.String(), v.documentWidth())
	v.errorPage = true
	v.scroll.Reset()
	v.wide.Reset()
	v.afterLayout()
	v.state = StateReady
	v.needsPaint = true
	v.env.Log.Debug("error page %s for %s", code, v.url)
}

// afterLayout brings the tile cache and dirty set in line with the
// document after it was laid out again.
func (v *View) afterLayout() {
	if gen := v.doc.Generation(); gen != v.layoutGen {
		v.layoutGen = gen
		v.vis.Invalidate()
		v.dirty.Drop(gen)
	} else {
		v.vis.InvalidateFrom(v.doc.ChangedFrom())
	}
	v.updateScrollMax()
	v.needsPaint = true
}
