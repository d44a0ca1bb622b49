package document

import (
	"strings"
	"sync/atomic"

	"github.com/dshills/gemview/internal/event"
	"github.com/dshills/gemview/internal/event/topic"
	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/history"
	"github.com/dshills/gemview/internal/layout"
	"github.com/dshills/gemview/internal/media"
	"github.com/dshills/gemview/internal/renderer/core"
	"github.com/dshills/gemview/internal/renderer/dirty"
	"github.com/dshills/gemview/internal/renderer/theme"
	"github.com/dshills/gemview/internal/renderer/viewport"
	"github.com/dshills/gemview/internal/renderer/visbuf"
)

// MaxRedirects is the length of the longest automatic redirect chain.
const MaxRedirects = 5

// View shows one document in a tab. All methods must be called from the UI
// loop; request goroutines only post commands addressed to the view.
type View struct {
	id  string
	env Env

	state State
	url   string
	hist  *history.History

	doc       *layout.Document
	theme     *theme.Theme
	themeDark bool
	bounds    core.Rect
	left      int // document left edge within the view, set while painting
	scroll    *viewport.Scroller
	wide      *viewport.WideScroll
	vis       *visbuf.Buffer
	dirty     *dirty.RunSet
	layoutGen uint32

	tracker   *media.Tracker
	mediaReqs *media.Requests

	req        *gemini.Request
	reqUpdated atomic.Bool
	resp       gemini.Response
	certFlags  gemini.CertFlags

	redirectCount   int
	initNormScrollY float64
	reload          ReloadInterval
	pendingHeading  string
	errorPage       bool

	hoverLink   int
	linkNumbers bool
	found       core.Span
	selection   core.Span
	selecting   bool
	foreground  bool
	needsPaint  bool
}

// NewView creates an empty view. id is the command target of the view.
func NewView(id string, env Env) *View {
	env.fill()
	v := &View{
		id:         id,
		env:        env,
		hist:       history.New(),
		doc:        layout.NewDocument(),
		scroll:     viewport.NewScroller(env.Clock),
		wide:       viewport.NewWideScroll(env.Clock),
		vis:        visbuf.New(),
		dirty:      dirty.NewRunSet(),
		mediaReqs:  media.NewRequests(),
		foreground: true,
	}
	v.tracker = media.NewTracker(env.Clock, func() {
		v.post(event.TopicMediaRefresh, "")
	})
	v.scroll.SetSmooth(env.Prefs.SmoothScrolling)
	v.layoutGen = v.doc.Generation()
	v.updateTheme(true)
	return v
}

// ID returns the command target of the view.
func (v *View) ID() string { return v.id }

// URL returns the current URL.
func (v *View) URL() string { return v.url }

// State returns the load state.
func (v *View) State() State { return v.state }

// Document returns the laid-out document.
func (v *View) Document() *layout.Document { return v.doc }

// History returns the navigation history.
func (v *View) History() *history.History { return v.hist }

// Response returns the response being shown.
func (v *View) Response() gemini.Response { return v.resp }

// CertFlags returns the certificate flags of the current response.
func (v *View) CertFlags() gemini.CertFlags { return v.certFlags }

// RedirectCount returns the number of automatic redirects that led to the
// current URL.
func (v *View) RedirectCount() int { return v.redirectCount }

// ReloadInterval returns the automatic reload interval.
func (v *View) ReloadInterval() ReloadInterval { return v.reload }

// SetReloadInterval sets the automatic reload interval.
func (v *View) SetReloadInterval(r ReloadInterval) { v.reload = r }

// IsErrorPage returns true while a synthesized error page is shown.
func (v *View) IsErrorPage() bool { return v.errorPage }

// NeedsPaint returns true if something changed since the last Paint.
func (v *View) NeedsPaint() bool { return v.needsPaint }

func (v *View) post(t topic.Topic, format string, a ...any) {
	if v.env.Queue == nil {
		return
	}
	if err := v.env.Queue.Postf(t, v.id, format, a...); err != nil {
		v.env.Log.Debug("post %s: %v", t, err)
	}
}

func (v *View) setURL(url string) {
	v.url = url
	v.doc.SetURL(url)
}

// Fetch navigates to url as a fresh user navigation.
func (v *View) Fetch(url string) {
	v.Open(url, 0)
}

// Open navigates to url. redirects is the number of automatic redirects
// that led here; a redirect replaces the current history item.
func (v *View) Open(url string, redirects int) {
	if v.url != "" {
		url = gemini.AbsoluteURL(v.url, url)
	}
	v.saveScrollPos()
	if redirects > 0 {
		v.hist.ReplaceURL(url)
	} else {
		v.hist.Add(url)
	}
	v.redirectCount = redirects
	v.initNormScrollY = 0
	v.setURL(url)
	v.env.Visited.Visit(url, v.env.Clock.Now(), 0)
	v.fetch()
}

func (v *View) saveScrollPos() {
	if v.state == StateReady && v.hist.Len() > 0 {
		v.hist.SetNormScrollY(float32(v.scroll.NormPos(v.doc.Height())))
	}
}

func (v *View) releaseRequest() {
	if v.req != nil {
		v.req.Cancel()
		v.req = nil
	}
}

// beginLoad resets the per-load state. The redirect count is kept.
func (v *View) beginLoad() {
	v.releaseRequest()
	v.post(event.TopicRequestStarted, "url:%s", v.url)
	v.mediaReqs.Clear()
	v.tracker.Clear()
	v.certFlags = 0
	v.state = StateFetching
	v.reqUpdated.Store(false)
	v.found = core.Span{}
	v.selection = core.Span{}
	v.hoverLink = 0
}

func (v *View) fetch() {
	v.beginLoad()
	opts := []gemini.RequestOption{
		gemini.WithNotify(v.onRequestUpdated, v.onRequestFinished),
		gemini.WithTimeFunc(v.env.Clock.Now),
	}
	if v.env.Transport != nil {
		opts = append(opts, gemini.WithTransport(v.env.Transport))
	}
	v.req = gemini.NewRequest(gemini.StripFragment(v.url), opts...)
	v.env.Log.Debug("fetch %s request=%s", v.url, v.req.ID())
	v.req.Submit(v.env.Context)
}

// onRequestUpdated runs on the request goroutine. At most one update
// notification is queued at a time.
func (v *View) onRequestUpdated(r *gemini.Request) {
	if !v.reqUpdated.Swap(true) {
		v.post(event.TopicRequestUpdated, "request:%s", r.ID())
	}
}

func (v *View) onRequestFinished(r *gemini.Request) {
	v.post(event.TopicRequestFinished, "request:%s", r.ID())
}

func (v *View) isCurrent(cmd event.Command) bool {
	if v.req == nil {
		return false
	}
	id, _ := cmd.Arg("request")
	return id == v.req.ID().String()
}

// HandleCommand processes a command addressed to the view. It returns
// false for commands the view does not handle.
func (v *View) HandleCommand(cmd event.Command) bool {
	if cmd.Target != v.id {
		return false
	}
	switch cmd.Topic {
	case event.TopicRequestUpdated:
		if v.isCurrent(cmd) {
			v.reqUpdated.Store(false)
			v.integrate(v.req.Snapshot(), false)
		}
	case event.TopicRequestFinished:
		if v.isCurrent(cmd) {
			v.integrate(v.req.Snapshot(), true)
		}
	case event.TopicOpen:
		url := cmd.ArgString("url")
		if url == "" {
			return false
		}
		v.Open(url, cmd.ArgInt("redirect"))
	case event.TopicNavigateBack:
		v.GoBack()
	case event.TopicMediaUpdated:
		v.mediaUpdated(cmd, false)
	case event.TopicMediaFinished:
		v.mediaUpdated(cmd, true)
	case event.TopicMediaRefresh:
		v.refreshMedia()
	default:
		return false
	}
	return true
}

// integrate applies a snapshot of the current response.
func (v *View) integrate(resp gemini.Response, finished bool) {
	v.resp = resp
	if !v.checkResponse(finished) {
		return
	}
	if finished {
		v.finish()
	}
	v.needsPaint = true
}

// checkResponse advances the load state. It returns false if the request
// was released because of a redirect.
func (v *View) checkResponse(finished bool) bool {
	switch v.state {
	case StateFetching:
		v.state = StatePartialReceived
		v.certFlags = v.resp.CertFlags
		switch v.resp.Status.Category() {
		case gemini.CategoryInput:
			sensitive := 0
			if v.resp.Status == gemini.StatusSensitiveInput {
				sensitive = 1
			}
			v.post(event.TopicInputPrompt, "sensitive:%d url:%s prompt:%s", sensitive, v.url, v.resp.Meta)
		case gemini.CategorySuccess:
			v.errorPage = false
			v.scroll.Reset()
			v.wide.Reset()
			v.doc.Reset()
			v.updateBanner()
			v.updateDocument(true, finished)
		case gemini.CategoryRedirect:
			v.redirect(v.resp.Meta)
			return false
		default:
			v.showErrorPage(gemini.ErrorPageStatus(v.resp.Status), v.resp.Meta)
		}
	case StatePartialReceived:
		if v.resp.Status.IsSuccess() {
			v.updateDocument(false, finished)
		}
	}
	return true
}

func (v *View) redirect(meta string) {
	dest := strings.TrimSpace(meta)
	switch {
	case dest == "":
		v.showErrorPage(gemini.StatusInvalidRedirect, "")
	case v.redirectCount >= MaxRedirects:
		v.showErrorPage(gemini.StatusTooManyRedirects, gemini.AbsoluteURL(v.url, dest))
	default:
		dest = gemini.AbsoluteURL(v.url, dest)
		if gemini.Scheme(dest) != gemini.Scheme(v.url) {
			v.showErrorPage(gemini.StatusSchemeChangeRedirect, dest)
			break
		}
		v.env.Visited.Visit(v.url, v.env.Clock.Now(), history.VisitTransient)
		v.post(event.TopicOpen, "redirect:%d url:%s", v.redirectCount+1, dest)
	}
	v.releaseRequest()
}

func (v *View) finish() {
	v.updateScrollMax()
	v.scroll.SetNormPos(v.initNormScrollY, v.doc.Height())
	v.initNormScrollY = 0
	v.state = StateReady
	if !gemini.IsAbout(v.url) && strings.HasPrefix(v.resp.MIME(), "text/") {
		v.hist.SetCachedResponse(&v.resp)
	}
	v.releaseRequest()
	v.updateVisible()
	v.post(event.TopicDocumentChanged, "url:%s", v.url)
	if h := v.pendingHeading; h != "" {
		v.pendingHeading = ""
		v.ScrollToHeading(h)
	}
}

// Stop cancels the current request. A load that has not finished leaves
// the view showing what it received; if nothing arrived yet the view goes
// back in history. It returns false if no request was in progress.
func (v *View) Stop() bool {
	if v.req == nil {
		return false
	}
	v.releaseRequest()
	if v.state != StateReady {
		received := v.state == StatePartialReceived
		v.state = StateReady
		if !received {
			v.post(event.TopicNavigateBack, "")
		}
	}
	v.needsPaint = true
	return true
}

// IsLoading returns true while a request is in progress.
func (v *View) IsLoading() bool {
	return v.req != nil
}

// Reload fetches the current URL again, keeping the scroll position.
func (v *View) Reload() {
	if v.url == "" {
		return
	}
	v.initNormScrollY = v.scroll.NormPos(v.doc.Height())
	v.fetch()
}

// GoBack shows the previous history item.
func (v *View) GoBack() bool {
	v.saveScrollPos()
	if !v.hist.GoBack() {
		return false
	}
	v.UpdateFromHistory()
	return true
}

// GoForward shows the next history item.
func (v *View) GoForward() bool {
	v.saveScrollPos()
	if !v.hist.GoForward() {
		return false
	}
	v.UpdateFromHistory()
	return true
}

// UpdateFromHistory shows the current history item, from its cached
// response when there is one.
func (v *View) UpdateFromHistory() {
	item, ok := v.hist.Current()
	if !ok {
		return
	}
	v.setURL(item.URL)
	v.redirectCount = 0
	v.initNormScrollY = float64(item.NormScrollY)
	if item.Cached == nil {
		v.fetch()
		return
	}
	v.beginLoad()
	v.integrate(*item.Cached.Copy(), true)
}

// Duplicate creates a view with a copy of the history showing the same
// item. The rendering state is not shared.
func (v *View) Duplicate(id string) *View {
	v.saveScrollPos()
	d := NewView(id, v.env)
	d.hist = v.hist.Copy()
	d.reload = v.reload
	d.bounds = v.bounds
	d.UpdateFromHistory()
	return d
}

// Close releases the request, timers and media of the view.
func (v *View) Close() {
	v.releaseRequest()
	v.mediaReqs.Clear()
	v.tracker.Stop()
	v.env.Ticker.Remove(v)
	v.vis.Dealloc()
}
