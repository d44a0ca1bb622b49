package document

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/gemview/internal/anim"
	"github.com/dshills/gemview/internal/config"
	"github.com/dshills/gemview/internal/event"
	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/history"
	"github.com/dshills/gemview/internal/layout"
	"github.com/dshills/gemview/internal/renderer/core"
	"github.com/dshills/gemview/internal/renderer/viewport"
)

var testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// fakeConn serves a canned response and discards the request line.
type fakeConn struct {
	*bytes.Reader
}

func (fakeConn) Write(p []byte) (int, error) { return len(p), nil }
func (fakeConn) Close() error                { return nil }

// fakeTransport maps request URLs to raw responses.
type fakeTransport map[string]string

func (f fakeTransport) Open(_ context.Context, u *url.URL) (io.ReadWriteCloser, gemini.CertInfo, error) {
	raw, ok := f[u.String()]
	if !ok {
		raw = "51 not here\r\n"
	}
	return fakeConn{bytes.NewReader([]byte(raw))}, gemini.CertInfo{Flags: gemini.CertAvailable}, nil
}

type testEnv struct {
	queue *event.Queue
	clock *anim.ManualClock
}

func newTestView(t *testing.T, opts ...func(*Env)) (*View, *testEnv) {
	t.Helper()
	te := &testEnv{queue: event.NewQueue(), clock: anim.NewManualClock(testStart)}
	prefs := config.Defaults()
	prefs.SmoothScrolling = false
	prefs.DownloadDir = t.TempDir()
	env := Env{
		Prefs: prefs,
		Queue: te.queue,
		Clock: te.clock,
	}
	for _, opt := range opts {
		opt(&env)
	}
	v := NewView("tab1", env)
	v.OnResize(core.Rect{Top: 0, Left: 0, Bottom: 24, Right: 80})
	t.Cleanup(v.Close)
	return v, te
}

func withTransport(tr gemini.Transport) func(*Env) {
	return func(e *Env) { e.Transport = tr }
}

// load feeds a response to the view as if it arrived from a request.
func load(v *View, rawURL string, status gemini.Status, meta, body string) {
	v.hist.Add(rawURL)
	v.setURL(rawURL)
	v.beginLoad()
	v.integrate(gemini.Response{Status: status, Meta: meta, Body: []byte(body)}, true)
}

// streamBody feeds body in chunks of n bytes, finishing with the whole body.
func streamBody(v *View, rawURL, meta, body string, n int) {
	v.setURL(rawURL)
	v.beginLoad()
	for i := 0; i < len(body); i += n {
		v.integrate(gemini.Response{Status: gemini.StatusSuccess, Meta: meta, Body: []byte(body[:i])}, false)
	}
	v.integrate(gemini.Response{Status: gemini.StatusSuccess, Meta: meta, Body: []byte(body)}, true)
}

func runTexts(d *layout.Document) []string {
	var out []string
	d.RenderRuns(core.Span{Start: 0, End: d.Height()}, func(r layout.Run) bool {
		out = append(out, r.Text)
		return true
	})
	return out
}

func drain(te *testEnv) []event.Command {
	return te.queue.Drain()
}

func findCommand(cmds []event.Command, tp string) (event.Command, bool) {
	for _, c := range cmds {
		if c.Topic.String() == tp {
			return c, true
		}
	}
	return event.Command{}, false
}

// dispatch hands queued commands to the view until none are left.
func dispatch(v *View, te *testEnv) []event.Command {
	var all []event.Command
	for {
		cmds := te.queue.Drain()
		if len(cmds) == 0 {
			return all
		}
		for _, c := range cmds {
			v.HandleCommand(c)
		}
		all = append(all, cmds...)
	}
}

func waitRequest(t *testing.T, r *gemini.Request) {
	t.Helper()
	select {
	case <-r.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("request did not finish")
	}
}

func TestShortSuccessPage(t *testing.T) {
	v, _ := newTestView(t)
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/gemini; charset=utf-8", "# Hello\n")

	if v.State() != StateReady {
		t.Errorf("expected ready, got %s", v.State())
	}
	if v.Document().Height() == 0 {
		t.Error("expected content")
	}
	if _, ok := v.Document().Banner().(layout.ErrorBanner); ok {
		t.Error("success page must not have an error banner")
	}
	if v.IsErrorPage() {
		t.Error("success page is not an error page")
	}
	v.OnScrollInput(10, false)
	if v.ScrollPos() != 0 {
		t.Errorf("expected scroll to clamp to 0, got %d", v.ScrollPos())
	}
}

func TestCrossSchemeRedirect(t *testing.T) {
	v, te := newTestView(t)
	load(v, "gemini://example.org/old", gemini.StatusRedirectTemporary, "https://example.com/", "")

	if v.State() != StateReady {
		t.Errorf("expected ready, got %s", v.State())
	}
	b, ok := v.Document().Banner().(layout.ErrorBanner)
	if !ok || b.Title != gemini.Describe(gemini.StatusSchemeChangeRedirect).Title {
		t.Errorf("expected scheme change page, got banner %+v", v.Document().Banner())
	}
	if !strings.Contains(v.Document().Source(), "https://example.com/") {
		t.Errorf("page should link the destination, got %q", v.Document().Source())
	}
	if _, ok := findCommand(drain(te), "open"); ok {
		t.Error("cross-scheme redirect must not navigate")
	}
}

func TestUnsupportedMIME(t *testing.T) {
	v, _ := newTestView(t)
	load(v, "gemini://example.org/blob", gemini.StatusSuccess, "application/octet-stream", "\x00\x01\x02")

	if v.State() != StateReady {
		t.Errorf("expected ready, got %s", v.State())
	}
	b, ok := v.Document().Banner().(layout.ErrorBanner)
	if !ok || b.Title != gemini.Describe(gemini.StatusUnsupportedMIMEType).Title {
		t.Errorf("expected unsupported type page, got %+v", v.Document().Banner())
	}
	if !strings.Contains(v.Document().Source(), "application/octet-stream") {
		t.Errorf("page should show the MIME type, got %q", v.Document().Source())
	}
}

func TestRedirectFollowsSameScheme(t *testing.T) {
	v, te := newTestView(t)
	load(v, "gemini://example.org/a", gemini.StatusRedirectPermanent, "/b", "")

	cmd, ok := findCommand(drain(te), "open")
	if !ok {
		t.Fatal("expected an open command")
	}
	if cmd.Target != v.ID() {
		t.Errorf("expected target %q, got %q", v.ID(), cmd.Target)
	}
	if got := cmd.ArgString("url"); got != "gemini://example.org/b" {
		t.Errorf("expected resolved destination, got %q", got)
	}
	if got := cmd.ArgInt("redirect"); got != 1 {
		t.Errorf("expected redirect 1, got %d", got)
	}
	vis, ok := v.env.Visited.Lookup("gemini://example.org/a")
	if !ok || vis.Flags&history.VisitTransient == 0 {
		t.Errorf("expected transient visit, got %+v", vis)
	}
}

func TestRedirectChainTerminates(t *testing.T) {
	v, te := newTestView(t)
	target := "gemini://example.org/0"
	redirects := 0
	for hop := 0; hop < 20; hop++ {
		v.redirectCount = redirects
		v.setURL(target)
		v.beginLoad()
		v.integrate(gemini.Response{
			Status: gemini.StatusRedirectTemporary,
			Meta:   "/next" + strings.Repeat("x", hop),
		}, true)
		cmd, ok := findCommand(drain(te), "open")
		if !ok {
			break
		}
		redirects = cmd.ArgInt("redirect")
		target = cmd.ArgString("url")
	}
	if redirects != MaxRedirects {
		t.Errorf("expected %d redirects to be followed, got %d", MaxRedirects, redirects)
	}
	b, ok := v.Document().Banner().(layout.ErrorBanner)
	if !ok || b.Title != gemini.Describe(gemini.StatusTooManyRedirects).Title {
		t.Errorf("expected too many redirects page, got %+v", v.Document().Banner())
	}
	if v.State() != StateReady {
		t.Errorf("expected ready, got %s", v.State())
	}
}

func TestEmptyRedirect(t *testing.T) {
	v, _ := newTestView(t)
	load(v, "gemini://example.org/", gemini.StatusRedirectTemporary, "", "")

	b, ok := v.Document().Banner().(layout.ErrorBanner)
	if !ok || b.Title != gemini.Describe(gemini.StatusInvalidRedirect).Title {
		t.Errorf("expected invalid redirect page, got %+v", v.Document().Banner())
	}
}

func TestFailurePages(t *testing.T) {
	tests := []struct {
		status gemini.Status
		want   gemini.Status
	}{
		{gemini.StatusNotFound, gemini.StatusNotFound},
		{49, gemini.StatusTemporaryFailure},
		{58, gemini.StatusPermanentFailure},
		{gemini.StatusFailedToOpenFile, gemini.StatusFailedToOpenFile},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			v, _ := newTestView(t)
			load(v, "gemini://example.org/", tt.status, "details", "")

			b, ok := v.Document().Banner().(layout.ErrorBanner)
			if !ok || b.Title != gemini.Describe(tt.want).Title {
				t.Errorf("expected %q page, got %+v", gemini.Describe(tt.want).Title, v.Document().Banner())
			}
			if !strings.Contains(v.Document().Source(), "details") {
				t.Errorf("expected meta on the page, got %q", v.Document().Source())
			}
		})
	}
}

func TestSlowDownPageShowsWait(t *testing.T) {
	v, _ := newTestView(t)
	load(v, "gemini://example.org/", gemini.StatusSlowDown, "30", "")

	b, ok := v.Document().Banner().(layout.ErrorBanner)
	if !ok || b.Title != gemini.Describe(gemini.StatusSlowDown).Title {
		t.Errorf("expected slow down page, got %+v", v.Document().Banner())
	}
	if want := "Wait 30 seconds before your next request."; !strings.Contains(v.Document().Source(), want) {
		t.Errorf("expected %q on the page, got %q", want, v.Document().Source())
	}
}

func TestRequestUpdatesCoalesce(t *testing.T) {
	v, te := newTestView(t)
	r := gemini.NewRequest("gemini://example.org/")

	v.onRequestUpdated(r)
	v.onRequestUpdated(r)
	v.onRequestUpdated(r)

	n := 0
	for _, c := range drain(te) {
		if c.Topic == event.TopicRequestUpdated {
			n++
		}
	}
	if n != 1 {
		t.Errorf("expected 1 queued update, got %d", n)
	}

	v.reqUpdated.Store(false)
	v.onRequestUpdated(r)
	if _, ok := findCommand(drain(te), event.TopicRequestUpdated.String()); !ok {
		t.Error("expected a new update once the last one was handled")
	}
}

func TestTLSFailureHasNoBanner(t *testing.T) {
	v, _ := newTestView(t)
	load(v, "gemini://example.org/", gemini.StatusTLSFailure, "connection refused", "")

	if v.Document().HasBanner() {
		t.Error("network failure page has no banner")
	}
	hs := v.Document().Headings()
	if len(hs) == 0 || !strings.Contains(hs[0].Text, gemini.Describe(gemini.StatusTLSFailure).Title) {
		t.Errorf("expected title heading, got %+v", hs)
	}
}

func TestInputPrompt(t *testing.T) {
	v, te := newTestView(t)
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/gemini", "# Before\n")
	drain(te)

	load(v, "gemini://example.org/search", gemini.StatusSensitiveInput, "Your secret?", "")

	cmd, ok := findCommand(drain(te), "input.prompt")
	if !ok {
		t.Fatal("expected an input prompt")
	}
	if cmd.ArgInt("sensitive") != 1 {
		t.Error("expected sensitive input")
	}
	if got := cmd.ArgString("prompt"); got != "Your secret?" {
		t.Errorf("expected prompt text, got %q", got)
	}
	if hs := v.Document().Headings(); len(hs) != 1 || hs[0].Text != "Before" {
		t.Errorf("input must not touch the document, got %+v", hs)
	}
}

func TestStreamingMatchesOneShot(t *testing.T) {
	tests := []struct {
		name string
		meta string
		body string
	}{
		{"gemtext", "text/gemini", "# Title\n\nSome paragraph text that is long enough to wrap at least once in the view.\n=> gemini://a/ Link\n```\npre\n```\n* é ü ö\n"},
		{"plain", "text/plain; charset=utf-8", "line one\nline two with ünïcödé\n\n# not a heading\n"},
		{"image", "image/png", "\x89PNG\r\n\x1a\nrest of the image data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			whole, _ := newTestView(t)
			streamBody(whole, "gemini://example.org/file", tt.meta, tt.body, len(tt.body)+1)

			chunked, _ := newTestView(t)
			streamBody(chunked, "gemini://example.org/file", tt.meta, tt.body, 3)

			if diff := cmp.Diff(runTexts(whole.Document()), runTexts(chunked.Document())); diff != "" {
				t.Errorf("runs differ (-whole +chunked):\n%s", diff)
			}
			if whole.Document().Height() != chunked.Document().Height() {
				t.Errorf("height %d vs %d", whole.Document().Height(), chunked.Document().Height())
			}
			if diff := cmp.Diff(whole.Document().Source(), chunked.Document().Source()); diff != "" {
				t.Errorf("source differs:\n%s", diff)
			}
			m1, ok1 := whole.Document().Media().Get(inlineMediaLink)
			m2, ok2 := chunked.Document().Media().Get(inlineMediaLink)
			if ok1 != ok2 {
				t.Fatalf("media registered %v vs %v", ok1, ok2)
			}
			if ok1 && (!bytes.Equal(m1.Data, m2.Data) || m1.Flags != m2.Flags) {
				t.Errorf("media differs: %d/%d bytes, flags %d/%d", len(m1.Data), len(m2.Data), m1.Flags, m2.Flags)
			}
		})
	}
}

func TestImageAttachedOnFirstChunk(t *testing.T) {
	v, _ := newTestView(t)
	v.setURL("gemini://example.org/cat.png")
	v.beginLoad()
	v.integrate(gemini.Response{Status: gemini.StatusSuccess, Meta: "image/png", Body: []byte("abc")}, false)

	m, ok := v.Document().Media().Get(inlineMediaLink)
	if !ok || !m.Partial() || string(m.Data) != "abc" {
		t.Fatalf("expected partial image after first chunk, got %+v", m)
	}
	v.integrate(gemini.Response{Status: gemini.StatusSuccess, Meta: "image/png", Body: []byte("abcdef")}, false)
	if m, _ := v.Document().Media().Get(inlineMediaLink); string(m.Data) != "abc" {
		t.Errorf("image must not change between first and last chunk, got %q", m.Data)
	}
	v.integrate(gemini.Response{Status: gemini.StatusSuccess, Meta: "image/png", Body: []byte("abcdefgh")}, true)
	if m, _ := v.Document().Media().Get(inlineMediaLink); m.Partial() || string(m.Data) != "abcdefgh" {
		t.Errorf("expected complete image, got %q partial=%v", m.Data, m.Partial())
	}
	if got := v.Document().LinkURL(inlineMediaLink); got != "gemini://example.org/cat.png" {
		t.Errorf("expected link to the image, got %q", got)
	}
}

func TestAudioUpdatedOnEveryChunk(t *testing.T) {
	v, _ := newTestView(t)
	v.setURL("gemini://example.org/song.ogg")
	v.beginLoad()
	for _, body := range []string{"a", "ab", "abc"} {
		v.integrate(gemini.Response{Status: gemini.StatusSuccess, Meta: "audio/ogg", Body: []byte(body)}, false)
		m, ok := v.Document().Media().Get(inlineMediaLink)
		if !ok || string(m.Data) != body {
			t.Fatalf("expected audio %q, got %+v", body, m)
		}
		if got := v.tracker.Player(inlineMediaLink).Size(); got != len(body) {
			t.Errorf("expected player size %d, got %d", len(body), got)
		}
	}
}

func TestIncompleteUTF8HeldBack(t *testing.T) {
	v, _ := newTestView(t)
	body := "caf\xc3\xa9\n"
	v.setURL("gemini://example.org/")
	v.beginLoad()
	v.integrate(gemini.Response{Status: gemini.StatusSuccess, Meta: "text/plain", Body: []byte(body[:4])}, false)
	if got := v.Document().Source(); got != "caf" {
		t.Errorf("expected partial rune held back, got %q", got)
	}
	v.integrate(gemini.Response{Status: gemini.StatusSuccess, Meta: "text/plain", Body: []byte(body)}, true)
	if got := v.Document().Source(); got != "café\n" {
		t.Errorf("expected full text, got %q", got)
	}
}

func TestCharsetIsTranscoded(t *testing.T) {
	v, _ := newTestView(t)
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/plain; charset=ISO-8859-1", "caf\xe9\n")

	if got := v.Document().Source(); got != "café\n" {
		t.Errorf("expected transcoded text, got %q", got)
	}
}

func TestJSONIsIndented(t *testing.T) {
	v, _ := newTestView(t)
	load(v, "gemini://example.org/data", gemini.StatusSuccess, "application/json", `{"a":1,"b":[2,3]}`)

	if v.Document().Format() != layout.FormatPlainText {
		t.Errorf("expected plain text, got %s", v.Document().Format())
	}
	if !strings.Contains(v.Document().Source(), "\n  \"a\": 1") {
		t.Errorf("expected indented JSON, got %q", v.Document().Source())
	}
}

func TestFinishCachesText(t *testing.T) {
	tests := []struct {
		url    string
		meta   string
		cached bool
	}{
		{"gemini://example.org/", "text/gemini", true},
		{"about:help", "text/gemini", false},
		{"gemini://example.org/pic.png", "image/png", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			v, _ := newTestView(t)
			load(v, tt.url, gemini.StatusSuccess, tt.meta, "# x\n")
			if got := v.History().CachedResponse() != nil; got != tt.cached {
				t.Errorf("expected cached=%v, got %v", tt.cached, got)
			}
		})
	}
}

func TestFetchAboutPage(t *testing.T) {
	v, te := newTestView(t)
	v.Fetch("about:help")
	req := v.req
	if req == nil {
		t.Fatal("expected a request")
	}
	waitRequest(t, req)
	cmds := dispatch(v, te)

	if v.State() != StateReady {
		t.Fatalf("expected ready, got %s", v.State())
	}
	if v.IsLoading() {
		t.Error("request should be released")
	}
	hs := v.Document().Headings()
	if len(hs) == 0 || hs[0].Text != "Help" {
		t.Errorf("expected help heading, got %+v", hs)
	}
	if _, ok := findCommand(cmds, "document.changed"); !ok {
		t.Error("expected document.changed")
	}
}

func TestFetchOverTransport(t *testing.T) {
	tr := fakeTransport{
		"gemini://example.org/":    "31 /new\r\n",
		"gemini://example.org/new": "20 text/gemini\r\n# Moved here\nbody\n",
	}
	v, te := newTestView(t, withTransport(tr))
	v.Fetch("gemini://example.org/")
	for i := 0; i < 3 && v.req != nil; i++ {
		waitRequest(t, v.req)
		dispatch(v, te)
	}

	if v.URL() != "gemini://example.org/new" {
		t.Errorf("expected redirect to be followed, got %q", v.URL())
	}
	if v.History().Len() != 1 {
		t.Errorf("redirect should replace the history item, got %d items", v.History().Len())
	}
	if v.RedirectCount() != 1 {
		t.Errorf("expected redirect count 1, got %d", v.RedirectCount())
	}
	if hs := v.Document().Headings(); len(hs) != 1 || hs[0].Text != "Moved here" {
		t.Errorf("unexpected headings %+v", hs)
	}
	if !v.CertFlags().Has(gemini.CertAvailable) {
		t.Error("expected certificate flags from the transport")
	}

	v.Fetch("gemini://example.org/new")
	if v.RedirectCount() != 0 {
		t.Errorf("user navigation resets the redirect count, got %d", v.RedirectCount())
	}
	waitRequest(t, v.req)
	dispatch(v, te)
}

func TestStaleNotificationsIgnored(t *testing.T) {
	v, te := newTestView(t)
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/gemini", "# One\n")
	drain(te)

	stale := event.NewCommand(event.TopicRequestFinished, v.ID(), "request:%s", "00000000-0000-0000-0000-000000000000")
	if !v.HandleCommand(stale) {
		t.Error("view should accept its own topic")
	}
	if hs := v.Document().Headings(); len(hs) != 1 || hs[0].Text != "One" {
		t.Errorf("stale notification changed the document: %+v", hs)
	}
	other := event.NewCommand(event.TopicRequestFinished, "tab2", "")
	if v.HandleCommand(other) {
		t.Error("command for another view must be ignored")
	}
}

func TestStopBeforeData(t *testing.T) {
	v, te := newTestView(t)
	v.setURL("gemini://example.org/")
	v.beginLoad()
	v.req = gemini.NewRequest("gemini://example.org/")
	drain(te)

	if !v.Stop() {
		t.Fatal("expected a request to stop")
	}
	if v.State() != StateReady {
		t.Errorf("expected ready, got %s", v.State())
	}
	if _, ok := findCommand(drain(te), "navigate.back"); !ok {
		t.Error("expected navigate.back")
	}
	if v.Stop() {
		t.Error("nothing left to stop")
	}
}

func TestBackAndForwardUseCache(t *testing.T) {
	v, _ := newTestView(t)
	load(v, "gemini://example.org/a", gemini.StatusSuccess, "text/gemini", "# A\n")
	load(v, "gemini://example.org/b", gemini.StatusSuccess, "text/gemini", "# B\n")

	if !v.GoBack() {
		t.Fatal("expected to go back")
	}
	if v.URL() != "gemini://example.org/a" || v.State() != StateReady {
		t.Errorf("expected cached page a, got %q in state %s", v.URL(), v.State())
	}
	if hs := v.Document().Headings(); len(hs) != 1 || hs[0].Text != "A" {
		t.Errorf("unexpected headings %+v", hs)
	}
	if !v.GoForward() {
		t.Fatal("expected to go forward")
	}
	if hs := v.Document().Headings(); len(hs) != 1 || hs[0].Text != "B" {
		t.Errorf("unexpected headings %+v", hs)
	}
}

func TestDuplicateCopiesHistory(t *testing.T) {
	v, _ := newTestView(t)
	load(v, "gemini://example.org/a", gemini.StatusSuccess, "text/gemini", "# A\n")

	d := v.Duplicate("tab2")
	defer d.Close()

	if d.ID() != "tab2" || d.URL() != v.URL() {
		t.Errorf("unexpected duplicate %q %q", d.ID(), d.URL())
	}
	if d.Document() == v.Document() {
		t.Error("duplicate must not share the document")
	}
	d.History().Add("gemini://example.org/other")
	if v.History().Len() != 1 {
		t.Error("duplicate must not share the history")
	}
	if hs := d.Document().Headings(); len(hs) != 1 || hs[0].Text != "A" {
		t.Errorf("duplicate should show the cached page, got %+v", hs)
	}
}

func TestScrollToHeadingWaitsForLoad(t *testing.T) {
	v, _ := newTestView(t)
	var body strings.Builder
	for i := 0; i < 100; i++ {
		body.WriteString("filler line\n")
	}
	body.WriteString("## Target\n")
	for i := 0; i < 100; i++ {
		body.WriteString("more filler\n")
	}
	v.setURL("gemini://example.org/")
	v.beginLoad()
	if v.ScrollToHeading("target") {
		t.Error("heading cannot be reached before the page is ready")
	}
	v.integrate(gemini.Response{Status: gemini.StatusSuccess, Meta: "text/gemini", Body: []byte(body.String())}, true)

	h, ok := v.CurrentVisibleHeading()
	if !ok || h.Text != "Target" {
		t.Errorf("expected Target in view, got %+v ok=%v", h, ok)
	}
	if v.ScrollPos() == 0 {
		t.Error("expected the view to scroll")
	}
}

func TestSmoothScrollTicksUntilFinished(t *testing.T) {
	v, te := newTestView(t, func(e *Env) {
		e.Prefs.SmoothScrolling = true
		e.Prefs.SmoothDurationMS = 100
	})
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/plain", strings.Repeat("line\n", 200))

	v.OnScrollInput(2, false)
	if !v.IsAnimating() {
		t.Fatal("expected a tick to be registered")
	}
	te.clock.Advance(50 * time.Millisecond)
	v.env.Ticker.Run()
	if !v.IsAnimating() {
		t.Error("tick should re-register while the animation runs")
	}
	te.clock.Advance(100 * time.Millisecond)
	v.env.Ticker.Run()
	if v.IsAnimating() {
		t.Error("tick should stop once the animation finished")
	}
	if v.ScrollPos() != 2*StepRows {
		t.Errorf("expected scroll %d, got %d", 2*StepRows, v.ScrollPos())
	}
}

func TestResizeKeepsAnchorVisible(t *testing.T) {
	v, _ := newTestView(t)
	var body strings.Builder
	for i := 0; i < 200; i++ {
		body.WriteString("word word word word word word word word word word word word word word\n")
	}
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/gemini", body.String())
	v.OnScrollInput(100, true)
	anchor, _, ok := v.scrollAnchor(false)
	if !ok {
		t.Fatal("expected an anchor run")
	}

	v.OnResize(core.Rect{Top: 0, Left: 0, Bottom: 24, Right: 50})

	r, ok := v.Document().FindRunAtByteOffset(anchor)
	if !ok {
		t.Fatal("anchor lost")
	}
	if vis := v.visibleRange(); !vis.Contains(r.Visual.Top) {
		t.Errorf("anchor row %d not in view %s", r.Visual.Top, vis)
	}
}

func TestWheelHorizontalOverWideBlock(t *testing.T) {
	v, _ := newTestView(t)
	long := strings.Repeat("0123456789", 20)
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/gemini", "```\n"+long+"\n```\n")
	rows, keys, maxW, ok := v.Document().PreBlock(1)
	if !ok {
		t.Fatal("expected a preformatted block")
	}
	b := v.documentBounds()
	y := b.Top + rows.Start - v.ScrollPos()

	if !v.OnWheelHorizontal(10, b.Left+1, y) {
		t.Fatal("expected the block to scroll")
	}
	if got := v.WideOffset(1); got != 10 {
		t.Errorf("expected offset 10, got %d", got)
	}
	for _, k := range keys {
		if !v.dirty.Contains(k) {
			t.Errorf("run %s should be dirty", k)
		}
	}
	v.OnWheelHorizontal(100000, b.Left+1, y)
	maxOff := viewport.MaxOffset(v.metrics(), maxW, v.Document().Width())
	if got := v.WideOffset(1); got != maxOff {
		t.Errorf("expected offset clamped to %d, got %d", maxOff, got)
	}
	if v.OnWheelHorizontal(5, b.Left+1, b.Bottom+5) {
		t.Error("no block below the document")
	}
}

func TestFindWraps(t *testing.T) {
	v, _ := newTestView(t)
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/plain", "Alpha beta\nalpha gamma\n")

	if !v.Find("alpha", true) || v.FoundRange().Start != 0 {
		t.Fatalf("expected first match at 0, got %s", v.FoundRange())
	}
	if !v.Find("alpha", true) || v.FoundRange().Start != 11 {
		t.Errorf("expected second match at 11, got %s", v.FoundRange())
	}
	if !v.Find("alpha", true) || v.FoundRange().Start != 0 {
		t.Errorf("expected wrap to 0, got %s", v.FoundRange())
	}
	if !v.Find("alpha", false) || v.FoundRange().Start != 11 {
		t.Errorf("expected backward wrap to 11, got %s", v.FoundRange())
	}
	if v.Find("delta", true) {
		t.Error("no match expected")
	}
	if !v.FoundRange().IsEmpty() {
		t.Error("failed search clears the highlight")
	}
}

func TestSelectionText(t *testing.T) {
	v, _ := newTestView(t)
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/plain", "hello world!\n")
	r, _ := v.Document().FindRunAtByteOffset(0)
	b := v.documentBounds()
	y := b.Top + r.Visual.Top - v.ScrollPos()

	x := b.Left + r.Visual.Left
	if !v.BeginSelection(x+6, y) {
		t.Fatal("expected selection to start on text")
	}
	v.ExtendSelection(x+11, y)
	v.EndSelection()
	if got := v.SelectedText(); got != "world" {
		t.Errorf("expected \"world\", got %q", got)
	}
}

// loadWide loads a page with two preformatted blocks wider than the view
// and returns the screen row of block id.
func loadWide(t *testing.T, v *View) func(id int) int {
	t.Helper()
	long := strings.Repeat("0123456789", 20)
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/gemini",
		"```\n"+long+"\n```\nbetween\n```\n"+long+"\n```\n")
	return func(id int) int {
		rows, _, _, ok := v.Document().PreBlock(id)
		if !ok {
			t.Fatalf("expected preformatted block %d", id)
		}
		return v.documentBounds().Top + rows.Start - v.ScrollPos()
	}
}

func TestWideScrollResets(t *testing.T) {
	tests := []struct {
		name  string
		reset func(v *View, rowOf func(int) int)
	}{
		{"selection", func(v *View, rowOf func(int) int) {
			v.BeginSelection(v.documentBounds().Left+1, rowOf(2))
		}},
		{"find", func(v *View, _ func(int) int) {
			v.Find("between", true)
		}},
		{"reload", func(v *View, _ func(int) int) {
			long := strings.Repeat("0123456789", 20)
			v.beginLoad()
			v.integrate(gemini.Response{Status: gemini.StatusSuccess, Meta: "text/gemini", Body: []byte("```\n" + long + "\n```\n")}, true)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newTestView(t)
			rowOf := loadWide(t, v)
			if !v.OnWheelHorizontal(10, v.documentBounds().Left+1, rowOf(1)) {
				t.Fatal("expected the block to scroll")
			}

			tt.reset(v, rowOf)

			if got := v.WideOffset(1); got != 0 {
				t.Errorf("expected offset 0, got %d", got)
			}
		})
	}
}

func TestWideScrollSwitchRedrawsPreviousBlock(t *testing.T) {
	v, te := newTestView(t, func(e *Env) {
		e.Prefs.SmoothScrolling = true
		e.Prefs.SmoothDurationMS = 400
	})
	rowOf := loadWide(t, v)
	x := v.documentBounds().Left + 1
	v.Paint(newGrid())

	if !v.OnWheelHorizontal(40, x, rowOf(1)) {
		t.Fatal("expected block 1 to scroll")
	}
	te.clock.Advance(200 * time.Millisecond)
	v.env.Ticker.Run()
	v.Paint(newGrid())
	if off := v.WideOffset(1); off <= 0 || off >= 40 {
		t.Fatalf("expected block 1 mid-flight, got %d", off)
	}

	if !v.OnWheelHorizontal(10, x, rowOf(2)) {
		t.Fatal("expected block 2 to scroll")
	}
	te.clock.Advance(time.Second)
	v.env.Ticker.Run()
	cached := newGrid()
	v.Paint(cached)

	v.vis.Invalidate()
	fresh := newGrid()
	v.Paint(fresh)

	if diff := cmp.Diff(fresh.text(v.Bounds()), cached.text(v.Bounds())); diff != "" {
		t.Errorf("cached frame differs from a full redraw (-want +got):\n%s", diff)
	}
}

func TestWideScrollClearsMarks(t *testing.T) {
	v, _ := newTestView(t)
	rowOf := loadWide(t, v)
	x := v.documentBounds().Left + 1

	if !v.Find("between", true) {
		t.Fatal("expected a match")
	}
	r, ok := v.Document().FindRunAtByteOffset(strings.Index(v.Document().Source(), "between"))
	if !ok {
		t.Fatal("expected a text run")
	}
	sx, sy := screenPos(v, r)
	if !v.BeginSelection(sx, sy) {
		t.Fatal("expected selection to start on text")
	}
	v.ExtendSelection(sx+5, sy)
	v.EndSelection()
	if v.SelectedText() == "" {
		t.Fatal("expected selected text")
	}

	if !v.OnWheelHorizontal(10, x, rowOf(1)) {
		t.Fatal("expected the block to scroll")
	}
	if !v.FoundRange().IsEmpty() {
		t.Errorf("expected find match cleared, got %s", v.FoundRange())
	}
	if got := v.SelectedText(); got != "" {
		t.Errorf("expected selection cleared, got %q", got)
	}
}
