package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/layout"
)

// fetchMedia activates link id and dispatches commands until its request
// is done.
func fetchMedia(t *testing.T, v *View, te *testEnv, id int) {
	t.Helper()
	if !v.ActivateLink(id) {
		t.Fatalf("link %d not activated", id)
	}
	mr, ok := v.mediaReqs.Find(id)
	if !ok {
		t.Fatalf("no media request for link %d", id)
	}
	waitRequest(t, mr.Req)
	dispatch(v, te)
}

func TestInlineImage(t *testing.T) {
	tr := fakeTransport{
		"gemini://example.org/cat.png": "20 image/png\r\n\x89PNGdata",
	}
	v, te := newTestView(t, withTransport(tr))
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/gemini", "=> cat.png A cat\n")
	h := v.Document().Height()

	fetchMedia(t, v, te, 1)

	if v.IsRequestingMedia(1) {
		t.Error("request should be removed when finished")
	}
	m, ok := v.Document().Media().Get(1)
	if !ok || string(m.Data) != "\x89PNGdata" || m.Partial() {
		t.Fatalf("expected complete image, got %+v", m)
	}
	if !v.Document().LinkFlags(1).Has(layout.LinkHasMedia) {
		t.Error("link should have media")
	}
	if v.Document().Height() <= h {
		t.Errorf("media should add rows, height %d -> %d", h, v.Document().Height())
	}

	if !v.ActivateLink(1) {
		t.Fatal("expected the image to be hidden")
	}
	if _, ok := v.Document().Media().Get(1); ok {
		t.Error("media should be removed")
	}
	if v.Document().Height() != h {
		t.Errorf("expected height %d after removal, got %d", h, v.Document().Height())
	}
}

func TestInlineAudioStartsPlaying(t *testing.T) {
	tr := fakeTransport{
		"gemini://example.org/song.ogg": "20 audio/ogg\r\n" + strings.Repeat("x", 100),
	}
	v, te := newTestView(t, withTransport(tr))
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/gemini", "=> song.ogg Song\n")

	fetchMedia(t, v, te, 1)

	if !v.tracker.HasPlayer(1) {
		t.Fatal("expected a player")
	}
	p := v.tracker.Player(1)
	if !p.IsPlaying() || p.IsPartial() || p.Size() != 100 {
		t.Errorf("expected a complete playing player, got playing=%v partial=%v size=%d", p.IsPlaying(), p.IsPartial(), p.Size())
	}
	if v.MediaTimerInterval() == 0 {
		t.Error("a playing visible player needs the refresh timer")
	}

	if !v.ActivateLink(1) {
		t.Fatal("expected the player to toggle")
	}
	if !p.IsPaused() {
		t.Error("second activation pauses")
	}
	if !v.AdjustVolume(1, -2) {
		t.Fatal("expected the volume to change")
	}
	if got := p.Volume(); got < 0.79 || got > 0.81 {
		t.Errorf("expected volume 0.8, got %f", got)
	}
}

func TestMediaRequestFailure(t *testing.T) {
	v, te := newTestView(t, withTransport(fakeTransport{}))
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/gemini", "=> missing.png Gone\n")

	fetchMedia(t, v, te, 1)

	if _, ok := v.Document().Media().Get(1); ok {
		t.Error("failed request must not add media")
	}
	if v.IsRequestingMedia(1) {
		t.Error("failed request should be removed")
	}
}

func TestDownloadIsSaved(t *testing.T) {
	tr := fakeTransport{
		"gemini://example.org/archive.zip": "20 application/zip\r\nPK\x03\x04",
	}
	v, te := newTestView(t, withTransport(tr))
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/gemini", "=> archive.zip Archive\n")
	drain(te)

	if !v.RequestMedia(1) {
		t.Fatal("expected a media request")
	}
	if v.RequestMedia(1) {
		t.Error("a link is fetched only once at a time")
	}
	mr, _ := v.mediaReqs.Find(1)
	waitRequest(t, mr.Req)
	cmds := dispatch(v, te)

	data, err := os.ReadFile(filepath.Join(v.env.Prefs.DownloadDir, "archive.zip"))
	if err != nil {
		t.Fatalf("expected the file to be saved: %v", err)
	}
	if string(data) != "PK\x03\x04" {
		t.Errorf("unexpected file content %q", data)
	}
	msg, ok := findCommand(cmds, "message.show")
	if !ok || !strings.HasPrefix(msg.ArgString("text"), "Downloaded ") {
		t.Errorf("expected a download message, got %+v", msg)
	}
	if d, ok := v.tracker.Download(1); !ok || d.Received != 4 {
		t.Errorf("expected download progress, got %+v", d)
	}
}

func TestNavigationCancelsMedia(t *testing.T) {
	v, _ := newTestView(t, withTransport(fakeTransport{}))
	load(v, "gemini://example.org/", gemini.StatusSuccess, "text/gemini", "=> a.png A\n")
	v.RequestMedia(1)

	load(v, "gemini://example.org/next", gemini.StatusSuccess, "text/gemini", "# Next\n")
	if v.IsRequestingMedia(1) {
		t.Error("a new load must cancel media requests")
	}
}
