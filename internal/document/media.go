package document

import (
	"time"

	"github.com/google/uuid"

	"github.com/dshills/gemview/internal/event"
	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/layout"
	"github.com/dshills/gemview/internal/media"
	"github.com/dshills/gemview/internal/renderer/dirty"
)

// audioStartSize is how much audio must arrive before playback starts.
const audioStartSize = 16 * 1024

// volumeStep is the change of one volume adjustment.
const volumeStep = 0.1

// RequestMedia fetches the target of link linkID to show it inline.
// Content that is neither image nor audio is saved to the download
// directory. It returns false if the link is unknown or already being
// fetched.
func (v *View) RequestMedia(linkID int) bool {
	target := v.doc.LinkURL(linkID)
	if target == "" {
		return false
	}
	if _, ok := v.mediaReqs.Find(linkID); ok {
		return false
	}
	url := gemini.AbsoluteURL(v.url, target)
	var mr *media.Request
	opts := []gemini.RequestOption{
		gemini.WithNotify(
			func(r *gemini.Request) {
				if mr.MarkUpdated() {
					v.post(event.TopicMediaUpdated, "link:%d request:%s", linkID, r.ID())
				}
			},
			func(r *gemini.Request) {
				v.post(event.TopicMediaFinished, "link:%d request:%s", linkID, r.ID())
			},
		),
		gemini.WithTimeFunc(v.env.Clock.Now),
	}
	if v.env.Transport != nil {
		opts = append(opts, gemini.WithTransport(v.env.Transport))
	}
	req := gemini.NewRequest(gemini.StripFragment(url), opts...)
	mr, _ = v.mediaReqs.Add(linkID, url, req)
	v.env.Log.Debug("media request link=%d url=%s", linkID, url)
	req.Submit(v.env.Context)
	return true
}

// IsRequestingMedia returns true while link linkID is being fetched.
func (v *View) IsRequestingMedia(linkID int) bool {
	_, ok := v.mediaReqs.Find(linkID)
	return ok
}

func (v *View) mediaUpdated(cmd event.Command, finished bool) {
	arg, _ := cmd.Arg("request")
	id, err := uuid.Parse(arg)
	if err != nil {
		return
	}
	mr, ok := v.mediaReqs.FindByID(id)
	if !ok {
		return
	}
	mr.ClearUpdated()
	resp := mr.Req.Snapshot()
	if !resp.Status.IsSuccess() {
		if finished {
			v.mediaReqs.Remove(mr.LinkID)
			v.post(event.TopicMessage, "text:%s: %s", resp.Status, mr.URL)
		}
		return
	}
	body := resp.Body
	if body == nil {
		body = []byte{}
	}
	mime := resp.MIME()
	var flags layout.MediaFlags
	if !finished {
		flags = layout.MediaPartial
	}
	switch layout.MediaTypeForMIME(mime) {
	case layout.MediaImage:
		if finished {
			v.mediaChanged(mr.LinkID, v.doc.SetMediaData(mr.LinkID, mime, body, 0))
		}
	case layout.MediaAudio:
		v.mediaChanged(mr.LinkID, v.doc.SetMediaData(mr.LinkID, mime, body, flags))
		p := v.tracker.Player(mr.LinkID)
		p.SetData(mime, len(body), !finished)
		if !p.IsStarted() && (finished || len(body) >= audioStartSize) {
			v.tracker.PauseOthers(mr.LinkID)
			p.Start()
			v.post(event.TopicMediaPlayerStart, "link:%d", mr.LinkID)
		}
	default:
		d, ok := v.tracker.Download(mr.LinkID)
		if !ok {
			d = v.tracker.StartDownload(mr.LinkID, mr.URL)
		}
		d.Update(mime, len(body), finished)
		v.mediaChanged(mr.LinkID, v.doc.SetMediaData(mr.LinkID, mime, body, flags))
		if finished {
			v.saveDownload(mr.URL, mime, body)
		}
	}
	if finished {
		v.mediaReqs.Remove(mr.LinkID)
	}
	v.updateVisible()
	v.needsPaint = true
}

func (v *View) saveDownload(url, mime string, body []byte) {
	path, err := saveFile(v.env.Prefs.DownloadDir, fileName(url, mime), body)
	if err != nil {
		v.env.Log.Warn("save download %s: %v", url, err)
		v.post(event.TopicMessage, "text:Error saving file: %v", err)
		return
	}
	v.post(event.TopicMessage, "text:Downloaded %s (%s)", path, media.FormatSize(len(body)))
}

// mediaChanged updates the caches after media data of linkID was set.
func (v *View) mediaChanged(linkID int, change layout.MediaChange) {
	switch change {
	case layout.MediaAdded, layout.MediaRemoved:
		if v.doc.Generation() != v.layoutGen {
			v.afterLayout()
		}
	case layout.MediaUpdated:
		v.markMediaDirty(linkID)
	}
}

func (v *View) markMediaDirty(linkID int) {
	v.doc.RenderRuns(v.visibleRange(), func(r layout.Run) bool {
		if r.MediaID == linkID {
			v.dirty.Insert(r.Key, dirty.ReasonMedia)
		}
		return true
	})
}

// updateVisible records the visible media runs and starts or stops the
// refresh timer accordingly.
func (v *View) updateVisible() {
	v.tracker.Collect(v.doc.VisibleRuns(v.visibleRange()))
	v.tracker.Animate(v.foreground)
}

func (v *View) refreshMedia() {
	keys := v.tracker.Update(v.foreground)
	if len(keys) == 0 {
		return
	}
	v.dirty.InsertAll(keys, dirty.ReasonMedia)
	v.needsPaint = true
}

// TogglePlayer starts, pauses or resumes the player of media linkID.
func (v *View) TogglePlayer(linkID int) bool {
	if !v.tracker.HasPlayer(linkID) {
		return false
	}
	p := v.tracker.Player(linkID)
	switch {
	case !p.IsStarted():
		p.Start()
	default:
		p.SetPaused(!p.IsPaused())
	}
	if p.IsPlaying() {
		v.tracker.PauseOthers(linkID)
	}
	v.markMediaDirty(linkID)
	v.updateVisible()
	v.needsPaint = true
	return true
}

// AdjustVolume changes the volume of player linkID by steps and shows the
// volume control until it has been idle for a while.
func (v *View) AdjustVolume(linkID, steps int) bool {
	if !v.tracker.HasPlayer(linkID) {
		return false
	}
	p := v.tracker.Player(linkID)
	p.SetFlags(media.PlayerAdjustingVolume, true)
	p.SetVolume(p.Volume() + float64(steps)*volumeStep)
	v.markMediaDirty(linkID)
	v.updateVisible()
	v.needsPaint = true
	return true
}

// SetForeground tells the view whether its tab is shown. A background view
// releases its tile cache and media timer.
func (v *View) SetForeground(fg bool) {
	if fg == v.foreground {
		return
	}
	v.foreground = fg
	if !fg {
		v.vis.Dealloc()
		v.env.Ticker.Remove(v)
	}
	v.tracker.Animate(fg)
	v.needsPaint = fg
}

// IsForeground returns true if the view's tab is shown.
func (v *View) IsForeground() bool { return v.foreground }

// MediaTimerInterval returns the period of the media refresh timer, or
// zero when none is running.
func (v *View) MediaTimerInterval() time.Duration {
	return v.tracker.TimerInterval()
}
