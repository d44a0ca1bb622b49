package media

import (
	"sync"
	"time"

	"github.com/dshills/gemview/internal/anim"
	"github.com/dshills/gemview/internal/layout"
)

// Refresh intervals.
const (
	AudioInterval    = time.Second / 15
	DownloadInterval = time.Second

	// VolumeIdleTimeout ends volume adjustment after no interaction.
	VolumeIdleTimeout = 3 * time.Second
)

// Tracker knows the players and downloads of one document and which of
// them are currently visible. It owns the refresh timer, which exists only
// while the view is in the foreground and a visible medium needs polling.
type Tracker struct {
	clock anim.Clock
	post  func()

	players   map[int]*Player
	downloads map[int]*Download
	visible   []layout.Run

	mu    sync.Mutex
	timer *Timer
}

// NewTracker creates a tracker. post is called on the timer goroutine at
// each refresh and must only hand off to the UI loop.
func NewTracker(clock anim.Clock, post func()) *Tracker {
	return &Tracker{
		clock:     clock,
		post:      post,
		players:   make(map[int]*Player),
		downloads: make(map[int]*Download),
	}
}

// Player returns the player for mediaID, creating it on first use.
func (t *Tracker) Player(mediaID int) *Player {
	p, ok := t.players[mediaID]
	if !ok {
		p = NewPlayer(t.clock)
		t.players[mediaID] = p
	}
	return p
}

// HasPlayer returns true if a player exists for mediaID.
func (t *Tracker) HasPlayer(mediaID int) bool {
	_, ok := t.players[mediaID]
	return ok
}

// Download returns the download for mediaID, if any.
func (t *Tracker) Download(mediaID int) (*Download, bool) {
	d, ok := t.downloads[mediaID]
	return d, ok
}

// StartDownload registers a download for mediaID.
func (t *Tracker) StartDownload(mediaID int, url string) *Download {
	d := NewDownload(url, t.clock.Now())
	t.downloads[mediaID] = d
	return d
}

// PauseOthers pauses every player except mediaID.
func (t *Tracker) PauseOthers(mediaID int) {
	for id, p := range t.players {
		if id != mediaID {
			p.SetPaused(true)
		}
	}
}

// Clear forgets all media and stops the timer.
func (t *Tracker) Clear() {
	clear(t.players)
	clear(t.downloads)
	t.visible = t.visible[:0]
	t.Stop()
}

// Collect records the visible runs that anchor audio players or downloads.
func (t *Tracker) Collect(runs []layout.Run) {
	t.visible = t.visible[:0]
	for _, r := range runs {
		if r.MediaID != 0 && (r.MediaType == layout.MediaAudio || r.MediaType == layout.MediaDownload) {
			t.visible = append(t.visible, r)
		}
	}
}

// Visible returns the collected runs.
func (t *Tracker) Visible() []layout.Run {
	return t.visible
}

// UpdateInterval returns how often the visible media need repainting, or
// zero if none do or the view is in the background.
func (t *Tracker) UpdateInterval(foreground bool) time.Duration {
	if !foreground {
		return 0
	}
	var interval time.Duration
	pick := func(d time.Duration) {
		if interval == 0 || d < interval {
			interval = d
		}
	}
	for _, r := range t.visible {
		switch r.MediaType {
		case layout.MediaAudio:
			p, ok := t.players[r.MediaID]
			if ok && (p.Flags()&PlayerAdjustingVolume != 0 || p.IsPlaying()) {
				pick(AudioInterval)
			}
		case layout.MediaDownload:
			pick(DownloadInterval)
		}
	}
	return interval
}

// Update runs on each refresh. Players left in volume adjustment without
// interaction leave it, and the timer is dropped once nothing needs it.
// It returns the keys of runs whose controls changed.
func (t *Tracker) Update(foreground bool) []layout.RunKey {
	var changed []layout.RunKey
	if foreground {
		for _, r := range t.visible {
			if r.MediaType != layout.MediaAudio {
				continue
			}
			p, ok := t.players[r.MediaID]
			if !ok {
				continue
			}
			if p.IdleTime() > VolumeIdleTimeout &&
				p.Flags()&PlayerVolumeGrabbed == 0 &&
				p.Flags()&PlayerAdjustingVolume != 0 {
				p.SetFlags(PlayerAdjustingVolume, false)
			}
			changed = append(changed, r.Key)
		}
		for _, r := range t.visible {
			if r.MediaType == layout.MediaDownload {
				changed = append(changed, r.Key)
			}
		}
	}
	if t.UpdateInterval(foreground) == 0 {
		t.Stop()
	}
	return changed
}

// Animate creates the refresh timer if the visible media need one. In the
// background the timer is removed.
func (t *Tracker) Animate(foreground bool) {
	if !foreground {
		t.Stop()
		return
	}
	interval := t.UpdateInterval(foreground)
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil && (interval == 0 || t.timer.Interval() != interval) {
		t.timer.Stop()
		t.timer = nil
	}
	if interval > 0 && t.timer == nil && t.post != nil {
		t.timer = StartTimer(interval, t.post)
	}
}

// TimerInterval returns the running timer's period, or zero.
func (t *Tracker) TimerInterval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil {
		return 0
	}
	return t.timer.Interval()
}

// Stop removes the refresh timer.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
