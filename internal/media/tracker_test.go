package media

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/dshills/gemview/internal/anim"
	"github.com/dshills/gemview/internal/layout"
)

func audioRun(id int) layout.Run {
	return layout.Run{
		Key:       layout.RunKey{Gen: 1, Index: id},
		MediaID:   id,
		MediaType: layout.MediaAudio,
	}
}

func downloadRun(id int) layout.Run {
	return layout.Run{
		Key:       layout.RunKey{Gen: 1, Index: id},
		MediaID:   id,
		MediaType: layout.MediaDownload,
	}
}

func TestUpdateInterval(t *testing.T) {
	tests := []struct {
		name       string
		runs       []layout.Run
		playing    bool
		adjusting  bool
		foreground bool
		want       time.Duration
	}{
		{"nothing visible", nil, false, false, true, 0},
		{"stopped audio", []layout.Run{audioRun(1)}, false, false, true, 0},
		{"playing audio", []layout.Run{audioRun(1)}, true, false, true, AudioInterval},
		{"adjusting volume", []layout.Run{audioRun(1)}, false, true, true, AudioInterval},
		{"download", []layout.Run{downloadRun(2)}, false, false, true, DownloadInterval},
		{"minimum wins", []layout.Run{downloadRun(2), audioRun(1)}, true, false, true, AudioInterval},
		{"background", []layout.Run{audioRun(1)}, true, false, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(anim.NewManualClock(epoch), nil)
			p := tr.Player(1)
			if tt.playing {
				p.Start()
			}
			p.SetFlags(PlayerAdjustingVolume, tt.adjusting)
			tr.Collect(tt.runs)

			if got := tr.UpdateInterval(tt.foreground); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCollectSkipsImages(t *testing.T) {
	tr := NewTracker(anim.NewManualClock(epoch), nil)
	img := layout.Run{MediaID: 3, MediaType: layout.MediaImage}
	tr.Collect([]layout.Run{img, audioRun(1), {Text: "plain"}})

	if got := len(tr.Visible()); got != 1 {
		t.Errorf("expected 1 tracked run, got %d", got)
	}
}

func TestVolumeAdjustmentTimesOut(t *testing.T) {
	clock := anim.NewManualClock(epoch)
	tr := NewTracker(clock, nil)
	p := tr.Player(1)
	p.SetFlags(PlayerAdjustingVolume, true)
	tr.Collect([]layout.Run{audioRun(1)})

	clock.Advance(2 * time.Second)
	tr.Update(true)
	if p.Flags()&PlayerAdjustingVolume == 0 {
		t.Fatal("adjustment should persist within the timeout")
	}

	clock.Advance(2 * time.Second)
	changed := tr.Update(true)
	if p.Flags()&PlayerAdjustingVolume != 0 {
		t.Error("adjustment should end after the timeout")
	}
	if len(changed) != 1 {
		t.Errorf("expected the player run to be repainted, got %v", changed)
	}
}

func TestGrabbedVolumeStaysOpen(t *testing.T) {
	clock := anim.NewManualClock(epoch)
	tr := NewTracker(clock, nil)
	p := tr.Player(1)
	p.SetFlags(PlayerAdjustingVolume|PlayerVolumeGrabbed, true)
	tr.Collect([]layout.Run{audioRun(1)})

	clock.Advance(10 * time.Second)
	tr.Update(true)
	if p.Flags()&PlayerAdjustingVolume == 0 {
		t.Error("a grabbed slider should not close")
	}
}

func TestAnimateTimerLifecycle(t *testing.T) {
	var fired atomic.Int32
	tr := NewTracker(anim.NewManualClock(epoch), func() { fired.Add(1) })
	defer tr.Stop()

	tr.Collect([]layout.Run{downloadRun(2)})
	tr.Animate(true)
	if got := tr.TimerInterval(); got != DownloadInterval {
		t.Fatalf("expected download timer, got %v", got)
	}

	p := tr.Player(1)
	p.Start()
	tr.Collect([]layout.Run{downloadRun(2), audioRun(1)})
	tr.Animate(true)
	if got := tr.TimerInterval(); got != AudioInterval {
		t.Errorf("expected timer restarted at audio rate, got %v", got)
	}

	tr.Animate(false)
	if tr.TimerInterval() != 0 {
		t.Error("background view should have no timer")
	}

	tr.Collect(nil)
	tr.Animate(true)
	if tr.TimerInterval() != 0 {
		t.Error("no timer without visible media")
	}
}

func TestUpdateDropsIdleTimer(t *testing.T) {
	tr := NewTracker(anim.NewManualClock(epoch), func() {})
	p := tr.Player(1)
	p.Start()
	tr.Collect([]layout.Run{audioRun(1)})
	tr.Animate(true)

	p.Stop()
	tr.Update(true)
	if tr.TimerInterval() != 0 {
		t.Error("timer should stop once nothing plays")
	}
}

func TestPauseOthers(t *testing.T) {
	tr := NewTracker(anim.NewManualClock(epoch), nil)
	a, b := tr.Player(1), tr.Player(2)
	a.Start()
	b.Start()

	tr.PauseOthers(2)
	if !a.IsPaused() {
		t.Error("player 1 should be paused")
	}
	if b.IsPaused() {
		t.Error("player 2 keeps playing")
	}
}
