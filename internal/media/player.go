// Package media tracks inline audio players and downloads anchored to
// document runs, and drives the refresh timer while any of them needs it.
package media

import (
	"time"

	"github.com/dshills/gemview/internal/anim"
)

// PlayerFlags describe the interactive state of a player.
type PlayerFlags uint8

// Player flags.
const (
	PlayerAdjustingVolume PlayerFlags = 1 << iota
	PlayerVolumeGrabbed
)

// Player is the state of one inline audio player. Decoding and output are
// not modelled; the player tracks what its controls show.
type Player struct {
	clock anim.Clock

	mime     string
	size     int
	partial  bool
	started  bool
	paused   bool
	volume   float64
	flags    PlayerFlags
	lastUsed time.Time

	playedBefore time.Duration // accumulated while not paused
	resumedAt    time.Time
}

// NewPlayer creates a stopped player at full volume.
func NewPlayer(clock anim.Clock) *Player {
	p := &Player{clock: clock, volume: 1}
	p.lastUsed = p.now()
	return p
}

func (p *Player) now() time.Time {
	if p.clock == nil {
		return time.Now()
	}
	return p.clock.Now()
}

// SetData records how much of the stream has arrived.
func (p *Player) SetData(mime string, size int, partial bool) {
	p.mime = mime
	p.size = size
	p.partial = partial
}

// MIME returns the stream type.
func (p *Player) MIME() string {
	return p.mime
}

// Size returns the number of bytes available.
func (p *Player) Size() int {
	return p.size
}

// IsPartial returns true while the stream is still arriving.
func (p *Player) IsPartial() bool {
	return p.partial
}

// Start begins playback.
func (p *Player) Start() {
	if p.started {
		return
	}
	p.started = true
	p.paused = false
	p.resumedAt = p.now()
	p.touch()
}

// Stop ends playback and rewinds.
func (p *Player) Stop() {
	p.started = false
	p.paused = false
	p.playedBefore = 0
	p.touch()
}

// IsStarted returns true once playback has begun.
func (p *Player) IsStarted() bool {
	return p.started
}

// IsPaused returns true if playback is paused.
func (p *Player) IsPaused() bool {
	return p.paused
}

// IsPlaying returns true if started and not paused.
func (p *Player) IsPlaying() bool {
	return p.started && !p.paused
}

// SetPaused pauses or resumes.
func (p *Player) SetPaused(paused bool) {
	if !p.started || p.paused == paused {
		return
	}
	now := p.now()
	if paused {
		p.playedBefore += now.Sub(p.resumedAt)
	} else {
		p.resumedAt = now
	}
	p.paused = paused
	p.touch()
}

// Position returns how long the player has been playing.
func (p *Player) Position() time.Duration {
	if !p.started {
		return 0
	}
	if p.paused {
		return p.playedBefore
	}
	return p.playedBefore + p.now().Sub(p.resumedAt)
}

// Volume returns the volume in [0, 1].
func (p *Player) Volume() float64 {
	return p.volume
}

// SetVolume sets the volume, clamped to [0, 1].
func (p *Player) SetVolume(v float64) {
	p.volume = min(max(v, 0), 1)
	p.touch()
}

// Flags returns the interaction flags.
func (p *Player) Flags() PlayerFlags {
	return p.flags
}

// SetFlags turns flags on or off.
func (p *Player) SetFlags(flags PlayerFlags, on bool) {
	if on {
		p.flags |= flags
	} else {
		p.flags &^= flags
	}
	p.touch()
}

// IdleTime returns the time since the last interaction.
func (p *Player) IdleTime() time.Duration {
	return p.now().Sub(p.lastUsed)
}

func (p *Player) touch() {
	p.lastUsed = p.now()
}
