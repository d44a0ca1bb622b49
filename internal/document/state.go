package document

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dshills/gemview/internal/stream"
)

// State is the progress of the current load.
type State int

const (
	StateBlank State = iota
	StateFetching
	StatePartialReceived
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateBlank:
		return "blank"
	case StateFetching:
		return "fetching"
	case StatePartialReceived:
		return "partial"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// ReloadInterval is how often a page is reloaded automatically.
type ReloadInterval uint8

const (
	ReloadNever ReloadInterval = iota
	ReloadMinute
	Reload5Minutes
	Reload15Minutes
	ReloadHour
	Reload4Hours
	Reload12Hours
	ReloadDaily
	reloadIntervalCount
)

var reloadMinutes = [reloadIntervalCount]int{0, 1, 5, 15, 60, 4 * 60, 12 * 60, 24 * 60}

var reloadLabels = [reloadIntervalCount]string{
	"Never",
	"1 minute",
	"5 minutes",
	"15 minutes",
	"1 hour",
	"4 hours",
	"12 hours",
	"Once per day",
}

// Duration returns the interval, or zero for ReloadNever.
func (r ReloadInterval) Duration() time.Duration {
	if r >= reloadIntervalCount {
		return 0
	}
	return time.Duration(reloadMinutes[r]) * time.Minute
}

// String returns the label shown in menus.
func (r ReloadInterval) String() string {
	if r >= reloadIntervalCount {
		return fmt.Sprintf("ReloadInterval(%d)", r)
	}
	return reloadLabels[r]
}

// ReloadIntervals returns every interval in menu order.
func ReloadIntervals() []ReloadInterval {
	out := make([]ReloadInterval, reloadIntervalCount)
	for i := range out {
		out[i] = ReloadInterval(i)
	}
	return out
}

// brokenURLMarker is found in URLs written by an old version that stored
// a pointer description instead of the address.
const brokenURLMarker = " ptr:0x"

// Serialize writes the URL, the reload interval and the history.
func (v *View) Serialize(w io.Writer) error {
	s := stream.NewWriter(w)
	s.String(v.url)
	s.Uint16(uint16(v.reload) & 7)
	if err := s.Err(); err != nil {
		return fmt.Errorf("serialize view: %w", err)
	}
	return v.hist.Serialize(w)
}

// Deserialize restores state written by Serialize and shows the current
// history item. A broken URL is dropped.
func (v *View) Deserialize(r io.Reader) error {
	s := stream.NewReader(r)
	url := s.String()
	flags := s.Uint16()
	if err := s.Err(); err != nil {
		return fmt.Errorf("deserialize view: %w", err)
	}
	if strings.Contains(url, brokenURLMarker) {
		url = ""
	}
	if err := v.hist.Deserialize(r); err != nil {
		return err
	}
	v.reload = ReloadInterval(flags & 7)
	v.setURL(url)
	if url != "" {
		v.UpdateFromHistory()
	}
	return nil
}
