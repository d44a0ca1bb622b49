package media

import (
	"fmt"
	"time"
)

// Download is the progress of a link being saved.
type Download struct {
	URL      string
	MIME     string
	Received int
	Total    int // -1 when unknown
	Finished bool
	Started  time.Time
}

// NewDownload creates a download of unknown size.
func NewDownload(url string, started time.Time) *Download {
	return &Download{URL: url, Total: -1, Started: started}
}

// Update records received bytes.
func (d *Download) Update(mime string, received int, finished bool) {
	d.MIME = mime
	d.Received = received
	d.Finished = finished
	if finished {
		d.Total = received
	}
}

// Rate returns the average transfer rate in bytes per second.
func (d *Download) Rate(now time.Time) float64 {
	elapsed := now.Sub(d.Started).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(d.Received) / elapsed
}

// Label returns the progress text shown next to the link.
func (d *Download) Label(now time.Time) string {
	if d.Finished {
		return fmt.Sprintf("%s done", FormatSize(d.Received))
	}
	return fmt.Sprintf("%s %s/s", FormatSize(d.Received), FormatSize(int(d.Rate(now))))
}

// FormatSize formats a byte count in KB or MB.
func FormatSize(n int) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.3f MB", float64(n)/1e6)
	}
	return fmt.Sprintf("%.3f KB", float64(n)/1e3)
}
