package gemini

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxHeaderLength bounds the status line: two digits, a space, up to 1024
// bytes of meta and CRLF.
const maxHeaderLength = 1029

const readChunkSize = 32 * 1024

// NotifyFunc is called from the request goroutine.
type NotifyFunc func(*Request)

// Request fetches one URL on a worker goroutine. The response received so
// far can be inspected at any time with Snapshot.
type Request struct {
	id        uuid.UUID
	url       string
	transport Transport
	about     map[string]string
	now       func() time.Time

	onUpdated  NotifyFunc
	onFinished NotifyFunc

	mu       sync.Mutex
	resp     Response
	finished bool
	started  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// RequestOption configures a Request.
type RequestOption func(*Request)

// WithTransport sets the transport used for gemini: URLs.
func WithTransport(t Transport) RequestOption {
	return func(r *Request) {
		r.transport = t
	}
}

// WithAboutPages sets the gemtext served for about: URLs.
func WithAboutPages(pages map[string]string) RequestOption {
	return func(r *Request) {
		r.about = pages
	}
}

// WithNotify sets the callbacks for new data and completion.
func WithNotify(updated, finished NotifyFunc) RequestOption {
	return func(r *Request) {
		r.onUpdated = updated
		r.onFinished = finished
	}
}

// WithTimeFunc sets the source of response timestamps.
func WithTimeFunc(now func() time.Time) RequestOption {
	return func(r *Request) {
		r.now = now
	}
}

// NewRequest creates a request for rawURL. It does nothing until Submit.
func NewRequest(rawURL string, opts ...RequestOption) *Request {
	r := &Request{
		id:        uuid.New(),
		url:       rawURL,
		transport: &TLSTransport{},
		about:     DefaultAboutPages(),
		now:       time.Now,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns the unique request ID.
func (r *Request) ID() uuid.UUID {
	return r.id
}

// URL returns the requested URL.
func (r *Request) URL() string {
	return r.url
}

// Submit starts the request. Calling it again has no effect.
func (r *Request) Submit(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()
	go r.run(ctx)
}

// Cancel stops the request. No further notifications are delivered.
func (r *Request) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
	r.onUpdated = nil
	r.onFinished = nil
}

// Done is closed when the worker goroutine exits.
func (r *Request) Done() <-chan struct{} {
	return r.done
}

// Status returns the status received so far.
func (r *Request) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resp.Status
}

// IsFinished returns true once the whole response has arrived.
func (r *Request) IsFinished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished
}

// BodySize returns the number of body bytes received.
func (r *Request) BodySize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.resp.Body)
}

// Snapshot returns the response received so far. The body is shared with
// the request but never modified within its length.
func (r *Request) Snapshot() Response {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := r.resp
	resp.Body = r.resp.Body[:len(r.resp.Body):len(r.resp.Body)]
	return resp
}

func (r *Request) notify(finished bool) {
	r.mu.Lock()
	fn := r.onUpdated
	if finished {
		r.finished = true
		fn = r.onFinished
	}
	r.mu.Unlock()
	if fn != nil {
		fn(r)
	}
}

func (r *Request) setHeader(status Status, meta string, cert CertInfo) {
	r.mu.Lock()
	r.resp.Status = status
	r.resp.Meta = meta
	r.resp.CertFlags = cert.Flags
	r.resp.CertFingerprint = cert.Fingerprint
	r.resp.CertSubject = cert.Subject
	r.resp.CertValidUntil = cert.ValidUntil
	r.resp.When = r.now()
	r.mu.Unlock()
}

func (r *Request) fail(status Status, meta string) {
	r.setHeader(status, meta, CertInfo{})
	r.notify(false)
	r.notify(true)
}

func (r *Request) run(ctx context.Context) {
	defer close(r.done)

	u, err := url.Parse(r.url)
	if err != nil {
		r.fail(StatusInvalidHeader, err.Error())
		return
	}
	switch strings.ToLower(u.Scheme) {
	case "about":
		r.serveLocal(r.aboutResponse(u))
		return
	case "file":
		r.serveLocal(fileResponse(u))
		return
	case "gemini":
	default:
		r.fail(StatusUnsupportedProtocol, u.Scheme)
		return
	}

	conn, cert, err := r.transport.Open(ctx, u)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.fail(StatusTLSFailure, err.Error())
		return
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if _, err := io.WriteString(conn, u.String()+"\r\n"); err != nil {
		if ctx.Err() == nil {
			r.fail(StatusTLSFailure, err.Error())
		}
		return
	}

	br := bufio.NewReaderSize(conn, readChunkSize)
	status, meta, err := readHeader(br)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		var hs headerStatus
		if errors.As(err, &hs) {
			r.setHeader(Status(hs), err.Error(), cert)
		} else {
			r.setHeader(StatusTLSFailure, err.Error(), cert)
		}
		r.notify(false)
		r.notify(true)
		return
	}
	r.setHeader(status, meta, cert)
	r.notify(false)

	buf := make([]byte, readChunkSize)
	for {
		n, err := br.Read(buf)
		if n > 0 {
			r.mu.Lock()
			r.resp.Body = append(r.resp.Body, buf[:n]...)
			r.mu.Unlock()
			r.notify(false)
		}
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			break
		}
	}
	r.notify(true)
}

func (r *Request) serveLocal(resp Response) {
	resp.When = r.now()
	r.mu.Lock()
	r.resp = resp
	r.mu.Unlock()
	r.notify(false)
	r.notify(true)
}

// headerStatus is an error that maps to a client-side status.
type headerStatus Status

func (h headerStatus) Error() string {
	return Describe(Status(h)).Title
}

// readHeader reads and parses the status line.
func readHeader(br *bufio.Reader) (Status, string, error) {
	var line []byte
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, "", headerStatus(StatusIncompleteHeader)
			}
			return 0, "", err
		}
		if b == '\n' {
			break
		}
		line = append(line, b)
		if len(line) > maxHeaderLength {
			return 0, "", headerStatus(StatusInvalidHeader)
		}
	}
	return ParseHeader(strings.TrimSuffix(string(line), "\r"))
}

// ParseHeader parses a status line without its line terminator.
func ParseHeader(line string) (Status, string, error) {
	if len(line) < 2 {
		return 0, "", headerStatus(StatusInvalidHeader)
	}
	code, err := strconv.Atoi(line[:2])
	if err != nil || code < 10 {
		return 0, "", fmt.Errorf("%w: %q", headerStatus(StatusInvalidHeader), line)
	}
	meta := line[2:]
	if meta != "" && meta[0] != ' ' && meta[0] != '\t' {
		return 0, "", headerStatus(StatusInvalidHeader)
	}
	return Status(code), strings.TrimSpace(meta), nil
}
