package gemini

import (
	"strings"
	"time"
)

// CertFlags describe what is known about the server certificate.
type CertFlags uint8

// Certificate flags.
const (
	CertAvailable CertFlags = 1 << iota
	CertHaveFingerprint
	CertDomainVerified
	CertTimeVerified
	CertAuthorityVerified
	CertTrusted
)

// Has returns true if all bits of f are set.
func (fl CertFlags) Has(f CertFlags) bool {
	return fl&f == f
}

// Response is a received or synthesized response. Body grows while the
// request is in progress.
type Response struct {
	Status          Status
	Meta            string
	Body            []byte
	CertFlags       CertFlags
	CertFingerprint []byte
	CertSubject     string
	CertValidUntil  time.Time
	When            time.Time
}

// MIME returns the lowercased media type without parameters.
func (r *Response) MIME() string {
	mime, _, _ := strings.Cut(r.Meta, ";")
	return strings.ToLower(strings.TrimSpace(mime))
}

// Copy returns a deep copy of r.
func (r *Response) Copy() *Response {
	c := *r
	c.Body = append([]byte(nil), r.Body...)
	c.CertFingerprint = append([]byte(nil), r.CertFingerprint...)
	return &c
}
