package gemini

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/url"
	"sync"
	"time"
)

// CertInfo is what a transport learned about the server certificate.
type CertInfo struct {
	Flags       CertFlags
	Fingerprint []byte
	Subject     string
	ValidUntil  time.Time
}

// Transport opens a connection for one request.
type Transport interface {
	Open(ctx context.Context, u *url.URL) (io.ReadWriteCloser, CertInfo, error)
}

// TLSTransport dials Gemini servers over TLS. Certificates are checked by
// trust on first use against Trust when it is set.
type TLSTransport struct {
	Timeout time.Duration
	Trust   *TrustStore
}

// ErrNoCertificate is returned when the server presents no certificate.
var ErrNoCertificate = errors.New("server did not present a certificate")

// Open implements Transport.
func (t *TLSTransport) Open(ctx context.Context, u *url.URL) (io.ReadWriteCloser, CertInfo, error) {
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = DefaultPort
	}
	timeout := t.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	d := tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config: &tls.Config{
			ServerName:         host,
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: true, // checked below by TOFU
		},
	}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, CertInfo{}, err
	}
	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		conn.Close()
		return nil, CertInfo{}, ErrNoCertificate
	}
	info := inspectCertificate(state.PeerCertificates[0], host, time.Now())
	if t.Trust != nil && t.Trust.Check(host, info.Fingerprint, info.ValidUntil) {
		info.Flags |= CertTrusted
	}
	return conn, info, nil
}

func inspectCertificate(leaf *x509.Certificate, host string, now time.Time) CertInfo {
	sum := sha256.Sum256(leaf.Raw)
	info := CertInfo{
		Flags:       CertAvailable | CertHaveFingerprint,
		Fingerprint: sum[:],
		Subject:     leaf.Subject.CommonName,
		ValidUntil:  leaf.NotAfter,
	}
	if leaf.VerifyHostname(host) == nil {
		info.Flags |= CertDomainVerified
	}
	if !now.Before(leaf.NotBefore) && now.Before(leaf.NotAfter) {
		info.Flags |= CertTimeVerified
	}
	if _, err := leaf.Verify(x509.VerifyOptions{DNSName: host, CurrentTime: now}); err == nil {
		info.Flags |= CertAuthorityVerified
	}
	return info
}

// TrustStore remembers the certificate fingerprint seen for each host.
type TrustStore struct {
	mu    sync.Mutex
	hosts map[string]trusted
}

type trusted struct {
	fingerprint string
	validUntil  time.Time
}

// NewTrustStore creates an empty store.
func NewTrustStore() *TrustStore {
	return &TrustStore{hosts: make(map[string]trusted)}
}

// Check returns true if fingerprint matches the one recorded for host. An
// unknown host, or one whose recorded certificate has expired, is trusted
// on first use.
func (s *TrustStore) Check(host string, fingerprint []byte, validUntil time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.hosts[host]
	if !ok || time.Now().After(prev.validUntil) {
		s.hosts[host] = trusted{fingerprint: string(fingerprint), validUntil: validUntil}
		return true
	}
	return prev.fingerprint == string(fingerprint)
}

// SetTrusted records fingerprint as the trusted certificate of host.
func (s *TrustStore) SetTrusted(host string, fingerprint []byte, validUntil time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hosts[host] = trusted{fingerprint: string(fingerprint), validUntil: validUntil}
}
