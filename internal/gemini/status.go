// Package gemini implements the Gemini protocol client used by document
// views: status codes and their error pages, streaming requests, and the
// local about: and file: schemes.
package gemini

import "fmt"

// Status is a protocol status code. Negative values are produced locally
// for failures that never reached the server or were detected by the client.
type Status int

// Protocol status codes.
const (
	StatusNone Status = 0

	StatusInput          Status = 10
	StatusSensitiveInput Status = 11

	StatusSuccess Status = 20

	StatusRedirectTemporary Status = 30
	StatusRedirectPermanent Status = 31

	StatusTemporaryFailure    Status = 40
	StatusServerUnavailable   Status = 41
	StatusCGIError            Status = 42
	StatusProxyError          Status = 43
	StatusSlowDown            Status = 44
	StatusPermanentFailure    Status = 50
	StatusNotFound            Status = 51
	StatusGone                Status = 52
	StatusProxyRequestRefused Status = 53
	StatusBadRequest          Status = 59

	StatusClientCertificateRequired Status = 60
	StatusCertificateNotAuthorized  Status = 61
	StatusCertificateNotValid       Status = 62
)

// Client-side status codes.
const (
	StatusInvalidRedirect Status = -(iota + 100)
	StatusSchemeChangeRedirect
	StatusTooManyRedirects
	StatusIncompleteHeader
	StatusInvalidHeader
	StatusUnsupportedMIMEType
	StatusUnsupportedProtocol
	StatusFailedToOpenFile
	StatusInvalidLocalResource
	StatusTLSFailure
	StatusUnknownStatus
)

// Category groups status codes by their first digit.
type Category int

const (
	CategoryNone Category = iota
	CategoryInput
	CategorySuccess
	CategoryRedirect
	CategoryTemporaryFailure
	CategoryPermanentFailure
	CategoryClientCertificate
	CategoryLocal
)

// String returns the string representation of the category.
func (c Category) String() string {
	switch c {
	case CategoryInput:
		return "input"
	case CategorySuccess:
		return "success"
	case CategoryRedirect:
		return "redirect"
	case CategoryTemporaryFailure:
		return "temporary failure"
	case CategoryPermanentFailure:
		return "permanent failure"
	case CategoryClientCertificate:
		return "client certificate"
	case CategoryLocal:
		return "local"
	default:
		return "none"
	}
}

// Category returns the category of s.
func (s Status) Category() Category {
	switch {
	case s < 0:
		return CategoryLocal
	case s >= 10 && s < 20:
		return CategoryInput
	case s >= 20 && s < 30:
		return CategorySuccess
	case s >= 30 && s < 40:
		return CategoryRedirect
	case s >= 40 && s < 50:
		return CategoryTemporaryFailure
	case s >= 50 && s < 60:
		return CategoryPermanentFailure
	case s >= 60 && s < 70:
		return CategoryClientCertificate
	default:
		return CategoryNone
	}
}

// IsSuccess returns true for the 2x codes.
func (s Status) IsSuccess() bool {
	return s.Category() == CategorySuccess
}

// String returns the numeric code and title.
func (s Status) String() string {
	return fmt.Sprintf("%d %s", int(s), Describe(s).Title)
}
