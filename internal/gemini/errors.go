package gemini

// ErrorInfo describes how a status is presented to the user.
type ErrorInfo struct {
	Icon  rune
	Title string
	Info  string
}

// DefaultErrorIcon is used for statuses without their own icon.
const DefaultErrorIcon = '⌧'

var errorTable = map[Status]ErrorInfo{
	StatusNone:                      {0, "Unknown Status Code", ""},
	StatusInput:                     {'✏', "Input Required", "The server asks for input."},
	StatusSensitiveInput:            {'✏', "Sensitive Input Required", "The server asks for input that should not be echoed."},
	StatusSuccess:                   {0, "Success", ""},
	StatusRedirectTemporary:         {'➠', "Temporary Redirect", ""},
	StatusRedirectPermanent:         {'➠', "Permanent Redirect", ""},
	StatusTemporaryFailure:          {'⚠', "Temporary Failure", "The request failed. Trying again later may help."},
	StatusServerUnavailable:         {'\U0001f50c', "Server Unavailable", "The server is not accepting requests at the moment."},
	StatusCGIError:                  {'\U0001f4a5', "CGI Error", "A dynamic content generator on the server failed."},
	StatusProxyError:                {'\U0001f310', "Proxy Error", "A proxy request failed because the server was unable to complete it."},
	StatusSlowDown:                  {'⌛', "Slow Down", "The server is rate limiting requests."},
	StatusPermanentFailure:          {'⚠', "Permanent Failure", "The request failed and will keep failing."},
	StatusNotFound:                  {'\U0001f50d', "Not Found", "The requested resource does not exist on the server."},
	StatusGone:                      {'\U0001f47b', "Gone", "The resource is no longer available and will not be available again."},
	StatusProxyRequestRefused:       {'\U0001f6d1', "Proxy Request Refused", "The server refused to act as a proxy for the request."},
	StatusBadRequest:                {'\U0001f44e', "Bad Request", "The server did not understand the request."},
	StatusClientCertificateRequired: {'\U0001f511', "Certificate Required", "Access to the resource requires a client certificate."},
	StatusCertificateNotAuthorized:  {'\U0001f512', "Certificate Not Authorized", "The provided client certificate is not authorized for the resource."},
	StatusCertificateNotValid:       {'\U0001f6ab', "Invalid Certificate", "The provided client certificate is expired or invalid."},
	StatusInvalidRedirect:           {'➠', "Invalid Redirect", "The server responded with a redirect but did not provide a valid destination URL."},
	StatusSchemeChangeRedirect:      {'➠', "Scheme-Changing Redirect", "The server attempted to redirect to a URL that uses a different protocol. Follow the link below only if you trust the destination."},
	StatusTooManyRedirects:          {'➠', "Too Many Redirects", "The server redirected too many times. The last destination is shown below."},
	StatusIncompleteHeader:          {'⚠', "Incomplete Header", "The server closed the connection before the complete response header was received."},
	StatusInvalidHeader:             {'⚠', "Invalid Header", "The response header was malformed."},
	StatusUnsupportedMIMEType:       {'\U0001f47d', "Unsupported Content Type", "The received content cannot be viewed with this application."},
	StatusUnsupportedProtocol:       {'\U0001f47d', "Unsupported Protocol", "The URL uses a protocol that this application does not speak."},
	StatusFailedToOpenFile:          {'\U0001f4c1', "Failed to Open File", "The requested file does not exist or is inaccessible."},
	StatusInvalidLocalResource:      {0, "Invalid Resource", "The requested resource does not exist."},
	StatusTLSFailure:                {'\U0001f5a7', "Network or TLS Failure", "The connection to the server could not be established or failed."},
	StatusUnknownStatus:             {0, "Unknown Status Code", "The server responded with a status code that is not defined by the protocol."},
}

// IsDefined returns true if s has its own entry in the error table.
func IsDefined(s Status) bool {
	_, ok := errorTable[s]
	return ok && s != StatusNone
}

// Describe returns the presentation of s. Unknown codes fall back to the
// generic failure for their category.
func Describe(s Status) ErrorInfo {
	if info, ok := errorTable[s]; ok {
		return info
	}
	switch s.Category() {
	case CategoryTemporaryFailure:
		return errorTable[StatusTemporaryFailure]
	case CategoryPermanentFailure:
		return errorTable[StatusPermanentFailure]
	default:
		return errorTable[StatusUnknownStatus]
	}
}

// ErrorPageStatus maps a failure status to the status whose page is shown.
func ErrorPageStatus(s Status) Status {
	if IsDefined(s) {
		return s
	}
	switch s.Category() {
	case CategoryTemporaryFailure:
		return StatusTemporaryFailure
	case CategoryPermanentFailure:
		return StatusPermanentFailure
	default:
		return StatusUnknownStatus
	}
}
