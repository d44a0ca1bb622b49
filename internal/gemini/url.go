package gemini

import (
	"net/url"
	"path"
	"strings"
)

// DefaultPort is the Gemini TCP port.
const DefaultPort = "1965"

// AbsoluteURL resolves ref against base. An unparseable reference is
// returned unchanged.
func AbsoluteURL(base, ref string) string {
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil || r.IsAbs() {
		return r.String()
	}
	return b.ResolveReference(r).String()
}

// Scheme returns the lowercased scheme of u, or "gemini" for a URL without
// one.
func Scheme(u string) string {
	if i := strings.Index(u, ":"); i > 0 && !strings.Contains(u[:i], "/") {
		return strings.ToLower(u[:i])
	}
	return "gemini"
}

// Host returns the host name of u without the port.
func Host(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return ""
	}
	return p.Hostname()
}

// User returns the user info of u, if any.
func User(u string) string {
	p, err := url.Parse(u)
	if err != nil || p.User == nil {
		return ""
	}
	return p.User.Username()
}

// StripFragment removes the #fragment part of u.
func StripFragment(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[:i]
	}
	return u
}

// BaseName returns the last path segment of u.
func BaseName(u string) string {
	p, err := url.Parse(u)
	if err != nil || p.Path == "" || p.Path == "/" {
		return ""
	}
	return path.Base(p.Path)
}

// IsAbout returns true for about: URLs.
func IsAbout(u string) bool {
	return Scheme(u) == "about"
}

// ParentURL returns the URL of the directory containing u. A directory URL
// goes up one level; the root stays the root.
func ParentURL(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return u
	}
	dir := strings.TrimSuffix(p.Path, "/")
	if i := strings.LastIndexByte(dir, '/'); i >= 0 {
		dir = dir[:i+1]
	} else {
		dir = "/"
	}
	p.Path = dir
	p.RawPath = ""
	p.RawQuery = ""
	p.Fragment = ""
	return p.String()
}

// RootURL returns the root of the site of u.
func RootURL(u string) string {
	p, err := url.Parse(u)
	if err != nil {
		return u
	}
	p.Path = "/"
	p.RawPath = ""
	p.RawQuery = ""
	p.Fragment = ""
	return p.String()
}

// QueryURL returns u with input as its query, as sent in reply to an
// input response.
func QueryURL(u, input string) string {
	p, err := url.Parse(StripFragment(u))
	if err != nil {
		return u
	}
	p.RawQuery = strings.ReplaceAll(url.QueryEscape(input), "+", "%20")
	return p.String()
}
