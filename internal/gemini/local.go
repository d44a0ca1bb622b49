package gemini

import (
	"fmt"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// MIMEGemini is the native document type.
const MIMEGemini = "text/gemini"

// DefaultAboutPages returns the built-in about: pages.
func DefaultAboutPages() map[string]string {
	return map[string]string{
		"blank": "",
		"help": "# Help\n\n" +
			"Scroll with the arrow keys, Page Up and Page Down, or the mouse wheel.\n" +
			"Wide preformatted blocks scroll sideways with Shift and the wheel.\n\n" +
			"=> about:blank Blank page\n",
	}
}

func (r *Request) aboutResponse(u *url.URL) Response {
	name := u.Opaque
	if name == "" {
		name = strings.TrimPrefix(u.Path, "/")
	}
	name = strings.ToLower(name)
	page, ok := r.about[name]
	if !ok {
		return Response{Status: StatusInvalidLocalResource}
	}
	return Response{
		Status: StatusSuccess,
		Meta:   MIMEGemini + "; charset=utf-8",
		Body:   []byte(page),
	}
}

// MIMEForPath guesses the media type of a local file from its extension.
func MIMEForPath(path string) string {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gmi", ".gemini":
		return MIMEGemini
	case ".txt", ".md", ".go", ".c", ".h":
		return "text/plain"
	case "":
		return "application/octet-stream"
	default:
		if t := mime.TypeByExtension(ext); t != "" {
			return t
		}
		return "application/octet-stream"
	}
}

func fileResponse(u *url.URL) Response {
	path := u.Path
	info, err := os.Stat(path)
	if err != nil {
		return Response{Status: StatusFailedToOpenFile, Meta: err.Error()}
	}
	if info.IsDir() {
		body, err := directoryListing(path)
		if err != nil {
			return Response{Status: StatusFailedToOpenFile, Meta: err.Error()}
		}
		return Response{Status: StatusSuccess, Meta: MIMEGemini, Body: body}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Response{Status: StatusFailedToOpenFile, Meta: err.Error()}
	}
	return Response{Status: StatusSuccess, Meta: MIMEForPath(path), Body: data}
}

func directoryListing(dir string) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", filepath.Base(dir))
	for _, name := range names {
		target := (&url.URL{Scheme: "file", Path: filepath.Join(dir, name)}).String()
		if strings.HasSuffix(name, "/") {
			target += "/"
		}
		fmt.Fprintf(&b, "=> %s %s\n", target, name)
	}
	return []byte(b.String()), nil
}
