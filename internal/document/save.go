package document

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/gemview/internal/event"
	"github.com/dshills/gemview/internal/gemini"
	"github.com/dshills/gemview/internal/media"
)

// ErrNothingToSave is returned when the view has no received content.
var ErrNothingToSave = errors.New("document: nothing to save")

// SaveSourceToFile writes the received response body to dir, or to the
// download directory when dir is empty. The outcome is also reported with
// a message command.
func (v *View) SaveSourceToFile(dir string) (string, error) {
	if dir == "" {
		dir = v.env.Prefs.DownloadDir
	}
	var (
		path string
		err  error
	)
	if v.state != StateReady || len(v.resp.Body) == 0 {
		err = ErrNothingToSave
	} else {
		path, err = saveFile(dir, fileName(v.url, v.resp.MIME()), v.resp.Body)
	}
	if err != nil {
		v.env.Log.Warn("save %s: %v", v.url, err)
		v.post(event.TopicMessage, "text:Error saving file: %v", err)
		return "", err
	}
	v.post(event.TopicMessage, "text:Saved %s (%s)", path, media.FormatSize(len(v.resp.Body)))
	return path, nil
}

// fileName derives a file name from url, adding an extension for mt when
// the URL has none.
func fileName(url, mt string) string {
	name := gemini.BaseName(url)
	if name == "" || name == "." {
		name = gemini.Host(url)
	}
	if name == "" {
		name = "download"
	}
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, name)
	if filepath.Ext(name) != "" {
		return name
	}
	if mt == gemini.MIMEGemini {
		return name + ".gmi"
	}
	if exts, err := mime.ExtensionsByType(mt); err == nil && len(exts) > 0 {
		return name + exts[0]
	}
	return name
}

// saveFile writes data to dir/name without replacing an existing file: a
// numeric suffix is added to the name instead.
func saveFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	path := filepath.Join(dir, name)
	for i := 1; ; i++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			path = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ext))
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", path, err)
		}
		return path, nil
	}
}
