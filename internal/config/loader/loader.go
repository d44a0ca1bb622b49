// Package loader decodes preferences files and environment overrides.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for an unknown file extension.
var ErrUnsupportedFormat = errors.New("unsupported format")

// FileSystem is the file access the loaders need. Tests substitute an
// in-memory implementation.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the OS file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// MapFS is an in-memory FileSystem keyed by path.
type MapFS map[string][]byte

// ReadFile returns the bytes stored for path.
func (m MapFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return data, nil
}

// Decoder unmarshals file contents into v.
type Decoder func(data []byte, v any) error

// DecoderFor returns the decoder for the extension of path.
func DecoderFor(path string) (Decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return DecodeTOML, nil
	case ".yaml", ".yml":
		return DecodeYAML, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// DecodeFile reads path and decodes it into v. It returns false, with no
// error, if the file does not exist.
func DecodeFile(fsys FileSystem, path string, v any) (bool, error) {
	dec, err := DecoderFor(path)
	if err != nil {
		return false, err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := dec(data, v); err != nil {
		perr := &ParseError{Path: path, Err: err}
		var le *lineError
		if errors.As(err, &le) {
			perr.Line = le.line
		}
		return true, perr
	}
	return true, nil
}

// ParseError is a syntax or type error in a file.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse error in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
