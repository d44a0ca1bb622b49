package config

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for a preferences file that is neither
// TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported preferences format")

// ErrNoPath is returned by Watch when no file is configured.
var ErrNoPath = errors.New("no preferences file")

// LoadError wraps a failure to read or parse the preferences file.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load preferences %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}
