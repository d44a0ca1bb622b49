package keys

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the name of the bindings file in the config directory.
const FileName = "bindings.toml"

type bindingsFile struct {
	Bindings map[string]string `toml:"bindings"`
}

// Load applies the chords stored in the file at path. A missing file
// leaves the defaults. Entries with an unknown ID or an unparsable chord
// are skipped and reported in the returned error after the rest has been
// applied.
func (t *Table) Load(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read bindings: %w", err)
	}
	var f bindingsFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse bindings %s: %w", path, err)
	}
	var errs []error
	for key, spec := range f.Bindings {
		id, err := strconv.Atoi(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("binding %q: %w", key, ErrUnknownBinding))
			continue
		}
		var c Chord
		if spec != "" {
			c, err = Parse(spec)
			if err != nil {
				errs = append(errs, fmt.Errorf("binding %d: %w", id, err))
				continue
			}
		}
		if err := t.Bind(id, c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Save writes the chords that differ from the defaults to path. An empty
// chord records an unbound key.
func (t *Table) Save(path string) error {
	t.mu.RLock()
	f := bindingsFile{Bindings: make(map[string]string)}
	for _, b := range t.changed() {
		f.Bindings[strconv.Itoa(b.ID)] = b.Chord.String()
	}
	t.mu.RUnlock()

	data, err := toml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode bindings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write bindings: %w", err)
	}
	return nil
}
