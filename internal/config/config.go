package config

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/gemview/internal/config/loader"
	"github.com/dshills/gemview/internal/config/watcher"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "GEMVIEW_"

// Logger receives warnings about reloads.
type Logger interface {
	Warn(msg string, args ...any)
}

// Config holds the current preferences. It is safe for concurrent use.
type Config struct {
	mu        sync.RWMutex
	prefs     Prefs
	path      string
	fs        loader.FileSystem
	env       *loader.EnvLoader
	log       Logger
	listeners []func(Prefs)

	watcher *watcher.Watcher
}

// Option configures a Config.
type Option func(*Config)

// WithPath sets the preferences file.
func WithPath(path string) Option {
	return func(c *Config) {
		c.path = path
	}
}

// WithFS sets the file system the preferences file is read from.
func WithFS(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnv sets the environment lookup used for overrides. Nil disables
// overrides.
func WithEnv(lookup loader.LookupFunc) Option {
	return func(c *Config) {
		if lookup == nil {
			c.env = nil
			return
		}
		c.env = loader.NewEnvLoader(EnvPrefix, lookup)
	}
}

// WithLogger sets the logger for reload failures.
func WithLogger(l Logger) Option {
	return func(c *Config) {
		c.log = l
	}
}

// New creates a config holding the defaults. Call Load to read the file.
func New(opts ...Option) *Config {
	c := &Config{
		prefs: Defaults(),
		fs:    loader.DefaultFS(),
		env:   loader.NewEnvLoader(EnvPrefix, nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the preferences file.
func (c *Config) Path() string {
	return c.path
}

// Prefs returns a copy of the current preferences.
func (c *Config) Prefs() Prefs {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prefs
}

// Load reads the defaults, the file and the environment. A missing file is
// not an error. On error the current preferences are kept.
func (c *Config) Load() error {
	p := Defaults()
	if c.path != "" {
		if _, err := loader.DecodeFile(c.fs, c.path, &p); err != nil {
			if errors.Is(err, loader.ErrUnsupportedFormat) {
				err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, c.path)
			}
			return &LoadError{Path: c.path, Err: err}
		}
	}
	if c.env != nil {
		if err := applyEnv(c.env, &p); err != nil {
			return fmt.Errorf("environment overrides: %w", err)
		}
	}
	p.Validate()
	c.mu.Lock()
	c.prefs = p
	c.mu.Unlock()
	return nil
}

func applyEnv(env *loader.EnvLoader, p *Prefs) error {
	vals := env.Load()
	if len(vals) == 0 {
		return nil
	}
	data, err := toml.Marshal(vals)
	if err != nil {
		return err
	}
	return toml.Unmarshal(data, p)
}

// Update changes the preferences with fn, validates them and notifies the
// listeners.
func (c *Config) Update(fn func(*Prefs)) {
	c.mu.Lock()
	fn(&c.prefs)
	c.prefs.Validate()
	p := c.prefs
	c.mu.Unlock()
	c.notify(p)
}

// OnChange registers fn to be called after the preferences change. It is
// called on the goroutine that made the change.
func (c *Config) OnChange(fn func(Prefs)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Config) notify(p Prefs) {
	c.mu.RLock()
	fns := slices.Clone(c.listeners)
	c.mu.RUnlock()
	for _, fn := range fns {
		fn(p)
	}
}

// Watch reloads the file whenever it changes on disk. Listeners are called
// from the watcher goroutine.
func (c *Config) Watch() error {
	if c.path == "" {
		return ErrNoPath
	}
	w, err := watcher.New(c.path, func() {
		if err := c.Load(); err != nil {
			if c.log != nil {
				c.log.Warn("reloading preferences: %v", err)
			}
			return
		}
		c.notify(c.Prefs())
	})
	if err != nil {
		return fmt.Errorf("watch preferences: %w", err)
	}
	c.mu.Lock()
	c.watcher = w
	c.mu.Unlock()
	return nil
}

// Close stops watching.
func (c *Config) Close() error {
	c.mu.Lock()
	w := c.watcher
	c.watcher = nil
	c.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}
