// Package watcher reloads a single file when it changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which save by renaming a temporary file are still noticed.
// Bursts of events are coalesced into one callback.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the delay between the last event and the callback.
const DefaultDebounce = 100 * time.Millisecond

// ErrClosed is returned when closing a watcher twice.
var ErrClosed = errors.New("watcher closed")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the coalescing delay.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithErrorHandler receives errors reported by the file system watcher.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher calls a function after a file was written, created or replaced.
type Watcher struct {
	path     string
	name     string
	debounce time.Duration
	onChange func()
	onError  func(error)

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	closed  bool
	closeCh chan struct{}
	done    sync.WaitGroup
}

// New starts watching path. The file does not need to exist yet, but its
// directory does.
func New(path string, onChange func(), opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		name:     filepath.Base(abs),
		debounce: DefaultDebounce,
		onChange: onChange,
		fsw:      fsw,
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.done.Add(1)
	go w.loop()
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) loop() {
	defer w.done.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != w.name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.schedule()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if !closed && w.onChange != nil {
		w.onChange()
	}
}

// Close stops watching. A pending callback is dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.closeCh)
	w.mu.Unlock()

	w.done.Wait()
	return w.fsw.Close()
}
