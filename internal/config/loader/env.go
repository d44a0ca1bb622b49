package loader

import (
	"os"
	"strconv"
	"strings"
)

// LookupFunc returns the value of an environment variable.
type LookupFunc func(name string) (string, bool)

// EnvLoader reads prefixed environment variables. GEMVIEW_LINE_WIDTH=80
// becomes the key line_width with the integer value 80.
type EnvLoader struct {
	prefix string
	lookup LookupFunc
	names  func() []string
}

// NewEnvLoader creates a loader. A nil lookup reads the process
// environment.
func NewEnvLoader(prefix string, lookup LookupFunc) *EnvLoader {
	l := &EnvLoader{prefix: prefix, lookup: lookup}
	if lookup == nil {
		l.lookup = os.LookupEnv
		l.names = environNames
	}
	return l
}

// Keys are the preference keys an EnvLoader looks up when it cannot list
// the environment.
var Keys = []string{
	"line_width",
	"zoom",
	"page_margin",
	"smooth_scrolling",
	"smooth_duration_ms",
	"center_short_docs",
	"hover_link",
	"download_dir",
	"theme",
	"dark",
	"log_level",
}

// stringKeys are never converted to bool or integer.
var stringKeys = map[string]bool{
	"download_dir": true,
	"theme":        true,
	"log_level":    true,
}

func environNames() []string {
	var names []string
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		names = append(names, name)
	}
	return names
}

// Load returns the overrides found.
func (l *EnvLoader) Load() map[string]any {
	out := make(map[string]any)
	if l.names != nil {
		for _, name := range l.names() {
			key, ok := strings.CutPrefix(name, l.prefix)
			if !ok || key == "" {
				continue
			}
			if v, ok := l.lookup(name); ok {
				key = strings.ToLower(key)
				out[key] = value(key, v)
			}
		}
		return out
	}
	for _, key := range Keys {
		if v, ok := l.lookup(l.prefix + strings.ToUpper(key)); ok {
			out[key] = value(key, v)
		}
	}
	return out
}

func value(key, s string) any {
	if stringKeys[key] {
		return s
	}
	return parseValue(s)
}

// parseValue returns s as a bool, an integer or the string itself.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}
