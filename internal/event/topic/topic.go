package topic

import "strings"

// Topic is a hierarchical command name.
type Topic string

// Wildcards and separator.
const (
	WildcardSingle = "*"
	WildcardMulti  = "**"
	Separator      = "."
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split at separators.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Parent returns the topic without its last segment.
func (t Topic) Parent() Topic {
	i := strings.LastIndex(string(t), Separator)
	if i < 0 {
		return ""
	}
	return t[:i]
}

// Base returns the last segment.
func (t Topic) Base() string {
	s := string(t)
	return s[strings.LastIndex(s, Separator)+1:]
}

// HasPrefix returns true if t starts with the whole segments of prefix.
func (t Topic) HasPrefix(prefix Topic) bool {
	if prefix == "" {
		return true
	}
	if !strings.HasPrefix(string(t), string(prefix)) {
		return false
	}
	return len(t) == len(prefix) || t[len(prefix)] == '.'
}

// IsWildcard returns true if the topic is a pattern.
func (t Topic) IsWildcard() bool {
	return strings.Contains(string(t), WildcardSingle)
}

// IsValid returns true for a non-empty topic without empty segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches returns true if t matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(t.Segments(), pattern.Segments())
}

func matchSegments(topic, pattern []string) bool {
	for len(pattern) > 0 {
		switch {
		case pattern[0] == WildcardMulti:
			for i := 0; i <= len(topic); i++ {
				if matchSegments(topic[i:], pattern[1:]) {
					return true
				}
			}
			return false
		case len(topic) == 0:
			return false
		case pattern[0] != WildcardSingle && pattern[0] != topic[0]:
			return false
		}
		topic, pattern = topic[1:], pattern[1:]
	}
	return len(topic) == 0
}

// Join joins segments into a topic.
func Join(segments ...string) Topic {
	return Topic(strings.Join(segments, Separator))
}
