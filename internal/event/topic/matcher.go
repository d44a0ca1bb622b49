package topic

// Matcher finds the subscribed patterns that match a topic using a trie
// of pattern segments. It is not safe for concurrent use.
type Matcher struct {
	root *node
	n    int
}

type node struct {
	children map[string]*node
	pattern  Topic
	terminal bool
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// NewMatcher creates an empty matcher.
func NewMatcher() *Matcher {
	return &Matcher{root: newNode()}
}

// Add inserts pattern. It returns false if it was already present.
func (m *Matcher) Add(pattern Topic) bool {
	if pattern == "" {
		return false
	}
	n := m.root
	for _, seg := range pattern.Segments() {
		child, ok := n.children[seg]
		if !ok {
			child = newNode()
			n.children[seg] = child
		}
		n = child
	}
	if n.terminal {
		return false
	}
	n.terminal = true
	n.pattern = pattern
	m.n++
	return true
}

// Remove deletes pattern. Empty branches are pruned.
func (m *Matcher) Remove(pattern Topic) bool {
	segs := pattern.Segments()
	path := []*node{m.root}
	n := m.root
	for _, seg := range segs {
		child, ok := n.children[seg]
		if !ok {
			return false
		}
		n = child
		path = append(path, n)
	}
	if !n.terminal {
		return false
	}
	n.terminal = false
	n.pattern = ""
	m.n--
	for i := len(segs) - 1; i >= 0; i-- {
		child := path[i+1]
		if child.terminal || len(child.children) > 0 {
			break
		}
		delete(path[i].children, segs[i])
	}
	return true
}

// Has returns true if pattern was added.
func (m *Matcher) Has(pattern Topic) bool {
	n := m.root
	for _, seg := range pattern.Segments() {
		child, ok := n.children[seg]
		if !ok {
			return false
		}
		n = child
	}
	return n.terminal
}

// Len returns the number of patterns.
func (m *Matcher) Len() int {
	return m.n
}

// Match returns every pattern matching t. Each pattern appears once.
func (m *Matcher) Match(t Topic) []Topic {
	if t == "" {
		return nil
	}
	seen := make(map[Topic]bool)
	var out []Topic
	m.match(m.root, t.Segments(), func(p Topic) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	})
	return out
}

func (m *Matcher) match(n *node, segs []string, emit func(Topic)) {
	if len(segs) == 0 && n.terminal {
		emit(n.pattern)
	}
	if child, ok := n.children[WildcardMulti]; ok {
		for i := 0; i <= len(segs); i++ {
			m.match(child, segs[i:], emit)
		}
	}
	if len(segs) == 0 {
		return
	}
	if child, ok := n.children[segs[0]]; ok {
		m.match(child, segs[1:], emit)
	}
	if child, ok := n.children[WildcardSingle]; ok {
		m.match(child, segs[1:], emit)
	}
}
