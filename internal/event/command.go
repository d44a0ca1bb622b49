package event

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/gemview/internal/event/topic"
)

// Command is a posted command. Target names the view it is meant for; an
// empty target addresses every subscriber.
type Command struct {
	Topic  topic.Topic
	Target string
	Args   string
}

// NewCommand builds a command with formatted arguments.
func NewCommand(t topic.Topic, target, format string, a ...any) Command {
	return Command{Topic: t, Target: target, Args: fmt.Sprintf(format, a...)}
}

// ParseCommand splits a command string like "scroll.step arg:1" into its
// topic and arguments.
func ParseCommand(target, s string) Command {
	s = strings.TrimSpace(s)
	t, args, _ := strings.Cut(s, " ")
	return Command{Topic: topic.Topic(t), Target: target, Args: strings.TrimSpace(args)}
}

// String returns the topic followed by the arguments.
func (c Command) String() string {
	if c.Args == "" {
		return c.Topic.String()
	}
	return c.Topic.String() + " " + c.Args
}

// Arg returns the value of the space-delimited argument name.
func (c Command) Arg(name string) (string, bool) {
	key := name + ":"
	for _, field := range strings.Fields(c.Args) {
		if v, ok := strings.CutPrefix(field, key); ok {
			return v, true
		}
	}
	return "", false
}

// ArgInt returns argument name as an integer, or 0.
func (c Command) ArgInt(name string) int {
	v, ok := c.Arg(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// ArgString returns everything after "name:" to the end of the arguments.
// It is used for values that may contain spaces, such as URLs and
// messages.
func (c Command) ArgString(name string) string {
	key := name + ":"
	i := 0
	for {
		j := strings.Index(c.Args[i:], key)
		if j < 0 {
			return ""
		}
		j += i
		if j == 0 || c.Args[j-1] == ' ' {
			return c.Args[j+len(key):]
		}
		i = j + len(key)
	}
}
