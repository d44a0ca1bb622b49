package event

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dshills/gemview/internal/event/topic"
)

// Handler receives a dispatched command.
type Handler func(Command)

// SubscriptionID identifies a subscription for Unsubscribe.
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	pattern topic.Topic
	handler Handler
}

// Queue is a FIFO of commands. Post may be called from any goroutine;
// Subscribe, Unsubscribe and Dispatch belong to the UI goroutine.
type Queue struct {
	mu      sync.Mutex
	pending []Command
	closed  bool
	wake    func()

	matcher *topic.Matcher
	subs    map[topic.Topic][]subscription
	nextID  SubscriptionID

	posted     atomic.Uint64
	dispatched atomic.Uint64
}

// Option configures a Queue.
type Option func(*Queue)

// WithWake sets a function called after every post, typically to wake the
// UI loop. It must not block.
func WithWake(fn func()) Option {
	return func(q *Queue) {
		q.wake = fn
	}
}

// NewQueue creates an empty queue.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		matcher: topic.NewMatcher(),
		subs:    make(map[topic.Topic][]subscription),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Post appends a command.
func (q *Queue) Post(cmd Command) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.pending = append(q.pending, cmd)
	wake := q.wake
	q.mu.Unlock()
	q.posted.Add(1)
	if wake != nil {
		wake()
	}
	return nil
}

// Postf posts a command with formatted arguments.
func (q *Queue) Postf(t topic.Topic, target, format string, a ...any) error {
	return q.Post(NewCommand(t, target, format, a...))
}

// Drain removes and returns the pending commands.
func (q *Queue) Drain() []Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Len returns the number of pending commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close rejects further posts. Pending commands can still be drained.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// Subscribe registers fn for commands matching pattern.
func (q *Queue) Subscribe(pattern topic.Topic, fn Handler) (SubscriptionID, error) {
	if fn == nil {
		return 0, ErrNilHandler
	}
	if !pattern.IsValid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTopic, pattern)
	}
	q.nextID++
	q.matcher.Add(pattern)
	q.subs[pattern] = append(q.subs[pattern], subscription{id: q.nextID, pattern: pattern, handler: fn})
	return q.nextID, nil
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (q *Queue) Unsubscribe(id SubscriptionID) {
	for pattern, subs := range q.subs {
		for i, s := range subs {
			if s.id != id {
				continue
			}
			subs = append(subs[:i], subs[i+1:]...)
			if len(subs) == 0 {
				delete(q.subs, pattern)
				q.matcher.Remove(pattern)
			} else {
				q.subs[pattern] = subs
			}
			return
		}
	}
}

// Dispatch delivers the pending commands. Commands posted by handlers are
// delivered on the next call. It returns the number of commands taken.
func (q *Queue) Dispatch() int {
	cmds := q.Drain()
	for _, cmd := range cmds {
		q.deliver(cmd)
	}
	q.dispatched.Add(uint64(len(cmds)))
	return len(cmds)
}

func (q *Queue) deliver(cmd Command) {
	var handlers []subscription
	for _, p := range q.matcher.Match(cmd.Topic) {
		handlers = append(handlers, q.subs[p]...)
	}
	// Subscription order, independent of pattern order.
	for i := 1; i < len(handlers); i++ {
		for j := i; j > 0 && handlers[j].id < handlers[j-1].id; j-- {
			handlers[j], handlers[j-1] = handlers[j-1], handlers[j]
		}
	}
	for _, s := range handlers {
		s.handler(cmd)
	}
}

// Stats returns how many commands were posted and dispatched.
func (q *Queue) Stats() (posted, dispatched uint64) {
	return q.posted.Load(), q.dispatched.Load()
}
