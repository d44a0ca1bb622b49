package event

import "errors"

var (
	// ErrInvalidTopic is returned when subscribing to an empty or malformed
	// pattern.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrQueueClosed is returned when posting to a closed queue.
	ErrQueueClosed = errors.New("event queue is closed")
)
