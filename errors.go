package event

import "errors"

// Sentinel errors for the event bus.
var (
	// ErrInvalidTopic is returned when a topic string is empty or malformed.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilCallback is returned when a nil callback is provided.
	ErrNilCallback = errors.New("callback cannot be nil")

	// ErrNoTopics is returned when a multi-topic operation receives an
	// empty topic list.
	ErrNoTopics = errors.New("no topics given")

	// ErrNoEmitterName is returned when a "this:" subscription cannot be
	// resolved because the owner has no emitter name.
	ErrNoEmitterName = errors.New("owner has no emitter name")
)
