package event

import "github.com/google/uuid"

// Subscriber is one registered listener on a topic. Records are created by
// the subscribe calls and live until their handle is detached, an owner or
// pattern detach removes them, or the registry is cleared.
type Subscriber struct {
	// Owner is the listening party. Defaults to the bus itself. Owner
	// identity drives owner-scoped detach and self-only delivery.
	Owner any

	// Callback receives the in-flight event.
	Callback Callback

	// Filter, when set, must return true for the event to be delivered.
	Filter Filter

	// SelfOnly marks a "this:" subscription: the callback only fires when
	// the event's target is the owner itself.
	SelfOnly bool

	id string
}

func newSubscriber(owner any, cb Callback, filter Filter, selfOnly bool) *Subscriber {
	return &Subscriber{
		Owner:    owner,
		Callback: cb,
		Filter:   filter,
		SelfOnly: selfOnly,
		id:       uuid.NewString(),
	}
}

// ID returns the unique subscriber identifier.
func (s *Subscriber) ID() string {
	return s.id
}
