package event

// Phase identifies one of the two subscriber phases of a dispatch.
// Default/prevented behavior runs between them and is configured per topic
// through DefineEvent, not through a subscription.
type Phase int

const (
	// PhaseBefore runs ahead of the event's default behavior.
	PhaseBefore Phase = iota

	// PhaseAfter runs once the default behavior has completed, and only
	// when the event finished ok (not halted, default not prevented).
	PhaseAfter
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseBefore:
		return "before"
	case PhaseAfter:
		return "after"
	default:
		return "unknown"
	}
}

// Callback is invoked with the in-flight event for every matching emission.
type Callback func(e *Event)

// Filter is a predicate attached to a subscription.
// Return true to deliver the event, false to skip this subscriber.
type Filter func(e *Event) bool

// DefaultFn is a default or prevented action bound to a topic definition.
// Its return value is captured on the event as ReturnValue.
type DefaultFn func(e *Event) any

// NotifyFunc is invoked when a matching subscription (or unsubscription,
// for detach notifiers) occurs. It receives the concrete topic string and
// the subscriber record involved.
type NotifyFunc func(topic string, sub *Subscriber)

// Named is implemented by owners that carry an emitter name. It is required
// for "this:" relative subscriptions and lets components raise events under
// their own namespace.
type Named interface {
	EmitterName() string
}

// ownerAny is the type of the OwnerAny sentinel.
type ownerAny struct{}

// OwnerAny is the wildcard owner: detach operations given OwnerAny remove
// matching subscriptions regardless of who registered them.
var OwnerAny any = ownerAny{}
