package event

import "time"

// Payload carries caller-supplied fields merged into the event object at
// emission time. The reserved key "silent" maps onto Event.Silent; every
// other key becomes a retrievable event field unless the event already
// carries a field of that name.
type Payload map[string]any

// Lazy is a computed payload value. It is stored as-is during the merge and
// evaluated on every Event.Get, so the field keeps reflecting live state
// after the emission has started.
type Lazy func() any

// Status accumulates the outcome of one emission.
type Status struct {
	// OK is resolved after the before phase: true when the event was
	// neither halted nor default-prevented.
	OK bool

	// DefaultFn is true when the topic's default action ran.
	DefaultFn bool

	// PreventedFn is true when the topic's prevented action ran.
	PreventedFn bool

	// Halted is true when a before-subscriber halted the event.
	Halted bool

	// HaltReason is the reason passed to Halt, empty when none was given.
	HaltReason string

	// DefaultPrevented is true when a before-subscriber prevented the
	// default action.
	DefaultPrevented bool

	// PreventReason is the reason passed to PreventDefault or
	// PreventDefaultContinue, empty when none was given.
	PreventReason string
}

// Event is the object passed through one emission. It is constructed when
// the emission starts and is dead once Emit returns; callers may keep a
// reference to inspect the final Status but further mutators are no-ops.
type Event struct {
	// ID uniquely identifies this event instance.
	ID string

	// Target is the instance the event happened on. Defaults to the bus.
	Target any

	// Type is the event name fragment of the topic.
	Type string

	// Emitter is the emitter name fragment of the topic.
	Emitter string

	// Emitted is when the emission started.
	Emitted time.Time

	// Silent suppresses the remaining subscriber invocations for this
	// emission. Default and prevented actions still run. Subscribers may
	// set it directly unless the topic is defined unsilencable.
	Silent bool

	// ReturnValue is the return value of the default or prevented action.
	ReturnValue any

	// Status is the accumulated outcome of the emission.
	Status Status

	fields map[string]any

	// Definition flags snapshotted at build time.
	unHaltable    bool
	unPreventable bool
	unSilencable  bool

	// preventContinue is the PreventDefaultContinue variant: the prevented
	// action replaces the default action but OK stays true, so the after
	// phase still runs.
	preventContinue bool

	// okResolved freezes the status after the before phase; the mutators
	// become no-ops from then on.
	okResolved bool

	origTarget   any
	retainTarget bool
}

// Halt stops the emission: the default/prevented action and the after phase
// are skipped, and remaining before-subscribers are not invoked. A no-op
// once the status is resolved or when the topic is defined unhaltable.
// The reason may be empty.
func (e *Event) Halt(reason string) {
	if e.okResolved || e.unHaltable || e.Status.Halted {
		return
	}
	e.Status.Halted = true
	e.Status.HaltReason = reason
}

// PreventDefault suppresses the topic's default action; the prevented
// action runs in its place and the after phase is skipped. A no-op once the
// status is resolved or when the topic is defined unpreventable.
func (e *Event) PreventDefault(reason string) {
	if e.okResolved || e.unPreventable || e.Status.DefaultPrevented {
		return
	}
	e.Status.DefaultPrevented = true
	e.Status.PreventReason = reason
}

// PreventDefaultContinue suppresses the default action like PreventDefault
// but leaves the emission ok, so after-subscribers still run.
func (e *Event) PreventDefaultContinue(reason string) {
	if e.okResolved || e.unPreventable || e.preventContinue {
		return
	}
	e.preventContinue = true
	if e.Status.PreventReason == "" {
		e.Status.PreventReason = reason
	}
}

// Get returns a payload field. Lazy fields are evaluated on every call.
func (e *Event) Get(key string) any {
	v, ok := e.fields[key]
	if !ok {
		return nil
	}
	if fn, ok := v.(Lazy); ok {
		return fn()
	}
	return v
}

// Has reports whether a payload field is present.
func (e *Event) Has(key string) bool {
	_, ok := e.fields[key]
	return ok
}

// Set stores a payload field, for subscribers passing data to later phases.
func (e *Event) Set(key string, v any) {
	if e.fields == nil {
		e.fields = make(map[string]any)
	}
	e.fields[key] = v
}

// RewriteTarget temporarily points the event at a different target. Used by
// delegating filters that match against a substitute target. The dispatcher
// restores the original target after the before phase unless RetainTarget
// was called.
func (e *Event) RewriteTarget(target any) {
	e.Target = target
}

// RetainTarget keeps a rewritten target in place for the rest of the
// emission instead of restoring the original after the before phase.
func (e *Event) RetainTarget() {
	e.retainTarget = true
}

// Topic returns the event's concrete topic string.
func (e *Event) Topic() string {
	return e.Emitter + ":" + e.Type
}

// resolveOK fixes the emission outcome after the before phase. From this
// point Halt and PreventDefault are no-ops.
func (e *Event) resolveOK() {
	e.Status.OK = !e.Status.Halted && !e.Status.DefaultPrevented
	e.okResolved = true
}

// reservedField reports whether a payload key collides with a built-in
// event property. Caller-supplied fields never overwrite these.
func reservedField(key string) bool {
	switch key {
	case "id", "target", "type", "emitter", "emitted", "status", "returnValue":
		return true
	}
	return false
}
