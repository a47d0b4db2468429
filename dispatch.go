package event

import (
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itsa/event/topic"
)

// Override is the privileged emit form used by delegating collaborators.
// It substitutes explicit subscriber lists for the registry buckets,
// installs a per-subscriber preprocess hook, and can supply a pre-built
// event object instead of having the dispatcher construct one.
type Override struct {
	// Before replaces bucket resolution for the before phase when non-nil.
	Before []*Subscriber

	// After replaces bucket resolution for the after phase when non-nil.
	After []*Subscriber

	// Preprocess runs ahead of each subscriber; returning false skips it.
	// The hook may rewrite the event's target for delegation-style
	// filtering; the original target is restored after the before phase
	// unless the event retained it.
	Preprocess func(e *Event, sub *Subscriber) bool

	// Event, when non-nil, is adopted as the emission's event object.
	Event *Event
}

// Emit dispatches the topic with the bus itself as target. It returns the
// resolved event object, or nil when the topic is invalid or the same topic
// is already mid-dispatch.
func (b *Bus) Emit(topicStr string, payload Payload) *Event {
	return b.emit(nil, topicStr, payload, nil)
}

// EmitFrom dispatches the topic with an explicit target instance.
func (b *Bus) EmitFrom(target any, topicStr string, payload Payload) *Event {
	return b.emit(target, topicStr, payload, nil)
}

// EmitWith is the privileged emit entry point. See Override.
func (b *Bus) EmitWith(target any, topicStr string, payload Payload, ov *Override) *Event {
	return b.emit(target, topicStr, payload, ov)
}

// emit runs the dispatch protocol: resolve, build, before phase, status
// resolution, default/prevented phase, after phase, teardown. Strictly
// sequential; the call returns only after every phase has completed.
func (b *Bus) emit(target any, topicStr string, payload Payload, ov *Override) *Event {
	t, err := topic.ParseWithDefault(topicStr, b.defaultEmitter)
	if err != nil {
		b.log.Warn("emit aborted: invalid topic", logTopic(topicStr), logErr(err))
		return nil
	}
	if t.IsWildcard() {
		b.log.Warn("emit aborted: cannot emit a wildcard topic", logTopic(topicStr))
		return nil
	}
	key := t.String()

	// Re-entrancy guard: a topic cannot be emitted from within its own
	// dispatch. The inner emission is dropped, not queued.
	b.mu.Lock()
	if _, busy := b.active[key]; busy {
		b.mu.Unlock()
		b.reentrantRejected.Add(1)
		b.log.Warn("emit aborted: topic already mid-dispatch", logTopic(key))
		return nil
	}
	b.active[key] = struct{}{}
	b.depth++
	b.mu.Unlock()
	defer b.finish(key)

	b.emitted.Add(1)

	if target == nil {
		target = b
	}
	def := b.defs.get(key)
	e := b.buildEvent(target, t, payload, def, ov)

	keys := t.LookupKeys()

	// Before phase.
	if ov != nil && ov.Before != nil {
		b.runPhase(e, ov.Before, PhaseBefore, def, ov)
	} else {
		for _, k := range keys {
			if b.runPhase(e, b.subs.snapshot(k, PhaseBefore), PhaseBefore, def, ov) {
				break
			}
		}
	}

	e.resolveOK()
	if e.Target != e.origTarget && !e.retainTarget {
		e.Target = e.origTarget
	}

	// Default/prevented phase. Runs only when a definition exists and the
	// event was not halted.
	if def != nil && !e.Status.Halted {
		if e.Status.DefaultPrevented || e.preventContinue {
			if def.PreventedFn != nil {
				e.ReturnValue = def.PreventedFn(e)
				e.Status.PreventedFn = true
				b.prevented.Add(1)
			}
		} else if def.DefaultFn != nil {
			e.ReturnValue = def.DefaultFn(e)
			e.Status.DefaultFn = true
		}
	}

	// After phase. Halting has no further effect here; only silencing
	// stops the iteration early.
	if e.Status.OK {
		if ov != nil && ov.After != nil {
			b.runPhase(e, ov.After, PhaseAfter, def, ov)
		} else {
			for _, k := range keys {
				if b.runPhase(e, b.subs.snapshot(k, PhaseAfter), PhaseAfter, def, ov) {
					break
				}
			}
		}
	}

	if e.Status.Halted {
		b.halted.Add(1)
	}
	return e
}

// finish clears the re-entrancy guard and, when the outermost emission
// unwinds, drains the deferred task queue (one-shot self-detachments).
func (b *Bus) finish(key string) {
	b.mu.Lock()
	delete(b.active, key)
	b.depth--
	var tasks []func()
	if b.depth == 0 && len(b.deferred) > 0 {
		tasks = b.deferred
		b.deferred = nil
	}
	b.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}
}

// buildEvent constructs (or adopts) the event object and merges the caller
// payload. Caller-supplied fields never overwrite built-in event properties
// or fields already present on an adopted event.
func (b *Bus) buildEvent(target any, t topic.Topic, payload Payload, def *Definition, ov *Override) *Event {
	var e *Event
	if ov != nil && ov.Event != nil {
		e = ov.Event
		if e.fields == nil {
			e.fields = make(map[string]any, len(payload))
		}
	} else {
		e = &Event{
			ID:      uuid.NewString(),
			Emitted: time.Now(),
			fields:  make(map[string]any, len(payload)),
		}
	}

	e.Target = target
	e.origTarget = target
	e.Type = t.Event
	e.Emitter = t.Emitter
	e.Status = Status{}
	e.okResolved = false
	e.preventContinue = false
	e.retainTarget = false

	if def != nil {
		e.unHaltable = def.UnHaltable
		e.unPreventable = def.UnPreventable
		e.unSilencable = def.UnSilencable
	}

	for k, v := range payload {
		if k == "silent" {
			want, _ := v.(bool)
			if want && e.unSilencable {
				b.log.Warn("silent payload ignored: event is unsilencable", logTopic(t.String()))
				continue
			}
			e.Silent = want
			continue
		}
		if reservedField(k) {
			continue
		}
		if _, exists := e.fields[k]; exists {
			continue
		}
		e.fields[k] = v
	}
	return e
}

// runPhase invokes one subscriber sequence. It reports whether the phase
// should stop entirely: the event went silent, or (before phase only) it
// was halted.
func (b *Bus) runPhase(e *Event, subs []*Subscriber, ph Phase, def *Definition, ov *Override) bool {
	for _, sub := range subs {
		if e.Silent {
			return true
		}
		if ph == PhaseBefore && e.Status.Halted {
			return true
		}
		if sub.SelfOnly && e.Target != sub.Owner {
			continue
		}
		if ov != nil && ov.Preprocess != nil && !ov.Preprocess(e, sub) {
			continue
		}
		if sub.Filter != nil && !sub.Filter(e) {
			continue
		}

		b.invoke(e, sub)

		if e.unSilencable && e.Silent {
			e.Silent = false
			b.log.Warn("silencing not allowed for this event",
				logTopic(e.Topic()), zap.String("subscriber", sub.id))
		}
	}
	return e.Silent || (ph == PhaseBefore && e.Status.Halted)
}

// invoke runs one callback with panic isolation. A panicking subscriber is
// logged with its stack and the emission continues with the next record.
func (b *Bus) invoke(e *Event, sub *Subscriber) {
	defer func() {
		if r := recover(); r != nil {
			b.panics.Add(1)
			b.log.Error("subscriber panic",
				logTopic(e.Topic()),
				zap.String("subscriber", sub.id),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()

	sub.Callback(e)
	b.delivered.Add(1)
}
