// Package event provides a synchronous, in-process publish/subscribe
// dispatcher. Components raise named events ("emitterName:eventName") and
// other components subscribe to them, optionally with wildcards, phase
// ordering, and per-event control semantics - the in-memory nervous system
// of an application, decoupling components that must react to each other's
// state changes without direct references.
//
// # Architecture
//
//	                ┌───────────────────────────────────────────┐
//	                │                   Bus                     │
//	                │  - subscription registry (before/after)   │
//	                │  - custom-event definitions               │
//	                │  - (detach-)notifier tables               │
//	                │  - re-entrancy guard, deferred detach     │
//	                └───────────────────────────────────────────┘
//	                                    │
//	        ┌───────────────────────────┼───────────────────────────┐
//	        ▼                           ▼                           ▼
//	┌───────────────┐         ┌─────────────────┐         ┌─────────────────┐
//	│     topic     │         │    Dispatch     │         │     Handle      │
//	│  - parse      │         │  - 3 phases     │         │  - idempotent   │
//	│  - wildcard   │         │  - 4 buckets    │         │    detach       │
//	│    lookup keys│         │  - halt/prevent │         │  - composite    │
//	└───────────────┘         └─────────────────┘         └─────────────────┘
//
// # Topics
//
// Topics use emitter:event notation. A bare event name is qualified with
// the default emitter ("UI"). Either fragment may be the "*" wildcard in a
// subscription; emissions are always concrete:
//
//	red:save   - the "save" event of the "red" emitter
//	*:save     - "save" from any emitter
//	red:*      - any event of "red"
//	*:*        - everything
//
// # Dispatch protocol
//
// An emission resolves its four subscriber buckets - exact topic,
// wildcard-event, wildcard-emitter, full wildcard, in that fixed priority
// order - and runs three phases synchronously:
//
//  1. Before-subscribers. May Halt the event, PreventDefault, or silence
//     the remaining subscribers.
//  2. The topic's default action (or its prevented action when the default
//     was prevented), configured with DefineEvent.
//  3. After-subscribers, only when the emission finished ok.
//
// Within a bucket, subscribers run in registration order; WithPrepend
// inserts at the head. Emitting a topic from inside its own subscriber
// chain is rejected with a warning rather than recursing.
//
// # Basic usage
//
//	bus := event.New(event.WithLogger(logger))
//
//	bus.DefineEvent("red:save").DefaultFn(func(e *event.Event) any {
//	    return store.Save()
//	})
//
//	h, _ := bus.SubscribeBefore("red:save", func(e *event.Event) {
//	    if !valid(e.Get("payload")) {
//	        e.Halt("validation failed")
//	    }
//	})
//	defer h.Detach()
//
//	e := bus.Emit("red:save", event.Payload{"payload": data})
//	if e != nil && e.Status.OK {
//	    // default action ran
//	}
//
// # Lazy setup via notifiers
//
// Notify defers setup work until a first subscriber actually appears:
//
//	bus.Notify("red:*", func(topic string, sub *event.Subscriber) {
//	    // first subscription on any red event - materialize the definition
//	    bus.DefineEvent(topic).DefaultFn(defaultSave)
//	}, owner, true)
//
// # Concurrency model
//
// Emission is fully synchronous: the call returns after every phase has
// completed, and there is no queueing or parallel delivery. One-shot
// subscriptions detach themselves through a deferred task queue drained
// when the outermost emission unwinds, so bucket sequences are never
// mutated while being iterated. Registries are internally locked, so a bus
// may be shared across goroutines, but ordering guarantees only hold
// within one goroutine's emissions.
package event
