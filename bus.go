package event

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/itsa/event/topic"
)

// Bus is the dispatch context: it owns the subscription registry, the
// custom-event definitions, the notifier tables, and the re-entrancy guard.
// Construct one per process (or per test) with New; there is no shared
// global state.
type Bus struct {
	subs            *registry
	defs            *definitions
	notifiers       *notifyTable
	detachNotifiers *notifyTable

	log            *zap.Logger
	defaultEmitter string

	// mu guards the re-entrancy set, the emission depth, and the deferred
	// task queue.
	mu       sync.Mutex
	active   map[string]struct{}
	depth    int
	deferred []func()

	emitted           atomic.Uint64
	delivered         atomic.Uint64
	halted            atomic.Uint64
	prevented         atomic.Uint64
	panics            atomic.Uint64
	reentrantRejected atomic.Uint64
}

// New creates a bus with the given options.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:            newRegistry(),
		defs:            newDefinitions(),
		notifiers:       newNotifyTable(),
		detachNotifiers: newNotifyTable(),
		log:             zap.NewNop(),
		defaultEmitter:  topic.DefaultEmitter,
		active:          make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// EmitterName returns the bus's own emitter name. The bus is the default
// owner and target, so "this:" subscriptions without an explicit owner
// resolve against this name.
func (b *Bus) EmitterName() string {
	return b.defaultEmitter
}

// SubscribeBefore registers a callback invoked ahead of the topic's default
// behavior. The topic may contain wildcards.
func (b *Bus) SubscribeBefore(topicStr string, cb Callback, opts ...SubscribeOption) (Handle, error) {
	return b.subscribe(PhaseBefore, []string{topicStr}, cb, opts)
}

// SubscribeAfter registers a callback invoked after the topic's default
// behavior, and only when the emission finished ok.
func (b *Bus) SubscribeAfter(topicStr string, cb Callback, opts ...SubscribeOption) (Handle, error) {
	return b.subscribe(PhaseAfter, []string{topicStr}, cb, opts)
}

// SubscribeBeforeMulti registers the callback on each topic and returns a
// composite handle detaching all of them together.
func (b *Bus) SubscribeBeforeMulti(topics []string, cb Callback, opts ...SubscribeOption) (Handle, error) {
	return b.subscribe(PhaseBefore, topics, cb, opts)
}

// SubscribeAfterMulti registers the callback on each topic and returns a
// composite handle detaching all of them together.
func (b *Bus) SubscribeAfterMulti(topics []string, cb Callback, opts ...SubscribeOption) (Handle, error) {
	return b.subscribe(PhaseAfter, topics, cb, opts)
}

// SubscribeOnceBefore registers a before-subscriber that fires at most once
// and then detaches itself once the current emission completes.
func (b *Bus) SubscribeOnceBefore(topicStr string, cb Callback, opts ...SubscribeOption) (Handle, error) {
	return b.subscribeOnce(PhaseBefore, []string{topicStr}, cb, opts)
}

// SubscribeOnceAfter registers an after-subscriber that fires at most once
// and then detaches itself once the current emission completes.
func (b *Bus) SubscribeOnceAfter(topicStr string, cb Callback, opts ...SubscribeOption) (Handle, error) {
	return b.subscribeOnce(PhaseAfter, []string{topicStr}, cb, opts)
}

func (b *Bus) subscribe(ph Phase, topics []string, cb Callback, opts []SubscribeOption) (Handle, error) {
	if cb == nil {
		return nil, ErrNilCallback
	}
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}

	cfg := subscribeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	owner := cfg.owner
	if owner == nil {
		owner = b
	}

	var (
		handles []Handle
		lastErr error
	)
	for _, raw := range topics {
		t, err := topic.ParseWithDefault(raw, b.defaultEmitter)
		if err != nil {
			b.log.Warn("subscribe skipped: invalid topic", logTopic(raw), logErr(err))
			lastErr = ErrInvalidTopic
			continue
		}

		selfOnly := false
		if t.IsSelf() {
			name := emitterNameOf(owner)
			if name == "" {
				b.log.Warn("subscribe skipped: cannot resolve this-relative topic",
					logTopic(raw), zap.String("phase", ph.String()))
				lastErr = ErrNoEmitterName
				continue
			}
			t = t.WithEmitter(name)
			selfOnly = true
		}

		sub := newSubscriber(owner, cb, cfg.filter, selfOnly)
		b.subs.add(t.String(), ph, sub, cfg.prepend)
		if !t.IsWildcard() {
			b.fireNotifiers(t, sub)
		}
		handles = append(handles, &handle{bus: b, t: t, phase: ph, sub: sub})
	}

	switch len(handles) {
	case 0:
		return nil, lastErr
	case 1:
		return handles[0], nil
	default:
		return &multiHandle{handles: handles}, nil
	}
}

func (b *Bus) subscribeOnce(ph Phase, topics []string, cb Callback, opts []SubscribeOption) (Handle, error) {
	if cb == nil {
		return nil, ErrNilCallback
	}

	// The fired flag tolerates multiple invocations within one synchronous
	// pass; the detach itself is deferred so it never mutates a bucket
	// while that bucket is being iterated.
	var (
		fired atomic.Bool
		h     Handle
	)
	wrapped := func(e *Event) {
		if !fired.CompareAndSwap(false, true) {
			return
		}
		cb(e)
		b.deferTask(func() {
			// h is unassigned if a notifier emitted this topic from
			// inside the subscribe call itself; the fired flag already
			// blocks any further delivery.
			if h != nil {
				h.Detach()
			}
		})
	}

	inner, err := b.subscribe(ph, topics, wrapped, opts)
	if err != nil {
		return nil, err
	}
	h = inner
	return inner, nil
}

// Detach removes every subscription of the owner matching the topic
// pattern, in both phases. A nil owner means the bus itself; OwnerAny
// matches every owner. Concrete-topic removals fire detach notifiers.
func (b *Bus) Detach(owner any, topicPattern string) {
	if owner == nil {
		owner = b
	}

	t, err := topic.ParseWithDefault(topicPattern, b.defaultEmitter)
	if err != nil {
		b.log.Warn("detach skipped: invalid topic", logTopic(topicPattern), logErr(err))
		return
	}
	if t.IsSelf() {
		if name := emitterNameOf(owner); name != "" {
			t = t.WithEmitter(name)
		}
	}

	if !t.IsWildcard() {
		b.unsubscribe(owner, t)
		return
	}
	for _, key := range b.subs.topics() {
		st, err := topic.Parse(key)
		if err != nil {
			continue
		}
		if st.Matches(t) {
			b.unsubscribe(owner, st)
		}
	}
}

// DetachAll removes every subscription of the owner across all topics.
// A nil owner means the bus itself.
func (b *Bus) DetachAll(owner any) {
	b.Detach(owner, topic.Wildcard+topic.Separator+topic.Wildcard)
}

// DetachAllOwners clears the whole subscription registry regardless of
// owner. This is the teardown path; detach notifiers do not fire.
func (b *Bus) DetachAllOwners() {
	b.subs.clear()
}

func (b *Bus) unsubscribe(owner any, t topic.Topic) {
	removed := b.subs.removeOwner(t.String(), owner, owner == OwnerAny)
	if len(removed) == 0 || t.IsWildcard() {
		return
	}
	for _, sub := range removed {
		b.fireDetachNotifiers(t, sub)
	}
}

// DefineEvent returns a chainable builder for the topic's definition. For a
// new topic the definition installs immediately; for an existing topic the
// builder holds a draft that only ForceAssign commits. An invalid topic is
// logged and yields an inert builder.
func (b *Bus) DefineEvent(topicStr string) *Definer {
	t, err := topic.ParseWithDefault(topicStr, b.defaultEmitter)
	if err != nil {
		b.log.Warn("define skipped: invalid topic", logTopic(topicStr), logErr(err))
		return &Definer{}
	}

	key := t.String()
	d := &Definer{defs: b.defs, key: key, def: &Definition{}}
	if !b.defs.has(key) {
		b.defs.set(key, d.def)
		d.committed = true
	}
	return d
}

// UndefineEvent deletes the topic's definition.
func (b *Bus) UndefineEvent(topicStr string) {
	t, err := topic.ParseWithDefault(topicStr, b.defaultEmitter)
	if err != nil {
		b.log.Warn("undefine skipped: invalid topic", logTopic(topicStr), logErr(err))
		return
	}
	b.defs.delete(t.String())
}

// UndefineAllEvents deletes every definition under the emitter prefix, or
// every definition when the prefix is empty.
func (b *Bus) UndefineAllEvents(emitterPrefix string) {
	b.defs.deleteAll(emitterPrefix)
}

// Topics returns every registered topic key, literal and wildcard alike.
func (b *Bus) Topics() []string {
	return b.subs.topics()
}

// CountSubscribers returns the number of records registered under one
// topic key, both phases combined.
func (b *Bus) CountSubscribers(topicStr string) int {
	t, err := topic.ParseWithDefault(topicStr, b.defaultEmitter)
	if err != nil {
		return 0
	}
	return b.subs.count(t.String())
}

// Stats is a snapshot of bus counters.
type Stats struct {
	// Emitted is the number of emissions that passed validation and the
	// re-entrancy guard.
	Emitted uint64

	// Delivered is the number of completed subscriber invocations.
	Delivered uint64

	// Halted is the number of emissions halted by a subscriber.
	Halted uint64

	// Prevented is the number of emissions whose prevented action ran.
	Prevented uint64

	// Panics is the number of recovered subscriber panics.
	Panics uint64

	// ReentrantRejected is the number of same-topic emissions rejected
	// mid-dispatch.
	ReentrantRejected uint64

	// Subscribers is the current number of subscriber records.
	Subscribers int

	// Topics is the current number of non-empty subscription buckets.
	Topics int
}

// Stats returns current bus statistics.
func (b *Bus) Stats() Stats {
	return Stats{
		Emitted:           b.emitted.Load(),
		Delivered:         b.delivered.Load(),
		Halted:            b.halted.Load(),
		Prevented:         b.prevented.Load(),
		Panics:            b.panics.Load(),
		ReentrantRejected: b.reentrantRejected.Load(),
		Subscribers:       b.subs.total(),
		Topics:            b.subs.topicCount(),
	}
}

// deferTask queues work to run once the current emission stack unwinds.
// Outside of an emission the task runs immediately.
func (b *Bus) deferTask(fn func()) {
	b.mu.Lock()
	if b.depth > 0 {
		b.deferred = append(b.deferred, fn)
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	fn()
}

// emitterNameOf resolves an owner's emitter name, empty when unassigned.
func emitterNameOf(owner any) string {
	if named, ok := owner.(Named); ok {
		return named.EmitterName()
	}
	return ""
}

func logTopic(s string) zap.Field {
	return zap.String("topic", s)
}

func logErr(err error) zap.Field {
	return zap.Error(err)
}
