package event

import (
	"sync"

	"github.com/itsa/event/topic"
)

// notifier is a lazy "someone (un)subscribed to topic X" callback, used to
// defer setup work until a first subscriber actually appears.
type notifier struct {
	fn    NotifyFunc
	owner any
	once  bool
}

// notifyTable stores one notifier per topic key; re-registering a key
// overwrites the previous record.
type notifyTable struct {
	mu sync.RWMutex
	m  map[string]*notifier
}

func newNotifyTable() *notifyTable {
	return &notifyTable{m: make(map[string]*notifier)}
}

func (t *notifyTable) set(key string, n *notifier) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[key] = n
}

func (t *notifyTable) delete(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.m, key)
}

// take returns the notifier for a key, removing it first when it is a
// one-shot record. Removal before invocation keeps a callback that
// re-registers the same key from being wiped by its own cleanup.
func (t *notifyTable) take(key string) (*notifier, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, ok := t.m[key]
	if !ok {
		return nil, false
	}
	if n.once {
		delete(t.m, key)
	}
	return n, true
}

// fireNotifiers runs the notifiers matching a new concrete subscription.
// The lookup order is literal topic, wildcard-event, wildcard-emitter, full
// wildcard; each notifier fires at most once per subscription.
func (b *Bus) fireNotifiers(t topic.Topic, sub *Subscriber) {
	for _, key := range t.LookupKeys() {
		if n, ok := b.notifiers.take(key); ok {
			n.fn(t.String(), sub)
		}
	}
}

// fireDetachNotifiers runs the detach notifiers matching a concrete
// unsubscription. Only the literal topic and its wildcard-event variant are
// checked; wildcard-emitter and full-wildcard records never fire on detach.
func (b *Bus) fireDetachNotifiers(t topic.Topic, sub *Subscriber) {
	keys := [2]string{t.String(), topic.Wildcard + topic.Separator + t.Event}
	for _, key := range keys {
		if n, ok := b.detachNotifiers.take(key); ok {
			n.fn(t.String(), sub)
		}
	}
}

// Notify registers a callback fired when a subscription matching the topic
// occurs. The topic may be a wildcard pattern. One record is kept per topic
// string; registering again overwrites it. When once is set the record
// removes itself after firing.
func (b *Bus) Notify(topicStr string, cb NotifyFunc, owner any, once bool) error {
	return b.registerNotify(b.notifiers, []string{topicStr}, cb, owner, once)
}

// NotifyEach registers the callback for each topic in the list.
func (b *Bus) NotifyEach(topics []string, cb NotifyFunc, owner any, once bool) error {
	return b.registerNotify(b.notifiers, topics, cb, owner, once)
}

// NotifyDetach registers a callback fired when an unsubscription matching
// the topic occurs. Semantics otherwise match Notify.
func (b *Bus) NotifyDetach(topicStr string, cb NotifyFunc, owner any, once bool) error {
	return b.registerNotify(b.detachNotifiers, []string{topicStr}, cb, owner, once)
}

// NotifyDetachEach registers the detach callback for each topic in the list.
func (b *Bus) NotifyDetachEach(topics []string, cb NotifyFunc, owner any, once bool) error {
	return b.registerNotify(b.detachNotifiers, topics, cb, owner, once)
}

// UnNotify removes the notifier for a topic. Removing an absent record is
// not an error.
func (b *Bus) UnNotify(topicStr string) {
	b.unregisterNotify(b.notifiers, topicStr)
}

// UnNotifyDetach removes the detach notifier for a topic.
func (b *Bus) UnNotifyDetach(topicStr string) {
	b.unregisterNotify(b.detachNotifiers, topicStr)
}

func (b *Bus) registerNotify(table *notifyTable, topics []string, cb NotifyFunc, owner any, once bool) error {
	if cb == nil {
		return ErrNilCallback
	}
	if len(topics) == 0 {
		return ErrNoTopics
	}

	registered := 0
	for _, raw := range topics {
		t, err := topic.ParseWithDefault(raw, b.defaultEmitter)
		if err != nil {
			b.log.Warn("notify skipped: invalid topic", logTopic(raw), logErr(err))
			continue
		}
		table.set(t.String(), &notifier{fn: cb, owner: owner, once: once})
		registered++
	}
	if registered == 0 {
		return ErrInvalidTopic
	}
	return nil
}

func (b *Bus) unregisterNotify(table *notifyTable, topicStr string) {
	t, err := topic.ParseWithDefault(topicStr, b.defaultEmitter)
	if err != nil {
		b.log.Warn("unnotify skipped: invalid topic", logTopic(topicStr), logErr(err))
		return
	}
	table.delete(t.String())
}
