package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_Notify_FiresOnConcreteSubscribe(t *testing.T) {
	b := New()

	var gotTopic string
	var gotSub *Subscriber
	err := b.Notify("red:save", func(topic string, sub *Subscriber) {
		gotTopic = topic
		gotSub = sub
	}, nil, false)
	require.NoError(t, err)

	h, err := b.SubscribeBefore("red:save", func(*Event) {})
	require.NoError(t, err)
	defer h.Detach()

	assert.Equal(t, "red:save", gotTopic)
	require.NotNil(t, gotSub)
	assert.NotEmpty(t, gotSub.ID())
}

func TestBus_Notify_WildcardPattern(t *testing.T) {
	b := New()

	var topics []string
	err := b.Notify("red:*", func(topic string, sub *Subscriber) {
		topics = append(topics, topic)
	}, nil, true)
	require.NoError(t, err)

	// Once notifier: fires for the first matching subscription only.
	_, err = b.SubscribeBefore("red:save", func(*Event) {})
	require.NoError(t, err)
	_, err = b.SubscribeBefore("red:create", func(*Event) {})
	require.NoError(t, err)

	assert.Equal(t, []string{"red:save"}, topics)
}

func TestBus_Notify_PersistentFiresEveryTime(t *testing.T) {
	b := New()

	count := 0
	require.NoError(t, b.Notify("red:*", func(string, *Subscriber) { count++ }, nil, false))

	b.SubscribeBefore("red:save", func(*Event) {})
	b.SubscribeBefore("red:create", func(*Event) {})
	assert.Equal(t, 2, count)
}

func TestBus_Notify_LookupOrder(t *testing.T) {
	b := New()

	var order []string
	record := func(key string) NotifyFunc {
		return func(string, *Subscriber) { order = append(order, key) }
	}
	require.NoError(t, b.Notify("red:save", record("red:save"), nil, false))
	require.NoError(t, b.Notify("*:save", record("*:save"), nil, false))
	require.NoError(t, b.Notify("red:*", record("red:*"), nil, false))
	require.NoError(t, b.Notify("*:*", record("*:*"), nil, false))

	b.SubscribeBefore("red:save", func(*Event) {})

	assert.Equal(t, []string{"red:save", "*:save", "red:*", "*:*"}, order)
}

func TestBus_Notify_WildcardSubscriptionDoesNotFire(t *testing.T) {
	b := New()

	count := 0
	require.NoError(t, b.Notify("*:*", func(string, *Subscriber) { count++ }, nil, false))

	// Only concrete subscriptions trigger notifiers.
	b.SubscribeBefore("red:*", func(*Event) {})
	assert.Equal(t, 0, count)

	b.SubscribeBefore("red:save", func(*Event) {})
	assert.Equal(t, 1, count)
}

func TestBus_Notify_Overwrite(t *testing.T) {
	b := New()

	first, second := 0, 0
	require.NoError(t, b.Notify("red:save", func(string, *Subscriber) { first++ }, nil, false))
	require.NoError(t, b.Notify("red:save", func(string, *Subscriber) { second++ }, nil, false))

	b.SubscribeBefore("red:save", func(*Event) {})
	assert.Equal(t, 0, first, "re-registering a topic overwrites the record")
	assert.Equal(t, 1, second)
}

func TestBus_NotifyEach(t *testing.T) {
	b := New()

	count := 0
	err := b.NotifyEach([]string{"red:save", "blue:load"}, func(string, *Subscriber) { count++ }, nil, false)
	require.NoError(t, err)

	b.SubscribeBefore("red:save", func(*Event) {})
	b.SubscribeBefore("blue:load", func(*Event) {})
	assert.Equal(t, 2, count)
}

func TestBus_Notify_Errors(t *testing.T) {
	b := New()

	err := b.Notify("red:save", nil, nil, false)
	assert.ErrorIs(t, err, ErrNilCallback)

	err = b.NotifyEach(nil, func(string, *Subscriber) {}, nil, false)
	assert.ErrorIs(t, err, ErrNoTopics)

	err = b.Notify("*bad:save", func(string, *Subscriber) {}, nil, false)
	assert.ErrorIs(t, err, ErrInvalidTopic)
}

func TestBus_UnNotify(t *testing.T) {
	b := New()

	count := 0
	require.NoError(t, b.Notify("red:save", func(string, *Subscriber) { count++ }, nil, false))
	b.UnNotify("red:save")

	b.SubscribeBefore("red:save", func(*Event) {})
	assert.Equal(t, 0, count)

	// Removing an absent record is not an error.
	b.UnNotify("red:save")
	b.UnNotifyDetach("never:registered")
}

func TestBus_NotifyDetach_FiresOnUnsubscribe(t *testing.T) {
	b := New()

	var gotTopic string
	require.NoError(t, b.NotifyDetach("red:save", func(topic string, sub *Subscriber) {
		gotTopic = topic
	}, nil, false))

	h, err := b.SubscribeBefore("red:save", func(*Event) {})
	require.NoError(t, err)
	assert.Empty(t, gotTopic)

	h.Detach()
	assert.Equal(t, "red:save", gotTopic)
}

func TestBus_NotifyDetach_WildcardEventVariant(t *testing.T) {
	b := New()

	count := 0
	require.NoError(t, b.NotifyDetach("*:save", func(string, *Subscriber) { count++ }, nil, false))

	h, _ := b.SubscribeBefore("red:save", func(*Event) {})
	h.Detach()
	assert.Equal(t, 1, count)
}

func TestBus_NotifyDetach_AsymmetricLookup(t *testing.T) {
	b := New()

	// Wildcard-emitter and full-wildcard detach notifiers are NOT
	// consulted on unsubscribe; only the literal topic and its
	// wildcard-event variant are.
	wildcardEvent, full := 0, 0
	require.NoError(t, b.NotifyDetach("red:*", func(string, *Subscriber) { wildcardEvent++ }, nil, false))
	require.NoError(t, b.NotifyDetach("*:*", func(string, *Subscriber) { full++ }, nil, false))

	h, _ := b.SubscribeBefore("red:save", func(*Event) {})
	h.Detach()

	assert.Equal(t, 0, wildcardEvent)
	assert.Equal(t, 0, full)
}

func TestBus_NotifyDetach_OnceSelfRemoves(t *testing.T) {
	b := New()

	count := 0
	require.NoError(t, b.NotifyDetach("red:save", func(string, *Subscriber) { count++ }, nil, true))

	h1, _ := b.SubscribeBefore("red:save", func(*Event) {})
	h2, _ := b.SubscribeBefore("red:save", func(*Event) {})
	h1.Detach()
	h2.Detach()

	assert.Equal(t, 1, count)
}

func TestBus_Notify_OnceCanReRegisterItself(t *testing.T) {
	b := New()

	count := 0
	var cb NotifyFunc
	cb = func(string, *Subscriber) {
		count++
		// A once notifier is removed before firing, so re-registering
		// from inside the callback survives.
		b.Notify("red:save", cb, nil, true)
	}
	require.NoError(t, b.Notify("red:save", cb, nil, true))

	b.SubscribeBefore("red:save", func(*Event) {})
	b.SubscribeBefore("red:save", func(*Event) {})
	assert.Equal(t, 2, count)
}

func TestBus_Notify_OnceWithOwner(t *testing.T) {
	// A once notifier on red:* fires for the first concrete red
	// subscription only; a later subscribe to red:create does not
	// re-fire it.
	b := New()
	owner := &struct{}{}

	var calls []string
	require.NoError(t, b.Notify("red:*", func(topic string, sub *Subscriber) {
		calls = append(calls, topic)
	}, owner, true))

	b.SubscribeBefore("red:save", func(*Event) {})
	b.SubscribeBefore("red:create", func(*Event) {})

	assert.Equal(t, []string{"red:save"}, calls)
}
