package event

import "go.uber.org/zap"

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for dispatch diagnostics. Defaults to a
// no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(b *Bus) {
		if log != nil {
			b.log = log
		}
	}
}

// WithDefaultEmitter sets the emitter name substituted into bare event
// names and used as the bus's own emitter name. Defaults to "UI".
func WithDefaultEmitter(name string) Option {
	return func(b *Bus) {
		if name != "" {
			b.defaultEmitter = name
		}
	}
}

// subscribeConfig collects the per-subscription options.
type subscribeConfig struct {
	owner   any
	filter  Filter
	prepend bool
}

// SubscribeOption configures a subscription.
type SubscribeOption func(*subscribeConfig)

// WithOwner sets the listening party. Owner identity drives owner-scoped
// detach and "this:" resolution. Defaults to the bus itself.
func WithOwner(owner any) SubscribeOption {
	return func(c *subscribeConfig) {
		c.owner = owner
	}
}

// WithFilter attaches a delivery predicate to the subscription.
func WithFilter(f Filter) SubscribeOption {
	return func(c *subscribeConfig) {
		c.filter = f
	}
}

// WithPrepend inserts the subscriber ahead of previously registered ones in
// its bucket instead of appending.
func WithPrepend() SubscribeOption {
	return func(c *subscribeConfig) {
		c.prepend = true
	}
}
