package event

import (
	"sync/atomic"

	"github.com/itsa/event/topic"
)

// Handle is the capability returned by every subscribe call. Detach is
// idempotent; a multi-topic subscription returns a composite handle that
// detaches all of its records together.
type Handle interface {
	Detach()
}

// handle detaches a single subscriber record.
type handle struct {
	bus      *Bus
	t        topic.Topic
	phase    Phase
	sub      *Subscriber
	detached atomic.Bool
}

// Detach removes exactly this subscriber record. Safe to call more than
// once; only the first call has any effect.
func (h *handle) Detach() {
	if !h.detached.CompareAndSwap(false, true) {
		return
	}
	if h.bus.subs.removeRecord(h.t.String(), h.sub) && !h.t.IsWildcard() {
		h.bus.fireDetachNotifiers(h.t, h.sub)
	}
}

// multiHandle detaches a batch of handles together.
type multiHandle struct {
	handles []Handle
}

func (m *multiHandle) Detach() {
	for _, h := range m.handles {
		h.Detach()
	}
}
