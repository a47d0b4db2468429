package event

import "sync"

// bucket holds the ordered subscriber sequences for one topic key.
// A bucket with both sequences empty is removed from the registry.
type bucket struct {
	before []*Subscriber
	after  []*Subscriber
}

func (b *bucket) empty() bool {
	return len(b.before) == 0 && len(b.after) == 0
}

func (b *bucket) phase(ph Phase) *[]*Subscriber {
	if ph == PhaseBefore {
		return &b.before
	}
	return &b.after
}

// registry stores subscriber buckets keyed by literal or wildcard topic
// string. Reads used during dispatch return copies so an in-flight emission
// never observes concurrent mutation of a sequence it is iterating.
type registry struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
}

func newRegistry() *registry {
	return &registry{buckets: make(map[string]*bucket)}
}

// add appends a subscriber to the topic's phase sequence, or inserts it at
// the head when prepend is set.
func (r *registry) add(key string, ph Phase, sub *Subscriber, prepend bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bk := r.buckets[key]
	if bk == nil {
		bk = &bucket{}
		r.buckets[key] = bk
	}

	seq := bk.phase(ph)
	if prepend {
		*seq = append([]*Subscriber{sub}, *seq...)
	} else {
		*seq = append(*seq, sub)
	}
}

// removeRecord removes exactly one subscriber record by identity.
func (r *registry) removeRecord(key string, sub *Subscriber) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	bk := r.buckets[key]
	if bk == nil {
		return false
	}

	removed := false
	for _, seq := range []*[]*Subscriber{&bk.before, &bk.after} {
		for i, s := range *seq {
			if s == sub {
				*seq = append((*seq)[:i], (*seq)[i+1:]...)
				removed = true
				break
			}
		}
		if removed {
			break
		}
	}

	if bk.empty() {
		delete(r.buckets, key)
	}
	return removed
}

// removeOwner removes every subscriber record in both phases whose owner
// matches, or every record regardless of owner when anyOwner is set.
// It returns the removed records in registration order, before phase first.
func (r *registry) removeOwner(key string, owner any, anyOwner bool) []*Subscriber {
	r.mu.Lock()
	defer r.mu.Unlock()

	bk := r.buckets[key]
	if bk == nil {
		return nil
	}

	var removed []*Subscriber
	for _, seq := range []*[]*Subscriber{&bk.before, &bk.after} {
		kept := (*seq)[:0]
		for _, s := range *seq {
			if anyOwner || s.Owner == owner {
				removed = append(removed, s)
			} else {
				kept = append(kept, s)
			}
		}
		*seq = kept
	}

	if bk.empty() {
		delete(r.buckets, key)
	}
	return removed
}

// snapshot returns a copy of the topic's phase sequence.
func (r *registry) snapshot(key string, ph Phase) []*Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bk := r.buckets[key]
	if bk == nil {
		return nil
	}

	seq := *bk.phase(ph)
	if len(seq) == 0 {
		return nil
	}
	out := make([]*Subscriber, len(seq))
	copy(out, seq)
	return out
}

// topics returns all registered topic keys, literal and wildcard alike.
func (r *registry) topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.buckets) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.buckets))
	for k := range r.buckets {
		keys = append(keys, k)
	}
	return keys
}

// count returns the number of records registered under one topic key.
func (r *registry) count(key string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bk := r.buckets[key]
	if bk == nil {
		return 0
	}
	return len(bk.before) + len(bk.after)
}

// total returns the number of records across all topics.
func (r *registry) total() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, bk := range r.buckets {
		n += len(bk.before) + len(bk.after)
	}
	return n
}

// topicCount returns the number of non-empty buckets.
func (r *registry) topicCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.buckets)
}

// clear removes every bucket. Used for process teardown.
func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buckets = make(map[string]*bucket)
}
