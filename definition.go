package event

import (
	"strings"
	"sync"

	"github.com/itsa/event/topic"
)

// Definition is the behavioral metadata bound to a topic: the default
// action, the action run in its place when the default is prevented, and
// the control flags. The zero value is preventable, haltable, and
// silenceable.
type Definition struct {
	DefaultFn     DefaultFn
	PreventedFn   DefaultFn
	UnHaltable    bool
	UnPreventable bool
	UnSilencable  bool
}

// definitions stores per-topic definitions.
type definitions struct {
	mu sync.RWMutex
	m  map[string]*Definition
}

func newDefinitions() *definitions {
	return &definitions{m: make(map[string]*Definition)}
}

func (d *definitions) get(key string) *Definition {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m[key]
}

func (d *definitions) has(key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.m[key]
	return ok
}

func (d *definitions) set(key string, def *Definition) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m[key] = def
}

func (d *definitions) delete(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.m, key)
}

// deleteAll removes every definition under the emitter prefix, or every
// definition when the prefix is empty.
func (d *definitions) deleteAll(emitterPrefix string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if emitterPrefix == "" {
		d.m = make(map[string]*Definition)
		return
	}
	prefix := emitterPrefix + topic.Separator
	for key := range d.m {
		if strings.HasPrefix(key, prefix) {
			delete(d.m, key)
		}
	}
}

// Definer is the chainable builder returned by DefineEvent.
//
// For a topic without an existing definition the builder writes through
// immediately. For an already-defined topic the builder accumulates a
// pending draft that is only committed by ForceAssign, so a late define
// never silently overrides established behavior.
type Definer struct {
	defs      *definitions
	key       string
	def       *Definition
	committed bool
}

// DefaultFn sets the topic's default action.
func (d *Definer) DefaultFn(fn DefaultFn) *Definer {
	if d.def != nil {
		d.def.DefaultFn = fn
	}
	return d
}

// PreventedFn sets the action run in place of the default when the event
// is default-prevented.
func (d *Definer) PreventedFn(fn DefaultFn) *Definer {
	if d.def != nil {
		d.def.PreventedFn = fn
	}
	return d
}

// UnHaltable marks the topic as immune to Halt.
func (d *Definer) UnHaltable() *Definer {
	if d.def != nil {
		d.def.UnHaltable = true
	}
	return d
}

// UnPreventable marks the topic as immune to PreventDefault.
func (d *Definer) UnPreventable() *Definer {
	if d.def != nil {
		d.def.UnPreventable = true
	}
	return d
}

// UnSilencable marks the topic as immune to silencing; attempts are undone
// with a logged warning during dispatch.
func (d *Definer) UnSilencable() *Definer {
	if d.def != nil {
		d.def.UnSilencable = true
	}
	return d
}

// ForceAssign commits a pending draft over an existing definition. Without
// it, defining an already-defined topic is a no-op and the draft is
// discarded.
func (d *Definer) ForceAssign() *Definer {
	if d.def != nil && !d.committed {
		d.defs.set(d.key, d.def)
		d.committed = true
	}
	return d
}
