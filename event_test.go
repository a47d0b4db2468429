package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent_HaltIsSticky(t *testing.T) {
	e := &Event{}

	e.Halt("first")
	e.Halt("second")
	assert.True(t, e.Status.Halted)
	assert.Equal(t, "first", e.Status.HaltReason)
}

func TestEvent_HaltEmptyReason(t *testing.T) {
	e := &Event{}

	e.Halt("")
	assert.True(t, e.Status.Halted)
	assert.Equal(t, "", e.Status.HaltReason)
}

func TestEvent_PreventDefaultIsSticky(t *testing.T) {
	e := &Event{}

	e.PreventDefault("first")
	e.PreventDefault("second")
	assert.True(t, e.Status.DefaultPrevented)
	assert.Equal(t, "first", e.Status.PreventReason)
}

func TestEvent_MutatorsNoOpWhenResolved(t *testing.T) {
	e := &Event{}
	e.resolveOK()

	e.Halt("late")
	e.PreventDefault("late")
	e.PreventDefaultContinue("late")
	assert.True(t, e.Status.OK)
	assert.False(t, e.Status.Halted)
	assert.False(t, e.Status.DefaultPrevented)
	assert.False(t, e.preventContinue)
}

func TestEvent_MutatorsNoOpWhenForbidden(t *testing.T) {
	e := &Event{unHaltable: true, unPreventable: true}

	e.Halt("try")
	e.PreventDefault("try")
	e.PreventDefaultContinue("try")
	assert.False(t, e.Status.Halted)
	assert.False(t, e.Status.DefaultPrevented)
	assert.False(t, e.preventContinue)
}

func TestEvent_ResolveOK(t *testing.T) {
	tests := []struct {
		name      string
		halted    bool
		prevented bool
		want      bool
	}{
		{"clean", false, false, true},
		{"halted", true, false, false},
		{"prevented", false, true, false},
		{"both", true, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Event{}
			if tt.halted {
				e.Halt("")
			}
			if tt.prevented {
				e.PreventDefault("")
			}
			e.resolveOK()
			assert.Equal(t, tt.want, e.Status.OK)
		})
	}
}

func TestEvent_GetSetHas(t *testing.T) {
	e := &Event{}

	assert.False(t, e.Has("key"))
	assert.Nil(t, e.Get("key"))

	e.Set("key", 42)
	assert.True(t, e.Has("key"))
	assert.Equal(t, 42, e.Get("key"))
}

func TestEvent_GetLazy(t *testing.T) {
	e := &Event{}

	n := 0
	e.Set("n", Lazy(func() any { n++; return n }))
	assert.Equal(t, 1, e.Get("n"))
	assert.Equal(t, 2, e.Get("n"))
}

func TestEvent_Topic(t *testing.T) {
	e := &Event{Emitter: "red", Type: "save"}
	assert.Equal(t, "red:save", e.Topic())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "before", PhaseBefore.String())
	assert.Equal(t, "after", PhaseAfter.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
