package topic

import (
	"errors"
	"strings"
)

// Constants for topic notation.
const (
	// Wildcard matches any emitter or event fragment.
	Wildcard = "*"

	// Separator divides the emitter and event fragments.
	Separator = ":"

	// DefaultEmitter qualifies bare event names without an emitter prefix.
	DefaultEmitter = "UI"

	// Self is the reserved emitter resolved against the subscribing
	// owner's own emitter name.
	Self = "this"
)

// ErrInvalid is returned when a topic string does not parse.
var ErrInvalid = errors.New("invalid topic")

// Topic is a parsed emitter:event identifier.
// Topics are immutable values; derive variants with WithEmitter.
type Topic struct {
	Emitter string
	Event   string
}

// Parse parses a topic string, qualifying bare event names with the
// package default emitter. Either fragment may be the "*" wildcard.
func Parse(s string) (Topic, error) {
	return ParseWithDefault(s, DefaultEmitter)
}

// ParseWithDefault parses a topic string, qualifying bare event names with
// the given default emitter name.
//
// Invalid forms are rejected rather than guessed at: leading or trailing
// separators (":save"), multiple separators, partial wildcards ("red*:save"),
// and empty fragments.
func ParseWithDefault(s, defaultEmitter string) (Topic, error) {
	if s == "" {
		return Topic{}, ErrInvalid
	}

	emitter := defaultEmitter
	event := s

	if idx := strings.Index(s, Separator); idx >= 0 {
		emitter = s[:idx]
		event = s[idx+1:]
		// A second separator means the string is not emitter:event.
		if strings.Contains(event, Separator) {
			return Topic{}, ErrInvalid
		}
	}

	if !validFragment(emitter) || !validFragment(event) {
		return Topic{}, ErrInvalid
	}

	return Topic{Emitter: emitter, Event: event}, nil
}

// validFragment reports whether a fragment is the bare wildcard or a
// non-empty run of word characters, hyphens, and hashes.
func validFragment(s string) bool {
	if s == Wildcard {
		return true
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !wordChar(s[i]) {
			return false
		}
	}
	return true
}

func wordChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-' || c == '#':
		return true
	}
	return false
}

// String returns the topic in emitter:event notation.
func (t Topic) String() string {
	return t.Emitter + Separator + t.Event
}

// IsZero reports whether the topic is the zero value.
func (t Topic) IsZero() bool {
	return t.Emitter == "" && t.Event == ""
}

// IsWildcard reports whether either fragment is a wildcard.
func (t Topic) IsWildcard() bool {
	return t.Emitter == Wildcard || t.Event == Wildcard
}

// IsSelf reports whether the topic uses the reserved "this" emitter.
func (t Topic) IsSelf() bool {
	return t.Emitter == Self
}

// WithEmitter returns a copy of the topic with the emitter replaced.
func (t Topic) WithEmitter(name string) Topic {
	return Topic{Emitter: name, Event: t.Event}
}

// LookupKeys returns the dispatch lookup keys for a concrete topic, in the
// fixed priority order: exact, wildcard-event, wildcard-emitter, full
// wildcard. The order is not configurable.
func (t Topic) LookupKeys() [4]string {
	return [4]string{
		t.Emitter + Separator + t.Event,
		Wildcard + Separator + t.Event,
		t.Emitter + Separator + Wildcard,
		Wildcard + Separator + Wildcard,
	}
}

// Matches reports whether this topic matches the given pattern, comparing
// each fragment position-wise as exact-or-wildcard.
func (t Topic) Matches(pattern Topic) bool {
	if pattern.Emitter != Wildcard && pattern.Emitter != t.Emitter {
		return false
	}
	if pattern.Event != Wildcard && pattern.Event != t.Event {
		return false
	}
	return true
}
