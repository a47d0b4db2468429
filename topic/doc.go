// Package topic provides topic types and pattern matching for the event bus.
//
// Topics identify events using emitter:event notation:
//
//	red:save      - the "save" event raised by the "red" emitter
//	save          - shorthand, qualified with the default emitter ("UI:save")
//	red:*         - every event of the "red" emitter
//	*:save        - the "save" event of every emitter
//	*:*           - every event
//
// Both fragments accept word characters, hyphens and hashes, or a bare "*"
// wildcard. Partial wildcards ("red*") are invalid.
//
// The reserved emitter "this" marks a subscription that is resolved against
// the subscribing owner's own emitter name and only fires when the event
// targets that owner.
//
// At dispatch time a concrete topic expands into four lookup keys in fixed
// priority order: the exact topic, its wildcard-event form, its
// wildcard-emitter form, and the full wildcard. LookupKeys derives them
// without regular expressions so the hot path stays cheap.
package topic
