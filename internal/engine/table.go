package engine

import (
	"github.com/roach88/standin/internal/value"
)

// stubEntry is one configured behavior: when a call matches pattern, apply
// action. Consumed entries stay in the table (insertion order is the
// table's only ordering) but are skipped by the matcher.
type stubEntry struct {
	pattern  Pattern
	action   Action
	consumed bool
}

// stubTable maps operation names to their insertion-ordered stub entries.
//
// The table is NOT safe for concurrent use. The owning actor serializes
// all access; nothing else may touch it.
//
// INVARIANTS:
//   - Entry order for a name never changes after registration
//   - register never overwrites or removes prior entries
//   - resolve consumes at most one entry per call, and never the last
//     unconsumed entry for its pattern (sticky last value)
type stubTable struct {
	entries map[string][]*stubEntry
}

func newStubTable() *stubTable {
	return &stubTable{
		entries: make(map[string][]*stubEntry),
	}
}

// register appends a stub entry for an operation. Prior entries for the
// same pattern remain queued, enabling successive calls with the same
// arguments to see different staged results.
func (t *stubTable) register(operation string, pattern Pattern, action Action) {
	t.entries[operation] = append(t.entries[operation], &stubEntry{
		pattern: pattern,
		action:  action,
	})
}

// resolve selects the action for a call.
//
// Selection per the matcher: exact matches outrank wildcard matches, ties
// keep insertion order. Retention policy: when other unconsumed entries for
// the SAME pattern still exist, the selected entry is consumed (FIFO drain
// of staged results); when it is the last one, it stays unconsumed and is
// returned again on every future matching call.
//
// Errors:
//   - unstubbed call when nothing is configured for the operation, or
//     when patterns of this arity exist but none match the argument values
//   - arity mismatch when entries exist for the operation but none has a
//     pattern of this argument count
func (t *stubTable) resolve(doubleID, operation string, args value.Array) (Action, error) {
	entries := t.entries[operation]
	if len(entries) == 0 {
		return Action{}, NewUnstubbedCallError(doubleID, operation, args)
	}

	exact, wildcard := matchCandidates(entries, args)

	var selected *stubEntry
	switch {
	case len(exact) > 0:
		selected = exact[0]
	case len(wildcard) > 0:
		selected = wildcard[0]
	default:
		if !arityDeclared(entries, len(args)) {
			return Action{}, NewArityMismatchError(doubleID, operation, args)
		}
		return Action{}, NewUnstubbedCallError(doubleID, operation, args)
	}

	// Count unconsumed entries sharing the selected entry's pattern. More
	// than one means a queue is still draining; exactly one means this is
	// the sticky last value.
	remaining := 0
	for _, entry := range entries {
		if !entry.consumed && entry.pattern.Same(selected.pattern) {
			remaining++
		}
	}
	if remaining > 1 {
		selected.consumed = true
	}

	return selected.action, nil
}

// clear removes all entries for one operation. Other operations keep their
// configuration.
func (t *stubTable) clear(operation string) {
	delete(t.entries, operation)
}

// clearAll empties the table.
func (t *stubTable) clearAll() {
	t.entries = make(map[string][]*stubEntry)
}

// operations returns the operation names that currently have entries.
// Used for diagnostics.
func (t *stubTable) operations() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	return names
}
