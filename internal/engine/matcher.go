package engine

import (
	"github.com/roach88/standin/internal/value"
)

// matchCandidates partitions the unconsumed entries for one operation into
// the exact matches and the wildcard matches for a concrete argument list.
//
// Each partition preserves insertion order. Resolution order is the exact
// set followed by the wildcard set: exact patterns outrank wildcard-arity
// patterns regardless of when they were registered, and entries of equal
// specificity resolve oldest-first.
//
// Entries that are consumed, have a different arity, or fail structural
// equality are excluded. The function is pure - it never mutates entries.
func matchCandidates(entries []*stubEntry, args value.Array) (exact, wildcard []*stubEntry) {
	for _, entry := range entries {
		if entry.consumed {
			continue
		}
		if !entry.pattern.Matches(args) {
			continue
		}
		if entry.pattern.Wildcard() {
			wildcard = append(wildcard, entry)
		} else {
			exact = append(exact, entry)
		}
	}
	return exact, wildcard
}

// arityDeclared reports whether any unconsumed entry's pattern has the
// given arity. Distinguishes "no value configured for these arguments"
// (unstubbed call) from "no pattern of this argument count exists at all"
// (arity mismatch).
func arityDeclared(entries []*stubEntry, arity int) bool {
	for _, entry := range entries {
		if entry.consumed {
			continue
		}
		if entry.pattern.Arity() == arity {
			return true
		}
	}
	return false
}
