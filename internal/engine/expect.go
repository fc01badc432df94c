package engine

// Expectation declares that a call with a given shape must occur. The
// pattern semantics are the same as for stub entries: exact argument list
// or wildcard arity.
type Expectation struct {
	Operation string
	Pattern   Pattern
}

// verifyExpectations checks a declared expectation list against observed
// history, both for one double.
//
// Expectations are checked in declaration order. Each one searches the
// REMAINING history - records past the position consumed by the previous
// expectation - for a record of the same operation whose arguments satisfy
// the pattern. A hit advances the position past that record; a miss fails
// immediately with the unmet expectation and the full observed history.
//
// This enforces strict left-to-right ordering: an expectation can never be
// satisfied by a call that happened before a previously satisfied
// expectation's call. Records of other doubles or other operations are
// skipped, not consumed.
func verifyExpectations(doubleID string, expectations []Expectation, history []CallRecord) error {
	pos := 0

	for _, exp := range expectations {
		found := -1
		for i := pos; i < len(history); i++ {
			rec := history[i]
			if rec.DoubleID != doubleID || rec.Operation != exp.Operation {
				continue
			}
			if exp.Pattern.Matches(rec.Args) {
				found = i
				break
			}
		}

		if found < 0 {
			return &VerificationError{
				DoubleID: doubleID,
				Unmet:    exp,
				History:  history,
			}
		}
		pos = found + 1
	}

	return nil
}
