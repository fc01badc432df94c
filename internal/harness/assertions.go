package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/standin/internal/engine"
	"github.com/roach88/standin/internal/journal"
	"github.com/roach88/standin/internal/value"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		if event.Type == "call" {
			fmt.Fprintf(&buf, "  [%d] %s.%s %v\n", i+1, event.Double, event.Operation, event.Args)
		}
	}

	return buf.String()
}

// AssertionContext provides the execution artifacts assertions query.
type AssertionContext struct {
	Journal *journal.Journal
	Doubles map[string]*engine.Double
	Ctx     context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
//
// Applied-call assertions (calls_contain, call_order, call_count) query
// the journal, so only calls the engine actually applied count. Failed
// dispatches appear in the trace but never in the journal.
//
// Doubles checked by a verify assertion are recorded in verified so the
// harness can skip them during teardown auto-verification.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext, verified map[string]bool) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertCallsContain:
			err = assertCallsContain(actx, result.Trace, assertion)
		case AssertCallOrder:
			err = assertCallOrder(actx, result.Trace, assertion)
		case AssertCallCount:
			err = assertCallCount(actx, result.Trace, assertion)
		case AssertVerify:
			if verified != nil {
				verified[assertion.Double] = true
			}
			err = assertVerify(actx, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertCallsContain checks the journal for an applied call matching the
// double, operation, and args. Omitted args match any arguments.
func assertCallsContain(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	records, err := actx.Journal.ListByDouble(actx.Ctx, assertion.Double)
	if err != nil {
		return fmt.Errorf("calls_contain: %w", err)
	}

	for _, rec := range records {
		if rec.Operation != assertion.Operation {
			continue
		}
		if matchRecordArgs(rec.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertCallsContain,
		Expected: fmt.Sprintf("applied call %s.%s with args %v", assertion.Double, assertion.Operation, assertion.Args),
		Actual:   "not found in journal",
		Trace:    trace,
	}
}

// assertCallOrder checks that operations were applied in the given order.
// Operations don't need to be consecutive (intervening calls are allowed).
// An empty Double scopes the check across all doubles.
func assertCallOrder(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	var (
		records []engine.CallRecord
		err     error
	)
	if assertion.Double != "" {
		records, err = actx.Journal.ListByDouble(actx.Ctx, assertion.Double)
	} else {
		records, err = actx.Journal.ListCalls(actx.Ctx)
	}
	if err != nil {
		return fmt.Errorf("call_order: %w", err)
	}

	// First position of each expected operation, 1-indexed for readability
	positions := make(map[string]int)
	for i, rec := range records {
		for _, expected := range assertion.Operations {
			if rec.Operation == expected && positions[expected] == 0 {
				positions[expected] = i + 1
			}
		}
	}

	for _, operation := range assertion.Operations {
		if positions[operation] == 0 {
			return &AssertionError{
				Type:     AssertCallOrder,
				Expected: fmt.Sprintf("all operations applied: %v", assertion.Operations),
				Actual:   fmt.Sprintf("missing operation: %s", operation),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Operations); i++ {
		prev := assertion.Operations[i-1]
		curr := assertion.Operations[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertCallOrder,
				Expected: fmt.Sprintf("operations in order: %v", assertion.Operations),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertCallCount checks that the operation was applied exactly the
// specified number of times on the double.
func assertCallCount(actx *AssertionContext, trace []TraceEvent, assertion Assertion) error {
	count, err := actx.Journal.CountCalls(actx.Ctx, assertion.Double, assertion.Operation)
	if err != nil {
		return fmt.Errorf("call_count: %w", err)
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertCallCount,
			Expected: fmt.Sprintf("%d applied calls to %s.%s", assertion.Count, assertion.Double, assertion.Operation),
			Actual:   fmt.Sprintf("%d applied calls", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertVerify runs ordered expectation verification on a double.
// The engine's verification error already renders expected vs observed.
func assertVerify(actx *AssertionContext, assertion Assertion) error {
	d, ok := actx.Doubles[assertion.Double]
	if !ok {
		return fmt.Errorf("verify: unknown double %q", assertion.Double)
	}
	return d.Verify()
}

// matchRecordArgs compares journaled call arguments against expected YAML
// values. nil expected means any arguments; an empty list means a
// zero-argument call.
func matchRecordArgs(actual value.Array, expected []interface{}) bool {
	if expected == nil {
		return true
	}

	want, err := convertArgs(expected)
	if err != nil {
		return false
	}
	return value.EqualArrays(actual, want)
}
