package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/standin/internal/value"
)

// DispatchError represents a fatal error detected while configuring or
// dispatching a double.
//
// Dispatch errors include:
//   - Unstubbed call: arguments matched no configured pattern
//   - Arity mismatch: argument count matched no configured pattern's arity
//   - Unknown operation: configuring an operation a fixed-shape double
//     does not declare
//   - Double closed: request sent after the double's actor stopped
//
// DispatchError includes structured fields for diagnostics.
type DispatchError struct {
	// Code identifies the error category.
	Code DispatchErrorCode

	// Message is a human-readable description.
	Message string

	// DoubleID identifies the affected double.
	DoubleID string

	// Operation is the operation name involved.
	Operation string

	// Args are the offending call arguments, when the error concerns a
	// dispatch rather than a configuration.
	Args value.Array
}

// DispatchErrorCode categorizes dispatch errors.
type DispatchErrorCode string

const (
	// ErrCodeUnstubbedCall indicates arguments matched no configured pattern.
	ErrCodeUnstubbedCall DispatchErrorCode = "UNSTUBBED_CALL"

	// ErrCodeArityMismatch indicates the argument count matched no
	// configured pattern's arity.
	ErrCodeArityMismatch DispatchErrorCode = "ARITY_MISMATCH"

	// ErrCodeUnknownOperation indicates a stub registration for an
	// operation name a fixed-shape double does not declare.
	ErrCodeUnknownOperation DispatchErrorCode = "UNKNOWN_OPERATION"

	// ErrCodeDoubleClosed indicates a request after the double was closed.
	ErrCodeDoubleClosed DispatchErrorCode = "DOUBLE_CLOSED"
)

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if e.Operation != "" && e.DoubleID != "" {
		return fmt.Sprintf("%s: %s (double=%s, operation=%s)", e.Code, e.Message, e.DoubleID, e.Operation)
	}
	if e.DoubleID != "" {
		return fmt.Sprintf("%s: %s (double=%s)", e.Code, e.Message, e.DoubleID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnstubbedCall reports whether err is an unstubbed-call dispatch error.
// Uses errors.As to handle wrapped errors.
func IsUnstubbedCall(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeUnstubbedCall
	}
	return false
}

// IsArityMismatch reports whether err is an arity-mismatch dispatch error.
func IsArityMismatch(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeArityMismatch
	}
	return false
}

// IsUnknownOperation reports whether err is an unknown-operation error.
func IsUnknownOperation(err error) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Code == ErrCodeUnknownOperation
	}
	return false
}

// NewUnstubbedCallError creates a DispatchError for a call that matched no
// configured pattern.
func NewUnstubbedCallError(doubleID, operation string, args value.Array) *DispatchError {
	return &DispatchError{
		Code:      ErrCodeUnstubbedCall,
		Message:   fmt.Sprintf("no stub configured for %s with %d argument(s)", operation, len(args)),
		DoubleID:  doubleID,
		Operation: operation,
		Args:      args,
	}
}

// NewArityMismatchError creates a DispatchError for an argument count that
// matched no configured pattern's arity.
func NewArityMismatchError(doubleID, operation string, args value.Array) *DispatchError {
	return &DispatchError{
		Code:      ErrCodeArityMismatch,
		Message:   fmt.Sprintf("%s called with %d argument(s), which matches no configured arity", operation, len(args)),
		DoubleID:  doubleID,
		Operation: operation,
		Args:      args,
	}
}

// NewUnknownOperationError creates a DispatchError for configuring an
// operation a fixed-shape double does not declare.
func NewUnknownOperationError(doubleID, surfaceName, operation string) *DispatchError {
	return &DispatchError{
		Code:      ErrCodeUnknownOperation,
		Message:   fmt.Sprintf("surface %s declares no operation %q", surfaceName, operation),
		DoubleID:  doubleID,
		Operation: operation,
	}
}

// InjectedError is the error a Raise action produces when applied. It
// propagates to the caller exactly as configured - kind plus message,
// never wrapped.
type InjectedError struct {
	Kind    string
	Message string
}

// Error implements the error interface.
func (e *InjectedError) Error() string {
	if e.Message == "" {
		return e.Kind
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsInjected reports whether err is a configured Raise action's error.
func IsInjected(err error) bool {
	var ie *InjectedError
	return errors.As(err, &ie)
}

// VerificationError is returned by Verify when a declared expectation was
// not met. It carries the unmet expectation and the full observed history
// for diagnostics.
type VerificationError struct {
	DoubleID string
	Unmet    Expectation
	History  []CallRecord
}

// Error implements the error interface. The full observed history is
// rendered so a failing test explains itself without re-running.
func (e *VerificationError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "verification failed for double %s\n", e.DoubleID)
	fmt.Fprintf(&buf, "  Expected: call %s%s\n", e.Unmet.Operation, e.Unmet.Pattern)
	fmt.Fprintf(&buf, "  Actual: no matching call in remaining history\n")

	fmt.Fprintf(&buf, "\nObserved calls:\n")
	if len(e.History) == 0 {
		fmt.Fprintf(&buf, "  (none)\n")
		return buf.String()
	}
	for i, rec := range e.History {
		fmt.Fprintf(&buf, "  [%d] %s%s\n", i+1, rec.Operation, formatArgs(rec.Args))
	}

	return buf.String()
}

// IsVerificationFailure reports whether err is a verification failure.
func IsVerificationFailure(err error) bool {
	var ve *VerificationError
	return errors.As(err, &ve)
}

func formatArgs(args value.Array) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		b, err := value.Marshal(arg)
		if err != nil {
			parts[i] = fmt.Sprintf("<%v>", err)
			continue
		}
		parts[i] = string(b)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
