package engine

import (
	"github.com/roach88/standin/internal/value"
)

// Mode selects a double's behavior for calls nothing was configured for.
type Mode int

const (
	// ModePlain doubles fail unstubbed calls.
	ModePlain Mode = iota + 1
	// ModeVerifying doubles behave like plain doubles and are additionally
	// flagged for automatic verification at the end of their test.
	ModeVerifying
	// ModeSpy doubles fall through to a bound real implementation on
	// unstubbed calls, still recording every call.
	ModeSpy
)

// String renders the mode for diagnostics.
func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModeVerifying:
		return "verifying"
	case ModeSpy:
		return "spy"
	default:
		return "unknown"
	}
}

// SurfaceValidator is the contract consumed from the symbol-synthesis
// collaborator. A fixed-shape double checks every stub registration
// against it before accepting the stub, failing fast when the target
// surface does not declare the operation or arity.
type SurfaceValidator interface {
	// Name identifies the surface in diagnostics.
	Name() string

	// HasOperation reports whether the surface declares the operation at
	// any arity.
	HasOperation(operation string) bool

	// Validate checks that the surface declares the operation at the given
	// arity, returning a descriptive verification error when it does not.
	Validate(operation string, arity int) error
}

// RealTarget is a real implementation a spy double delegates to when no
// stub matches.
type RealTarget interface {
	// Declares reports whether the real implementation handles the
	// operation at the given arity.
	Declares(operation string, arity int) bool

	// Invoke calls the real operation with the given arguments.
	Invoke(operation string, args value.Array) (value.Value, error)
}

// Double is a substitute callable surface standing in for a real
// dependency during a test. Its state lives behind a per-double actor;
// every method is safe from any goroutine.
//
// A double posts call records to the inbox of the context that CREATED it,
// regardless of which goroutine invokes its operations.
type Double struct {
	id      string
	mode    Mode
	actor   *actor
	inbox   *Inbox
	surface SurfaceValidator // nil for open doubles
}

// ID returns the double's registry identity.
func (d *Double) ID() string {
	return d.id
}

// Mode returns the double's creation mode.
func (d *Double) Mode() Mode {
	return d.mode
}

// Inbox returns the creating context's inbox, where this double's call
// records accumulate.
func (d *Double) Inbox() *Inbox {
	return d.inbox
}

// Surface returns the validator for fixed-shape doubles, or nil for open
// ones.
func (d *Double) Surface() SurfaceValidator {
	return d.surface
}

// Configure registers a stub entry: when a call to operation matches
// pattern, apply action. Entries append; earlier entries for the same
// pattern stay queued and drain FIFO with the last retained.
//
// Fixed-shape doubles validate the registration against their surface
// first: an undeclared operation name fails with an unknown-operation
// error, a declared operation at the wrong arity fails with the surface's
// verification error.
func (d *Double) Configure(operation string, pattern Pattern, action Action) error {
	if err := d.checkSurface(operation, pattern.Arity()); err != nil {
		return err
	}

	resp := d.actor.send(request{
		kind:      reqConfigure,
		operation: operation,
		pattern:   pattern,
		action:    action,
	})
	return resp.err
}

// Expect declares that a call to operation matching pattern must occur,
// and registers a default null-returning stub for the shape so the call
// succeeds unless separately stubbed. Expectations verify in declaration
// order.
func (d *Double) Expect(operation string, pattern Pattern) error {
	if err := d.checkSurface(operation, pattern.Arity()); err != nil {
		return err
	}

	resp := d.actor.send(request{
		kind:      reqExpect,
		operation: operation,
		pattern:   pattern,
	})
	return resp.err
}

// Dispatch resolves a call and returns the configured action without
// applying it. A call record is posted to the creating context's inbox
// whenever an action was applied, including spy fallthrough.
//
// Errors: unstubbed call (plain and verifying doubles), arity mismatch,
// double closed. A spy's real-implementation error propagates as-is.
func (d *Double) Dispatch(operation string, args value.Array) (Action, error) {
	resp := d.actor.send(request{
		kind:      reqDispatch,
		operation: operation,
		args:      args,
	})

	if resp.applied {
		d.inbox.Post(d.id, operation, args)
	}
	if resp.err != nil {
		return Action{}, resp.err
	}
	return resp.action, nil
}

// Call dispatches and applies in one step. This is the surface a
// synthesized callable invokes: the configured value for Return actions,
// an *InjectedError for Raise actions, the real result for spy
// fallthrough.
func (d *Double) Call(operation string, args value.Array) (value.Value, error) {
	action, err := d.Dispatch(operation, args)
	if err != nil {
		return value.Null{}, err
	}
	return action.Apply()
}

// Clear removes all stub entries for one operation, leaving other
// operations configured. Used to reconfigure a double mid-test without
// discarding it.
func (d *Double) Clear(operation string) error {
	resp := d.actor.send(request{kind: reqClear, operation: operation})
	return resp.err
}

// ClearAll empties the double's stub table.
func (d *Double) ClearAll() error {
	resp := d.actor.send(request{kind: reqClearAll})
	return resp.err
}

// Verify checks the double's declared expectations, in declaration order,
// against the creating context's accumulated history. Returns a
// *VerificationError carrying the first unmet expectation and the full
// observed history.
func (d *Double) Verify() error {
	resp := d.actor.send(request{kind: reqExpectations})
	if resp.err != nil {
		return resp.err
	}
	return verifyExpectations(d.id, resp.expectations, d.inbox.Records())
}

// Close stops the double's actor. Requests after Close fail with a
// double-closed error. Idempotent.
func (d *Double) Close() {
	d.actor.close()
}

// checkSurface enforces fixed-shape registration rules. Open doubles
// (no surface) accept any operation name and arity.
func (d *Double) checkSurface(operation string, arity int) error {
	if d.surface == nil {
		return nil
	}
	if !d.surface.HasOperation(operation) {
		return NewUnknownOperationError(d.id, d.surface.Name(), operation)
	}
	return d.surface.Validate(operation, arity)
}
