package surface

import (
	"fmt"

	"github.com/roach88/standin/internal/value"
)

// Func is a real operation implementation bound behind a spy double.
type Func func(args value.Array) (value.Value, error)

// Real binds Go functions to a surface's declared operations. Spy doubles
// delegate unstubbed calls through a Real, which enforces that only
// declared operations with matching arity are callable.
//
// Bind calls happen during test setup; Invoke may then be called from any
// goroutine. The zero map is never mutated after setup in practice, but a
// Real is not safe for Bind concurrent with Invoke.
type Real struct {
	surface *Surface
	impls   map[string]Func
}

// NewReal creates an empty binding for a surface.
func NewReal(s *Surface) *Real {
	return &Real{
		surface: s,
		impls:   make(map[string]Func),
	}
}

// Surface returns the surface this binding implements.
func (r *Real) Surface() *Surface {
	return r.surface
}

// Bind attaches an implementation to a declared operation.
// Undeclared operations are rejected.
func (r *Real) Bind(operation string, fn Func) error {
	if !r.surface.HasOperation(operation) {
		return &VerificationError{
			Surface:   r.surface.Name(),
			Operation: operation,
			Message:   fmt.Sprintf("surface %s declares no operation %q", r.surface.Name(), operation),
		}
	}
	if fn == nil {
		return fmt.Errorf("bind %s.%s: implementation is required", r.surface.Name(), operation)
	}
	r.impls[operation] = fn
	return nil
}

// MustBind is like Bind but panics on error. Use in test setup where the
// operation name is known to be declared.
func (r *Real) MustBind(operation string, fn Func) *Real {
	if err := r.Bind(operation, fn); err != nil {
		panic(err)
	}
	return r
}

// Declares reports whether the operation is declared at the given arity
// AND has a bound implementation. A spy only falls through to calls the
// real side can actually serve.
func (r *Real) Declares(operation string, arity int) bool {
	op, ok := r.surface.byName[operation]
	if !ok || op.Arity() != arity {
		return false
	}
	_, bound := r.impls[operation]
	return bound
}

// Invoke calls the real operation with the given arguments.
func (r *Real) Invoke(operation string, args value.Array) (value.Value, error) {
	if !r.Declares(operation, len(args)) {
		return value.Null{}, fmt.Errorf("real %s: no bound implementation for %s/%d",
			r.surface.Name(), operation, len(args))
	}
	return r.impls[operation](args)
}
