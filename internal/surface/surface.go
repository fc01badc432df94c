package surface

import (
	"fmt"
)

// Operation is one declared callable on a surface. Arity is fixed: the
// length of Args.
type Operation struct {
	Name string   `json:"name"`
	Args []string `json:"args"`
}

// Arity returns the operation's declared argument count.
func (o Operation) Arity() int {
	return len(o.Args)
}

// Surface is a declared callable shape: the operation names and arities a
// real dependency exposes. Doubles created against a surface are
// fixed-shape; stub registrations are validated against it.
//
// Surfaces are immutable after compilation and safe for concurrent use.
type Surface struct {
	name       string
	purpose    string
	operations []Operation
	byName     map[string]Operation
}

// New builds a surface from a declared operation list.
// Duplicate operation names are rejected: a surface is struct-like, one
// arity per name.
func New(name, purpose string, operations []Operation) (*Surface, error) {
	if name == "" {
		return nil, fmt.Errorf("surface name is required")
	}

	byName := make(map[string]Operation, len(operations))
	for _, op := range operations {
		if op.Name == "" {
			return nil, fmt.Errorf("surface %s: operation name is required", name)
		}
		if _, exists := byName[op.Name]; exists {
			return nil, fmt.Errorf("surface %s: duplicate operation %q", name, op.Name)
		}
		byName[op.Name] = op
	}

	ops := make([]Operation, len(operations))
	copy(ops, operations)

	return &Surface{
		name:       name,
		purpose:    purpose,
		operations: ops,
		byName:     byName,
	}, nil
}

// Name returns the surface's declared name.
func (s *Surface) Name() string {
	return s.name
}

// Purpose returns the declared purpose text.
func (s *Surface) Purpose() string {
	return s.purpose
}

// Operations returns the declared operations in declaration order.
func (s *Surface) Operations() []Operation {
	out := make([]Operation, len(s.operations))
	copy(out, s.operations)
	return out
}

// HasOperation reports whether the surface declares the operation.
func (s *Surface) HasOperation(operation string) bool {
	_, ok := s.byName[operation]
	return ok
}

// Validate checks that the surface declares the operation at the given
// arity. Returns a *VerificationError describing the mismatch otherwise.
func (s *Surface) Validate(operation string, arity int) error {
	op, ok := s.byName[operation]
	if !ok {
		return &VerificationError{
			Surface:   s.name,
			Operation: operation,
			Arity:     arity,
			Message:   fmt.Sprintf("surface %s declares no operation %q", s.name, operation),
		}
	}
	if op.Arity() != arity {
		return &VerificationError{
			Surface:   s.name,
			Operation: operation,
			Arity:     arity,
			Declared:  op.Arity(),
			Message: fmt.Sprintf("surface %s declares %s/%d, stub registered with arity %d",
				s.name, operation, op.Arity(), arity),
		}
	}
	return nil
}

// VerificationError reports a stub registration the target surface does
// not declare: an unknown operation or a declared operation at the wrong
// arity.
type VerificationError struct {
	Surface   string
	Operation string
	Arity     int // arity the stub was registered with
	Declared  int // declared arity, 0 when the operation is unknown
	Message   string
}

// Error implements the error interface.
func (e *VerificationError) Error() string {
	return fmt.Sprintf("SURFACE_VERIFICATION_FAILED: %s", e.Message)
}
