package surface

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Compile parses a CUE value into a Surface.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The CUE value should be the surface struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`surface: Calculator: { ... }`)
//	s, err := surface.Compile(v.LookupPath(cue.ParsePath("surface.Calculator")))
func Compile(v cue.Value) (*Surface, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	// Surface name comes from the struct label (the path selector)
	var name string
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		name = labels[len(labels)-1].String()
	}
	if name == "" {
		return nil, &CompileError{
			Field:   "surface",
			Message: "surface name is required",
			Pos:     v.Pos(),
		}
	}

	// Purpose is optional descriptive text
	var purpose string
	purposeVal := v.LookupPath(cue.ParsePath("purpose"))
	if purposeVal.Exists() {
		p, err := purposeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		purpose = p
	}

	// Operations (required, at least one)
	operations, err := parseOperations(v)
	if err != nil {
		return nil, err
	}
	if len(operations) == 0 {
		return nil, &CompileError{
			Field:   "operation",
			Message: "at least one operation is required",
			Pos:     v.Pos(),
		}
	}

	return New(name, purpose, operations)
}

// parseOperations extracts operation declarations from the surface.
func parseOperations(v cue.Value) ([]Operation, error) {
	var operations []Operation

	opVal := v.LookupPath(cue.ParsePath("operation"))
	if !opVal.Exists() {
		return operations, nil
	}

	iter, err := opVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		op := Operation{Name: iter.Label()}

		argsVal := iter.Value().LookupPath(cue.ParsePath("args"))
		if argsVal.Exists() {
			args, err := parseArgNames(argsVal)
			if err != nil {
				return nil, err
			}
			op.Args = args
		}

		operations = append(operations, op)
	}

	return operations, nil
}

// parseArgNames parses an operation's args list.
func parseArgNames(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   "args",
			Message: "args must be a list of argument names",
			Pos:     v.Pos(),
		}
	}

	var args []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		args = append(args, name)
	}
	return args, nil
}

// CompileError reports a malformed surface declaration.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return firstErr
}
