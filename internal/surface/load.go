package surface

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// LoadFile reads a CUE file and compiles every surface declared under the
// top-level "surface" field, in declaration order.
func LoadFile(path string) ([]*Surface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read surface file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return compileAll(v)
}

// LoadString compiles surfaces from inline CUE source. Used by tests.
func LoadString(src string) ([]*Surface, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	return compileAll(v)
}

// compileAll walks the top-level "surface" struct and compiles each field.
func compileAll(v cue.Value) ([]*Surface, error) {
	root := v.LookupPath(cue.ParsePath("surface"))
	if !root.Exists() {
		return nil, &CompileError{
			Field:   "surface",
			Message: "no top-level surface declarations found",
			Pos:     v.Pos(),
		}
	}

	iter, err := root.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var surfaces []*Surface
	for iter.Next() {
		s, err := Compile(iter.Value())
		if err != nil {
			return nil, err
		}
		surfaces = append(surfaces, s)
	}

	if len(surfaces) == 0 {
		return nil, &CompileError{
			Field:   "surface",
			Message: "surface struct declares no surfaces",
			Pos:     root.Pos(),
		}
	}

	return surfaces, nil
}

// FindByName returns the surface with the given name from a compiled set.
func FindByName(surfaces []*Surface, name string) (*Surface, bool) {
	for _, s := range surfaces {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}
