// Package surface implements the symbol-synthesis side of standin:
// declared callable surfaces that doubles mimic.
//
// A surface names the operations a dependency exposes, each with a fixed
// arity. Surfaces are declared in CUE:
//
//	surface: Calculator: {
//		purpose: "arithmetic backend the tests stub out"
//		operation: process: args: ["a", "b", "c"]
//		operation: describe: args: []
//	}
//
// The double engine consumes surfaces through its SurfaceValidator
// contract: before a stub is registered against a fixed-shape double, the
// surface checks that the operation exists and the pattern's arity matches
// the declaration, failing fast with a descriptive verification error.
//
// The package also provides Real, a binding of Go functions to a surface's
// declared operations, which spy doubles delegate to when no stub matches.
package surface
