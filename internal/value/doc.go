// Package value defines the constrained value types that flow through
// doubles: stub arguments, configured returns, and recorded call arguments.
//
// Values are a sealed set (null, string, int, bool, array, object) with
// explicit structural equality. Floats are forbidden: argument matching and
// golden trace snapshots both rely on exact, deterministic representation,
// and float equality breaks that.
//
// The package also provides RFC 8785 canonical JSON serialization, used for
// content-addressed call record IDs and golden trace comparison.
package value
