package testutil

import "fmt"

// PrefixIdentityGenerator generates predictable double identities of the
// form "<prefix>-0001", "<prefix>-0002", and so on.
//
// This enables deterministic golden snapshot comparison: the same scenario
// with the same generator produces byte-identical traces. Unlike
// engine.FixedGenerator it never exhausts, so scenarios do not need to
// know up front how many doubles they create.
//
// Thread-safety: NOT safe for concurrent use. Scenario setup creates
// doubles from a single goroutine.
type PrefixIdentityGenerator struct {
	prefix string
	n      int
}

// NewPrefixIdentityGenerator creates a generator with the given prefix.
//
// If prefix is empty, "double" is used.
func NewPrefixIdentityGenerator(prefix string) *PrefixIdentityGenerator {
	if prefix == "" {
		prefix = "double"
	}
	return &PrefixIdentityGenerator{prefix: prefix}
}

// Generate returns the next identity in sequence.
//
// Implements engine.IdentityGenerator.
func (g *PrefixIdentityGenerator) Generate() string {
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
