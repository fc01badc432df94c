package engine

import (
	"sync"

	"github.com/google/uuid"
)

// IdentityGenerator mints unique double identities for the registry.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IdentityGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identities.
//
// UUIDv7 embeds a timestamp in the most significant bits, making
// identities sortable by creation time, which helps when scanning a
// registry dump during debugging.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined identities for testing.
//
// This enables deterministic test execution and golden trace comparison:
// tests provide a known sequence of identities and verify exact output.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal
// mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns identities in order.
//
// Example:
//
//	gen := NewFixedGenerator("double-1", "double-2")
//	gen.Generate() // "double-1"
//	gen.Generate() // "double-2"
//	gen.Generate() // panic: all identities exhausted
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined identity.
//
// Panics if all identities have been consumed. This is a fail-fast
// approach to catch test misconfiguration (test created more doubles than
// expected).
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all identities exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
