package engine

import (
	"fmt"
	"sync"
)

// Registry is the process-wide lookup from double identity to handle. Call
// sites (synthesized callables) find their backing double here.
//
// The registry is insert-only: an entry is written once at creation and
// never mutated afterwards, only looked up. Reads take a shared lock so
// concurrent dispatch from many goroutines does not contend.
type Registry struct {
	mu      sync.RWMutex
	doubles map[string]*Double
	ident   IdentityGenerator
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdentityGenerator replaces the default UUIDv7 identity generator.
// Tests use a FixedGenerator for deterministic identities.
func WithIdentityGenerator(gen IdentityGenerator) RegistryOption {
	return func(r *Registry) {
		r.ident = gen
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		doubles: make(map[string]*Double),
		ident:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DoubleOption configures a Double at creation.
type DoubleOption func(*doubleConfig)

type doubleConfig struct {
	identity string
	surface  SurfaceValidator
	real     RealTarget
}

// WithIdentity pins a caller-supplied identity instead of a generated one.
// Used by the synthesis collaborator, which names doubles after the
// surface they mimic.
func WithIdentity(id string) DoubleOption {
	return func(c *doubleConfig) {
		c.identity = id
	}
}

// WithSurface makes the double fixed-shape: every stub registration is
// validated against the surface's declared operations and arities.
func WithSurface(s SurfaceValidator) DoubleOption {
	return func(c *doubleConfig) {
		c.surface = s
	}
}

// WithReal binds the real implementation a spy double delegates to.
func WithReal(target RealTarget) DoubleOption {
	return func(c *doubleConfig) {
		c.real = target
	}
}

// Create constructs a double owned by inbox's context, starts its actor,
// and registers it. The inbox is where all of the double's call records
// are routed, no matter which goroutine later invokes its operations.
//
// Spy doubles require a real target via WithReal. A pinned identity that
// is already registered is rejected - registry entries are never replaced.
func (r *Registry) Create(inbox *Inbox, mode Mode, opts ...DoubleOption) (*Double, error) {
	if inbox == nil {
		return nil, fmt.Errorf("create double: inbox is required")
	}

	cfg := &doubleConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if mode == ModeSpy && cfg.real == nil {
		return nil, fmt.Errorf("create double: spy mode requires a real target")
	}

	id := cfg.identity
	if id == "" {
		id = r.ident.Generate()
	}

	d := &Double{
		id:      id,
		mode:    mode,
		inbox:   inbox,
		surface: cfg.surface,
	}
	d.actor = newActor(id, mode == ModeSpy, cfg.real)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.doubles[id]; exists {
		d.actor.close()
		return nil, fmt.Errorf("create double: identity %q already registered", id)
	}
	r.doubles[id] = d

	return d, nil
}

// Lookup finds a double by identity.
func (r *Registry) Lookup(id string) (*Double, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.doubles[id]
	return d, ok
}

// Len returns the number of registered doubles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.doubles)
}

// CloseAll stops every registered double's actor. Called at test teardown.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.doubles {
		d.actor.close()
	}
}
