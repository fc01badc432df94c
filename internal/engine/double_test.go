package engine

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/standin/internal/value"
)

// fakeSurface is a minimal SurfaceValidator for fixed-shape tests.
type fakeSurface struct {
	name string
	ops  map[string]int // operation -> arity
}

func (s *fakeSurface) Name() string { return s.name }

func (s *fakeSurface) HasOperation(operation string) bool {
	_, ok := s.ops[operation]
	return ok
}

func (s *fakeSurface) Validate(operation string, arity int) error {
	declared, ok := s.ops[operation]
	if !ok {
		return fmt.Errorf("surface %s declares no operation %q", s.name, operation)
	}
	if declared != arity {
		return fmt.Errorf("surface %s declares %s/%d, not /%d", s.name, operation, declared, arity)
	}
	return nil
}

// fakeReal is a RealTarget backed by a function map.
type fakeReal struct {
	impls map[string]func(value.Array) (value.Value, error)
	arity map[string]int
}

func (r *fakeReal) Declares(operation string, arity int) bool {
	declared, ok := r.arity[operation]
	return ok && declared == arity
}

func (r *fakeReal) Invoke(operation string, args value.Array) (value.Value, error) {
	return r.impls[operation](args)
}

func newTestDouble(t *testing.T, mode Mode, opts ...DoubleOption) (*Double, *Inbox) {
	t.Helper()
	reg := NewRegistry(WithIdentityGenerator(NewFixedGenerator("dbl-1", "dbl-2", "dbl-3")))
	inbox := NewInbox()
	d, err := reg.Create(inbox, mode, opts...)
	require.NoError(t, err)
	t.Cleanup(reg.CloseAll)
	return d, inbox
}

func TestDouble_CallReturnsConfiguredValue(t *testing.T) {
	d, _ := newTestDouble(t, ModePlain)

	require.NoError(t, d.Configure("get", Exactly(value.String("k")), Return(value.Int(1))))

	got, err := d.Call("get", value.Strings("k"))
	require.NoError(t, err)
	assert.Equal(t, value.Value(value.Int(1)), got)
}

func TestDouble_CallUnstubbedFails(t *testing.T) {
	d, inbox := newTestDouble(t, ModePlain)

	_, err := d.Call("get", value.Strings("k"))
	require.Error(t, err)
	assert.True(t, IsUnstubbedCall(err))

	// Failed dispatches leave no record
	assert.Equal(t, 0, inbox.Len())
}

func TestDouble_InjectedErrorPropagatesUnwrapped(t *testing.T) {
	d, inbox := newTestDouble(t, ModePlain)

	require.NoError(t, d.Configure("fetch", AnyArgs(1), Raise("TimeoutError", "deadline exceeded")))

	_, err := d.Call("fetch", value.Strings("url"))
	require.Error(t, err)

	var injected *InjectedError
	require.ErrorAs(t, err, &injected)
	assert.Equal(t, "TimeoutError", injected.Kind)
	assert.Equal(t, "deadline exceeded", injected.Message)

	// The error was a configured outcome, so the call still applied
	assert.Equal(t, 1, inbox.Len())
}

func TestDouble_RecordsStampedInOrder(t *testing.T) {
	d, inbox := newTestDouble(t, ModePlain)

	require.NoError(t, d.Configure("op", AnyArgs(1), Return(value.Null{})))

	for i := int64(1); i <= 3; i++ {
		_, err := d.Call("op", value.Ints(i))
		require.NoError(t, err)
	}

	records := inbox.Records()
	require.Len(t, records, 3)
	for i, rec := range records {
		assert.Equal(t, "dbl-1", rec.DoubleID)
		assert.Equal(t, "op", rec.Operation)
		assert.Equal(t, int64(i+1), rec.Seq)
		assert.True(t, value.EqualArrays(value.Ints(int64(i+1)), rec.Args))
	}
}

func TestDouble_CrossGoroutineRecordsRouteToCreatorInbox(t *testing.T) {
	d, inbox := newTestDouble(t, ModePlain)

	require.NoError(t, d.Configure("work", AnyArgs(1), Return(value.Null{})))

	// Calls from spawned goroutines still land in the creating context's
	// inbox.
	var wg sync.WaitGroup
	const calls = 10
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			_, err := d.Call("work", value.Ints(n))
			assert.NoError(t, err)
		}(int64(i))
	}
	wg.Wait()

	records := inbox.Records()
	require.Len(t, records, calls)

	// Ordinals are dense and strictly increasing
	for i, rec := range records {
		assert.Equal(t, int64(i+1), rec.Seq)
	}
}

func TestDouble_InboxWaitSignalsArrival(t *testing.T) {
	d, inbox := newTestDouble(t, ModePlain)
	require.NoError(t, d.Configure("ping", AnyArgs(0), Return(value.Null{})))

	go func() {
		_, _ = d.Call("ping", nil)
	}()

	deadline := time.After(time.Second)
	for inbox.Len() < 1 {
		select {
		case <-deadline:
			t.Fatal("no record arrived")
		case <-inbox.Wait():
		}
	}
	assert.Equal(t, 1, inbox.Len())
}

func TestDouble_VerifyInOrder(t *testing.T) {
	d, _ := newTestDouble(t, ModeVerifying)

	require.NoError(t, d.Expect("first", Exactly(value.Int(1))))
	require.NoError(t, d.Expect("second", AnyArgs(1)))

	_, err := d.Call("first", value.Ints(1))
	require.NoError(t, err)
	_, err = d.Call("second", value.Strings("x"))
	require.NoError(t, err)

	assert.NoError(t, d.Verify())
}

func TestDouble_VerifyOutOfOrderFails(t *testing.T) {
	d, _ := newTestDouble(t, ModeVerifying)

	require.NoError(t, d.Expect("first", AnyArgs(0)))
	require.NoError(t, d.Expect("second", AnyArgs(0)))

	// Calls arrive in the wrong order
	_, err := d.Call("second", nil)
	require.NoError(t, err)
	_, err = d.Call("first", nil)
	require.NoError(t, err)

	err = d.Verify()
	require.Error(t, err)
	assert.True(t, IsVerificationFailure(err))

	var ve *VerificationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "second", ve.Unmet.Operation)
	assert.Len(t, ve.History, 2)
}

func TestDouble_VerifyAllowsInterveningCalls(t *testing.T) {
	d, _ := newTestDouble(t, ModeVerifying)

	require.NoError(t, d.Configure("noise", AnyArgs(0), Return(value.Null{})))
	require.NoError(t, d.Expect("a", AnyArgs(0)))
	require.NoError(t, d.Expect("b", AnyArgs(0)))

	_, _ = d.Call("noise", nil)
	_, _ = d.Call("a", nil)
	_, _ = d.Call("noise", nil)
	_, _ = d.Call("b", nil)

	assert.NoError(t, d.Verify())
}

func TestDouble_VerifyConsumesHistoryLeftToRight(t *testing.T) {
	d, _ := newTestDouble(t, ModeVerifying)

	// The single "a" call cannot satisfy both expectations
	require.NoError(t, d.Expect("a", AnyArgs(0)))
	require.NoError(t, d.Expect("a", AnyArgs(0)))

	_, err := d.Call("a", nil)
	require.NoError(t, err)

	err = d.Verify()
	require.Error(t, err)
	assert.True(t, IsVerificationFailure(err))
}

func TestDouble_ExpectRegistersDefaultStub(t *testing.T) {
	d, _ := newTestDouble(t, ModeVerifying)

	require.NoError(t, d.Expect("notify", Exactly(value.String("ready"))))

	// The expected call succeeds with a null result despite no Configure
	got, err := d.Call("notify", value.Strings("ready"))
	require.NoError(t, err)
	assert.Equal(t, value.Value(value.Null{}), got)
}

func TestDouble_SpyFallsThroughToReal(t *testing.T) {
	real := &fakeReal{
		arity: map[string]int{"add": 2},
		impls: map[string]func(value.Array) (value.Value, error){
			"add": func(args value.Array) (value.Value, error) {
				a := args[0].(value.Int)
				b := args[1].(value.Int)
				return a + b, nil
			},
		},
	}
	d, inbox := newTestDouble(t, ModeSpy, WithReal(real))

	got, err := d.Call("add", value.Ints(2, 3))
	require.NoError(t, err)
	assert.Equal(t, value.Value(value.Int(5)), got)

	// Fallthrough still records the call
	require.Equal(t, 1, inbox.Len())
	assert.Equal(t, "add", inbox.Records()[0].Operation)
}

func TestDouble_SpyStubOutranksReal(t *testing.T) {
	real := &fakeReal{
		arity: map[string]int{"add": 2},
		impls: map[string]func(value.Array) (value.Value, error){
			"add": func(value.Array) (value.Value, error) {
				return value.Int(-1), nil
			},
		},
	}
	d, _ := newTestDouble(t, ModeSpy, WithReal(real))

	require.NoError(t, d.Configure("add", Exactly(value.Ints(2, 3)...), Return(value.Int(99))))

	// Stubbed arguments hit the stub
	got, err := d.Call("add", value.Ints(2, 3))
	require.NoError(t, err)
	assert.Equal(t, value.Value(value.Int(99)), got)

	// Other arguments fall through to the real implementation
	got, err = d.Call("add", value.Ints(1, 1))
	require.NoError(t, err)
	assert.Equal(t, value.Value(value.Int(-1)), got)
}

func TestDouble_SpyUndeclaredOperationStaysFatal(t *testing.T) {
	real := &fakeReal{arity: map[string]int{"add": 2}}
	d, inbox := newTestDouble(t, ModeSpy, WithReal(real))

	_, err := d.Call("subtract", value.Ints(2, 3))
	require.Error(t, err)
	assert.True(t, IsUnstubbedCall(err))
	assert.Equal(t, 0, inbox.Len())
}

func TestDouble_SpyRealErrorPropagatesAndRecords(t *testing.T) {
	real := &fakeReal{
		arity: map[string]int{"fail": 0},
		impls: map[string]func(value.Array) (value.Value, error){
			"fail": func(value.Array) (value.Value, error) {
				return value.Null{}, fmt.Errorf("backend unavailable")
			},
		},
	}
	d, inbox := newTestDouble(t, ModeSpy, WithReal(real))

	_, err := d.Call("fail", nil)
	require.Error(t, err)
	assert.Equal(t, "backend unavailable", err.Error())

	// The real call happened, so the record is posted
	assert.Equal(t, 1, inbox.Len())
}

func TestDouble_FixedShapeRejectsUnknownOperation(t *testing.T) {
	s := &fakeSurface{name: "Calculator", ops: map[string]int{"add": 2}}
	d, _ := newTestDouble(t, ModePlain, WithSurface(s))

	err := d.Configure("subtract", AnyArgs(2), Return(value.Int(0)))
	require.Error(t, err)
	assert.True(t, IsUnknownOperation(err))

	err = d.Expect("subtract", AnyArgs(2))
	require.Error(t, err)
	assert.True(t, IsUnknownOperation(err))
}

func TestDouble_FixedShapeRejectsWrongArity(t *testing.T) {
	s := &fakeSurface{name: "Calculator", ops: map[string]int{"add": 2}}
	d, _ := newTestDouble(t, ModePlain, WithSurface(s))

	err := d.Configure("add", AnyArgs(3), Return(value.Int(0)))
	require.Error(t, err)
	assert.False(t, IsUnknownOperation(err))
}

func TestDouble_OpenDoubleAcceptsAnything(t *testing.T) {
	d, _ := newTestDouble(t, ModePlain)

	assert.NoError(t, d.Configure("anything", AnyArgs(5), Return(value.Null{})))
	assert.NoError(t, d.Expect("whatever", AnyArgs(0)))
}

func TestDouble_ClearPerOperation(t *testing.T) {
	d, _ := newTestDouble(t, ModePlain)

	require.NoError(t, d.Configure("a", AnyArgs(0), Return(value.Int(1))))
	require.NoError(t, d.Configure("b", AnyArgs(0), Return(value.Int(2))))

	require.NoError(t, d.Clear("a"))

	_, err := d.Call("a", nil)
	assert.True(t, IsUnstubbedCall(err))

	got, err := d.Call("b", nil)
	require.NoError(t, err)
	assert.Equal(t, value.Value(value.Int(2)), got)
}

func TestDouble_CloseFailsFast(t *testing.T) {
	d, _ := newTestDouble(t, ModePlain)

	require.NoError(t, d.Configure("op", AnyArgs(0), Return(value.Int(1))))
	d.Close()
	d.Close() // idempotent

	_, err := d.Call("op", nil)
	require.Error(t, err)

	var de *DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeDoubleClosed, de.Code)
}

func TestRegistry_GeneratedAndPinnedIdentities(t *testing.T) {
	reg := NewRegistry(WithIdentityGenerator(NewFixedGenerator("gen-1")))
	t.Cleanup(reg.CloseAll)
	inbox := NewInbox()

	generated, err := reg.Create(inbox, ModePlain)
	require.NoError(t, err)
	assert.Equal(t, "gen-1", generated.ID())

	pinned, err := reg.Create(inbox, ModePlain, WithIdentity("my-double"))
	require.NoError(t, err)
	assert.Equal(t, "my-double", pinned.ID())

	found, ok := reg.Lookup("my-double")
	require.True(t, ok)
	assert.Same(t, pinned, found)

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_DuplicateIdentityRejected(t *testing.T) {
	reg := NewRegistry()
	t.Cleanup(reg.CloseAll)
	inbox := NewInbox()

	_, err := reg.Create(inbox, ModePlain, WithIdentity("dup"))
	require.NoError(t, err)

	_, err = reg.Create(inbox, ModePlain, WithIdentity("dup"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_SpyRequiresReal(t *testing.T) {
	reg := NewRegistry()
	t.Cleanup(reg.CloseAll)

	_, err := reg.Create(NewInbox(), ModeSpy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "real target")
}

func TestRegistry_NilInboxRejected(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Create(nil, ModePlain)
	require.Error(t, err)
}

func TestUUIDv7Generator_UniqueIdentities(t *testing.T) {
	gen := UUIDv7Generator{}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.Generate()
		assert.False(t, seen[id], "duplicate identity %s", id)
		seen[id] = true
	}
}

func TestFixedGenerator_ExhaustionPanics(t *testing.T) {
	gen := NewFixedGenerator("only-one")
	assert.Equal(t, "only-one", gen.Generate())
	assert.Panics(t, func() { gen.Generate() })
}
