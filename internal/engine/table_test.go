package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/standin/internal/value"
)

func mustResolve(t *testing.T, tbl *stubTable, operation string, args value.Array) value.Value {
	t.Helper()
	action, err := tbl.resolve("dbl-1", operation, args)
	require.NoError(t, err)
	got, err := action.Apply()
	require.NoError(t, err)
	return got
}

func TestStubTable_SingleEntrySticky(t *testing.T) {
	tbl := newStubTable()
	tbl.register("get", Exactly(value.String("k")), Return(value.Int(1)))

	// A lone entry is never consumed; it answers forever
	for i := 0; i < 5; i++ {
		got := mustResolve(t, tbl, "get", value.Strings("k"))
		assert.Equal(t, value.Value(value.Int(1)), got)
	}
}

func TestStubTable_FIFODrainStickyLast(t *testing.T) {
	tbl := newStubTable()
	pattern := Exactly(value.Int(0))
	tbl.register("next", pattern, Return(value.Int(1)))
	tbl.register("next", pattern, Return(value.Int(2)))
	tbl.register("next", pattern, Return(value.Int(3)))

	args := value.Ints(0)

	// Drain in registration order, then the final entry repeats
	want := []int64{1, 2, 3, 3, 3}
	for i, n := range want {
		got := mustResolve(t, tbl, "next", args)
		assert.Equal(t, value.Value(value.Int(n)), got, "call %d", i+1)
	}
}

func TestStubTable_ExactOutranksWildcard(t *testing.T) {
	tbl := newStubTable()
	tbl.register("calc", AnyArgs(1), Return(value.String("wild")))
	tbl.register("calc", Exactly(value.Int(7)), Return(value.String("exact")))

	// Exact wins even though the wildcard was registered first
	got := mustResolve(t, tbl, "calc", value.Ints(7))
	assert.Equal(t, value.Value(value.String("exact")), got)

	// Non-matching values fall to the wildcard
	got = mustResolve(t, tbl, "calc", value.Ints(8))
	assert.Equal(t, value.Value(value.String("wild")), got)
}

func TestStubTable_WildcardTiesKeepInsertionOrder(t *testing.T) {
	tbl := newStubTable()
	tbl.register("op", AnyArgs(1), Return(value.Int(1)))
	tbl.register("op", AnyArgs(1), Return(value.Int(2)))

	assert.Equal(t, value.Value(value.Int(1)), mustResolve(t, tbl, "op", value.Ints(9)))
	assert.Equal(t, value.Value(value.Int(2)), mustResolve(t, tbl, "op", value.Ints(9)))
	// Sticky last
	assert.Equal(t, value.Value(value.Int(2)), mustResolve(t, tbl, "op", value.Ints(9)))
}

func TestStubTable_ExactAndWildcardDrainIndependently(t *testing.T) {
	tbl := newStubTable()
	tbl.register("op", Exactly(value.Int(1)), Return(value.String("e1")))
	tbl.register("op", Exactly(value.Int(1)), Return(value.String("e2")))
	tbl.register("op", AnyArgs(1), Return(value.String("w1")))

	// Exact queue drains without touching the wildcard entry
	assert.Equal(t, value.Value(value.String("e1")), mustResolve(t, tbl, "op", value.Ints(1)))
	assert.Equal(t, value.Value(value.String("e2")), mustResolve(t, tbl, "op", value.Ints(1)))
	assert.Equal(t, value.Value(value.String("e2")), mustResolve(t, tbl, "op", value.Ints(1)))

	assert.Equal(t, value.Value(value.String("w1")), mustResolve(t, tbl, "op", value.Ints(2)))
}

func TestStubTable_UnstubbedOperation(t *testing.T) {
	tbl := newStubTable()

	_, err := tbl.resolve("dbl-1", "missing", value.Ints(1))
	require.Error(t, err)
	assert.True(t, IsUnstubbedCall(err))
}

func TestStubTable_UnstubbedValues(t *testing.T) {
	tbl := newStubTable()
	tbl.register("get", Exactly(value.String("a")), Return(value.Int(1)))

	// Arity matches a configured pattern, values do not
	_, err := tbl.resolve("dbl-1", "get", value.Strings("b"))
	require.Error(t, err)
	assert.True(t, IsUnstubbedCall(err))
	assert.False(t, IsArityMismatch(err))
}

func TestStubTable_ArityMismatch(t *testing.T) {
	tbl := newStubTable()
	tbl.register("get", Exactly(value.String("a")), Return(value.Int(1)))
	tbl.register("get", AnyArgs(3), Return(value.Int(2)))

	// No configured pattern has arity 2
	_, err := tbl.resolve("dbl-1", "get", value.Strings("a", "b"))
	require.Error(t, err)
	assert.True(t, IsArityMismatch(err))

	var de *DispatchError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, ErrCodeArityMismatch, de.Code)
	assert.Equal(t, "get", de.Operation)
}

func TestStubTable_ConsumedEntriesSkipped(t *testing.T) {
	tbl := newStubTable()
	pattern := Exactly(value.Int(1))
	tbl.register("op", pattern, Raise("E", "first"))
	tbl.register("op", pattern, Return(value.Int(42)))

	// First call drains the raise entry
	action, err := tbl.resolve("dbl-1", "op", value.Ints(1))
	require.NoError(t, err)
	_, applyErr := action.Apply()
	assert.True(t, IsInjected(applyErr))

	// Second call sees the return entry
	got := mustResolve(t, tbl, "op", value.Ints(1))
	assert.Equal(t, value.Value(value.Int(42)), got)
}

func TestStubTable_Clear(t *testing.T) {
	tbl := newStubTable()
	tbl.register("a", AnyArgs(0), Return(value.Int(1)))
	tbl.register("b", AnyArgs(0), Return(value.Int(2)))

	tbl.clear("a")

	_, err := tbl.resolve("dbl-1", "a", nil)
	assert.True(t, IsUnstubbedCall(err))

	// Other operations keep their configuration
	got := mustResolve(t, tbl, "b", nil)
	assert.Equal(t, value.Value(value.Int(2)), got)
}

func TestStubTable_ClearAll(t *testing.T) {
	tbl := newStubTable()
	tbl.register("a", AnyArgs(0), Return(value.Int(1)))
	tbl.register("b", AnyArgs(0), Return(value.Int(2)))

	tbl.clearAll()

	_, err := tbl.resolve("dbl-1", "a", nil)
	assert.True(t, IsUnstubbedCall(err))
	_, err = tbl.resolve("dbl-1", "b", nil)
	assert.True(t, IsUnstubbedCall(err))
	assert.Empty(t, tbl.operations())
}
