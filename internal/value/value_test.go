package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromGo_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"nil", nil, Null{}},
		{"string", "hello", String("hello")},
		{"int", 42, Int(42)},
		{"int64", int64(-7), Int(-7)},
		{"bool", true, Bool(true)},
		{"whole float narrows to int", float64(3), Int(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromGo_RejectsFractionalFloat(t *testing.T) {
	_, err := FromGo(3.14)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestFromGo_Nested(t *testing.T) {
	got, err := FromGo(map[string]any{
		"items": []any{"a", 1, true},
		"total": float64(2),
	})
	require.NoError(t, err)

	want := Object{
		"items": Array{String("a"), Int(1), Bool(true)},
		"total": Int(2),
	}
	assert.Equal(t, want, got)
}

func TestFromGo_NestedFloatRejected(t *testing.T) {
	_, err := FromGo([]any{1, 2.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[1]")
}

func TestFromGo_PassesValuesThrough(t *testing.T) {
	v := Array{Int(1), String("x")}
	got, err := FromGo(v)
	require.NoError(t, err)
	assert.Equal(t, Value(v), got)
}

func TestUnmarshal_StrictInts(t *testing.T) {
	got, err := Unmarshal([]byte(`{"n": 9007199254740993}`))
	require.NoError(t, err)

	obj, ok := got.(Object)
	require.True(t, ok)
	// Exact int64, no float64 round-trip loss
	assert.Equal(t, Int(9007199254740993), obj["n"])
}

func TestUnmarshal_RejectsFloats(t *testing.T) {
	_, err := Unmarshal([]byte(`[1.5]`))
	require.Error(t, err)
}

func TestUnmarshal_Null(t *testing.T) {
	got, err := Unmarshal([]byte(`null`))
	require.NoError(t, err)
	assert.Equal(t, Value(Null{}), got)
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// RFC 8785 sorts by UTF-16 code units, not UTF-8 bytes.
	// U+1D306 (surrogate pair, first unit 0xD834) sorts before U+FB33
	// in UTF-16 order despite having a larger code point.
	obj := Object{
		"€":     Int(1), // €
		"\U0001d306": Int(2), // 𝌆
		"דּ":     Int(3),
		"a":          Int(4),
	}

	keys := obj.SortedKeys()
	assert.Equal(t, []string{"a", "€", "\U0001d306", "דּ"}, keys)
}

func TestMarshal_RoundTrip(t *testing.T) {
	orig := Object{
		"name":  String("widget"),
		"count": Int(3),
		"tags":  Array{String("a"), String("b")},
		"void":  Null{},
	}

	data, err := Marshal(orig)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, Equal(orig, got))
}

func TestStrings_Ints_Helpers(t *testing.T) {
	assert.Equal(t, Array{String("a"), String("b")}, Strings("a", "b"))
	assert.Equal(t, Array{Int(1), Int(2)}, Ints(1, 2))
}
