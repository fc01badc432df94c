package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal ints", Int(1), Int(1), true},
		{"different ints", Int(1), Int(2), false},
		{"int vs string never equal", Int(1), String("1"), false},
		{"equal strings", String("x"), String("x"), true},
		{"equal bools", Bool(true), Bool(true), true},
		{"bool vs int never equal", Bool(true), Int(1), false},
		{"nil equals null", nil, Null{}, true},
		{"null equals null", Null{}, Null{}, true},
		{"null vs zero int", Null{}, Int(0), false},
		{
			"equal arrays",
			Array{Int(1), String("a")},
			Array{Int(1), String("a")},
			true,
		},
		{
			"array order matters",
			Array{Int(1), Int(2)},
			Array{Int(2), Int(1)},
			false,
		},
		{
			"array length matters",
			Array{Int(1)},
			Array{Int(1), Int(1)},
			false,
		},
		{
			"equal objects",
			Object{"a": Int(1), "b": String("x")},
			Object{"b": String("x"), "a": Int(1)},
			true,
		},
		{
			"object extra key",
			Object{"a": Int(1)},
			Object{"a": Int(1), "b": Int(2)},
			false,
		},
		{
			"nested difference",
			Object{"a": Array{Int(1)}},
			Object{"a": Array{Int(2)}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			// Equality is symmetric
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestEqualArrays(t *testing.T) {
	assert.True(t, EqualArrays(Array{Int(1)}, Array{Int(1)}))
	assert.True(t, EqualArrays(nil, Array{}))
	assert.False(t, EqualArrays(Array{Int(1)}, Array{Int(1), Int(2)}))
}
