package value

// Equal reports structural equality of two values.
//
// Equality is by type and content: Int(1) never equals String("1"),
// arrays compare element-wise in order, objects compare key sets and
// per-key values. Nil and Null{} are interchangeable so that an absent
// result compares equal to an explicit Null.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}

	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bval, exists := bv[k]
			if !exists || !Equal(v, bval) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// EqualArrays reports element-wise structural equality of two argument
// lists. Arrays of different length are never equal.
func EqualArrays(a, b Array) bool {
	return Equal(a, b)
}
