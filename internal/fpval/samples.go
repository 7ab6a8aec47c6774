package fpval

// Finite non-zero representatives are chosen to be exactly representable at
// half precision, so concrete folding gives identical answers at every
// precision the corpus uses.
var finiteSamples = []float64{1, -1, 2, -2, 0.5, -0.5}

// Samples returns the value classes enumerated for a free variable: both
// signed zeros, both infinities, NaN, finite non-zero representatives, and
// the undef and poison markers.
//
// The returned slice is freshly allocated; callers may reorder it.
func Samples() []Value {
	vs := []Value{
		Const(0),
		NegZero(),
		Inf(1),
		Inf(-1),
		NaN(),
	}
	for _, f := range finiteSamples {
		vs = append(vs, Const(f))
	}
	return append(vs, Undef(), Poison())
}

// ConstSamples returns the values enumerated for a symbolic constant.
// Constants are literals in the rule text: they can be any written float
// including NaN, but never undef or poison.
func ConstSamples() []Value {
	vs := []Value{
		Const(0),
		NegZero(),
		Inf(1),
		Inf(-1),
		NaN(),
	}
	for _, f := range finiteSamples {
		vs = append(vs, Const(f))
	}
	return vs
}
