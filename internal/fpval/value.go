package fpval

import (
	"math"
	"strconv"
)

// Kind discriminates the value variants.
// A Value is exactly one kind - never more than one.
type Kind int

const (
	// KindConst is a concrete float: finite, signed zero, or infinity.
	KindConst Kind = iota

	// KindNaN is any NaN. The payload is unobservable, so all NaNs are
	// represented by a single value.
	KindNaN

	// KindAnyZero is a zero of unknown sign. Produced by arithmetic carrying
	// the no-signed-zero flag when the exact result is zero.
	KindAnyZero

	// KindBool is a comparison result.
	KindBool

	// KindUndef is an unconstrained but not erroneous value.
	KindUndef

	// KindPoison marks that undefined behavior occurred.
	KindPoison
)

// Value is an immutable abstract floating-point value.
// The zero Value is the concrete constant +0.0.
type Value struct {
	kind Kind
	bits uint64 // IEEE 754 bit pattern for KindConst
	b    bool   // payload for KindBool
}

// Const builds a concrete constant. NaN inputs collapse to the single NaN
// value so that payloads never leak into comparisons.
func Const(f float64) Value {
	if math.IsNaN(f) {
		return NaN()
	}
	return Value{kind: KindConst, bits: math.Float64bits(f)}
}

// NaN returns the NaN value.
func NaN() Value { return Value{kind: KindNaN} }

// AnyZero returns the zero-of-unknown-sign value.
func AnyZero() Value { return Value{kind: KindAnyZero} }

// Bool builds a comparison result.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Undef returns the undef marker.
func Undef() Value { return Value{kind: KindUndef} }

// Poison returns the poison marker.
func Poison() Value { return Value{kind: KindPoison} }

// Inf returns the infinity with the given sign (+1 or -1).
func Inf(sign int) Value { return Const(math.Inf(sign)) }

// NegZero returns the concrete constant -0.0.
func NegZero() Value { return Const(math.Copysign(0, -1)) }

// Kind returns the value's kind.
func (v Value) Kind() Kind { return v.kind }

// Float returns the concrete float for KindConst values.
// For KindAnyZero it returns +0.0 (the sign is unknown; callers that care
// about the sign must branch on Kind first). Panics for other kinds.
func (v Value) Float() float64 {
	switch v.kind {
	case KindConst:
		return math.Float64frombits(v.bits)
	case KindAnyZero:
		return 0
	}
	panic("fpval: Float on non-numeric value")
}

// Bool returns the boolean payload. Panics unless the kind is KindBool.
func (v Value) Bool() bool {
	if v.kind != KindBool {
		panic("fpval: Bool on non-boolean value")
	}
	return v.b
}

// IsNaN reports whether the value is NaN.
func (v Value) IsNaN() bool { return v.kind == KindNaN }

// IsInf reports whether the value is an infinity of either sign.
func (v Value) IsInf() bool {
	return v.kind == KindConst && math.IsInf(v.Float(), 0)
}

// IsZero reports whether the value is exactly zero of either (or unknown)
// sign.
func (v Value) IsZero() bool {
	if v.kind == KindAnyZero {
		return true
	}
	return v.kind == KindConst && v.Float() == 0
}

// IsNegZero reports whether the value is the concrete constant -0.0.
// A zero of unknown sign is not negative zero - it merely admits it.
func (v Value) IsNegZero() bool {
	return v.kind == KindConst && v.Float() == 0 && math.Signbit(v.Float())
}

// IsPoison reports whether the value is poison.
func (v Value) IsPoison() bool { return v.kind == KindPoison }

// IsUndef reports whether the value is undef.
func (v Value) IsUndef() bool { return v.kind == KindUndef }

// Equal reports exact identity: same kind, same bit pattern or payload.
// Signed zeros are distinct under Equal (use IsZero for IEEE equality).
func (v Value) Equal(w Value) bool { return v == w }

// Class names a value's class for diagnostics and counterexample reports.
type Class string

const (
	ClassPosZero       Class = "+0.0"
	ClassNegZero       Class = "-0.0"
	ClassPosInf        Class = "+inf"
	ClassNegInf        Class = "-inf"
	ClassNaN           Class = "nan"
	ClassFiniteNonzero Class = "finite-nonzero"
	ClassAnyZero       Class = "zero"
	ClassBool          Class = "bool"
	ClassUndef         Class = "undef"
	ClassPoison        Class = "poison"
)

// Classify returns the value's class.
func Classify(v Value) Class {
	switch v.kind {
	case KindNaN:
		return ClassNaN
	case KindAnyZero:
		return ClassAnyZero
	case KindBool:
		return ClassBool
	case KindUndef:
		return ClassUndef
	case KindPoison:
		return ClassPoison
	}
	f := v.Float()
	switch {
	case math.IsInf(f, 1):
		return ClassPosInf
	case math.IsInf(f, -1):
		return ClassNegInf
	case f == 0 && math.Signbit(f):
		return ClassNegZero
	case f == 0:
		return ClassPosZero
	}
	return ClassFiniteNonzero
}

// String renders the value for reports. Concrete constants use the shortest
// decimal form; zeros keep their sign so counterexamples are unambiguous.
func (v Value) String() string {
	switch v.kind {
	case KindNaN:
		return "nan"
	case KindAnyZero:
		return "zero"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindUndef:
		return "undef"
	case KindPoison:
		return "poison"
	}
	f := v.Float()
	switch {
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0 && math.Signbit(f):
		return "-0.0"
	case f == 0:
		return "0.0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
