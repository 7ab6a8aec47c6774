package semantics

import (
	"math"

	"github.com/santoshn/alive-nj/internal/fpval"
	"github.com/santoshn/alive-nj/internal/rules"
)

// Results computes every result one instruction may produce over abstract
// operands. The slice has more than one element only when the outcome
// depends on an unrealized choice: the sign of a zero-of-unknown-sign
// operand, or the float an undef comparison operand stands for. Results is
// total: every operand combination yields at least one value, never an
// error.
func Results(op rules.Opcode, pred rules.CmpPred, x, y fpval.Value, flags rules.FlagSet) []fpval.Value {
	// Strict poison propagation comes before everything else.
	if x.IsPoison() || y.IsPoison() {
		return []fpval.Value{fpval.Poison()}
	}

	if op == rules.OpFCmp {
		return cmpResults(pred, x, y)
	}

	// An undef operand leaves an arithmetic result unconstrained. Flags do
	// not rescue it: undef may be realized as a NaN, so an nnan instruction
	// on undef still yields an unconstrained result; the checker's
	// refinement relation handles both sides.
	if x.IsUndef() || y.IsUndef() {
		return []fpval.Value{fpval.Undef()}
	}

	flags = flags.Expand()
	if flags.Has(rules.FlagNNaN) && (x.IsNaN() || y.IsNaN()) {
		return []fpval.Value{fpval.Poison()}
	}
	if flags.Has(rules.FlagNInf) && (x.IsInf() || y.IsInf()) {
		return []fpval.Value{fpval.Poison()}
	}

	// A zero-of-unknown-sign operand is folded for both signs and every
	// distinct outcome is kept. Two zeros of opposite sign fold back into a
	// zero of unknown sign; anything else (1.0 / ±0 diverging to opposite
	// infinities, say) stays a multi-valued result for the checker to split
	// on.
	var out []fpval.Value
	for _, fx := range realizations(x) {
		for _, fy := range realizations(y) {
			out = appendDistinct(out, evalConcrete(op, fx, fy, flags))
		}
	}
	if len(out) == 2 && out[0].IsZero() && out[1].IsZero() {
		return []fpval.Value{fpval.AnyZero()}
	}
	return out
}

// cmpResults wraps the predicate table. An undef operand may stand for any
// float, so every non-constant predicate can go either way; each use of an
// undef is realized independently, reflexive shapes included.
func cmpResults(pred rules.CmpPred, x, y fpval.Value) []fpval.Value {
	if x.IsUndef() || y.IsUndef() {
		switch pred {
		case rules.PredFalse:
			return []fpval.Value{fpval.Bool(false)}
		case rules.PredTrue:
			return []fpval.Value{fpval.Bool(true)}
		}
		return []fpval.Value{fpval.Bool(false), fpval.Bool(true)}
	}
	return []fpval.Value{evalCmp(pred, x, y)}
}

// realizations expands a numeric operand into the concrete floats it may
// stand for. Exactly one element unless the operand is a zero of unknown
// sign.
func realizations(v fpval.Value) []float64 {
	if v.Kind() == fpval.KindAnyZero {
		return []float64{0, math.Copysign(0, -1)}
	}
	if v.IsNaN() {
		return []float64{math.NaN()}
	}
	return []float64{v.Float()}
}

func appendDistinct(vs []fpval.Value, v fpval.Value) []fpval.Value {
	for _, w := range vs {
		if w.Equal(v) {
			return vs
		}
	}
	return append(vs, v)
}

func evalConcrete(op rules.Opcode, fx, fy float64, flags rules.FlagSet) fpval.Value {
	var z float64
	switch op {
	case rules.OpFAdd:
		z = fx + fy
	case rules.OpFSub:
		z = fx - fy
	case rules.OpFMul:
		z = fx * fy
	case rules.OpFDiv:
		z = fx / fy
	case rules.OpFRem:
		// frem truncates like C fmod; the result has the dividend's sign.
		z = math.Mod(fx, fy)
	default:
		return fpval.Poison()
	}

	// nnan and ninf also constrain the result, not just the operands.
	if flags.Has(rules.FlagNNaN) && math.IsNaN(z) {
		return fpval.Poison()
	}
	if flags.Has(rules.FlagNInf) && math.IsInf(z, 0) {
		return fpval.Poison()
	}
	if flags.Has(rules.FlagNSZ) && z == 0 {
		return fpval.AnyZero()
	}
	return fpval.Const(z)
}
