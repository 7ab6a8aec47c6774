package semantics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santoshn/alive-nj/internal/fpval"
	"github.com/santoshn/alive-nj/internal/rules"
)

var noFlags rules.FlagSet

func flags(fs ...rules.Flag) rules.FlagSet {
	var out rules.FlagSet
	for _, f := range fs {
		out = out.With(f)
	}
	return out
}

// one folds an instruction whose outcome does not depend on an unrealized
// choice.
func one(t *testing.T, op rules.Opcode, pred rules.CmpPred, x, y fpval.Value, fs rules.FlagSet) fpval.Value {
	t.Helper()
	rs := Results(op, pred, x, y, fs)
	require.Len(t, rs, 1)
	return rs[0]
}

func TestPoisonPropagatesStrictly(t *testing.T) {
	for _, op := range []rules.Opcode{rules.OpFAdd, rules.OpFSub, rules.OpFMul, rules.OpFDiv, rules.OpFRem} {
		r := one(t, op, "", fpval.Poison(), fpval.Const(1), noFlags)
		assert.True(t, r.IsPoison(), "%s with poison lhs", op)

		r = one(t, op, "", fpval.Const(1), fpval.Poison(), flags(rules.FlagFast))
		assert.True(t, r.IsPoison(), "%s with poison rhs under fast", op)
	}

	r := one(t, rules.OpFCmp, rules.PredTrue, fpval.Poison(), fpval.Const(1), noFlags)
	assert.True(t, r.IsPoison(), "even constant-true fcmp propagates poison")
}

func TestUndefPropagatesThroughArithmetic(t *testing.T) {
	r := one(t, rules.OpFAdd, "", fpval.Undef(), fpval.Const(1), noFlags)
	assert.True(t, r.IsUndef())

	r = one(t, rules.OpFDiv, "", fpval.Const(1), fpval.Undef(), flags(rules.FlagFast))
	assert.True(t, r.IsUndef())
}

func TestUndefComparisonRealizesEitherBoolean(t *testing.T) {
	// Each use of an undef operand may stand for any float, so a
	// non-constant predicate can come out either way, even reflexively.
	rs := Results(rules.OpFCmp, rules.PredUEQ, fpval.Undef(), fpval.Undef(), noFlags)
	assert.ElementsMatch(t, []fpval.Value{fpval.Bool(false), fpval.Bool(true)}, rs)

	rs = Results(rules.OpFCmp, rules.PredOLT, fpval.Undef(), fpval.Const(1), noFlags)
	assert.ElementsMatch(t, []fpval.Value{fpval.Bool(false), fpval.Bool(true)}, rs)

	// The constant predicates ignore their operands entirely.
	rs = Results(rules.OpFCmp, rules.PredTrue, fpval.Undef(), fpval.Const(1), noFlags)
	assert.Equal(t, []fpval.Value{fpval.Bool(true)}, rs)
	rs = Results(rules.OpFCmp, rules.PredFalse, fpval.Undef(), fpval.Undef(), noFlags)
	assert.Equal(t, []fpval.Value{fpval.Bool(false)}, rs)
}

func TestAddNegZeroIsIdentity(t *testing.T) {
	// x + (-0.0) = x for every non-NaN x, no flags required.
	for _, x := range []fpval.Value{
		fpval.Const(0), fpval.NegZero(), fpval.Const(1), fpval.Const(-2),
		fpval.Inf(1), fpval.Inf(-1),
	} {
		r := one(t, rules.OpFAdd, "", x, fpval.NegZero(), noFlags)
		assert.True(t, fpval.Refines(r, x), "fadd %s, -0.0 = %s", x, r)
	}

	r := one(t, rules.OpFAdd, "", fpval.NaN(), fpval.NegZero(), noFlags)
	assert.True(t, r.IsNaN())
}

func TestAddPosZeroBreaksOnNegZero(t *testing.T) {
	// (-0.0) + 0.0 = +0.0 in strict IEEE arithmetic, so x + 0.0 = x fails
	// precisely at x = -0.0.
	r := one(t, rules.OpFAdd, "", fpval.NegZero(), fpval.Const(0), noFlags)
	assert.True(t, r.Equal(fpval.Const(0)), "got %s", r)
	assert.False(t, fpval.Refines(r, fpval.NegZero()))

	// Under nsz the zero's sign is unspecified, so -0.0 is admissible again.
	r = one(t, rules.OpFAdd, "", fpval.NegZero(), fpval.Const(0), flags(rules.FlagNSZ))
	assert.Equal(t, fpval.KindAnyZero, r.Kind())
	assert.True(t, fpval.Refines(fpval.NegZero(), r))
}

func TestSubZeroIdentities(t *testing.T) {
	// x - 0.0 = x unconditionally.
	for _, x := range []fpval.Value{fpval.NegZero(), fpval.Const(0), fpval.Const(3), fpval.Inf(1)} {
		r := one(t, rules.OpFSub, "", x, fpval.Const(0), noFlags)
		assert.True(t, r.Equal(x), "fsub %s, 0.0 = %s", x, r)
	}

	// x - (-0.0) breaks at x = -0.0: (-0.0) - (-0.0) = +0.0.
	r := one(t, rules.OpFSub, "", fpval.NegZero(), fpval.NegZero(), noFlags)
	assert.True(t, r.Equal(fpval.Const(0)))
}

func TestSubSelfNeedsNoNaN(t *testing.T) {
	// NaN - NaN = NaN, so x - x = 0.0 holds only under nnan.
	r := one(t, rules.OpFSub, "", fpval.NaN(), fpval.NaN(), noFlags)
	assert.True(t, r.IsNaN())

	// With nnan a NaN operand violates the flag contract and poisons.
	r = one(t, rules.OpFSub, "", fpval.NaN(), fpval.NaN(), flags(rules.FlagNNaN))
	assert.True(t, r.IsPoison())

	r = one(t, rules.OpFSub, "", fpval.Const(2), fpval.Const(2), flags(rules.FlagNNaN))
	assert.True(t, r.Equal(fpval.Const(0)))

	// Inf - Inf = NaN: an nnan result violation, also poison.
	r = one(t, rules.OpFSub, "", fpval.Inf(1), fpval.Inf(1), flags(rules.FlagNNaN))
	assert.True(t, r.IsPoison())
}

func TestMulByOneIsIdentity(t *testing.T) {
	for _, x := range []fpval.Value{
		fpval.Const(0), fpval.NegZero(), fpval.Const(-0.5), fpval.Inf(-1), fpval.NaN(),
	} {
		r := one(t, rules.OpFMul, "", x, fpval.Const(1), noFlags)
		assert.True(t, r.Equal(x), "fmul %s, 1.0 = %s", x, r)
	}
}

func TestMulByZeroNeedsBothFlags(t *testing.T) {
	both := flags(rules.FlagNNaN, rules.FlagNSZ)

	// With nnan and nsz, every finite x gives an acceptable zero.
	for _, x := range []float64{1, -1, 2, -2, 0.5, -0.5} {
		r := one(t, rules.OpFMul, "", fpval.Const(x), fpval.Const(0), both)
		assert.True(t, fpval.Refines(fpval.Const(0), r), "fmul %v, 0.0 = %s", x, r)
	}

	// NaN * 0.0 = NaN without nnan: the identity must not hold.
	r := one(t, rules.OpFMul, "", fpval.NaN(), fpval.Const(0), noFlags)
	assert.True(t, r.IsNaN(), "got %s", r)
	assert.False(t, fpval.Refines(fpval.Const(0), r))

	// (-1) * 0.0 = -0.0 without nsz: +0.0 is not admissible.
	r = one(t, rules.OpFMul, "", fpval.Const(-1), fpval.Const(0), flags(rules.FlagNNaN))
	assert.True(t, r.Equal(fpval.NegZero()))
	assert.False(t, fpval.Refines(fpval.Const(0), r))
}

func TestDivZeroByXNeedsBothFlags(t *testing.T) {
	both := flags(rules.FlagNNaN, rules.FlagNSZ)

	for _, x := range []float64{1, -1, 2, 0.5} {
		r := one(t, rules.OpFDiv, "", fpval.Const(0), fpval.Const(x), both)
		assert.True(t, fpval.Refines(fpval.Const(0), r), "fdiv 0.0, %v = %s", x, r)
	}

	// 0.0 / -1.0 = -0.0: omitting nsz admits the counterexample.
	r := one(t, rules.OpFDiv, "", fpval.Const(0), fpval.Const(-1), flags(rules.FlagNNaN))
	assert.True(t, r.Equal(fpval.NegZero()))
	assert.False(t, fpval.Refines(fpval.Const(0), r))

	// 0.0 / 0.0 = NaN: poison under nnan, NaN otherwise.
	r = one(t, rules.OpFDiv, "", fpval.Const(0), fpval.Const(0), both)
	assert.True(t, r.IsPoison())
	r = one(t, rules.OpFDiv, "", fpval.Const(0), fpval.Const(0), noFlags)
	assert.True(t, r.IsNaN())
}

func TestDivSelfNeedsNoNaN(t *testing.T) {
	// x / x = 1.0 uniformly for finite nonzero x; NaN/NaN breaks it.
	for _, x := range []float64{1, -1, 2, -0.5} {
		r := one(t, rules.OpFDiv, "", fpval.Const(x), fpval.Const(x), flags(rules.FlagNNaN))
		assert.True(t, r.Equal(fpval.Const(1)), "fdiv %v, %v = %s", x, x, r)
	}

	// Inf / Inf = NaN: an nnan result violation.
	r := one(t, rules.OpFDiv, "", fpval.Inf(1), fpval.Inf(1), flags(rules.FlagNNaN))
	assert.True(t, r.IsPoison())

	r = one(t, rules.OpFDiv, "", fpval.NaN(), fpval.NaN(), noFlags)
	assert.True(t, r.IsNaN())
}

func TestRemZeroByXMatchesDividendSign(t *testing.T) {
	// frem 0.0, x keeps the dividend's zero sign for every non-NaN case,
	// so the identity needs nnan but not nsz.
	for _, x := range []float64{1, -1, 2, -2, 0.5, -0.5} {
		r := one(t, rules.OpFRem, "", fpval.Const(0), fpval.Const(x), flags(rules.FlagNNaN))
		assert.True(t, r.Equal(fpval.Const(0)), "frem 0.0, %v = %s", x, r)
	}

	// frem 0.0, 0.0 = NaN: poisoned by nnan.
	r := one(t, rules.OpFRem, "", fpval.Const(0), fpval.Const(0), flags(rules.FlagNNaN))
	assert.True(t, r.IsPoison())

	// Without nnan, a NaN divisor breaks the identity.
	r = one(t, rules.OpFRem, "", fpval.Const(0), fpval.NaN(), noFlags)
	assert.True(t, r.IsNaN())
}

func TestNoInfFlagPoisonsInfinities(t *testing.T) {
	r := one(t, rules.OpFAdd, "", fpval.Inf(1), fpval.Const(1), flags(rules.FlagNInf))
	assert.True(t, r.IsPoison())

	// Result violation: overflow to infinity under ninf.
	huge := math.MaxFloat64
	r = one(t, rules.OpFMul, "", fpval.Const(huge), fpval.Const(2), flags(rules.FlagNInf))
	assert.True(t, r.IsPoison())

	r = one(t, rules.OpFMul, "", fpval.Const(huge), fpval.Const(2), noFlags)
	assert.True(t, r.Equal(fpval.Inf(1)))
}

func TestAnyZeroOperandSplitsResults(t *testing.T) {
	// zero + 1.0 = 1.0 for both zero signs: one result.
	r := one(t, rules.OpFAdd, "", fpval.AnyZero(), fpval.Const(1), noFlags)
	assert.True(t, r.Equal(fpval.Const(1)))

	// zero * 1.0 keeps the unknown sign: both realizations are zeros.
	r = one(t, rules.OpFMul, "", fpval.AnyZero(), fpval.Const(1), noFlags)
	assert.Equal(t, fpval.KindAnyZero, r.Kind())

	// 1.0 / zero diverges to an infinity of either sign. Both outcomes
	// must surface: losing one would let a replacement that is neither
	// slip past the refinement check.
	rs := Results(rules.OpFDiv, "", fpval.Const(1), fpval.AnyZero(), noFlags)
	assert.ElementsMatch(t, []fpval.Value{fpval.Inf(1), fpval.Inf(-1)}, rs)

	// Under ninf both divergent realizations poison and deduplicate.
	rs = Results(rules.OpFDiv, "", fpval.Const(1), fpval.AnyZero(), flags(rules.FlagNInf))
	assert.Equal(t, []fpval.Value{fpval.Poison()}, rs)
}
