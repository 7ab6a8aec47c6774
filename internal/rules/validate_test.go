package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santoshn/alive-nj/internal/fpval"
)

// faddRule builds the canonical "fadd %x, 0.0 -> %x" shape used throughout
// these tests.
func faddRule() *Rule {
	return &Rule{
		Name:   "test:fadd-zero",
		Active: true,
		LHS: []Instruction{
			{Result: "%r", Op: OpFAdd, X: Var("%x"), Y: Lit(fpval.Const(0))},
		},
		RHSResult: Var("%x"),
	}
}

func TestValidateAcceptsWellFormedRule(t *testing.T) {
	require.NoError(t, Validate(faddRule()))
}

func TestValidateEmptyLHS(t *testing.T) {
	r := faddRule()
	r.LHS = nil

	err := Validate(r)
	require.Error(t, err)
	var me *MalformedRuleError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeEmptyLHS, me.Code)
}

func TestValidateUnknownOpcode(t *testing.T) {
	r := faddRule()
	r.LHS[0].Op = "fmax"

	err := Validate(r)
	require.Error(t, err)
	var me *MalformedRuleError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeUnknownOpcode, me.Code)
	assert.True(t, IsMalformed(err))
}

func TestValidateUnknownCmpPredicate(t *testing.T) {
	r := &Rule{
		Name:   "test:bad-pred",
		Active: true,
		LHS: []Instruction{
			{Result: "%c", Op: OpFCmp, Pred: "weq", X: Var("%x"), Y: Var("%x")},
		},
		RHSResult: Lit(fpval.Bool(true)),
	}

	err := Validate(r)
	require.Error(t, err)
	var me *MalformedRuleError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeUnknownPredicate, me.Code)
}

func TestValidatePredicateOnArithmeticOpcode(t *testing.T) {
	r := faddRule()
	r.LHS[0].Pred = PredOEQ

	err := Validate(r)
	require.Error(t, err)
}

func TestValidateRHSUnboundReference(t *testing.T) {
	r := faddRule()
	r.RHSResult = Var("%ghost")

	err := Validate(r)
	require.Error(t, err)
	var me *MalformedRuleError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeUnboundRef, me.Code)
}

func TestValidateRHSMayNotUseLHSBindings(t *testing.T) {
	r := faddRule()
	r.RHSResult = Var("%r")

	err := Validate(r)
	require.Error(t, err)
	var me *MalformedRuleError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeUnboundRef, me.Code)
}

func TestValidateDuplicateBinding(t *testing.T) {
	r := &Rule{
		Name:   "test:dup",
		Active: true,
		LHS: []Instruction{
			{Result: "%r", Op: OpFAdd, X: Var("%x"), Y: Lit(fpval.Const(0))},
			{Result: "%r", Op: OpFMul, X: Var("%r"), Y: Lit(fpval.Const(1))},
		},
		RHSResult: Var("%x"),
	}

	err := Validate(r)
	require.Error(t, err)
	var me *MalformedRuleError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeDuplicateBinding, me.Code)
}

func TestValidateUnknownNamedPredicate(t *testing.T) {
	r := faddRule()
	r.Pre = Pred{Name: "isPowerOfTwo", Arg: "%x"}

	err := Validate(r)
	require.Error(t, err)
	var me *MalformedRuleError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeUnknownFlagPred, me.Code)
}

func TestValidateBadPrecision(t *testing.T) {
	r := faddRule()
	r.Precision = "quad"

	err := Validate(r)
	require.Error(t, err)
	var me *MalformedRuleError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, CodeBadPrecision, me.Code)
}

func TestValidateRHSChain(t *testing.T) {
	r := &Rule{
		Name:      "test:rhs-chain",
		Active:    true,
		Precision: "float",
		LHS: []Instruction{
			{Result: "%r", Op: OpFSub, X: Var("%x"), Y: Var("%y")},
		},
		RHS: []Instruction{
			{Result: "%n", Op: OpFSub, X: Lit(fpval.Const(0)), Y: Var("%y")},
			{Result: "%s", Op: OpFAdd, X: Var("%x"), Y: Var("%n")},
		},
		RHSResult: Var("%s"),
	}

	require.NoError(t, Validate(r))
}

func TestFreeVars(t *testing.T) {
	r := &Rule{
		Name:   "test:free",
		Active: true,
		LHS: []Instruction{
			{Result: "%r", Op: OpFDiv, X: ConstRef("C"), Y: Var("%x")},
		},
		RHSResult: ConstRef("C"),
	}

	vars, consts := r.FreeVars()
	assert.Equal(t, []string{"%x"}, vars)
	assert.Equal(t, []string{"C"}, consts)
}

func TestSourceResult(t *testing.T) {
	r := faddRule()
	assert.Equal(t, "%r", r.SourceResult())
}

func TestCorpusOrderAndDisabledCount(t *testing.T) {
	c := &Corpus{Rules: []Rule{
		{Name: "a", Active: true},
		{Name: "b", Active: false, Reason: "known unsound"},
		{Name: "c", Active: true},
	}}

	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "a", active[0].Name)
	assert.Equal(t, "c", active[1].Name)
	assert.Equal(t, 1, c.DisabledCount())
}
