// Package precond evaluates rule preconditions against a candidate operand
// assignment.
//
// Named flag predicates (hasNSZ, hasNoNaN, hasNoInf) inspect the flag set of
// the instruction that defines the referenced binding, not the value's
// runtime class: "provably never negative zero by construction" is a
// property of the defining instruction, not of whichever concrete value the
// current assignment happens to pick.
package precond

import (
	"errors"
	"fmt"

	"github.com/santoshn/alive-nj/internal/fpval"
	"github.com/santoshn/alive-nj/internal/rules"
)

// Env carries everything a precondition can reference: the candidate
// assignment of free variables and symbolic constants, and the defining
// instruction of every binding.
type Env struct {
	Assign map[string]fpval.Value
	Defs   map[string]rules.Instruction
}

// UnboundRefError reports a predicate referencing a name the environment
// does not bind. The checker surfaces this as an UNKNOWN verdict, never as
// a silent pass or fail.
type UnboundRefError struct {
	Pred string
	Name string
}

func (e *UnboundRefError) Error() string {
	return fmt.Sprintf("precondition %s references unbound name %s", e.Pred, e.Name)
}

// IsUnboundRef reports whether err is an UnboundRefError.
func IsUnboundRef(err error) bool {
	var ue *UnboundRefError
	return errors.As(err, &ue)
}

// Eval evaluates a precondition under env.
func Eval(p rules.Precond, env *Env) (bool, error) {
	switch pc := p.(type) {
	case rules.True:
		return true, nil

	case rules.And:
		for _, c := range pc.Clauses {
			ok, err := Eval(c, env)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil

	case rules.Or:
		for _, c := range pc.Clauses {
			ok, err := Eval(c, env)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil

	case rules.Not:
		ok, err := Eval(pc.Clause, env)
		return !ok, err

	case rules.Pred:
		return evalPred(pc, env)

	case rules.Cmp:
		return evalCmp(pc, env)
	}
	return false, fmt.Errorf("unknown precondition node %T", p)
}

func evalPred(p rules.Pred, env *Env) (bool, error) {
	switch p.Name {
	case "hasNSZ":
		return hasFlag(p, env, rules.FlagNSZ)
	case "hasNoNaN":
		return hasFlag(p, env, rules.FlagNNaN)
	case "hasNoInf":
		return hasFlag(p, env, rules.FlagNInf)
	case "CannotBeNegativeZero":
		return cannotBeNegZero(p, env)
	}
	return false, fmt.Errorf("unknown predicate %q", p.Name)
}

func hasFlag(p rules.Pred, env *Env, f rules.Flag) (bool, error) {
	in, ok := env.Defs[p.Arg]
	if !ok {
		return false, &UnboundRefError{Pred: p.Name, Name: p.Arg}
	}
	return in.Flags.Expand().Has(f), nil
}

// cannotBeNegZero holds by construction for a binding whose defining
// instruction carries nsz (the sign of its zeros is ignorable), and for a
// free variable it constrains the admissible assignments: -0.0 is excluded.
func cannotBeNegZero(p rules.Pred, env *Env) (bool, error) {
	if in, ok := env.Defs[p.Arg]; ok {
		return in.Flags.Expand().Has(rules.FlagNSZ), nil
	}
	v, ok := env.Assign[p.Arg]
	if !ok {
		return false, &UnboundRefError{Pred: p.Name, Name: p.Arg}
	}
	return !v.IsNegZero(), nil
}

// evalCmp compares a free name against a literal under IEEE equality:
// signed zeros are equal, NaN is equal to nothing (so `C == nan` never
// holds and `C != nan` always does for numeric C).
func evalCmp(p rules.Cmp, env *Env) (bool, error) {
	v, ok := env.Assign[p.Ref]
	if !ok {
		return false, &UnboundRefError{Pred: "comparison", Name: p.Ref}
	}

	eq := ieeeEqual(v, p.Lit)
	if p.Op == "ne" {
		return !eq, nil
	}
	return eq, nil
}

func ieeeEqual(a, b fpval.Value) bool {
	if a.IsNaN() || b.IsNaN() {
		return false
	}
	if a.IsUndef() || a.IsPoison() || b.IsUndef() || b.IsPoison() {
		return false
	}
	return a.Float() == b.Float()
}
