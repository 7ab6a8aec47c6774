package rules

import (
	"errors"
	"fmt"
)

// MalformedCode categorizes structural rule defects.
type MalformedCode string

const (
	CodeEmptyLHS         MalformedCode = "EMPTY_LHS"
	CodeUnknownOpcode    MalformedCode = "UNKNOWN_OPCODE"
	CodeUnknownPredicate MalformedCode = "UNKNOWN_PREDICATE"
	CodeUnknownFlagPred  MalformedCode = "UNKNOWN_FLAG_PREDICATE"
	CodeUnboundRef       MalformedCode = "UNBOUND_REF"
	CodeDuplicateBinding MalformedCode = "DUPLICATE_BINDING"
	CodeBadPrecision     MalformedCode = "BAD_PRECISION"
	CodeMissingResult    MalformedCode = "MISSING_RESULT"
)

// MalformedRuleError reports a structural defect. Malformed rules are
// rejected before verification and never silently skipped; the defect is
// fatal for that rule only.
type MalformedRuleError struct {
	Rule    string
	Code    MalformedCode
	Message string
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("rule %s: %s: %s", e.Rule, e.Code, e.Message)
}

// IsMalformed reports whether err is a MalformedRuleError, unwrapping as
// needed.
func IsMalformed(err error) bool {
	var me *MalformedRuleError
	return errors.As(err, &me)
}

// Validate checks a rule's structural invariants: known opcodes and
// predicates, unique bindings, an LHS result, and no dangling references.
// Every RHS operand must be bound by a free variable shared with the LHS or
// by an RHS-local instruction.
func Validate(r *Rule) error {
	fail := func(code MalformedCode, format string, args ...any) error {
		return &MalformedRuleError{Rule: r.Name, Code: code, Message: fmt.Sprintf(format, args...)}
	}

	if len(r.LHS) == 0 {
		return fail(CodeEmptyLHS, "rule has no source instructions")
	}
	if r.Precision != "" && !ValidPrecisions[r.Precision] {
		return fail(CodeBadPrecision, "unknown precision %q", r.Precision)
	}

	bound := make(map[string]bool)
	lhsBound := make(map[string]bool)

	checkInstr := func(in Instruction, side string) error {
		if in.Result == "" {
			return fail(CodeMissingResult, "%s instruction %s has no result binding", side, in.Op)
		}
		if bound[in.Result] {
			return fail(CodeDuplicateBinding, "binding %s defined twice", in.Result)
		}
		if !ValidOpcodes[in.Op] {
			return fail(CodeUnknownOpcode, "unknown opcode %q", in.Op)
		}
		if in.Op == OpFCmp {
			if !ValidCmpPreds[in.Pred] {
				return fail(CodeUnknownPredicate, "unknown fcmp predicate %q", in.Pred)
			}
		} else if in.Pred != "" {
			return fail(CodeUnknownPredicate, "predicate %q on non-compare opcode %s", in.Pred, in.Op)
		}
		return nil
	}

	// LHS operands may reference anything: unbound names become free
	// variables. Bindings must still be defined before use.
	for _, in := range r.LHS {
		for _, o := range []Operand{in.X, in.Y} {
			if o.Kind == OperandVar && bound[o.Name] && !lhsBound[o.Name] {
				return fail(CodeUnboundRef, "LHS operand %s references an RHS binding", o.Name)
			}
		}
		if err := checkInstr(in, "LHS"); err != nil {
			return err
		}
		bound[in.Result] = true
		lhsBound[in.Result] = true
	}

	// RHS operands must resolve to LHS free variables or RHS-local bindings
	// defined earlier in the list. Referencing an LHS binding would smuggle
	// the source's intermediate results into the replacement.
	freeVars := make(map[string]bool)
	for _, in := range r.LHS {
		for _, o := range []Operand{in.X, in.Y} {
			if o.Kind == OperandVar && !lhsBound[o.Name] {
				freeVars[o.Name] = true
			}
		}
	}

	rhsBound := make(map[string]bool)
	checkRHSRef := func(o Operand) error {
		if o.Kind != OperandVar {
			return nil
		}
		if freeVars[o.Name] || rhsBound[o.Name] {
			return nil
		}
		if lhsBound[o.Name] {
			return fail(CodeUnboundRef, "RHS references LHS binding %s", o.Name)
		}
		return fail(CodeUnboundRef, "RHS references unbound name %s", o.Name)
	}

	for _, in := range r.RHS {
		for _, o := range []Operand{in.X, in.Y} {
			if err := checkRHSRef(o); err != nil {
				return err
			}
		}
		if err := checkInstr(in, "RHS"); err != nil {
			return err
		}
		bound[in.Result] = true
		rhsBound[in.Result] = true
	}

	if r.RHSResult.Kind == OperandVar && r.RHSResult.Name == "" {
		if len(r.RHS) == 0 {
			return fail(CodeMissingResult, "rule has no replacement result")
		}
		// Default: the last RHS instruction is the replacement result.
	} else if err := checkRHSRef(r.RHSResult); err != nil {
		return err
	}

	return validatePrecond(r, r.Precondition(), freeVars, lhsBound)
}

// validatePrecond rejects unknown predicate names and references to names
// the rule never mentions.
func validatePrecond(r *Rule, p Precond, freeVars, lhsBound map[string]bool) error {
	switch pc := p.(type) {
	case True:
		return nil
	case And:
		for _, c := range pc.Clauses {
			if err := validatePrecond(r, c, freeVars, lhsBound); err != nil {
				return err
			}
		}
	case Or:
		for _, c := range pc.Clauses {
			if err := validatePrecond(r, c, freeVars, lhsBound); err != nil {
				return err
			}
		}
	case Not:
		return validatePrecond(r, pc.Clause, freeVars, lhsBound)
	case Pred:
		if !ValidPredicates[pc.Name] {
			return &MalformedRuleError{
				Rule:    r.Name,
				Code:    CodeUnknownFlagPred,
				Message: fmt.Sprintf("unknown predicate %q", pc.Name),
			}
		}
	case Cmp:
		if pc.Op != "eq" && pc.Op != "ne" {
			return &MalformedRuleError{
				Rule:    r.Name,
				Code:    CodeUnknownPredicate,
				Message: fmt.Sprintf("unknown comparison %q", pc.Op),
			}
		}
	default:
		return &MalformedRuleError{
			Rule:    r.Name,
			Code:    CodeUnknownPredicate,
			Message: fmt.Sprintf("unknown precondition node %T", p),
		}
	}
	return nil
}
