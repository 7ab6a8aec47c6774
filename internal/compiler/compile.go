package compiler

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue"

	"github.com/santoshn/alive-nj/internal/rules"
)

// CompileCorpus parses every rule declared under the "rule" field. Rules are
// ordered by their seq field, ties broken by name, so corpus identity and
// report order do not depend on CUE's field ordering.
func CompileCorpus(v cue.Value) (*rules.Corpus, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	rulesVal := v.LookupPath(cue.ParsePath("rule"))
	if !rulesVal.Exists() {
		return nil, &CompileError{
			Field:   "rule",
			Message: "corpus declares no rules",
			Pos:     v.Pos(),
		}
	}

	iter, err := rulesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	type ordered struct {
		seq  int64
		rule rules.Rule
	}
	var compiled []ordered

	for iter.Next() {
		r, err := CompileRule(iter.Value())
		if err != nil {
			return nil, err
		}

		seq := int64(1<<62 - 1)
		if seqVal := iter.Value().LookupPath(cue.ParsePath("seq")); seqVal.Exists() {
			if seq, err = seqVal.Int64(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		compiled = append(compiled, ordered{seq: seq, rule: *r})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		if compiled[i].seq != compiled[j].seq {
			return compiled[i].seq < compiled[j].seq
		}
		return compiled[i].rule.Name < compiled[j].rule.Name
	})

	corpus := &rules.Corpus{Rules: make([]rules.Rule, len(compiled))}
	for i, o := range compiled {
		corpus.Rules[i] = o.rule
	}
	return corpus, nil
}

// CompileRule parses a single rule struct. The rule name comes from the
// struct's label.
func CompileRule(v cue.Value) (*rules.Rule, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	r := &rules.Rule{Active: true}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		sel := labels[len(labels)-1]
		if sel.LabelType() == cue.StringLabel {
			r.Name = sel.Unquoted()
		} else {
			r.Name = sel.String()
		}
	}
	if r.Name == "" {
		return nil, &CompileError{Field: "rule", Message: "rule has no name", Pos: v.Pos()}
	}

	var err error
	if r.Precision, err = optionalString(v, "precision"); err != nil {
		return nil, err
	}

	lhsVal := v.LookupPath(cue.ParsePath("lhs"))
	if !lhsVal.Exists() {
		return nil, &CompileError{Field: "lhs", Message: "source pattern is required", Pos: v.Pos()}
	}
	if r.LHS, err = parseInstrs(lhsVal, "lhs"); err != nil {
		return nil, err
	}

	rhsVal := v.LookupPath(cue.ParsePath("rhs"))
	if !rhsVal.Exists() {
		return nil, &CompileError{Field: "rhs", Message: "replacement is required", Pos: v.Pos()}
	}
	if instrsVal := rhsVal.LookupPath(cue.ParsePath("instrs")); instrsVal.Exists() {
		if r.RHS, err = parseInstrs(instrsVal, "rhs.instrs"); err != nil {
			return nil, err
		}
	}
	if resultVal := rhsVal.LookupPath(cue.ParsePath("result")); resultVal.Exists() {
		s, err := resultVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		if r.RHSResult, err = parseOperand(s, "rhs.result", resultVal.Pos()); err != nil {
			return nil, err
		}
	} else if len(r.RHS) == 0 {
		return nil, &CompileError{
			Field:   "rhs",
			Message: "replacement needs instrs, a result, or both",
			Pos:     rhsVal.Pos(),
		}
	}

	if preVal := v.LookupPath(cue.ParsePath("pre")); preVal.Exists() {
		if r.Pre, err = parsePrecond(preVal, "pre"); err != nil {
			return nil, err
		}
	}

	if r.Bidirectional, err = optionalBool(v, "bidirectional"); err != nil {
		return nil, err
	}

	disabled, err := optionalBool(v, "disabled")
	if err != nil {
		return nil, err
	}
	r.Active = !disabled
	if r.Reason, err = optionalString(v, "reason"); err != nil {
		return nil, err
	}
	if disabled && r.Reason == "" {
		return nil, &CompileError{
			Field:   "reason",
			Message: "disabled rules must carry a reason",
			Pos:     v.Pos(),
		}
	}

	return r, nil
}

func parseInstrs(v cue.Value, field string) ([]rules.Instruction, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []rules.Instruction
	for i := 0; iter.Next(); i++ {
		in, err := parseInstr(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func parseInstr(v cue.Value, field string) (rules.Instruction, error) {
	var in rules.Instruction

	bind, err := requiredString(v, "bind", field)
	if err != nil {
		return in, err
	}
	in.Result = bind

	op, err := requiredString(v, "op", field)
	if err != nil {
		return in, err
	}
	in.Op = rules.Opcode(op)

	pred, err := optionalString(v, "pred")
	if err != nil {
		return in, err
	}
	in.Pred = rules.CmpPred(pred)

	if flagsVal := v.LookupPath(cue.ParsePath("flags")); flagsVal.Exists() {
		iter, err := flagsVal.List()
		if err != nil {
			return in, formatCUEError(err)
		}
		for iter.Next() {
			name, err := iter.Value().String()
			if err != nil {
				return in, formatCUEError(err)
			}
			f, err := rules.ParseFlag(name)
			if err != nil {
				return in, &CompileError{
					Field:   field + ".flags",
					Message: err.Error(),
					Pos:     iter.Value().Pos(),
				}
			}
			in.Flags = in.Flags.With(f)
		}
	}

	for _, side := range []struct {
		name string
		dst  *rules.Operand
	}{{"x", &in.X}, {"y", &in.Y}} {
		s, err := requiredString(v, side.name, field)
		if err != nil {
			return in, err
		}
		if *side.dst, err = parseOperand(s, field+"."+side.name, v.Pos()); err != nil {
			return in, err
		}
	}

	return in, nil
}

// parsePrecond parses the precondition struct forms: all, any, not, a named
// predicate, or a constant comparison.
func parsePrecond(v cue.Value, field string) (rules.Precond, error) {
	if allVal := v.LookupPath(cue.ParsePath("all")); allVal.Exists() {
		clauses, err := parseClauses(allVal, field+".all")
		if err != nil {
			return nil, err
		}
		return rules.And{Clauses: clauses}, nil
	}

	if anyVal := v.LookupPath(cue.ParsePath("any")); anyVal.Exists() {
		clauses, err := parseClauses(anyVal, field+".any")
		if err != nil {
			return nil, err
		}
		return rules.Or{Clauses: clauses}, nil
	}

	if notVal := v.LookupPath(cue.ParsePath("not")); notVal.Exists() {
		clause, err := parsePrecond(notVal, field+".not")
		if err != nil {
			return nil, err
		}
		return rules.Not{Clause: clause}, nil
	}

	if predVal := v.LookupPath(cue.ParsePath("pred")); predVal.Exists() {
		name, err := predVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		arg, err := requiredString(v, "arg", field)
		if err != nil {
			return nil, err
		}
		return rules.Pred{Name: name, Arg: arg}, nil
	}

	if cmpVal := v.LookupPath(cue.ParsePath("cmp")); cmpVal.Exists() {
		op, err := cmpVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		ref, err := requiredString(v, "ref", field)
		if err != nil {
			return nil, err
		}
		lit, err := requiredString(v, "value", field)
		if err != nil {
			return nil, err
		}
		litVal, ok := parseLiteral(lit)
		if !ok {
			return nil, &CompileError{
				Field:   field + ".value",
				Message: fmt.Sprintf("%q is not a literal", lit),
				Pos:     v.Pos(),
			}
		}
		return rules.Cmp{Op: op, Ref: ref, Lit: litVal}, nil
	}

	return nil, &CompileError{
		Field:   field,
		Message: "precondition needs one of: all, any, not, pred, cmp",
		Pos:     v.Pos(),
	}
}

func parseClauses(v cue.Value, field string) ([]rules.Precond, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []rules.Precond
	for i := 0; iter.Next(); i++ {
		c, err := parsePrecond(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func requiredString(v cue.Value, path, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", &CompileError{
			Field:   field + "." + path,
			Message: path + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalString(v cue.Value, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalBool(v cue.Value, path string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}
