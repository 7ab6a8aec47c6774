package rules

import (
	"fmt"
	"sort"
	"strings"

	"github.com/santoshn/alive-nj/internal/fpval"
)

// Opcode identifies a floating-point instruction.
type Opcode string

const (
	OpFAdd Opcode = "fadd"
	OpFSub Opcode = "fsub"
	OpFMul Opcode = "fmul"
	OpFDiv Opcode = "fdiv"
	OpFRem Opcode = "frem"
	OpFCmp Opcode = "fcmp"
)

// ValidOpcodes defines the modeled opcodes.
var ValidOpcodes = map[Opcode]bool{
	OpFAdd: true,
	OpFSub: true,
	OpFMul: true,
	OpFDiv: true,
	OpFRem: true,
	OpFCmp: true,
}

// CmpPred is an fcmp predicate. Ordered predicates are false when either
// operand is NaN; unordered predicates are true.
type CmpPred string

const (
	PredFalse CmpPred = "false"
	PredOEQ   CmpPred = "oeq"
	PredOGT   CmpPred = "ogt"
	PredOGE   CmpPred = "oge"
	PredOLT   CmpPred = "olt"
	PredOLE   CmpPred = "ole"
	PredONE   CmpPred = "one"
	PredORD   CmpPred = "ord"
	PredUEQ   CmpPred = "ueq"
	PredUGT   CmpPred = "ugt"
	PredUGE   CmpPred = "uge"
	PredULT   CmpPred = "ult"
	PredULE   CmpPred = "ule"
	PredUNE   CmpPred = "une"
	PredUNO   CmpPred = "uno"
	PredTrue  CmpPred = "true"
)

// ValidCmpPreds defines the full IEEE predicate table.
var ValidCmpPreds = map[CmpPred]bool{
	PredFalse: true, PredOEQ: true, PredOGT: true, PredOGE: true,
	PredOLT: true, PredOLE: true, PredONE: true, PredORD: true,
	PredUEQ: true, PredUGT: true, PredUGE: true, PredULT: true,
	PredULE: true, PredUNE: true, PredUNO: true, PredTrue: true,
}

// Flag is a single fast-math flag.
type Flag uint8

const (
	FlagNNaN Flag = 1 << iota // no NaN operands or results
	FlagNInf                  // no infinite operands or results
	FlagNSZ                   // sign of zero results is unspecified
	FlagFast                  // shorthand for all of the above
)

// FlagSet is a set of fast-math flags attached to an instruction.
// Removing a flag can only make a rule's proof obligation harder.
type FlagSet uint8

// ParseFlag maps a corpus flag name to its Flag.
func ParseFlag(name string) (Flag, error) {
	switch name {
	case "nnan":
		return FlagNNaN, nil
	case "ninf":
		return FlagNInf, nil
	case "nsz":
		return FlagNSZ, nil
	case "fast":
		return FlagFast, nil
	}
	return 0, fmt.Errorf("unknown fast-math flag %q", name)
}

// With returns the set with the flag added.
func (fs FlagSet) With(f Flag) FlagSet { return fs | FlagSet(f) }

// Without returns the set with the flag removed.
func (fs FlagSet) Without(f Flag) FlagSet { return fs &^ FlagSet(f) }

// Has reports raw membership, before fast expansion.
func (fs FlagSet) Has(f Flag) bool { return fs&FlagSet(f) != 0 }

// Expand resolves the fast shorthand into the full set. Evaluation always
// works on the expanded set.
func (fs FlagSet) Expand() FlagSet {
	if fs.Has(FlagFast) {
		return fs | FlagSet(FlagNNaN) | FlagSet(FlagNInf) | FlagSet(FlagNSZ)
	}
	return fs
}

// Flags returns the individual flags present, fast shorthand included, in a
// stable order.
func (fs FlagSet) Flags() []Flag {
	var out []Flag
	for _, f := range []Flag{FlagNNaN, FlagNInf, FlagNSZ, FlagFast} {
		if fs.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// String renders the set the way the corpus spells it, e.g. "nnan nsz".
func (fs FlagSet) String() string {
	var parts []string
	if fs.Has(FlagNNaN) {
		parts = append(parts, "nnan")
	}
	if fs.Has(FlagNInf) {
		parts = append(parts, "ninf")
	}
	if fs.Has(FlagNSZ) {
		parts = append(parts, "nsz")
	}
	if fs.Has(FlagFast) {
		parts = append(parts, "fast")
	}
	return strings.Join(parts, " ")
}

// String names a single flag.
func (f Flag) String() string {
	switch f {
	case FlagNNaN:
		return "nnan"
	case FlagNInf:
		return "ninf"
	case FlagNSZ:
		return "nsz"
	case FlagFast:
		return "fast"
	}
	return fmt.Sprintf("flag(%d)", uint8(f))
}

// OperandKind discriminates operand references.
type OperandKind int

const (
	// OperandVar references a free variable or a previously bound
	// instruction result by name (e.g. "%x", "%r").
	OperandVar OperandKind = iota

	// OperandConst references a symbolic constant by name (e.g. "C"),
	// pinned or constrained by the precondition.
	OperandConst

	// OperandLit is an inline literal value.
	OperandLit
)

// Operand is one operand reference of an instruction.
type Operand struct {
	Kind OperandKind
	Name string      // OperandVar and OperandConst
	Lit  fpval.Value // OperandLit
}

// Var builds a variable or binding reference.
func Var(name string) Operand { return Operand{Kind: OperandVar, Name: name} }

// ConstRef builds a symbolic constant reference.
func ConstRef(name string) Operand { return Operand{Kind: OperandConst, Name: name} }

// Lit builds an inline literal operand.
func Lit(v fpval.Value) Operand { return Operand{Kind: OperandLit, Lit: v} }

// String renders the operand the way the corpus spells it.
func (o Operand) String() string {
	if o.Kind == OperandLit {
		return o.Lit.String()
	}
	return o.Name
}

// Instruction is one instruction of a rule pattern. Constructed once at
// corpus load time and immutable thereafter.
type Instruction struct {
	Result string  // binding name, e.g. "%r"
	Op     Opcode
	Pred   CmpPred // fcmp only
	X, Y   Operand
	Flags  FlagSet
}

// String renders the instruction for diagnostics.
func (in Instruction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s", in.Result, in.Op)
	if in.Op == OpFCmp {
		fmt.Fprintf(&b, " %s", in.Pred)
	}
	if fl := in.Flags.String(); fl != "" {
		fmt.Fprintf(&b, " %s", fl)
	}
	fmt.Fprintf(&b, " %s, %s", in.X, in.Y)
	return b.String()
}

// Precond is the precondition expression tree. The zero precondition of a
// rule is True.
type Precond interface {
	precond()
	String() string
}

// True is the trivial precondition.
type True struct{}

// And holds when every clause holds.
type And struct{ Clauses []Precond }

// Or holds when any clause holds.
type Or struct{ Clauses []Precond }

// Not negates its clause.
type Not struct{ Clause Precond }

// Pred is a named predicate applied to an operand reference, e.g.
// hasNSZ(%r) or CannotBeNegativeZero(%x).
type Pred struct {
	Name string
	Arg  string
}

// Cmp compares a free name (variable or symbolic constant) against a
// literal under IEEE equality, e.g. C == 0.0.
type Cmp struct {
	Op  string // "eq" or "ne"
	Ref string
	Lit fpval.Value
}

func (True) precond() {}
func (And) precond()  {}
func (Or) precond()   {}
func (Not) precond()  {}
func (Pred) precond() {}
func (Cmp) precond()  {}

func (True) String() string { return "true" }

func (p And) String() string { return joinClauses(p.Clauses, " && ") }
func (p Or) String() string  { return joinClauses(p.Clauses, " || ") }

func (p Not) String() string { return "!(" + p.Clause.String() + ")" }

func (p Pred) String() string { return fmt.Sprintf("%s(%s)", p.Name, p.Arg) }

func (p Cmp) String() string {
	op := "=="
	if p.Op == "ne" {
		op = "!="
	}
	return fmt.Sprintf("%s %s %s", p.Ref, op, p.Lit)
}

func joinClauses(cs []Precond, sep string) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = "(" + c.String() + ")"
	}
	return strings.Join(parts, sep)
}

// Known named predicates, evaluated against the flags of the instruction
// defining the referenced binding (or, for CannotBeNegativeZero on a free
// variable, against the candidate assignment).
var ValidPredicates = map[string]bool{
	"hasNSZ":               true,
	"hasNoNaN":             true,
	"hasNoInf":             true,
	"CannotBeNegativeZero": true,
}

// Precisions the corpus tags rules with. The tag records the width the
// original rule was stated at; folding is precision-agnostic because all
// corpus literals and enumeration samples are exact at half precision.
var ValidPrecisions = map[string]bool{
	"half":   true,
	"float":  true,
	"double": true,
}

// Rule is one named rewrite rule. The last LHS instruction's binding is the
// source result; RHSResult names the replacement result, which may be a bare
// operand when the RHS has no instructions.
type Rule struct {
	Name          string
	Precision     string // "half", "float", or "double"
	Pre           Precond
	LHS           []Instruction
	RHS           []Instruction
	RHSResult     Operand
	Bidirectional bool

	// Disabled rules are retained with a reason and not checked by default.
	Active bool
	Reason string
}

// Precondition returns the rule's precondition, defaulting to True.
func (r *Rule) Precondition() Precond {
	if r.Pre == nil {
		return True{}
	}
	return r.Pre
}

// SourceResult returns the binding name of the LHS result.
func (r *Rule) SourceResult() string {
	if len(r.LHS) == 0 {
		return ""
	}
	return r.LHS[len(r.LHS)-1].Result
}

// ReplResult returns the replacement result operand, defaulting to the last
// RHS instruction's binding when no explicit result is set.
func (r *Rule) ReplResult() Operand {
	if r.RHSResult.Kind == OperandVar && r.RHSResult.Name == "" && len(r.RHS) > 0 {
		return Var(r.RHS[len(r.RHS)-1].Result)
	}
	return r.RHSResult
}

// Bindings returns every binding name defined by the rule, mapped to its
// defining instruction.
func (r *Rule) Bindings() map[string]Instruction {
	defs := make(map[string]Instruction, len(r.LHS)+len(r.RHS))
	for _, in := range r.LHS {
		defs[in.Result] = in
	}
	for _, in := range r.RHS {
		defs[in.Result] = in
	}
	return defs
}

// FreeVars returns the sorted names of operand references not bound by any
// instruction: the rule's free variables and symbolic constants.
func (r *Rule) FreeVars() (vars, consts []string) {
	bound := make(map[string]bool)
	for _, in := range r.LHS {
		bound[in.Result] = true
	}
	for _, in := range r.RHS {
		bound[in.Result] = true
	}

	varSet := make(map[string]bool)
	constSet := make(map[string]bool)
	collect := func(o Operand) {
		switch o.Kind {
		case OperandVar:
			if o.Name != "" && !bound[o.Name] {
				varSet[o.Name] = true
			}
		case OperandConst:
			constSet[o.Name] = true
		}
	}
	for _, in := range r.LHS {
		collect(in.X)
		collect(in.Y)
	}
	for _, in := range r.RHS {
		collect(in.X)
		collect(in.Y)
	}
	collect(r.RHSResult)

	for v := range varSet {
		vars = append(vars, v)
	}
	for c := range constSet {
		consts = append(consts, c)
	}
	sort.Strings(vars)
	sort.Strings(consts)
	return vars, consts
}

// Corpus is an ordered rule collection. Declaration order is preserved for
// deterministic reports.
type Corpus struct {
	Rules []Rule
}

// Active returns the active rules in declaration order.
func (c *Corpus) Active() []Rule {
	var out []Rule
	for _, r := range c.Rules {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}

// DisabledCount returns the number of retained-but-disabled rules.
func (c *Corpus) DisabledCount() int {
	n := 0
	for _, r := range c.Rules {
		if !r.Active {
			n++
		}
	}
	return n
}
