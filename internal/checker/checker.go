package checker

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/santoshn/alive-nj/internal/fpval"
	"github.com/santoshn/alive-nj/internal/precond"
	"github.com/santoshn/alive-nj/internal/rules"
	"github.com/santoshn/alive-nj/internal/semantics"
)

const (
	defaultRuleTimeout    = 10 * time.Second
	defaultMaxAssignments = 1 << 20

	// Cancellation and deadline are polled at this stride rather than per
	// assignment; the inner loop is pure arithmetic.
	cancelPollStride = 512
)

// Checker verifies rules by exhaustive enumeration over the value classes.
// A zero Checker is not usable; construct with New.
type Checker struct {
	workers        int
	ruleTimeout    time.Duration
	maxAssignments int
	logger         *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithWorkers sets the corpus-level parallelism. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(c *Checker) {
		if n >= 1 {
			c.workers = n
		}
	}
}

// WithRuleTimeout bounds the wall time spent on a single rule, redundancy
// analysis included. Exceeding it yields an unknown verdict.
func WithRuleTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.ruleTimeout = d
		}
	}
}

// WithMaxAssignments bounds the number of enumerated assignments per rule.
// Exceeding it yields an unknown verdict.
func WithMaxAssignments(n int) Option {
	return func(c *Checker) {
		if n > 0 {
			c.maxAssignments = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		workers:        runtime.GOMAXPROCS(0),
		ruleTimeout:    defaultRuleTimeout,
		maxAssignments: defaultMaxAssignments,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// VerifyRule checks a single rule and always returns a result, never an
// error: every failure mode maps to an outcome.
func (c *Checker) VerifyRule(ctx context.Context, r *rules.Rule) Result {
	start := time.Now()

	if err := rules.Validate(r); err != nil {
		c.logger.Debug("rule malformed", "rule", r.Name, "err", err)
		return Result{Rule: r.Name, Outcome: OutcomeMalformed, Reason: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, c.ruleTimeout)
	defer cancel()

	v := c.prove(ctx, r)
	res := Result{
		Rule:           r.Name,
		Outcome:        v.outcome,
		Counterexample: v.cex,
		Reason:         v.reason,
	}
	if v.outcome == OutcomeProved {
		res.RedundantFlags = c.redundantFlags(ctx, r)
	}

	c.logger.Debug("rule checked",
		"rule", r.Name,
		"outcome", res.Outcome,
		"elapsed", time.Since(start))
	return res
}

type verdict struct {
	outcome Outcome
	cex     *Counterexample
	reason  string
}

// prove enumerates assignments of the rule's free names over the value
// classes, filters them through the precondition, and checks refinement of
// the replacement result against the source result for each survivor.
func (c *Checker) prove(ctx context.Context, r *rules.Rule) verdict {
	vars, consts := r.FreeVars()

	names := make([]string, 0, len(vars)+len(consts))
	domains := make([][]fpval.Value, 0, len(vars)+len(consts))
	varDomain := fpval.Samples()
	constDomain := fpval.ConstSamples()
	for _, v := range vars {
		names = append(names, v)
		domains = append(domains, varDomain)
	}
	for _, cn := range consts {
		names = append(names, cn)
		domains = append(domains, constDomain)
	}

	total := 1
	for _, d := range domains {
		total *= len(d)
		if total > c.maxAssignments {
			return verdict{
				outcome: OutcomeUnknown,
				reason:  fmt.Sprintf("assignment space exceeds budget of %d", c.maxAssignments),
			}
		}
	}

	defs := r.Bindings()
	pre := r.Precondition()
	env := &precond.Env{
		Assign: make(map[string]fpval.Value, len(names)),
		Defs:   defs,
	}

	idx := make([]int, len(names))
	admissible := 0
	for n := 0; n < total; n++ {
		if n%cancelPollStride == 0 {
			if err := ctx.Err(); err != nil {
				return verdict{outcome: OutcomeUnknown, reason: "verification deadline exceeded"}
			}
		}

		for i, name := range names {
			env.Assign[name] = domains[i][idx[i]]
		}

		ok, err := precond.Eval(pre, env)
		if err != nil {
			return verdict{outcome: OutcomeUnknown, reason: err.Error()}
		}
		if ok {
			admissible++
			srcs := evalChain(r.LHS, rules.Var(r.SourceResult()), env.Assign)
			repls := evalChain(r.RHS, r.ReplResult(), env.Assign)

			if !refinesAll(repls, srcs) {
				return verdict{outcome: OutcomeDisproved, cex: counterexample(names, env.Assign, srcs, repls)}
			}
			if r.Bidirectional && !refinesAll(srcs, repls) {
				return verdict{outcome: OutcomeDisproved, cex: counterexample(names, env.Assign, srcs, repls)}
			}
		}

		advance(idx, domains)
	}

	if admissible == 0 {
		return verdict{outcome: OutcomeProvedVacuous, reason: "no assignment satisfies the precondition"}
	}
	return verdict{outcome: OutcomeProved}
}

// advance increments the enumeration odometer.
func advance(idx []int, domains [][]fpval.Value) {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < len(domains[i]) {
			return
		}
		idx[i] = 0
	}
}

// evalChain folds an instruction chain under an assignment and resolves the
// result operand, returning every value it may produce. An instruction with a
// multi-valued outcome forks the chain: each downstream use sees one
// consistent realization. Bindings shadow nothing: validation guarantees
// names are unique within a side.
func evalChain(instrs []rules.Instruction, result rules.Operand, assign map[string]fpval.Value) []fpval.Value {
	resolve := func(locals map[string]fpval.Value, o rules.Operand) fpval.Value {
		if o.Kind == rules.OperandLit {
			return o.Lit
		}
		if v, ok := locals[o.Name]; ok {
			return v
		}
		return assign[o.Name]
	}

	envs := []map[string]fpval.Value{make(map[string]fpval.Value, len(instrs))}
	for _, in := range instrs {
		var next []map[string]fpval.Value
		for _, locals := range envs {
			rs := semantics.Results(in.Op, in.Pred, resolve(locals, in.X), resolve(locals, in.Y), in.Flags)
			for _, rv := range rs {
				dst := locals
				if len(rs) > 1 {
					dst = make(map[string]fpval.Value, len(locals)+1)
					for k, v := range locals {
						dst[k] = v
					}
				}
				dst[in.Result] = rv
				next = append(next, dst)
			}
		}
		envs = next
	}

	var out []fpval.Value
	for _, locals := range envs {
		out = appendDistinctValue(out, resolve(locals, result))
	}
	return out
}

// refinesAll reports whether every possible concrete outcome is admitted by
// some abstract one. The abstract side is nondeterministic, so any of its
// members is an allowed source behavior.
func refinesAll(concretes, abstracts []fpval.Value) bool {
	for _, c := range concretes {
		ok := false
		for _, a := range abstracts {
			if fpval.Refines(c, a) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func appendDistinctValue(vs []fpval.Value, v fpval.Value) []fpval.Value {
	for _, w := range vs {
		if w.Equal(v) {
			return vs
		}
	}
	return append(vs, v)
}

func counterexample(names []string, assign map[string]fpval.Value, srcs, repls []fpval.Value) *Counterexample {
	bindings := make([]Binding, 0, len(names))
	for _, n := range names {
		bindings = append(bindings, Binding{Name: n, Value: assign[n].String()})
	}
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Name < bindings[j].Name })
	return &Counterexample{
		Assignment: bindings,
		Source:     valueSetString(srcs),
		Repl:       valueSetString(repls),
	}
}

func valueSetString(vs []fpval.Value) string {
	if len(vs) == 1 {
		return vs[0].String()
	}
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return "one of " + strings.Join(parts, ", ")
}

// redundantFlags re-proves a proved rule with each declared source flag
// individually removed and reports the removals that still prove. A flag the
// precondition inspects is never reported: removing it changes which
// assignments are admissible, not just the arithmetic.
func (c *Checker) redundantFlags(ctx context.Context, r *rules.Rule) []string {
	inspected := precondFlagRefs(r.Precondition())

	var redundant []string
	for i, in := range r.LHS {
		for _, f := range in.Flags.Flags() {
			if inspected[in.Result].Expand()&rules.FlagSet(f).Expand() != 0 {
				continue
			}

			stripped := *r
			stripped.LHS = append([]rules.Instruction(nil), r.LHS...)
			stripped.LHS[i].Flags = in.Flags.Without(f)

			if v := c.prove(ctx, &stripped); v.outcome == OutcomeProved {
				redundant = append(redundant, fmt.Sprintf("%s: %s", in.Result, f))
			}
		}
	}
	return redundant
}

// precondFlagRefs collects, per referenced name, the flags whose presence the
// precondition observes.
func precondFlagRefs(p rules.Precond) map[string]rules.FlagSet {
	refs := make(map[string]rules.FlagSet)
	var walk func(rules.Precond)
	walk = func(p rules.Precond) {
		switch pc := p.(type) {
		case rules.And:
			for _, cl := range pc.Clauses {
				walk(cl)
			}
		case rules.Or:
			for _, cl := range pc.Clauses {
				walk(cl)
			}
		case rules.Not:
			walk(pc.Clause)
		case rules.Pred:
			switch pc.Name {
			case "hasNSZ", "CannotBeNegativeZero":
				refs[pc.Arg] = refs[pc.Arg].With(rules.FlagNSZ)
			case "hasNoNaN":
				refs[pc.Arg] = refs[pc.Arg].With(rules.FlagNNaN)
			case "hasNoInf":
				refs[pc.Arg] = refs[pc.Arg].With(rules.FlagNInf)
			}
		}
	}
	walk(p)
	return refs
}
