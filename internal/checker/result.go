package checker

import (
	"fmt"
	"io"
	"strings"
)

// Outcome is the verdict for one rule.
type Outcome string

const (
	// OutcomeProved means every admissible assignment refines.
	OutcomeProved Outcome = "proved"

	// OutcomeProvedVacuous means no assignment satisfied the precondition,
	// so the rule holds but covers nothing. Reported distinctly because a
	// vacuous proof usually signals a corpus mistake.
	OutcomeProvedVacuous Outcome = "proved-vacuous"

	// OutcomeDisproved means a concrete counterexample was found.
	OutcomeDisproved Outcome = "disproved"

	// OutcomeUnknown means verification could not complete: the resource
	// bound was exceeded or a precondition referenced an unbound name.
	OutcomeUnknown Outcome = "unknown"

	// OutcomeMalformed means the rule failed structural validation.
	OutcomeMalformed Outcome = "malformed"
)

// Failed reports whether the outcome should fail a corpus check.
// Unknown is inconclusive, not failing.
func (o Outcome) Failed() bool {
	return o == OutcomeDisproved || o == OutcomeMalformed
}

// Binding is one name/value pair of a counterexample assignment.
type Binding struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Counterexample is a concrete admissible assignment under which the
// replacement does not refine the source. Bindings are sorted by name so the
// rendering is deterministic.
type Counterexample struct {
	Assignment []Binding `json:"assignment"`
	Source     string    `json:"source"`
	Repl       string    `json:"replacement"`
}

func (c *Counterexample) String() string {
	parts := make([]string, len(c.Assignment))
	for i, b := range c.Assignment {
		parts[i] = b.Name + " = " + b.Value
	}
	return fmt.Sprintf("{%s} source = %s, replacement = %s",
		strings.Join(parts, ", "), c.Source, c.Repl)
}

// Result is the verdict for one rule.
type Result struct {
	Rule    string  `json:"rule"`
	Outcome Outcome `json:"outcome"`

	// Counterexample is set exactly when Outcome is disproved.
	Counterexample *Counterexample `json:"counterexample,omitempty"`

	// Reason explains unknown and malformed outcomes.
	Reason string `json:"reason,omitempty"`

	// RedundantFlags lists declared flags a proved rule does not need,
	// as "binding: flag" pairs.
	RedundantFlags []string `json:"redundant_flags,omitempty"`
}

// Report is the verdict for a whole corpus, in declaration order.
type Report struct {
	CorpusHash string   `json:"corpus_hash,omitempty"`
	Results    []Result `json:"results"`
	Disabled   int      `json:"disabled"`
}

// Counts tallies results per outcome.
func (rp *Report) Counts() map[Outcome]int {
	counts := make(map[Outcome]int)
	for _, r := range rp.Results {
		counts[r.Outcome]++
	}
	return counts
}

// Failed reports whether any rule was disproved or malformed.
func (rp *Report) Failed() bool {
	for _, r := range rp.Results {
		if r.Outcome.Failed() {
			return true
		}
	}
	return false
}

// WriteText renders the report as the line-oriented text format.
func (rp *Report) WriteText(w io.Writer) error {
	for _, r := range rp.Results {
		if _, err := fmt.Fprintf(w, "%-14s %s\n", r.Outcome, r.Rule); err != nil {
			return err
		}
		if r.Counterexample != nil {
			if _, err := fmt.Fprintf(w, "    counterexample: %s\n", r.Counterexample); err != nil {
				return err
			}
		}
		if r.Reason != "" {
			if _, err := fmt.Fprintf(w, "    reason: %s\n", r.Reason); err != nil {
				return err
			}
		}
		if len(r.RedundantFlags) > 0 {
			if _, err := fmt.Fprintf(w, "    redundant flags: %s\n", strings.Join(r.RedundantFlags, ", ")); err != nil {
				return err
			}
		}
	}

	counts := rp.Counts()
	_, err := fmt.Fprintf(w, "%d proved, %d vacuous, %d disproved, %d unknown, %d malformed, %d disabled\n",
		counts[OutcomeProved], counts[OutcomeProvedVacuous], counts[OutcomeDisproved],
		counts[OutcomeUnknown], counts[OutcomeMalformed], rp.Disabled)
	return err
}
