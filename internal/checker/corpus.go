package checker

import (
	"context"
	"sync"

	"github.com/santoshn/alive-nj/internal/rules"
)

// VerifyCorpus checks every active rule of the corpus with bounded
// parallelism. Results come back in declaration order regardless of which
// worker finished first. Disabled rules are not verified but must still be
// well-formed; a rotted disabled rule fails the corpus like any other
// malformed rule, reported at its declaration position.
func (c *Checker) VerifyCorpus(ctx context.Context, corpus *rules.Corpus) *Report {
	type slot struct {
		res  Result
		keep bool
	}
	slots := make([]slot, len(corpus.Rules))

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup
	activeCount := 0
	for i := range corpus.Rules {
		r := corpus.Rules[i]
		if !r.Active {
			if err := rules.Validate(&r); err != nil {
				slots[i] = slot{
					res:  Result{Rule: r.Name, Outcome: OutcomeMalformed, Reason: err.Error()},
					keep: true,
				}
			}
			continue
		}
		activeCount++
		wg.Add(1)
		go func(i int, r rules.Rule) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			slots[i] = slot{res: c.VerifyRule(ctx, &r), keep: true}
		}(i, r)
	}
	wg.Wait()

	results := make([]Result, 0, len(corpus.Rules))
	for _, s := range slots {
		if s.keep {
			results = append(results, s.res)
		}
	}

	report := &Report{
		Results:  results,
		Disabled: corpus.DisabledCount(),
	}
	if hash, err := rules.CorpusHash(corpus); err == nil {
		report.CorpusHash = hash
	} else {
		c.logger.Warn("corpus hash failed", "err", err)
	}

	counts := report.Counts()
	c.logger.Info("corpus checked",
		"rules", activeCount,
		"proved", counts[OutcomeProved],
		"vacuous", counts[OutcomeProvedVacuous],
		"disproved", counts[OutcomeDisproved],
		"unknown", counts[OutcomeUnknown],
		"malformed", counts[OutcomeMalformed],
		"disabled", report.Disabled)
	return report
}
