package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/santoshn/alive-nj/internal/checker"
	"github.com/santoshn/alive-nj/internal/compiler"
)

// Mismatch is one divergence between a suite expectation and the verifier.
type Mismatch struct {
	Rule string
	Want string
	Got  string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: want %s, got %s", m.Rule, m.Want, m.Got)
}

// SuiteResult is the outcome of running one suite.
type SuiteResult struct {
	Suite      string
	Report     *checker.Report
	Mismatches []Mismatch
}

// Passed reports whether every expectation held.
func (r *SuiteResult) Passed() bool { return len(r.Mismatches) == 0 }

// Run loads the suite's corpus, verifies it, and checks every expectation.
// Checker logs are suppressed; the suite result is the signal.
func Run(ctx context.Context, suite *Suite) (*SuiteResult, error) {
	corpus, err := compiler.LoadCorpus(suite.CorpusDir())
	if err != nil {
		return nil, fmt.Errorf("suite %s: %w", suite.Name, err)
	}

	opts := []checker.Option{
		checker.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	if suite.Options.Workers > 0 {
		opts = append(opts, checker.WithWorkers(suite.Options.Workers))
	}
	if suite.Options.MaxAssignments > 0 {
		opts = append(opts, checker.WithMaxAssignments(suite.Options.MaxAssignments))
	}

	report := checker.New(opts...).VerifyCorpus(ctx, corpus)

	byName := make(map[string]checker.Result, len(report.Results))
	for _, res := range report.Results {
		byName[res.Rule] = res
	}

	names := make([]string, 0, len(suite.Expect))
	for name := range suite.Expect {
		names = append(names, name)
	}
	sort.Strings(names)

	result := &SuiteResult{Suite: suite.Name, Report: report}
	for _, name := range names {
		want := suite.Expect[name]
		actual, ok := byName[name]
		if !ok {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Rule: name, Want: want, Got: "absent from corpus",
			})
			continue
		}
		if string(actual.Outcome) != want {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Rule: name, Want: want, Got: string(actual.Outcome),
			})
		}
	}
	return result, nil
}
