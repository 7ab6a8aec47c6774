package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/santoshn/alive-nj/internal/checker"
)

// Run is the metadata row for one verification run.
type Run struct {
	ID         string
	CorpusHash string
	Engine     string
	StartedAt  time.Time
	Disabled   int
}

// ErrRunNotFound reports a run ID with no stored row.
var ErrRunNotFound = errors.New("run not found")

// SaveReport stores a run and all of its rule verdicts in one transaction.
// ON CONFLICT DO NOTHING makes retries idempotent: a run ID is written once.
func (s *Store) SaveReport(ctx context.Context, run Run, report *checker.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save report: begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, corpus_hash, engine, started_at, disabled)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		report.CorpusHash,
		run.Engine,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		report.Disabled,
	)
	if err != nil {
		return fmt.Errorf("save report: insert run: %w", err)
	}

	for seq, res := range report.Results {
		cexJSON, err := marshalNullable(res.Counterexample)
		if err != nil {
			return fmt.Errorf("save report: rule %s: %w", res.Rule, err)
		}
		flagsJSON, err := marshalNullable(res.RedundantFlags)
		if err != nil {
			return fmt.Errorf("save report: rule %s: %w", res.Rule, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO results
			(run_id, seq, rule_name, outcome, counterexample, reason, redundant_flags)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, rule_name) DO NOTHING
		`,
			run.ID,
			seq,
			res.Rule,
			string(res.Outcome),
			cexJSON,
			nullable(res.Reason),
			flagsJSON,
		)
		if err != nil {
			return fmt.Errorf("save report: insert result %s: %w", res.Rule, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save report: commit: %w", err)
	}
	return nil
}

// ReadRun returns a run's metadata.
func (s *Store) ReadRun(ctx context.Context, runID string) (Run, error) {
	var run Run
	var started string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, corpus_hash, engine, started_at, disabled
		FROM runs WHERE id = ?
	`, runID).Scan(&run.ID, &run.CorpusHash, &run.Engine, &started, &run.Disabled)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", runID, err)
	}

	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return Run{}, fmt.Errorf("read run %s: parse started_at: %w", runID, err)
	}
	return run, nil
}

// ReadReport reconstructs a stored report in corpus declaration order.
func (s *Store) ReadReport(ctx context.Context, runID string) (*checker.Report, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rule_name, outcome, counterexample, reason, redundant_flags
		FROM results
		WHERE run_id = ?
		ORDER BY seq ASC, rule_name COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", runID, err)
	}
	defer rows.Close()

	report := &checker.Report{
		CorpusHash: run.CorpusHash,
		Disabled:   run.Disabled,
		Results:    []checker.Result{},
	}
	for rows.Next() {
		var res checker.Result
		var outcome string
		var cexJSON, reason, flagsJSON sql.NullString
		if err := rows.Scan(&res.Rule, &outcome, &cexJSON, &reason, &flagsJSON); err != nil {
			return nil, fmt.Errorf("read report %s: scan: %w", runID, err)
		}
		res.Outcome = checker.Outcome(outcome)
		res.Reason = reason.String

		if cexJSON.Valid {
			res.Counterexample = &checker.Counterexample{}
			if err := json.Unmarshal([]byte(cexJSON.String), res.Counterexample); err != nil {
				return nil, fmt.Errorf("read report %s: counterexample for %s: %w", runID, res.Rule, err)
			}
		}
		if flagsJSON.Valid {
			if err := json.Unmarshal([]byte(flagsJSON.String), &res.RedundantFlags); err != nil {
				return nil, fmt.Errorf("read report %s: redundant flags for %s: %w", runID, res.Rule, err)
			}
		}
		report.Results = append(report.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read report %s: iterate: %w", runID, err)
	}
	return report, nil
}

// ListRuns returns every stored run, newest first. UUIDv7 IDs are
// time-ordered, so ordering by ID is chronological.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, corpus_hash, engine, started_at, disabled
		FROM runs
		ORDER BY id COLLATE BINARY DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var started string
		if err := rows.Scan(&run.ID, &run.CorpusHash, &run.Engine, &started, &run.Disabled); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("list runs: parse started_at: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: iterate: %w", err)
	}
	return runs, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func marshalNullable(v any) (any, error) {
	switch val := v.(type) {
	case *checker.Counterexample:
		if val == nil {
			return nil, nil
		}
	case []string:
		if len(val) == 0 {
			return nil, nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	return string(b), nil
}
