package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santoshn/alive-nj/internal/checker"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport() *checker.Report {
	return &checker.Report{
		CorpusHash: "abc123",
		Disabled:   1,
		Results: []checker.Result{
			{Rule: "fsub-zero", Outcome: checker.OutcomeProved},
			{
				Rule:    "fadd-zero",
				Outcome: checker.OutcomeDisproved,
				Counterexample: &checker.Counterexample{
					Assignment: []checker.Binding{{Name: "%x", Value: "-0.0"}},
					Source:     "0.0",
					Repl:       "-0.0",
				},
			},
			{
				Rule:           "frem-zero",
				Outcome:        checker.OutcomeProved,
				RedundantFlags: []string{"%r: nsz"},
			},
			{Rule: "budget-buster", Outcome: checker.OutcomeUnknown, Reason: "assignment space exceeds budget of 8"},
		},
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestSaveAndReadReportRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := Run{ID: NewRunID(), Engine: "alive dev", StartedAt: time.Now()}
	report := sampleReport()
	require.NoError(t, s.SaveReport(ctx, run, report))

	got, err := s.ReadReport(ctx, run.ID)
	require.NoError(t, err)

	assert.Equal(t, report.CorpusHash, got.CorpusHash)
	assert.Equal(t, report.Disabled, got.Disabled)
	require.Len(t, got.Results, len(report.Results))

	// Declaration order survives storage.
	for i, want := range report.Results {
		assert.Equal(t, want.Rule, got.Results[i].Rule)
		assert.Equal(t, want.Outcome, got.Results[i].Outcome)
	}

	cex := got.Results[1].Counterexample
	require.NotNil(t, cex)
	assert.Equal(t, report.Results[1].Counterexample, cex)

	assert.Equal(t, []string{"%r: nsz"}, got.Results[2].RedundantFlags)
	assert.Equal(t, report.Results[3].Reason, got.Results[3].Reason)
}

func TestSaveReportIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run := Run{ID: NewRunID(), Engine: "alive dev", StartedAt: time.Now()}
	require.NoError(t, s.SaveReport(ctx, run, sampleReport()))
	require.NoError(t, s.SaveReport(ctx, run, sampleReport()))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestReadRunMetadata(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	started := time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)
	run := Run{ID: NewRunID(), Engine: "alive 0.3", StartedAt: started}
	require.NoError(t, s.SaveReport(ctx, run, sampleReport()))

	got, err := s.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "abc123", got.CorpusHash)
	assert.Equal(t, "alive 0.3", got.Engine)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, 1, got.Disabled)
}

func TestReadRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadRun(context.Background(), NewRunID())
	require.ErrorIs(t, err, ErrRunNotFound)

	_, err = s.ReadReport(context.Background(), NewRunID())
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := Run{ID: NewRunID(), Engine: "alive dev", StartedAt: time.Now()}
	require.NoError(t, s.SaveReport(ctx, first, sampleReport()))

	second := Run{ID: NewRunID(), Engine: "alive dev", StartedAt: time.Now()}
	require.NoError(t, s.SaveReport(ctx, second, sampleReport()))

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}

func TestNewRunIDIsV7(t *testing.T) {
	id, err := uuid.Parse(NewRunID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}
