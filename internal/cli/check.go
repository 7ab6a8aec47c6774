package cli

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/santoshn/alive-nj/internal/checker"
	"github.com/santoshn/alive-nj/internal/compiler"
	"github.com/santoshn/alive-nj/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Database       string
	Workers        int
	RuleTimeout    time.Duration
	MaxAssignments int
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <corpus-dir>",
		Short: "Verify every active rule in a corpus",
		Long: `Verify every active rule in a CUE corpus directory and print a report.

Exits 1 when any rule is disproved or malformed. Unknown verdicts (budget or
deadline exhausted) do not fail the run but are reported.

Example:
  alive check ./corpus
  alive check --db runs.db --workers 8 ./corpus`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the run to this SQLite database")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "corpus verification parallelism (default GOMAXPROCS)")
	cmd.Flags().DurationVar(&opts.RuleTimeout, "rule-timeout", 0, "wall-time bound per rule")
	cmd.Flags().IntVar(&opts.MaxAssignments, "max-assignments", 0, "assignment budget per rule")

	return cmd
}

func runCheck(opts *CheckOptions, corpusDir string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)

	corpus, err := compiler.LoadCorpus(corpusDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load corpus", err)
	}
	slog.Info("corpus loaded", "rules", len(corpus.Rules), "disabled", corpus.DisabledCount())

	checkerOpts := []checker.Option{}
	if opts.Workers > 0 {
		checkerOpts = append(checkerOpts, checker.WithWorkers(opts.Workers))
	}
	if opts.RuleTimeout > 0 {
		checkerOpts = append(checkerOpts, checker.WithRuleTimeout(opts.RuleTimeout))
	}
	if opts.MaxAssignments > 0 {
		checkerOpts = append(checkerOpts, checker.WithMaxAssignments(opts.MaxAssignments))
	}

	started := time.Now()
	report := checker.New(checkerOpts...).VerifyCorpus(cmd.Context(), corpus)

	if opts.Database != "" {
		if err := persistRun(cmd, opts.Database, started, report); err != nil {
			return err
		}
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	if opts.Format == "json" {
		if err := formatter.JSON(report); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode report", err)
		}
	} else if err := report.WriteText(cmd.OutOrStdout()); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	if report.Failed() {
		return NewExitError(ExitFailure, "corpus has disproved or malformed rules")
	}
	return nil
}

func persistRun(cmd *cobra.Command, path string, started time.Time, report *checker.Report) error {
	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run := store.Run{
		ID:        store.NewRunID(),
		Engine:    "alive " + Version,
		StartedAt: started,
	}
	if err := st.SaveReport(cmd.Context(), run, report); err != nil {
		return WrapExitError(ExitCommandError, "failed to save run", err)
	}
	slog.Info("run saved", "run_id", run.ID, "db", path)
	return nil
}

// configureLogging routes slog to stderr so report output stays clean.
func configureLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
