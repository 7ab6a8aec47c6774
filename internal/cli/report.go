package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/santoshn/alive-nj/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database string
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report [run-id]",
		Short: "Show stored verification runs",
		Long: `With no argument, list stored runs newest first. With a run ID, print
that run's full report.

Example:
  alive report --db runs.db
  alive report --db runs.db 01919f2e-88a1-7d14-b7c2-30c1a3b9d2f0`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runListRuns(opts, cmd)
			}
			return runShowReport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runListRuns(opts *ReportOptions, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		type runEntry struct {
			ID         string `json:"id"`
			CorpusHash string `json:"corpus_hash"`
			Engine     string `json:"engine"`
			StartedAt  string `json:"started_at"`
			Disabled   int    `json:"disabled"`
		}
		entries := make([]runEntry, len(runs))
		for i, r := range runs {
			entries[i] = runEntry{
				ID:         r.ID,
				CorpusHash: r.CorpusHash,
				Engine:     r.Engine,
				StartedAt:  r.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
				Disabled:   r.Disabled,
			}
		}
		return formatter.JSON(entries)
	}

	for _, r := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  corpus %.12s\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Engine, r.CorpusHash)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d runs\n", len(runs))
	return nil
}

func runShowReport(opts *ReportOptions, runID string, cmd *cobra.Command) error {
	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	report, err := st.ReadReport(cmd.Context(), runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.JSON(report)
	}
	return report.WriteText(cmd.OutOrStdout())
}
