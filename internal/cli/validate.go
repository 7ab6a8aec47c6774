package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/santoshn/alive-nj/internal/compiler"
	"github.com/santoshn/alive-nj/internal/rules"
)

// ValidationResult holds structural validation results for a corpus.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Rules  int      `json:"rules"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <corpus-dir>",
		Short: "Check corpus structure without verifying",
		Long: `Load a corpus and check every rule's structural invariants: known
opcodes and predicates, unique bindings, and no dangling references.

Faster than check for corpus editing feedback; no verification runs.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, corpusDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	corpus, err := compiler.LoadCorpus(corpusDir)
	if err != nil {
		formatter.Error("failed to load corpus", err.Error())
		return NewExitError(ExitCommandError, "failed to load corpus")
	}

	result := ValidationResult{Valid: true, Rules: len(corpus.Rules)}
	for i := range corpus.Rules {
		if err := rules.Validate(&corpus.Rules[i]); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err.Error())
		}
	}

	if opts.Format == "json" {
		if err := formatter.JSON(result); err != nil {
			return WrapExitError(ExitCommandError, "failed to encode result", err)
		}
	} else {
		for _, e := range result.Errors {
			fmt.Fprintln(cmd.OutOrStdout(), e)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d rules, %d invalid\n", result.Rules, len(result.Errors))
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "corpus has malformed rules")
	}
	return nil
}
