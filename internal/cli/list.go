package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/santoshn/alive-nj/internal/compiler"
	"github.com/santoshn/alive-nj/internal/rules"
)

// RuleSummary is one rule's listing entry.
type RuleSummary struct {
	Name          string `json:"name"`
	Precision     string `json:"precision,omitempty"`
	Pre           string `json:"pre,omitempty"`
	Source        string `json:"source"`
	Replacement   string `json:"replacement"`
	Bidirectional bool   `json:"bidirectional,omitempty"`
	Disabled      bool   `json:"disabled,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var showDisabled bool

	cmd := &cobra.Command{
		Use:           "list <corpus-dir>",
		Short:         "List the rules of a corpus",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, args[0], showDisabled, cmd)
		},
	}

	cmd.Flags().BoolVar(&showDisabled, "disabled", false, "include disabled rules")
	return cmd
}

func runList(opts *RootOptions, corpusDir string, showDisabled bool, cmd *cobra.Command) error {
	corpus, err := compiler.LoadCorpus(corpusDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load corpus", err)
	}

	var summaries []RuleSummary
	for i := range corpus.Rules {
		r := &corpus.Rules[i]
		if !r.Active && !showDisabled {
			continue
		}
		summaries = append(summaries, summarize(r))
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.JSON(summaries)
	}

	for _, s := range summaries {
		line := fmt.Sprintf("%s: %s => %s", s.Name, s.Source, s.Replacement)
		if s.Bidirectional {
			line = fmt.Sprintf("%s: %s <=> %s", s.Name, s.Source, s.Replacement)
		}
		if s.Pre != "" {
			line += fmt.Sprintf("  [if %s]", s.Pre)
		}
		if s.Disabled {
			line += fmt.Sprintf("  (disabled: %s)", s.Reason)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d rules, %d disabled\n", len(corpus.Rules), corpus.DisabledCount())
	return nil
}

func summarize(r *rules.Rule) RuleSummary {
	s := RuleSummary{
		Name:          r.Name,
		Precision:     r.Precision,
		Replacement:   renderSide(r.RHS, r.ReplResult()),
		Source:        renderSide(r.LHS, rules.Var(r.SourceResult())),
		Bidirectional: r.Bidirectional,
		Disabled:      !r.Active,
		Reason:        r.Reason,
	}
	if _, isTrue := r.Precondition().(rules.True); !isTrue {
		s.Pre = r.Precondition().String()
	}
	return s
}

func renderSide(instrs []rules.Instruction, result rules.Operand) string {
	if len(instrs) == 0 {
		return result.String()
	}
	out := ""
	for i, in := range instrs {
		if i > 0 {
			out += "; "
		}
		out += in.String()
	}
	if result.Kind != rules.OperandVar || result.Name != instrs[len(instrs)-1].Result {
		out += "; " + result.String()
	}
	return out
}
