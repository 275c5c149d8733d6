package formatter

import (
	"fmt"
	"io"

	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

// GitHubActionsFormatter formats output for GitHub Actions annotations,
// for scheduled workflows that watch the portfolio's data sources.
type GitHubActionsFormatter struct {
	opts Options
}

// Format writes the report in GitHub Actions annotations format
// https://docs.github.com/en/actions/using-workflows/workflow-commands-for-github-actions
func (f *GitHubActionsFormatter) Format(w io.Writer, report Report) error {
	switch report.Outcome {
	case types.OutcomeFallback:
		severity := "warning"
		if f.opts.FailOnFallback {
			severity = "error"
		}
		fmt.Fprintf(w, "::%s title=Gateway Fallback::%s served from the static fallback dataset\n", severity, report.Kind)
	case types.OutcomePartial:
		fmt.Fprintf(w, "::warning title=Gateway Partial::%s mixes live and fallback values\n", report.Kind)
	default:
		fmt.Fprintf(w, "::notice::%s served by %s (%s)\n", report.Kind, report.Source, report.Outcome)
	}

	if f.opts.Verbose && report.Kind == KindProjects {
		for _, r := range report.Repositories {
			if r.LanguagesSynthetic {
				fmt.Fprintf(w, "::notice title=Estimated Languages::%s\n", r.Name)
			}
		}
	}

	return nil
}

// ShouldExit returns the exit code based on the report
func (f *GitHubActionsFormatter) ShouldExit(report Report) int {
	return exitCode(f.opts, report)
}
