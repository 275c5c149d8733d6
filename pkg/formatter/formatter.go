package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/augustcaio/portfolio-gateway/pkg/gateway"
	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

// Formatter defines the interface for output formatters
type Formatter interface {
	// Format writes the report to output in the specific format
	Format(w io.Writer, report Report) error

	// ShouldExit returns the exit code based on the report
	// 0 = success, 1 = served from fallback with FailOnFallback
	ShouldExit(report Report) int
}

// Options holds configuration options for formatters
type Options struct {
	Verbose        bool
	NoColor        bool
	FailOnFallback bool
}

// Report kinds
const (
	KindProfile  = "profile"
	KindProjects = "projects"
	KindStats    = "stats"
)

// Report is one gateway result in a kind-independent shape
type Report struct {
	Kind         string                `json:"kind"`
	Outcome      types.Outcome         `json:"outcome"`
	Source       string                `json:"source"`
	CachedAt     *time.Time            `json:"cached_at,omitempty"`
	Profile      *types.UserProfile    `json:"profile,omitempty"`
	Repositories []types.Repository    `json:"repositories,omitempty"`
	Stats        *types.AggregateStats `json:"stats,omitempty"`
}

// ProfileReport wraps a profile result
func ProfileReport(res gateway.Result[types.UserProfile]) Report {
	p := res.Data
	return Report{Kind: KindProfile, Outcome: res.Outcome, Source: res.Source, CachedAt: res.CachedAt, Profile: &p}
}

// ProjectsReport wraps a repository listing result
func ProjectsReport(res gateway.Result[[]types.Repository]) Report {
	return Report{Kind: KindProjects, Outcome: res.Outcome, Source: res.Source, CachedAt: res.CachedAt, Repositories: res.Data}
}

// StatsReport wraps an aggregate stats result
func StatsReport(res gateway.Result[types.AggregateStats]) Report {
	s := res.Data
	return Report{Kind: KindStats, Outcome: res.Outcome, Source: res.Source, CachedAt: res.CachedAt, Stats: &s}
}

// New creates a formatter based on the format string
func New(format string, opts Options) (Formatter, error) {
	switch format {
	case "console", "":
		return &ConsoleFormatter{opts: opts}, nil
	case "json":
		return &JSONFormatter{opts: opts}, nil
	case "github-actions":
		return &GitHubActionsFormatter{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// exitCode is shared by every formatter
func exitCode(opts Options, report Report) int {
	if opts.FailOnFallback && report.Outcome == types.OutcomeFallback {
		return 1
	}
	return 0
}
