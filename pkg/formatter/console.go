package formatter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

// ConsoleFormatter formats output for human-readable console display
type ConsoleFormatter struct {
	opts Options
}

type styles struct {
	title, good, warn, bad, dim lipgloss.Style
}

func newStyles(w io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return styles{
		title: r.NewStyle().Bold(true),
		good:  r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		warn:  r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		bad:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Format writes the report in human-readable console format
func (f *ConsoleFormatter) Format(w io.Writer, report Report) error {
	st := newStyles(w, f.opts.NoColor)

	// Degraded data gets a banner first, like the site's offline indicator
	switch report.Outcome {
	case types.OutcomeFallback:
		fmt.Fprintln(w, st.bad.Render("⚠ OFFLINE: every upstream failed, showing static fallback data"))
	case types.OutcomePartial:
		fmt.Fprintln(w, st.warn.Render("⚠ PARTIAL: some values come from the static fallback"))
	}

	switch report.Kind {
	case KindProfile:
		f.formatProfile(w, st, report.Profile)
	case KindProjects:
		f.formatProjects(w, st, report.Repositories)
	case KindStats:
		f.formatStats(w, st, report.Stats)
	default:
		return fmt.Errorf("unknown report kind: %q", report.Kind)
	}

	fmt.Fprint(w, "\n"+strings.Repeat("═", 50)+"\n")
	source := fmt.Sprintf("Source: %s (%s)", report.Source, report.Outcome)
	if report.CachedAt != nil {
		source += fmt.Sprintf(", cached %s", report.CachedAt.Local().Format("15:04:05"))
	}
	fmt.Fprintln(w, st.dim.Render(source))

	return nil
}

func (f *ConsoleFormatter) formatProfile(w io.Writer, st styles, p *types.UserProfile) {
	if p == nil {
		return
	}
	fmt.Fprintln(w, st.title.Render(fmt.Sprintf("%s (@%s)", p.DisplayName, p.Login)))
	fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	if p.Bio != nil {
		fmt.Fprintln(w, *p.Bio)
	}
	fmt.Fprintf(w, "Public repositories: %d\n", p.PublicRepos)
	fmt.Fprintf(w, "Followers: %d   Following: %d\n", p.Followers, p.Following)
	if f.opts.Verbose {
		fmt.Fprintf(w, "   🔗 %s\n", p.AvatarURL)
	}
}

func (f *ConsoleFormatter) formatProjects(w io.Writer, st styles, repos []types.Repository) {
	fmt.Fprintln(w, st.title.Render(fmt.Sprintf("Projects (%d):", len(repos))))
	fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	for _, r := range repos {
		line := fmt.Sprintf("📦 %s", r.Name)
		if lang := r.PrimaryLanguage(); lang != "" {
			line += fmt.Sprintf(" [%s]", lang)
		}
		line += fmt.Sprintf("  ★ %d  ⑂ %d", r.Stars, r.Forks)
		fmt.Fprintln(w, line)

		if r.Description != nil {
			fmt.Fprintf(w, "   %s\n", *r.Description)
		}
		fmt.Fprintf(w, "   🔗 %s\n", r.URL)

		if f.opts.Verbose {
			if r.Homepage != nil {
				fmt.Fprintf(w, "   🏠 %s\n", *r.Homepage)
			}
			if days := r.DaysSinceUpdate(); days >= 0 {
				fmt.Fprintf(w, "   Last activity: %d days ago\n", days)
			}
			if breakdown := formatLanguages(r.Languages); breakdown != "" {
				label := "Languages"
				if r.LanguagesSynthetic {
					label += " (estimated)"
				}
				fmt.Fprintf(w, "   %s: %s\n", label, breakdown)
			}
			if len(r.Topics) > 0 {
				fmt.Fprintf(w, "   %s\n", st.dim.Render("#"+strings.Join(r.Topics, " #")))
			}
		}
	}
}

func (f *ConsoleFormatter) formatStats(w io.Writer, st styles, s *types.AggregateStats) {
	if s == nil {
		return
	}
	fmt.Fprintln(w, st.title.Render("📊 GITHUB STATS"))
	fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintf(w, "Followers:    %d\n", s.Followers)
	fmt.Fprintf(w, "Repositories: %d\n", s.PublicRepos)
	fmt.Fprintf(w, "Stars:        %d\n", s.TotalStars)
	fmt.Fprintf(w, "Forks:        %d\n", s.TotalForks)
	if f.opts.Verbose {
		fmt.Fprintf(w, "Computed at:  %s\n", s.ComputedAt.Local().Format("2006-01-02 15:04:05"))
	}
}

// formatLanguages lists languages by share, largest first
func formatLanguages(langs map[string]int) string {
	total := 0
	names := make([]string, 0, len(langs))
	for name, n := range langs {
		total += n
		names = append(names, name)
	}
	if total == 0 {
		return ""
	}

	sort.Slice(names, func(i, j int) bool {
		if langs[names[i]] == langs[names[j]] {
			return names[i] < names[j]
		}
		return langs[names[i]] > langs[names[j]]
	})

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %.0f%%", name, float64(langs[name])*100/float64(total))
	}
	return strings.Join(parts, ", ")
}

// ShouldExit returns the exit code based on the report
func (f *ConsoleFormatter) ShouldExit(report Report) int {
	return exitCode(f.opts, report)
}
