package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/augustcaio/portfolio-gateway/pkg/formatter"
	"github.com/augustcaio/portfolio-gateway/pkg/logging"
)

var (
	fetchLimit     int
	fetchFormat    string
	noCache        bool
	failOnFallback bool
	verbose        bool
	noColor        bool

	fetchCmd = &cobra.Command{
		Use:       "fetch profile|projects|stats",
		Short:     "Run one gateway read and print the result",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{formatter.KindProfile, formatter.KindProjects, formatter.KindStats},
		RunE:      runFetch,
	}
)

func init() {
	fetchCmd.Flags().IntVar(&fetchLimit, "limit", 0, "Number of projects (0 uses the configured default)")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "console", "Output format: console, json, github-actions")
	fetchCmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the snapshot cache")
	fetchCmd.Flags().BoolVar(&failOnFallback, "fail-on-fallback", false, "Exit with code 1 when the result comes from the fallback dataset")
	fetchCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show project details")
	fetchCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Logs go to stderr so JSON output stays parseable
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Env, cfg.LogLevel)

	f, err := formatter.New(fetchFormat, formatter.Options{
		Verbose:        verbose,
		NoColor:        noColor,
		FailOnFallback: failOnFallback,
	})
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	reader, err := newReader(cfg, client, logger, nil, !noCache)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	var report formatter.Report
	switch args[0] {
	case formatter.KindProfile:
		report = formatter.ProfileReport(reader.GetProfile(ctx))
	case formatter.KindProjects:
		report = formatter.ProjectsReport(reader.GetRepositories(ctx, fetchLimit))
	case formatter.KindStats:
		report = formatter.StatsReport(reader.GetAggregateStats(ctx))
	default:
		return fmt.Errorf("unknown kind %q", args[0])
	}

	if err := f.Format(cmd.OutOrStdout(), report); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if code := f.ShouldExit(report); code != 0 {
		os.Exit(code)
	}
	return nil
}
