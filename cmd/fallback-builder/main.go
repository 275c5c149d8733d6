package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/augustcaio/portfolio-gateway/pkg/fallback"
	"github.com/augustcaio/portfolio-gateway/pkg/gateway"
	ghclient "github.com/augustcaio/portfolio-gateway/pkg/github"
	"github.com/augustcaio/portfolio-gateway/pkg/providers"
	"github.com/augustcaio/portfolio-gateway/pkg/types"
	"github.com/augustcaio/portfolio-gateway/pkg/version"
)

var (
	login   = flag.String("login", "augustcaio", "GitHub account to snapshot")
	output  = flag.String("output", "pkg/fallback/data/fallback.json", "Output file path")
	token   = flag.String("token", "", "GitHub token (defaults to GITHUB_TOKEN)")
	limit   = flag.Int("limit", gateway.DefaultLimit, "Number of repositories to keep")
	timeout = flag.Duration("timeout", 30*time.Second, "Timeout of each GitHub request")
)

func main() {
	flag.Parse()

	if *token == "" {
		*token = os.Getenv("GITHUB_TOKEN")
		if *token == "" {
			fmt.Fprintln(os.Stderr, "Warning: no GitHub token, using the anonymous rate limit")
		}
	}
	if *limit < 1 {
		fmt.Fprintln(os.Stderr, "Error: --limit must be at least 1")
		os.Exit(1)
	}

	fmt.Printf("Building fallback dataset...\n")
	fmt.Printf("  Login:  %s\n", *login)
	fmt.Printf("  Repos:  %d\n", *limit)
	fmt.Printf("  Output: %s\n", *output)
	fmt.Println()

	d, err := build(context.Background(), *token, *login, *limit, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building dataset: %v\n", err)
		os.Exit(1)
	}

	if err := d.Write(*output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Dataset written to %s\n", *output)
	fmt.Println()
	fmt.Println("Statistics:")
	fmt.Printf("  Followers:    %d\n", d.Stats.Followers)
	fmt.Printf("  Public repos: %d\n", d.Stats.PublicRepos)
	fmt.Printf("  Stars:        %d\n", d.Stats.TotalStars)
	fmt.Printf("  Forks:        %d\n", d.Stats.TotalForks)
}

// build reads live data through a GitHub-only gateway. Any degraded read
// aborts the build so the snapshot never contains fallback values.
func build(ctx context.Context, token, login string, limit int, timeout time.Duration) (*fallback.Dataset, error) {
	client, err := ghclient.NewClient(token, ghclient.WithUserAgent(version.UserAgent()))
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	listing := providers.NewGitHubProvider(client)
	g := gateway.New(gateway.Sources{
		Users:        client,
		Repositories: providers.NewMultiProvider(listing),
		Languages:    client,
		Stats:        listing,
	}, gateway.Options{
		Login: login,
		Timeouts: gateway.Timeouts{
			Profile:   timeout,
			Listing:   timeout,
			Languages: timeout,
			Stats:     timeout,
		},
		DefaultLimit: limit,
		MaxLimit:     limit,
	})

	profile := g.GetProfile(ctx)
	if err := check("profile", profile.Outcome); err != nil {
		return nil, err
	}
	fmt.Printf("  ✓ profile @%s\n", profile.Data.Login)

	repos := g.GetRepositories(ctx, limit)
	if err := check("repositories", repos.Outcome); err != nil {
		return nil, err
	}
	for _, r := range repos.Data {
		fmt.Printf("  ✓ %s (%d languages)\n", r.Name, len(r.Languages))
	}

	stats := g.GetAggregateStats(ctx)
	if err := check("stats", stats.Outcome); err != nil {
		return nil, err
	}

	return &fallback.Dataset{
		BuiltAt:      time.Now().UTC(),
		Profile:      profile.Data,
		Repositories: repos.Data,
		Stats: fallback.Stats{
			Followers:   stats.Data.Followers,
			PublicRepos: stats.Data.PublicRepos,
			TotalStars:  stats.Data.TotalStars,
			TotalForks:  stats.Data.TotalForks,
		},
	}, nil
}

func check(what string, outcome types.Outcome) error {
	if outcome != types.OutcomePrimary {
		return fmt.Errorf("%s read was not served by GitHub (outcome %s)", what, outcome)
	}
	return nil
}
