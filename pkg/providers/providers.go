package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

// Source names reported in results, logs and metrics
const (
	SourceAggregator = "aggregator"
	SourceGitHub     = "github"
)

// ErrNoUsableRecords is returned when a listing holds records but none of
// them has an id and a name.
var ErrNoUsableRecords = errors.New("listing has no usable records")

// RepositorySource lists an account's repositories from one upstream
type RepositorySource interface {
	ListRepositories(ctx context.Context, owner string, limit int) ([]types.Repository, error)
	Name() string
	Outcome() types.Outcome
}

// MultiProvider holds repository sources in priority order
type MultiProvider struct {
	sources []RepositorySource
}

// NewMultiProvider creates a multi-provider; nil sources are skipped.
func NewMultiProvider(sources ...RepositorySource) *MultiProvider {
	mp := &MultiProvider{}
	for _, s := range sources {
		if s != nil {
			mp.sources = append(mp.sources, s)
		}
	}
	return mp
}

// Sources returns the sources in the order they should be attempted
func (mp *MultiProvider) Sources() []RepositorySource {
	if mp == nil {
		return nil
	}
	out := make([]RepositorySource, len(mp.sources))
	copy(out, mp.sources)
	return out
}

// Names returns the source names in priority order
func (mp *MultiProvider) Names() []string {
	names := make([]string, 0, len(mp.Sources()))
	for _, s := range mp.Sources() {
		names = append(names, s.Name())
	}
	return names
}

// DefaultAggregatorURL is the alternate aggregation API used by the portfolio.
const DefaultAggregatorURL = "https://git-api-i3y5.onrender.com"

// AggregatorProvider reads repositories from the alternate aggregation API
type AggregatorProvider struct {
	httpClient *http.Client
	baseURL    string
}

// AggregatorRepository represents a repository record of the aggregation API
type AggregatorRepository struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	Description     *string  `json:"description"`
	Homepage        *string  `json:"homepage"`
	Language        *string  `json:"language"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	UpdatedAt       string   `json:"updated_at"`
	Topics          []string `json:"topics"`
}

// NewAggregatorProvider creates an aggregator provider; an empty baseURL
// selects DefaultAggregatorURL.
func NewAggregatorProvider(baseURL string) *AggregatorProvider {
	if baseURL == "" {
		baseURL = DefaultAggregatorURL
	}
	return &AggregatorProvider{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// Name returns the provider name
func (ap *AggregatorProvider) Name() string {
	return SourceAggregator
}

// Outcome tags results served by this provider
func (ap *AggregatorProvider) Outcome() types.Outcome {
	return types.OutcomeSecondary
}

// ListRepositories fetches the account's repositories from the aggregation API.
// The API does not paginate; limit is applied after decoding.
func (ap *AggregatorProvider) ListRepositories(ctx context.Context, owner string, limit int) ([]types.Repository, error) {
	if owner == "" {
		return nil, fmt.Errorf("owner must be provided")
	}

	endpoint := fmt.Sprintf("%s/api/v1/users/%s/repositories", ap.baseURL, url.PathEscape(owner))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := ap.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("aggregator API returned status %d", resp.StatusCode)
	}

	var records []AggregatorRepository
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode aggregator response: %w", err)
	}

	repos := make([]types.Repository, 0, len(records))
	for _, rec := range records {
		if limit > 0 && len(repos) == limit {
			break
		}
		r := rec.toRepository(owner)
		if !r.Valid() {
			continue
		}
		repos = append(repos, r)
	}
	if len(repos) == 0 && len(records) > 0 {
		return nil, fmt.Errorf("aggregator: %w", ErrNoUsableRecords)
	}

	return repos, nil
}

func (rec AggregatorRepository) toRepository(owner string) types.Repository {
	fullName := rec.FullName
	if fullName == "" {
		fullName = owner + "/" + rec.Name
	}

	repo := types.Repository{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		URL:         "https://github.com/" + fullName,
		Homepage:    rec.Homepage,
		Language:    rec.Language,
		Stars:       rec.StargazersCount,
		Forks:       rec.ForksCount,
		UpdatedAt:   rec.UpdatedAt,
		Topics:      rec.Topics,
	}
	if repo.Homepage != nil && *repo.Homepage == "" {
		repo.Homepage = nil
	}
	repo.Normalize()
	return repo
}

// RepositoryLister is the subset of the GitHub client used by GitHubProvider
type RepositoryLister interface {
	ListRepositories(ctx context.Context, login string, perPage int) ([]types.Repository, error)
}

// GitHubProvider lists repositories directly from the GitHub API
type GitHubProvider struct {
	client RepositoryLister
}

// NewGitHubProvider creates a GitHub provider
func NewGitHubProvider(client RepositoryLister) *GitHubProvider {
	return &GitHubProvider{client: client}
}

// Name returns the provider name
func (gp *GitHubProvider) Name() string {
	return SourceGitHub
}

// Outcome tags results served by this provider
func (gp *GitHubProvider) Outcome() types.Outcome {
	return types.OutcomePrimary
}

// ListRepositories fetches the owner's most recently updated repositories
func (gp *GitHubProvider) ListRepositories(ctx context.Context, owner string, limit int) ([]types.Repository, error) {
	if gp.client == nil {
		return nil, fmt.Errorf("GitHub client is nil")
	}
	return gp.client.ListRepositories(ctx, owner, limit)
}
