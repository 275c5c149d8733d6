package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"

	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

// DefaultUserAgent is sent with every GitHub API request.
const DefaultUserAgent = "portfolio-gateway"

var (
	ErrRateLimited  = errors.New("GitHub API rate limit exceeded")
	ErrUnauthorized = errors.New("GitHub API authentication failed")
	ErrForbidden    = errors.New("GitHub API access forbidden")
	ErrNotFound     = errors.New("GitHub resource not found")

	// ErrMalformedResponse is returned when a listing has records but none
	// of them carries an id and a name.
	ErrMalformedResponse = errors.New("GitHub API returned no usable records")
)

// Client wraps the GitHub API client with optional authentication
type Client struct {
	client        *github.Client
	authenticated bool
}

// UserInfo holds the profile fields returned by the users endpoint.
// Pointer fields are nil when the API omitted them.
type UserInfo struct {
	AvatarURL   *string
	Bio         *string
	Name        *string
	Login       *string
	PublicRepos *int
	Followers   *int
	Following   *int
}

type options struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at a different API root (GitHub Enterprise, tests).
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithHTTPClient sets the underlying transport client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// NewClient creates a GitHub client. An empty token is allowed: requests are
// then sent unauthenticated and subject to the anonymous rate limit.
func NewClient(token string, opts ...Option) (*Client, error) {
	o := options{userAgent: DefaultUserAgent}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if token != "" {
		ctx := context.Background()
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	gh := github.NewClient(httpClient)
	if o.userAgent != "" {
		gh.UserAgent = o.userAgent
	}

	if o.baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL %q: %w", o.baseURL, err)
		}
		gh.BaseURL = u
	}

	return &Client{
		client:        gh,
		authenticated: token != "",
	}, nil
}

// Authenticated reports whether requests carry a bearer token.
func (c *Client) Authenticated() bool {
	return c.authenticated
}

// ValidateToken checks that the configured token can read the given account.
func (c *Client) ValidateToken(ctx context.Context, login string) error {
	if c.client == nil {
		return errors.New("GitHub client is nil")
	}
	if !c.authenticated {
		return ErrUnauthorized
	}

	_, resp, err := c.client.Users.Get(ctx, login)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			// Token works, the account does not exist
			return fmt.Errorf("account %q: %w", login, ErrNotFound)
		}
		return classify("validate token", resp, err)
	}

	return nil
}

// GetUser fetches the public profile of login.
func (c *Client) GetUser(ctx context.Context, login string) (*UserInfo, error) {
	if c.client == nil {
		return nil, errors.New("GitHub client is nil")
	}
	if login == "" {
		return nil, errors.New("login must be provided")
	}

	user, resp, err := c.client.Users.Get(ctx, login)
	if err != nil {
		return nil, classify("fetch user", resp, err)
	}
	if user == nil {
		return nil, errors.New("received nil user from GitHub API")
	}

	return &UserInfo{
		AvatarURL:   user.AvatarURL,
		Bio:         user.Bio,
		Name:        user.Name,
		Login:       user.Login,
		PublicRepos: user.PublicRepos,
		Followers:   user.Followers,
		Following:   user.Following,
	}, nil
}

// ListRepositories returns the first page of login's repositories, most
// recently updated first.
func (c *Client) ListRepositories(ctx context.Context, login string, perPage int) ([]types.Repository, error) {
	if c.client == nil {
		return nil, errors.New("GitHub client is nil")
	}
	if login == "" {
		return nil, errors.New("login must be provided")
	}
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}

	repos, resp, err := c.client.Repositories.List(ctx, login, &github.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: perPage},
	})
	if err != nil {
		return nil, classify("list repositories", resp, err)
	}

	out := make([]types.Repository, 0, len(repos))
	for _, r := range repos {
		if r == nil {
			continue
		}
		repo := convertRepository(r)
		if !repo.Valid() {
			continue
		}
		out = append(out, repo)
	}
	if len(out) == 0 && len(repos) > 0 {
		return nil, ErrMalformedResponse
	}

	return out, nil
}

// GetLanguages returns the language breakdown (bytes per language) of owner/repo.
func (c *Client) GetLanguages(ctx context.Context, owner, repo string) (map[string]int, error) {
	if c.client == nil {
		return nil, errors.New("GitHub client is nil")
	}
	if owner == "" || repo == "" {
		return nil, errors.New("owner and repo name must be provided")
	}

	langs, resp, err := c.client.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, classify("list languages", resp, err)
	}
	if langs == nil {
		langs = map[string]int{}
	}

	return langs, nil
}

func convertRepository(r *github.Repository) types.Repository {
	repo := types.Repository{
		ID:          r.GetID(),
		Name:        r.GetName(),
		Description: nonEmpty(r.Description),
		URL:         r.GetHTMLURL(),
		Homepage:    nonEmpty(r.Homepage),
		Language:    nonEmpty(r.Language),
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		Topics:      append([]string(nil), r.Topics...),
	}
	if r.UpdatedAt != nil {
		repo.UpdatedAt = r.UpdatedAt.UTC().Format(time.RFC3339)
	}
	repo.Normalize()
	return repo
}

// classify maps a failed API call onto the package's sentinel errors.
func classify(what string, resp *github.Response, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%s (resets at %s): %w", what, rateErr.Rate.Reset.UTC().Format(time.RFC3339), ErrRateLimited)
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w", what, ErrNotFound)
		case http.StatusForbidden:
			if resp.Header.Get("X-RateLimit-Remaining") == "0" {
				resetTime := resp.Header.Get("X-RateLimit-Reset")
				return fmt.Errorf("%s (resets at %s): %w", what, resetTime, ErrRateLimited)
			}
			return fmt.Errorf("%s: %w: %w", what, ErrForbidden, err)
		case http.StatusUnauthorized:
			return fmt.Errorf("%s (check your token): %w: %w", what, ErrUnauthorized, err)
		}
	}

	return fmt.Errorf("%s: %w", what, err)
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
