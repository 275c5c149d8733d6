package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

func TestAggregatorProvider_Name(t *testing.T) {
	ap := NewAggregatorProvider("")
	if ap.Name() != "aggregator" {
		t.Errorf("Name() = %q, want %q", ap.Name(), "aggregator")
	}
	if ap.Outcome() != types.OutcomeSecondary {
		t.Errorf("Outcome() = %q, want secondary", ap.Outcome())
	}
	if ap.baseURL != DefaultAggregatorURL {
		t.Errorf("baseURL = %q, want default", ap.baseURL)
	}
}

func TestAggregatorProvider_ListRepositories_Success(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{"id": 1, "name": "one", "full_name": "augustcaio/one", "description": "d1",
			 "homepage": "", "language": "TypeScript", "stargazers_count": 3, "forks_count": 1,
			 "updated_at": "2024-01-15T10:30:00Z", "topics": ["nextjs"]},
			{"id": 2, "name": "two", "full_name": "augustcaio/two", "description": null,
			 "homepage": "https://two.dev", "language": null, "stargazers_count": 0, "forks_count": 0,
			 "updated_at": "2024-01-10T10:30:00Z"},
			{"id": 3, "name": "three", "stargazers_count": 9}
		]`)
	}))
	defer server.Close()

	ap := NewAggregatorProvider(server.URL + "/")
	repos, err := ap.ListRepositories(context.Background(), "augustcaio", 0)
	if err != nil {
		t.Fatalf("ListRepositories() error: %v", err)
	}

	if path != "/api/v1/users/augustcaio/repositories" {
		t.Errorf("path = %q", path)
	}
	if len(repos) != 3 {
		t.Fatalf("len(repos) = %d, want 3", len(repos))
	}

	if repos[0].URL != "https://github.com/augustcaio/one" {
		t.Errorf("URL = %q", repos[0].URL)
	}
	if repos[0].Homepage != nil {
		t.Error("empty homepage should become nil")
	}
	if repos[1].Topics == nil || repos[1].Languages == nil {
		t.Error("missing collections should be normalized")
	}
	// Missing full_name is rebuilt from the owner
	if repos[2].URL != "https://github.com/augustcaio/three" {
		t.Errorf("URL without full_name = %q", repos[2].URL)
	}
}

func TestAggregatorProvider_ListRepositories_Limit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":1,"name":"a"},{"id":2,"name":"b"},{"id":3,"name":"c"}]`)
	}))
	defer server.Close()

	ap := NewAggregatorProvider(server.URL)
	repos, err := ap.ListRepositories(context.Background(), "augustcaio", 2)
	if err != nil {
		t.Fatalf("ListRepositories() error: %v", err)
	}
	if len(repos) != 2 || repos[0].ID != 1 || repos[1].ID != 2 {
		t.Errorf("limit not applied in source order: %+v", repos)
	}
}

func TestAggregatorProvider_ListRepositories_MalformedRecords(t *testing.T) {
	t.Run("no usable records", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[{}, {"unexpected": true}]`)
		}))
		defer server.Close()

		repos, err := NewAggregatorProvider(server.URL).ListRepositories(context.Background(), "augustcaio", 0)
		if !errors.Is(err, ErrNoUsableRecords) {
			t.Fatalf("error = %v, want ErrNoUsableRecords", err)
		}
		if repos != nil {
			t.Errorf("repos = %+v, want nil", repos)
		}
	})

	t.Run("invalid records skipped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[{"name": "noid"}, {"id": 4}, {"id": 7, "name": "keep"}, {"id": 8, "name": "also"}]`)
		}))
		defer server.Close()

		repos, err := NewAggregatorProvider(server.URL).ListRepositories(context.Background(), "augustcaio", 1)
		if err != nil {
			t.Fatalf("ListRepositories() error: %v", err)
		}
		if len(repos) != 1 || repos[0].ID != 7 || repos[0].Name != "keep" {
			t.Errorf("repos = %+v, want only keep", repos)
		}
	})
}

func TestAggregatorProvider_ListRepositories_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"not": "a list"`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			ap := NewAggregatorProvider(server.URL)
			if _, err := ap.ListRepositories(context.Background(), "augustcaio", 6); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestAggregatorProvider_EmptyOwner(t *testing.T) {
	ap := NewAggregatorProvider("http://127.0.0.1:1")
	if _, err := ap.ListRepositories(context.Background(), "", 6); err == nil {
		t.Error("expected error for empty owner")
	}
}

type fakeLister struct {
	repos   []types.Repository
	err     error
	perPage int
}

func (f *fakeLister) ListRepositories(ctx context.Context, login string, perPage int) ([]types.Repository, error) {
	f.perPage = perPage
	return f.repos, f.err
}

func TestGitHubProvider(t *testing.T) {
	lister := &fakeLister{repos: []types.Repository{{ID: 7, Name: "seven"}}}
	gp := NewGitHubProvider(lister)

	if gp.Name() != "github" || gp.Outcome() != types.OutcomePrimary {
		t.Errorf("unexpected identity: %s/%s", gp.Name(), gp.Outcome())
	}

	repos, err := gp.ListRepositories(context.Background(), "augustcaio", 6)
	if err != nil {
		t.Fatalf("ListRepositories() error: %v", err)
	}
	if len(repos) != 1 || lister.perPage != 6 {
		t.Errorf("repos = %+v, perPage = %d", repos, lister.perPage)
	}

	failing := NewGitHubProvider(&fakeLister{err: errors.New("boom")})
	if _, err := failing.ListRepositories(context.Background(), "augustcaio", 6); err == nil {
		t.Error("expected error to propagate")
	}
}

func TestMultiProvider_Order(t *testing.T) {
	agg := NewAggregatorProvider("")
	gh := NewGitHubProvider(&fakeLister{})

	mp := NewMultiProvider(agg, nil, gh)
	names := mp.Names()
	if len(names) != 2 || names[0] != "aggregator" || names[1] != "github" {
		t.Errorf("Names() = %v, want [aggregator github]", names)
	}

	// Sources returns a copy
	s := mp.Sources()
	s[0] = gh
	if mp.Names()[0] != "aggregator" {
		t.Error("Sources() exposed internal slice")
	}

	var nilMP *MultiProvider
	if len(nilMP.Sources()) != 0 {
		t.Error("nil MultiProvider should have no sources")
	}
}
