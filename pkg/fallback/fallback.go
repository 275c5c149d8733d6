package fallback

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

//go:embed data/fallback.json
var embeddedData []byte

// Stats holds the fixed aggregate tuple served when no upstream answers
type Stats struct {
	Followers   int `json:"followers"`
	PublicRepos int `json:"public_repos"`
	TotalStars  int `json:"total_stars"`
	TotalForks  int `json:"total_forks"`
}

// Dataset is the static fallback served when every upstream source fails
type Dataset struct {
	BuiltAt      time.Time          `json:"built_at,omitempty"`
	Profile      types.UserProfile  `json:"profile"`
	Repositories []types.Repository `json:"repositories"`
	Stats        Stats              `json:"stats"`
}

var defaultDataset *Dataset

func init() {
	d, err := Parse(embeddedData)
	if err != nil {
		// The embedded dataset is part of the binary; a broken one is a build defect
		panic(fmt.Sprintf("fallback: invalid embedded dataset: %v", err))
	}
	defaultDataset = d
}

// Default returns the embedded dataset
func Default() *Dataset {
	return defaultDataset
}

// Load reads a dataset from path. An empty path returns the embedded dataset.
func Load(path string) (*Dataset, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fallback dataset: %w", err)
	}

	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("fallback dataset %s: %w", path, err)
	}
	return d, nil
}

// Parse decodes and validates a dataset
func Parse(data []byte) (*Dataset, error) {
	var d Dataset
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse fallback dataset: %w", err)
	}
	for i := range d.Repositories {
		d.Repositories[i].Normalize()
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the invariants the gateway relies on
func (d *Dataset) Validate() error {
	if d.Profile.Login == "" {
		return errors.New("profile login is required")
	}
	if d.Profile.AvatarURL == "" {
		return errors.New("profile avatar_url is required")
	}
	if len(d.Repositories) == 0 {
		return errors.New("at least one repository is required")
	}

	seen := make(map[int64]bool, len(d.Repositories))
	for _, r := range d.Repositories {
		if r.Name == "" {
			return fmt.Errorf("repository %d has no name", r.ID)
		}
		if seen[r.ID] {
			return fmt.Errorf("duplicate repository id %d", r.ID)
		}
		seen[r.ID] = true
	}

	if d.Stats.Followers < 0 || d.Stats.PublicRepos < 0 || d.Stats.TotalStars < 0 || d.Stats.TotalForks < 0 {
		return errors.New("stats must not be negative")
	}
	return nil
}

// UserProfile returns a copy of the fallback profile
func (d *Dataset) UserProfile() types.UserProfile {
	return d.Profile.Clone()
}

// RepositoryList returns a copy of the first limit repositories; limit <= 0 returns all.
func (d *Dataset) RepositoryList(limit int) []types.Repository {
	repos := d.Repositories
	if limit > 0 && limit < len(repos) {
		repos = repos[:limit]
	}
	return types.CloneRepositories(repos)
}

// AggregateStats returns the fallback tuple stamped with now
func (d *Dataset) AggregateStats(now time.Time) types.AggregateStats {
	return types.AggregateStats{
		Followers:   d.Stats.Followers,
		PublicRepos: d.Stats.PublicRepos,
		TotalStars:  d.Stats.TotalStars,
		TotalForks:  d.Stats.TotalForks,
		ComputedAt:  now,
	}
}

// Write stores the dataset at path as indented JSON
func (d *Dataset) Write(path string) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("refusing to write invalid dataset: %w", err)
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal fallback dataset: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write fallback dataset: %w", err)
	}
	return nil
}
