package types

import "time"

// Repository holds repository information in a source-agnostic format.
// It is produced by the providers and fallback packages and enriched by the gateway.
type Repository struct {
	ID                 int64          `json:"id"`
	Name               string         `json:"name"`
	Description        *string        `json:"description"`
	URL                string         `json:"html_url"`
	Homepage           *string        `json:"homepage"`
	Language           *string        `json:"language"`
	Languages          map[string]int `json:"languages"`
	LanguagesSynthetic bool           `json:"languages_synthetic"`
	Stars              int            `json:"stargazers_count"`
	Forks              int            `json:"forks_count"`
	UpdatedAt          string         `json:"updated_at"`
	Topics             []string       `json:"topics"`
}

// Normalize replaces nil collections with empty ones so the JSON encoding
// never carries null for languages or topics.
func (r *Repository) Normalize() {
	if r.Languages == nil {
		r.Languages = map[string]int{}
	}
	if r.Topics == nil {
		r.Topics = []string{}
	}
}

// Valid reports whether the record identifies a repository. Upstream
// records without an id or a name are unusable.
func (r Repository) Valid() bool {
	return r.ID != 0 && r.Name != ""
}

// Clone returns a deep copy of the repository.
func (r Repository) Clone() Repository {
	out := r
	out.Description = cloneString(r.Description)
	out.Homepage = cloneString(r.Homepage)
	out.Language = cloneString(r.Language)

	out.Languages = make(map[string]int, len(r.Languages))
	for k, v := range r.Languages {
		out.Languages[k] = v
	}

	out.Topics = make([]string, len(r.Topics))
	copy(out.Topics, r.Topics)

	return out
}

// PrimaryLanguage returns the repository's primary language or "" when unknown.
func (r *Repository) PrimaryLanguage() string {
	if r.Language == nil {
		return ""
	}
	return *r.Language
}

// LastUpdated parses UpdatedAt. It returns the zero time when the value is
// missing or not RFC 3339.
func (r *Repository) LastUpdated() time.Time {
	t, err := time.Parse(time.RFC3339, r.UpdatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// DaysSinceUpdate returns the number of days since the last update.
// Returns -1 if the timestamp is unknown.
func (r *Repository) DaysSinceUpdate() int {
	t := r.LastUpdated()
	if t.IsZero() {
		return -1
	}
	return int(time.Since(t).Hours() / 24)
}

// CloneRepositories deep-copies a repository list.
func CloneRepositories(in []Repository) []Repository {
	out := make([]Repository, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
