package types

import "time"

// UserProfile is the public profile of the portfolio owner.
// Every field has a defined default; a profile is never partially populated.
type UserProfile struct {
	AvatarURL   string  `json:"avatar_url"`
	Bio         *string `json:"bio"`
	DisplayName string  `json:"name"`
	Login       string  `json:"login"`
	PublicRepos int     `json:"public_repos"`
	Followers   int     `json:"followers"`
	Following   int     `json:"following"`
}

// Clone returns a deep copy of the profile.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Bio = cloneString(p.Bio)
	return out
}

// AggregateStats is derived from the profile and the repository listing at fetch time.
type AggregateStats struct {
	Followers   int       `json:"followers"`
	PublicRepos int       `json:"public_repos"`
	TotalStars  int       `json:"total_stars"`
	TotalForks  int       `json:"total_forks"`
	ComputedAt  time.Time `json:"updated_at"`
}

// Sum returns the repository count and the star and fork totals of repos.
func Sum(repos []Repository) (count, stars, forks int) {
	for _, r := range repos {
		stars += r.Stars
		forks += r.Forks
	}
	return len(repos), stars, forks
}
