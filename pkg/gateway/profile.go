package gateway

import (
	"github.com/augustcaio/portfolio-gateway/pkg/github"
	"github.com/augustcaio/portfolio-gateway/pkg/types"
)

// overlay copies every field the API returned onto base. Missing or empty
// strings keep the base value; a present zero count is kept.
func overlay(base types.UserProfile, u *github.UserInfo) types.UserProfile {
	out := base.Clone()

	if s := str(u.AvatarURL); s != "" {
		out.AvatarURL = s
	}
	if s := str(u.Name); s != "" {
		out.DisplayName = s
	}
	if s := str(u.Login); s != "" {
		out.Login = s
	}
	if s := str(u.Bio); s != "" {
		out.Bio = types.StringPtr(s)
	}
	if u.PublicRepos != nil {
		out.PublicRepos = *u.PublicRepos
	}
	if u.Followers != nil {
		out.Followers = *u.Followers
	}
	if u.Following != nil {
		out.Following = *u.Following
	}

	return out
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
