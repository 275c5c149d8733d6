package version

import "golang.org/x/mod/semver"

// Version is overridden at build time with -ldflags "-X .../pkg/version.Version=v1.2.3".
var Version = "v0.1.0"

const devVersion = "v0.0.0-dev"

// String returns the canonical semantic version, or a dev marker when
// Version is not valid semver.
func String() string {
	v := Version
	if v != "" && v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return devVersion
	}
	return semver.Canonical(v)
}

// UserAgent returns the User-Agent sent to upstream APIs
func UserAgent() string {
	return "portfolio-gateway/" + String()
}
