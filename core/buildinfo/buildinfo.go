// Package buildinfo carries version metadata stamped at link time:
//
//	go build -ldflags "-X github.com/m3rciful/leadquiz/core/buildinfo.Version=v1.0.0 \
//	  -X github.com/m3rciful/leadquiz/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/m3rciful/leadquiz/core/buildinfo.Date=$(date -u +%FT%TZ)"
package buildinfo

import "strings"

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the short source revision.
	Commit = "local"
	// Date is the RFC 3339 build time.
	Date = ""
)

// String renders the metadata as "version (commit, date)", omitting unknown parts.
func String() string {
	parts := make([]string, 0, 2)
	if Commit != "" {
		parts = append(parts, Commit)
	}
	if Date != "" {
		parts = append(parts, Date)
	}
	if len(parts) == 0 {
		return Version
	}
	return Version + " (" + strings.Join(parts, ", ") + ")"
}
