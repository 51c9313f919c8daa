// Package version carries build metadata injected by the linker.
package version

import "fmt"

// Overridden at build time, e.g.
//
//	go build -ldflags "-X github.com/alexiusacademia/gobem/internal/version.Version=0.2.0 \
//	  -X github.com/alexiusacademia/gobem/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"

	Author = "Alexius Academia"
	Year   = "2025"
)

// String returns the version line printed by `gobem version`
func String() string {
	return fmt.Sprintf("gobem v%s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
