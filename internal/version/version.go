// Package version holds build metadata injected with -ldflags -X.
package version

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// String returns the version line shown by --version.
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate)
}

// Labels returns the build metadata as constant metric labels.
func Labels() prometheus.Labels {
	return prometheus.Labels{
		"version":    Version,
		"commit":     GitCommit,
		"build_date": BuildDate,
	}
}
