// Package version provides build information for the demo API. The values
// feed the service.version resource attribute and the /healthz response.
package version

import "runtime"

// These variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/carverauto/otel-demo/pkg/version.version=1.2.0"
//
//nolint:gochecknoglobals // These are intentionally global for ldflags injection
var (
	version = "0.0.0-dev"
	buildID = "dev"
)

// Info is the JSON-friendly view of the build.
type Info struct {
	Version   string `json:"version"`
	BuildID   string `json:"build_id"`
	GoVersion string `json:"go_version"`
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// GetBuildID returns the current build ID
func GetBuildID() string {
	return buildID
}

// GetFullVersion returns version with build ID
func GetFullVersion() string {
	return version + " (build: " + buildID + ")"
}

func GetInfo() Info {
	return Info{
		Version:   version,
		BuildID:   buildID,
		GoVersion: runtime.Version(),
	}
}
