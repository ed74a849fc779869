package version

import (
	"fmt"
	"runtime"
)

// These variables will be set at build time using ldflags
var (
	Version   = "dev"             // Version number
	GitCommit = "unknown"         // Git commit SHA
	BuildDate = "unknown"         // Build date
	GoVersion = runtime.Version() // Go version used to build
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns a detailed version string
func GetFullVersion() string {
	return fmt.Sprintf("vault-kube-token version %s (commit %s, built %s, %s)",
		Version, GitCommit, BuildDate, GoVersion)
}

// GetUserAgent returns the User-Agent string for HTTP requests
func GetUserAgent() string {
	return fmt.Sprintf("vault-kube-token/%s", Version)
}

// String returns the multi-line version information printed by the version
// subcommand.
func String() string {
	return fmt.Sprintf("Version %s\nGit commit: %s\nBuild date: %s\nGo version: %s\nPlatform: %s/%s\n",
		Version, GitCommit, BuildDate, GoVersion, runtime.GOOS, runtime.GOARCH)
}
