/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docrepo

// Build metadata, overridable via -ldflags. Only Version carries a
// default; the rest stay "unknown" for plain go-build binaries.
var (
	// Version is the library release.
	Version = "0.1.0"

	// GitCommit identifies the commit the binary was built from.
	GitCommit = "unknown"

	// BuildDate records when the binary was built.
	BuildDate = "unknown"

	// GoVersion records the toolchain that built the binary.
	GoVersion = "unknown"
)

// VersionInfo is the build metadata snapshot reported by commands such
// as typemap -version.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

// GetVersionInfo snapshots the build metadata.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
	}
}
