package contracts

import (
	"fmt"
	"runtime"
)

const (
	Version = "1.2.0"

	// ReportLayoutVersion changes whenever the exported workbook columns or
	// totals row change.
	ReportLayoutVersion = "v1"

	APIVersion = "v1"
)

// Set with -ldflags "-X coursereport/pkg/contracts.GitCommit=...".
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// VersionInfo is served by /api/version and printed by the CLI.
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	Platform     string `json:"platform"`
	ReportLayout string `json:"report_layout"`
	APIVersion   string `json:"api_version"`
}

func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		ReportLayout: ReportLayoutVersion,
		APIVersion:   APIVersion,
	}
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("coursereport %s (layout %s, commit %s, built %s, %s %s)",
		v.Version, v.ReportLayout, v.GitCommit, v.BuildTime, v.GoVersion, v.Platform)
}

// GetFullVersionString is the one-line banner of the version command.
func GetFullVersionString() string {
	return GetVersionInfo().String()
}
