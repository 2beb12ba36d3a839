package version

import (
	"fmt"
	"runtime"
)

// Set at build time with -ldflags "-X github.com/alchemix-labs/yieldkit/pkg/version.GitCommit=...".
var (
	Major      = 0
	Minor      = 4
	Patch      = 1
	PreRelease = ""
	GitCommit  = ""
	BuildDate  = ""
)

// Version returns the semantic version string.
func Version() string {
	v := fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
	if PreRelease != "" {
		v += "-" + PreRelease
	}
	return v
}

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   Version(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns "yieldkit v0.4.1 (abc1234)" style output.
func String() string {
	s := "yieldkit v" + Version()
	if len(GitCommit) >= 7 {
		s += fmt.Sprintf(" (%s)", GitCommit[:7])
	}
	return s
}
