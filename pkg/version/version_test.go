package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if got := Version(); got != "0.4.1" {
		t.Errorf("Version() = %q, want 0.4.1", got)
	}
}

func TestString(t *testing.T) {
	orig := GitCommit
	defer func() { GitCommit = orig }()

	GitCommit = ""
	if got := String(); got != "yieldkit v0.4.1" {
		t.Errorf("String() = %q", got)
	}

	GitCommit = "0123456789abcdef"
	if got := String(); !strings.HasSuffix(got, "(0123456)") {
		t.Errorf("String() = %q, want short commit suffix", got)
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("Platform = %q", info.Platform)
	}
}
