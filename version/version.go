package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Overridden at build time, e.g.
//
//	go build -ldflags "-X taskmind/version.Version=1.0.0 -X taskmind/version.CommitHash=$(git rev-parse HEAD)"
var (
	Version    = "0.3.0"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

// Info is the build metadata reported by --version and /api/health.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Modified  bool   `json:"modified,omitempty"`
}

// Current returns build metadata. When the commit was not injected via
// ldflags it falls back to the VCS stamp embedded by the go tool.
func Current() Info {
	info := Info{
		Version:   Version,
		Commit:    CommitHash,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
	if info.Commit != "unknown" {
		return info
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
		case "vcs.time":
			if info.BuildTime == "unknown" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// ShortCommit is the first seven characters of the commit, or "" when unknown.
func (i Info) ShortCommit() string {
	if i.Commit == "unknown" || len(i.Commit) < 7 {
		return ""
	}
	return i.Commit[:7]
}

func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "taskmind %s\n", i.Version)
	fmt.Fprintf(&b, "Commit: %s", i.Commit)
	if i.Modified {
		b.WriteString(" (dirty)")
	}
	fmt.Fprintf(&b, "\nBuild Time: %s\nGo: %s", i.BuildTime, i.GoVersion)
	return b.String()
}

func GetVersion() string {
	return Version
}

// GetFullVersion returns "1.2.3 (abcdef0)", or just the version when no
// commit is known.
func GetFullVersion() string {
	if short := Current().ShortCommit(); short != "" {
		return Version + " (" + short + ")"
	}
	return Version
}

func GetBuildInfo() string {
	return Current().String()
}

// UserAgent names outbound HTTP requests from component, e.g.
// "taskmind-news-spider/0.3.0".
func UserAgent(component string) string {
	return "taskmind-" + component + "/" + Version
}
