// Package buildinfo provides the process metadata reported by /version.
package buildinfo

import (
	"runtime"
	"runtime/debug"
	"time"
)

// DefaultServiceName is reported when no name is configured.
const DefaultServiceName = "svcinfo"

// Info describes the running binary. It is captured once at start-up.
type Info struct {
	ServiceName    string
	Version        string
	Commit         string
	RuntimeVersion string
	Platform       string
	Arch           string
	BuiltAt        time.Time
}

// HasCommit reports whether the build commit is known.
func (i Info) HasCommit() bool {
	return i.Commit != ""
}

// New builds Info from link-time values. An empty commit falls back to
// the VCS revision recorded by the Go toolchain, and an unparsable build
// time is left zero.
func New(name, version, commit, buildTime string) Info {
	if name == "" {
		name = DefaultServiceName
	}
	if version == "" {
		version = "dev"
	}

	settings := vcsSettings()
	commit = normalizeCommit(commit)
	if commit == "" {
		commit = settings["vcs.revision"]
	}
	if buildTime == "" || buildTime == "unknown" {
		buildTime = settings["vcs.time"]
	}

	return Info{
		ServiceName:    name,
		Version:        version,
		Commit:         commit,
		RuntimeVersion: runtime.Version(),
		Platform:       runtime.GOOS,
		Arch:           runtime.GOARCH,
		BuiltAt:        parseBuildTime(buildTime),
	}
}

// normalizeCommit treats placeholder values as unknown.
func normalizeCommit(commit string) string {
	switch commit {
	case "unknown", "none", "-":
		return ""
	default:
		return commit
	}
}

func parseBuildTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02_15:04:05", "2006-01-02T15:04:05Z0700"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// vcsSettings returns the vcs.* build settings, if any.
func vcsSettings() map[string]string {
	settings := make(map[string]string)

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return settings
	}
	for _, s := range bi.Settings {
		settings[s.Key] = s.Value
	}
	return settings
}
