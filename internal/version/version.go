// Package version reports which tagdex build is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Overridden at link time:
//
//	-ldflags "-X github.com/kailas-cloud/tagdex/internal/version.Version=v1.2.0"
//
//nolint:gochecknoglobals // ldflags targets
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Get returns build metadata. Commit and date fall back to the VCS stamp
// the Go toolchain embeds when ldflags did not set them.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}
	if info.Commit == "" {
		info.Commit = "unknown"
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return info
}

func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = shortRevision(s.Value)
			}
		case "vcs.time":
			if info.Date == "" {
				info.Date = s.Value
			}
		}
	}
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String renders a one-line summary.
func (i Info) String() string {
	return fmt.Sprintf("tagdex %s (commit %s, built %s, %s)", i.Version, i.Commit, i.Date, i.GoVersion)
}
