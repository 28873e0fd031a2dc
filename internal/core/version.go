package core

import (
	"fmt"
	"runtime/debug"
	"strings"

	"golang.org/x/mod/module"
)

// Version is resolved once from the embedded build info.
var Version = resolveVersion(debug.ReadBuildInfo())

// resolveVersion prefers a tagged module version and falls back to the VCS
// revision ("devel-<sha>[-dirty]") for local builds.
func resolveVersion(info *debug.BuildInfo, ok bool) string {
	if !ok || info == nil {
		return "devel"
	}

	if v := info.Main.Version; v != "" && v != "(devel)" && !module.IsPseudoVersion(v) {
		return v
	}

	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return "devel"
	}

	if len(revision) > 7 {
		revision = revision[:7]
	}
	version := fmt.Sprintf("devel-%s", revision)
	if dirty {
		version += "-dirty"
	}
	return version
}

// FormatVersion strips the "v" prefix of tagged releases.
func FormatVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}
