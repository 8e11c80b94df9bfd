// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// shortCommitLength matches `git rev-parse --short`.
const shortCommitLength = 7

// Build describes the running binary.
type Build struct {
	Version string
	Commit  string
	Dirty   bool
	Time    string
}

// Current returns the build description. Values not injected with
// -ldflags fall back to the VCS stamps the go command records, so a
// plain `go build` from a checkout still reports its commit.
func Current() Build {
	return resolve(GitCommit, GitDirty, BuildTime, readSettings())
}

func readSettings() map[string]string {
	settings := map[string]string{}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return settings
	}
	for _, setting := range info.Settings {
		settings[setting.Key] = setting.Value
	}
	return settings
}

func resolve(commit, dirty, buildTime string, settings map[string]string) Build {
	build := Build{
		Version: Version,
		Commit:  commit,
		Dirty:   dirty == "true",
		Time:    buildTime,
	}
	if build.Commit == "unknown" {
		if revision := settings["vcs.revision"]; revision != "" {
			build.Commit = revision[:min(len(revision), shortCommitLength)]
			build.Dirty = settings["vcs.modified"] == "true"
		}
	}
	if build.Time == "unknown" && settings["vcs.time"] != "" {
		build.Time = settings["vcs.time"]
	}
	return build
}

// String formats the build for --version output:
// "0.1.0-dev (abc1234-dirty, 2026-03-02T09:00:00Z)".
func (build Build) String() string {
	dirty := ""
	if build.Dirty {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", build.Version, build.Commit, dirty, build.Time)
}

// Info returns Current formatted for --version output.
func Info() string {
	return Current().String()
}

// Full returns Info plus the Go version and platform.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Print writes "<binary> <Info>" to stdout.
func Print(binary string) {
	Fprint(os.Stdout, binary)
}

// Fprint writes "<binary> <Info>" to w.
func Fprint(w io.Writer, binary string) {
	fmt.Fprintf(w, "%s %s\n", binary, Info())
}
