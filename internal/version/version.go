// Package version reports the build version of cursor-usage.
package version

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Set via -ldflags "-X github.com/j-veylop/cursor-usage/internal/version.Version=..."
var (
	Version = ""
	Commit  = ""
	Date    = ""
)

const gitTimeout = 2 * time.Second

var (
	execCommand = exec.CommandContext

	once     sync.Once
	resolved struct {
		version string
		commit  string
		date    string
	}
)

// Reset clears the resolved values so the next accessor resolves them again.
func Reset() {
	once = sync.Once{}
}

func ensureInitialized() {
	once.Do(func() {
		resolved.version = Version
		resolved.commit = Commit
		resolved.date = Date

		if resolved.version == "" {
			resolved.version = moduleVersion()
		}
		if resolved.version == "" {
			resolved.version = gitVersion()
		}
		if resolved.commit == "" {
			resolved.commit = gitOutput("describe", "--always", "--dirty")
		}
		if resolved.commit == "" {
			resolved.commit = "unknown"
		}
		if resolved.date == "" {
			resolved.date = time.Now().Format("2006-01-02")
		}
	})
}

// moduleVersion returns the version recorded by go install, if any.
func moduleVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return ""
	}
	return strings.TrimPrefix(info.Main.Version, "v")
}

func gitVersion() string {
	if v := gitOutput("describe", "--tags", "--abbrev=0"); v != "" {
		return strings.TrimPrefix(v, "v")
	}
	return "dev"
}

func gitOutput(args ...string) string {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	cmd := execCommand(ctx, "git", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return ""
	}
	return strings.TrimSpace(out.String())
}

// GetVersion returns the release version, or "dev".
func GetVersion() string {
	ensureInitialized()
	return resolved.version
}

// GetCommit returns the git commit the binary was built from.
func GetCommit() string {
	ensureInitialized()
	return resolved.commit
}

// GetDate returns the build date.
func GetDate() string {
	ensureInitialized()
	return resolved.date
}

// Info returns a one-line description of the build.
func Info() string {
	ensureInitialized()
	return fmt.Sprintf("cursor-usage %s (commit: %s, built: %s, %s/%s)",
		resolved.version, resolved.commit, resolved.date, runtime.GOOS, runtime.GOARCH)
}
