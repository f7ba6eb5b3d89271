package pkginfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"

	"go.uber.org/zap"
)

// Set at link time with -ldflags "-X mlengine/pkginfo.Version=..."
var (
	BuildDate  string
	CommitHash string
	Version    = "dev"
)

// BuildVersionString returns a version info string suitable for printing on the command line
func BuildVersionString() string {
	osArch := runtime.GOOS + "/" + runtime.GOARCH
	goVersion := runtime.Version()

	return fmt.Sprintf(`ml-engine %s %s

Build Date: %s
Commit: %s
Built with: %s`, Version, osArch, BuildDate, CommitHash, goVersion)
}

// GetDependencyList returns every module linked into the binary, each of the
// form `path="version"`, sorted by path.
func GetDependencyList() []string {
	var deps []string

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		zap.L().Error("could not get package build info")
		return deps
	}

	for _, dep := range buildInfo.Deps {
		deps = append(deps, fmt.Sprintf("%s=%q", dep.Path, dep.Version))
	}
	sort.Strings(deps)

	return deps
}
