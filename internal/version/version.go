package version

import (
	"runtime/debug"
	"strings"
)

// Default is the default version value used when none was found.
const Default = "dev"

// modulePath is the path x86enc is imported with.
const modulePath = "github.com/asmcore/x86enc"

// version holds the current version from the go.mod of downstream users or set by ldflag for the x86enc CLI.
var version string

// GetVersion returns the current version of x86enc either in the go.mod or set by ldflag for the x86enc CLI.
//
// When x86enc is a dependency, the returned string matches its require statement: if the go.mod has
// "require github.com/asmcore/x86enc v0.1.2", then this returns "v0.1.2".
func GetVersion() (ret string) {
	if len(version) != 0 {
		return version
	}

	info, ok := debug.ReadBuildInfo()
	if ok {
		for _, dep := range info.Deps {
			if strings.Contains(dep.Path, modulePath) {
				ret = dep.Version
			}
		}

		// In the x86enc CLI, x86enc is the main module.
		if versionMissing(ret) && info.Main.Path == modulePath {
			ret = info.Main.Version
		}
	}
	if versionMissing(ret) {
		return Default // don't return parens
	}

	// Cache for the subsequent calls.
	version = ret
	return ret
}

func versionMissing(ret string) bool {
	return ret == "" || ret == "(devel)" // pkg.go.dev uses (devel)
}
