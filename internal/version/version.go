// Package version exposes the pagepress build version.
package version

import "runtime/debug"

// Version is the release version stamped at build time:
//
//	go build -ldflags "-X git.home.luguber.info/inful/pagepress/internal/version.Version=v1.3.0"
//
// Unstamped builds fall back to the module version recorded by the
// toolchain, or "devel" when there is none. The value feeds the --version
// flag, the build report, and the build key, so it must never be empty.
var Version = ""

func init() {
	if Version != "" {
		return
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			Version = v
			return
		}
	}
	Version = "devel"
}
