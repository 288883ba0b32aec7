package cli

import "github.com/matzehuels/stackforge/pkg/buildinfo"

// SetVersion overrides the build information shown by --version and
// recorded in exported generation configs. It is an alternative to ldflags
// for builds that know their version at run time.
//
// Parameters:
//   - v: semantic version string (e.g., "v1.2.3")
//   - c: git commit SHA (short or long form)
//   - d: build timestamp (e.g., "2025-12-20T14:32:01Z")
//
// Empty values leave the current setting unchanged.
func SetVersion(v, c, d string) {
	if v != "" {
		buildinfo.Version = v
	}
	if c != "" {
		buildinfo.Commit = c
	}
	if d != "" {
		buildinfo.Date = d
	}
}
