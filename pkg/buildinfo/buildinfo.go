// Package buildinfo holds the build metadata stamped into measures binaries
// via -ldflags, e.g.
//
//	-X github.com/papercomputeco/measures/pkg/buildinfo.Version=v0.3.0
package buildinfo

import "fmt"

// Name is the program name reported to clients and in logs.
const Name = "measures"

var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// String returns a one-line summary, e.g. "measures v0.3.0 (abc1234, built 2025-01-02)".
func String() string {
	return fmt.Sprintf("%s %s (%s, built %s)", Name, Version, Sha, Buildtime)
}

// IsDev reports whether the binary was built without a stamped version.
func IsDev() bool {
	return Version == "" || Version == "dev"
}
