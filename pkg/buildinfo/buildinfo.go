// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X src.tmb.sh/pkg/buildinfo.Var=value" to "go build".
package buildinfo

import (
	"fmt"
	"os"

	"src.tmb.sh/pkg/prog"
)

// Version identifies the version of the template bridge. On development
// commits, it identifies the next release.
const Version = "v0.3.0"

// VersionSuffix is appended to Version in the output of "tmbd -version" to
// build the full version string. This can be overridden when building.
var VersionSuffix = "-dev.unknown"

// Program is the buildinfo subprogram.
type Program struct{}

func (Program) Run(fds [3]*os.File, f *prog.Flags, _ []string) error {
	if !f.Version {
		return prog.ErrNotSuitable
	}
	fmt.Fprintln(fds[1], Version+VersionSuffix)
	return nil
}
