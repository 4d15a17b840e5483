// Tmbd is the template bridge daemon: a stand-in host that records the
// configurations applications push for their templates and relays fire
// events between clients. It is used for development, testing and
// diagnostics of applications built on the bridge package.
package main

import (
	"os"

	"src.tmb.sh/pkg/buildinfo"
	"src.tmb.sh/pkg/daemon"
	"src.tmb.sh/pkg/prog"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program{}, &daemon.Program{})))
}
