package buildinfo_test

import (
	"testing"

	. "src.tmb.sh/pkg/buildinfo"
	"src.tmb.sh/pkg/prog/progtest"
	"src.tmb.sh/pkg/testutil"
)

func TestProgram(t *testing.T) {
	testutil.Set(t, &VersionSuffix, "+test")
	progtest.Test(t, Program{},
		progtest.ThatTmbd("-version").WritesStdout(Version+"+test\n"),
		progtest.ThatTmbd().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
	)
}
