// Package progtest provides utilities for testing subprograms.
//
// This package intentionally has no dependency on other packages in this
// module, so that it can test any subprogram.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.tmb.sh/pkg/prog"
)

// Case is a test case against a subprogram, created with ThatTmbd.
type Case struct {
	args []string
	want result
}

type result struct {
	exit           int
	stdout, stderr output
}

type output struct {
	content string
	partial bool
}

func (o output) String() string {
	if o.partial {
		return "text containing " + o.content
	}
	return "text " + o.content
}

// ThatTmbd returns a new Case with the given CLI arguments.
func ThatTmbd(args ...string) Case {
	return Case{args: append([]string{"tmbd"}, args...)}
}

// DoesNothing returns t unchanged. It is useful to mark tests that otherwise
// have no expectations.
func (c Case) DoesNothing() Case { return c }

// ExitsWith returns an altered Case that requires the exit code to be code.
func (c Case) ExitsWith(code int) Case {
	c.want.exit = code
	return c
}

// WritesStdout returns an altered Case that requires the stdout to equal s.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the stdout to
// contain s.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that requires the stderr to equal s.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that requires the stderr to
// contain s.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{content: s, partial: true}
	return c
}

// Test runs each case against the given program and checks the results.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args[1:], " "), func(t *testing.T) {
			t.Helper()
			r := run(p, c.args)
			if r.exit != c.want.exit {
				t.Errorf("got exit code %d, want %d", r.exit, c.want.exit)
			}
			if !matchOutput(r.stdout, c.want.stdout) {
				t.Errorf("got stdout %q, want %s", r.stdout.content, c.want.stdout)
			}
			if !matchOutput(r.stderr, c.want.stderr) {
				t.Errorf("got stderr %q, want %s", r.stderr.content, c.want.stderr)
			}
		})
	}
}

func matchOutput(got, want output) bool {
	if want.partial {
		return strings.Contains(got.content, want.content)
	}
	return got.content == want.content
}

func run(p prog.Program, args []string) result {
	stdin, err := os.Open(os.DevNull)
	if err != nil {
		panic(err)
	}
	defer stdin.Close()
	stdout := capture()
	stderr := capture()
	exit := prog.Run([3]*os.File{stdin, stdout.w, stderr.w}, args, p)
	return result{exit: exit, stdout: stdout.get(), stderr: stderr.get()}
}

type capturer struct {
	w  *os.File
	ch chan string
}

func capture() *capturer {
	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	ch := make(chan string, 1)
	go func() {
		b, _ := io.ReadAll(r)
		r.Close()
		ch <- string(b)
	}()
	return &capturer{w, ch}
}

func (c *capturer) get() output {
	c.w.Close()
	return output{content: <-c.ch}
}
