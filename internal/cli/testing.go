package cli

import (
	"bytes"
	"strings"
	"testing"
)

// CLI runs godust commands in tests with captured streams and a temp
// directory for config files.
type CLI struct {
	t   *testing.T
	Dir string
}

// NewCLI creates a new test CLI with a temp directory.
func NewCLI(t *testing.T) *CLI {
	t.Helper()

	return &CLI{t: t, Dir: t.TempDir()}
}

// Run executes godust with the given args and returns stdout, stderr, and
// exit code. Args should not include the program name.
func (r *CLI) Run(args ...string) (string, string, int) {
	return r.RunWithInput("", args...)
}

// RunWithInput executes godust with the given stdin content.
func (r *CLI) RunWithInput(stdin string, args ...string) (string, string, int) {
	var outBuf, errBuf bytes.Buffer

	fullArgs := append([]string{"godust"}, args...)
	code := Run(strings.NewReader(stdin), &outBuf, &errBuf, fullArgs)

	return outBuf.String(), errBuf.String(), code
}

// MustRun executes godust and fails the test on a non-zero exit code.
// Returns trimmed stdout.
func (r *CLI) MustRun(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code != 0 {
		r.t.Fatalf("command %v failed with exit code %d\nstderr: %s", args, code, stderr)
	}

	return strings.TrimSpace(stdout)
}

// MustFail executes godust and fails the test if it succeeds. Returns
// trimmed stderr.
func (r *CLI) MustFail(args ...string) string {
	r.t.Helper()

	stdout, stderr, code := r.Run(args...)
	if code == 0 {
		r.t.Fatalf("command %v should have failed but succeeded\nstdout: %s", args, stdout)
	}

	return strings.TrimSpace(stderr)
}

// AssertContains fails the test if s does not contain substr.
func AssertContains(t *testing.T, s, substr string) {
	t.Helper()

	if !strings.Contains(s, substr) {
		t.Errorf("output %q does not contain %q", s, substr)
	}
}
