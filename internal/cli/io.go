package cli

import (
	"fmt"
	"io"
)

// IO bundles a command's streams so commands never touch os.Stdin/Stdout/
// Stderr directly and tests can capture everything.
type IO struct {
	// In is the command input stream; the console reads it when stdin is
	// not a terminal.
	In io.Reader

	out    io.Writer
	errOut io.Writer
}

// NewIO creates a new IO instance.
func NewIO(in io.Reader, out, errOut io.Writer) *IO {
	return &IO{In: in, out: out, errOut: errOut}
}

// Println writes a line to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes a line to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// ErrWriter exposes the stderr stream for components that narrate directly
// (the device diagnostic sink).
func (o *IO) ErrWriter() io.Writer {
	return o.errOut
}
