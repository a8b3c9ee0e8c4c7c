// Package cli implements the godust command line: attaching a dust device
// over a backing file and driving it through an administrative console.
package cli

import "io"

// version follows the dm-dust target versioning.
const version = "1.0.0"

// Run is the main entry point. args is os.Args-shaped (args[0] is the
// program name). Returns the exit code.
func Run(in io.Reader, out, errOut io.Writer, args []string) int {
	o := NewIO(in, out, errOut)

	cmds := []*Command{
		newAttachCommand(),
		newConfigCommand(),
	}

	if len(args) < 2 {
		printUsage(o, cmds)

		return 0
	}

	name := args[1]

	switch name {
	case "-h", "--help", "help":
		printUsage(o, cmds)

		return 0
	case "--version", "version":
		o.Println("godust", version)

		return 0
	}

	for _, c := range cmds {
		if c.Name() == name {
			return c.Run(o, args[2:])
		}
	}

	o.ErrPrintln("error: unknown command", name)
	printUsage(o, cmds)

	return 1
}

func printUsage(o *IO, cmds []*Command) {
	o.Println("godust - simulated bad-block passthrough device")
	o.Println()
	o.Println("Usage: godust <command> [flags]")
	o.Println()
	o.Println("Commands:")

	for _, c := range cmds {
		o.Println(c.helpLine())
	}

	o.Println()
	o.Println("Run 'godust <command> --help' for command details.")
}
