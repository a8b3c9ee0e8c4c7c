package main

import (
	"os"

	"github.com/soumendus/godust/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args))
}
