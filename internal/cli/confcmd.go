package cli

import (
	"encoding/json"
	"fmt"

	flag "github.com/spf13/pflag"
)

func newConfigCommand() *Command {
	flags := flag.NewFlagSet("config", flag.ContinueOnError)

	cmd := &Command{
		Flags: flags,
		Usage: "config <init|show> [<path>]",
		Short: "Create or inspect a config file",
		Long: `Manage godust config files.

  init [<path>]   Write a starter config (refuses to overwrite)
  show [<path>]   Load a config, apply defaults, and print the result

Without a path, ` + ConfigFileName + ` in the working directory is used.`,
	}

	cmd.Exec = func(o *IO, args []string) error {
		if len(args) == 0 || len(args) > 2 {
			return fmt.Errorf("expected 'init' or 'show' with an optional path")
		}

		path := ""
		if len(args) == 2 {
			path = args[1]
		}

		switch args[0] {
		case "init":
			if err := WriteDefaultConfig(path); err != nil {
				return err
			}

			if path == "" {
				path = ConfigFileName
			}

			o.Println("wrote", path)

			return nil

		case "show":
			cfg, err := LoadConfig(path)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}

			o.Println(string(data))

			return nil

		default:
			return fmt.Errorf("unknown config subcommand %q", args[0])
		}
	}

	return cmd
}
