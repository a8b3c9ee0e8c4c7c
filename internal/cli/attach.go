package cli

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/soumendus/godust/pkg/blockdev"
	"github.com/soumendus/godust/pkg/dust"
)

func newAttachCommand() *Command {
	flags := flag.NewFlagSet("attach", flag.ContinueOnError)

	configPath := flags.StringP("config", "c", "", "config file path (default "+ConfigFileName+" if present)")
	name := flags.String("name", "", "device name for status output")
	blockSize := flags.Uint32P("block-size", "b", 0, "bad-block granularity in bytes (power of 2, >= 512)")
	start := flags.Uint64("start", 0, "sector offset of the data area")
	quiet := flags.BoolP("quiet", "q", false, "suppress diagnostic narration")
	memSize := flags.Int64P("mem", "m", 0, "use an in-memory device of this many bytes instead of a file")

	cmd := &Command{
		Flags: flags,
		Usage: "attach [flags] [<device>]",
		Short: "Attach a dust device and open the admin console",
		Long: `Attach a dust passthrough device over a backing file (or an in-memory
device with --mem) and drive it through the administrative console.

Console commands are the dust message verbs (addbadblock, removebadblock,
queryblock, countbadblocks, clearbadblocks, enable, disable, quiet) plus
read/write/status/table/stats/badblocks for poking the device. Type 'help'
in the console for details.`,
	}

	cmd.Exec = func(o *IO, args []string) error {
		cfg, err := LoadConfig(*configPath)
		if err != nil {
			return err
		}

		// Flags override the config file; the positional argument overrides
		// the configured device path.
		if flags.Changed("name") {
			cfg.Name = *name
		}

		if flags.Changed("block-size") {
			cfg.BlockSize = *blockSize
		}

		if flags.Changed("start") {
			cfg.Start = *start
		}

		if flags.Changed("quiet") {
			cfg.Quiet = *quiet
		}

		if len(args) > 1 {
			return fmt.Errorf("expected at most one device argument, got %d", len(args))
		}

		if len(args) == 1 {
			cfg.Device = args[0]
		}

		backing, err := openBacking(cfg, *memSize)
		if err != nil {
			return err
		}

		d, err := dust.New(backing, dust.Options{
			Name:      cfg.Name,
			Start:     cfg.Start,
			BlockSize: cfg.BlockSize,
			Quiet:     cfg.Quiet,
			Diag:      o.ErrWriter(),
		})
		if err != nil {
			_ = backing.Close()

			return err
		}

		defer func() { _ = d.Close() }()

		for _, bb := range cfg.BadBlocks {
			mode, modeErr := dust.ParseMode(bb.Mode)
			if modeErr != nil {
				return modeErr
			}

			if addErr := d.AddBadBlock(mode, bb.Block, bb.WriteFailCount); addErr != nil {
				return fmt.Errorf("preloading bad block %d: %w", bb.Block, addErr)
			}
		}

		o.Printf("attached %s: %d bytes, %d-byte blocks\n", d.Name(), d.Size(), d.BlockSize())

		return runConsole(d, o)
	}

	return cmd
}

func openBacking(cfg Config, memSize int64) (blockdev.Device, error) {
	if memSize > 0 {
		return blockdev.NewMem(memSize), nil
	}

	if cfg.Device == "" {
		return nil, fmt.Errorf("no backing device: pass a device path or --mem")
	}

	return blockdev.OpenFile(cfg.Device)
}
