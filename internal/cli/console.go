package cli

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/soumendus/godust/pkg/dust"
)

const consoleHelp = `Message verbs:
  addbadblock <read|write> <block> [<write fail count>]
  removebadblock <read|write> <block>
  queryblock <read|write> <block>
  countbadblocks <read|write>
  clearbadblocks <read|write>
  enable <read|write>
  disable <read|write>
  quiet

Device commands:
  read <block>           Read one block through the passthrough layer
  write <block> [byte]   Write one block (filled with byte, default 0)
  badblocks <read|write> List the selected bad-block list
  status                 Show per-direction injection state
  table                  Show construction parameters
  stats                  Show forwarding and injection counters
  help                   Show this help
  exit                   Detach and exit`

// runConsole drives the device from o.In until EOF or an exit command.
// A terminal gets a liner-backed prompt with history; anything else (pipes,
// test buffers) is read line by line.
func runConsole(d *dust.Device, o *IO) error {
	if isTerminal(o.In) {
		return runInteractive(d, o)
	}

	scanner := bufio.NewScanner(o.In)
	for scanner.Scan() {
		if quit := execLine(d, o, scanner.Text()); quit {
			return nil
		}
	}

	return scanner.Err()
}

func runInteractive(d *dust.Device, o *IO) error {
	line := liner.NewLiner()
	defer func() { _ = line.Close() }()

	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt(d.Name() + "> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return err
		}

		if strings.TrimSpace(input) == "" {
			continue
		}

		line.AppendHistory(input)

		if quit := execLine(d, o, input); quit {
			return nil
		}
	}
}

// execLine executes one console line. Returns true on an exit command.
func execLine(d *dust.Device, o *IO, input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}

	switch strings.ToLower(fields[0]) {
	case "exit", "quit", "q":
		return true

	case "help":
		o.Println(consoleHelp)

	case "status":
		o.Println(d.Status())

	case "table":
		o.Println(d.Table())

	case "stats":
		s := d.Stats()
		o.Printf("reads=%d writes=%d read_fails=%d write_fails=%d self_heals=%d\n",
			s.Reads, s.Writes, s.ReadFails, s.WriteFails, s.SelfHeals)

	case "badblocks":
		listBadBlocks(d, o, fields)

	case "read":
		readBlock(d, o, fields)

	case "write":
		writeBlock(d, o, fields)

	default:
		out, err := d.Message(fields...)
		if err != nil {
			o.ErrPrintln("error:", err)
		} else {
			o.Println(out)
		}
	}

	return false
}

func listBadBlocks(d *dust.Device, o *IO, fields []string) {
	if len(fields) != 2 {
		o.ErrPrintln("error: usage: badblocks <read|write>")

		return
	}

	mode, err := dust.ParseMode(fields[1])
	if err != nil {
		o.ErrPrintln("error:", err)

		return
	}

	bbs := d.BadBlocks(mode)
	if len(bbs) == 0 {
		o.Println("no", mode.String(), "bad blocks")

		return
	}

	for _, bb := range bbs {
		o.Printf("block %d write_fail_count %d\n", bb.Block, bb.WrFailCnt)
	}
}

func readBlock(d *dust.Device, o *IO, fields []string) {
	block, ok := parseBlockArg(o, fields, 2, "read <block>")
	if !ok {
		return
	}

	buf := make([]byte, d.BlockSize())

	n, err := d.ReadAt(buf, int64(block)*int64(d.BlockSize()))
	if err != nil {
		o.ErrPrintln("error:", err)

		return
	}

	o.Printf("read %d bytes from block %d\n", n, block)
}

func writeBlock(d *dust.Device, o *IO, fields []string) {
	block, ok := parseBlockArg(o, fields, 3, "write <block> [byte]")
	if !ok {
		return
	}

	var fill byte

	if len(fields) == 3 {
		v, err := strconv.ParseUint(fields[2], 10, 8)
		if err != nil {
			o.ErrPrintln("error: invalid fill byte", fields[2])

			return
		}

		fill = byte(v)
	}

	buf := make([]byte, d.BlockSize())
	for i := range buf {
		buf[i] = fill
	}

	n, err := d.WriteAt(buf, int64(block)*int64(d.BlockSize()))
	if err != nil {
		o.ErrPrintln("error:", err)

		return
	}

	o.Printf("wrote %d bytes to block %d\n", n, block)
}

// parseBlockArg parses fields[1] as a block index for commands of the form
// "<verb> <block> [...]" with at most maxFields fields.
func parseBlockArg(o *IO, fields []string, maxFields int, usage string) (uint64, bool) {
	if len(fields) < 2 || len(fields) > maxFields {
		o.ErrPrintln("error: usage:", usage)

		return 0, false
	}

	block, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		o.ErrPrintln("error: invalid block", fields[1])

		return 0, false
	}

	return block, true
}

func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}

	info, err := f.Stat()

	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
