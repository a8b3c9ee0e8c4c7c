package dust

import (
	"fmt"
	"strconv"
	"strings"
)

// Message executes one text administrative command and returns its result
// line. This is the transport-agnostic equivalent of a dmsetup message: the
// caller tokenizes the command and passes the words.
//
// Verbs (case-insensitive, as are modes):
//
//	addbadblock <read|write> <block> [<write fail count>]
//	removebadblock <read|write> <block>
//	queryblock <read|write> <block>
//	countbadblocks <read|write>
//	clearbadblocks <read|write>
//	enable <read|write>
//	disable <read|write>
//	quiet
//
// Errors wrap the uniform sentinel kinds: [ErrInvalidArgument] for unknown
// verbs/modes, wrong arity, and unparsable or out-of-range numbers;
// [ErrDuplicate] and [ErrNotFound] from the underlying list operations.
func (d *Device) Message(args ...string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: empty message", ErrInvalidArgument)
	}

	verb := strings.ToLower(args[0])

	switch verb {
	case "quiet":
		if err := wantArgs(verb, args, 0); err != nil {
			return "", err
		}

		quiet := !d.Quiet()
		d.SetQuiet(quiet)

		if quiet {
			return "quiet mode enabled", nil
		}

		return "quiet mode disabled", nil

	case "enable", "disable", "countbadblocks", "clearbadblocks":
		if err := wantArgs(verb, args, 1); err != nil {
			return "", err
		}

		mode, err := ParseMode(args[1])
		if err != nil {
			return "", err
		}

		return d.modeMessage(verb, mode)

	case "addbadblock", "removebadblock", "queryblock":
		return d.blockMessage(verb, args)

	default:
		return "", fmt.Errorf("%w: unrecognized message %q", ErrInvalidArgument, args[0])
	}
}

// modeMessage handles the verbs that take only a mode argument.
func (d *Device) modeMessage(verb string, mode Mode) (string, error) {
	switch verb {
	case "enable":
		d.EnableFailures(mode)

		return fmt.Sprintf("enabling %s failures on bad sectors", mode), nil

	case "disable":
		d.DisableFailures(mode)

		return fmt.Sprintf("disabling %s failures on bad sectors", mode), nil

	case "countbadblocks":
		n := d.CountBadBlocks(mode)

		return fmt.Sprintf("countbadblocks: %d %s badblock(s) found", n, mode), nil

	default: // clearbadblocks
		if d.ClearBadBlocks(mode) == 0 {
			return fmt.Sprintf("no %s badblocks found", mode), nil
		}

		return fmt.Sprintf("%s badblocks cleared", mode), nil
	}
}

// blockMessage handles the verbs that take a mode and a block argument.
func (d *Device) blockMessage(verb string, args []string) (string, error) {
	extra := 2
	if verb == "addbadblock" && len(args) == 4 {
		extra = 3
	}

	if err := wantArgs(verb, args, extra); err != nil {
		return "", err
	}

	mode, err := ParseMode(args[1])
	if err != nil {
		return "", err
	}

	block, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: invalid block value %q", ErrInvalidArgument, args[2])
	}

	if block > d.deviceBlocks {
		return "", fmt.Errorf("%w: selected block value out of range", ErrInvalidArgument)
	}

	switch verb {
	case "addbadblock":
		var wrFailCnt uint8

		if extra == 3 {
			cnt, parseErr := strconv.ParseUint(args[3], 10, 64)
			if parseErr != nil || cnt > 255 {
				return "", fmt.Errorf("%w: selected write fail count out of range", ErrInvalidArgument)
			}

			wrFailCnt = uint8(cnt)
		}

		if err := d.AddBadBlock(mode, block, wrFailCnt); err != nil {
			return "", err
		}

		return fmt.Sprintf("bad block added at block %d with write fail count %d", block, wrFailCnt), nil

	case "removebadblock":
		if err := d.RemoveBadBlock(mode, block); err != nil {
			return "", err
		}

		return fmt.Sprintf("bad block removed at block %d", block), nil

	default: // queryblock
		if d.QueryBlock(mode, block) {
			return fmt.Sprintf("block %d found in badblocklist", block), nil
		}

		return fmt.Sprintf("block %d not found in badblocklist", block), nil
	}
}

// wantArgs checks that a verb got exactly extra arguments after itself.
func wantArgs(verb string, args []string, extra int) error {
	if len(args)-1 == extra {
		return nil
	}

	plural := "s"
	if extra == 1 {
		plural = ""
	}

	return fmt.Errorf("%w: %s requires %d additional argument%s", ErrInvalidArgument, verb, extra, plural)
}
