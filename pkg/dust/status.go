package dust

import (
	"fmt"
	"strings"
)

// Status returns the human-readable device state, one line per direction:
// the device name, whether failures are injected for that direction or the
// device is bypassing, and the narration verbosity.
func (d *Device) Status() string {
	readState := "bypass"
	if d.failReadOnBB.Load() {
		readState = "fail_read_on_bad_block"
	}

	writeState := "bypass"
	if d.failWriteOnBB.Load() {
		writeState = "fail_write_on_bad_block"
	}

	verbosity := "verbose"
	if d.quiet.Load() {
		verbosity = "quiet"
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s %s\n", d.name, readState, verbosity)
	fmt.Fprintf(&sb, "%s %s %s", d.name, writeState, verbosity)

	return sb.String()
}

// Table returns the construction parameters in table form: name, start
// sector, block size.
func (d *Device) Table() string {
	return fmt.Sprintf("%s %d %d", d.name, d.startSector, d.blkSize)
}
