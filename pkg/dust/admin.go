package dust

import "fmt"

// AddBadBlock inserts block into the list selected by mode, with the given
// write-fail count. The count is stored for either mode but only consulted
// for read-list entries on the write path.
//
// Returns an error wrapping [ErrInvalidArgument] when block lies beyond the
// device, or [ErrDuplicate] when block is already present. The entry is
// allocated before the guard is taken; no mutation happens on failure.
func (d *Device) AddBadBlock(mode Mode, block uint64, wrFailCnt uint8) error {
	if block > d.deviceBlocks {
		return fmt.Errorf("%w: block %d out of range (device has %d blocks)", ErrInvalidArgument, block, d.deviceBlocks)
	}

	bblk := &node{block: block, wrFailCnt: wrFailCnt}

	d.guard.lock()
	ok := d.registryFor(mode).insert(bblk)
	d.guard.unlock()

	if !ok {
		return fmt.Errorf("%w: block %d (%s)", ErrDuplicate, block, mode)
	}

	d.infof("bad block added at block %d (%s) with write fail count %d", block, mode, wrFailCnt)

	return nil
}

// RemoveBadBlock erases block from the list selected by mode. Returns an
// error wrapping [ErrNotFound] when absent; no mutation happens in that case.
func (d *Device) RemoveBadBlock(mode Mode, block uint64) error {
	d.guard.lock()
	ok := d.registryFor(mode).erase(block)
	d.guard.unlock()

	if !ok {
		return fmt.Errorf("%w: block %d (%s)", ErrNotFound, block, mode)
	}

	d.infof("bad block removed at block %d (%s)", block, mode)

	return nil
}

// QueryBlock reports whether block is present in the list selected by mode.
// Never mutates; in particular it never touches write-fail counts.
func (d *Device) QueryBlock(mode Mode, block uint64) bool {
	d.guard.lock()
	present := d.registryFor(mode).search(block) != nil
	d.guard.unlock()

	return present
}

// CountBadBlocks returns the number of entries in the list selected by mode.
func (d *Device) CountBadBlocks(mode Mode) uint64 {
	d.guard.lock()
	n := d.registryFor(mode).count
	d.guard.unlock()

	return n
}

// ClearBadBlocks empties the list selected by mode and returns the number of
// entries removed.
//
// The clear is two-phase: the tree and its counter are detached under the
// guard in O(1), then the detached tree is walked after release. The held
// span is constant regardless of list size, so a large clear never stalls
// the mapping hot path. A mismatch between the detached counter and the
// walked entry count is an unrecoverable invariant violation and panics.
func (d *Device) ClearBadBlocks(mode Mode) uint64 {
	d.guard.lock()
	detached := d.registryFor(mode).detach()
	d.guard.unlock()

	freed := detached.nodes()
	if freed != detached.count {
		panic(fmt.Sprintf("dust: %s bad block count %d does not match %d live entries", mode, detached.count, freed))
	}

	if freed == 0 {
		d.infof("no %s bad blocks found", mode)
	} else {
		d.infof("%s bad blocks cleared", mode)
	}

	return freed
}

// BadBlocks returns a sorted snapshot of the list selected by mode.
//
// The result slice is sized before the guard is taken so the guarded walk
// appends within capacity; if the list grows past the reserved capacity
// between sizing and walking, the snapshot is retried.
func (d *Device) BadBlocks(mode Mode) []BadBlock {
	const slack = 8

	for {
		out := make([]BadBlock, 0, d.CountBadBlocks(mode)+slack)

		d.guard.lock()

		r := d.registryFor(mode)
		if r.count <= uint64(cap(out)) {
			r.walk(func(n *node) {
				out = append(out, BadBlock{Block: n.block, WrFailCnt: n.wrFailCnt})
			})
			d.guard.unlock()

			return out
		}

		d.guard.unlock()
	}
}

// EnableFailures turns on failure injection for the direction selected by
// mode.
func (d *Device) EnableFailures(mode Mode) {
	d.flagFor(mode).Store(true)
	d.infof("enabling %s failures on bad sectors", mode)
}

// DisableFailures turns off failure injection for the direction selected by
// mode. The bad-block lists are left intact.
func (d *Device) DisableFailures(mode Mode) {
	d.flagFor(mode).Store(false)
	d.infof("disabling %s failures on bad sectors", mode)
}

// FailuresEnabled reports whether injection is on for the direction selected
// by mode.
func (d *Device) FailuresEnabled(mode Mode) bool {
	return d.flagFor(mode).Load()
}

// SetQuiet sets quiet mode. Quiet suppresses diagnostic narration only;
// error values and verdicts are unaffected.
func (d *Device) SetQuiet(quiet bool) {
	d.quiet.Store(quiet)
}

// Quiet reports whether quiet mode is set.
func (d *Device) Quiet() bool {
	return d.quiet.Load()
}
