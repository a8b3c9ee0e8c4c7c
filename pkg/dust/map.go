package dust

// Verdict is the per-request decision of the mapping engine.
type Verdict uint8

const (
	// Pass forwards the request to the backing device unchanged.
	Pass Verdict = iota

	// Fail reports a medium-error-equivalent failure without forwarding.
	Fail
)

// String returns "pass" or "fail".
func (v Verdict) String() string {
	if v == Fail {
		return "fail"
	}

	return "pass"
}

// MapRead decides whether a read of the given backing-device sector passes
// through or fails.
//
// With read failures disabled this is a single atomic load: no guard, no
// lookup. Otherwise the read list is searched under the guard; a hit fails
// the request and leaves the entry untouched, so read failures repeat until
// the block is removed by an administrator (or self-healed by a write).
func (d *Device) MapRead(sector uint64) Verdict {
	if !d.failReadOnBB.Load() {
		return Pass
	}

	block := sector >> d.sectPerBlockShift

	d.guard.lock()
	hit := d.badRead.search(block) != nil
	d.guard.unlock()

	if hit {
		return Fail
	}

	return Pass
}

// MapWrite decides whether a write of the given backing-device sector passes
// through or fails.
//
// With both directions disabled this is two atomic loads and no lookup.
// Otherwise both lists are consulted under one guard hold:
//
//  1. If write failures are enabled and the block is in the write list, the
//     verdict is Fail. The entry is never mutated; write-list failures are
//     permanent until removed.
//  2. Independently of step 1, if read failures are enabled and the block is
//     in the read list: a nonzero write-fail count is decremented and the
//     verdict is Fail; a zero count erases the entry (self-heal) and the
//     verdict stays whatever step 1 produced.
//
// Both steps always run so a block present in both lists keeps failing
// writes via the write list even after its read entry heals.
func (d *Device) MapWrite(sector uint64) Verdict {
	failRead := d.failReadOnBB.Load()
	failWrite := d.failWriteOnBB.Load()

	if !failRead && !failWrite {
		return Pass
	}

	block := sector >> d.sectPerBlockShift

	verdict := Pass
	healed := false

	d.guard.lock()

	if failWrite && d.badWrite.search(block) != nil {
		verdict = Fail
	}

	if failRead {
		if bblk := d.badRead.search(block); bblk != nil {
			if bblk.wrFailCnt > 0 {
				bblk.wrFailCnt--
				verdict = Fail
			} else {
				d.badRead.erase(block)
				healed = true
			}
		}
	}

	d.guard.unlock()

	// Narration happens after release: the diag writer may block.
	if healed {
		d.selfHeals.Add(1)
		d.infof("block %d removed from read bad block list by write", block)
	}

	return verdict
}
