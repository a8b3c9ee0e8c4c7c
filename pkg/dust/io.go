package dust

import "fmt"

// ReadAt reads len(p) bytes at byte offset off within the device's data
// area, forwarding to the backing device unless a bad block intervenes.
//
// Requests are split at block boundaries and each block is mapped
// independently, so a request spanning a bad block makes partial progress up
// to the failing block and then returns a [*MediumError] with the bytes read
// so far, the way a real disk surfaces a medium error mid-transfer.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}

	if off < 0 {
		return 0, fmt.Errorf("%w: negative read offset %d", ErrInvalidArgument, off)
	}

	n := 0
	for n < len(p) {
		absByte := uint64(off+int64(n)) + d.startSector<<SectorShift
		sector := absByte >> SectorShift
		chunk := d.chunkLen(len(p)-n, absByte)

		if d.MapRead(sector) == Fail {
			d.readFails.Add(1)

			return n, &MediumError{Op: "read", Sector: sector}
		}

		m, err := d.dev.ReadAt(p[n:n+chunk], int64(absByte))
		n += m

		if err != nil {
			return n, err
		}

		d.reads.Add(1)
	}

	return n, nil
}

// WriteAt writes len(p) bytes at byte offset off within the device's data
// area. Like [Device.ReadAt], requests are split at block boundaries; a
// failing block stops the transfer with partial progress and a
// [*MediumError]. Blocks before the failing one are already written, again
// matching real-disk behavior.
func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	if d.closed.Load() {
		return 0, ErrClosed
	}

	if off < 0 {
		return 0, fmt.Errorf("%w: negative write offset %d", ErrInvalidArgument, off)
	}

	n := 0
	for n < len(p) {
		absByte := uint64(off+int64(n)) + d.startSector<<SectorShift
		sector := absByte >> SectorShift
		chunk := d.chunkLen(len(p)-n, absByte)

		if d.MapWrite(sector) == Fail {
			d.writeFails.Add(1)

			return n, &MediumError{Op: "write", Sector: sector}
		}

		m, err := d.dev.WriteAt(p[n:n+chunk], int64(absByte))
		n += m

		if err != nil {
			return n, err
		}

		d.writes.Add(1)
	}

	return n, nil
}

// chunkLen bounds a transfer at the next block boundary. Blocks are aligned
// to the backing device start, not to the data-area start, so the boundary
// is computed on the absolute byte position.
func (d *Device) chunkLen(remaining int, absByte uint64) int {
	toBoundary := uint64(d.blkSize) - absByte%uint64(d.blkSize)

	return int(min(uint64(remaining), toBoundary))
}
