package dust

import (
	"fmt"
	"io"
	"math/bits"
	"strings"
	"sync/atomic"

	"github.com/soumendus/godust/pkg/blockdev"
)

// Sector geometry. All backing-device addressing is in 512-byte sectors;
// bad blocks are tracked at block-size granularity, derived from sectors via
// a fixed shift computed at construction.
const (
	SectorShift = 9
	SectorSize  = 1 << SectorShift

	// maxBlockSectors caps the block size at 1 GiB, same as the dm-dust
	// kernel target.
	maxBlockSectors = 2097152

	minBlockSize = 512
)

// Mode selects which bad-block list (and fail flag) an administrative
// operation targets.
type Mode uint8

const (
	// ModeRead targets the read bad-block list and the read fail flag.
	ModeRead Mode = iota

	// ModeWrite targets the write bad-block list and the write fail flag.
	ModeWrite
)

// String returns "read" or "write".
func (m Mode) String() string {
	if m == ModeWrite {
		return "write"
	}

	return "read"
}

// ParseMode parses "read" or "write", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch {
	case strings.EqualFold(s, "read"):
		return ModeRead, nil
	case strings.EqualFold(s, "write"):
		return ModeWrite, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %q (want read or write)", ErrInvalidArgument, s)
	}
}

// Options configures a [Device]. The zero value is not usable: BlockSize is
// required.
type Options struct {
	// Name identifies the device in status output and diagnostics.
	// Defaults to "dust".
	Name string

	// Start is the sector offset of the data area within the backing device.
	Start uint64

	// BlockSize is the bad-block granularity in bytes. Must be a power of
	// two, at least 512, and no larger than min(device length, 1 GiB).
	BlockSize uint32

	// Quiet suppresses non-error diagnostic narration. Error values and I/O
	// verdicts are never suppressed.
	Quiet bool

	// Diag receives diagnostic narration. Defaults to [io.Discard]. The
	// writer must be safe for concurrent use (os.Stderr is).
	Diag io.Writer
}

// Stats contains counts of forwarded and injected operations.
type Stats struct {
	// Reads and Writes count requests forwarded to the backing device.
	Reads  int64
	Writes int64

	// ReadFails and WriteFails count injected medium errors.
	ReadFails  int64
	WriteFails int64

	// SelfHeals counts read bad blocks repaired by a write after their
	// write-fail count was exhausted.
	SelfHeals int64
}

// Device is the passthrough failure-injection layer over a
// [blockdev.Device].
//
// The two bad-block lists and their counters are shared by the per-I/O
// mapping hot path and the administrative surface; a single short-hold spin
// guard serializes every access to them. The fail flags and quiet flag live
// outside the guard as atomics so a disabled direction costs one atomic load
// per request.
type Device struct {
	name string
	dev  blockdev.Device
	diag io.Writer

	blkSize           uint32
	sectPerBlock      uint32
	sectPerBlockShift uint
	startSector       uint64

	// deviceBlocks is the device length in blocks; administrative block
	// indices must satisfy block <= deviceBlocks.
	deviceBlocks uint64

	failReadOnBB  atomic.Bool
	failWriteOnBB atomic.Bool
	quiet         atomic.Bool
	closed        atomic.Bool

	guard    spinGuard
	badRead  registry
	badWrite registry

	reads      atomic.Int64
	writes     atomic.Int64
	readFails  atomic.Int64
	writeFails atomic.Int64
	selfHeals  atomic.Int64
}

// New builds a passthrough device over backing. Both bad-block lists start
// empty and both fail flags start false: until an administrator enables a
// direction, every request passes through untouched.
//
// Panics if backing is nil; returns an error wrapping [ErrInvalidArgument]
// for bad geometry.
func New(backing blockdev.Device, opts Options) (*Device, error) {
	if backing == nil {
		panic("dust: backing device is nil")
	}

	deviceSectors := uint64(backing.Size()) >> SectorShift

	if opts.BlockSize == 0 {
		return nil, fmt.Errorf("%w: block size is required", ErrInvalidArgument)
	}

	if opts.BlockSize < minBlockSize {
		return nil, fmt.Errorf("%w: block size must be at least %d", ErrInvalidArgument, minBlockSize)
	}

	if opts.BlockSize&(opts.BlockSize-1) != 0 {
		return nil, fmt.Errorf("%w: block size must be a power of 2", ErrInvalidArgument)
	}

	maxSectors := min(deviceSectors, uint64(maxBlockSectors))

	sectPerBlock := opts.BlockSize >> SectorShift
	if uint64(sectPerBlock) > maxSectors {
		return nil, fmt.Errorf("%w: block size is too large", ErrInvalidArgument)
	}

	if opts.Start > deviceSectors {
		return nil, fmt.Errorf("%w: start sector %d beyond device end %d", ErrInvalidArgument, opts.Start, deviceSectors)
	}

	name := opts.Name
	if name == "" {
		name = "dust"
	}

	diag := opts.Diag
	if diag == nil {
		diag = io.Discard
	}

	d := &Device{
		name:              name,
		dev:               backing,
		diag:              diag,
		blkSize:           opts.BlockSize,
		sectPerBlock:      sectPerBlock,
		sectPerBlockShift: uint(bits.TrailingZeros32(sectPerBlock)),
		startSector:       opts.Start,
		deviceBlocks:      deviceSectors >> uint(bits.TrailingZeros32(sectPerBlock)),
	}
	d.quiet.Store(opts.Quiet)

	return d, nil
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// BlockSize returns the bad-block granularity in bytes.
func (d *Device) BlockSize() uint32 { return d.blkSize }

// Size returns the addressable length in bytes, from the start offset to the
// end of the backing device.
func (d *Device) Size() int64 {
	return d.dev.Size() - int64(d.startSector<<SectorShift)
}

// Sync flushes the backing device.
func (d *Device) Sync() error {
	if d.closed.Load() {
		return ErrClosed
	}

	return d.dev.Sync()
}

// Close clears both bad-block lists and closes the backing device.
// Subsequent operations return [ErrClosed].
func (d *Device) Close() error {
	if d.closed.Swap(true) {
		return ErrClosed
	}

	d.ClearBadBlocks(ModeRead)
	d.ClearBadBlocks(ModeWrite)

	return d.dev.Close()
}

// Stats returns a snapshot of the forwarding and injection counters.
func (d *Device) Stats() Stats {
	return Stats{
		Reads:      d.reads.Load(),
		Writes:     d.writes.Load(),
		ReadFails:  d.readFails.Load(),
		WriteFails: d.writeFails.Load(),
		SelfHeals:  d.selfHeals.Load(),
	}
}

// registryFor returns the list selected by mode. Callers hold the guard.
func (d *Device) registryFor(mode Mode) *registry {
	if mode == ModeWrite {
		return &d.badWrite
	}

	return &d.badRead
}

// flagFor returns the fail flag selected by mode.
func (d *Device) flagFor(mode Mode) *atomic.Bool {
	if mode == ModeWrite {
		return &d.failWriteOnBB
	}

	return &d.failReadOnBB
}

// infof writes diagnostic narration unless quiet mode is set. Never called
// while the guard is held: the diag writer may block.
func (d *Device) infof(format string, args ...any) {
	if d.quiet.Load() {
		return
	}

	fmt.Fprintf(d.diag, "dust: "+format+"\n", args...)
}
