// Package blockdev provides byte-addressed block device backends.
//
// The main types are:
//   - [Device]: interface for random-access storage
//   - [Mem]: memory-backed device for tests and experiments
//   - [File]: device backed by a regular file or a raw block device node
//
// A [Device] is what [dust.New] wraps: the passthrough layer forwards I/O to
// it unless failure injection intervenes.
package blockdev

import (
	"errors"
	"io"
)

// ErrOutOfBounds is returned when a request extends past the end of the
// device. Implementations may wrap it to provide detail.
var ErrOutOfBounds = errors.New("blockdev: request out of bounds")

// Device is a fixed-size random-access storage target.
//
// ReadAt and WriteAt follow [io.ReaderAt] and [io.WriterAt] semantics:
// full-length transfers or a non-nil error. Implementations must be safe for
// concurrent use by multiple goroutines.
type Device interface {
	io.ReaderAt
	io.WriterAt

	// Size returns the device length in bytes. Fixed for the lifetime of the
	// device.
	Size() int64

	// Sync flushes buffered writes to stable storage.
	Sync() error

	// Close releases the device. Operations after Close fail.
	Close() error
}
