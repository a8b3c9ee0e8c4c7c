package dust

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrInvalidArgument is returned for malformed messages, unknown verbs or
	// modes, wrong argument arity, and out-of-range numeric parameters.
	//
	// Errors may wrap ErrInvalidArgument to provide detail; match with
	// [errors.Is].
	ErrInvalidArgument = errors.New("dust: invalid argument")

	// ErrDuplicate is returned when adding a block that is already present in
	// the selected bad-block list.
	ErrDuplicate = errors.New("dust: block already in bad block list")

	// ErrNotFound is returned when removing a block that is not present in
	// the selected bad-block list.
	ErrNotFound = errors.New("dust: block not in bad block list")

	// ErrClosed is returned when operating on a closed device.
	ErrClosed = errors.New("dust: device closed")
)

// MediumError is the simulated hardware failure returned by [Device.ReadAt]
// and [Device.WriteAt] when a request hits an active bad block. It is the
// expected outcome of failure injection, not an internal error.
//
// It unwraps to [syscall.EIO], so callers that classify I/O errors by errno
// keep working, while [IsMediumErr] can still distinguish injected failures
// from real backing-device errors.
type MediumError struct {
	// Op is "read" or "write".
	Op string

	// Sector is the first affected 512-byte sector, in backing-device
	// coordinates.
	Sector uint64
}

// Error returns a formatted error message.
func (e *MediumError) Error() string {
	return fmt.Sprintf("dust: simulated medium error on %s at sector %d", e.Op, e.Sector)
}

// Unwrap returns the errno-equivalent cause.
func (e *MediumError) Unwrap() error { return syscall.EIO }

// IsMediumErr reports whether err (or any wrapped error) is an injected
// medium error. Returns false if err is nil.
func IsMediumErr(err error) bool {
	var me *MediumError

	return errors.As(err, &me)
}
