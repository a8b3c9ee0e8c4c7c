//go:build linux

package blockdev

import (
	"os"

	"golang.org/x/sys/unix"
)

// fileSize returns the length of a regular file or a block device node.
// Regular files go through Stat; device nodes are sized with the
// BLKGETSIZE64 ioctl, which reports the device length in bytes.
func fileSize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	if info.Mode().IsRegular() {
		return info.Size(), nil
	}

	size, err := unix.IoctlGetInt(int(f.Fd()), unix.BLKGETSIZE64)
	if err != nil {
		// Not a block device (e.g. a pipe in tests); fall back to seeking.
		return seekSize(f)
	}

	return int64(size), nil
}
