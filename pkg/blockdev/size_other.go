//go:build !linux

package blockdev

import "os"

// fileSize returns the file length. Non-Linux platforms have no block device
// ioctl wired up; regular files cover the supported use cases.
func fileSize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	if info.Mode().IsRegular() {
		return info.Size(), nil
	}

	return seekSize(f)
}
