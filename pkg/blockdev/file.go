package blockdev

import (
	"fmt"
	"io"
	"os"
)

// File is a [Device] backed by an *os.File. The path may name a regular file
// or a raw block device node; the size is captured once at open time.
type File struct {
	f    *os.File
	size int64
}

var _ Device = (*File)(nil)

// OpenFile opens path read-write as a block device backend.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	size, err := fileSize(f)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("blockdev: sizing %s: %w", path, err)
	}

	return &File{f: f, size: size}, nil
}

// ReadAt reads len(p) bytes starting at off.
func (d *File) ReadAt(p []byte, off int64) (int, error) {
	if err := d.check(len(p), off); err != nil {
		return 0, err
	}

	return d.f.ReadAt(p, off)
}

// WriteAt writes len(p) bytes starting at off.
func (d *File) WriteAt(p []byte, off int64) (int, error) {
	if err := d.check(len(p), off); err != nil {
		return 0, err
	}

	return d.f.WriteAt(p, off)
}

// Size returns the device length in bytes, as measured at open time.
func (d *File) Size() int64 { return d.size }

// Sync commits buffered writes to stable storage.
func (d *File) Sync() error { return d.f.Sync() }

// Close closes the underlying file.
func (d *File) Close() error { return d.f.Close() }

func (d *File) check(n int, off int64) error {
	if off < 0 || off+int64(n) > d.size {
		return fmt.Errorf("%w: offset %d length %d device %d", ErrOutOfBounds, off, n, d.size)
	}

	return nil
}

// seekSize measures a file by seeking to its end. Works for regular files;
// block device handling lives in the platform fileSize implementations.
func seekSize(f *os.File) (int64, error) {
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	return size, nil
}
