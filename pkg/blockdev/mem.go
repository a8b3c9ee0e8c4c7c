package blockdev

import (
	"fmt"
	"sync"
)

// Mem is a [Device] backed by a byte slice. Intended for tests and for
// exercising failure injection without touching real storage.
type Mem struct {
	mu     sync.RWMutex
	data   []byte
	closed bool
}

var _ Device = (*Mem)(nil)

// NewMem returns a zero-filled memory device of the given size in bytes.
// Panics if size is negative.
func NewMem(size int64) *Mem {
	if size < 0 {
		panic("blockdev: negative size")
	}

	return &Mem{data: make([]byte, size)}
}

// ReadAt copies device contents into p starting at off.
func (m *Mem) ReadAt(p []byte, off int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return 0, errClosed("read")
	}

	if err := m.check(len(p), off); err != nil {
		return 0, err
	}

	return copy(p, m.data[off:]), nil
}

// WriteAt copies p into the device starting at off.
func (m *Mem) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, errClosed("write")
	}

	if err := m.check(len(p), off); err != nil {
		return 0, err
	}

	return copy(m.data[off:], p), nil
}

// Size returns the device length in bytes.
func (m *Mem) Size() int64 {
	return int64(len(m.data))
}

// Sync is a no-op for memory devices.
func (m *Mem) Sync() error { return nil }

// Close marks the device closed. Idempotent.
func (m *Mem) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

func (m *Mem) check(n int, off int64) error {
	if off < 0 || off+int64(n) > int64(len(m.data)) {
		return fmt.Errorf("%w: offset %d length %d device %d", ErrOutOfBounds, off, n, len(m.data))
	}

	return nil
}

func errClosed(op string) error {
	return fmt.Errorf("blockdev: %s on closed device", op)
}
