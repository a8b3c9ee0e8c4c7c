package dust_test

import (
	"testing"

	"github.com/soumendus/godust/pkg/blockdev"
	"github.com/soumendus/godust/pkg/dust"
)

// Standard test geometry: 1 MiB backing device, 4096-byte blocks. That gives
// 2048 sectors, 8 sectors per block, and 256 addressable blocks.
const (
	testDeviceBytes  = 1 << 20
	testBlockSize    = 4096
	testSectPerBlock = testBlockSize / dust.SectorSize
)

func newTestDevice(t *testing.T, opts dust.Options) (*dust.Device, *blockdev.Mem) {
	t.Helper()

	if opts.BlockSize == 0 {
		opts.BlockSize = testBlockSize
	}

	backing := blockdev.NewMem(testDeviceBytes)

	d, err := dust.New(backing, opts)
	if err != nil {
		t.Fatalf("new device: %v", err)
	}

	t.Cleanup(func() { _ = d.Close() })

	return d, backing
}

func newTestBacking(t *testing.T) *blockdev.Mem {
	t.Helper()

	return blockdev.NewMem(testDeviceBytes)
}

// sectorOf converts a block index to the first sector of that block under
// the standard test geometry.
func sectorOf(block uint64) uint64 {
	return block * testSectPerBlock
}
