package dust_test

import (
	"testing"

	"github.com/soumendus/godust/pkg/dust"
)

func Test_MapRead_Passes_When_Read_Failures_Disabled(t *testing.T) {
	t.Parallel()

	d, _ := newTestDevice(t, dust.Options{})

	if err := d.AddBadBlock(dust.ModeRead, 100, 0); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Flag off: list contents are irrelevant.
	if v := d.MapRead(sectorOf(100)); v != dust.Pass {
		t.Fatalf("MapRead = %v with read failures disabled, want pass", v)
	}
}

func Test_MapRead_Fails_On_Bad_Block_Until_Removed(t *testing.T) {
	t.Parallel()

	d, _ := newTestDevice(t, dust.Options{})

	d.EnableFailures(dust.ModeRead)

	if err := d.AddBadBlock(dust.ModeRead, 100, 0); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Read failures are permanently repeatable.
	for i := 0; i < 3; i++ {
		if v := d.MapRead(sectorOf(100)); v != dust.Fail {
			t.Fatalf("MapRead #%d = %v, want fail", i, v)
		}
	}

	if v := d.MapRead(sectorOf(101)); v != dust.Pass {
		t.Fatalf("MapRead on clean block = %v, want pass", v)
	}

	if err := d.RemoveBadBlock(dust.ModeRead, 100); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if v := d.MapRead(sectorOf(100)); v != dust.Pass {
		t.Fatalf("MapRead after removal = %v, want pass", v)
	}
}

func Test_MapRead_Maps_All_Sectors_Of_A_Block(t *testing.T) {
	t.Parallel()

	d, _ := newTestDevice(t, dust.Options{})

	d.EnableFailures(dust.ModeRead)

	if err := d.AddBadBlock(dust.ModeRead, 5, 0); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Every sector within the block resolves to the same bad block.
	for s := sectorOf(5); s < sectorOf(6); s++ {
		if v := d.MapRead(s); v != dust.Fail {
			t.Fatalf("MapRead(sector %d) = %v, want fail", s, v)
		}
	}

	if v := d.MapRead(sectorOf(6)); v != dust.Pass {
		t.Fatalf("MapRead on next block = %v, want pass", v)
	}
}

func Test_MapWrite_Passes_When_All_Failures_Disabled(t *testing.T) {
	t.Parallel()

	d, _ := newTestDevice(t, dust.Options{})

	if err := d.AddBadBlock(dust.ModeWrite, 50, 0); err != nil {
		t.Fatalf("add: %v", err)
	}

	if v := d.MapWrite(sectorOf(50)); v != dust.Pass {
		t.Fatalf("MapWrite = %v with failures disabled, want pass", v)
	}
}

func Test_MapWrite_Fails_Permanently_On_Write_Bad_Block(t *testing.T) {
	t.Parallel()

	d, _ := newTestDevice(t, dust.Options{})

	d.EnableFailures(dust.ModeWrite)

	if err := d.AddBadBlock(dust.ModeWrite, 50, 0); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Write-list entries never self-heal.
	for i := 0; i < 5; i++ {
		if v := d.MapWrite(sectorOf(50)); v != dust.Fail {
			t.Fatalf("MapWrite #%d = %v, want fail", i, v)
		}
	}

	if n := d.CountBadBlocks(dust.ModeWrite); n != 1 {
		t.Fatalf("write list count = %d after repeated failures, want 1", n)
	}
}

func Test_Write_Fail_Count_Decrements_Then_Self_Heals(t *testing.T) {
	t.Parallel()

	d, _ := newTestDevice(t, dust.Options{})

	d.EnableFailures(dust.ModeRead)

	if err := d.AddBadBlock(dust.ModeRead, 10, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Two writes consume the budget, the third heals.
	if v := d.MapWrite(sectorOf(10)); v != dust.Fail {
		t.Fatalf("write #1 = %v, want fail", v)
	}

	if v := d.MapWrite(sectorOf(10)); v != dust.Fail {
		t.Fatalf("write #2 = %v, want fail", v)
	}

	if v := d.MapWrite(sectorOf(10)); v != dust.Pass {
		t.Fatalf("write #3 = %v, want pass (self-heal)", v)
	}

	if n := d.CountBadBlocks(dust.ModeRead); n != 0 {
		t.Fatalf("read list count = %d after self-heal, want 0", n)
	}

	if v := d.MapWrite(sectorOf(10)); v != dust.Pass {
		t.Fatalf("write #4 = %v, want pass (no entry)", v)
	}

	if v := d.MapRead(sectorOf(10)); v != dust.Pass {
		t.Fatalf("read after self-heal = %v, want pass", v)
	}
}

func Test_MapWrite_Consults_Both_Lists(t *testing.T) {
	t.Parallel()

	d, _ := newTestDevice(t, dust.Options{})

	d.EnableFailures(dust.ModeRead)
	d.EnableFailures(dust.ModeWrite)

	// Same block in both lists: read entry with zero budget, permanent write
	// entry. The first write heals the read entry but still fails via the
	// write list, and keeps failing afterwards.
	if err := d.AddBadBlock(dust.ModeRead, 30, 0); err != nil {
		t.Fatalf("add read: %v", err)
	}

	if err := d.AddBadBlock(dust.ModeWrite, 30, 0); err != nil {
		t.Fatalf("add write: %v", err)
	}

	if v := d.MapWrite(sectorOf(30)); v != dust.Fail {
		t.Fatalf("write #1 = %v, want fail via write list", v)
	}

	if n := d.CountBadBlocks(dust.ModeRead); n != 0 {
		t.Fatalf("read entry not healed: count = %d", n)
	}

	if v := d.MapRead(sectorOf(30)); v != dust.Pass {
		t.Fatalf("read after heal = %v, want pass", v)
	}

	if v := d.MapWrite(sectorOf(30)); v != dust.Fail {
		t.Fatalf("write #2 = %v, want fail via write list", v)
	}
}

func Test_MapWrite_Ignores_Read_List_When_Read_Failures_Disabled(t *testing.T) {
	t.Parallel()

	d, _ := newTestDevice(t, dust.Options{})

	d.EnableFailures(dust.ModeWrite)

	if err := d.AddBadBlock(dust.ModeRead, 20, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	if v := d.MapWrite(sectorOf(20)); v != dust.Pass {
		t.Fatalf("MapWrite = %v, want pass", v)
	}

	// The budget must be untouched: only the read-enabled write path may
	// decrement it.
	bbs := d.BadBlocks(dust.ModeRead)
	if len(bbs) != 1 || bbs[0].WrFailCnt != 2 {
		t.Fatalf("read list = %+v, want one entry with count 2", bbs)
	}
}

func Test_Disable_Leaves_Lists_Intact(t *testing.T) {
	t.Parallel()

	d, _ := newTestDevice(t, dust.Options{})

	d.EnableFailures(dust.ModeRead)

	if err := d.AddBadBlock(dust.ModeRead, 77, 0); err != nil {
		t.Fatalf("add: %v", err)
	}

	d.DisableFailures(dust.ModeRead)

	if v := d.MapRead(sectorOf(77)); v != dust.Pass {
		t.Fatalf("MapRead while disabled = %v, want pass", v)
	}

	d.EnableFailures(dust.ModeRead)

	if v := d.MapRead(sectorOf(77)); v != dust.Fail {
		t.Fatalf("MapRead after re-enable = %v, want fail", v)
	}
}
