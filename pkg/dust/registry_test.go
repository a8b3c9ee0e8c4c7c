package dust

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_Search_Returns_Nil_When_Block_Absent(t *testing.T) {
	t.Parallel()

	var r registry

	if r.search(42) != nil {
		t.Fatal("search on empty registry returned an entry")
	}

	r.insert(&node{block: 41})
	r.insert(&node{block: 43})

	if r.search(42) != nil {
		t.Fatal("search returned an entry for an absent block")
	}
}

func Test_Insert_Rejects_Duplicate_Block(t *testing.T) {
	t.Parallel()

	var r registry

	if !r.insert(&node{block: 7}) {
		t.Fatal("first insert failed")
	}

	if r.insert(&node{block: 7}) {
		t.Fatal("duplicate insert succeeded")
	}

	if r.count != 1 {
		t.Fatalf("count = %d after duplicate insert, want 1", r.count)
	}
}

func Test_Insert_Then_Erase_Restores_Prior_State(t *testing.T) {
	t.Parallel()

	var r registry

	for _, b := range []uint64{10, 5, 20} {
		r.insert(&node{block: b})
	}

	before := enumerate(&r)

	if !r.insert(&node{block: 15}) {
		t.Fatal("insert failed")
	}

	if !r.erase(15) {
		t.Fatal("erase failed")
	}

	after := enumerate(&r)

	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("registry changed after insert+erase round trip (-before +after):\n%s", diff)
	}

	if r.count != 3 {
		t.Fatalf("count = %d, want 3", r.count)
	}
}

func Test_Erase_Returns_False_When_Block_Absent(t *testing.T) {
	t.Parallel()

	var r registry

	r.insert(&node{block: 1})

	if r.erase(2) {
		t.Fatal("erase of absent block succeeded")
	}

	if r.count != 1 {
		t.Fatalf("count = %d after failed erase, want 1", r.count)
	}
}

func Test_Detach_Leaves_Registry_Empty(t *testing.T) {
	t.Parallel()

	var r registry

	for b := uint64(0); b < 100; b++ {
		r.insert(&node{block: b})
	}

	detached := r.detach()

	if r.root != nil || r.count != 0 {
		t.Fatalf("live registry not empty after detach: count=%d", r.count)
	}

	if detached.count != 100 || detached.nodes() != 100 {
		t.Fatalf("detached registry has count=%d nodes=%d, want 100", detached.count, detached.nodes())
	}
}

// Random insert/erase sequences must keep the registry in sync with a map
// oracle and keep the tree a valid left-leaning red-black tree.
func Test_Registry_Matches_Oracle_Under_Random_Ops(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	oracle := make(map[uint64]uint8)

	var r registry

	const (
		ops        = 20000
		blockSpace = 512 // small key space forces collisions and deletes of present keys
	)

	for i := 0; i < ops; i++ {
		block := rng.Uint64N(blockSpace)

		switch rng.IntN(3) {
		case 0: // insert
			cnt := uint8(rng.UintN(256))
			_, present := oracle[block]

			got := r.insert(&node{block: block, wrFailCnt: cnt})
			if got == present {
				t.Fatalf("op %d: insert(%d) = %v with present=%v", i, block, got, present)
			}

			if !present {
				oracle[block] = cnt
			}

		case 1: // erase
			_, present := oracle[block]

			if got := r.erase(block); got != present {
				t.Fatalf("op %d: erase(%d) = %v with present=%v", i, block, got, present)
			}

			delete(oracle, block)

		case 2: // search
			want, present := oracle[block]

			n := r.search(block)
			if (n != nil) != present {
				t.Fatalf("op %d: search(%d) presence mismatch", i, block)
			}

			if n != nil && n.wrFailCnt != want {
				t.Fatalf("op %d: search(%d) wrFailCnt = %d, want %d", i, block, n.wrFailCnt, want)
			}
		}
	}

	if r.count != uint64(len(oracle)) {
		t.Fatalf("count = %d, oracle has %d entries", r.count, len(oracle))
	}

	wantBlocks := make([]uint64, 0, len(oracle))
	for b := range oracle {
		wantBlocks = append(wantBlocks, b)
	}

	sort.Slice(wantBlocks, func(i, j int) bool { return wantBlocks[i] < wantBlocks[j] })

	gotBlocks := make([]uint64, 0, r.count)

	r.walk(func(n *node) { gotBlocks = append(gotBlocks, n.block) })

	if diff := cmp.Diff(wantBlocks, gotBlocks); diff != "" {
		t.Fatalf("enumeration mismatch (-oracle +registry):\n%s", diff)
	}

	checkLLRB(t, &r)
}

func Test_Walk_Visits_In_Ascending_Order(t *testing.T) {
	t.Parallel()

	var r registry

	for _, b := range []uint64{9, 3, 7, 1, 5} {
		r.insert(&node{block: b})
	}

	got := enumerate(&r)
	want := []uint64{1, 3, 5, 7, 9}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("walk order mismatch (-want +got):\n%s", diff)
	}
}

func enumerate(r *registry) []uint64 {
	out := []uint64{}

	r.walk(func(n *node) { out = append(out, n.block) })

	return out
}

// checkLLRB verifies the structural invariants: BST ordering (implied by
// Test_Walk assertions), no right-leaning red links, no consecutive red
// links, and a uniform black height.
func checkLLRB(t *testing.T, r *registry) {
	t.Helper()

	if isRed(r.root) {
		t.Fatal("root is red")
	}

	var blackHeight func(n *node) int

	blackHeight = func(n *node) int {
		if n == nil {
			return 1
		}

		if isRed(n.right) {
			t.Fatalf("right-leaning red link at block %d", n.block)
		}

		if isRed(n) && isRed(n.left) {
			t.Fatalf("consecutive red links at block %d", n.block)
		}

		lh := blackHeight(n.left)
		rh := blackHeight(n.right)

		if lh != rh {
			t.Fatalf("black height mismatch at block %d: %d vs %d", n.block, lh, rh)
		}

		if !isRed(n) {
			lh++
		}

		return lh
	}

	blackHeight(r.root)
}
