package dust

// BadBlock is one bad-block record: a device-block index plus the number of
// forced write failures remaining before the block self-heals on write. The
// write-fail count is only meaningful for entries in the read list; write-list
// entries fail writes unconditionally until removed.
type BadBlock struct {
	Block     uint64
	WrFailCnt uint8
}

// node is a left-leaning red-black tree node. Entries are owned by exactly
// one registry; the read and write lists never share nodes even for the same
// block index.
type node struct {
	block     uint64
	wrFailCnt uint8
	red       bool
	left      *node
	right     *node
}

// registry is an ordered set of bad blocks, unique by block index, with
// O(log n) search, insert, and erase. All access goes through the device
// guard; the registry itself does no locking.
//
// count mirrors the tree cardinality at all times outside a mutation's
// critical section. The bulk-clear path cross-checks it against an actual
// node count after detaching (see Device.ClearBadBlocks).
type registry struct {
	root  *node
	count uint64
}

// search returns the entry for block, or nil. Never mutates and never
// allocates, so it is safe on the mapping hot path while the guard is held.
func (r *registry) search(block uint64) *node {
	n := r.root
	for n != nil {
		switch {
		case block < n.block:
			n = n.left
		case block > n.block:
			n = n.right
		default:
			return n
		}
	}

	return nil
}

// insert links a pre-allocated node into the tree. Returns false without
// mutation if the block index is already present. The node must be allocated
// by the caller before the guard is taken; insert itself does not allocate.
func (r *registry) insert(n *node) bool {
	if r.search(n.block) != nil {
		return false
	}

	n.red = true
	n.left, n.right = nil, nil
	r.root = insertNode(r.root, n)
	r.root.red = false
	r.count++

	return true
}

// erase unlinks the entry for block. Returns false without mutation if the
// block index is absent. Does not allocate.
func (r *registry) erase(block uint64) bool {
	if r.search(block) == nil {
		return false
	}

	r.root = deleteNode(r.root, block)
	if r.root != nil {
		r.root.red = false
	}

	r.count--

	return true
}

// detach hands the entire tree and its count to the caller and leaves the
// registry empty. O(1), so the guard stays held only briefly regardless of
// registry size; the caller walks the detached tree after releasing.
func (r *registry) detach() registry {
	detached := *r

	*r = registry{}

	return detached
}

// walk visits every entry in ascending block order.
func (r *registry) walk(fn func(*node)) {
	walkNode(r.root, fn)
}

// nodes returns the number of reachable entries by traversal, independent of
// the count field. Used to verify the count invariant on clear.
func (r *registry) nodes() uint64 {
	var n uint64

	r.walk(func(*node) { n++ })

	return n
}

// --- left-leaning red-black tree internals ---
//
// Deletion follows the usual LLRB shape and assumes the key is present; both
// insert and erase verify presence with a search first, which keeps the
// recursive paths free of nil checks.

func isRed(n *node) bool {
	return n != nil && n.red
}

func rotateLeft(h *node) *node {
	x := h.right
	h.right = x.left
	x.left = h
	x.red = h.red
	h.red = true

	return x
}

func rotateRight(h *node) *node {
	x := h.left
	h.left = x.right
	x.right = h
	x.red = h.red
	h.red = true

	return x
}

func flipColors(h *node) {
	h.red = !h.red
	h.left.red = !h.left.red
	h.right.red = !h.right.red
}

func fixUp(h *node) *node {
	if isRed(h.right) && !isRed(h.left) {
		h = rotateLeft(h)
	}

	if isRed(h.left) && isRed(h.left.left) {
		h = rotateRight(h)
	}

	if isRed(h.left) && isRed(h.right) {
		flipColors(h)
	}

	return h
}

func insertNode(h, n *node) *node {
	if h == nil {
		return n
	}

	// Equal keys cannot occur: insert rejects duplicates up front.
	if n.block < h.block {
		h.left = insertNode(h.left, n)
	} else {
		h.right = insertNode(h.right, n)
	}

	return fixUp(h)
}

func moveRedLeft(h *node) *node {
	flipColors(h)

	if isRed(h.right.left) {
		h.right = rotateRight(h.right)
		h = rotateLeft(h)
		flipColors(h)
	}

	return h
}

func moveRedRight(h *node) *node {
	flipColors(h)

	if isRed(h.left.left) {
		h = rotateRight(h)
		flipColors(h)
	}

	return h
}

func minNode(h *node) *node {
	for h.left != nil {
		h = h.left
	}

	return h
}

func deleteMin(h *node) *node {
	if h.left == nil {
		return nil
	}

	if !isRed(h.left) && !isRed(h.left.left) {
		h = moveRedLeft(h)
	}

	h.left = deleteMin(h.left)

	return fixUp(h)
}

func deleteNode(h *node, block uint64) *node {
	if block < h.block {
		if !isRed(h.left) && !isRed(h.left.left) {
			h = moveRedLeft(h)
		}

		h.left = deleteNode(h.left, block)
	} else {
		if isRed(h.left) {
			h = rotateRight(h)
		}

		if block == h.block && h.right == nil {
			return nil
		}

		if !isRed(h.right) && !isRed(h.right.left) {
			h = moveRedRight(h)
		}

		if block == h.block {
			m := minNode(h.right)
			h.block = m.block
			h.wrFailCnt = m.wrFailCnt
			h.right = deleteMin(h.right)
		} else {
			h.right = deleteNode(h.right, block)
		}
	}

	return fixUp(h)
}

func walkNode(h *node, fn func(*node)) {
	if h == nil {
		return
	}

	walkNode(h.left, fn)
	fn(h)
	walkNode(h.right, fn)
}
