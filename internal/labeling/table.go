package labeling

// labelTable is a union-find over provisional labels. Every label owns a chain
// of pixels threaded through the next grid, which holds for each flat pixel
// index the index of the following pixel in its chain. A chain tail points at
// itself. Chains are spliced in O(1) when two labels are joined, so the root
// of a set always owns the chain of every pixel in the set.
//
// Label ids are stable: joining never moves a record, it only re-parents the
// smaller set under the larger one.
type labelTable struct {
	parent []int32
	count  []int32 // pixel count, valid at roots
	head   []int32 // first pixel of the chain, valid at roots
	tail   []int32 // last pixel of the chain, valid at roots
	next   []int32

	merges int
}

func newLabelTable(next []int32, capacityHint int) *labelTable {
	return &labelTable{
		parent: make([]int32, 0, capacityHint),
		count:  make([]int32, 0, capacityHint),
		head:   make([]int32, 0, capacityHint),
		tail:   make([]int32, 0, capacityHint),
		next:   next,
	}
}

func (t *labelTable) len() int { return len(t.parent) }

// newLabel starts a chain holding only pix and returns its id.
func (t *labelTable) newLabel(pix int32) int32 {
	id := int32(len(t.parent))
	t.parent = append(t.parent, id)
	t.count = append(t.count, 1)
	t.head = append(t.head, pix)
	t.tail = append(t.tail, pix)
	t.next[pix] = pix
	return id
}

// find returns the root of l, halving the path on the way.
func (t *labelTable) find(l int32) int32 {
	for t.parent[l] != l {
		t.parent[l] = t.parent[t.parent[l]]
		l = t.parent[l]
	}
	return l
}

// appendPixel links pix after the tail of root's chain.
func (t *labelTable) appendPixel(root, pix int32) {
	t.next[t.tail[root]] = pix
	t.next[pix] = pix
	t.tail[root] = pix
	t.count[root]++
}

// union joins the sets of roots a and b and returns the surviving root. The
// chain of the absorbed set is spliced onto the end of the survivor's chain.
func (t *labelTable) union(a, b int32) int32 {
	if a == b {
		return a
	}
	if t.count[a] < t.count[b] {
		a, b = b, a
	}
	t.parent[b] = a
	t.next[t.tail[a]] = t.head[b]
	t.tail[a] = t.tail[b]
	t.count[a] += t.count[b]
	t.merges++
	return a
}

// chain calls fn for every pixel of root's chain from head to tail.
func (t *labelTable) chain(root int32, fn func(pix int32)) {
	pix := t.head[root]
	for i := int32(0); i < t.count[root]; i++ {
		fn(pix)
		pix = t.next[pix]
	}
}
