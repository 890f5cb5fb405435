// Package collider implements the Morton-code BVH described in spec.md
// §4.2: a binary radix tree built over sorted Morton codes using Karras'
// construction (each internal node is the lowest common ancestor of a
// contiguous leaf range, found via the longest-common-prefix split rule),
// queried by a single Recorder callback.
//
// original_source's own src/manifold/collider.rs never got past a Morton
// spread-bits helper (the tree itself is a documented gap, see spec.md's
// Open Questions); this is a from-scratch implementation of the
// well-known algorithm the spec names.
package collider

import (
	"math/bits"
	"sort"

	"github.com/lignincad/lignin/pkg/boolmesh/bounds"
)

// Recorder is invoked once per (query index, leaf index) overlap found
// during a Collision walk. It may be called in any leaf order for a given
// query; callers that need determinism must sort the recorded pairs
// themselves (spec.md §4.2).
type Recorder func(queryIdx, leafIndex int)

type node struct {
	box         bounds.Box
	left, right int32 // child node indices; for leaves both are -1
	leaf        int32 // leaf payload index, or -1 for internal nodes
}

// BVH is an immutable bounding-volume hierarchy over a fixed set of leaves,
// built once from their boxes and Morton codes.
type BVH struct {
	nodes []node // nodes[0] is the root; leaves and internal nodes share one array
	root  int32
	n     int // leaf count
}

// New builds a BVH over the given per-leaf boxes, each already paired with
// a precomputed Morton code (callers are expected to have sorted nothing
// yet; New does the sort and keeps track of the leaf permutation so
// Collision reports back the caller's original leaf indices).
func New(leafBoxes []bounds.Box, mortonCodes []uint32) *BVH {
	n := len(leafBoxes)
	if n == 0 {
		return &BVH{root: -1}
	}
	if n == 1 {
		nodes := []node{{box: leafBoxes[0], left: -1, right: -1, leaf: 0}}
		return &BVH{nodes: nodes, root: 0, n: 1}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return mortonCodes[order[a]] < mortonCodes[order[b]] })

	codes := make([]uint64, n)
	for i, idx := range order {
		// Break ties on equal Morton codes with the (stable) sorted position
		// so the LCP-based split rule below never stalls on duplicates.
		codes[i] = uint64(mortonCodes[idx])<<32 | uint64(uint32(i))
	}

	b := &BVH{n: n}
	b.nodes = make([]node, 2*n-1)

	// Leaves occupy indices [n-1, 2n-1); internal nodes occupy [0, n-2].
	for i := 0; i < n; i++ {
		b.nodes[n-1+i] = node{box: leafBoxes[order[i]], left: -1, right: -1, leaf: int32(order[i])}
	}

	delta := func(i, j int) int {
		if j < 0 || j >= n {
			return -1
		}
		return bits.LeadingZeros64(codes[i] ^ codes[j])
	}

	for i := 0; i < n-1; i++ {
		d := sign(delta(i, i+1) - delta(i, i-1))
		deltaMin := delta(i, i-d)

		lmax := 2
		for delta(i, i+lmax*d) > deltaMin {
			lmax *= 2
		}
		l := 0
		for t := lmax / 2; t >= 1; t /= 2 {
			if delta(i, i+(l+t)*d) > deltaMin {
				l += t
			}
		}
		j := i + l*d

		deltaNode := delta(i, j)
		s := 0
		lo, hi := minInt(i, j), maxInt(i, j)
		for t := divCeilPow2(l); t >= 1; t = t / 2 {
			if lo+s+t <= hi && delta(i, i+(s+t)*d) > deltaNode {
				s += t
			}
			if t == 1 {
				break
			}
		}
		split := i + s*d + minInt(d, 0)

		var leftIdx, rightIdx int32
		if minInt(i, j) == split {
			leftIdx = int32(n - 1 + split)
		} else {
			leftIdx = int32(split)
		}
		if maxInt(i, j) == split+1 {
			rightIdx = int32(n - 1 + split + 1)
		} else {
			rightIdx = int32(split + 1)
		}

		b.nodes[i].left = leftIdx
		b.nodes[i].right = rightIdx
		b.nodes[i].leaf = -1
	}

	b.root = 0
	b.computeBoxes(0)
	return b
}

func sign(x int) int {
	if x < 0 {
		return -1
	}
	return 1
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// divCeilPow2 returns the smallest power of two >= l (at least 1), used to
// bound the binary search for the internal split point.
func divCeilPow2(l int) int {
	p := 1
	for p < l {
		p *= 2
	}
	if p < 1 {
		p = 1
	}
	return p
}

// computeBoxes fills in internal-node bounding boxes bottom-up by post-order
// recursion; leaves already carry their box from construction.
func (b *BVH) computeBoxes(i int32) bounds.Box {
	n := &b.nodes[i]
	if n.leaf >= 0 {
		return n.box
	}
	l := b.computeBoxes(n.left)
	r := b.computeBoxes(n.right)
	n.box = l.UnionBox(r)
	return n.box
}

// Collision walks the tree once per query box, invoking rec for every leaf
// whose box overlaps. Depth-first, left child first, deterministic for a
// single query; across queries the only ordering guarantee is the one
// documented on Recorder. Empty trees produce no calls.
func (b *BVH) Collision(queries []bounds.Box, rec Recorder) {
	if b.root < 0 || len(b.nodes) == 0 {
		return
	}
	for qi, q := range queries {
		b.collideOne(qi, q, rec)
	}
}

func (b *BVH) collideOne(queryIdx int, q bounds.Box, rec Recorder) {
	if b.n == 1 {
		if b.nodes[0].box.Overlaps(q) {
			rec(queryIdx, int(b.nodes[0].leaf))
		}
		return
	}
	stack := make([]int32, 0, 64)
	stack = append(stack, b.root)
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &b.nodes[i]
		if !n.box.Overlaps(q) {
			continue
		}
		if n.leaf >= 0 {
			rec(queryIdx, int(n.leaf))
			continue
		}
		// Push right first so left is popped (visited) first: depth-first,
		// left-first traversal per spec.md §4.2.
		stack = append(stack, n.right, n.left)
	}
}

// LeafCount returns the number of leaves the tree was built over.
func (b *BVH) LeafCount() int { return b.n }
