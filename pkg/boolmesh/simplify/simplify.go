// Package simplify cleans up a freshly assembled result mesh: it splits
// vertices visited by more than one triangle fan, collapses degenerate
// (collinear or too-short) edges, and removes duplicate directed edges that
// would otherwise leave the mesh non-manifold. Grounded on
// original_source/src/simplification/{mod,edge_collapse,edge_dedup,edge_swap}.rs,
// translated from the trait-based Vec<Halfedge> mutation style there into
// free functions over a plain []hmesh.Half slice plus parallel position,
// normal and TriRef slices passed by pointer where a pass can grow them.
package simplify

import (
	"math"

	"github.com/lignincad/lignin/pkg/boolmesh/boolean45"
	"github.com/lignincad/lignin/pkg/boolmesh/hmesh"
	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

// Tref is the per-face provenance record a collapse or swap pass consults to
// decide whether two triangles belong to the same original face.
type Tref = boolean45.TriRef

var deletedPos = vec.Vec3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}

func nextOf(hid int) int { return hmesh.NextOf(hid) }

func pairOf(h []hmesh.Half, hid int) int { return int(h[hid].Pair) }

func tailOf(h []hmesh.Half, hid int) int { return int(h[hid].Tail) }

func headOf(h []hmesh.Half, hid int) int { return int(h[hid].Head) }

func triHidsOf(hid int) (int, int, int) {
	next := nextOf(hid)
	prev := nextOf(next)
	return hid, next, prev
}

func pairUp(h []hmesh.Half, a, b int) {
	h[a].Pair = int32(b)
	h[b].Pair = int32(a)
}

// updateVidAroundStar walks the half-edge star from bgn (inclusive) to end
// (exclusive), heading every incoming half-edge to vid and tailing its pair
// from vid, leaving the fan consistent after a vertex is renamed.
func updateVidAroundStar(h []hmesh.Half, bgn, end, vid int) {
	cur := bgn
	for cur != end {
		h[cur].Head = int32(vid)
		cur = nextOf(cur)
		h[cur].Tail = int32(vid)
		cur = pairOf(h, cur)
	}
}

// collapseTriangle zeroes out one triangle's three half-edges, re-pairing
// its two surviving neighbors to each other (the third side, hids[0], is
// assumed already disconnected by the caller).
func collapseTriangle(h []hmesh.Half, hids [3]int) {
	if h[hids[1]].Pair == hmesh.NoIndex {
		return
	}
	pair1 := pairOf(h, hids[1])
	pair2 := pairOf(h, hids[2])
	h[pair1].Pair = int32(pair2)
	h[pair2].Pair = int32(pair1)
	for _, i := range hids {
		h[i] = hmesh.Half{Tail: hmesh.NoIndex, Head: hmesh.NoIndex, Pair: hmesh.NoIndex}
	}
}

// is01Longest2D reports whether, of a triangle's three edges, the one from
// vertex 0 to vertex 1 is strictly the longest.
func is01Longest2D(p0, p1, p2 vec.Vec2) bool {
	e01 := p1.Sub(p0).NormSq()
	e12 := p2.Sub(p1).NormSq()
	e20 := p0.Sub(p2).NormSq()
	return e01 > e12 && e01 > e20
}

// SplitPinchedVert duplicates a vertex everywhere it is visited by more than
// one triangle fan, so each surviving vertex has a single CCW star. The
// first fan encountered keeps the original vertex id; every later fan gets
// a fresh duplicate.
func SplitPinchedVert(pos *[]vec.Vec3, halfs []hmesh.Half) {
	vProcessed := make([]bool, len(*pos))
	hProcessed := make([]bool, len(halfs))

	for hid := range halfs {
		if hProcessed[hid] {
			continue
		}
		vid := int(halfs[hid].Tail)
		if vid == int(hmesh.NoIndex) {
			continue
		}
		if vProcessed[vid] {
			*pos = append(*pos, (*pos)[vid])
			vid = len(*pos) - 1
		} else {
			vProcessed[vid] = true
		}

		cur := hid
		for {
			cur = nextOf(pairOf(halfs, cur))
			hProcessed[cur] = true
			halfs[cur].Tail = int32(vid)
			halfs[pairOf(halfs, cur)].Head = int32(vid)
			if cur == hid {
				break
			}
		}
	}
}

// formLoops pinches a vertex visited by a collapse into two: used when bgn
// and end half-edges head to the same vertex and separating them would
// otherwise create two disjoint loops sharing a single point.
func formLoops(halfs []hmesh.Half, pos *[]vec.Vec3, bgn, end int) {
	*pos = append(*pos, (*pos)[tailOf(halfs, bgn)])
	*pos = append(*pos, (*pos)[headOf(halfs, bgn)])
	bgnVid := len(*pos) - 2
	endVid := len(*pos) - 1

	bgnPair := pairOf(halfs, bgn)
	endPair := pairOf(halfs, end)

	updateVidAroundStar(halfs, bgnPair, endPair, bgnVid)
	updateVidAroundStar(halfs, end, bgn, endVid)

	halfs[bgn].Pair = int32(endPair)
	halfs[endPair].Pair = int32(bgn)
	halfs[end].Pair = int32(bgnPair)
	halfs[bgnPair].Pair = int32(end)

	removeIfFolded(halfs, *pos, end)
}

// removeIfFolded detects and erases a fold-paired triangle pair left behind
// by a collapse: two triangles that, after the collapse, are either fully
// isolated, have exactly one isolated vertex, or are topologically valid
// but share two coincident vertex positions.
func removeIfFolded(halfs []hmesh.Half, pos []vec.Vec3, hid int) {
	i0, i1, i2 := triHidsOf(hid)
	j0, j1, j2 := triHidsOf(pairOf(halfs, hid))

	if halfs[i1].Pair == hmesh.NoIndex || headOf(halfs, i1) != headOf(halfs, j1) {
		return
	}

	bothIsolated := pairOf(halfs, i1) == j2
	oneIsolated := pairOf(halfs, i2) == j1
	switch {
	case bothIsolated && oneIsolated:
		for _, i := range [3]int{i0, i1, i2} {
			pos[tailOf(halfs, i)] = deletedPos
		}
	case bothIsolated:
		pos[tailOf(halfs, i1)] = deletedPos
	case oneIsolated:
		pos[tailOf(halfs, j1)] = deletedPos
	}

	pairUp(halfs, int(halfs[i1].Pair), int(halfs[j2].Pair))
	pairUp(halfs, int(halfs[i2].Pair), int(halfs[j1].Pair))
	for _, i := range [6]int{i0, i1, i2, j0, j1, j2} {
		halfs[i] = hmesh.Half{Tail: hmesh.NoIndex, Head: hmesh.NoIndex, Pair: hmesh.NoIndex}
	}
}

// recordIfCollinear reports whether hid's undirected edge is a candidate for
// collapse: orbiting its tail vertex crosses at most one face boundary
// (i.e. the star touches at most two distinct original faces).
func recordIfCollinear(halfs []hmesh.Half, refs []Tref, hid int, nv int) bool {
	h := halfs[hid]
	if h.Pair == hmesh.NoIndex || int(h.Tail) < nv {
		return false
	}

	cwNext := func(i int) int { return nextOf(pairOf(halfs, i)) }

	bgn := hid
	cur := cwNext(bgn)
	tr0 := refs[bgn/3]
	tr1 := refs[cur/3]
	same := tr0.SameFace(tr1)
	for cur != bgn {
		cur = cwNext(cur)
		tr2 := refs[cur/3]
		if !tr2.SameFace(tr0) && !tr2.SameFace(tr1) {
			if same {
				tr1 = tr2
				same = false
			} else {
				return false
			}
		}
	}
	return true
}

// recordIfShort reports whether hid's edge is shorter than eps and touches
// at least one vertex introduced by the boolean assembly (index >= nv).
func recordIfShort(halfs []hmesh.Half, pos []vec.Vec3, hid int, nv int, eps float64) bool {
	h := halfs[hid]
	if h.Pair == hmesh.NoIndex || (int(h.Tail) < nv && int(h.Head) < nv) {
		return false
	}
	d := pos[h.Head].Sub(pos[h.Tail])
	return d.NormSq() < eps*eps
}

// CollapseEdge collapses hid's undirected edge, keeping its head vertex and
// discarding its tail, after validating the collapse will not invert a
// neighboring triangle or introduce a large shift across a sharp or
// face-separating edge. store is scratch space the caller should pass
// an empty slice for; it records the ring of outgoing half-edges around the
// kept vertex's old end, consulted by formLoops if the collapse would split
// the mesh into two loops.
func CollapseEdge(halfs []hmesh.Half, pos *[]vec.Vec3, normals []vec.Vec3, refs []Tref, hid int, store *[]int, eps float64) bool {
	toRmv := halfs[hid]
	if toRmv.Pair == hmesh.NoIndex {
		return false
	}

	vidKeep := int(toRmv.Head)
	vidDelt := int(toRmv.Tail)
	posKeep := (*pos)[vidKeep]
	posDelt := (*pos)[vidDelt]

	tri0 := [3]int{hid, nextOf(hid), nextOf(nextOf(hid))}
	tri1 := [3]int{int(toRmv.Pair), nextOf(int(toRmv.Pair)), nextOf(nextOf(int(toRmv.Pair)))}

	bgn := pairOf(halfs, tri1[1])
	end := tri0[2]

	if posKeep.Sub(posDelt).NormSq() >= eps*eps {
		cur := bgn
		tr0 := refs[int(toRmv.Pair)/3]
		pPrev := (*pos)[headOf(halfs, tri1[1])]
		for cur != int(toRmv.Pair) {
			cur = nextOf(cur)
			pNext := (*pos)[headOf(halfs, cur)]
			rCurr := refs[cur/3]
			nCurr := normals[cur/3]
			nPair := normals[int(toRmv.Pair)/3]
			ccw := func(p0, p1, p2 vec.Vec3) int { return vec.IsCCW3D(p0, p1, p2, nCurr, eps) }
			if !rCurr.SameFace(tr0) {
				tr2 := tr0
				tr0 = refs[hid/3]
				if !rCurr.SameFace(tr0) {
					return false
				}
				if tr0.MeshID != tr2.MeshID || tr0.FaceID != tr2.FaceID || nPair.Dot(nCurr) < -0.5 {
					if ccw(pPrev, posDelt, posKeep) != 0 {
						return false
					}
				}
			}
			if ccw(pNext, pPrev, posKeep) < 0 {
				return false
			}
			pPrev = pNext
			cur = pairOf(halfs, cur)
		}
	}

	cur := pairOf(halfs, tri0[1])
	for cur != tri1[2] {
		cur = nextOf(cur)
		*store = append(*store, cur)
		cur = pairOf(halfs, cur)
	}

	(*pos)[vidDelt] = deletedPos
	collapseTriangle(halfs, tri1)

	cur = bgn
	for cur != end {
		cur = nextOf(cur)
		pair := pairOf(halfs, cur)
		head := headOf(halfs, cur)
		found := -1
		for i, s := range *store {
			if headOf(halfs, s) == head {
				found = i
				break
			}
		}
		if found >= 0 {
			v := (*store)[found]
			formLoops(halfs, pos, v, cur)
			bgn = pair
			*store = (*store)[:found]
		}
		cur = pair
	}

	updateVidAroundStar(halfs, bgn, end, vidKeep)
	collapseTriangle(halfs, tri0)
	removeIfFolded(halfs, *pos, bgn)

	return true
}

// CollapseCollinearEdges repeatedly collapses every currently-collinear
// candidate edge until no more are found.
func CollapseCollinearEdges(halfs []hmesh.Half, pos *[]vec.Vec3, normals []vec.Vec3, refs []Tref, nv int, eps float64) {
	for {
		var rec []int
		for hid := range halfs {
			if recordIfCollinear(halfs, refs, hid, nv) {
				rec = append(rec, hid)
			}
		}
		flag := 0
		store := make([]int, 0, 8)
		for _, hid := range rec {
			store = store[:0]
			if CollapseEdge(halfs, pos, normals, refs, hid, &store, eps) {
				flag++
			}
		}
		if flag == 0 {
			break
		}
	}
}

// CollapseShortEdges repeatedly collapses every edge shorter than eps that
// touches an assembly-introduced vertex, until none remain.
func CollapseShortEdges(halfs []hmesh.Half, pos *[]vec.Vec3, normals []vec.Vec3, refs []Tref, nv int, eps float64) {
	for {
		var rec []int
		for hid := range halfs {
			if recordIfShort(halfs, *pos, hid, nv, eps) {
				rec = append(rec, hid)
			}
		}
		flag := 0
		store := make([]int, 0, 8)
		for _, hid := range rec {
			store = store[:0]
			if CollapseEdge(halfs, pos, normals, refs, hid, &store, eps) {
				flag++
			}
		}
		if flag == 0 {
			break
		}
	}
}

// Topology runs the full post-assembly cleanup pipeline: split pinched
// vertices first (so every fan is simple), then collapse short edges, then
// collapse collinear ones.
func Topology(halfs []hmesh.Half, pos *[]vec.Vec3, normals []vec.Vec3, refs []Tref, nv int, eps float64) {
	SplitPinchedVert(pos, halfs)
	CollapseShortEdges(halfs, pos, normals, refs, nv, eps)
	CollapseCollinearEdges(halfs, pos, normals, refs, nv, eps)
}

// dedupeEdge resolves one duplicate directed edge (two half-edges sharing a
// tail and head): if the duplicate crosses over at the same point it splits
// the head vertex and stitches in two bridging triangles; otherwise it
// pinches the head and, if still ambiguous, the tail vertex apart. New
// triangles created here get a copy of the originating triangle's
// TriRef/normal; a plain vertex pinch (no new triangle) does not touch
// those parallel arrays since no new face exists to describe.
func dedupeEdge(pos *[]vec.Vec3, halfs *[]hmesh.Half, normals *[]vec.Vec3, refs *[]Tref, hid int) {
	hs := *halfs
	tail := int(hs[hid].Tail)
	head := int(hs[hid].Head)
	opp := pairOf(hs, nextOf(hid))
	cur := opp
	for cur != hid {
		if tailOf(hs, cur) == tail {
			*pos = append(*pos, (*pos)[head])
			cp := len(*pos) - 1
			cur = pairOf(hs, nextOf(cur))
			hs = *halfs
			updateVidAroundStar(hs, cur, opp, cp)

			nh1 := len(hs)
			pairA := pairOf(hs, cur)
			hs = append(hs, hmesh.Half{Tail: int32(head), Head: int32(cp), Pair: hmesh.NoIndex})
			hs = append(hs, hmesh.Half{Tail: int32(cp), Head: int32(tailOf(hs, cur)), Pair: hmesh.NoIndex})
			hs = append(hs, hmesh.Half{Tail: int32(tailOf(hs, cur)), Head: int32(head), Pair: hmesh.NoIndex})
			pairUp(hs, nh1+2, pairA)
			pairUp(hs, nh1+1, cur)

			nh2 := len(hs)
			pairB := pairOf(hs, opp)
			hs = append(hs, hmesh.Half{Tail: int32(cp), Head: int32(head), Pair: hmesh.NoIndex})
			hs = append(hs, hmesh.Half{Tail: int32(head), Head: int32(tailOf(hs, opp)), Pair: hmesh.NoIndex})
			hs = append(hs, hmesh.Half{Tail: int32(tailOf(hs, opp)), Head: int32(cp), Pair: hmesh.NoIndex})
			pairUp(hs, nh2+2, pairB)
			pairUp(hs, nh2+1, opp)

			pairUp(hs, nh2, nh1)

			*refs = append(*refs, (*refs)[cur/3], (*refs)[opp/3])
			*normals = append(*normals, (*normals)[cur/3], (*normals)[opp/3])

			*halfs = hs
			return
		}
		cur = pairOf(hs, nextOf(cur))
	}

	if cur == hid {
		newVert := len(*pos)
		*pos = append(*pos, (*pos)[head])
		start := nextOf(cur)
		e := start
		for {
			hs[e].Tail = int32(newVert)
			p := pairOf(hs, e)
			hs[p].Head = int32(newVert)
			e = nextOf(p)
			if e == start {
				break
			}
		}
	}

	pair := pairOf(hs, hid)
	curr := pairOf(hs, nextOf(pair))
	for curr != pair {
		if tailOf(hs, curr) == head {
			break
		}
		curr = pairOf(hs, nextOf(curr))
	}
	if curr == pair {
		newVert := len(*pos)
		*pos = append(*pos, (*pos)[head])
		bgn := nextOf(curr)
		e := bgn
		for {
			hs[e].Tail = int32(newVert)
			p := pairOf(hs, e)
			hs[p].Head = int32(newVert)
			e = nextOf(p)
			if e == bgn {
				break
			}
		}
	}
	*halfs = hs
}

// DedupeEdges removes every duplicate directed edge (two half-edges with
// the same tail and head), which can otherwise appear after a boolean
// assembly pairs up coincident new edges incorrectly. Each tail vertex's
// star is scanned for the lowest-index half-edge heading to each head
// vertex; every other half-edge heading to that same vertex is a duplicate.
func DedupeEdges(pos *[]vec.Vec3, halfs *[]hmesh.Half, normals *[]vec.Vec3, refs *[]Tref) {
	if len(*halfs) == 0 {
		return
	}
	for {
		hs := *halfs
		local := make([]bool, len(hs))
		var dups []int

		for hid := range hs {
			if local[hid] || hs[hid].Tail == hmesh.NoIndex || hs[hid].Head == hmesh.NoIndex {
				continue
			}
			seen := make(map[int]int)

			cur := hid
			for {
				local[cur] = true
				if hs[cur].Tail != hmesh.NoIndex && hs[cur].Head != hmesh.NoIndex {
					head := int(hs[cur].Head)
					if m, ok := seen[head]; !ok || cur < m {
						seen[head] = cur
					}
				}
				cur = pairOf(hs, nextOf(cur))
				if cur == hid {
					break
				}
			}

			cur = hid
			for {
				if hs[cur].Tail != hmesh.NoIndex && hs[cur].Head != hmesh.NoIndex {
					head := int(hs[cur].Head)
					if m, ok := seen[head]; ok && m != cur {
						dups = append(dups, cur)
					}
				}
				cur = pairOf(hs, nextOf(cur))
				if cur == hid {
					break
				}
			}
		}

		if len(dups) == 0 {
			break
		}
		uniq := dedupSortedInts(dups)
		for _, hid := range uniq {
			dedupeEdge(pos, halfs, normals, refs, hid)
		}
	}
}

func dedupSortedInts(xs []int) []int {
	seen := make(map[int]bool, len(xs))
	out := xs[:0:0]
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	return out
}

// recordSwapCandidate reports whether hid sits on a degenerate (near-zero
// area, CW-or-flat) triangle whose longest edge is hid, and whether
// swapping it against its neighbor straightens both triangles out.
func recordSwapCandidate(halfs []hmesh.Half, pos []vec.Vec3, normals []vec.Vec3, hid, oft int, tol float64) bool {
	half := halfs[hid]
	if half.Pair == hmesh.NoIndex {
		return false
	}

	n0 := headOf(halfs, nextOf(hid))
	n1 := headOf(halfs, nextOf(pairOf(halfs, int(half.Pair))))
	if int(half.Tail) < oft && int(half.Head) < oft && n0 < oft && n1 < oft {
		return false
	}

	tri := hid / 3
	e0, e1, e2 := triHidsOf(hid)
	proj := vec.AxisAlignedProjection(normals[tri])
	v0 := proj.Project(pos[tailOf(halfs, e0)])
	v1 := proj.Project(pos[tailOf(halfs, e1)])
	v2 := proj.Project(pos[tailOf(halfs, e2)])

	if vec.IsCCW2D(v0, v1, v2, tol) > 0 {
		return false
	}
	if !is01Longest2D(v0, v1, v2) {
		return false
	}

	pair := int(half.Pair)
	triN := pair / 3
	projN := vec.AxisAlignedProjection(normals[triN])
	u0 := projN.Project(pos[tailOf(halfs, e0)])
	u1 := projN.Project(pos[tailOf(halfs, e1)])
	u2 := projN.Project(pos[tailOf(halfs, e2)])

	return vec.IsCCW2D(u0, u1, u2, tol) > 0 || is01Longest2D(u0, u1, u2)
}

// SwapDegenerateEdges flips the shared edge of each near-degenerate
// triangle pair (a sliver whose longest side is the shared one) against a
// neighbor that can absorb it, recursing outward from each swap until the
// local neighborhood stabilizes. oft is the boundary below which a vertex
// is considered pre-existing (inputs to the boolean op) rather than
// assembly-introduced; an edge is a candidate only if its two endpoints or
// the opposite vertices of its two triangles include a new vertex.
func SwapDegenerateEdges(halfs []hmesh.Half, pos *[]vec.Vec3, normals []vec.Vec3, refs []Tref, oft int, tol float64) {
	n := len(halfs)
	if n == 0 {
		return
	}
	visited := make([]int, n)
	for i := range visited {
		visited[i] = -1
	}
	tag := 0
	var stack []int

	for i := 0; i < n; i++ {
		if recordSwapCandidate(halfs, *pos, normals, i, oft, tol) {
			tag++
			recursiveEdgeSwap(halfs, pos, normals, refs, i, &tag, visited, &stack, tol)
			for len(stack) > 0 {
				last := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				recursiveEdgeSwap(halfs, pos, normals, refs, last, &tag, visited, &stack, tol)
			}
		}
	}
}

// recursiveEdgeSwap flips hid's shared edge against its paired triangle
// when both are long-edge-degenerate on that edge, collapsing the result
// if the flip leaves a near-zero edge behind, or queuing the edge's four
// neighbors for re-examination otherwise.
func recursiveEdgeSwap(halfs []hmesh.Half, pos *[]vec.Vec3, normals []vec.Vec3, refs []Tref, hid int, tag *int, visited []int, stack *[]int, tol float64) {
	if hid >= len(halfs) {
		return
	}
	curr := hid
	pair := pairOf(halfs, curr)
	if halfs[curr].Pair == hmesh.NoIndex || halfs[pair].Pair == hmesh.NoIndex {
		return
	}
	if visited[curr] == *tag && visited[pair] == *tag {
		return
	}

	t0 := curr / 3
	t1 := pair / 3
	t0e0, t0e1, t0e2 := triHidsOf(curr)
	t1e0, t1e1, t1e2 := triHidsOf(pair)

	proj := vec.AxisAlignedProjection(normals[t0])
	v00 := proj.Project((*pos)[tailOf(halfs, t0e0)])
	v01 := proj.Project((*pos)[tailOf(halfs, t0e1)])
	v02 := proj.Project((*pos)[tailOf(halfs, t0e2)])

	if vec.IsCCW2D(v00, v01, v02, tol) > 0 || !is01Longest2D(v00, v01, v02) {
		return
	}

	projN := vec.AxisAlignedProjection(normals[t1])
	u0 := projN.Project((*pos)[tailOf(halfs, t0e0)])
	u1 := projN.Project((*pos)[tailOf(halfs, t0e1)])
	u2 := projN.Project((*pos)[tailOf(halfs, t0e2)])
	u3 := projN.Project((*pos)[tailOf(halfs, t1e2)])

	swapEdge := func() bool {
		v0 := tailOf(halfs, t0e2)
		v1 := tailOf(halfs, t1e2)
		halfs[t0e0].Tail = int32(v1)
		halfs[t0e2].Head = int32(v1)
		halfs[t1e0].Tail = int32(v0)
		halfs[t1e2].Head = int32(v0)

		p0 := pairOf(halfs, t1e2)
		p1 := pairOf(halfs, t0e2)
		pairUp(halfs, t0e0, p0)
		pairUp(halfs, t1e0, p1)
		pairUp(halfs, t0e2, t1e2)

		normals[t0] = normals[t1]
		refs[t0] = refs[t1]

		h := pairOf(halfs, t1e0)
		head := headOf(halfs, t1e1)
		for h != t0e1 {
			h = nextOf(h)
			if headOf(halfs, h) == head {
				formLoops(halfs, pos, t0e2, curr)
				removeIfFolded(halfs, *pos, t0e2)
				return true
			}
			h = pairOf(halfs, h)
		}
		return false
	}

	ccw103 := vec.IsCCW2D(u1, u0, u3, tol)
	if ccw103 <= 0 {
		if !is01Longest2D(u1, u0, u3) {
			return
		}
		if swapEdge() {
			return
		}
		e23 := u3.Sub(u2)
		if e23.NormSq() < tol*tol {
			*tag++
			store := make([]int, 0, 8)
			CollapseEdge(halfs, pos, normals, refs, t0e2, &store, tol)
		} else {
			visited[curr] = *tag
			visited[pair] = *tag
			*stack = append(*stack, t1e1, t1e0, t0e1, t0e0)
		}
		return
	}
	ccw032 := vec.IsCCW2D(u0, u3, u2, tol)
	ccw123 := vec.IsCCW2D(u1, u2, u3, tol)
	if ccw032 <= 0 || ccw123 <= 0 {
		return
	}

	if swapEdge() {
		return
	}
	visited[curr] = *tag
	visited[pair] = *tag
	*stack = append(*stack, pairOf(halfs, t1e0), pairOf(halfs, t0e1))
}
