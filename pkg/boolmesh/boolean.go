package boolmesh

import (
	"math"
	"sort"

	"github.com/lignincad/lignin/pkg/boolmesh/boolean03"
	"github.com/lignincad/lignin/pkg/boolmesh/boolean45"
	"github.com/lignincad/lignin/pkg/boolmesh/hmesh"
	"github.com/lignincad/lignin/pkg/boolmesh/simplify"
	"github.com/lignincad/lignin/pkg/boolmesh/triangulate"
	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

// OpType selects a Boolean operation. Its zero value is OpUnion.
type OpType int

const (
	OpUnion OpType = iota
	OpDifference
	OpIntersect
)

func (op OpType) String() string {
	switch op {
	case OpDifference:
		return "difference"
	case OpIntersect:
		return "intersect"
	default:
		return "union"
	}
}

// coeffs derives get_result's three per-operation coefficients: c1 gates
// whether untouched P-side volume survives the op, c2 gates untouched
// Q-side volume, c3 flips the sign of the winding-based inclusion test.
func (op OpType) coeffs() boolean45.Coeffs {
	c := boolean45.Coeffs{C1: 1, C2: 0, C3: -1}
	if op == OpIntersect {
		c.C1, c.C3 = 0, 1
	}
	if op == OpUnion {
		c.C2 = 1
	}
	return c
}

// Compute performs a, op, b and returns the resulting validated manifold.
// It runs the full pipeline: BVH-narrowed edge/triangle intersection
// (boolean03), result assembly from the sparse intersection data
// (boolean45), per-face triangulation (triangulate), topological cleanup
// (simplify), and vertex/half-edge compaction before the result is
// revalidated as a closed orientable 2-manifold (New).
func Compute(a, b *Manifold, op OpType) (*Manifold, error) {
	if a == nil || b == nil {
		return nil, newError(KindDegenerateMesh, "Compute", nil)
	}

	tol := a.Eps
	if b.Eps > tol {
		tol = b.Eps
	}
	// Shadows' coincident-value tiebreak (kernel.go) only reads the sign
	// of expand*normal.component, and that sign must track the op: +1
	// for Union, -1 for Difference and Intersect (spec.md's winding03/
	// intersect12 convention). Sharing one sign across ops collapses the
	// tiebreak to Union's for every op, which breaks Subtract(m,m)=empty
	// and coplanar-shared-edge handling. Everything downstream of the
	// boolean03 drivers (triangulation, simplification) still wants the
	// plain positive tolerance, so the sign flip is local to expand.
	expand := tol
	if op != OpUnion {
		expand = -tol
	}

	viewA := boolean03.MeshView{Pos: a.Pos, VertNorm: a.VertNormals, Halfs: a.Halfs, Collider: a.Collider}
	viewB := boolean03.MeshView{Pos: b.Pos, VertNorm: b.VertNormals, Halfs: b.Halfs, Collider: b.Collider}

	p1q2, x12, v12 := boolean03.Intersect12(viewA, viewB, expand, true)
	// forward=false already reports pairs back in (P,Q) order.
	p2q1, x21, v21 := boolean03.Intersect12(viewA, viewB, expand, false)

	w03 := boolean03.Winding03(viewA, viewB, expand, true)
	w30 := boolean03.Winding03(viewA, viewB, expand, false)

	isect := boolean45.Intersections{
		P1Q2: pairsOf(p1q2), P2Q1: pairsOf(p2q1),
		X12: x12, X21: x21,
		W03: w03, W30: w30,
		V12: v12, V21: v21,
	}

	meshP := boolean45.MeshInput{Pos: a.Pos, Halfs: a.Halfs, FaceNormals: a.FaceNormals}
	meshQ := boolean45.MeshInput{Pos: b.Pos, Halfs: b.Halfs, FaceNormals: b.FaceNormals}

	result := boolean45.Assemble(meshP, meshQ, isect, op.coeffs())
	if len(result.Pos) == 0 || len(result.FaceOffsets) <= 1 {
		return nil, newError(KindEmptyIntersection, "Compute", nil)
	}

	halfs, refs, faceNormals, err := triangulateFaces(result, tol)
	if err != nil {
		return nil, newError(KindInternal, "Compute", err)
	}

	pos := append([]vec.Vec3(nil), result.Pos...)
	normals := append([]vec.Vec3(nil), faceNormals...)

	simplify.Topology(halfs, &pos, normals, refs, int(result.OrigVertCount), tol)
	simplify.DedupeEdges(&pos, &halfs, &normals, &refs)
	simplify.SwapDegenerateEdges(halfs, &pos, normals, refs, 0, tol)

	idx := cleanupUnusedVerts(&pos, &halfs)
	if len(idx) == 0 {
		return nil, newError(KindEmptyIntersection, "Compute", nil)
	}
	return New(pos, idx, 0, 0)
}

func pairsOf(p []boolean03.Pair) [][2]int32 {
	out := make([][2]int32, len(p))
	for i, pr := range p {
		out[i] = [2]int32{pr[0], pr[1]}
	}
	return out
}

// triangulateFaces walks the assembled result's face ranges and
// triangulates each one, carrying the originating TriRef and face normal
// onto every sub-triangle's three half-edges.
func triangulateFaces(r boolean45.Result, eps float64) ([]hmesh.Half, []boolean45.TriRef, []vec.Vec3, error) {
	var tris [][3]int32
	var triRefs []boolean45.TriRef
	var triNormals []vec.Vec3

	nf := len(r.FaceOffsets) - 1
	for f := 0; f < nf; f++ {
		lo, hi := r.FaceOffsets[f], r.FaceOffsets[f+1]
		faceHalfs := r.Halfs[lo:hi]
		ref := r.HalfTri[lo]
		normal := r.FaceNormals[f]

		faceTris, err := triangulate.Face(r.Pos, normal, faceHalfs, eps)
		if err != nil {
			return nil, nil, nil, err
		}
		for _, tri := range faceTris {
			tris = append(tris, tri)
			triRefs = append(triRefs, ref)
			triNormals = append(triNormals, normal)
		}
	}

	halfs, err := hmesh.Build(tris)
	if err != nil {
		return nil, nil, nil, err
	}

	refs := make([]boolean45.TriRef, len(halfs))
	normals := make([]vec.Vec3, len(halfs))
	for t := range tris {
		refs[3*t], refs[3*t+1], refs[3*t+2] = triRefs[t], triRefs[t], triRefs[t]
		normals[3*t], normals[3*t+1], normals[3*t+2] = triNormals[t], triNormals[t], triNormals[t]
	}
	return halfs, refs, normals, nil
}

// cleanupUnusedVerts Morton-reorders vertices (pushing simplify's deleted
// sentinel positions to the end), drops half-edges simplify left unpaired,
// and returns a dense triangle index array, grounded on original_source's
// manifold::cleanup_unused_verts.
func cleanupUnusedVerts(pos *[]vec.Vec3, halfs *[]hmesh.Half) [][3]int32 {
	ps := *pos
	bbMin, bbMax := boundsFromPoints(ps)

	type keyed struct {
		old  int
		code uint64
	}
	order := make([]keyed, len(ps))
	for i, p := range ps {
		order[i] = keyed{old: i, code: mortonOrDeleted(p, bbMin, bbMax)}
	}
	sort.SliceStable(order, func(a, b int) bool { return order[a].code < order[b].code })

	old2new := make([]int32, len(ps))
	newPos := make([]vec.Vec3, 0, len(ps))
	nv := 0
	for _, k := range order {
		if k.code == math.MaxUint64 {
			old2new[k.old] = -1
			continue
		}
		old2new[k.old] = int32(nv)
		newPos = append(newPos, ps[k.old])
		nv++
	}

	hs := *halfs
	var idx [][3]int32
	for i := 0; i+2 < len(hs); i += 3 {
		if hs[i].Tail == hmesh.NoIndex || hs[i+1].Tail == hmesh.NoIndex || hs[i+2].Tail == hmesh.NoIndex {
			continue // simplify zeroed this triangle out (collapsed or folded away)
		}
		t0, t1, t2 := old2new[hs[i].Tail], old2new[hs[i+1].Tail], old2new[hs[i+2].Tail]
		if t0 < 0 || t1 < 0 || t2 < 0 {
			continue
		}
		idx = append(idx, [3]int32{t0, t1, t2})
	}

	*pos = newPos
	return idx
}

func boundsFromPoints(pts []vec.Vec3) (min, max vec.Vec3) {
	min = vec.Vec3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64}
	max = vec.Vec3{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64}
	for _, p := range pts {
		if p.X == math.MaxFloat64 { // simplify's deleted-vertex sentinel
			continue
		}
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return min, max
}

// mortonOrDeleted returns math.MaxUint64 for simplify's deleted-vertex
// sentinel (pushing it past every real code so cleanupUnusedVerts drops
// it), otherwise a 3-axis interleaved code within (min, max).
func mortonOrDeleted(p, lo, hi vec.Vec3) uint64 {
	if p.X == math.MaxFloat64 && p.Y == math.MaxFloat64 && p.Z == math.MaxFloat64 {
		return math.MaxUint64
	}
	size := vec.Vec3{X: hi.X - lo.X, Y: hi.Y - lo.Y, Z: hi.Z - lo.Z}
	axis := func(x, l, s float64) uint32 {
		var t float64
		if s > 0 {
			t = (x - l) / s
		}
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		return uint32(t * 1023)
	}
	ax, ay, az := axis(p.X, lo.X, size.X), axis(p.Y, lo.Y, size.Y), axis(p.Z, lo.Z, size.Z)
	var code uint64
	for bit := uint(0); bit < 10; bit++ {
		code |= uint64(ax>>bit&1)<<(3*bit+2) | uint64(ay>>bit&1)<<(3*bit+1) | uint64(az>>bit&1)<<(3*bit)
	}
	return code
}
