// Package boolmesh computes exact Boolean operations (union, intersection,
// difference) on closed orientable triangular 2-manifolds using
// winding-number semantics, grounded on original_source's manifold crate
// (komietty/boolmesh), which itself implements the Zhou-Grinspun-Jacobson-
// Panozzo "exact and robust" mesh Boolean algorithm.
package boolmesh

import (
	"sort"

	"github.com/google/uuid"

	"github.com/lignincad/lignin/pkg/boolmesh/bounds"
	"github.com/lignincad/lignin/pkg/boolmesh/collider"
	"github.com/lignincad/lignin/pkg/boolmesh/hmesh"
	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

// precision is the dimensionless tolerance factor multiplied against a
// mesh's bounding-box scale to derive its default epsilon, mirroring
// original_source's K_PRECISION.
const precision = 1e-12

// Manifold is a validated, Morton-sorted triangle mesh with precomputed
// normals, epsilon/tolerance, a face collider, and coplanar-face grouping
// -- the unit every Boolean operation in this package consumes and
// produces.
type Manifold struct {
	ID    string // stable per-manifold identity, independent of its vertex/triangle content
	Pos   []vec.Vec3  // vertex positions
	Halfs []hmesh.Half
	NV    int
	NT    int
	NH    int
	BBox  bounds.Box
	FaceNormals []vec.Vec3
	VertNormals []vec.Vec3
	Eps   float64
	Tol   float64
	Collider *collider.BVH
	Coplanar []int32 // per-triangle id of its coplanar group's representative triangle
}

// New validates pos/idx as a closed orientable 2-manifold, sorts its faces
// by Morton code for deterministic traversal, and precomputes everything a
// Boolean operation needs. eps/tol of 0 request the default derived from
// the mesh's bounding-box scale (original_source/src/manifold/mod.rs).
func New(pos []vec.Vec3, idx [][3]int32, eps, tol float64) (*Manifold, error) {
	if len(pos) == 0 || len(idx) == 0 {
		return nil, newError(KindDegenerateMesh, "New", nil)
	}

	halfs, err := hmesh.Build(idx)
	if err != nil {
		return nil, newError(KindNonManifoldInput, "New", err)
	}

	bb := bounds.FromPoints(pos...)

	faceBoxes, faceMorton := computeFaceMorton(pos, idx, bb)
	sortedPos, sortedIdx := sortFaces(pos, idx, faceBoxes, faceMorton)
	if sortedIdx != nil {
		idx = sortedIdx
		pos = sortedPos
		halfs, err = hmesh.Build(idx)
		if err != nil {
			return nil, newError(KindInternal, "New", err)
		}
		faceBoxes, faceMorton = computeFaceMorton(pos, idx, bb)
	}

	fns := hmesh.FaceNormals(pos, halfs)
	vns := hmesh.VertNormals(pos, halfs)

	e := precision * bb.Scale()
	if !isFinite(e) {
		e = -1
	}
	if eps == 0 {
		eps = e
	}
	if tol == 0 {
		tol = e
	}

	col := collider.New(faceBoxes, faceMorton)
	coplanar := computeCoplanarIdx(pos, fns, halfs, eps)

	m := &Manifold{
		ID:          uuid.NewString(),
		Pos:         pos,
		Halfs:       halfs,
		NV:          len(pos),
		NT:          len(idx),
		NH:          len(halfs),
		BBox:        bb,
		FaceNormals: fns,
		VertNormals: vns,
		Eps:         eps,
		Tol:         tol,
		Collider:    col,
		Coplanar:    coplanar,
	}

	if !hmesh.IsManifold(m.Halfs) {
		return nil, newError(KindNonManifoldInput, "New", nil)
	}
	return m, nil
}

func isFinite(f float64) bool { return f == f && f < 1e308 && f > -1e308 }

// SetEpsilon sets eps to minEpsilon, but no lower than precision times the
// bounding-box scale (-1 if that is not finite), following original_source's
// set_epsilon. tol is raised to at least the new eps (or to the float32
// bound when useSinglePrecision is set) and never shrinks; eps itself can
// go down as well as up.
func (m *Manifold) SetEpsilon(minEpsilon float64, useSinglePrecision bool) {
	s := m.BBox.Scale()
	e := minEpsilon
	if pe := precision * s; pe > e {
		e = pe
	}
	if !isFinite(e) {
		e = -1
	}
	t := e
	if useSinglePrecision {
		const float32Eps = 1.1920929e-7
		if se := float32Eps * s; se > t {
			t = se
		}
	}
	m.Eps = e
	if t > m.Tol {
		m.Tol = t
	}
}

// Volume returns the signed volume enclosed by the mesh, computed as the
// sum of signed tetrahedron volumes from the origin to each triangle
// (positive for outward-facing CCW winding).
func (m *Manifold) Volume() float64 {
	var v float64
	for t := 0; t < m.NT; t++ {
		h0, h1, h2 := m.Halfs[3*t], m.Halfs[3*t+1], m.Halfs[3*t+2]
		p0, p1, p2 := m.Pos[h0.Tail], m.Pos[h1.Tail], m.Pos[h2.Tail]
		v += p0.Dot(p1.Cross(p2)) / 6
	}
	return v
}

// Genus returns the topological genus of the surface computed from the
// Euler characteristic (V - E + F = 2 - 2g for a closed orientable
// surface), a diagnostic for the invariant tests in spec.md §8.
func (m *Manifold) Genus() int {
	e := m.NH / 2
	chi := m.NV - e + m.NT
	return (2 - chi) / 2
}

// computeFaceMorton returns each triangle's bounding box and a Morton code
// computed from its centroid (original_source's compute_face_morton).
func computeFaceMorton(pos []vec.Vec3, idx [][3]int32, bb bounds.Box) ([]bounds.Box, []uint32) {
	n := len(idx)
	boxes := make([]bounds.Box, n)
	mortons := make([]uint32, n)
	for f, tri := range idx {
		p0, p1, p2 := pos[tri[0]], pos[tri[1]], pos[tri[2]]
		boxes[f] = bounds.FromPoints(p0, p1, p2)
		centroid := p0.Add(p1).Add(p2).Scale(1.0 / 3.0)
		mortons[f] = bounds.Morton(centroid, bb)
	}
	return boxes, mortons
}

// sortFaces reorders triangles by Morton code so traversal order is
// deterministic and spatially coherent. Vertex positions are unchanged;
// only the triangle index array is permuted, so hmesh.Build must be rerun
// on the result.
func sortFaces(pos []vec.Vec3, idx [][3]int32, boxes []bounds.Box, mortons []uint32) ([]vec.Vec3, [][3]int32) {
	order := make([]int, len(idx))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return mortons[order[a]] < mortons[order[b]] })

	sortedIdx := make([][3]int32, len(idx))
	for i, o := range order {
		sortedIdx[i] = idx[o]
	}
	return pos, sortedIdx
}

// computeCoplanarIdx groups adjacent triangles whose planes agree within
// tol into the same coplanar patch, seeding the flood fill from the
// largest-area unclaimed triangle first; triangles of equal area are taken
// in index order (original_source's compute_coplanar_idx).
func computeCoplanarIdx(pos []vec.Vec3, normals []vec.Vec3, halfs []hmesh.Half, tol float64) []int32 {
	nt := len(halfs) / 3
	type prio struct {
		area float64
		t    int
	}
	order := make([]prio, nt)
	for t := 0; t < nt; t++ {
		i := 3 * t
		h := halfs[i]
		var area float64
		if h.Tail != hmesh.NoIndex {
			p0, p1, p2 := pos[halfs[i].Tail], pos[halfs[i].Head], pos[halfs[i+1].Head]
			area = p1.Sub(p0).Cross(p2.Sub(p0)).NormSq()
		}
		order[t] = prio{area: area, t: t}
	}
	sort.SliceStable(order, func(a, b int) bool { return order[a].area > order[b].area })

	res := make([]int32, nt)
	for i := range res {
		res[i] = -1
	}

	var stack []int
	for _, pr := range order {
		t := pr.t
		if res[t] != -1 {
			continue
		}
		res[t] = int32(t)

		i := 3 * t
		p := pos[halfs[i].Tail]
		n := normals[t]

		stack = stack[:0]
		stack = append(stack, i, i+1, i+2)

		for len(stack) > 0 {
			hi := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			pair := halfs[hi].Pair
			if pair == hmesh.NoIndex {
				continue
			}
			h1 := hmesh.NextOf(int(pair))
			t1 := hmesh.FaceOf(h1)
			if res[t1] != -1 {
				continue
			}

			if absF(pos[halfs[h1].Head].Sub(p).Dot(n)) < tol {
				res[t1] = int32(t)
				if len(stack) > 0 && stack[len(stack)-1] == int(pair) {
					stack = stack[:len(stack)-1]
				} else {
					stack = append(stack, h1)
				}
				stack = append(stack, hmesh.NextOf(h1))
			}
		}
	}
	return res
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
