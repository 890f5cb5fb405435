// Package boolean03 implements the Boolean03 driver (spec.md §4.9): it runs
// the X12 and X02 kernels over BVH-narrowed candidate pairs to produce the
// sparse edge/triangle intersection lists and vertex winding numbers the
// Boolean45 assembler consumes, grounded on original_source's
// src/boolean/mod.rs (intersect12, winding03).
package boolean03

import (
	"math"
	"sort"

	"github.com/lignincad/lignin/pkg/boolmesh/bounds"
	"github.com/lignincad/lignin/pkg/boolmesh/collider"
	"github.com/lignincad/lignin/pkg/boolmesh/hmesh"
	"github.com/lignincad/lignin/pkg/boolmesh/kernel"
	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

// MeshView is the read-only slice of a Manifold the Boolean03 drivers
// need: positions, vertex normals, half-edges, and a face collider keyed
// by half-edge/vertex index.
type MeshView struct {
	Pos      []vec.Vec3
	VertNorm []vec.Vec3
	Halfs    []hmesh.Half
	Collider *collider.BVH
}

func (m MeshView) verts() kernel.Verts { return kernel.Verts{Pos: m.Pos, Normal: m.VertNorm} }

// Pair is a sparse (edge-of-one, face-of-other) index pair, ordered
// (P-index, Q-index) regardless of which mesh was iterated forward.
type Pair [2]int32

// Intersect12 finds every half-edge of one mesh that pierces a triangle of
// the other, returning the sorted-by-pair sparse arrays p1q2, x12
// (winding contribution) and v12 (crossing point in world space).
// forward=true walks P's half-edges against Q's faces; forward=false does
// the reverse and reports pairs still in (P,Q) order.
func Intersect12(p, q MeshView, expand float64, forward bool) ([]Pair, []int32, []vec.Vec3) {
	a, b := p, q
	if !forward {
		a, b = q, p
	}

	k02 := kernel.X02{VertsP: a.verts(), VertsQ: b.verts(), HalfsQ: b.Halfs, Expand: expand, Forward: forward}
	k11 := kernel.X11{VertsP: p.verts(), VertsQ: q.verts(), HalfsP: p.Halfs, HalfsQ: q.Halfs, Expand: expand}
	k12 := kernel.X12{HalfsP: a.Halfs, HalfsQ: b.Halfs, VertsP: a.verts(), K02: k02, K11: k11, Forward: forward}

	var queryHids []int32
	var queryBoxes []bounds.Box
	for hid, h := range a.Halfs {
		if h.Tail == hmesh.NoIndex || h.Tail >= h.Head {
			continue
		}
		queryHids = append(queryHids, int32(hid))
		queryBoxes = append(queryBoxes, bounds.FromPoints(a.Pos[h.Tail], a.Pos[h.Head]))
	}

	type hit struct {
		pair Pair
		x    int32
		v    vec.Vec3
	}
	var hits []hit
	b.Collider.Collision(queryBoxes, func(queryIdx, leafIdx int) {
		hid := int(queryHids[queryIdx])
		x, v, ok := k12.Op(hid, leafIdx)
		if !ok {
			return
		}
		var pr Pair
		if forward {
			pr = Pair{int32(hid), int32(leafIdx)}
		} else {
			pr = Pair{int32(leafIdx), int32(hid)}
		}
		hits = append(hits, hit{pair: pr, x: int32(x), v: v})
	})

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].pair[0] != hits[j].pair[0] {
			return hits[i].pair[0] < hits[j].pair[0]
		}
		return hits[i].pair[1] < hits[j].pair[1]
	})

	p1q2 := make([]Pair, len(hits))
	x12 := make([]int32, len(hits))
	v12 := make([]vec.Vec3, len(hits))
	for i, h := range hits {
		p1q2[i], x12[i], v12[i] = h.pair, h.x, h.v
	}
	return p1q2, x12, v12
}

// Winding03 sums the signed winding contribution of every triangle of one
// mesh shadowing each vertex of the other, producing one value per vertex
// of the forward mesh (spec.md §4.9, "winding03").
func Winding03(p, q MeshView, expand float64, forward bool) []int32 {
	a, b := p, q
	if !forward {
		a, b = q, p
	}
	w03 := make([]int32, len(a.Pos))

	k02 := kernel.X02{VertsP: a.verts(), VertsQ: b.verts(), HalfsQ: b.Halfs, Expand: expand, Forward: forward}

	// Each query is the vertical line through the vertex, so every face whose
	// xy-extent covers it is tested, not only faces whose box holds the vertex.
	queryBoxes := make([]bounds.Box, len(a.Pos))
	for i, p := range a.Pos {
		queryBoxes[i] = bounds.FromPoints(vec.Vec3{X: p.X, Y: p.Y, Z: -math.MaxFloat64}, vec.Vec3{X: p.X, Y: p.Y, Z: math.MaxFloat64})
	}

	sign := int32(1)
	if !forward {
		sign = -1
	}
	b.Collider.Collision(queryBoxes, func(queryIdx, leafIdx int) {
		s, _, ok := k02.Op(queryIdx, leafIdx)
		if ok {
			w03[queryIdx] += int32(s) * sign
		}
	})
	return w03
}
