// Package hmesh builds the half-edge topology described in spec.md §4.3
// from a raw (positions, triangles) pair, grounded on the edge-pairing
// logic of original_source/src/hmesh/mod.rs's edge_topology, simplified to
// the flat-array half-edge representation spec.md §3/§9 calls for (no
// separate edge/vert/face object graph — face-of is implicit via h/3).
package hmesh

import (
	"fmt"
	"sort"

	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

// NoIndex is the sentinel marking an absent tail/head/pair (spec.md §3).
const NoIndex int32 = -1

// Half is one directed side of a triangle. Triangles are implicit:
// half-edge h belongs to face h/3, and its two siblings are the other two
// indices in that group of three.
type Half struct {
	Tail, Head, Pair int32
}

// IsForward reports whether this half-edge is the canonical direction of
// its undirected edge (tail index < head index).
func (h Half) IsForward() bool { return h.Tail < h.Head }

// NextOf returns the successor half-edge index within hid's triangle
// (hid+1, wrapping every 3).
func NextOf(hid int) int {
	i := hid + 1
	if i%3 == 0 {
		i -= 3
	}
	return i
}

// FaceOf returns the triangle a half-edge belongs to.
func FaceOf(hid int) int { return hid / 3 }

// Build constructs the half-edge array for a closed, 2-manifold surface.
// tris holds one triangle's three vertex indices per row, CCW-wound. On
// success every edge used by two triangle sides is paired; an edge used by
// only one side keeps Pair == NoIndex. Non-manifold input (an edge
// shared by more than two triangle sides, or an edge used twice in the
// same direction) is reported as an error rather than silently dropped,
// per spec.md §4.3 step 2.
func Build(tris [][3]int32) ([]Half, error) {
	nt := len(tris)
	halfs := make([]Half, 3*nt)
	for t, tri := range tris {
		for i := 0; i < 3; i++ {
			halfs[3*t+i] = Half{Tail: tri[i], Head: tri[(i+1)%3], Pair: NoIndex}
		}
	}

	type key struct {
		lo, hi int32
		hid    int32
		fwd    bool
	}
	keys := make([]key, len(halfs))
	for i, h := range halfs {
		lo, hi := h.Tail, h.Head
		fwd := true
		if lo > hi {
			lo, hi = hi, lo
			fwd = false
		}
		keys[i] = key{lo: lo, hi: hi, hid: int32(i), fwd: fwd}
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].lo != keys[b].lo {
			return keys[a].lo < keys[b].lo
		}
		if keys[a].hi != keys[b].hi {
			return keys[a].hi < keys[b].hi
		}
		return keys[a].fwd && !keys[b].fwd
	})

	i := 0
	for i < len(keys) {
		j := i + 1
		for j < len(keys) && keys[j].lo == keys[i].lo && keys[j].hi == keys[i].hi {
			j++
		}
		group := keys[i:j]
		switch len(group) {
		case 1:
			// Boundary half-edge: left unpaired, resolved by the caller
			// (a final Manifold construction treats this as failure).
		case 2:
			if group[0].fwd == group[1].fwd {
				return nil, fmt.Errorf("hmesh: non-manifold edge (%d,%d): both half-edges share the same direction", keys[i].lo, keys[i].hi)
			}
			a, b := group[0].hid, group[1].hid
			halfs[a].Pair = b
			halfs[b].Pair = a
		default:
			return nil, fmt.Errorf("hmesh: non-manifold edge (%d,%d): shared by %d half-edges, want at most 2", keys[i].lo, keys[i].hi, len(group))
		}
		i = j
	}

	canonicalize(halfs)
	return halfs, nil
}

// canonicalize rotates each triangle's three half-edges so that index 0
// (and hence the triangle's "first" half-edge) has the minimum tail vertex
// id among the three, then repoints every Pair index accordingly
// (spec.md §4.3 step 4).
func canonicalize(halfs []Half) {
	nt := len(halfs) / 3
	old := make([]Half, len(halfs))
	copy(old, halfs)

	// newPos[oldIdx] = index the half-edge at oldIdx moves to.
	newPos := make([]int32, len(halfs))
	for t := 0; t < nt; t++ {
		base := 3 * t
		minI := 0
		for i := 1; i < 3; i++ {
			if old[base+i].Tail < old[base+minI].Tail {
				minI = i
			}
		}
		for i := 0; i < 3; i++ {
			newPos[base+(i+minI)%3] = int32(base + i)
		}
	}

	for oldIdx, h := range old {
		dst := newPos[oldIdx]
		newPair := h.Pair
		if newPair != NoIndex {
			newPair = newPos[newPair]
		}
		halfs[dst] = Half{Tail: h.Tail, Head: h.Head, Pair: newPair}
	}
}

// IsManifold reports whether every half-edge's pairing is reciprocal and
// well-formed (the invariant in spec.md §3).
func IsManifold(halfs []Half) bool {
	for i, h := range halfs {
		if h.Tail == NoIndex || h.Head == NoIndex {
			continue
		}
		if h.Tail == h.Head {
			return false
		}
		if h.Pair == NoIndex {
			return false
		}
		p := halfs[h.Pair]
		if int(p.Pair) != i || p.Tail != h.Head || p.Head != h.Tail {
			return false
		}
	}
	return true
}

// FaceNormals computes the unnormalized-then-normalized area-weighted face
// normal for each triangle from its three vertex positions.
func FaceNormals(pos []vec.Vec3, halfs []Half) []vec.Vec3 {
	nt := len(halfs) / 3
	out := make([]vec.Vec3, nt)
	for t := 0; t < nt; t++ {
		h0, h1, h2 := halfs[3*t], halfs[3*t+1], halfs[3*t+2]
		p0, p1, p2 := pos[h0.Tail], pos[h1.Tail], pos[h2.Tail]
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		out[t] = n.Normalize()
	}
	return out
}

// VertNormals computes per-vertex normals as the area-weighted average of
// incident face normals (face area folded in via the un-normalized cross
// product, then the sum normalized once per vertex).
func VertNormals(pos []vec.Vec3, halfs []Half) []vec.Vec3 {
	nv := 0
	for _, h := range halfs {
		if int(h.Tail)+1 > nv {
			nv = int(h.Tail) + 1
		}
	}
	out := make([]vec.Vec3, nv)
	nt := len(halfs) / 3
	for t := 0; t < nt; t++ {
		h0, h1, h2 := halfs[3*t], halfs[3*t+1], halfs[3*t+2]
		p0, p1, p2 := pos[h0.Tail], pos[h1.Tail], pos[h2.Tail]
		n := p1.Sub(p0).Cross(p2.Sub(p0)) // not normalized: weights by 2*area
		out[h0.Tail] = out[h0.Tail].Add(n)
		out[h1.Tail] = out[h1.Tail].Add(n)
		out[h2.Tail] = out[h2.Tail].Add(n)
	}
	for i := range out {
		out[i] = out[i].Normalize()
	}
	return out
}
