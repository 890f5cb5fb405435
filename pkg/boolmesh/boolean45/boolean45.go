// Package boolean45 assembles the final result mesh from the sparse
// intersection data boolean03 produces, grounded on original_source's
// src/boolean/boolean46.rs (size_output, pair_up, append_partial_edges,
// append_new_edges, append_whole_edges, Boolean3::get_result). Named
// boolean45 (not boolean46) because this module covers spec.md's §4.10
// vertex/face counting and §4.11 edge assembly as one unit; its own
// vocabulary ("Pair-up rule", inclusion counts i03/i30/i12/i21) is carried
// over unchanged since it is the terminology the rest of the codebase and
// its tests use.
package boolean45

import (
	"sort"

	"github.com/lignincad/lignin/pkg/boolmesh/hmesh"
	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

// Coeffs are the three per-operation coefficients get_result derives from
// OpType: c1 gates whether untouched P-side volume survives, c2 gates
// whether untouched Q-side volume survives, c3 flips the sign of the
// winding-based inclusion test.
type Coeffs struct{ C1, C2, C3 int32 }

// MeshInput is the half-edge mesh data one side (P or Q) contributes to
// the assembly.
type MeshInput struct {
	Pos         []vec.Vec3
	Halfs       []hmesh.Half
	FaceNormals []vec.Vec3
}

func (m MeshInput) nv() int { return len(m.Pos) }
func (m MeshInput) nh() int { return len(m.Halfs) }
func (m MeshInput) nf() int { return len(m.Halfs) / 3 }

// Intersections is everything boolean03 computed between P and Q.
type Intersections struct {
	P1Q2, P2Q1    [][2]int32
	X12, X21      []int32
	W03, W30      []int32
	V12, V21      []vec.Vec3
}

// TriRef records, for a half-edge of the result mesh, which input triangle
// it came from.
type TriRef struct {
	MeshID     int
	OriginID   int32
	FaceID     int
	CoplanarID int32
}

// SameFace reports whether two half-edges came from the same original,
// possibly-coplanar-merged face: same mesh, same face, same coplanar group.
// OriginID (the source triangle before coplanar merging) is deliberately
// excluded, matching Tref::same_face.
func (r TriRef) SameFace(o TriRef) bool {
	return r.MeshID == o.MeshID && r.FaceID == o.FaceID && r.CoplanarID == o.CoplanarID
}

// Result is the assembled (not yet triangulated or cleaned up) mesh.
type Result struct {
	Pos         []vec.Vec3
	Halfs       []hmesh.Half
	FaceNormals []vec.Vec3
	HalfTri     []TriRef
	// FaceOffsets is the CSR row-pointer array into Halfs: face f's
	// half-edges (a loop of arbitrary length, not necessarily a triangle)
	// occupy Halfs[FaceOffsets[f]:FaceOffsets[f+1]].
	FaceOffsets []int32
	// OrigVertCount is the number of result vertices duplicated from P's
	// and Q's own vertices (the i03/i30 passes); vertices at or past this
	// index were introduced by an edge/face crossing (i12/i21).
	OrigVertCount int32
}

func exclusiveScan(input []int32, output []int32, offset int32) {
	if len(input) == 0 || len(output) == 0 {
		return
	}
	sum := offset
	output[0] = sum
	for i := 1; i < len(input); i++ {
		sum += input[i-1]
		if i < len(output) {
			output[i] = sum
		}
	}
}

func absI(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Assemble builds the result mesh for the given operation, following
// get_result's five stages: inclusion counts, vertex duplication, new
// edge-vertex bookkeeping, face sizing, and the three edge-append passes
// (partial, new, whole).
func Assemble(p, q MeshInput, isect Intersections, c Coeffs) Result {
	i12 := scaleInt32(isect.X12, c.C3)
	i21 := scaleInt32(isect.X21, c.C3)
	i03 := addScaleInt32(isect.W03, c.C1, c.C3)
	i30 := addScaleInt32(isect.W30, c.C2, c.C3)

	nvP, nvQ := p.nv(), q.nv()

	vidP2r := make([]int32, nvP)
	vidQ2r := make([]int32, nvQ)
	vid12r := make([]int32, len(isect.V12))
	vid21r := make([]int32, len(isect.V21))

	var nvR int32
	absI03 := absAll(i03)
	exclusiveScan(absI03, vidP2r, nvR)
	if len(i03) > 0 {
		nvR = absI(vidP2r[len(vidP2r)-1]) + absI(i03[len(i03)-1])
	}
	nvRp := nvR

	absI30 := absAll(i30)
	exclusiveScan(absI30, vidQ2r, nvR)
	if len(i30) > 0 {
		nvR = absI(vidQ2r[len(vidQ2r)-1]) + absI(i30[len(i30)-1])
	}
	nvRq := nvR - nvRp

	if len(isect.V12) > 0 {
		absI12 := absAll(i12)
		exclusiveScan(absI12, vid12r, nvR)
		nvR = absI(vid12r[len(vid12r)-1]) + absI(i12[len(i12)-1])
	}
	if len(isect.V21) > 0 {
		absI21 := absAll(i21)
		exclusiveScan(absI21, vid21r, nvR)
		nvR = absI(vid21r[len(vid21r)-1]) + absI(i21[len(i21)-1])
	}

	posR := make([]vec.Vec3, nvR)
	for i := 0; i < nvP; i++ {
		duplicateVerts(i03, vidP2r, p.Pos, posR, i)
	}
	for i := 0; i < nvQ; i++ {
		duplicateVerts(i30, vidQ2r, q.Pos, posR, i)
	}
	for i := 0; i < len(isect.V12); i++ {
		duplicateVerts(i12, vid12r, isect.V12, posR, i)
	}
	for i := 0; i < len(isect.V21); i++ {
		duplicateVerts(i21, vid21r, isect.V21, posR, i)
	}

	halfPosP := map[int][]edgePos{}
	halfPosQ := map[int][]edgePos{}
	halfNew := map[[2]int][]edgePos{}
	addNewEdgeVerts(isect.P1Q2, i12, vid12r, p.Halfs, true, 0, halfPosP, halfNew)
	addNewEdgeVerts(isect.P2Q1, i21, vid21r, q.Halfs, false, len(isect.P1Q2), halfPosQ, halfNew)

	var faceNormals []vec.Vec3
	invertQ := c.C2 == 0 && c.C3 < 0 // Difference: Q's surviving faces enter R reversed
	ihPerF, fidPQ2r := sizeOutput(p, q, i03, i30, i12, i21, isect.P1Q2, isect.P2Q1, invertQ, &faceNormals)

	nh := int(ihPerF[len(ihPerF)-1])
	facePtrR := append([]int32(nil), ihPerF...)
	wholeFlagP := make([]bool, p.nh())
	for i := range wholeFlagP {
		wholeFlagP[i] = true
	}
	wholeFlagQ := make([]bool, q.nh())
	for i := range wholeFlagQ {
		wholeFlagQ[i] = true
	}
	halfTri := make([]TriRef, nh)
	halfRes := make([]hmesh.Half, nh)

	fidP2r := fidPQ2r[:p.nf()]
	fidQ2r := fidPQ2r[p.nf():]

	appendPartialEdges(i03, p.Halfs, vidP2r, fidP2r, posR, true, halfRes, halfTri, halfPosP, facePtrR, wholeFlagP)
	appendPartialEdges(i30, q.Halfs, vidQ2r, fidQ2r, posR, false, halfRes, halfTri, halfPosQ, facePtrR, wholeFlagQ)

	appendNewEdges(posR, fidPQ2r, p.nf(), facePtrR, halfNew, halfRes, halfTri)

	appendWholeEdges(i03, p.Halfs, fidP2r, vidP2r, wholeFlagP, true, facePtrR, halfRes, halfTri)
	appendWholeEdges(i30, q.Halfs, fidQ2r, vidQ2r, wholeFlagQ, false, facePtrR, halfRes, halfTri)

	return Result{Pos: posR, Halfs: halfRes, FaceNormals: faceNormals, HalfTri: halfTri, FaceOffsets: ihPerF, OrigVertCount: nvRp + nvRq}
}

func scaleInt32(in []int32, c int32) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = c * v
	}
	return out
}

func addScaleInt32(in []int32, c1, c3 int32) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = c1 + c3*v
	}
	return out
}

func absAll(in []int32) []int32 {
	out := make([]int32, len(in))
	for i, v := range in {
		out[i] = absI(v)
	}
	return out
}

func duplicateVerts(inclusion, vertR []int32, srcPos, dstPos []vec.Vec3, vid int) {
	n := int(absI(inclusion[vid]))
	for i := 0; i < n; i++ {
		dstPos[int(vertR[vid])+i] = srcPos[vid]
	}
}

// sizeOutput decides which triangles of P and Q survive into R, builds the
// per-face half-edge slot table and the face_p/face_q -> face_r map, and
// fills in the result's face normals (Q's negated when op is Subtract,
// i.e. invertQ).
func sizeOutput(p, q MeshInput, i03, i30, i12, i21 []int32, p1q2, p2q1 [][2]int32, invertQ bool, faceNormals *[]vec.Vec3) ([]int32, []int32) {
	nfp, nfq := p.nf(), q.nf()
	sideP := make([]int32, nfp)
	sideQ := make([]int32, nfq)

	for hid, h := range p.Halfs {
		sideP[hid/3] += absI(i03[h.Tail])
	}
	for hid, h := range q.Halfs {
		sideQ[hid/3] += absI(i30[h.Tail])
	}

	for i, pair := range p1q2 {
		h := p.Halfs[pair[0]]
		inc := absI(i12[i])
		sideP[int(pair[0])/3] += inc
		sideP[int(h.Pair)/3] += inc
		sideQ[pair[1]] += inc
	}
	for i, pair := range p2q1 {
		h := q.Halfs[pair[1]]
		inc := absI(i21[i])
		sideQ[int(pair[1])/3] += inc
		sideQ[int(h.Pair)/3] += inc
		sideP[pair[0]] += inc
	}

	sidePQ := append(append([]int32(nil), sideP...), sideQ...)
	keepFs := make([]int32, len(sidePQ))
	for i, v := range sidePQ {
		if v > 0 {
			keepFs[i] = 1
		}
	}

	facePQ2r := make([]int32, nfp+nfq+1)
	inclusiveScanOffset1(keepFs, facePQ2r[1:], 0)
	nFaceR := facePQ2r[len(facePQ2r)-1]
	facePQ2r = facePQ2r[:nfp+nfq]

	*faceNormals = make([]vec.Vec3, nFaceR)
	fidR := 0
	for f := 0; f < nfp; f++ {
		if sideP[f] > 0 {
			(*faceNormals)[fidR] = p.FaceNormals[f]
			fidR++
		}
	}
	for f := 0; f < nfq; f++ {
		if sideQ[f] > 0 {
			n := q.FaceNormals[f]
			if invertQ {
				n = n.Scale(-1)
			}
			(*faceNormals)[fidR] = n
			fidR++
		}
	}

	var truncated []int32
	for _, s := range sidePQ {
		if s > 0 {
			truncated = append(truncated, s)
		}
	}
	ihPerF := make([]int32, len(truncated))
	inclusiveScanOffset1(truncated, ihPerF, 0)
	ihPerF = append([]int32{0}, ihPerF...)

	return ihPerF, facePQ2r
}

func inclusiveScanOffset1(input, output []int32, offset int32) {
	if len(input) == 0 || len(output) == 0 {
		return
	}
	sum := offset
	for i, v := range input {
		sum += v
		if i < len(output) {
			output[i] = sum
		}
	}
}

// edgePos is one endpoint of an unresolved edge still needing pairing: a
// candidate result vertex, the scalar projection used to order it along
// the edge, and which "side" (collision id) produced it.
type edgePos struct {
	val    float64
	vid    int
	cid    int
	isTail bool
}

func addNewEdgeVerts(p1q2 [][2]int32, i12 []int32, v12r []int32, halfsP []hmesh.Half, forward bool, offset int, edgesPos map[int][]edgePos, edgesNew map[[2]int][]edgePos) {
	for i, pair := range p1q2 {
		hidP := int(pair[0])
		fidQ := int(pair[1])
		if !forward {
			hidP = int(pair[1])
			fidQ = int(pair[0])
		}
		vidR := int(v12r[i])
		inclusion := i12[i]

		h0 := halfsP[hidP]
		h1 := halfsP[h0.Pair]
		var keyL, keyR [2]int
		if forward {
			keyL = [2]int{hidP / 3, fidQ}
			keyR = [2]int{int(h1.Pair) / 3, fidQ}
		} else {
			keyL = [2]int{fidQ, hidP / 3}
			keyR = [2]int{fidQ, int(h1.Pair) / 3}
		}
		direction := inclusion < 0
		if _, ok := edgesPos[hidP]; !ok {
			edgesPos[hidP] = nil
		}
		if _, ok := edgesNew[keyL]; !ok {
			edgesNew[keyL] = nil
		}
		if _, ok := edgesNew[keyR]; !ok {
			edgesNew[keyR] = nil
		}
		dir0 := direction != !forward
		dir1 := direction != forward

		n := int(absI(inclusion))
		for j := 0; j < n; j++ {
			edgesPos[hidP] = append(edgesPos[hidP], edgePos{vid: vidR + j, cid: i + offset, isTail: direction})
		}
		direction = !direction
		for j := 0; j < n; j++ {
			edgesNew[keyR] = append(edgesNew[keyR], edgePos{vid: vidR + j, cid: i + offset, isTail: dir0})
		}
		direction = !direction
		for j := 0; j < n; j++ {
			edgesNew[keyL] = append(edgesNew[keyL], edgePos{vid: vidR + j, cid: i + offset, isTail: dir1})
		}
	}
}

// pairUp partitions edgePos entries into tails/heads by isTail, stable
// sorts each half by (val, cid), and pairs them index-by-index -- the
// "Pair-up rule" that turns an unordered bag of edge-vertex candidates
// into a monotone sequence of half-edges along the edge.
func pairUp(edgePosList []edgePos) []hmesh.Half {
	n := len(edgePosList)
	staIdx, endIdx := 0, n
	list := append([]edgePos(nil), edgePosList...)
	for staIdx < endIdx {
		if list[staIdx].isTail {
			staIdx++
		} else {
			endIdx--
			list[staIdx], list[endIdx] = list[endIdx], list[staIdx]
		}
	}
	mid := staIdx

	less := func(s []edgePos) func(i, j int) bool {
		return func(i, j int) bool {
			if s[i].val != s[j].val {
				return s[i].val < s[j].val
			}
			return s[i].cid < s[j].cid
		}
	}
	tails := list[:mid]
	heads := list[mid:]
	sort.SliceStable(tails, less(tails))
	sort.SliceStable(heads, less(heads))

	ne := n / 2
	edges := make([]hmesh.Half, ne)
	for i := 0; i < ne; i++ {
		edges[i] = hmesh.Half{Tail: int32(tails[i].vid), Head: int32(heads[i].vid), Pair: -1}
	}
	return edges
}

func appendPartialEdges(i03 []int32, halfP []hmesh.Half, vidP2r, fidP2r []int32, posR []vec.Vec3, forward bool, halfRes []hmesh.Half, halfTri []TriRef, halfPos map[int][]edgePos, facePtrR []int32, wholeFlag []bool) {
	meshID := 0
	if !forward {
		meshID = 1
	}
	for hidP, hposP := range halfPos {
		h := halfP[hidP]
		wholeFlag[hidP] = false
		wholeFlag[h.Pair] = false

		diff := posR2(posR, vidP2r, int(h.Head)).Sub(posR2(posR, vidP2r, int(h.Tail)))
		local := append([]edgePos(nil), hposP...)
		for i := range local {
			local[i].val = diff.Dot(posR[local[i].vid])
		}

		incTail := i03[h.Tail]
		incHead := i03[h.Head]
		pTail := posR[vidP2r[h.Tail]]
		pHead := posR[vidP2r[h.Head]]

		for i := 0; i < int(absI(incTail)); i++ {
			local = append(local, edgePos{val: pTail.Dot(diff), vid: int(vidP2r[h.Tail]) + i, cid: -1, isTail: incTail > 0})
		}
		for i := 0; i < int(absI(incHead)); i++ {
			local = append(local, edgePos{val: pHead.Dot(diff), vid: int(vidP2r[h.Head]) + i, cid: -1, isTail: incHead < 0})
		}

		halfSeq := pairUp(local)
		fpL := int(hidP) / 3
		fpR := int(h.Pair) / 3
		fidL := int(fidP2r[fpL])
		fidR := int(fidP2r[fpR])

		fwTri := TriRef{MeshID: meshID, FaceID: fpL, OriginID: -1, CoplanarID: -1}
		bkTri := TriRef{MeshID: meshID, FaceID: fpR, OriginID: -1, CoplanarID: -1}

		for _, he := range halfSeq {
			fwEdge := facePtrR[fidL]
			bkEdge := facePtrR[fidR]
			facePtrR[fidL]++
			facePtrR[fidR]++
			halfRes[fwEdge] = hmesh.Half{Tail: he.Tail, Head: he.Head, Pair: bkEdge}
			halfRes[bkEdge] = hmesh.Half{Tail: he.Head, Head: he.Tail, Pair: fwEdge}
			halfTri[fwEdge] = fwTri
			halfTri[bkEdge] = bkTri
		}
	}
}

func posR2(posR []vec.Vec3, vidMap []int32, vid int) vec.Vec3 { return posR[vidMap[vid]] }

func appendNewEdges(posR []vec.Vec3, fidPQ2r []int32, nfacesP int, facePtrR []int32, halfNew map[[2]int][]edgePos, halfRes []hmesh.Half, halfTri []TriRef) {
	for key, epos := range halfNew {
		fidP, fidQ := key[0], key[1]
		local := append([]edgePos(nil), epos...)

		var minP, maxP vec.Vec3
		minP = vec.Vec3{X: 1e308, Y: 1e308, Z: 1e308}
		maxP = vec.Vec3{X: -1e308, Y: -1e308, Z: -1e308}
		for _, e := range local {
			p := posR[e.vid]
			minP = vec.Vec3{X: minF(minP.X, p.X), Y: minF(minP.Y, p.Y), Z: minF(minP.Z, p.Z)}
			maxP = vec.Vec3{X: maxF(maxP.X, p.X), Y: maxF(maxP.Y, p.Y), Z: maxF(maxP.Z, p.Z)}
		}
		size := maxP.Sub(minP)
		d := 0
		if size.Y > axisAt(size, d) {
			d = 1
		}
		if size.Z > axisAt(size, d) {
			d = 2
		}

		for i := range local {
			local[i].val = axisAt(posR[local[i].vid], d)
		}

		halfSeq := pairUp(local)
		fidL := int(fidPQ2r[fidP])
		fidR := int(fidPQ2r[fidQ+nfacesP])
		fwRef := TriRef{MeshID: 0, FaceID: fidP, OriginID: -1, CoplanarID: -1}
		bkRef := TriRef{MeshID: 1, FaceID: fidQ, OriginID: -1, CoplanarID: -1}

		for _, he := range halfSeq {
			fwEdge := facePtrR[fidL]
			bkEdge := facePtrR[fidR]
			facePtrR[fidL]++
			facePtrR[fidR]++
			halfRes[fwEdge] = hmesh.Half{Tail: he.Tail, Head: he.Head, Pair: bkEdge}
			halfRes[bkEdge] = hmesh.Half{Tail: he.Head, Head: he.Tail, Pair: fwEdge}
			halfTri[fwEdge] = fwRef
			halfTri[bkEdge] = bkRef
		}
	}
}

func axisAt(v vec.Vec3, d int) float64 {
	switch d {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func appendWholeEdges(i03 []int32, halfP []hmesh.Half, fidP2r, vidP2r []int32, wholeFlag []bool, forward bool, facePtrR []int32, halfRes []hmesh.Half, halfTri []TriRef) {
	meshID := 0
	if !forward {
		meshID = 1
	}
	for i, hp := range halfP {
		if !wholeFlag[i] {
			continue
		}
		h := hmesh.Half{Tail: hp.Tail, Head: hp.Head, Pair: hp.Pair}
		if !h.IsForward() {
			continue
		}
		inc := i03[h.Tail]
		if inc == 0 {
			continue
		}
		if inc < 0 {
			h.Tail, h.Head = h.Head, h.Tail
		}
		h.Tail = vidP2r[h.Tail]
		h.Head = vidP2r[h.Head]

		fpL := i / 3
		fpR := int(hp.Pair) / 3
		fidL := fidP2r[fpL]
		fidR := fidP2r[fpR]
		fwRef := TriRef{MeshID: meshID, FaceID: fpL, OriginID: -1, CoplanarID: -1}
		bkRef := TriRef{MeshID: meshID, FaceID: fpR, OriginID: -1, CoplanarID: -1}

		for j := 0; j < int(absI(inc)); j++ {
			fwEdge := facePtrR[fidL]
			bkEdge := facePtrR[fidR]
			facePtrR[fidL]++
			facePtrR[fidR]++
			halfRes[fwEdge] = hmesh.Half{Tail: h.Tail, Head: h.Head, Pair: bkEdge}
			halfRes[bkEdge] = hmesh.Half{Tail: h.Head, Head: h.Tail, Pair: fwEdge}
			halfTri[fwEdge] = fwRef
			halfTri[bkEdge] = bkRef
			h.Tail++
			h.Head++
		}
	}
}
