// Package kernel implements the layered geometric predicates spec.md §4.5
// through §4.8 describe (X01/X02/X11/X12), ported from original_source's
// src/boolean/{shadow,intersect,kernel02,kernel11,kernel12}.rs. Every
// predicate here returns a signed winding contribution plus, where the two
// primitives actually cross, the intersection point; interpolate and
// intersect are the only two places in the whole package where rounding
// occurs, matching the original's own comment on why they're isolated.
package kernel

import (
	"math"

	"github.com/lignincad/lignin/pkg/boolmesh/hmesh"
	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

// Shadows is the tie-broken total order on two scalars along a projection
// direction: equal values are broken by the sign of dir rather than
// treated as equal, which is what makes coincident vertices deterministic.
func Shadows(p, q, dir float64) bool {
	if p == q {
		return dir < 0
	}
	return p < q
}

// Interpolate linearly interpolates the (y, z) of a segment pl->pr at a
// given x, choosing whichever endpoint is nearer x to interpolate from so
// floating-point error stays small. Returns pl's (y,z) verbatim if the
// segment is degenerate along x (producing an infinite slope).
func Interpolate(pl, pr vec.Vec3, x float64) vec.Vec2 {
	dxl := x - pl.X
	dxr := x - pr.X
	useL := math.Abs(dxl) < math.Abs(dxr)
	diff := pr.Sub(pl)
	var lambda float64
	if useL {
		lambda = dxl / diff.X
	} else {
		lambda = dxr / diff.X
	}
	if math.IsInf(lambda, 0) || math.IsNaN(lambda) || math.IsInf(diff.Y, 0) || math.IsInf(diff.Z, 0) {
		return vec.Vec2{X: pl.Y, Y: pl.Z}
	}
	y0, z0 := pl.Y, pl.Z
	if !useL {
		y0, z0 = pr.Y, pr.Z
	}
	return vec.Vec2{X: lambda*diff.Y + y0, Y: lambda*diff.Z + z0}
}

// Intersect solves for the point where segment pl->pr crosses the y=0
// plane of segment ql->qr's frame, returning (x, y, z_p, z_q) so callers
// can compare the two z values to decide which side shadows. Callers must
// only call this when dyL and dyR (the two segments' y-gaps at their
// shared endpoints) have opposite signs -- the only case a crossing
// exists.
func Intersect(pl, pr, ql, qr vec.Vec3) vec.Vec4 {
	dyl := ql.Y - pl.Y
	dyr := qr.Y - pr.Y
	useL := math.Abs(dyl) < math.Abs(dyr)
	dx := pr.X - pl.X
	var lambda float64
	if useL {
		lambda = dyl / (dyl - dyr)
	} else {
		lambda = dyr / (dyl - dyr)
	}
	if math.IsInf(lambda, 0) {
		lambda = 0
	}
	x0 := pl.X
	if !useL {
		x0 = pr.X
	}
	pdy := pr.Y - pl.Y
	qdy := qr.Y - ql.Y
	usePdy := math.Abs(pdy) < math.Abs(qdy)
	var y0 float64
	switch {
	case useL && usePdy:
		y0 = pl.Y
	case useL && !usePdy:
		y0 = ql.Y
	case !useL && usePdy:
		y0 = pr.Y
	default:
		y0 = qr.Y
	}
	dyUse := pdy
	if !usePdy {
		dyUse = qdy
	}
	z0 := pl.Z
	if !useL {
		z0 = pr.Z
	}
	w0 := ql.Z
	if !useL {
		w0 = qr.Z
	}
	return vec.Vec4{
		X: lambda*dx + x0,
		Y: lambda*dyUse + y0,
		Z: lambda*(pr.Z-pl.Z) + z0,
		W: lambda*(qr.Z-ql.Z) + w0,
	}
}

// Verts bundles a mesh's per-vertex position and normal arrays, the only
// two per-vertex quantities the kernels consult.
type Verts struct {
	Pos    []vec.Vec3
	Normal []vec.Vec3
}

// Shadows01 is the X01 kernel (spec.md §4.5): does vertex p0 of one mesh
// shadow half-edge q1 of the other along x, and if so where (in y,z) does
// the shadow ray cross q1. ok is false when the edge's x-span doesn't
// straddle p0.x at all (no contribution). When it does straddle but the y
// test fails, s is 0 and ok is true, so yz still serves as a bracketing
// point for the caller.
func Shadows01(p0, q1 int, vp, vq Verts, hq []hmesh.Half, expandP float64, reverse bool) (s int, yz vec.Vec2, ok bool) {
	q1s := int(hq[q1].Tail)
	q1e := int(hq[q1].Head)
	p0x := vp.Pos[p0].X
	q1sx := vq.Pos[q1s].X
	q1ex := vq.Pos[q1e].X

	var s01 int
	if reverse {
		sa, sb := 0, 0
		if Shadows(q1sx, p0x, expandP*vq.Normal[q1s].X) {
			sa = 1
		}
		if Shadows(q1ex, p0x, expandP*vq.Normal[q1e].X) {
			sb = 1
		}
		s01 = sa - sb
	} else {
		sa, sb := 0, 0
		if Shadows(p0x, q1ex, expandP*vp.Normal[p0].X) {
			sa = 1
		}
		if Shadows(p0x, q1sx, expandP*vp.Normal[p0].X) {
			sb = 1
		}
		s01 = sa - sb
	}

	if s01 == 0 {
		return 0, vec.Vec2{}, false
	}

	yz01 := Interpolate(vq.Pos[q1s], vq.Pos[q1e], vp.Pos[p0].X)
	if reverse {
		sta2 := vq.Pos[q1s].Sub(vp.Pos[p0]).NormSq()
		end2 := vq.Pos[q1e].Sub(vp.Pos[p0]).NormSq()
		dir := vq.Normal[q1e].Y
		if sta2 < end2 {
			dir = vq.Normal[q1s].Y
		}
		if !Shadows(yz01.X, vp.Pos[p0].Y, expandP*dir) {
			return 0, yz01, true
		}
	} else {
		if !Shadows(vp.Pos[p0].Y, yz01.X, expandP*vp.Normal[p0].Y) {
			return 0, yz01, true
		}
	}
	return s01, yz01, true
}

// X02 answers the vertex-against-face predicate (spec.md §4.6): does
// vertex p0 of mesh P lie in the winding shadow of triangle q2 of mesh Q.
type X02 struct {
	VertsP, VertsQ Verts
	HalfsQ         []hmesh.Half
	Expand         float64
	Forward        bool
}

// Op returns the signed contribution and, if non-zero, the z-height of the
// shadow at p0's (x,y).
func (k X02) Op(p0, q2 int) (s int, z float64, ok bool) {
	var yzzRL [2]vec.Vec3
	kk := 0
	shadows := false
	closestVid := -1
	minMetric := math.Inf(1)
	posP := k.VertsP.Pos[p0]

	for i := 0; i < 3; i++ {
		q1 := 3*q2 + i
		half := k.HalfsQ[q1]
		q1f := q1
		if !half.IsForward() {
			q1f = int(half.Pair)
		}

		if !k.Forward {
			qVert := int(k.HalfsQ[q1f].Tail)
			diff := posP.Sub(k.VertsQ.Pos[qVert])
			metric := diff.NormSq()
			if metric < minMetric {
				minMetric = metric
				closestVid = qVert
			}
		}

		s01, yz01, valid := Shadows01(p0, q1f, k.VertsP, k.VertsQ, k.HalfsQ, k.Expand, !k.Forward)
		if !valid {
			continue
		}
		sign := 1
		if k.Forward == k.HalfsQ[q1].IsForward() {
			sign = -1
		}
		s += s01 * sign
		if kk < 2 && (kk == 0 || (s01 != 0) != shadows) {
			shadows = s01 != 0
			yzzRL[kk] = vec.Vec3{X: yz01.X, Y: yz01.Y, Z: yz01.Y}
			kk++
		}
	}

	if s == 0 {
		return 0, 0, false
	}
	zv := Interpolate(yzzRL[0], yzzRL[1], posP.Y).Y
	if k.Forward {
		if !Shadows(posP.Z, zv, k.Expand*k.VertsP.Normal[p0].Z) {
			return 0, 0, false
		}
	} else {
		dirZ := 0.0
		if closestVid >= 0 {
			dirZ = k.VertsQ.Normal[closestVid].Z
		}
		if !Shadows(zv, posP.Z, k.Expand*dirZ) {
			return 0, 0, false
		}
	}
	return s, zv, true
}

// X11 answers the edge-against-edge predicate (spec.md §4.7): do
// half-edges p1 (mesh P) and q1 (mesh Q) cross in space.
type X11 struct {
	VertsP, VertsQ Verts
	HalfsP, HalfsQ []hmesh.Half
	Expand         float64
}

// Op returns the signed contribution and, if non-zero, the full
// (x, y, z_p, z_q) crossing record.
func (k X11) Op(p1, q1 int) (s int, xyzz vec.Vec4, ok bool) {
	var pRL, qRL [2]vec.Vec3
	kk := 0
	shadows := false

	p0 := [2]int{int(k.HalfsP[p1].Tail), int(k.HalfsP[p1].Head)}
	q0 := [2]int{int(k.HalfsQ[q1].Tail), int(k.HalfsQ[q1].Head)}

	for i := 0; i < 2; i++ {
		s01, yz01, valid := Shadows01(p0[i], q1, k.VertsP, k.VertsQ, k.HalfsQ, k.Expand, false)
		if !valid {
			continue
		}
		sign := -1
		if i != 0 {
			sign = 1
		}
		s += s01 * sign
		if kk < 2 && (kk == 0 || (s01 != 0) != shadows) {
			shadows = s01 != 0
			pRL[kk] = k.VertsP.Pos[p0[i]]
			qRL[kk] = vec.Vec3{X: pRL[kk].X, Y: yz01.X, Z: yz01.Y}
			kk++
		}
	}

	for i := 0; i < 2; i++ {
		s10, yz10, valid := Shadows01(q0[i], p1, k.VertsQ, k.VertsP, k.HalfsP, k.Expand, true)
		if !valid {
			continue
		}
		sign := -1
		if i != 0 {
			sign = 1
		}
		s += s10 * sign
		if kk < 2 && (kk == 0 || (s10 != 0) != shadows) {
			shadows = s10 != 0
			qRL[kk] = k.VertsQ.Pos[q0[i]]
			pRL[kk] = vec.Vec3{X: qRL[kk].X, Y: yz10.X, Z: yz10.Y}
			kk++
		}
	}

	if s == 0 {
		return 0, vec.Vec4{}, false
	}
	xyzz = Intersect(pRL[0], pRL[1], qRL[0], qRL[1])

	p1s := int(k.HalfsP[p1].Tail)
	p1e := int(k.HalfsP[p1].Head)
	pt := vec.Vec3{X: xyzz.X, Y: xyzz.Y, Z: xyzz.Z}
	start2 := k.VertsP.Pos[p1s].Sub(pt).NormSq()
	end2 := k.VertsP.Pos[p1e].Sub(pt).NormSq()
	dir := k.VertsP.Normal[p1e].Z
	if start2 < end2 {
		dir = k.VertsP.Normal[p1s].Z
	}
	if !Shadows(xyzz.Z, xyzz.W, k.Expand*dir) {
		return 0, vec.Vec4{}, false
	}
	return s, xyzz, true
}

// X12 answers the edge-against-face predicate (spec.md §4.8): where (if
// anywhere) half-edge p1 of mesh P crosses triangle q2 of mesh Q, composed
// from two X02 lookups (the edge's endpoints) and three X11 lookups (the
// triangle's three edges).
type X12 struct {
	HalfsP, HalfsQ []hmesh.Half
	VertsP         Verts
	K02            X02
	K11            X11
	Forward        bool
}

// Op returns the signed contribution and, if non-zero, the crossing point
// in P's original (x,y,z) frame.
func (k X12) Op(p1, q2 int) (s int, point vec.Vec3, ok bool) {
	var xzyLR0, xzyLR1 [2]vec.Vec3
	shadows := false
	kk := 0
	h := k.HalfsP[p1]

	ends := [2]int32{h.Tail, h.Head}
	for _, vid := range ends {
		sv, z, valid := k.K02.Op(int(vid), q2)
		if !valid {
			continue
		}
		f := (vid == h.Tail) == k.Forward
		sign := -1
		if f {
			sign = 1
		}
		s += sv * sign
		if kk < 2 && (kk == 0 || (sv != 0) != shadows) {
			shadows = sv != 0
			p := k.VertsP.Pos[vid]
			xzyLR0[kk] = vec.Vec3{X: p.X, Y: p.Z, Z: p.Y}
			xzyLR1[kk] = vec.Vec3{X: xzyLR0[kk].X, Y: z, Z: xzyLR0[kk].Z}
			kk++
		}
	}

	for i := 0; i < 3; i++ {
		q1 := 3*q2 + i
		half := k.HalfsQ[q1]
		q1f := q1
		if !half.IsForward() {
			q1f = int(half.Pair)
		}
		var sv int
		var xyzz vec.Vec4
		var valid bool
		if k.Forward {
			sv, xyzz, valid = k.K11.Op(p1, q1f)
		} else {
			sv, xyzz, valid = k.K11.Op(q1f, p1)
		}
		if !valid {
			continue
		}
		sign := 1
		if half.IsForward() {
			sign = -1
		}
		s += sv * sign
		if kk < 2 && (kk == 0 || (sv != 0) != shadows) {
			shadows = sv != 0
			xzyLR0[kk] = vec.Vec3{X: xyzz.X, Y: xyzz.Z, Z: xyzz.Y}
			xzyLR1[kk] = vec.Vec3{X: xzyLR0[kk].X, Y: xyzz.W, Z: xzyLR0[kk].Z}
			if !k.Forward {
				xzyLR0[kk].Y, xzyLR1[kk].Y = xzyLR1[kk].Y, xzyLR0[kk].Y
			}
			kk++
		}
	}

	if s == 0 {
		return 0, vec.Vec3{}, false
	}
	xzyy := Intersect(xzyLR0[0], xzyLR0[1], xzyLR1[0], xzyLR1[1])
	return s, vec.Vec3{X: xzyy.X, Y: xzyy.Z, Z: xzyy.Y}, true
}
