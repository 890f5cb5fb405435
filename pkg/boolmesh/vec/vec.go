// Package vec provides the real-valued vector types shared across the
// boolmesh pipeline: vec3 for positions/normals, vec2 for the projected
// triangulation plane, and vec4 for the intersect() kernel's packed result.
package vec

import "math"

// Vec3 is a real 3-tuple (x, y, z).
type Vec3 struct {
	X, Y, Z float64
}

// Vec2 is a real 2-tuple (x, y), used for axis-aligned face projections.
type Vec2 struct {
	X, Y float64
}

// Vec4 is a real 4-tuple, the packed (x, y, zP, zQ) result of Intersect.
type Vec4 struct {
	X, Y, Z, W float64
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) NormSq() float64 { return a.Dot(a) }
func (a Vec3) Norm() float64   { return math.Sqrt(a.NormSq()) }

// Normalize returns a, scaled to unit length. The zero vector maps to itself.
func (a Vec3) Normalize() Vec3 {
	n := a.Norm()
	if n == 0 {
		return a
	}
	return a.Scale(1 / n)
}

// Axis returns the i'th component (0=x, 1=y, 2=z).
func (a Vec3) Axis(i int) float64 {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}

func (a Vec2) Sub(b Vec2) Vec2       { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Add(b Vec2) Vec2       { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Scale(s float64) Vec2  { return Vec2{a.X * s, a.Y * s} }
func (a Vec2) Dot(b Vec2) float64    { return a.X*b.X + a.Y*b.Y }
func (a Vec2) NormSq() float64       { return a.Dot(a) }
func (a Vec2) Norm() float64         { return math.Sqrt(a.NormSq()) }

// Det2 is the 2x2 determinant [a;b], i.e. a.x*b.y - a.y*b.x.
func Det2(a, b Vec2) float64 { return a.X*b.Y - a.Y*b.X }

// SafeNormalize normalizes v, returning the zero vector if the result would
// contain a non-finite component (degenerate edge direction).
func SafeNormalize(v Vec2) Vec2 {
	n := v.Norm()
	if n == 0 {
		return Vec2{}
	}
	r := v.Scale(1 / n)
	if math.IsNaN(r.X) || math.IsNaN(r.Y) || math.IsInf(r.X, 0) || math.IsInf(r.Y, 0) {
		return Vec2{}
	}
	return r
}

// Projection drops the dominant component of a face normal, mapping 3-D
// points on that plane to 2-D without a scale change on the other two
// axes. Sign is flipped when needed so the projected winding still matches
// the 3-D one (get_axis_aligned_projection).
type Projection struct {
	flip bool
	axis int // the dropped axis: 0=x, 1=y, 2=z
}

// AxisAlignedProjection picks, for a triangle normal n, which axis to drop
// (the one n has the largest component along) and whether to flip the
// first output axis so 2-D winding still agrees with the 3-D one.
func AxisAlignedProjection(n Vec3) Projection {
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	var axis int
	var max float64
	switch {
	case az > ax && az > ay:
		axis, max = 2, n.Z
	case ay > ax:
		axis, max = 1, n.Y
	default:
		axis, max = 0, n.X
	}
	return Projection{axis: axis, flip: max < 0}
}

// Project maps p onto the 2-D plane this projection was built for.
func (pr Projection) Project(p Vec3) Vec2 {
	var v Vec2
	switch pr.axis {
	case 2:
		v = Vec2{X: p.X, Y: p.Y}
	case 1:
		v = Vec2{X: p.Z, Y: p.X}
	default:
		v = Vec2{X: p.Y, Y: p.Z}
	}
	if pr.flip {
		v.X = -v.X
	}
	return v
}

// IsCCW2D returns 1/-1/0 for CCW/CW/degenerate winding of p0,p1,p2. The
// triangle counts as degenerate when its height over the longer of its two
// edges from p0 is at most tol/2.
func IsCCW2D(p0, p1, p2 Vec2, tol float64) int {
	v1 := p1.Sub(p0)
	v2 := p2.Sub(p0)
	area := v1.X*v2.Y - v1.Y*v2.X
	base := math.Max(v1.NormSq(), v2.NormSq())
	if area*area*4 <= base*tol*tol {
		return 0
	}
	if area > 0 {
		return 1
	}
	return -1
}

// IsCCW3D projects p0,p1,p2 along n's dominant axis and tests 2-D winding.
func IsCCW3D(p0, p1, p2, n Vec3, tol float64) int {
	pr := AxisAlignedProjection(n)
	return IsCCW2D(pr.Project(p0), pr.Project(p1), pr.Project(p2), tol)
}
