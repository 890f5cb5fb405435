// Package bounds implements the axis-aligned bounding box and 30-bit Morton
// code used to give every triangle/vertex/half-edge in the pipeline a
// deterministic spatial sort key, grounded on original_source's
// src/manifold/bounds.rs and src/manifold/collider.rs.
package bounds

import (
	"math"

	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

// Box is an axis-aligned bounding box. The zero value is NOT empty (unlike
// the Rust original's Min=+inf/Max=-inf default) — use Empty() to build one
// that unions correctly from nothing.
type Box struct {
	Min, Max vec.Vec3
}

// Empty returns a box with no volume, ready to be grown via Union.
func Empty() Box {
	return Box{
		Min: vec.Vec3{X: math.MaxFloat64, Y: math.MaxFloat64, Z: math.MaxFloat64},
		Max: vec.Vec3{X: -math.MaxFloat64, Y: -math.MaxFloat64, Z: -math.MaxFloat64},
	}
}

// FromPoints builds a box containing every point in pts.
func FromPoints(pts ...vec.Vec3) Box {
	b := Empty()
	for _, p := range pts {
		b = b.Union(p)
	}
	return b
}

// Union returns the box grown to also contain p.
func (b Box) Union(p vec.Vec3) Box {
	return Box{
		Min: vec.Vec3{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)},
		Max: vec.Vec3{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)},
	}
}

// UnionBox returns the box grown to also contain o.
func (b Box) UnionBox(o Box) Box {
	return Box{
		Min: vec.Vec3{X: math.Min(b.Min.X, o.Min.X), Y: math.Min(b.Min.Y, o.Min.Y), Z: math.Min(b.Min.Z, o.Min.Z)},
		Max: vec.Vec3{X: math.Max(b.Max.X, o.Max.X), Y: math.Max(b.Max.Y, o.Max.Y), Z: math.Max(b.Max.Z, o.Max.Z)},
	}
}

// Size returns (max - min) per axis.
func (b Box) Size() vec.Vec3 { return b.Max.Sub(b.Min) }

// LongestAxis returns 0/1/2 for the axis (x/y/z) with the largest extent.
func (b Box) LongestAxis() int {
	s := b.Size()
	if s.X > s.Y && s.X > s.Z {
		return 0
	}
	if s.Y > s.Z {
		return 1
	}
	return 2
}

// Scale returns the largest absolute coordinate value in the box, the
// reference quantity K_PRECISION is multiplied against to derive eps.
func (b Box) Scale() float64 {
	m := 0.0
	for _, v := range []float64{b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z} {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// Overlaps reports whether b and o intersect (touching counts as overlap).
func (b Box) Overlaps(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Contains reports whether p lies within b.
func (b Box) Contains(p vec.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// mortonBits is the per-axis quantization grid: 1024 == 2^10, three axes
// interleaved gives a 30-bit code.
const mortonBits = 1024

// NoCode is a sentinel larger than any valid Morton code, used to push
// detached or NaN points to the end of a Morton-sorted sequence so they can
// be truncated (spec.md §4.1, §4.14).
const NoCode uint32 = math.MaxUint32

// spreadBits3 interleaves the low 10 bits of v with two zero bits between
// each source bit (the classic 3-bit spread used for 3-D Morton codes).
func spreadBits3(v uint32) uint32 {
	v &= 0x3FF
	v = (v | (v << 16)) & 0xFF0000FF
	v = (v | (v << 8)) & 0x0F00F00F
	v = (v | (v << 4)) & 0xC30C30C3
	v = (v | (v << 2)) & 0x49249249
	return v
}

// Morton maps p into the unit cube of bb, quantizes each axis into
// [0, 1024), bit-spreads, and interleaves into a 30-bit code. NaN input (a
// detached point) returns NoCode; infinite coordinates clamp to the box edge.
func Morton(p vec.Vec3, bb Box) uint32 {
	size := bb.Size()
	axis := func(x, lo, sz float64) uint32 {
		var t float64
		if sz > 0 {
			t = (x - lo) / sz
		}
		if math.IsNaN(t) {
			return mortonBits - 1
		}
		if t < 0 {
			t = 0
		}
		if t > 1 {
			t = 1
		}
		q := uint32(t * (mortonBits - 1))
		if q > mortonBits-1 {
			q = mortonBits - 1
		}
		return q
	}

	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
		return NoCode
	}

	x := spreadBits3(axis(p.X, bb.Min.X, size.X))
	y := spreadBits3(axis(p.Y, bb.Min.Y, size.Y))
	z := spreadBits3(axis(p.Z, bb.Min.Z, size.Z))
	return x*4 + y*2 + z
}
