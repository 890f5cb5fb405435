package kernel

import (
	"testing"

	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

func TestShadowsTiesBreakOnDir(t *testing.T) {
	if !Shadows(1, 1, -0.5) {
		t.Error("equal values with negative dir should shadow")
	}
	if Shadows(1, 1, 0.5) {
		t.Error("equal values with positive dir should not shadow")
	}
	if !Shadows(1, 2, 0) {
		t.Error("1 < 2 should shadow regardless of dir")
	}
}

func TestInterpolateMidpoint(t *testing.T) {
	pl := vec.Vec3{X: 0, Y: 0, Z: 0}
	pr := vec.Vec3{X: 2, Y: 4, Z: 6}
	got := Interpolate(pl, pr, 1)
	want := vec.Vec2{X: 2, Y: 3}
	if got != want {
		t.Errorf("Interpolate = %+v, want %+v", got, want)
	}
}

func TestInterpolateDegenerateXReturnsLeft(t *testing.T) {
	pl := vec.Vec3{X: 1, Y: 5, Z: 7}
	pr := vec.Vec3{X: 1, Y: 9, Z: 11}
	got := Interpolate(pl, pr, 1)
	if got.X != pl.Y || got.Y != pl.Z {
		t.Errorf("Interpolate degenerate = %+v, want left endpoint (%v,%v)", got, pl.Y, pl.Z)
	}
}

func TestIntersectCrossing(t *testing.T) {
	pl := vec.Vec3{X: 0, Y: -1, Z: 0}
	pr := vec.Vec3{X: 2, Y: 1, Z: 0}
	ql := vec.Vec3{X: 0, Y: 1, Z: 0}
	qr := vec.Vec3{X: 2, Y: -1, Z: 0}
	got := Intersect(pl, pr, ql, qr)
	if got.X < 0.9 || got.X > 1.1 {
		t.Errorf("Intersect.X = %v, want ~1 (segments cross at midpoint)", got.X)
	}
}
