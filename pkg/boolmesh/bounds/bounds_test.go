package bounds

import (
	"math"
	"testing"

	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

func TestBoxUnionGrows(t *testing.T) {
	b := Empty()
	b = b.Union(vec.Vec3{X: 1, Y: 2, Z: 3})
	b = b.Union(vec.Vec3{X: -1, Y: 5, Z: 0})
	if b.Min != (vec.Vec3{X: -1, Y: 2, Z: 0}) {
		t.Errorf("Min = %+v, want {-1 2 0}", b.Min)
	}
	if b.Max != (vec.Vec3{X: 1, Y: 5, Z: 3}) {
		t.Errorf("Max = %+v, want {1 5 3}", b.Max)
	}
}

func TestLongestAxis(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		want int
	}{
		{"x longest", FromPoints(vec.Vec3{}, vec.Vec3{X: 10, Y: 1, Z: 1}), 0},
		{"y longest", FromPoints(vec.Vec3{}, vec.Vec3{X: 1, Y: 10, Z: 1}), 1},
		{"z longest", FromPoints(vec.Vec3{}, vec.Vec3{X: 1, Y: 1, Z: 10}), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.LongestAxis(); got != tt.want {
				t.Errorf("LongestAxis() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	a := FromPoints(vec.Vec3{}, vec.Vec3{X: 1, Y: 1, Z: 1})
	b := FromPoints(vec.Vec3{X: 0.5}, vec.Vec3{X: 2, Y: 2, Z: 2})
	c := FromPoints(vec.Vec3{X: 5}, vec.Vec3{X: 6})
	if !a.Overlaps(b) {
		t.Error("expected a, b to overlap")
	}
	if a.Overlaps(c) {
		t.Error("expected a, c to not overlap")
	}
}

func TestMortonMonotoneOrdering(t *testing.T) {
	bb := FromPoints(vec.Vec3{}, vec.Vec3{X: 10, Y: 10, Z: 10})
	a := Morton(vec.Vec3{X: 1, Y: 1, Z: 1}, bb)
	b := Morton(vec.Vec3{X: 9, Y: 9, Z: 9}, bb)
	if a >= b {
		t.Errorf("expected morton(near-origin) < morton(near-corner), got %d >= %d", a, b)
	}
}

func TestMortonNaNIsSentinel(t *testing.T) {
	bb := FromPoints(vec.Vec3{}, vec.Vec3{X: 1, Y: 1, Z: 1})
	got := Morton(vec.Vec3{X: math.NaN()}, bb)
	if got != NoCode {
		t.Errorf("Morton(NaN) = %d, want NoCode (%d)", got, NoCode)
	}
}

func TestMortonDeterministic(t *testing.T) {
	bb := FromPoints(vec.Vec3{}, vec.Vec3{X: 3, Y: 3, Z: 3})
	p := vec.Vec3{X: 1.234, Y: 2.5, Z: 0.1}
	if Morton(p, bb) != Morton(p, bb) {
		t.Error("Morton must be a pure function of its inputs")
	}
}
