package vec

import "testing"

func TestCrossProductPerpendicular(t *testing.T) {
	a := Vec3{X: 1, Y: 0, Z: 0}
	b := Vec3{X: 0, Y: 1, Z: 0}
	c := a.Cross(b)
	if c != (Vec3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("Cross = %+v, want {0 0 1}", c)
	}
}

func TestNormalizeZeroVectorIsIdentity(t *testing.T) {
	z := Vec3{}
	if z.Normalize() != z {
		t.Error("Normalize of the zero vector must return itself")
	}
}

func TestSafeNormalizeDegenerate(t *testing.T) {
	got := SafeNormalize(Vec2{})
	if got != (Vec2{}) {
		t.Errorf("SafeNormalize({}) = %+v, want zero vector", got)
	}
}

func TestAxisAlignedProjectionDropsDominantAxis(t *testing.T) {
	tests := []struct {
		name string
		n    Vec3
		p    Vec3
		want Vec2
	}{
		{"drop z", Vec3{X: 0, Y: 0, Z: 1}, Vec3{X: 2, Y: 3, Z: 4}, Vec2{X: 2, Y: 3}},
		{"drop y", Vec3{X: 0, Y: 1, Z: 0}, Vec3{X: 2, Y: 3, Z: 4}, Vec2{X: 4, Y: 2}},
		{"drop x", Vec3{X: 1, Y: 0, Z: 0}, Vec3{X: 2, Y: 3, Z: 4}, Vec2{X: 3, Y: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pr := AxisAlignedProjection(tt.n)
			if got := pr.Project(tt.p); got != tt.want {
				t.Errorf("Project() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestIsCCW2DOrientation(t *testing.T) {
	ccw := IsCCW2D(Vec2{}, Vec2{X: 1}, Vec2{Y: 1}, 1e-9)
	if ccw != 1 {
		t.Errorf("IsCCW2D(ccw triangle) = %d, want 1", ccw)
	}
	cw := IsCCW2D(Vec2{}, Vec2{Y: 1}, Vec2{X: 1}, 1e-9)
	if cw != -1 {
		t.Errorf("IsCCW2D(cw triangle) = %d, want -1", cw)
	}
}

func TestIsCCW2DDegenerate(t *testing.T) {
	got := IsCCW2D(Vec2{}, Vec2{X: 1}, Vec2{X: 2}, 1e-6)
	if got != 0 {
		t.Errorf("IsCCW2D(collinear) = %d, want 0", got)
	}
}
