package boolean03

import (
	"testing"

	"github.com/lignincad/lignin/pkg/boolmesh/bounds"
	"github.com/lignincad/lignin/pkg/boolmesh/collider"
	"github.com/lignincad/lignin/pkg/boolmesh/hmesh"
	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

// tetra returns a scaled, offset tetrahedron's vertices and a
// closed-orientable half-edge mesh built from an outward-CCW face winding.
func tetra(t *testing.T, scale float64, offset vec.Vec3) ([]vec.Vec3, []hmesh.Half) {
	t.Helper()
	v := func(x, y, z float64) vec.Vec3 {
		return vec.Vec3{X: offset.X + x*scale, Y: offset.Y + y*scale, Z: offset.Z + z*scale}
	}
	pos := []vec.Vec3{v(0, 0, 0), v(1, 0, 0), v(0, 1, 0), v(0, 0, 1)}
	idx := [][3]int32{
		{0, 2, 1}, // opposite v3
		{0, 1, 3}, // opposite v2
		{0, 3, 2}, // opposite v1
		{1, 2, 3}, // opposite v0
	}
	halfs, err := hmesh.Build(idx)
	if err != nil {
		t.Fatalf("hmesh.Build: %v", err)
	}
	return pos, halfs
}

func meshView(t *testing.T, pos []vec.Vec3, halfs []hmesh.Half) MeshView {
	t.Helper()
	bb := bounds.FromPoints(pos...)
	n := len(halfs) / 3
	boxes := make([]bounds.Box, n)
	mortons := make([]uint32, n)
	for f := 0; f < n; f++ {
		p0, p1, p2 := pos[halfs[3*f].Tail], pos[halfs[3*f+1].Tail], pos[halfs[3*f+2].Tail]
		boxes[f] = bounds.FromPoints(p0, p1, p2)
		centroid := p0.Add(p1).Add(p2).Scale(1.0 / 3.0)
		mortons[f] = bounds.Morton(centroid, bb)
	}
	vn := hmesh.VertNormals(pos, halfs)
	return MeshView{Pos: pos, VertNorm: vn, Halfs: halfs, Collider: collider.New(boxes, mortons)}
}

func TestWinding03VertexFullyInsideIsNonzero(t *testing.T) {
	posP, halfsP := tetra(t, 1, vec.Vec3{X: 2, Y: 2, Z: 2})
	posQ, halfsQ := tetra(t, 100, vec.Vec3{X: 0, Y: 0, Z: 0})

	p := meshView(t, posP, halfsP)
	q := meshView(t, posQ, halfsQ)

	w := Winding03(p, q, 1e-9, true)
	if len(w) != len(posP) {
		t.Fatalf("len(w03) = %d, want %d", len(w), len(posP))
	}
	for i, wi := range w {
		if wi == 0 {
			t.Errorf("vertex %d of the inner tetrahedron should have nonzero winding inside the outer one, got 0", i)
		}
	}
}

func TestWinding03VertexFullyOutsideIsZero(t *testing.T) {
	posP, halfsP := tetra(t, 1, vec.Vec3{X: 1000, Y: 1000, Z: 1000})
	posQ, halfsQ := tetra(t, 1, vec.Vec3{X: 0, Y: 0, Z: 0})

	p := meshView(t, posP, halfsP)
	q := meshView(t, posQ, halfsQ)

	w := Winding03(p, q, 1e-9, true)
	for i, wi := range w {
		if wi != 0 {
			t.Errorf("vertex %d is nowhere near the other tetrahedron, want winding 0, got %d", i, wi)
		}
	}
}

func TestIntersect12FindsNoCrossingWhenDisjoint(t *testing.T) {
	posP, halfsP := tetra(t, 1, vec.Vec3{X: 1000, Y: 1000, Z: 1000})
	posQ, halfsQ := tetra(t, 1, vec.Vec3{X: 0, Y: 0, Z: 0})

	p := meshView(t, posP, halfsP)
	q := meshView(t, posQ, halfsQ)

	pairs, _, _ := Intersect12(p, q, 1e-9, true)
	if len(pairs) != 0 {
		t.Errorf("Intersect12 on disjoint tetrahedra = %d pairs, want 0", len(pairs))
	}
}
