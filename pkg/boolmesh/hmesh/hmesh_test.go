package hmesh

import (
	"testing"

	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

func tetrahedron() [][3]int32 {
	// Four CCW-wound faces of a closed tetrahedron (vertex 0 at apex).
	return [][3]int32{
		{0, 1, 2},
		{0, 2, 3},
		{0, 3, 1},
		{1, 3, 2},
	}
}

func TestBuildTetrahedronIsManifold(t *testing.T) {
	halfs, err := Build(tetrahedron())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(halfs) != 12 {
		t.Fatalf("len(halfs) = %d, want 12", len(halfs))
	}
	if !IsManifold(halfs) {
		t.Error("expected tetrahedron half-edges to be manifold")
	}
}

func TestBuildCanonicalizesMinTailFirst(t *testing.T) {
	halfs, err := Build(tetrahedron())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for f := 0; f < len(halfs)/3; f++ {
		base := 3 * f
		min := halfs[base].Tail
		for i := 1; i < 3; i++ {
			if halfs[base+i].Tail < min {
				t.Errorf("face %d: half-edge 0 tail %d is not the minimum (found %d at slot %d)", f, min, halfs[base+i].Tail, i)
			}
		}
	}
}

func TestBuildRejectsSameDirectionDuplicate(t *testing.T) {
	// Two faces winding the same edge (1,2) in the same direction (not
	// reversed) can never belong to a consistent closed orientable surface.
	tris := [][3]int32{
		{0, 1, 2},
		{3, 1, 2},
	}
	if _, err := Build(tris); err == nil {
		t.Error("expected an error for a same-direction duplicate edge")
	}
}

func TestBuildRejectsNonManifoldEdge(t *testing.T) {
	// Edge (1,2) shared by three faces.
	tris := [][3]int32{
		{0, 1, 2},
		{3, 2, 1},
		{4, 1, 2},
	}
	if _, err := Build(tris); err == nil {
		t.Error("expected an error for an edge shared by three faces")
	}
}

func TestFaceNormalsUnitLength(t *testing.T) {
	pos := []vec.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	}
	halfs, err := Build(tetrahedron())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	normals := FaceNormals(pos, halfs)
	if len(normals) != 4 {
		t.Fatalf("len(normals) = %d, want 4", len(normals))
	}
	for i, n := range normals {
		if got := n.Norm(); got < 0.999 || got > 1.001 {
			t.Errorf("face %d normal norm = %f, want ~1", i, got)
		}
	}
}

func TestVertNormalsCoverAllVertices(t *testing.T) {
	pos := []vec.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
	}
	halfs, err := Build(tetrahedron())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	normals := VertNormals(pos, halfs)
	if len(normals) != 4 {
		t.Fatalf("len(normals) = %d, want 4", len(normals))
	}
	for i, n := range normals {
		if got := n.Norm(); got < 0.999 || got > 1.001 {
			t.Errorf("vertex %d normal norm = %f, want ~1", i, got)
		}
	}
}

func TestNextOfWrapsEveryThree(t *testing.T) {
	tests := []struct {
		hid  int
		want int
	}{
		{0, 1}, {1, 2}, {2, 0},
		{3, 4}, {4, 5}, {5, 3},
	}
	for _, tt := range tests {
		if got := NextOf(tt.hid); got != tt.want {
			t.Errorf("NextOf(%d) = %d, want %d", tt.hid, got, tt.want)
		}
	}
}
