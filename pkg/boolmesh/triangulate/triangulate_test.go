package triangulate

import (
	"testing"

	"github.com/lignincad/lignin/pkg/boolmesh/hmesh"
	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

func TestSingleTriangulatePassesThrough(t *testing.T) {
	h := []hmesh.Half{
		{Tail: 0, Head: 1},
		{Tail: 1, Head: 2},
		{Tail: 2, Head: 0},
	}
	tris := singleTriangulate(h)
	if len(tris) != 1 {
		t.Fatalf("len(tris) = %d, want 1", len(tris))
	}
	if tris[0] != ([3]int32{0, 1, 2}) {
		t.Errorf("tris[0] = %v, want {0 1 2}", tris[0])
	}
}

func TestFaceDispatchesByEdgeCount(t *testing.T) {
	pos := []vec.Vec3{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
	}
	h := []hmesh.Half{
		{Tail: 0, Head: 1},
		{Tail: 1, Head: 2},
		{Tail: 2, Head: 0},
	}
	normal := vec.Vec3{Z: 1}
	tris, err := Face(pos, normal, h, 1e-9)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if len(tris) != 1 {
		t.Fatalf("len(tris) = %d, want 1", len(tris))
	}
}

func TestEarClipPentagon(t *testing.T) {
	// A convex pentagon in the XY plane, CCW.
	poly := []polyVert{
		{pos: vec.Vec2{X: 0, Y: 0}, vid: 0},
		{pos: vec.Vec2{X: 2, Y: 0}, vid: 1},
		{pos: vec.Vec2{X: 3, Y: 2}, vid: 2},
		{pos: vec.Vec2{X: 1, Y: 3}, vid: 3},
		{pos: vec.Vec2{X: -1, Y: 2}, vid: 4},
	}
	tris, err := earClip(poly, 1e-9)
	if err != nil {
		t.Fatalf("earClip: %v", err)
	}
	if len(tris) != 3 {
		t.Fatalf("len(tris) = %d, want 3 (pentagon needs n-2 triangles)", len(tris))
	}
}

func TestEarClipSquareWithReflexVertex(t *testing.T) {
	// An "L"/arrow-shaped pentagon with one reflex vertex at index 2.
	poly := []polyVert{
		{pos: vec.Vec2{X: 0, Y: 0}, vid: 0},
		{pos: vec.Vec2{X: 4, Y: 0}, vid: 1},
		{pos: vec.Vec2{X: 2, Y: 1}, vid: 2}, // reflex notch
		{pos: vec.Vec2{X: 4, Y: 4}, vid: 3},
		{pos: vec.Vec2{X: 0, Y: 4}, vid: 4},
	}
	tris, err := earClip(poly, 1e-9)
	if err != nil {
		t.Fatalf("earClip: %v", err)
	}
	if len(tris) != 3 {
		t.Fatalf("len(tris) = %d, want 3", len(tris))
	}
}

func TestMergeHolesPicksLargestLoopAsOuter(t *testing.T) {
	outer := []polyVert{
		{pos: vec.Vec2{X: 0, Y: 0}, vid: 0},
		{pos: vec.Vec2{X: 10, Y: 0}, vid: 1},
		{pos: vec.Vec2{X: 10, Y: 10}, vid: 2},
		{pos: vec.Vec2{X: 0, Y: 10}, vid: 3},
	}
	hole := []polyVert{
		{pos: vec.Vec2{X: 4, Y: 4}, vid: 4},
		{pos: vec.Vec2{X: 6, Y: 4}, vid: 5},
		{pos: vec.Vec2{X: 5, Y: 6}, vid: 6},
	}
	merged, err := mergeHoles([][]polyVert{hole, outer})
	if err != nil {
		t.Fatalf("mergeHoles: %v", err)
	}
	if len(merged) != len(outer)+len(hole)+2 {
		t.Errorf("len(merged) = %d, want %d", len(merged), len(outer)+len(hole)+2)
	}
	if merged[0].vid != outer[0].vid {
		t.Errorf("merged[0].vid = %d, want %d (the larger loop is the outer boundary)", merged[0].vid, outer[0].vid)
	}
}
