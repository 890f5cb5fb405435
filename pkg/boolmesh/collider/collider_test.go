package collider

import (
	"sort"
	"testing"

	"github.com/lignincad/lignin/pkg/boolmesh/bounds"
	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

func boxAt(x, y, z float64) bounds.Box {
	return bounds.FromPoints(vec.Vec3{X: x, Y: y, Z: z}, vec.Vec3{X: x + 1, Y: y + 1, Z: z + 1})
}

func TestEmptyTreeRecordsNothing(t *testing.T) {
	b := New(nil, nil)
	called := false
	b.Collision([]bounds.Box{boxAt(0, 0, 0)}, func(int, int) { called = true })
	if called {
		t.Error("expected no records from an empty tree")
	}
}

func TestSingleLeafOverlap(t *testing.T) {
	leaf := boxAt(0, 0, 0)
	b := New([]bounds.Box{leaf}, []uint32{42})
	var got []int
	b.Collision([]bounds.Box{boxAt(0.5, 0.5, 0.5)}, func(q, l int) { got = append(got, l) })
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("got %v, want [0]", got)
	}
}

func TestCollisionFindsAllOverlaps(t *testing.T) {
	scene := bounds.FromPoints(vec.Vec3{}, vec.Vec3{X: 20, Y: 20, Z: 20})
	leaves := []bounds.Box{
		boxAt(0, 0, 0),
		boxAt(5, 5, 5),
		boxAt(10, 10, 10),
		boxAt(15, 15, 15),
		boxAt(0.2, 0.2, 0.2), // overlaps leaf 0
	}
	mortons := make([]uint32, len(leaves))
	for i, l := range leaves {
		c := l.Min.Add(l.Max).Scale(0.5)
		mortons[i] = bounds.Morton(c, scene)
	}
	b := New(leaves, mortons)
	if b.LeafCount() != len(leaves) {
		t.Fatalf("LeafCount() = %d, want %d", b.LeafCount(), len(leaves))
	}

	var got []int
	b.Collision([]bounds.Box{boxAt(0, 0, 0)}, func(q, l int) { got = append(got, l) })
	sort.Ints(got)
	want := []int{0, 4}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCollisionNoOverlapIsSilent(t *testing.T) {
	scene := bounds.FromPoints(vec.Vec3{}, vec.Vec3{X: 100, Y: 100, Z: 100})
	leaves := []bounds.Box{boxAt(0, 0, 0), boxAt(50, 50, 50)}
	mortons := []uint32{
		bounds.Morton(vec.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, scene),
		bounds.Morton(vec.Vec3{X: 50.5, Y: 50.5, Z: 50.5}, scene),
	}
	b := New(leaves, mortons)
	called := false
	b.Collision([]bounds.Box{boxAt(90, 90, 90)}, func(int, int) { called = true })
	if called {
		t.Error("expected no overlap for a disjoint query box")
	}
}
