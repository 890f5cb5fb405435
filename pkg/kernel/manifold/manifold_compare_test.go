package manifold

import (
	"math"
	"testing"

	"github.com/lignincad/lignin/pkg/kernel"
	"github.com/lignincad/lignin/pkg/kernel/sdfx"
)

// meshVolume sums signed tetrahedron volumes from the origin to each
// triangle, the same formula boolmesh.Manifold.Volume uses on its own
// half-edge representation.
func meshVolume(m *kernel.Mesh) float64 {
	var v float64
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		ax, ay, az := float64(m.Vertices[3*a]), float64(m.Vertices[3*a+1]), float64(m.Vertices[3*a+2])
		bx, by, bz := float64(m.Vertices[3*b]), float64(m.Vertices[3*b+1]), float64(m.Vertices[3*b+2])
		cx, cy, cz := float64(m.Vertices[3*c]), float64(m.Vertices[3*c+1]), float64(m.Vertices[3*c+2])
		v += (ax*(by*cz-bz*cy) - ay*(bx*cz-bz*cx) + az*(bx*cy-by*cx)) / 6
	}
	return math.Abs(v)
}

// TestBoxVolumeAgainstSdfx cross-checks the exact winding-number backend
// against the teacher's approximate marching-cubes backend: both kernels
// build the "same" box from the shared kernel.Kernel interface, and their
// tessellated volumes should agree up to marching cubes' discretization
// error.
func TestBoxVolumeAgainstSdfx(t *testing.T) {
	mk := mustNew(t)
	sk := sdfx.New()

	const x, y, z = 10.0, 20.0, 30.0
	want := x * y * z

	mMesh, err := mk.ToMesh(mk.Box(x, y, z))
	if err != nil {
		t.Fatalf("manifold ToMesh: %v", err)
	}
	sMesh, err := sk.ToMesh(sk.Box(x, y, z))
	if err != nil {
		t.Fatalf("sdfx ToMesh: %v", err)
	}

	mVol := meshVolume(mMesh)
	sVol := meshVolume(sMesh)

	if math.Abs(mVol-want) > 1e-6 {
		t.Errorf("manifold box volume = %f, want %f", mVol, want)
	}
	// Marching cubes only approximates sharp corners at finite resolution.
	if rel := math.Abs(sVol-want) / want; rel > 0.02 {
		t.Errorf("sdfx box volume = %f, want ~%f (relative error %f > 0.02)", sVol, want, rel)
	}
}

// TestDifferenceVolumeAgainstSdfx cross-checks a Boolean result, not just a
// primitive: a box with a smaller box removed from one corner should leave
// (nearly) the same remaining volume under both backends.
func TestDifferenceVolumeAgainstSdfx(t *testing.T) {
	mk := mustNew(t)
	sk := sdfx.New()

	outer, inner := 10.0, 4.0
	want := outer*outer*outer - inner*inner*inner

	mDiff := mk.Difference(mk.Box(outer, outer, outer), mk.Box(inner, inner, inner))
	sDiff := sk.Difference(sk.Box(outer, outer, outer), sk.Box(inner, inner, inner))

	mMesh, err := mk.ToMesh(mDiff)
	if err != nil {
		t.Fatalf("manifold ToMesh: %v", err)
	}
	sMesh, err := sk.ToMesh(sDiff)
	if err != nil {
		t.Fatalf("sdfx ToMesh: %v", err)
	}

	mVol := meshVolume(mMesh)
	sVol := meshVolume(sMesh)

	if math.Abs(mVol-want) > 1e-6 {
		t.Errorf("manifold difference volume = %f, want %f", mVol, want)
	}
	if rel := math.Abs(sVol-want) / want; rel > 0.03 {
		t.Errorf("sdfx difference volume = %f, want ~%f (relative error %f > 0.03)", sVol, want, rel)
	}
}
