// Package kernel defines the abstract geometry kernel interface.
// Implementations (sdfx, manifold) provide solid modeling and
// boolean operations behind this interface.
package kernel

// Solid is an opaque handle to a solid held by a Kernel implementation.
// Its only kernel-independent operation is a bounding box query; every
// other operation on it goes back through the Kernel that created it.
type Solid interface {
	// BoundingBox returns the solid's axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is a solid-modeling backend: it constructs primitive solids,
// combines them with boolean operations, repositions them, and extracts a
// renderable triangle mesh. sdfx implements Kernel approximately (marching
// cubes over a signed distance field); manifold implements it exactly
// (winding-number boolean operations on a triangle mesh).
type Kernel interface {
	// Box creates an axis-aligned box with the given dimensions, its
	// minimum corner at the origin.
	Box(x, y, z float64) Solid

	// Cylinder creates a cylinder along the Z axis, centered at the
	// origin, with the given height, radius and circular segment count.
	Cylinder(height, radius float64, segments int) Solid

	// Union returns the boolean union (a ∪ b).
	Union(a, b Solid) Solid

	// Difference returns the boolean difference (a \ b).
	Difference(a, b Solid) Solid

	// Intersection returns the boolean intersection (a ∩ b).
	Intersection(a, b Solid) Solid

	// Translate moves a solid by (x, y, z).
	Translate(s Solid, x, y, z float64) Solid

	// Rotate rotates a solid by Euler angles in degrees around X, Y, Z.
	Rotate(s Solid, x, y, z float64) Solid

	// ToMesh extracts a renderable triangle mesh from a solid.
	ToMesh(s Solid) (*Mesh, error)
}
