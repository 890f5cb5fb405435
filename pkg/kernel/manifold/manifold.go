// Package manifold implements kernel.Kernel with the exact winding-number
// Boolean engine in pkg/boolmesh, in contrast to sdfx's approximate
// marching-cubes backend. Every primitive is built directly as a triangle
// mesh (no signed-distance intermediate), so Boolean operations never lose
// sharp edges or need a resolution parameter.
package manifold

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/lignincad/lignin/pkg/boolmesh"
	"github.com/lignincad/lignin/pkg/boolmesh/hmesh"
	"github.com/lignincad/lignin/pkg/boolmesh/vec"
	"github.com/lignincad/lignin/pkg/kernel"
)

// Compile-time interface checks.
var _ kernel.Kernel = (*Kernel)(nil)
var _ kernel.Solid = (*solid)(nil)

// solid is a triangle mesh awaiting the kernel's own affine transform.
// Translate and Rotate only ever touch pos, so they stay cheap even though
// Union/Difference/Intersection each revalidate a full boolmesh.Manifold.
type solid struct {
	id  string // stable handle identity, replacing the CGo binding's ad hoc int handles
	pos []vec.Vec3
	idx [][3]int32
}

func (s *solid) BoundingBox() (min, max [3]float64) {
	if len(s.pos) == 0 {
		return min, max
	}
	lo, hi := s.pos[0], s.pos[0]
	for _, p := range s.pos[1:] {
		if p.X < lo.X {
			lo.X = p.X
		}
		if p.Y < lo.Y {
			lo.Y = p.Y
		}
		if p.Z < lo.Z {
			lo.Z = p.Z
		}
		if p.X > hi.X {
			hi.X = p.X
		}
		if p.Y > hi.Y {
			hi.Y = p.Y
		}
		if p.Z > hi.Z {
			hi.Z = p.Z
		}
	}
	return [3]float64{lo.X, lo.Y, lo.Z}, [3]float64{hi.X, hi.Y, hi.Z}
}

// Kernel implements kernel.Kernel.
type Kernel struct{}

// New returns a Kernel. It never fails: unlike the CGo Manifold binding
// this replaces, there is no external library to locate.
func New() (kernel.Kernel, error) {
	return &Kernel{}, nil
}

// Box creates an axis-aligned box with its minimum corner at the origin,
// matching sdfx.Kernel.Box's placement convention.
func (k *Kernel) Box(x, y, z float64) kernel.Solid {
	pos := []vec.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: x, Y: 0, Z: 0}, {X: x, Y: y, Z: 0}, {X: 0, Y: y, Z: 0},
		{X: 0, Y: 0, Z: z}, {X: x, Y: 0, Z: z}, {X: x, Y: y, Z: z}, {X: 0, Y: y, Z: z},
	}
	idx := [][3]int32{
		{0, 2, 1}, {0, 3, 2}, // bottom, z=0, outward -Z
		{4, 5, 6}, {4, 6, 7}, // top, z=z, outward +Z
		{0, 1, 5}, {0, 5, 4}, // y=0 side
		{3, 7, 6}, {3, 6, 2}, // y=y side
		{0, 4, 7}, {0, 7, 3}, // x=0 side
		{1, 2, 6}, {1, 6, 5}, // x=x side
	}
	return &solid{id: uuid.NewString(), pos: pos, idx: idx}
}

// Cylinder creates a cylinder along the Z axis, centered at the origin,
// with the given height, radius and circular segment count.
func (k *Kernel) Cylinder(height, radius float64, segments int) kernel.Solid {
	if segments < 3 {
		segments = 3
	}
	half := height / 2
	pos := make([]vec.Vec3, 0, 2*segments+2)
	bottomCenter := int32(len(pos))
	pos = append(pos, vec.Vec3{X: 0, Y: 0, Z: -half})
	bottomRing := int32(len(pos))
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pos = append(pos, vec.Vec3{X: radius * math.Cos(a), Y: radius * math.Sin(a), Z: -half})
	}
	topCenter := int32(len(pos))
	pos = append(pos, vec.Vec3{X: 0, Y: 0, Z: half})
	topRing := int32(len(pos))
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pos = append(pos, vec.Vec3{X: radius * math.Cos(a), Y: radius * math.Sin(a), Z: half})
	}

	var idx [][3]int32
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		bi, bj := bottomRing+int32(i), bottomRing+int32(j)
		ti, tj := topRing+int32(i), topRing+int32(j)
		idx = append(idx,
			[3]int32{bottomCenter, bj, bi},
			[3]int32{topCenter, ti, tj},
			[3]int32{bi, bj, ti},
			[3]int32{bj, tj, ti},
		)
	}
	return &solid{id: uuid.NewString(), pos: pos, idx: idx}
}

func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return k.combine(a, b, boolmesh.OpUnion)
}

func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return k.combine(a, b, boolmesh.OpDifference)
}

func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return k.combine(a, b, boolmesh.OpIntersect)
}

// combine validates both operand solids as closed manifolds and runs the
// winding-number Boolean pipeline. An empty result (e.g. a difference that
// removes a solid entirely, or a disjoint intersection) is a legal
// Boolean outcome, not an error, and comes back as an empty solid.
func (k *Kernel) combine(a, b kernel.Solid, op boolmesh.OpType) kernel.Solid {
	sa, sb := a.(*solid), b.(*solid)

	ma, err := boolmesh.New(sa.pos, sa.idx, 0, 0)
	if err != nil {
		panic(fmt.Sprintf("manifold: left operand of %s is not a closed manifold: %v", op, err))
	}
	mb, err := boolmesh.New(sb.pos, sb.idx, 0, 0)
	if err != nil {
		panic(fmt.Sprintf("manifold: right operand of %s is not a closed manifold: %v", op, err))
	}

	r, err := boolmesh.Compute(ma, mb, op)
	if err != nil {
		return &solid{id: uuid.NewString()}
	}
	idx := make([][3]int32, r.NT)
	for t := 0; t < r.NT; t++ {
		idx[t] = [3]int32{r.Halfs[3*t].Tail, r.Halfs[3*t+1].Tail, r.Halfs[3*t+2].Tail}
	}
	return &solid{id: uuid.NewString(), pos: r.Pos, idx: idx}
}

// Translate moves a solid by (x, y, z).
func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	src := s.(*solid)
	d := vec.Vec3{X: x, Y: y, Z: z}
	pos := make([]vec.Vec3, len(src.pos))
	for i, p := range src.pos {
		pos[i] = p.Add(d)
	}
	return &solid{id: src.id, pos: pos, idx: src.idx}
}

// Rotate rotates a solid by Euler angles in degrees about the fixed world
// axes: first around X, then Y, then Z.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	src := s.(*solid)
	rx, ry, rz := x*math.Pi/180, y*math.Pi/180, z*math.Pi/180
	pos := make([]vec.Vec3, len(src.pos))
	for i, p := range src.pos {
		pos[i] = rotateZ(rotateY(rotateX(p, rx), ry), rz)
	}
	return &solid{id: src.id, pos: pos, idx: src.idx}
}

func rotateX(p vec.Vec3, a float64) vec.Vec3 {
	c, s := math.Cos(a), math.Sin(a)
	return vec.Vec3{X: p.X, Y: p.Y*c - p.Z*s, Z: p.Y*s + p.Z*c}
}

func rotateY(p vec.Vec3, a float64) vec.Vec3 {
	c, s := math.Cos(a), math.Sin(a)
	return vec.Vec3{X: p.X*c + p.Z*s, Y: p.Y, Z: -p.X*s + p.Z*c}
}

func rotateZ(p vec.Vec3, a float64) vec.Vec3 {
	c, s := math.Cos(a), math.Sin(a)
	return vec.Vec3{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c, Z: p.Z}
}

// ToMesh extracts a renderable triangle mesh, computing smooth per-vertex
// normals by averaging incident face normals (the same fallback the
// Manifold CGo binding this replaces used when MeshGL carried no normals
// of its own).
func (k *Kernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	src := s.(*solid)
	if len(src.pos) == 0 || len(src.idx) == 0 {
		return &kernel.Mesh{}, nil
	}

	halfs, err := hmesh.Build(src.idx)
	if err != nil {
		return nil, fmt.Errorf("manifold: ToMesh: %w", err)
	}
	vertNormals := hmesh.VertNormals(src.pos, halfs)

	vertices := make([]float32, len(src.pos)*3)
	normals := make([]float32, len(src.pos)*3)
	for i, p := range src.pos {
		vertices[3*i+0], vertices[3*i+1], vertices[3*i+2] = float32(p.X), float32(p.Y), float32(p.Z)
		n := vertNormals[i]
		normals[3*i+0], normals[3*i+1], normals[3*i+2] = float32(n.X), float32(n.Y), float32(n.Z)
	}

	indices := make([]uint32, len(src.idx)*3)
	for t, tri := range src.idx {
		indices[3*t+0] = uint32(tri[0])
		indices[3*t+1] = uint32(tri[1])
		indices[3*t+2] = uint32(tri[2])
	}

	return &kernel.Mesh{Vertices: vertices, Normals: normals, Indices: indices}, nil
}
