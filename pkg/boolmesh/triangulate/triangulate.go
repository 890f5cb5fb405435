// Package triangulate turns each (possibly non-triangular) face the
// assembler produces back into triangles, grounded on original_source's
// src/triangulation/mod.rs for loop assembly, axis projection and the
// triangle/quad/general dispatch. The 2-D range query original_source's
// own src/triangulation/quetry_2d_tree.rs left as a `panic!()` stub is
// implemented here from scratch using github.com/dhconnelly/rtreego, an
// R-tree range structure.
package triangulate

import (
	"container/heap"
	"fmt"

	"github.com/dhconnelly/rtreego"

	"github.com/lignincad/lignin/pkg/boolmesh/hmesh"
	"github.com/lignincad/lignin/pkg/boolmesh/vec"
)

// Face triangulates the half-edges of one result-mesh face (faceHalfs,
// indices local to the face, each Tail a global vertex id) into triangles
// of global vertex ids, following process_face's dispatch: 3 edges is
// already a triangle, 4 is a quad split along its better diagonal, more
// than 4 goes through loop assembly, axis-aligned projection and ear
// clipping.
func Face(pos []vec.Vec3, normal vec.Vec3, faceHalfs []hmesh.Half, eps float64) ([][3]int32, error) {
	switch len(faceHalfs) {
	case 0:
		return nil, nil
	case 3:
		return singleTriangulate(faceHalfs), nil
	case 4:
		return squareTriangulate(pos, normal, faceHalfs, eps), nil
	default:
		return generalTriangulate(pos, normal, faceHalfs, eps)
	}
}

func singleTriangulate(h []hmesh.Half) [][3]int32 {
	idx := [3]int{0, 1, 2}
	if h[0].Head == h[2].Tail {
		idx[1], idx[2] = idx[2], idx[1]
	}
	return [][3]int32{{h[idx[0]].Tail, h[idx[1]].Tail, h[idx[2]].Tail}}
}

func squareTriangulate(pos []vec.Vec3, normal vec.Vec3, h []hmesh.Half, eps float64) [][3]int32 {
	quad := assembleLoops(h)[0] // a quad face is always a single loop
	v := func(i int) int32 { return h[quad[i]].Tail }
	ccw := func(a, b, c int32) bool {
		return vec.IsCCW3D(pos[a], pos[b], pos[c], normal, eps) >= 0
	}

	diag0 := [][3]int32{{v(0), v(1), v(2)}, {v(0), v(2), v(3)}}
	diag1 := [][3]int32{{v(1), v(2), v(3)}, {v(0), v(1), v(3)}}

	choice := 0
	if !(ccw(diag0[0][0], diag0[0][1], diag0[0][2]) && ccw(diag0[1][0], diag0[1][1], diag0[1][2])) {
		choice = 1
	} else if ccw(diag1[0][0], diag1[0][1], diag1[0][2]) && ccw(diag1[1][0], diag1[1][1], diag1[1][2]) {
		d0 := pos[v(0)].Sub(pos[v(2)]).Norm()
		d1 := pos[v(1)].Sub(pos[v(3)]).Norm()
		if d0 > d1 {
			choice = 1
		}
	}
	if choice == 0 {
		return diag0
	}
	return diag1
}

func generalTriangulate(pos []vec.Vec3, normal vec.Vec3, h []hmesh.Half, eps float64) ([][3]int32, error) {
	proj := vec.AxisAlignedProjection(normal)
	loops := assembleLoops(h)

	polys := make([][]polyVert, len(loops))
	for i, loop := range loops {
		polys[i] = make([]polyVert, len(loop))
		for j, localHid := range loop {
			vid := h[localHid].Tail
			polys[i][j] = polyVert{pos: proj.Project(pos[vid]), vid: vid}
		}
	}

	merged, err := mergeHoles(polys)
	if err != nil {
		return nil, err
	}

	tris, err := earClip(merged, eps)
	if err != nil {
		return nil, err
	}
	out := make([][3]int32, len(tris))
	for i, t := range tris {
		out[i] = [3]int32{merged[t[0]].vid, merged[t[1]].vid, merged[t[2]].vid}
	}
	return out, nil
}

// assembleLoops walks the face's half-edges via a Hierholzer-style walk,
// following head->next-tail links, splitting off a new loop each time the
// walk returns to its own start (original_source's assemble_halfs: the
// face's half-edges always decompose into one outer, CCW loop plus zero or
// more inner, CW loops).
func assembleLoops(h []hmesh.Half) [][]int {
	v2h := map[int32][]int{}
	for i, he := range h {
		v2h[he.Tail] = append(v2h[he.Tail], i)
	}

	var loops [][]int
	remaining := len(h)
	for remaining > 0 {
		var startID int32
		for vid, list := range v2h {
			if len(list) > 0 {
				startID = vid
				break
			}
		}
		list := v2h[startID]
		hid0 := list[len(list)-1]
		v2h[startID] = list[:len(list)-1]
		remaining--

		loop := []int{hid0}
		cur := hid0
		for {
			nextTail := h[cur].Head
			list := v2h[nextTail]
			if len(list) == 0 {
				break
			}
			cur = list[len(list)-1]
			v2h[nextTail] = list[:len(list)-1]
			remaining--
			if cur == hid0 {
				break
			}
			loop = append(loop, cur)
		}
		loops = append(loops, loop)
	}
	return loops
}

type polyVert struct {
	pos vec.Vec2
	vid int32
}

// mergeHoles reduces a set of loops (one CCW outer boundary plus zero or
// more CW inner loops) to a single simple loop by bridging each hole to
// its nearest outer-boundary vertex with a zero-width cut, the classic
// ear-clip-with-holes reduction.
func mergeHoles(polys [][]polyVert) ([]polyVert, error) {
	if len(polys) == 0 {
		return nil, fmt.Errorf("triangulate: empty face")
	}
	outerIdx := 0
	outerArea := signedArea(polys[0])
	for i := 1; i < len(polys); i++ {
		if a := signedArea(polys[i]); absF(a) > absF(outerArea) {
			outerIdx, outerArea = i, a
		}
	}
	outer := append([]polyVert(nil), polys[outerIdx]...)

	for i, hole := range polys {
		if i == outerIdx || len(hole) == 0 {
			continue
		}
		bestO, bestH := 0, 0
		bestD := -1.0
		for oi, ov := range outer {
			for hi, hv := range hole {
				d := ov.pos.Sub(hv.pos).NormSq()
				if bestD < 0 || d < bestD {
					bestD, bestO, bestH = d, oi, hi
				}
			}
		}
		rotated := append(append([]polyVert(nil), hole[bestH:]...), hole[:bestH]...)
		bridge := make([]polyVert, 0, len(outer)+len(rotated)+2)
		bridge = append(bridge, outer[:bestO+1]...)
		bridge = append(bridge, rotated...)
		bridge = append(bridge, rotated[0])
		bridge = append(bridge, outer[bestO:]...)
		outer = bridge
	}
	return outer, nil
}

func signedArea(poly []polyVert) float64 {
	var a float64
	n := len(poly)
	for i := 0; i < n; i++ {
		p, q := poly[i].pos, poly[(i+1)%n].pos
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// rtreePoint adapts a reflex vertex's 2-D position to rtreego.Spatial.
type rtreePoint struct {
	idx int
	pos vec.Vec2
}

func (p *rtreePoint) Bounds() *rtreego.Rect {
	r, _ := rtreego.NewRect(rtreego.Point{p.pos.X, p.pos.Y}, []float64{1e-9, 1e-9})
	return r
}

// earEntry is one candidate ear in the priority queue, keyed by area so
// the smallest valid ear clips first.
type earEntry struct {
	vertID int // index into the live polygon's vert slice at push time
	cost   float64
	epoch  int
}

type earHeap []*earEntry

func (h earHeap) Len() int            { return len(h) }
func (h earHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h earHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *earHeap) Push(x interface{}) { *h = append(*h, x.(*earEntry)) }
func (h *earHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// earClip triangulates a single simple polygon (CCW, possibly with
// bridged-in holes) by repeatedly clipping the cheapest valid ear,
// using an R-tree over the remaining reflex vertices to avoid an O(n)
// scan for "is any other vertex inside this ear" on every candidate.
func earClip(poly []polyVert, eps float64) ([][3]int, error) {
	n := len(poly)
	if n < 3 {
		return nil, nil
	}
	if n == 3 {
		return [][3]int{{0, 1, 2}}, nil
	}

	next := make([]int, n)
	prev := make([]int, n)
	alive := make([]bool, n)
	epoch := make([]int, n)
	for i := 0; i < n; i++ {
		next[i] = (i + 1) % n
		prev[i] = (i - 1 + n) % n
		alive[i] = true
	}

	tree := rtreego.NewTree(2, 4, 16)
	reflexNode := make(map[int]*rtreePoint)
	isReflex := func(i int) bool {
		return vec.IsCCW2D(poly[prev[i]].pos, poly[i].pos, poly[next[i]].pos, eps) <= 0
	}
	setReflex := func(i int) {
		if rp, ok := reflexNode[i]; ok {
			tree.Delete(rp)
			delete(reflexNode, i)
		}
		if isReflex(i) {
			rp := &rtreePoint{idx: i, pos: poly[i].pos}
			reflexNode[i] = rp
			tree.Insert(rp)
		}
	}
	for i := 0; i < n; i++ {
		setReflex(i)
	}

	earCost := func(i int) (float64, bool) {
		a, b, c := poly[prev[i]].pos, poly[i].pos, poly[next[i]].pos
		if vec.IsCCW2D(a, b, c, eps) <= 0 {
			return 0, false // reflex or degenerate vertex can't be an ear tip
		}
		minX, maxX := minF3(a.X, b.X, c.X), maxF3(a.X, b.X, c.X)
		minY, maxY := minF3(a.Y, b.Y, c.Y), maxF3(a.Y, b.Y, c.Y)
		rect, _ := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{maxX - minX + 1e-9, maxY - minY + 1e-9})
		for _, sp := range tree.SearchIntersect(rect) {
			rp := sp.(*rtreePoint)
			if rp.idx == prev[i] || rp.idx == i || rp.idx == next[i] {
				continue
			}
			if pointInTriangle(rp.pos, a, b, c, eps) {
				return 0, false
			}
		}
		area := absF((b.Sub(a)).X*(c.Sub(a)).Y - (b.Sub(a)).Y*(c.Sub(a)).X)
		return area, true
	}

	h := &earHeap{}
	heap.Init(h)
	push := func(i int) {
		epoch[i]++
		if cost, ok := earCost(i); ok {
			heap.Push(h, &earEntry{vertID: i, cost: cost, epoch: epoch[i]})
		}
	}
	for i := 0; i < n; i++ {
		push(i)
	}

	var tris [][3]int
	remaining := n
	for remaining > 3 && h.Len() > 0 {
		e := heap.Pop(h).(*earEntry)
		i := e.vertID
		if !alive[i] || e.epoch != epoch[i] {
			continue
		}
		p, nx := prev[i], next[i]
		tris = append(tris, [3]int{p, i, nx})

		alive[i] = false
		if rp, ok := reflexNode[i]; ok {
			tree.Delete(rp)
			delete(reflexNode, i)
		}
		next[p] = nx
		prev[nx] = p
		remaining--

		setReflex(p)
		setReflex(nx)
		push(p)
		push(nx)
	}

	if remaining == 3 {
		var last [3]int
		k := 0
		for i := 0; i < n; i++ {
			if alive[i] {
				last[k] = i
				k++
			}
		}
		if k == 3 {
			tris = append(tris, last)
		}
	} else if remaining > 3 {
		return nil, fmt.Errorf("triangulate: ear clipping stalled with %d vertices remaining", remaining)
	}
	return tris, nil
}

func pointInTriangle(p, a, b, c vec.Vec2, eps float64) bool {
	d1 := vec.IsCCW2D(a, b, p, eps)
	d2 := vec.IsCCW2D(b, c, p, eps)
	d3 := vec.IsCCW2D(c, a, p, eps)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func minF3(a, b, c float64) float64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
func maxF3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
