// Package polygon triangulates simple planar polygons embedded in 3-space.
//
// Triangulation uses ear clipping on the projection of the polygon onto the
// coordinate plane most perpendicular to its normal. The polygon is not checked
// for planarity; callers are responsible for supplying coplanar vertices.
package polygon

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// epsilon is the smallest projected area considered a convex corner.
const epsilon = 1e-10

// IndexedVertex is a polygon vertex with an external index attached.
type IndexedVertex struct {
	Position mgl32.Vec3
	Index    int
}

// Polygon3 is an ordered polygon boundary in 3-space. Holes are not supported.
type Polygon3 struct {
	vertices []IndexedVertex
	maxIndex int
}

// New returns an empty polygon.
func New() *Polygon3 {
	return &Polygon3{maxIndex: -1}
}

// AddVertex appends a vertex whose index is one more than the largest index
// seen so far (zero for the first vertex).
func (p *Polygon3) AddVertex(pos mgl32.Vec3) {
	p.AddIndexedVertex(pos, p.maxIndex+1)
}

// AddIndexedVertex appends a vertex carrying the given external index.
func (p *Polygon3) AddIndexedVertex(pos mgl32.Vec3, index int) {
	p.vertices = append(p.vertices, IndexedVertex{Position: pos, Index: index})
	if index > p.maxIndex {
		p.maxIndex = index
	}
}

// NumVertices returns the number of boundary vertices.
func (p *Polygon3) NumVertices() int {
	return len(p.vertices)
}

// Vertex returns the i'th vertex in boundary order. The position i is set by
// the order of AddVertex calls, not by the vertex's external index.
func (p *Polygon3) Vertex(i int) IndexedVertex {
	return p.vertices[i]
}

// Clear removes all vertices.
func (p *Polygon3) Clear() {
	p.vertices = p.vertices[:0]
	p.maxIndex = -1
}

// Normal returns the (unnormalized) Newell normal of the boundary. Its length
// is twice the polygon area.
func (p *Polygon3) Normal() [3]float64 {
	var n [3]float64
	k := len(p.vertices)
	for i := 0; i < k; i++ {
		a := p.vertices[i].Position
		b := p.vertices[(i+1)%k].Position
		ax, ay, az := float64(a[0]), float64(a[1]), float64(a[2])
		bx, by, bz := float64(b[0]), float64(b[1]), float64(b[2])
		n[0] += (ay - by) * (az + bz)
		n[1] += (az - bz) * (ax + bx)
		n[2] += (ax - bx) * (ay + by)
	}
	return n
}

// Area returns the area enclosed by the boundary.
func (p *Polygon3) Area() float64 {
	n := p.Normal()
	return 0.5 * math.Sqrt(n[0]*n[0]+n[1]*n[1]+n[2]*n[2])
}

// Bounds returns the componentwise minimum and maximum of the vertices. Both
// are zero for an empty polygon.
func (p *Polygon3) Bounds() (min, max mgl32.Vec3) {
	if len(p.vertices) == 0 {
		return min, max
	}
	min = p.vertices[0].Position
	max = min
	for _, v := range p.vertices[1:] {
		for c := 0; c < 3; c++ {
			if v.Position[c] < min[c] {
				min[c] = v.Position[c]
			}
			if v.Position[c] > max[c] {
				max[c] = v.Position[c]
			}
		}
	}
	return min, max
}

// Triangulate splits the polygon into triangles and returns them as triples of
// local vertex positions (0..NumVertices()-1). Triangles keep the winding of
// the boundary.
//
// A simple polygon with k vertices yields k-2 triangles. Degenerate or
// self-intersecting boundaries may yield fewer, possibly none; the search for
// the next ear gives up after twice as many attempts as there are vertices
// left.
func (p *Polygon3) Triangulate() [][3]int {
	n := len(p.vertices)
	if n < 3 {
		return nil
	}

	pts := p.project()

	// Walk the ring counter-clockwise in the projected plane.
	ring := make([]int, n)
	reversed := projectedArea(pts) < 0
	for i := range ring {
		if reversed {
			ring[i] = n - 1 - i
		} else {
			ring[i] = i
		}
	}

	tris := make([][3]int, 0, n-2)
	nv := n
	attempts := 2 * nv
	for v := nv - 1; nv > 2; {
		if attempts <= 0 {
			return tris
		}
		attempts--

		u := v
		if u >= nv {
			u = 0
		}
		v = u + 1
		if v >= nv {
			v = 0
		}
		w := v + 1
		if w >= nv {
			w = 0
		}

		if !snip(pts, ring, u, v, w, nv) {
			continue
		}

		a, b, c := ring[u], ring[v], ring[w]
		if reversed {
			tris = append(tris, [3]int{c, b, a})
		} else {
			tris = append(tris, [3]int{a, b, c})
		}

		ring = append(ring[:v], ring[v+1:]...)
		nv--
		attempts = 2 * nv
	}
	return tris
}

type point2 struct{ x, y float64 }

// project drops the dominant axis of the polygon normal. The remaining axes are
// ordered so that the boundary keeps its orientation in the plane.
func (p *Polygon3) project() []point2 {
	n := p.Normal()
	axis := 0
	if math.Abs(n[1]) > math.Abs(n[axis]) {
		axis = 1
	}
	if math.Abs(n[2]) > math.Abs(n[axis]) {
		axis = 2
	}
	i, j := (axis+1)%3, (axis+2)%3
	if n[axis] < 0 {
		i, j = j, i
	}

	pts := make([]point2, len(p.vertices))
	for k, v := range p.vertices {
		pts[k] = point2{float64(v.Position[i]), float64(v.Position[j])}
	}
	return pts
}

func projectedArea(pts []point2) float64 {
	var a float64
	n := len(pts)
	for p, q := n-1, 0; q < n; p, q = q, q+1 {
		a += pts[p].x*pts[q].y - pts[q].x*pts[p].y
	}
	return 0.5 * a
}

// snip reports whether (u, v, w) is an ear: a convex corner whose triangle
// holds no other remaining vertex.
func snip(pts []point2, ring []int, u, v, w, nv int) bool {
	a, b, c := pts[ring[u]], pts[ring[v]], pts[ring[w]]
	if (b.x-a.x)*(c.y-a.y)-(b.y-a.y)*(c.x-a.x) < epsilon {
		return false
	}
	for k := 0; k < nv; k++ {
		if k == u || k == v || k == w {
			continue
		}
		if insideTriangle(a, b, c, pts[ring[k]]) {
			return false
		}
	}
	return true
}

// insideTriangle reports whether p lies inside or on the counter-clockwise
// triangle (a, b, c).
func insideTriangle(a, b, c, p point2) bool {
	ab := (b.x-a.x)*(p.y-a.y) - (b.y-a.y)*(p.x-a.x)
	bc := (c.x-b.x)*(p.y-b.y) - (c.y-b.y)*(p.x-b.x)
	ca := (a.x-c.x)*(p.y-c.y) - (a.y-c.y)*(p.x-c.x)
	return ab >= 0 && bc >= 0 && ca >= 0
}
