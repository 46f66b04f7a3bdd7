package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Builder assembles a mesh from triangle soup, sharing vertices that have
// exactly the same position. Triangles that collapse to fewer than three
// distinct vertices after sharing are dropped.
type Builder struct {
	m       *IndexedMesh
	index   map[mgl32.Vec3]int
	dropped int
}

// NewBuilder returns a builder for a new mesh with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{m: New(name), index: make(map[mgl32.Vec3]int)}
}

// Vertex returns the index of the vertex at p, adding it if needed.
func (b *Builder) Vertex(p mgl32.Vec3) int {
	if i, ok := b.index[p]; ok {
		return i
	}
	i := b.m.AddVertex(p)
	b.index[p] = i
	return i
}

// Triangle adds the triangle (p0, p1, p2) and reports whether it was kept.
func (b *Builder) Triangle(p0, p1, p2 mgl32.Vec3) bool {
	i0, i1, i2 := b.Vertex(p0), b.Vertex(p1), b.Vertex(p2)
	if i0 == i1 || i1 == i2 || i2 == i0 {
		b.dropped++
		return false
	}
	b.m.AddTriangle(i0, i1, i2, NoSource)
	return true
}

// Polygon adds a polygon through its corner positions. See IndexedMesh.AddFace.
func (b *Builder) Polygon(pts []mgl32.Vec3) Face {
	idx := make([]int, len(pts))
	for i, p := range pts {
		idx[i] = b.Vertex(p)
	}
	return b.m.AddFace(idx, NoSource)
}

// Dropped returns the number of degenerate triangles skipped so far.
func (b *Builder) Dropped() int { return b.dropped }

// Mesh returns the mesh built so far. The builder keeps a reference to it;
// further calls keep adding to the same mesh.
func (b *Builder) Mesh() *IndexedMesh { return b.m }
