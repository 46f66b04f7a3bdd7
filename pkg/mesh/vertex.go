package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// VertexOption supplies an optional attribute to AddVertex.
type VertexOption func(*vertexAttrs)

type vertexAttrs struct {
	sourceIndex int
	normal      *mgl32.Vec3
	color       *mgl32.Vec4
	texcoord    *mgl32.Vec2
}

// WithSourceIndex attaches the vertex's index in some source mesh. Negative
// values are ignored.
func WithSourceIndex(i int) VertexOption {
	return func(a *vertexAttrs) { a.sourceIndex = i }
}

// WithNormal attaches a normal.
func WithNormal(n mgl32.Vec3) VertexOption {
	return func(a *vertexAttrs) { a.normal = &n }
}

// WithColor attaches an RGBA color.
func WithColor(c mgl32.Vec4) VertexOption {
	return func(a *vertexAttrs) { a.color = &c }
}

// WithTexCoord attaches texture coordinates.
func WithTexCoord(t mgl32.Vec2) VertexOption {
	return func(a *vertexAttrs) { a.texcoord = &t }
}

// checkVertexAttributes verifies that a new vertex supplies exactly the
// attributes the mesh already carries. A mesh with no vertices accepts any
// combination; that combination fixes the layout for later vertices.
func (m *IndexedMesh) checkVertexAttributes(a *vertexAttrs) {
	const op = "AddVertex"
	if len(m.vertices) == 0 {
		return
	}
	check := func(what string, has, supplied bool) {
		switch {
		case has && !supplied:
			m.violated(op, "mesh has vertex %ss, vertex must supply one", what)
		case !has && supplied:
			m.violated(op, "mesh has no vertex %ss, vertex must not supply one", what)
		}
	}
	check("source index", len(m.vertexSourceIndices) > 0, a.sourceIndex >= 0)
	check("normal", len(m.normals) > 0, a.normal != nil)
	check("color", len(m.colors) > 0, a.color != nil)
	check("texture coordinate", len(m.texcoords) > 0, a.texcoord != nil)
}

// AddVertex appends a vertex and returns its index.
//
// Optional attributes must match the mesh: once a mesh has normals, colors,
// texture coordinates or vertex source indices, every vertex must supply them,
// and a mesh without them accepts no vertex that does. A mismatch panics with
// a *ContractError.
func (m *IndexedMesh) AddVertex(p mgl32.Vec3, opts ...VertexOption) int {
	a := vertexAttrs{sourceIndex: NoSource}
	for _, opt := range opts {
		opt(&a)
	}
	m.checkVertexAttributes(&a)

	if a.sourceIndex >= 0 {
		m.vertexSourceIndices = append(m.vertexSourceIndices, a.sourceIndex)
	}
	if a.normal != nil {
		m.normals = append(m.normals, *a.normal)
	}
	if a.color != nil {
		m.colors = append(m.colors, *a.color)
	}
	if a.texcoord != nil {
		m.texcoords = append(m.texcoords, *a.texcoord)
	}
	m.vertices = append(m.vertices, p)

	if m.validBounds {
		m.bounds.Merge(p)
	}
	m.invalidate(AllBuffers)
	return len(m.vertices) - 1
}

// AddNormals gives every vertex a zero normal if the mesh has no normals yet.
func (m *IndexedMesh) AddNormals() {
	if len(m.normals) == len(m.vertices) && len(m.normals) > 0 {
		return
	}
	m.normals = make([]mgl32.Vec3, len(m.vertices))
	m.invalidate(AllBuffers)
}

// AddColors gives every vertex a zero color if the mesh has no colors yet.
func (m *IndexedMesh) AddColors() {
	if len(m.colors) == len(m.vertices) && len(m.colors) > 0 {
		return
	}
	m.colors = make([]mgl32.Vec4, len(m.vertices))
	m.invalidate(AllBuffers)
}

// AddTexCoords gives every vertex zero texture coordinates if the mesh has
// none yet.
func (m *IndexedMesh) AddTexCoords() {
	if len(m.texcoords) == len(m.vertices) && len(m.texcoords) > 0 {
		return
	}
	m.texcoords = make([]mgl32.Vec2, len(m.vertices))
	m.invalidate(AllBuffers)
}

// SetPosition moves vertex i.
func (m *IndexedMesh) SetPosition(i int, p mgl32.Vec3) {
	m.checkVertex("SetPosition", i)
	m.vertices[i] = p
	m.validBounds = false
	m.invalidate(VertexBuffer)
}

// SetNormal changes the normal of vertex i. The mesh must have normals.
func (m *IndexedMesh) SetNormal(i int, n mgl32.Vec3) {
	m.checkVertex("SetNormal", i)
	if len(m.normals) == 0 {
		m.violated("SetNormal", "mesh has no normals")
	}
	m.normals[i] = n
	m.invalidate(NormalBuffer)
}

// SetColor changes the color of vertex i. The mesh must have colors.
func (m *IndexedMesh) SetColor(i int, c mgl32.Vec4) {
	m.checkVertex("SetColor", i)
	if len(m.colors) == 0 {
		m.violated("SetColor", "mesh has no colors")
	}
	m.colors[i] = c
	m.invalidate(ColorBuffer)
}

// SetTexCoord changes the texture coordinates of vertex i. The mesh must have
// texture coordinates.
func (m *IndexedMesh) SetTexCoord(i int, t mgl32.Vec2) {
	m.checkVertex("SetTexCoord", i)
	if len(m.texcoords) == 0 {
		m.violated("SetTexCoord", "mesh has no texture coordinates")
	}
	m.texcoords[i] = t
	m.invalidate(TexCoordBuffer)
}
