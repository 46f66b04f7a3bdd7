// Package mesh implements an indexed display mesh: flat per-vertex attribute
// arrays plus separate triangle and quad index buffers.
//
// An IndexedMesh is not safe for concurrent use. All mutation and queries
// assume a single owner; callers that share a mesh must synchronize outside
// this package.
package mesh

import (
	"fmt"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// NoSource marks a vertex, triangle or quad that carries no source index.
const NoSource = -1

// meshCounter hands out mesh identities used to validate face handles.
var meshCounter uint64

func nextMeshID() uint64 {
	return atomic.AddUint64(&meshCounter, 1)
}

// IndexedMesh is a mesh made of triangles and quads over a shared vertex list.
//
// Normals, colors and texture coordinates are each either absent (empty) or
// present for every vertex. The same holds for the optional source indices,
// scoped separately to vertices, triangles and quads.
type IndexedMesh struct {
	id   uint64
	name string

	vertices  []mgl32.Vec3
	normals   []mgl32.Vec3
	colors    []mgl32.Vec4
	texcoords []mgl32.Vec2

	tris  []uint32
	quads []uint32
	edges []uint32

	vertexSourceIndices   []int
	triSourceFaceIndices  []int
	quadSourceFaceIndices []int

	validBounds bool
	bounds      Box

	wireframe bool
	changed   BufferID
}

// New returns an empty mesh with the given name.
func New(name string) *IndexedMesh {
	return &IndexedMesh{
		id:          nextMeshID(),
		name:        name,
		validBounds: true,
		changed:     AllBuffers,
	}
}

// Clone returns a deep copy of m with a fresh identity. Face handles issued by
// m are not valid for the copy. All buffers of the copy start out dirty.
func (m *IndexedMesh) Clone() *IndexedMesh {
	c := &IndexedMesh{
		id:                    nextMeshID(),
		name:                  m.name,
		vertices:              cloneSlice(m.vertices),
		normals:               cloneSlice(m.normals),
		colors:                cloneSlice(m.colors),
		texcoords:             cloneSlice(m.texcoords),
		tris:                  cloneSlice(m.tris),
		quads:                 cloneSlice(m.quads),
		edges:                 cloneSlice(m.edges),
		vertexSourceIndices:   cloneSlice(m.vertexSourceIndices),
		triSourceFaceIndices:  cloneSlice(m.triSourceFaceIndices),
		quadSourceFaceIndices: cloneSlice(m.quadSourceFaceIndices),
		validBounds:           m.validBounds,
		bounds:                m.bounds,
		wireframe:             m.wireframe,
		changed:               AllBuffers,
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}

// Clear removes all vertices, faces and attributes. The mesh keeps its name,
// identity and wireframe setting.
func (m *IndexedMesh) Clear() {
	m.vertices = m.vertices[:0]
	m.normals = m.normals[:0]
	m.colors = m.colors[:0]
	m.texcoords = m.texcoords[:0]
	m.tris = m.tris[:0]
	m.quads = m.quads[:0]
	m.edges = m.edges[:0]

	m.vertexSourceIndices = m.vertexSourceIndices[:0]
	m.triSourceFaceIndices = m.triSourceFaceIndices[:0]
	m.quadSourceFaceIndices = m.quadSourceFaceIndices[:0]

	m.validBounds = true
	m.bounds = Box{}

	m.invalidate(AllBuffers)
}

// Name returns the mesh name.
func (m *IndexedMesh) Name() string { return m.name }

// SetName renames the mesh.
func (m *IndexedMesh) SetName(name string) { m.name = name }

func (m *IndexedMesh) String() string {
	return fmt.Sprintf("%s (%d vertices, %d triangles, %d quads)", m.name, m.NumVertices(), m.NumTriangles(), m.NumQuads())
}

// NumVertices returns the number of vertices.
func (m *IndexedMesh) NumVertices() int { return len(m.vertices) }

// NumTriangles returns the number of triangles.
func (m *IndexedMesh) NumTriangles() int { return len(m.tris) / 3 }

// NumQuads returns the number of quads.
func (m *IndexedMesh) NumQuads() int { return len(m.quads) / 4 }

// NumFaces returns the number of triangles plus the number of quads.
func (m *IndexedMesh) NumFaces() int { return m.NumTriangles() + m.NumQuads() }

// NumEdges returns the number of edges found by the last UpdateEdges.
func (m *IndexedMesh) NumEdges() int { return len(m.edges) / 2 }

// IsEmpty reports whether the mesh has no vertices and no faces.
func (m *IndexedMesh) IsEmpty() bool {
	return len(m.vertices) == 0 && len(m.tris) == 0 && len(m.quads) == 0
}

// HasNormals reports whether every vertex has a normal.
func (m *IndexedMesh) HasNormals() bool {
	return len(m.vertices) > 0 && len(m.normals) == len(m.vertices)
}

// HasColors reports whether every vertex has a color.
func (m *IndexedMesh) HasColors() bool {
	return len(m.vertices) > 0 && len(m.colors) == len(m.vertices)
}

// HasTexCoords reports whether every vertex has texture coordinates.
func (m *IndexedMesh) HasTexCoords() bool {
	return len(m.vertices) > 0 && len(m.texcoords) == len(m.vertices)
}

// HasVertexSourceIndices reports whether vertices carry source indices.
func (m *IndexedMesh) HasVertexSourceIndices() bool {
	return len(m.vertices) > 0 && len(m.vertexSourceIndices) == len(m.vertices)
}

// HasTriangleSourceIndices reports whether triangles carry source face indices.
func (m *IndexedMesh) HasTriangleSourceIndices() bool {
	return len(m.tris) > 0 && 3*len(m.triSourceFaceIndices) == len(m.tris)
}

// HasQuadSourceIndices reports whether quads carry source face indices.
func (m *IndexedMesh) HasQuadSourceIndices() bool {
	return len(m.quads) > 0 && 4*len(m.quadSourceFaceIndices) == len(m.quads)
}

// Vertices returns the vertex positions. The slice is owned by the mesh and
// must not be modified.
func (m *IndexedMesh) Vertices() []mgl32.Vec3 { return m.vertices }

// Normals returns the per-vertex normals, or nil if the mesh has none.
func (m *IndexedMesh) Normals() []mgl32.Vec3 { return m.normals }

// Colors returns the per-vertex RGBA colors, or nil if the mesh has none.
func (m *IndexedMesh) Colors() []mgl32.Vec4 { return m.colors }

// TexCoords returns the per-vertex texture coordinates, or nil.
func (m *IndexedMesh) TexCoords() []mgl32.Vec2 { return m.texcoords }

// VertexSourceIndices returns the source index of each vertex, or nil.
func (m *IndexedMesh) VertexSourceIndices() []int { return m.vertexSourceIndices }

// TriangleSourceFaceIndices returns the source face of each triangle, or nil.
func (m *IndexedMesh) TriangleSourceFaceIndices() []int { return m.triSourceFaceIndices }

// QuadSourceFaceIndices returns the source face of each quad, or nil.
func (m *IndexedMesh) QuadSourceFaceIndices() []int { return m.quadSourceFaceIndices }

// Position returns the position of vertex i.
func (m *IndexedMesh) Position(i int) mgl32.Vec3 {
	m.checkVertex("Position", i)
	return m.vertices[i]
}

// Triangle returns the vertex indices of triangle i.
func (m *IndexedMesh) Triangle(i int) [3]int {
	if i < 0 || i >= m.NumTriangles() {
		m.violated("Triangle", "triangle index %d out of bounds", i)
	}
	b := 3 * i
	return [3]int{int(m.tris[b]), int(m.tris[b+1]), int(m.tris[b+2])}
}

// Quad returns the vertex indices of quad i.
func (m *IndexedMesh) Quad(i int) [4]int {
	if i < 0 || i >= m.NumQuads() {
		m.violated("Quad", "quad index %d out of bounds", i)
	}
	b := 4 * i
	return [4]int{int(m.quads[b]), int(m.quads[b+1]), int(m.quads[b+2]), int(m.quads[b+3])}
}

// WireframeEnabled reports whether edges are extracted by UpdateEdges.
func (m *IndexedMesh) WireframeEnabled() bool { return m.wireframe }

// SetWireframeEnabled turns edge extraction on or off. The edge buffer is
// rebuilt by UpdateEdges or by the next full upload, and dropped when
// extraction is turned off. Toggling changes the buffer layout, so every
// buffer is marked dirty.
func (m *IndexedMesh) SetWireframeEnabled(enabled bool) {
	if m.wireframe == enabled {
		return
	}
	m.wireframe = enabled
	if !enabled {
		m.edges = m.edges[:0]
	}
	m.invalidate(AllBuffers)
}
