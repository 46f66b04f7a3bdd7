package mesh

import (
	"strings"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// BufferID is a bitmask naming GPU-facing buffers of a mesh.
type BufferID uint32

const (
	VertexBuffer BufferID = 1 << iota
	NormalBuffer
	ColorBuffer
	TexCoordBuffer
	TriangleBuffer
	QuadBuffer
	EdgeBuffer

	// AllBuffers marks a layout change: every buffer must be re-created rather
	// than patched in place.
	AllBuffers = VertexBuffer | NormalBuffer | ColorBuffer | TexCoordBuffer | TriangleBuffer | QuadBuffer | EdgeBuffer
)

var bufferNames = []string{"vertex", "normal", "color", "texcoord", "triangle", "quad", "edge"}

func (b BufferID) String() string {
	if b == 0 {
		return "none"
	}
	if b == AllBuffers {
		return "all"
	}
	var parts []string
	for i, name := range bufferNames {
		if b&(1<<uint(i)) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

// Has reports whether all buffers in other are set in b.
func (b BufferID) Has(other BufferID) bool {
	return b&other == other
}

func (m *IndexedMesh) invalidate(b BufferID) {
	m.changed |= b
}

// ChangedBuffers returns the buffers modified since the last MarkBuffersClean.
func (m *IndexedMesh) ChangedBuffers() BufferID { return m.changed }

// NeedsFullUpload reports whether the buffer layout changed, so that GPU
// storage must be re-created instead of patched.
func (m *IndexedMesh) NeedsFullUpload() bool { return m.changed == AllBuffers }

// BufferChanged reports whether buffer b is stale.
func (m *IndexedMesh) BufferChanged(b BufferID) bool { return m.changed&b != 0 }

// MarkBuffersClean records that the given buffers have been uploaded.
func (m *IndexedMesh) MarkBuffersClean(b BufferID) {
	m.changed &^= b
}

// The raw views below alias the mesh's own storage. They are rebuilt on every
// call and stay valid only until the next mutation of the mesh.

// VertexData returns positions as a flat x0,y0,z0,x1,... array.
func (m *IndexedMesh) VertexData() []float32 { return flatten3(m.vertices) }

// NormalData returns normals as a flat array, or nil.
func (m *IndexedMesh) NormalData() []float32 { return flatten3(m.normals) }

// ColorData returns colors as a flat r0,g0,b0,a0,... array, or nil.
func (m *IndexedMesh) ColorData() []float32 {
	if len(m.colors) == 0 {
		return nil
	}
	return unsafe.Slice(&m.colors[0][0], 4*len(m.colors))
}

// TexCoordData returns texture coordinates as a flat u0,v0,... array, or nil.
func (m *IndexedMesh) TexCoordData() []float32 {
	if len(m.texcoords) == 0 {
		return nil
	}
	return unsafe.Slice(&m.texcoords[0][0], 2*len(m.texcoords))
}

// TriangleIndices returns the flat triangle index buffer.
func (m *IndexedMesh) TriangleIndices() []uint32 { return m.tris }

// QuadIndices returns the flat quad index buffer.
func (m *IndexedMesh) QuadIndices() []uint32 { return m.quads }

// EdgeIndices returns the flat edge index buffer built by UpdateEdges.
func (m *IndexedMesh) EdgeIndices() []uint32 { return m.edges }

func flatten3(v []mgl32.Vec3) []float32 {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice(&v[0][0], 3*len(v))
}
