// Package render moves mesh buffers to a rendering target, driven by the
// mesh's dirty-buffer mask.
package render

import (
	"github.com/pkg/errors"

	"github.com/chazu/trimesh/pkg/mesh"
)

// Buffers holds the raw arrays of one mesh. Slices passed to a Target alias
// mesh storage and are only valid for the duration of the call.
type Buffers struct {
	Name      string
	Positions []float32
	Normals   []float32
	Colors    []float32
	TexCoords []float32
	Triangles []uint32
	Quads     []uint32
	Edges     []uint32
}

// Target owns the rendering-side copies of mesh buffers.
type Target interface {
	// Create discards any storage held for m and allocates it anew from b.
	Create(m *mesh.IndexedMesh, b *Buffers) error
	// Update overwrites the buffers named in which with the contents of b.
	// Their sizes are unchanged since the last Create.
	Update(m *mesh.IndexedMesh, which mesh.BufferID, b *Buffers) error
	// Destroy releases all storage held for m.
	Destroy(m *mesh.IndexedMesh)
}

const attributeBuffers = mesh.VertexBuffer | mesh.NormalBuffer | mesh.ColorBuffer | mesh.TexCoordBuffer

func buffersOf(m *mesh.IndexedMesh) *Buffers {
	return &Buffers{
		Name:      m.Name(),
		Positions: m.VertexData(),
		Normals:   m.NormalData(),
		Colors:    m.ColorData(),
		TexCoords: m.TexCoordData(),
		Triangles: m.TriangleIndices(),
		Quads:     m.QuadIndices(),
		Edges:     m.EdgeIndices(),
	}
}

// Upload brings t up to date with m and marks the mesh buffers clean.
//
// A layout change re-creates all storage, rebuilding the edge list first. A
// mesh without vertices or faces has its storage destroyed. Otherwise only
// the dirty vertex attributes and edges are updated in place. On error the
// mesh stays dirty.
func Upload(t Target, m *mesh.IndexedMesh) error {
	changed := m.ChangedBuffers()
	if changed == 0 {
		return nil
	}

	if m.NeedsFullUpload() {
		if m.NumVertices() == 0 || m.NumFaces() == 0 {
			t.Destroy(m)
			m.MarkBuffersClean(mesh.AllBuffers)
			return nil
		}
		m.UpdateEdges()
		if err := t.Create(m, buffersOf(m)); err != nil {
			return errors.Wrapf(err, "render: creating buffers of %q", m.Name())
		}
		m.MarkBuffersClean(mesh.AllBuffers)
		return nil
	}

	if which := changed & (attributeBuffers | mesh.EdgeBuffer); which != 0 {
		if err := t.Update(m, which, buffersOf(m)); err != nil {
			return errors.Wrapf(err, "render: updating %s buffers of %q", which, m.Name())
		}
	}
	m.MarkBuffersClean(mesh.AllBuffers)
	return nil
}

// UploadGroup uploads every mesh of g, stopping at the first error.
func UploadGroup(t Target, g *mesh.Group) error {
	return g.Walk(func(m *mesh.IndexedMesh) error {
		return Upload(t, m)
	})
}
