package mesh

import (
	"github.com/pkg/errors"

	"github.com/chazu/trimesh/pkg/polygon"
)

// FaceKind tells which index buffer a Face refers to.
type FaceKind uint8

const (
	// TriangleFace refers to the triangle buffer.
	TriangleFace FaceKind = iota
	// QuadFace refers to the quad buffer.
	QuadFace
)

// Face is a handle to the triangles or quad created by one AddFace call. A
// polygon with more than four vertices is stored as a run of consecutive
// triangles. The zero Face is empty.
//
// A Face stays meaningful only until faces before it are removed.
type Face struct {
	meshID      uint64
	kind        FaceKind
	numVertices int
	first       int
	count       int
}

// IsEmpty reports whether the handle refers to no faces.
func (f Face) IsEmpty() bool { return f.count == 0 }

// Kind returns the index buffer holding the face.
func (f Face) Kind() FaceKind { return f.kind }

// NumVertices returns the vertex count of the polygon that was added.
func (f Face) NumVertices() int { return f.numVertices }

// IsTriangle reports whether the original polygon was a triangle.
func (f Face) IsTriangle() bool { return f.count > 0 && f.numVertices == 3 }

// IsQuad reports whether the original polygon was stored as a quad.
func (f Face) IsQuad() bool { return f.count > 0 && f.kind == QuadFace }

// First returns the index of the first triangle or quad of the face.
func (f Face) First() int { return f.first }

// Count returns the number of triangles or quads making up the face.
func (f Face) Count() int { return f.count }

// AddTriangle appends a triangle and returns its index. A non-negative
// sourceFace is recorded as the triangle's provenance; pass NoSource to
// record none. Indices out of range panic with a *ContractError.
func (m *IndexedMesh) AddTriangle(i0, i1, i2 int, sourceFace int) int {
	const op = "AddTriangle"
	m.checkVertex(op, i0)
	m.checkVertex(op, i1)
	m.checkVertex(op, i2)
	m.checkFaceSource(op, len(m.tris) > 0, len(m.triSourceFaceIndices) > 0, sourceFace)

	if sourceFace >= 0 {
		m.triSourceFaceIndices = append(m.triSourceFaceIndices, sourceFace)
	}
	m.tris = append(m.tris, uint32(i0), uint32(i1), uint32(i2))
	m.invalidate(AllBuffers)
	return m.NumTriangles() - 1
}

// AddQuad appends a quad and returns its index. See AddTriangle.
func (m *IndexedMesh) AddQuad(i0, i1, i2, i3 int, sourceFace int) int {
	const op = "AddQuad"
	m.checkVertex(op, i0)
	m.checkVertex(op, i1)
	m.checkVertex(op, i2)
	m.checkVertex(op, i3)
	m.checkFaceSource(op, len(m.quads) > 0, len(m.quadSourceFaceIndices) > 0, sourceFace)

	if sourceFace >= 0 {
		m.quadSourceFaceIndices = append(m.quadSourceFaceIndices, sourceFace)
	}
	m.quads = append(m.quads, uint32(i0), uint32(i1), uint32(i2), uint32(i3))
	m.invalidate(AllBuffers)
	return m.NumQuads() - 1
}

func (m *IndexedMesh) checkFaceSource(op string, nonEmpty, hasSources bool, sourceFace int) {
	if !nonEmpty {
		return
	}
	switch {
	case hasSources && sourceFace < 0:
		m.violated(op, "faces carry source indices, face must supply one")
	case !hasSources && sourceFace >= 0:
		m.violated(op, "faces carry no source indices, face must not supply one")
	}
}

// AddFace adds a polygon given by vertex indices. Three indices make a
// triangle and four a quad. Larger polygons are triangulated, and every
// resulting triangle records the same sourceFace. Fewer than three indices,
// or a polygon that yields no triangles, leave the mesh unchanged and return
// an empty Face.
func (m *IndexedMesh) AddFace(indices []int, sourceFace int) Face {
	switch n := len(indices); {
	case n < 3:
		return Face{}
	case n == 3:
		t := m.AddTriangle(indices[0], indices[1], indices[2], sourceFace)
		return Face{meshID: m.id, kind: TriangleFace, numVertices: 3, first: t, count: 1}
	case n == 4:
		q := m.AddQuad(indices[0], indices[1], indices[2], indices[3], sourceFace)
		return Face{meshID: m.id, kind: QuadFace, numVertices: 4, first: q, count: 1}
	}

	poly := polygon.New()
	for _, i := range indices {
		m.checkVertex("AddFace", i)
		poly.AddIndexedVertex(m.vertices[i], i)
	}
	tris := poly.Triangulate()
	if len(tris) == 0 {
		diag().Debug("mesh: polygon produced no triangles", "mesh", m.name, "vertices", len(indices))
		return Face{}
	}

	first := m.NumTriangles()
	for _, t := range tris {
		m.AddTriangle(poly.Vertex(t[0]).Index, poly.Vertex(t[1]).Index, poly.Vertex(t[2]).Index, sourceFace)
	}
	return Face{meshID: m.id, kind: TriangleFace, numVertices: len(indices), first: first, count: len(tris)}
}

// RemoveTriangle removes triangle i. Later triangles move down by one.
func (m *IndexedMesh) RemoveTriangle(i int) {
	m.RemoveTriangles(i, 1)
}

// RemoveTriangles removes n consecutive triangles starting at begin.
func (m *IndexedMesh) RemoveTriangles(begin, n int) {
	if n <= 0 {
		return
	}
	if begin < 0 || begin+n > m.NumTriangles() {
		m.violated("RemoveTriangles", "range [%d, %d) out of bounds", begin, begin+n)
	}
	m.tris = append(m.tris[:3*begin], m.tris[3*(begin+n):]...)
	if len(m.triSourceFaceIndices) > 0 {
		m.triSourceFaceIndices = append(m.triSourceFaceIndices[:begin], m.triSourceFaceIndices[begin+n:]...)
	}
	m.invalidate(AllBuffers)
}

// RemoveQuad removes quad i. Later quads move down by one.
func (m *IndexedMesh) RemoveQuad(i int) {
	m.RemoveQuads(i, 1)
}

// RemoveQuads removes n consecutive quads starting at begin.
func (m *IndexedMesh) RemoveQuads(begin, n int) {
	if n <= 0 {
		return
	}
	if begin < 0 || begin+n > m.NumQuads() {
		m.violated("RemoveQuads", "range [%d, %d) out of bounds", begin, begin+n)
	}
	m.quads = append(m.quads[:4*begin], m.quads[4*(begin+n):]...)
	if len(m.quadSourceFaceIndices) > 0 {
		m.quadSourceFaceIndices = append(m.quadSourceFaceIndices[:begin], m.quadSourceFaceIndices[begin+n:]...)
	}
	m.invalidate(AllBuffers)
}

// RemoveFace removes the triangles or quad referred to by f. An empty handle
// is a no-op. A handle issued by another mesh returns ErrForeignFace.
func (m *IndexedMesh) RemoveFace(f Face) error {
	if f.IsEmpty() {
		return nil
	}
	if f.meshID != m.id {
		return errors.Wrapf(ErrForeignFace, "mesh %q", m.name)
	}
	if f.kind == QuadFace {
		m.RemoveQuads(f.first, f.count)
	} else {
		m.RemoveTriangles(f.first, f.count)
	}
	return nil
}

// FaceIndices appends the vertex indices of face i to dst and returns the
// result. Faces are numbered with all triangles first, then all quads.
func (m *IndexedMesh) FaceIndices(i int, dst []int) []int {
	if nt := m.NumTriangles(); i >= nt {
		q := m.Quad(i - nt)
		return append(dst, q[0], q[1], q[2], q[3])
	}
	t := m.Triangle(i)
	return append(dst, t[0], t[1], t[2])
}
