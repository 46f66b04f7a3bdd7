package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// faceNormal returns the unit normal of the corner at b, with a and c its
// neighbours in face order. ok is false for a degenerate corner.
func faceNormal(a, b, c mgl32.Vec3) (n mgl32.Vec3, ok bool) {
	n = c.Sub(b).Cross(a.Sub(b))
	l := n.Len()
	if l == 0 {
		return mgl32.Vec3{}, false
	}
	return n.Mul(1 / l), true
}

// ComputeAveragedVertexNormals sets each vertex normal to the normalized sum
// of the unit normals of the faces using the vertex, so every face counts the
// same regardless of its area. Degenerate faces are skipped. Vertices used by
// no face, or whose face normals cancel, get a zero normal.
func (m *IndexedMesh) ComputeAveragedVertexNormals() {
	resized := len(m.normals) != len(m.vertices)
	if resized {
		m.normals = make([]mgl32.Vec3, len(m.vertices))
	} else {
		for i := range m.normals {
			m.normals[i] = mgl32.Vec3{}
		}
	}

	v := m.vertices
	for t := 0; t+2 < len(m.tris); t += 3 {
		i0, i1, i2 := m.tris[t], m.tris[t+1], m.tris[t+2]
		n, ok := faceNormal(v[i0], v[i1], v[i2])
		if !ok {
			continue
		}
		m.normals[i0] = m.normals[i0].Add(n)
		m.normals[i1] = m.normals[i1].Add(n)
		m.normals[i2] = m.normals[i2].Add(n)
	}
	for q := 0; q+3 < len(m.quads); q += 4 {
		i0, i1, i2, i3 := m.quads[q], m.quads[q+1], m.quads[q+2], m.quads[q+3]
		n, ok := faceNormal(v[i0], v[i1], v[i2])
		if !ok {
			continue
		}
		m.normals[i0] = m.normals[i0].Add(n)
		m.normals[i1] = m.normals[i1].Add(n)
		m.normals[i2] = m.normals[i2].Add(n)
		m.normals[i3] = m.normals[i3].Add(n)
	}

	for i, n := range m.normals {
		if l := n.Len(); l > 0 {
			m.normals[i] = n.Mul(1 / l)
		}
	}

	if resized {
		m.invalidate(AllBuffers)
	} else {
		m.invalidate(NormalBuffer)
	}
}

// FlipNormals reverses every vertex normal.
func (m *IndexedMesh) FlipNormals() {
	for i, n := range m.normals {
		m.normals[i] = n.Mul(-1)
	}
	m.invalidate(NormalBuffer)
}
