package mesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// IsolateFaces gives every triangle and quad its own copy of each vertex it
// uses, so that no vertex is shared between faces. Attributes and vertex
// source indices follow the copied vertices. Vertices used by no face are
// dropped. Face provenance is unchanged; edges must be rebuilt with
// UpdateEdges.
func (m *IndexedMesh) IsolateFaces() {
	n := len(m.tris) + len(m.quads)
	vertices := make([]mgl32.Vec3, 0, n)
	var normals, colors, texcoords = m.normals[:0:0], m.colors[:0:0], m.texcoords[:0:0]
	var sources []int

	hasNormals := len(m.normals) > 0
	hasColors := len(m.colors) > 0
	hasTexCoords := len(m.texcoords) > 0
	hasSources := len(m.vertexSourceIndices) > 0

	copyVertex := func(old uint32) uint32 {
		vertices = append(vertices, m.vertices[old])
		if hasNormals {
			normals = append(normals, m.normals[old])
		}
		if hasColors {
			colors = append(colors, m.colors[old])
		}
		if hasTexCoords {
			texcoords = append(texcoords, m.texcoords[old])
		}
		if hasSources {
			sources = append(sources, m.vertexSourceIndices[old])
		}
		return uint32(len(vertices) - 1)
	}

	tris := make([]uint32, len(m.tris))
	for i, old := range m.tris {
		tris[i] = copyVertex(old)
	}
	quads := make([]uint32, len(m.quads))
	for i, old := range m.quads {
		quads[i] = copyVertex(old)
	}

	m.vertices = vertices
	m.normals = normals
	m.colors = colors
	m.texcoords = texcoords
	m.vertexSourceIndices = sources
	m.tris = tris
	m.quads = quads
	m.edges = m.edges[:0]

	m.validBounds = false
	m.invalidate(AllBuffers)
}
