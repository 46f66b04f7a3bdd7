package mesh

type edgeKey struct{ a, b uint32 }

func makeEdgeKey(i, j uint32) edgeKey {
	if i > j {
		i, j = j, i
	}
	return edgeKey{i, j}
}

// UpdateEdges rebuilds the edge index buffer. It does nothing while wireframe
// display is disabled. Each
// undirected edge appears once, lower vertex index first, in the order it is
// first met walking triangles and then quads.
func (m *IndexedMesh) UpdateEdges() {
	if !m.wireframe {
		return
	}
	m.edges = m.edges[:0]
	m.invalidate(EdgeBuffer)

	seen := make(map[edgeKey]struct{}, len(m.tris)+len(m.quads))
	add := func(i, j uint32) {
		k := makeEdgeKey(i, j)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		m.edges = append(m.edges, k.a, k.b)
	}

	for t := 0; t+2 < len(m.tris); t += 3 {
		add(m.tris[t], m.tris[t+1])
		add(m.tris[t+1], m.tris[t+2])
		add(m.tris[t+2], m.tris[t])
	}
	for q := 0; q+3 < len(m.quads); q += 4 {
		add(m.quads[q], m.quads[q+1])
		add(m.quads[q+1], m.quads[q+2])
		add(m.quads[q+2], m.quads[q+3])
		add(m.quads[q+3], m.quads[q])
	}
}
