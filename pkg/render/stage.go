package render

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/chazu/trimesh/pkg/mesh"
)

// Stage is a Target that keeps its own copy of every uploaded mesh, in
// upload order, and can export them as a glTF document.
type Stage struct {
	order  []*mesh.IndexedMesh
	staged map[*mesh.IndexedMesh]*Buffers
	log    *slog.Logger
}

// NewStage returns an empty stage. A nil logger means slog.Default().
func NewStage(log *slog.Logger) *Stage {
	if log == nil {
		log = slog.Default()
	}
	return &Stage{staged: make(map[*mesh.IndexedMesh]*Buffers), log: log}
}

var _ Target = (*Stage)(nil)

func cloneBuffers(b *Buffers) *Buffers {
	return &Buffers{
		Name:      b.Name,
		Positions: append([]float32(nil), b.Positions...),
		Normals:   append([]float32(nil), b.Normals...),
		Colors:    append([]float32(nil), b.Colors...),
		TexCoords: append([]float32(nil), b.TexCoords...),
		Triangles: append([]uint32(nil), b.Triangles...),
		Quads:     append([]uint32(nil), b.Quads...),
		Edges:     append([]uint32(nil), b.Edges...),
	}
}

func (s *Stage) Create(m *mesh.IndexedMesh, b *Buffers) error {
	if _, ok := s.staged[m]; !ok {
		s.order = append(s.order, m)
	}
	s.staged[m] = cloneBuffers(b)
	s.log.Debug("render: staged mesh", "mesh", b.Name, "vertices", len(b.Positions)/3,
		"triangles", len(b.Triangles)/3, "quads", len(b.Quads)/4, "edges", len(b.Edges)/2)
	return nil
}

func (s *Stage) Update(m *mesh.IndexedMesh, which mesh.BufferID, b *Buffers) error {
	dst, ok := s.staged[m]
	if !ok {
		return errors.Errorf("render: mesh %q has no staged buffers", m.Name())
	}
	update := func(id mesh.BufferID, dst, src []float32) error {
		if which&id == 0 {
			return nil
		}
		if len(dst) != len(src) {
			return errors.Errorf("render: %s buffer of %q changed size from %d to %d", id, m.Name(), len(dst), len(src))
		}
		copy(dst, src)
		return nil
	}
	for _, u := range []struct {
		id       mesh.BufferID
		dst, src []float32
	}{
		{mesh.VertexBuffer, dst.Positions, b.Positions},
		{mesh.NormalBuffer, dst.Normals, b.Normals},
		{mesh.ColorBuffer, dst.Colors, b.Colors},
		{mesh.TexCoordBuffer, dst.TexCoords, b.TexCoords},
	} {
		if err := update(u.id, u.dst, u.src); err != nil {
			return err
		}
	}
	if which&mesh.EdgeBuffer != 0 {
		dst.Edges = append(dst.Edges[:0], b.Edges...)
	}
	s.log.Debug("render: updated mesh", "mesh", m.Name(), "buffers", which.String())
	return nil
}

func (s *Stage) Destroy(m *mesh.IndexedMesh) {
	if _, ok := s.staged[m]; !ok {
		return
	}
	delete(s.staged, m)
	for i, o := range s.order {
		if o == m {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Clear destroys every staged mesh.
func (s *Stage) Clear() {
	s.order = nil
	s.staged = make(map[*mesh.IndexedMesh]*Buffers)
}

// Len returns the number of staged meshes.
func (s *Stage) Len() int { return len(s.order) }

// Each calls fn with the staged buffers of every mesh in upload order. The
// buffers belong to the stage and must not be modified.
func (s *Stage) Each(fn func(b *Buffers)) {
	for _, m := range s.order {
		fn(s.staged[m])
	}
}

// Buffers returns the staged copy for m, or nil.
func (s *Stage) Buffers(m *mesh.IndexedMesh) *Buffers { return s.staged[m] }

// Document builds a glTF document with one node per staged mesh. Quads are
// split into triangles. Edges, when present, become a second primitive drawn
// as lines.
func (s *Stage) Document() *gltf.Document {
	doc := gltf.NewDocument()
	s.Each(func(b *Buffers) {
		gm := &gltf.Mesh{Name: b.Name}
		attrs := map[string]uint32{
			"POSITION": modeler.WritePosition(doc, vec3s(b.Positions)),
		}
		if len(b.Normals) > 0 {
			attrs["NORMAL"] = modeler.WriteNormal(doc, vec3s(b.Normals))
		}
		if len(b.Colors) > 0 {
			attrs["COLOR_0"] = modeler.WriteColor(doc, vec4s(b.Colors))
		}
		if len(b.TexCoords) > 0 {
			attrs["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, vec2s(b.TexCoords))
		}

		if tris := b.TriangleList(); len(tris) > 0 {
			gm.Primitives = append(gm.Primitives, &gltf.Primitive{
				Attributes: attrs,
				Indices:    gltf.Index(modeler.WriteIndices(doc, tris)),
				Mode:       gltf.PrimitiveTriangles,
			})
		}
		if len(b.Edges) > 0 {
			gm.Primitives = append(gm.Primitives, &gltf.Primitive{
				Attributes: attrs,
				Indices:    gltf.Index(modeler.WriteIndices(doc, b.Edges)),
				Mode:       gltf.PrimitiveLines,
			})
		}

		doc.Meshes = append(doc.Meshes, gm)
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: b.Name, Mesh: gltf.Index(uint32(len(doc.Meshes) - 1))})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))
	})
	return doc
}

// WriteGLB encodes Document as binary glTF.
func (s *Stage) WriteGLB(w io.Writer) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(s.Document()); err != nil {
		return errors.Wrap(err, "render: encoding glb")
	}
	return nil
}

// TriangleList returns the triangles followed by every quad split along its
// first diagonal.
func (b *Buffers) TriangleList() []uint32 {
	out := make([]uint32, 0, len(b.Triangles)+len(b.Quads)/4*6)
	out = append(out, b.Triangles...)
	for q := 0; q+3 < len(b.Quads); q += 4 {
		i0, i1, i2, i3 := b.Quads[q], b.Quads[q+1], b.Quads[q+2], b.Quads[q+3]
		out = append(out, i0, i1, i2, i0, i2, i3)
	}
	return out
}

func vec2s(f []float32) [][2]float32 {
	out := make([][2]float32, len(f)/2)
	for i := range out {
		out[i] = [2]float32{f[2*i], f[2*i+1]}
	}
	return out
}

func vec3s(f []float32) [][3]float32 {
	out := make([][3]float32, len(f)/3)
	for i := range out {
		out[i] = [3]float32{f[3*i], f[3*i+1], f[3*i+2]}
	}
	return out
}

func vec4s(f []float32) [][4]float32 {
	out := make([][4]float32, len(f)/4)
	for i := range out {
		out[i] = [4]float32{f[4*i], f[4*i+1], f[4*i+2], f[4*i+3]}
	}
	return out
}
