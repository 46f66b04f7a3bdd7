package off

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/trimesh/pkg/mesh"
)

func triangleStrip(name string, n int) *mesh.IndexedMesh {
	m := mesh.New(name)
	for i := 0; i < n; i++ {
		m.AddVertex(mgl32.Vec3{float32(i) * 0.1, float32(i%2) - 3.25, 1e-7 * float32(i)})
	}
	for i := 0; i+2 < n; i++ {
		if i%2 == 0 {
			m.AddTriangle(i, i+1, i+2, mesh.NoSource)
		} else {
			m.AddTriangle(i+1, i, i+2, mesh.NoSource)
		}
	}
	return m
}

func groupOf(ms ...*mesh.IndexedMesh) *mesh.Group {
	g := mesh.NewGroup("g")
	for _, m := range ms {
		g.AddMesh(m)
	}
	return g
}

func readBack(t *testing.T, c *Codec, data []byte) *mesh.IndexedMesh {
	t.Helper()
	g := mesh.NewGroup("in")
	require.NoError(t, c.Read(bytes.NewReader(data), g))
	require.Len(t, g.Meshes(), 1)
	return g.Meshes()[0]
}

func assertSameMesh(t *testing.T, want, got *mesh.IndexedMesh) {
	t.Helper()
	require.Equal(t, want.NumVertices(), got.NumVertices())
	require.Equal(t, want.NumTriangles(), got.NumTriangles())
	require.Equal(t, want.NumQuads(), got.NumQuads())
	assert.Equal(t, want.Vertices(), got.Vertices())
	assert.Equal(t, want.TriangleIndices(), got.TriangleIndices())
	assert.Equal(t, want.QuadIndices(), got.QuadIndices())
}

func TestRoundTrip(t *testing.T) {
	for _, binaryFormat := range []bool{false, true} {
		name := "ascii"
		if binaryFormat {
			name = "binary"
		}
		t.Run(name, func(t *testing.T) {
			src := triangleStrip("strip", 12)
			src.AddVertex(mgl32.Vec3{-1, -1, -1})
			src.AddQuad(12, 0, 1, 2, mesh.NoSource)

			c := New()
			c.WriteOpts.Binary = binaryFormat
			var buf bytes.Buffer
			n, err := c.Write(&buf, groupOf(src))
			require.NoError(t, err)
			assert.Equal(t, int64(buf.Len()), n)

			got := readBack(t, c, buf.Bytes())
			assertSameMesh(t, src, got)
			assert.Equal(t, "in/Mesh0", got.Name())
		})
	}
}

func TestWriteASCIILayout(t *testing.T) {
	m := mesh.New("tri")
	m.AddVertex(mgl32.Vec3{0, 0, 0})
	m.AddVertex(mgl32.Vec3{1, 0, 0})
	m.AddVertex(mgl32.Vec3{0, 0.5, -2})
	m.AddTriangle(0, 1, 2, mesh.NoSource)

	var buf bytes.Buffer
	_, err := New().Write(&buf, groupOf(m))
	require.NoError(t, err)
	assert.Equal(t, "OFF\n3 1 0\n0 0 0\n1 0 0\n0 0.5 -2\n3 0 1 2\n", buf.String())
}

func TestWriteBinaryLayout(t *testing.T) {
	m := mesh.New("one")
	m.AddVertex(mgl32.Vec3{1, 2, 3})
	m.AddTriangle(0, 0, 0, mesh.NoSource)

	c := New()
	c.WriteOpts.Binary = true
	var buf bytes.Buffer
	n, err := c.Write(&buf, groupOf(m))
	require.NoError(t, err)

	want := []byte("OFF BINARY\n")
	want = append(want,
		0x00, 0x00, 0x00, 0x01, // vertices
		0x00, 0x00, 0x00, 0x01, // faces
		0x00, 0x00, 0x00, 0x00, // edges
		0x3f, 0x80, 0x00, 0x00, // 1.0
		0x40, 0x00, 0x00, 0x00, // 2.0
		0x40, 0x40, 0x00, 0x00, // 3.0
		0x00, 0x00, 0x00, 0x03,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // color components
	)
	assert.Equal(t, want, buf.Bytes())
	assert.Equal(t, int64(len(want)), n)

	// The face repeats a vertex, so it is dropped on read.
	got := readBack(t, c, buf.Bytes())
	assert.Equal(t, 1, got.NumVertices())
	assert.Equal(t, 0, got.NumFaces())
}

func TestFramedRoundTrip(t *testing.T) {
	src := triangleStrip("strip", 7)
	c := New()

	var plain bytes.Buffer
	_, err := c.Write(&plain, groupOf(src))
	require.NoError(t, err)

	var framed bytes.Buffer
	n, err := c.WritePrefixed(&framed, groupOf(src))
	require.NoError(t, err)
	assert.Equal(t, int64(framed.Len()), n)

	data := framed.Bytes()
	assert.Equal(t, Magic, string(data[:8]))
	size := binary.LittleEndian.Uint32(data[8:12])
	assert.Equal(t, uint32(plain.Len()), size)
	assert.Equal(t, plain.Bytes(), data[12:])

	g := mesh.NewGroup("framed")
	require.NoError(t, c.ReadPrefixed(bytes.NewReader(data), g))
	require.Len(t, g.Meshes(), 1)
	assertSameMesh(t, readBack(t, c, plain.Bytes()), g.Meshes()[0])
}

func TestFramedBlocksBackToBack(t *testing.T) {
	c := New()
	c.WriteOpts.Binary = true
	var buf bytes.Buffer
	_, err := c.WritePrefixed(&buf, groupOf(triangleStrip("a", 4)))
	require.NoError(t, err)
	c.WriteOpts.Binary = false
	_, err = c.WritePrefixed(&buf, groupOf(triangleStrip("b", 9)))
	require.NoError(t, err)

	r := bytes.NewReader(buf.Bytes())
	g := mesh.NewGroup("blocks")
	require.NoError(t, c.ReadPrefixed(r, g))
	assert.Equal(t, 4, g.NumVertices())
	require.NoError(t, c.ReadPrefixed(r, g))
	assert.Equal(t, 9, g.NumVertices())
	assert.Equal(t, 0, r.Len())

	err = c.ReadPrefixed(r, g)
	assert.True(t, errors.Is(err, ErrTruncated))
}

func TestReadPrefixedHugeLengthShortBody(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(Magic)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(1<<30)))
	buf.WriteString("OFF\n")

	g := mesh.NewGroup("x")
	err := New().ReadPrefixed(&buf, g)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTruncated), "got %v", err)
	assert.Equal(t, 0, g.NumMeshes())
}

func TestReadPrefixedBadMagic(t *testing.T) {
	data := append([]byte("NOTOFF  \x04\x00\x00\x00"), "OFF\n"...)
	err := New().ReadPrefixed(bytes.NewReader(data), mesh.NewGroup("x"))
	assert.True(t, errors.Is(err, ErrFormat))
}

func TestReadMalformedHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"comments only", "# nothing\n\n# here\n"},
		{"ply", "ply\nformat ascii 1.0\n"},
		{"no separator", "OFFX\n1 0 0\n0 0 0\n"},
		{"lowercase", "off\n0 0 0\n"},
		{"garbage", "\x00\x01\x02\x03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mesh.NewGroup("bad")
			err := New().Read(strings.NewReader(tt.input), g)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrFormat), "got %v", err)
		})
	}
}

func TestReadHeaderVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"plain", "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n"},
		{"leading comment", "# made by hand\n\nOFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n"},
		{"trailing header text", "OFF generated\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n"},
		{"comments between records", "OFF\n# counts\n3 1 0\n0 0 0\n\n# more\n1 0 0\n0 1 0\n# faces\n3 0 1 2"},
		{"face colors ignored", "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2 255 0 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mesh.NewGroup("ok")
			require.NoError(t, New().Read(strings.NewReader(tt.input), g))
			require.Len(t, g.Meshes(), 1)
			m := g.Meshes()[0]
			assert.Equal(t, 3, m.NumVertices())
			assert.Equal(t, [3]int{0, 1, 2}, m.Triangle(0))
		})
	}
}

func TestReadSkipsRepeatedIndexFace(t *testing.T) {
	input := `OFF
4 3 0
0 0 0
1 0 0
1 1 0
0 1 0
4 0 1 1 2
3 0 1 2
4 0 1 2 3
`
	g := mesh.NewGroup("rep")
	require.NoError(t, New().Read(strings.NewReader(input), g))
	m := g.Meshes()[0]
	assert.Equal(t, 1, m.NumTriangles())
	assert.Equal(t, 1, m.NumQuads())
	assert.Equal(t, [3]int{0, 1, 2}, m.Triangle(0))
	assert.Equal(t, [4]int{0, 1, 2, 3}, m.Quad(0))
	// Face numbers from the file are kept as provenance.
	assert.Equal(t, []int{1}, m.TriangleSourceFaceIndices())
	assert.Equal(t, []int{2}, m.QuadSourceFaceIndices())
	assert.Equal(t, []int{0, 1, 2, 3}, m.VertexSourceIndices())
}

func TestReadBinarySkipsRepeatedIndexFace(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("OFF BINARY\n")
	put := func(vs ...uint32) {
		for _, v := range vs {
			binary.Write(&buf, binary.BigEndian, v)
		}
	}
	put(3, 2, 0)
	for _, f := range []float32{0, 0, 0, 1, 0, 0, 0, 1, 0} {
		binary.Write(&buf, binary.BigEndian, f)
	}
	put(4, 0, 1, 1, 2, 2)      // repeated index, two color components
	buf.Write(make([]byte, 8)) // the color components
	put(3, 2, 1, 0, 0)         // valid face, no colors

	g := mesh.NewGroup("bin")
	require.NoError(t, New().Read(&buf, g))
	m := g.Meshes()[0]
	require.Equal(t, 1, m.NumTriangles())
	assert.Equal(t, [3]int{2, 1, 0}, m.Triangle(0))
}

func TestReadSkipsShortFaces(t *testing.T) {
	input := "OFF\n3 3 0\n0 0 0\n1 0 0\n0 1 0\n2 0 1\n0\n3 0 1 2\n"
	g := mesh.NewGroup("short")
	require.NoError(t, New().Read(strings.NewReader(input), g))
	m := g.Meshes()[0]
	assert.Equal(t, 1, m.NumFaces())
}

func TestReadPolygonFace(t *testing.T) {
	input := "OFF\n6 1 0\n0 0 0\n1 0 0\n2 0 0\n2 1 0\n1 1 0\n0 1 0\n6 0 1 2 3 4 5\n"
	g := mesh.NewGroup("hex")
	require.NoError(t, New().Read(strings.NewReader(input), g))
	m := g.Meshes()[0]
	assert.Equal(t, 4, m.NumTriangles())
	assert.Equal(t, []int{0, 0, 0, 0}, m.TriangleSourceFaceIndices())
}

func TestReadIndexRange(t *testing.T) {
	input := "OFF\n3 2 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n3 0 1 3\n"
	err := New().Read(strings.NewReader(input), mesh.NewGroup("r"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexRange))
	assert.Contains(t, err.Error(), "line 7")

	input = "OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 -1 2\n"
	err = New().Read(strings.NewReader(input), mesh.NewGroup("r"))
	assert.True(t, errors.Is(err, ErrIndexRange))
}

func TestReadTruncated(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no counts", "OFF\n"},
		{"missing vertex", "OFF\n3 1 0\n0 0 0\n1 0 0\n"},
		{"missing face", "OFF\n3 2 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n# eof\n"},
		{"binary counts", "OFF BINARY\n\x00\x00\x00\x01\x00\x00"},
		{"binary vertex", "OFF BINARY\n\x00\x00\x00\x01\x00\x00\x00\x00\x00\x00\x00\x00\x3f\x80\x00\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Read(strings.NewReader(tt.input), mesh.NewGroup("t"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTruncated), "got %v", err)
		})
	}
}

func TestReadBadRecords(t *testing.T) {
	tests := []string{
		"OFF\n3 1\n",
		"OFF\nthree 1 0\n",
		"OFF\n1 0 0\n0 0\n",
		"OFF\n1 0 0\n0 zero 0\n",
		"OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1\n",
		"OFF\n3 1 0\n0 0 0\n1 0 0\n0 1 0\nx 0 1 2\n",
	}
	for _, input := range tests {
		err := New().Read(strings.NewReader(input), mesh.NewGroup("t"))
		assert.True(t, errors.Is(err, ErrFormat), "input %q: got %v", input, err)
	}
}

func TestReadEmptyMesh(t *testing.T) {
	g := mesh.NewGroup("empty")
	g.AddMesh(mesh.New("stale"))
	require.NoError(t, New().Read(strings.NewReader("OFF\n0 0 0\n"), g))
	assert.True(t, g.IsEmpty())

	c := New()
	c.ReadOpts.SkipEmptyMeshes = false
	require.NoError(t, c.Read(strings.NewReader("OFF\n0 0 0\n"), g))
	require.Len(t, g.Meshes(), 1)
	assert.True(t, g.Meshes()[0].IsEmpty())
}

func TestWriteGroupTraversal(t *testing.T) {
	a := mesh.New("a")
	a.AddVertex(mgl32.Vec3{0, 0, 0})
	a.AddVertex(mgl32.Vec3{1, 0, 0})
	a.AddVertex(mgl32.Vec3{0, 1, 0})
	a.AddTriangle(2, 1, 0, mesh.NoSource)

	b := mesh.New("b")
	b.AddVertex(mgl32.Vec3{5, 5, 5})
	b.AddVertex(mgl32.Vec3{6, 5, 5})
	b.AddVertex(mgl32.Vec3{6, 6, 5})
	b.AddVertex(mgl32.Vec3{5, 6, 5})
	b.AddQuad(0, 1, 2, 3, mesh.NoSource)
	b.AddTriangle(0, 1, 2, mesh.NoSource)

	root := mesh.NewGroup("root")
	child := mesh.NewGroup("child")
	child.AddMesh(b)
	root.AddChild(child)
	root.AddMesh(a)

	var buf bytes.Buffer
	_, err := New().Write(&buf, root)
	require.NoError(t, err)
	assert.Equal(t, `OFF
7 3 0
0 0 0
1 0 0
0 1 0
5 5 5
6 5 5
6 6 5
5 6 5
3 2 1 0
3 3 4 5
4 3 4 5 6
`, buf.String())
}

func TestWriteSameMeshTwice(t *testing.T) {
	a := mesh.New("a")
	a.AddVertex(mgl32.Vec3{0, 0, 0})
	a.AddVertex(mgl32.Vec3{1, 0, 0})
	a.AddVertex(mgl32.Vec3{0, 1, 0})
	a.AddTriangle(0, 1, 2, mesh.NoSource)

	root := mesh.NewGroup("root")
	child := mesh.NewGroup("child")
	root.AddMesh(a)
	child.AddMesh(a)
	root.AddChild(child)

	var buf bytes.Buffer
	_, err := New().Write(&buf, root)
	require.NoError(t, err)
	assert.Equal(t, `OFF
6 2 0
0 0 0
1 0 0
0 1 0
0 0 0
1 0 0
0 1 0
3 0 1 2
3 3 4 5
`, buf.String())
}

type recorder struct {
	vertices, faces []int
}

func (r *recorder) VertexAdded(_ *mesh.IndexedMesh, fileIndex, _ int) {
	r.vertices = append(r.vertices, fileIndex)
}

func (r *recorder) FaceAdded(_ *mesh.IndexedMesh, fileIndex int, _ mesh.Face) {
	r.faces = append(r.faces, fileIndex)
}

func TestReadCallback(t *testing.T) {
	input := "OFF\n3 3 0\n0 0 0\n1 0 0\n0 1 0\n3 0 1 2\n3 0 0 2\n3 2 1 0\n"
	rec := &recorder{}
	c := New()
	c.Callback = rec
	require.NoError(t, c.Read(strings.NewReader(input), mesh.NewGroup("cb")))
	assert.Equal(t, []int{0, 1, 2}, rec.vertices)
	assert.Equal(t, []int{0, 2}, rec.faces)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteError(t *testing.T) {
	_, err := New().Write(failingWriter{}, groupOf(triangleStrip("s", 3)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
