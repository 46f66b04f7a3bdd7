package off

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"github.com/chazu/trimesh/pkg/mesh"
)

// Write encodes every mesh in g as one OFF mesh and returns the number of
// bytes written.
func (c *Codec) Write(w io.Writer, g *mesh.Group) (int64, error) {
	return c.WriteFaceSources(w, groupSources(g))
}

// WritePrefixed writes g framed by the magic string and the little-endian
// byte count of the encoded block. The returned count includes the prefix.
func (c *Codec) WritePrefixed(w io.Writer, g *mesh.Group) (int64, error) {
	var block bytes.Buffer
	if _, err := c.WriteFaceSources(&block, groupSources(g)); err != nil {
		return 0, err
	}
	if uint64(block.Len()) > math.MaxUint32 {
		return 0, errors.Errorf("off: encoded block of %d bytes does not fit the size field", block.Len())
	}

	var prefix [len(Magic) + 4]byte
	copy(prefix[:], Magic)
	binary.LittleEndian.PutUint32(prefix[len(Magic):], uint32(block.Len()))

	n, err := w.Write(prefix[:])
	total := int64(n)
	if err != nil {
		return total, errors.Wrap(err, "off: writing block prefix")
	}
	m, err := block.WriteTo(w)
	total += m
	if err != nil {
		return total, errors.Wrap(err, "off: writing block")
	}
	return total, nil
}

// groupSources lists the meshes of g in traversal order: a group's meshes
// before its children, depth first.
func groupSources(g *mesh.Group) []FaceSource {
	var srcs []FaceSource
	_ = g.Walk(func(m *mesh.IndexedMesh) error {
		srcs = append(srcs, m)
		return nil
	})
	return srcs
}

// WriteFaceSources encodes the given meshes, in order, as one OFF mesh.
func (c *Codec) WriteFaceSources(w io.Writer, srcs []FaceSource) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	enc := &encoder{w: bw, binary: c.WriteOpts.Binary, base: make([]int, len(srcs))}

	var numVertices, numFaces int
	for _, src := range srcs {
		numVertices += src.NumVertices()
		numFaces += src.NumFaces()
	}
	c.WriteOpts.logger().Log(context.Background(), statsLevel(c.WriteOpts.Verbose), "off: writing mesh",
		"meshes", len(srcs), "vertices", numVertices, "faces", numFaces, "binary", enc.binary)

	enc.header(numVertices, numFaces)
	for k, src := range srcs {
		enc.vertices(k, src)
	}
	for k, src := range srcs {
		enc.faces(k, src)
	}

	if enc.err == nil {
		enc.err = bw.Flush()
	}
	if enc.err != nil {
		return cw.n, errors.Wrap(enc.err, "off: write")
	}
	return cw.n, nil
}

// encoder writes one OFF block. The first write error sticks and turns the
// remaining calls into no-ops.
type encoder struct {
	w       *bufio.Writer
	binary  bool
	err     error
	scratch []byte

	// base holds the output index of the first vertex of each source, by
	// position in the source list. A mesh listed twice is written twice.
	base []int
	next int
}

func (e *encoder) header(numVertices, numFaces int) {
	if e.binary {
		e.str(binaryHeader + "\n")
		e.putInt32(int32(numVertices))
		e.putInt32(int32(numFaces))
		e.putInt32(0)
		return
	}
	e.str(asciiHeader + "\n")
	e.str(fmt.Sprintf("%d %d 0\n", numVertices, numFaces))
}

func (e *encoder) vertices(k int, src FaceSource) {
	e.base[k] = e.next
	n := src.NumVertices()
	for i := 0; i < n; i++ {
		p := src.Position(i)
		if e.binary {
			for _, x := range p {
				e.putInt32(int32(math.Float32bits(x)))
			}
			continue
		}
		b := e.scratch[:0]
		for j, x := range p {
			if j > 0 {
				b = append(b, ' ')
			}
			b = strconv.AppendFloat(b, float64(x), 'g', -1, 32)
		}
		b = append(b, '\n')
		e.scratch = b
		e.bytes(b)
	}
	e.next += n
}

// index returns the output number of vertex i of source k. A miss means the
// vertex was never written, which is a bug in the encoder or in src.
func (e *encoder) index(k int, src FaceSource, i int) int {
	if k < 0 || k >= len(e.base) || i < 0 || i >= src.NumVertices() {
		panic(fmt.Sprintf("off: vertex %d of face source %d was not written", i, k))
	}
	return e.base[k] + i
}

func (e *encoder) faces(k int, src FaceSource) {
	var face []int
	n := src.NumFaces()
	for f := 0; f < n; f++ {
		face = src.FaceIndices(f, face[:0])
		if len(face) < 3 {
			continue
		}
		if e.binary {
			e.putInt32(int32(len(face)))
			for _, i := range face {
				e.putInt32(int32(e.index(k, src, i)))
			}
			e.putInt32(0) // color components
			continue
		}
		b := strconv.AppendInt(e.scratch[:0], int64(len(face)), 10)
		for _, i := range face {
			b = append(b, ' ')
			b = strconv.AppendInt(b, int64(e.index(k, src, i)), 10)
		}
		b = append(b, '\n')
		e.scratch = b
		e.bytes(b)
	}
}

func (e *encoder) putInt32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	e.bytes(b[:])
}

func (e *encoder) str(s string) {
	if e.err == nil {
		_, e.err = e.w.WriteString(s)
	}
}

func (e *encoder) bytes(b []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(b)
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
