package off

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/chazu/trimesh/pkg/mesh"
)

// Read replaces the contents of g with the mesh encoded in r.
//
// Faces with fewer than three vertices or with a repeated vertex index are
// skipped. Any other problem aborts the read with an error matching
// ErrFormat, ErrTruncated or ErrIndexRange; g may then hold a partial mesh.
//
// Read may consume bytes past the end of the OFF data unless r is a
// *bufio.Reader. Use ReadPrefixed for blocks embedded in a larger stream.
func (c *Codec) Read(r io.Reader, g *mesh.Group) error {
	g.Clear()
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return c.decode(&lineReader{r: br}, g)
}

// ReadPrefixed reads a block written by WritePrefixed: the magic string, a
// little-endian uint32 byte count and then exactly that many bytes of OFF
// data. The stream is left just after the block.
func (c *Codec) ReadPrefixed(r io.Reader, g *mesh.Group) error {
	g.Clear()

	var prefix [len(Magic) + 4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return truncated(err, "off: reading block prefix")
	}
	if string(prefix[:len(Magic)]) != Magic {
		return errors.Wrapf(ErrFormat, "off: bad block magic %q", prefix[:len(Magic)])
	}
	size := binary.LittleEndian.Uint32(prefix[len(Magic):])
	if size == 0 {
		return nil
	}

	// The length is untrusted, so the block grows only as data arrives.
	var block bytes.Buffer
	if n, err := io.CopyN(&block, r, int64(size)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return truncated(err, "off: reading %d byte block, got %d", size, n)
	}
	return c.decode(&lineReader{r: bufio.NewReader(&block)}, g)
}

func truncated(err error, format string, args ...interface{}) error {
	return errors.Wrapf(eofToTruncated(err), format, args...)
}

func eofToTruncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncated
	}
	return err
}

func (c *Codec) decode(lr *lineReader, g *mesh.Group) error {
	header, err := lr.next()
	if err != nil {
		if errors.Is(err, ErrTruncated) {
			return errors.Wrap(ErrFormat, "off: empty stream")
		}
		return err
	}
	if header != asciiHeader && !strings.HasPrefix(header, asciiHeader+" ") {
		return errors.Wrapf(ErrFormat, "off: line %d: stream does not start with %q", lr.line, asciiHeader)
	}
	if header == binaryHeader || strings.HasPrefix(header, binaryHeader+" ") {
		return c.decodeBinary(&binaryReader{r: lr.r}, g)
	}
	return c.decodeASCII(lr, g)
}

// newMesh logs the declared counts and returns the mesh to fill, or nil if
// the file should produce no mesh.
func (c *Codec) newMesh(g *mesh.Group, numVertices, numFaces, numEdges int64) *mesh.IndexedMesh {
	log := c.ReadOpts.logger()
	log.Log(context.Background(), statsLevel(c.ReadOpts.Verbose), "off: reading mesh",
		"group", g.Name(), "vertices", numVertices, "faces", numFaces, "edges", numEdges)

	if c.ReadOpts.SkipEmptyMeshes && numVertices <= 0 {
		log.Debug("off: skipping empty mesh", "group", g.Name())
		return nil
	}
	m := mesh.New(g.Name() + "/Mesh0")
	g.AddMesh(m)
	return m
}

func (c *Codec) addVertex(m *mesh.IndexedMesh, fileIndex int, p mgl32.Vec3) {
	v := m.AddVertex(p, mesh.WithSourceIndex(fileIndex))
	if c.Callback != nil {
		c.Callback.VertexAdded(m, fileIndex, v)
	}
}

func (c *Codec) addFace(m *mesh.IndexedMesh, fileIndex int, face []int) {
	log := c.ReadOpts.logger()
	if len(face) < 3 {
		log.Debug("off: skipping face with too few vertices", "face", fileIndex, "vertices", len(face))
		return
	}
	f := m.AddFace(face, fileIndex)
	if f.IsEmpty() {
		log.Debug("off: face produced no triangles", "face", fileIndex)
		return
	}
	if c.Callback != nil {
		c.Callback.FaceAdded(m, fileIndex, f)
	}
}

func hasRepeat(face []int, v int) bool {
	for _, w := range face[:v] {
		if w == face[v] {
			return true
		}
	}
	return false
}

func (c *Codec) decodeASCII(lr *lineReader, g *mesh.Group) error {
	line, err := lr.next()
	if err != nil {
		return errors.Wrap(err, "off: reading mesh statistics")
	}
	counts, err := parseInts(line, 3)
	if err != nil {
		return errors.Wrapf(ErrFormat, "off: line %d: could not read mesh statistics %q", lr.line, line)
	}
	numVertices, numFaces := counts[0], counts[1]

	m := c.newMesh(g, numVertices, numFaces, counts[2])
	if m == nil {
		return nil
	}

	for v := int64(0); v < numVertices; v++ {
		line, err := lr.next()
		if err != nil {
			return errors.Wrapf(err, "off: reading vertex %d", v)
		}
		p, ok := parseVertex(line)
		if !ok {
			return errors.Wrapf(ErrFormat, "off: line %d: could not read vertex %q", lr.line, line)
		}
		c.addVertex(m, int(v), p)
	}

	var face []int
	for f := int64(0); f < numFaces; f++ {
		line, err := lr.next()
		if err != nil {
			return errors.Wrapf(err, "off: reading face %d", f)
		}
		fields := strings.Fields(line)
		k, err := strconv.Atoi(fields[0])
		if err != nil {
			return errors.Wrapf(ErrFormat, "off: line %d: could not read number of vertices in face %q", lr.line, line)
		}
		if k <= 0 {
			continue
		}

		face = face[:0]
		skip := false
		for v := 0; v < k && !skip; v++ {
			if v+1 >= len(fields) {
				return errors.Wrapf(ErrFormat, "off: line %d: could not read vertex index %q", lr.line, line)
			}
			index, err := strconv.ParseInt(fields[v+1], 10, 64)
			if err != nil {
				return errors.Wrapf(ErrFormat, "off: line %d: could not read vertex index %q", lr.line, line)
			}
			if index < 0 || index >= numVertices {
				return errors.Wrapf(ErrIndexRange, "off: line %d: vertex index %d", lr.line, index)
			}
			face = append(face, int(index))
			skip = hasRepeat(face, v)
		}
		if skip {
			c.ReadOpts.logger().Debug("off: skipping face with repeated vertices", "face", f, "line", lr.line)
			continue
		}
		c.addFace(m, int(f), face)
	}
	return nil
}

func (c *Codec) decodeBinary(br *binaryReader, g *mesh.Group) error {
	var counts [3]int32
	for i := range counts {
		n, err := br.readInt32()
		if err != nil {
			return errors.Wrap(err, "off: reading mesh statistics")
		}
		counts[i] = n
	}
	numVertices, numFaces := int64(counts[0]), int64(counts[1])

	m := c.newMesh(g, numVertices, numFaces, int64(counts[2]))
	if m == nil {
		return nil
	}

	for v := int64(0); v < numVertices; v++ {
		var p mgl32.Vec3
		for i := range p {
			x, err := br.readFloat32()
			if err != nil {
				return errors.Wrapf(err, "off: reading vertex %d", v)
			}
			p[i] = x
		}
		c.addVertex(m, int(v), p)
	}

	var face []int
	for f := int64(0); f < numFaces; f++ {
		k, err := br.readInt32()
		if err != nil {
			return errors.Wrapf(err, "off: reading face %d", f)
		}
		if k <= 0 {
			continue
		}

		face = face[:0]
		skip := false
		for v := 0; v < int(k); v++ {
			if skip {
				if err := br.discard(4); err != nil {
					return errors.Wrapf(err, "off: reading face %d", f)
				}
				continue
			}
			index, err := br.readInt32()
			if err != nil {
				return errors.Wrapf(err, "off: reading face %d", f)
			}
			if index < 0 || int64(index) >= numVertices {
				return errors.Wrapf(ErrIndexRange, "off: face %d: vertex index %d", f, index)
			}
			face = append(face, int(index))
			skip = hasRepeat(face, v)
		}

		numColors, err := br.readInt32()
		if err != nil {
			return errors.Wrapf(err, "off: reading colors of face %d", f)
		}
		if numColors > 0 {
			if err := br.discard(4 * int64(numColors)); err != nil {
				return errors.Wrapf(err, "off: reading colors of face %d", f)
			}
		}

		if skip {
			c.ReadOpts.logger().Debug("off: skipping face with repeated vertices", "face", f)
			continue
		}
		c.addFace(m, int(f), face)
	}
	return nil
}

// lineReader returns trimmed data lines, skipping blank and comment lines.
type lineReader struct {
	r    *bufio.Reader
	line int
}

func (lr *lineReader) next() (string, error) {
	for {
		s, err := lr.r.ReadString('\n')
		if err != nil && (err != io.EOF || s == "") {
			return "", truncated(err, "off: after line %d", lr.line)
		}
		lr.line++
		s = strings.TrimSpace(s)
		if s == "" || s[0] == '#' {
			if err == io.EOF {
				return "", errors.Wrapf(ErrTruncated, "off: after line %d", lr.line)
			}
			continue
		}
		return s, nil
	}
}

func parseInts(line string, n int) ([]int64, error) {
	fields := strings.Fields(line)
	if len(fields) < n {
		return nil, ErrFormat
	}
	out := make([]int64, n)
	for i := range out {
		v, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseVertex(line string) (mgl32.Vec3, bool) {
	var p mgl32.Vec3
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return p, false
	}
	for i := range p {
		x, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return p, false
		}
		p[i] = float32(x)
	}
	return p, true
}

// binaryReader reads the big-endian payload of a binary OFF block.
type binaryReader struct {
	r   *bufio.Reader
	buf [4]byte
}

func (br *binaryReader) readUint32() (uint32, error) {
	if _, err := io.ReadFull(br.r, br.buf[:]); err != nil {
		return 0, eofToTruncated(err)
	}
	return binary.BigEndian.Uint32(br.buf[:]), nil
}

func (br *binaryReader) readInt32() (int32, error) {
	u, err := br.readUint32()
	return int32(u), err
}

func (br *binaryReader) readFloat32() (float32, error) {
	u, err := br.readUint32()
	return math.Float32frombits(u), err
}

func (br *binaryReader) discard(n int64) error {
	if _, err := io.CopyN(io.Discard, br.r, n); err != nil {
		return eofToTruncated(err)
	}
	return nil
}
