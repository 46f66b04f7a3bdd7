// Package off reads and writes mesh groups in the OFF (Object File Format)
// interchange format, in both its ASCII and big-endian binary variants.
//
// A group is written as a single OFF mesh: the vertices of every mesh in the
// tree, depth first, followed by their faces. Reading produces one mesh named
// "<group name>/Mesh0".
//
// Encoded blocks can optionally be framed with an 8-byte magic string and a
// little-endian uint32 byte count (see WritePrefixed and ReadPrefixed), which
// lets several blocks sit back to back in one stream.
package off

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/chazu/trimesh/pkg/mesh"
)

// Magic opens every framed OFF block.
const Magic = "OFF     "

const (
	asciiHeader  = "OFF"
	binaryHeader = "OFF BINARY"
)

var (
	// ErrFormat reports a malformed header or data line.
	ErrFormat = errors.New("invalid OFF data")
	// ErrTruncated reports that the stream ended before all declared
	// vertices, faces or color components were read.
	ErrTruncated = errors.New("unexpected end of OFF data")
	// ErrIndexRange reports a face referencing a vertex that does not exist.
	ErrIndexRange = errors.New("vertex index out of range")
)

// FaceSource is the view of a mesh the writer needs. Vertices are numbered
// 0..NumVertices()-1 and faces 0..NumFaces()-1.
type FaceSource interface {
	NumVertices() int
	Position(i int) mgl32.Vec3
	NumFaces() int
	FaceIndices(i int, dst []int) []int
}

var _ FaceSource = (*mesh.IndexedMesh)(nil)

// ReadCallback is notified as a mesh is filled in. Indices are positions in
// the file.
type ReadCallback interface {
	VertexAdded(m *mesh.IndexedMesh, fileIndex int, vertex int)
	FaceAdded(m *mesh.IndexedMesh, fileIndex int, face mesh.Face)
}

// ReadOptions control deserialization.
type ReadOptions struct {
	// SkipEmptyMeshes leaves the group empty when the file declares no
	// vertices.
	SkipEmptyMeshes bool
	// Verbose logs mesh statistics at Info level instead of Debug.
	Verbose bool
	Logger  *slog.Logger
}

// DefaultReadOptions returns the options used by New.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{SkipEmptyMeshes: true}
}

// WriteOptions control serialization.
type WriteOptions struct {
	// Binary selects the binary variant.
	Binary  bool
	Verbose bool
	Logger  *slog.Logger
}

// Codec reads and writes OFF data. The zero value is not ready for use; call
// New. A Codec holds no per-call state and may be reused.
type Codec struct {
	ReadOpts  ReadOptions
	WriteOpts WriteOptions
	Callback  ReadCallback
}

// New returns a codec with default options: ASCII output, empty meshes
// skipped on read.
func New() *Codec {
	return &Codec{ReadOpts: DefaultReadOptions()}
}

// Name identifies the codec in log output.
func (c *Codec) Name() string { return "OFF" }

func (o ReadOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o WriteOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func statsLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelInfo
	}
	return slog.LevelDebug
}
