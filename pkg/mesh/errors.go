package mesh

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// ErrForeignFace is returned when a face handle is used with a mesh other
// than the one that created it.
var ErrForeignFace = errors.New("mesh: face belongs to a different mesh")

// ContractError describes a misuse of the mesh API, such as an out-of-range
// index or inconsistent attribute presence. Mesh methods panic with a
// *ContractError; it signals a caller bug, not bad input data.
type ContractError struct {
	Mesh string
	Op   string
	Msg  string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("mesh %q: %s: %s", e.Mesh, e.Op, e.Msg)
}

func (m *IndexedMesh) violated(op, format string, args ...interface{}) {
	panic(&ContractError{Mesh: m.name, Op: op, Msg: fmt.Sprintf(format, args...)})
}

func (m *IndexedMesh) checkVertex(op string, i int) {
	if i < 0 || i >= len(m.vertices) {
		m.violated(op, "vertex index %d out of bounds", i)
	}
}

var logger *slog.Logger

// SetLogger sets the logger used for mesh diagnostics. A nil logger restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	logger = l
}

func diag() *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
