//go:build !manifold

// Package manifold binds the Manifold boolean-geometry library as a
// kernel.Kernel. This build lacks the "manifold" tag, so New always fails
// with ErrUnavailable and callers fall back to another kernel.
package manifold

import (
	"github.com/pkg/errors"

	"github.com/chazu/trimesh/pkg/kernel"
)

// ErrUnavailable is returned by New in builds without the manifold tag.
var ErrUnavailable = errors.New("manifold kernel not available: build with -tags=manifold")

// New reports ErrUnavailable.
func New() (kernel.Kernel, error) {
	return nil, ErrUnavailable
}
