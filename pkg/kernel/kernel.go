// Package kernel defines the abstract solid modeling interface used to seed
// meshes from constructive geometry. Backends turn a Solid into an indexed
// mesh; everything downstream works on *mesh.IndexedMesh only.
package kernel

import (
	"github.com/chazu/trimesh/pkg/mesh"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToMesh tessellates s into a new mesh with the given name.
	ToMesh(s Solid, name string) (*mesh.IndexedMesh, error)
}
