package mesh

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"
)

// Box is an axis-aligned bounding box. The zero Box is empty.
type Box struct {
	box      sdf.Box3
	nonEmpty bool
}

func toVec(p mgl32.Vec3) v3.Vec {
	return v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}
}

// Merge grows the box to contain p.
func (b *Box) Merge(p mgl32.Vec3) {
	v := toVec(p)
	if !b.nonEmpty {
		b.box = sdf.Box3{Min: v, Max: v}
		b.nonEmpty = true
		return
	}
	b.box = sdf.Box3{Min: b.box.Min.Min(v), Max: b.box.Max.Max(v)}
}

// IsEmpty reports whether no point has been merged into the box.
func (b Box) IsEmpty() bool { return !b.nonEmpty }

// Min returns the low corner. It is the zero vector for an empty box.
func (b Box) Min() mgl32.Vec3 {
	return mgl32.Vec3{float32(b.box.Min.X), float32(b.box.Min.Y), float32(b.box.Min.Z)}
}

// Max returns the high corner. It is the zero vector for an empty box.
func (b Box) Max() mgl32.Vec3 {
	return mgl32.Vec3{float32(b.box.Max.X), float32(b.box.Max.Y), float32(b.box.Max.Z)}
}

// Box3 returns the box in sdfx form.
func (b Box) Box3() sdf.Box3 { return b.box }

// Bounds returns the bounding box of the vertices, recomputing it first if it
// has been invalidated.
func (m *IndexedMesh) Bounds() Box {
	m.UpdateBounds()
	return m.bounds
}

// UpdateBounds recomputes the bounding box from all vertices if it is
// currently invalid, and does nothing otherwise.
func (m *IndexedMesh) UpdateBounds() {
	if m.validBounds {
		return
	}
	m.bounds = Box{}
	for _, v := range m.vertices {
		m.bounds.Merge(v)
	}
	m.validBounds = true
}

// InvalidateBounds forces the next UpdateBounds to recompute from scratch.
func (m *IndexedMesh) InvalidateBounds() {
	m.validBounds = false
}
