package sdfx

import (
	"math"
	"testing"
)

// testCells keeps marching cubes fast in tests.
const testCells = 40

func TestBox(t *testing.T) {
	k := New(WithMeshCells(testCells))
	box := k.Box(100, 50, 25)
	m, err := k.ToMesh(box, "box")
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if m.Name() != "box" {
		t.Errorf("Name() = %q, want %q", m.Name(), "box")
	}
	triCount := m.NumTriangles()
	if triCount == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	// Welding shares corners between neighbouring triangles.
	if m.NumVertices() >= 3*triCount {
		t.Errorf("%d vertices for %d triangles, expected shared vertices", m.NumVertices(), triCount)
	}
	if !m.HasNormals() {
		t.Fatal("expected vertex normals")
	}
	for i, n := range m.Normals() {
		if l := n.Len(); l != 0 && math.Abs(float64(l)-1) > 1e-4 {
			t.Fatalf("normal %d has length %f", i, l)
		}
	}

	// Surface bounds match the solid within one cell.
	const tol = 100.0 / testCells
	b := m.Bounds()
	want := [3]float32{100, 50, 25}
	for i := 0; i < 3; i++ {
		if math.Abs(float64(b.Min()[i])) > tol {
			t.Errorf("min[%d] = %f, expected ~0", i, b.Min()[i])
		}
		if math.Abs(float64(b.Max()[i]-want[i])) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, b.Max()[i], want[i])
		}
	}
}

func TestFlatShading(t *testing.T) {
	k := New(WithMeshCells(testCells), WithFlatShading(true))
	m, err := k.ToMesh(k.Box(10, 10, 10), "flat")
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if m.NumVertices() != 3*m.NumTriangles() {
		t.Fatalf("flat mesh has %d vertices for %d triangles", m.NumVertices(), m.NumTriangles())
	}
	// Every corner of a triangle carries the same normal.
	n := m.Normals()
	for i := 0; i < m.NumTriangles(); i++ {
		tri := m.Triangle(i)
		if n[tri[0]] != n[tri[1]] || n[tri[1]] != n[tri[2]] {
			t.Fatalf("triangle %d has differing corner normals", i)
		}
	}
}

func TestCylinder(t *testing.T) {
	k := New(WithMeshCells(testCells))
	cyl := k.Cylinder(50, 10, 32)
	m, err := k.ToMesh(cyl, "cylinder")
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if m.NumTriangles() == 0 {
		t.Fatal("expected non-zero triangle count")
	}
	t.Logf("cylinder triangle count: %d", m.NumTriangles())
}

func TestDifference(t *testing.T) {
	k := New(WithMeshCells(testCells))

	box := k.Box(100, 100, 100)
	boxMesh, err := k.ToMesh(box, "box")
	if err != nil {
		t.Fatalf("ToMesh(box) failed: %v", err)
	}

	cyl := k.Translate(k.Cylinder(120, 20, 32), 50, 50, 50)
	diff := k.Difference(box, cyl)
	diffMesh, err := k.ToMesh(diff, "diff")
	if err != nil {
		t.Fatalf("ToMesh(diff) failed: %v", err)
	}
	// A box with a hole should have more triangles than a plain box.
	if diffMesh.NumTriangles() <= boxMesh.NumTriangles() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.NumTriangles(), boxMesh.NumTriangles())
	}
	t.Logf("box triangles: %d, difference triangles: %d", boxMesh.NumTriangles(), diffMesh.NumTriangles())
}

func TestUnion(t *testing.T) {
	k := New(WithMeshCells(testCells))
	box1 := k.Box(50, 50, 50)
	box2 := k.Translate(k.Box(50, 50, 50), 30, 0, 0)
	u := k.Union(box1, box2)
	m, err := k.ToMesh(u, "union")
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("union mesh is empty")
	}
	b := m.Bounds()
	if math.Abs(float64(b.Max().X())-80) > 2.5 {
		t.Errorf("union max x = %f, expected ~80", b.Max().X())
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	box := k.Box(10, 10, 10)
	translated := k.Translate(box, 100, 200, 300)

	min, max := translated.BoundingBox()

	// Box has its minimum corner at the origin, so the translated box spans
	// (100,200,300) to (110,210,310).
	const tol = 0.5
	expectMin := [3]float64{100, 200, 300}
	expectMax := [3]float64{110, 210, 310}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestBoundingBox(t *testing.T) {
	k := New()
	box := k.Box(100, 50, 25)
	min, max := box.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{100, 50, 25}

	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestIntersection(t *testing.T) {
	k := New(WithMeshCells(testCells))
	box1 := k.Box(100, 100, 100)
	box2 := k.Translate(k.Box(100, 100, 100), 50, 0, 0)
	inter := k.Intersection(box1, box2)
	m, err := k.ToMesh(inter, "intersection")
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("intersection mesh is empty")
	}
	t.Logf("intersection triangle count: %d", m.NumTriangles())
}

func TestRotate(t *testing.T) {
	k := New()
	box := k.Box(100, 10, 10)

	// A long box along X rotated 90 degrees around Z should extend along Y instead.
	rotated := k.Rotate(box, 0, 0, 90)
	min, max := rotated.BoundingBox()

	xExtent := max[0] - min[0]
	yExtent := max[1] - min[1]

	const tol = 1.0
	if math.Abs(xExtent-10) > tol {
		t.Errorf("rotated X extent = %f, expected ~10", xExtent)
	}
	if math.Abs(yExtent-100) > tol {
		t.Errorf("rotated Y extent = %f, expected ~100", yExtent)
	}
}
