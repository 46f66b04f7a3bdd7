package engine

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/chazu/trimesh/pkg/kernel"
	"github.com/chazu/trimesh/pkg/mesh"
)

// builtinFunc is the signature zygomys expects for Go functions.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the mesh script builtins into a zygomys
// environment. Meshes and groups they create are recorded in sc.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, sc *scene) {
	fns := map[string]builtinFunc{
		"vec3":         builtinVec3,
		"rgba":         builtinRGBA,
		"defmesh":      sc.defmesh,
		"box":          sc.box,
		"cylinder":     sc.cylinder,
		"union":        sc.combine("union", sc.kernel.Union),
		"difference":   sc.combine("difference", sc.kernel.Difference),
		"intersection": sc.combine("intersection", sc.kernel.Intersection),
		"translate":    sc.transform("translate", sc.kernel.Translate),
		"rotate":       sc.transform("rotate", sc.kernel.Rotate),
		"tessellate":   sc.tessellate,
		"group":        sc.group,
		"normals":      meshOp("normals", (*mesh.IndexedMesh).ComputeAveragedVertexNormals),
		"flip_normals": meshOp("flip-normals", (*mesh.IndexedMesh).FlipNormals),
		"isolate":      meshOp("isolate", (*mesh.IndexedMesh).IsolateFaces),
		"wireframe":    meshOp("wireframe", enableWireframe),
	}
	for name, fn := range fns {
		env.AddFunction(name, fn)
	}
}

// -----------------------------------------------------------------------
// (vec3 1 2 3)
// -----------------------------------------------------------------------
func builtinVec3(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
	}
	var v mgl32.Vec3
	for i, axis := range []string{"x", "y", "z"} {
		f, err := toFloat64(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
		}
		v[i] = float32(f)
	}
	return &sexpVec3{vec: v}, nil
}

// -----------------------------------------------------------------------
// (rgba 1 0.5 0) or (rgba 1 0.5 0 0.25)
// -----------------------------------------------------------------------
func builtinRGBA(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 && len(args) != 4 {
		return zygo.SexpNull, fmt.Errorf("rgba requires 3 or 4 arguments, got %d", len(args))
	}
	c := mgl32.Vec4{0, 0, 0, 1}
	for i, arg := range args {
		f, err := toFloat64(arg)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rgba: component %d: %w", i, err)
		}
		c[i] = float32(f)
	}
	return &sexpColor{rgba: c}, nil
}

// -----------------------------------------------------------------------
// (defmesh "name" :vertices [(vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0)]
//
//	:faces [[0 1 2]] :colors [...] :normals :wireframe)
//
// Faces with more than four corners are triangulated.
// -----------------------------------------------------------------------
func (sc *scene) defmesh(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) < 1 {
		return zygo.SexpNull, fmt.Errorf("defmesh requires a name argument")
	}
	meshName, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("defmesh: name: %w", err)
	}

	var positions []mgl32.Vec3
	if v, ok := pa.kw["vertices"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defmesh %s: vertices: %w", meshName, err)
		}
		for i, item := range items {
			p, err := toVec3(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defmesh %s: vertex %d: %w", meshName, i, err)
			}
			positions = append(positions, p)
		}
	}

	var colors []mgl32.Vec4
	if v, ok := pa.kw["colors"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defmesh %s: colors: %w", meshName, err)
		}
		if len(items) != len(positions) {
			return zygo.SexpNull, fmt.Errorf("defmesh %s: %d colors for %d vertices", meshName, len(items), len(positions))
		}
		for i, item := range items {
			c, err := toColor(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defmesh %s: color %d: %w", meshName, i, err)
			}
			colors = append(colors, c)
		}
	}

	var faces [][]int
	if v, ok := pa.kw["faces"]; ok {
		items, err := sexpListToSlice(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defmesh %s: faces: %w", meshName, err)
		}
		for f, item := range items {
			corners, err := sexpListToSlice(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defmesh %s: face %d: %w", meshName, f, err)
			}
			if len(corners) < 3 {
				return zygo.SexpNull, fmt.Errorf("defmesh %s: face %d has %d corners, need at least 3", meshName, f, len(corners))
			}
			face := make([]int, len(corners))
			for c, corner := range corners {
				i, err := toInt(corner)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("defmesh %s: face %d: %w", meshName, f, err)
				}
				if i < 0 || i >= len(positions) {
					return zygo.SexpNull, fmt.Errorf("defmesh %s: face %d: vertex index %d out of range [0,%d)", meshName, f, i, len(positions))
				}
				face[c] = i
			}
			faces = append(faces, face)
		}
	}

	computeNormals, err := pa.flag("normals")
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("defmesh %s: %w", meshName, err)
	}
	wireframe, err := pa.flag("wireframe")
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("defmesh %s: %w", meshName, err)
	}

	m := mesh.New(meshName)
	for i, p := range positions {
		if colors != nil {
			m.AddVertex(p, mesh.WithColor(colors[i]))
		} else {
			m.AddVertex(p)
		}
	}
	for f, face := range faces {
		if m.AddFace(face, mesh.NoSource).IsEmpty() {
			sc.warn(m, "face %d produced no triangles", f)
		}
	}
	if computeNormals {
		m.ComputeAveragedVertexNormals()
	}
	if wireframe {
		enableWireframe(m)
	}

	return &sexpMesh{node: sc.addMesh(m)}, nil
}

// -----------------------------------------------------------------------
// (box 10 20 5)
// -----------------------------------------------------------------------
func (sc *scene) box(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("box requires exactly 3 arguments, got %d", len(args))
	}
	var dims [3]float64
	for i, axis := range []string{"x", "y", "z"} {
		f, err := toFloat64(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %s: %w", axis, err)
		}
		if f <= 0 {
			return zygo.SexpNull, fmt.Errorf("box: %s must be positive, got %g", axis, f)
		}
		dims[i] = f
	}
	return &sexpSolid{solid: sc.kernel.Box(dims[0], dims[1], dims[2])}, nil
}

// -----------------------------------------------------------------------
// (cylinder :height 10 :radius 2 :segments 32)
// -----------------------------------------------------------------------
func (sc *scene) cylinder(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	height, err := pa.number("height", 0)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
	}
	radius, err := pa.number("radius", 0)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
	}
	segments, err := pa.number("segments", 32)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
	}
	if height <= 0 || radius <= 0 {
		return zygo.SexpNull, fmt.Errorf("cylinder: height and radius must be positive, got %g and %g", height, radius)
	}
	return &sexpSolid{solid: sc.kernel.Cylinder(height, radius, int(segments))}, nil
}

// combine builds a boolean builtin: (union a b c ...) folds left to right.
func (sc *scene) combine(op string, fn func(a, b kernel.Solid) kernel.Solid) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires at least 2 solids, got %d", op, len(args))
		}
		acc, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: argument 0: %w", op, err)
		}
		for i, arg := range args[1:] {
			s, err := toSolid(arg)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: argument %d: %w", op, i+1, err)
			}
			acc = fn(acc, s)
		}
		return &sexpSolid{solid: acc}, nil
	}
}

// transform builds (translate solid (vec3 ...)) and (rotate solid (vec3 ...)).
// Rotation angles are in degrees.
func (sc *scene) transform(op string, fn func(s kernel.Solid, x, y, z float64) kernel.Solid) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires a solid and a vec3", op)
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
		}
		v, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
		}
		return &sexpSolid{solid: fn(s, float64(v[0]), float64(v[1]), float64(v[2]))}, nil
	}
}

// -----------------------------------------------------------------------
// (tessellate "name" solid :flat)
// -----------------------------------------------------------------------
func (sc *scene) tessellate(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("tessellate requires a name and a solid")
	}
	meshName, err := toString(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("tessellate: name: %w", err)
	}
	s, err := toSolid(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("tessellate %s: %w", meshName, err)
	}
	flat, err := pa.flag("flat")
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("tessellate %s: %w", meshName, err)
	}

	m, err := sc.kernel.ToMesh(s, meshName)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("tessellate: %w", err)
	}
	if flat {
		m.IsolateFaces()
		m.ComputeAveragedVertexNormals()
	}
	return &sexpMesh{node: sc.addMesh(m)}, nil
}

// -----------------------------------------------------------------------
// (group "name" mesh-or-group ...)
//
// Arguments may also be lists of meshes and groups.
// -----------------------------------------------------------------------
func (sc *scene) group(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) < 1 {
		return zygo.SexpNull, fmt.Errorf("group requires a name argument")
	}
	groupName, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("group: name: %w", err)
	}

	g := mesh.NewGroup(groupName)
	var add func(i int, s zygo.Sexp) error
	add = func(i int, s zygo.Sexp) error {
		switch v := s.(type) {
		case *sexpMesh:
			return sc.adopt(g, v.node)
		case *sexpGroup:
			return sc.adopt(g, v.node)
		}
		items, err := sexpListToSlice(s)
		if err != nil {
			return fmt.Errorf("member %d: expected mesh or group, got %T (%s)", i, s, s.SexpString(nil))
		}
		for _, item := range items {
			if err := add(i, item); err != nil {
				return err
			}
		}
		return nil
	}
	for i, arg := range args[1:] {
		if err := add(i, arg); err != nil {
			return zygo.SexpNull, fmt.Errorf("group %s: %w", groupName, err)
		}
	}
	return &sexpGroup{node: sc.addGroup(g)}, nil
}

// meshOp wraps an in-place mesh operation as (op mesh). It returns the mesh
// so calls can be nested.
func meshOp(op string, fn func(m *mesh.IndexedMesh)) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires exactly 1 argument, got %d", op, len(args))
		}
		m, err := toMesh(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
		}
		fn(m.node.mesh)
		return m, nil
	}
}

func enableWireframe(m *mesh.IndexedMesh) {
	m.SetWireframeEnabled(true)
	m.UpdateEdges()
}
