package engine

import (
	"fmt"

	"github.com/chazu/trimesh/pkg/kernel"
	"github.com/chazu/trimesh/pkg/mesh"
)

// scene collects the meshes and groups a script creates. Anything not placed
// into a group by the script ends up directly under the root, in creation
// order.
type scene struct {
	root     *mesh.Group
	kernel   kernel.Kernel
	nodes    []*sceneNode
	warnings []EvalWarning
}

// sceneNode is one mesh or group created by a script.
type sceneNode struct {
	mesh   *mesh.IndexedMesh
	group  *mesh.Group
	parent *mesh.Group
}

func (n *sceneNode) name() string {
	if n.mesh != nil {
		return n.mesh.Name()
	}
	return n.group.Name()
}

func newScene(name string, k kernel.Kernel) *scene {
	return &scene{root: mesh.NewGroup(name), kernel: k}
}

func (s *scene) addMesh(m *mesh.IndexedMesh) *sceneNode {
	n := &sceneNode{mesh: m}
	s.nodes = append(s.nodes, n)
	return n
}

func (s *scene) addGroup(g *mesh.Group) *sceneNode {
	n := &sceneNode{group: g}
	s.nodes = append(s.nodes, n)
	return n
}

// adopt moves n under g. A node belongs to at most one group.
func (s *scene) adopt(g *mesh.Group, n *sceneNode) error {
	if n.parent != nil {
		return fmt.Errorf("%q already belongs to group %q", n.name(), n.parent.Name())
	}
	n.parent = g
	if n.mesh != nil {
		g.AddMesh(n.mesh)
	} else {
		g.AddChild(n.group)
	}
	return nil
}

func (s *scene) warn(m *mesh.IndexedMesh, format string, args ...interface{}) {
	s.warnings = append(s.warnings, EvalWarning{Mesh: m.Name(), Message: fmt.Sprintf(format, args...)})
}

// finish attaches every parentless node to the root and returns it.
func (s *scene) finish() *mesh.Group {
	for _, n := range s.nodes {
		if n.parent == nil {
			_ = s.adopt(s.root, n)
		}
	}
	return s.root
}
