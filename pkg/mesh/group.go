package mesh

// Group is a named tree of meshes. A group owns its meshes and child groups;
// traversal visits a group's meshes before its children.
type Group struct {
	name     string
	meshes   []*IndexedMesh
	children []*Group
}

// NewGroup returns an empty group.
func NewGroup(name string) *Group {
	return &Group{name: name}
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// SetName renames the group.
func (g *Group) SetName(name string) { g.name = name }

// AddMesh appends m to the group.
func (g *Group) AddMesh(m *IndexedMesh) {
	g.meshes = append(g.meshes, m)
}

// AddChild appends a child group.
func (g *Group) AddChild(c *Group) {
	g.children = append(g.children, c)
}

// Meshes returns the meshes directly in g.
func (g *Group) Meshes() []*IndexedMesh { return g.meshes }

// Children returns the direct child groups.
func (g *Group) Children() []*Group { return g.children }

// IsEmpty reports whether the group holds no meshes and no children.
func (g *Group) IsEmpty() bool { return len(g.meshes) == 0 && len(g.children) == 0 }

// Clear removes all meshes and children.
func (g *Group) Clear() {
	g.meshes = nil
	g.children = nil
}

// Walk calls fn for every mesh in the tree, depth first, meshes of a group
// before those of its children. Walk stops at the first error fn returns.
func (g *Group) Walk(fn func(m *IndexedMesh) error) error {
	for _, m := range g.meshes {
		if err := fn(m); err != nil {
			return err
		}
	}
	for _, c := range g.children {
		if err := c.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// NumMeshes returns the number of meshes in the whole tree.
func (g *Group) NumMeshes() int {
	n := 0
	_ = g.Walk(func(*IndexedMesh) error { n++; return nil })
	return n
}

// NumVertices returns the total vertex count of the tree.
func (g *Group) NumVertices() int {
	n := 0
	_ = g.Walk(func(m *IndexedMesh) error { n += m.NumVertices(); return nil })
	return n
}

// NumFaces returns the total triangle and quad count of the tree.
func (g *Group) NumFaces() int {
	n := 0
	_ = g.Walk(func(m *IndexedMesh) error { n += m.NumFaces(); return nil })
	return n
}

// Bounds returns the union of the bounds of every mesh in the tree.
func (g *Group) Bounds() Box {
	var b Box
	_ = g.Walk(func(m *IndexedMesh) error {
		mb := m.Bounds()
		if !mb.IsEmpty() {
			b.Merge(mb.Min())
			b.Merge(mb.Max())
		}
		return nil
	})
	return b
}
