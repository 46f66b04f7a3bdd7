package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chazu/trimesh/pkg/mesh"
)

func newInfoCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE...",
		Short: "Print mesh statistics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				grp, err := g.readGroup(path)
				if err != nil {
					return err
				}
				printInfo(cmd.OutOrStdout(), grp)
			}
			return nil
		},
	}
}

func printInfo(w io.Writer, grp *mesh.Group) {
	fmt.Fprintf(w, "%s: %d meshes, %d vertices, %d faces\n", grp.Name(), grp.NumMeshes(), grp.NumVertices(), grp.NumFaces())
	_ = grp.Walk(func(m *mesh.IndexedMesh) error {
		fmt.Fprintf(w, "  %s\n", m)
		if b := m.Bounds(); !b.IsEmpty() {
			min, max := b.Min(), b.Max()
			fmt.Fprintf(w, "    bounds (%g, %g, %g) .. (%g, %g, %g)\n", min[0], min[1], min[2], max[0], max[1], max[2])
		}
		return nil
	})
}
