package main

import (
	"github.com/spf13/cobra"

	"github.com/chazu/trimesh/pkg/render"
)

func newGLBCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "glb IN OUT",
		Short: "Export an OFF file as binary glTF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			grp, err := g.readGroup(args[0])
			if err != nil {
				return err
			}
			g.cfg.Mesh.Apply(grp)

			stage := render.NewStage(g.log)
			if err := render.UploadGroup(stage, grp); err != nil {
				return err
			}

			f, done, err := createFile(args[1])
			if err != nil {
				return err
			}
			return done(stage.WriteGLB(f))
		},
	}
}
