package main

import (
	"github.com/spf13/cobra"
)

func newConvertCmd(g *globals) *cobra.Command {
	var binary, ascii, framedOut bool
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Rewrite an OFF file as ASCII or binary",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			grp, err := g.readGroup(args[0])
			if err != nil {
				return err
			}

			codec := g.cfg.NewCodec(g.log)
			switch {
			case binary:
				codec.WriteOpts.Binary = true
			case ascii:
				codec.WriteOpts.Binary = false
			}
			framed := g.cfg.Codec.Framed || framedOut

			f, done, err := createFile(args[1])
			if err != nil {
				return err
			}
			if framed {
				_, err = codec.WritePrefixed(f, grp)
			} else {
				_, err = codec.Write(f, grp)
			}
			return done(err)
		},
	}
	cmd.Flags().BoolVar(&binary, "binary", false, "write binary OFF")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "write ASCII OFF")
	cmd.Flags().BoolVar(&framedOut, "framed-out", false, "prefix the output with magic and length")
	cmd.MarkFlagsMutuallyExclusive("binary", "ascii")
	return cmd
}
