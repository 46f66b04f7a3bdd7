// Command offconv inspects and converts OFF mesh files.
//
//	offconv info model.off
//	offconv convert --binary model.off model.boff
//	offconv glb model.off model.glb
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/chazu/trimesh/pkg/config"
	"github.com/chazu/trimesh/pkg/mesh"
)

// globals shared by every subcommand.
type globals struct {
	configPath string
	verbose    bool
	framed     bool

	cfg *config.Config
	log *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:          "offconv",
		Short:        "Inspect and convert OFF mesh files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", config.DefaultPath, "settings file")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "log mesh statistics")
	root.PersistentFlags().BoolVar(&g.framed, "framed", false, "input carries a magic and length prefix")

	root.AddCommand(newInfoCmd(g), newConvertCmd(g), newGLBCmd(g))
	return root
}

func (g *globals) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.verbose {
		cfg.Codec.Verbose = true
	}
	g.cfg = cfg

	level := slog.LevelWarn
	if cfg.Codec.Verbose {
		level = slog.LevelInfo
	}
	g.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// readGroup reads path into a group named after the file.
func (g *globals) readGroup(path string) (*mesh.Group, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	grp := mesh.NewGroup(filepath.Base(path))
	codec := g.cfg.NewCodec(g.log)
	if g.framed {
		err = codec.ReadPrefixed(f, grp)
	} else {
		err = codec.Read(f, grp)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return grp, nil
}

// createFile opens path for writing and returns a close function that
// reports the first error seen.
func createFile(path string) (*os.File, func(err error) error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	done := func(err error) error {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			return errors.Wrapf(err, "writing %s", path)
		}
		return nil
	}
	return f, done, nil
}
