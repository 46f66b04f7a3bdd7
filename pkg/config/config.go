// Package config loads user settings for the mesh tools from a YAML file.
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/chazu/trimesh/pkg/codec/off"
	"github.com/chazu/trimesh/pkg/kernel"
	"github.com/chazu/trimesh/pkg/kernel/manifold"
	"github.com/chazu/trimesh/pkg/kernel/sdfx"
	"github.com/chazu/trimesh/pkg/mesh"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "~/.config/trimesh/config.yaml"

// Config is the full settings file.
type Config struct {
	Codec  CodecConfig  `yaml:"codec"`
	Mesh   MeshConfig   `yaml:"mesh"`
	Kernel KernelConfig `yaml:"kernel"`
}

// CodecConfig holds OFF reader and writer defaults.
type CodecConfig struct {
	SkipEmptyMeshes bool `yaml:"skip_empty_meshes"`
	Verbose         bool `yaml:"verbose"`
	Binary          bool `yaml:"binary"`
	// Framed wraps written OFF data in a magic string and length prefix.
	Framed bool `yaml:"framed"`
}

// MeshConfig holds display defaults applied to meshes after loading.
type MeshConfig struct {
	Wireframe      bool `yaml:"wireframe"`
	ComputeNormals bool `yaml:"compute_normals"`
}

// Kernel backends.
const (
	BackendSdfx     = "sdfx"
	BackendManifold = "manifold"
)

// KernelConfig holds solid tessellation settings.
type KernelConfig struct {
	// Backend is BackendSdfx or BackendManifold. The manifold backend is
	// only available in builds with the manifold tag.
	Backend     string `yaml:"backend"`
	MeshCells   int    `yaml:"mesh_cells"`
	FlatShading bool   `yaml:"flat_shading"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		Codec:  CodecConfig{SkipEmptyMeshes: true},
		Mesh:   MeshConfig{ComputeNormals: true},
		Kernel: KernelConfig{Backend: BackendSdfx, MeshCells: sdfx.DefaultMeshCells},
	}
}

// Load reads the settings at path, or DefaultPath if path is empty. A leading
// ~ is expanded to the home directory. Keys missing from the file keep their
// defaults; a missing file yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrap(err, "config: expanding path")
	}

	cfg := Default()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "config")
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "config: parsing %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	return cfg, nil
}

// Save writes c to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return errors.Wrap(err, "config: expanding path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "config")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		f.Close()
		return errors.Wrapf(err, "config: writing %s", path)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return errors.Wrapf(err, "config: writing %s", path)
	}
	return f.Close()
}

// Validate reports settings no component can run with.
func (c *Config) Validate() error {
	if c.Kernel.MeshCells <= 0 {
		return errors.Errorf("kernel.mesh_cells must be positive, got %d", c.Kernel.MeshCells)
	}
	switch c.Kernel.Backend {
	case BackendSdfx, BackendManifold:
	default:
		return errors.Errorf("kernel.backend must be %q or %q, got %q", BackendSdfx, BackendManifold, c.Kernel.Backend)
	}
	return nil
}

// NewCodec returns an OFF codec configured from c.
func (c *Config) NewCodec(log *slog.Logger) *off.Codec {
	codec := off.New()
	codec.ReadOpts = off.ReadOptions{
		SkipEmptyMeshes: c.Codec.SkipEmptyMeshes,
		Verbose:         c.Codec.Verbose,
		Logger:          log,
	}
	codec.WriteOpts = off.WriteOptions{
		Binary:  c.Codec.Binary,
		Verbose: c.Codec.Verbose,
		Logger:  log,
	}
	return codec
}

// NewKernel returns the configured solid kernel. MeshCells and FlatShading
// apply to the sdfx backend only.
func (c *Config) NewKernel() (kernel.Kernel, error) {
	switch c.Kernel.Backend {
	case BackendManifold:
		k, err := manifold.New()
		if err != nil {
			return nil, errors.Wrap(err, "config")
		}
		return k, nil
	case BackendSdfx, "":
		return sdfx.New(sdfx.WithMeshCells(c.Kernel.MeshCells), sdfx.WithFlatShading(c.Kernel.FlatShading)), nil
	}
	return nil, errors.Errorf("config: unknown kernel backend %q", c.Kernel.Backend)
}

// Apply sets up every mesh in g for display: vertex normals are computed for
// meshes without them when ComputeNormals is set, and edges are extracted
// when Wireframe is set.
func (m MeshConfig) Apply(g *mesh.Group) {
	_ = g.Walk(func(im *mesh.IndexedMesh) error {
		if m.ComputeNormals && !im.HasNormals() && im.NumFaces() > 0 {
			im.ComputeAveragedVertexNormals()
		}
		if m.Wireframe {
			im.SetWireframeEnabled(true)
			im.UpdateEdges()
		}
		return nil
	})
}
