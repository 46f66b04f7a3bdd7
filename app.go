package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/chazu/trimesh/pkg/codec/off"
	"github.com/chazu/trimesh/pkg/config"
	"github.com/chazu/trimesh/pkg/engine"
	"github.com/chazu/trimesh/pkg/mesh"
	"github.com/chazu/trimesh/pkg/render"
)

// colorPalette is a default palette used to assign distinct colors to meshes
// that carry no vertex colors.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	engine *engine.Engine
	codec  *off.Codec

	// mu guards the staged scene, which Evaluate and ImportOFF replace and
	// the export bindings read.
	mu    sync.Mutex
	stage *render.Stage
	scene *mesh.Group
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Colors   []float32 `json:"colors,omitempty"`
	Indices  []uint32  `json:"indices"`
	Edges    []uint32  `json:"edges,omitempty"`
	MeshName string    `json:"meshName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

func newEvalResult() EvalResult {
	return EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

func (r *EvalResult) fail(msg string) EvalResult {
	r.Errors = append(r.Errors, EvalErrorData{Message: msg})
	return *r
}

// NewApp creates an App from the user settings file. Unreadable settings are
// logged and replaced by defaults.
func NewApp() *App {
	cfg, err := config.Load("")
	if err != nil {
		log.Printf("Loading settings: %v", err)
		cfg = config.Default()
	}
	return NewAppWithConfig(cfg)
}

// NewAppWithConfig creates an App with the given settings. An unavailable
// kernel backend is logged and replaced by sdfx.
func NewAppWithConfig(cfg *config.Config) *App {
	k, err := cfg.NewKernel()
	if err != nil {
		log.Printf("Creating kernel: %v", err)
		fallback := *cfg
		fallback.Kernel.Backend = config.BackendSdfx
		k, _ = fallback.NewKernel()
	}
	return &App{
		cfg:    cfg,
		engine: engine.NewEngine(engine.WithKernel(k)),
		codec:  cfg.NewCodec(nil),
		stage:  render.NewStage(nil),
		scene:  mesh.NewGroup("scene"),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes mesh script source and returns mesh data + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := newEvalResult()

	res, err := a.engine.EvaluateResult(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		return result.fail(err.Error())
	}

	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: fmt.Sprintf("%s: %s", w.Mesh, w.Message)})
	}

	if err := a.show(res.Group, &result); err != nil {
		log.Printf("Upload error: %v", err)
		return result.fail("upload failed: " + err.Error())
	}
	return result
}

// ImportOFF reads an OFF file and shows its meshes in place of the current
// scene.
func (a *App) ImportOFF(path string) EvalResult {
	result := newEvalResult()

	f, err := os.Open(path)
	if err != nil {
		return result.fail(err.Error())
	}
	defer f.Close()

	g := mesh.NewGroup(filepath.Base(path))
	if a.cfg.Codec.Framed {
		err = a.codec.ReadPrefixed(f, g)
	} else {
		err = a.codec.Read(f, g)
	}
	if err != nil {
		log.Printf("ImportOFF %s: %v", path, err)
		return result.fail(err.Error())
	}

	if err := a.show(g, &result); err != nil {
		log.Printf("Upload error: %v", err)
		return result.fail("upload failed: " + err.Error())
	}
	return result
}

// ExportOFF writes the current scene to path. Binary selects the binary
// variant; framing follows the settings file.
func (a *App) ExportOFF(path string, binary bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	codec := *a.codec
	codec.WriteOpts.Binary = binary
	return writeFile(path, func(w io.Writer) error {
		var err error
		if a.cfg.Codec.Framed {
			_, err = codec.WritePrefixed(w, a.scene)
		} else {
			_, err = codec.Write(w, a.scene)
		}
		return err
	})
}

// ExportGLB writes the staged scene to path as binary glTF.
func (a *App) ExportGLB(path string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return writeFile(path, a.stage.WriteGLB)
}

// show replaces the staged scene with g and fills result.Meshes.
func (a *App) show(g *mesh.Group, result *EvalResult) error {
	a.cfg.Mesh.Apply(g)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.stage.Clear()
	if err := render.UploadGroup(a.stage, g); err != nil {
		a.stage.Clear()
		return err
	}
	a.scene = g

	i := 0
	a.stage.Each(func(b *render.Buffers) {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: b.Positions,
			Normals:  b.Normals,
			Colors:   b.Colors,
			Indices:  b.TriangleList(),
			Edges:    b.Edges,
			MeshName: b.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
		i++
	})
	return nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		log.Printf("Writing %s: %v", path, err)
		return err
	}
	return f.Close()
}
