// Package main is the command-line host for the geobridge engine: it
// loads geometry from OBJ files, runs one engine operation and writes
// the result back out.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/krefting/geobridge/internal/apply"
	"github.com/krefting/geobridge/internal/config"
	"github.com/krefting/geobridge/internal/engine"
	"github.com/krefting/geobridge/internal/host"
	"github.com/krefting/geobridge/internal/logger"
	"github.com/krefting/geobridge/internal/session"
	"github.com/krefting/geobridge/pkg/formats"
	"github.com/krefting/geobridge/pkg/protocol"
)

// paramList collects repeatable -param key=value flags in order.
type paramList [][2]string

func (p *paramList) String() string {
	parts := make([]string, len(*p))
	for i, kv := range *p {
		parts[i] = kv[0] + "=" + kv[1]
	}
	return strings.Join(parts, ",")
}

func (p *paramList) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	*p = append(*p, [2]string{k, v})
	return nil
}

var (
	flagIn       = flag.String("in", "", "Input OBJ file (the active model)")
	flagBounding = flag.String("bounding", "", "Bounding OBJ file for dual-model operations")
	flagOut      = flag.String("out", "", "Output OBJ file (default: print a summary)")
	flagUpdate   = flag.Bool("update", false, "Replace the input model in place instead of creating a new object")
	flagSelected = flag.Bool("only-selected", false, "Restrict point-cloud extraction to selected vertices")
	flagListOps  = flag.Bool("list-ops", false, "List supported operations and exit")
	flagSaveCfg  = flag.String("save-config", "", "Write the resolved configuration to this file and exit")
	flagParams   paramList
)

func main() {
	flag.Var(&flagParams, "param", "Operation parameter as key=value (repeatable)")
	flag.Usage = printUsage
	config.ParseFlags()

	if *flagListOps {
		listOps()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if *flagSaveCfg != "" {
		if err := cfg.SaveTo(*flagSaveCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration written to %s\n", *flagSaveCfg)
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if flag.NArg() != 1 {
		printUsage()
		os.Exit(1)
	}
	op, err := protocol.ParseOperation(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run with -list-ops for the supported operations.")
		os.Exit(1)
	}
	if *flagIn == "" {
		fmt.Fprintln(os.Stderr, "Error: -in is required")
		os.Exit(1)
	}

	if err := run(cfg, op); err != nil {
		logger.Error("run failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, op protocol.Operation) error {
	scene, err := buildScene(*flagIn)
	if err != nil {
		return err
	}

	var bounding *host.Object
	if *flagBounding != "" {
		obj, err := formats.ParseOBJFile(*flagBounding)
		if err != nil {
			return err
		}
		bounding = host.NewObject(objName(obj, "bounding"), objToMesh(obj))
	}

	eng, cleanup, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	params := protocol.NewConfigMap()
	for _, kv := range flagParams {
		params.Set(kv[0], kv[1])
	}

	mode := apply.Create
	if *flagUpdate {
		mode = apply.UpdateInPlace
	}

	runner := apply.NewRunner(scene, eng, logger.Log)
	result, err := runner.Run(context.Background(), apply.Params{
		Op:           op,
		Config:       params,
		Bounding:     bounding,
		OnlySelected: *flagSelected || cfg.Apply.OnlySelected,
		Mode:         mode,
	})
	if err != nil {
		return err
	}

	mesh := result.Mesh()
	if *flagOut != "" {
		out := meshToOBJ(result.Name, mesh)
		if err := out.WriteOBJFile(*flagOut); err != nil {
			return err
		}
		logger.Info("result written",
			zap.String("path", *flagOut),
			zap.String("object", result.Name))
		return nil
	}

	fmt.Printf("%s: %d vertices, %d edges, %d faces\n",
		result.Name, len(mesh.Vertices), len(mesh.Edges), len(mesh.Faces))
	return nil
}

// buildScene loads the input model into a fresh scene and makes it the
// active object.
func buildScene(path string) (*host.Scene, error) {
	obj, err := formats.ParseOBJFile(path)
	if err != nil {
		return nil, err
	}
	scene := host.NewScene()
	active := host.NewObject(objName(obj, "input"), objToMesh(obj))
	if err := scene.Link(active); err != nil {
		return nil, err
	}
	if err := scene.SetActive(active); err != nil {
		return nil, err
	}
	return scene, nil
}

// buildEngine assembles the engine stack: native library or session
// replay, optionally wrapped in a session recorder.
func buildEngine(cfg *config.Config) (engine.Engine, func(), error) {
	cleanup := func() {}

	var eng engine.Engine
	if cfg.Session.ReplayPath != "" {
		rep, err := session.OpenReplayer(cfg.Session.ReplayPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("replaying session",
			zap.String("path", cfg.Session.ReplayPath),
			zap.Int("entries", len(rep.Entries())))
		eng = rep
	} else {
		lib := engine.NewLibrary(engine.Options{
			LibDir:  libDir(cfg),
			Dev:     cfg.Engine.Dev,
			DevDir:  cfg.Engine.DevDir,
			BuildID: cfg.Engine.BuildID,
		}, logger.Log)
		cleanup = func() {
			if err := lib.Close(); err != nil {
				logger.Warn("closing engine library", zap.Error(err))
			}
		}
		eng = lib
	}

	if cfg.Session.RecordPath != "" {
		rec, err := session.NewRecorder(eng, cfg.Session.RecordPath, logger.Log)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		logger.Info("recording session", zap.String("path", cfg.Session.RecordPath))
		inner := cleanup
		cleanup = func() {
			if err := rec.Close(); err != nil {
				logger.Warn("closing session file", zap.Error(err))
			}
			inner()
		}
		eng = rec
	}
	return eng, cleanup, nil
}

// libDir defaults to the executable's directory so an installed bundle
// works without configuration.
func libDir(cfg *config.Config) string {
	if cfg.Engine.LibDir != "" {
		return cfg.Engine.LibDir
	}
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

func objName(obj *formats.OBJ, fallback string) string {
	if obj.Name != "" {
		return obj.Name
	}
	return fallback
}

func objToMesh(obj *formats.OBJ) *host.Mesh {
	mesh := host.NewMesh()
	mesh.Vertices = obj.Vertices
	mesh.Edges = obj.Edges()
	mesh.Faces = obj.Faces
	if len(obj.Points) > 0 {
		mesh.Selected = make([]bool, len(obj.Vertices))
		for _, p := range obj.Points {
			mesh.Selected[p] = true
		}
	}
	return mesh
}

func meshToOBJ(name string, mesh *host.Mesh) *formats.OBJ {
	out := &formats.OBJ{
		Name:     name,
		Vertices: mesh.Vertices,
		Faces:    mesh.Faces,
	}
	for _, e := range mesh.Edges {
		out.Lines = append(out.Lines, []uint32{e[0], e[1]})
	}
	return out
}

func listOps() {
	for _, op := range protocol.Operations() {
		spec, _ := op.Spec()
		extra := ""
		if spec.DualModel {
			extra = " (needs -bounding)"
		}
		fmt.Printf("  %-22s input: %s%s\n", op, spec.Input, extra)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `geobridge - run native geometry operations on OBJ files

Usage:
  geobridge [flags] <operation>

Examples:
  geobridge -in mesh.obj -out hull.obj convex_hull_2d
  geobridge -in outline.obj -bounding bounds.obj -param DISTANCE=0.5 voronoi_mesh
  geobridge -list-ops

Flags:`)
	flag.PrintDefaults()
}
