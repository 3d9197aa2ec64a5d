// Package apply drives one full operation against the native engine and
// writes the outcome back into the host scene: extract, invoke, unpack,
// apply, with a single undo checkpoint and cleanup on every failure path.
package apply

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/krefting/geobridge/internal/engine"
	"github.com/krefting/geobridge/internal/extract"
	"github.com/krefting/geobridge/internal/host"
	"github.com/krefting/geobridge/pkg/geom"
	"github.com/krefting/geobridge/pkg/protocol"
)

// Mode selects what happens to the unpacked geometry.
type Mode int

const (
	// Create links a brand-new object and makes it active.
	Create Mode = iota
	// UpdateInPlace replaces the active object's mesh data, preserving
	// its identity.
	UpdateInPlace
)

// State tracks where a run currently is. Failed is terminal for one run;
// the next Run starts over from Idle.
type State int

const (
	Idle State = iota
	Extracting
	Invoking
	Unpacking
	Applying
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Extracting:
		return "extracting"
	case Invoking:
		return "invoking"
	case Unpacking:
		return "unpacking"
	case Applying:
		return "applying"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultObjectName names created objects when the engine does not.
const DefaultObjectName = "geobridge_result"

// Params describe one operation run.
type Params struct {
	Op protocol.Operation

	// Config carries the operation's parameters. The command and input
	// mesh format keys are filled in by the runner.
	Config *protocol.ConfigMap

	// Bounding is the secondary model for dual-model operations.
	Bounding *host.Object

	// OnlySelected restricts point-cloud extraction to selected vertices.
	OnlySelected bool

	Mode Mode
}

// Runner executes operations against one scene and one engine.
type Runner struct {
	scene *host.Scene
	eng   engine.Engine
	log   *zap.Logger
	state State
}

// NewRunner creates a runner. A nil logger is replaced with a no-op.
func NewRunner(scene *host.Scene, eng engine.Engine, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{scene: scene, eng: eng, log: log}
}

// State returns the runner's current step.
func (r *Runner) State() State {
	return r.state
}

// Run performs one operation and returns the object holding the result
// geometry. On any failure the scene is rolled back to the checkpoint
// pushed at the start of the mutation, so no partially created object
// survives, and the original error message is returned verbatim.
func (r *Runner) Run(ctx context.Context, p Params) (*host.Object, error) {
	obj, err := r.run(ctx, p)
	if err != nil {
		r.state = Failed
		r.log.Error("operation failed",
			zap.String("op", string(p.Op)),
			zap.Error(err))
		return nil, err
	}
	r.state = Idle
	return obj, nil
}

func (r *Runner) run(ctx context.Context, p Params) (*host.Object, error) {
	spec, ok := p.Op.Spec()
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", p.Op)
	}
	if spec.DualModel && p.Bounding == nil {
		return nil, &protocol.ValidationError{
			Reason: fmt.Sprintf("operation %s needs a bounding shape", p.Op)}
	}

	active := r.scene.Active()
	if active == nil {
		return nil, &protocol.ValidationError{Reason: "no active object"}
	}

	// Extract.
	r.state = Extracting
	cfg := p.Config
	if cfg == nil {
		cfg = protocol.NewConfigMap()
	}
	cfg.Set(protocol.KeyCommand, string(p.Op))
	cfg.Set(protocol.KeyMeshFormat, spec.Input.String())

	opts := extract.Options{OnlySelected: p.OnlySelected}
	var (
		verts   []geom.Vec3
		indices []uint32
		err     error
	)
	if spec.DualModel {
		verts, indices, err = extract.ExtractPair(active, p.Bounding, spec.Input, opts, cfg)
	} else {
		verts, indices, err = extract.Extract(active, spec.Input, opts)
	}
	if err != nil {
		return nil, err
	}
	transforms := extract.Transforms(modelObjects(active, p.Bounding, spec)...)

	// Invoke. The result is released exactly once via defer, error paths
	// included.
	r.state = Invoking
	res, err := r.eng.Invoke(ctx, engine.Request{
		Vertices:   verts,
		Indices:    indices,
		Transforms: transforms,
		Config:     cfg,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Release(); err != nil {
			r.log.Warn("releasing result", zap.Error(err))
		}
	}()

	resp, err := res.Read()
	if err != nil {
		return nil, err
	}

	// Unpack. Decoding the output map surfaces a native-reported error
	// before any geometry is touched.
	r.state = Unpacking
	out, err := protocol.Decode(resp.ConfigKeys, resp.ConfigValues)
	if err != nil {
		return nil, err
	}
	unpacked, err := protocol.Unpack(out, resp.Indices, r.log)
	if err != nil {
		return nil, err
	}
	if len(resp.Vertices) == 0 {
		return nil, protocol.ErrNoGeometry
	}
	if unpacked.Format != protocol.FormatPointCloud && len(resp.Indices) == 0 {
		return nil, protocol.ErrNoGeometry
	}

	// Apply.
	r.state = Applying
	return r.applyGeometry(string(p.Op), active, out, resp, unpacked, p.Mode)
}

func modelObjects(active, bounding *host.Object, spec protocol.OpSpec) []*host.Object {
	if spec.DualModel {
		return []*host.Object{active, bounding}
	}
	return []*host.Object{active}
}

// applyGeometry mutates the scene under an undo checkpoint. Any error
// rolls the scene back before returning.
func (r *Runner) applyGeometry(label string, active *host.Object, out *protocol.ConfigMap, resp engine.Response, unpacked *protocol.Unpacked, mode Mode) (obj *host.Object, err error) {
	prevMode := r.scene.Mode()
	r.scene.SetMode(host.ObjectMode)
	defer r.scene.SetMode(prevMode)

	r.scene.PushUndo(label)
	defer func() {
		if err != nil {
			if _, uerr := r.scene.Undo(); uerr != nil {
				r.log.Warn("rolling back failed operation", zap.Error(uerr))
			}
		}
	}()

	mesh := &host.Mesh{
		Vertices: resp.Vertices,
		Edges:    unpacked.Edges,
	}
	for _, f := range unpacked.Faces {
		mesh.Faces = append(mesh.Faces, []uint32{f[0], f[1], f[2]})
	}

	if out.GetBool(protocol.KeyRemoveDoubles) {
		threshold, terr := out.GetFloat(protocol.KeyRemoveDoublesThreshold, protocol.DefaultWeldThreshold)
		if terr != nil {
			return nil, terr
		}
		before := len(mesh.Vertices)
		mesh = weld(mesh, threshold)
		if merged := before - len(mesh.Vertices); merged > 0 {
			r.log.Debug("weld pass merged vertices",
				zap.Int("merged", merged),
				zap.Float64("threshold", threshold))
		}
	}

	switch mode {
	case Create:
		name, okName := out.Get(protocol.KeyModel0Name)
		if !okName || name == "" {
			name = DefaultObjectName
		}
		// The result becomes the sole selection, like in the editor.
		r.scene.DeselectAll()
		obj = host.NewObject(name, mesh)
		if err = r.scene.Link(obj); err != nil {
			return nil, err
		}
		if err = r.scene.SetActive(obj); err != nil {
			return nil, err
		}

	case UpdateInPlace:
		discarded, rerr := r.scene.ReplaceMesh(active, mesh)
		if rerr != nil {
			return nil, rerr
		}
		r.log.Debug("replaced mesh data",
			zap.String("object", active.Name),
			zap.Bool("old_block_discarded", discarded))
		obj = active

	default:
		return nil, fmt.Errorf("unknown apply mode %d", mode)
	}

	r.log.Info("operation applied",
		zap.String("object", obj.Name),
		zap.Int("vertices", len(mesh.Vertices)),
		zap.Int("edges", len(mesh.Edges)),
		zap.Int("faces", len(mesh.Faces)))
	return obj, nil
}
