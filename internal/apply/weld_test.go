package apply

import (
	"testing"

	"github.com/krefting/geobridge/internal/host"
	"github.com/krefting/geobridge/pkg/geom"
)

func TestWeldMergesClosePoints(t *testing.T) {
	mesh := &host.Mesh{
		Vertices: []geom.Vec3{
			v3(0, 0, 0),
			v3(0.00005, 0, 0), // within threshold of the first
			v3(1, 0, 0),
		},
		Edges: [][2]uint32{{0, 2}, {1, 2}},
	}

	out := weld(mesh, 0.0001)
	if len(out.Vertices) != 2 {
		t.Fatalf("vertices: got %d, want 2", len(out.Vertices))
	}
	// Both edges now connect the same pair; degenerate ones were dropped
	// but duplicates are kept as-is.
	for _, e := range out.Edges {
		if e[0] == e[1] {
			t.Errorf("degenerate edge survived: %v", e)
		}
	}
}

func TestWeldDropsCollapsedGeometry(t *testing.T) {
	mesh := &host.Mesh{
		Vertices: []geom.Vec3{v3(0, 0, 0), v3(0.00001, 0, 0)},
		Edges:    [][2]uint32{{0, 1}},
	}
	out := weld(mesh, 0.001)
	if len(out.Vertices) != 1 {
		t.Fatalf("vertices: got %d, want 1", len(out.Vertices))
	}
	if len(out.Edges) != 0 {
		t.Errorf("collapsed edge should be dropped, got %v", out.Edges)
	}
}

func TestWeldNoOpBelowThreshold(t *testing.T) {
	mesh := &host.Mesh{
		Vertices: []geom.Vec3{v3(0, 0, 0), v3(1, 0, 0)},
		Edges:    [][2]uint32{{0, 1}},
	}
	out := weld(mesh, 0.0001)
	if out != mesh {
		t.Error("weld with no merges should return the mesh unchanged")
	}

	if got := weld(mesh, 0); got != mesh {
		t.Error("zero threshold should be a no-op")
	}
}

func TestWeldCollapsedFace(t *testing.T) {
	mesh := &host.Mesh{
		Vertices: []geom.Vec3{v3(0, 0, 0), v3(0.00001, 0, 0), v3(1, 0, 0)},
		Faces:    [][]uint32{{0, 1, 2}},
	}
	out := weld(mesh, 0.001)
	if len(out.Faces) != 0 {
		t.Errorf("face collapsed to a line should be dropped, got %v", out.Faces)
	}
}
