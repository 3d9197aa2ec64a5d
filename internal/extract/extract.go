// Package extract reads host mesh geometry into the flat vertex and index
// buffers the native engine consumes. Vertices always leave in object-local
// coordinates; world transforms travel separately as row-major matrices,
// so a transform is never applied twice.
package extract

import (
	"fmt"

	"github.com/krefting/geobridge/internal/host"
	"github.com/krefting/geobridge/pkg/geom"
	"github.com/krefting/geobridge/pkg/protocol"
)

// Options tune extraction for a single object.
type Options struct {
	// OnlySelected restricts point-cloud extraction to selected vertices.
	OnlySelected bool
}

// Extract produces (vertices, indices) from an object's mesh according to
// the requested format. Validation failures are *protocol.ValidationError
// and happen before any native call.
func Extract(obj *host.Object, format protocol.MeshFormat, opts Options) ([]geom.Vec3, []uint32, error) {
	mesh := obj.Mesh()
	if mesh == nil {
		return nil, nil, &protocol.ValidationError{Reason: fmt.Sprintf("object %q has no mesh", obj.Name)}
	}

	switch format {
	case protocol.FormatTriangulated:
		return extractTriangulated(mesh)
	case protocol.FormatLineChunks:
		return extractEdges(mesh)
	case protocol.FormatLineWindows:
		return extractPolyline(mesh)
	case protocol.FormatPointCloud:
		return extractPoints(mesh, opts), nil, nil
	default:
		return nil, nil, &protocol.ValidationError{Reason: fmt.Sprintf("cannot extract format %v", format)}
	}
}

func extractTriangulated(mesh *host.Mesh) ([]geom.Vec3, []uint32, error) {
	if len(mesh.Faces) == 0 {
		return nil, nil, &protocol.ValidationError{
			Reason: "no polygons found, maybe the mesh is not triangulated?"}
	}
	indices := make([]uint32, 0, len(mesh.Faces)*3)
	for _, face := range mesh.Faces {
		if len(face) != 3 {
			return nil, nil, &protocol.ValidationError{Reason: "the mesh is not fully triangulated"}
		}
		indices = append(indices, face...)
	}
	return mesh.Vertices, indices, nil
}

func extractEdges(mesh *host.Mesh) ([]geom.Vec3, []uint32, error) {
	if len(mesh.Faces) > 0 {
		return nil, nil, &protocol.ValidationError{
			Reason: "the mesh must not contain polygons for this operation, only edges; " +
				"hint: use the 2d_outline operation to convert a mesh to an outline first"}
	}
	indices := make([]uint32, 0, len(mesh.Edges)*2)
	for _, e := range mesh.Edges {
		indices = append(indices, e[0], e[1])
	}
	return mesh.Vertices, indices, nil
}

// extractPolyline emits the vertex sequence of a single open chain of
// edges, suitable for the sliding-window format. Branching or disjoint
// edge graphs are rejected.
func extractPolyline(mesh *host.Mesh) ([]geom.Vec3, []uint32, error) {
	if len(mesh.Faces) > 0 {
		return nil, nil, &protocol.ValidationError{
			Reason: "the mesh must not contain polygons for this operation, only edges"}
	}
	if len(mesh.Edges) == 0 {
		return nil, nil, &protocol.ValidationError{Reason: "no edges found"}
	}

	chain, err := chainIndices(mesh.Edges)
	if err != nil {
		return nil, nil, err
	}
	return mesh.Vertices, chain, nil
}

// chainIndices orders edge endpoints into one open polyline. Every vertex
// must have degree <= 2 and exactly two endpoints must have degree 1.
func chainIndices(edges [][2]uint32) ([]uint32, error) {
	adjacency := make(map[uint32][]uint32, len(edges)+1)
	for _, e := range edges {
		adjacency[e[0]] = append(adjacency[e[0]], e[1])
		adjacency[e[1]] = append(adjacency[e[1]], e[0])
	}

	var start uint32
	endpoints := 0
	for v, n := range adjacency {
		switch len(n) {
		case 1:
			if endpoints == 0 {
				start = v
			}
			endpoints++
		case 2:
		default:
			return nil, &protocol.ValidationError{
				Reason: fmt.Sprintf("vertex %d has %d connected edges; the mesh is not a single polyline", v, len(n))}
		}
	}
	if endpoints != 2 {
		return nil, &protocol.ValidationError{
			Reason: "the edges do not form one open polyline"}
	}

	chain := make([]uint32, 0, len(edges)+1)
	prev := start
	chain = append(chain, start)
	current := adjacency[start][0]
	for {
		chain = append(chain, current)
		next, ok := step(adjacency[current], prev)
		if !ok {
			break
		}
		prev, current = current, next
	}
	if len(chain) != len(edges)+1 {
		return nil, &protocol.ValidationError{Reason: "the edges are not fully connected"}
	}
	return chain, nil
}

func step(neighbors []uint32, prev uint32) (uint32, bool) {
	for _, n := range neighbors {
		if n != prev {
			return n, true
		}
	}
	return 0, false
}

func extractPoints(mesh *host.Mesh, opts Options) []geom.Vec3 {
	if !opts.OnlySelected {
		return mesh.Vertices
	}
	selected := mesh.SelectedVertices()
	points := make([]geom.Vec3, 0, len(selected))
	for _, i := range selected {
		points = append(points, mesh.Vertices[i])
	}
	return points
}

// Transforms flattens the world transforms of the given objects into one
// wire buffer, 16 row-major floats per object.
func Transforms(objs ...*host.Object) []float32 {
	out := make([]float32, 0, len(objs)*16)
	for _, o := range objs {
		flat := o.Transform.Flatten()
		out = append(out, flat[:]...)
	}
	return out
}

// ExtractPair packs an active and a bounding object into one pair of
// buffers for a two-model operation. The secondary model's vertices and
// edge indices are appended after the primary's; its indices stay relative
// to its own vertex range and the boundary offsets are recorded in cfg
// under the reserved first_vertex/first_index keys.
func ExtractPair(active, bounding *host.Object, format protocol.MeshFormat, opts Options, cfg *protocol.ConfigMap) ([]geom.Vec3, []uint32, error) {
	vertices, indices, err := Extract(active, format, opts)
	if err != nil {
		return nil, nil, err
	}

	bmesh := bounding.Mesh()
	if bmesh == nil {
		return nil, nil, &protocol.ValidationError{Reason: fmt.Sprintf("object %q has no mesh", bounding.Name)}
	}
	if len(bmesh.Faces) > 0 {
		return nil, nil, &protocol.ValidationError{
			Reason: "the bounding shape must contain only edges and vertices"}
	}

	cfg.SetInt(protocol.KeyFirstVertexModel1, len(vertices))
	cfg.SetInt(protocol.KeyFirstIndexModel1, len(indices))

	vertices = append(append([]geom.Vec3(nil), vertices...), bmesh.Vertices...)
	for _, e := range bmesh.Edges {
		indices = append(indices, e[0], e[1])
	}
	return vertices, indices, nil
}
