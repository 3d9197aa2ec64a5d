// Package host is a stand-in for the editing application the bridge runs
// inside: a scene of mesh objects with selection, an undo stack and an
// object/edit mode switch. The extractor and applier only touch the host
// through this package, so tests and the CLI can run without a real editor.
package host

import "github.com/krefting/geobridge/pkg/geom"

// Mesh is one mesh data block. Blocks can be shared between objects; the
// scene keeps a registry so a replaced block is only discarded once no
// object references it.
type Mesh struct {
	Vertices []geom.Vec3
	Edges    [][2]uint32
	Faces    [][]uint32

	// Selected marks selected vertices. Either empty (nothing selected)
	// or the same length as Vertices.
	Selected []bool
}

// NewMesh returns an empty mesh data block.
func NewMesh() *Mesh {
	return &Mesh{}
}

// SelectedVertices returns the indices of selected vertices.
func (m *Mesh) SelectedVertices() []uint32 {
	if len(m.Selected) == 0 {
		return nil
	}
	var out []uint32
	for i, sel := range m.Selected {
		if sel {
			out = append(out, uint32(i))
		}
	}
	return out
}

// Object is one scene object: a named mesh with a world transform.
type Object struct {
	Name      string
	Transform geom.Mat4

	mesh *Mesh
}

// NewObject creates an object around a mesh block with an identity
// transform.
func NewObject(name string, mesh *Mesh) *Object {
	return &Object{Name: name, Transform: geom.Identity(), mesh: mesh}
}

// Mesh returns the object's current mesh data block.
func (o *Object) Mesh() *Mesh {
	return o.mesh
}
