package host

import (
	"errors"
	"fmt"
)

// Mode is the host interaction mode. Mesh mutation requires ObjectMode,
// mirroring the editor this package stands in for.
type Mode int

const (
	ObjectMode Mode = iota
	EditMode
)

// ErrNoUndo is returned when the undo stack is empty.
var ErrNoUndo = errors.New("host: nothing to undo")

// ErrWrongMode is returned when a mutation is attempted outside ObjectMode.
var ErrWrongMode = errors.New("host: scene mutation requires object mode")

// Scene owns the objects, the active-object pointer, the mesh data block
// registry and a single-level-deep undo stack of labeled checkpoints.
type Scene struct {
	objects []*Object
	active  *Object
	mode    Mode
	meshes  map[*Mesh]int // registry: data block -> reference count
	undo    []snapshot
}

type snapshot struct {
	label   string
	objects []objectState
	active  *Object
}

type objectState struct {
	obj  *Object
	name string
	mesh *Mesh
}

// NewScene returns an empty scene in object mode.
func NewScene() *Scene {
	return &Scene{mode: ObjectMode, meshes: make(map[*Mesh]int)}
}

// Mode returns the current interaction mode.
func (s *Scene) Mode() Mode {
	return s.mode
}

// SetMode switches the interaction mode.
func (s *Scene) SetMode(m Mode) {
	s.mode = m
}

// Objects returns the linked objects in link order.
func (s *Scene) Objects() []*Object {
	return s.objects
}

// Active returns the active object, or nil.
func (s *Scene) Active() *Object {
	return s.active
}

// SetActive marks an object active. The object must be linked.
func (s *Scene) SetActive(o *Object) error {
	for _, obj := range s.objects {
		if obj == o {
			s.active = o
			return nil
		}
	}
	return fmt.Errorf("host: object %q is not linked into the scene", o.Name)
}

// Link adds an object to the scene and registers its mesh block.
func (s *Scene) Link(o *Object) error {
	if s.mode != ObjectMode {
		return ErrWrongMode
	}
	s.objects = append(s.objects, o)
	if o.mesh != nil {
		s.meshes[o.mesh]++
	}
	return nil
}

// Remove unlinks an object and drops its mesh block's reference. The
// block itself disappears from the registry when unreferenced.
func (s *Scene) Remove(o *Object) error {
	if s.mode != ObjectMode {
		return ErrWrongMode
	}
	for i, obj := range s.objects {
		if obj == o {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			if s.active == o {
				s.active = nil
			}
			s.releaseMesh(o.mesh)
			return nil
		}
	}
	return fmt.Errorf("host: object %q is not linked into the scene", o.Name)
}

// ReplaceMesh swaps an object's mesh data block for a new one, preserving
// the object's identity. It reports whether the old block was discarded
// (true only when no other object still references it).
func (s *Scene) ReplaceMesh(o *Object, m *Mesh) (discardedOld bool, err error) {
	if s.mode != ObjectMode {
		return false, ErrWrongMode
	}
	old := o.mesh
	o.mesh = m
	s.meshes[m]++
	return s.releaseMesh(old), nil
}

// MeshUsers returns the number of objects referencing a data block.
func (s *Scene) MeshUsers(m *Mesh) int {
	return s.meshes[m]
}

func (s *Scene) releaseMesh(m *Mesh) bool {
	if m == nil {
		return false
	}
	s.meshes[m]--
	if s.meshes[m] <= 0 {
		delete(s.meshes, m)
		return true
	}
	return false
}

// PushUndo records a labeled checkpoint of object identity, names and
// mesh block assignments. One Undo rolls the scene back to the most
// recent checkpoint; mesh blocks are snapshotted by reference because
// geometry mutation always goes through ReplaceMesh, never in place.
func (s *Scene) PushUndo(label string) {
	snap := snapshot{label: label, active: s.active}
	for _, o := range s.objects {
		snap.objects = append(snap.objects, objectState{obj: o, name: o.Name, mesh: o.mesh})
	}
	s.undo = append(s.undo, snap)
}

// Undo restores the most recent checkpoint and returns its label.
func (s *Scene) Undo() (string, error) {
	if len(s.undo) == 0 {
		return "", ErrNoUndo
	}
	snap := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]

	s.objects = s.objects[:0]
	s.meshes = make(map[*Mesh]int)
	for _, st := range snap.objects {
		st.obj.Name = st.name
		st.obj.mesh = st.mesh
		s.objects = append(s.objects, st.obj)
		if st.mesh != nil {
			s.meshes[st.mesh]++
		}
	}
	s.active = snap.active
	return snap.label, nil
}

// DeselectAll clears vertex selection on every mesh and leaves no object
// active.
func (s *Scene) DeselectAll() {
	for _, o := range s.objects {
		if o.mesh != nil {
			o.mesh.Selected = nil
		}
	}
	s.active = nil
}
