package host

import (
	"testing"

	"github.com/krefting/geobridge/pkg/geom"
)

func v3(x, y, z float32) geom.Vec3 {
	return geom.Vec3{X: x, Y: y, Z: z}
}

func quadMesh() *Mesh {
	return &Mesh{
		Vertices: []geom.Vec3{v3(0, 0, 0), v3(1, 0, 0), v3(1, 1, 0), v3(0, 1, 0)},
		Faces:    [][]uint32{{0, 1, 2}, {0, 2, 3}},
	}
}

func TestLinkAndActive(t *testing.T) {
	s := NewScene()
	o := NewObject("quad", quadMesh())

	if err := s.Link(o); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := s.SetActive(o); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if s.Active() != o {
		t.Error("active object not set")
	}

	unlinked := NewObject("stray", NewMesh())
	if err := s.SetActive(unlinked); err == nil {
		t.Error("SetActive should reject an unlinked object")
	}
}

func TestLinkRequiresObjectMode(t *testing.T) {
	s := NewScene()
	s.SetMode(EditMode)

	if err := s.Link(NewObject("o", NewMesh())); err != ErrWrongMode {
		t.Errorf("Link in edit mode: got %v, want ErrWrongMode", err)
	}
}

func TestReplaceMeshRefcount(t *testing.T) {
	s := NewScene()
	shared := quadMesh()
	a := NewObject("a", shared)
	b := NewObject("b", shared)
	if err := s.Link(a); err != nil {
		t.Fatal(err)
	}
	if err := s.Link(b); err != nil {
		t.Fatal(err)
	}
	if s.MeshUsers(shared) != 2 {
		t.Fatalf("users: got %d, want 2", s.MeshUsers(shared))
	}

	// Replacing a's mesh must keep the shared block alive for b.
	discarded, err := s.ReplaceMesh(a, NewMesh())
	if err != nil {
		t.Fatalf("ReplaceMesh: %v", err)
	}
	if discarded {
		t.Error("shared block should not be discarded while b uses it")
	}

	discarded, err = s.ReplaceMesh(b, NewMesh())
	if err != nil {
		t.Fatalf("ReplaceMesh: %v", err)
	}
	if !discarded {
		t.Error("last reference gone, block should be discarded")
	}
	if s.MeshUsers(shared) != 0 {
		t.Errorf("users after discard: got %d, want 0", s.MeshUsers(shared))
	}
}

func TestUndoRemovesNewObject(t *testing.T) {
	s := NewScene()
	base := NewObject("base", quadMesh())
	if err := s.Link(base); err != nil {
		t.Fatal(err)
	}
	if err := s.SetActive(base); err != nil {
		t.Fatal(err)
	}

	s.PushUndo("op")
	created := NewObject("result", NewMesh())
	if err := s.Link(created); err != nil {
		t.Fatal(err)
	}
	if err := s.SetActive(created); err != nil {
		t.Fatal(err)
	}

	label, err := s.Undo()
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if label != "op" {
		t.Errorf("label: got %q, want op", label)
	}
	if len(s.Objects()) != 1 || s.Objects()[0] != base {
		t.Errorf("undo should leave only the base object, got %d objects", len(s.Objects()))
	}
	if s.Active() != base {
		t.Error("undo should restore the previous active object")
	}
}

func TestUndoRestoresMeshAssignment(t *testing.T) {
	s := NewScene()
	old := quadMesh()
	o := NewObject("o", old)
	if err := s.Link(o); err != nil {
		t.Fatal(err)
	}

	s.PushUndo("replace")
	if _, err := s.ReplaceMesh(o, NewMesh()); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if o.Mesh() != old {
		t.Error("undo should restore the original mesh block")
	}
	if s.MeshUsers(old) != 1 {
		t.Errorf("registry after undo: got %d users, want 1", s.MeshUsers(old))
	}
}

func TestUndoEmptyStack(t *testing.T) {
	s := NewScene()
	if _, err := s.Undo(); err != ErrNoUndo {
		t.Errorf("got %v, want ErrNoUndo", err)
	}
}

func TestSelectedVertices(t *testing.T) {
	m := quadMesh()
	m.Selected = []bool{true, false, false, true}
	got := m.SelectedVertices()
	if len(got) != 2 || got[0] != 0 || got[1] != 3 {
		t.Errorf("SelectedVertices: got %v, want [0 3]", got)
	}

	if NewMesh().SelectedVertices() != nil {
		t.Error("empty selection should return nil")
	}
}
