package formats

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/krefting/geobridge/pkg/geom"
)

func v3(x, y, z float32) geom.Vec3 {
	return geom.Vec3{X: x, Y: y, Z: z}
}

func TestParseOBJ(t *testing.T) {
	data := []byte(`# a quad and a polyline
o sample
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1 2 3
f 1 3 4
l 1 2 3
p 4
`)

	obj, err := ParseOBJ(data)
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if obj.Name != "sample" {
		t.Errorf("name: got %q", obj.Name)
	}
	if len(obj.Vertices) != 4 {
		t.Fatalf("vertices: got %d, want 4", len(obj.Vertices))
	}
	if obj.Vertices[2] != v3(1, 1, 0) {
		t.Errorf("vertex 2: got %v", obj.Vertices[2])
	}
	if len(obj.Faces) != 2 || obj.Faces[0][0] != 0 || obj.Faces[0][2] != 2 {
		t.Errorf("faces: got %v", obj.Faces)
	}
	if len(obj.Lines) != 1 || len(obj.Lines[0]) != 3 {
		t.Errorf("lines: got %v", obj.Lines)
	}
	if len(obj.Points) != 1 || obj.Points[0] != 3 {
		t.Errorf("points: got %v", obj.Points)
	}
}

func TestParseOBJSlashReferences(t *testing.T) {
	data := []byte(`
v 0 0 0
v 1 0 0
v 0 1 0
f 1/1/1 2/2/2 3/3/3
`)
	obj, err := ParseOBJ(data)
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if len(obj.Faces) != 1 || obj.Faces[0][1] != 1 {
		t.Errorf("faces: got %v", obj.Faces)
	}
}

func TestParseOBJNegativeIndices(t *testing.T) {
	data := []byte(`
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`)
	obj, err := ParseOBJ(data)
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	want := []uint32{0, 1, 2}
	for i, w := range want {
		if obj.Faces[0][i] != w {
			t.Fatalf("faces: got %v, want %v", obj.Faces[0], want)
		}
	}
}

func TestParseOBJIndexOutOfRange(t *testing.T) {
	data := []byte("v 0 0 0\nf 1 2 3\n")
	_, err := ParseOBJ(data)
	if !errors.Is(err, ErrOBJIndexOutOfRange) {
		t.Errorf("got %v, want ErrOBJIndexOutOfRange", err)
	}
}

func TestParseOBJShortElement(t *testing.T) {
	data := []byte("v 0 0 0\nv 1 0 0\nl 1\n")
	_, err := ParseOBJ(data)
	if !errors.Is(err, ErrOBJShortElement) {
		t.Errorf("got %v, want ErrOBJShortElement", err)
	}
}

func TestOBJEdges(t *testing.T) {
	obj := &OBJ{Lines: [][]uint32{{0, 1, 2}, {4, 5}}}
	edges := obj.Edges()
	want := [][2]uint32{{0, 1}, {1, 2}, {4, 5}}
	if len(edges) != len(want) {
		t.Fatalf("edges: got %v, want %v", edges, want)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Fatalf("edges: got %v, want %v", edges, want)
		}
	}
}

func TestOBJRoundTripThroughFile(t *testing.T) {
	src := &OBJ{
		Name:     "ring",
		Vertices: []geom.Vec3{v3(0, 0, 0), v3(1, 0, 0), v3(1, 1, 0.5)},
		Faces:    [][]uint32{{0, 1, 2}},
		Lines:    [][]uint32{{0, 1}},
		Points:   []uint32{2},
	}

	path := filepath.Join(t.TempDir(), "ring.obj")
	if err := src.WriteOBJFile(path); err != nil {
		t.Fatal(err)
	}
	got, err := ParseOBJFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got.Name != src.Name {
		t.Errorf("name: got %q", got.Name)
	}
	if len(got.Vertices) != 3 || got.Vertices[2] != v3(1, 1, 0.5) {
		t.Errorf("vertices: got %v", got.Vertices)
	}
	if len(got.Faces) != 1 || got.Faces[0][2] != 2 {
		t.Errorf("faces: got %v", got.Faces)
	}
	if len(got.Lines) != 1 || got.Lines[0][1] != 1 {
		t.Errorf("lines: got %v", got.Lines)
	}
	if len(got.Points) != 1 || got.Points[0] != 2 {
		t.Errorf("points: got %v", got.Points)
	}
}
