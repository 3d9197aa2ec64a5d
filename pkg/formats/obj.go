// Package formats provides geometry file readers and writers for the
// bridge tools.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/krefting/geobridge/pkg/geom"
)

// OBJ format errors.
var (
	ErrOBJIndexOutOfRange = errors.New("OBJ index out of range")
	ErrOBJShortElement    = errors.New("OBJ element has too few indices")
)

// OBJ holds the geometry of a Wavefront OBJ file: positions plus the
// face, polyline and point elements that reference them. Texture and
// normal channels are ignored on read and never written.
type OBJ struct {
	Name     string
	Vertices []geom.Vec3
	Faces    [][]uint32
	Lines    [][]uint32
	Points   []uint32
}

// Edges expands every polyline into individual vertex pairs.
func (o *OBJ) Edges() [][2]uint32 {
	var edges [][2]uint32
	for _, line := range o.Lines {
		for i := 0; i+1 < len(line); i++ {
			edges = append(edges, [2]uint32{line[i], line[i+1]})
		}
	}
	return edges
}

// ParseOBJ parses OBJ geometry from raw bytes.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var v geom.Vec3
			coords := [3]*float32{&v.X, &v.Y, &v.Z}
			for i, c := range coords {
				f, err := strconv.ParseFloat(fields[1+i], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				*c = float32(f)
			}
			obj.Vertices = append(obj.Vertices, v)

		case "f":
			idx, err := parseOBJIndices(fields[1:], len(obj.Vertices))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if len(idx) < 3 {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrOBJShortElement)
			}
			obj.Faces = append(obj.Faces, idx)

		case "l":
			idx, err := parseOBJIndices(fields[1:], len(obj.Vertices))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if len(idx) < 2 {
				return nil, fmt.Errorf("line %d: %w", lineNo, ErrOBJShortElement)
			}
			obj.Lines = append(obj.Lines, idx)

		case "p":
			idx, err := parseOBJIndices(fields[1:], len(obj.Vertices))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			obj.Points = append(obj.Points, idx...)

		case "o", "g":
			if len(fields) > 1 && obj.Name == "" {
				obj.Name = fields[1]
			}

		default:
			// vt, vn, s, mtllib, usemtl and anything else: skipped.
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return obj, nil
}

// parseOBJIndices resolves a list of "v", "v/vt" or "v/vt/vn" references
// to zero-based vertex indices. Negative references count back from the
// end of the vertex list, per the OBJ spec.
func parseOBJIndices(fields []string, vertexCount int) ([]uint32, error) {
	out := make([]uint32, 0, len(fields))
	for _, f := range fields {
		if slash := strings.IndexByte(f, '/'); slash >= 0 {
			f = f[:slash]
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		switch {
		case n > 0 && n <= vertexCount:
			out = append(out, uint32(n-1))
		case n < 0 && -n <= vertexCount:
			out = append(out, uint32(vertexCount+n))
		default:
			return nil, fmt.Errorf("%w: %d of %d vertices", ErrOBJIndexOutOfRange, n, vertexCount)
		}
	}
	return out, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*OBJ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	return ParseOBJ(data)
}

// Encode renders the geometry back to OBJ text.
func (o *OBJ) Encode() []byte {
	var buf bytes.Buffer
	if o.Name != "" {
		fmt.Fprintf(&buf, "o %s\n", o.Name)
	}
	for _, v := range o.Vertices {
		fmt.Fprintf(&buf, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for _, f := range o.Faces {
		buf.WriteString("f")
		for _, i := range f {
			fmt.Fprintf(&buf, " %d", i+1)
		}
		buf.WriteByte('\n')
	}
	for _, l := range o.Lines {
		buf.WriteString("l")
		for _, i := range l {
			fmt.Fprintf(&buf, " %d", i+1)
		}
		buf.WriteByte('\n')
	}
	for _, p := range o.Points {
		fmt.Fprintf(&buf, "p %d\n", p+1)
	}
	return buf.Bytes()
}

// WriteOBJFile writes the geometry to disk as OBJ text.
func (o *OBJ) WriteOBJFile(path string) error {
	return os.WriteFile(path, o.Encode(), 0644)
}
