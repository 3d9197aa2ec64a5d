package protocol

import (
	"fmt"

	"go.uber.org/zap"
)

// Unpacked is the host-side interpretation of a raw output index buffer.
// Exactly one of Faces/Edges is populated for indexed formats; point
// clouds populate neither.
type Unpacked struct {
	Format MeshFormat
	Faces  [][3]uint32
	Edges  [][2]uint32

	// Warnings collects non-fatal diagnostics, e.g. an odd-length chunked
	// edge buffer whose trailing index had to be ignored.
	Warnings []string
}

// Unpack reinterprets raw indices according to the mesh format tag echoed
// in the output map. A missing or unknown tag is a protocol failure; a
// structurally suspect buffer is reported through both the returned
// Warnings and the logger, never silently truncated.
func Unpack(out *ConfigMap, indices []uint32, log *zap.Logger) (*Unpacked, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tag, err := out.Mandatory(KeyMeshFormat)
	if err != nil {
		return nil, err
	}
	format, err := ParseMeshFormat(tag)
	if err != nil {
		return nil, err
	}

	u := &Unpacked{Format: format}
	switch format {
	case FormatTriangulated:
		if len(indices)%3 != 0 {
			return nil, &ProtocolError{Reason: fmt.Sprintf(
				"triangulated index count %d is not a multiple of 3", len(indices))}
		}
		u.Faces = make([][3]uint32, 0, len(indices)/3)
		for i := 0; i+2 < len(indices); i += 3 {
			u.Faces = append(u.Faces, [3]uint32{indices[i], indices[i+1], indices[i+2]})
		}

	case FormatLineWindows:
		if len(indices) >= 2 {
			u.Edges = make([][2]uint32, 0, len(indices)-1)
			for i := 0; i+1 < len(indices); i++ {
				u.Edges = append(u.Edges, [2]uint32{indices[i], indices[i+1]})
			}
		}

	case FormatLineChunks:
		if len(indices)%2 != 0 {
			w := fmt.Sprintf(
				"chunked edge buffer has odd length %d; trailing index %d ignored",
				len(indices), indices[len(indices)-1])
			u.Warnings = append(u.Warnings, w)
			log.Warn("suspect edge buffer",
				zap.Int("indices", len(indices)),
				zap.Uint32("trailing", indices[len(indices)-1]))
		}
		u.Edges = make([][2]uint32, 0, len(indices)/2)
		for i := 0; i+1 < len(indices); i += 2 {
			u.Edges = append(u.Edges, [2]uint32{indices[i], indices[i+1]})
		}

	case FormatPointCloud:
		if len(indices) > 0 {
			w := fmt.Sprintf("point cloud carried %d indices; ignored", len(indices))
			u.Warnings = append(u.Warnings, w)
			log.Warn("point cloud carried indices", zap.Int("indices", len(indices)))
		}

	default:
		return nil, &UnknownFormatError{Tag: tag}
	}
	return u, nil
}
