// Package protocol defines the host side of the geometry exchange
// protocol: the mesh format tags, the ordered string map side channel and
// the rules for reinterpreting the flat index buffer an engine hands back.
//
// Index elements are fixed at 32 bits on the wire. Transform matrices are
// 16 float32 in row-major order.
package protocol

// MeshFormat determines how a flat index buffer is interpreted. The buffer
// itself carries no structure; the tag is everything.
type MeshFormat uint8

const (
	// FormatUnknown is the zero value, never valid on the wire.
	FormatUnknown MeshFormat = iota
	// FormatTriangulated groups indices three at a time into faces.
	FormatTriangulated
	// FormatLineWindows slides a window over the indices: consecutive
	// pairs (i, i+1) each form an edge of one connected polyline.
	FormatLineWindows
	// FormatLineChunks groups indices two at a time into independent edges.
	FormatLineChunks
	// FormatPointCloud carries vertices only, no indices.
	FormatPointCloud
)

// Wire tags. These strings are the only place the enum touches the wire.
const (
	tagTriangulated = "triangulated"
	tagLineWindows  = "line_windows"
	tagLineChunks   = "line_chunks"
	tagPointCloud   = "point_cloud"
)

// String returns the wire tag for the format.
func (f MeshFormat) String() string {
	switch f {
	case FormatTriangulated:
		return tagTriangulated
	case FormatLineWindows:
		return tagLineWindows
	case FormatLineChunks:
		return tagLineChunks
	case FormatPointCloud:
		return tagPointCloud
	default:
		return "unknown"
	}
}

// ParseMeshFormat translates a wire tag into a MeshFormat.
func ParseMeshFormat(tag string) (MeshFormat, error) {
	switch tag {
	case tagTriangulated:
		return FormatTriangulated, nil
	case tagLineWindows:
		return FormatLineWindows, nil
	case tagLineChunks:
		return FormatLineChunks, nil
	case tagPointCloud:
		return FormatPointCloud, nil
	default:
		return FormatUnknown, &UnknownFormatError{Tag: tag}
	}
}
