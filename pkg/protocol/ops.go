package protocol

import "fmt"

// Operation identifies one algorithm inside the native engine. The set is
// closed on the host side so a typo fails before crossing the boundary.
type Operation string

// Known engine operations.
const (
	OpConvexHull2D    Operation = "convex_hull_2d"
	OpOutline2D       Operation = "2d_outline"
	OpDelaunay2D      Operation = "2d_delaunay_triangulation"
	OpCenterline      Operation = "centerline"
	OpSimplifyRDP     Operation = "simplify_rdp"
	OpKnifeIntersect  Operation = "knife_intersect"
	OpVoronoiMesh     Operation = "voronoi_mesh"
	OpVoronoiDiagram  Operation = "voronoi_diagram"
	OpSDFMesh         Operation = "sdf_mesh"
	OpSDFMesh25       Operation = "sdf_mesh_2_5"
	OpDiscretize      Operation = "discretize"
	OpSurfaceScan     Operation = "surface_scan"
	OpDecimate        Operation = "baby_shark_decimate"
	OpIsotropicRemesh Operation = "baby_shark_isotropic_remesh"
)

// OpSpec describes what an operation expects from the host: the input
// buffer format and whether a secondary (bounding) model accompanies the
// active one.
type OpSpec struct {
	Input     MeshFormat
	DualModel bool
}

var opTable = map[Operation]OpSpec{
	OpConvexHull2D:    {Input: FormatPointCloud},
	OpOutline2D:       {Input: FormatTriangulated},
	OpDelaunay2D:      {Input: FormatPointCloud},
	OpCenterline:      {Input: FormatLineChunks},
	OpSimplifyRDP:     {Input: FormatLineChunks},
	OpKnifeIntersect:  {Input: FormatLineChunks},
	OpVoronoiMesh:     {Input: FormatLineChunks, DualModel: true},
	OpVoronoiDiagram:  {Input: FormatLineChunks, DualModel: true},
	OpSDFMesh:         {Input: FormatTriangulated},
	OpSDFMesh25:       {Input: FormatTriangulated},
	OpDiscretize:      {Input: FormatLineChunks},
	OpSurfaceScan:     {Input: FormatTriangulated, DualModel: true},
	OpDecimate:        {Input: FormatTriangulated},
	OpIsotropicRemesh: {Input: FormatTriangulated},
}

// ParseOperation validates a command string against the known set.
func ParseOperation(name string) (Operation, error) {
	op := Operation(name)
	if _, ok := opTable[op]; !ok {
		return "", fmt.Errorf("unknown operation %q", name)
	}
	return op, nil
}

// Spec returns the host-side expectations for the operation.
func (op Operation) Spec() (OpSpec, bool) {
	s, ok := opTable[op]
	return s, ok
}

// Operations returns the known operation names, for CLI help output.
func Operations() []Operation {
	ops := make([]Operation, 0, len(opTable))
	for op := range opTable {
		ops = append(ops, op)
	}
	return ops
}
