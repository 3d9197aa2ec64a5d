package apply

import (
	"github.com/krefting/geobridge/internal/host"
	"github.com/krefting/geobridge/pkg/geom"
)

// weld merges vertices closer than threshold and remaps the mesh's edges
// and faces. Edges and faces that collapse onto themselves are dropped.
// A spatial hash keeps the pass linear for well-behaved input.
func weld(mesh *host.Mesh, threshold float64) *host.Mesh {
	if threshold <= 0 || len(mesh.Vertices) == 0 {
		return mesh
	}
	t := float32(threshold)
	tSq := t * t

	cell := func(v geom.Vec3) [3]int32 {
		return [3]int32{
			int32(v.X / t),
			int32(v.Y / t),
			int32(v.Z / t),
		}
	}

	grid := make(map[[3]int32][]uint32)
	remap := make([]uint32, len(mesh.Vertices))
	var kept []geom.Vec3

	for i, v := range mesh.Vertices {
		c := cell(v)
		merged := false
		// A vertex within threshold of v can only land in the 27
		// neighboring cells.
		for dx := int32(-1); dx <= 1 && !merged; dx++ {
			for dy := int32(-1); dy <= 1 && !merged; dy++ {
				for dz := int32(-1); dz <= 1 && !merged; dz++ {
					neighbor := [3]int32{c[0] + dx, c[1] + dy, c[2] + dz}
					for _, k := range grid[neighbor] {
						if kept[k].DistanceSq(v) <= tSq {
							remap[i] = k
							merged = true
							break
						}
					}
				}
			}
		}
		if !merged {
			k := uint32(len(kept))
			kept = append(kept, v)
			grid[c] = append(grid[c], k)
			remap[i] = k
		}
	}

	if len(kept) == len(mesh.Vertices) {
		return mesh
	}

	out := &host.Mesh{Vertices: kept}
	for _, e := range mesh.Edges {
		a, b := remap[e[0]], remap[e[1]]
		if a != b {
			out.Edges = append(out.Edges, [2]uint32{a, b})
		}
	}
	for _, f := range mesh.Faces {
		nf := make([]uint32, 0, len(f))
		for _, idx := range f {
			m := remap[idx]
			if len(nf) == 0 || nf[len(nf)-1] != m {
				nf = append(nf, m)
			}
		}
		if len(nf) > 2 && nf[0] != nf[len(nf)-1] {
			out.Faces = append(out.Faces, nf)
		}
	}
	return out
}
