// Package engine owns the boundary to the native compute library: the C
// ABI declarations, the dynamic-library lifecycle and the two-phase
// ownership of natively-allocated results.
//
// Wire contract (fixed, see also pkg/protocol):
//   - vertices are packed x/y/z float32 triples
//   - index elements are 32-bit unsigned
//   - transforms are 16 row-major float32 per model
//   - every buffer pointer is paired with an element count; empty buffers
//     are passed as a valid pointer with count 0, never as NULL
package engine

import "unsafe"

// Point3F mirrors the native vertex struct: three packed float32.
type Point3F struct {
	X, Y, Z float32
}

// stringMap mirrors the native config mapping: two independently indexed
// parallel arrays of NUL-terminated strings plus their shared count.
type stringMap struct {
	keys   **byte
	values **byte
	count  uintptr
}

// geometryOutput mirrors the native geometry aggregate.
type geometryOutput struct {
	vertices       *Point3F
	vertexCount    uintptr
	indices        *uint32
	indexCount     uintptr
	transforms     *float32
	transformCount uintptr
}

// processResult mirrors the native result aggregate returned by value
// from process_geometry. All memory reachable from it is owned by the
// native side until free_process_results is called.
type processResult struct {
	geometry geometryOutput
	config   stringMap
}

// Native entry point names.
const (
	symProcessGeometry = "process_geometry"
	symFreeResults     = "free_process_results"
)

// cStrings converts Go strings into NUL-terminated byte buffers and an
// array of pointers to them. The returned backing slice must be kept
// alive for as long as the pointers are in native hands.
func cStrings(ss []string) (ptrs []*byte, backing [][]byte) {
	ptrs = make([]*byte, 0, len(ss)+1)
	backing = make([][]byte, 0, len(ss))
	for _, s := range ss {
		buf := make([]byte, len(s)+1)
		copy(buf, s)
		backing = append(backing, buf)
		ptrs = append(ptrs, &buf[0])
	}
	if len(ptrs) == 0 {
		// A valid non-nil array base for the empty map.
		ptrs = append(ptrs, nil)
	}
	return ptrs, backing
}

// goString copies a NUL-terminated native string into a Go string.
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
