package engine

import (
	"context"

	"github.com/krefting/geobridge/pkg/geom"
	"github.com/krefting/geobridge/pkg/protocol"
)

// Request is one invocation's input: flat buffers plus the encoded
// parameter map. Buffers may be empty but the config must carry at least
// the command key.
type Request struct {
	Vertices   []geom.Vec3
	Indices    []uint32
	Transforms []float32
	Config     *protocol.ConfigMap
}

// Response is the materialized content of a result: host-owned copies of
// everything the native side produced. The output map stays as raw
// parallel pairs so the caller decodes it through protocol.Decode and the
// reserved error key surfaces as a typed error at the right layer.
type Response struct {
	Vertices     []geom.Vec3
	Indices      []uint32
	Transforms   []float32
	ConfigKeys   []string
	ConfigValues []string
}

// Engine is the invocation surface. The native implementation is
// *Library; tests and replay sessions substitute their own.
type Engine interface {
	// Invoke runs one synchronous engine call. Every returned Result
	// must be released exactly once, on the error path too.
	Invoke(ctx context.Context, req Request) (*Result, error)
}

// resultBackend abstracts where a result's data lives: native memory
// behind raw pointers, or plain Go slices for fakes and replays.
type resultBackend interface {
	materialize() Response
	free()
}

// Result is the owning handle for one invocation's output. Reads are
// only valid between Invoke and Release; Release must be called exactly
// once and a second release (or a read after release) fails with
// ErrAlreadyReleased.
type Result struct {
	backend  resultBackend
	released bool
}

// Read copies the result's content out of its backing memory.
func (r *Result) Read() (Response, error) {
	if r.released {
		return Response{}, ErrAlreadyReleased
	}
	return r.backend.materialize(), nil
}

// Release frees all memory reachable from the result. After Release no
// field of the result may be read again.
func (r *Result) Release() error {
	if r.released {
		return ErrAlreadyReleased
	}
	r.released = true
	r.backend.free()
	return nil
}

// Released reports whether Release has been called. Used by tests that
// assert the exactly-once release contract.
func (r *Result) Released() bool {
	return r.released
}

// hostedBackend serves a Result from plain Go data. Fakes and the
// session replayer use it; freeing is a no-op.
type hostedBackend struct {
	resp Response
}

func (b *hostedBackend) materialize() Response { return b.resp }
func (b *hostedBackend) free()                 {}

// NewHostedResult wraps plain Go data in an owning handle. The release
// contract is identical to a native result's.
func NewHostedResult(resp Response) *Result {
	return &Result{backend: &hostedBackend{resp: resp}}
}
