package engine

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	"github.com/krefting/geobridge/pkg/geom"
)

// Library is the handle to the loaded native engine. It is an explicitly
// constructed service object, not a package global; callers own its
// lifecycle. Loading is lazy: the first Invoke loads the binary.
//
// Calls are strictly serialized. The native engine is neither reentrant
// nor thread-safe, and a running call cannot be cancelled; the mutex also
// serializes load/unload against invocations.
type Library struct {
	mu   sync.Mutex
	opts Options
	log  *zap.Logger

	handle          uintptr
	processGeometry func(*Point3F, uintptr, *uint32, uintptr, *float32, uintptr, *stringMap) processResult
	freeResults     func(*processResult)
}

// NewLibrary creates an unloaded library handle.
func NewLibrary(opts Options, log *zap.Logger) *Library {
	if log == nil {
		log = zap.NewNop()
	}
	return &Library{opts: opts, log: log}
}

// Load resolves and opens the native binary and binds its entry points.
// Loading an already-loaded library is a no-op.
func (l *Library) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *Library) load() error {
	if l.handle != 0 {
		return nil
	}
	path, err := l.opts.ResolvePath()
	if err != nil {
		return err
	}

	handle, err := loadLibrary(path)
	if err != nil {
		return err
	}

	procAddr, err := lookupSymbol(handle, symProcessGeometry)
	if err != nil {
		_ = closeLibrary(handle)
		return err
	}
	freeAddr, err := lookupSymbol(handle, symFreeResults)
	if err != nil {
		_ = closeLibrary(handle)
		return err
	}

	purego.RegisterFunc(&l.processGeometry, procAddr)
	purego.RegisterFunc(&l.freeResults, freeAddr)
	l.handle = handle

	l.log.Info("engine library loaded",
		zap.String("path", path),
		zap.Bool("dev", l.opts.Dev))
	return nil
}

// Close unloads the native binary. Pending results must have been
// released first; their memory lives inside the library.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.close()
}

func (l *Library) close() error {
	if l.handle == 0 {
		return nil
	}
	err := closeLibrary(l.handle)
	l.handle = 0
	l.processGeometry = nil
	l.freeResults = nil
	if err != nil {
		return fmt.Errorf("closing engine library: %w", err)
	}
	l.log.Debug("engine library closed")
	return nil
}

// Reload closes and reopens the binary, picking up a fresh build.
func (l *Library) Reload() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reload()
}

func (l *Library) reload() error {
	if err := l.close(); err != nil {
		return err
	}
	return l.load()
}

// Loaded reports whether the binary is currently mapped.
func (l *Library) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handle != 0
}

// Invoke marshals the request, runs the synchronous native call and wraps
// the returned allocation in an owning Result. The call blocks the
// calling goroutine for its entire duration; ctx is only consulted before
// the call starts, because the engine offers no cancellation.
//
// In dev mode the library is reloaded before the call so the configured
// build id is always the one executing; it is closed again when the
// caller releases the Result.
func (l *Library) Invoke(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.opts.Dev {
		if err := l.reload(); err != nil {
			return nil, err
		}
	} else if err := l.load(); err != nil {
		return nil, err
	}

	keys, values := req.Config.Encode()
	keyPtrs, keyBacking := cStrings(keys)
	valuePtrs, valueBacking := cStrings(values)
	cfg := stringMap{
		keys:   &keyPtrs[0],
		values: &valuePtrs[0],
		count:  uintptr(len(keys)),
	}

	// Vertices are copied into the exact ABI layout. Empty buffers still
	// get a valid base pointer with count 0.
	verts := make([]Point3F, len(req.Vertices)+1)
	for i, v := range req.Vertices {
		verts[i] = Point3F{X: v.X, Y: v.Y, Z: v.Z}
	}
	indices := make([]uint32, len(req.Indices)+1)
	copy(indices, req.Indices)
	transforms := make([]float32, len(req.Transforms)+1)
	copy(transforms, req.Transforms)

	l.log.Debug("invoking engine",
		zap.Int("vertices", len(req.Vertices)),
		zap.Int("indices", len(req.Indices)),
		zap.Int("transforms", len(req.Transforms)),
		zap.Int("config", len(keys)))

	raw := l.processGeometry(
		&verts[0], uintptr(len(req.Vertices)),
		&indices[0], uintptr(len(req.Indices)),
		&transforms[0], uintptr(len(req.Transforms)),
		&cfg,
	)

	runtime.KeepAlive(keyBacking)
	runtime.KeepAlive(valueBacking)
	runtime.KeepAlive(keyPtrs)
	runtime.KeepAlive(valuePtrs)

	l.log.Debug("engine returned",
		zap.Uint64("vertices", uint64(raw.geometry.vertexCount)),
		zap.Uint64("indices", uint64(raw.geometry.indexCount)),
		zap.Uint64("config", uint64(raw.config.count)))

	return &Result{backend: &nativeBackend{lib: l, raw: raw}}, nil
}

// nativeBackend serves a Result straight from native memory. materialize
// reads through the returned pointers; free hands the allocation back to
// the engine and, in dev mode, closes the library afterwards so the next
// call maps a fresh binary.
type nativeBackend struct {
	lib *Library
	raw processResult
}

func (b *nativeBackend) materialize() Response {
	var resp Response
	g := b.raw.geometry

	if g.vertexCount > 0 && g.vertices != nil {
		src := unsafe.Slice(g.vertices, g.vertexCount)
		resp.Vertices = make([]geom.Vec3, len(src))
		for i, p := range src {
			resp.Vertices[i] = geom.Vec3{X: p.X, Y: p.Y, Z: p.Z}
		}
	}
	if g.indexCount > 0 && g.indices != nil {
		resp.Indices = append([]uint32(nil), unsafe.Slice(g.indices, g.indexCount)...)
	}
	if g.transformCount > 0 && g.transforms != nil {
		resp.Transforms = append([]float32(nil), unsafe.Slice(g.transforms, g.transformCount)...)
	}

	m := b.raw.config
	if m.count > 0 && m.keys != nil && m.values != nil {
		keyPtrs := unsafe.Slice(m.keys, m.count)
		valuePtrs := unsafe.Slice(m.values, m.count)
		resp.ConfigKeys = make([]string, m.count)
		resp.ConfigValues = make([]string, m.count)
		for i := range keyPtrs {
			resp.ConfigKeys[i] = goString(keyPtrs[i])
			resp.ConfigValues[i] = goString(valuePtrs[i])
		}
	}
	return resp
}

func (b *nativeBackend) free() {
	b.lib.mu.Lock()
	defer b.lib.mu.Unlock()
	b.lib.freeResults(&b.raw)
	if b.lib.opts.Dev {
		if err := b.lib.close(); err != nil {
			b.lib.log.Warn("closing dev library", zap.Error(err))
		}
	}
}
