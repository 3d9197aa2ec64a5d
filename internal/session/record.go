package session

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/krefting/geobridge/internal/engine"
)

// Recorder wraps an engine and appends every invocation, request and
// response both, to a zstd-compressed session file. The wrapped engine's
// native result is read and released inside Invoke; the caller gets a
// hosted copy with the usual release contract.
type Recorder struct {
	mu    sync.Mutex
	inner engine.Engine
	f     *os.File
	zw    *zstd.Encoder
	log   *zap.Logger
	count int
}

// NewRecorder creates the session file at path, truncating any previous
// one, and returns a recording engine around inner.
func NewRecorder(inner engine.Engine, path string, log *zap.Logger) (*Recorder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating session file: %w", err)
	}
	if _, err := f.Write(fileMagic); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing session header: %w", err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Recorder{inner: inner, f: f, zw: zw, log: log}, nil
}

// Invoke implements engine.Engine.
func (r *Recorder) Invoke(ctx context.Context, req engine.Request) (*engine.Result, error) {
	res, err := r.inner.Invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	resp, err := res.Read()
	relErr := res.Release()
	if err != nil {
		return nil, err
	}
	if relErr != nil {
		return nil, relErr
	}

	if err := r.append(req, resp); err != nil {
		// Recording trouble must not fail the operation itself.
		r.log.Warn("session record dropped", zap.Error(err))
	}
	return engine.NewHostedResult(resp), nil
}

func (r *Recorder) append(req engine.Request, resp engine.Response) error {
	reqBytes, err := marshalRequest(req)
	if err != nil {
		return err
	}
	respBytes, err := marshalResponse(resp)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.zw == nil {
		return fmt.Errorf("session file already closed")
	}
	if err := binary.Write(r.zw, binary.LittleEndian, hashRequest(reqBytes)); err != nil {
		return err
	}
	if err := writeUint32(r.zw, uint32(len(reqBytes))); err != nil {
		return err
	}
	if _, err := r.zw.Write(reqBytes); err != nil {
		return err
	}
	if err := writeUint32(r.zw, uint32(len(respBytes))); err != nil {
		return err
	}
	if _, err := r.zw.Write(respBytes); err != nil {
		return err
	}
	r.count++
	return nil
}

// Count returns how many invocations were recorded so far.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Close flushes the compressed stream and closes the file. Further
// invocations still reach the wrapped engine but are no longer recorded.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.zw == nil {
		return nil
	}
	zerr := r.zw.Close()
	ferr := r.f.Close()
	r.zw = nil
	if zerr != nil {
		return zerr
	}
	return ferr
}
