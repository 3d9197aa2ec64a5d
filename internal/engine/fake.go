package engine

import (
	"context"
	"fmt"

	"github.com/krefting/geobridge/pkg/protocol"
)

// Fake is an in-memory Engine for tests and offline development. Each
// queued script entry answers one Invoke in order; an exhausted script
// fails the call. Requests are recorded for inspection.
type Fake struct {
	script   []Response
	calls    int
	Requests []Request
	Results  []*Result
}

// NewFake returns a fake engine with no scripted responses.
func NewFake() *Fake {
	return &Fake{}
}

// Queue appends a scripted response.
func (f *Fake) Queue(resp Response) {
	f.script = append(f.script, resp)
}

// QueueError appends a response that carries an engine-side error in the
// reserved error key, the only error channel the protocol has.
func (f *Fake) QueueError(message string) {
	f.Queue(Response{
		ConfigKeys:   []string{protocol.KeyError},
		ConfigValues: []string{message},
	})
}

// Invoke implements Engine.
func (f *Fake) Invoke(_ context.Context, req Request) (*Result, error) {
	f.Requests = append(f.Requests, req)
	if f.calls >= len(f.script) {
		return nil, fmt.Errorf("fake engine: no scripted response for call %d", f.calls)
	}
	resp := f.script[f.calls]
	f.calls++
	res := NewHostedResult(resp)
	f.Results = append(f.Results, res)
	return res, nil
}

// AllReleased reports whether every handed-out result was released
// exactly once. Call it at the end of a test.
func (f *Fake) AllReleased() bool {
	for _, r := range f.Results {
		if !r.Released() {
			return false
		}
	}
	return true
}
