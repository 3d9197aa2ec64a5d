package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/krefting/geobridge/internal/engine"
	"github.com/krefting/geobridge/pkg/protocol"
)

// ErrSessionExhausted means the replayed session has no entry left for
// the current invocation.
var ErrSessionExhausted = errors.New("session: no recorded invocation left")

// Replayer serves recorded responses in order, standing in for the
// native engine. Each invocation is checked against the recorded request
// hash so a drifted caller fails loudly instead of applying the wrong
// geometry.
type Replayer struct {
	entries []Entry
	next    int
}

// OpenReplayer loads a session file written by a Recorder.
func OpenReplayer(path string) (*Replayer, error) {
	entries, err := ReadAll(path)
	if err != nil {
		return nil, err
	}
	return &Replayer{entries: entries}, nil
}

// Entries returns every recorded invocation.
func (r *Replayer) Entries() []Entry {
	return r.entries
}

// Remaining returns how many recorded invocations have not been served.
func (r *Replayer) Remaining() int {
	return len(r.entries) - r.next
}

// Invoke implements engine.Engine.
func (r *Replayer) Invoke(ctx context.Context, req engine.Request) (*engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.next >= len(r.entries) {
		return nil, fmt.Errorf("%w (served %d)", ErrSessionExhausted, r.next)
	}
	entry := r.entries[r.next]

	reqBytes, err := marshalRequest(req)
	if err != nil {
		return nil, err
	}
	if got := hashRequest(reqBytes); got != entry.RequestHash {
		return nil, &protocol.ProtocolError{
			Reason: fmt.Sprintf("replay mismatch at invocation %d: request hash %016x, recorded %016x",
				r.next, got, entry.RequestHash),
		}
	}
	r.next++
	return engine.NewHostedResult(entry.Response), nil
}

// ReadAll decodes every entry of a session file.
func ReadAll(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening session file: %w", err)
	}
	defer f.Close()

	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, fmt.Errorf("reading session header: %w", err)
	}
	if !bytes.Equal(magic, fileMagic) {
		return nil, fmt.Errorf("not a session file (header %q)", magic)
	}

	zr, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var entries []Entry
	for {
		var hash uint64
		if err := binary.Read(zr, binary.LittleEndian, &hash); err != nil {
			if err == io.EOF {
				return entries, nil
			}
			return nil, fmt.Errorf("session entry %d: %w", len(entries), err)
		}
		reqBytes, err := readBlock(zr)
		if err != nil {
			return nil, fmt.Errorf("session entry %d: %w", len(entries), err)
		}
		respBytes, err := readBlock(zr)
		if err != nil {
			return nil, fmt.Errorf("session entry %d: %w", len(entries), err)
		}

		req, err := unmarshalRequest(bytes.NewReader(reqBytes))
		if err != nil {
			return nil, fmt.Errorf("session entry %d: %w", len(entries), err)
		}
		resp, err := unmarshalResponse(bytes.NewReader(respBytes))
		if err != nil {
			return nil, fmt.Errorf("session entry %d: %w", len(entries), err)
		}
		entries = append(entries, Entry{RequestHash: hash, Request: req, Response: resp})
	}
}

func readBlock(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
