// Package session records engine invocations to a compressed log and
// replays them later, so operations can be re-run and debugged without
// the native library present.
package session

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"io"
	"math"

	"github.com/krefting/geobridge/internal/engine"
	"github.com/krefting/geobridge/pkg/geom"
	"github.com/krefting/geobridge/pkg/protocol"
)

// fileMagic starts every session file; the trailing digits version the
// record layout.
var fileMagic = []byte("GBSESS01")

// Entry is one recorded invocation: the request, its content hash and
// the engine's response.
type Entry struct {
	RequestHash uint64
	Request     engine.Request
	Response    engine.Response
}

// Command returns the recorded request's command key, or "".
func (e *Entry) Command() string {
	if e.Request.Config == nil {
		return ""
	}
	v, _ := e.Request.Config.Get(protocol.KeyCommand)
	return v
}

func writeUint32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := w.Write([]byte(s))
	return err
}

func writeVec3s(w io.Writer, vs []geom.Vec3) error {
	if err := writeUint32(w, uint32(len(vs))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, vs)
}

func writeUint32s(w io.Writer, vs []uint32) error {
	if err := writeUint32(w, uint32(len(vs))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, vs)
}

func writeFloat32s(w io.Writer, vs []float32) error {
	if err := writeUint32(w, uint32(len(vs))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, vs)
}

func writePairs(w io.Writer, keys, values []string) error {
	if len(keys) != len(values) {
		return fmt.Errorf("session: %d keys but %d values", len(keys), len(values))
	}
	if err := writeUint32(w, uint32(len(keys))); err != nil {
		return err
	}
	for i := range keys {
		if err := writeString(w, keys[i]); err != nil {
			return err
		}
		if err := writeString(w, values[i]); err != nil {
			return err
		}
	}
	return nil
}

// marshalRequest flattens a request into the record layout. The same
// bytes feed the request hash, so replay mismatches are detected.
func marshalRequest(req engine.Request) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeVec3s(&buf, req.Vertices); err != nil {
		return nil, err
	}
	if err := writeUint32s(&buf, req.Indices); err != nil {
		return nil, err
	}
	if err := writeFloat32s(&buf, req.Transforms); err != nil {
		return nil, err
	}
	var keys, values []string
	if req.Config != nil {
		keys, values = req.Config.Encode()
	}
	if err := writePairs(&buf, keys, values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalResponse(resp engine.Response) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeVec3s(&buf, resp.Vertices); err != nil {
		return nil, err
	}
	if err := writeUint32s(&buf, resp.Indices); err != nil {
		return nil, err
	}
	if err := writeFloat32s(&buf, resp.Transforms); err != nil {
		return nil, err
	}
	if err := writePairs(&buf, resp.ConfigKeys, resp.ConfigValues); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func hashRequest(reqBytes []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(reqBytes)
	return h.Sum64()
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	if n > math.MaxInt32 {
		return "", fmt.Errorf("session: string length %d is implausible", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readVec3s(r io.Reader) ([]geom.Vec3, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	vs := make([]geom.Vec3, n)
	if err := binary.Read(r, binary.LittleEndian, vs); err != nil {
		return nil, err
	}
	return vs, nil
}

func readUint32s(r io.Reader) ([]uint32, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	vs := make([]uint32, n)
	if err := binary.Read(r, binary.LittleEndian, vs); err != nil {
		return nil, err
	}
	return vs, nil
}

func readFloat32s(r io.Reader) ([]float32, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	vs := make([]float32, n)
	if err := binary.Read(r, binary.LittleEndian, vs); err != nil {
		return nil, err
	}
	return vs, nil
}

func readPairs(r io.Reader) (keys, values []string, err error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, nil, err
	}
	for i := uint32(0); i < n; i++ {
		k, err := readString(r)
		if err != nil {
			return nil, nil, err
		}
		v, err := readString(r)
		if err != nil {
			return nil, nil, err
		}
		keys = append(keys, k)
		values = append(values, v)
	}
	return keys, values, nil
}

func unmarshalRequest(r io.Reader) (engine.Request, error) {
	var req engine.Request
	var err error
	if req.Vertices, err = readVec3s(r); err != nil {
		return req, err
	}
	if req.Indices, err = readUint32s(r); err != nil {
		return req, err
	}
	if req.Transforms, err = readFloat32s(r); err != nil {
		return req, err
	}
	keys, values, err := readPairs(r)
	if err != nil {
		return req, err
	}
	// Request maps never carry the reserved error key, so they are
	// rebuilt directly instead of going through protocol.Decode.
	cfg := protocol.NewConfigMap()
	for i := range keys {
		cfg.Set(keys[i], values[i])
	}
	req.Config = cfg
	return req, nil
}

func unmarshalResponse(r io.Reader) (engine.Response, error) {
	var resp engine.Response
	var err error
	if resp.Vertices, err = readVec3s(r); err != nil {
		return resp, err
	}
	if resp.Indices, err = readUint32s(r); err != nil {
		return resp, err
	}
	if resp.Transforms, err = readFloat32s(r); err != nil {
		return resp, err
	}
	resp.ConfigKeys, resp.ConfigValues, err = readPairs(r)
	return resp, err
}
