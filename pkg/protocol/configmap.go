package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Reserved keys understood by both sides of the boundary. Everything else
// in a ConfigMap is an opaque operation parameter.
const (
	// KeyCommand selects which native algorithm runs.
	KeyCommand = "command"
	// KeyMeshFormat declares (input) or echoes (output) the buffer
	// interpretation.
	KeyMeshFormat = "mesh.format"
	// KeyError is present only on failure; its value is the message.
	KeyError = "ERROR"
	// KeyRemoveDoubles asks the applier to weld near-coincident vertices.
	KeyRemoveDoubles = "REMOVE_DOUBLES"
	// KeyRemoveDoublesThreshold overrides the default weld distance.
	KeyRemoveDoublesThreshold = "REMOVE_DOUBLES_THRESHOLD"
	// KeyFirstVertexModel1 and KeyFirstIndexModel1 mark where the second
	// model starts when two meshes share one pair of buffers.
	KeyFirstVertexModel1 = "first_vertex_model_1"
	KeyFirstIndexModel1  = "first_index_model_1"
	// KeyModel0Name optionally names the output object.
	KeyModel0Name = "model_0_name"
)

// DefaultWeldThreshold is used when REMOVE_DOUBLES is set without an
// explicit threshold.
const DefaultWeldThreshold = 0.0001

// ConfigMap is an insertion-ordered string-to-string mapping. It is the
// bidirectional side channel of the protocol: operation parameters on the
// way in, result metadata (or an error) on the way out. Numeric values
// travel as their decimal string representation, booleans as "true"/"false".
type ConfigMap struct {
	keys   []string
	values map[string]string
}

// NewConfigMap returns an empty map.
func NewConfigMap() *ConfigMap {
	return &ConfigMap{values: make(map[string]string)}
}

// Set stores a key/value pair, preserving first-insertion order on
// repeated sets of the same key.
func (m *ConfigMap) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// SetFloat stores a float value as its decimal string.
func (m *ConfigMap) SetFloat(key string, value float64) {
	m.Set(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// SetInt stores an int value as its decimal string.
func (m *ConfigMap) SetInt(key string, value int) {
	m.Set(key, strconv.Itoa(value))
}

// SetBool stores a bool as the literal "true" or "false".
func (m *ConfigMap) SetBool(key string, value bool) {
	m.Set(key, strconv.FormatBool(value))
}

// Get returns the value for key and whether it was present.
func (m *ConfigMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// GetBool returns true only if the key is present and its value is the
// string "true" (case-insensitive, matching the original host glue).
func (m *ConfigMap) GetBool(key string) bool {
	v, ok := m.values[key]
	return ok && strings.EqualFold(v, "true")
}

// GetFloat parses the value as a float. A missing key returns the
// fallback; an unparseable value is an error.
func (m *ConfigMap) GetFloat(key string, fallback float64) (float64, error) {
	v, ok := m.values[key]
	if !ok {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &ProtocolError{Reason: fmt.Sprintf("key %q: %q is not a number", key, v)}
	}
	return f, nil
}

// GetInt parses the value as an int, with the same missing/unparseable
// behavior as GetFloat.
func (m *ConfigMap) GetInt(key string, fallback int) (int, error) {
	v, ok := m.values[key]
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ProtocolError{Reason: fmt.Sprintf("key %q: %q is not an integer", key, v)}
	}
	return n, nil
}

// Mandatory returns the value for key or a protocol error naming it.
func (m *ConfigMap) Mandatory(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", &ProtocolError{Reason: fmt.Sprintf("mandatory key %q is missing", key)}
	}
	return v, nil
}

// Len returns the number of entries.
func (m *ConfigMap) Len() int {
	return len(m.keys)
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (m *ConfigMap) Keys() []string {
	return m.keys
}

// Encode serializes the map into two parallel slices plus an implicit
// count (their shared length), preserving insertion order and value bytes.
func (m *ConfigMap) Encode() (keys, values []string) {
	keys = make([]string, len(m.keys))
	values = make([]string, len(m.keys))
	for i, k := range m.keys {
		keys[i] = k
		values[i] = m.values[k]
	}
	return keys, values
}

// Decode rebuilds a ConfigMap from parallel key/value slices as received
// from the engine. If the reserved error key is present the decode fails
// with an *EngineError carrying the message: error output must never be
// handed to code expecting success output.
func Decode(keys, values []string) (*ConfigMap, error) {
	if len(keys) != len(values) {
		return nil, &ProtocolError{Reason: fmt.Sprintf(
			"key/value count mismatch: %d keys, %d values", len(keys), len(values))}
	}
	m := NewConfigMap()
	for i, k := range keys {
		m.Set(k, values[i])
	}
	if msg, ok := m.Get(KeyError); ok {
		return nil, &EngineError{Message: msg}
	}
	return m, nil
}
