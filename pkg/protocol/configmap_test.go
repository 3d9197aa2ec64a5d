package protocol

import (
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := NewConfigMap()
	m.Set(KeyCommand, "convex_hull_2d")
	m.Set(KeyMeshFormat, "point_cloud")
	m.SetFloat("SIMPLIFY_DISTANCE", 0.05)
	m.SetBool(KeyRemoveDoubles, true)

	keys, values := m.Encode()
	if len(keys) != 4 || len(values) != 4 {
		t.Fatalf("Encode: got %d keys, %d values, want 4 each", len(keys), len(values))
	}
	// Insertion order must survive.
	if keys[0] != KeyCommand || keys[3] != KeyRemoveDoubles {
		t.Errorf("Encode order: got %v", keys)
	}

	back, err := Decode(keys, values)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Len() != m.Len() {
		t.Fatalf("round trip length: got %d, want %d", back.Len(), m.Len())
	}
	for _, k := range m.Keys() {
		want, _ := m.Get(k)
		got, ok := back.Get(k)
		if !ok || got != want {
			t.Errorf("round trip key %q: got %q, want %q", k, got, want)
		}
	}
}

func TestSingleEntryRoundTrip(t *testing.T) {
	m := NewConfigMap()
	m.Set("command", "convex_hull_2d")

	keys, values := m.Encode()
	if len(keys) != 1 || keys[0] != "command" || values[0] != "convex_hull_2d" {
		t.Fatalf("Encode: got %v / %v", keys, values)
	}

	back, err := Decode(keys, values)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v, _ := back.Get("command"); v != "convex_hull_2d" {
		t.Errorf("got %q, want convex_hull_2d", v)
	}
}

func TestDecodeErrorKey(t *testing.T) {
	// An output map carrying the error key must decode to a failure, even
	// if the rest of the map looks healthy.
	keys := []string{KeyMeshFormat, KeyError}
	values := []string{"triangulated", "non-manifold mesh"}

	m, err := Decode(keys, values)
	if m != nil {
		t.Fatal("Decode returned a map alongside an engine error")
	}
	var ee *EngineError
	if !errors.As(err, &ee) {
		t.Fatalf("Decode: got %T, want *EngineError", err)
	}
	if ee.Message != "non-manifold mesh" {
		t.Errorf("message: got %q, want %q", ee.Message, "non-manifold mesh")
	}
}

func TestDecodeCountMismatch(t *testing.T) {
	_, err := Decode([]string{"a", "b"}, []string{"1"})
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("got %T, want *ProtocolError", err)
	}
}

func TestSetPreservesFirstInsertionOrder(t *testing.T) {
	m := NewConfigMap()
	m.Set("a", "1")
	m.Set("b", "2")
	m.Set("a", "3") // overwrite must not move the key

	keys, values := m.Encode()
	if keys[0] != "a" || keys[1] != "b" || len(keys) != 2 {
		t.Errorf("keys: got %v", keys)
	}
	if values[0] != "3" {
		t.Errorf("overwritten value: got %q, want 3", values[0])
	}
}

func TestUTF8ValuesSurvive(t *testing.T) {
	m := NewConfigMap()
	m.Set("note", "naïve ◆ メッシュ")

	keys, values := m.Encode()
	back, err := Decode(keys, values)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v, _ := back.Get("note"); v != "naïve ◆ メッシュ" {
		t.Errorf("UTF-8 value mangled: %q", v)
	}
}

func TestGetters(t *testing.T) {
	m := NewConfigMap()
	m.Set("t", "0.25")
	m.Set("n", "7")
	m.Set("flag", "TRUE")
	m.Set("bad", "x")

	if f, err := m.GetFloat("t", 0); err != nil || f != 0.25 {
		t.Errorf("GetFloat: got %f, %v", f, err)
	}
	if f, err := m.GetFloat("missing", 1.5); err != nil || f != 1.5 {
		t.Errorf("GetFloat fallback: got %f, %v", f, err)
	}
	if _, err := m.GetFloat("bad", 0); err == nil {
		t.Error("GetFloat should reject a non-number")
	}
	if n, err := m.GetInt("n", 0); err != nil || n != 7 {
		t.Errorf("GetInt: got %d, %v", n, err)
	}
	if !m.GetBool("flag") {
		t.Error("GetBool should accept TRUE case-insensitively")
	}
	if m.GetBool("missing") {
		t.Error("GetBool on a missing key should be false")
	}
	if _, err := m.Mandatory("missing"); err == nil {
		t.Error("Mandatory should fail on a missing key")
	}
}
