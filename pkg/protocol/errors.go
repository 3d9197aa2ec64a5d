package protocol

import (
	"errors"
	"fmt"
)

// ErrNoGeometry is returned when a successful engine reply carries no
// usable geometry for an indexed mesh format.
var ErrNoGeometry = errors.New("no geometry returned by the engine")

// EngineError is a failure reported by the native engine itself, carried
// across the boundary in the reserved error key of the output map. The
// message is shown to the user verbatim.
type EngineError struct {
	Message string
}

func (e *EngineError) Error() string {
	return "engine: " + e.Message
}

// ValidationError is a local input-topology failure detected before any
// native call is made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ProtocolError indicates version skew between this host glue and the
// native engine: counts that do not line up, missing mandatory keys and
// similar structural problems.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string {
	return "protocol: " + e.Reason
}

// UnknownFormatError is returned when an output map carries a mesh format
// tag this host does not recognize.
type UnknownFormatError struct {
	Tag string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unrecognized mesh format %q", e.Tag)
}
