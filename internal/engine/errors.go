package engine

import "errors"

var (
	// ErrLibraryNotFound means the native binary could not be located or
	// loaded from the resolved path.
	ErrLibraryNotFound = errors.New("engine library not found")

	// ErrSymbolMissing means the library loaded but lacks one of the
	// expected entry points, usually a build mismatch.
	ErrSymbolMissing = errors.New("engine library is missing an entry point")

	// ErrAlreadyReleased is a programming-contract violation: a result
	// was read or released after its single permitted release.
	ErrAlreadyReleased = errors.New("result already released")

	// ErrNotLoaded means an operation requiring a loaded library ran
	// against a closed handle.
	ErrNotLoaded = errors.New("engine library is not loaded")
)
