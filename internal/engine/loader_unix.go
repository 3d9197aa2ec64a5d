//go:build darwin || freebsd || linux

package engine

import (
	"fmt"

	"github.com/ebitengine/purego"
)

func loadLibrary(path string) (uintptr, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_LAZY|purego.RTLD_LOCAL)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrLibraryNotFound, err)
	}
	return handle, nil
}

func lookupSymbol(handle uintptr, name string) (uintptr, error) {
	addr, err := purego.Dlsym(handle, name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrSymbolMissing, name, err)
	}
	return addr, nil
}

func closeLibrary(handle uintptr) error {
	return purego.Dlclose(handle)
}
