package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Options locate the native binary and select the lifecycle mode.
type Options struct {
	// LibDir holds the installed production binary.
	LibDir string

	// Dev switches to the development lifecycle: the library named by
	// BuildID is loaded from DevDir and unloaded again after every call,
	// so a freshly built engine is picked up without restarting the host.
	Dev     bool
	DevDir  string
	BuildID string
}

const libBaseName = "geobridge_engine"

// libraryFileName returns the platform file name for the engine binary,
// optionally suffixed with a build id (dev mode).
func libraryFileName(buildID string) string {
	suffix := ""
	if buildID != "" {
		suffix = "-" + buildID
	}
	switch runtime.GOOS {
	case "windows":
		return libBaseName + suffix + ".dll"
	case "darwin":
		return "lib" + libBaseName + suffix + ".dylib"
	default:
		return "lib" + libBaseName + suffix + ".so"
	}
}

// ResolvePath returns the binary path for the configured mode. Dev mode
// is deterministic: the caller (or build tooling) names an exact build id
// instead of the host sniffing directory timestamps.
func (o Options) ResolvePath() (string, error) {
	var path string
	if o.Dev {
		if o.BuildID == "" {
			return "", fmt.Errorf("%w: dev mode requires an explicit build id", ErrLibraryNotFound)
		}
		path = filepath.Join(o.DevDir, libraryFileName(o.BuildID))
	} else {
		path = filepath.Join(o.LibDir, libraryFileName(""))
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrLibraryNotFound, path)
	}
	return path, nil
}
