package engine

import (
	"runtime/debug"
	"strings"
	"sync"
)

const enginePath = "github.com/dop251/goja"

var (
	initOnce sync.Once

	flagMu        sync.RWMutex
	strictCompile bool
)

// Init performs process-wide engine initialization. It is safe to call
// from multiple goroutines; every call after the first is a no-op.
// NewIsolate calls it implicitly, so most embedders never need to.
func Init() {
	initOnce.Do(func() {
		debugf("engine initialized")
	})
}

// SetFlags applies whitespace-separated engine flags. Unknown flags are
// ignored, matching how engines treat unrecognized options. Recognized:
//
//	--use_strict      compile all scripts in strict mode
//	--no-use_strict   restore sloppy-mode compilation
func SetFlags(flags string) {
	flagMu.Lock()
	defer flagMu.Unlock()
	for _, f := range strings.Fields(flags) {
		switch strings.ReplaceAll(f, "-", "_") {
		case "__use_strict":
			strictCompile = true
		case "__no_use_strict":
			strictCompile = false
		default:
			debugf("ignoring unknown flag %q", f)
		}
	}
}

func strictMode() bool {
	flagMu.RLock()
	defer flagMu.RUnlock()
	return strictCompile
}

// Version reports the version of the underlying JavaScript engine, taken
// from the build's module info when available.
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, dep := range info.Deps {
			if dep.Path == enginePath {
				return dep.Version
			}
		}
	}
	return "(devel)"
}
