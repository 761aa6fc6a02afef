package runtime

import (
	"github.com/wippyai/js-runtime/engine"
)

// Info carries one script-to-host invocation. This is the receiver the
// function was called on; Args are the script-visible arguments. All
// values belong to the calling context's arena.
type Info struct {
	Context *Context
	This    *engine.Value
	Args    []*engine.Value
}

// Arg returns the i-th argument, or nil when the call had fewer.
func (i Info) Arg(n int) *engine.Value {
	if n < 0 || n >= len(i.Args) {
		return nil
	}
	return i.Args[n]
}

// Callback is a Go function exposed to script. A non-nil result becomes
// the return value (nil returns undefined); a non-nil error is thrown
// into the calling script as an exception.
type Callback func(Info) (*engine.Value, error)
