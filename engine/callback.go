package engine

import (
	"github.com/dop251/goja"
	"go.uber.org/zap"

	jsruntime "github.com/wippyai/js-runtime"
)

// ContextResolver resolves a context ref back to the live Context it was
// issued for. A stale or unknown ref resolves to nil.
type ContextResolver interface {
	ResolveContext(ref jsruntime.Ref) *Context
}

// Dispatcher routes a templated function invocation to host logic.
// args always begins with the receiver; the script-visible arguments
// follow. A non-nil result becomes the function's return value (nil
// returns undefined); a non-nil error is thrown into the script as an
// exception.
type Dispatcher interface {
	DispatchCallback(ctxRef, callbackRef jsruntime.Ref, args []*Value) (*Value, error)
}

// trampoline builds the native function behind every realized function
// template. The engine side carries no host pointers: at call time the
// calling context's ref is read from its embedder slot, paired with the
// template's baked-in callback ref, and both integers cross the boundary
// together with the arena-wrapped arguments.
func (iso *Isolate) trampoline(callbackRef jsruntime.Ref) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		// Reentrant: the goroutine running the script already holds the
		// lock, so this acquire only bumps the depth.
		cur := iso.current.Load()
		exit := iso.enter(cur)
		defer exit()

		if cur == nil || iso.resolver == nil || iso.dispatcher == nil {
			Logger().Warn("callback invoked with no boundary installed",
				zap.Int32("callback_ref", int32(callbackRef)))
			return goja.Undefined()
		}
		ctxRef := cur.embedder[refSlot]
		ctx := iso.resolver.ResolveContext(ctxRef)
		if ctx == nil {
			Logger().Warn("callback from unresolvable context",
				zap.Int32("context_ref", int32(ctxRef)))
			return goja.Undefined()
		}

		this := call.This
		if this == nil {
			this = goja.Undefined()
		}
		args := make([]*Value, 0, len(call.Arguments)+1)
		args = append(args, ctx.track(this))
		for _, a := range call.Arguments {
			args = append(args, ctx.track(a))
		}

		result, err := iso.dispatcher.DispatchCallback(ctxRef, callbackRef, args)
		if err != nil {
			panic(ctx.rt.NewGoError(err))
		}
		if result == nil {
			return goja.Undefined()
		}
		return result.v
	}
}
