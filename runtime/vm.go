package runtime

import (
	"go.uber.org/zap"

	jsruntime "github.com/wippyai/js-runtime"
	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
	"github.com/wippyai/js-runtime/resource"
)

// VM wraps one engine isolate together with the host-side capability
// tables the isolate dispatches through. A VM is safe for concurrent
// use; script execution within it is serialized by the isolate.
type VM struct {
	rt        *Runtime
	iso       *engine.Isolate
	contexts  *resource.Registry
	callbacks *resource.Registry
}

func newVM(rt *Runtime) *VM {
	vm := &VM{
		rt:        rt,
		iso:       engine.NewIsolate(),
		contexts:  resource.NewRegistry(),
		callbacks: resource.NewRegistry(),
	}
	vm.contexts.Subscribe(logObserver{table: "context"})
	vm.callbacks.Subscribe(logObserver{table: "callback"})
	vm.iso.SetBoundary(vm, vm)
	return vm
}

// Isolate exposes the underlying engine isolate for value construction
// and isolate-level operations (heap statistics, templates, symbols).
func (vm *VM) Isolate() *engine.Isolate {
	return vm.iso
}

// NewContext creates an execution context. global, when non-nil, seeds
// the context's global object. The context is registered before the
// engine context exists so its ref is available at construction.
func (vm *VM) NewContext(global *engine.Template) *Context {
	ref := vm.contexts.Reserve()
	if ref == 0 {
		return nil
	}
	ctx := &Context{vm: vm, ref: ref}
	ctx.ec = engine.NewContext(vm.iso, global, ref)
	vm.contexts.Put(ref, ctx)
	return ctx
}

// TerminateExecution cancels the script currently running in the VM.
// Safe to call from any goroutine.
func (vm *VM) TerminateExecution() {
	vm.iso.TerminateExecution()
}

// Close frees every context, drops all callbacks and disposes the
// isolate. Idempotent.
func (vm *VM) Close() {
	for _, entry := range vm.contexts.Snapshot() {
		if ctx, ok := entry.(*Context); ok {
			ctx.Close()
		}
	}
	vm.contexts.Close()
	vm.callbacks.Close()
	vm.iso.Dispose()
	vm.rt.forget(vm)
}

// ResolveContext implements engine.ContextResolver.
func (vm *VM) ResolveContext(ref jsruntime.Ref) *engine.Context {
	entry, ok := vm.contexts.Lookup(ref)
	if !ok {
		return nil
	}
	ctx, ok := entry.(*Context)
	if !ok {
		return nil
	}
	return ctx.ec
}

// DispatchCallback implements engine.Dispatcher: it resolves both refs
// through the capability tables and invokes the Go callback. args[0] is
// the script receiver; the rest are the call arguments. A returned error
// is thrown into the calling script.
func (vm *VM) DispatchCallback(ctxRef, cbRef jsruntime.Ref, args []*engine.Value) (*engine.Value, error) {
	entry, ok := vm.callbacks.Lookup(cbRef)
	if !ok {
		engine.Logger().Warn("dispatch to unknown callback",
			zap.Int32("callback_ref", int32(cbRef)))
		return nil, errors.NotFound(errors.PhaseCallback, "callback", int32(cbRef))
	}
	cb, ok := entry.(Callback)
	if !ok {
		return nil, errors.NotFound(errors.PhaseCallback, "callback", int32(cbRef))
	}

	info := Info{This: args[0], Args: args[1:]}
	if centry, ok := vm.contexts.Lookup(ctxRef); ok {
		info.Context, _ = centry.(*Context)
	}
	return cb(info)
}

// Register adds a Go callback to the VM's callback table and returns
// its ref for use in function templates and promise chains.
func (vm *VM) Register(cb Callback) jsruntime.Ref {
	return vm.callbacks.Register(cb)
}

// Release retires a callback ref. Templates still holding the ref keep
// working until invoked; invocation then throws into script.
func (vm *VM) Release(ref jsruntime.Ref) {
	vm.callbacks.Remove(ref)
}

// NewFunctionTemplate registers cb and builds a function template bound
// to it.
func (vm *VM) NewFunctionTemplate(cb Callback) *engine.Template {
	return engine.NewFunctionTemplate(vm.iso, vm.Register(cb))
}

// BindFunction registers cb, realizes it as a function in ctx and
// installs it on the context's global under name. Returns the function
// value.
func (vm *VM) BindFunction(ctx *Context, name string, cb Callback) (*engine.Value, error) {
	fn, err := vm.NewFunctionTemplate(cb).GetFunction(ctx.ec)
	if err != nil {
		return nil, err
	}
	ctx.ec.Global().ObjectSet(name, fn)
	return fn, nil
}

// Then attaches a fulfillment callback to a promise value.
func (vm *VM) Then(promise *engine.Value, cb Callback) (*engine.Value, error) {
	return promise.PromiseThen(vm.Register(cb))
}

// Catch attaches a rejection callback to a promise value.
func (vm *VM) Catch(promise *engine.Value, cb Callback) (*engine.Value, error) {
	return promise.PromiseCatch(vm.Register(cb))
}

// logObserver mirrors registry traffic into the debug log.
type logObserver struct {
	table string
}

func (o logObserver) OnRegistryEvent(e resource.Event) {
	if e.Type == resource.EventRegistered {
		engine.Logger().Debug("ref registered",
			zap.String("table", o.table), zap.Int32("ref", int32(e.Ref)))
	} else {
		engine.Logger().Debug("ref released",
			zap.String("table", o.table), zap.Int32("ref", int32(e.Ref)))
	}
}
