package engine

import (
	"github.com/dop251/goja"

	jsruntime "github.com/wippyai/js-runtime"
	"github.com/wippyai/js-runtime/errors"
)

// PromiseState mirrors the three states of a promise.
type PromiseState int

const (
	PromiseStatePending PromiseState = iota
	PromiseStateFulfilled
	PromiseStateRejected
)

// resolverProgram builds a promise with its settle functions captured,
// the executor-capture pattern predating Promise.withResolvers.
var resolverProgram = goja.MustCompile("", `(function() {
	var resolve, reject;
	var promise = new Promise(function(res, rej) { resolve = res; reject = rej; });
	return { promise: promise, resolve: resolve, reject: reject };
})()`, false)

// NewPromiseResolver creates a promise in ctx together with the
// functions that settle it, bundled in one object. Use
// PromiseResolverGetPromise, PromiseResolverResolve and
// PromiseResolverReject on the result.
func NewPromiseResolver(ctx *Context) (*Value, error) {
	exit := ctx.iso.enter(ctx)
	defer exit()

	var result goja.Value
	if serr := ctx.iso.tryCatch("", func() error {
		r, err := ctx.rt.RunProgram(resolverProgram)
		if err != nil {
			return err
		}
		result = r
		return nil
	}); serr != nil {
		return nil, serr
	}
	return ctx.track(result), nil
}

// PromiseResolverGetPromise returns the promise a resolver settles.
func (v *Value) PromiseResolverGetPromise() *Value {
	ctx := v.context()
	exit := v.iso().enter(ctx)
	defer exit()
	obj, ok := v.v.(*goja.Object)
	if !ok {
		return ctx.track(goja.Undefined())
	}
	p := obj.Get("promise")
	if p == nil {
		p = goja.Undefined()
	}
	return ctx.track(p)
}

func (v *Value) settle(which string, val *Value) bool {
	exit := v.iso().enter(v.context())
	defer exit()
	obj, ok := v.v.(*goja.Object)
	if !ok {
		return false
	}
	fn, ok := goja.AssertFunction(obj.Get(which))
	if !ok {
		return false
	}
	var arg goja.Value = goja.Undefined()
	if val != nil {
		arg = val.v
	}
	serr := v.iso().tryCatch("", func() error {
		_, err := fn(goja.Undefined(), arg)
		return err
	})
	return serr == nil
}

// PromiseResolverResolve fulfills the resolver's promise. Settling an
// already settled promise is a no-op that still reports true.
func (v *Value) PromiseResolverResolve(val *Value) bool {
	return v.settle("resolve", val)
}

// PromiseResolverReject rejects the resolver's promise.
func (v *Value) PromiseResolverReject(val *Value) bool {
	return v.settle("reject", val)
}

func (v *Value) promise() *goja.Promise {
	p, _ := v.v.Export().(*goja.Promise)
	return p
}

// PromiseState returns the promise's current state. Non-promise values
// report pending; guard with IsPromise where it matters.
func (v *Value) PromiseState() PromiseState {
	exit := v.iso().enter(v.ctx)
	defer exit()
	p := v.promise()
	if p == nil {
		return PromiseStatePending
	}
	switch p.State() {
	case goja.PromiseStateFulfilled:
		return PromiseStateFulfilled
	case goja.PromiseStateRejected:
		return PromiseStateRejected
	default:
		return PromiseStatePending
	}
}

// PromiseResult returns the settlement value. Pending promises yield
// undefined.
func (v *Value) PromiseResult() *Value {
	ctx := v.context()
	exit := v.iso().enter(ctx)
	defer exit()
	p := v.promise()
	if p == nil || p.State() == goja.PromiseStatePending {
		return ctx.track(goja.Undefined())
	}
	r := p.Result()
	if r == nil {
		r = goja.Undefined()
	}
	return ctx.track(r)
}

// chain invokes a reaction-installing method ("then"/"catch") on the
// promise with handlers built from host callback refs.
func (v *Value) chain(method string, refs ...jsruntime.Ref) (*Value, error) {
	ctx := v.context()
	exit := v.iso().enter(ctx)
	defer exit()

	obj, ok := v.v.(*goja.Object)
	if !ok {
		return nil, errors.New(errors.PhaseValue, errors.KindNotAnObject).
			Detail("promise expected").Build()
	}
	fn, ok := goja.AssertFunction(obj.Get(method))
	if !ok {
		return nil, errors.NotAFunction(errors.PhaseValue)
	}
	handlers := make([]goja.Value, len(refs))
	for i, ref := range refs {
		handlers[i] = ctx.rt.ToValue(ctx.iso.trampoline(ref))
	}

	var result goja.Value
	if serr := v.iso().tryCatch("", func() error {
		r, err := fn(v.v, handlers...)
		if err != nil {
			return err
		}
		result = r
		return nil
	}); serr != nil {
		return nil, serr
	}
	return ctx.track(result), nil
}

// PromiseThen chains a fulfillment handler dispatched to the given host
// callback ref and returns the derived promise.
func (v *Value) PromiseThen(onFulfilled jsruntime.Ref) (*Value, error) {
	return v.chain("then", onFulfilled)
}

// PromiseThen2 chains fulfillment and rejection handlers.
func (v *Value) PromiseThen2(onFulfilled, onRejected jsruntime.Ref) (*Value, error) {
	return v.chain("then", onFulfilled, onRejected)
}

// PromiseCatch chains a rejection handler.
func (v *Value) PromiseCatch(onRejected jsruntime.Ref) (*Value, error) {
	return v.chain("catch", onRejected)
}
