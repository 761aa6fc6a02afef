package engine

import (
	"github.com/dop251/goja"

	"github.com/wippyai/js-runtime/errors"
)

// Call invokes the value as a function with the given receiver. A nil
// recv calls with undefined. Non-callable values fail with a structured
// error; a throw inside the function surfaces as a script error.
func (v *Value) Call(recv *Value, args ...*Value) (*Value, error) {
	ctx := v.context()
	exit := v.iso().enter(ctx)
	defer exit()

	fn, ok := goja.AssertFunction(v.v)
	if !ok {
		return nil, errors.NotAFunction(errors.PhaseValue)
	}
	var this goja.Value = goja.Undefined()
	if recv != nil {
		this = recv.v
	}
	gargs := make([]goja.Value, len(args))
	for i, a := range args {
		gargs[i] = a.v
	}

	var result goja.Value
	if serr := v.iso().tryCatch("", func() error {
		r, err := fn(this, gargs...)
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

// NewInstance invokes the value as a constructor.
func (v *Value) NewInstance(args ...*Value) (*Value, error) {
	ctx := v.context()
	exit := v.iso().enter(ctx)
	defer exit()

	if _, ok := goja.AssertFunction(v.v); !ok {
		return nil, errors.NotAFunction(errors.PhaseValue)
	}
	gargs := make([]goja.Value, len(args))
	for i, a := range args {
		gargs[i] = a.v
	}

	var result goja.Value
	if serr := v.iso().tryCatch("", func() error {
		obj, err := ctx.rt.New(v.v, gargs...)
		if err != nil {
			return err
		}
		result = obj
		return nil
	}); serr != nil {
		return nil, serr
	}
	return ctx.track(result), nil
}

// SourceMapURL returns the //# sourceMappingURL binding of the script
// the function came from. The engine does not retain per-function source
// map bindings, so this is always undefined.
func (v *Value) SourceMapURL() *Value {
	ctx := v.context()
	exit := v.iso().enter(ctx)
	defer exit()
	return ctx.track(goja.Undefined())
}
