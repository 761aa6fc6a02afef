// Package runtime is the high-level host API over the engine bridge.
//
// It owns the two capability tables the engine calls back through: a
// context registry (engine context refs to live contexts) and a callback
// registry (callback refs to Go functions). The engine itself only ever
// sees the integer refs.
//
// # Usage
//
//	rt := runtime.New()
//	defer rt.Close()
//
//	vm := rt.NewVM()
//	ctx := vm.NewContext(nil)
//
//	vm.BindFunction(ctx, "greet", func(info runtime.Info) (*engine.Value, error) {
//	    name := info.Args[0].String()
//	    return vm.Isolate().NewValueString("hello " + name)
//	})
//
//	v, err := ctx.RunScript("greet('mux')", "main.js")
//
// A VM wraps one engine isolate; contexts within a VM share the isolate's
// execution lock but have fully separate globals. Script errors come back
// as *errors.ScriptError, host-side failures as *errors.Error.
package runtime
