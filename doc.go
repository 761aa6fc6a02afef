// Package jsruntime provides an embedded JavaScript engine bridge for Go hosts.
//
// The library lets a host process create isolated virtual machines, compile
// and run scripts, construct and inspect JS values, register host functions
// callable from script, and receive script exceptions as structured errors.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	jsruntime/       Root package with the boundary Ref type
//	├── runtime/     High-level API: VM, context/callback registries, Go bindings
//	├── engine/      Core bridge: Isolate, Context, Value, Template, dispatch
//	├── resource/    Integer handle registries (capability tables)
//	├── errors/      Structured error types for the boundary
//	└── cmd/run      CLI script runner and REPL
//
// # Quick Start
//
// Run a script and read the result:
//
//	rt := runtime.New()
//	vm := rt.NewVM()
//	defer vm.Close()
//
//	ctx := vm.NewContext(nil)
//	defer ctx.Close()
//
//	val, err := ctx.RunScript("1+1", "main.js")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(val.Int32()) // 2
//
// # Host Functions
//
// Go functions are exposed to script through integer callback references;
// no Go pointer ever crosses into engine state:
//
//	fn, _ := vm.BindFunction(ctx, "add", func(info runtime.Info) (*engine.Value, error) {
//	    sum := info.Args[0].Number() + info.Args[1].Number()
//	    return vm.Isolate().NewValueNumber(sum), nil
//	})
//
// # Value Lifetime
//
// Every value produced inside a context is registered with that context and
// released in bulk when the context is freed. Values are never freed
// individually; after Context.Free all values obtained from it are invalid.
//
// # Thread Safety
//
// Each isolate serializes all engine access behind its execution lock.
// Concurrent calls into the same isolate block; distinct isolates are fully
// independent. Long-running scripts are cancelled cooperatively with
// TerminateExecution, which may be called from any goroutine.
package jsruntime
