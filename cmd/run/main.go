// run is a command-line tool to run JavaScript.
//
// It evaluates -e expressions and script files in order, then drops into
// a REPL when -i is set (or when given nothing to run). Scripts get a
// minimal console.log/console.error wired to stdout/stderr.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/runtime"
)

func main() {
	var (
		expr        = flag.String("e", "", "Evaluate the expression and print the result")
		timeout     = flag.Duration("timeout", 0, "Terminate scripts running longer than this (e.g. 5s)")
		interactive = flag.Bool("i", false, "Enter the REPL after running files")
		engineFlags = flag.String("flags", "", "Engine flags (e.g. --use_strict)")
		asJSON      = flag.Bool("json", false, "Print results as JSON")
		verbose     = flag.Bool("v", false, "Verbose engine logging")
	)
	flag.Parse()

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		engine.SetLogger(logger)
	}
	if *engineFlags != "" {
		engine.SetFlags(*engineFlags)
	}

	if err := run(*expr, flag.Args(), *interactive, *timeout, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func run(expr string, files []string, interactive bool, timeout time.Duration, asJSON bool) error {
	rt := runtime.New()
	defer rt.Close()
	vm := rt.NewVM()
	ctx := vm.NewContext(nil)

	if err := installConsole(vm, ctx); err != nil {
		return err
	}

	eval := func(src, origin string) (*engine.Value, error) {
		if timeout > 0 {
			watchdog := time.AfterFunc(timeout, vm.TerminateExecution)
			defer watchdog.Stop()
		}
		v, err := ctx.RunScript(src, origin)
		if err != nil {
			return nil, err
		}
		vm.Isolate().PerformMicrotaskCheckpoint()
		return v, nil
	}

	if expr != "" {
		v, err := eval(expr, "<eval>")
		if err != nil {
			return err
		}
		out, err := render(ctx, v, asJSON)
		if err != nil {
			return err
		}
		fmt.Println(out)
	}

	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := eval(string(data), name); err != nil {
			return err
		}
	}

	if interactive || (expr == "" && len(files) == 0) {
		return repl(ctx, eval, asJSON)
	}
	return nil
}

func render(ctx *runtime.Context, v *engine.Value, asJSON bool) (string, error) {
	if asJSON {
		return ctx.JSONStringify(v)
	}
	return v.DetailString()
}

func installConsole(vm *runtime.VM, ctx *runtime.Context) error {
	console := engine.NewObjectTemplate(vm.Isolate())
	console.SetTemplate("log", vm.NewFunctionTemplate(printTo(os.Stdout)), engine.DontEnum)
	console.SetTemplate("info", vm.NewFunctionTemplate(printTo(os.Stdout)), engine.DontEnum)
	console.SetTemplate("error", vm.NewFunctionTemplate(printTo(os.Stderr)), engine.DontEnum)
	console.SetTemplate("warn", vm.NewFunctionTemplate(printTo(os.Stderr)), engine.DontEnum)

	obj, err := console.NewInstance(ctx.Engine())
	if err != nil {
		return err
	}
	ctx.Global().ObjectSet("console", obj)
	return nil
}

func printTo(w io.Writer) runtime.Callback {
	return func(info runtime.Info) (*engine.Value, error) {
		parts := make([]string, len(info.Args))
		for i, a := range info.Args {
			s, err := a.DetailString()
			if err != nil {
				s = "<unprintable>"
			}
			parts[i] = s
		}
		fmt.Fprintln(w, strings.Join(parts, " "))
		return nil, nil
	}
}
