package runtime

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/wippyai/js-runtime/engine"
	"github.com/wippyai/js-runtime/errors"
)

func TestRuntime_Lifecycle(t *testing.T) {
	rt := New()
	vm := rt.NewVM()
	ctx := vm.NewContext(nil)

	v, err := ctx.RunScript("2 ** 10", "boot.js")
	if err != nil {
		t.Fatal(err)
	}
	if v.Int32() != 1024 {
		t.Fatalf("expected 1024, got %d", v.Int32())
	}

	rt.Close()
	rt.Close() // idempotent
	if rt.NewVM() != nil {
		t.Fatal("NewVM after Close must return nil")
	}
}

func TestVM_BindFunction(t *testing.T) {
	rt := New()
	defer rt.Close()
	vm := rt.NewVM()
	ctx := vm.NewContext(nil)

	var gotThis string
	var gotArgs int
	_, err := vm.BindFunction(ctx, "add", func(info Info) (*engine.Value, error) {
		gotArgs = len(info.Args)
		if tag, err := info.This.ObjectGet("tag"); err == nil {
			gotThis = tag.String()
		}
		return vm.Isolate().NewValueNumber(info.Arg(0).Number() + info.Arg(1).Number()), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	v, err := ctx.RunScript("add.call({tag: 'r'}, 1.5, 2.5)", "add.js")
	if err != nil {
		t.Fatal(err)
	}
	if v.Number() != 4 {
		t.Fatalf("expected 4, got %f", v.Number())
	}
	if gotArgs != 2 {
		t.Fatalf("receiver must not count as an argument: %d", gotArgs)
	}
	if gotThis != "r" {
		t.Fatalf("receiver not delivered: %q", gotThis)
	}
}

func TestVM_CallbackError(t *testing.T) {
	rt := New()
	defer rt.Close()
	vm := rt.NewVM()
	ctx := vm.NewContext(nil)

	if _, err := vm.BindFunction(ctx, "explode", func(Info) (*engine.Value, error) {
		return nil, stderrors.New("disk full")
	}); err != nil {
		t.Fatal(err)
	}

	v, err := ctx.RunScript("try { explode() } catch (e) { String(e) }", "x.js")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(v.String(), "disk full") {
		t.Fatalf("host error not visible to script: %q", v.String())
	}
}

func TestVM_DispatchRoutesByContext(t *testing.T) {
	rt := New()
	defer rt.Close()
	vm := rt.NewVM()
	a := vm.NewContext(nil)
	b := vm.NewContext(nil)

	seen := make(map[int32]bool)
	cb := func(info Info) (*engine.Value, error) {
		seen[int32(info.Context.Ref())] = true
		return nil, nil
	}
	if _, err := vm.BindFunction(a, "ping", cb); err != nil {
		t.Fatal(err)
	}
	if _, err := vm.BindFunction(b, "ping", cb); err != nil {
		t.Fatal(err)
	}

	if _, err := a.RunScript("ping()", "a.js"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.RunScript("ping()", "b.js"); err != nil {
		t.Fatal(err)
	}
	if !seen[int32(a.Ref())] || !seen[int32(b.Ref())] {
		t.Fatalf("dispatch did not see both contexts: %v", seen)
	}
}

func TestVM_ReentrantCallback(t *testing.T) {
	rt := New()
	defer rt.Close()
	vm := rt.NewVM()
	ctx := vm.NewContext(nil)

	if _, err := vm.BindFunction(ctx, "evalInner", func(info Info) (*engine.Value, error) {
		return info.Context.RunScript("21 * 2", "inner.js")
	}); err != nil {
		t.Fatal(err)
	}

	v, err := ctx.RunScript("evalInner()", "outer.js")
	if err != nil {
		t.Fatal(err)
	}
	if v.Int32() != 42 {
		t.Fatalf("reentrant dispatch failed: %d", v.Int32())
	}
}

func TestVM_ReleaseCallback(t *testing.T) {
	rt := New()
	defer rt.Close()
	vm := rt.NewVM()
	ctx := vm.NewContext(nil)

	ref := vm.Register(func(Info) (*engine.Value, error) { return nil, nil })
	fn, err := engine.NewFunctionTemplate(vm.Isolate(), ref).GetFunction(ctx.Engine())
	if err != nil {
		t.Fatal(err)
	}
	ctx.Global().ObjectSet("gone", fn)
	vm.Release(ref)

	v, err := ctx.RunScript("try { gone(); 'ran' } catch (e) { 'threw' }", "gone.js")
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "threw" {
		t.Fatal("released callback must throw when invoked")
	}
}

func TestVM_PromiseHelpers(t *testing.T) {
	rt := New()
	defer rt.Close()
	vm := rt.NewVM()
	ctx := vm.NewContext(nil)

	p, err := ctx.RunScript("Promise.resolve('ok')", "p.js")
	if err != nil {
		t.Fatal(err)
	}
	var got string
	if _, err := vm.Then(p, func(info Info) (*engine.Value, error) {
		got = info.Arg(0).String()
		return nil, nil
	}); err != nil {
		t.Fatal(err)
	}
	vm.Isolate().PerformMicrotaskCheckpoint()
	if got != "ok" {
		t.Fatalf("then callback not dispatched: %q", got)
	}

	rejected, err := ctx.RunScript("Promise.reject('nope')", "r.js")
	if err != nil {
		t.Fatal(err)
	}
	var caught string
	if _, err := vm.Catch(rejected, func(info Info) (*engine.Value, error) {
		caught = info.Arg(0).String()
		return nil, nil
	}); err != nil {
		t.Fatal(err)
	}
	vm.Isolate().PerformMicrotaskCheckpoint()
	if caught != "nope" {
		t.Fatalf("catch callback not dispatched: %q", caught)
	}
}

func TestContext_JSONRoundTrip(t *testing.T) {
	rt := New()
	defer rt.Close()
	vm := rt.NewVM()
	ctx := vm.NewContext(nil)

	v, err := ctx.JSONParse(`{"svc": "run", "retries": 3}`)
	if err != nil {
		t.Fatal(err)
	}
	out, err := ctx.JSONStringify(v)
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"svc":"run","retries":3}` {
		t.Fatalf("round trip mismatch: %s", out)
	}
}

func TestVM_Terminate(t *testing.T) {
	rt := New()
	defer rt.Close()
	vm := rt.NewVM()
	ctx := vm.NewContext(nil)

	done := make(chan error, 1)
	go func() {
		_, err := ctx.RunScript("while(true){}", "spin.js")
		done <- err
	}()
	time.Sleep(100 * time.Millisecond)
	vm.TerminateExecution()

	select {
	case err := <-done:
		if !errors.IsTerminated(err) {
			t.Fatalf("expected termination sentinel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("script did not terminate")
	}
}

func TestInfo_Arg(t *testing.T) {
	info := Info{}
	if info.Arg(0) != nil || info.Arg(-1) != nil {
		t.Fatal("out-of-range Arg must return nil")
	}
}

func TestVM_GlobalTemplate(t *testing.T) {
	rt := New()
	defer rt.Close()
	vm := rt.NewVM()

	tmpl := engine.NewObjectTemplate(vm.Isolate())
	var pinged bool
	tmpl.SetTemplate("ping", vm.NewFunctionTemplate(func(Info) (*engine.Value, error) {
		pinged = true
		return nil, nil
	}), engine.ReadOnly)

	ctx := vm.NewContext(tmpl)
	if _, err := ctx.RunScript("ping()", "t.js"); err != nil {
		t.Fatal(err)
	}
	if !pinged {
		t.Fatal("templated global function not dispatched")
	}
}
