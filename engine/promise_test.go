package engine

import (
	"testing"

	jsruntime "github.com/wippyai/js-runtime"
)

func TestPromise_Resolver(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	res, err := NewPromiseResolver(ctx)
	if err != nil {
		t.Fatal(err)
	}
	p := res.PromiseResolverGetPromise()
	if !p.IsPromise() {
		t.Fatal("resolver did not yield a promise")
	}
	if p.PromiseState() != PromiseStatePending {
		t.Fatal("fresh promise must be pending")
	}
	if !p.PromiseResult().IsUndefined() {
		t.Fatal("pending promise has no result")
	}

	if !res.PromiseResolverResolve(iso.NewValueInteger(42)) {
		t.Fatal("resolve failed")
	}
	iso.PerformMicrotaskCheckpoint()

	if p.PromiseState() != PromiseStateFulfilled {
		t.Fatalf("expected fulfilled, got %d", p.PromiseState())
	}
	if p.PromiseResult().Int32() != 42 {
		t.Fatalf("wrong result: %d", p.PromiseResult().Int32())
	}
}

func TestPromise_ResolverReject(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	res, err := NewPromiseResolver(ctx)
	if err != nil {
		t.Fatal(err)
	}
	p := res.PromiseResolverGetPromise()
	// A rejection handler keeps the runtime quiet about the rejection.
	if _, err := p.PromiseCatch(0); err != nil {
		t.Fatal(err)
	}

	reason := iso.NewValueError(ErrorType, "denied")
	if !res.PromiseResolverReject(reason) {
		t.Fatal("reject failed")
	}
	iso.PerformMicrotaskCheckpoint()

	if p.PromiseState() != PromiseStateRejected {
		t.Fatalf("expected rejected, got %d", p.PromiseState())
	}
}

func TestPromise_Then(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	var got int32
	boundary := &testBoundary{
		contexts: map[jsruntime.Ref]*Context{1: ctx},
		dispatch: func(_, cbRef jsruntime.Ref, args []*Value) (*Value, error) {
			if cbRef == 11 && len(args) >= 2 {
				got = args[1].Int32()
			}
			return nil, nil
		},
	}
	iso.SetBoundary(boundary, boundary)

	p, err := ctx.RunScript("Promise.resolve(5)", "p.js")
	if err != nil {
		t.Fatal(err)
	}
	derived, err := p.PromiseThen(11)
	if err != nil {
		t.Fatal(err)
	}
	if !derived.IsPromise() {
		t.Fatal("then must return a promise")
	}
	iso.PerformMicrotaskCheckpoint()

	if got != 5 {
		t.Fatalf("fulfillment handler not dispatched: %d", got)
	}
	if derived.PromiseState() != PromiseStateFulfilled {
		t.Fatal("derived promise not settled after checkpoint")
	}
}

func TestPromise_Then2RejectionPath(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	var fulfilled, rejected bool
	boundary := &testBoundary{
		contexts: map[jsruntime.Ref]*Context{1: ctx},
		dispatch: func(_, cbRef jsruntime.Ref, _ []*Value) (*Value, error) {
			switch cbRef {
			case 21:
				fulfilled = true
			case 22:
				rejected = true
			}
			return nil, nil
		},
	}
	iso.SetBoundary(boundary, boundary)

	p, err := ctx.RunScript("Promise.reject(new Error('no'))", "r.js")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.PromiseThen2(21, 22); err != nil {
		t.Fatal(err)
	}
	iso.PerformMicrotaskCheckpoint()

	if fulfilled || !rejected {
		t.Fatalf("wrong handler dispatched: fulfilled=%v rejected=%v", fulfilled, rejected)
	}
}

func TestPromise_Catch(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	var caught string
	boundary := &testBoundary{
		contexts: map[jsruntime.Ref]*Context{1: ctx},
		dispatch: func(_, _ jsruntime.Ref, args []*Value) (*Value, error) {
			if len(args) >= 2 {
				caught = args[1].String()
			}
			return nil, nil
		},
	}
	iso.SetBoundary(boundary, boundary)

	p, err := ctx.RunScript("Promise.reject('bad wire')", "c.js")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.PromiseCatch(31); err != nil {
		t.Fatal(err)
	}
	iso.PerformMicrotaskCheckpoint()

	if caught != "bad wire" {
		t.Fatalf("rejection handler not dispatched: %q", caught)
	}
}

func TestPromise_MicrotaskCheckpoint(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	// Chained reactions settle only after the queue drains.
	if _, err := ctx.RunScript(
		"var settled = false; Promise.resolve().then(function() { settled = true })",
		"m.js"); err != nil {
		t.Fatal(err)
	}
	iso.PerformMicrotaskCheckpoint()

	v, err := ctx.RunScript("settled", "m2.js")
	if err != nil {
		t.Fatal(err)
	}
	if !v.Boolean() {
		t.Fatal("microtask checkpoint did not drain reactions")
	}
}

func TestPromise_NonPromiseProbes(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	v, err := ctx.RunScript("({})", "np.js")
	if err != nil {
		t.Fatal(err)
	}
	if v.IsPromise() {
		t.Fatal("plain object misreported as promise")
	}
	if v.PromiseState() != PromiseStatePending {
		t.Fatal("non-promise state probe should report pending")
	}
	if _, err := v.PromiseThen(1); err == nil {
		t.Fatal("then on a non-promise must fail")
	}
}
