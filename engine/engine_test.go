package engine

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wippyai/js-runtime/errors"
)

func TestIsolate_Lifecycle(t *testing.T) {
	iso := NewIsolate()
	ctx := NewContext(iso, nil, 1)

	v, err := ctx.RunScript("6 * 7", "init.js")
	if err != nil {
		t.Fatal(err)
	}
	if v.Int32() != 42 {
		t.Fatalf("expected 42, got %d", v.Int32())
	}

	ctx.Free()
	ctx.Free() // idempotent
	iso.Dispose()
	iso.Dispose() // idempotent

	var nilIso *Isolate
	nilIso.Dispose() // nil-safe
}

func TestIsolate_DisposeFreesContexts(t *testing.T) {
	iso := NewIsolate()
	NewContext(iso, nil, 1)
	NewContext(iso, nil, 2)
	iso.Dispose()

	stats := iso.GetHeapStatistics()
	if stats.NumberOfNativeContexts != 0 {
		t.Fatalf("expected 0 native contexts after dispose, got %d", stats.NumberOfNativeContexts)
	}
}

func TestIsolate_HeapStatistics(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	stats := iso.GetHeapStatistics()
	if stats.UsedHeapSize == 0 || stats.TotalHeapSize == 0 {
		t.Fatalf("expected non-zero heap figures: %+v", stats)
	}
	// internal context + one caller context
	if stats.NumberOfNativeContexts != 2 {
		t.Fatalf("expected 2 native contexts, got %d", stats.NumberOfNativeContexts)
	}

	ctx2 := NewContext(iso, nil, 2)
	ctx2.Free()
	stats = iso.GetHeapStatistics()
	if stats.NumberOfDetachedContexts == 0 {
		t.Fatal("expected freed context to count as detached")
	}

	var nilIso *Isolate
	if got := nilIso.GetHeapStatistics(); got != (HeapStatistics{}) {
		t.Fatalf("nil isolate should report zero stats, got %+v", got)
	}
}

func TestIsolate_TerminateExecution(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	done := make(chan error, 1)
	go func() {
		_, err := ctx.RunScript("for(;;){}", "spin.js")
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	iso.TerminateExecution()
	if !iso.IsExecutionTerminating() {
		// The flag may already be consumed if the script unwound fast;
		// only the final error is authoritative.
		t.Log("termination already observed")
	}

	select {
	case err := <-done:
		if !errors.IsTerminated(err) {
			t.Fatalf("expected termination sentinel, got %v", err)
		}
		if err.Error() != errors.TerminatedMessage {
			t.Fatalf("unexpected message: %q", err.Error())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("script did not terminate")
	}

	if iso.IsExecutionTerminating() {
		t.Fatal("termination flag must clear once observed")
	}

	// The isolate stays usable after a termination.
	v, err := ctx.RunScript("'alive'", "after.js")
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "alive" {
		t.Fatalf("expected alive, got %q", v.String())
	}
}

func TestIsolate_TerminateBeforeRun(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	iso.TerminateExecution()
	_, err := ctx.RunScript("1", "pending.js")
	if !errors.IsTerminated(err) {
		t.Fatalf("pending termination should cancel the next script, got %v", err)
	}
	if _, err := ctx.RunScript("1", "clear.js"); err != nil {
		t.Fatalf("termination must not persist: %v", err)
	}
}

func TestSetFlags_StrictMode(t *testing.T) {
	SetFlags("--use_strict")
	defer SetFlags("--no-use_strict")

	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	// Assignment to an undeclared variable is a ReferenceError in
	// strict mode and silently creates a global otherwise.
	_, err := ctx.RunScript("strict_probe = 1", "strict.js")
	if err == nil {
		t.Fatal("expected ReferenceError under --use_strict")
	}
	if !strings.Contains(err.Error(), "ReferenceError") {
		t.Fatalf("unexpected error: %v", err)
	}

	SetFlags("--no-use_strict")
	if _, err := ctx.RunScript("sloppy_probe = 1", "sloppy.js"); err != nil {
		t.Fatalf("sloppy mode assignment failed: %v", err)
	}
}

func TestSetFlags_UnknownIgnored(t *testing.T) {
	SetFlags("--nonexistent-option --expose_gc")
	if strictMode() {
		t.Fatal("unknown flags must not enable strict mode")
	}
}

func TestVersion(t *testing.T) {
	if Version() == "" {
		t.Fatal("expected non-empty version")
	}
}

func TestInit_Idempotent(t *testing.T) {
	Init()
	Init()
}

func TestIsolate_SerializesGoroutines(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()
	ctx := NewContext(iso, nil, 1)
	defer ctx.Free()

	if _, err := ctx.RunScript("var count = 0", "init.js"); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if _, err := ctx.RunScript("count++", "inc.js"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	v, err := ctx.RunScript("count", "read.js")
	if err != nil {
		t.Fatal(err)
	}
	if v.Int32() != 400 {
		t.Fatalf("lost updates under concurrency: %d", v.Int32())
	}
}

func TestIsolate_TerminateRacesContextFree(t *testing.T) {
	iso := NewIsolate()
	defer iso.Dispose()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			iso.TerminateExecution()
		}
	}()
	for i := 0; i < 200; i++ {
		ctx := NewContext(iso, nil, 1)
		ctx.RunScript("1", "churn.js") // may observe a pending termination
		ctx.Free()
	}
	<-done

	ctx := NewContext(iso, nil, 2)
	defer ctx.Free()
	ctx.RunScript("0", "drain.js") // consumes any leftover termination
	v, err := ctx.RunScript("'ok'", "after.js")
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "ok" {
		t.Fatalf("isolate unusable after churn: %q", v.String())
	}
}

func TestExecLock_Reentrant(t *testing.T) {
	var l execLock
	l.Lock()
	l.Lock()
	l.Unlock()
	l.Unlock()

	acquired := make(chan struct{})
	go func() {
		l.Lock()
		defer l.Unlock()
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("lock not released after balanced unlocks")
	}
}
