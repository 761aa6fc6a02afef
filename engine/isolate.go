package engine

import (
	"runtime"
	"sync/atomic"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Isolate is a single-threaded JavaScript engine instance. It owns every
// Context created inside it and serializes all engine access through one
// reentrant lock.
//
// An Isolate is safe to share between goroutines; operations block until
// the current holder finishes. TerminateExecution is the one exception:
// it may be called at any time, without the lock, to cancel a running
// script cooperatively.
type Isolate struct {
	lock     execLock
	internal *Context
	contexts map[*Context]struct{}
	current  atomic.Pointer[Context]

	resolver   ContextResolver
	dispatcher Dispatcher

	terminating atomic.Bool
	detached    int
	disposed    bool
}

// NewIsolate creates an isolate together with its internal bookkeeping
// context. The internal context hosts values that exist before any caller
// context does: well-known symbols, error objects, BigInts built from raw
// words.
func NewIsolate() *Isolate {
	Init()
	iso := &Isolate{contexts: make(map[*Context]struct{})}
	iso.lock.Lock()
	defer iso.lock.Unlock()
	iso.internal = newContextLocked(iso, nil, 0)
	debugf("isolate created")
	return iso
}

// enter acquires the execution lock and makes ctx the isolate's current
// context for the duration. A nil ctx selects the internal context. The
// returned function restores the previous current context and releases
// the lock; callers defer it immediately.
func (iso *Isolate) enter(ctx *Context) func() {
	iso.lock.Lock()
	if ctx == nil {
		ctx = iso.internal
	}
	prev := iso.current.Swap(ctx)
	return func() {
		iso.current.Store(prev)
		iso.lock.Unlock()
	}
}

// SetBoundary installs the host-side resolver and dispatcher used by
// templated function calls. Both must be set before any templated
// function can reach host logic; until then invocations return undefined.
func (iso *Isolate) SetBoundary(r ContextResolver, d Dispatcher) {
	iso.lock.Lock()
	defer iso.lock.Unlock()
	iso.resolver = r
	iso.dispatcher = d
}

// Dispose tears down the isolate and its internal context. Contexts the
// caller created must be freed first; using the isolate or any of its
// values after Dispose is invalid. Dispose is idempotent and nil-safe.
func (iso *Isolate) Dispose() {
	if iso == nil {
		return
	}
	iso.lock.Lock()
	defer iso.lock.Unlock()
	if iso.disposed {
		return
	}
	for ctx := range iso.contexts {
		ctx.freeLocked()
	}
	iso.internal = nil
	iso.resolver = nil
	iso.dispatcher = nil
	iso.disposed = true
	debugf("isolate disposed")
}

// TerminateExecution requests cooperative cancellation of the script
// currently running in this isolate. It does not take the execution lock:
// it is meant to be called from a watchdog goroutine while another
// goroutine is stuck in RunScript. The interrupted script unwinds with
// the errors.Terminated() sentinel.
func (iso *Isolate) TerminateExecution() {
	iso.terminating.Store(true)
	if cur := iso.current.Load(); cur != nil {
		// cur.rt is guarded by the lock we do not hold; the atomic
		// mirror stays readable while the context is being freed.
		if rt := cur.live.Load(); rt != nil {
			rt.Interrupt(nil)
		}
	}
	Logger().Debug("execution termination requested")
}

// IsExecutionTerminating reports whether a termination request is still
// pending, i.e. has not yet been observed by an unwinding script.
func (iso *Isolate) IsExecutionTerminating() bool {
	return iso.terminating.Load()
}

// clearTermination resets the pending-termination state once a script has
// observed it. Called with the lock held.
func (iso *Isolate) clearTermination() {
	if cur := iso.current.Load(); cur != nil {
		if rt := cur.rt; rt != nil {
			rt.ClearInterrupt()
		}
	}
	iso.terminating.Store(false)
}

var checkpointProgram = goja.MustCompile("", "void 0", false)

// PerformMicrotaskCheckpoint drains the pending microtask queue (promise
// reactions) of every live context in the isolate.
func (iso *Isolate) PerformMicrotaskCheckpoint() {
	exit := iso.enter(nil)
	defer exit()
	for ctx := range iso.contexts {
		if ctx.rt == nil {
			continue
		}
		// Entering and leaving the interpreter flushes the job queue.
		if serr := iso.tryCatch("", func() error {
			_, err := ctx.rt.RunProgram(checkpointProgram)
			return err
		}); serr != nil {
			Logger().Debug("microtask checkpoint raised", zap.Error(serr))
		}
	}
}

// HeapStatistics is a point-in-time snapshot of the isolate's memory
// usage, plus native and detached context counts.
type HeapStatistics struct {
	TotalHeapSize            uint64
	TotalHeapSizeExecutable  uint64
	TotalPhysicalSize        uint64
	TotalAvailableSize       uint64
	UsedHeapSize             uint64
	HeapSizeLimit            uint64
	MallocedMemory           uint64
	ExternalMemory           uint64
	PeakMallocedMemory       uint64
	NumberOfNativeContexts   uint64
	NumberOfDetachedContexts uint64
}

// GetHeapStatistics returns a memory snapshot for the isolate. The engine
// shares the Go heap, so the byte figures come from the Go runtime and
// cover the whole process. A nil isolate yields the zero snapshot.
func (iso *Isolate) GetHeapStatistics() HeapStatistics {
	if iso == nil {
		return HeapStatistics{}
	}
	iso.lock.Lock()
	defer iso.lock.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return HeapStatistics{
		TotalHeapSize:            ms.HeapSys,
		TotalHeapSizeExecutable:  0,
		TotalPhysicalSize:        ms.Sys,
		TotalAvailableSize:       ms.HeapIdle,
		UsedHeapSize:             ms.HeapAlloc,
		HeapSizeLimit:            ms.NextGC,
		MallocedMemory:           ms.HeapInuse,
		ExternalMemory:           ms.StackSys,
		PeakMallocedMemory:       ms.TotalAlloc,
		NumberOfNativeContexts:   uint64(len(iso.contexts)),
		NumberOfDetachedContexts: uint64(iso.detached),
	}
}
