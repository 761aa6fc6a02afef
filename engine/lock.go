package engine

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
)

// execLock serializes all engine access for one Isolate. It is reentrant:
// a goroutine that already holds the lock may acquire it again, which
// happens whenever a host callback dispatched from a running script calls
// back into the engine.
//
// depth is only touched by the owning goroutine, so it needs no atomics.
type execLock struct {
	mu    sync.Mutex
	owner atomic.Int64
	depth int
}

func (l *execLock) Lock() {
	id := goroutineID()
	if l.owner.Load() == id {
		l.depth++
		return
	}
	l.mu.Lock()
	l.owner.Store(id)
	l.depth = 1
}

func (l *execLock) Unlock() {
	l.depth--
	if l.depth == 0 {
		l.owner.Store(0)
		l.mu.Unlock()
	}
}

var goroutinePrefix = []byte("goroutine ")

// goroutineID extracts the current goroutine's id from the runtime stack
// header ("goroutine 18 [running]:"). The runtime offers no direct API;
// this parse is the established workaround and costs one small Stack call.
func goroutineID() int64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, goroutinePrefix)
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, err := strconv.ParseInt(string(buf), 10, 64)
	if err != nil {
		panic("engine: cannot parse goroutine id: " + err.Error())
	}
	return id
}
