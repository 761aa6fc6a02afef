package runtime

import (
	"sync"

	"github.com/wippyai/js-runtime/engine"
)

// Runtime is the top-level entry point. It tracks the VMs it created so
// a single Close tears everything down.
type Runtime struct {
	mu     sync.Mutex
	vms    map[*VM]struct{}
	closed bool
}

// New creates a runtime. Engine-wide initialization happens lazily on
// the first VM.
func New() *Runtime {
	return &Runtime{vms: make(map[*VM]struct{})}
}

// NewVM creates a virtual machine backed by a fresh isolate. Returns nil
// after Close.
func (r *Runtime) NewVM() *VM {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	vm := newVM(r)
	r.vms[vm] = struct{}{}
	return vm
}

// Close shuts down every VM the runtime created. Idempotent.
func (r *Runtime) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	vms := make([]*VM, 0, len(r.vms))
	for vm := range r.vms {
		vms = append(vms, vm)
	}
	r.vms = nil
	r.mu.Unlock()

	for _, vm := range vms {
		vm.Close()
	}
	engine.Logger().Debug("runtime closed")
}

func (r *Runtime) forget(vm *VM) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.vms != nil {
		delete(r.vms, vm)
	}
}
