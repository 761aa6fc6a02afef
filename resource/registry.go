package resource

import (
	"math"
	"sync"
)

// Registry maps opaque integer refs to live Go values. Safe for concurrent
// use. Refs are monotonic and never reused.
type Registry struct {
	entries   map[Ref]any
	observers []Observer
	nextRef   Ref
	mu        sync.RWMutex
	closed    bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[Ref]any),
	}
}

func (r *Registry) next() Ref {
	// 0 is reserved as invalid
	if r.nextRef >= math.MaxInt32 {
		panic("resource: registry ref overflow")
	}
	r.nextRef++
	return r.nextRef
}

// Register stores a value and returns its ref, or 0 if the registry is
// closed.
func (r *Registry) Register(value any) Ref {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0
	}
	ref := r.next()
	r.entries[ref] = value
	r.mu.Unlock()

	r.notify(Event{Type: EventRegistered, Ref: ref, Value: value})
	return ref
}

// Reserve allocates a ref with no value yet. The caller is expected to
// Put the value once it exists; Lookup on a reserved ref reports false.
func (r *Registry) Reserve() Ref {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0
	}
	ref := r.next()
	r.entries[ref] = nil
	return ref
}

// Put fills in a reserved ref. Returns false if the ref was never issued.
func (r *Registry) Put(ref Ref, value any) bool {
	r.mu.Lock()
	_, ok := r.entries[ref]
	if ok {
		r.entries[ref] = value
	}
	r.mu.Unlock()

	if ok {
		r.notify(Event{Type: EventRegistered, Ref: ref, Value: value})
	}
	return ok
}

// Lookup resolves a ref to its value.
func (r *Registry) Lookup(ref Ref) (any, bool) {
	if ref == 0 {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[ref]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Remove releases a ref and returns (value, true) if it was present.
// The ref is retired permanently.
func (r *Registry) Remove(ref Ref) (any, bool) {
	if ref == 0 {
		return nil, false
	}
	r.mu.Lock()
	v, ok := r.entries[ref]
	if ok {
		delete(r.entries, ref)
	}
	r.mu.Unlock()

	if !ok || v == nil {
		return nil, false
	}
	r.notify(Event{Type: EventReleased, Ref: ref, Value: v})
	return v, true
}

// Snapshot returns the live values at the time of the call. Reserved
// refs with no value yet are skipped.
func (r *Registry) Snapshot() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]any, 0, len(r.entries))
	for _, v := range r.entries {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of live entries, reserved refs included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear releases all entries. Refs remain retired.
func (r *Registry) Clear() {
	r.mu.Lock()
	var refs []Ref
	for ref := range r.entries {
		refs = append(refs, ref)
	}
	r.mu.Unlock()
	for _, ref := range refs {
		r.Remove(ref)
	}
}

// Close releases all entries and stops accepting registrations.
func (r *Registry) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.Clear()
	return nil
}

// Subscribe adds an observer for registry events.
func (r *Registry) Subscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Registry) notify(e Event) {
	r.mu.RLock()
	obs := make([]Observer, len(r.observers))
	copy(obs, r.observers)
	r.mu.RUnlock()
	for _, o := range obs {
		o.OnRegistryEvent(e)
	}
}
