// Package resource provides integer-reference registries for boundary
// objects.
//
// The engine must call back into host logic without holding a host pointer:
// only an integer crosses into engine state (a template's baked callback
// reference, a context's embedder-slot reference). This package implements
// the host side of that capability-table pattern: a Registry maps opaque
// integer refs to live Go values and resolves them at call time.
//
// # Registry
//
//	reg := resource.NewRegistry()
//
//	// Store a value, get a ref
//	ref := reg.Register(myCallback)
//
//	// Resolve at dispatch time
//	value, ok := reg.Lookup(ref)
//
//	// Release when the owner goes away
//	reg.Remove(ref)
//
// Refs are assigned monotonically and never reused: a stale ref held by
// engine state after its owner is released must resolve to nothing, never
// to an unrelated newer object. Ref 0 is reserved and always invalid.
//
// # Two-phase registration
//
// A context's ref must exist before the context itself (the ref is baked
// into the context's embedder slot at construction). Use Reserve/Put:
//
//	ref := reg.Reserve()
//	ctx := engine.NewContext(iso, tmpl, ref)
//	reg.Put(ref, ctx)
//
// # Observers
//
// Register observers to track registry events, e.g. for logging:
//
//	reg.Subscribe(obs) // obs.OnRegistryEvent(e) on register/release
package resource
