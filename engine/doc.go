// Package engine wraps a JavaScript engine behind an integer-and-handle
// boundary suitable for embedding.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────┐
//	│                        Isolate                          │
//	│  exclusive execution lock · termination flag · boundary │
//	│                                                         │
//	│  ┌──────────────┐  ┌──────────────┐  ┌──────────────┐   │
//	│  │   internal   │  │   Context    │  │   Context    │   │
//	│  │   Context    │  │  (ref 7)     │  │  (ref 12)    │   │
//	│  │  (bookkeeping│  │  runtime     │  │  runtime     │   │
//	│  │   values)    │  │  value arena │  │  value arena │   │
//	│  └──────────────┘  └──────────────┘  └──────────────┘   │
//	└─────────────────────────────────────────────────────────┘
//
// An Isolate owns one or more Contexts. Every Context has its own global
// object and its own value arena: a flat list of every Value created inside
// it. Values are never released one by one; freeing the Context invalidates
// them all at once.
//
// Each Isolate also carries a hidden internal Context used to host values
// created before any caller Context exists (well-known symbols, error
// constructors, BigInts built from raw words).
//
// # Locking
//
// All operations on an Isolate and its Contexts are serialized through a
// single reentrant lock. The lock is reentrant because dispatching a host
// callback from inside a running script re-enters the engine on the same
// goroutine. See lock.go.
//
// # The boundary
//
// The engine never holds a pointer to host logic. Host callbacks are
// referenced by integers: a function template bakes in a callback ref, and
// every Context stores its own ref in an embedder slot. When a templated
// function is invoked from script, a single trampoline reads the calling
// Context's ref from its embedder slot, pairs it with the template's
// callback ref, and hands both to the Dispatcher installed via
// Isolate.SetBoundary. See callback.go.
//
// # Errors
//
// Script failures surface as *errors.ScriptError carrying the message, a
// "resource:line:column" location, and a stack trace when available.
// Cooperative termination (Isolate.TerminateExecution) surfaces as the
// fixed sentinel errors.Terminated(). Host-side failures (bad UTF-8,
// calling a non-function) use the structured *errors.Error type.
package engine
