package runtime

import (
	jsruntime "github.com/wippyai/js-runtime"
	"github.com/wippyai/js-runtime/engine"
)

// Context pairs an engine context with its registry ref. The ref is what
// script-side state carries; the engine resolves it back through the
// VM's context table at dispatch time.
type Context struct {
	vm  *VM
	ec  *engine.Context
	ref jsruntime.Ref
}

// Ref returns the context's boundary ref.
func (c *Context) Ref() jsruntime.Ref {
	return c.ref
}

// Engine exposes the underlying engine context for operations the
// wrapper does not cover (templates, promise resolvers).
func (c *Context) Engine() *engine.Context {
	return c.ec
}

// RunScript compiles and runs source against the context's global.
func (c *Context) RunScript(source, origin string) (*engine.Value, error) {
	return c.ec.RunScript(source, origin)
}

// Global returns the context's global object.
func (c *Context) Global() *engine.Value {
	return c.ec.Global()
}

// JSONParse parses a JSON document into a context value.
func (c *Context) JSONParse(text string) (*engine.Value, error) {
	return c.ec.JSONParse(text)
}

// JSONStringify serializes a value as JSON within this context.
func (c *Context) JSONStringify(v *engine.Value) (string, error) {
	return engine.JSONStringify(c.ec, v)
}

// Close retires the context's ref and frees the engine context together
// with every value created in it. Idempotent.
func (c *Context) Close() {
	c.vm.contexts.Remove(c.ref)
	c.ec.Free()
}
