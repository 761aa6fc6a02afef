package engine

import (
	"sync/atomic"

	"github.com/dop251/goja"
	"go.uber.org/zap"

	jsruntime "github.com/wippyai/js-runtime"
	"github.com/wippyai/js-runtime/errors"
)

// embedderSlots is the number of per-context data slots. Slot 0 is
// reserved for tooling; slot 1 holds the context's boundary ref.
const embedderSlots = 2

const refSlot = 1

// Context is an independent JavaScript execution environment with its own
// global object and its own value arena. All Values created through a
// Context stay alive until the Context is freed, then die together.
type Context struct {
	iso *Isolate
	// rt is guarded by the isolate lock; live mirrors it for the
	// lock-free read in TerminateExecution.
	rt       *goja.Runtime
	live     atomic.Pointer[goja.Runtime]
	hasFn    goja.Callable
	values   []*Value
	embedder [embedderSlots]jsruntime.Ref
	freed    bool
}

// NewContext creates a context inside iso. If global is non-nil, its
// entries are applied to the new context's global object; a template that
// fails to apply logs and yields a plain global rather than failing the
// context. ref is the boundary ref stored in the context's embedder slot
// and reported to the Dispatcher when script calls back into the host.
func NewContext(iso *Isolate, global *Template, ref jsruntime.Ref) *Context {
	exit := iso.enter(nil)
	defer exit()
	return newContextLocked(iso, global, ref)
}

func newContextLocked(iso *Isolate, global *Template, ref jsruntime.Ref) *Context {
	c := &Context{iso: iso, rt: goja.New()}
	c.live.Store(c.rt)
	c.embedder[refSlot] = ref
	iso.contexts[c] = struct{}{}
	if global != nil {
		if err := global.apply(c, c.rt.GlobalObject()); err != nil {
			Logger().Warn("global template application failed",
				zap.Int32("context_ref", int32(ref)), zap.Error(err))
		}
	}
	debugf("context created ref=%d", ref)
	return c
}

// Ref returns the boundary ref stored in the context's embedder slot.
func (c *Context) Ref() jsruntime.Ref {
	return c.embedder[refSlot]
}

// Isolate returns the isolate the context belongs to.
func (c *Context) Isolate() *Isolate {
	return c.iso
}

// track wraps a raw engine value and records it in the context's arena.
// Every Value handed across the boundary goes through here; nothing else
// creates Values.
func (c *Context) track(v goja.Value) *Value {
	val := &Value{ctx: c, v: v}
	c.values = append(c.values, val)
	return val
}

// Free tears down the context: the engine runtime is dropped first, then
// every arena Value is invalidated, then the context is detached from its
// isolate. Free is idempotent and nil-safe. Using the context or any of
// its Values afterwards is invalid.
func (c *Context) Free() {
	if c == nil {
		return
	}
	c.iso.lock.Lock()
	defer c.iso.lock.Unlock()
	c.freeLocked()
}

func (c *Context) freeLocked() {
	if c.freed {
		return
	}
	c.live.Store(nil)
	c.rt = nil
	c.hasFn = nil
	arena := len(c.values)
	for _, v := range c.values {
		v.v = nil
	}
	c.values = nil
	delete(c.iso.contexts, c)
	c.iso.detached++
	c.freed = true
	debugf("context freed ref=%d arena=%d", c.embedder[refSlot], arena)
}

// RunScript compiles and runs source in the context. origin names the
// script in error locations and stack traces. One catch scope spans both
// compilation and execution, so a syntax error and a thrown exception
// surface the same way: as a *errors.ScriptError.
func (c *Context) RunScript(source, origin string) (*Value, error) {
	exit := c.iso.enter(c)
	defer exit()

	if c.iso.terminating.Load() {
		c.iso.clearTermination()
		return nil, errors.Terminated()
	}

	var result goja.Value
	if serr := c.iso.tryCatch(origin, func() error {
		prg, err := goja.Compile(origin, source, strictMode())
		if err != nil {
			return err
		}
		v, err := c.rt.RunProgram(prg)
		if err != nil {
			return err
		}
		result = v
		return nil
	}); serr != nil {
		return nil, serr
	}
	return c.track(result), nil
}

// Global returns the context's global object as an arena Value.
func (c *Context) Global() *Value {
	exit := c.iso.enter(c)
	defer exit()
	return c.track(c.rt.GlobalObject())
}

// JSONParse parses a JSON document into a value belonging to this
// context. Malformed input surfaces as a script error, the same way a
// thrown SyntaxError would.
func (c *Context) JSONParse(text string) (*Value, error) {
	exit := c.iso.enter(c)
	defer exit()

	var result goja.Value
	if serr := c.iso.tryCatch("", func() error {
		parse, err := c.jsonFunc("parse")
		if err != nil {
			return err
		}
		v, err := parse(goja.Undefined(), c.rt.ToValue(text))
		if err != nil {
			return err
		}
		result = v
		return nil
	}); serr != nil {
		return nil, serr
	}
	return c.track(result), nil
}

// JSONStringify serializes v as JSON within ctx. A nil ctx falls back to
// the value's own context. Values JSON cannot represent (functions,
// undefined) stringify to "undefined".
func JSONStringify(ctx *Context, v *Value) (string, error) {
	if ctx == nil {
		ctx = v.context()
	}
	exit := ctx.iso.enter(ctx)
	defer exit()

	var result goja.Value
	if serr := ctx.iso.tryCatch("", func() error {
		stringify, err := ctx.jsonFunc("stringify")
		if err != nil {
			return err
		}
		r, err := stringify(goja.Undefined(), v.v)
		if err != nil {
			return err
		}
		result = r
		return nil
	}); serr != nil {
		return "", serr
	}
	return result.String(), nil
}

// reflectHas returns the cached Reflect.has callable, used for property
// presence checks that must not evaluate getters. Called with the lock
// held.
func (c *Context) reflectHas() goja.Callable {
	if c.hasFn != nil {
		return c.hasFn
	}
	if c.rt == nil {
		return nil
	}
	refl := c.rt.Get("Reflect")
	if refl == nil {
		return nil
	}
	if fn, ok := goja.AssertFunction(refl.ToObject(c.rt).Get("has")); ok {
		c.hasFn = fn
	}
	return c.hasFn
}

func (c *Context) jsonFunc(name string) (goja.Callable, error) {
	jsonObj := c.rt.Get("JSON")
	if jsonObj == nil {
		return nil, errors.NotFound(errors.PhaseJSON, "JSON global", 0)
	}
	fn, ok := goja.AssertFunction(jsonObj.ToObject(c.rt).Get(name))
	if !ok {
		return nil, errors.NotAFunction(errors.PhaseJSON)
	}
	return fn, nil
}
