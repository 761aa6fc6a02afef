package engine

import (
	"github.com/dop251/goja"

	jsruntime "github.com/wippyai/js-runtime"
	"github.com/wippyai/js-runtime/errors"
)

// PropertyAttribute controls how a template entry is defined on the
// realized object.
type PropertyAttribute uint8

const (
	// None defines a writable, enumerable, configurable property.
	None PropertyAttribute = 0
	// ReadOnly strips the writable flag.
	ReadOnly PropertyAttribute = 1 << (iota - 1)
	// DontEnum strips the enumerable flag.
	DontEnum
	// DontDelete strips the configurable flag.
	DontDelete
)

type templateKind uint8

const (
	objectTemplate templateKind = iota
	functionTemplate
)

// Template is a recipe for objects. It records named entries (values or
// nested templates) and stamps them onto every object it realizes. A
// function template additionally bakes in a callback ref: every function
// it realizes routes invocations to that host callback.
//
// Templates belong to an isolate, not a context: one template can
// realize instances in many contexts, including as a context's global.
type Template struct {
	iso         *Isolate
	kind        templateKind
	callbackRef jsruntime.Ref
	entries     []templateEntry
	freed       bool
}

type templateEntry struct {
	name  string
	sym   *goja.Symbol
	val   *Value
	tmpl  *Template
	attrs PropertyAttribute
}

// NewObjectTemplate creates an empty object template.
func NewObjectTemplate(iso *Isolate) *Template {
	return &Template{iso: iso, kind: objectTemplate}
}

// NewFunctionTemplate creates a function template bound to a host
// callback ref. The ref is resolved through the isolate's Dispatcher
// only at invocation time.
func NewFunctionTemplate(iso *Isolate, callbackRef jsruntime.Ref) *Template {
	return &Template{iso: iso, kind: functionTemplate, callbackRef: callbackRef}
}

// SetValue records a named data entry.
func (t *Template) SetValue(name string, val *Value, attrs PropertyAttribute) {
	t.iso.lock.Lock()
	defer t.iso.lock.Unlock()
	t.entries = append(t.entries, templateEntry{name: name, val: val, attrs: attrs})
}

// SetTemplate records a named nested template entry; it is realized
// afresh for every instance.
func (t *Template) SetTemplate(name string, tmpl *Template, attrs PropertyAttribute) {
	t.iso.lock.Lock()
	defer t.iso.lock.Unlock()
	t.entries = append(t.entries, templateEntry{name: name, tmpl: tmpl, attrs: attrs})
}

// SetAnyValue records a data entry keyed by a name-like value (string or
// symbol). Reports false, recording nothing, for other key types.
func (t *Template) SetAnyValue(key, val *Value, attrs PropertyAttribute) bool {
	t.iso.lock.Lock()
	defer t.iso.lock.Unlock()
	name, sym, ok := nameLike(key)
	if !ok {
		return false
	}
	t.entries = append(t.entries, templateEntry{name: name, sym: sym, val: val, attrs: attrs})
	return true
}

// SetAnyTemplate records a nested template entry keyed by a name-like
// value. Reports false, recording nothing, for other key types.
func (t *Template) SetAnyTemplate(key *Value, tmpl *Template, attrs PropertyAttribute) bool {
	t.iso.lock.Lock()
	defer t.iso.lock.Unlock()
	name, sym, ok := nameLike(key)
	if !ok {
		return false
	}
	t.entries = append(t.entries, templateEntry{name: name, sym: sym, tmpl: tmpl, attrs: attrs})
	return true
}

func nameLike(key *Value) (string, *goja.Symbol, bool) {
	if sym, ok := key.v.(*goja.Symbol); ok {
		return "", sym, true
	}
	if _, isObj := key.v.(*goja.Object); isObj {
		return "", nil, false
	}
	if et := key.v.ExportType(); et == nil || et != typeString {
		return "", nil, false
	}
	return key.v.String(), nil, true
}

// Free releases the template's entries. Realized instances are
// unaffected. Free is idempotent; realizing a freed template fails.
func (t *Template) Free() {
	if t == nil {
		return
	}
	t.iso.lock.Lock()
	defer t.iso.lock.Unlock()
	t.entries = nil
	t.freed = true
}

// NewInstance realizes an object template as a fresh object in ctx.
func (t *Template) NewInstance(ctx *Context) (*Value, error) {
	if t.kind != objectTemplate {
		return nil, errors.InvalidInput(errors.PhaseTemplate, "not an object template")
	}
	exit := t.iso.enter(ctx)
	defer exit()
	if t.freed {
		return nil, errors.Disposed(errors.PhaseTemplate, "template")
	}
	obj := ctx.rt.NewObject()
	if err := t.apply(ctx, obj); err != nil {
		return nil, err
	}
	return ctx.track(obj), nil
}

// GetFunction realizes a function template as a callable in ctx.
func (t *Template) GetFunction(ctx *Context) (*Value, error) {
	if t.kind != functionTemplate {
		return nil, errors.InvalidInput(errors.PhaseTemplate, "not a function template")
	}
	exit := t.iso.enter(ctx)
	defer exit()
	if t.freed {
		return nil, errors.Disposed(errors.PhaseTemplate, "template")
	}
	fn, err := t.realize(ctx)
	if err != nil {
		return nil, err
	}
	return ctx.track(fn), nil
}

// realize builds the template's object in ctx. Called with the lock held.
func (t *Template) realize(ctx *Context) (goja.Value, error) {
	if t.freed {
		return nil, errors.Disposed(errors.PhaseTemplate, "template")
	}
	switch t.kind {
	case functionTemplate:
		fv := ctx.rt.ToValue(ctx.iso.trampoline(t.callbackRef))
		if obj, ok := fv.(*goja.Object); ok && len(t.entries) > 0 {
			if err := t.apply(ctx, obj); err != nil {
				return nil, err
			}
		}
		return fv, nil
	default:
		obj := ctx.rt.NewObject()
		if err := t.apply(ctx, obj); err != nil {
			return nil, err
		}
		return obj, nil
	}
}

// apply stamps the template's entries onto obj. Values recorded in
// another runtime are re-homed through export, so primitives transfer
// exactly and plain data objects transfer by copy.
func (t *Template) apply(ctx *Context, obj *goja.Object) error {
	for _, e := range t.entries {
		var dv goja.Value
		switch {
		case e.tmpl != nil:
			nested, err := e.tmpl.realize(ctx)
			if err != nil {
				return err
			}
			dv = nested
		case e.val != nil:
			dv = rehome(ctx.rt, e.val.v)
		default:
			dv = goja.Undefined()
		}

		writable := flagUnless(e.attrs&ReadOnly != 0)
		configurable := flagUnless(e.attrs&DontDelete != 0)
		enumerable := flagUnless(e.attrs&DontEnum != 0)

		var err error
		if e.sym != nil {
			err = obj.DefineDataPropertySymbol(e.sym, dv, writable, configurable, enumerable)
		} else {
			err = obj.DefineDataProperty(e.name, dv, writable, configurable, enumerable)
		}
		if err != nil {
			return errors.Wrap(errors.PhaseTemplate, errors.KindInvalidInput, err, e.name)
		}
	}
	return nil
}

func flagUnless(suppressed bool) goja.Flag {
	if suppressed {
		return goja.FLAG_FALSE
	}
	return goja.FLAG_TRUE
}

// rehome makes a value usable in rt. Values are pinned to the runtime
// that created them; primitives pass through export unchanged, objects
// come back as copies of their exported data.
func rehome(rt *goja.Runtime, v goja.Value) goja.Value {
	if v == nil || goja.IsUndefined(v) {
		return goja.Undefined()
	}
	if goja.IsNull(v) {
		return goja.Null()
	}
	if sym, ok := v.(*goja.Symbol); ok {
		return sym
	}
	return rt.ToValue(v.Export())
}
