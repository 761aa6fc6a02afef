package engine

import (
	"strconv"

	"github.com/dop251/goja"

	"github.com/wippyai/js-runtime/errors"
)

// Object property access. These operations require the receiver to be an
// object; the caller upholds that (typically via IsObject or Object()),
// matching the trust the boundary extends elsewhere. Property reads run
// under a catch scope because getters and proxy traps can throw.

// asObject coerces the receiver for a property operation. Invalid
// receivers surface as a structured error rather than a crash.
func (v *Value) asObject() (*goja.Object, error) {
	obj, ok := v.v.(*goja.Object)
	if !ok {
		return nil, errors.New(errors.PhaseValue, errors.KindNotAnObject).
			Detail("property access on non-object").Build()
	}
	return obj, nil
}

// anyKey splits a key value into its string or symbol form.
func anyKey(key *Value) (string, *goja.Symbol) {
	if sym, ok := key.v.(*goja.Symbol); ok {
		return "", sym
	}
	return key.v.String(), nil
}

func (v *Value) getProp(get func(*goja.Object) goja.Value) (*Value, error) {
	ctx := v.context()
	exit := v.iso().enter(ctx)
	defer exit()

	obj, err := v.asObject()
	if err != nil {
		return nil, err
	}
	var result goja.Value
	if serr := v.iso().tryCatch("", func() error {
		result = get(obj)
		return nil
	}); serr != nil {
		return nil, serr
	}
	if result == nil {
		result = goja.Undefined()
	}
	return ctx.track(result), nil
}

// ObjectGet reads a named property. Absent properties yield undefined.
func (v *Value) ObjectGet(key string) (*Value, error) {
	return v.getProp(func(o *goja.Object) goja.Value { return o.Get(key) })
}

// ObjectGetAnyKey reads a property by an arbitrary key value (string
// coercion applies; symbols are looked up as symbols).
func (v *Value) ObjectGetAnyKey(key *Value) (*Value, error) {
	return v.getProp(func(o *goja.Object) goja.Value {
		if name, sym := anyKey(key); sym != nil {
			return o.GetSymbol(sym)
		} else {
			return o.Get(name)
		}
	})
}

// ObjectGetIdx reads an indexed property.
func (v *Value) ObjectGetIdx(idx uint32) (*Value, error) {
	return v.getProp(func(o *goja.Object) goja.Value {
		return o.Get(strconv.FormatUint(uint64(idx), 10))
	})
}

func (v *Value) setProp(set func(*goja.Object) error) {
	exit := v.iso().enter(v.context())
	defer exit()

	obj, err := v.asObject()
	if err != nil {
		debugf("set on non-object dropped")
		return
	}
	if serr := v.iso().tryCatch("", func() error { return set(obj) }); serr != nil {
		debugf("property set raised: %v", serr)
	}
}

// ObjectSet writes a named property. Failures (frozen object, throwing
// setter) are swallowed, as in sloppy-mode script.
func (v *Value) ObjectSet(key string, val *Value) {
	v.setProp(func(o *goja.Object) error { return o.Set(key, val.v) })
}

// ObjectSetAnyKey writes a property by an arbitrary key value.
func (v *Value) ObjectSetAnyKey(key, val *Value) {
	v.setProp(func(o *goja.Object) error {
		if name, sym := anyKey(key); sym != nil {
			return o.SetSymbol(sym, val.v)
		} else {
			return o.Set(name, val.v)
		}
	})
}

// ObjectSetIdx writes an indexed property.
func (v *Value) ObjectSetIdx(idx uint32, val *Value) {
	v.setProp(func(o *goja.Object) error {
		return o.Set(strconv.FormatUint(uint64(idx), 10), val.v)
	})
}

// hasProp answers presence with the in operator's semantics through
// Reflect.has: own or inherited, without evaluating getters. A proxy has
// trap that throws reads as absent.
func (v *Value) hasProp(keyOf func(rt *goja.Runtime) goja.Value) bool {
	ctx := v.context()
	exit := v.iso().enter(ctx)
	defer exit()

	obj, err := v.asObject()
	if err != nil {
		return false
	}
	has := ctx.reflectHas()
	if has == nil {
		return false
	}
	found := false
	if serr := v.iso().tryCatch("", func() error {
		res, err := has(goja.Undefined(), obj, keyOf(ctx.rt))
		if err != nil {
			return err
		}
		found = res.ToBoolean()
		return nil
	}); serr != nil {
		return false
	}
	return found
}

// ObjectHas reports whether the named property exists, own or inherited.
func (v *Value) ObjectHas(key string) bool {
	return v.hasProp(func(rt *goja.Runtime) goja.Value { return rt.ToValue(key) })
}

// ObjectHasAnyKey reports whether a property keyed by an arbitrary value
// exists.
func (v *Value) ObjectHasAnyKey(key *Value) bool {
	return v.hasProp(func(*goja.Runtime) goja.Value { return key.v })
}

// ObjectHasIdx reports whether the indexed property exists.
func (v *Value) ObjectHasIdx(idx uint32) bool {
	return v.hasProp(func(rt *goja.Runtime) goja.Value {
		return rt.ToValue(strconv.FormatUint(uint64(idx), 10))
	})
}

func (v *Value) deleteProp(del func(*goja.Object) error) bool {
	exit := v.iso().enter(v.context())
	defer exit()

	obj, err := v.asObject()
	if err != nil {
		return false
	}
	ok := false
	if serr := v.iso().tryCatch("", func() error {
		ok = del(obj) == nil
		return nil
	}); serr != nil {
		return false
	}
	return ok
}

// ObjectDelete removes the named property. Reports false when the
// property is non-configurable.
func (v *Value) ObjectDelete(key string) bool {
	return v.deleteProp(func(o *goja.Object) error { return o.Delete(key) })
}

// ObjectDeleteAnyKey removes a property keyed by an arbitrary value.
func (v *Value) ObjectDeleteAnyKey(key *Value) bool {
	return v.deleteProp(func(o *goja.Object) error {
		if name, sym := anyKey(key); sym != nil {
			return o.DeleteSymbol(sym)
		} else {
			return o.Delete(name)
		}
	})
}

// ObjectDeleteIdx removes the indexed property.
func (v *Value) ObjectDeleteIdx(idx uint32) bool {
	return v.deleteProp(func(o *goja.Object) error {
		return o.Delete(strconv.FormatUint(uint64(idx), 10))
	})
}
