package engine

import (
	"math"
	"math/big"
	"reflect"

	"github.com/dop251/goja"
)

// Type predicates. Each one is a cheap mechanical probe: a type
// assertion, an export-type check, a class-name check, or a
// Symbol.toStringTag comparison. None of them coerce and none of them
// throw; a probe that cannot apply reports false.

var (
	typeString = reflect.TypeOf("")
	typeInt64  = reflect.TypeOf(int64(0))
	typeFloat  = reflect.TypeOf(float64(0))
	typeBool   = reflect.TypeOf(false)
	typeBigInt = reflect.TypeOf((*big.Int)(nil))
)

func (v *Value) withObject(fn func(*goja.Object) bool) bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	o, ok := v.v.(*goja.Object)
	if !ok {
		return false
	}
	return fn(o)
}

func (v *Value) classIs(name string) bool {
	return v.withObject(func(o *goja.Object) bool {
		return o.ClassName() == name
	})
}

// tagIs compares Symbol.toStringTag. The read runs under a catch scope:
// a hostile tag getter must not unwind a predicate.
func (v *Value) tagIs(tag string) bool {
	return v.withObject(func(o *goja.Object) bool {
		match := false
		v.iso().tryCatch("", func() error {
			t := o.GetSymbol(goja.SymToStringTag)
			match = t != nil && t.String() == tag
			return nil
		})
		return match
	})
}

// exportIs reports a primitive of the given export type. Wrapper objects
// are excluded: new Number(1) is an object, not a number.
func (v *Value) exportIs(t reflect.Type) bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	if _, isObj := v.v.(*goja.Object); isObj {
		return false
	}
	et := v.v.ExportType()
	return et != nil && et == t
}

func (v *Value) IsUndefined() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	return goja.IsUndefined(v.v)
}

func (v *Value) IsNull() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	return goja.IsNull(v.v)
}

func (v *Value) IsNullOrUndefined() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	return goja.IsNull(v.v) || goja.IsUndefined(v.v)
}

func (v *Value) IsBoolean() bool { return v.exportIs(typeBool) }

func (v *Value) IsTrue() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	if _, isObj := v.v.(*goja.Object); isObj {
		return false
	}
	return v.v.ExportType() == typeBool && v.v.ToBoolean()
}

func (v *Value) IsFalse() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	if _, isObj := v.v.(*goja.Object); isObj {
		return false
	}
	return v.v.ExportType() == typeBool && !v.v.ToBoolean()
}

func (v *Value) IsString() bool { return v.exportIs(typeString) }

func (v *Value) IsSymbol() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	_, ok := v.v.(*goja.Symbol)
	return ok
}

// IsName reports a value usable as a property key: a string or a symbol.
func (v *Value) IsName() bool {
	return v.IsString() || v.IsSymbol()
}

func (v *Value) IsNumber() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	return v.isNumberLocked()
}

func (v *Value) isNumberLocked() bool {
	if _, isObj := v.v.(*goja.Object); isObj {
		return false
	}
	et := v.v.ExportType()
	return et == typeInt64 || et == typeFloat
}

func (v *Value) IsInt32() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	if !v.isNumberLocked() {
		return false
	}
	f := v.v.ToFloat()
	return f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32
}

func (v *Value) IsUint32() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	if !v.isNumberLocked() {
		return false
	}
	f := v.v.ToFloat()
	return f == math.Trunc(f) && f >= 0 && f <= math.MaxUint32
}

func (v *Value) IsBigInt() bool { return v.exportIs(typeBigInt) }

func (v *Value) IsFunction() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	_, ok := goja.AssertFunction(v.v)
	return ok
}

func (v *Value) IsObject() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	_, ok := v.v.(*goja.Object)
	return ok
}

func (v *Value) IsArray() bool           { return v.classIs("Array") }
func (v *Value) IsDate() bool            { return v.classIs("Date") }
func (v *Value) IsRegExp() bool          { return v.classIs("RegExp") }
func (v *Value) IsNativeError() bool     { return v.classIs("Error") }
func (v *Value) IsArgumentsObject() bool { return v.classIs("Arguments") }

func (v *Value) IsNumberObject() bool  { return v.classIs("Number") }
func (v *Value) IsStringObject() bool  { return v.classIs("String") }
func (v *Value) IsBooleanObject() bool { return v.classIs("Boolean") }
func (v *Value) IsSymbolObject() bool  { return v.classIs("Symbol") }
func (v *Value) IsBigIntObject() bool  { return v.classIs("BigInt") }

func (v *Value) IsMap() bool     { return v.classIs("Map") }
func (v *Value) IsSet() bool     { return v.classIs("Set") }
func (v *Value) IsWeakMap() bool { return v.classIs("WeakMap") }
func (v *Value) IsWeakSet() bool { return v.classIs("WeakSet") }

func (v *Value) IsMapIterator() bool { return v.tagIs("Map Iterator") }
func (v *Value) IsSetIterator() bool { return v.tagIs("Set Iterator") }

func (v *Value) IsPromise() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	if _, isObj := v.v.(*goja.Object); !isObj {
		return false
	}
	_, ok := v.v.Export().(*goja.Promise)
	return ok
}

func (v *Value) IsProxy() bool { return v.classIs("Proxy") }

func (v *Value) IsAsyncFunction() bool     { return v.tagIs("AsyncFunction") }
func (v *Value) IsGeneratorFunction() bool { return v.tagIs("GeneratorFunction") }
func (v *Value) IsGeneratorObject() bool   { return v.tagIs("Generator") }

func (v *Value) IsModuleNamespaceObject() bool { return v.tagIs("Module") }

func (v *Value) IsArrayBuffer() bool       { return v.classIs("ArrayBuffer") }
func (v *Value) IsSharedArrayBuffer() bool { return v.classIs("SharedArrayBuffer") }
func (v *Value) IsDataView() bool          { return v.classIs("DataView") }

var typedArrayClasses = map[string]struct{}{
	"Uint8Array":        {},
	"Uint8ClampedArray": {},
	"Int8Array":         {},
	"Uint16Array":       {},
	"Int16Array":        {},
	"Uint32Array":       {},
	"Int32Array":        {},
	"Float32Array":      {},
	"Float64Array":      {},
	"BigInt64Array":     {},
	"BigUint64Array":    {},
}

func (v *Value) IsTypedArray() bool {
	return v.withObject(func(o *goja.Object) bool {
		_, ok := typedArrayClasses[o.ClassName()]
		return ok
	})
}

func (v *Value) IsArrayBufferView() bool {
	return v.IsTypedArray() || v.IsDataView()
}

func (v *Value) IsUint8Array() bool        { return v.classIs("Uint8Array") }
func (v *Value) IsUint8ClampedArray() bool { return v.classIs("Uint8ClampedArray") }
func (v *Value) IsInt8Array() bool         { return v.classIs("Int8Array") }
func (v *Value) IsUint16Array() bool       { return v.classIs("Uint16Array") }
func (v *Value) IsInt16Array() bool        { return v.classIs("Int16Array") }
func (v *Value) IsUint32Array() bool       { return v.classIs("Uint32Array") }
func (v *Value) IsInt32Array() bool        { return v.classIs("Int32Array") }
func (v *Value) IsFloat32Array() bool      { return v.classIs("Float32Array") }
func (v *Value) IsFloat64Array() bool      { return v.classIs("Float64Array") }
func (v *Value) IsBigInt64Array() bool     { return v.classIs("BigInt64Array") }
func (v *Value) IsBigUint64Array() bool    { return v.classIs("BigUint64Array") }
