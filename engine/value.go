package engine

import (
	"math"
	"unicode/utf8"

	"github.com/dop251/goja"

	"github.com/wippyai/js-runtime/errors"
)

// Value is an arena-tracked handle to a JavaScript value. A Value belongs
// to exactly one Context (isolate-level values live in the isolate's
// internal context) and stays valid until that Context is freed; there is
// no per-value release.
type Value struct {
	ctx *Context
	v   goja.Value
}

// Context returns the context the value belongs to.
func (v *Value) Context() *Context {
	return v.ctx
}

func (v *Value) context() *Context {
	return v.ctx
}

func (v *Value) iso() *Isolate {
	return v.ctx.iso
}

// Primitive constructors. Isolate-level values are tracked in the
// internal context's arena and live until the isolate is disposed.

func (iso *Isolate) NewValueInteger(n int32) *Value {
	exit := iso.enter(nil)
	defer exit()
	return iso.internal.track(iso.internal.rt.ToValue(int64(n)))
}

func (iso *Isolate) NewValueIntegerFromUnsigned(n uint32) *Value {
	exit := iso.enter(nil)
	defer exit()
	return iso.internal.track(iso.internal.rt.ToValue(int64(n)))
}

func (iso *Isolate) NewValueNumber(f float64) *Value {
	exit := iso.enter(nil)
	defer exit()
	return iso.internal.track(iso.internal.rt.ToValue(f))
}

func (iso *Isolate) NewValueBoolean(b bool) *Value {
	exit := iso.enter(nil)
	defer exit()
	return iso.internal.track(iso.internal.rt.ToValue(b))
}

// NewValueString creates a string value. The input must be valid UTF-8;
// malformed input is rejected rather than silently transcoded.
func (iso *Isolate) NewValueString(s string) (*Value, error) {
	if !utf8.ValidString(s) {
		return nil, errors.InvalidUTF8(errors.PhaseValue, s)
	}
	exit := iso.enter(nil)
	defer exit()
	return iso.internal.track(iso.internal.rt.ToValue(s)), nil
}

func (iso *Isolate) NewValueNull() *Value {
	exit := iso.enter(nil)
	defer exit()
	return iso.internal.track(goja.Null())
}

func (iso *Isolate) NewValueUndefined() *Value {
	exit := iso.enter(nil)
	defer exit()
	return iso.internal.track(goja.Undefined())
}

// ErrorKind selects the error constructor used by NewValueError.
type ErrorKind uint8

const (
	ErrorGeneric ErrorKind = iota
	ErrorRange
	ErrorReference
	ErrorSyntax
	ErrorType
)

func (k ErrorKind) constructor() string {
	switch k {
	case ErrorRange:
		return "RangeError"
	case ErrorReference:
		return "ReferenceError"
	case ErrorSyntax:
		return "SyntaxError"
	case ErrorType:
		return "TypeError"
	default:
		return "Error"
	}
}

// NewValueError builds an error object with the given message. The
// result carries a stack captured at construction, like any error built
// in script. Returns nil if the constructor cannot be reached.
func (iso *Isolate) NewValueError(kind ErrorKind, msg string) *Value {
	exit := iso.enter(nil)
	defer exit()
	rt := iso.internal.rt
	ctor := rt.Get(kind.constructor())
	if ctor == nil {
		return nil
	}
	obj, err := rt.New(ctor, rt.ToValue(msg))
	if err != nil {
		debugf("error construction failed: %v", err)
		return nil
	}
	return iso.internal.track(obj)
}

// ExceptionMessage renders a thrown value the way an embedder console
// would report it.
func ExceptionMessage(v *Value) string {
	return "Uncaught " + v.String()
}

// Conversions. These follow JavaScript coercion rules and never fail;
// use DetailString or Object for the throwing paths.

// Boolean applies ToBoolean.
func (v *Value) Boolean() bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	return v.v.ToBoolean()
}

// Int32 applies ToInt32.
func (v *Value) Int32() int32 {
	exit := v.iso().enter(v.ctx)
	defer exit()
	return int32(v.v.ToInteger())
}

// Uint32 applies ToUint32.
func (v *Value) Uint32() uint32 {
	exit := v.iso().enter(v.ctx)
	defer exit()
	return uint32(v.v.ToInteger())
}

// Integer applies ToInteger, saturating at the int64 range.
func (v *Value) Integer() int64 {
	exit := v.iso().enter(v.ctx)
	defer exit()
	return v.v.ToInteger()
}

// Number applies ToNumber.
func (v *Value) Number() float64 {
	exit := v.iso().enter(v.ctx)
	defer exit()
	return v.v.ToFloat()
}

// String applies ToString. Symbols render as their description rather
// than throwing, so String is always safe for diagnostics.
func (v *Value) String() string {
	exit := v.iso().enter(v.ctx)
	defer exit()
	return v.v.String()
}

// DetailString renders the value under a catch scope, surfacing a
// throwing toString as a script error instead of unwinding.
func (v *Value) DetailString() (string, error) {
	exit := v.iso().enter(v.ctx)
	defer exit()
	var s string
	if serr := v.iso().tryCatch("", func() error {
		s = v.v.String()
		return nil
	}); serr != nil {
		return "", serr
	}
	return s, nil
}

// Object applies ToObject: primitives gain their wrapper object, null
// and undefined produce a TypeError as a script error.
func (v *Value) Object() (*Value, error) {
	ctx := v.context()
	exit := v.iso().enter(ctx)
	defer exit()
	var obj *goja.Object
	if serr := v.iso().tryCatch("", func() error {
		obj = v.v.ToObject(ctx.rt)
		return nil
	}); serr != nil {
		return nil, serr
	}
	return ctx.track(obj), nil
}

// ArrayIndex reports whether the value coerces to a canonical array
// index and returns it if so.
func (v *Value) ArrayIndex() (uint32, bool) {
	exit := v.iso().enter(v.ctx)
	defer exit()
	f := v.v.ToFloat()
	if math.IsNaN(f) || f < 0 || f >= math.MaxUint32 || f != math.Trunc(f) {
		return 0, false
	}
	return uint32(f), true
}

// SameValue compares using the SameValue algorithm: like ===, except
// NaN equals NaN and +0 differs from -0.
func (v *Value) SameValue(other *Value) bool {
	exit := v.iso().enter(v.ctx)
	defer exit()
	return v.v.SameAs(other.v)
}
