package engine

import (
	"github.com/dop251/goja"
)

// SymbolKind selects one of the language's well-known symbols.
type SymbolKind int

const (
	SymbolAsyncIterator SymbolKind = iota + 1
	SymbolHasInstance
	SymbolIsConcatSpreadable
	SymbolIterator
	SymbolMatch
	SymbolReplace
	SymbolSearch
	SymbolSplit
	SymbolToPrimitive
	SymbolToStringTag
	SymbolUnscopables
)

// WellKnownSymbol returns the requested well-known symbol as an
// isolate-level value, or nil for an unrecognized kind.
// SymbolAsyncIterator also yields nil: goja implements no async
// iteration and defines no Symbol.asyncIterator.
func WellKnownSymbol(iso *Isolate, kind SymbolKind) *Value {
	var sym *goja.Symbol
	switch kind {
	case SymbolAsyncIterator:
		return nil
	case SymbolHasInstance:
		sym = goja.SymHasInstance
	case SymbolIsConcatSpreadable:
		sym = goja.SymIsConcatSpreadable
	case SymbolIterator:
		sym = goja.SymIterator
	case SymbolMatch:
		sym = goja.SymMatch
	case SymbolReplace:
		sym = goja.SymReplace
	case SymbolSearch:
		sym = goja.SymSearch
	case SymbolSplit:
		sym = goja.SymSplit
	case SymbolToPrimitive:
		sym = goja.SymToPrimitive
	case SymbolToStringTag:
		sym = goja.SymToStringTag
	case SymbolUnscopables:
		sym = goja.SymUnscopables
	default:
		return nil
	}
	exit := iso.enter(nil)
	defer exit()
	return iso.internal.track(sym)
}

// SymbolDescription returns a symbol's description, or "" when the
// symbol has none or the value is not a symbol.
func (v *Value) SymbolDescription() string {
	exit := v.iso().enter(v.ctx)
	defer exit()
	if _, ok := v.v.(*goja.Symbol); !ok {
		return ""
	}
	// Symbol.prototype.description is an accessor; read it through a
	// wrapper object.
	obj := v.v.ToObject(v.ctx.rt)
	if obj == nil {
		return ""
	}
	d := obj.Get("description")
	if d == nil || goja.IsUndefined(d) {
		return ""
	}
	return d.String()
}
