package engine

import (
	"math/big"

	"github.com/wippyai/js-runtime/errors"
)

// maxBigIntWords caps word-encoded BigInt construction, mirroring the
// engine-side limit on BigInt size.
const maxBigIntWords = 1 << 16

// NewValueBigInt creates a BigInt from a signed 64-bit integer.
func (iso *Isolate) NewValueBigInt(n int64) *Value {
	exit := iso.enter(nil)
	defer exit()
	return iso.internal.track(iso.internal.rt.ToValue(big.NewInt(n)))
}

// NewValueBigIntFromUnsigned creates a BigInt from an unsigned 64-bit
// integer.
func (iso *Isolate) NewValueBigIntFromUnsigned(n uint64) *Value {
	exit := iso.enter(nil)
	defer exit()
	return iso.internal.track(iso.internal.rt.ToValue(new(big.Int).SetUint64(n)))
}

// NewValueBigIntFromWords creates a BigInt from a sign bit and 64-bit
// little-endian magnitude words, the word encoding used for arbitrary
// precision transfer. wordCount may be less than len(words); a negative
// or oversized count is rejected.
func (iso *Isolate) NewValueBigIntFromWords(signBit, wordCount int, words []uint64) (*Value, error) {
	if signBit != 0 && signBit != 1 {
		return nil, errors.InvalidInput(errors.PhaseBigInt, "sign bit must be 0 or 1")
	}
	if wordCount < 0 {
		return nil, errors.New(errors.PhaseBigInt, errors.KindInvalidInput).
			Detail("word count %d", wordCount).Build()
	}
	if wordCount > len(words) || wordCount > maxBigIntWords {
		return nil, errors.New(errors.PhaseBigInt, errors.KindInvalidInput).
			Detail("word count %d exceeds limit", wordCount).Build()
	}

	exit := iso.enter(nil)
	defer exit()
	b := bigFromWords(words[:wordCount])
	if signBit == 1 {
		b.Neg(b)
	}
	return iso.internal.track(iso.internal.rt.ToValue(b)), nil
}

// BigInt returns the value as a big integer, or nil if the value is not
// a BigInt.
func (v *Value) BigInt() *big.Int {
	exit := v.iso().enter(v.ctx)
	defer exit()
	b, ok := v.v.Export().(*big.Int)
	if !ok {
		return nil
	}
	return new(big.Int).Set(b)
}

// BigIntWords decomposes a BigInt into its sign bit and little-endian
// 64-bit magnitude words. Zero decomposes to no words. ok is false when
// the value is not a BigInt.
func (v *Value) BigIntWords() (signBit int, words []uint64, ok bool) {
	b := v.BigInt()
	if b == nil {
		return 0, nil, false
	}
	if b.Sign() < 0 {
		signBit = 1
	}
	return signBit, wordsFromBig(b), true
}

func bigFromWords(words []uint64) *big.Int {
	b := new(big.Int)
	w := new(big.Int)
	for i := len(words) - 1; i >= 0; i-- {
		b.Lsh(b, 64)
		b.Or(b, w.SetUint64(words[i]))
	}
	return b
}

func wordsFromBig(b *big.Int) []uint64 {
	abs := new(big.Int).Abs(b)
	mask := new(big.Int).SetUint64(^uint64(0))
	w := new(big.Int)
	var words []uint64
	for abs.Sign() != 0 {
		words = append(words, w.And(abs, mask).Uint64())
		abs.Rsh(abs, 64)
	}
	return words
}
