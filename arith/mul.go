package arith

import (
	"math/bits"

	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

// mul36 returns the 72-bit product of two mantissas as two 36-bit halves.
func mul36(x, y word.Word) (hi, lo word.Word) {
	h, l := bits.Mul64(uint64(x), uint64(y))
	hi = word.Word(h<<28 | l>>36)
	lo = word.Word(l) & word.MANTISSA
	return
}

// Mul returns x * y, leaving the low half of the product in P1.
//
// The product is exact in both strategies. Normalization shifts left by at
// most one bit, pulling in the top bit of the low half; rounding adds the
// top bit of the low half.
func (u *Unit) Mul(x, y word.Word, mode Mode) (result word.Word, err error) {
	rexp := x.Exponent() + y.Exponent() - word.EXPONENT_BIAS

	hi, lo := mul36(x&word.MANTISSA, y&word.MANTISSA)

	if mode.Normalize() && (hi&word.BIT36) == 0 {
		rexp--
		hi <<= 1
		lo <<= 1
		if (lo & word.BIT37) != 0 {
			hi |= 1
		}
		lo &= word.MANTISSA
	}

	if mode.Round() && (lo&word.BIT36) != 0 {
		hi++
		if (hi & word.BIT37) != 0 {
			hi >>= 1
			rexp++
		}
	}

	u.P1 = lo

	if hi == 0 || rexp < 0 {
		result = (x | y) & word.TAG
		return
	}

	if rexp > word.EXPONENT_MAX {
		err = stop.MULTIPLICATION_OVERFLOW
		return
	}

	marks := ((x ^ y) & word.SIGN) | ((x | y) & word.TAG)
	exp := word.Word(rexp) << word.EXPONENT_SHIFT

	result = hi | exp | marks
	u.P1 = lo | exp | marks

	return
}
