package arith

import (
	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

type addKind int

const (
	addSum        = addKind(iota) // x + y
	addDifference                 // x - y
	addModulus                    // |x| - |y|
)

// Working width of the aligned mantissas: mantissa, auxiliary bit, carry.
const addMask = uint64(word.MANTISSA | word.BIT37 | word.BIT38)

// isNegativeZero is the machine 'normalized zero' test.
func isNegativeZero(w word.Word) bool {
	return w.Negative() && w.Mantissa() == 0 && (w&word.EXPONENT) == 0
}

// isZero ignores the TAG bit.
func isZero(w word.Word) bool {
	return (w & word.WORD44) == 0
}

// Normalize shifts the mantissa left until bit 35 is set. A zero mantissa
// or an exponent underflow yields the machine zero, which keeps only TAG.
func Normalize(x word.Word) word.Word {
	exp := x.Exponent()
	m := x & word.MANTISSA

	if m == 0 {
		return x & word.TAG
	}

	for (m & word.BIT36) == 0 {
		m <<= 1
		exp--
		if exp < 0 {
			return x & word.TAG
		}
	}

	return (x & (word.TAG | word.SIGN)) | (word.Word(exp) << word.EXPONENT_SHIFT) | m
}

// shuraBuraAdd is the add/subtract/subtract-modulus digit algorithm
// (Shura-Bura & Starkman, 1962, pp. 70-75).
func shuraBuraAdd(x, y word.Word, mode Mode, kind addKind) (result word.Word, err error) {
	var prod, first int
	switch kind {
	case addSum:
		first = sign(x)
		prod = sign(x) * sign(y)
	case addDifference:
		first = sign(x)
		prod = -(sign(x) * sign(y))
	case addModulus:
		first = 1
		prod = -1
	}

	subtract := prod == -1
	negate := first == -1
	zero := isNegativeZero(x) || isNegativeZero(y)

	p := x.Exponent()
	q := y.Exponent()
	x1 := uint64(x.Mantissa())
	y1 := uint64(y.Mantissa())

	delta := p - q
	rr := max(p, q)

	// Rounding bit planted below the shifted-out operand.
	var e0 uint64
	if mode.Round() && !zero && !subtract && delta != 0 {
		e0 = 1
	}

	var xx, yy uint64
	switch {
	case delta == 0:
		xx = x1 << 1
		yy = y1 << 1
	case delta < 0:
		xx = (x1 << 1) >> uint(-delta)
		yy = (y1 << 1) | e0
	default:
		xx = (x1 << 1) | e0
		yy = (y1 << 1) >> uint(delta)
	}

	var z uint64
	negative := false
	if subtract {
		if xx >= yy {
			z = xx - yy
		} else {
			z = yy - xx
			negative = true
		}
	} else {
		z = xx + yy
	}
	if negate {
		negative = !negative
	}
	z &= addMask

	// Carry into bit 37: right normalization.
	if (z & uint64(word.BIT38)) != 0 {
		if mode.Round() {
			z++
		}
		rr++
		if rr > word.EXPONENT_MAX {
			err = stop.ADDITION_OVERFLOW
			return
		}
		z >>= 1
	}

	if z == 0 {
		return
	}

	if mode.Normalize() && (z&uint64(word.BIT38|word.BIT37)) == 0 {
		j := word.EXPONENT_SHIFT
		for j > 0 && (z&(uint64(1)<<j)) == 0 {
			j--
		}
		shift := word.EXPONENT_SHIFT - j
		if rr-shift < 0 {
			return
		}
		rr -= shift
		z <<= shift
	}

	z >>= 1
	result = word.Word(z) & word.MANTISSA
	result |= word.Word(rr) << word.EXPONENT_SHIFT
	if negative {
		result |= word.SIGN
	}
	result |= (x | y) & word.TAG

	return
}

// legacyAdd aligns the smaller operand and sums the magnitudes.
//
// When rounding is enabled, a same-sign sum of operands with unequal
// exponents and nonzero mantissas gets 1 added at bit 0. A result of
// exactly 0.100...001 (binary) after rounding drops the low bit.
func legacyAdd(x, y word.Word, mode Mode) (result word.Word, err error) {
	noRound := !mode.Round()
	noNorm := !mode.Normalize()

	if isZero(x) {
		if !noNorm {
			y = Normalize(y)
		}
		result = y | (x & word.TAG)
		return
	}

	if isZero(y) {
		if !noNorm {
			x = Normalize(x)
		}
		result = x | (y & word.TAG)
		return
	}

	xexp := x.Exponent()
	yexp := y.Exponent()

	// x has the larger exponent.
	if yexp > xexp {
		x, y = y, x
		xexp, yexp = yexp, xexp
	}

	if xexp-yexp >= word.EXPONENT_SHIFT {
		if !noNorm {
			x = Normalize(x)
		}
		result = x | (y & word.TAG)
		return
	}

	xm := x & word.MANTISSA
	ym := (y & word.MANTISSA) >> (xexp - yexp)

	rexp := xexp
	var r word.Word

	if ((x ^ y) & word.SIGN) != 0 {
		r = xm - ym
		if (r & word.SIGN) != 0 {
			r = -r
			r |= word.SIGN
		}
	} else {
		r = xm + ym
		if !noRound && xexp != yexp && (x&word.MANTISSA) != 0 && (y&word.MANTISSA) != 0 {
			r++
		}
		if (r >> word.EXPONENT_SHIFT) != 0 {
			if !noRound {
				r++
			}
			r >>= 1
			rexp++
			if rexp > word.EXPONENT_MAX {
				err = stop.ADDITION_OVERFLOW
				return
			}
		}
	}

	if r == 0 || rexp < 0 {
		result = (x | y) & word.TAG
		return
	}

	r |= word.Word(rexp) << word.EXPONENT_SHIFT
	r ^= x & word.SIGN

	if !noNorm {
		r = Normalize(r)
	}

	if !noRound {
		t := r & word.MANTISSA
		if (t&word.BIT36) != 0 && (t&1) != 0 && (t&^(word.BIT36|1)) == 0 {
			r &^= 1
			r &= word.WORD45
		}
	}

	result = r | ((x | y) & word.TAG)
	return
}
