package arith

import (
	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

// divCheck applies the division preconditions shared by both strategies.
func divCheck(x1, y1 word.Word) (err error) {
	if y1 == 0 {
		err = stop.DIVISION_BY_ZERO
		return
	}

	if x1 >= 2*y1 {
		err = stop.DIVISION_MANTISSA_OVERFLOW
		return
	}

	return
}

// divResult assembles a quotient, or a machine zero.
func divResult(x, y word.Word, zz word.Word, rr int) (result word.Word, err error) {
	if zz == 0 || rr < 0 {
		result = (x | y) & word.TAG
		return
	}

	if rr > word.EXPONENT_MAX {
		err = stop.DIVISION_OVERFLOW
		return
	}

	result = zz & word.MANTISSA
	result |= word.Word(rr) << word.EXPONENT_SHIFT
	result |= ((x ^ y) & word.SIGN) | ((x | y) & word.TAG)
	return
}

// shuraBuraDiv is the non-restoring division recurrence
// (Shura-Bura & Starkman, 1962, pp. 77-82).
func shuraBuraDiv(x, y word.Word, mode Mode) (result word.Word, err error) {
	x1 := x & word.MANTISSA
	y1 := y & word.MANTISSA

	err = divCheck(x1, y1)
	if err != nil {
		return
	}

	if x1 == 0 {
		result = (x | y) & word.TAG
		return
	}

	rr := x.Exponent() - y.Exponent() + word.EXPONENT_BIAS

	// Partial remainders are two's complement; SIGN marks a negative one.
	qk := uint64(x1) - uint64(y1)
	prev := (qk & uint64(word.SIGN)) == 0
	digit := uint64(1) << 37

	var zz uint64
	for range 38 {
		next := qk << 1
		positive := (qk & uint64(word.SIGN)) == 0
		if positive {
			next -= uint64(y1)
		} else {
			next += uint64(y1)
		}
		if prev {
			zz += digit << 1
		}
		digit >>= 1
		qk = next
		prev = positive
	}

	zz >>= 1
	if (zz & uint64(word.BIT37)) != 0 {
		if mode.Round() {
			zz++
		}
		zz >>= 1
		rr++
	} else if mode.Round() {
		zz++
	}

	return divResult(x, y, word.Word(zz), rr)
}

// legacyDiv divides the mantissas with a host double.
func legacyDiv(x, y word.Word, mode Mode) (result word.Word, err error) {
	xm := x & word.MANTISSA
	ym := y & word.MANTISSA

	err = divCheck(xm, ym)
	if err != nil {
		return
	}

	rexp := x.Exponent() - y.Exponent() + word.EXPONENT_BIAS
	r := word.Word(float64(xm) / float64(ym) * float64(word.BIT37))

	if (r >> word.EXPONENT_SHIFT) != 0 {
		if mode.Round() {
			r++
		}
		r >>= 1
		rexp++
	}

	return divResult(x, y, r, rexp)
}
