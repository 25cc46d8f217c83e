package arith

import (
	"math"

	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

// sqrtExponent halves a biased exponent. Odd exponents round up and ask
// for the mantissa to be pre-shifted right by one.
func sqrtExponent(p int) (rr int, odd bool) {
	rr = (p >> 1) + word.EXPONENT_BIAS/2
	if (p & 1) != 0 {
		rr++
		odd = true
	}
	return
}

// shuraBuraSqrt is the digit-by-digit square root extraction
// (Shura-Bura & Starkman, 1962, pp. 86-89).
func shuraBuraSqrt(x word.Word, mode Mode) (result word.Word, err error) {
	if x.Negative() {
		err = stop.NEGATIVE_SQRT
		return
	}

	x1 := uint64(x & word.MANTISSA)
	if x1 == 0 {
		return
	}

	rr, odd := sqrtExponent(x.Exponent())

	// qs is a two's complement partial remainder, n the root so far.
	var qs uint64
	if odd {
		qs = -x1
	} else {
		qs = -(x1 + x1)
	}

	var n uint64
	us := uint64(1) << 35
	for range 36 {
		qqs := qs + us + (n << 1)
		if (qqs & uint64(word.SIGN)) != 0 {
			qs = qqs << 1
			n += us
		} else {
			qs = (qqs - n - n - us) << 1
		}
		us >>= 1
	}

	zz := word.Word(n)
	if mode.Round() {
		zz++
	}

	if (zz &^ word.MANTISSA) != 0 {
		err = stop.SQRT_ERROR
		return
	}

	if zz == 0 {
		return
	}

	result = zz | (word.Word(rr) << word.EXPONENT_SHIFT) | (x & word.TAG)
	return
}

// legacySqrt extracts the root with a host double.
func legacySqrt(x word.Word, mode Mode) (result word.Word, err error) {
	if x.Negative() {
		err = stop.NEGATIVE_SQRT
		return
	}

	r := x & word.MANTISSA
	rr, odd := sqrtExponent(x.Exponent())
	if odd {
		r >>= 1
	}

	q := math.Sqrt(float64(r)) * float64(uint64(1)<<18)
	r = word.Word(q)
	if mode.Round() && q-float64(r) >= 0.5 {
		r++
	}

	if r == 0 {
		result = x & word.TAG
		return
	}

	if (r &^ word.MANTISSA) != 0 {
		err = stop.SQRT_ERROR
		return
	}

	result = r | (word.Word(rr) << word.EXPONENT_SHIFT) | (x & word.TAG)
	return
}
