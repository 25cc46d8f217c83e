package word

import (
	"math"
)

const (
	floatExponentMin = -64
	floatExponentMax = 63
)

// Float converts the word to a host double. TAG is ignored.
func (w Word) Float() (d float64) {
	d = float64(w & MANTISSA)
	d = math.Ldexp(d, w.Exponent()-EXPONENT_BIAS-EXPONENT_SHIFT)
	if w.Negative() {
		d = -d
	}
	return
}

// FromFloat converts a host double to the nearest normalized word.
// Values too small to represent clamp to the smallest exponent, values too
// large saturate to the largest magnitude.
func FromFloat(d float64) (w Word) {
	if d == 0 {
		return
	}

	negative := d < 0
	if negative {
		d = -d
	}

	// 0.5 <= frac < 1.0
	frac, exponent := math.Frexp(d)
	frac = math.Ldexp(frac, EXPONENT_SHIFT)
	w = Word(frac)
	if frac-float64(w) >= 0.5 {
		w++
	}
	if w >= BIT37 {
		w >>= 1
		exponent++
	}

	if exponent < floatExponentMin {
		exponent = floatExponentMin
	}
	if exponent > floatExponentMax {
		w = MANTISSA
		exponent = floatExponentMax
	}

	w |= Word(exponent+EXPONENT_BIAS) << EXPONENT_SHIFT
	if negative {
		w |= SIGN
	}

	return
}
