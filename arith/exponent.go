package arith

import (
	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

// AddExponent adds n to the biased exponent of x.
//
// A zero mantissa, or an exponent that falls below zero, gives the
// TAG-marked machine zero.
func AddExponent(x word.Word, n int) (result word.Word, err error) {
	exp := x.Exponent() + n

	if (x&word.MANTISSA) == 0 || exp < 0 {
		result = word.TAG
		return
	}

	if exp > word.EXPONENT_MAX {
		err = stop.EXPONENT_OVERFLOW
		return
	}

	result = (x & (word.SIGN | word.MANTISSA | word.TAG)) | (word.Word(exp) << word.EXPONENT_SHIFT)
	return
}
