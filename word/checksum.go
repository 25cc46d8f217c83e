package word

// Checksum folds y into the cyclic checksum x.
//
// The exponent/sign/tag group and the mantissa group are summed separately;
// a carry out of the top group wraps into bit 37, and a carry out of the
// mantissa wraps into bit 0.
func Checksum(x, y Word) (sum Word) {
	hi := (x & EXP_SIGN_TAG) + (y & EXP_SIGN_TAG)
	lo := (x & MANTISSA) + (y & MANTISSA)

	if hi >= BIT46 {
		hi -= BIT46
		hi += BIT37
	}
	hi &= WORD45

	if lo >= BIT37 {
		lo -= BIT37
		lo += 1
	}

	sum = (hi | (lo & MANTISSA)) & WORD45
	return
}

// Sum returns the cyclic checksum of a sequence of words.
func Sum(words []Word) (sum Word) {
	for _, w := range words {
		sum = Checksum(sum, w)
	}
	return
}
