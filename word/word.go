// Package word describes the 45-bit M-20 machine word.
//
// A word is held in the low 45 bits of a uint64:
//
//	bit  44     TAG, an address marker carried through arithmetic
//	bit  43     SIGN
//	bits 42..36 EXPONENT, biased by 64 (bit 42 is the exponent sign)
//	bits 35..0  MANTISSA
//
// The same 45 bits decode as an instruction: a 3-bit address tag, a 6-bit
// opcode and three 12-bit addresses.
package word

import (
	"fmt"
)

// Word is a single M-20 machine word.
type Word uint64

// Field masks.
const (
	TAG           = Word(0400000000000000) // bit 44
	SIGN          = Word(0200000000000000) // bit 43
	EXPONENT      = Word(0177000000000000) // bits 42..36
	EXPONENT_SIGN = Word(0100000000000000) // bit 42
	MANTISSA      = Word(0000777777777777) // bits 35..0
	EXP_SIGN_TAG  = Word(0777000000000000) // bits 44..36

	WORD45 = Word(0777777777777777) // all significant bits
	WORD44 = Word(0377777777777777) // all but TAG
	WORD21 = Word(07777777)
	WORD18 = Word(0777777)

	BIT36 = Word(0400000000000)     // top mantissa bit
	BIT37 = Word(01000000000000)    // first bit above the mantissa
	BIT38 = Word(02000000000000)    // second bit above the mantissa
	BIT46 = Word(01000000000000000) // first bit above the word
)

// Exponent and instruction field geometry.
const (
	EXPONENT_SHIFT      = 36
	EXPONENT_BIAS       = 64   // biased exponent of 2**0
	EXPONENT_MAX        = 127  // largest biased exponent
	EXPONENT_VALUE_MASK = 0177 // exponent value after the shift
	EXPONENT_OVERFLOW   = 64   // exponents above this mean |x| >= 1

	TAGS_SHIFT   = 42
	TAGS_MASK    = 07
	OPCODE_SHIFT = 36
	OPCODE_MASK  = 077
	ADDR_MASK    = 07777
)

// Instruction address tag bits; each adds RA to the matching address.
const (
	TAG_A1 = 04
	TAG_A2 = 02
	TAG_A3 = 01
)

// Masked drops all bits above the 45-bit word.
func (w Word) Masked() Word {
	return w & WORD45
}

// Garbage returns true if any bit above bit 44 is set.
func (w Word) Garbage() bool {
	return (w &^ WORD45) != 0
}

// Tag returns the state of the TAG bit.
func (w Word) Tag() bool {
	return (w & TAG) != 0
}

// Negative returns the state of the SIGN bit.
func (w Word) Negative() bool {
	return (w & SIGN) != 0
}

// Exponent returns the biased exponent.
func (w Word) Exponent() int {
	return int(w>>EXPONENT_SHIFT) & EXPONENT_VALUE_MASK
}

// Mantissa returns the 36 mantissa bits.
func (w Word) Mantissa() Word {
	return w & MANTISSA
}

// WithExponent replaces the biased exponent.
func (w Word) WithExponent(exp int) Word {
	return (w &^ EXPONENT) | (Word(exp&EXPONENT_VALUE_MASK) << EXPONENT_SHIFT)
}

// Tags returns the instruction address tag bits.
func (w Word) Tags() int {
	return int(w>>TAGS_SHIFT) & TAGS_MASK
}

// Opcode returns the instruction opcode.
func (w Word) Opcode() int {
	return int(w>>OPCODE_SHIFT) & OPCODE_MASK
}

// A1 returns the first instruction address.
func (w Word) A1() int {
	return int(w>>24) & ADDR_MASK
}

// A2 returns the second instruction address.
func (w Word) A2() int {
	return int(w>>12) & ADDR_MASK
}

// A3 returns the third instruction address.
func (w Word) A3() int {
	return int(w) & ADDR_MASK
}

// MakeInstruction assembles an instruction word.
func MakeInstruction(tags int, opcode int, a1, a2, a3 int) Word {
	return Word(tags&TAGS_MASK)<<TAGS_SHIFT |
		Word(opcode&OPCODE_MASK)<<OPCODE_SHIFT |
		Word(a1&ADDR_MASK)<<24 |
		Word(a2&ADDR_MASK)<<12 |
		Word(a3&ADDR_MASK)
}

// String returns the word as 15 octal digits.
func (w Word) String() string {
	return fmt.Sprintf("%015o", uint64(w))
}

// Fields returns the word split as 'tags opcode a1 a2 a3' octal groups.
func (w Word) Fields() string {
	return fmt.Sprintf("%o %02o %04o %04o %04o", w.Tags(), w.Opcode(), w.A1(), w.A2(), w.A3())
}
