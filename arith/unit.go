// Package arith implements the M-20 arithmetic unit.
//
// All operations work on 45-bit words and report overflow conditions as
// stop codes. Two interchangeable strategies exist: the exact integer
// digit-recurrence forms (SHURA_BURA), and the LEGACY forms which align and
// round like the early emulators and use host doubles for division and
// square root.
package arith

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ezrec/m20/translate"
	"github.com/ezrec/m20/word"
)

var f = translate.From

var (
	ErrStrategyUnknown = errors.New(f("unknown arithmetic strategy"))
)

// Strategy selects the arithmetic implementation.
type Strategy int

const (
	SHURA_BURA = Strategy(0) // shura-bura
	LEGACY     = Strategy(1) // legacy
)

var strategyName = map[Strategy]string{
	SHURA_BURA: "shura-bura",
	LEGACY:     "legacy",
}

func (s Strategy) String() string {
	name, ok := strategyName[s]
	if !ok {
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
	return name
}

// ParseStrategy returns the strategy with the given name.
func ParseStrategy(name string) (s Strategy, err error) {
	for s, str := range strategyName {
		if strings.EqualFold(str, name) {
			return s, nil
		}
	}
	err = fmt.Errorf("%w: %q", ErrStrategyUnknown, name)
	return
}

// Mode holds the rounding and normalization suppression flags.
type Mode int

const (
	MODE_NO_ROUND = Mode(1 << 0) // suppress rounding
	MODE_NO_NORM  = Mode(1 << 1) // suppress normalization
)

// ModeOf extracts the mode flags from an arithmetic opcode.
// Opcode bit 4 suppresses rounding, bit 5 suppresses normalization.
func ModeOf(opcode int) (mode Mode) {
	if (opcode>>4)&1 != 0 {
		mode |= MODE_NO_ROUND
	}
	if (opcode>>5)&1 != 0 {
		mode |= MODE_NO_NORM
	}
	return
}

// Round returns true if rounding is enabled.
func (mode Mode) Round() bool {
	return (mode & MODE_NO_ROUND) == 0
}

// Normalize returns true if normalization is enabled.
func (mode Mode) Normalize() bool {
	return (mode & MODE_NO_NORM) == 0
}

// Unit is the arithmetic unit. Its only state is P1, the low half of the
// most recent product.
type Unit struct {
	Strategy Strategy  // Implementation used by every operation.
	P1       word.Word // Low half of the last multiplication.
}

// NewUnit creates an arithmetic unit using the given strategy.
func NewUnit(strategy Strategy) (u *Unit) {
	u = &Unit{
		Strategy: strategy,
	}
	return
}

// Add returns x + y.
func (u *Unit) Add(x, y word.Word, mode Mode) (word.Word, error) {
	if u.Strategy == LEGACY {
		return legacyAdd(x, y, mode)
	}
	return shuraBuraAdd(x, y, mode, addSum)
}

// Sub returns x - y.
func (u *Unit) Sub(x, y word.Word, mode Mode) (word.Word, error) {
	if u.Strategy == LEGACY {
		return legacyAdd(x, y^word.SIGN, mode)
	}
	return shuraBuraAdd(x, y, mode, addDifference)
}

// SubModulus returns |x| - |y|. Rounding never applies.
func (u *Unit) SubModulus(x, y word.Word, mode Mode) (word.Word, error) {
	if u.Strategy == LEGACY {
		return legacyAdd(x&^word.SIGN, y|word.SIGN, mode|MODE_NO_ROUND)
	}
	return shuraBuraAdd(x, y, mode, addModulus)
}

// Div returns x / y.
func (u *Unit) Div(x, y word.Word, mode Mode) (word.Word, error) {
	if u.Strategy == LEGACY {
		return legacyDiv(x, y, mode)
	}
	return shuraBuraDiv(x, y, mode)
}

// Sqrt returns the square root of x.
func (u *Unit) Sqrt(x word.Word, mode Mode) (word.Word, error) {
	if u.Strategy == LEGACY {
		return legacySqrt(x, mode)
	}
	return shuraBuraSqrt(x, mode)
}

// sign of a word, as +1 or -1.
func sign(w word.Word) int {
	if w.Negative() {
		return -1
	}
	return 1
}
