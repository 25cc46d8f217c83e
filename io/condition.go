package io

import (
	"fmt"
	"iter"
	"strings"
)

// Condition is the 12-bit external device condition word.
type Condition int

const (
	DIS_RAM     = Condition(04000) // memory blocking
	DIS_CHECK   = Condition(02000) // checksum blocking
	TAPE_REV    = Condition(01000) // reverse tape motion
	DIS_STOP    = Condition(00400) // stop blocking
	PUNCH       = Condition(00200) // card punch
	PRINT       = Condition(00100) // line printer
	TAPE_FORMAT = Condition(00040) // tape formatting
	TAPE        = Condition(00020) // magnetic tape
	DRUM        = Condition(00010) // magnetic drum
	WRITE       = Condition(00004) // write to the device
	UNIT        = Condition(00003) // unit number

	CONDITION_MASK = Condition(07777)

	// NO_SETUP is latched when no setup has been performed.
	NO_SETUP = Condition(07777)
)

var conditionName = []struct {
	bits Condition
	name string
}{
	{DIS_RAM, "DIS_RAM"},
	{DIS_CHECK, "DIS_CHECK"},
	{TAPE_REV, "TAPE_REV"},
	{DIS_STOP, "DIS_STOP"},
	{PUNCH, "PUNCH"},
	{PRINT, "PRINT"},
	{TAPE_FORMAT, "TAPE_FORMAT"},
	{TAPE, "TAPE"},
	{DRUM, "DRUM"},
	{WRITE, "WRITE"},
}

// Defines iterates over the names and values of the condition word bits.
func Defines() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for _, entry := range conditionName {
			if !yield(entry.name, int(entry.bits)) {
				return
			}
		}
		yield("UNIT", int(UNIT))
	}
}

// Has returns true if any of the bits are set.
func (c Condition) Has(bits Condition) bool {
	return (c & bits) != 0
}

// Unit returns the unit number field.
func (c Condition) Unit() int {
	return int(c & UNIT)
}

func (c Condition) String() string {
	if c == NO_SETUP {
		return "NO_SETUP"
	}

	var names []string
	for _, entry := range conditionName {
		if c.Has(entry.bits) {
			names = append(names, entry.name)
		}
	}
	names = append(names, fmt.Sprintf("UNIT=%d", c.Unit()))

	return strings.Join(names, "|")
}

// Access is the set of operations permitted on a physical unit.
type Access int

const (
	ACCESS_READ   = Access(1 << 0)
	ACCESS_WRITE  = Access(1 << 1)
	ACCESS_FORMAT = Access(1 << 2)

	ACCESS_MASK = ACCESS_READ | ACCESS_WRITE | ACCESS_FORMAT
)

func (a Access) String() string {
	text := []byte("---")
	if (a & ACCESS_READ) != 0 {
		text[0] = 'r'
	}
	if (a & ACCESS_WRITE) != 0 {
		text[1] = 'w'
	}
	if (a & ACCESS_FORMAT) != 0 {
		text[2] = 'f'
	}
	return string(text)
}

// ParseAccess parses an access mode in the 'rwf' form used by String.
// Dashes are ignored.
func ParseAccess(text string) (a Access, err error) {
	for _, c := range text {
		switch c {
		case 'r', 'R':
			a |= ACCESS_READ
		case 'w', 'W':
			a |= ACCESS_WRITE
		case 'f', 'F':
			a |= ACCESS_FORMAT
		case '-':
		default:
			err = fmt.Errorf("%w: %q", ErrAccessInvalid, text)
			return
		}
	}
	return
}
