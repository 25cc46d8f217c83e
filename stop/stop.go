// Package stop defines the machine stop codes.
//
// Every instruction, arithmetic operation and peripheral transfer either
// succeeds or reports exactly one stop code. Codes are plain errors, so they
// can be layered with errors.Join and matched with errors.Is.
package stop

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ezrec/m20/translate"
)

var f = translate.From

// Code is a machine stop condition.
type Code int

const (
	STOP                       = Code(iota + 1) // stop instruction
	BREAKPOINT                                  // instruction breakpoint
	RUNOUT                                      // ran out of memory
	BAD_COMMAND                                 // invalid instruction
	ADDITION_OVERFLOW
	EXPONENT_OVERFLOW
	MULTIPLICATION_OVERFLOW
	DIVISION_OVERFLOW
	DIVISION_MANTISSA_OVERFLOW
	DIVISION_BY_ZERO
	NEGATIVE_SQRT
	SQRT_ERROR
	READ_ERROR                                  // drum checksum mismatch
	BAD_READ_LENGTH                             // drum
	BAD_WRITE_LENGTH                            // drum
	WRITE_ERROR                                 // drum
	DRUM_INVALID
	DRUM_INVALID_DATA
	TAPE_INVALID
	TAPE_FORMAT_INVALID
	TAPE_UNSUPPORTED
	TAPE_FORMAT_UNSUPPORTED
	PUNCH_UNSUPPORTED
	CARD_PUNCH_READER_UNSUPPORTED
	EXTERNAL_INVALID                            // invalid control word
	INVALID_ARGUMENT
	ASSERT                                      // compare with stop mismatch
	MB_INVALID
	EXTERNAL_IO_UNSUPPORTED
	NO_CARDS
	CARD_READER_INVALID
	CARD_READER_FORMAT_INVALID
	CARD_READER_BAD_SUM
	MISSING_IO_SETUP
	DRUM_UNSUPPORTED
	PRINT_UNSUPPORTED
	PUNCH_BAD_BITS
	PRINT_BAD_BITS
	TAPE_BAD_BITS
	DRUM_BAD_BITS
	TAPE_FORMAT_BAD_BITS
	TAPE_BAD_READ_LENGTH
	TAPE_BAD_WRITE_LENGTH
	TAPE_BAD_FORMAT_LENGTH
	TAPE_INVALID_ZONE
	END_OF_TAPE
	TAPE_INVALID_DATA                           // truncated zone
	NO_TAPE_ZONE
	TAPE_LARGE_DATA
	TAPE_USER_SMALL_BUFFER
	TAPE_READ_ERROR                             // tape checksum mismatch
	WRITE_TO_READ_ONLY
	NOT_READY_PUNCH
	NOT_READY_PRINT
	CARD_READ_OUT_OF_MEMORY
	MEMORY_GARBAGE
	DRUM_NOT_IN_WRITE_MODE
	DRUM_NOT_IN_READ_MODE
	DRUM_MAP_ERROR
	TAPE_NOT_IN_FORMAT_MODE
	TAPE_NOT_IN_WRITE_MODE
	TAPE_NOT_IN_READ_MODE
	TAPE_MAP_ERROR
	UNATTACHED                                  // unit has no backing file
)

var messages = map[Code]string{
	STOP:                          "STOP",
	BREAKPOINT:                    "Breakpoint",
	RUNOUT:                        "Run out end of memory",
	BAD_COMMAND:                   "Invalid instruction",
	ADDITION_OVERFLOW:             "Addition overflow",
	EXPONENT_OVERFLOW:             "Exponent overflow",
	MULTIPLICATION_OVERFLOW:       "Multiplication overflow",
	DIVISION_OVERFLOW:             "Division overflow",
	DIVISION_MANTISSA_OVERFLOW:    "Division mantissa overflow",
	DIVISION_BY_ZERO:              "Division by zero",
	NEGATIVE_SQRT:                 "SQRT from negative number",
	SQRT_ERROR:                    "SQRT error",
	READ_ERROR:                    "Drum read error",
	BAD_READ_LENGTH:               "Invalid drum read length",
	BAD_WRITE_LENGTH:              "Invalid drum write length",
	WRITE_ERROR:                   "Drum write error",
	DRUM_INVALID:                  "Invalid drum control word",
	DRUM_INVALID_DATA:             "Reading uninitialized drum data",
	TAPE_INVALID:                  "Invalid tape control word",
	TAPE_FORMAT_INVALID:           "Invalid tape format word",
	TAPE_UNSUPPORTED:              "Tape not implemented",
	TAPE_FORMAT_UNSUPPORTED:       "Tape formatting not implemented",
	PUNCH_UNSUPPORTED:             "Punch not implemented",
	CARD_PUNCH_READER_UNSUPPORTED: "Punch reader not implemented",
	EXTERNAL_INVALID:              "Invalid control word",
	INVALID_ARGUMENT:              "Invalid argument of instruction",
	ASSERT:                        "Assertion failed",
	MB_INVALID:                    "MB instruction without MA",
	EXTERNAL_IO_UNSUPPORTED:       "External devices i/o not implemented",
	NO_CARDS:                      "Card reader empty",
	CARD_READER_INVALID:           "CR instruction without CA",
	CARD_READER_FORMAT_INVALID:    "invalid card reader format word",
	CARD_READER_BAD_SUM:           "card reader mismatch cyclic sum",
	MISSING_IO_SETUP:              "i/o setup was missing",
	DRUM_UNSUPPORTED:              "drum not implemented",
	PRINT_UNSUPPORTED:             "print not implemented",
	PUNCH_BAD_BITS:                "output to punch has wrong control word",
	PRINT_BAD_BITS:                "output to printer has wrong control word",
	TAPE_BAD_BITS:                 "tape i/o has wrong control word",
	DRUM_BAD_BITS:                 "drum i/o has wrong control word",
	TAPE_FORMAT_BAD_BITS:          "tape format has wrong control word",
	TAPE_BAD_READ_LENGTH:          "Invalid tape read length",
	TAPE_BAD_WRITE_LENGTH:         "Invalid tape write length",
	TAPE_BAD_FORMAT_LENGTH:        "Invalid tape format length",
	TAPE_INVALID_ZONE:             "Invalid tape zone number",
	END_OF_TAPE:                   "end of tape detected",
	TAPE_INVALID_DATA:             "reading uninitialized tape data",
	NO_TAPE_ZONE:                  "matching tape zone not found",
	TAPE_LARGE_DATA:               "too large data for tape zone",
	TAPE_USER_SMALL_BUFFER:        "too small user buffer for data from tape zone",
	TAPE_READ_ERROR:               "tape read error",
	WRITE_TO_READ_ONLY:            "writing attempt to read-only memory location",
	NOT_READY_PUNCH:               "not ready punch",
	NOT_READY_PRINT:               "not ready print",
	CARD_READ_OUT_OF_MEMORY:       "card read out of memory",
	MEMORY_GARBAGE:                "detected memory garbage per memory location",
	DRUM_NOT_IN_WRITE_MODE:        "drum not in write mode",
	DRUM_NOT_IN_READ_MODE:         "drum not in read mode",
	DRUM_MAP_ERROR:                "one more logical drums mapped to one physical drum",
	TAPE_NOT_IN_FORMAT_MODE:       "tape not in format mode",
	TAPE_NOT_IN_WRITE_MODE:        "tape not in write mode",
	TAPE_NOT_IN_READ_MODE:         "tape not in read mode",
	TAPE_MAP_ERROR:                "one more logical tapes mapped to one physical tape",
	UNATTACHED:                    "unit not attached",
}

// Error returns the localized stop message.
func (code Code) Error() string {
	msg, ok := messages[code]
	if !ok {
		return f("Unknown error %v", strconv.Itoa(int(code)))
	}
	return f(msg)
}

// String returns the stop message with its numeric code.
func (code Code) String() string {
	return fmt.Sprintf("%v (%d)", code.Error(), int(code))
}

// From extracts the stop code carried by an error chain.
func From(err error) (code Code, ok bool) {
	ok = errors.As(err, &code)
	return
}
