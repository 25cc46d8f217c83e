package emulator

import (
	"errors"
	"strconv"

	"github.com/ezrec/m20/translate"
)

var f = translate.From

var (
	ErrPanelInvalid = errors.New(f("panel register invalid"))
	ErrWordRange    = errors.New(f("word out of range"))
	ErrWordType     = errors.New(f("word type invalid"))
	ErrWidthInvalid = errors.New(f("printer width invalid"))
)

// ErrRuntime indicates the machine time of a runtime stop.
type ErrRuntime struct {
	Time float64 // Instruction time, in microseconds.
	Err  error
}

func (err *ErrRuntime) Error() string {
	return f("%v\ntime %v us", err.Err, strconv.FormatFloat(err.Time, 'f', 2, 64))
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrConfig indicates a failure of a configuration script.
type ErrConfig struct {
	Script string
	Err    error
}

func (err *ErrConfig) Error() string {
	return f("%v: %v", err.Script, err.Err)
}

func (err *ErrConfig) Unwrap() error {
	return err.Err
}
