package io

import (
	"errors"
	"strconv"

	"github.com/ezrec/m20/translate"
)

var f = translate.From

var (
	// Configuration errors
	ErrAccessInvalid = errors.New(f("access mode invalid"))
	ErrUnitInvalid   = errors.New(f("unit number invalid"))
	ErrUnitAttached  = errors.New(f("unit already attached"))

	// Output buffer errors
	ErrRingRange = errors.New(f("buffer position out of range"))
)

// ErrUnit is a host I/O failure on a physical unit.
type ErrUnit struct {
	Device string // Device class, 'drum' or 'tape'.
	Unit   int    // Physical unit number.
	Err    error  // Cause.
}

func (err ErrUnit) Error() string {
	return f("%v %v: %v", err.Device, strconv.Itoa(err.Unit), err.Err)
}

func (err ErrUnit) Unwrap() error {
	return err.Err
}
