package io

import (
	"errors"
	"log"

	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

// Device delays, in microseconds.
const (
	DELAY_PUNCH_CODE = 100000.0 // per card
	DELAY_PRINT_CODE = 50000.0  // per printed value
	DELAY_DRUM       = 40000.0  // per transfer
	DELAY_DRUM_RATE  = 6400.0   // codes per microsecond of drum delay
	DELAY_TAPE       = 75000.0  // per transfer or format
	DELAY_TAPE_RATE  = 2500.0   // codes per microsecond of tape delay
)

// Dispatcher routes the latched condition word of the I/O setup
// instruction to a device when the I/O exec instruction runs.
type Dispatcher struct {
	Verbose bool

	Drums   *DrumStore
	Tapes   *TapeStore
	Printer Printer // nil if no printer is ready
	Punch   Punch   // nil if no punch is ready

	Condition Condition // Latched condition word, NO_SETUP if none.
	Zone      int       // Latched device address.
	End       int       // Latched last memory address.
}

// NewDispatcher returns a dispatcher with the default drums and tapes,
// and no printer or punch.
func NewDispatcher() (d *Dispatcher) {
	d = &Dispatcher{
		Drums: NewDrumStore(),
		Tapes: NewTapeStore(),
	}
	d.Reset()
	return
}

// Reset drops the latched setup.
func (d *Dispatcher) Reset() {
	d.Condition = NO_SETUP
	d.Zone = 0
	d.End = 0
}

// Latched returns true if a setup is latched.
func (d *Dispatcher) Latched() bool {
	return d.Condition != NO_SETUP
}

// Close detaches all drum and tape units.
func (d *Dispatcher) Close() (err error) {
	err = errors.Join(d.Drums.Close(), d.Tapes.Close())
	return
}

// Setup validates and latches a condition word, device address and last
// memory address. A rejected setup leaves the previous one latched.
func (d *Dispatcher) Setup(op int, zone int, end int) (err error) {
	cond := Condition(op) & CONDITION_MASK

	const (
		storage = DRUM | TAPE | TAPE_FORMAT
		output  = PRINT | PUNCH
	)

	switch {
	case cond.Has(PUNCH) && (cond&storage) != 0:
		err = stop.PUNCH_BAD_BITS
	case cond.Has(PRINT) && (cond&storage) != 0:
		err = stop.PRINT_BAD_BITS
	case cond.Has(DRUM) && (cond&(TAPE|TAPE_FORMAT|output)) != 0:
		err = stop.DRUM_BAD_BITS
	case cond.Has(TAPE) && (cond&(DRUM|TAPE_FORMAT|output)) != 0:
		err = stop.TAPE_BAD_BITS
	case cond.Has(TAPE_FORMAT) && (cond&(DRUM|TAPE|output)) != 0:
		err = stop.TAPE_FORMAT_BAD_BITS
	}
	if err != nil {
		return
	}

	if d.Verbose {
		log.Printf("io: setup %v zone %04o end %04o", cond, zone, end)
	}

	d.Condition = cond
	d.Zone = zone
	d.End = end

	return
}

// Exec runs the latched setup with a first memory address, returning the
// checksum of the transfer and its delay in microseconds.
func (d *Dispatcher) Exec(mem Memory, start int) (sum word.Word, delay float64, err error) {
	if !d.Latched() {
		err = stop.MISSING_IO_SETUP
		return
	}

	req := Request{
		Condition: d.Condition,
		Zone:      d.Zone,
		Start:     start,
		End:       d.End,
	}

	if d.Verbose {
		log.Printf("io: exec %v zone %04o memory %04o-%04o", req.Condition, req.Zone, req.Start, req.End)
	}

	var codes int
	cond := req.Condition

	punch := cond.Has(PUNCH)
	if punch && cond.Has(PRINT) {
		if d.Punch == nil && d.Printer == nil {
			err = stop.NOT_READY_PUNCH
			return
		}
		req.BufferOnly = true
		punch = d.Punch != nil
	}

	switch {
	case punch:
		if d.Punch == nil {
			err = stop.NOT_READY_PUNCH
			return
		}
		codes, sum, err = d.Punch.Punch(mem, req)
		delay = DELAY_PUNCH_CODE * float64(codes)
	case cond.Has(PRINT):
		if d.Printer == nil {
			err = stop.NOT_READY_PRINT
			return
		}
		codes, err = d.Printer.Print(mem, req)
		delay = DELAY_PRINT_CODE * float64(codes)
	case cond.Has(DRUM):
		codes, sum, err = d.Drums.Transfer(mem, req)
		delay = DELAY_DRUM + float64(codes)/DELAY_DRUM_RATE
	case cond.Has(TAPE):
		codes, sum, err = d.Tapes.Transfer(mem, req)
		delay = DELAY_TAPE + float64(codes)/DELAY_TAPE_RATE
	case cond.Has(TAPE_FORMAT):
		codes, sum, err = d.Tapes.Format(mem, req)
		delay = DELAY_TAPE + float64(codes)/DELAY_TAPE_RATE
	}

	if d.Verbose && err != nil {
		log.Printf("io: exec %v: %v", cond, err)
	}

	return
}
