package io

import (
	"errors"
	"fmt"
	"iter"
	"log"

	"github.com/ezrec/m20/stop"
)

// Unit is one physical drum or tape unit.
type Unit struct {
	Path   string // Name of the attached backing file.
	Access Access // Operations permitted on the unit.

	file File
}

// Attached returns true if the unit has a backing file.
func (unit *Unit) Attached() bool {
	return unit.file != nil
}

// Depot is a set of physical units, addressed by programs through a
// logical to physical unit map.
type Depot struct {
	Verbose  bool   // Set to enable verbose logging.
	Device   string // Device class, for messages.
	MapCheck bool   // Require the map to be one to one.

	First int     // Lowest physical unit number.
	Units []*Unit // Physical units, indexed by number less First.
	Map   []int   // Physical unit number of each logical unit.

	mapError stop.Code
}

func newDepot(device string, first int, units int, logical int, access Access, mapError stop.Code) (depot Depot) {
	depot = Depot{
		Device:   device,
		MapCheck: true,
		First:    first,
		Units:    make([]*Unit, units),
		Map:      make([]int, logical),
		mapError: mapError,
	}

	for n := range depot.Units {
		depot.Units[n] = &Unit{Access: access}
	}

	for n := range depot.Map {
		depot.Map[n] = n
	}

	return
}

// Unit returns a physical unit.
func (depot *Depot) Unit(physical int) (unit *Unit, err error) {
	index := physical - depot.First
	if index < 0 || index >= len(depot.Units) {
		err = fmt.Errorf("%w: %v %d", ErrUnitInvalid, depot.Device, physical)
		return
	}

	unit = depot.Units[index]
	return
}

// All iterates over the physical units by number.
func (depot *Depot) All() iter.Seq2[int, *Unit] {
	return func(yield func(int, *Unit) bool) {
		for index, unit := range depot.Units {
			if !yield(depot.First+index, unit) {
				return
			}
		}
	}
}

// Attach opens, or creates, the backing file of a physical unit.
func (depot *Depot) Attach(physical int, path string) (err error) {
	unit, err := depot.Unit(physical)
	if err != nil {
		return
	}

	if unit.Attached() {
		err = fmt.Errorf("%w: %v %d", ErrUnitAttached, depot.Device, physical)
		return
	}

	file, err := OpenFile(path)
	if err != nil {
		err = ErrUnit{Device: depot.Device, Unit: physical, Err: err}
		return
	}

	err = depot.AttachFile(physical, path, file)

	return
}

// AttachFile binds an open file to a physical unit, replacing any
// existing binding without closing it.
func (depot *Depot) AttachFile(physical int, path string, file File) (err error) {
	unit, err := depot.Unit(physical)
	if err != nil {
		return
	}

	if depot.Verbose {
		log.Printf("%v: attach %d %v", depot.Device, physical, path)
	}

	unit.Path = path
	unit.file = file

	return
}

// Detach closes the backing file of a physical unit.
func (depot *Depot) Detach(physical int) (err error) {
	unit, err := depot.Unit(physical)
	if err != nil {
		return
	}

	if !unit.Attached() {
		return
	}

	if depot.Verbose {
		log.Printf("%v: detach %d %v", depot.Device, physical, unit.Path)
	}

	err = unit.file.Close()
	if err != nil {
		err = ErrUnit{Device: depot.Device, Unit: physical, Err: err}
	}

	unit.file = nil
	unit.Path = ""

	return
}

// Close detaches all units.
func (depot *Depot) Close() (err error) {
	for physical := range depot.All() {
		err = errors.Join(err, depot.Detach(physical))
	}
	return
}

// SetMap assigns a physical unit number to a logical unit.
// The physical number is validated on access.
func (depot *Depot) SetMap(logical int, physical int) (err error) {
	if logical < 0 || logical >= len(depot.Map) {
		err = fmt.Errorf("%w: logical %v %d", ErrUnitInvalid, depot.Device, logical)
		return
	}

	depot.Map[logical] = physical
	return
}

// SetAccess sets the permitted operations of a physical unit.
func (depot *Depot) SetAccess(physical int, access Access) (err error) {
	unit, err := depot.Unit(physical)
	if err != nil {
		return
	}

	if (access &^ ACCESS_MASK) != 0 {
		err = fmt.Errorf("%w: %d", ErrAccessInvalid, int(access))
		return
	}

	unit.Access = access
	return
}

// resolve maps a logical unit to its physical unit, checking the map.
func (depot *Depot) resolve(logical int) (physical int, unit *Unit, err error) {
	if logical < 0 || logical >= len(depot.Map) {
		err = stop.EXTERNAL_INVALID
		return
	}

	physical = depot.Map[logical]
	index := physical - depot.First
	if index < 0 || index >= len(depot.Units) {
		err = stop.EXTERNAL_INVALID
		return
	}

	if depot.MapCheck {
		for i, target := range depot.Map {
			for _, other := range depot.Map[i+1:] {
				if target == other {
					if depot.Verbose {
						log.Printf("%v: logical units map to %d", depot.Device, target)
					}
					err = depot.mapError
					return
				}
			}
		}
	}

	unit = depot.Units[index]
	return
}

// failed wraps a host I/O error of a physical unit.
func (depot *Depot) failed(physical int, err error) error {
	return ErrUnit{Device: depot.Device, Unit: physical, Err: err}
}
