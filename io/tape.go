package io

import (
	"iter"
	"log"

	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

const (
	TAPE_SIZE          = 75000 // words per tape file
	TAPE_UNITS         = 4     // physical tapes, numbered from 0
	TAPE_LOGICAL_UNITS = 4     // logical tape numbers
	TAPE_ZONE_SIZE_MIN = 1     // smallest zone, in words
	TAPE_ZONE_SIZE_MAX = 4095  // largest zone, in words
	TAPE_ZONE_MAX      = 255   // largest zone number

	zoneNumberMask = 0xFFFFFFF
	zoneSizeShift  = 32
)

// Zone is one zone of a tape file: a header word holding the size and
// number, the data words, and a trailing checksum word.
type Zone struct {
	Number   int         // Zone number.
	Offset   int64       // Word offset of the header in the file.
	Data     []word.Word // Zone data.
	Checksum word.Word   // Stored checksum.
}

// Codes returns the number of words the zone occupies on tape.
func (zone *Zone) Codes() int {
	return len(zone.Data) + 2
}

// next returns the word offset of the following zone.
func (zone *Zone) next() int64 {
	return zone.Offset + int64(zone.Codes())
}

func makeZoneHeader(number int, size int) word.Word {
	return word.Word(size)<<zoneSizeShift | word.Word(number)
}

// readZone decodes the zone at a word offset.
func readZone(file File, offset int64) (zone *Zone, err error) {
	var header [1]word.Word
	n, err := readWords(file, offset, header[:])
	if err != nil {
		return
	}
	if n != 1 {
		err = stop.TAPE_INVALID_DATA
		return
	}

	size := int(header[0] >> zoneSizeShift)
	if size > TAPE_ZONE_SIZE_MAX {
		err = stop.TAPE_BAD_READ_LENGTH
		return
	}

	data := make([]word.Word, size+1)
	n, err = readWords(file, offset+1, data)
	if err != nil {
		return
	}
	if n != len(data) {
		err = stop.TAPE_INVALID_DATA
		return
	}

	zone = &Zone{
		Number:   int(header[0] & zoneNumberMask),
		Offset:   offset,
		Data:     data[:size],
		Checksum: data[size],
	}

	return
}

// Zones iterates over the zones of a tape file, from the start.
// Iteration ends at the end of the file, or after the first error.
func Zones(file File) iter.Seq2[*Zone, error] {
	return func(yield func(*Zone, error) bool) {
		length, err := fileWords(file)
		if err != nil {
			yield(nil, err)
			return
		}

		for offset := int64(0); offset < length; {
			zone, err := readZone(file, offset)
			if !yield(zone, err) || err != nil {
				return
			}
			offset = zone.next()
		}
	}
}

// TapeStore is the set of magnetic tapes. Each tape is a sequential file
// of zones.
type TapeStore struct {
	Depot
	AutoSkipZero bool // Never transfer memory address 0 as the first word.
}

// NewTapeStore returns the tapes with the default map and full access.
func NewTapeStore() (ts *TapeStore) {
	ts = &TapeStore{
		Depot:        newDepot("tape", 0, TAPE_UNITS, TAPE_LOGICAL_UNITS, ACCESS_MASK, stop.TAPE_MAP_ERROR),
		AutoSkipZero: true,
	}
	return
}

// Transfer reads or writes one zone, returning the number of words
// passed over and the cyclic checksum of the data.
func (ts *TapeStore) Transfer(mem Memory, req Request) (codes int, sum word.Word, err error) {
	physical, unit, err := ts.resolve(req.Unit())
	if err != nil {
		return
	}

	// Any access requires read mode.
	if req.Write() && (unit.Access&ACCESS_WRITE) == 0 {
		err = stop.TAPE_NOT_IN_WRITE_MODE
		return
	} else if (unit.Access & ACCESS_READ) == 0 {
		err = stop.TAPE_NOT_IN_READ_MODE
		return
	}

	if !unit.Attached() {
		err = stop.UNATTACHED
		return
	}

	if ts.Verbose {
		log.Printf("tape: %d %v zone %d memory %04o-%04o", physical, req.Condition, req.Zone, req.Start, req.End)
	}

	if req.Zone < 0 || req.Zone > TAPE_ZONE_MAX {
		err = stop.TAPE_INVALID_ZONE
		return
	}

	first, count := req.span(ts.AutoSkipZero)
	if count < TAPE_ZONE_SIZE_MIN || count > TAPE_ZONE_SIZE_MAX {
		err = stop.TAPE_BAD_WRITE_LENGTH
		return
	}

	scanned := false
	for zone, zerr := range Zones(unit.file) {
		if zerr != nil {
			if _, ok := stop.From(zerr); !ok {
				zerr = ts.failed(physical, zerr)
			}
			err = zerr
			return
		}

		if zone.Number == req.Zone {
			if req.Write() {
				codes, sum, err = ts.write(physical, unit.file, mem, req, zone, first, count)
			} else {
				codes, sum, err = ts.read(physical, mem, req, zone, first, count)
			}
			codes += int(zone.Offset)
			return
		}

		// Zones are in ascending order.
		if zone.Number > req.Zone {
			err = stop.NO_TAPE_ZONE
			return
		}

		scanned = true
	}

	// Only a tape without zones runs out. A tape whose zones all number
	// below the requested one reports NO_TAPE_ZONE, not END_OF_TAPE.
	if scanned {
		err = stop.NO_TAPE_ZONE
	} else {
		err = stop.END_OF_TAPE
	}
	return
}

func (ts *TapeStore) write(physical int, file File, mem Memory, req Request, zone *Zone, first int, count int) (codes int, sum word.Word, err error) {
	if count > len(zone.Data) {
		err = stop.TAPE_LARGE_DATA
		return
	}

	data := make([]word.Word, count, count+1)
	if !req.NoMemory() {
		for i := range data {
			data[i] = mem.Load(first + i)
		}
	}

	sum = word.Sum(data)
	if !req.NoCheck() {
		data = append(data, sum)
	}

	err = writeWords(file, zone.Offset+1, data...)
	if err != nil {
		err = ts.failed(physical, err)
		return
	}

	codes = 1 + len(data)
	return
}

func (ts *TapeStore) read(physical int, mem Memory, req Request, zone *Zone, first int, count int) (codes int, sum word.Word, err error) {
	codes = zone.Codes()

	count = min(count, len(zone.Data))

	// A short read is verified against the checksum written after it.
	expected := zone.Checksum
	if count < len(zone.Data) {
		expected = zone.Data[count]
	}

	for i, value := range zone.Data[:count] {
		if !req.NoMemory() {
			mem.Store(first+i, value)
		}
	}

	sum = word.Sum(zone.Data[:count])

	if !req.NoCheck() && sum != expected {
		if ts.Verbose {
			log.Printf("tape: %d zone %d checksum %v, expected %v", physical, zone.Number, sum, expected)
		}
		err = stop.TAPE_READ_ERROR
		return
	}

	return
}

// Format appends a new zone to a tape, filled from memory. The data
// memory range sets the zone size.
func (ts *TapeStore) Format(mem Memory, req Request) (codes int, sum word.Word, err error) {
	physical, unit, err := ts.resolve(req.Unit())
	if err != nil {
		return
	}

	if (unit.Access & ACCESS_FORMAT) == 0 {
		err = stop.TAPE_NOT_IN_FORMAT_MODE
		return
	}

	if !unit.Attached() {
		err = stop.UNATTACHED
		return
	}

	first, count := req.span(ts.AutoSkipZero)
	if count < TAPE_ZONE_SIZE_MIN || count > TAPE_ZONE_SIZE_MAX {
		err = stop.TAPE_FORMAT_INVALID
		return
	}

	if req.Zone < 0 || req.Zone > TAPE_ZONE_MAX {
		err = stop.TAPE_FORMAT_INVALID
		return
	}

	end, err := fileWords(unit.file)
	if err != nil {
		err = ts.failed(physical, err)
		return
	}

	if end+int64(count)+2 > TAPE_SIZE {
		err = stop.TAPE_BAD_FORMAT_LENGTH
		return
	}

	if ts.Verbose {
		log.Printf("tape: %d format zone %d at %d, %d words", physical, req.Zone, end, count)
	}

	data := make([]word.Word, 0, count+2)
	data = append(data, makeZoneHeader(req.Zone, count))
	for i := range count {
		var value word.Word
		if !req.NoMemory() {
			value = mem.Load((first + i) & word.ADDR_MASK)
		}
		data = append(data, value)
	}
	sum = word.Sum(data[1:])
	data = append(data, sum)

	err = writeWords(unit.file, end, data...)
	if err != nil {
		err = ts.failed(physical, err)
		return
	}

	codes = len(data)
	return
}
