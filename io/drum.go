package io

import (
	"io"
	"log"

	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

const (
	DRUM_SIZE          = 4096 // words per drum
	DRUM_UNITS         = 3    // physical drums, numbered from 1
	DRUM_LOGICAL_UNITS = 4    // logical drum numbers
	DRUM_FIRST_UNIT    = 1    // lowest physical drum number
)

// DrumStore is the set of magnetic drums. Each drum is a random access
// file of DRUM_SIZE words.
type DrumStore struct {
	Depot
	AutoSkipZero bool // Never transfer memory address 0 as the first word.
}

// NewDrumStore returns the drums with the default map and read/write
// access.
func NewDrumStore() (ds *DrumStore) {
	ds = &DrumStore{
		Depot:        newDepot("drum", DRUM_FIRST_UNIT, DRUM_UNITS, DRUM_LOGICAL_UNITS, ACCESS_READ|ACCESS_WRITE, stop.DRUM_MAP_ERROR),
		AutoSkipZero: true,
	}
	return
}

// Transfer performs a drum request, returning the number of words moved
// and the cyclic checksum of the data.
func (ds *DrumStore) Transfer(mem Memory, req Request) (codes int, sum word.Word, err error) {
	physical, unit, err := ds.resolve(req.Unit())
	if err != nil {
		return
	}

	// Any access requires read mode.
	if req.Write() && (unit.Access&ACCESS_WRITE) == 0 {
		err = stop.DRUM_NOT_IN_WRITE_MODE
		return
	} else if (unit.Access & ACCESS_READ) == 0 {
		err = stop.DRUM_NOT_IN_READ_MODE
		return
	}

	if !unit.Attached() {
		err = stop.UNATTACHED
		return
	}

	if ds.Verbose {
		log.Printf("drum: %d %v zone %05o memory %04o-%04o", physical, req.Condition, req.Zone, req.Start, req.End)
	}

	if req.Write() {
		codes, sum, err = ds.write(physical, unit.file, mem, req)
	} else {
		codes, sum, err = ds.read(physical, unit.file, mem, req)
	}

	return
}

// length validates the transferred range against the drum size.
func (ds *DrumStore) length(req Request, bad stop.Code) (first, count int, err error) {
	first, count = req.span(ds.AutoSkipZero)

	extra := 1
	if req.NoCheck() {
		extra = 0
	}

	if count <= 0 || req.Zone+count+extra > DRUM_SIZE {
		err = bad
		return
	}

	return
}

func (ds *DrumStore) write(physical int, file File, mem Memory, req Request) (codes int, sum word.Word, err error) {
	first, count, err := ds.length(req, stop.BAD_WRITE_LENGTH)
	if err != nil {
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

	err = writeWords(file, int64(req.Zone), data...)
	if err != nil {
		err = ds.failed(physical, err)
		return
	}

	codes = len(data)
	return
}

func (ds *DrumStore) read(physical int, file File, mem Memory, req Request) (codes int, sum word.Word, err error) {
	first, count, err := ds.length(req, stop.BAD_READ_LENGTH)
	if err != nil {
		return
	}

	data := make([]word.Word, count+1)
	n, err := readWords(file, int64(req.Zone), data)
	if err != nil {
		err = ds.failed(physical, err)
		return
	}

	codes = min(n, count)
	if !req.NoMemory() {
		for i := range codes {
			mem.Store(first+i, data[i])
		}
	}

	// Uninitialized drum storage.
	if n < count {
		err = stop.DRUM_INVALID_DATA
		return
	}

	sum = word.Sum(data[:count])

	if n > count {
		codes++
	}

	if req.NoCheck() {
		return
	}

	// Data without its checksum word is a host I/O failure.
	if n == count {
		err = ds.failed(physical, io.ErrUnexpectedEOF)
		return
	}

	if data[count] != sum {
		if ds.Verbose {
			log.Printf("drum: %d checksum %v, expected %v", physical, sum, data[count])
		}
		err = stop.READ_ERROR
		return
	}

	return
}
