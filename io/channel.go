// Package io provides the external devices of the M-20 emulator.
// It includes the condition word dispatcher, the magnetic drum and tape
// block stores backed by host files, and the line printer, card punch and
// card reader collaborators.
package io

import (
	"github.com/ezrec/m20/word"
)

// Memory is the CPU-addressable store seen by the devices.
type Memory interface {
	// Load returns the word at an address.
	Load(addr int) word.Word
	// Store writes a word to an address.
	Store(addr int, value word.Word)
}

// Request is one external device transfer, built from the latched setup
// and the start address given to the exec instruction.
type Request struct {
	Condition  Condition // Latched condition word.
	Zone       int       // Device address: drum word, tape zone, buffer position.
	Start      int       // First memory address.
	End        int       // Last memory address.
	BufferOnly bool      // Print and punch only fill the output buffer.
}

// Write returns true for a memory to device transfer.
func (req Request) Write() bool {
	return req.Condition.Has(WRITE)
}

// NoMemory returns true if memory access is blocked; zeros are
// transferred instead.
func (req Request) NoMemory() bool {
	return req.Condition.Has(DIS_RAM)
}

// NoCheck returns true if checksum verification is blocked.
func (req Request) NoCheck() bool {
	return req.Condition.Has(DIS_CHECK)
}

// Unit returns the logical unit number.
func (req Request) Unit() int {
	return req.Condition.Unit()
}

// span applies the auto-skip of address zero, and returns the first
// address and word count.
func (req Request) span(skipZero bool) (first, count int) {
	first = req.Start
	if skipZero && first == 0 && req.End > 0 {
		first++
	}
	count = req.End - first + 1
	return
}
