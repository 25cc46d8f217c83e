package cpu

import (
	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

const (
	MEMORY_SIZE = 4096 // Words of core memory.

	// Base of the panel register window visible in mode II.
	PANEL_WINDOW = 07770
)

// Memory is the core memory (MOSU).
//
// In mode II the last eight words are replaced by a read-only window
// onto the panel registers:
//
//	07770  0
//	07771  RPU1
//	07772  RPU2
//	07773  RPU3
//	07774  RPU4
//	07775  RR
//	07776  0
//	07777  0
type Memory struct {
	ModeII bool                   // Enables the panel register window.
	Panel  [4]word.Word           // Panel registers RPU1 to RPU4.
	Words  [MEMORY_SIZE]word.Word // Stored words.

	result *word.Word // Result register shown in the window.
}

// inWindow returns true if the address is shadowed by the panel window.
func (mem *Memory) inWindow(addr int) bool {
	return mem.ModeII && addr >= PANEL_WINDOW
}

// Load returns the word at an address, masked to 12 bits.
func (mem *Memory) Load(addr int) (value word.Word) {
	addr &= word.ADDR_MASK

	if !mem.inWindow(addr) {
		value = mem.Words[addr]
		return
	}

	switch addr - PANEL_WINDOW {
	case 1, 2, 3, 4:
		value = mem.Panel[addr-PANEL_WINDOW-1]
	case 5:
		if mem.result != nil {
			value = *mem.result
		}
	}

	return
}

// Store writes a word to an address, masked to 12 bits.
// Writes to address zero are dropped. A write to the panel window stores
// the value the window shows into the word underneath.
func (mem *Memory) Store(addr int, value word.Word) {
	addr &= word.ADDR_MASK
	if addr == 0 {
		return
	}

	if mem.inWindow(addr) {
		value = mem.Load(addr)
	}

	mem.Words[addr] = value
}

// Examine returns the word at an address, as seen by the CPU.
func (mem *Memory) Examine(addr int) (value word.Word, err error) {
	if addr < 0 || addr >= MEMORY_SIZE {
		err = stop.INVALID_ARGUMENT
		return
	}

	value = mem.Load(addr)
	return
}

// Deposit writes a word from outside the CPU.
func (mem *Memory) Deposit(addr int, value word.Word) (err error) {
	if addr < 0 || addr >= MEMORY_SIZE {
		err = stop.INVALID_ARGUMENT
		return
	}

	if addr == 0 || mem.inWindow(addr) {
		err = stop.WRITE_TO_READ_ONLY
		return
	}

	mem.Words[addr] = value
	return
}

// Clear zeros all of memory. The panel registers are kept.
func (mem *Memory) Clear() {
	clear(mem.Words[:])
}
