package io

import (
	"iter"

	"github.com/ezrec/m20/word"
)

const (
	// RING_DEFAULT_CAPACITY is the size in codes of the output buffer.
	RING_DEFAULT_CAPACITY = 512
)

// Mark classifies an output buffer entry. Marks live above the word bits.
type Mark uint64

const (
	MARK_ADDRESS  = Mark(1 << 63) // load address card
	MARK_COMMON   = Mark(1 << 62) // data word
	MARK_CHECKSUM = Mark(1 << 61) // checksum word
	MARK_END      = Mark(1 << 60) // end of buffered output

	MARK_MASK = MARK_ADDRESS | MARK_COMMON | MARK_CHECKSUM | MARK_END
)

// Ring is the output buffer shared by the line printer and the card punch.
// Codes are OR-ed into consecutive slots; the write position wraps.
type Ring struct {
	Capacity int

	WriteIndex int
	Data       []uint64
}

// Rewind clears the buffer and resets the write position.
func (ring *Ring) Rewind() {
	if ring.Capacity == 0 {
		ring.Capacity = RING_DEFAULT_CAPACITY
	}
	if len(ring.Data) != ring.Capacity {
		ring.Data = make([]uint64, ring.Capacity)
	} else {
		clear(ring.Data)
	}
	ring.WriteIndex = 0
}

// Seek moves the write position.
func (ring *Ring) Seek(index int) (err error) {
	if ring.Data == nil {
		ring.Rewind()
	}
	if index < 0 || index >= ring.Capacity {
		err = ErrRingRange
		return
	}
	ring.WriteIndex = index
	return
}

// Send adds a marked code at the write position.
func (ring *Ring) Send(mark Mark, value word.Word) {
	if ring.Data == nil {
		ring.Rewind()
	}

	ring.Data[ring.WriteIndex] |= uint64(mark) | uint64(value)

	ring.WriteIndex++
	if ring.WriteIndex >= ring.Capacity {
		ring.WriteIndex = 0
	}
}

// Receive iterates over the marked codes from the start of the buffer up
// to the end mark. Unmarked slots are skipped.
func (ring *Ring) Receive() iter.Seq2[Mark, word.Word] {
	return func(yield func(Mark, word.Word) bool) {
		for _, code := range ring.Data {
			mark := Mark(code) & MARK_MASK
			if (mark & MARK_END) != 0 {
				return
			}
			if mark == 0 {
				continue
			}
			if !yield(mark, word.Word(code&^uint64(MARK_MASK))) {
				return
			}
		}
	}
}
