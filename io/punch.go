package io

import (
	"errors"
	"fmt"
	"io"

	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

// Punch is the card punch collaborator.
type Punch interface {
	// Punch outputs the request's memory range as cards, returning the
	// number of cards punched and the checksum of the deck.
	Punch(mem Memory, req Request) (codes int, sum word.Word, err error)
}

// CardPunch punches words as text cards which the card reader accepts:
//
//	<main marker>  <t oo aaaa aaaa aaaa>  <aux marker>
//
// Code cards have markers 1/0, address cards 0/1 and the checksum card
// ending a deck 1/1. Lines starting with ';' are comments.
type CardPunch struct {
	Output  io.Writer // Punched text.
	Address bool      // Punch an address card before each range.
	Buffer  *Ring     // Output buffer, shared with the line printer.

	sum word.Word
}

var _ Punch = (*CardPunch)(nil)

func (cp *CardPunch) buffer() *Ring {
	if cp.Buffer == nil {
		cp.Buffer = &Ring{}
		cp.Buffer.Rewind()
	}
	return cp.Buffer
}

func (cp *CardPunch) reset() {
	cp.sum = 0
	cp.Buffer.Rewind()
}

func card(main int, value word.Word, aux int) string {
	return fmt.Sprintf("%d  %o %02o %04o %04o %04o  %d\n",
		main, value.Tags(), value.Opcode(), value.A1(), value.A2(), value.A3(), aux)
}

// Punch implements Punch. A zone beyond the output buffer discards any
// buffered codes first.
func (cp *CardPunch) Punch(mem Memory, req Request) (codes int, sum word.Word, err error) {
	if cp.Output == nil {
		err = stop.NOT_READY_PUNCH
		return
	}

	ring := cp.buffer()

	if req.Zone >= ring.Capacity {
		cp.reset()
	}

	if cp.Address {
		address := word.Word(req.Start&word.ADDR_MASK) << 24
		cp.sum = word.Checksum(cp.sum, address)
		ring.Send(MARK_ADDRESS, address)
	}

	for addr := req.Start; addr <= req.End; addr++ {
		var value word.Word
		if !req.NoMemory() {
			value = mem.Load(addr)
		}
		cp.sum = word.Checksum(cp.sum, value)
		ring.Send(MARK_COMMON, value)
	}

	if req.BufferOnly {
		return
	}

	ring.Send(MARK_END, 0)

	output := func(text string) bool {
		_, err = io.WriteString(cp.Output, text)
		if err != nil {
			err = errors.Join(stop.WRITE_ERROR, err)
			return false
		}
		return true
	}

	section := false
	for mark, value := range ring.Receive() {
		switch {
		case (mark & MARK_ADDRESS) != 0:
			if !output("\n; address code\n") || !output(card(0, word.Word(value.A1())<<24, 1)) {
				return
			}
			section = false
		case (mark & MARK_COMMON) != 0:
			if !section {
				section = true
				if !output("\n; common codes section\n") {
					return
				}
			}
			if !output(card(1, value, 0)) {
				return
			}
		default:
			continue
		}
		codes++
	}

	if !req.NoCheck() {
		if !output("\n; end-of-input marker and checksum\n") || !output(card(1, cp.sum, 1)+"\n") {
			return
		}
		codes++
	}

	if !req.NoMemory() {
		sum = cp.sum
	}

	cp.reset()

	return
}
