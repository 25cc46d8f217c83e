package io

import (
	"errors"
	"fmt"
	"io"

	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

// Printer is the line printer collaborator.
type Printer interface {
	// Print outputs the request's memory range, returning the number of
	// codes printed.
	Print(mem Memory, req Request) (codes int, err error)
}

// PRINT_WIDTH is the default number of values per printed line.
const PRINT_WIDTH = 7

// LinePrinter prints words as octal codes, or as decimal reals,
// accumulating them in the output buffer until a request which is not
// buffer-only.
type LinePrinter struct {
	Output io.Writer // Printed text.
	Width  int       // Values per line, PRINT_WIDTH if zero.
	Buffer *Ring     // Output buffer, shared with the card punch.

	sum word.Word
}

var _ Printer = (*LinePrinter)(nil)

func (lp *LinePrinter) buffer() *Ring {
	if lp.Buffer == nil {
		lp.Buffer = &Ring{}
		lp.Buffer.Rewind()
	}
	return lp.Buffer
}

// Print implements Printer. A request with DIS_STOP prints octal.
func (lp *LinePrinter) Print(mem Memory, req Request) (codes int, err error) {
	if lp.Output == nil {
		err = stop.NOT_READY_PRINT
		return
	}

	ring := lp.buffer()

	if req.Zone > 0 {
		if ring.Seek(req.Zone) != nil {
			err = stop.INVALID_ARGUMENT
			return
		}
	}

	if req.Start > req.End {
		err = stop.INVALID_ARGUMENT
		return
	}

	for addr := req.Start; addr <= req.End; addr++ {
		var value word.Word
		if !req.NoMemory() {
			value = mem.Load(addr)
		}
		lp.sum = word.Checksum(lp.sum, value)
		ring.Send(MARK_COMMON, value)
	}

	if req.BufferOnly {
		return
	}

	if !req.NoCheck() {
		ring.Send(MARK_CHECKSUM, lp.sum)
	}
	ring.Send(MARK_END, 0)

	width := lp.Width
	if width <= 0 {
		width = PRINT_WIDTH
	}

	octal := req.Condition.Has(DIS_STOP)

	column := 0
	for mark, value := range ring.Receive() {
		if (mark & (MARK_COMMON | MARK_CHECKSUM)) == 0 {
			continue
		}

		var text string
		if octal {
			text = fmt.Sprintf("%015o", uint64(value&word.WORD45))
		} else {
			tag := ' '
			if value.Tag() {
				tag = '#'
			}
			text = fmt.Sprintf("%c%13e", tag, value.Float())
		}

		column++
		separator := " "
		if column >= width {
			separator = "\n"
			column = 0
		}

		_, err = fmt.Fprint(lp.Output, text, separator)
		if err != nil {
			err = errors.Join(stop.WRITE_ERROR, err)
			return
		}
		codes++
	}

	if column != 0 {
		_, err = fmt.Fprintln(lp.Output)
		if err != nil {
			err = errors.Join(stop.WRITE_ERROR, err)
			return
		}
	}

	lp.sum = 0
	ring.Rewind()

	return
}
