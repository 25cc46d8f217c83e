package cpu

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ezrec/m20/word"
)

// parseOctal parses the leading octal number of a directive.
func parseOctal(text string) (value int, err error) {
	text = strings.TrimSpace(text)
	end := strings.IndexAny(text, " \t;")
	if end >= 0 {
		text = text[:end]
	}

	v, err := strconv.ParseUint(text, 8, 32)
	if err != nil {
		err = fmt.Errorf("%w: %q", ErrProgramFormat, text)
		return
	}

	value = int(v)
	return
}

// Load reads a program into memory.
//
// Each line of the program text is one of:
//
//	; comment
//	* comment
//	:0100             set the load address (octal)
//	@0100             set the start address (octal)
//	<word>            store a word at the load address, and advance it
//
// Words use the program syntax of word.Parse. The load address and KRA
// both start at 1.
func (cpu *Cpu) Load(input io.Reader) (err error) {
	addr := 1
	cpu.KRA = 1

	scanner := bufio.NewScanner(input)
	lineno := 0
	for scanner.Scan() {
		line := scanner.Text()
		lineno++

		text := strings.TrimLeft(line, " \t")
		if len(text) == 0 {
			continue
		}

		var value int
		switch text[0] {
		case ';', '*', '\r':
			continue
		case ':':
			value, err = parseOctal(text[1:])
			addr = value
		case '@':
			value, err = parseOctal(text[1:])
			cpu.KRA = value
		default:
			var w word.Word
			w, _, err = word.Parse(text, word.SYNTAX_PROGRAM)
			if err == nil {
				cpu.Memory.Store(addr, w)
				addr++
			}
		}

		if err == nil && (addr < 0 || addr >= MEMORY_SIZE) {
			err = fmt.Errorf("%w: %04o", ErrProgramAddress, addr)
		}
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
			return
		}
	}

	err = scanner.Err()
	return
}

// Dump writes the nonzero words of memory in the program text format,
// as runs of 'tags opcode a1 a2 a3' words after their load address.
func (cpu *Cpu) Dump(output io.Writer, name string) (err error) {
	_, err = fmt.Fprintf(output, "; %s\n", name)
	if err != nil {
		return
	}

	last := -1
	for addr := 1; addr < MEMORY_SIZE; addr++ {
		value := cpu.Memory.Load(addr)
		if value == 0 {
			continue
		}
		if addr != last+1 {
			_, err = fmt.Fprintf(output, "\n:%04o\n", addr)
			if err != nil {
				return
			}
		}
		last = addr
		_, err = fmt.Fprintf(output, "%v\n", value.Fields())
		if err != nil {
			return
		}
	}

	return
}
