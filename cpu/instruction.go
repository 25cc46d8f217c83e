package cpu

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ezrec/m20/word"
)

// formatAddress prints one address. Indexed addresses use the relative
// '@+nnnn' form, or '@-n' near the top of memory.
func formatAddress(addr int, indexed bool) string {
	if !indexed {
		return fmt.Sprintf("%04o", addr)
	}
	if addr >= 07700 {
		return fmt.Sprintf("@-%o", (addr^word.ADDR_MASK)+1)
	}
	return fmt.Sprintf("@+%04o", addr)
}

// Disassemble returns the symbolic form of an instruction:
//
//	[op=01 mod=0] add_rn                         0100, 0101, 0102
func Disassemble(w word.Word) string {
	tags := w.Tags()
	op := OpcodeOf(w)

	return fmt.Sprintf("[op=%02o mod=%o] %-30s %v, %v, %v",
		int(op), tags, op.String(),
		formatAddress(w.A1(), (tags&word.TAG_A1) != 0),
		formatAddress(w.A2(), (tags&word.TAG_A2) != 0),
		formatAddress(w.A3(), (tags&word.TAG_A3) != 0),
	)
}

// parseOffset parses a 12-bit octal number.
func parseOffset(text string) (value int, err error) {
	v, err := strconv.ParseUint(text, 8, 16)
	if err != nil {
		err = fmt.Errorf("%w: %q", ErrAddressSyntax, text)
		return
	}
	if v > word.ADDR_MASK {
		err = fmt.Errorf("%w: %q", ErrAddressRange, text)
		return
	}
	value = int(v)
	return
}

// parseAddress parses 'nnnn', '@+nnnn' or '@-n'.
func parseAddress(text string) (addr int, indexed bool, err error) {
	if !strings.HasPrefix(text, "@") {
		addr, err = parseOffset(text)
		return
	}

	indexed = true
	rest := strings.TrimSpace(text[1:])
	if len(rest) == 0 {
		err = fmt.Errorf("%w: %q", ErrAddressSyntax, text)
		return
	}

	switch rest[0] {
	case '+':
		addr, err = parseOffset(strings.TrimSpace(rest[1:]))
	case '-':
		addr, err = parseOffset(strings.TrimSpace(rest[1:]))
		addr = (-addr) & word.ADDR_MASK
	default:
		err = fmt.Errorf("%w: %q", ErrAddressSyntax, text)
	}

	return
}

// Assemble parses the symbolic form of an instruction, 'name a1, a2, a3',
// with an optional leading '[op=.. mod=..]' block as printed by
// Disassemble. Addresses are separated by commas or blanks. The address
// tags are set from the indexed address forms.
func Assemble(text string) (w word.Word, err error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "[") {
		end := strings.IndexByte(text, ']')
		if end < 0 {
			err = fmt.Errorf("%w: %q", ErrAddressSyntax, text)
			return
		}
		text = text[end+1:]
	}

	fields := strings.FieldsFunc(text, func(c rune) bool {
		return c == ' ' || c == '\t' || c == ','
	})
	if len(fields) == 0 {
		err = ErrOpcodeUnknown
		return
	}

	op, err := ParseOpcode(fields[0])
	if err != nil {
		return
	}

	// Reattach detached '@ +n' forms.
	var args []string
	for _, field := range fields[1:] {
		n := len(args)
		if n > 0 && (args[n-1] == "@" || args[n-1] == "@+" || args[n-1] == "@-") {
			args[n-1] += field
			continue
		}
		args = append(args, field)
	}

	if len(args) < 3 {
		err = fmt.Errorf("%w: %q", ErrAddressSyntax, text)
		return
	}
	if len(args) > 3 {
		err = fmt.Errorf("%w: %q", ErrOpcodeExtraArgs, text)
		return
	}

	var addr [3]int
	var tags int
	for n, arg := range args {
		var indexed bool
		addr[n], indexed, err = parseAddress(arg)
		if err != nil {
			return
		}
		if indexed {
			tags |= word.TAG_A1 >> n
		}
	}

	w = word.MakeInstruction(tags, int(op), addr[0], addr[1], addr[2])
	return
}
