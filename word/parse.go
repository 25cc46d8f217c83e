package word

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ezrec/m20/translate"
)

var f = translate.From

var (
	ErrFormat = errors.New(f("word format"))
)

// Syntax selects the TAG polarity of the '+'/'-' decimal form.
type Syntax int

const (
	SYNTAX_PROGRAM = Syntax(0) // leading '-' marks TAG
	SYNTAX_CARD    = Syntax(1) // leading '+' marks TAG
)

// Maximum decimal exponent of the BCD forms.
const bcdExponentMax = 19

func skipSpaces(text string) string {
	return strings.TrimLeft(text, " \t")
}

// skipToken drops the first character, and everything up to the next blank.
func skipToken(text string) string {
	if len(text) == 0 {
		return text
	}
	n := strings.IndexAny(text[1:], " \t")
	if n < 0 {
		return ""
	}
	return text[1+n:]
}

// leadingInt parses an optionally signed decimal prefix, like atoi(3).
func leadingInt(text string) (value int) {
	n := 0
	if n < len(text) && (text[n] == '+' || text[n] == '-') {
		n++
	}
	for n < len(text) && text[n] >= '0' && text[n] <= '9' {
		n++
	}
	value, _ = strconv.Atoi(text[:n])
	return
}

// bcd parses '<exponent> <9 digits>' into the exponent and mantissa
// fields, with digits packed four bits apiece from bit 35 down.
func bcd(text string) (w Word, negativeExponent bool, rest string, err error) {
	exp := leadingInt(text)
	if exp < 0 {
		negativeExponent = true
		exp = -exp
	}
	if exp > bcdExponentMax {
		err = ErrFormat
		return
	}

	e := Word(exp % 10)
	if exp/10 != 0 {
		e |= 1 << 4
	}

	text = skipSpaces(skipToken(text))

	var m Word
	for i := range 9 {
		if len(text) == 0 || text[0] < '0' || text[0] > '9' {
			err = ErrFormat
			return
		}
		m |= Word(text[0]-'0') << (32 - i*4)
		text = skipSpaces(text[1:])
	}

	w = m | e<<EXPONENT_SHIFT
	rest = text
	return
}

// Parse decodes one word from the start of text:
//
//	=1.25             decimal real
//	+- 05 123456789   BCD: tag, sign, exponent, mantissa digits
//	# 3 05 123456789  BCD with an octal tag/sign/exponent-sign digit
//	0 01 0001 0002 0003
//	                  15 octal digits, blanks allowed anywhere
//
// The unparsed remainder of the text is returned.
func Parse(text string, syntax Syntax) (w Word, rest string, err error) {
	text = skipSpaces(text)
	if len(text) == 0 {
		err = ErrFormat
		return
	}

	switch text[0] {
	case '=':
		field := text[1:]
		end := strings.IndexAny(field, " \t\r\n")
		if end < 0 {
			end = len(field)
		}
		var d float64
		d, err = strconv.ParseFloat(field[:end], 64)
		if err != nil {
			err = errors.Join(ErrFormat, err)
			return
		}
		w = FromFloat(d)
		rest = field[end:]
		return
	case '+', '-':
		if len(text) < 2 || (text[1] != '+' && text[1] != '-') {
			err = ErrFormat
			return
		}
		tagged := text[0] == '-'
		if syntax == SYNTAX_CARD {
			tagged = !tagged
		}
		negative := text[1] == '-'

		var expSign bool
		w, expSign, rest, err = bcd(skipSpaces(text[2:]))
		if err != nil {
			return
		}
		if tagged {
			w |= TAG
		}
		if negative {
			w |= SIGN
		}
		if expSign {
			w |= EXPONENT_SIGN
		}
		return
	case '#':
		text = skipSpaces(text[1:])
		if len(text) == 0 || text[0] < '0' || text[0] > '7' {
			err = ErrFormat
			return
		}
		flags := text[0] - '0'

		w, _, rest, err = bcd(skipSpaces(text[1:]))
		if err != nil {
			return
		}
		if (flags & 4) != 0 {
			w |= TAG
		}
		if (flags & 2) != 0 {
			w |= SIGN
		}
		if (flags & 1) != 0 {
			w |= EXPONENT_SIGN
		}
		return
	}

	for i := range 15 {
		if i > 0 {
			text = skipSpaces(text)
		}
		if len(text) == 0 || text[0] < '0' || text[0] > '7' {
			err = ErrFormat
			return
		}
		w = w<<3 | Word(text[0]-'0')
		text = text[1:]
	}

	rest = text
	return
}
