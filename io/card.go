package io

import (
	"bufio"
	"errors"
	"io"
	"log"
	"strings"

	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

// CARD_MIN_LENGTH is the shortest card line, including the line end.
const CARD_MIN_LENGTH = 9

// CardResult is the outcome of reading one deck.
type CardResult struct {
	Sum      word.Word // Checksum of the code and address cards.
	Expected word.Word // Checksum punched on the end card.
	Codes    int       // Cards read, including the end card.

	StopBlocking    bool // An address card blocked the stop instruction.
	ControlBlocking bool // An address card blocked the control instruction.
}

// CardReader is the card reader collaborator.
type CardReader interface {
	// ReadCards reads a deck up to its end card, storing code cards from
	// a start address. A start address of zero reads without storing,
	// until an address card sets one.
	ReadCards(mem Memory, start int) (result CardResult, err error)
}

// Deck is a card reader over a text deck, in the card punch format.
type Deck struct {
	Verbose bool

	input *bufio.Reader
}

var _ CardReader = (*Deck)(nil)

// NewDeck returns a card reader of a text deck.
func NewDeck(input io.Reader) (deck *Deck) {
	deck = &Deck{
		input: bufio.NewReader(input),
	}
	return
}

func marker(c byte) int {
	switch c {
	case '0':
		return 0
	case '1':
		return 1
	}
	return -1
}

// parseCard decodes a card line into its markers and word.
func parseCard(line string) (main int, value word.Word, aux int, err error) {
	text := strings.TrimLeft(line, " \t")
	if len(text) == 0 {
		err = stop.CARD_READER_FORMAT_INVALID
		return
	}
	main = marker(text[0])

	value, text, err = word.Parse(text[1:], word.SYNTAX_CARD)
	if err != nil {
		err = errors.Join(stop.CARD_READER_FORMAT_INVALID, err)
		return
	}

	text = strings.TrimLeft(text, " \t")
	if len(text) == 0 {
		err = stop.CARD_READER_FORMAT_INVALID
		return
	}
	aux = marker(text[0])

	if main < 0 || aux < 0 {
		err = stop.CARD_READER_FORMAT_INVALID
		return
	}

	return
}

// ReadCards implements CardReader.
func (deck *Deck) ReadCards(mem Memory, start int) (result CardResult, err error) {
	if deck.input == nil {
		err = stop.NO_CARDS
		return
	}

	store := start
	write := start != 0

	for {
		line, rerr := deck.input.ReadString('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			err = errors.Join(stop.CARD_READER_INVALID, rerr)
			return
		}

		if store >= word.ADDR_MASK+1 {
			err = stop.CARD_READ_OUT_OF_MEMORY
			return
		}

		if len(line) == 0 || line[0] == ';' || len(line) < CARD_MIN_LENGTH {
			if rerr != nil {
				err = stop.NO_CARDS
				return
			}
			continue
		}

		main, value, aux, perr := parseCard(line)
		if perr != nil {
			err = perr
			return
		}

		result.Codes++

		switch {
		case main == 1 && aux == 0:
			result.Sum = word.Checksum(result.Sum, value)
			if write {
				mem.Store(store, value)
			}
			store++
		case main == 0 && aux == 1:
			result.Sum = word.Checksum(result.Sum, value)
			a1, a2, a3 := value.A1(), value.A2(), value.A3()
			if a1 > 0 {
				store = a1
			}
			write = a1 != 0 && a2 != 1
			if (a3 & 1) != 0 {
				result.StopBlocking = true
			}
			if ((a3 >> 11) & 1) != 0 {
				result.ControlBlocking = true
			}
		case main == 1 && aux == 1:
			result.Expected = value
			if deck.Verbose {
				log.Printf("card: %d cards, checksum %v, expected %v", result.Codes, result.Sum, result.Expected)
			}
			return
		}

		if rerr != nil {
			err = stop.NO_CARDS
			return
		}
	}
}
