package io

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

func TestCardPunch(t *testing.T) {
	assert := assert.New(t)

	var mem testMemory
	mem[1] = word.MakeInstruction(0, 001, 0100, 0101, 0102)
	mem[2] = word.MakeInstruction(4, 077, 0, 0, 0)

	var out bytes.Buffer
	cp := &CardPunch{Output: &out}

	codes, sum, err := cp.Punch(&mem, Request{Condition: PUNCH, Start: 1, End: 2})
	assert.NoError(err)
	assert.Equal(3, codes)
	assert.Equal(word.Checksum(mem[1], mem[2]), sum)

	expected := "\n; common codes section\n" +
		"1  0 01 0100 0101 0102  0\n" +
		"1  4 77 0000 0000 0000  0\n" +
		"\n; end-of-input marker and checksum\n" +
		"1  5 00 0100 0101 0102  1\n\n"
	assert.Equal(expected, out.String())

	// Memory blocking punches zeros and returns no checksum.
	out.Reset()
	codes, sum, err = cp.Punch(&mem, Request{Condition: PUNCH | DIS_RAM | DIS_CHECK, Start: 1, End: 1})
	assert.NoError(err)
	assert.Equal(1, codes)
	assert.Equal(word.Word(0), sum)
	assert.Equal("\n; common codes section\n1  0 00 0000 0000 0000  0\n", out.String())

	_, _, err = (&CardPunch{}).Punch(&mem, Request{Condition: PUNCH, Start: 1, End: 1})
	assert.ErrorIs(err, stop.NOT_READY_PUNCH)
}

func TestCardRoundTrip(t *testing.T) {
	assert := assert.New(t)

	var src testMemory
	src.fill(020, 0137)

	var out bytes.Buffer
	cp := &CardPunch{Output: &out, Address: true}

	// Two ranges in one deck.
	_, _, err := cp.Punch(&src, Request{Condition: PUNCH, Start: 020, End: 077, BufferOnly: true})
	assert.NoError(err)
	codes, sum, err := cp.Punch(&src, Request{Condition: PUNCH, Start: 0100, End: 0137})
	assert.NoError(err)
	assert.Equal(2+0120+1, codes)
	assert.Contains(out.String(), "\n; address code\n0  0 00 0020 0000 0000  1\n")
	assert.Contains(out.String(), "\n; address code\n0  0 00 0100 0000 0000  1\n")

	var dst testMemory
	deck := NewDeck(&out)
	result, err := deck.ReadCards(&dst, 0)
	assert.NoError(err)
	assert.Equal(sum, result.Sum)
	assert.Equal(sum, result.Expected)
	assert.Equal(codes, result.Codes)
	assert.False(result.StopBlocking)
	assert.False(result.ControlBlocking)
	assert.Equal(src, dst)

	// The deck is used up.
	_, err = deck.ReadCards(&dst, 0)
	assert.ErrorIs(err, stop.NO_CARDS)
}

func TestDeck(t *testing.T) {
	assert := assert.New(t)

	text := `; a comment
short
1  0 00 0000 0000 0001  0
1 -+ 1 500000000  0
0  0 00 0200 0001 4001  1
1  0 00 0000 0000 0002  0
1  0 00 0000 0000 0000  1
`

	var mem testMemory
	deck := NewDeck(strings.NewReader(text))
	result, err := deck.ReadCards(&mem, 010)
	assert.NoError(err)
	assert.Equal(5, result.Codes)
	assert.True(result.StopBlocking)
	assert.True(result.ControlBlocking)

	bcd := word.Word(5)<<32 | word.Word(1)<<word.EXPONENT_SHIFT
	assert.Equal(word.Word(1), mem[010])
	assert.Equal(bcd, mem[011])
	// The address card suppressed storing.
	assert.Equal(word.Word(0), mem[0200])

	address := word.MakeInstruction(0, 0, 0200, 1, 04001)
	expected := word.Sum([]word.Word{1, bcd, address, 2})
	assert.Equal(expected, result.Sum)
	assert.Equal(word.Word(0), result.Expected)
}

func TestDeckErrors(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		text  string
		start int
		err   error
	}{
		{"", 1, stop.NO_CARDS},
		{"1  0 00 0000 0000 0001  0\n", 1, stop.NO_CARDS},
		{"2  0 00 0000 0000 0001  0\n", 1, stop.CARD_READER_FORMAT_INVALID},
		{"1  0 00 0000 0000 0001  3\n", 1, stop.CARD_READER_FORMAT_INVALID},
		{"1  0 00 0000 0000 0009  0\n", 1, stop.CARD_READER_FORMAT_INVALID},
		{"1  0 00 0000 0000 0001  0\n1  0 00 0000 0000 0001  0\n", 07777, stop.CARD_READ_OUT_OF_MEMORY},
	}

	for n, entry := range table {
		var mem testMemory
		_, err := NewDeck(strings.NewReader(entry.text)).ReadCards(&mem, entry.start)
		assert.ErrorIs(err, entry.err, n)
	}

	var mem testMemory
	_, err := (&Deck{}).ReadCards(&mem, 1)
	assert.ErrorIs(err, stop.NO_CARDS)
}
