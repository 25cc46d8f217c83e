package emulator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/m20/io"
	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/translate"
	"github.com/ezrec/m20/word"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defer emu.Close()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Same(&emu.Buffer, emu.Printer.Buffer)
	assert.Same(&emu.Buffer, emu.Punch.Buffer)
	assert.Equal(io.RING_DEFAULT_CAPACITY, emu.Buffer.Capacity)
	assert.NotNil(emu.Cpu.Io.Printer)
	assert.NotNil(emu.Cpu.Io.Punch)
	assert.Nil(emu.Cpu.Cards)
}

func TestDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defer emu.Close()

	defines := map[string]int{}
	for name, value := range emu.Defines() {
		_, dup := defines[name]
		assert.False(dup, name)
		defines[name] = value
	}

	assert.Equal(4096, defines["MEMORY_SIZE"])
	assert.Equal(07770, defines["PANEL_WINDOW"])
	assert.Equal(001, defines["ADD_RN"])
	assert.Equal(077, defines["STOP_077"])
	assert.Equal(010, defines["DRUM"])
	assert.Equal(04, defines["WRITE"])
}

func TestRun(t *testing.T) {
	assert := assert.New(t)

	program := `; 1.0 + 0.5
:0001
0 01 0100 0101 0102
0 77 0000 0000 0000

:0100
=1.0
=0.5
`
	path := filepath.Join(t.TempDir(), "add.m20")
	assert.NoError(os.WriteFile(path, []byte(program), 0o644))

	emu := NewEmulator()
	defer emu.Close()

	assert.NoError(emu.LoadFile(path))
	assert.Equal(1, emu.Cpu.KRA)

	err := emu.Run(context.Background())
	assert.True(Halted(err))
	assert.ErrorIs(err, stop.STOP)

	var rt *ErrRuntime
	if assert.ErrorAs(err, &rt) {
		assert.InDelta(52.5, rt.Time, 1e-9)
	}

	assert.Equal(1.5, emu.Cpu.Memory.Words[0102].Float())
	assert.False(emu.Cpu.W)
	assert.Equal(2, emu.Cpu.KRA)

	emu.Reset()
	assert.Equal(0.0, emu.Cpu.Delay)

	assert.ErrorIs(emu.LoadFile(filepath.Join(t.TempDir(), "missing.m20")), os.ErrNotExist)
}

func TestPunchAndRead(t *testing.T) {
	assert := assert.New(t)

	deck := filepath.Join(t.TempDir(), "deck.txt")

	emu := NewEmulator()
	err := emu.Configure("punch.star", `
punch(`+quote(deck)+`)
deposit(0o100, 5)
deposit(0o101, 6)
deposit(1, assemble("io_ext_dev_050 %o 0 101" % PUNCH))
deposit(2, assemble("io_ext_dev_070 100 0 0"))
deposit(3, assemble("stop_077 0 0 0"))
start(1)
`)
	assert.NoError(err)

	err = emu.Run(context.Background())
	assert.True(Halted(err), err)
	assert.NoError(emu.Close())

	text, err := os.ReadFile(deck)
	assert.NoError(err)
	assert.Contains(string(text), "1  0 00 0000 0000 0005  0\n")
	assert.Contains(string(text), "1  0 00 0000 0000 0006  0\n")
	assert.Contains(string(text), "1  0 00 0000 0000 0013  1\n")

	emu = NewEmulator()
	defer emu.Close()

	err = emu.Configure("cards.star", `
cards(`+quote(deck)+`)
deposit(1, assemble("in_codes_stop 200 300 400"))
deposit(2, assemble("stop_077 0 0 0"))
`)
	assert.NoError(err)

	err = emu.Run(context.Background())
	assert.True(Halted(err), err)
	assert.Equal(word.Word(5), emu.Cpu.Memory.Words[0200])
	assert.Equal(word.Word(6), emu.Cpu.Memory.Words[0201])
	assert.Equal(word.Word(013), emu.Cpu.Memory.Words[0400])
	assert.Equal(2, emu.Cpu.KRA)
}

func TestRunNotReady(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	defer emu.Close()

	err := emu.Configure("print.star", `
deposit(1, assemble("io_ext_dev_050 %o 0 101" % PRINT))
deposit(2, assemble("io_ext_dev_070 100 0 0"))
`)
	assert.NoError(err)

	err = emu.Run(context.Background())
	assert.False(Halted(err))
	assert.ErrorIs(err, stop.NOT_READY_PRINT)
}

func TestErrRuntime(t *testing.T) {
	assert := assert.New(t)

	saved := translate.Language
	defer translate.SetLanguage(saved.String())
	translate.SetLanguage("en-US")

	err := error(&ErrRuntime{Time: 1234567.5, Err: stop.STOP})
	assert.Equal("STOP\ntime 1234567.50 us", err.Error())
	assert.True(Halted(err))
}
