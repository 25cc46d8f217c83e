// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"iter"
	"log"
	"maps"
	"os"

	"github.com/ezrec/m20/arith"
	"github.com/ezrec/m20/cpu"
	"github.com/ezrec/m20/internal"
	"github.com/ezrec/m20/io"
	"github.com/ezrec/m20/stop"
)

var _emulator_defines = map[string]int{
	"MEMORY_SIZE":  cpu.MEMORY_SIZE,
	"PANEL_WINDOW": cpu.PANEL_WINDOW,
	"DRUM_SIZE":    io.DRUM_SIZE,
	"PRINT_WIDTH":  io.PRINT_WIDTH,
}

// Emulator state. CPU + card reader, line printer and card punch.
type Emulator struct {
	Verbose  bool // If set, enables verbose logging.
	*cpu.Cpu      // Reference to the CPU simulation.

	Printer io.LinePrinter // Line printer.
	Punch   io.CardPunch   // Card punch.
	Buffer  io.Ring        // Output buffer shared by the printer and punch.

	files []*os.File
}

// NewEmulator creates a new emulator, with the printer and punch sharing
// one output buffer.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu: cpu.NewCpu(arith.SHURA_BURA),
	}

	emu.Buffer.Rewind()
	emu.Printer.Buffer = &emu.Buffer
	emu.Punch.Buffer = &emu.Buffer

	emu.Cpu.Io.Printer = &emu.Printer
	emu.Cpu.Io.Punch = &emu.Punch

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, int] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		cpu.Defines(),
		io.Defines(),
	)
}

// Close the emulator, detaching all units and closing all host files.
func (emu *Emulator) Close() (err error) {
	err = emu.Cpu.Close()

	for _, file := range emu.files {
		err = errors.Join(err, file.Close())
	}
	emu.files = nil

	return
}

// Reset the CPU, and the output buffer.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Buffer.Rewind()
}

// open a host file for the emulator's lifetime. "-" is the standard input
// or output.
func (emu *Emulator) open(path string, output bool) (file *os.File, err error) {
	if path == "-" {
		file = os.Stdin
		if output {
			file = os.Stdout
		}
		return
	}

	if output {
		file, err = os.Create(path)
	} else {
		file, err = os.Open(path)
	}
	if err != nil {
		return
	}

	emu.files = append(emu.files, file)
	return
}

// LoadFile loads a program text file into memory.
func (emu *Emulator) LoadFile(path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	if emu.Verbose {
		log.Printf("emulator: load %v", path)
	}

	err = emu.Cpu.Load(inf)
	return
}

// SetCards attaches a text card deck to the card reader.
func (emu *Emulator) SetCards(path string) (err error) {
	file, err := emu.open(path, false)
	if err != nil {
		return
	}

	deck := io.NewDeck(file)
	deck.Verbose = emu.Verbose
	emu.Cpu.Cards = deck
	return
}

// SetPrinter sends the line printer output to a file.
func (emu *Emulator) SetPrinter(path string) (err error) {
	file, err := emu.open(path, true)
	if err != nil {
		return
	}

	emu.Printer.Output = file
	return
}

// SetPunch sends the card punch output to a file.
func (emu *Emulator) SetPunch(path string) (err error) {
	file, err := emu.open(path, true)
	if err != nil {
		return
	}

	emu.Punch.Output = file
	return
}

// Run executes until a stop, or the context is done.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Io.Verbose = emu.Verbose

	err = emu.Cpu.Run(ctx)
	if err != nil {
		err = &ErrRuntime{Time: emu.Cpu.Delay, Err: err}
	}

	return
}

// Halted returns true if the error is a stop instruction.
func Halted(err error) bool {
	code, ok := stop.From(err)
	return ok && code == stop.STOP
}
