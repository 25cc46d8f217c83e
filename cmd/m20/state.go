package main

import (
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/ezrec/m20/cpu"
	"github.com/ezrec/m20/emulator"
	"github.com/ezrec/m20/io"
)

type unitState struct {
	Unit   int
	Path   string
	Access string
}

type machineState struct {
	KRA      string
	RK       string
	RA       string
	RR       string
	W        bool
	P1       string
	Panel    [4]string
	ModeII   bool
	Strategy string
	Io       string
	Time     float64
	Drums    []unitState
	Tapes    []unitState
	DrumMap  []int
	TapeMap  []int
}

func units(depot *io.Depot) (list []unitState) {
	for physical, unit := range depot.All() {
		if !unit.Attached() {
			continue
		}
		list = append(list, unitState{
			Unit:   physical,
			Path:   unit.Path,
			Access: unit.Access.String(),
		})
	}
	return
}

// printState pretty prints the registers and the attached units, in colour
// when stdout is a terminal.
func printState(emu *emulator.Emulator) {
	c := emu.Cpu

	state := machineState{
		KRA:      fmt.Sprintf("%04o", c.KRA),
		RK:       cpu.Disassemble(c.RK),
		RA:       fmt.Sprintf("%04o", c.RA),
		RR:       c.RR.String(),
		W:        c.W,
		P1:       c.P1.String(),
		ModeII:   c.Memory.ModeII,
		Strategy: c.Alu.Strategy.String(),
		Io:       c.Io.Condition.String(),
		Time:     c.Delay,
		Drums:    units(&c.Io.Drums.Depot),
		Tapes:    units(&c.Io.Tapes.Depot),
		DrumMap:  c.Io.Drums.Map,
		TapeMap:  c.Io.Tapes.Map,
	}
	for n, value := range c.Memory.Panel {
		state.Panel[n] = value.String()
	}

	printer := pp.New()
	printer.SetOutput(os.Stdout)
	printer.SetColoringEnabled(term.IsTerminal(int(os.Stdout.Fd())))
	printer.Println(state)
}
