package cpu

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ezrec/m20/arith"
	"github.com/ezrec/m20/io"
	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

// Cpu is the simulation context of the M-20 central processor.
type Cpu struct {
	Verbose     bool // Set to enable verbose logging.
	CheckMemory bool // Stop on words with bits above bit 44.
	BootCards   bool // The next card input instruction jumps to its first address.

	Alu   *arith.Unit    // Arithmetic unit.
	Io    *io.Dispatcher // External device dispatcher.
	Cards io.CardReader  // Card reader, nil if none is attached.

	Memory Memory // Core memory, with the panel registers.

	KRA int       // Instruction address.
	RK  word.Word // Instruction register.
	RA  int       // Address register.
	RR  word.Word // Result register.
	ROP word.Word // Operation register.
	SMA int       // Memory address register.
	W   bool      // Trigger W.
	P1  word.Word // Low product register.
	P2  word.Word // Scratch register.

	Delay   float64      // Accumulated instruction time, in microseconds.
	Profile Profile      // Per-opcode time accounting.
	Break   map[int]bool // Instruction breakpoints.

	oldOpcode Opcode // Opcode of the previous instruction.
}

// NewCpu creates a new CPU with an arithmetic unit of the given strategy,
// and a dispatcher with no attached units.
func NewCpu(strategy arith.Strategy) (cpu *Cpu) {
	cpu = &Cpu{
		CheckMemory: true,
		Alu:         arith.NewUnit(strategy),
		Io:          io.NewDispatcher(),
		Break:       map[int]bool{},
		KRA:         1,
	}
	cpu.Memory.result = &cpu.RR

	cpu.Reset()

	return
}

// Close detaches all of the drum and tape units.
func (cpu *Cpu) Close() (err error) {
	err = cpu.Io.Close()
	return
}

// Reset the CPU state.
// - Clears RK, SMA, P1 and P2.
// - Drops the latched I/O setup.
// - Zeros the instruction time and profile.
//
// KRA, RA, RR, W and memory are kept.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.RK = 0
	cpu.SMA = 0
	cpu.P1 = 0
	cpu.P2 = 0
	cpu.Alu.P1 = 0
	cpu.oldOpcode = OP_MOVE

	cpu.Io.Reset()

	cpu.Delay = 0
	cpu.Profile.Reset()
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"kra", "rk", "ra", "rr", "w", "p1", "p2",
		"rpu1", "rpu2", "rpu3", "rpu4",
		"io", "time",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "kra":
			strval = fmt.Sprintf("%04o", cpu.KRA)
		case "rk":
			strval = Disassemble(cpu.RK)
		case "ra":
			strval = fmt.Sprintf("%04o", cpu.RA)
		case "rr":
			strval = cpu.RR.String()
		case "w":
			strval = "0"
			if cpu.W {
				strval = "1"
			}
		case "p1":
			strval = cpu.P1.String()
		case "p2":
			strval = cpu.P2.String()
		case "rpu1", "rpu2", "rpu3", "rpu4":
			strval = cpu.Memory.Panel[reg[3]-'1'].String()
		case "io":
			strval = fmt.Sprintf("%v zone %04o end %04o", cpu.Io.Condition, cpu.Io.Zone, cpu.Io.End)
		case "time":
			strval = fmt.Sprintf("%.2f", cpu.Delay)
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, strval)
	}

	return
}

// rewind positions KRA and RK after a stop, so that the stopped
// instruction is shown, and can be restarted.
func (cpu *Cpu) rewind(err error) {
	code, ok := stop.From(err)
	if !ok {
		return
	}

	switch code {
	case stop.NEGATIVE_SQRT, stop.CARD_READER_BAD_SUM, stop.READ_ERROR, stop.STOP, stop.TAPE_READ_ERROR:
		if cpu.KRA > 1 {
			cpu.KRA--
		}
		cpu.RK = cpu.Memory.Words[cpu.KRA&word.ADDR_MASK]
	case stop.ASSERT, stop.NO_CARDS, stop.DIVISION_MANTISSA_OVERFLOW, stop.DIVISION_BY_ZERO:
		cpu.RK = cpu.Memory.Words[(cpu.KRA-1)&word.ADDR_MASK]
	}
}

// Step executes a single instruction.
func (cpu *Cpu) Step() (err error) {
	if cpu.KRA < 0 || cpu.KRA >= MEMORY_SIZE {
		err = stop.RUNOUT
		return
	}

	kra := cpu.KRA
	rk := cpu.Memory.Words[kra]
	op := OpcodeOf(rk)

	if cpu.Verbose {
		log.Printf("cpu: %04o: %v", kra, Disassemble(rk))
	}

	cpu.RK = rk
	cpu.KRA++

	delay := cpu.Delay
	err = cpu.execute()
	cpu.oldOpcode = op

	cpu.rewind(err)
	cpu.Profile.Account(op, cpu.Delay-delay)

	if err != nil {
		if cpu.Verbose {
			log.Printf("cpu: %04o: %v", kra, err)
		}
		err = errors.Join(ErrInstruction{Address: kra, Code: rk}, err)
	}

	return
}

// Run executes instructions until a stop, or the context is done.
// A breakpoint at the first instruction is passed over, so that a run may
// resume from the breakpoint that ended the last one.
func (cpu *Cpu) Run(ctx context.Context) (err error) {
	for first := true; ; first = false {
		err = ctx.Err()
		if err != nil {
			return
		}

		if !first && cpu.Break[cpu.KRA] {
			if cpu.Verbose {
				log.Printf("cpu: breakpoint %04o", cpu.KRA)
			}
			err = errors.Join(ErrInstruction{Address: cpu.KRA, Code: cpu.Memory.Words[cpu.KRA&word.ADDR_MASK]}, stop.BREAKPOINT)
			return
		}

		err = cpu.Step()
		if err != nil {
			return
		}
	}
}
