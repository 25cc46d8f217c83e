package cpu

import (
	"errors"
	"log"

	"github.com/ezrec/m20/arith"
	"github.com/ezrec/m20/io"
	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

type arithOp func(x, y word.Word, mode arith.Mode) (word.Word, error)

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// overflowed returns true if the exponent of a result is above 2**0.
func overflowed(w word.Word) bool {
	return w.Exponent() > word.EXPONENT_OVERFLOW
}

// checkGarbage verifies that none of the operand words carry bits
// above bit 44.
func (cpu *Cpu) checkGarbage(addrs ...int) (err error) {
	if !cpu.CheckMemory {
		return
	}

	for _, addr := range addrs {
		value := cpu.Memory.Load(addr)
		if value.Garbage() {
			if cpu.Verbose {
				log.Printf("cpu: garbage at %04o: %018o", addr, uint64(value))
			}
			err = stop.MEMORY_GARBAGE
			return
		}
	}

	return
}

// execute decodes and executes the instruction in RK.
func (cpu *Cpu) execute() (err error) {
	rk := cpu.RK
	tags := rk.Tags()
	op := OpcodeOf(rk)

	a1, a2, a3 := rk.A1(), rk.A2(), rk.A3()
	if (tags & word.TAG_A1) != 0 {
		a1 = (a1 + cpu.RA) & word.ADDR_MASK
	}
	if (tags & word.TAG_A2) != 0 {
		a2 = (a2 + cpu.RA) & word.ADDR_MASK
	}
	if (tags & word.TAG_A3) != 0 {
		a3 = (a3 + cpu.RA) & word.ADDR_MASK
	}

	// P1 follows the first operand, except after a multiply.
	defer func() {
		if op.IsMul() {
			return
		}
		addr := a1
		if (tags & word.TAG_A1) != 0 {
			addr = (addr + cpu.RA) & word.ADDR_MASK
		}
		cpu.P1 = cpu.Memory.Words[addr]
	}()

	err = cpu.checkGarbage(a1, a2, a3)
	if err != nil {
		return
	}

	err = cpu.dispatch(op, a1, a2, a3)
	if err != nil {
		return
	}

	err = cpu.checkGarbage(a1, a2, a3)
	return
}

// result sets RR, and stores it.
func (cpu *Cpu) result(a3 int, rr word.Word) {
	cpu.RR = rr
	cpu.Memory.Store(a3, rr)
}

func (cpu *Cpu) addition(fn arithOp, op Opcode, a1, a2, a3 int) (err error) {
	mem := &cpu.Memory

	rr, err := fn(mem.Load(a1), mem.Load(a2), arith.ModeOf(int(op)))
	if err != nil {
		return
	}

	cpu.result(a3, rr)
	cpu.W = rr.Negative()
	cpu.Delay += DELAY_ADD
	return
}

func (cpu *Cpu) exponent(n int, a2, a3 int) (err error) {
	rr, err := arith.AddExponent(cpu.Memory.Load(a2), n)
	if err != nil {
		return
	}

	cpu.result(a3, rr)
	cpu.W = overflowed(rr)
	return
}

func (cpu *Cpu) shiftMantissa(n int, a2, a3 int) {
	y := cpu.Memory.Load(a2)

	rr := y &^ word.MANTISSA
	if n >= 0 {
		rr |= (y.Mantissa() << n) & word.MANTISSA
	} else {
		rr |= (y.Mantissa() >> -n) & word.MANTISSA
	}

	cpu.result(a3, rr)
	cpu.W = rr.Mantissa() == 0
}

func (cpu *Cpu) shiftCode(n int, a2, a3 int) {
	rr := cpu.Memory.Load(a2)

	if n > 0 {
		rr <<= n
	} else if n < 0 {
		rr >>= -n
	}
	rr &= word.WORD45

	cpu.result(a3, rr)
	cpu.W = rr == 0
}

// loop is the common form of the cycle jumps on RA.
func (cpu *Cpu) loop(taken bool, a2, a3 int) {
	if taken {
		cpu.KRA = a2
	}
	cpu.RA = a3
	cpu.Delay += DELAY_SHORT
}

// cards reads a deck from the card reader.
func (cpu *Cpu) cards(op Opcode, a1, a2, a3 int) (err error) {
	if op == OP_CARDS_STOP && cpu.BootCards {
		if cpu.Verbose {
			log.Printf("cpu: card boot to %04o", a1)
		}
		cpu.KRA = a1
		cpu.BootCards = false
	}

	if cpu.Cards == nil {
		err = stop.NO_CARDS
		return
	}

	res, err := cpu.Cards.ReadCards(&cpu.Memory, a1)
	if err != nil {
		return
	}

	cpu.Delay += DELAY_CARD * float64(res.Codes)

	switch {
	case res.ControlBlocking:
	case op == OP_CARDS_STOP && res.StopBlocking:
		cpu.KRA = a2
	case res.Sum != res.Expected:
		cpu.KRA = a2
		if op == OP_CARDS_STOP {
			err = stop.CARD_READER_BAD_SUM
			return
		}
	}

	cpu.Memory.Store(a3, res.Sum)
	return
}

// exec runs the latched external device setup.
func (cpu *Cpu) exec(a1, a2, a3 int) (err error) {
	if !cpu.Io.Latched() {
		err = stop.MISSING_IO_SETUP
		return
	}

	cond := cpu.Io.Condition

	sum, delay, err := cpu.Io.Exec(&cpu.Memory, a1)
	cpu.Delay += delay
	cpu.RR = sum
	if a3 != 0 {
		cpu.Memory.Store(a3, sum)
	}

	if err != nil {
		if !errors.Is(err, stop.READ_ERROR) || !cond.Has(io.DIS_STOP) {
			return
		}
		err = nil
		if !cond.Has(io.PUNCH|io.PRINT) && a2 != 0 {
			cpu.KRA = a2
		}
	}

	cpu.Delay += DELAY_SHORT
	return
}

// dispatch executes an opcode with resolved addresses.
func (cpu *Cpu) dispatch(op Opcode, a1, a2, a3 int) (err error) {
	mem := &cpu.Memory
	alu := cpu.Alu

	switch op {
	case OP_ADD_RN, OP_ADD_N, OP_ADD_R, OP_ADD:
		err = cpu.addition(alu.Add, op, a1, a2, a3)
	case OP_SUB_RN, OP_SUB_N, OP_SUB_R, OP_SUB:
		err = cpu.addition(alu.Sub, op, a1, a2, a3)
	case OP_SUB_MOD_RN, OP_SUB_MOD_N, OP_SUB_MOD_R, OP_SUB_MOD:
		err = cpu.addition(alu.SubModulus, op, a1, a2, a3)
	case OP_MUL_RN, OP_MUL_N, OP_MUL_R, OP_MUL:
		var rr word.Word
		rr, err = alu.Mul(mem.Load(a1), mem.Load(a2), arith.ModeOf(int(op)))
		if err != nil {
			return
		}
		cpu.P1 = alu.P1
		cpu.result(a3, rr)
		cpu.W = overflowed(rr)
		cpu.Delay += DELAY_MUL
	case OP_DIV_R, OP_DIV:
		var rr word.Word
		rr, err = alu.Div(mem.Load(a1), mem.Load(a2), arith.ModeOf(int(op)))
		if err != nil {
			return
		}
		cpu.result(a3, rr)
		cpu.W = overflowed(rr)
		cpu.Delay += DELAY_DIV
	case OP_SQRT_R, OP_SQRT:
		var rr word.Word
		rr, err = alu.Sqrt(mem.Load(a1), arith.ModeOf(int(op)))
		if err != nil {
			return
		}
		cpu.result(a3, rr)
		cpu.W = overflowed(rr)
		cpu.Delay += DELAY_SQRT
	case OP_LOW_PRODUCT:
		if cpu.oldOpcode.IsMul() {
			cpu.RR = cpu.P1
			cpu.W = overflowed(cpu.RR)
		} else {
			cpu.RR = (cpu.RR & word.EXP_SIGN_TAG) | cpu.P1.Mantissa()
			cpu.W = cpu.RR.Mantissa() == 0
		}
		mem.Store(a3, cpu.RR)
		cpu.Delay += DELAY_SHORT
	case OP_ADD_ADDR_EXP:
		cpu.Delay += DELAY_ADDRESS
		err = cpu.exponent((a1&word.EXPONENT_VALUE_MASK)-word.EXPONENT_BIAS, a2, a3)
	case OP_ADD_EXP_EXP:
		cpu.Delay += DELAY_SHORT
		err = cpu.exponent(mem.Load(a1).Exponent()-word.EXPONENT_BIAS, a2, a3)
	case OP_SUB_ADDR_EXP:
		cpu.Delay += DELAY_ADDRESS
		err = cpu.exponent(word.EXPONENT_BIAS-(a1&word.EXPONENT_VALUE_MASK), a2, a3)
	case OP_SUB_EXP_EXP:
		cpu.Delay += DELAY_SHORT
		err = cpu.exponent(word.EXPONENT_BIAS-mem.Load(a1).Exponent(), a2, a3)

	case OP_MOVE:
		cpu.result(a3, mem.Load(a1))
		cpu.Delay += DELAY_SHORT
	case OP_PANEL_KEY:
		switch n := a1 & 7; n {
		case 0:
			cpu.RR = 0
		case 1, 2, 3, 4:
			cpu.RR = mem.Panel[n-1]
		case 5:
		default:
			err = stop.INVALID_ARGUMENT
			return
		}
		mem.Store(a3, cpu.RR)
		cpu.Delay += DELAY_SHORT
	case OP_BLANK_040, OP_BLANK_060:
		cpu.result(a3, 0)
		cpu.Delay += DELAY_SHORT
	case OP_COMPARE, OP_COMPARE_STOP, OP_AND, OP_OR:
		x, y := mem.Load(a1), mem.Load(a2)
		switch op {
		case OP_AND:
			cpu.RR = x & y
		case OP_OR:
			cpu.RR = x | y
		default:
			cpu.RR = x ^ y
		}
		cpu.W = cpu.RR == 0
		cpu.Delay += DELAY_SHORT
		if op == OP_COMPARE_STOP && !cpu.W {
			err = stop.ASSERT
			return
		}
		mem.Store(a3, cpu.RR)
	case OP_ADD_COMMANDS, OP_SUB_COMMANDS:
		x, y := mem.Load(a1), mem.Load(a2)
		var t word.Word
		if op == OP_ADD_COMMANDS {
			t = x.Mantissa() + y.Mantissa()
		} else {
			t = x.Mantissa() - y.Mantissa()
		}
		cpu.result(a3, (x&^word.MANTISSA&word.WORD45)|(t&word.MANTISSA))
		cpu.W = (t & word.BIT37) != 0
		cpu.Delay += DELAY_SHORT
	case OP_ADD_OPCODES, OP_SUB_OPCODES:
		x, y := mem.Load(a1), mem.Load(a2)
		var t word.Word
		if op == OP_ADD_OPCODES {
			t = (x &^ word.MANTISSA) + (y &^ word.MANTISSA)
		} else {
			t = (x &^ word.MANTISSA) - (y &^ word.MANTISSA)
		}
		cpu.result(a3, x.Mantissa()|(t&^word.MANTISSA&word.WORD45))
		cpu.W = (t & word.BIT46) != 0
		cpu.Delay += DELAY_SHORT
	case OP_SHIFT_MANT_ADDR:
		n := (a1 & word.EXPONENT_VALUE_MASK) - word.EXPONENT_BIAS
		cpu.Delay += DELAY_ADDRESS + DELAY_SHIFT*float64(abs(n))
		cpu.shiftMantissa(n, a2, a3)
	case OP_SHIFT_MANT_EXP:
		n := mem.Load(a1).Exponent() - word.EXPONENT_BIAS
		cpu.Delay += DELAY_SHORT + DELAY_SHIFT*float64(abs(n))
		cpu.shiftMantissa(n, a2, a3)
	case OP_SHIFT_CODE_ADDR:
		n := (a1 & word.EXPONENT_VALUE_MASK) - word.EXPONENT_BIAS
		cpu.Delay += DELAY_ADDRESS + DELAY_SHIFT*float64(abs(n))
		cpu.shiftCode(n, a2, a3)
	case OP_SHIFT_CODE_EXP:
		n := mem.Load(a1).Exponent() - word.EXPONENT_BIAS
		cpu.Delay += DELAY_SHORT + DELAY_SHIFT*float64(abs(n))
		cpu.shiftCode(n, a2, a3)
	case OP_ADD_CYCLIC:
		x, y := mem.Load(a1), mem.Load(a2)
		rr := (x &^ word.MANTISSA) + (y &^ word.MANTISSA)
		t := x.Mantissa() + y.Mantissa()
		cpu.W = (t & word.BIT37) != 0
		if (rr & word.BIT46) != 0 {
			rr += word.BIT37
		}
		if (t & word.BIT37) != 0 {
			t++
		}
		rr &= word.WORD45
		cpu.result(a3, rr|(t&word.MANTISSA))
		cpu.Delay += DELAY_SHORT
	case OP_SUB_CYCLIC:
		x, y := mem.Load(a1), mem.Load(a2)
		xm, ym := x.Mantissa(), y.Mantissa()
		xe, ye := x&^word.MANTISSA, y&^word.MANTISSA
		var rr, t word.Word
		if xm < ym {
			t = word.BIT37 + xm - ym - 1
		} else {
			t = xm - ym
		}
		if xe < ye {
			rr = word.BIT46 + xe - ye - word.BIT37
			t--
		} else {
			rr = xe - ye
		}
		cpu.W = (t & word.BIT37) != 0
		cpu.result(a3, (rr|(t&word.MANTISSA))&word.WORD45)
		cpu.Delay += DELAY_SHORT
	case OP_SHIFT_CYCLIC:
		x := mem.Load(a1)
		cpu.result(a3, (x&word.WORD21)<<24|((x>>24)&word.WORD21))
		cpu.W = a3 == 0
		cpu.Delay += DELAY_SHORT

	case OP_STOP_017, OP_STOP_037, OP_STOP_057, OP_STOP_077:
		cpu.Delay += DELAY_SHORT
		cpu.result(a3, 0)
		err = stop.STOP
	case OP_RA_BY_ADDR:
		cpu.result(a3, word.Word(OP_RA_BY_ADDR)<<word.OPCODE_SHIFT|word.Word(a1)<<12)
		cpu.RA = a2
		cpu.Delay += DELAY_RA
	case OP_RA_BY_CODE:
		cpu.result(a3, word.Word(OP_RA_BY_ADDR)<<word.OPCODE_SHIFT|word.Word(a1)<<12)
		cpu.RA = mem.Load(a2).A2()
		cpu.Delay += DELAY_RA
	case OP_JUMP_RETURN:
		cpu.result(a3, word.Word(OP_JUMP_RETURN)<<word.OPCODE_SHIFT|word.Word(a1)<<12)
		cpu.KRA = a2
		cpu.Delay += DELAY_SHORT
	case OP_JUMP_W1, OP_JUMP, OP_JUMP_W0:
		cpu.result(a3, mem.Load(a1))
		if op == OP_JUMP || (op == OP_JUMP_W1) == cpu.W {
			cpu.KRA = a2
		}
		cpu.Delay += DELAY_SHORT
	case OP_LOOP_LT:
		cpu.loop(cpu.RA < a1, a2, a3)
	case OP_LOOP_GE:
		cpu.loop(cpu.RA >= a1, a2, a3)
	case OP_LOOP_LT_W1:
		cpu.loop(cpu.RA < a1 && cpu.W, a2, a3)
	case OP_LOOP_GE_W1:
		cpu.loop(cpu.RA >= a1 && cpu.W, a2, a3)
	case OP_LOOP_LT_W0:
		cpu.loop(cpu.RA < a1 && !cpu.W, a2, a3)
	case OP_LOOP_GE_W0:
		cpu.loop(cpu.RA >= a1 && !cpu.W, a2, a3)

	case OP_CARDS_STOP, OP_CARDS:
		err = cpu.cards(op, a1, a2, a3)
	case OP_IO_SETUP:
		err = cpu.Io.Setup(a1, a2, a3)
		if err != nil {
			return
		}
		cpu.Delay += DELAY_SHORT
	case OP_IO_EXEC:
		err = cpu.exec(a1, a2, a3)

	default:
		cpu.Delay += DELAY_SHORT
		err = stop.BAD_COMMAND
	}

	return
}
