package cpu

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/m20/arith"
	"github.com/ezrec/m20/io"
	"github.com/ezrec/m20/stop"
	"github.com/ezrec/m20/word"
)

func num(mant word.Word, exp int) word.Word {
	return mant | word.Word(exp)<<word.EXPONENT_SHIFT
}

var (
	one          = num(1<<35, 65)
	half         = num(1<<35, 64)
	onePointFive = num(3<<34, 65)
)

func inst(tags int, op Opcode, a1, a2, a3 int) word.Word {
	return word.MakeInstruction(tags, int(op), a1, a2, a3)
}

// newTestCpu loads a program from address 1.
func newTestCpu(program ...word.Word) (cpu *Cpu) {
	cpu = NewCpu(arith.SHURA_BURA)
	copy(cpu.Memory.Words[1:], program)
	return
}

func TestAddOneAndHalf(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		strategy arith.Strategy
		expected word.Word
	}{
		{arith.SHURA_BURA, onePointFive},
		{arith.LEGACY, onePointFive + 1},
	}

	for _, entry := range table {
		cpu := NewCpu(entry.strategy)
		copy(cpu.Memory.Words[1:], []word.Word{
			inst(0, OP_ADD_RN, 0100, 0101, 0102),
			inst(0, OP_STOP_077, 0, 0, 0),
		})
		cpu.Memory.Words[0100] = one
		cpu.Memory.Words[0101] = half
		cpu.W = true

		err := cpu.Run(context.Background())
		assert.ErrorIs(err, stop.STOP, entry.strategy)
		assert.ErrorIs(err, ErrInstruction{}, entry.strategy)

		assert.Equal(entry.expected, cpu.Memory.Words[0102], entry.strategy)
		assert.False(cpu.W, entry.strategy)
		assert.Equal(2, cpu.KRA, entry.strategy)
		assert.Equal(cpu.Memory.Words[2], cpu.RK, entry.strategy)
		assert.Equal(word.Word(0), cpu.RR, entry.strategy)
		assert.InDelta(DELAY_ADD+DELAY_SHORT, cpu.Delay, 1e-9, entry.strategy)
		assert.Equal(1.0, cpu.Profile[OP_ADD_RN].Count, entry.strategy)
		assert.Equal(1.0, cpu.Profile[OP_STOP_077].Count, entry.strategy)
	}
}

func TestSubSetsW(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(inst(0, OP_SUB_RN, 0100, 0101, 0102))
	cpu.Memory.Words[0100] = half
	cpu.Memory.Words[0101] = one

	assert.NoError(cpu.Step())
	assert.True(cpu.W)
	assert.True(cpu.Memory.Words[0102].Negative())
	assert.Equal(-0.5, cpu.Memory.Words[0102].Float())
	assert.Equal(cpu.RR, cpu.Memory.Words[0102])
}

func TestDivisionByZero(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(inst(0, OP_DIV_R, 0100, 0101, 0102))
	cpu.Memory.Words[0100] = one
	cpu.Memory.Words[0102] = 0777

	err := cpu.Step()
	assert.ErrorIs(err, stop.DIVISION_BY_ZERO)
	assert.Equal(2, cpu.KRA)
	assert.Equal(cpu.Memory.Words[1], cpu.RK)
	assert.Equal(word.Word(0777), cpu.Memory.Words[0102])
	assert.Equal(0.0, cpu.Delay)
	assert.Equal(0.0, cpu.Profile[OP_DIV_R].Count)
}

func TestMulLowProduct(t *testing.T) {
	assert := assert.New(t)

	// (2**35+1)**2 = 2**70 + 2**36 + 1
	x := num(1<<35+1, 64)

	cpu := newTestCpu(
		inst(0, OP_MUL_RN, 0100, 0100, 0102),
		inst(0, OP_LOW_PRODUCT, 0, 0, 0103),
	)
	cpu.Memory.Words[0100] = x

	assert.NoError(cpu.Step())
	assert.Equal(num(1<<35+2, 63), cpu.Memory.Words[0102])
	assert.Equal(num(2, 63), cpu.P1)
	assert.False(cpu.W)
	assert.InDelta(DELAY_MUL, cpu.Delay, 1e-9)

	assert.NoError(cpu.Step())
	assert.Equal(num(2, 63), cpu.Memory.Words[0103])
	assert.False(cpu.W)
}

func TestLowProductFollowsOperand(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		inst(0, OP_RA_BY_ADDR, 0, 1, 0),
		inst(word.TAG_A1, OP_MOVE, 0100, 0, 0110),
		inst(0, OP_LOW_PRODUCT, 0, 0, 0103),
	)
	cpu.Memory.Words[0101] = num(0123, 70) | word.SIGN
	cpu.Memory.Words[0102] = num(0777, 12)

	assert.NoError(cpu.Step())
	assert.Equal(1, cpu.RA)

	assert.NoError(cpu.Step())
	assert.Equal(cpu.Memory.Words[0101], cpu.Memory.Words[0110])
	// The indexed first address is indexed again.
	assert.Equal(cpu.Memory.Words[0102], cpu.P1)

	assert.NoError(cpu.Step())
	assert.Equal(num(0777, 70)|word.SIGN, cpu.Memory.Words[0103])
	assert.False(cpu.W)
}

func TestIndexing(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		inst(7, OP_MOVE, 0100, 0, 0200),
		inst(word.TAG_A1, OP_MOVE, 07777, 0, 0300),
	)
	cpu.RA = 2
	cpu.Memory.Words[0102] = 5

	assert.NoError(cpu.Step())
	assert.Equal(word.Word(5), cpu.Memory.Words[0202])

	// Indexing wraps at the top of memory.
	assert.NoError(cpu.Step())
	assert.Equal(cpu.Memory.Words[1], cpu.Memory.Words[0300])
}

func TestPanelKey(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		inst(0, OP_PANEL_KEY, 3, 0, 0100),
		inst(0, OP_PANEL_KEY, 5, 0, 0101),
		inst(0, OP_PANEL_KEY, 0, 0, 0102),
		inst(0, OP_PANEL_KEY, 6, 0, 0103),
	)
	cpu.Memory.Panel = [4]word.Word{1, 2, 3, 4}
	cpu.Memory.Words[0102] = 0777
	cpu.Memory.Words[0103] = 0777

	assert.NoError(cpu.Step())
	assert.Equal(word.Word(3), cpu.Memory.Words[0100])

	assert.NoError(cpu.Step())
	assert.Equal(word.Word(3), cpu.Memory.Words[0101])

	assert.NoError(cpu.Step())
	assert.Equal(word.Word(0), cpu.Memory.Words[0102])

	assert.ErrorIs(cpu.Step(), stop.INVALID_ARGUMENT)
	assert.Equal(word.Word(0777), cpu.Memory.Words[0103])
}

func TestPanelWindowStore(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		inst(0, OP_MOVE, 0100, 0, 07771),
		inst(0, OP_MOVE, 07771, 0, 0101),
	)
	cpu.Memory.ModeII = true
	cpu.Memory.Panel = [4]word.Word{07, 0, 0, 0}
	cpu.Memory.Words[0100] = 0123

	assert.NoError(cpu.Step())
	assert.Equal(word.Word(0123), cpu.RR)
	assert.Equal(word.Word(07), cpu.Memory.Words[07771])

	// P1 reads the word underneath the window.
	assert.NoError(cpu.Step())
	assert.Equal(word.Word(07), cpu.Memory.Words[0101])
	assert.Equal(word.Word(07), cpu.P1)

	cpu.Memory.ModeII = false
	cpu.Memory.Panel[0] = 0
	assert.Equal(word.Word(07), cpu.Memory.Load(07771))
}

func TestLogic(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		op     Opcode
		x, y   word.Word
		stored word.Word
		w      bool
		err    error
	}{
		{OP_COMPARE, 5, 5, 0, true, nil},
		{OP_COMPARE, 5, 3, 6, false, nil},
		{OP_COMPARE_STOP, 5, 5, 0, true, nil},
		{OP_COMPARE_STOP, 5, 3, 0777, false, stop.ASSERT},
		{OP_AND, 6, 3, 2, false, nil},
		{OP_AND, 4, 3, 0, true, nil},
		{OP_OR, 6, 3, 7, false, nil},
	}

	for n, entry := range table {
		cpu := newTestCpu(inst(0, entry.op, 0100, 0101, 0102))
		cpu.Memory.Words[0100] = entry.x
		cpu.Memory.Words[0101] = entry.y
		cpu.Memory.Words[0102] = 0777

		err := cpu.Step()
		if entry.err == nil {
			assert.NoError(err, n)
		} else {
			assert.ErrorIs(err, entry.err, n)
			assert.Equal(2, cpu.KRA, n)
			assert.Equal(cpu.Memory.Words[1], cpu.RK, n)
		}
		assert.Equal(entry.stored, cpu.Memory.Words[0102], n)
		assert.Equal(entry.w, cpu.W, n)
	}
}

func TestCommandArithmetic(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		op       Opcode
		x, y     word.Word
		expected word.Word
		w        bool
	}{
		{OP_ADD_COMMANDS, word.MakeInstruction(0, 001, 1, 2, 3), 5, word.MakeInstruction(0, 001, 1, 2, 010), false},
		{OP_ADD_COMMANDS, word.TAG | word.MANTISSA, 1, word.TAG, true},
		{OP_SUB_COMMANDS, word.MakeInstruction(0, 001, 1, 2, 010), 5, word.MakeInstruction(0, 001, 1, 2, 3), false},
		{OP_SUB_COMMANDS, 0, 1, word.MANTISSA, true},
		{OP_ADD_OPCODES, word.MakeInstruction(1, 002, 7, 7, 7), word.MakeInstruction(0, 001, 0, 0, 0), word.MakeInstruction(1, 003, 7, 7, 7), false},
		{OP_ADD_OPCODES, word.TAG | 5, word.TAG, 5, true},
		{OP_SUB_OPCODES, word.MakeInstruction(0, 003, 1, 1, 1), word.MakeInstruction(0, 001, 0, 0, 0), word.MakeInstruction(0, 002, 1, 1, 1), false},
	}

	for n, entry := range table {
		cpu := newTestCpu(inst(0, entry.op, 0100, 0101, 0102))
		cpu.Memory.Words[0100] = entry.x
		cpu.Memory.Words[0101] = entry.y

		assert.NoError(cpu.Step(), n)
		assert.Equal(entry.expected, cpu.Memory.Words[0102], n)
		assert.Equal(entry.w, cpu.W, n)
		assert.InDelta(DELAY_SHORT, cpu.Delay, 1e-9, n)
	}
}

func TestShifts(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		op       Opcode
		a1       int
		count    word.Word // word at a1
		y        word.Word
		expected word.Word
		w        bool
		delay    float64
	}{
		{OP_SHIFT_MANT_ADDR, 0103, 0, num(1, 70) | word.SIGN, num(8, 70) | word.SIGN, false, 61.5 + 4.5},
		{OP_SHIFT_MANT_ADDR, 0077, 0, num(1, 70), num(0, 70), true, 61.5 + 1.5},
		{OP_SHIFT_MANT_EXP, 0120, num(0, 66), num(3, 5), num(12, 5), false, 24 + 3},
		{OP_SHIFT_CODE_ADDR, 0110, 0, 1, 0400, false, 61.5 + 12},
		{OP_SHIFT_CODE_ADDR, 0110, 0, word.WORD45, word.WORD45 &^ 0377, false, 61.5 + 12},
		{OP_SHIFT_CODE_EXP, 0120, num(0, 60), 020, 1, false, 24 + 6},
		{OP_SHIFT_CODE_EXP, 0120, num(0, 60), 7, 0, true, 24 + 6},
	}

	for n, entry := range table {
		cpu := newTestCpu(inst(0, entry.op, entry.a1, 0101, 0102))
		cpu.Memory.Words[0120] = entry.count
		cpu.Memory.Words[0101] = entry.y

		assert.NoError(cpu.Step(), n)
		assert.Equal(entry.expected, cpu.Memory.Words[0102], n)
		assert.Equal(entry.w, cpu.W, n)
		assert.InDelta(entry.delay, cpu.Delay, 1e-9, n)
	}
}

func TestCyclic(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		op       Opcode
		x, y     word.Word
		expected word.Word
		w        bool
	}{
		{OP_ADD_CYCLIC, 1, 2, 3, false},
		{OP_ADD_CYCLIC, word.MANTISSA, 1, 1, true},
		{OP_ADD_CYCLIC, word.TAG, word.TAG, word.BIT37, false},
		{OP_SUB_CYCLIC, 5, 3, 2, false},
		{OP_SUB_CYCLIC, 3, 5, word.MANTISSA - 2, false},
		{OP_SUB_CYCLIC, num(0, 2), num(0, 1), num(0, 1), false},
		{OP_SUB_CYCLIC, num(0, 1), num(0, 2), 0776777777777777, true},
	}

	for n, entry := range table {
		cpu := newTestCpu(inst(0, entry.op, 0100, 0101, 0102))
		cpu.Memory.Words[0100] = entry.x
		cpu.Memory.Words[0101] = entry.y

		assert.NoError(cpu.Step(), n)
		assert.Equal(entry.expected, cpu.Memory.Words[0102], n)
		assert.Equal(entry.w, cpu.W, n)
	}

	// Cyclic addition is the checksum.
	pairs := [][2]word.Word{
		{one, half},
		{word.WORD45, word.WORD45},
		{word.MakeInstruction(7, 077, 07777, 1, 2), word.MakeInstruction(1, 1, 1, 07777, 07777)},
	}
	for n, pair := range pairs {
		cpu := newTestCpu(inst(0, OP_ADD_CYCLIC, 0100, 0101, 0102))
		cpu.Memory.Words[0100] = pair[0]
		cpu.Memory.Words[0101] = pair[1]

		assert.NoError(cpu.Step(), n)
		assert.Equal(word.Checksum(pair[0], pair[1]), cpu.Memory.Words[0102], n)
	}
}

func TestShiftCyclic(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		inst(0, OP_SHIFT_CYCLIC, 0100, 0, 0102),
		inst(0, OP_SHIFT_CYCLIC, 0101, 0, 0),
	)
	cpu.Memory.Words[0100] = 1
	cpu.Memory.Words[0101] = 1 << 24

	assert.NoError(cpu.Step())
	assert.Equal(word.Word(1<<24), cpu.Memory.Words[0102])
	assert.False(cpu.W)

	assert.NoError(cpu.Step())
	assert.Equal(word.Word(1), cpu.RR)
	assert.True(cpu.W)
}

func TestExponent(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		op       Opcode
		a1       int
		expected word.Word
		w        bool
		delay    float64
	}{
		{OP_ADD_ADDR_EXP, 0102, num(1<<35, 66), true, DELAY_ADDRESS},
		{OP_SUB_ADDR_EXP, 0102, num(1<<35, 62), false, DELAY_ADDRESS},
		{OP_ADD_EXP_EXP, 0120, num(1<<35, 67), true, DELAY_SHORT},
		{OP_SUB_EXP_EXP, 0120, num(1<<35, 61), false, DELAY_SHORT},
	}

	for n, entry := range table {
		cpu := newTestCpu(inst(0, entry.op, entry.a1, 0101, 0102))
		cpu.Memory.Words[0101] = half
		cpu.Memory.Words[0120] = num(0, 67)

		assert.NoError(cpu.Step(), n)
		assert.Equal(entry.expected, cpu.Memory.Words[0102], n)
		assert.Equal(entry.w, cpu.W, n)
		assert.InDelta(entry.delay, cpu.Delay, 1e-9, n)
	}

	cpu := newTestCpu(inst(0, OP_ADD_ADDR_EXP, 0177, 0101, 0102))
	cpu.Memory.Words[0101] = num(1<<35, 127)
	assert.ErrorIs(cpu.Step(), stop.EXPONENT_OVERFLOW)
}

func TestControl(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		inst(0, OP_RA_BY_ADDR, 0123, 0007, 0100),
		inst(0, OP_RA_BY_CODE, 0123, 0101, 0102),
		inst(0, OP_JUMP_RETURN, 0123, 0200, 0103),
	)
	cpu.Memory.Words[0101] = word.MakeInstruction(0, 0, 0, 015, 0)

	assert.NoError(cpu.Step())
	assert.Equal(7, cpu.RA)
	assert.Equal(word.MakeInstruction(0, 052, 0, 0123, 0), cpu.Memory.Words[0100])

	assert.NoError(cpu.Step())
	assert.Equal(015, cpu.RA)
	assert.Equal(word.MakeInstruction(0, 052, 0, 0123, 0), cpu.Memory.Words[0102])

	assert.NoError(cpu.Step())
	assert.Equal(0200, cpu.KRA)
	assert.Equal(word.MakeInstruction(0, 016, 0, 0123, 0), cpu.Memory.Words[0103])

	assert.InDelta(DELAY_RA*2+DELAY_SHORT, cpu.Delay, 1e-9)
}

func TestJumps(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		op    Opcode
		w     bool
		taken bool
	}{
		{OP_JUMP_W1, true, true},
		{OP_JUMP_W1, false, false},
		{OP_JUMP, false, true},
		{OP_JUMP, true, true},
		{OP_JUMP_W0, false, true},
		{OP_JUMP_W0, true, false},
	}

	for n, entry := range table {
		cpu := newTestCpu(inst(0, entry.op, 0100, 0200, 0102))
		cpu.Memory.Words[0100] = 0123
		cpu.W = entry.w

		assert.NoError(cpu.Step(), n)
		if entry.taken {
			assert.Equal(0200, cpu.KRA, n)
		} else {
			assert.Equal(2, cpu.KRA, n)
		}
		assert.Equal(word.Word(0123), cpu.Memory.Words[0102], n)
		assert.Equal(entry.w, cpu.W, n)
	}
}

func TestLoops(t *testing.T) {
	assert := assert.New(t)

	table := [...]struct {
		op    Opcode
		ra    int
		w     bool
		taken bool
	}{
		{OP_LOOP_LT, 010, false, true},
		{OP_LOOP_LT, 020, false, false},
		{OP_LOOP_GE, 020, false, true},
		{OP_LOOP_GE, 017, true, false},
		{OP_LOOP_LT_W1, 010, true, true},
		{OP_LOOP_LT_W1, 010, false, false},
		{OP_LOOP_GE_W1, 030, true, true},
		{OP_LOOP_GE_W1, 030, false, false},
		{OP_LOOP_LT_W0, 010, false, true},
		{OP_LOOP_LT_W0, 010, true, false},
		{OP_LOOP_GE_W0, 020, false, true},
		{OP_LOOP_GE_W0, 020, true, false},
	}

	for n, entry := range table {
		cpu := newTestCpu(inst(0, entry.op, 020, 0200, 0345))
		cpu.RA = entry.ra
		cpu.W = entry.w

		assert.NoError(cpu.Step(), n)
		if entry.taken {
			assert.Equal(0200, cpu.KRA, n)
		} else {
			assert.Equal(2, cpu.KRA, n)
		}
		assert.Equal(0345, cpu.RA, n)
	}
}

func TestStopRewind(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		inst(0, OP_MOVE, 0, 0, 0),
		inst(0, OP_STOP_017, 0, 0, 0100),
	)
	cpu.Memory.Words[0100] = 0777

	err := cpu.Run(context.Background())
	assert.ErrorIs(err, stop.STOP)
	assert.Equal(2, cpu.KRA)
	assert.Equal(word.Word(0), cpu.Memory.Words[0100])

	// A stop at the first address stays there.
	cpu.KRA = 1
	cpu.Memory.Words[1] = inst(0, OP_STOP_037, 0, 0, 0)
	assert.ErrorIs(cpu.Step(), stop.STOP)
	assert.Equal(1, cpu.KRA)
	assert.Equal(cpu.Memory.Words[1], cpu.RK)
}

func TestRunOut(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu()
	cpu.KRA = 07777

	err := cpu.Run(context.Background())
	assert.ErrorIs(err, stop.RUNOUT)
	assert.Equal(MEMORY_SIZE, cpu.KRA)
}

func TestBreakpoint(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(
		inst(0, OP_MOVE, 0, 0, 0),
		inst(0, OP_MOVE, 0, 0, 0),
		inst(0, OP_MOVE, 0, 0, 0),
		inst(0, OP_STOP_077, 0, 0, 0),
	)
	cpu.Break[3] = true

	err := cpu.Run(context.Background())
	assert.ErrorIs(err, stop.BREAKPOINT)
	assert.Equal(3, cpu.KRA)

	err = cpu.Run(context.Background())
	assert.ErrorIs(err, stop.STOP)
	assert.Equal(4, cpu.KRA)
}

func TestRunContext(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(inst(0, OP_JUMP, 0, 1, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cpu.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
}

func TestGarbage(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(inst(0, OP_MOVE, 0100, 0, 0101))
	cpu.Memory.Words[0100] = word.BIT46 | 1

	assert.ErrorIs(cpu.Step(), stop.MEMORY_GARBAGE)
	assert.Equal(word.Word(0), cpu.Memory.Words[0101])

	cpu.KRA = 1
	cpu.CheckMemory = false
	assert.NoError(cpu.Step())
	assert.Equal(word.BIT46|1, cpu.Memory.Words[0101])
}

func TestReset(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(inst(0, OP_IO_SETUP, int(io.DRUM), 0, 0100))
	assert.NoError(cpu.Step())
	assert.True(cpu.Io.Latched())

	cpu.P1 = 1
	cpu.RA = 5
	cpu.Reset()
	assert.False(cpu.Io.Latched())
	assert.Equal(word.Word(0), cpu.P1)
	assert.Equal(0.0, cpu.Delay)
	assert.Equal(5, cpu.RA)
	assert.Equal(2, cpu.KRA)

	assert.Contains(cpu.String(), "  kra: 0002\n")
	assert.Contains(cpu.String(), "   ra: 0005\n")
}

func TestExternalIo(t *testing.T) {
	assert := assert.New(t)

	const (
		write   = int(io.DRUM | io.WRITE)
		patch   = int(io.DRUM | io.WRITE | io.DIS_CHECK)
		read    = int(io.DRUM)
		readDis = int(io.DRUM | io.DIS_STOP)
	)

	program := func(readCond int) []word.Word {
		return []word.Word{
			inst(0, OP_IO_SETUP, write, 0, 0110),
			inst(0, OP_IO_EXEC, 0100, 0, 0200),
			inst(0, OP_IO_SETUP, read, 0, 0310),
			inst(0, OP_IO_EXEC, 0300, 0, 0201),
			inst(0, OP_IO_SETUP, patch, 5, 0120),
			inst(0, OP_IO_EXEC, 0120, 0, 0),
			inst(0, OP_IO_SETUP, readCond, 0, 0510),
			inst(0, OP_IO_EXEC, 0500, 0400, 0),
			inst(0, OP_STOP_077, 0, 0, 0),
		}
	}

	for _, readCond := range []int{read, readDis} {
		cpu := newTestCpu(program(readCond)...)
		defer cpu.Close()

		assert.NoError(cpu.Io.Drums.SetMap(0, 1))
		assert.NoError(cpu.Io.Drums.SetMap(1, 0))
		assert.NoError(cpu.Io.Drums.Attach(1, filepath.Join(t.TempDir(), "drum.bin")))

		for addr := 0100; addr <= 0110; addr++ {
			cpu.Memory.Words[addr] = word.MakeInstruction(0, 1, addr, addr, addr)
		}
		cpu.Memory.Words[0120] = 01234
		cpu.Memory.Words[0400] = inst(0, OP_STOP_057, 0, 0, 0)

		err := cpu.Run(context.Background())
		assert.Equal(cpu.Memory.Words[0100:0111], cpu.Memory.Words[0300:0311])
		assert.NotEqual(word.Word(0), cpu.Memory.Words[0200])
		assert.Equal(cpu.Memory.Words[0200], cpu.Memory.Words[0201])
		assert.Equal(word.Word(01234), cpu.Memory.Words[0505])

		if readCond == read {
			assert.ErrorIs(err, stop.READ_ERROR)
			assert.Equal(8, cpu.KRA)
		} else {
			assert.ErrorIs(err, stop.STOP)
			assert.Equal(0400, cpu.KRA)
		}
	}

	cpu := newTestCpu(inst(0, OP_IO_EXEC, 0100, 0, 0))
	assert.ErrorIs(cpu.Step(), stop.MISSING_IO_SETUP)

	cpu = newTestCpu(inst(0, OP_IO_SETUP, int(io.DRUM|io.TAPE), 0, 0))
	assert.ErrorIs(cpu.Step(), stop.DRUM_BAD_BITS)
}

func TestCards(t *testing.T) {
	assert := assert.New(t)

	var src Memory
	src.Words[1] = inst(0, OP_STOP_077, 0, 0, 0)
	src.Words[2] = 0123

	var deck bytes.Buffer
	_, sum, err := (&io.CardPunch{Output: &deck}).Punch(&src, io.Request{Condition: io.PUNCH, Start: 1, End: 2})
	assert.NoError(err)
	text := deck.String()

	cpu := newTestCpu(
		inst(0, OP_CARDS_STOP, 0100, 0300, 0200),
		inst(0, OP_STOP_017, 0, 0, 0),
	)
	cpu.Cards = io.NewDeck(strings.NewReader(text))

	err = cpu.Run(context.Background())
	assert.ErrorIs(err, stop.STOP)
	assert.Equal(2, cpu.KRA)
	assert.Equal(src.Words[1:3], cpu.Memory.Words[0100:0102])
	assert.Equal(sum, cpu.Memory.Words[0200])
	assert.InDelta(3*DELAY_CARD+DELAY_SHORT, cpu.Delay, 1e-9)

	// The deck is empty now.
	cpu.KRA = 1
	assert.ErrorIs(cpu.Step(), stop.NO_CARDS)
	assert.Equal(cpu.Memory.Words[1], cpu.RK)

	cpu.Cards = nil
	cpu.KRA = 1
	assert.ErrorIs(cpu.Step(), stop.NO_CARDS)

	// Boot jumps to the load address.
	cpu = newTestCpu(inst(0, OP_CARDS_STOP, 0100, 0300, 0200))
	cpu.Cards = io.NewDeck(strings.NewReader(text))
	cpu.BootCards = true
	err = cpu.Run(context.Background())
	assert.ErrorIs(err, stop.STOP)
	assert.Equal(0100, cpu.KRA)
	assert.False(cpu.BootCards)
}

func TestCardsBadSum(t *testing.T) {
	assert := assert.New(t)

	text := "1  0 00 0000 0000 0001  0\n1  0 00 0000 0000 0007  1\n"

	cpu := newTestCpu(inst(0, OP_CARDS_STOP, 0100, 0300, 0200))
	cpu.Cards = io.NewDeck(strings.NewReader(text))
	cpu.Memory.Words[0200] = 0777

	assert.ErrorIs(cpu.Step(), stop.CARD_READER_BAD_SUM)
	assert.Equal(0277, cpu.KRA)
	assert.Equal(word.Word(1), cpu.Memory.Words[0100])
	assert.Equal(word.Word(0777), cpu.Memory.Words[0200])

	cpu = newTestCpu(inst(0, OP_CARDS, 0100, 0300, 0200))
	cpu.Cards = io.NewDeck(strings.NewReader(text))
	assert.NoError(cpu.Step())
	assert.Equal(0300, cpu.KRA)
	assert.Equal(word.Word(1), cpu.Memory.Words[0200])
}
