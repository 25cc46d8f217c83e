package cpu

import (
	"errors"
	"strconv"

	"github.com/ezrec/m20/translate"
	"github.com/ezrec/m20/word"
)

var f = translate.From

var (
	// Loader errors
	ErrProgramFormat  = errors.New(f("program format"))
	ErrProgramAddress = errors.New(f("program address out of memory"))

	// Instruction parse errors
	ErrOpcodeUnknown   = errors.New(f("opcode unknown"))
	ErrAddressSyntax   = errors.New(f("address syntax"))
	ErrAddressRange    = errors.New(f("address out of range"))
	ErrOpcodeExtraArgs = errors.New(f("excessive arguments"))
)

// ErrInstruction is the context of a stop raised by an instruction.
type ErrInstruction struct {
	Address int       // Address the instruction was fetched from.
	Code    word.Word // Instruction word.
}

func (ei ErrInstruction) Error() string {
	return f("%04o: %v", ei.Address, Disassemble(ei.Code))
}

func (ei ErrInstruction) Is(err error) (ok bool) {
	_, ok = err.(ErrInstruction)
	return
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %v '%v' %v", strconv.Itoa(err.LineNo), err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
