package cpu

import (
	"fmt"
	"iter"
	"strings"

	"github.com/ezrec/m20/word"
)

// Opcode is the 6-bit operation code of an instruction.
type Opcode int

const (
	OP_MOVE            = Opcode(000) // transfer_m2m
	OP_ADD_RN          = Opcode(001) // add_rn
	OP_SUB_RN          = Opcode(002) // sub_rn
	OP_SUB_MOD_RN      = Opcode(003) // sub_mod_rn
	OP_DIV_R           = Opcode(004) // div_r
	OP_MUL_RN          = Opcode(005) // mult_rn
	OP_ADD_ADDR_EXP    = Opcode(006) // add_adr2exp
	OP_ADD_CYCLIC      = Opcode(007) // add_cyc
	OP_CARDS_STOP      = Opcode(010) // in_codes_stop
	OP_LOOP_LT_W1      = Opcode(011) // goto_cyc_pa_w1_011
	OP_LOOP_LT         = Opcode(012) // goto_cyc_pa_012
	OP_ADD_COMMANDS    = Opcode(013) // add_cmds
	OP_SHIFT_MANT_ADDR = Opcode(014) // shift_mant_by_adr
	OP_COMPARE         = Opcode(015) // compare
	OP_JUMP_RETURN     = Opcode(016) // jump_with_return
	OP_STOP_017        = Opcode(017) // stop_017
	OP_PANEL_KEY       = Opcode(020) // ld_key_reg
	OP_ADD_N           = Opcode(021) // add_n
	OP_SUB_N           = Opcode(022) // sub_n
	OP_SUB_MOD_N       = Opcode(023) // sub_mod_n
	OP_DIV             = Opcode(024) // div
	OP_MUL_N           = Opcode(025) // mult_n
	OP_ADD_EXP_EXP     = Opcode(026) // add_exp2exp
	OP_SUB_CYCLIC      = Opcode(027) // sub_cyc
	OP_CARDS           = Opcode(030) // in_codes
	OP_LOOP_GE_W1      = Opcode(031) // goto_cyc_pa_w1_031
	OP_LOOP_GE         = Opcode(032) // goto_cyc_pa_032
	OP_SUB_COMMANDS    = Opcode(033) // sub_cmds
	OP_SHIFT_MANT_EXP  = Opcode(034) // shift_mant_by_exp
	OP_COMPARE_STOP    = Opcode(035) // comp_stop
	OP_JUMP_W1         = Opcode(036) // cond_jump_w1
	OP_STOP_037        = Opcode(037) // stop_037
	OP_BLANK_040       = Opcode(040) // blank_040
	OP_ADD_R           = Opcode(041) // add_r
	OP_SUB_R           = Opcode(042) // sub_r
	OP_SUB_MOD_R       = Opcode(043) // sub_mod_r
	OP_SQRT_R          = Opcode(044) // sqrt_r
	OP_MUL_R           = Opcode(045) // mult_r
	OP_SUB_ADDR_EXP    = Opcode(046) // sub_adr_from_exp
	OP_LOW_PRODUCT     = Opcode(047) // out_low_bits_of_mult
	OP_IO_SETUP        = Opcode(050) // io_ext_dev_050
	OP_LOOP_LT_W0      = Opcode(051) // goto_cyc_pa_w0_051
	OP_RA_BY_ADDR      = Opcode(052) // chg_ra_by_adr
	OP_ADD_OPCODES     = Opcode(053) // add_ops
	OP_SHIFT_CODE_ADDR = Opcode(054) // shift_code_by_adr
	OP_AND             = Opcode(055) // log_mult
	OP_JUMP            = Opcode(056) // jump_by_addr
	OP_STOP_057        = Opcode(057) // stop_057
	OP_BLANK_060       = Opcode(060) // blank_060
	OP_ADD             = Opcode(061) // add
	OP_SUB             = Opcode(062) // sub
	OP_SUB_MOD         = Opcode(063) // sub_mod
	OP_SQRT            = Opcode(064) // sqrt
	OP_MUL             = Opcode(065) // mult
	OP_SUB_EXP_EXP     = Opcode(066) // sub_exp_from_exp
	OP_SHIFT_CYCLIC    = Opcode(067) // shift_cyc
	OP_IO_EXEC         = Opcode(070) // io_ext_dev_070
	OP_LOOP_GE_W0      = Opcode(071) // goto_cyc_pa_w0_071
	OP_RA_BY_CODE      = Opcode(072) // chg_ra_by_code
	OP_SUB_OPCODES     = Opcode(073) // sub_ops
	OP_SHIFT_CODE_EXP  = Opcode(074) // shift_code_by_exp
	OP_OR              = Opcode(075) // log_add
	OP_JUMP_W0         = Opcode(076) // cond_jump_w0
	OP_STOP_077        = Opcode(077) // stop_077

	OPCODE_COUNT = 64
)

var opcodeName = [OPCODE_COUNT]string{
	"transfer_m2m", "add_rn", "sub_rn", "sub_mod_rn", "div_r", "mult_rn", "add_adr2exp", "add_cyc",
	"in_codes_stop", "goto_cyc_pa_w1_011", "goto_cyc_pa_012", "add_cmds", "shift_mant_by_adr", "compare", "jump_with_return", "stop_017",
	"ld_key_reg", "add_n", "sub_n", "sub_mod_n", "div", "mult_n", "add_exp2exp", "sub_cyc",
	"in_codes", "goto_cyc_pa_w1_031", "goto_cyc_pa_032", "sub_cmds", "shift_mant_by_exp", "comp_stop", "cond_jump_w1", "stop_037",
	"blank_040", "add_r", "sub_r", "sub_mod_r", "sqrt_r", "mult_r", "sub_adr_from_exp", "out_low_bits_of_mult",
	"io_ext_dev_050", "goto_cyc_pa_w0_051", "chg_ra_by_adr", "add_ops", "shift_code_by_adr", "log_mult", "jump_by_addr", "stop_057",
	"blank_060", "add", "sub", "sub_mod", "sqrt", "mult", "sub_exp_from_exp", "shift_cyc",
	"io_ext_dev_070", "goto_cyc_pa_w0_071", "chg_ra_by_code", "sub_ops", "shift_code_by_exp", "log_add", "cond_jump_w0", "stop_077",
}

// Instruction delays, in microseconds.
const (
	DELAY_SHORT   = 24.0
	DELAY_ADD     = 28.5
	DELAY_ADDRESS = 61.5 // exponent and shift by address
	DELAY_SHIFT   = 1.5  // per bit shifted
	DELAY_MUL     = 69.5
	DELAY_DIV     = 136.5
	DELAY_SQRT    = 275.0
	DELAY_CARD    = 50000.0 // per card read
	DELAY_RA      = 28.5
)

func (op Opcode) String() string {
	if op < 0 || op >= OPCODE_COUNT {
		return fmt.Sprintf("Opcode(%o)", int(op))
	}
	return opcodeName[op]
}

// ParseOpcode returns the opcode of a mnemonic. Case is ignored.
func ParseOpcode(name string) (op Opcode, err error) {
	for n, str := range opcodeName {
		if strings.EqualFold(str, name) {
			op = Opcode(n)
			return
		}
	}

	err = fmt.Errorf("%w: %q", ErrOpcodeUnknown, name)
	return
}

// Defines iterates over the upper case mnemonics and values of the opcodes.
func Defines() iter.Seq2[string, int] {
	return func(yield func(string, int) bool) {
		for n, name := range opcodeName {
			if !yield(strings.ToUpper(name), n) {
				return
			}
		}
	}
}

// OpcodeOf returns the opcode of an instruction word.
func OpcodeOf(w word.Word) Opcode {
	return Opcode(w.Opcode())
}

// IsMul returns true for the four multiplication opcodes.
func (op Opcode) IsMul() bool {
	switch op {
	case OP_MUL_RN, OP_MUL_N, OP_MUL_R, OP_MUL:
		return true
	}
	return false
}
