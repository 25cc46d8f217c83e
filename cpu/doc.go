// Package cpu implements the M-20 central processor, and the loader for its
// program text.
//
// The processor consists of the instruction address register (KRA), the
// instruction register (RK), the address register (RA) used for indexing,
// the result register (RR), the trigger W used by conditional jumps, and the
// low product register P1. It executes three-address instructions out of a
// 4096 word core memory, and reaches the drums, tapes, printer and punch
// through the external device dispatcher.
//
// Every instruction either completes or reports a single stop code, layered
// under an ErrInstruction giving its address and word.
package cpu
