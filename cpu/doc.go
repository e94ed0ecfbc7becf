// Package cpu implements a two-pass symbolic assembler and a cycle-counted
// interpreter for a subset of MOS 6502 mnemonics.
//
// The CPU owns a flat 64 KiB memory and a six-field register file (A, X, Y,
// PC, SP, P). The assembler translates assembly source text into a byte
// vector and a fixed start address; the interpreter fetches, decodes, and
// executes that byte vector against the register file and memory, keeping
// a running cycle count and a running/assembled/halted lifecycle.
package cpu
