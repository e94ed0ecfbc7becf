package cpu

import (
	"errors"

	"github.com/mos6502/emucore/translate"
)

var f = translate.From

// Assembly-time category errors, per spec §7. Each is fatal to the
// current Assemble call; there is no partial load.
var (
	ErrUnknownInstruction = errors.New(f("unknown instruction"))
	ErrInvalidMode        = errors.New(f("instruction does not support this addressing mode"))
	ErrInvalidOperand     = errors.New(f("operand is not a recognized value, register, or label"))
	ErrBranchRange        = errors.New(f("branch offset out of range (-128..127)"))
	ErrLabelDuplicate     = errors.New(f("label already defined"))
	ErrLabelMissing       = errors.New(f("label is not defined"))
)

// Runtime errors, per spec §7/§4.2.
var (
	// ErrNotReset is returned by Run when the CPU halted on the step
	// limit and has not been explicitly Reset since. A fresh Reset is
	// required before Run is allowed to continue; see spec §9.
	ErrNotReset = errors.New(f("CPU hit the step limit; call Reset before running again"))
)

// SyntaxError wraps an assembly-time error with the source line number
// and text that produced it, in the manner of the teacher's *ErrSyntax.
type SyntaxError struct {
	Line int
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	return f("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// UnknownOpcodeError describes a runtime fetch of a byte with no entry in
// the opcode table. It is not itself an assembly-time error — BRK is a
// clean halt, and this is one of the non-BRK ways execution halts (the
// other is Run reaching StepLimit).
type UnknownOpcodeError struct {
	PC     uint16
	Opcode byte
}

func (e *UnknownOpcodeError) Error() string {
	return f("unknown opcode 0x%02X at $%04X", e.Opcode, e.PC)
}

var _ error = (*UnknownOpcodeError)(nil)

// errLine is a small helper used by the assembler to attach line context
// to a category error without repeating the &SyntaxError{...} literal at
// every call site.
func errLine(lineno int, text string, err error) error {
	if err == nil {
		return nil
	}
	return &SyntaxError{Line: lineno, Text: text, Err: err}
}
