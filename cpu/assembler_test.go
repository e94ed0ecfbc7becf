package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembleSimpleProgram(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble("LDA #$05\nSTA $10\nBRK\n")
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal(ProgramBase, prog.Start)
	assert.Equal([]byte{0xA9, 0x05, 0x85, 0x10, 0x00}, prog.Bytes)
}

func TestAssemblePrefersZeroPageWhenValueFits(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble("LDA $FF\n")
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal([]byte{0xA5, 0xFF}, prog.Bytes, "zero-page opcode, not absolute")
}

func TestAssembleUsesAbsoluteWhenValueExceedsZeroPage(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble("LDA $0200\n")
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal([]byte{0xAD, 0x00, 0x02}, prog.Bytes)
}

func TestAssembleLdxAbsoluteSupported(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble("LDX $0200\n")
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal([]byte{0xAE, 0x00, 0x02}, prog.Bytes)
}

func TestAssembleForwardLabelReference(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble("JMP SKIP\nBRK\nSKIP:\nLDA #$01\n")
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal([]byte{0x4C, 0x04, 0x06, 0x00, 0xA9, 0x01}, prog.Bytes)
}

func TestAssembleBackwardBranch(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble("LOOP:\nNOP\nBNE LOOP\n")
	assert.NoError(err)
	if err != nil {
		return
	}

	// LOOP at $0600; BNE at $0601; target = $0600, offset = 0x0600-0x0603 = -3
	assert.Equal([]byte{0xEA, 0xD0, 0xFD}, prog.Bytes)
}

func TestAssembleBranchOutOfRangeFails(t *testing.T) {
	assert := assert.New(t)

	var src string
	src += "BNE FAR\n"
	for i := 0; i < 130; i++ {
		src += "NOP\n"
	}
	src += "FAR:\n"

	asm := &Assembler{}
	_, err := asm.Assemble(src)
	assert.Error(err)
	assert.ErrorIs(err, ErrBranchRange)
}

func TestAssembleDuplicateLabelFails(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Assemble("A:\nNOP\nA:\nNOP\n")
	assert.Error(err)
	assert.ErrorIs(err, ErrLabelDuplicate)
}

func TestAssembleMissingLabelFails(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Assemble("JMP NOWHERE\n")
	assert.Error(err)
	assert.ErrorIs(err, ErrLabelMissing)
}

func TestAssembleUnknownInstructionFails(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Assemble("FROB $10\n")
	assert.Error(err)
	assert.ErrorIs(err, ErrUnknownInstruction)
}

func TestAssembleInvalidOperandOnLabelToNonJumpFails(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := asm.Assemble("LDA SOMEWHERE\nSOMEWHERE:\nNOP\n")
	assert.Error(err)
	assert.ErrorIs(err, ErrInvalidOperand)
}

func TestAssembleEquateSubstitution(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble(".equ BASE $10\nLDA BASE\n")
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal([]byte{0xA5, 0x10}, prog.Bytes)
}

func TestAssembleEquateExpression(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble(".equ BASE $10\n.equ NEXT $(BASE + 1)\nLDA NEXT\n")
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal([]byte{0xA5, 0x11}, prog.Bytes)
}

func TestAssembleCommentsAndBlankLinesIgnored(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble("; a comment\n\nNOP ; trailing comment\n\n")
	assert.NoError(err)
	if err != nil {
		return
	}

	assert.Equal([]byte{0xEA}, prog.Bytes)
}

func TestAssembleProgramTracksSourceLines(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Assemble("NOP\nLDA #$01\n")
	assert.NoError(err)
	if err != nil {
		return
	}

	line, ok := prog.LineAt(ProgramBase)
	assert.True(ok)
	assert.Equal(1, line)

	line, ok = prog.LineAt(ProgramBase + 1)
	assert.True(ok)
	assert.Equal(2, line)
}
