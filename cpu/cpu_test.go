package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepFalseWhenNotRunningOrAssembled(t *testing.T) {
	assert := assert.New(t)

	c := NewCPU()
	assert.False(c.Step())

	c.Load([]byte{0xEA}, ProgramBase)
	assert.False(c.Step(), "assembled but not running")

	before := c.Regs
	c.Running = false
	assert.False(c.Step())
	assert.Equal(before, c.Regs)
}

func TestStepHaltsOnUnknownOpcode(t *testing.T) {
	assert := assert.New(t)

	c := NewCPU()
	c.Load([]byte{0xFF}, ProgramBase)
	c.Running = true

	assert.False(c.Step())
	assert.False(c.Running)
}

func TestRunHaltsOnBRK(t *testing.T) {
	assert := assert.New(t)

	c := NewCPU()
	c.Load([]byte{0xA9, 0x05, 0x00}, ProgramBase) // LDA #$05; BRK
	assert.NoError(c.Run())

	assert.Equal(byte(0x05), c.Regs.A)
	assert.False(c.Running)
}

func TestRunStepLimitRequiresReset(t *testing.T) {
	assert := assert.New(t)

	c := NewCPU()
	pb := ProgramBase
	loop := []byte{0xEA, 0x4C, byte(pb), byte(pb >> 8)} // NOP; JMP start
	c.Load(loop, ProgramBase)

	assert.NoError(c.Run())
	assert.Error(c.Run())

	c.Reset()
	c.Load(loop, ProgramBase)
	assert.NoError(c.Run())
}

func TestAdcCarryAndOverflow(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		name    string
		a, n    byte
		carryIn bool
		result  byte
		carry   bool
		overfl  bool
	}{
		{"no overflow", 0x01, 0x01, false, 0x02, false, false},
		{"signed overflow", 0x7F, 0x01, false, 0x80, false, true},
		{"unsigned carry", 0xFF, 0x01, false, 0x00, true, false},
		{"carry in chains", 0x01, 0x01, true, 0x03, false, false},
	}

	for _, tc := range table {
		c := NewCPU()
		c.Regs.A = tc.a
		c.Regs.SetFlag(FlagCarry, tc.carryIn)
		c.adc(tc.n)

		assert.Equal(tc.result, c.Regs.A, tc.name)
		assert.Equal(tc.carry, c.Regs.Flag(FlagCarry), "%s carry", tc.name)
		assert.Equal(tc.overfl, c.Regs.Flag(FlagOverflow), "%s overflow", tc.name)
	}
}

func TestSbcBorrowAndOverflow(t *testing.T) {
	assert := assert.New(t)

	c := NewCPU()
	c.Regs.A = 0x00
	c.Regs.SetFlag(FlagCarry, true) // no pending borrow
	c.sbc(0x01)

	assert.Equal(byte(0xFF), c.Regs.A)
	assert.False(c.Regs.Flag(FlagCarry), "borrow occurred")
	assert.False(c.Regs.Flag(FlagOverflow), "no signed overflow")
}

func TestCompareLeavesRegisterUnchanged(t *testing.T) {
	assert := assert.New(t)

	c := NewCPU()
	c.Regs.A = 0x10
	c.compare(c.Regs.A, 0x10)

	assert.Equal(byte(0x10), c.Regs.A)
	assert.True(c.Regs.Flag(FlagCarry))
	assert.True(c.Regs.Flag(FlagZero))
}

func TestBranchTakenAndNotTaken(t *testing.T) {
	assert := assert.New(t)

	c := NewCPU()
	c.Regs.PC = ProgramBase
	c.branch(false, 0x10)
	assert.Equal(ProgramBase, c.Regs.PC)

	c.branch(true, -2)
	assert.Equal(ProgramBase-2, c.Regs.PC)
}

func TestJsrRtsRoundTrip(t *testing.T) {
	assert := assert.New(t)

	c := NewCPU()
	// JSR $0610; at $0610: RTS
	program := []byte{0x20, 0x10, 0x06}
	c.Load(program, ProgramBase)
	c.Mem.Write(0x0610, 0x60)
	c.Running = true

	assert.True(c.Step()) // JSR
	assert.Equal(uint16(0x0610), c.Regs.PC)

	assert.True(c.Step()) // RTS
	assert.Equal(ProgramBase+3, c.Regs.PC)
}
