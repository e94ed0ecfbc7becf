package cpu

// execute carries out the decoded instruction named by mnemonic. value is
// the operand's fetched value (valid for imm/zp/abs), addr is its
// effective address (valid for zp/abs), and offset is the signed relative
// displacement (valid for branches). Exactly one of these is meaningful
// per instruction, per the addressing-mode table in spec §4.2.
func (c *CPU) execute(mnemonic string, value byte, addr uint16, offset int8) {
	r := &c.Regs

	switch mnemonic {
	case "LDA":
		r.A = value
		r.SetZN(r.A)
	case "LDX":
		r.X = value
		r.SetZN(r.X)
	case "LDY":
		r.Y = value
		r.SetZN(r.Y)

	case "STA":
		c.Mem.Write(addr, r.A)
	case "STX":
		c.Mem.Write(addr, r.X)
	case "STY":
		c.Mem.Write(addr, r.Y)

	case "TAX":
		r.X = r.A
		r.SetZN(r.X)
	case "TAY":
		r.Y = r.A
		r.SetZN(r.Y)
	case "TXA":
		r.A = r.X
		r.SetZN(r.A)
	case "TYA":
		r.A = r.Y
		r.SetZN(r.A)

	case "PHA":
		c.Push(r.A)
	case "PLA":
		r.A = c.Pop()
		r.SetZN(r.A)
	case "PHP":
		c.Push(r.P | FlagBreak)
	case "PLP":
		r.P = c.Pop()
		r.P &^= FlagBreak
		r.P |= FlagUnused

	case "AND":
		r.A &= value
		r.SetZN(r.A)
	case "ORA":
		r.A |= value
		r.SetZN(r.A)
	case "EOR":
		r.A ^= value
		r.SetZN(r.A)
	case "BIT":
		r.SetFlag(FlagZero, r.A&value == 0)
		r.SetFlag(FlagNegative, value&0x80 != 0)
		r.SetFlag(FlagOverflow, value&0x40 != 0)

	case "ADC":
		c.adc(value)
	case "SBC":
		c.sbc(value)

	case "INX":
		r.X++
		r.SetZN(r.X)
	case "INY":
		r.Y++
		r.SetZN(r.Y)
	case "DEX":
		r.X--
		r.SetZN(r.X)
	case "DEY":
		r.Y--
		r.SetZN(r.Y)

	case "CMP":
		c.compare(r.A, value)
	case "CPX":
		c.compare(r.X, value)
	case "CPY":
		c.compare(r.Y, value)

	case "BEQ":
		c.branch(r.Flag(FlagZero), offset)
	case "BNE":
		c.branch(!r.Flag(FlagZero), offset)
	case "BCC":
		c.branch(!r.Flag(FlagCarry), offset)
	case "BCS":
		c.branch(r.Flag(FlagCarry), offset)
	case "BMI":
		c.branch(r.Flag(FlagNegative), offset)
	case "BPL":
		c.branch(!r.Flag(FlagNegative), offset)
	case "BVC":
		c.branch(!r.Flag(FlagOverflow), offset)
	case "BVS":
		c.branch(r.Flag(FlagOverflow), offset)

	case "JMP":
		r.PC = addr
	case "JSR":
		c.PushWord(r.PC - 1)
		r.PC = addr
	case "RTS":
		r.PC = c.PopWord() + 1

	case "CLC":
		r.SetFlag(FlagCarry, false)
	case "SEC":
		r.SetFlag(FlagCarry, true)
	case "CLV":
		r.SetFlag(FlagOverflow, false)
	case "SEI":
		r.SetFlag(FlagInterrupt, true)
	case "CLI":
		r.SetFlag(FlagInterrupt, false)

	case "NOP":
		// no state change

	case "BRK":
		r.SetFlag(FlagBreak, true)
		c.Running = false
	}
}

// adc implements ADC with the canonical signed-overflow formula: C is the
// unsigned carry-out of A+operand+C, and V is set when the addends share
// a sign but the result's sign differs from theirs.
func (c *CPU) adc(operand byte) {
	r := &c.Regs

	carryIn := uint16(0)
	if r.Flag(FlagCarry) {
		carryIn = 1
	}

	sum := uint16(r.A) + uint16(operand) + carryIn
	result := byte(sum)

	r.SetFlag(FlagCarry, sum > 0xFF)
	r.SetFlag(FlagOverflow, (r.A^result)&(operand^result)&0x80 != 0)
	r.A = result
	r.SetZN(r.A)
}

// sbc implements SBC with the canonical signed-overflow formula. The
// source this emulator is modeled on used an algebraically equivalent but
// differently-parenthesized expression for V; see DESIGN.md for why the
// two are the same value for every input.
func (c *CPU) sbc(operand byte) {
	r := &c.Regs

	borrowIn := int32(0)
	if !r.Flag(FlagCarry) {
		borrowIn = 1
	}

	diff := int32(r.A) - int32(operand) - borrowIn
	result := byte(diff)

	r.SetFlag(FlagCarry, diff >= 0)
	r.SetFlag(FlagOverflow, (r.A^operand)&(r.A^result)&0x80 != 0)
	r.A = result
	r.SetZN(r.A)
}

// compare implements CMP/CPX/CPY: C is set on no-borrow (register >=
// operand, unsigned), Z/N come from the masked difference, and the
// register being compared is left unmodified.
func (c *CPU) compare(register, operand byte) {
	r := &c.Regs

	r.SetFlag(FlagCarry, register >= operand)
	r.SetZN(register - operand)
}

// branch applies a relative jump if taken is true. PC has already
// advanced past the offset byte by the time branch is called, so a
// not-taken branch requires no further action.
func (c *CPU) branch(taken bool, offset int8) {
	if !taken {
		return
	}
	c.Regs.PC = uint16(int32(c.Regs.PC) + int32(offset))
}
