package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/mos6502/emucore/internal"
)

// StepLimit is the safety net against unterminated loops described in
// spec §4.2: Run halts after this many instructions even if none of them
// was BRK or an unknown opcode.
const StepLimit = 10000

var cpuDefines = map[string]string{
	"StepLimit":     fmt.Sprintf("%d", StepLimit),
	"FlagCarry":     fmt.Sprintf("0x%02x", FlagCarry),
	"FlagZero":      fmt.Sprintf("0x%02x", FlagZero),
	"FlagInterrupt": fmt.Sprintf("0x%02x", FlagInterrupt),
	"FlagDecimal":   fmt.Sprintf("0x%02x", FlagDecimal),
	"FlagBreak":     fmt.Sprintf("0x%02x", FlagBreak),
	"FlagUnused":    fmt.Sprintf("0x%02x", FlagUnused),
	"FlagOverflow":  fmt.Sprintf("0x%02x", FlagOverflow),
	"FlagNegative":  fmt.Sprintf("0x%02x", FlagNegative),
	"ProgramBase":   fmt.Sprintf("0x%04x", ProgramBase),
	"StackBase":     fmt.Sprintf("0x%04x", StackBase),
	"ScreenBase":    fmt.Sprintf("0x%04x", ScreenBase),
}

// CPU is the simulation context: the register file, the 64 KiB memory, and
// the running/assembled/cycles lifecycle state described in spec §3/§4.2.
type CPU struct {
	Verbose bool // if set, logs each decoded instruction before executing it

	Regs Regs
	Mem  Mem

	Cycles    uint64
	Running   bool
	Assembled bool

	// Program is the most recently loaded assembly, if any, kept only so
	// a host can resolve the current PC back to a source line number via
	// LineAt. It plays no role in execution.
	Program *Program

	stepLimitHalted bool
}

// NewCPU creates a CPU in its post-reset state.
func NewCPU() *CPU {
	c := &CPU{}
	c.Reset()
	return c
}

// Defines returns an iterator over named constants a host can use instead
// of hardcoding flag masks, memory-layout addresses, or addressing-mode
// tags.
func (c *CPU) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(cpuDefines), maps.All(modeDefines))
}

// Reset restores the register file to its initial values and returns the
// CPU to the "fresh" lifecycle state. It does not clear memory; memory is
// cleared by Load, not by Reset (spec §3).
func (c *CPU) Reset() {
	c.Regs.Reset()
	c.Cycles = 0
	c.Running = false
	c.Assembled = false
	c.stepLimitHalted = false
}

// Load installs a freshly assembled program: it zeroes all of memory,
// copies bytes to start, sets PC to start, and marks the CPU assembled.
// Register values other than PC are left as they were.
func (c *CPU) Load(bytes []byte, start uint16) {
	c.Mem.Clear()
	c.Mem.Load(start, bytes)
	c.Regs.PC = start
	c.Assembled = true
	c.Program = nil
}

// LoadProgram installs the output of Assemble, retaining the program's
// line-number debug table for LineAt.
func (c *CPU) LoadProgram(p *Program) {
	c.Load(p.Bytes, p.Start)
	c.Program = p
}

// LineAt resolves an address to the source line number of the
// instruction occupying it, if a Program was loaded via LoadProgram.
func (c *CPU) LineAt(addr uint16) (line int, ok bool) {
	if c.Program == nil {
		return 0, false
	}
	return c.Program.LineAt(addr)
}

// Step fetches, decodes, and executes a single instruction at PC, per
// spec §4.2. It returns false without side effect if the CPU is not both
// running and assembled, and halts (Running = false) and returns false if
// the fetched opcode is not recognized.
func (c *CPU) Step() bool {
	if !c.Running || !c.Assembled {
		return false
	}

	pc := c.Regs.PC
	opcode := c.Mem.Read(pc)
	c.Regs.PC++

	entry := cpuOpcodeTable[opcode]
	if entry.Mnemonic == "" {
		c.Running = false
		log.Printf("cpu: %v", &UnknownOpcodeError{PC: pc, Opcode: opcode})
		return false
	}

	value, addr, offset := c.decodeOperand(entry.Mode)

	if c.Verbose {
		log.Printf("$%04X: %s.%s", pc, entry.Mnemonic, entry.Mode)
	}

	c.execute(entry.Mnemonic, value, addr, offset)
	c.Cycles += uint64(entry.Cycles)

	return true
}

// Run sets Running and loops Step until it returns false or the step
// limit is reached. If the previous Run ended on the step limit and the
// CPU has not been Reset since, Run refuses to continue and returns
// ErrNotReset (spec §9: the source leaves this undefined; this
// implementation requires an explicit reset).
func (c *CPU) Run() error {
	if c.stepLimitHalted {
		return ErrNotReset
	}

	c.Running = true
	for i := 0; i < StepLimit; i++ {
		if !c.Step() {
			return nil
		}
	}

	c.Running = false
	c.stepLimitHalted = true
	return nil
}

// decodeOperand advances PC past the operand bytes implied by mode and
// returns whichever of value/address/offset the mode produces. Loads,
// logic, arithmetic, and compares consume value; stores, JMP, and JSR
// consume addr; branches consume offset.
func (c *CPU) decodeOperand(mode Mode) (value byte, addr uint16, offset int8) {
	switch mode {
	case ModeImplied:
		// no bytes
	case ModeImmediate:
		value = c.Mem.Read(c.Regs.PC)
		c.Regs.PC++
	case ModeZeroPage:
		addr = uint16(c.Mem.Read(c.Regs.PC))
		c.Regs.PC++
		value = c.Mem.Read(addr)
	case ModeAbsolute:
		addr = c.Mem.ReadWord(c.Regs.PC)
		c.Regs.PC += 2
		value = c.Mem.Read(addr)
	case ModeRelative:
		offset = int8(c.Mem.Read(c.Regs.PC))
		c.Regs.PC++
	}
	return
}
