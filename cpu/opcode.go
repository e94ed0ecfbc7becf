package cpu

// Mode is the addressing mode of a decoded instruction.
type Mode int

const (
	ModeImplied   = Mode(0) // imp
	ModeImmediate = Mode(1) // imm
	ModeZeroPage  = Mode(2) // zp
	ModeAbsolute  = Mode(3) // abs
	ModeRelative  = Mode(4) // rel
)

// String returns the mode's assembler-facing tag.
func (m Mode) String() string {
	switch m {
	case ModeImplied:
		return "imp"
	case ModeImmediate:
		return "imm"
	case ModeZeroPage:
		return "zp"
	case ModeAbsolute:
		return "abs"
	case ModeRelative:
		return "rel"
	default:
		return "?"
	}
}

// modeDefines names the addressing-mode tags for CPU.Defines, so a host
// doesn't need to hardcode "imm"/"zp"/"abs"/"rel"/"imp".
var modeDefines = map[string]string{
	"ModeImplied":   ModeImplied.String(),
	"ModeImmediate": ModeImmediate.String(),
	"ModeZeroPage":  ModeZeroPage.String(),
	"ModeAbsolute":  ModeAbsolute.String(),
	"ModeRelative":  ModeRelative.String(),
}

// opcodeEntry binds a single opcode byte to the mnemonic, addressing mode,
// and base cycle count the interpreter needs to fetch, decode, and time
// the instruction. The semantic handler is dispatched by mnemonic in
// execute(), not stored here, since several opcodes (one per supported
// mode) share the same mnemonic and handler.
type opcodeEntry struct {
	Mnemonic string
	Mode     Mode
	Cycles   int
}

// instrEncoding is one row of the normative mnemonic/mode/opcode table in
// spec §4.1 and §4.2. It is the single source of truth from which both the
// CPU's opcode-indexed dispatch table and the assembler's mnemonic-indexed
// encoding table are derived, so the two subsystems can never disagree
// about the wire format.
type instrEncoding struct {
	Mnemonic string
	Mode     Mode
	Opcode   byte
	Cycles   int
}

var instrTable = []instrEncoding{
	{"LDA", ModeImmediate, 0xA9, 2},
	{"LDA", ModeZeroPage, 0xA5, 3},
	{"LDA", ModeAbsolute, 0xAD, 4},
	{"LDX", ModeImmediate, 0xA2, 2},
	{"LDX", ModeZeroPage, 0xA6, 3},
	{"LDX", ModeAbsolute, 0xAE, 4},
	{"LDY", ModeImmediate, 0xA0, 2},
	{"LDY", ModeZeroPage, 0xA4, 3},
	{"LDY", ModeAbsolute, 0xAC, 4},

	{"STA", ModeZeroPage, 0x85, 3},
	{"STA", ModeAbsolute, 0x8D, 4},
	{"STX", ModeZeroPage, 0x86, 3},
	{"STX", ModeAbsolute, 0x8E, 4},
	{"STY", ModeZeroPage, 0x84, 3},
	{"STY", ModeAbsolute, 0x8C, 4},

	{"TAX", ModeImplied, 0xAA, 2},
	{"TAY", ModeImplied, 0xA8, 2},
	{"TXA", ModeImplied, 0x8A, 2},
	{"TYA", ModeImplied, 0x98, 2},

	{"PHA", ModeImplied, 0x48, 3},
	{"PLA", ModeImplied, 0x68, 4},
	{"PHP", ModeImplied, 0x08, 3},
	{"PLP", ModeImplied, 0x28, 4},

	{"AND", ModeImmediate, 0x29, 2},
	{"AND", ModeZeroPage, 0x25, 3},
	{"AND", ModeAbsolute, 0x2D, 4},
	{"ORA", ModeImmediate, 0x09, 2},
	{"ORA", ModeZeroPage, 0x05, 3},
	{"ORA", ModeAbsolute, 0x0D, 4},
	{"EOR", ModeImmediate, 0x49, 2},
	{"EOR", ModeZeroPage, 0x45, 3},
	{"EOR", ModeAbsolute, 0x4D, 4},
	{"BIT", ModeZeroPage, 0x24, 3},
	{"BIT", ModeAbsolute, 0x2C, 4},

	{"ADC", ModeImmediate, 0x69, 2},
	{"ADC", ModeZeroPage, 0x65, 3},
	{"ADC", ModeAbsolute, 0x6D, 4},
	{"SBC", ModeImmediate, 0xE9, 2},
	{"SBC", ModeZeroPage, 0xE5, 3},
	{"SBC", ModeAbsolute, 0xED, 4},

	{"INX", ModeImplied, 0xE8, 2},
	{"INY", ModeImplied, 0xC8, 2},
	{"DEX", ModeImplied, 0xCA, 2},
	{"DEY", ModeImplied, 0x88, 2},

	{"CMP", ModeImmediate, 0xC9, 2},
	{"CMP", ModeZeroPage, 0xC5, 3},
	{"CMP", ModeAbsolute, 0xCD, 4},
	{"CPX", ModeImmediate, 0xE0, 2},
	{"CPX", ModeZeroPage, 0xE4, 3},
	{"CPY", ModeImmediate, 0xC0, 2},
	{"CPY", ModeZeroPage, 0xC4, 3},

	{"BEQ", ModeRelative, 0xF0, 2},
	{"BNE", ModeRelative, 0xD0, 2},
	{"BCC", ModeRelative, 0x90, 2},
	{"BCS", ModeRelative, 0xB0, 2},
	{"BMI", ModeRelative, 0x30, 2},
	{"BPL", ModeRelative, 0x10, 2},
	{"BVC", ModeRelative, 0x50, 2},
	{"BVS", ModeRelative, 0x70, 2},

	{"JMP", ModeAbsolute, 0x4C, 3},
	{"JSR", ModeAbsolute, 0x20, 6},
	{"RTS", ModeImplied, 0x60, 6},

	{"CLC", ModeImplied, 0x18, 2},
	{"SEC", ModeImplied, 0x38, 2},
	{"CLV", ModeImplied, 0xB8, 2},
	{"SEI", ModeImplied, 0x78, 2},
	{"CLI", ModeImplied, 0x58, 2},

	{"NOP", ModeImplied, 0xEA, 2},
	{"BRK", ModeImplied, 0x00, 7},
}

// cpuOpcodeTable indexes instrTable by opcode byte, for the interpreter's
// fetch/decode step. A zero-value entry (empty Mnemonic) means the byte is
// not a recognized opcode.
var cpuOpcodeTable [256]opcodeEntry

// asmOpcodeTable indexes instrTable by mnemonic, then by addressing mode,
// for the assembler's emission step.
var asmOpcodeTable = map[string]map[Mode]byte{}

// branchMnemonics is the set of relative-addressed conditional jumps,
// consulted by the assembler when an operand is a bare label.
var branchMnemonics = map[string]bool{
	"BEQ": true, "BNE": true, "BCC": true, "BCS": true,
	"BMI": true, "BPL": true, "BVC": true, "BVS": true,
}

func init() {
	for _, ins := range instrTable {
		cpuOpcodeTable[ins.Opcode] = opcodeEntry{
			Mnemonic: ins.Mnemonic,
			Mode:     ins.Mode,
			Cycles:   ins.Cycles,
		}

		modes, ok := asmOpcodeTable[ins.Mnemonic]
		if !ok {
			modes = map[Mode]byte{}
			asmOpcodeTable[ins.Mnemonic] = modes
		}
		modes[ins.Mode] = ins.Opcode
	}
}
