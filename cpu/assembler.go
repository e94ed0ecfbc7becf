package cpu

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Assembler is a two-pass translator from 6502 assembly source text to a
// byte vector and start address, per spec §4.1. It is stateless across
// calls except for the scratch label/equate tables, which Assemble
// rebuilds from scratch every time it runs.
type Assembler struct {
	Verbose bool // if set, logs each lexed line

	label   map[string]uint16
	equate  map[string]string
	numeric map[string]int64
}

// item is a single lexed line: either a label definition (Label set,
// Mnemonic empty) or an instruction (Mnemonic set). LineNo and Text are
// retained for error reporting; LineNo also feeds the Program's line table.
type item struct {
	LineNo   int
	Text     string
	Label    string
	Mnemonic string
	Operand  string
}

var equExprRe = regexp.MustCompile(`\$\([^()]*\)`)

// Assemble translates source into a machine-code byte vector starting at
// ProgramBase, per spec §4.1. It fails with a *SyntaxError wrapping one of
// the category errors in err.go; there is no partial result on failure.
func (asm *Assembler) Assemble(source string) (*Program, error) {
	asm.label = map[string]uint16{}
	asm.equate = map[string]string{}
	asm.numeric = map[string]int64{}

	items, err := asm.lex(source)
	if err != nil {
		return nil, err
	}

	if err := asm.assignAddresses(items); err != nil {
		return nil, err
	}

	return asm.emit(items)
}

// lex splits source into comment-stripped, trimmed, non-empty lines, then
// classifies each as a label definition or an instruction, resolving
// `.equ` directives and named-equate substitution along the way.
func (asm *Assembler) lex(source string) ([]item, error) {
	var items []item

	for lineno, raw := range strings.Split(source, "\n") {
		lineno++ // 1-indexed

		text := raw
		if idx := strings.IndexByte(text, ';'); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)

		if asm.Verbose {
			log.Printf("%d: %s", lineno, text)
		}

		if text == "" {
			continue
		}

		if strings.HasPrefix(text, ".equ ") || text == ".equ" {
			if err := asm.defineEquate(text); err != nil {
				return nil, errLine(lineno, raw, err)
			}
			continue
		}

		if strings.HasSuffix(text, ":") {
			label := strings.TrimSpace(text[:len(text)-1])
			if _, ok := asm.label[label]; ok {
				return nil, errLine(lineno, raw, ErrLabelDuplicate)
			}
			asm.label[label] = 0 // address filled in during assignAddresses
			items = append(items, item{LineNo: lineno, Text: raw, Label: label})
			continue
		}

		fields := strings.Fields(text)
		mnemonic := strings.ToUpper(fields[0])
		operand := strings.Join(fields[1:], " ")

		if eq, ok := asm.equate[operand]; ok {
			operand = eq
		}

		items = append(items, item{LineNo: lineno, Text: raw, Mnemonic: mnemonic, Operand: operand})
	}

	return items, nil
}

// defineEquate handles a `.equ NAME VALUE` directive line. VALUE may
// contain a single `$(...)` compile-time expression in place of literal
// hex digits, evaluated with go.starlark.net against previously defined
// numeric equates; the expression may not itself contain a nested $(...).
func (asm *Assembler) defineEquate(text string) error {
	rest := strings.TrimSpace(strings.TrimPrefix(text, ".equ"))
	sp := strings.IndexAny(rest, " \t")
	if sp < 0 {
		return ErrInvalidOperand
	}
	name := rest[:sp]
	value := strings.TrimSpace(rest[sp:])
	if name == "" || value == "" {
		return ErrInvalidOperand
	}

	if _, ok := asm.equate[name]; ok {
		return ErrLabelDuplicate
	}

	var evalErr error
	value = equExprRe.ReplaceAllStringFunc(value, func(match string) string {
		n, err := asm.evalExpr(match[2 : len(match)-1])
		if err != nil {
			evalErr = err
			return match
		}
		return "$" + strconv.FormatInt(n, 16)
	})
	if evalErr != nil {
		return evalErr
	}

	asm.equate[name] = value
	if n, ok := numericValue(value); ok {
		asm.numeric[name] = n
	}

	return nil
}

// evalExpr evaluates a starlark arithmetic expression against the
// numeric equates defined so far, in the manner of the teacher's
// Assembler.parenEval.
func (asm *Assembler) evalExpr(expr string) (int64, error) {
	thread := &starlark.Thread{}
	opts := &syntax.FileOptions{}

	predeclared := starlark.StringDict{}
	for name, value := range asm.numeric {
		predeclared[name] = starlark.MakeInt64(value)
	}

	prog := "rc = " + expr + "\n"
	dict, err := starlark.ExecFileOptions(opts, thread, "expr", prog, predeclared)
	if err != nil {
		return 0, ErrInvalidOperand
	}

	rc, ok := dict["rc"]
	if !ok {
		return 0, ErrInvalidOperand
	}
	n, ok := rc.(starlark.Int)
	if !ok {
		return 0, ErrInvalidOperand
	}
	value, ok := n.Int64()
	if !ok {
		return 0, ErrInvalidOperand
	}

	return value, nil
}

// numericValue extracts the integer value of an equate's stored text, if
// it has one, for use as a starlark global in later `$(...)` expressions.
func numericValue(text string) (int64, bool) {
	text = strings.TrimPrefix(text, "#")
	if strings.HasPrefix(text, "$") {
		n, err := strconv.ParseInt(text[1:], 16, 64)
		return n, err == nil
	}
	n, err := strconv.ParseInt(text, 0, 64)
	return n, err == nil
}

// operandKind is the addressing-mode family an operand's syntax selects,
// per the table in spec §4.1.
type operandKind int

const (
	kindImplied operandKind = iota
	kindImmediate
	kindZeroPage
	kindAbsolute
	kindLabelAbs // JMP/JSR to a label
	kindLabelRel // branch to a label
)

// classify determines the addressing-mode kind and, for numeric operands,
// the literal value, from an operand's syntax and the target mnemonic.
// This is shared by both passes so they can never disagree about an
// instruction's size or encoding.
func (asm *Assembler) classify(mnemonic, operand string) (kind operandKind, value uint16, label string, err error) {
	switch {
	case operand == "":
		kind = kindImplied

	case strings.HasPrefix(operand, "#$"):
		n, perr := strconv.ParseUint(operand[2:], 16, 16)
		if perr != nil || n > 0xFF {
			err = ErrInvalidOperand
			return
		}
		kind = kindImmediate
		value = uint16(n)

	case strings.HasPrefix(operand, "$"):
		n, perr := strconv.ParseUint(operand[1:], 16, 16)
		if perr != nil {
			err = ErrInvalidOperand
			return
		}
		value = uint16(n)
		if value <= 0xFF {
			if _, ok := asmOpcodeTable[mnemonic][ModeZeroPage]; ok {
				kind = kindZeroPage
				return
			}
		}
		kind = kindAbsolute

	default:
		switch {
		case mnemonic == "JMP" || mnemonic == "JSR":
			kind = kindLabelAbs
			label = operand
		case branchMnemonics[mnemonic]:
			kind = kindLabelRel
			label = operand
		default:
			err = ErrInvalidOperand
		}
	}

	return
}

// instrSize returns the byte size an instruction's addressing-mode kind
// occupies, independent of whether a label it references has been
// resolved yet — exactly what pass 1 needs to advance its address cursor.
func instrSize(kind operandKind) uint16 {
	switch kind {
	case kindImplied:
		return 1
	case kindImmediate, kindZeroPage, kindLabelRel:
		return 2
	case kindAbsolute, kindLabelAbs:
		return 3
	default:
		return 0
	}
}

// assignAddresses is pass 1: it walks items in order, recording each
// label definition's address and advancing a cursor by each instruction's
// size, without resolving any label reference's address.
func (asm *Assembler) assignAddresses(items []item) error {
	addr := ProgramBase

	for _, it := range items {
		if it.Mnemonic == "" {
			asm.label[it.Label] = addr
			continue
		}

		modes, ok := asmOpcodeTable[it.Mnemonic]
		if !ok {
			return errLine(it.LineNo, it.Text, ErrUnknownInstruction)
		}

		kind, _, _, err := asm.classify(it.Mnemonic, it.Operand)
		if err != nil {
			return errLine(it.LineNo, it.Text, err)
		}

		if kind == kindImplied {
			if _, ok := modes[ModeImplied]; !ok {
				return errLine(it.LineNo, it.Text, ErrInvalidMode)
			}
		}

		addr += instrSize(kind)
	}

	return nil
}

// emit is pass 2: it walks items again, skipping label definitions, and
// emits each instruction's bytes, now that every label's address is
// known.
func (asm *Assembler) emit(items []item) (*Program, error) {
	prog := &Program{Start: ProgramBase}
	addr := ProgramBase

	for _, it := range items {
		if it.Mnemonic == "" {
			continue
		}

		modes := asmOpcodeTable[it.Mnemonic]

		kind, value, label, err := asm.classify(it.Mnemonic, it.Operand)
		if err != nil {
			return nil, errLine(it.LineNo, it.Text, err)
		}

		var bytes []byte

		switch kind {
		case kindImplied:
			opcode, ok := modes[ModeImplied]
			if !ok {
				return nil, errLine(it.LineNo, it.Text, ErrInvalidMode)
			}
			bytes = []byte{opcode}

		case kindImmediate:
			opcode, ok := modes[ModeImmediate]
			if !ok {
				return nil, errLine(it.LineNo, it.Text, ErrInvalidMode)
			}
			bytes = []byte{opcode, byte(value)}

		case kindZeroPage:
			opcode, ok := modes[ModeZeroPage]
			if !ok {
				return nil, errLine(it.LineNo, it.Text, ErrInvalidMode)
			}
			bytes = []byte{opcode, byte(value)}

		case kindAbsolute:
			opcode, ok := modes[ModeAbsolute]
			if !ok {
				return nil, errLine(it.LineNo, it.Text, ErrInvalidMode)
			}
			bytes = []byte{opcode, byte(value), byte(value >> 8)}

		case kindLabelAbs:
			opcode, ok := modes[ModeAbsolute]
			if !ok {
				return nil, errLine(it.LineNo, it.Text, ErrInvalidMode)
			}
			target, ok := asm.label[label]
			if !ok {
				return nil, errLine(it.LineNo, it.Text, ErrLabelMissing)
			}
			bytes = []byte{opcode, byte(target), byte(target >> 8)}

		case kindLabelRel:
			opcode, ok := modes[ModeRelative]
			if !ok {
				return nil, errLine(it.LineNo, it.Text, ErrInvalidMode)
			}
			target, ok := asm.label[label]
			if !ok {
				return nil, errLine(it.LineNo, it.Text, ErrLabelMissing)
			}
			offset := int32(target) - int32(addr+2)
			if offset < -128 || offset > 127 {
				return nil, errLine(it.LineNo, it.Text, ErrBranchRange)
			}
			bytes = []byte{opcode, byte(int8(offset))}

		default:
			return nil, errLine(it.LineNo, it.Text, ErrInvalidOperand)
		}

		prog.spans = append(prog.spans, instrSpan{Addr: addr, Size: uint16(len(bytes)), LineNo: it.LineNo})
		prog.Bytes = append(prog.Bytes, bytes...)
		addr += uint16(len(bytes))
	}

	return prog, nil
}
