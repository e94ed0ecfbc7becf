package cpu

import "iter"

// instrSpan records the address range and source line number of a single
// assembled instruction, for Program.LineAt.
type instrSpan struct {
	Addr   uint16
	Size   uint16
	LineNo int
}

// Program is the output of Assembler.Assemble: a byte vector ready to be
// loaded at Start, plus enough source-line bookkeeping for a host to map
// an executing address back to a line of assembly (spec §4.1's
// source-to-address debugging addition).
type Program struct {
	Bytes []byte
	Start uint16

	spans []instrSpan
}

// LineAt returns the source line number of the instruction occupying
// addr, if any.
func (p *Program) LineAt(addr uint16) (line int, ok bool) {
	for _, span := range p.spans {
		if addr >= span.Addr && addr < span.Addr+span.Size {
			return span.LineNo, true
		}
	}
	return 0, false
}

// Instructions returns an iterator over each assembled instruction's
// start address and source line number, in program order.
func (p *Program) Instructions() iter.Seq2[uint16, int] {
	return func(yield func(uint16, int) bool) {
		for _, span := range p.spans {
			if !yield(span.Addr, span.LineNo) {
				return
			}
		}
	}
}
