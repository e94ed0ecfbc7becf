package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mos6502/emucore/cpu"
)

func main() {
	var source string
	var dumpStart uint
	var dumpLen uint
	var verbose bool

	flag.StringVar(&source, "c", "", "assembly source file to assemble and run")
	flag.UintVar(&dumpStart, "dump", 0, "start address of the memory range to dump")
	flag.UintVar(&dumpLen, "dump-len", 0, "number of bytes to dump, starting at -dump")
	flag.BoolVar(&verbose, "v", false, "verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: unknown arguments: %v", os.Args[0], flag.Args())
	}

	if source == "" {
		log.Fatalf("%v: -c is required", os.Args[0])
	}

	text, err := os.ReadFile(source)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	asm := &cpu.Assembler{Verbose: verbose}
	prog, err := asm.Assemble(string(text))
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	c := cpu.NewCPU()
	c.Verbose = verbose
	c.LoadProgram(prog)

	if err := c.Run(); err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	printRegs(c)

	if dumpLen != 0 {
		printDump(c, uint16(dumpStart), uint16(dumpLen))
	}
}

func printRegs(c *cpu.CPU) {
	r := c.Regs
	fmt.Printf("A=%02X X=%02X Y=%02X SP=%02X P=%02X PC=%04X cycles=%d\n",
		r.A, r.X, r.Y, r.SP, r.P, r.PC, c.Cycles)
}

func printDump(c *cpu.CPU, start, length uint16) {
	mem := c.Mem.Bytes()
	for n := uint16(0); n < length; n += 16 {
		addr := start + n
		fmt.Printf("$%04X:", addr)
		for i := uint16(0); i < 16 && n+i < length; i++ {
			fmt.Printf(" %02X", mem[addr+i])
		}
		fmt.Println()
	}
}
