// Package main provides the entry point for mipsim, a user-mode
// interpreter for a subset of the 32-bit MIPS I instruction set.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/mipsim/emu"
	"github.com/sarchlab/mipsim/loader"
)

var verbose = flag.Bool("v", false, "Verbose output")

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: mipsim [options] <program.elf>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	prog, err := loader.Load(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Entry point: 0x%08x\n", prog.EntryPoint)
		fmt.Printf("Segments: %d\n", len(prog.Segments))
	}

	os.Exit(run(prog, programPath))
}

func run(prog *loader.Program, programPath string) int {
	emulator := emu.NewEmulator(
		emu.WithStackPointer(prog.InitialSP),
		emu.WithStdin(os.Stdin),
	)

	memory := emulator.Memory()
	for _, seg := range prog.Segments {
		memory.AddRegion(seg.VirtAddr, seg.MemSize, seg.Data)
	}
	stackBase, stackSize := prog.StackRegion()
	memory.AddRegion(stackBase, stackSize, nil)
	emulator.SetEntryPoint(prog.EntryPoint)

	elapsed, _ := emulator.Run()
	if *verbose {
		fmt.Printf("\nProgram: %s\n", programPath)
		fmt.Printf("Instructions executed: %d\n", emulator.InstructionCount())
		fmt.Printf("Elapsed: %d ns\n", elapsed)
	}
	// The reference simulator reports process status 1 on both a
	// normal exit and a fatal fault (see DESIGN.md).
	return emu.ExitStatus
}
