// Package main provides a stub entry point for mipsim, a user-mode
// interpreter for a subset of the 32-bit MIPS I instruction set.
//
// For the full CLI, use: go run ./cmd/mipsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("mipsim - MIPS I user-mode interpreter")
	fmt.Println("")
	fmt.Println("Usage: mipsim [options] <program.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -v    Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/mipsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/mipsim' instead.")
	}
}
