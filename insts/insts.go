// Package insts provides MIPS I instruction definitions and decoding.
//
// This package decodes 32-bit MIPS I instruction words into a
// discriminated Instruction value under one of three bit-field
// layouts:
//   - R-type: register-register arithmetic, logical, shift, and
//     jump-register instructions, dispatched on the func field.
//   - I-type: immediate arithmetic, branches, and loads/stores.
//   - J-type: unconditional jumps.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x00432020) // add a0, v0, v1
//	fmt.Printf("Op: %v, Rd: %d, Rs: %d, Rt: %d\n", inst.Op, inst.Rd, inst.Rs, inst.Rt)
package insts
