package emu

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/mipsim/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Exited is true if the program terminated (via the exit syscall).
	Exited bool

	// ExitCode is the exit status if Exited is true.
	ExitCode int

	// Err is set if a fatal fault occurred during execution.
	Err error
}

// Emulator executes MIPS I instructions against a register file and
// address space, reporting total instructions retired and adjusted
// wall-clock time on exit.
type Emulator struct {
	regFile        *RegFile
	memory         *Memory
	decoder        *insts.Decoder
	syscallHandler SyscallHandler

	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit

	startTime time.Time
	skip      time.Duration
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) { e.stdout = w }
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) { e.stderr = w }
}

// WithStdin sets the input stream read_int and read_string draw from.
func WithStdin(r io.Reader) EmulatorOption {
	return func(e *Emulator) { e.stdin = r }
}

// WithSyscallHandler sets a custom syscall handler.
func WithSyscallHandler(handler SyscallHandler) EmulatorOption {
	return func(e *Emulator) { e.syscallHandler = handler }
}

// WithStackPointer sets the initial stack pointer (register sp).
func WithStackPointer(sp uint32) EmulatorOption {
	return func(e *Emulator) { e.regFile.Write(RegSp, sp) }
}

// WithMaxInstructions caps the number of instructions executed. A
// value of 0 means no limit; this is a test/debugging aid, not part
// of the ISA.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) { e.maxInstructions = max }
}

// NewEmulator creates a new MIPS emulator with its own register file
// and address space.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	regFile := NewRegFile()
	memory := NewMemory()

	e := &Emulator{
		regFile: regFile,
		memory:  memory,
		decoder: insts.NewDecoder(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.syscallHandler == nil {
		dh := NewDefaultSyscallHandler(regFile, memory, e.stdout, e.stderr)
		if e.stdin != nil {
			dh.SetStdin(e.stdin)
		}
		e.syscallHandler = dh
	}

	e.alu = NewALU(regFile)
	e.lsu = NewLoadStoreUnit(regFile, memory)
	e.branchUnit = NewBranchUnit(regFile)

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile { return e.regFile }

// Memory returns the emulator's address space.
func (e *Emulator) Memory() *Memory { return e.memory }

// InstructionCount returns the number of instructions executed so far.
func (e *Emulator) InstructionCount() uint64 { return e.instructionCount }

// SetEntryPoint sets the program counter to the loader-provided entry
// address, without otherwise touching register or memory state.
func (e *Emulator) SetEntryPoint(pc uint32) {
	e.regFile.PC = pc
}

// Step fetches, decodes, and executes a single instruction.
func (e *Emulator) Step() StepResult {
	word, err := e.memory.FetchWord(e.regFile.PC)
	if err != nil {
		return StepResult{Err: err}
	}

	inst := e.decoder.Decode(word)
	if inst.Op == insts.OpUnknown {
		return StepResult{Err: &Fault{
			Kind:    "decode",
			Message: fmt.Sprintf("invalid instruction: word 0x%08x at pc 0x%08x", word, e.regFile.PC),
		}}
	}

	e.regFile.ForceZero()
	result := e.execute(inst)
	if result.Err == nil {
		e.instructionCount++
	}
	return result
}

// Run executes instructions until the program exits, a fatal fault
// occurs, or maxInstructions is reached. It returns the adjusted
// elapsed time in nanoseconds and writes the summary report on a
// normal exit.
func (e *Emulator) Run() (int64, error) {
	e.startTime = time.Now()
	e.skip = 0

	for {
		if e.maxInstructions != 0 && e.instructionCount >= e.maxInstructions {
			return e.elapsed(), nil
		}

		result := e.Step()
		if result.Err != nil {
			fmt.Fprintln(e.stdout, result.Err.Error())
			return e.elapsed(), result.Err
		}
		if result.Exited {
			elapsed := e.elapsed()
			if err := e.writeReport(elapsed); err != nil {
				return elapsed, err
			}
			return elapsed, nil
		}
	}
}

func (e *Emulator) elapsed() int64 {
	return time.Since(e.startTime).Nanoseconds() - e.skip.Nanoseconds()
}

func (e *Emulator) writeReport(elapsedNanos int64) error {
	f, err := os.Create("output.txt")
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "Output File\nTotal Instruction Count: %d\nTime Elapsed: %d nanoseconds\n",
		e.instructionCount, elapsedNanos)
	return err
}

func (e *Emulator) execute(inst *insts.Instruction) StepResult {
	switch inst.Format {
	case insts.FormatR:
		return e.executeRType(inst)
	case insts.FormatRegImm:
		return e.executeRegImm(inst)
	case insts.FormatJ:
		return e.executeJType(inst)
	default:
		return e.executeIType(inst)
	}
}

func (e *Emulator) executeRType(inst *insts.Instruction) StepResult {
	switch inst.Op {
	case insts.OpSLL:
		e.alu.SLL(inst.Rd, inst.Rt, inst.Shamt)
	case insts.OpSRL:
		e.alu.SRL(inst.Rd, inst.Rt, inst.Shamt)
	case insts.OpSRA:
		e.alu.SRA(inst.Rd, inst.Rt, inst.Shamt)
	case insts.OpSLLV:
		e.alu.SLLV(inst.Rd, inst.Rt, inst.Rs)
	case insts.OpSRLV:
		e.alu.SRLV(inst.Rd, inst.Rt, inst.Rs)
	case insts.OpJR:
		e.branchUnit.JR(inst.Rs)
		return StepResult{}
	case insts.OpSYSCALL:
		return e.executeSyscall()
	case insts.OpMFHI:
		e.alu.MFHI(inst.Rd)
	case insts.OpMFLO:
		e.alu.MFLO(inst.Rd)
	case insts.OpMULT:
		e.alu.MULT(inst.Rs, inst.Rt)
	case insts.OpMULTU:
		e.alu.MULTU(inst.Rs, inst.Rt)
	case insts.OpDIV:
		if err := e.alu.DIV(inst.Rs, inst.Rt); err != nil {
			return StepResult{Err: err}
		}
	case insts.OpDIVU:
		if err := e.alu.DIVU(inst.Rs, inst.Rt); err != nil {
			return StepResult{Err: err}
		}
	case insts.OpADD:
		e.alu.ADD(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpADDU:
		e.alu.ADDU(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSUB:
		e.alu.SUB(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSUBU:
		e.alu.SUBU(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpAND:
		e.alu.AND(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpOR:
		e.alu.OR(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpXOR:
		e.alu.XOR(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSLT:
		e.alu.SLT(inst.Rd, inst.Rs, inst.Rt)
	case insts.OpSLTU:
		e.alu.SLTU(inst.Rd, inst.Rs, inst.Rt)
	}
	e.regFile.PC += 4
	return StepResult{}
}

func (e *Emulator) executeRegImm(inst *insts.Instruction) StepResult {
	switch inst.Op {
	case insts.OpBLTZ:
		e.branchUnit.BLTZ(inst.Rs, inst.Imm)
	case insts.OpBGEZ:
		e.branchUnit.BGEZ(inst.Rs, inst.Imm)
	case insts.OpBLTZAL:
		e.branchUnit.BLTZAL(inst.Rs, inst.Imm)
	case insts.OpBGEZAL:
		e.branchUnit.BGEZAL(inst.Rs, inst.Imm)
	}
	return StepResult{}
}

func (e *Emulator) executeJType(inst *insts.Instruction) StepResult {
	switch inst.Op {
	case insts.OpJ:
		e.branchUnit.J(inst.Addr)
	case insts.OpJAL:
		e.branchUnit.JAL(inst.Addr)
	}
	return StepResult{}
}

func (e *Emulator) executeIType(inst *insts.Instruction) StepResult {
	switch inst.Op {
	case insts.OpBEQ:
		e.branchUnit.BEQ(inst.Rs, inst.Rt, inst.Imm)
		return StepResult{}
	case insts.OpBNE:
		e.branchUnit.BNE(inst.Rs, inst.Rt, inst.Imm)
		return StepResult{}
	case insts.OpBLEZ:
		e.branchUnit.BLEZ(inst.Rs, inst.Imm)
		return StepResult{}
	case insts.OpBGTZ:
		e.branchUnit.BGTZ(inst.Rs, inst.Imm)
		return StepResult{}
	case insts.OpADDI:
		e.alu.ADDI(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpADDIU:
		e.alu.ADDIU(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpSLTI:
		e.alu.SLTI(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpSLTIU:
		e.alu.SLTIU(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpANDI:
		e.alu.ANDI(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpORI:
		e.alu.ORI(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpXORI:
		e.alu.XORI(inst.Rt, inst.Rs, inst.Imm)
	case insts.OpLUI:
		e.alu.LUI(inst.Rt, inst.Imm)
	case insts.OpLB:
		if err := e.lsu.LB(inst.Rt, inst.Rs, inst.Imm); err != nil {
			return StepResult{Err: err}
		}
	case insts.OpLW:
		if err := e.lsu.LW(inst.Rt, inst.Rs, inst.Imm); err != nil {
			return StepResult{Err: err}
		}
	case insts.OpSB:
		if err := e.lsu.SB(inst.Rt, inst.Rs, inst.Imm); err != nil {
			return StepResult{Err: err}
		}
	case insts.OpSW:
		if err := e.lsu.SW(inst.Rt, inst.Rs, inst.Imm); err != nil {
			return StepResult{Err: err}
		}
	}
	e.regFile.PC += 4
	return StepResult{}
}

func (e *Emulator) executeSyscall() StepResult {
	result := e.syscallHandler.Handle()
	e.skip += result.Skip
	if result.Exited {
		return StepResult{Exited: true, ExitCode: result.ExitCode}
	}
	e.regFile.PC += 4
	return StepResult{}
}
