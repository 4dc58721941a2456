// Package insts provides MIPS I instruction definitions and decoding.
package insts

// Op identifies a decoded MIPS instruction, independent of which of
// the three bit-field layouts produced it.
type Op uint16

// Supported MIPS I opcodes.
const (
	OpUnknown Op = iota

	// R-type (opcode 0x00, dispatched on func).
	OpSLL
	OpSRL
	OpSRA
	OpSLLV
	OpSRLV
	OpJR
	OpSYSCALL
	OpMFHI
	OpMFLO
	OpMULT
	OpMULTU
	OpDIV
	OpDIVU
	OpADD
	OpADDU
	OpSUB
	OpSUBU
	OpAND
	OpOR
	OpXOR
	OpSLT
	OpSLTU

	// Regimmediate branches (opcode 0x01, dispatched on rt).
	OpBLTZ
	OpBGEZ
	OpBLTZAL
	OpBGEZAL

	// J-type.
	OpJ
	OpJAL

	// I-type.
	OpBEQ
	OpBNE
	OpBLEZ
	OpBGTZ
	OpADDI
	OpADDIU
	OpSLTI
	OpSLTIU
	OpANDI
	OpORI
	OpXORI
	OpLUI
	OpLB
	OpLW
	OpSB
	OpSW
)

// Format identifies which of the three MIPS I bit-field layouts an
// instruction word was decoded under.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatJ
	FormatRegImm
)

// Primary opcode and function-code values, named for readability at
// decode call sites.
const (
	opcodeRType   = 0x00
	opcodeRegImm  = 0x01
	opcodeJ       = 0x02
	opcodeJAL     = 0x03
	opcodeBEQ     = 0x04
	opcodeBNE     = 0x05
	opcodeBLEZ    = 0x06
	opcodeBGTZ    = 0x07
	opcodeADDI    = 0x08
	opcodeADDIU   = 0x09
	opcodeSLTI    = 0x0a
	opcodeSLTIU   = 0x0b
	opcodeANDI    = 0x0c
	opcodeORI     = 0x0d
	opcodeXORI    = 0x0e
	opcodeLUI     = 0x0f
	opcodeLB      = 0x20
	opcodeLW      = 0x23
	opcodeSB      = 0x28
	opcodeSW      = 0x2b

	funcSLL     = 0x00
	funcSRL     = 0x02
	funcSRA     = 0x03
	funcSLLV    = 0x04
	funcSRLV    = 0x05
	funcJR      = 0x08
	funcSYSCALL = 0x0c
	funcMFHI    = 0x10
	funcMFLO    = 0x11
	funcMULT    = 0x18
	funcMULTU   = 0x19
	funcDIV     = 0x1a
	funcDIVU    = 0x1b
	funcADD     = 0x20
	funcADDU    = 0x21
	funcSUB     = 0x22
	funcSUBU    = 0x23
	funcAND     = 0x24
	funcOR      = 0x25
	funcXOR     = 0x26
	funcSLT     = 0x2a
	funcSLTU    = 0x2b

	rtBLTZ   = 0x00
	rtBGEZ   = 0x01
	rtBLTZAL = 0x10
	rtBGEZAL = 0x11
)

// Instruction is the decoded form of a 32-bit MIPS I instruction
// word, a discriminated union over the three bit-field layouts.
// Unused fields for a given Format are zero.
type Instruction struct {
	Op     Op
	Format Format
	Word   uint32

	// R-type fields.
	Rs    uint32
	Rt    uint32
	Rd    uint32
	Shamt uint32
	Func  uint32

	// I-type / RegImm fields.
	Imm uint32 // raw 16-bit immediate, unextended

	// J-type field.
	Addr uint32 // raw 26-bit target
}

// SignExtendImm sign-extends the instruction's 16-bit immediate to
// 32 bits.
func (i *Instruction) SignExtendImm() uint32 {
	return uint32(int32(int16(i.Imm)))
}

// Decoder decodes raw 32-bit words into Instructions.
type Decoder struct{}

// NewDecoder returns a ready-to-use MIPS decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode interprets word under the layout selected by its primary
// opcode and returns the decoded Instruction. Op is OpUnknown if the
// opcode, func, or rt-selector is not in the supported set; callers
// must treat that as a decode fault.
func (d *Decoder) Decode(word uint32) *Instruction {
	opcode := (word >> 26) & 0x3f

	switch opcode {
	case opcodeRType:
		return d.decodeRType(word)
	case opcodeRegImm:
		return d.decodeRegImm(word)
	case opcodeJ, opcodeJAL:
		return d.decodeJType(word)
	default:
		return d.decodeIType(word, opcode)
	}
}

func (d *Decoder) decodeRType(word uint32) *Instruction {
	inst := &Instruction{
		Format: FormatR,
		Word:   word,
		Rs:     (word >> 21) & 0x1f,
		Rt:     (word >> 16) & 0x1f,
		Rd:     (word >> 11) & 0x1f,
		Shamt:  (word >> 6) & 0x1f,
		Func:   word & 0x3f,
	}
	switch inst.Func {
	case funcSLL:
		inst.Op = OpSLL
	case funcSRL:
		inst.Op = OpSRL
	case funcSRA:
		inst.Op = OpSRA
	case funcSLLV:
		inst.Op = OpSLLV
	case funcSRLV:
		inst.Op = OpSRLV
	case funcJR:
		inst.Op = OpJR
	case funcSYSCALL:
		inst.Op = OpSYSCALL
	case funcMFHI:
		inst.Op = OpMFHI
	case funcMFLO:
		inst.Op = OpMFLO
	case funcMULT:
		inst.Op = OpMULT
	case funcMULTU:
		inst.Op = OpMULTU
	case funcDIV:
		inst.Op = OpDIV
	case funcDIVU:
		inst.Op = OpDIVU
	case funcADD:
		inst.Op = OpADD
	case funcADDU:
		inst.Op = OpADDU
	case funcSUB:
		inst.Op = OpSUB
	case funcSUBU:
		inst.Op = OpSUBU
	case funcAND:
		inst.Op = OpAND
	case funcOR:
		inst.Op = OpOR
	case funcXOR:
		inst.Op = OpXOR
	case funcSLT:
		inst.Op = OpSLT
	case funcSLTU:
		inst.Op = OpSLTU
	default:
		inst.Op = OpUnknown
	}
	return inst
}

func (d *Decoder) decodeRegImm(word uint32) *Instruction {
	inst := &Instruction{
		Format: FormatRegImm,
		Word:   word,
		Rs:     (word >> 21) & 0x1f,
		Rt:     (word >> 16) & 0x1f,
		Imm:    word & 0xffff,
	}
	switch inst.Rt {
	case rtBLTZ:
		inst.Op = OpBLTZ
	case rtBGEZ:
		inst.Op = OpBGEZ
	case rtBLTZAL:
		inst.Op = OpBLTZAL
	case rtBGEZAL:
		inst.Op = OpBGEZAL
	default:
		inst.Op = OpUnknown
	}
	return inst
}

func (d *Decoder) decodeJType(word uint32) *Instruction {
	opcode := (word >> 26) & 0x3f
	inst := &Instruction{
		Format: FormatJ,
		Word:   word,
		Addr:   word & 0x3ffffff,
	}
	if opcode == opcodeJ {
		inst.Op = OpJ
	} else {
		inst.Op = OpJAL
	}
	return inst
}

func (d *Decoder) decodeIType(word uint32, opcode uint32) *Instruction {
	inst := &Instruction{
		Format: FormatI,
		Word:   word,
		Rs:     (word >> 21) & 0x1f,
		Rt:     (word >> 16) & 0x1f,
		Imm:    word & 0xffff,
	}
	switch opcode {
	case opcodeBEQ:
		inst.Op = OpBEQ
	case opcodeBNE:
		inst.Op = OpBNE
	case opcodeBLEZ:
		inst.Op = OpBLEZ
	case opcodeBGTZ:
		inst.Op = OpBGTZ
	case opcodeADDI:
		inst.Op = OpADDI
	case opcodeADDIU:
		inst.Op = OpADDIU
	case opcodeSLTI:
		inst.Op = OpSLTI
	case opcodeSLTIU:
		inst.Op = OpSLTIU
	case opcodeANDI:
		inst.Op = OpANDI
	case opcodeORI:
		inst.Op = OpORI
	case opcodeXORI:
		inst.Op = OpXORI
	case opcodeLUI:
		inst.Op = OpLUI
	case opcodeLB:
		inst.Op = OpLB
	case opcodeLW:
		inst.Op = OpLW
	case opcodeSB:
		inst.Op = OpSB
	case opcodeSW:
		inst.Op = OpSW
	default:
		inst.Op = OpUnknown
	}
	return inst
}
