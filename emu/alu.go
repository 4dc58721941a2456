package emu

// ALU implements the MIPS I arithmetic, logical, and shift
// instructions. It owns no state of its own beyond the register file
// and HI/LO it operates on.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// ADD computes rd = rs + rt, wrapping on overflow (no trap).
func (a *ALU) ADD(rd, rs, rt uint32) {
	a.regFile.Write(rd, a.regFile.Read(rs)+a.regFile.Read(rt))
}

// ADDU is identical to ADD; this core does not trap on signed
// overflow for either form.
func (a *ALU) ADDU(rd, rs, rt uint32) {
	a.ADD(rd, rs, rt)
}

// SUB computes rd = rs - rt.
func (a *ALU) SUB(rd, rs, rt uint32) {
	a.regFile.Write(rd, a.regFile.Read(rs)-a.regFile.Read(rt))
}

// SUBU is identical to SUB.
func (a *ALU) SUBU(rd, rs, rt uint32) {
	a.SUB(rd, rs, rt)
}

// AND computes rd = rs & rt.
func (a *ALU) AND(rd, rs, rt uint32) {
	a.regFile.Write(rd, a.regFile.Read(rs)&a.regFile.Read(rt))
}

// OR computes rd = rs | rt.
func (a *ALU) OR(rd, rs, rt uint32) {
	a.regFile.Write(rd, a.regFile.Read(rs)|a.regFile.Read(rt))
}

// XOR computes rd = rs ^ rt.
func (a *ALU) XOR(rd, rs, rt uint32) {
	a.regFile.Write(rd, a.regFile.Read(rs)^a.regFile.Read(rt))
}

// SLT sets rd to 1 if rs < rt under signed comparison, else 0.
func (a *ALU) SLT(rd, rs, rt uint32) {
	if int32(a.regFile.Read(rs)) < int32(a.regFile.Read(rt)) {
		a.regFile.Write(rd, 1)
	} else {
		a.regFile.Write(rd, 0)
	}
}

// SLTU sets rd to 1 if rs < rt under unsigned comparison, else 0.
func (a *ALU) SLTU(rd, rs, rt uint32) {
	if a.regFile.Read(rs) < a.regFile.Read(rt) {
		a.regFile.Write(rd, 1)
	} else {
		a.regFile.Write(rd, 0)
	}
}

// MULT writes the low 32 bits of rs*rt to LO. HI is left untouched,
// matching the reference simulator rather than the full MIPS ISA
// (see DESIGN.md).
func (a *ALU) MULT(rs, rt uint32) {
	a.regFile.LO = a.regFile.Read(rs) * a.regFile.Read(rt)
}

// MULTU behaves identically to MULT; the reference makes no
// signed/unsigned distinction here either.
func (a *ALU) MULTU(rs, rt uint32) {
	a.MULT(rs, rt)
}

// DIV sets LO = rs/rt, HI = rs%rt under signed division.
func (a *ALU) DIV(rs, rt uint32) error {
	if a.regFile.Read(rt) == 0 {
		return &Fault{Kind: "arithmetic", Message: "SIGFPE: division by zero"}
	}
	s := int32(a.regFile.Read(rs))
	t := int32(a.regFile.Read(rt))
	a.regFile.LO = uint32(s / t)
	a.regFile.HI = uint32(s % t)
	return nil
}

// DIVU sets LO = rs/rt, HI = rs%rt under unsigned division.
func (a *ALU) DIVU(rs, rt uint32) error {
	if a.regFile.Read(rt) == 0 {
		return &Fault{Kind: "arithmetic", Message: "SIGFPE: division by zero"}
	}
	s := a.regFile.Read(rs)
	t := a.regFile.Read(rt)
	a.regFile.LO = s / t
	a.regFile.HI = s % t
	return nil
}

// MFHI moves HI into rd.
func (a *ALU) MFHI(rd uint32) {
	a.regFile.Write(rd, a.regFile.HI)
}

// MFLO moves LO into rd.
func (a *ALU) MFLO(rd uint32) {
	a.regFile.Write(rd, a.regFile.LO)
}

// SLL shifts rt left by shamt bits into rd.
func (a *ALU) SLL(rd, rt, shamt uint32) {
	a.regFile.Write(rd, a.regFile.Read(rt)<<shamt)
}

// SRL shifts rt right by shamt bits (logical) into rd.
func (a *ALU) SRL(rd, rt, shamt uint32) {
	a.regFile.Write(rd, a.regFile.Read(rt)>>shamt)
}

// SRA is implemented as a logical right shift, matching the reference
// simulator; the ISA requires an arithmetic (sign-filling) shift (see
// DESIGN.md).
func (a *ALU) SRA(rd, rt, shamt uint32) {
	a.regFile.Write(rd, a.regFile.Read(rt)>>shamt)
}

// SLLV shifts rt left by the low 5 bits of rs into rd.
func (a *ALU) SLLV(rd, rt, rs uint32) {
	a.regFile.Write(rd, a.regFile.Read(rt)<<(a.regFile.Read(rs)&0x1f))
}

// SRLV shifts rt right (logical) by the low 5 bits of rs into rd.
func (a *ALU) SRLV(rd, rt, rs uint32) {
	a.regFile.Write(rd, a.regFile.Read(rt)>>(a.regFile.Read(rs)&0x1f))
}

// ADDI adds a sign-extended 16-bit immediate to rs into rt.
func (a *ALU) ADDI(rt, rs, imm uint32) {
	a.regFile.Write(rt, a.regFile.Read(rs)+signExtend16(imm))
}

// ADDIU is identical to ADDI.
func (a *ALU) ADDIU(rt, rs, imm uint32) {
	a.ADDI(rt, rs, imm)
}

// SLTI sets rt to 1 if rs < sign_extend(imm) under signed comparison.
func (a *ALU) SLTI(rt, rs, imm uint32) {
	if int32(a.regFile.Read(rs)) < int32(signExtend16(imm)) {
		a.regFile.Write(rt, 1)
	} else {
		a.regFile.Write(rt, 0)
	}
}

// SLTIU sign-extends imm, then compares unsigned: rt = 1 if
// rs < sign_extend(imm), else 0. Per the ISA the immediate is
// sign-extended even though the comparison is unsigned.
func (a *ALU) SLTIU(rt, rs, imm uint32) {
	if a.regFile.Read(rs) < signExtend16(imm) {
		a.regFile.Write(rt, 1)
	} else {
		a.regFile.Write(rt, 0)
	}
}

// ANDI computes rt = rs & zero_extend(imm).
func (a *ALU) ANDI(rt, rs, imm uint32) {
	a.regFile.Write(rt, a.regFile.Read(rs)&imm)
}

// ORI computes rt = rs | zero_extend(imm).
func (a *ALU) ORI(rt, rs, imm uint32) {
	a.regFile.Write(rt, a.regFile.Read(rs)|imm)
}

// XORI computes rt = rs ^ zero_extend(imm).
func (a *ALU) XORI(rt, rs, imm uint32) {
	a.regFile.Write(rt, a.regFile.Read(rs)^imm)
}

// LUI loads imm into the upper 16 bits of rt, zeroing the lower half.
func (a *ALU) LUI(rt, imm uint32) {
	a.regFile.Write(rt, imm<<16)
}

func signExtend16(imm uint32) uint32 {
	return uint32(int32(int16(imm)))
}
