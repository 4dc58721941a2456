package emu

// BranchUnit implements the MIPS I branch and jump instructions. This
// simulator does not model branch delay slots: a taken branch or
// jump takes effect immediately, and the unit is solely responsible
// for updating PC — callers must not also apply the default PC += 4.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

func branchTarget(pc, imm uint32) uint32 {
	return pc + 4 + (signExtend16(imm) << 2)
}

// BEQ branches to PC+4+(imm<<2) if rs == rt, else falls through to PC+4.
func (b *BranchUnit) BEQ(rs, rt, imm uint32) {
	if b.regFile.Read(rs) == b.regFile.Read(rt) {
		b.regFile.PC = branchTarget(b.regFile.PC, imm)
	} else {
		b.regFile.PC += 4
	}
}

// BNE branches if rs != rt.
func (b *BranchUnit) BNE(rs, rt, imm uint32) {
	if b.regFile.Read(rs) != b.regFile.Read(rt) {
		b.regFile.PC = branchTarget(b.regFile.PC, imm)
	} else {
		b.regFile.PC += 4
	}
}

// BLEZ branches if rs <= 0 (signed).
func (b *BranchUnit) BLEZ(rs, imm uint32) {
	if int32(b.regFile.Read(rs)) <= 0 {
		b.regFile.PC = branchTarget(b.regFile.PC, imm)
	} else {
		b.regFile.PC += 4
	}
}

// BGTZ branches if rs > 0 (signed).
func (b *BranchUnit) BGTZ(rs, imm uint32) {
	if int32(b.regFile.Read(rs)) > 0 {
		b.regFile.PC = branchTarget(b.regFile.PC, imm)
	} else {
		b.regFile.PC += 4
	}
}

// BLTZ branches if rs < 0 (signed).
func (b *BranchUnit) BLTZ(rs, imm uint32) {
	if int32(b.regFile.Read(rs)) < 0 {
		b.regFile.PC = branchTarget(b.regFile.PC, imm)
	} else {
		b.regFile.PC += 4
	}
}

// BGEZ branches if rs >= 0 (signed).
func (b *BranchUnit) BGEZ(rs, imm uint32) {
	if int32(b.regFile.Read(rs)) >= 0 {
		b.regFile.PC = branchTarget(b.regFile.PC, imm)
	} else {
		b.regFile.PC += 4
	}
}

// BLTZAL branches if rs < 0, linking ra only on the taken branch.
// This matches the reference simulator rather than the ISA, which
// links unconditionally (see DESIGN.md).
func (b *BranchUnit) BLTZAL(rs, imm uint32) {
	if int32(b.regFile.Read(rs)) < 0 {
		b.regFile.Write(RegRa, b.regFile.PC+8)
		b.regFile.PC = branchTarget(b.regFile.PC, imm)
	} else {
		b.regFile.PC += 4
	}
}

// BGEZAL branches if rs >= 0, linking ra only on the taken branch.
func (b *BranchUnit) BGEZAL(rs, imm uint32) {
	if int32(b.regFile.Read(rs)) >= 0 {
		b.regFile.Write(RegRa, b.regFile.PC+8)
		b.regFile.PC = branchTarget(b.regFile.PC, imm)
	} else {
		b.regFile.PC += 4
	}
}

// J jumps unconditionally to (PC & 0xF0000000) | (addr << 2).
func (b *BranchUnit) J(addr uint32) {
	b.regFile.PC = (b.regFile.PC & 0xf0000000) | (addr << 2)
}

// JAL jumps like J and unconditionally links ra = PC + 8.
func (b *BranchUnit) JAL(addr uint32) {
	target := (b.regFile.PC & 0xf0000000) | (addr << 2)
	b.regFile.Write(RegRa, b.regFile.PC+8)
	b.regFile.PC = target
}

// JR jumps to the address held in rs, with no implicit PC += 4.
func (b *BranchUnit) JR(rs uint32) {
	b.regFile.PC = b.regFile.Read(rs)
}
