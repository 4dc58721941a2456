package emu

// LoadStoreUnit implements the MIPS I word and byte load/store
// instructions. Sub-word access is not a primitive of Memory: LB/SB
// read-modify-write the containing word and mask/shift the selected
// byte lane themselves.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{regFile: regFile, memory: memory}
}

func effectiveAddr(base, imm uint32) uint32 {
	return base + signExtend16(imm)
}

// LW loads the word at rs+sign_extend(imm) into rt.
func (lsu *LoadStoreUnit) LW(rt, rs, imm uint32) error {
	ea := effectiveAddr(lsu.regFile.Read(rs), imm)
	v, err := lsu.memory.FetchWord(ea)
	if err != nil {
		return err
	}
	lsu.regFile.Write(rt, v)
	return nil
}

// SW stores rt at rs+sign_extend(imm).
func (lsu *LoadStoreUnit) SW(rt, rs, imm uint32) error {
	ea := effectiveAddr(lsu.regFile.Read(rs), imm)
	return lsu.memory.StoreWord(ea, lsu.regFile.Read(rt))
}

// LB fetches the word at rs+sign_extend(imm) minus imm mod 4, extracts
// the byte lane selected by imm mod 4 (not the effective address, per
// the reference simulator — see DESIGN.md), and zero-extends it into
// rt. When rs is word-aligned that is the word containing the
// effective address and the lane agrees with it; otherwise the fetch
// address is misaligned and the access faults. The ISA sign-extends;
// this core zero-extends, matching the reference.
func (lsu *LoadStoreUnit) LB(rt, rs, imm uint32) error {
	ea := effectiveAddr(lsu.regFile.Read(rs), imm)
	lane := imm % 4
	word, err := lsu.memory.FetchWord(ea - lane)
	if err != nil {
		return err
	}
	b := (word >> (8 * lane)) & 0xff
	lsu.regFile.Write(rt, b)
	return nil
}

// SB reads the word at rs+sign_extend(imm) minus imm mod 4, replaces
// the byte lane selected by imm mod 4 with rt&0xff, and writes the
// word back. As with LB, a base register that is not word-aligned
// makes that word address misaligned, and the access faults.
func (lsu *LoadStoreUnit) SB(rt, rs, imm uint32) error {
	ea := effectiveAddr(lsu.regFile.Read(rs), imm)
	lane := imm % 4
	base := ea - lane
	word, err := lsu.memory.FetchWord(base)
	if err != nil {
		return err
	}
	shift := 8 * lane
	word = (word &^ (0xff << shift)) | ((lsu.regFile.Read(rt) & 0xff) << shift)
	return lsu.memory.StoreWord(base, word)
}
