package emu

import "fmt"

// Fault is a fatal simulator error: an address fault, a decode
// fault, or an arithmetic fault. The top-level loop prints its
// message and terminates the process; handlers never recover from it
// themselves.
type Fault struct {
	Kind    string
	Message string
}

func (f *Fault) Error() string {
	return f.Message
}

func addressFault(addr uint32, reason string) *Fault {
	return &Fault{
		Kind:    "address",
		Message: fmt.Sprintf("SEGFAULT: %s at address 0x%08x", reason, addr),
	}
}

// Region is a contiguous, word-granular slab of guest memory with a
// fixed base address and length. Len is always a multiple of 4; Words
// holds len/4 32-bit cells.
type Region struct {
	VAddr uint32
	Len   uint32
	Words []uint32
}

func (r *Region) contains(addr uint32) bool {
	return addr >= r.VAddr && addr < r.VAddr+r.Len
}

// Memory is the guest address space: an ordered list of non-
// overlapping regions searched by linear first-fit. It is populated
// once by the loader and mutated in place by the core; it is never
// resized or relocated during execution.
type Memory struct {
	regions []*Region
}

// NewMemory returns an address space with no regions.
func NewMemory() *Memory {
	return &Memory{}
}

// AddRegion appends a region spanning [vaddr, vaddr+len). data is
// copied word-by-word in little-endian order; bytes beyond len(data)
// within the region are zero-filled (BSS).
func (m *Memory) AddRegion(vaddr uint32, length uint32, data []byte) *Region {
	words := make([]uint32, length/4)
	for i := range words {
		off := i * 4
		var w uint32
		for b := 0; b < 4 && off+b < len(data); b++ {
			w |= uint32(data[off+b]) << (8 * uint(b))
		}
		words[i] = w
	}
	region := &Region{VAddr: vaddr, Len: length, Words: words}
	m.regions = append(m.regions, region)
	return region
}

func (m *Memory) find(addr uint32) *Region {
	for _, r := range m.regions {
		if r.contains(addr) {
			return r
		}
	}
	return nil
}

// FetchWord reads the word at addr. It is a fatal address fault if
// addr is not 4-aligned or falls outside every region.
func (m *Memory) FetchWord(addr uint32) (uint32, error) {
	if addr%4 != 0 {
		return 0, addressFault(addr, "misaligned fetch")
	}
	r := m.find(addr)
	if r == nil {
		return 0, addressFault(addr, "no mapped region")
	}
	return r.Words[(addr-r.VAddr)/4], nil
}

// StoreWord writes value at addr, under the same lookup and
// alignment rules as FetchWord.
func (m *Memory) StoreWord(addr uint32, value uint32) error {
	if addr%4 != 0 {
		return addressFault(addr, "misaligned store")
	}
	r := m.find(addr)
	if r == nil {
		return addressFault(addr, "no mapped region")
	}
	r.Words[(addr-r.VAddr)/4] = value
	return nil
}
