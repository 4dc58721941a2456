// Package loader provides ELF binary loading for MIPS I executables.
package loader

import (
	"debug/elf"
	"fmt"
	"io"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// DefaultStackTop is a conventional high address for the user stack
// in a 32-bit MIPS address space.
const DefaultStackTop = 0x7ffff000

// DefaultStackSize is the default stack size (8MB).
const DefaultStackSize = 8 * 1024 * 1024

// Segment represents a loadable segment from an ELF binary.
type Segment struct {
	// VirtAddr is the virtual address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for
	// BSS), rounded up to a word multiple: Memory has no sub-word
	// region granularity, so the bytes between len(Data) and MemSize
	// are the segment's zero-filled BSS tail plus whatever padding
	// the rounding added.
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded ELF program ready for execution.
type Program struct {
	// EntryPoint is the virtual address where execution should begin.
	EntryPoint uint32
	// Segments contains all loadable segments from the ELF file.
	Segments []Segment
	// InitialSP is the initial stack pointer value.
	InitialSP uint32
}

// StackRegion returns the base address and size of the stack region
// that must be mapped below InitialSP. The guest stack starts with
// no defined contents, so callers should map it zero-filled.
func (p *Program) StackRegion() (base, size uint32) {
	return p.InitialSP - DefaultStackSize, DefaultStackSize
}

// roundToWord rounds n up to the next multiple of 4. Segments are
// mapped as whole words, so a segment's in-memory size always needs
// rounding up from the raw ELF-reported Memsz before it can be
// handed to Memory.AddRegion.
func roundToWord(n uint32) uint32 {
	if n%4 != 0 {
		n += 4 - n%4
	}
	return n
}

// Load parses a 32-bit little-endian MIPS ELF binary (the endianness
// this core's Memory assumes for word packing) and returns a Program
// ready for loading into the emulator's address space.
func Load(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Machine != elf.EM_MIPS {
		return nil, fmt.Errorf("not a MIPS ELF file (machine type: %v)", f.Machine)
	}
	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}

	prog := &Program{
		EntryPoint: uint32(f.Entry),
		InitialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  roundToWord(uint32(phdr.Memsz)),
			Flags:    flags,
		})
	}

	return prog, nil
}
