package emu_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mipsim/emu"
)

var _ = Describe("DefaultSyscallHandler", func() {
	var (
		regs      *emu.RegFile
		memory    *emu.Memory
		stdoutBuf *bytes.Buffer
		handler   *emu.DefaultSyscallHandler
	)

	BeforeEach(func() {
		regs = emu.NewRegFile()
		memory = emu.NewMemory()
		stdoutBuf = &bytes.Buffer{}
		handler = emu.NewDefaultSyscallHandler(regs, memory, stdoutBuf, stdoutBuf)
	})

	readBytes := func(addr, n uint32) []byte {
		out := make([]byte, 0, n)
		for uint32(len(out)) < n {
			word, err := memory.FetchWord(addr)
			Expect(err).ToNot(HaveOccurred())
			for lane := 0; lane < 4 && uint32(len(out)) < n; lane++ {
				out = append(out, byte(word>>(8*uint(lane))))
			}
			addr += 4
		}
		return out
	}

	Describe("print_int", func() {
		It("prints a positive value", func() {
			regs.Write(emu.RegV0, emu.SyscallPrintInt)
			regs.Write(emu.RegA0, 42)

			handler.Handle()

			Expect(stdoutBuf.String()).To(Equal("42"))
		})

		It("prints a negative value as signed", func() {
			regs.Write(emu.RegV0, emu.SyscallPrintInt)
			regs.Write(emu.RegA0, 0xfffffff9) // -7

			handler.Handle()

			Expect(stdoutBuf.String()).To(Equal("-7"))
		})
	})

	Describe("print_string", func() {
		It("prints bytes up to the first NUL", func() {
			memory.AddRegion(0x3000, 8, []byte("Hi\x00"))
			regs.Write(emu.RegV0, emu.SyscallPrintString)
			regs.Write(emu.RegA0, 0x3000)

			handler.Handle()

			Expect(stdoutBuf.String()).To(Equal("Hi"))
		})

		It("stops at an empty string", func() {
			memory.AddRegion(0x3000, 4, []byte{0})
			regs.Write(emu.RegV0, emu.SyscallPrintString)
			regs.Write(emu.RegA0, 0x3000)

			handler.Handle()

			Expect(stdoutBuf.String()).To(Equal(""))
		})
	})

	Describe("read_int", func() {
		It("parses a line from stdin into v0", func() {
			handler.SetStdin(strings.NewReader("123\n"))
			regs.Write(emu.RegV0, emu.SyscallReadInt)

			result := handler.Handle()

			Expect(regs.Read(emu.RegV0)).To(Equal(uint32(123)))
			Expect(result.Exited).To(BeFalse())
		})

		It("leaves v0 unchanged on malformed input", func() {
			handler.SetStdin(strings.NewReader("not-a-number\n"))
			regs.Write(emu.RegV0, emu.SyscallReadInt)

			handler.Handle()

			Expect(regs.Read(emu.RegV0)).To(Equal(emu.SyscallReadInt))
		})

		It("leaves v0 unchanged at end of input", func() {
			handler.SetStdin(strings.NewReader(""))
			regs.Write(emu.RegV0, emu.SyscallReadInt)

			handler.Handle()

			Expect(regs.Read(emu.RegV0)).To(Equal(emu.SyscallReadInt))
		})
	})

	Describe("read_string", func() {
		It("packs the line into memory four bytes per word", func() {
			memory.AddRegion(0x4000, 16, nil)
			handler.SetStdin(strings.NewReader("abcdef\n"))
			regs.Write(emu.RegV0, emu.SyscallReadString)
			regs.Write(emu.RegA0, 0x4000)
			regs.Write(emu.RegA1, 8) // buffer holds at most 7 characters

			handler.Handle()

			// "abcdef" fills lanes 0-5; the terminator at lane 6 falls
			// through the buggy selector (see the next example) so
			// lane 6 stays zero and the newline marker lands in lane 7.
			Expect(readBytes(0x4000, 8)).To(Equal([]byte{'a', 'b', 'c', 'd', 'e', 'f', 0, 10}))
		})

		It("writes a newline marker in place of a NUL terminator, per the reference lane selector", func() {
			memory.AddRegion(0x4000, 8, nil)
			handler.SetStdin(strings.NewReader("ab\n"))
			regs.Write(emu.RegV0, emu.SyscallReadString)
			regs.Write(emu.RegA0, 0x4000)
			regs.Write(emu.RegA1, 8)

			handler.Handle()

			// "ab" occupies lanes 0-1; the terminator falls on lane 2,
			// which the buggy selector never matches, so the newline
			// marker (10) lands in lane 3 instead.
			word, err := memory.FetchWord(0x4000)
			Expect(err).ToNot(HaveOccurred())
			Expect(byte(word)).To(Equal(byte('a')))
			Expect(byte(word >> 8)).To(Equal(byte('b')))
			Expect(byte(word >> 24)).To(Equal(byte(10)))
		})

		It("writes a single zero word when n == 1", func() {
			memory.AddRegion(0x4000, 4, nil)
			handler.SetStdin(strings.NewReader("ignored\n"))
			regs.Write(emu.RegV0, emu.SyscallReadString)
			regs.Write(emu.RegA0, 0x4000)
			regs.Write(emu.RegA1, 1)

			handler.Handle()

			word, err := memory.FetchWord(0x4000)
			Expect(err).ToNot(HaveOccurred())
			Expect(word).To(Equal(uint32(0)))
		})

		It("writes nothing when n < 1", func() {
			memory.AddRegion(0x4000, 4, []byte{0xff, 0xff, 0xff, 0xff})
			handler.SetStdin(strings.NewReader("x\n"))
			regs.Write(emu.RegV0, emu.SyscallReadString)
			regs.Write(emu.RegA0, 0x4000)
			regs.Write(emu.RegA1, 0)

			handler.Handle()

			word, err := memory.FetchWord(0x4000)
			Expect(err).ToNot(HaveOccurred())
			Expect(word).To(Equal(uint32(0xffffffff)))
		})

		It("NUL-terminates at offset 0 on end-of-input with n >= 2", func() {
			memory.AddRegion(0x4000, 4, []byte{0xff, 0xff, 0xff, 0xff})
			handler.SetStdin(strings.NewReader(""))
			regs.Write(emu.RegV0, emu.SyscallReadString)
			regs.Write(emu.RegA0, 0x4000)
			regs.Write(emu.RegA1, 8)

			handler.Handle()

			word, err := memory.FetchWord(0x4000)
			Expect(err).ToNot(HaveOccurred())
			Expect(word).To(Equal(uint32(0)))
		})

		It("NUL-terminates at offset 0 on a blank line with n >= 2", func() {
			memory.AddRegion(0x4000, 4, []byte{0xff, 0xff, 0xff, 0xff})
			handler.SetStdin(strings.NewReader("\n"))
			regs.Write(emu.RegV0, emu.SyscallReadString)
			regs.Write(emu.RegA0, 0x4000)
			regs.Write(emu.RegA1, 8)

			handler.Handle()

			word, err := memory.FetchWord(0x4000)
			Expect(err).ToNot(HaveOccurred())
			Expect(word).To(Equal(uint32(0)))
		})
	})

	Describe("exit", func() {
		It("reports process status 1", func() {
			regs.Write(emu.RegV0, emu.SyscallExit)

			result := handler.Handle()

			Expect(result.Exited).To(BeTrue())
			Expect(result.ExitCode).To(Equal(1))
		})
	})

	Describe("an unrecognized syscall number", func() {
		It("is silently ignored", func() {
			regs.Write(emu.RegV0, 99)

			result := handler.Handle()

			Expect(result.Exited).To(BeFalse())
		})
	})
})
