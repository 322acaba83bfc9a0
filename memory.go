package chip8

import (
	"fmt"
	"strings"
)

const (
	// MemorySize is the number of addressable bytes
	MemorySize = 4096
	// AddressMask keeps an address inside the 12-bit address space
	AddressMask = 0x0FFF
	// ProgramStart is where programs are loaded and where execution begins
	ProgramStart = 0x200
	// FontBase is the address of the first built-in glyph
	FontBase = 0x000
	// FontGlyphSize is the number of bytes (rows) of each built-in glyph
	FontGlyphSize = 5
)

var font = [16 * FontGlyphSize]byte{
	// 0
	0xF0, 0x90, 0x90, 0x90, 0xF0,
	// 1
	0x20, 0x60, 0x20, 0x20, 0x70,
	// 2
	0xF0, 0x10, 0xF0, 0x80, 0xF0,
	// 3
	0xF0, 0x10, 0xF0, 0x10, 0xF0,
	// 4
	0x90, 0x90, 0xF0, 0x10, 0x10,
	// 5
	0xF0, 0x80, 0xF0, 0x10, 0xF0,
	// 6
	0xF0, 0x80, 0xF0, 0x90, 0xF0,
	// 7
	0xF0, 0x10, 0x20, 0x40, 0x40,
	// 8
	0xF0, 0x90, 0xF0, 0x90, 0xF0,
	// 9
	0xF0, 0x90, 0xF0, 0x10, 0xF0,
	// A
	0xF0, 0x90, 0xF0, 0x90, 0x90,
	// B
	0xE0, 0x90, 0xE0, 0x90, 0xE0,
	// C
	0xF0, 0x80, 0x80, 0x80, 0xF0,
	// D
	0xE0, 0x90, 0x90, 0x90, 0xE0,
	// E
	0xF0, 0x80, 0xF0, 0x80, 0xF0,
	// F
	0xF0, 0x80, 0xF0, 0x80, 0x80,
}

type Memory [MemorySize]byte

// NewMemory creates a zeroed memory of 4096 bytes with the built-in font loaded
func NewMemory() *Memory {
	m := Memory{}
	m.Reset()

	return &m
}

// Reset zeroes the memory and loads the built-in font
func (mem *Memory) Reset() {
	clear(mem[:])
	copy(mem[FontBase:], font[:])
}

// Read returns the byte at addr, masked to 12 bits
func (mem *Memory) Read(addr uint16) byte {
	return mem[addr&AddressMask]
}

// Write stores b at addr, masked to 12 bits
func (mem *Memory) Write(addr uint16, b byte) {
	mem[addr&AddressMask] = b
}

// ReadWord returns the big-endian word at addr
func (mem *Memory) ReadWord(addr uint16) uint16 {
	return uint16(mem.Read(addr))<<8 | uint16(mem.Read(addr+1))
}

// LoadProgram copies the program verbatim at the start-of-program address
func (mem *Memory) LoadProgram(program []byte) error {
	if len(program) > MemorySize-ProgramStart {
		return ErrProgramTooLarge
	}

	copy(mem[ProgramStart:], program)

	return nil
}

// dumpRowSize is the number of bytes on every line of a memory dump
const dumpRowSize = 16

// String dumps the memory as lines of 16 bytes prefixed by their address, e.g. "200: 6A 0F A2 00 ..."
func (mem *Memory) String() string {
	sb := strings.Builder{}
	sb.Grow(MemorySize / dumpRowSize * (5 + dumpRowSize*3 + 1))

	for row := 0; row < MemorySize; row += dumpRowSize {
		fmt.Fprintf(&sb, "%03X:", row)
		for _, b := range mem[row : row+dumpRowSize] {
			fmt.Fprintf(&sb, " %02X", b)
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}
