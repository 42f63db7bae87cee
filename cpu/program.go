package cpu

import (
	"iter"

	"github.com/ezrec/sim6502/memory"
)

// Line is an assembled source line.
type Line struct {
	LineNo  int    // 1-based source line number.
	Text    string // Source text.
	Address uint16 // Address of the first byte.
	Bytes   []byte // Encoded bytes; empty for labels and directives.
}

// Program is an assembled image.
type Program struct {
	Lines   []Line            // Non-blank source lines.
	Size    int               // Total bytes emitted.
	End     uint16            // Address following the last emitted byte.
	Labels  map[string]uint16 // Label addresses.
	Symbols map[string]string // Symbol values.
}

// LineAt finds the source line that encoded an address.
func (prog *Program) LineAt(addr uint16) (line *Line, ok bool) {
	for n := range prog.Lines {
		l := &prog.Lines[n]
		if addr >= l.Address && int(addr) < int(l.Address)+len(l.Bytes) {
			return l, true
		}
	}

	return
}

// Bytes iterates every emitted byte with its address.
func (prog *Program) Bytes() iter.Seq2[uint16, byte] {
	return func(yield func(addr uint16, value byte) bool) {
		for _, line := range prog.Lines {
			for n, value := range line.Bytes {
				if !yield(line.Address+uint16(n), value) {
					return
				}
			}
		}
	}
}

// Extent returns the length of the image from ADDR_START to the highest
// byte emitted at or above it. Bytes placed below ADDR_START by origin
// directives do not shorten the image.
func (prog *Program) Extent() (length int) {
	for _, line := range prog.Lines {
		if line.Address < ADDR_START || len(line.Bytes) == 0 {
			continue
		}
		length = max(length, int(line.Address)+len(line.Bytes)-int(ADDR_START))
	}

	return
}

// Binary returns the contiguous image of Extent bytes from ADDR_START. Gaps
// between origins are zero filled; bytes below ADDR_START are omitted.
func (prog *Program) Binary() (bins []byte) {
	length := prog.Extent()
	if length == 0 {
		return
	}
	bins = make([]byte, length)
	for addr, value := range prog.Bytes() {
		if addr >= ADDR_START {
			bins[addr-ADDR_START] = value
		}
	}

	return
}

// Load writes the program into memory, followed by a null byte at End.
func (prog *Program) Load(mem *memory.Memory) {
	for addr, value := range prog.Bytes() {
		mem.Write(addr, value)
	}
	mem.Write(prog.End, 0)
}
