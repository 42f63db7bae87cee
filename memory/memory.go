// Package memory implements the 64KB byte-addressable store shared by the
// 6502 interpreter, the assembler and the display devices.
package memory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ezrec/sim6502/translate"
)

var f = translate.From

const (
	SIZE = 0x10000 // Full 16-bit address space.
)

var (
	ErrRange = errors.New(f("cannot monitor this range, valid ranges are between $0000 and $ffff inclusive"))
)

// Reader is the read-only view used by disassemblers and monitors.
type Reader interface {
	Read(addr uint16) byte
}

// watch is an observer of writes to a range of addresses.
type watch struct {
	start, end uint16
	fn         func(addr uint16, value byte)
}

// Memory is the flat address space. The zero value is ready to use.
type Memory struct {
	data    [SIZE]byte
	watches []watch
}

// Read a byte.
func (mem *Memory) Read(addr uint16) byte {
	return mem.data[addr]
}

// ReadWord reads a little-endian word. The high byte address wraps at $ffff.
func (mem *Memory) ReadWord(addr uint16) uint16 {
	return uint16(mem.data[addr]) | uint16(mem.data[addr+1])<<8
}

// Write a byte, notifying any observer of the address.
func (mem *Memory) Write(addr uint16, value byte) {
	mem.data[addr] = value
	for _, w := range mem.watches {
		if addr >= w.start && addr <= w.end {
			w.fn(addr, value)
		}
	}
}

// Store writes the low 8 bits of an integer value.
func (mem *Memory) Store(addr uint16, value int) {
	mem.Write(addr, byte(value&0xff))
}

// Watch registers a callback for writes within [start, end].
func (mem *Memory) Watch(start, end uint16, fn func(addr uint16, value byte)) {
	mem.watches = append(mem.watches, watch{start: start, end: end, fn: fn})
}

// Load copies data into memory starting at an address, wrapping at $ffff.
func (mem *Memory) Load(start uint16, data []byte) {
	for n, value := range data {
		mem.Write(start+uint16(n), value)
	}
}

// Clear zeroes a range of memory.
func (mem *Memory) Clear(start uint16, length int) {
	for n := range length {
		mem.Write(start+uint16(n), 0)
	}
}

// checkRange validates a monitor range.
func checkRange(start int, length int) error {
	if start < 0 || start > 0xffff || length < 0 || start+length > SIZE {
		return ErrRange
	}
	return nil
}

// Format renders a hex dump of a memory range, 16 bytes per line.
//
//	0600: a9 01 8d 00 02
func Format(mem Reader, start uint16, length int) (text string, err error) {
	err = checkRange(int(start), length)
	if err != nil {
		return
	}

	var sb strings.Builder
	for n := range length {
		addr := start + uint16(n)
		switch {
		case n == 0:
			fmt.Fprintf(&sb, "%04x:", addr)
		case n%16 == 0:
			fmt.Fprintf(&sb, "\n%04x:", addr)
		}
		fmt.Fprintf(&sb, " %02x", mem.Read(addr))
	}

	text = sb.String()
	return
}
