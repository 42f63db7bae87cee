package cpu

import (
	"fmt"
	"iter"
	"strings"

	"github.com/ezrec/sim6502/memory"
)

// Instruction is a decoded instruction.
type Instruction struct {
	Address  uint16         // Address of the opcode byte.
	Bytes    []byte         // Encoded bytes.
	Mnemonic string         // Mnemonic, or ??? for an unknown opcode.
	Mode     AddressingMode // Addressing mode.
	Operand  string         // Operand in assembler syntax.
}

// String renders the instruction as a listing line.
//
//	$0600    a9 01     LDA #$01
func (ins Instruction) String() string {
	hex := make([]string, len(ins.Bytes))
	for n, value := range ins.Bytes {
		hex[n] = fmt.Sprintf("%02x", value)
	}
	text := fmt.Sprintf("$%04x    %-10s%s %s", ins.Address, strings.Join(hex, " "), ins.Mnemonic, ins.Operand)
	return strings.TrimRight(text, " ")
}

// accumulator shift opcodes take an explicit `A` operand.
var accumulator = map[byte]bool{0x0a: true, 0x4a: true, 0x2a: true, 0x6a: true}

// formatOperand renders an operand in assembler syntax.
func formatOperand(mode AddressingMode, addr uint16, code byte, args []byte) string {
	var value uint16
	switch len(args) {
	case 1:
		value = uint16(args[0])
	case 2:
		value = uint16(args[0]) | uint16(args[1])<<8
	}

	switch mode {
	case MODE_IMMEDIATE:
		return fmt.Sprintf("#$%02x", value)
	case MODE_ZERO_PAGE:
		return fmt.Sprintf("$%02x", value)
	case MODE_ZERO_PAGE_X:
		return fmt.Sprintf("$%02x,X", value)
	case MODE_ZERO_PAGE_Y:
		return fmt.Sprintf("$%02x,Y", value)
	case MODE_ABSOLUTE:
		return fmt.Sprintf("$%04x", value)
	case MODE_ABSOLUTE_X:
		return fmt.Sprintf("$%04x,X", value)
	case MODE_ABSOLUTE_Y:
		return fmt.Sprintf("$%04x,Y", value)
	case MODE_INDIRECT:
		return fmt.Sprintf("($%04x)", value)
	case MODE_INDIRECT_X:
		return fmt.Sprintf("($%02x,X)", value)
	case MODE_INDIRECT_Y:
		return fmt.Sprintf("($%02x),Y", value)
	case MODE_BRANCH:
		return fmt.Sprintf("$%04x", addr+2+uint16(int8(value)))
	case MODE_SINGLE:
		if accumulator[code] {
			return "A"
		}
	}

	return ""
}

// DecodeAt decodes the instruction at an address.
func DecodeAt(r memory.Reader, addr uint16) (ins Instruction) {
	code := r.Read(addr)
	mnemonic, mode, ok := Decode(code)
	if !ok {
		return Instruction{
			Address:  addr,
			Bytes:    []byte{code},
			Mnemonic: "???",
			Mode:     MODE_SINGLE,
		}
	}

	bytes := make([]byte, mode.Length())
	for n := range bytes {
		bytes[n] = r.Read(addr + uint16(n))
	}

	return Instruction{
		Address:  addr,
		Bytes:    bytes,
		Mnemonic: mnemonic,
		Mode:     mode,
		Operand:  formatOperand(mode, addr, code, bytes[1:]),
	}
}

// Disassemble decodes length bytes of memory from start. The sequence is
// lazy, and may be iterated more than once.
func Disassemble(r memory.Reader, start uint16, length int) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		for offset := 0; offset < length; {
			ins := DecodeAt(r, start+uint16(offset))
			if !yield(ins) {
				return
			}
			offset += len(ins.Bytes)
		}
	}
}
