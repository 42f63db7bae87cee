package cpu

import (
	"strings"
)

// AddressingMode is the operand encoding of an instruction.
type AddressingMode int

// Operand syntax, in assembler matching order: #$nn, $nn, $nn,X, $nn,Y,
// $nnnn, $nnnn,X, $nnnn,Y, ($nnnn), ($nn,X), ($nn),Y, implied or A, and a
// relative branch target.
//
//go:generate go tool stringer -linecomment -type=AddressingMode
const (
	MODE_IMMEDIATE   = AddressingMode(0)  // imm
	MODE_ZERO_PAGE   = AddressingMode(1)  // zp
	MODE_ZERO_PAGE_X = AddressingMode(2)  // zpx
	MODE_ZERO_PAGE_Y = AddressingMode(3)  // zpy
	MODE_ABSOLUTE    = AddressingMode(4)  // abs
	MODE_ABSOLUTE_X  = AddressingMode(5)  // absx
	MODE_ABSOLUTE_Y  = AddressingMode(6)  // absy
	MODE_INDIRECT    = AddressingMode(7)  // ind
	MODE_INDIRECT_X  = AddressingMode(8)  // indx
	MODE_INDIRECT_Y  = AddressingMode(9)  // indy
	MODE_SINGLE      = AddressingMode(10) // sngl
	MODE_BRANCH      = AddressingMode(11) // bra

	MODE_COUNT = 12
)

var modeLengths = [MODE_COUNT]int{2, 2, 2, 2, 3, 3, 3, 3, 2, 2, 1, 2}

// Length returns the instruction length, in bytes, of the mode.
func (mode AddressingMode) Length() int {
	if mode < 0 || mode >= MODE_COUNT {
		return 1
	}
	return modeLengths[mode]
}

// Opcode describes the encodings of one mnemonic. A code of -1 means the
// mnemonic has no encoding in that mode.
type Opcode struct {
	Mnemonic string
	Codes    [MODE_COUNT]int
}

// Code returns the opcode byte of a mode.
func (op *Opcode) Code(mode AddressingMode) (code byte, ok bool) {
	value := op.Codes[mode]
	if value < 0 {
		return
	}

	return byte(value), true
}

const __ = -1

// Opcodes is the legal NMOS 6502 instruction set.
var Opcodes = []Opcode{
	//              IMM   ZP    ZPX   ZPY   ABS   ABSX  ABSY  IND   INDX  INDY  SNGL  BRA
	{"ADC", [MODE_COUNT]int{0x69, 0x65, 0x75, __, 0x6d, 0x7d, 0x79, __, 0x61, 0x71, __, __}},
	{"AND", [MODE_COUNT]int{0x29, 0x25, 0x35, __, 0x2d, 0x3d, 0x39, __, 0x21, 0x31, __, __}},
	{"ASL", [MODE_COUNT]int{__, 0x06, 0x16, __, 0x0e, 0x1e, __, __, __, __, 0x0a, __}},
	{"BIT", [MODE_COUNT]int{__, 0x24, __, __, 0x2c, __, __, __, __, __, __, __}},
	{"BPL", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, __, 0x10}},
	{"BMI", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, __, 0x30}},
	{"BVC", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, __, 0x50}},
	{"BVS", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, __, 0x70}},
	{"BCC", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, __, 0x90}},
	{"BCS", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, __, 0xb0}},
	{"BNE", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, __, 0xd0}},
	{"BEQ", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, __, 0xf0}},
	{"BRK", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x00, __}},
	{"CMP", [MODE_COUNT]int{0xc9, 0xc5, 0xd5, __, 0xcd, 0xdd, 0xd9, __, 0xc1, 0xd1, __, __}},
	{"CPX", [MODE_COUNT]int{0xe0, 0xe4, __, __, 0xec, __, __, __, __, __, __, __}},
	{"CPY", [MODE_COUNT]int{0xc0, 0xc4, __, __, 0xcc, __, __, __, __, __, __, __}},
	{"DEC", [MODE_COUNT]int{__, 0xc6, 0xd6, __, 0xce, 0xde, __, __, __, __, __, __}},
	{"EOR", [MODE_COUNT]int{0x49, 0x45, 0x55, __, 0x4d, 0x5d, 0x59, __, 0x41, 0x51, __, __}},
	{"CLC", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x18, __}},
	{"SEC", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x38, __}},
	{"CLI", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x58, __}},
	{"SEI", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x78, __}},
	{"CLV", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0xb8, __}},
	{"CLD", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0xd8, __}},
	{"SED", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0xf8, __}},
	{"INC", [MODE_COUNT]int{__, 0xe6, 0xf6, __, 0xee, 0xfe, __, __, __, __, __, __}},
	{"JMP", [MODE_COUNT]int{__, __, __, __, 0x4c, __, __, 0x6c, __, __, __, __}},
	{"JSR", [MODE_COUNT]int{__, __, __, __, 0x20, __, __, __, __, __, __, __}},
	{"LDA", [MODE_COUNT]int{0xa9, 0xa5, 0xb5, __, 0xad, 0xbd, 0xb9, __, 0xa1, 0xb1, __, __}},
	{"LDX", [MODE_COUNT]int{0xa2, 0xa6, __, 0xb6, 0xae, __, 0xbe, __, __, __, __, __}},
	{"LDY", [MODE_COUNT]int{0xa0, 0xa4, 0xb4, __, 0xac, 0xbc, __, __, __, __, __, __}},
	{"LSR", [MODE_COUNT]int{__, 0x46, 0x56, __, 0x4e, 0x5e, __, __, __, __, 0x4a, __}},
	{"NOP", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0xea, __}},
	{"ORA", [MODE_COUNT]int{0x09, 0x05, 0x15, __, 0x0d, 0x1d, 0x19, __, 0x01, 0x11, __, __}},
	{"TAX", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0xaa, __}},
	{"TXA", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x8a, __}},
	{"DEX", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0xca, __}},
	{"INX", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0xe8, __}},
	{"TAY", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0xa8, __}},
	{"TYA", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x98, __}},
	{"DEY", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x88, __}},
	{"INY", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0xc8, __}},
	{"ROR", [MODE_COUNT]int{__, 0x66, 0x76, __, 0x6e, 0x7e, __, __, __, __, 0x6a, __}},
	{"ROL", [MODE_COUNT]int{__, 0x26, 0x36, __, 0x2e, 0x3e, __, __, __, __, 0x2a, __}},
	{"RTI", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x40, __}},
	{"RTS", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x60, __}},
	{"SBC", [MODE_COUNT]int{0xe9, 0xe5, 0xf5, __, 0xed, 0xfd, 0xf9, __, 0xe1, 0xf1, __, __}},
	{"STA", [MODE_COUNT]int{__, 0x85, 0x95, __, 0x8d, 0x9d, 0x99, __, 0x81, 0x91, __, __}},
	{"TXS", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x9a, __}},
	{"TSX", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0xba, __}},
	{"PHA", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x48, __}},
	{"PLA", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x68, __}},
	{"PHP", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x08, __}},
	{"PLP", [MODE_COUNT]int{__, __, __, __, __, __, __, __, __, __, 0x28, __}},
	{"STX", [MODE_COUNT]int{__, 0x86, __, 0x96, 0x8e, __, __, __, __, __, __, __}},
	{"STY", [MODE_COUNT]int{__, 0x84, 0x94, __, 0x8c, __, __, __, __, __, __, __}},
}

// decoded is an entry of the reverse opcode index.
type decoded struct {
	opcode *Opcode
	mode   AddressingMode
}

var (
	mnemonicIndex map[string]*Opcode
	decodeIndex   [256]decoded
)

func init() {
	mnemonicIndex = make(map[string]*Opcode, len(Opcodes))
	for n := range Opcodes {
		op := &Opcodes[n]
		mnemonicIndex[op.Mnemonic] = op
		for mode := range AddressingMode(MODE_COUNT) {
			code, ok := op.Code(mode)
			if !ok {
				continue
			}
			if decodeIndex[code].opcode != nil {
				panic("duplicate opcode " + op.Mnemonic)
			}
			decodeIndex[code] = decoded{opcode: op, mode: mode}
		}
	}
}

// Lookup finds the opcode descriptor for a mnemonic, in any letter case.
func Lookup(mnemonic string) (op *Opcode, ok bool) {
	op, ok = mnemonicIndex[strings.ToUpper(mnemonic)]
	return
}

// Decode maps an opcode byte back to its mnemonic and addressing mode.
func Decode(code byte) (mnemonic string, mode AddressingMode, ok bool) {
	entry := decodeIndex[code]
	if entry.opcode == nil {
		mode = MODE_SINGLE
		return
	}

	return entry.opcode.Mnemonic, entry.mode, true
}
