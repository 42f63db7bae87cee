// Package cpu implements the NMOS 6502 interpreter, assembler and
// disassembler for the simulator.
//
// The CPU has an 8-bit accumulator (A), two index registers (X, Y), an 8-bit
// stack pointer into page one ($0100-$01ff), a 16-bit program counter and the
// NV-BDIZC status register. Instructions are dispatched from a table built
// from Opcodes, the same table the Assembler encodes from and the
// disassembler decodes with.
//
// The assembler is a two pass assembler: the first pass measures every line
// to place labels, the second pass encodes. It supports labels, `define`
// symbols, `*=` origin changes, DCB byte lists and $(...) compile-time
// expressions.
package cpu
