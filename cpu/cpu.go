package cpu

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/ezrec/sim6502/memory"
)

const (
	ADDR_START   = uint16(0x0600) // Program load and reset address.
	ADDR_RANDOM  = uint16(0x00fe) // Entropy byte, refreshed before each fetch.
	ADDR_LASTKEY = uint16(0x00ff) // Most recent keypress.

	RESET_CLEAR = 0x0600 // Bytes of memory cleared on reset.
)

// Halt is the reason execution stopped.
type Halt int

//go:generate go tool stringer -linecomment -type=Halt
const (
	HALT_NONE    = Halt(iota) // running
	HALT_BRK                  // brk
	HALT_PC_ZERO              // pc zero
	HALT_FAULT                // fault
)

// Entropy supplies the byte written to ADDR_RANDOM before each fetch.
type Entropy interface {
	Byte() byte
}

type defaultEntropy struct{}

func (defaultEntropy) Byte() byte {
	return byte(rand.UintN(256))
}

// Cpu is the simulation context of an NMOS 6502.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory  *memory.Memory // Address space.
	Entropy Entropy        // Random byte source; math/rand/v2 if nil.
	Warn    func(error)    // Non-fatal condition report; logs if nil.

	A  byte   // Accumulator.
	X  byte   // X index.
	Y  byte   // Y index.
	PC uint16 // Program counter.
	P  Status // Processor status.

	Stack Stack // Page one stack.

	Ticks int // Instructions executed.
}

// NewCpu creates a CPU attached to memory, in the reset state.
func NewCpu(mem *memory.Memory) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: mem,
		Stack:  Stack{Memory: mem},
	}
	cpu.Reset()

	return
}

// String returns the current CPU state for debugging.
//
//	A=$00 X=$00 Y=$00
//	SP=$ff PC=$0600
//	NV-BDIZC
//	00110000
func (cpu *Cpu) String() string {
	return fmt.Sprintf("A=$%02x X=$%02x Y=$%02x\nSP=$%02x PC=$%04x\nNV-BDIZC\n%s",
		cpu.A, cpu.X, cpu.Y, cpu.Stack.Pointer, cpu.PC, cpu.P.Bits())
}

// Reset the CPU state.
// - Clears the registers and the stack pointer.
// - Zeros the low memory through the display.
// - Points the program counter at ADDR_START.
func (cpu *Cpu) Reset() {
	cpu.A, cpu.X, cpu.Y = 0, 0, 0
	cpu.P = STATUS_RESET
	cpu.PC = ADDR_START
	cpu.Ticks = 0
	cpu.Stack.Memory = cpu.Memory
	cpu.Stack.Reset()
	cpu.Memory.Clear(0, RESET_CLEAR)
}

// warn reports a non-fatal condition.
func (cpu *Cpu) warn(err error) {
	if cpu.Warn != nil {
		cpu.Warn(err)
		return
	}
	log.Printf("%v", err)
}

func (cpu *Cpu) fetch() (value byte) {
	value = cpu.Memory.Read(cpu.PC)
	cpu.PC++
	return
}

func (cpu *Cpu) fetchWord() (value uint16) {
	lo := cpu.fetch()
	hi := cpu.fetch()
	return uint16(lo) | uint16(hi)<<8
}

func (cpu *Cpu) push(value byte) {
	err := cpu.Stack.Push(value)
	if err != nil {
		cpu.warn(err)
	}
}

func (cpu *Cpu) pop() (value byte) {
	value, err := cpu.Stack.Pop()
	if err != nil {
		cpu.warn(err)
	}
	return
}

// Step executes a single instruction.
func (cpu *Cpu) Step() (halt Halt, err error) {
	entropy := cpu.Entropy
	if entropy == nil {
		entropy = defaultEntropy{}
	}
	cpu.Memory.Write(ADDR_RANDOM, entropy.Byte())

	at := cpu.PC
	code := cpu.fetch()
	entry := &dispatch[code]
	if entry.exec == nil {
		cpu.PC = at
		err = ErrOpcode{Opcode: code, Address: at}
		halt = HALT_FAULT
		return
	}

	arg := cpu.resolve(entry.mode)
	if cpu.Verbose {
		log.Printf("$%04x: %s %v", at, entry.mnemonic, entry.mode)
	}

	halt, err = entry.exec(cpu, arg)
	cpu.Ticks++
	if err != nil {
		cpu.PC = at
		err = errors.Join(ErrOpcode{Opcode: code, Address: at}, err)
		halt = HALT_FAULT
		return
	}

	if halt == HALT_NONE && cpu.PC == 0 {
		halt = HALT_PC_ZERO
	}

	return
}

// RunBatch executes up to count instructions, stopping early on a halt.
func (cpu *Cpu) RunBatch(count int) (halt Halt, err error) {
	for range count {
		halt, err = cpu.Step()
		if halt != HALT_NONE {
			return
		}
	}

	return
}

// Run executes instructions until a halt.
func (cpu *Cpu) Run() (halt Halt, err error) {
	for halt == HALT_NONE {
		halt, err = cpu.Step()
	}

	return
}
