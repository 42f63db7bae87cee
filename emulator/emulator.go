// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"io"
	"iter"
	"log"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/ezrec/sim6502/cpu"
	"github.com/ezrec/sim6502/internal"
	dev "github.com/ezrec/sim6502/io"
	"github.com/ezrec/sim6502/memory"
)

const (
	BATCH = 97 // Instructions per Tick.
)

// Emulator state. CPU + memory + devices.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program.
	Batch    int          // Instructions per Tick.

	Display  dev.Display  // Screen at $0200-$05ff.
	Keyboard dev.Keyboard // Last key at $ff.
	Random   *dev.Random  // Random byte at $fe.

	halt cpu.Halt
}

// NewEmulator creates a new emulator with a randomly seeded entropy source.
func NewEmulator() (emu *Emulator) {
	mem := &memory.Memory{}
	emu = &Emulator{
		Cpu:     cpu.NewCpu(mem),
		Program: &cpu.Program{},
		Batch:   BATCH,
	}

	for _, device := range emu.Devices() {
		device.Attach(mem)
	}
	emu.Seed(rand.Uint64())

	return
}

// Seed replaces the entropy source with a deterministic one.
func (emu *Emulator) Seed(seed uint64) {
	emu.Random = dev.NewRandom(seed)
	emu.Cpu.Entropy = emu.Random
}

// Devices returns the attached devices.
func (emu *Emulator) Devices() []dev.Device {
	devices := []dev.Device{&emu.Display, &emu.Keyboard}
	if emu.Random != nil {
		devices = append(devices, emu.Random)
	}
	return devices
}

// Defines returns an iterator over all of the device defines.
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	var seqs []iter.Seq2[string, string]
	for _, device := range emu.Devices() {
		seqs = append(seqs, device.Defines())
	}
	return internal.IterSeq2Concat(seqs...)
}

// Reset the CPU and devices. The loaded program is kept.
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	for _, device := range emu.Devices() {
		device.Reset()
	}
	emu.halt = cpu.HALT_NONE
}

// Assemble resets the emulator, then assembles and loads a program. On
// failure the previous program remains current.
func (emu *Emulator) Assemble(input io.Reader) (prog *cpu.Program, err error) {
	emu.Reset()

	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}

	prog, err = asm.Assemble(input)
	if err != nil {
		return
	}

	prog.Load(emu.Cpu.Memory)
	emu.Program = prog

	return
}

// Halt returns the reason execution stopped, or cpu.HALT_NONE.
func (emu *Emulator) Halt() cpu.Halt {
	return emu.halt
}

// LineNo returns the source line number of the current instruction.
func (emu *Emulator) LineNo() int {
	line, ok := emu.Program.LineAt(emu.Cpu.PC)
	if !ok {
		return 0
	}

	return line.LineNo
}

// wrap annotates an error with the current source line.
func (emu *Emulator) wrap(err error) error {
	if err == nil {
		return nil
	}
	return &ErrRuntime{LineNo: emu.LineNo(), Err: err}
}

// Step executes a single instruction.
func (emu *Emulator) Step() (done bool, err error) {
	if emu.halt != cpu.HALT_NONE {
		done = true
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.halt, err = emu.Cpu.Step()
	done = emu.halt != cpu.HALT_NONE
	err = emu.wrap(err)

	return
}

// Tick polls the keyboard, then executes one batch of instructions.
func (emu *Emulator) Tick() (done bool, err error) {
	if emu.halt != cpu.HALT_NONE {
		done = true
		return
	}

	_, err = emu.Keyboard.Poll()
	if err != nil {
		return
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.halt, err = emu.Cpu.RunBatch(max(emu.Batch, 1))
	done = emu.halt != cpu.HALT_NONE
	err = emu.wrap(err)

	if done && emu.Verbose {
		log.Printf("halted: %v", emu.halt)
	}

	return
}

// Run executes until a halt, or until the context is cancelled.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	batch := max(emu.Batch, 1)
	for n := 0; ; n++ {
		err = ctx.Err()
		if err != nil {
			return
		}
		if n%batch == 0 {
			_, err = emu.Keyboard.Poll()
			if err != nil {
				return
			}
		}
		var done bool
		done, err = emu.Step()
		if done || err != nil {
			return
		}
	}
}

// Goto moves the program counter to a label, a `$hhhh` address or a
// `0xhhhh` address. An unresolved target leaves the CPU unchanged.
func (emu *Emulator) Goto(target string) (err error) {
	target = strings.TrimSpace(target)

	addr, ok := emu.Program.Labels[target]
	if !ok {
		hex, found := strings.CutPrefix(target, "$")
		if !found {
			hex, found = strings.CutPrefix(strings.ToLower(target), "0x")
		}
		if found {
			var value uint64
			value, err = strconv.ParseUint(hex, 16, 16)
			ok = err == nil
			addr = uint16(value)
		}
	}
	if !ok {
		err = ErrAddressUnresolved(target)
		return
	}

	emu.Cpu.PC = addr
	emu.halt = cpu.HALT_NONE
	err = nil

	return
}

// Hexdump returns the hex dump of the loaded program image.
func (emu *Emulator) Hexdump() (text string, err error) {
	length := emu.Program.Extent()
	if length == 0 {
		return
	}

	return memory.Format(emu.Cpu.Memory, cpu.ADDR_START, length)
}

// Monitor returns the hex dump of a memory range.
func (emu *Emulator) Monitor(start uint16, length int) (text string, err error) {
	return memory.Format(emu.Cpu.Memory, start, length)
}

// Disassembly decodes the loaded program image.
func (emu *Emulator) Disassembly() iter.Seq[cpu.Instruction] {
	return cpu.Disassemble(emu.Cpu.Memory, cpu.ADDR_START, emu.Program.Extent())
}
