package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/sim6502/memory"
)

type fixedEntropy byte

func (fe fixedEntropy) Byte() byte {
	return byte(fe)
}

func newTestCpu(t *testing.T, program ...string) (cpu *Cpu, mem *memory.Memory, warnings *[]error) {
	mem = &memory.Memory{}
	cpu = NewCpu(mem)
	cpu.Entropy = fixedEntropy(0x42)
	warnings = &[]error{}
	cpu.Warn = func(err error) {
		*warnings = append(*warnings, err)
	}
	if len(program) > 0 {
		prog := assemble(t, program...)
		prog.Load(mem)
	}
	return
}

func TestCpuReset(t *testing.T) {
	assert := assert.New(t)

	mem := &memory.Memory{}
	mem.Write(0x0010, 0xaa)
	mem.Write(0x0200, 0xbb)
	mem.Write(0x0600, 0xcc)

	cpu := NewCpu(mem)
	assert.Equal("A=$00 X=$00 Y=$00\nSP=$ff PC=$0600\nNV-BDIZC\n00110000", cpu.String())
	assert.Equal(byte(0), mem.Read(0x0010))
	assert.Equal(byte(0), mem.Read(0x0200))
	assert.Equal(byte(0xcc), mem.Read(0x0600))

	cpu.A, cpu.X, cpu.PC, cpu.P = 1, 2, 0x1234, FLAG_CARRY
	cpu.Reset()
	assert.Equal(byte(0), cpu.A)
	assert.Equal(byte(0), cpu.X)
	assert.Equal(ADDR_START, cpu.PC)
	assert.Equal(STATUS_RESET, cpu.P)
	assert.Equal(STACK_TOP, cpu.Stack.Pointer)
}

func TestCpuEndToEnd(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t,
		"LDA #$01",
		"STA $0200",
		"BRK",
	)

	halt, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(HALT_BRK, halt)
	assert.Equal(byte(0x01), mem.Read(0x0200))
	assert.Equal(uint16(0x0606), cpu.PC)
	assert.Equal(byte(0x42), mem.Read(ADDR_RANDOM))
	assert.Equal(3, cpu.Ticks)
}

func TestCpuFlags(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		name    string
		program []string
		a       byte
		p       Status
	}{
		{"lda_zero", []string{"LDA #$00"}, 0x00, 0x32},
		{"lda_neg", []string{"LDA #$80"}, 0x80, 0xb0},
		{"adc_overflow", []string{"CLC", "LDA #$50", "ADC #$50"}, 0xa0, 0xf0},
		{"adc_carry", []string{"SEC", "LDA #$ff", "ADC #$01"}, 0x01, 0x31},
		{"adc_bcd", []string{"SED", "CLC", "LDA #$09", "ADC #$01"}, 0x10, 0x38},
		{"adc_bcd_carry", []string{"SED", "CLC", "LDA #$99", "ADC #$01"}, 0x00, 0x3b},
		{"sbc_bcd", []string{"SED", "SEC", "LDA #$10", "SBC #$01"}, 0x09, 0x39},
		{"sbc_borrow", []string{"SEC", "LDA #$00", "SBC #$01"}, 0xff, 0xb0},
		{"cmp_equal", []string{"LDA #$10", "CMP #$10"}, 0x10, 0x33},
		{"cmp_less", []string{"LDA #$10", "CMP #$20"}, 0x10, 0xb0},
		{"bit", []string{"LDA #$c0", "STA $10", "LDA #$01", "BIT $10"}, 0x01, 0xf2},
		{"asl", []string{"LDA #$81", "ASL A"}, 0x02, 0x31},
		{"ror", []string{"SEC", "LDA #$01", "ROR A"}, 0x80, 0xb1},
		{"lsr", []string{"LDA #$01", "LSR"}, 0x00, 0x33},
		{"rol_mem", []string{"LDA #$80", "STA $10", "ROL $10", "LDA $10"}, 0x00, 0x33},
		{"inc_mem", []string{"LDA #$ff", "STA $10", "INC $10", "LDA $10"}, 0x00, 0x32},
		{"dex", []string{"LDX #$00", "DEX", "TXA"}, 0xff, 0xb0},
		{"eor", []string{"LDA #$ff", "EOR #$0f"}, 0xf0, 0xb0},
		{"php", []string{"SEC", "PHP", "PLA"}, 0x31, 0x31},
		{"plp", []string{"LDA #$c3", "PHA", "PLP"}, 0xc3, 0xf3},
	}

	for _, entry := range table {
		program := append(entry.program, "BRK")
		cpu, _, _ := newTestCpu(t, program...)
		halt, err := cpu.Run()
		assert.NoError(err, entry.name)
		assert.Equal(HALT_BRK, halt, entry.name)
		assert.Equal(entry.a, cpu.A, entry.name)
		assert.Equal(entry.p, cpu.P, "%v: %v", entry.name, cpu.P.Bits())
	}
}

func TestCpuTransferStack(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(t,
		"LDX #$00",
		"TXS",
		"LDX #$80",
		"TSX",
		"BRK",
	)

	_, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(byte(0x00), cpu.Stack.Pointer)
	assert.Equal(byte(0x00), cpu.X)
	assert.True(cpu.P.Has(FLAG_ZERO))
}

func TestCpuSubroutine(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, warnings := newTestCpu(t,
		"  JSR sub",
		"  LDY #$02",
		"  BRK",
		"sub:",
		"  LDX #$01",
		"  RTS",
	)

	halt, err := cpu.RunBatch(2)
	assert.NoError(err)
	assert.Equal(HALT_NONE, halt)
	assert.Equal(byte(0xfd), cpu.Stack.Pointer)
	assert.Equal(byte(0x06), mem.Read(0x01ff))
	assert.Equal(byte(0x02), mem.Read(0x01fe))

	halt, err = cpu.Run()
	assert.NoError(err)
	assert.Equal(HALT_BRK, halt)
	assert.Equal(byte(0x01), cpu.X)
	assert.Equal(byte(0x02), cpu.Y)
	assert.Equal(STACK_TOP, cpu.Stack.Pointer)
	assert.Empty(*warnings)
}

func TestCpuStackWrap(t *testing.T) {
	assert := assert.New(t)

	cpu, _, warnings := newTestCpu(t,
		"  LDX #$00",
		"loop:",
		"  PHA",
		"  INX",
		"  BNE loop",
		"  BRK",
	)

	halt, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(HALT_BRK, halt)
	assert.Equal(STACK_TOP, cpu.Stack.Pointer)
	if assert.Equal(1, len(*warnings)) {
		assert.ErrorIs((*warnings)[0], ErrStackFull)
	}

	cpu, _, warnings = newTestCpu(t, "PLA", "BRK")
	_, err = cpu.Run()
	assert.NoError(err)
	if assert.Equal(1, len(*warnings)) {
		assert.ErrorIs((*warnings)[0], ErrStackEmpty)
	}
}

func TestCpuFaults(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(t, "NOP", "DCB $02")
	halt, err := cpu.Run()
	assert.Equal(HALT_FAULT, halt)
	assert.ErrorIs(err, ErrOpcode{})
	var eo ErrOpcode
	if assert.True(errors.As(err, &eo)) {
		assert.Equal(byte(0x02), eo.Opcode)
		assert.Equal(uint16(0x0601), eo.Address)
	}
	assert.Equal(uint16(0x0601), cpu.PC)

	for _, line := range []string{"CLI", "SEI"} {
		cpu, _, _ = newTestCpu(t, line)
		halt, err = cpu.Step()
		assert.Equal(HALT_FAULT, halt, line)
		assert.ErrorIs(err, ErrInterrupt, line)
		assert.ErrorIs(err, ErrOpcode{}, line)
	}

	// Faults are recoverable by a reset.
	cpu.Reset()
	assert.Equal(ADDR_START, cpu.PC)
}

func TestCpuPcZero(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(t, "JMP $0000")
	halt, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(HALT_PC_ZERO, halt)
	assert.Equal(uint16(0), cpu.PC)
}

func TestCpuAddressing(t *testing.T) {
	assert := assert.New(t)

	// Zero page indexing wraps within page zero.
	cpu, mem, _ := newTestCpu(t, "LDX #$01", "LDA $ff,X")
	mem.Write(0x0000, 0x77)
	mem.Write(0x0100, 0x88)
	_, err := cpu.RunBatch(2)
	assert.NoError(err)
	assert.Equal(byte(0x77), cpu.A)

	// Indirect pointers wrap within page zero.
	cpu, mem, _ = newTestCpu(t, "LDY #$05", "LDA ($ff),Y")
	mem.Write(0x00ff, 0x00)
	mem.Write(0x0000, 0x20)
	mem.Write(0x2005, 0x99)
	_, err = cpu.RunBatch(2)
	assert.NoError(err)
	assert.Equal(byte(0x99), cpu.A)

	cpu, mem, _ = newTestCpu(t, "LDX #$04", "LDA ($10,X)")
	mem.Write(0x0014, 0x34)
	mem.Write(0x0015, 0x12)
	mem.Write(0x1234, 0x66)
	_, err = cpu.RunBatch(2)
	assert.NoError(err)
	assert.Equal(byte(0x66), cpu.A)

	// Indirect jumps do not carry into the high byte of the pointer.
	cpu, mem, _ = newTestCpu(t, "JMP ($12ff)")
	mem.Write(0x12ff, 0x34)
	mem.Write(0x1200, 0x56)
	mem.Write(0x1300, 0x99)
	_, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(uint16(0x5634), cpu.PC)

	// Absolute indexing wraps at 16 bits.
	cpu, mem, _ = newTestCpu(t, "LDY #$02", "LDA $ffff,Y")
	mem.Write(0x0001, 0x55)
	_, err = cpu.RunBatch(2)
	assert.NoError(err)
	assert.Equal(byte(0x55), cpu.A)
}

func TestCpuRunBatch(t *testing.T) {
	assert := assert.New(t)

	cpu, _, _ := newTestCpu(t, "loop: JMP loop")
	halt, err := cpu.RunBatch(97)
	assert.NoError(err)
	assert.Equal(HALT_NONE, halt)
	assert.Equal(97, cpu.Ticks)
	assert.Equal(ADDR_START, cpu.PC)
}

func TestCpuDefaultEntropy(t *testing.T) {
	assert := assert.New(t)

	mem := &memory.Memory{}
	cpu := NewCpu(mem)
	mem.Write(ADDR_START, 0xea)
	halt, err := cpu.Step()
	assert.NoError(err)
	assert.Equal(HALT_NONE, halt)
}

func TestStatus(t *testing.T) {
	assert := assert.New(t)

	p := STATUS_RESET
	assert.Equal("00110000", p.Bits())
	assert.Equal("..-B....", p.String())

	p.Set(FLAG_NEGATIVE|FLAG_CARRY, true)
	assert.True(p.Has(FLAG_CARRY))
	assert.Equal("N.-B...C", p.String())

	p.Set(FLAG_CARRY, false)
	assert.False(p.Has(FLAG_CARRY))
	assert.Equal(Status(0xb0), p)
}

func FuzzCpu(f *testing.F) {
	for code := range 256 {
		f.Add(byte(code), uint16(0x1234), byte(0), byte(0), byte(0), byte(STATUS_RESET))
	}

	f.Fuzz(func(t *testing.T, code byte, operand uint16, a, x, y, p byte) {
		assert := assert.New(t)

		mem := &memory.Memory{}
		cpu := NewCpu(mem)
		cpu.Entropy = fixedEntropy(0)
		cpu.Warn = func(err error) {}
		mem.Load(ADDR_START, []byte{code, byte(operand), byte(operand >> 8)})
		cpu.A, cpu.X, cpu.Y, cpu.P = a, x, y, Status(p)

		halt, err := cpu.Step()

		mnemonic, mode, ok := Decode(code)
		switch {
		case !ok:
			assert.Equal(HALT_FAULT, halt)
			assert.ErrorIs(err, ErrOpcode{})
			return
		case mnemonic == "CLI" || mnemonic == "SEI":
			assert.Equal(HALT_FAULT, halt)
			assert.ErrorIs(err, ErrInterrupt)
			return
		}

		assert.NoError(err, mnemonic)
		switch {
		case mode == MODE_BRANCH:
		case mnemonic == "JMP", mnemonic == "JSR", mnemonic == "RTS", mnemonic == "RTI":
		default:
			assert.Equal(ADDR_START+uint16(mode.Length()), cpu.PC, "%v %v", mnemonic, mode)
		}
	})
}
