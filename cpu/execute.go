package cpu

// operand is a resolved instruction argument.
type operand struct {
	mode    AddressingMode
	address uint16 // Effective address, or branch target.
}

// operation executes one mnemonic against a resolved operand.
type operation func(cpu *Cpu, arg operand) (halt Halt, err error)

type dispatchEntry struct {
	mnemonic string
	mode     AddressingMode
	exec     operation
}

// dispatch is indexed by opcode byte. Unused opcodes have a nil exec.
var dispatch [256]dispatchEntry

func init() {
	for n := range Opcodes {
		op := &Opcodes[n]
		exec, ok := operations[op.Mnemonic]
		if !ok {
			panic("no operation for " + op.Mnemonic)
		}
		for mode := range AddressingMode(MODE_COUNT) {
			code, ok := op.Code(mode)
			if !ok {
				continue
			}
			dispatch[code] = dispatchEntry{mnemonic: op.Mnemonic, mode: mode, exec: exec}
		}
	}
}

// resolve fetches the operand bytes of an addressing mode.
func (cpu *Cpu) resolve(mode AddressingMode) (arg operand) {
	arg.mode = mode
	mem := cpu.Memory

	switch mode {
	case MODE_IMMEDIATE:
		arg.address = cpu.PC
		cpu.PC++
	case MODE_ZERO_PAGE:
		arg.address = uint16(cpu.fetch())
	case MODE_ZERO_PAGE_X:
		arg.address = uint16(cpu.fetch() + cpu.X)
	case MODE_ZERO_PAGE_Y:
		arg.address = uint16(cpu.fetch() + cpu.Y)
	case MODE_ABSOLUTE:
		arg.address = cpu.fetchWord()
	case MODE_ABSOLUTE_X:
		arg.address = cpu.fetchWord() + uint16(cpu.X)
	case MODE_ABSOLUTE_Y:
		arg.address = cpu.fetchWord() + uint16(cpu.Y)
	case MODE_INDIRECT:
		// The high byte never crosses a page.
		ptr := cpu.fetchWord()
		lo := mem.Read(ptr)
		hi := mem.Read(ptr&0xff00 | uint16(byte(ptr)+1))
		arg.address = uint16(lo) | uint16(hi)<<8
	case MODE_INDIRECT_X:
		zp := cpu.fetch() + cpu.X
		arg.address = uint16(mem.Read(uint16(zp))) | uint16(mem.Read(uint16(zp+1)))<<8
	case MODE_INDIRECT_Y:
		zp := cpu.fetch()
		base := uint16(mem.Read(uint16(zp))) | uint16(mem.Read(uint16(zp+1)))<<8
		arg.address = base + uint16(cpu.Y)
	case MODE_BRANCH:
		offset := int8(cpu.fetch())
		arg.address = cpu.PC + uint16(offset)
	}

	return
}

// load reads an operand. The single mode operand is the accumulator.
func (cpu *Cpu) load(arg operand) byte {
	if arg.mode == MODE_SINGLE {
		return cpu.A
	}
	return cpu.Memory.Read(arg.address)
}

// store writes an operand. The single mode operand is the accumulator.
func (cpu *Cpu) store(arg operand, value byte) {
	if arg.mode == MODE_SINGLE {
		cpu.A = value
		return
	}
	cpu.Memory.Write(arg.address, value)
}

func (cpu *Cpu) carry() int {
	if cpu.P.Has(FLAG_CARRY) {
		return 1
	}
	return 0
}

// adc adds with carry, in binary or packed decimal.
func (cpu *Cpu) adc(value byte) {
	a, v, c := int(cpu.A), int(value), cpu.carry()
	p := &cpu.P

	p.Set(FLAG_OVERFLOW, (a^v)&0x80 == 0)

	var tmp int
	if p.Has(FLAG_DECIMAL) {
		tmp = (a & 0xf) + (v & 0xf) + c
		if tmp >= 10 {
			tmp = 0x10 | ((tmp + 6) & 0xf)
		}
		tmp += (a & 0xf0) + (v & 0xf0)
		if tmp >= 160 {
			p.Set(FLAG_CARRY, true)
			if p.Has(FLAG_OVERFLOW) && tmp >= 0x180 {
				p.Set(FLAG_OVERFLOW, false)
			}
			tmp += 0x60
		} else {
			p.Set(FLAG_CARRY, false)
			if p.Has(FLAG_OVERFLOW) && tmp < 0x80 {
				p.Set(FLAG_OVERFLOW, false)
			}
		}
	} else {
		tmp = a + v + c
		p.Set(FLAG_CARRY, tmp >= 0x100)
		if p.Has(FLAG_OVERFLOW) && ((tmp >= 0x100 && tmp >= 0x180) || (tmp < 0x100 && tmp < 0x80)) {
			p.Set(FLAG_OVERFLOW, false)
		}
	}

	cpu.A = byte(tmp)
	p.setNZ(cpu.A)
}

// sbc subtracts with borrow, in binary or packed decimal.
func (cpu *Cpu) sbc(value byte) {
	a, v, c := int(cpu.A), int(value), cpu.carry()
	p := &cpu.P

	p.Set(FLAG_OVERFLOW, (a^v)&0x80 != 0)

	var w int
	if p.Has(FLAG_DECIMAL) {
		tmp := 0xf + (a & 0xf) - (v & 0xf) + c
		if tmp < 0x10 {
			w = 0
			tmp -= 6
		} else {
			w = 0x10
			tmp -= 0x10
		}
		w += 0xf0 + (a & 0xf0) - (v & 0xf0)
		if w < 0x100 {
			p.Set(FLAG_CARRY, false)
			if p.Has(FLAG_OVERFLOW) && w < 0x80 {
				p.Set(FLAG_OVERFLOW, false)
			}
			w -= 0x60
		} else {
			p.Set(FLAG_CARRY, true)
			if p.Has(FLAG_OVERFLOW) && w >= 0x180 {
				p.Set(FLAG_OVERFLOW, false)
			}
		}
		w += tmp
	} else {
		w = 0xff + a - v + c
		p.Set(FLAG_CARRY, w >= 0x100)
		if p.Has(FLAG_OVERFLOW) && ((w < 0x100 && w < 0x80) || (w >= 0x100 && w >= 0x180)) {
			p.Set(FLAG_OVERFLOW, false)
		}
	}

	cpu.A = byte(w)
	p.setNZ(cpu.A)
}

// compare sets carry when reg >= value, and N Z from the difference.
func (cpu *Cpu) compare(reg byte, value byte) {
	cpu.P.Set(FLAG_CARRY, reg >= value)
	cpu.P.setNZ(reg - value)
}

func branch(flag Status, set bool) operation {
	return func(cpu *Cpu, arg operand) (halt Halt, err error) {
		if cpu.P.Has(flag) == set {
			cpu.PC = arg.address
		}
		return
	}
}

func setFlag(flag Status, set bool) operation {
	return func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.P.Set(flag, set)
		return
	}
}

func interrupt(cpu *Cpu, arg operand) (halt Halt, err error) {
	err = ErrInterrupt
	return
}

// register selects a CPU register for the generic load, store and
// transfer operations.
type register func(cpu *Cpu) *byte

func regA(cpu *Cpu) *byte  { return &cpu.A }
func regX(cpu *Cpu) *byte  { return &cpu.X }
func regY(cpu *Cpu) *byte  { return &cpu.Y }
func regSP(cpu *Cpu) *byte { return &cpu.Stack.Pointer }

func load(reg register) operation {
	return func(cpu *Cpu, arg operand) (halt Halt, err error) {
		value := cpu.load(arg)
		*reg(cpu) = value
		cpu.P.setNZ(value)
		return
	}
}

func store(reg register) operation {
	return func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.store(arg, *reg(cpu))
		return
	}
}

// transfer copies one register to another. Transfers to the stack pointer
// leave the flags alone.
func transfer(from, to register) operation {
	return func(cpu *Cpu, arg operand) (halt Halt, err error) {
		dst := to(cpu)
		*dst = *from(cpu)
		if dst != &cpu.Stack.Pointer {
			cpu.P.setNZ(*dst)
		}
		return
	}
}

func compare(reg register) operation {
	return func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.compare(*reg(cpu), cpu.load(arg))
		return
	}
}

// modify applies a read-modify-write to the operand.
func modify(fn func(cpu *Cpu, value byte) byte) operation {
	return func(cpu *Cpu, arg operand) (halt Halt, err error) {
		value := fn(cpu, cpu.load(arg))
		cpu.P.setNZ(value)
		cpu.store(arg, value)
		return
	}
}

// step adds delta to a register.
func step(reg register, delta byte) operation {
	return func(cpu *Cpu, arg operand) (halt Halt, err error) {
		r := reg(cpu)
		*r += delta
		cpu.P.setNZ(*r)
		return
	}
}

// logic applies a bitwise operation to the accumulator.
func logic(fn func(a, value byte) byte) operation {
	return func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.A = fn(cpu.A, cpu.load(arg))
		cpu.P.setNZ(cpu.A)
		return
	}
}

var operations = map[string]operation{
	"ADC": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.adc(cpu.load(arg))
		return
	},
	"SBC": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.sbc(cpu.load(arg))
		return
	},
	"AND": logic(func(a, v byte) byte { return a & v }),
	"ORA": logic(func(a, v byte) byte { return a | v }),
	"EOR": logic(func(a, v byte) byte { return a ^ v }),
	"BIT": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		value := cpu.load(arg)
		cpu.P.Set(FLAG_NEGATIVE, value&0x80 != 0)
		cpu.P.Set(FLAG_OVERFLOW, value&0x40 != 0)
		cpu.P.Set(FLAG_ZERO, cpu.A&value == 0)
		return
	},

	"ASL": modify(func(cpu *Cpu, v byte) byte {
		cpu.P.Set(FLAG_CARRY, v&0x80 != 0)
		return v << 1
	}),
	"LSR": modify(func(cpu *Cpu, v byte) byte {
		cpu.P.Set(FLAG_CARRY, v&0x01 != 0)
		return v >> 1
	}),
	"ROL": modify(func(cpu *Cpu, v byte) byte {
		c := byte(cpu.carry())
		cpu.P.Set(FLAG_CARRY, v&0x80 != 0)
		return v<<1 | c
	}),
	"ROR": modify(func(cpu *Cpu, v byte) byte {
		c := byte(cpu.carry())
		cpu.P.Set(FLAG_CARRY, v&0x01 != 0)
		return v>>1 | c<<7
	}),
	"INC": modify(func(cpu *Cpu, v byte) byte { return v + 1 }),
	"DEC": modify(func(cpu *Cpu, v byte) byte { return v - 1 }),

	"BPL": branch(FLAG_NEGATIVE, false),
	"BMI": branch(FLAG_NEGATIVE, true),
	"BVC": branch(FLAG_OVERFLOW, false),
	"BVS": branch(FLAG_OVERFLOW, true),
	"BCC": branch(FLAG_CARRY, false),
	"BCS": branch(FLAG_CARRY, true),
	"BNE": branch(FLAG_ZERO, false),
	"BEQ": branch(FLAG_ZERO, true),

	"CLC": setFlag(FLAG_CARRY, false),
	"SEC": setFlag(FLAG_CARRY, true),
	"CLV": setFlag(FLAG_OVERFLOW, false),
	"CLD": setFlag(FLAG_DECIMAL, false),
	"SED": setFlag(FLAG_DECIMAL, true),
	"CLI": interrupt,
	"SEI": interrupt,

	"CMP": compare(regA),
	"CPX": compare(regX),
	"CPY": compare(regY),

	"LDA": load(regA),
	"LDX": load(regX),
	"LDY": load(regY),
	"STA": store(regA),
	"STX": store(regX),
	"STY": store(regY),

	"TAX": transfer(regA, regX),
	"TXA": transfer(regX, regA),
	"TAY": transfer(regA, regY),
	"TYA": transfer(regY, regA),
	"TSX": transfer(regSP, regX),
	"TXS": transfer(regX, regSP),

	"INX": step(regX, 1),
	"DEX": step(regX, 0xff),
	"INY": step(regY, 1),
	"DEY": step(regY, 0xff),

	"PHA": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.push(cpu.A)
		return
	},
	"PLA": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.A = cpu.pop()
		cpu.P.setNZ(cpu.A)
		return
	},
	"PHP": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.push(byte(cpu.P | STATUS_RESET))
		return
	},
	"PLP": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.P = Status(cpu.pop()) | STATUS_RESET
		return
	},

	"JMP": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.PC = arg.address
		return
	},
	"JSR": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		ret := cpu.PC - 1
		cpu.push(byte(ret >> 8))
		cpu.push(byte(ret))
		cpu.PC = arg.address
		return
	},
	"RTS": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		lo := cpu.pop()
		hi := cpu.pop()
		cpu.PC = (uint16(lo) | uint16(hi)<<8) + 1
		return
	},
	"RTI": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		cpu.P = Status(cpu.pop()) | STATUS_RESET
		lo := cpu.pop()
		hi := cpu.pop()
		cpu.PC = uint16(lo) | uint16(hi)<<8
		return
	},

	"BRK": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		halt = HALT_BRK
		return
	},
	"NOP": func(cpu *Cpu, arg operand) (halt Halt, err error) {
		return
	},
}
