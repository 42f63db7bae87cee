package cpu

import (
	"strings"
)

// Status is the NV-BDIZC processor status register.
type Status byte

const (
	FLAG_CARRY     = Status(0x01) // C
	FLAG_ZERO      = Status(0x02) // Z
	FLAG_INTERRUPT = Status(0x04) // I
	FLAG_DECIMAL   = Status(0x08) // D
	FLAG_BREAK     = Status(0x10) // B
	FLAG_UNUSED    = Status(0x20) // -
	FLAG_OVERFLOW  = Status(0x40) // V
	FLAG_NEGATIVE  = Status(0x80) // N

	STATUS_RESET = FLAG_UNUSED | FLAG_BREAK
)

// Has returns true if all of the flags are set.
func (p Status) Has(flag Status) bool {
	return p&flag == flag
}

// Set sets or clears flags.
func (p *Status) Set(flag Status, on bool) {
	if on {
		*p |= flag
	} else {
		*p &^= flag
	}
}

// setNZ sets negative and zero from a result.
func (p *Status) setNZ(value byte) {
	p.Set(FLAG_NEGATIVE, value&0x80 != 0)
	p.Set(FLAG_ZERO, value == 0)
}

// Bits renders the flags, most significant first.
func (p Status) Bits() string {
	var sb strings.Builder
	for bit := 7; bit >= 0; bit-- {
		if p&(1<<bit) != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// String renders the set flags by letter, with '-' for clear flags.
func (p Status) String() string {
	const names = "NV-BDIZC"
	out := []byte(names)
	for n := range out {
		if p&(0x80>>n) == 0 && out[n] != '-' {
			out[n] = '.'
		}
	}
	return string(out)
}
