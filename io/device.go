// Package io provides the memory mapped devices of the simulator: a 32x32
// pixel display, a keyboard that stores the last keypress at $ff, and a
// seedable entropy source for the random byte at $fe.
package io

import (
	"iter"

	"github.com/ezrec/sim6502/memory"
)

// Device is a peripheral attached to the address space.
type Device interface {
	// Attach connects the device to memory.
	Attach(mem *memory.Memory)
	// Defines returns the assembler symbols the device provides.
	Defines() iter.Seq2[string, string]
	// Reset returns the device to its power on state.
	Reset()
}
