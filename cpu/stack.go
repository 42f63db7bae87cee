package cpu

import (
	"github.com/ezrec/sim6502/memory"
)

const (
	STACK_BASE = uint16(0x0100) // Page one.
	STACK_TOP  = byte(0xff)     // Stack pointer after reset.
)

// Stack is the page one hardware stack.
type Stack struct {
	Pointer byte           // Offset of the next free slot from STACK_BASE.
	Memory  *memory.Memory // Backing memory.
}

// Push a value. Returns ErrStackFull when the pointer wraps, after the
// value has been pushed.
func (s *Stack) Push(value byte) (err error) {
	s.Memory.Write(STACK_BASE+uint16(s.Pointer), value)
	if s.Pointer == 0 {
		err = ErrStackFull
	}
	s.Pointer--
	return
}

// Pop a value. Returns ErrStackEmpty when the pointer wraps, along with the
// value that was popped.
func (s *Stack) Pop() (value byte, err error) {
	if s.Pointer == STACK_TOP {
		err = ErrStackEmpty
	}
	s.Pointer++
	value = s.Memory.Read(STACK_BASE + uint16(s.Pointer))
	return
}

// Peek at the most recently pushed value.
func (s *Stack) Peek() (value byte) {
	return s.Memory.Read(STACK_BASE + uint16(s.Pointer+1))
}

// Empty returns true if nothing has been pushed since reset.
func (s *Stack) Empty() bool {
	return s.Pointer == STACK_TOP
}

// Reset the stack pointer.
func (s *Stack) Reset() {
	s.Pointer = STACK_TOP
}
