package io

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"maps"

	"github.com/ezrec/sim6502/cpu"
	"github.com/ezrec/sim6502/memory"
)

// Keyboard stores keypresses at cpu.ADDR_LASTKEY. Keys come from Press, or
// one byte at a time from Input each time the keyboard is polled.
type Keyboard struct {
	Input io.Reader // Optional key source.

	mem *memory.Memory
	eof bool
}

// Attach the keyboard to memory.
func (kb *Keyboard) Attach(mem *memory.Memory) {
	kb.mem = mem
}

// Defines returns the address of the last key.
func (kb *Keyboard) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"sysLastKey": fmt.Sprintf("$%02x", cpu.ADDR_LASTKEY),
	})
}

// Reset allows a drained Input to be polled again.
func (kb *Keyboard) Reset() {
	kb.eof = false
}

// Press stores a key.
func (kb *Keyboard) Press(key byte) {
	kb.mem.Write(cpu.ADDR_LASTKEY, key)
}

// Poll reads one key from Input, if any.
func (kb *Keyboard) Poll() (ok bool, err error) {
	if kb.Input == nil || kb.eof {
		return
	}

	var one [1]byte
	n, err := kb.Input.Read(one[:])
	if errors.Is(err, io.EOF) {
		kb.eof = true
		err = nil
	}
	if err != nil {
		err = errors.Join(ErrKeyboardInput, err)
		return
	}
	if n == 0 {
		return
	}

	kb.Press(one[0])
	ok = true
	return
}
