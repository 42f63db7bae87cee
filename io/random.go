package io

import (
	"fmt"
	"iter"
	"maps"
	"math/rand/v2"

	"github.com/ezrec/sim6502/cpu"
	"github.com/ezrec/sim6502/memory"
)

// Random is the entropy source sampled into cpu.ADDR_RANDOM before every
// instruction fetch.
type Random struct {
	seed uint64
	rng  *rand.Rand
}

// NewRandom creates an entropy source. The same seed always yields the same
// byte sequence.
func NewRandom(seed uint64) (r *Random) {
	r = &Random{seed: seed}
	r.Reset()
	return
}

// Byte returns the next random byte.
func (r *Random) Byte() byte {
	return byte(r.rng.UintN(256))
}

// Attach is a no-op; the CPU samples the source directly.
func (r *Random) Attach(mem *memory.Memory) {
}

// Defines returns the address of the random byte.
func (r *Random) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"sysRandom": fmt.Sprintf("$%02x", cpu.ADDR_RANDOM),
	})
}

// Reset restarts the sequence from the seed.
func (r *Random) Reset() {
	r.rng = rand.New(rand.NewPCG(r.seed, r.seed^0x6502))
}
