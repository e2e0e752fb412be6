package machine

import (
	"math/rand/v2"
)

// RandomSource provides the random bytes used by the CXNN instruction.
type RandomSource interface {
	Byte() uint8
}

// Random is a RandomSource based on a PCG generator.
type Random struct {
	rnd *rand.Rand
}

// NewRandom returns a random source seeded from the runtime generator.
func NewRandom() *Random {
	return NewSeededRandom(rand.Uint64())
}

// NewSeededRandom returns a random source that produces the same sequence
// for the same seed.
func NewSeededRandom(seed uint64) *Random {
	return &Random{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)),
	}
}

// Byte returns the next random byte.
func (r *Random) Byte() uint8 {
	return uint8(r.rnd.UintN(256))
}
