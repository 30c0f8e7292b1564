package vm

import (
	"math/rand/v2"
	"time"
)

// RandomSource supplies uniformly distributed bytes to the random-AND
// instruction.
type RandomSource interface {
	Byte() uint8
}

type pcgRandom struct {
	r *rand.Rand
}

func (p *pcgRandom) Byte() uint8 {
	return uint8(p.r.UintN(256))
}

// NewSeededRandom returns a deterministic source; equal seeds give equal
// sequences.
func NewSeededRandom(seed uint64) RandomSource {
	return &pcgRandom{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewRandom returns a source seeded from the clock.
func NewRandom() RandomSource {
	return NewSeededRandom(uint64(time.Now().UnixNano()))
}
