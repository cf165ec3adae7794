// Package random provides the RandomSource implementations used by the sampler and selector.
package random

import (
	"math/rand/v2"

	"github.com/lukejcollins/litroulette/internal/core/domain/ports"
)

var (
	_ ports.RandomSource = Process{}
	_ ports.RandomSource = (*Seeded)(nil)
)

// Process draws from the runtime's goroutine-safe generator, seeded per process.
type Process struct{}

func (Process) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}

// Seeded is a deterministic source. It is not safe for concurrent use.
type Seeded struct {
	r *rand.Rand
}

func NewSeeded(seed uint64) *Seeded {
	return &Seeded{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Seeded) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.IntN(n)
}
