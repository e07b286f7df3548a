package finance

import "math/rand/v2"

// Rand is the source of randomness for draws and seed data.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniform int in [0, n). It panics if n <= 0.
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand returns a Rand backed by the runtime's global generator.
func DefaultRand() Rand {
	return globalRand{}
}

// NewSeededRand returns a deterministic Rand, for tests and reproducible fixtures.
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SelectRandomWinner picks one candidate uniformly at random. The bool is
// false when there are no candidates.
func SelectRandomWinner[T any](r Rand, candidates []T) (T, bool) {
	var zero T
	if len(candidates) == 0 {
		return zero, false
	}
	if r == nil {
		r = DefaultRand()
	}
	return candidates[r.IntN(len(candidates))], true
}
