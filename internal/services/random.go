package services

import "math/rand/v2"

// Rand is the uniform random source used for every placement decision.
// IntN returns a value in [0, n) and is only called with n > 0.
type Rand interface {
	IntN(n int) int
}

type systemRand struct{}

func (systemRand) IntN(n int) int { return rand.IntN(n) }

// SystemRand returns a goroutine-safe source backed by the runtime generator.
func SystemRand() Rand { return systemRand{} }

// SeededRand returns a deterministic source. It is not safe for concurrent use.
func SeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
