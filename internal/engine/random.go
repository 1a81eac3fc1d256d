package engine

import (
	"math/rand"
	"time"
)

// Rand is the injectable randomness source behind every probabilistic branch
// (category draws, template picks, autopilot decisions). Tests supply scripted
// sequences; production uses math/rand seeded from the wall clock.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a production randomness source. A zero seed picks one from
// the wall clock.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
