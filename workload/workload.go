// Package workload generates the pseudo-random input vectors for a
// bandwidth probe. Values are uniform in [0, 1). A Generator with the same
// seed always produces the same sequence.
package workload

import (
	mrand "math/rand"
	"time"
)

// Config controls workload generation parameters.
type Config struct {
	// Seed for the generator. Zero means "use the current time".
	Seed int64
}

// Generator produces seeded fills.
type Generator struct {
	seed int64
	rng  *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	seed := ResolveSeed(cfg.Seed)

	return &Generator{
		seed: seed,
		rng:  mrand.New(mrand.NewSource(seed)),
	}
}

// ResolveSeed returns seed, or a time-derived seed when seed is zero.
func ResolveSeed(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}

	return seed
}

// Seed returns the effective seed of the generator.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Fill overwrites dst with values in [0, 1).
func (g *Generator) Fill(dst []float64) {
	for i := range dst {
		dst[i] = g.rng.Float64()
	}
}

// FillPair fills a and then b from the same stream, so the two arrays hold
// independent values.
func (g *Generator) FillPair(a, b []float64) {
	g.Fill(a)
	g.Fill(b)
}

// Cycle fills dst with a random cyclic permutation of [0, len(dst)):
// following dst[i] from any index visits every index exactly once before
// returning to the start.
func (g *Generator) Cycle(dst []int64) {
	for i := range dst {
		dst[i] = int64(i)
	}

	// Sattolo's variant of Fisher-Yates yields a single cycle.
	for i := len(dst) - 1; i > 0; i-- {
		j := g.rng.Intn(i)
		dst[i], dst[j] = dst[j], dst[i]
	}
}
