// Package simulation generates stochastic price paths and prices
// options and strategies over them.
package simulation

import (
	"math"
	"math/rand"
)

// Walker supplies the random draws a walk consumes. Implementations
// must be deterministic given a seed.
type Walker interface {
	// Normal returns a draw from the standard normal distribution.
	Normal() float64
	// Uniform returns a draw from [0, 1).
	Uniform() float64
	// Poisson returns a draw from a Poisson distribution with mean
	// lambda.
	Poisson(lambda float64) int
}

// SeededWalker is the default Walker: a seeded PRNG stream.
type SeededWalker struct {
	rng *rand.Rand
}

// NewSeededWalker creates a walker over a fixed seed.
func NewSeededWalker(seed int64) *SeededWalker {
	return &SeededWalker{rng: rand.New(rand.NewSource(seed))}
}

func (w *SeededWalker) Normal() float64 {
	return w.rng.NormFloat64()
}

func (w *SeededWalker) Uniform() float64 {
	return w.rng.Float64()
}

// Poisson draws by Knuth's method; for large means it falls back to a
// normal approximation to keep the draw O(1).
func (w *SeededWalker) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	if lambda > 30 {
		n := int(math.Round(lambda + math.Sqrt(lambda)*w.Normal()))
		if n < 0 {
			return 0
		}
		return n
	}
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= w.Uniform()
		if p <= limit {
			return k
		}
		k++
	}
}

// splitMix64 is the SplitMix64 mixing function. Per-path seeds are
// derived from the master seed through it so parallel paths stay
// reproducible irrespective of scheduling.
func splitMix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// PathSeed derives the deterministic seed of path index from a master
// seed.
func PathSeed(master int64, index int) int64 {
	return int64(splitMix64(uint64(master) + uint64(index)))
}
