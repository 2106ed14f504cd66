// Package seedrng provides the deterministic random source used by every
// stochastic selection in the engine. A run is reproducible from its seed
// string alone.
package seedrng

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"
	"strings"
)

// pcgStream is the fixed PCG increment paired with the hashed seed.
const pcgStream = 0x9e3779b97f4a7c15

// HashSeed returns the FNV-1a 32-bit hash of s.
func HashSeed(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

// HashSeed64 returns the FNV-1a 64-bit hash of s.
func HashSeed64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// ShortID hashes the parts (joined with "|") into a short base36 identifier
// carrying the given prefix, e.g. "cp-1x9k2ab".
func ShortID(prefix string, parts ...string) string {
	id := strconv.FormatUint(uint64(HashSeed(strings.Join(parts, "|"))), 36)
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}

// Rng is a seeded generator. It is not safe for concurrent use; each
// generation run owns its own instance.
type Rng struct {
	r *rand.Rand
}

// New creates a generator keyed by seed.
func New(seed string) *Rng {
	return &Rng{r: rand.New(rand.NewPCG(HashSeed64(seed), pcgStream))}
}

// Float64 returns the next value in [0, 1).
func (g *Rng) Float64() float64 {
	return g.r.Float64()
}

// Intn returns a value in [0, n). Returns 0 when n <= 0.
func (g *Rng) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return g.r.IntN(n)
}

// Shuffle performs an in-place Fisher–Yates shuffle over n elements.
func (g *Rng) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := g.Intn(i + 1)
		swap(i, j)
	}
}

// WeightedIndex picks an index with probability proportional to its weight.
// Non-positive weights are never chosen. Returns -1 if no weight is positive.
func (g *Rng) WeightedIndex(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	target := g.Float64() * total
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		target -= w
		if target < 0 {
			return i
		}
	}
	// Float rounding can leave target at a tiny positive value.
	return last
}
