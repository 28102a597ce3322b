package vector

import (
	"crypto/rand"
	"encoding/binary"
	"math"
)

// Linear-congruential parameters (Numerical Recipes). The generator is owned
// rather than delegated to math/rand so two instances seeded identically
// produce bit-identical sequences regardless of Go version.
const (
	lcgMultiplier = 1664525
	lcgIncrement  = 1013904223
	lcgModulus    = 1 << 32
)

// Rand is a seedable deterministic random source. It is used wherever
// randomness affects reproducibility: k-means++ seeding and LSH hyperplane
// generation. Not safe for concurrent use; each index owns one.
type Rand struct {
	state uint64
	seed  int64

	// Box-Muller produces deviates in pairs; the spare is kept for the
	// next call.
	spare    float64
	hasSpare bool
}

// NewRand returns a generator seeded with seed. A seed of 0 draws one from
// system entropy, so determinism is opt-in via an explicit non-zero seed.
func NewRand(seed int64) *Rand {
	r := &Rand{}
	if seed == 0 {
		seed = entropySeed()
	}
	r.SetSeed(seed)
	return r
}

// SetSeed reseeds the generator in place and discards any buffered deviate.
func (r *Rand) SetSeed(seed int64) {
	r.seed = seed
	r.state = uint64(seed) % lcgModulus
	r.spare = 0
	r.hasSpare = false
}

// Seed returns the seed the generator was last seeded with. When the
// generator was constructed with seed 0 this is the entropy-drawn value, so
// a run can be reproduced by passing it back in.
func (r *Rand) Seed() int64 {
	return r.seed
}

// Float64 returns a uniform deviate in [0, 1).
func (r *Rand) Float64() float64 {
	r.state = (r.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(r.state) / lcgModulus
}

// IntN returns a uniform integer in [min, max). Returns min when max <= min.
func (r *Rand) IntN(min, max int) int {
	if max <= min {
		return min
	}
	return min + int(r.Float64()*float64(max-min))
}

// NormFloat64 returns a standard normal deviate via the Box-Muller transform.
func (r *Rand) NormFloat64() float64 {
	if r.hasSpare {
		r.hasSpare = false
		return r.spare
	}
	var u, v, s float64
	for {
		u = 2*r.Float64() - 1
		v = 2*r.Float64() - 1
		s = u*u + v*v
		if s > 0 && s < 1 {
			break
		}
	}
	m := math.Sqrt(-2 * math.Log(s) / s)
	r.spare = v * m
	r.hasSpare = true
	return u * m
}

// entropySeed draws a non-zero seed from the system entropy source.
func entropySeed() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// Degraded but functional; only reached when the OS entropy
		// source is unavailable.
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(b[:]) % lcgModulus)
	if seed == 0 {
		seed = 1
	}
	return seed
}
