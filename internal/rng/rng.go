// Package rng provides the seeded random source shared by every simulation
// component, plus bounded sampling helpers.
//
// Every helper draws a fixed number of values and returns. Nothing here
// loops until a random condition holds, so a seeded run always terminates
// and replays identically.
package rng

import (
	"math"
	"math/rand/v2"
	"time"
)

// Source is the randomness consumed by the simulation.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	// IntN returns a value in [0, n). n must be positive.
	IntN(n int) int

	// Float64 returns a value in [0, 1).
	Float64() float64
}

// New returns a PCG-backed source seeded from seed.
func New(seed int64) Source {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// ForSession returns the source of one simulation session resuming on day.
// Resuming the same game on the same day replays the same draws.
func ForSession(seed int64, day time.Time) Source {
	return New(seed ^ day.Unix())
}

// Chance reports true with probability p.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Between returns a uniform integer in [lo, hi].
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Pick returns a uniformly chosen element. ok is false for an empty slice.
func Pick[T any](src Source, items []T) (v T, ok bool) {
	if len(items) == 0 {
		return v, false
	}
	return items[src.IntN(len(items))], true
}

// Weighted returns an index chosen with probability proportional to its
// weight. Non-positive weights are never chosen. Returns -1 when no weight
// is positive.
func Weighted(src Source, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	r := src.IntN(total)
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if r < w {
			return i
		}
		r -= w
	}
	return -1
}

// WeightedFloat is Weighted for real-valued weights.
func WeightedFloat(src Source, weights []float64) int {
	total := 0.0
	last := -1
	for i, w := range weights {
		if w > 0 {
			total += w
			last = i
		}
	}
	if last < 0 {
		return -1
	}
	u := src.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if u < w {
			return i
		}
		u -= w
	}
	// Rounding can leave u just above the final weight.
	return last
}

// FrontBiased picks an index in [0, n) where index i has weight p(1-p)^i.
//
// This is the distribution of scanning a pool front to back, stopping at
// the first element whose independent p-coin succeeds and rescanning after
// an empty pass, but it costs one draw. p <= 0 degenerates to uniform and
// p >= 1 always returns 0. Returns -1 for an empty pool.
func FrontBiased(src Source, n int, p float64) int {
	if n <= 0 {
		return -1
	}
	if p >= 1 {
		return 0
	}
	if p <= 0 {
		return src.IntN(n)
	}
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = p * math.Pow(1-p, float64(i))
	}
	return WeightedFloat(src, weights)
}
