package utils

// Rand is a deterministic stream of floats in [0,1). Structural randomness
// (bracket shuffles, weighted picks) must come from one of these so the same
// seed always reproduces the same bracket shape.
type Rand func() float64

// NormalizeSeed folds any integer seed into the 32-bit unsigned domain.
func NormalizeSeed(seed int64) uint32 {
	m := seed % (1 << 32)
	if m < 0 {
		m += 1 << 32
	}
	return uint32(m)
}

// NewRand returns a mulberry32 generator. Cheap, passes through the full
// 32-bit state space, and reproducible across platforms.
func NewRand(seed uint32) Rand {
	state := seed
	return func() float64 {
		state += 0x6D2B79F5
		t := state
		t = (t ^ (t >> 15)) * (t | 1)
		t ^= t + (t^(t>>7))*(t|61)
		t ^= t >> 14
		return float64(t) / 4294967296.0
	}
}

// Shuffle returns an unbiased Fisher-Yates permutation of list drawn from
// rng. The input slice is never mutated.
func Shuffle(list []string, rng Rand) []string {
	out := make([]string, len(list))
	copy(out, list)
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// WeightedIndex picks an index with probability proportional to its weight.
// Non-positive weights are treated as zero; if every weight is zero the
// first index is returned.
func WeightedIndex(weights []float64, rng Rand) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0
	}
	target := rng() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		target -= w
		if target < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// NextPow2 returns the smallest power of two >= n (minimum 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
