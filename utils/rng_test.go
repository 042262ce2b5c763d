package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRandDeterministic(t *testing.T) {
	a := NewRand(12345)
	b := NewRand(12345)
	for i := 0; i < 100; i++ {
		require.Equal(t, a(), b(), "streams with the same seed diverged at draw %d", i)
	}
}

func TestNewRandRange(t *testing.T) {
	rng := NewRand(7)
	for i := 0; i < 1000; i++ {
		v := rng()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestNewRandSeedsDiffer(t *testing.T) {
	a := NewRand(1)
	b := NewRand(2)
	same := true
	for i := 0; i < 10; i++ {
		if a() != b() {
			same = false
		}
	}
	require.False(t, same, "different seeds produced identical streams")
}

func TestNormalizeSeed(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want uint32
	}{
		{"zero", 0, 0},
		{"small positive", 42, 42},
		{"max uint32", 1<<32 - 1, 1<<32 - 1},
		{"wraps past 32 bits", 1<<32 + 5, 5},
		{"negative one", -1, 1<<32 - 1},
		{"large negative", -(1 << 33) - 7, 1<<32 - 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeSeed(tt.in))
		})
	}
}

func TestShuffle(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	orig := append([]string(nil), in...)

	out1 := Shuffle(in, NewRand(99))
	out2 := Shuffle(in, NewRand(99))

	require.Equal(t, orig, in, "input slice was mutated")
	require.Equal(t, out1, out2, "same seed produced different permutations")
	require.ElementsMatch(t, orig, out1, "output is not a permutation of the input")
}

func TestShuffleEmptyAndSingle(t *testing.T) {
	require.Empty(t, Shuffle(nil, NewRand(1)))
	require.Equal(t, []string{"solo"}, Shuffle([]string{"solo"}, NewRand(1)))
}

func TestNextPow2(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {4, 4}, {5, 8},
		{7, 8}, {8, 8}, {9, 16}, {16, 16}, {17, 32}, {100, 128},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, NextPow2(tt.in), "NextPow2(%d)", tt.in)
	}
}

func TestWeightedIndex(t *testing.T) {
	rng := NewRand(3)

	require.Equal(t, 0, WeightedIndex(nil, rng))
	require.Equal(t, 0, WeightedIndex([]float64{0, 0, 0}, rng))
	require.Equal(t, 0, WeightedIndex([]float64{5}, rng))

	// A zero weight can never be drawn.
	weights := []float64{0, 1, 0, 2}
	for i := 0; i < 200; i++ {
		idx := WeightedIndex(weights, rng)
		require.Contains(t, []int{1, 3}, idx)
	}
}

func TestWeightedIndexDeterministic(t *testing.T) {
	weights := []float64{1, 2, 3, 4}
	a := NewRand(555)
	b := NewRand(555)
	for i := 0; i < 50; i++ {
		require.Equal(t, WeightedIndex(weights, a), WeightedIndex(weights, b))
	}
}
