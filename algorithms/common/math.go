package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic numeric helpers shared by the dissonance, tuning and synthesis algorithms

// Epsilon is the tolerance used when comparing octave-reduced pitch positions
const Epsilon = 1e-8

// Sum returns the sum of a slice using gonum
func Sum(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Sum(data)
}

// Max returns the largest element of a slice, or 0 for an empty slice
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Max(data)
}

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.StdDev(data, nil)
}

// OctaveReduce maps a frequency ratio to its pitch class: log2(x) wrapped into [0, 1)
func OctaveReduce(x float64) float64 {
	r := math.Mod(math.Log2(x), 1.0)
	return math.Mod(r+1.0, 1.0)
}

// IsFinite reports whether x is neither NaN nor infinite
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// FindValleys finds interior local minima in data
// Plateaus report their first index
func FindValleys(data []float64) []int {
	if len(data) < 3 {
		return []int{}
	}

	valleys := []int{}
	for i := 1; i < len(data)-1; i++ {
		if data[i] >= data[i-1] {
			continue
		}

		// Walk across a flat bottom before deciding
		j := i
		for j < len(data)-1 && data[j+1] == data[i] {
			j++
		}
		if j < len(data)-1 && data[j+1] > data[i] {
			valleys = append(valleys, i)
		}
		i = j
	}

	return valleys
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampInt constrains an integer to a range
func ClampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
