package sessionprobe

import (
	"math/rand"
	"strconv"
)

// Round is one scripted selection cycle: two lassos and a time selector to
// view the result under.
type Round struct {
	First   []int
	Second  []int
	TimeSel string
}

// Fractions of the point cloud a lasso covers.
const (
	minLassoFraction = 0.1
	maxLassoFraction = 0.4
)

// generateRounds builds n rounds of disjoint lasso pairs over points
// indices [0, numPoints).
func generateRounds(n, numPoints, timeBins int, seed int64) []Round {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible probe traffic
	rounds := make([]Round, 0, n)
	for i := 0; i < n; i++ {
		perm := rng.Perm(numPoints)
		first := lassoSize(rng, numPoints)
		second := lassoSize(rng, numPoints-first)

		a := append([]int(nil), perm[:first]...)
		b := append([]int(nil), perm[first:first+second]...)

		sel := "all"
		if timeBins > 0 && rng.Intn(2) == 1 {
			sel = strconv.Itoa(rng.Intn(timeBins))
		}
		rounds = append(rounds, Round{First: a, Second: b, TimeSel: sel})
	}
	return rounds
}

func lassoSize(rng *rand.Rand, numPoints int) int {
	if numPoints < 2 {
		return numPoints
	}
	minSize := int(float64(numPoints) * minLassoFraction)
	maxSize := int(float64(numPoints) * maxLassoFraction)
	if minSize < 1 {
		minSize = 1
	}
	if maxSize <= minSize {
		return minSize
	}
	return minSize + rng.Intn(maxSize-minSize)
}
