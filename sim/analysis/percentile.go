package analysis

import "math"

type number interface {
	int | int64 | float64
}

// Percentile returns the p-th percentile of sorted data using linear interpolation
// between closest ranks. p is clamped to [0, 100]; empty data returns 0.
func Percentile[T number](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	rank := min(max(p/100.0*float64(n-1), 0), float64(n-1))
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if lowerIdx == upperIdx {
		return float64(data[lowerIdx])
	}
	lowerVal, upperVal := float64(data[lowerIdx]), float64(data[upperIdx])
	return lowerVal + (upperVal-lowerVal)*(rank-float64(lowerIdx))
}

// Mean returns the arithmetic mean, or 0 for empty data.
func Mean[T number](data []T) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += float64(v)
	}
	return sum / float64(len(data))
}
