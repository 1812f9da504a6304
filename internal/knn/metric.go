package knn

import (
	"fmt"
	"math"
)

// MetricType names the way per-feature contributions are combined.
type MetricType string

const (
	MetricEuclidean MetricType = "EUCLIDEAN"
	MetricManhattan MetricType = "MANHATTAN"
	MetricChebyshev MetricType = "CHEBYSHEV"
)

// MetricFn folds per-feature contributions into one distance.
type MetricFn func(contributions []float64) float64

func MetricFor(t MetricType) (MetricFn, error) {
	switch t {
	case MetricEuclidean, "":
		return EuclideanNorm, nil
	case MetricManhattan:
		return ManhattanNorm, nil
	case MetricChebyshev:
		return ChebyshevNorm, nil
	default:
		return nil, fmt.Errorf("unknown metric: %s", t)
	}
}

func EuclideanNorm(d []float64) float64 {
	var s float64
	for i := range d {
		s += d[i] * d[i]
	}
	return math.Sqrt(s)
}

func ManhattanNorm(d []float64) float64 {
	var s float64
	for i := range d {
		s += math.Abs(d[i])
	}
	return s
}

func ChebyshevNorm(d []float64) float64 {
	var m float64
	for i := range d {
		if a := math.Abs(d[i]); a > m {
			m = a
		}
	}
	return m
}
