package util

import (
	"math"

	gometrics "github.com/rcrowley/go-metrics"
)

// ----------------------------------------------------------------------------
// Helper functions
// ----------------------------------------------------------------------------

type Stats struct {
	StdDeviation float64 `json:"std_deviation"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Mean         float64 `json:"mean"`
	MinMaxRatio  float64 `json:"min_max_ratio"`
}

// NewStats computes the standard deviation, minimum, and maximum values
// from an array of float64 values.
func NewStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	lo, hi := values[0], values[0]

	var sum float64
	for _, v := range values {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	mean := sum / float64(len(values))

	var sumSquaredDiffs float64
	for _, v := range values {
		diff := v - mean
		sumSquaredDiffs += diff * diff
	}

	// population standard deviation
	stdDev := math.Sqrt(sumSquaredDiffs / float64(len(values)))

	minMaxRatio := 1.0
	if hi > 0 {
		minMaxRatio = lo / hi
	}

	return Stats{
		StdDeviation: stdDev,
		Min:          lo,
		Max:          hi,
		Mean:         mean,
		MinMaxRatio:  minMaxRatio,
	}
}

type DistributionStats struct {
	Stats
	DistributionQuality float64 `json:"distribution_quality"`
}

// NewDistributionStats computes quality metrics for value distribution
func NewDistributionStats(shardSizes []float64) DistributionStats {
	stats := NewStats(shardSizes)

	var cv float64
	if stats.Mean > 0 {
		cv = stats.StdDeviation / stats.Mean
	}

	// lower CV and higher min/max ratio indicate better distribution
	distributionQuality := (1.0-math.Min(1.0, cv))*0.5 + stats.MinMaxRatio*0.5

	return DistributionStats{
		Stats:               stats,
		DistributionQuality: distributionQuality,
	}
}

// ----------------------------------------------------------------------------
// Size sampling
// ----------------------------------------------------------------------------

// SizeSampler estimates the size distribution of stored entries from a bounded
// uniform sample. It is safe for concurrent use.
type SizeSampler struct {
	h gometrics.Histogram
}

// sampleReservoir is the number of samples kept by a SizeSampler
const sampleReservoir = 1028

// NewSizeSampler creates an empty sampler
func NewSizeSampler() *SizeSampler {
	return &SizeSampler{h: gometrics.NewHistogram(gometrics.NewUniformSample(sampleReservoir))}
}

// AddSample records the size of one entry
func (s *SizeSampler) AddSample(size int) {
	s.h.Update(int64(size))
}

// Count returns the number of samples recorded so far
func (s *SizeSampler) Count() int64 {
	return s.h.Count()
}

// Median returns the estimated median entry size
func (s *SizeSampler) Median() int {
	return int(s.h.Percentile(0.5))
}

// Mean returns the estimated average entry size
func (s *SizeSampler) Mean() int {
	return int(s.h.Mean())
}

// Estimate returns a weighted per-entry size estimate (60% median, 40% mean)
func (s *SizeSampler) Estimate() int {
	if s.Count() == 0 {
		return 0
	}
	return (s.Median()*60 + s.Mean()*40) / 100
}
