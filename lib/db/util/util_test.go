package util

import (
	"testing"
)

func TestHashStringIsSeeded(t *testing.T) {
	if HashString("users:1", 1) == HashString("users:1", 2) {
		t.Error("Expected different hashes for different seeds")
	}
	if HashString("users:1", 7) != HashString("users:1", 7) {
		t.Error("Expected stable hash for same input")
	}
}

func TestHasPrefix(t *testing.T) {
	tests := []struct {
		key, prefix string
		want        bool
	}{
		{"users:1", "users:", true},
		{"users:1", "", true},
		{"user", "users:", false},
		{"orders:1", "users:", false},
	}
	for _, tc := range tests {
		if got := HasPrefix(tc.key, tc.prefix); got != tc.want {
			t.Errorf("HasPrefix(%q, %q) = %v, want %v", tc.key, tc.prefix, got, tc.want)
		}
	}
}

func TestDistributionStats(t *testing.T) {
	even := NewDistributionStats([]float64{10, 10, 10, 10})
	if even.DistributionQuality != 1.0 {
		t.Errorf("Expected perfect distribution, got %f", even.DistributionQuality)
	}

	skewed := NewDistributionStats([]float64{0, 0, 0, 40})
	if skewed.DistributionQuality >= even.DistributionQuality {
		t.Errorf("Expected skewed distribution to score lower, got %f", skewed.DistributionQuality)
	}

	if empty := NewStats(nil); empty != (Stats{}) {
		t.Errorf("Expected zero stats for empty input, got %+v", empty)
	}
}

func TestSizeSampler(t *testing.T) {
	s := NewSizeSampler()
	if s.Estimate() != 0 {
		t.Errorf("Expected 0 estimate without samples, got %d", s.Estimate())
	}
	for i := 0; i < 100; i++ {
		s.AddSample(64)
	}
	if s.Count() != 100 {
		t.Errorf("Expected 100 samples, got %d", s.Count())
	}
	if s.Estimate() != 64 {
		t.Errorf("Expected estimate 64, got %d", s.Estimate())
	}
}
