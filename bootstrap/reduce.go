// SPDX-License-Identifier: MIT

package bootstrap

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// ReplicaMean returns the per-element average of the replica population.
// It generally differs from Mean(): the central value comes from the full
// ensemble, not from the replicas. R == 0 yields NaNs.
func (s Sample) ReplicaMean() []float64 {
	size := len(s.mean)
	out := make([]float64, size)
	if s.r == 0 {
		for k := range out {
			out[k] = nan
		}
		return out
	}
	for i := 0; i < s.r; i++ {
		rep := s.replicas[i*size : (i+1)*size]
		for k, v := range rep {
			out[k] += v
		}
	}
	inv := 1.0 / float64(s.r)
	for k := range out {
		out[k] *= inv
	}

	return out
}

// StdDev returns the per-element bootstrap standard deviation: the population
// standard deviation (÷R) of the replicas about their own replica mean, NOT
// about the central value. It is invariant under reordering of replicas.
// R == 0 yields NaNs; R == 1 yields zeros.
func (s Sample) StdDev() []float64 {
	size := len(s.mean)
	mu := s.ReplicaMean()
	out := make([]float64, size)
	if s.r == 0 {
		copy(out, mu)
		return out
	}
	for i := 0; i < s.r; i++ {
		rep := s.replicas[i*size : (i+1)*size]
		for k, v := range rep {
			d := v - mu[k]
			out[k] += d * d
		}
	}
	inv := 1.0 / float64(s.r)
	for k := range out {
		out[k] = math.Sqrt(out[k] * inv)
	}

	return out
}

// Estimate reduces a scalar Sample to (central value, bootstrap std-dev).
func (s Sample) Estimate() (Estimate, error) {
	if s.IsZero() {
		return Estimate{}, ErrEmptySample
	}
	if !s.IsScalar() {
		return Estimate{}, fmt.Errorf("Estimate: shape %v: %w", s.shape, ErrNotScalar)
	}

	return Estimate{Value: s.mean[0], Uncertainty: s.StdDev()[0]}, nil
}

// Estimates reduces every element to (central value, bootstrap std-dev).
func (s Sample) Estimates() []Estimate {
	sd := s.StdDev()
	out := make([]Estimate, len(s.mean))
	for k, v := range s.mean {
		out[k] = Estimate{Value: v, Uncertainty: sd[k]}
	}

	return out
}

// Interval returns the per-element percentile interval of the replica
// population that covers the central fraction level (e.g. 0.68), using the
// quantile interpolation of go-moremath. R == 0 yields NaNs.
func (s Sample) Interval(level float64) (lo, hi []float64, err error) {
	if s.IsZero() {
		return nil, nil, ErrEmptySample
	}
	if !(level > 0 && level < 1) {
		return nil, nil, fmt.Errorf("Interval: level %g not in (0,1): %w", level, ErrBadShape)
	}
	size := len(s.mean)
	lo, hi = make([]float64, size), make([]float64, size)
	tail := (1 - level) / 2
	col := make([]float64, s.r)
	for k := 0; k < size; k++ {
		if s.r == 0 {
			lo[k], hi[k] = nan, nan
			continue
		}
		for i := range col {
			col[i] = s.replicas[i*size+k]
		}
		samp := stats.Sample{Xs: cloneFloats(col)}
		samp.Sort()
		lo[k], hi[k] = samp.Quantile(tail), samp.Quantile(1-tail)
	}

	return lo, hi, nil
}

// HasNaN reports whether the central value or any replica contains NaN.
func (s Sample) HasNaN() bool {
	for _, v := range s.mean {
		if math.IsNaN(v) {
			return true
		}
	}
	for _, v := range s.replicas {
		if math.IsNaN(v) {
			return true
		}
	}

	return false
}

// MeanIsNaN reports whether any element of the central value is NaN.
func (s Sample) MeanIsNaN() bool {
	for _, v := range s.mean {
		if math.IsNaN(v) {
			return true
		}
	}

	return false
}
