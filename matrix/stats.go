// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
)

// Covariance returns the c×c population covariance (÷r) of the columns of
// m, treating each row as one observation, together with the column means.
// Stage 1 (Center): subtract column means once.
// Stage 2 (Compute): Cov = XcᵀXc / r via Gram.
// Complexity: O(r·c²).
func Covariance(m *Dense) (*Dense, []float64, error) {
	if m == nil {
		return nil, nil, fmt.Errorf("Covariance: nil: %w", ErrInvalidDimensions)
	}
	means := make([]float64, m.c)
	for k := 0; k < m.r; k++ {
		for j, v := range m.data[k*m.c : (k+1)*m.c] {
			means[j] += v
		}
	}
	inv := 1.0 / float64(m.r)
	for j := range means {
		means[j] *= inv
	}

	xc := m.Clone()
	for k := 0; k < xc.r; k++ {
		row := xc.data[k*xc.c : (k+1)*xc.c]
		for j := range row {
			row[j] -= means[j]
		}
	}
	cov := xc.Gram()
	for i := range cov.data {
		cov.data[i] *= inv
	}

	return cov, means, nil
}

// Correlation turns a covariance matrix into Pearson correlations.
// A zero-variance column yields NaN in its row and column, except for
// the diagonal which stays 1.
func Correlation(cov *Dense) (*Dense, error) {
	d, err := cov.Diagonal()
	if err != nil {
		return nil, fmt.Errorf("Correlation: %w", err)
	}
	std := make([]float64, len(d))
	for i, v := range d {
		std[i] = math.Sqrt(v)
	}
	out := cov.Clone()
	for i := 0; i < out.r; i++ {
		for j := 0; j < out.c; j++ {
			if i == j {
				out.data[i*out.c+j] = 1
				continue
			}
			out.data[i*out.c+j] /= std[i] * std[j]
		}
	}

	return out, nil
}
