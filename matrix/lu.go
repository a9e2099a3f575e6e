// SPDX-License-Identifier: MIT

package matrix

import (
	"fmt"
	"math"
)

// pivotTolerance is the relative magnitude below which a pivot is treated as
// zero. It is scaled by the largest absolute entry of the input.
const pivotTolerance = 1e-14

// LU holds a Doolittle factorisation PA = LU with partial (row) pivoting.
// L (unit diagonal) and U share the packed storage lu; perm maps factor rows
// to original rows.
type LU struct {
	n    int
	lu   []float64
	perm []int
}

// Factorize computes the LU factorisation of the square matrix a.
// Blueprint:
//
//	Stage 1 (Validate): a must be square with finite entries.
//	Stage 2 (Prepare): copy a into packed storage; identity permutation.
//	Stage 3 (Execute): for each column k pick the largest |pivot| in rows ≥ k,
//	                   swap it up, then eliminate below it.
//	Stage 4 (Finalize): return the packed factors.
//
// Returns ErrNonSquare, ErrNaNInf or ErrSingular.
// Complexity: O(n³) time, O(n²) memory.
func Factorize(a *Dense) (*LU, error) {
	// Stage 1: Validate input shape and values.
	if a.r != a.c {
		return nil, fmt.Errorf("Factorize: non-square %dx%d: %w", a.r, a.c, ErrNonSquare)
	}
	n := a.r
	var scale float64
	for _, v := range a.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("Factorize: %w", ErrNaNInf)
		}
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 {
		return nil, fmt.Errorf("Factorize: zero matrix: %w", ErrSingular)
	}

	// Stage 2: Prepare packed storage and permutation.
	f := &LU{n: n, lu: make([]float64, n*n), perm: make([]int, n)}
	copy(f.lu, a.data)
	for i := range f.perm {
		f.perm[i] = i
	}

	// Stage 3: Elimination with partial pivoting.
	var (
		i, j, k int
		p       int     // pivot row
		best    float64 // |pivot| candidate
		factor  float64 // multiplier L[i][k]
	)
	for k = 0; k < n; k++ {
		p, best = k, math.Abs(f.lu[k*n+k])
		for i = k + 1; i < n; i++ {
			if v := math.Abs(f.lu[i*n+k]); v > best {
				p, best = i, v
			}
		}
		if best <= pivotTolerance*scale {
			return nil, fmt.Errorf("Factorize: pivot %d: %w", k, ErrSingular)
		}
		if p != k { // swap rows k and p
			for j = 0; j < n; j++ {
				f.lu[k*n+j], f.lu[p*n+j] = f.lu[p*n+j], f.lu[k*n+j]
			}
			f.perm[k], f.perm[p] = f.perm[p], f.perm[k]
		}
		for i = k + 1; i < n; i++ {
			factor = f.lu[i*n+k] / f.lu[k*n+k]
			f.lu[i*n+k] = factor
			for j = k + 1; j < n; j++ {
				f.lu[i*n+j] -= factor * f.lu[k*n+j]
			}
		}
	}

	// Stage 4: Finalize.
	return f, nil
}

// Solve returns x with A·x = b for the factorised A.
// Forward substitution solves L·y = P·b, backward substitution U·x = y.
// Complexity: O(n²).
func (f *LU) Solve(b []float64) ([]float64, error) {
	if len(b) != f.n {
		return nil, fmt.Errorf("Solve: len(b)=%d, n=%d: %w", len(b), f.n, ErrDimensionMismatch)
	}
	n := f.n
	x := make([]float64, n)
	var (
		i, k int
		sum  float64
	)
	for i = 0; i < n; i++ { // L·y = P·b (unit diagonal)
		sum = b[f.perm[i]]
		for k = 0; k < i; k++ {
			sum -= f.lu[i*n+k] * x[k]
		}
		x[i] = sum
	}
	for i = n - 1; i >= 0; i-- { // U·x = y
		sum = x[i]
		for k = i + 1; k < n; k++ {
			sum -= f.lu[i*n+k] * x[k]
		}
		x[i] = sum / f.lu[i*n+i]
	}

	return x, nil
}

// Solve factorises a and solves a·x = b in one call.
func Solve(a *Dense, b []float64) ([]float64, error) {
	f, err := Factorize(a)
	if err != nil {
		return nil, err
	}

	return f.Solve(b)
}
